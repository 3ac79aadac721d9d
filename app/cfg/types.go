package cfg

import "time"

type Cfg struct {
	// Database configuration
	DBPath string

	// Application configuration
	FeedsDir          string
	Port              string
	BaseUrl           string
	WorkerCount       int
	SchedulerInterval int

	// Home feed configuration
	HomeFeedMinimumScore int
	FeedPageSize         int
	FeedCTAPosition      int
	FeedExclusion        string

	// Page cache configuration
	RedisAddr    string
	PageCacheTTL int

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}

func (c *Cfg) GetPageCacheTTL() time.Duration {
	if c.PageCacheTTL <= 0 {
		return 0
	}
	return time.Duration(c.PageCacheTTL) * time.Second
}

func (c *Cfg) GetSchedulerInterval() time.Duration {
	if c.SchedulerInterval <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.SchedulerInterval) * time.Second
}
