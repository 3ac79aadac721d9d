package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

var validExclusions = map[string]bool{
	"none": true,
	"own":  true,
	"read": true,
}

type rawCfg struct {
	// Database configuration
	DBPath string `long:"db-path" env:"DB_PATH" default:"./storyfeed.db" description:"Path to the SQLite database file"`

	// Application configuration
	FeedsDir          string `long:"feeds-dir" env:"FEEDS_DIR" default:"./feeds" description:"Directory containing import source configuration files"`
	Port              string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	BaseUrl           string `long:"base-url" env:"BASE_URL" description:"Public base URL for the service (e.g., https://stories.example.com)"`
	WorkerCount       int    `long:"worker-count" env:"WORKER_COUNT" default:"5" description:"Number of background workers for imports"`
	SchedulerInterval int    `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"30" description:"Scheduler interval in seconds"`

	// Home feed configuration
	HomeFeedMinimumScore int    `long:"home-feed-minimum-score" env:"HOME_FEED_MINIMUM_SCORE" default:"0" description:"Articles must score above this value to appear in feeds"`
	FeedPageSize         int    `long:"feed-page-size" env:"FEED_PAGE_SIZE" default:"25" description:"Number of stories per feed page"`
	FeedCTAPosition      int    `long:"feed-cta-position" env:"FEED_CTA_POSITION" default:"3" description:"Body position after which anonymous viewers see the call-to-action"`
	FeedExclusion        string `long:"feed-exclusion" env:"FEED_EXCLUSION" default:"none" description:"Story exclusion policy for signed-in viewers (none, own, read)"`

	// Page cache configuration
	RedisAddr    string `long:"redis-addr" env:"REDIS_ADDR" description:"Redis address for the anonymous page cache (optional)"`
	PageCacheTTL int    `long:"page-cache-ttl" env:"PAGE_CACHE_TTL" default:"300" description:"Anonymous page cache TTL in seconds"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Storyfeed/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	return LoadArgs(nil)
}

// LoadArgs parses the given arguments instead of os.Args when args is non-nil.
func LoadArgs(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	var err error
	if args == nil {
		_, err = parser.Parse()
	} else {
		_, err = parser.ParseArgs(args)
	}
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if !validExclusions[raw.FeedExclusion] {
		return nil, fmt.Errorf("invalid feed exclusion policy: %s", raw.FeedExclusion)
	}
	if raw.FeedPageSize <= 0 {
		return nil, fmt.Errorf("feed page size must be positive")
	}

	cfg := &Cfg{
		DBPath:               raw.DBPath,
		FeedsDir:             raw.FeedsDir,
		Port:                 raw.Port,
		BaseUrl:              raw.BaseUrl,
		WorkerCount:          raw.WorkerCount,
		SchedulerInterval:    raw.SchedulerInterval,
		HomeFeedMinimumScore: raw.HomeFeedMinimumScore,
		FeedPageSize:         raw.FeedPageSize,
		FeedCTAPosition:      raw.FeedCTAPosition,
		FeedExclusion:        raw.FeedExclusion,
		RedisAddr:            raw.RedisAddr,
		PageCacheTTL:         raw.PageCacheTTL,
		UserAgent:            raw.UserAgent,
		Timezone:             raw.Timezone,
		Debug:                raw.Debug,
		Version:              GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
