package feed

import (
	"errors"
	"fmt"
	"time"
)

// Window is a named recency cutoff bounding which articles are eligible
// for a feed.
type Window string

const (
	WindowWeek     Window = "week"
	WindowMonth    Window = "month"
	WindowYear     Window = "year"
	WindowInfinity Window = "infinity"
	WindowLatest   Window = "latest"
)

var ErrUnsupportedWindow = errors.New("unsupported window")

var windows = map[Window]bool{
	WindowWeek:     true,
	WindowMonth:    true,
	WindowYear:     true,
	WindowInfinity: true,
	WindowLatest:   true,
}

// TopWindows are the windows served under /top, narrowest first.
func TopWindows() []Window {
	return []Window{WindowWeek, WindowMonth, WindowYear, WindowInfinity}
}

func ParseWindow(s string) (Window, error) {
	w := Window(s)
	if !windows[w] {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedWindow, s)
	}
	return w, nil
}

// Cutoff returns the earliest publish time admitted by the window. The zero
// time means the window is unbounded. Month and year are calendar based.
func (w Window) Cutoff(now time.Time) time.Time {
	switch w {
	case WindowWeek:
		return now.AddDate(0, 0, -7)
	case WindowMonth:
		return now.AddDate(0, -1, 0)
	case WindowYear:
		return now.AddDate(-1, 0, 0)
	default:
		return time.Time{}
	}
}

func (w Window) String() string {
	return string(w)
}
