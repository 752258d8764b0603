package weather

import (
	"errors"
	"time"
)

// Snapshot is one successfully fetched set of current conditions. A snapshot
// replaces its predecessor wholesale; a failed fetch leaves the previous one
// in place.
type Snapshot struct {
	CityLabel    string    // diacritic-stripped place name for the dashboard
	TemperatureC float64
	HumidityPct  int
	WindKph      float64
	Code         int
	Condition    string // resolved from Code, "Unknown" for unmapped codes
	FetchedAt    time.Time
}

// Fetch failures collapse to "keep the previous snapshot, try again next
// interval"; the sentinels only matter for logs and tests.
var (
	// ErrNotConnected means the link was down and no network I/O was attempted.
	ErrNotConnected = errors.New("link not connected")

	// ErrNoResult means a remote call answered but carried nothing usable
	// (non-200 status or an empty geocode result).
	ErrNoResult = errors.New("no usable result")

	// ErrParse means a response body did not match the expected shape.
	ErrParse = errors.New("malformed response")
)
