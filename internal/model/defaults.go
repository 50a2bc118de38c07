package model

import "time"

// Shared defaults used by both the server and console binaries.
const (
	DefaultRefreshInterval = 30 * time.Second
	DefaultPageSize        = 10
	DefaultThroughputDays  = 14
	MaxThroughputDays      = 366
)

// PageSizes are the page sizes the console cycles through.
var PageSizes = []int{5, 10, 20, 50}
