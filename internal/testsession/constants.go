package testsession

import "time"

// HTTP status code constants.
const (
	StatusOK = 200
)

// Runner configuration constants.
const (
	ConvergencePoll      = 100 * time.Millisecond
	ConvergenceTimeout   = 15 * time.Second
	PercentageMultiplier = 100
)

// Landmark feed expectations. The service throttles publishes to one per
// 100ms, so a watch window should see at most one event per interval plus
// some scheduling slack.
const (
	PublishInterval   = 100 * time.Millisecond
	ThrottleSlack     = 5
	ExpectedLandmarks = 33
)
