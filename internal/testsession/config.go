package testsession

import "time"

// Config holds configuration for the session test
type Config struct {
	BaseURL     string        // Base URL of the service
	NumSessions int           // Number of concurrent sessions to drive
	Watch       time.Duration // How long to observe each landmark feed
	Timeout     time.Duration // HTTP request timeout
	SearchQuery string        // Exercise search smoke query
	LogFile     string        // Log file for test output
	Verbose     bool          // Enable verbose logging
}

// sessionResponse mirrors the session lifecycle endpoints.
type sessionResponse struct {
	SessionID string `json:"session_id"`
	Status    string `json:"status"`
}

// sessionListResponse mirrors GET /api/v1/sessions.
type sessionListResponse struct {
	Sessions []string `json:"sessions"`
}

// metricsSnapshot mirrors GET /api/v1/metrics/{id}.
type metricsSnapshot struct {
	IsUpperBodyOnly bool    `json:"is_upper_body_only"`
	NeckAngle       float64 `json:"neck_angle"`
	ArmAngles       struct {
		LeftElbow  float64 `json:"left_elbow"`
		RightElbow float64 `json:"right_elbow"`
	} `json:"arm_angles"`
	PointedBodyPart string `json:"pointed_body_part"`
}

// landmarkEvent mirrors one websocket feed message.
type landmarkEvent struct {
	SessionID   string          `json:"session_id"`
	TimestampMS int64           `json:"timestamp_ms"`
	Landmarks   []landmarkPoint `json:"landmarks"`
}

type landmarkPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	V float64 `json:"v"`
}

// exerciseSummary mirrors GET /api/v1/exercises results.
type exerciseSummary struct {
	Name           string   `json:"name"`
	ImageURL       string   `json:"image_url"`
	Category       string   `json:"category"`
	PrimaryMuscles []string `json:"primary_muscles"`
}

// sessionAccounting is the per-session frame accounting from GET /stats.
type sessionAccounting struct {
	Delivered uint64
	Dropped   uint64
	Processed uint64
}

// Stats holds test statistics
type Stats struct {
	SessionsStarted   int
	SessionsConverged int
	SessionsFailed    int
	LandmarkEvents    int
	FramesDelivered   uint64
	FramesDropped     uint64
	FramesProcessed   uint64
	SearchResults     int
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
}
