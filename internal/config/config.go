// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Defaults live in New; Load layers an optional YAML file and env on top.
// - All future functions must accept context.Context as the first parameter.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"context"
	"time"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// ModelPath points at the pose model asset. Empty selects the
	// built-in synthetic estimator; a non-empty path must exist when a
	// session starts.
	ModelPath string `koanf:"model_path"`

	// SmoothingWindow sets how many readings per signal are averaged.
	SmoothingWindow int `koanf:"smoothing_window"`

	// IdlePollMS is how long the pipeline worker sleeps when no frame
	// is pending, in milliseconds.
	IdlePollMS int `koanf:"idle_poll_ms"`

	// PublishIntervalMS is the minimum spacing between landmark
	// publishes to observers, in milliseconds.
	PublishIntervalMS int `koanf:"publish_interval_ms"`

	// SyntheticFPS sets the frame rate of the built-in frame source.
	SyntheticFPS int `koanf:"synthetic_fps"`

	// FrameMaxWidth downscales frames wider than this before
	// estimation. Zero disables scaling.
	FrameMaxWidth int `koanf:"frame_max_width"`

	// TokenAPIKey and TokenAPISecret sign room access tokens. The
	// token endpoint returns 503 until both are set.
	TokenAPIKey    string `koanf:"token_api_key"`
	TokenAPISecret string `koanf:"token_api_secret"`

	// TokenTTL bounds how long an issued room token stays valid.
	TokenTTL time.Duration `koanf:"token_ttl"`

	// MediaServerURL is handed to clients along with their token.
	MediaServerURL string `koanf:"media_server_url"`

	// MQTTBroker enables the MQTT landmark publisher when set
	// (host:port). Empty disables it.
	MQTTBroker string `koanf:"mqtt_broker"`

	// MQTTTopic is the topic prefix for published landmark events.
	MQTTTopic string `koanf:"mqtt_topic"`

	// ExerciseDBURL is the upstream exercise catalog JSON.
	ExerciseDBURL string `koanf:"exercise_db_url"`

	// ExerciseCacheTTL bounds how long the fetched catalog is reused.
	ExerciseCacheTTL time.Duration `koanf:"exercise_cache_ttl"`

	// MaxSearchLimit caps GET /api/v1/exercises?limit.
	MaxSearchLimit int `koanf:"max_search_limit"`
}

// Default configuration values.
const (
	defaultAddr              = ":8080"
	defaultSmoothingWindow   = 5
	defaultIdlePollMS        = 50
	defaultPublishIntervalMS = 100
	defaultSyntheticFPS      = 30
	defaultFrameMaxWidth     = 640
	defaultTokenTTL          = 6 * time.Hour
	defaultMediaServerURL    = "ws://localhost:7880"
	defaultMQTTTopic         = "flexflow/landmarks"
	defaultExerciseDBURL     = "https://raw.githubusercontent.com/yuhonas/free-exercise-db/main/dist/exercises.json"
	defaultExerciseCacheTTL  = 24 * time.Hour
	defaultMaxSearchLimit    = 25
)

// New creates a Config using provided options. Context is accepted first to
// satisfy the project-wide convention; it is reserved for future use (e.g.,
// loading from env/files) and is currently unused.
func New(_ context.Context) *Config {
	c := &Config{
		LogLevel:          "info",
		Addr:              defaultAddr,
		ModelPath:         "",
		SmoothingWindow:   defaultSmoothingWindow,
		IdlePollMS:        defaultIdlePollMS,
		PublishIntervalMS: defaultPublishIntervalMS,
		SyntheticFPS:      defaultSyntheticFPS,
		FrameMaxWidth:     defaultFrameMaxWidth,
		TokenTTL:          defaultTokenTTL,
		MediaServerURL:    defaultMediaServerURL,
		MQTTTopic:         defaultMQTTTopic,
		ExerciseDBURL:     defaultExerciseDBURL,
		ExerciseCacheTTL:  defaultExerciseCacheTTL,
		MaxSearchLimit:    defaultMaxSearchLimit,
	}
	return c
}
