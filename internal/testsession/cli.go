package testsession

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/flexflow/flexflow/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) error {
	// Initialize the logger first
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "session_test_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	multiWriter := io.MultiWriter(os.Stdout, file)
	log.SetOutput(multiWriter)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the session test tool.
func ShowHelp() {
	os.Stdout.WriteString(`FlexFlow Session Test Tool
==========================

Drives the pose pipeline end to end: starts sessions against the synthetic
frame source, waits for body metrics to converge, watches the landmark
websocket feed, and verifies the frame accounting under backpressure.

Usage:
  go run cmd/test-session/main.go [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:8080")
  -sessions int
        Number of concurrent sessions to drive (default 3)
  -watch duration
        How long to observe each landmark feed (default 5s)
  -timeout duration
        HTTP request timeout (default 10s)
  -query string
        Exercise search smoke query (default "upper trap stretch"; empty skips)
  -log string
        Log file for test output (default: session_test_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Test with default settings
  go run cmd/test-session/main.go

  # Drive ten sessions and watch the feeds longer
  go run cmd/test-session/main.go -sessions 10 -watch 15s

  # Point at another instance with verbose output
  go run cmd/test-session/main.go -url http://localhost:9090 -verbose
`)
}
