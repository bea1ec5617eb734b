package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/flexflow/flexflow/internal/testsession"
)

// Default configuration constants.
const (
	defaultSessions    = 3
	defaultWatch       = 5 * time.Second
	defaultTimeout     = 10 * time.Second
	defaultQuery       = "upper trap stretch"
	defaultTestTimeout = 5 * time.Minute
)

func main() {
	var (
		baseURL  = flag.String("url", "http://localhost:8080", "Base URL of the service")
		sessions = flag.Int("sessions", defaultSessions, "Number of concurrent sessions to drive")
		watch    = flag.Duration("watch", defaultWatch, "How long to observe each landmark feed")
		timeout  = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		query    = flag.String("query", defaultQuery, "Exercise search smoke query (empty skips)")
		logFile  = flag.String("log", "", "Log file for test output (default: session_test_TIMESTAMP.log)")
		verbose  = flag.Bool("verbose", false, "Enable verbose logging")
		help     = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		testsession.ShowHelp()
		return
	}

	// Setup logging
	if err := testsession.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	// Create context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()

	// Create test configuration
	config := &testsession.Config{
		BaseURL:     *baseURL,
		NumSessions: *sessions,
		Watch:       *watch,
		Timeout:     *timeout,
		SearchQuery: *query,
		LogFile:     *logFile,
		Verbose:     *verbose,
	}

	// Run the test
	if err := testsession.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Test failed: " + err.Error() + "\n")
		return
	}
}
