// Package site serves the embedded demo overlay page.
package site

import (
	"context"
	"net/http"
)

// Register attaches the embedded overlay page routes to mux. The page is a
// self-contained client for the session API and the landmark websocket feed.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	// Serve the embedded overlay page at root /
	files := http.FileServer(FS())
	mux.Handle("/", files)
}
