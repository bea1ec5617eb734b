package exercise

import (
	"net/http"
	"time"
)

// Option applies a configuration option to the Catalog.
type Option func(*Catalog)

// WithURL overrides the upstream catalog URL.
func WithURL(url string) Option {
	return func(c *Catalog) {
		if url != "" {
			c.url = url
		}
	}
}

// WithImageBase overrides the base URL that image paths are resolved
// against.
func WithImageBase(base string) Option {
	return func(c *Catalog) {
		if base != "" {
			c.imageBase = base
		}
	}
}

// WithCacheTTL sets how long a fetched catalog is served before the next
// search triggers a refresh.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Catalog) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Catalog) {
		if client != nil {
			c.client = client
		}
	}
}
