package http_client

import (
	"net/http"
	"time"
)

// NewClient returns the pooled client shared by every http action of a
// process. A zero timeout leaves deadlines to the per-action timeout.
func NewClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}
