package capability

import (
	"net/http"
	"time"
)

// StaticProbe always reports the same availability. Used in tests and for
// capabilities a deployment disables outright.
func StaticProbe(available bool, reason string) Probe {
	return func() (bool, string) {
		return available, reason
	}
}

// EndpointProbe checks reachability of an external service endpoint. An
// empty URL means the service is not configured at all.
func EndpointProbe(url string, timeout time.Duration) Probe {
	client := &http.Client{Timeout: timeout}

	return func() (bool, string) {
		if url == "" {
			return false, "endpoint not configured"
		}
		resp, err := client.Head(url)
		if err != nil {
			return false, "endpoint unreachable"
		}
		defer resp.Body.Close()

		if resp.StatusCode >= http.StatusInternalServerError {
			return false, "endpoint unhealthy"
		}
		return true, ""
	}
}

