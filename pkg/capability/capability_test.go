package capability

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssessor(t *testing.T) {
	t.Run("Keyboard Is Always Available", func(t *testing.T) {
		a := NewAssessor(nil)
		assert.True(t, a.Available(Keyboard))

		result := a.Assess()
		require.Contains(t, result, Keyboard)
		assert.True(t, result[Keyboard].Available)
	})

	t.Run("Assess Reports Probe State", func(t *testing.T) {
		a := NewAssessor(map[string]Probe{
			AudioCapture: StaticProbe(false, "microphone permission denied"),
			Network:      StaticProbe(true, "ignored when available"),
		})

		result := a.Assess()
		assert.False(t, result[AudioCapture].Available)
		assert.Equal(t, "microphone permission denied", result[AudioCapture].Reason)
		assert.True(t, result[Network].Available)
		assert.Empty(t, result[Network].Reason)
	})

	t.Run("Unknown Capability Is Unavailable", func(t *testing.T) {
		a := NewAssessor(nil)
		assert.False(t, a.Available("telepathy"))
	})

	t.Run("Nil Probes Are Skipped", func(t *testing.T) {
		a := NewAssessor(map[string]Probe{AudioCapture: nil})
		assert.False(t, a.Available(AudioCapture))
		assert.NotContains(t, a.Names(), AudioCapture)
	})

	t.Run("Names Are Sorted", func(t *testing.T) {
		a := NewAssessor(map[string]Probe{
			SpeechRecognition: StaticProbe(true, ""),
			AudioCapture:      StaticProbe(true, ""),
		})
		assert.Equal(t, []string{AudioCapture, Keyboard, SpeechRecognition}, a.Names())
	})
}

func TestReportedStore(t *testing.T) {
	t.Run("Unreported Counts As Available", func(t *testing.T) {
		store := NewReportedStore()
		available, reason := store.Probe(AudioCapture)()
		assert.True(t, available)
		assert.Empty(t, reason)
	})

	t.Run("Report Updates Probe State", func(t *testing.T) {
		store := NewReportedStore()
		probe := store.Probe(AudioCapture)

		store.Report(AudioCapture, false, "microphone permission denied")
		available, reason := probe()
		assert.False(t, available)
		assert.Equal(t, "microphone permission denied", reason)

		store.Report(AudioCapture, true, "stale reason")
		available, reason = probe()
		assert.True(t, available)
		assert.Empty(t, reason)
	})

	t.Run("Capabilities Are Independent", func(t *testing.T) {
		store := NewReportedStore()
		store.Report(Network, false, "offline")

		available, _ := store.Probe(AudioCapture)()
		assert.True(t, available)
	})
}

func TestEndpointProbe(t *testing.T) {
	t.Run("Unconfigured Endpoint", func(t *testing.T) {
		available, reason := EndpointProbe("", time.Second)()
		assert.False(t, available)
		assert.Equal(t, "endpoint not configured", reason)
	})

	t.Run("Healthy Endpoint", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		available, reason := EndpointProbe(srv.URL, time.Second)()
		assert.True(t, available)
		assert.Empty(t, reason)
	})

	t.Run("Unhealthy Endpoint", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		available, reason := EndpointProbe(srv.URL, time.Second)()
		assert.False(t, available)
		assert.Equal(t, "endpoint unhealthy", reason)
	})

	t.Run("Unreachable Endpoint", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close()

		available, reason := EndpointProbe(srv.URL, time.Second)()
		assert.False(t, available)
		assert.Equal(t, "endpoint unreachable", reason)
	})
}
