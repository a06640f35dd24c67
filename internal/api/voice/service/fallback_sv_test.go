package voiceService

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"KalaVaani/internal/api/voice"
	"KalaVaani/pkg/analytics"
	"KalaVaani/pkg/capability"
	"KalaVaani/pkg/fallback"
)

func TestGetFallbackStatus(t *testing.T) {
	f := newFixture(fixtureOptions{})

	status := f.svc.GetFallbackStatus()

	assert.Equal(t, fallback.ModeFull, status.Mode.ID)
	assert.Equal(t, 0, status.Level.Level)
	assert.Equal(t, "full", status.Level.Name)

	require.Len(t, status.Capabilities, 5)
	for name, state := range status.Capabilities {
		assert.True(t, state.Available, "capability %s should start available", name)
	}
	assert.Contains(t, status.Capabilities, capability.Keyboard)
}

func TestReportCapability(t *testing.T) {
	ctx := context.Background()

	t.Run("Denied Capture Falls To Keyboard Shortcuts", func(t *testing.T) {
		f := newFixture(fixtureOptions{})

		status := f.svc.ReportCapability(ctx, voice.ReportCapabilityRequest{
			Name:      capability.AudioCapture,
			Available: false,
			Reason:    "permission denied",
		})

		assert.Equal(t, fallback.ModeKeyboardShortcuts, status.Mode.ID)
		assert.Equal(t, 3, status.Level.Level)

		capture := status.Capabilities[capability.AudioCapture]
		assert.False(t, capture.Available)
		assert.Equal(t, "permission denied", capture.Reason)

		events := f.recorder.Events()
		require.Len(t, events, 1)
		assert.Equal(t, analytics.EventError, events[0].Type)
		assert.Equal(t, "capture-access-denied", events[0].Data["error_kind"])
		assert.Equal(t, capability.AudioCapture, events[0].Data["capability"])
		assert.Equal(t, fallback.ModeKeyboardShortcuts, events[0].Data["mode"])
	})

	t.Run("Missing Device Classified Separately", func(t *testing.T) {
		f := newFixture(fixtureOptions{})

		status := f.svc.ReportCapability(ctx, voice.ReportCapabilityRequest{
			Name:      capability.AudioCapture,
			Available: false,
			Reason:    "Microphone device NOT FOUND",
		})

		assert.Equal(t, fallback.ModeKeyboardShortcuts, status.Mode.ID)

		events := f.recorder.Events()
		require.Len(t, events, 1)
		assert.Equal(t, "capture-not-found", events[0].Data["error_kind"])
	})

	t.Run("Network Loss Falls To Offline Voice", func(t *testing.T) {
		f := newFixture(fixtureOptions{})

		status := f.svc.ReportCapability(ctx, voice.ReportCapabilityRequest{
			Name:      capability.Network,
			Available: false,
			Reason:    "offline",
		})

		assert.Equal(t, fallback.ModeOfflineVoice, status.Mode.ID)
		assert.Equal(t, 2, status.Level.Level)
	})

	t.Run("Recognition Loss Skips Unreachable Offline Mode", func(t *testing.T) {
		f := newFixture(fixtureOptions{})

		// Offline voice itself needs on-device recognition, so the walk
		// has to continue past it.
		status := f.svc.ReportCapability(ctx, voice.ReportCapabilityRequest{
			Name:      capability.SpeechRecognition,
			Available: false,
			Reason:    "engine crashed",
		})

		assert.Equal(t, fallback.ModeKeyboardShortcuts, status.Mode.ID)

		events := f.recorder.Events()
		require.Len(t, events, 1)
		assert.Equal(t, "service-unavailable", events[0].Data["error_kind"])
		assert.Equal(t, fallback.ModeKeyboardShortcuts, events[0].Data["mode"])
	})

	t.Run("Restored Capability Returns To Full", func(t *testing.T) {
		f := newFixture(fixtureOptions{})

		f.svc.ReportCapability(ctx, voice.ReportCapabilityRequest{
			Name:      capability.AudioCapture,
			Available: false,
			Reason:    "permission denied",
		})

		status := f.svc.ReportCapability(ctx, voice.ReportCapabilityRequest{
			Name:      capability.AudioCapture,
			Available: true,
		})

		assert.Equal(t, fallback.ModeFull, status.Mode.ID)
		assert.Equal(t, 0, status.Level.Level)
		assert.True(t, status.Capabilities[capability.AudioCapture].Available)
	})

	t.Run("Restore Blocked While Another Capability Down", func(t *testing.T) {
		f := newFixture(fixtureOptions{})

		f.svc.ReportCapability(ctx, voice.ReportCapabilityRequest{Name: capability.Network, Available: false, Reason: "offline"})
		f.svc.ReportCapability(ctx, voice.ReportCapabilityRequest{Name: capability.AudioCapture, Available: false, Reason: "permission denied"})

		status := f.svc.ReportCapability(ctx, voice.ReportCapabilityRequest{
			Name:      capability.AudioCapture,
			Available: true,
		})

		assert.Equal(t, fallback.ModeKeyboardShortcuts, status.Mode.ID)
		assert.False(t, status.Capabilities[capability.Network].Available)
	})
}

func TestSwitchMode(t *testing.T) {
	ctx := context.Background()

	t.Run("Rejects Unknown Mode", func(t *testing.T) {
		f := newFixture(fixtureOptions{})

		_, err := f.svc.SwitchMode(ctx, voice.SwitchModeRequest{Mode: "warp"})
		assert.ErrorIs(t, err, voice.ErrUnknownFallbackMode)
	})

	t.Run("Switches To Offline Voice", func(t *testing.T) {
		f := newFixture(fixtureOptions{})

		status, err := f.svc.SwitchMode(ctx, voice.SwitchModeRequest{Mode: fallback.ModeOfflineVoice})
		require.NoError(t, err)

		assert.Equal(t, fallback.ModeOfflineVoice, status.Mode.ID)
		assert.Equal(t, 2, status.Level.Level)
	})

	t.Run("Blocked By Missing Capability", func(t *testing.T) {
		f := newFixture(fixtureOptions{})
		f.svc.ReportCapability(ctx, voice.ReportCapabilityRequest{Name: capability.Network, Available: false, Reason: "offline"})

		_, err := f.svc.SwitchMode(ctx, voice.SwitchModeRequest{Mode: fallback.ModeFull})
		assert.ErrorIs(t, err, voice.ErrModeNotAvailable)
	})

	t.Run("Manual Only Always Available", func(t *testing.T) {
		f := newFixture(fixtureOptions{})
		f.svc.ReportCapability(ctx, voice.ReportCapabilityRequest{Name: capability.Network, Available: false, Reason: "offline"})
		f.svc.ReportCapability(ctx, voice.ReportCapabilityRequest{Name: capability.AudioCapture, Available: false, Reason: "permission denied"})

		status, err := f.svc.SwitchMode(ctx, voice.SwitchModeRequest{Mode: fallback.ModeManualOnly})
		require.NoError(t, err)
		assert.Equal(t, fallback.ModeManualOnly, status.Mode.ID)
		assert.Equal(t, 4, status.Level.Level)
	})
}

func TestResetToFullMode(t *testing.T) {
	ctx := context.Background()
	f := newFixture(fixtureOptions{})

	_, err := f.svc.SwitchMode(ctx, voice.SwitchModeRequest{Mode: fallback.ModeManualOnly})
	require.NoError(t, err)

	status := f.svc.ResetToFullMode(ctx)
	assert.Equal(t, fallback.ModeFull, status.Mode.ID)
}

func TestTryRestoreFullMode(t *testing.T) {
	ctx := context.Background()

	t.Run("Restores When Capabilities Allow", func(t *testing.T) {
		f := newFixture(fixtureOptions{})
		_, err := f.svc.SwitchMode(ctx, voice.SwitchModeRequest{Mode: fallback.ModeOfflineVoice})
		require.NoError(t, err)

		assert.True(t, f.svc.TryRestoreFullMode())
		assert.Equal(t, fallback.ModeFull, f.svc.GetFallbackStatus().Mode.ID)
	})

	t.Run("Stays Degraded While Capability Down", func(t *testing.T) {
		f := newFixture(fixtureOptions{})
		f.svc.ReportCapability(ctx, voice.ReportCapabilityRequest{Name: capability.Network, Available: false, Reason: "offline"})

		assert.False(t, f.svc.TryRestoreFullMode())
		assert.Equal(t, fallback.ModeOfflineVoice, f.svc.GetFallbackStatus().Mode.ID)
	})
}
