package fallback

import (
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"KalaVaani/pkg/capability"
	"KalaVaani/pkg/recovery"
)

// Mode identifiers, ordered from full functionality to manual-only.
const (
	ModeFull              = "full"
	ModeLimitedVoice      = "limited_voice"
	ModeOfflineVoice      = "offline_voice"
	ModeKeyboardShortcuts = "keyboard_shortcuts"
	ModeManualOnly        = "manual_only"
)

var (
	ErrUnknownMode     = errors.New("unknown fallback mode")
	ErrModeDisabled    = errors.New("fallback mode is disabled")
	ErrCapabilityUnmet = errors.New("required capability unavailable")
)

// Mode is one of the five operating configurations. Priority orders the
// degradation walk; a higher priority mode is tried first when recovering.
type Mode struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Enabled     bool     `json:"enabled"`
	Priority    int      `json:"priority"`
	Required    []string `json:"required_capabilities"`
}

// Level is the degradation severity tied 1:1 to a mode.
type Level struct {
	Level     int      `json:"level"`
	Name      string   `json:"name"`
	Available []string `json:"available_features"`
	Disabled  []string `json:"disabled_features"`
}

// modes holds the five static configurations in degradation order.
var modes = []Mode{
	{
		ID:          ModeFull,
		Name:        "Full voice navigation",
		Description: "Continuous listening with spoken feedback and online recognition.",
		Enabled:     true,
		Priority:    5,
		Required:    []string{capability.AudioCapture, capability.Network, capability.SpeechRecognition, capability.SpeechSynthesis},
	},
	{
		ID:          ModeLimitedVoice,
		Name:        "Limited voice",
		Description: "Push-to-talk clips sent for server-side recognition, text-only feedback.",
		Enabled:     true,
		Priority:    4,
		Required:    []string{capability.AudioCapture, capability.Network},
	},
	{
		ID:          ModeOfflineVoice,
		Name:        "Offline voice",
		Description: "On-device recognition matched against the offline command cache.",
		Enabled:     true,
		Priority:    3,
		Required:    []string{capability.AudioCapture, capability.SpeechRecognition},
	},
	{
		ID:          ModeKeyboardShortcuts,
		Name:        "Keyboard shortcuts",
		Description: "Navigation through keyboard shortcuts, no audio input.",
		Enabled:     true,
		Priority:    2,
		Required:    []string{capability.Keyboard},
	},
	{
		ID:          ModeManualOnly,
		Name:        "Manual only",
		Description: "Touch or pointer navigation only. Always available.",
		Enabled:     true,
		Priority:    1,
		Required:    nil,
	},
}

// modeLevels is the fixed mode-to-level table. The current level is always
// derived from the current mode through this map, never stored separately.
var modeLevels = map[string]Level{
	ModeFull: {
		Level:     0,
		Name:      "full",
		Available: []string{"voice_navigation", "continuous_listening", "voice_feedback", "voice_search", "language_switching"},
		Disabled:  []string{},
	},
	ModeLimitedVoice: {
		Level:     1,
		Name:      "limited_voice",
		Available: []string{"voice_navigation", "push_to_talk", "voice_search"},
		Disabled:  []string{"continuous_listening", "voice_feedback"},
	},
	ModeOfflineVoice: {
		Level:     2,
		Name:      "offline_voice",
		Available: []string{"offline_commands", "push_to_talk"},
		Disabled:  []string{"continuous_listening", "voice_search", "voice_feedback", "language_switching"},
	},
	ModeKeyboardShortcuts: {
		Level:     3,
		Name:      "keyboard_shortcuts",
		Available: []string{"keyboard_navigation", "shortcut_help"},
		Disabled:  []string{"voice_navigation", "voice_feedback", "voice_search"},
	},
	ModeManualOnly: {
		Level:     4,
		Name:      "manual_only",
		Available: []string{"manual_navigation"},
		Disabled:  []string{"voice_navigation", "voice_feedback", "voice_search", "keyboard_shortcuts"},
	},
}

// errorModes maps error kinds to the mode the engine degrades into. Kinds
// missing here fall back to limited voice.
var errorModes = map[recovery.Kind]string{
	recovery.KindCaptureAccessDenied: ModeKeyboardShortcuts,
	recovery.KindCaptureNotFound:     ModeKeyboardShortcuts,
	recovery.KindNetworkError:        ModeOfflineVoice,
	recovery.KindServiceUnavailable:  ModeOfflineVoice,
	recovery.KindSpeechNotRecognized: ModeLimitedVoice,
	recovery.KindIntentNotRecognized: ModeLimitedVoice,
	recovery.KindBrowserNotSupported: ModeManualOnly,
}

// ModeForError returns the configured degradation target for an error kind.
func ModeForError(kind recovery.Kind) string {
	if id, ok := errorModes[kind]; ok {
		return id
	}
	return ModeLimitedVoice
}

// LevelFor maps a mode id to its degradation level. Unknown ids map to the
// manual-only level so a corrupted mode can never report more capability
// than it has.
func LevelFor(modeID string) Level {
	if lvl, ok := modeLevels[modeID]; ok {
		return lvl
	}
	return modeLevels[ModeManualOnly]
}

func modeByID(modeID string) (Mode, bool) {
	for _, m := range modes {
		if m.ID == modeID {
			return m, true
		}
	}
	return Mode{}, false
}

type IController interface {
	CurrentMode() Mode
	CurrentLevel() Level
	Modes() []Mode
	AvailableFeatures() []string
	DisabledFeatures() []string
	SwitchToMode(modeID string) error
	ActivateFallback(kind recovery.Kind) Mode
	ResetToFullMode() bool
}

type controller struct {
	log      *logrus.Logger
	assessor capability.IAssessor

	mu      sync.Mutex
	current string
}

// NewController starts in full mode. Capability checks happen at switch
// time, so constructing a controller in an environment without audio is
// fine until something tries to use it.
func NewController(log *logrus.Logger, assessor capability.IAssessor) IController {
	return &controller{
		log:      log,
		assessor: assessor,
		current:  ModeFull,
	}
}

func (c *controller) CurrentMode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, _ := modeByID(c.current)
	return m
}

func (c *controller) CurrentLevel() Level {
	c.mu.Lock()
	defer c.mu.Unlock()
	return LevelFor(c.current)
}

func (c *controller) Modes() []Mode {
	out := make([]Mode, len(modes))
	copy(out, modes)
	return out
}

func (c *controller) AvailableFeatures() []string {
	return append([]string(nil), c.CurrentLevel().Available...)
}

func (c *controller) DisabledFeatures() []string {
	return append([]string(nil), c.CurrentLevel().Disabled...)
}

// SwitchToMode commits a mode change only when the mode exists, is enabled,
// and every required capability is available right now. On failure the
// current mode is left untouched.
func (c *controller) SwitchToMode(modeID string) error {
	mode, ok := modeByID(modeID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownMode, modeID)
	}
	if !mode.Enabled {
		return fmt.Errorf("%w: %s", ErrModeDisabled, modeID)
	}

	assessment := c.assessor.Assess()
	for _, name := range mode.Required {
		state, found := assessment[name]
		if !found || !state.Available {
			return fmt.Errorf("%w: %s needs %s", ErrCapabilityUnmet, modeID, name)
		}
	}

	c.mu.Lock()
	previous := c.current
	c.current = modeID
	c.mu.Unlock()

	if previous != modeID {
		c.log.WithFields(logrus.Fields{
			"from":  previous,
			"to":    modeID,
			"level": LevelFor(modeID).Level,
		}).Info("fallback mode changed")
	}
	return nil
}

// ActivateFallback degrades to the mode configured for the error kind. When
// that mode's own requirements are unmet it keeps walking down the priority
// order; manual only terminates the walk because it requires nothing.
func (c *controller) ActivateFallback(kind recovery.Kind) Mode {
	target := ModeForError(kind)

	start := 0
	for i, m := range modes {
		if m.ID == target {
			start = i
			break
		}
	}
	for _, m := range modes[start:] {
		if err := c.SwitchToMode(m.ID); err == nil {
			return m
		}
	}

	// Unreachable as long as manual_only stays requirement-free.
	c.mu.Lock()
	c.current = ModeManualOnly
	c.mu.Unlock()
	m, _ := modeByID(ModeManualOnly)
	return m
}

// ResetToFullMode re-assesses capabilities and attempts to return to full
// functionality. It reports false and keeps the current mode when full
// requirements are still unmet.
func (c *controller) ResetToFullMode() bool {
	if err := c.SwitchToMode(ModeFull); err != nil {
		c.log.WithError(err).Debug("full mode not yet recoverable")
		return false
	}
	return true
}
