package capability

import (
	"sort"
)

const (
	AudioCapture      = "audio_capture"
	Network           = "network"
	SpeechRecognition = "speech_recognition"
	SpeechSynthesis   = "speech_synthesis"
	Keyboard          = "keyboard"
)

// Capability is the availability of one runtime feature at assessment time.
type Capability struct {
	Name      string `json:"name"`
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

// Probe reports whether a capability is currently available and, when it is
// not, why. Probes must be side-effect free so Assess stays idempotent.
type Probe func() (bool, string)

type IAssessor interface {
	// Assess re-runs every probe and returns a fresh capability map. Results
	// are never cached; callers deciding a mode switch always see live state.
	Assess() map[string]Capability
	Available(name string) bool
	Names() []string
}

type assessor struct {
	probes map[string]Probe
}

// NewAssessor builds an assessor over the given probes. The keyboard
// capability is always present and always available regardless of probes.
func NewAssessor(probes map[string]Probe) IAssessor {
	merged := make(map[string]Probe, len(probes)+1)
	for name, probe := range probes {
		if probe != nil {
			merged[name] = probe
		}
	}
	merged[Keyboard] = func() (bool, string) { return true, "" }

	return &assessor{probes: merged}
}

func (a *assessor) Assess() map[string]Capability {
	result := make(map[string]Capability, len(a.probes))
	for name, probe := range a.probes {
		available, reason := probe()
		if available {
			reason = ""
		}
		result[name] = Capability{
			Name:      name,
			Available: available,
			Reason:    reason,
		}
	}
	return result
}

func (a *assessor) Available(name string) bool {
	probe, ok := a.probes[name]
	if !ok {
		return false
	}
	available, _ := probe()
	return available
}

func (a *assessor) Names() []string {
	names := make([]string, 0, len(a.probes))
	for name := range a.probes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
