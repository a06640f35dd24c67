package capability

import "sync"

// ReportedStore holds client-reported capability states. Microphone
// permission, speaker availability and browser support are facts only the
// client can observe, so probes for those capabilities read this store.
type ReportedStore struct {
	mu     sync.RWMutex
	states map[string]Capability
}

func NewReportedStore() *ReportedStore {
	return &ReportedStore{states: make(map[string]Capability)}
}

// Report records the latest client-observed state for one capability.
func (s *ReportedStore) Report(name string, available bool, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if available {
		reason = ""
	}
	s.states[name] = Capability{Name: name, Available: available, Reason: reason}
}

// Probe returns a probe that reads the reported state of name. A capability
// never reported counts as available so a fresh engine starts in full mode.
func (s *ReportedStore) Probe(name string) Probe {
	return func() (bool, string) {
		s.mu.RLock()
		defer s.mu.RUnlock()
		if state, ok := s.states[name]; ok {
			return state.Available, state.Reason
		}
		return true, ""
	}
}
