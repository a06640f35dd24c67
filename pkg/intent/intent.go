package intent

import (
	"fmt"
	"strings"
	"sync"

	"KalaVaani/pkg/language"
)

// Canonical intent names produced by the resolver.
const (
	NavigateDashboard   = "navigate_dashboard"
	NavigateMarketplace = "navigate_marketplace"
	NavigateProfile     = "navigate_profile"
	NavigateSchemes     = "navigate_schemes"
	NavigateOrders      = "navigate_orders"
	NavigateSettings    = "navigate_settings"
	NavigateHelp        = "navigate_help"
	NavigateHome        = "navigate_home"
	Navigate            = "navigate"
	GoBack              = "go_back"
	SearchMarketplace   = "search_marketplace"
	ReadPage            = "read_page"
	StopListening       = "stop_listening"
	SwitchLanguage      = "switch_language"
)

// Slot names extracted from pattern templates.
const (
	SlotDestination = "destination"
	SlotQuery       = "query"
)

const (
	RegisterFormal   = "formal"
	RegisterInformal = "informal"
)

// Pattern is one command pattern in one language. Template and Variants may
// carry at most one {slot} placeholder each; the placeholder captures the
// free-form words at its position.
type Pattern struct {
	Intent   string   `json:"intent"`
	Language string   `json:"language"`
	Template string   `json:"template"`
	Variants []string `json:"variants,omitempty"`
	Register string   `json:"register"`
	Weight   float64  `json:"weight"`
}

// Resolution is the outcome of resolving one input text. A non-empty
// SwitchTarget means the input was a language-switch command and no
// navigation intent was scored. Matched=true with an empty Route is a soft
// failure the caller must handle (known intent, no destination to go to).
type Resolution struct {
	Matched       bool              `json:"matched"`
	Intent        string            `json:"intent,omitempty"`
	Confidence    float64           `json:"confidence"`
	Parameters    map[string]string `json:"parameters,omitempty"`
	Route         string            `json:"route,omitempty"`
	MatchedPhrase string            `json:"matched_phrase,omitempty"`
	SwitchTarget  string            `json:"switch_target,omitempty"`
}

type IResolver interface {
	Resolve(input, lang string) Resolution
	Register(p Pattern) error
	Unregister(lang, template string) bool
	RegisterRoute(intentName, route string)
	Patterns(lang string) []Pattern
	RouteFor(lang, intentName string, params map[string]string) string
}

type resolver struct {
	mu       sync.RWMutex
	patterns map[string][]compiledPattern
	switches map[string][]switchEntry
	routes   map[string]string
}

// NewResolver builds a resolver seeded with the built-in catalogue for every
// supported language. Custom patterns registered later score after the
// built-ins; on equal confidence the earlier-registered pattern wins.
func NewResolver() IResolver {
	r := &resolver{
		patterns: make(map[string][]compiledPattern),
		switches: buildSwitchDictionaries(),
		routes:   make(map[string]string),
	}
	for _, p := range defaultPatterns() {
		if err := r.Register(p); err != nil {
			panic(fmt.Sprintf("intent: invalid built-in pattern %q: %v", p.Intent, err))
		}
	}
	return r
}

type compiledPattern struct {
	source   Pattern
	matchers []phraseMatcher
}

// phraseMatcher is one phrase with its placeholder split out. prefix holds
// every literal word when the phrase has no slot.
type phraseMatcher struct {
	display string
	slot    string
	prefix  []string
	suffix  []string
	literal map[string]struct{}
}

func compilePhrase(raw string) (phraseMatcher, error) {
	m := phraseMatcher{display: raw, literal: make(map[string]struct{})}
	seenSlot := false

	for _, tok := range strings.Fields(raw) {
		if strings.HasPrefix(tok, "{") && strings.HasSuffix(tok, "}") && len(tok) > 2 {
			if seenSlot {
				return m, fmt.Errorf("phrase %q has more than one placeholder", raw)
			}
			seenSlot = true
			m.slot = strings.Trim(tok, "{}")
			continue
		}
		for _, w := range strings.Fields(language.NormalizeText(tok)) {
			if seenSlot {
				m.suffix = append(m.suffix, w)
			} else {
				m.prefix = append(m.prefix, w)
			}
			m.literal[w] = struct{}{}
		}
	}

	if len(m.prefix) == 0 && len(m.suffix) == 0 {
		return m, fmt.Errorf("phrase %q has no literal words", raw)
	}
	return m, nil
}

// match scores the phrase against the input. Slotted phrases match
// structurally (literal prefix and suffix anchored, the middle words become
// the slot value); plain phrases score by word overlap.
func (m phraseMatcher) match(inputWords []string, inputSet map[string]struct{}) (float64, string) {
	if m.slot == "" {
		return language.OverlapRatio(inputSet, m.literal), ""
	}

	need := len(m.prefix) + len(m.suffix) + 1
	if len(inputWords) < need {
		return 0, ""
	}
	for i, w := range m.prefix {
		if inputWords[i] != w {
			return 0, ""
		}
	}
	for i, w := range m.suffix {
		if inputWords[len(inputWords)-len(m.suffix)+i] != w {
			return 0, ""
		}
	}
	middle := inputWords[len(m.prefix) : len(inputWords)-len(m.suffix)]
	return 1, strings.Join(middle, " ")
}

func (r *resolver) Register(p Pattern) error {
	if p.Intent == "" {
		return fmt.Errorf("intent name is required")
	}
	if !language.IsSupported(p.Language) {
		return fmt.Errorf("language %q is not supported", p.Language)
	}
	if strings.TrimSpace(p.Template) == "" {
		return fmt.Errorf("pattern template is required")
	}
	if p.Weight == 0 {
		p.Weight = 1
	}
	if p.Weight < 0 || p.Weight > 1 {
		return fmt.Errorf("pattern weight %v is outside [0,1]", p.Weight)
	}
	if p.Register == "" {
		p.Register = RegisterInformal
	}

	cp := compiledPattern{source: p}
	for _, phrase := range append([]string{p.Template}, p.Variants...) {
		m, err := compilePhrase(phrase)
		if err != nil {
			return err
		}
		cp.matchers = append(cp.matchers, m)
	}

	r.mu.Lock()
	r.patterns[p.Language] = append(r.patterns[p.Language], cp)
	r.mu.Unlock()
	return nil
}

// Unregister removes every pattern in lang whose template equals template.
// It reports whether anything was removed. Registration order of the
// remaining patterns is preserved.
func (r *resolver) Unregister(lang, template string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.patterns[lang][:0]
	removed := false
	for _, cp := range r.patterns[lang] {
		if cp.source.Template == template {
			removed = true
			continue
		}
		kept = append(kept, cp)
	}
	r.patterns[lang] = kept
	return removed
}

// RegisterRoute binds an intent name to a route, overriding the built-in
// table. An empty route removes the override.
func (r *resolver) RegisterRoute(intentName, route string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if route == "" {
		delete(r.routes, intentName)
		return
	}
	r.routes[intentName] = route
}

func (r *resolver) Patterns(lang string) []Pattern {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Pattern, 0, len(r.patterns[lang]))
	for _, cp := range r.patterns[lang] {
		out = append(out, cp.source)
	}
	return out
}

func (r *resolver) Resolve(input, lang string) Resolution {
	normalized := language.NormalizeText(input)
	if normalized == "" {
		return Resolution{}
	}

	if target, conf, phrase, ok := r.matchSwitch(normalized, lang); ok {
		return Resolution{
			Matched:       true,
			Intent:        SwitchLanguage,
			Confidence:    conf,
			MatchedPhrase: phrase,
			SwitchTarget:  target,
		}
	}

	inputWords := strings.Fields(normalized)
	inputSet := make(map[string]struct{}, len(inputWords))
	for _, w := range inputWords {
		inputSet[w] = struct{}{}
	}

	r.mu.RLock()
	candidates := r.patterns[lang]
	r.mu.RUnlock()

	var (
		best       float64
		bestIntent string
		bestPhrase string
		bestSlot   string
		bestValue  string
	)
	for _, cp := range candidates {
		for _, m := range cp.matchers {
			score, slotValue := m.match(inputWords, inputSet)
			score = language.Clamp(score * cp.source.Weight)
			if score > best {
				best = score
				bestIntent = cp.source.Intent
				bestPhrase = m.display
				bestSlot = m.slot
				bestValue = slotValue
			}
		}
	}

	if best < language.MatchThreshold {
		return Resolution{Confidence: language.Clamp(best)}
	}

	params := map[string]string{}
	if bestSlot != "" && bestValue != "" {
		params[bestSlot] = bestValue
	}

	return Resolution{
		Matched:       true,
		Intent:        bestIntent,
		Confidence:    language.Clamp(best),
		Parameters:    params,
		Route:         r.RouteFor(lang, bestIntent, params),
		MatchedPhrase: bestPhrase,
	}
}

// RouteFor resolves an intent and its parameters to a concrete route. The
// destination dictionary is consulted before the static intent table so
// free-form "go to X" phrasing wins over the generic mapping. An empty
// return means the intent carries no navigable target.
func (r *resolver) RouteFor(lang, intentName string, params map[string]string) string {
	if dest, ok := params[SlotDestination]; ok && dest != "" {
		if route, found := destinationRoute(lang, dest); found {
			return route
		}
	}

	r.mu.RLock()
	custom, ok := r.routes[intentName]
	r.mu.RUnlock()
	if ok {
		return custom
	}
	return intentRoutes[intentName]
}

func (r *resolver) matchSwitch(normalized, lang string) (string, float64, string, bool) {
	entries := r.switches[lang]

	for _, e := range entries {
		if normalized == e.phrase {
			return e.target, 1, e.phrase, true
		}
	}
	for _, e := range entries {
		if strings.Contains(normalized, e.phrase) || strings.Contains(e.phrase, normalized) {
			return e.target, 0.9, e.phrase, true
		}
	}
	return "", 0, "", false
}
