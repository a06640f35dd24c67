package offline

import (
	"sort"
	"sync"
	"time"

	"KalaVaani/pkg/language"
)

// DefaultBound is the cache capacity used when no explicit bound is
// configured.
const DefaultBound = 100

// Command is one cached (pattern, intent, route) triple usable without the
// live recognition pipeline. Pattern is stored normalized.
type Command struct {
	Pattern    string    `json:"pattern"`
	Intent     string    `json:"intent"`
	Route      string    `json:"route"`
	Confidence float64   `json:"confidence"`
	Language   string    `json:"language"`
	UsageCount int       `json:"usage_count"`
	LastUsed   time.Time `json:"last_used"`
	CachedAt   time.Time `json:"cached_at"`
}

// MatchResult reports the best cached candidate for an input. Matched=false
// with zero confidence means nothing reached the threshold; Match never
// fails harder than that.
type MatchResult struct {
	Matched    bool     `json:"matched"`
	Command    *Command `json:"command,omitempty"`
	Confidence float64  `json:"confidence"`
}

// Snapshot is the serializable state handed to the blob store. Commands are
// sorted by language then pattern so the encoded form is stable.
type Snapshot struct {
	Commands []Command `json:"commands"`
	SavedAt  time.Time `json:"saved_at"`
}

type ICache interface {
	Match(input, lang string) MatchResult
	Cache(pattern, intentName, route, lang string)
	Len() int
	Snapshot() Snapshot
	Restore(s Snapshot)
}

type cacheKey struct {
	lang    string
	pattern string
}

type cache struct {
	mu      sync.Mutex
	bound   int
	entries map[cacheKey]*Command
	now     func() time.Time
}

type Option func(*cache)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *cache) { c.now = now }
}

// NewCache builds a cache holding at most bound entries, pre-seeded with the
// core navigation commands for every supported language so a cold start can
// still match something.
func NewCache(bound int, opts ...Option) ICache {
	if bound <= 0 {
		bound = DefaultBound
	}
	c := &cache{
		bound:   bound,
		entries: make(map[cacheKey]*Command, bound),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	for _, seed := range defaultSeeds() {
		c.put(seed.Pattern, seed.Intent, seed.Route, seed.Language, seed.Confidence)
	}
	return c
}

func (c *cache) Match(input, lang string) MatchResult {
	inputSet := language.WordSet(input)
	if len(inputSet) == 0 {
		return MatchResult{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var best *Command
	var bestScore float64
	for key, cmd := range c.entries {
		if key.lang != lang {
			continue
		}
		score := language.OverlapRatio(inputSet, language.WordSet(cmd.Pattern))
		if score < language.MatchThreshold {
			continue
		}
		if best == nil || score > bestScore || (score == bestScore && betterOnTie(cmd, best)) {
			best = cmd
			bestScore = score
		}
	}

	if best == nil {
		return MatchResult{}
	}

	best.UsageCount++
	best.LastUsed = c.now()

	hit := *best
	return MatchResult{Matched: true, Command: &hit, Confidence: language.Clamp(bestScore)}
}

// betterOnTie prefers the more-used entry, then the earlier-cached one, then
// the lexicographically smaller pattern. Fully deterministic.
func betterOnTie(a, b *Command) bool {
	if a.UsageCount != b.UsageCount {
		return a.UsageCount > b.UsageCount
	}
	if !a.CachedAt.Equal(b.CachedAt) {
		return a.CachedAt.Before(b.CachedAt)
	}
	return a.Pattern < b.Pattern
}

func (c *cache) Cache(pattern, intentName, route, lang string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.put(pattern, intentName, route, lang, 0.9)
}

func (c *cache) put(pattern, intentName, route, lang string, confidence float64) {
	normalized := language.NormalizeText(pattern)
	if normalized == "" || intentName == "" {
		return
	}

	key := cacheKey{lang: lang, pattern: normalized}
	now := c.now()

	if existing, ok := c.entries[key]; ok {
		existing.Intent = intentName
		existing.Route = route
		existing.Confidence = language.Clamp(confidence)
		existing.LastUsed = now
		return
	}

	if len(c.entries) >= c.bound {
		c.evictLocked()
	}

	c.entries[key] = &Command{
		Pattern:    normalized,
		Intent:     intentName,
		Route:      route,
		Confidence: language.Clamp(confidence),
		Language:   lang,
		LastUsed:   now,
		CachedAt:   now,
	}
}

// evictLocked drops the least-recently-used entry. Ties fall back to the
// older CachedAt, then the smaller key, so eviction order is reproducible.
func (c *cache) evictLocked() {
	var victimKey cacheKey
	var victim *Command
	for key, cmd := range c.entries {
		if victim == nil {
			victimKey, victim = key, cmd
			continue
		}
		switch {
		case cmd.LastUsed.Before(victim.LastUsed):
			victimKey, victim = key, cmd
		case cmd.LastUsed.Equal(victim.LastUsed):
			if cmd.CachedAt.Before(victim.CachedAt) ||
				(cmd.CachedAt.Equal(victim.CachedAt) && lessKey(key, victimKey)) {
				victimKey, victim = key, cmd
			}
		}
	}
	if victim != nil {
		delete(c.entries, victimKey)
	}
}

func lessKey(a, b cacheKey) bool {
	if a.lang != b.lang {
		return a.lang < b.lang
	}
	return a.pattern < b.pattern
}

func (c *cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *cache) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	commands := make([]Command, 0, len(c.entries))
	for _, cmd := range c.entries {
		commands = append(commands, *cmd)
	}
	sort.Slice(commands, func(i, j int) bool {
		if commands[i].Language != commands[j].Language {
			return commands[i].Language < commands[j].Language
		}
		return commands[i].Pattern < commands[j].Pattern
	})

	return Snapshot{Commands: commands, SavedAt: c.now()}
}

// Restore replaces the cache contents with a snapshot. When the snapshot
// exceeds the bound the most recently used entries win.
func (c *cache) Restore(s Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	commands := make([]Command, len(s.Commands))
	copy(commands, s.Commands)
	sort.Slice(commands, func(i, j int) bool {
		return commands[i].LastUsed.After(commands[j].LastUsed)
	})
	if len(commands) > c.bound {
		commands = commands[:c.bound]
	}

	c.entries = make(map[cacheKey]*Command, len(commands))
	for i := range commands {
		cmd := commands[i]
		cmd.Pattern = language.NormalizeText(cmd.Pattern)
		cmd.Confidence = language.Clamp(cmd.Confidence)
		if cmd.Pattern == "" || cmd.Intent == "" {
			continue
		}
		c.entries[cacheKey{lang: cmd.Language, pattern: cmd.Pattern}] = &cmd
	}
}
