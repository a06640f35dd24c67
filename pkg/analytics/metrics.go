package analytics

import (
	"fmt"
	"sort"
	"time"
)

// Data keys the metrics aggregation understands.
const (
	DataIntent    = "intent"
	DataErrorKind = "error_kind"
	DataDevice    = "device"
)

// Insight thresholds.
const (
	lowSuccessRate    = 0.8
	slowProcessingMs  = 2000
	languageDominance = 0.8
)

type CommandUsage struct {
	Command     string  `json:"command"`
	Count       int     `json:"count"`
	SuccessRate float64 `json:"success_rate"`
}

type LanguageShare struct {
	Language string  `json:"language"`
	Sessions int     `json:"sessions"`
	Percent  float64 `json:"percent"`
}

// Metrics aggregates the event log, optionally restricted to a time window.
type Metrics struct {
	TotalEvents      int            `json:"total_events"`
	TotalSessions    int            `json:"total_sessions"`
	SuccessRate      float64        `json:"success_rate"`
	TopCommands      []CommandUsage `json:"top_commands"`
	Languages        []LanguageShare `json:"languages"`
	Errors           map[string]int `json:"errors"`
	Devices          map[string]int `json:"devices"`
	AverageLatencyMs float64        `json:"average_latency_ms"`
	GeneratedAt      time.Time      `json:"generated_at"`
}

// Metrics computes aggregates over events at or after since; a zero since
// covers the whole retained log.
func (r *recorder) Metrics(since time.Time) Metrics {
	r.mu.Lock()
	events := make([]Event, 0, len(r.events))
	for _, e := range r.events {
		if since.IsZero() || !e.Timestamp.Before(since) {
			events = append(events, e)
		}
	}
	now := r.now()
	r.mu.Unlock()

	m := Metrics{
		TotalEvents: len(events),
		Errors:      map[string]int{},
		Devices:     map[string]int{},
		GeneratedAt: now,
	}

	type commandAgg struct {
		count     int
		successes int
	}
	commands := map[string]*commandAgg{}
	sessionLanguage := map[string]string{}

	var outcomeTotal, outcomeSuccess int
	var latencySum int64
	var latencyCount int

	for _, e := range events {
		if e.SessionID != "" {
			if _, seen := sessionLanguage[e.SessionID]; !seen {
				sessionLanguage[e.SessionID] = e.Language
			} else if sessionLanguage[e.SessionID] == "" && e.Language != "" {
				sessionLanguage[e.SessionID] = e.Language
			}
		}

		switch e.Type {
		case EventRecognition, EventNavigation:
			outcomeTotal++
			if e.Success {
				outcomeSuccess++
			}
			if name := e.Data[DataIntent]; name != "" {
				agg, ok := commands[name]
				if !ok {
					agg = &commandAgg{}
					commands[name] = agg
				}
				agg.count++
				if e.Success {
					agg.successes++
				}
			}
		case EventError:
			if kind := e.Data[DataErrorKind]; kind != "" {
				m.Errors[kind]++
			}
		}

		if device := e.Data[DataDevice]; device != "" {
			m.Devices[device]++
		}
		if e.DurationMs > 0 {
			latencySum += e.DurationMs
			latencyCount++
		}
	}

	m.TotalSessions = len(sessionLanguage)
	if outcomeTotal > 0 {
		m.SuccessRate = float64(outcomeSuccess) / float64(outcomeTotal)
	}
	if latencyCount > 0 {
		m.AverageLatencyMs = float64(latencySum) / float64(latencyCount)
	}

	for name, agg := range commands {
		usage := CommandUsage{Command: name, Count: agg.count}
		if agg.count > 0 {
			usage.SuccessRate = float64(agg.successes) / float64(agg.count)
		}
		m.TopCommands = append(m.TopCommands, usage)
	}
	sort.Slice(m.TopCommands, func(i, j int) bool {
		if m.TopCommands[i].Count != m.TopCommands[j].Count {
			return m.TopCommands[i].Count > m.TopCommands[j].Count
		}
		return m.TopCommands[i].Command < m.TopCommands[j].Command
	})
	if len(m.TopCommands) > 10 {
		m.TopCommands = m.TopCommands[:10]
	}

	languageCounts := map[string]int{}
	for _, lang := range sessionLanguage {
		if lang != "" {
			languageCounts[lang]++
		}
	}
	for lang, count := range languageCounts {
		share := LanguageShare{Language: lang, Sessions: count}
		if m.TotalSessions > 0 {
			share.Percent = float64(count) / float64(m.TotalSessions) * 100
		}
		m.Languages = append(m.Languages, share)
	}
	sort.Slice(m.Languages, func(i, j int) bool {
		if m.Languages[i].Sessions != m.Languages[j].Sessions {
			return m.Languages[i].Sessions > m.Languages[j].Sessions
		}
		return m.Languages[i].Language < m.Languages[j].Language
	})

	return m
}

// Insights turns the aggregate metrics into recommendation strings using
// fixed thresholds. Reporting only; nothing reads these back.
func (r *recorder) Insights() []string {
	m := r.Metrics(time.Time{})

	var out []string
	if m.TotalEvents == 0 {
		return []string{"No voice activity recorded yet."}
	}

	if m.SuccessRate < lowSuccessRate {
		out = append(out, fmt.Sprintf(
			"Voice command success rate is %.0f%%. Review failing commands and consider adding custom patterns.",
			m.SuccessRate*100))
	}
	if m.AverageLatencyMs > slowProcessingMs {
		out = append(out, fmt.Sprintf(
			"Average command processing time is %.0fms. Check recognition service latency.",
			m.AverageLatencyMs))
	}
	if len(m.Languages) > 0 && m.TotalSessions > 0 {
		top := m.Languages[0]
		if float64(top.Sessions)/float64(m.TotalSessions) > languageDominance {
			out = append(out, fmt.Sprintf(
				"%s accounts for %.0f%% of sessions. Seed more offline commands for that language.",
				top.Language, top.Percent))
		}
	}

	var networkErrors, totalErrors int
	for kind, count := range m.Errors {
		totalErrors += count
		if kind == "network-error" || kind == "service-unavailable" {
			networkErrors += count
		}
	}
	if totalErrors > 0 && float64(networkErrors)/float64(totalErrors) > 0.3 {
		out = append(out, "Connectivity failures dominate the error log. Offline voice coverage matters for these users.")
	}

	if len(out) == 0 {
		out = append(out, "Voice usage looks healthy. No action needed.")
	}
	return out
}
