package language

import (
	"strings"
	"unicode"
)

// Result is a detection outcome. Confidence is always within [0,1]; an
// empty Language with zero confidence means the text carried no signal.
type Result struct {
	Language   string  `json:"language"`
	Confidence float64 `json:"confidence"`
}

type IDetector interface {
	Detect(text string) Result
}

type detector struct{}

// NewDetector builds the heuristic script-and-keyword detector. Detection is
// fully deterministic: identical input always yields the identical result.
func NewDetector() IDetector {
	return &detector{}
}

// Marker words disambiguate languages sharing a script. Devanagari is used
// by both Hindi and Marathi; Latin input may be English or romanized Hindi.
var (
	hindiMarkers = map[string]struct{}{
		"है": {}, "दिखाओ": {}, "खोलो": {}, "मेरा": {}, "मेरे": {}, "मुझे": {},
		"जाओ": {}, "करो": {}, "चाहिए": {}, "वापस": {}, "कहाँ": {}, "क्या": {},
	}
	marathiMarkers = map[string]struct{}{
		"आहे": {}, "दाखवा": {}, "उघडा": {}, "माझा": {}, "माझे": {}, "मला": {},
		"जा": {}, "करा": {}, "पाहिजे": {}, "मागे": {}, "कुठे": {}, "काय": {},
	}
	englishMarkers = map[string]struct{}{
		"the": {}, "to": {}, "go": {}, "show": {}, "open": {}, "my": {},
		"take": {}, "view": {}, "back": {}, "home": {}, "please": {}, "me": {},
	}
	romanHindiMarkers = map[string]struct{}{
		"karo": {}, "kholo": {}, "dikhao": {}, "jao": {}, "mera": {}, "meri": {},
		"mujhe": {}, "chahiye": {}, "batao": {}, "wapas": {}, "kaise": {}, "kya": {},
	}
)

func (d *detector) Detect(text string) Result {
	normalized := NormalizeText(text)
	if normalized == "" {
		return Result{}
	}

	var devanagari, bengali, tamil, telugu, latin, total int
	for _, r := range normalized {
		if !unicode.IsLetter(r) {
			continue
		}
		total++
		switch {
		case unicode.Is(unicode.Devanagari, r):
			devanagari++
		case unicode.Is(unicode.Bengali, r):
			bengali++
		case unicode.Is(unicode.Tamil, r):
			tamil++
		case unicode.Is(unicode.Telugu, r):
			telugu++
		case unicode.Is(unicode.Latin, r):
			latin++
		}
	}
	if total == 0 {
		return Result{}
	}

	words := strings.Fields(normalized)

	// Bengali, Tamil and Telugu scripts each map to exactly one supported
	// language, so script share is the whole signal.
	switch {
	case bengali > 0 && bengali >= tamil && bengali >= telugu && bengali >= devanagari && bengali >= latin:
		return Result{Language: BengaliIN, Confidence: Clamp(float64(bengali) / float64(total))}
	case tamil > 0 && tamil >= telugu && tamil >= devanagari && tamil >= latin:
		return Result{Language: TamilIN, Confidence: Clamp(float64(tamil) / float64(total))}
	case telugu > 0 && telugu >= devanagari && telugu >= latin:
		return Result{Language: TeluguIN, Confidence: Clamp(float64(telugu) / float64(total))}
	case devanagari > 0 && devanagari >= latin:
		return detectDevanagari(words, float64(devanagari)/float64(total))
	default:
		return detectLatin(words)
	}
}

func detectDevanagari(words []string, scriptRatio float64) Result {
	hindiHits := countMarkers(words, hindiMarkers)
	marathiHits := countMarkers(words, marathiMarkers)

	if marathiHits > hindiHits {
		return Result{Language: MarathiIN, Confidence: Clamp(scriptRatio*0.75 + 0.1*float64(marathiHits))}
	}
	if hindiHits > 0 {
		return Result{Language: HindiIN, Confidence: Clamp(scriptRatio*0.75 + 0.1*float64(hindiHits))}
	}
	// No marker either way: Hindi is the weaker default for bare Devanagari.
	return Result{Language: HindiIN, Confidence: Clamp(scriptRatio * 0.6)}
}

func detectLatin(words []string) Result {
	englishHits := countMarkers(words, englishMarkers)
	hindiHits := countMarkers(words, romanHindiMarkers)

	if hindiHits > englishHits {
		return Result{Language: HindiIN, Confidence: Clamp(0.4 + 0.15*float64(hindiHits))}
	}
	if englishHits > 0 {
		return Result{Language: EnglishUS, Confidence: Clamp(0.4 + 0.15*float64(englishHits))}
	}
	return Result{Language: EnglishUS, Confidence: 0.4}
}

func countMarkers(words []string, markers map[string]struct{}) int {
	hits := 0
	for _, w := range words {
		if _, ok := markers[w]; ok {
			hits++
		}
	}
	return hits
}
