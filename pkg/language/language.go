package language

// Voice language codes understood by the engine. The UI layer speaks
// two-letter locales; VoiceFor/LocaleFor translate between the two.
const (
	EnglishUS = "en-US"
	HindiIN   = "hi-IN"
	BengaliIN = "bn-IN"
	TamilIN   = "ta-IN"
	TeluguIN  = "te-IN"
	MarathiIN = "mr-IN"
)

var supported = []string{EnglishUS, HindiIN, BengaliIN, TamilIN, TeluguIN, MarathiIN}

var displayNames = map[string]string{
	EnglishUS: "English",
	HindiIN:   "हिन्दी",
	BengaliIN: "বাংলা",
	TamilIN:   "தமிழ்",
	TeluguIN:  "తెలుగు",
	MarathiIN: "मराठी",
}

var localeToVoice = map[string]string{
	"en": EnglishUS,
	"hi": HindiIN,
	"bn": BengaliIN,
	"ta": TamilIN,
	"te": TeluguIN,
	"mr": MarathiIN,
}

var voiceToLocale = map[string]string{
	EnglishUS: "en",
	HindiIN:   "hi",
	BengaliIN: "bn",
	TamilIN:   "ta",
	TeluguIN:  "te",
	MarathiIN: "mr",
}

func Supported() []string {
	out := make([]string, len(supported))
	copy(out, supported)
	return out
}

func IsSupported(code string) bool {
	_, ok := voiceToLocale[code]
	return ok
}

// DisplayName returns the native-script name of a language, or the code
// itself when the language is unknown.
func DisplayName(code string) string {
	if name, ok := displayNames[code]; ok {
		return name
	}
	return code
}

// VoiceFor maps a UI locale ("hi") to the engine voice code ("hi-IN").
// Unknown locales fall back to English so locale sync never dead-ends.
func VoiceFor(locale string) string {
	if voice, ok := localeToVoice[locale]; ok {
		return voice
	}
	return EnglishUS
}

// LocaleFor maps an engine voice code back to the UI locale.
func LocaleFor(voice string) string {
	if locale, ok := voiceToLocale[voice]; ok {
		return locale
	}
	return "en"
}
