package voiceService

import (
	"fmt"
	"strings"

	"KalaVaani/pkg/intent"
	"KalaVaani/pkg/language"
)

// User-facing feedback strings per language. Error messages live with the
// recovery strategies; everything here is the happy path and the
// confirmation dialogue.

var routeNames = map[string]map[string]string{
	language.EnglishUS: {
		"/dashboard":   "dashboard",
		"/marketplace": "marketplace",
		"/profile":     "profile",
		"/schemes":     "schemes",
		"/orders":      "orders",
		"/settings":    "settings",
		"/help":        "help",
		"/":            "home",
	},
	language.HindiIN: {
		"/dashboard":   "डैशबोर्ड",
		"/marketplace": "बाज़ार",
		"/profile":     "प्रोफ़ाइल",
		"/schemes":     "योजनाएं",
		"/orders":      "ऑर्डर",
		"/settings":    "सेटिंग्स",
		"/help":        "सहायता",
		"/":            "होम",
	},
	language.BengaliIN: {
		"/dashboard":   "ড্যাশবোর্ড",
		"/marketplace": "বাজার",
		"/profile":     "প্রোফাইল",
		"/schemes":     "প্রকল্প",
		"/orders":      "অর্ডার",
		"/settings":    "সেটিংস",
		"/help":        "সাহায্য",
		"/":            "হোম",
	},
	language.TamilIN: {
		"/dashboard":   "டாஷ்போர்டு",
		"/marketplace": "சந்தை",
		"/profile":     "சுயவிவரம்",
		"/schemes":     "திட்டங்கள்",
		"/orders":      "ஆர்டர்கள்",
		"/settings":    "அமைப்புகள்",
		"/help":        "உதவி",
		"/":            "முகப்பு",
	},
	language.TeluguIN: {
		"/dashboard":   "డాష్‌బోర్డ్",
		"/marketplace": "మార్కెట్",
		"/profile":     "ప్రొఫైల్",
		"/schemes":     "పథకాలు",
		"/orders":      "ఆర్డర్లు",
		"/settings":    "సెట్టింగ్‌లు",
		"/help":        "సహాయం",
		"/":            "హోమ్",
	},
	language.MarathiIN: {
		"/dashboard":   "डॅशबोर्ड",
		"/marketplace": "बाजार",
		"/profile":     "प्रोफाइल",
		"/schemes":     "योजना",
		"/orders":      "ऑर्डर",
		"/settings":    "सेटिंग्ज",
		"/help":        "मदत",
		"/":            "होम",
	},
}

var navAcks = map[string]string{
	language.EnglishUS: "Opening %s",
	language.HindiIN:   "%s खोल रहे हैं",
	language.BengaliIN: "%s খোলা হচ্ছে",
	language.TamilIN:   "%s திறக்கப்படுகிறது",
	language.TeluguIN:  "%s తెరుస్తున్నాం",
	language.MarathiIN: "%s उघडत आहोत",
}

var confirmPrompts = map[string]string{
	language.EnglishUS: "Do you want to open %s?",
	language.HindiIN:   "क्या आप %s खोलना चाहते हैं?",
	language.BengaliIN: "আপনি কি %s খুলতে চান?",
	language.TamilIN:   "நீங்கள் %s திறக்க விரும்புகிறீர்களா?",
	language.TeluguIN:  "మీరు %s తెరవాలనుకుంటున్నారా?",
	language.MarathiIN: "तुम्हाला %s उघडायचे आहे का?",
}

var confirmRepeats = map[string]string{
	language.EnglishUS: "Please say yes or no",
	language.HindiIN:   "कृपया हां या नहीं कहें",
	language.BengaliIN: "অনুগ্রহ করে হ্যাঁ বা না বলুন",
	language.TamilIN:   "தயவுசெய்து ஆம் அல்லது இல்லை என்று சொல்லுங்கள்",
	language.TeluguIN:  "దయచేసి అవును లేదా కాదు అని చెప్పండి",
	language.MarathiIN: "कृपया हो किंवा नाही म्हणा",
}

var cancelAcks = map[string]string{
	language.EnglishUS: "Okay, cancelled",
	language.HindiIN:   "ठीक है, रद्द कर दिया",
	language.BengaliIN: "ঠিক আছে, বাতিল করা হয়েছে",
	language.TamilIN:   "சரி, ரத்து செய்யப்பட்டது",
	language.TeluguIN:  "సరే, రద్దు చేశాం",
	language.MarathiIN: "ठीक आहे, रद्द केले",
}

var actionAcks = map[string]map[string]string{
	language.EnglishUS: {
		intent.GoBack:        "Going back",
		intent.ReadPage:      "Reading the page",
		intent.StopListening: "Stopped listening",
	},
	language.HindiIN: {
		intent.GoBack:        "पीछे जा रहे हैं",
		intent.ReadPage:      "पेज पढ़ रहे हैं",
		intent.StopListening: "सुनना बंद कर दिया",
	},
	language.BengaliIN: {
		intent.GoBack:        "পিছনে যাওয়া হচ্ছে",
		intent.ReadPage:      "পৃষ্ঠা পড়া হচ্ছে",
		intent.StopListening: "শোনা বন্ধ করা হয়েছে",
	},
	language.TamilIN: {
		intent.GoBack:        "பின்னால் செல்கிறது",
		intent.ReadPage:      "பக்கம் படிக்கப்படுகிறது",
		intent.StopListening: "கேட்பது நிறுத்தப்பட்டது",
	},
	language.TeluguIN: {
		intent.GoBack:        "వెనక్కి వెళ్తున్నాం",
		intent.ReadPage:      "పేజీ చదువుతున్నాం",
		intent.StopListening: "వినడం ఆపేశాం",
	},
	language.MarathiIN: {
		intent.GoBack:        "मागे जात आहोत",
		intent.ReadPage:      "पान वाचत आहोत",
		intent.StopListening: "ऐकणे थांबवले",
	},
}

var switchAcks = map[string]string{
	language.EnglishUS: "Language switched to %s",
	language.HindiIN:   "भाषा बदलकर %s कर दी गई",
	language.BengaliIN: "ভাষা পরিবর্তন করে %s করা হয়েছে",
	language.TamilIN:   "மொழி %s ஆக மாற்றப்பட்டது",
	language.TeluguIN:  "భాష %s కి మార్చబడింది",
	language.MarathiIN: "भाषा %s मध्ये बदलली",
}

var alreadyUsingMsgs = map[string]string{
	language.EnglishUS: "You are already using %s",
	language.HindiIN:   "आप पहले से ही %s उपयोग कर रहे हैं",
	language.BengaliIN: "আপনি ইতিমধ্যে %s ব্যবহার করছেন",
	language.TamilIN:   "நீங்கள் ஏற்கனவே %s பயன்படுத்துகிறீர்கள்",
	language.TeluguIN:  "మీరు ఇప్పటికే %s వాడుతున్నారు",
	language.MarathiIN: "तुम्ही आधीच %s वापरत आहात",
}

var searchAcks = map[string]string{
	language.EnglishUS: "Searching the marketplace for %s",
	language.HindiIN:   "बाज़ार में %s खोज रहे हैं",
	language.BengaliIN: "বাজারে %s খোঁজা হচ্ছে",
	language.TamilIN:   "சந்தையில் %s தேடப்படுகிறது",
	language.TeluguIN:  "మార్కెట్‌లో %s వెతుకుతున్నాం",
	language.MarathiIN: "बाजारात %s शोधत आहोत",
}

var yesWords = map[string][]string{
	language.EnglishUS: {"yes", "yeah", "yep", "sure", "ok", "okay", "confirm", "correct"},
	language.HindiIN:   {"हां", "हाँ", "जी", "जी हां", "ठीक है", "haan", "han", "ji"},
	language.BengaliIN: {"হ্যাঁ", "হা", "ঠিক আছে", "আচ্ছা"},
	language.TamilIN:   {"ஆம்", "ஆமாம்", "சரி"},
	language.TeluguIN:  {"అవును", "సరే"},
	language.MarathiIN: {"हो", "होय", "ठीक आहे", "चालेल"},
}

var noWords = map[string][]string{
	language.EnglishUS: {"no", "nope", "cancel", "stop", "never mind"},
	language.HindiIN:   {"नहीं", "ना", "रद्द", "nahi", "na"},
	language.BengaliIN: {"না", "বাতিল"},
	language.TamilIN:   {"இல்லை", "வேண்டாம்", "ரத்து"},
	language.TeluguIN:  {"కాదు", "వద్దు", "రద్దు"},
	language.MarathiIN: {"नाही", "नको", "रद्द"},
}

// langKey falls back to English for any table miss so feedback never comes
// back empty.
func langKey(lang string) string {
	if language.IsSupported(lang) {
		return lang
	}
	return language.EnglishUS
}

func routeName(lang, route string) string {
	if name, ok := routeNames[langKey(lang)][route]; ok {
		return name
	}
	return strings.TrimPrefix(route, "/")
}

func navMessage(lang, route string) string {
	return fmt.Sprintf(navAcks[langKey(lang)], routeName(lang, route))
}

func confirmPrompt(lang, route string) string {
	return fmt.Sprintf(confirmPrompts[langKey(lang)], routeName(lang, route))
}

func confirmRepeat(lang string) string {
	return confirmRepeats[langKey(lang)]
}

func cancelMessage(lang string) string {
	return cancelAcks[langKey(lang)]
}

func actionMessage(lang, intentName string) string {
	if msg, ok := actionAcks[langKey(lang)][intentName]; ok {
		return msg
	}
	return ""
}

func switchMessage(target string) string {
	return fmt.Sprintf(switchAcks[langKey(target)], language.DisplayName(target))
}

func alreadyUsingMessage(lang string) string {
	return fmt.Sprintf(alreadyUsingMsgs[langKey(lang)], language.DisplayName(lang))
}

func searchMessage(lang, query string) string {
	return fmt.Sprintf(searchAcks[langKey(lang)], query)
}

// parseConfirmation reads a yes or a no out of free-form input. The whole
// normalized input is compared first so multi-word entries like "जी हां"
// match, then single tokens are checked. Negatives are checked before
// affirmatives; "no okay" must cancel.
func parseConfirmation(input, lang string) (confirmed, recognized bool) {
	normalized := language.NormalizeText(input)
	if normalized == "" {
		return false, false
	}
	key := langKey(lang)

	for _, w := range noWords[key] {
		if normalized == language.NormalizeText(w) {
			return false, true
		}
	}
	for _, w := range yesWords[key] {
		if normalized == language.NormalizeText(w) {
			return true, true
		}
	}

	tokens := strings.Fields(normalized)
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	for _, w := range noWords[key] {
		if _, ok := set[language.NormalizeText(w)]; ok {
			return false, true
		}
	}
	for _, w := range yesWords[key] {
		if _, ok := set[language.NormalizeText(w)]; ok {
			return true, true
		}
	}
	return false, false
}
