package intent

import (
	"strings"

	"KalaVaani/pkg/language"
)

// intentRoutes is the static stage-two route lookup. Generic navigate,
// go_back, read_page and stop_listening intentionally have no entry.
var intentRoutes = map[string]string{
	NavigateDashboard:   "/dashboard",
	NavigateMarketplace: "/marketplace",
	NavigateProfile:     "/profile",
	NavigateSchemes:     "/schemes",
	NavigateOrders:      "/orders",
	NavigateSettings:    "/settings",
	NavigateHelp:        "/help",
	NavigateHome:        "/",
	SearchMarketplace:   "/marketplace",
}

// destinationRoutes is the stage-one lookup: spoken destination aliases per
// language. Keys are stored pre-normalized.
var destinationRoutes = map[string]map[string]string{
	language.EnglishUS: {
		"dashboard":          "/dashboard",
		"my dashboard":       "/dashboard",
		"marketplace":        "/marketplace",
		"market":             "/marketplace",
		"bazaar":             "/marketplace",
		"shop":               "/marketplace",
		"profile":            "/profile",
		"my profile":         "/profile",
		"schemes":            "/schemes",
		"government schemes": "/schemes",
		"orders":             "/orders",
		"my orders":          "/orders",
		"settings":           "/settings",
		"help":               "/help",
		"home":               "/",
		"main page":          "/",
	},
	language.HindiIN: {
		"डैशबोर्ड": "/dashboard",
		"बाजार":    "/marketplace",
		"बाज़ार":   "/marketplace",
		"मार्केट":  "/marketplace",
		"दुकान":    "/marketplace",
		"प्रोफाइल": "/profile",
		"योजना":    "/schemes",
		"योजनाएं":  "/schemes",
		"ऑर्डर":    "/orders",
		"आर्डर":    "/orders",
		"सेटिंग":   "/settings",
		"सेटिंग्स": "/settings",
		"मदद":      "/help",
		"सहायता":   "/help",
		"घर":       "/",
		"होम":      "/",
	},
	language.BengaliIN: {
		"ড্যাশবোর্ড": "/dashboard",
		"বাজার":      "/marketplace",
		"মার্কেট":    "/marketplace",
		"দোকান":      "/marketplace",
		"প্রোফাইল":   "/profile",
		"প্রকল্প":    "/schemes",
		"অর্ডার":     "/orders",
		"সেটিংস":     "/settings",
		"সাহায্য":    "/help",
		"বাড়ি":      "/",
		"হোম":        "/",
	},
	language.TamilIN: {
		"டாஷ்போர்டு": "/dashboard",
		"சந்தை":      "/marketplace",
		"மார்க்கெட்": "/marketplace",
		"கடை":        "/marketplace",
		"சுயவிவரம்":  "/profile",
		"திட்டங்கள்": "/schemes",
		"திட்டம்":    "/schemes",
		"ஆர்டர்":     "/orders",
		"ஆர்டர்கள்":  "/orders",
		"அமைப்புகள்": "/settings",
		"உதவி":       "/help",
		"முகப்பு":    "/",
		"ஹோம்":       "/",
	},
	language.TeluguIN: {
		"డాష్బోర్డ్":  "/dashboard",
		"మార్కెట్":    "/marketplace",
		"బజార్":       "/marketplace",
		"దుకాణం":      "/marketplace",
		"ప్రొఫైల్":    "/profile",
		"పథకాలు":      "/schemes",
		"పథకం":        "/schemes",
		"ఆర్డర్లు":    "/orders",
		"ఆర్డర్":      "/orders",
		"సెట్టింగ్స్": "/settings",
		"సహాయం":       "/help",
		"హోమ్":        "/",
		"ఇల్లు":       "/",
	},
	language.MarathiIN: {
		"डॅशबोर्ड": "/dashboard",
		"बाजार":    "/marketplace",
		"मार्केट":  "/marketplace",
		"दुकान":    "/marketplace",
		"प्रोफाइल": "/profile",
		"योजना":    "/schemes",
		"ऑर्डर":    "/orders",
		"सेटिंग्ज": "/settings",
		"मदत":      "/help",
		"घर":       "/",
		"होम":      "/",
	},
}

func destinationRoute(lang, dest string) (string, bool) {
	aliases, ok := destinationRoutes[lang]
	if !ok {
		return "", false
	}
	route, ok := aliases[language.NormalizeText(dest)]
	return route, ok
}

// defaultPatterns returns the built-in catalogue in registration order.
// Specific navigation intents come before the generic {destination} pattern
// so an exact phrase beats the free-form one on ties.
func defaultPatterns() []Pattern {
	var out []Pattern
	out = append(out, englishPatterns()...)
	out = append(out, hindiPatterns()...)
	out = append(out, bengaliPatterns()...)
	out = append(out, tamilPatterns()...)
	out = append(out, teluguPatterns()...)
	out = append(out, marathiPatterns()...)
	return out
}

func englishPatterns() []Pattern {
	lang := language.EnglishUS
	return []Pattern{
		{Intent: NavigateDashboard, Language: lang, Template: "go to dashboard", Variants: []string{"open dashboard", "show dashboard", "show me my dashboard", "dashboard"}, Register: RegisterInformal},
		{Intent: NavigateMarketplace, Language: lang, Template: "go to marketplace", Variants: []string{"open marketplace", "show marketplace", "open the market", "show me the bazaar"}, Register: RegisterInformal},
		{Intent: NavigateProfile, Language: lang, Template: "go to profile", Variants: []string{"open my profile", "show profile", "my profile"}, Register: RegisterInformal},
		{Intent: NavigateSchemes, Language: lang, Template: "go to schemes", Variants: []string{"show government schemes", "open schemes", "schemes for me"}, Register: RegisterFormal},
		{Intent: NavigateOrders, Language: lang, Template: "go to orders", Variants: []string{"show my orders", "open orders", "my orders"}, Register: RegisterInformal},
		{Intent: NavigateSettings, Language: lang, Template: "go to settings", Variants: []string{"open settings", "change settings"}, Register: RegisterFormal},
		{Intent: NavigateHelp, Language: lang, Template: "go to help", Variants: []string{"help me", "i need help", "open help"}, Register: RegisterInformal},
		{Intent: NavigateHome, Language: lang, Template: "go home", Variants: []string{"go to home", "take me home", "main page"}, Register: RegisterInformal},
		{Intent: GoBack, Language: lang, Template: "go back", Variants: []string{"take me back", "previous page", "back"}, Register: RegisterInformal},
		{Intent: SearchMarketplace, Language: lang, Template: "search for {query}", Variants: []string{"find {query}", "look for {query}"}, Register: RegisterInformal},
		{Intent: Navigate, Language: lang, Template: "go to {destination}", Variants: []string{"open {destination}", "show {destination}", "take me to {destination}"}, Register: RegisterInformal},
		{Intent: ReadPage, Language: lang, Template: "read this page", Variants: []string{"read aloud", "read it to me"}, Register: RegisterInformal},
		{Intent: StopListening, Language: lang, Template: "stop listening", Variants: []string{"stop voice", "be quiet"}, Register: RegisterInformal},
	}
}

func hindiPatterns() []Pattern {
	lang := language.HindiIN
	return []Pattern{
		{Intent: NavigateDashboard, Language: lang, Template: "डैशबोर्ड खोलो", Variants: []string{"डैशबोर्ड दिखाओ", "मेरा डैशबोर्ड", "डैशबोर्ड पर जाओ"}, Register: RegisterInformal},
		{Intent: NavigateMarketplace, Language: lang, Template: "बाजार खोलो", Variants: []string{"बाजार दिखाओ", "बाज़ार खोलो", "मार्केट खोलो", "बाजार पर जाओ"}, Register: RegisterInformal},
		{Intent: NavigateProfile, Language: lang, Template: "प्रोफाइल खोलो", Variants: []string{"मेरी प्रोफाइल दिखाओ", "प्रोफाइल दिखाओ"}, Register: RegisterInformal},
		{Intent: NavigateSchemes, Language: lang, Template: "योजनाएं दिखाओ", Variants: []string{"सरकारी योजना दिखाओ", "योजना खोलो"}, Register: RegisterFormal},
		{Intent: NavigateOrders, Language: lang, Template: "मेरे ऑर्डर दिखाओ", Variants: []string{"ऑर्डर खोलो", "आर्डर दिखाओ"}, Register: RegisterInformal},
		{Intent: NavigateSettings, Language: lang, Template: "सेटिंग खोलो", Variants: []string{"सेटिंग्स दिखाओ"}, Register: RegisterFormal},
		{Intent: NavigateHelp, Language: lang, Template: "मदद चाहिए", Variants: []string{"मदद करो", "सहायता चाहिए"}, Register: RegisterInformal},
		{Intent: NavigateHome, Language: lang, Template: "घर जाओ", Variants: []string{"होम खोलो", "मुख्य पृष्ठ दिखाओ"}, Register: RegisterInformal},
		{Intent: GoBack, Language: lang, Template: "वापस जाओ", Variants: []string{"पीछे जाओ", "वापस"}, Register: RegisterInformal},
		{Intent: SearchMarketplace, Language: lang, Template: "{query} खोजो", Variants: []string{"{query} ढूंढो"}, Register: RegisterInformal},
		{Intent: Navigate, Language: lang, Template: "{destination} खोलो", Variants: []string{"{destination} दिखाओ", "{destination} पर जाओ"}, Register: RegisterInformal},
		{Intent: ReadPage, Language: lang, Template: "पेज पढ़ो", Variants: []string{"पढ़कर सुनाओ"}, Register: RegisterInformal},
		{Intent: StopListening, Language: lang, Template: "सुनना बंद करो", Variants: []string{"बंद करो"}, Register: RegisterInformal},
	}
}

func bengaliPatterns() []Pattern {
	lang := language.BengaliIN
	return []Pattern{
		{Intent: NavigateDashboard, Language: lang, Template: "ড্যাশবোর্ড খোলো", Variants: []string{"ড্যাশবোর্ড দেখাও", "আমার ড্যাশবোর্ড"}, Register: RegisterInformal},
		{Intent: NavigateMarketplace, Language: lang, Template: "বাজার খোলো", Variants: []string{"বাজার দেখাও", "মার্কেট খোলো"}, Register: RegisterInformal},
		{Intent: NavigateProfile, Language: lang, Template: "প্রোফাইল খোলো", Variants: []string{"আমার প্রোফাইল দেখাও"}, Register: RegisterInformal},
		{Intent: NavigateSchemes, Language: lang, Template: "সরকারি প্রকল্প দেখাও", Variants: []string{"প্রকল্প খোলো"}, Register: RegisterFormal},
		{Intent: NavigateOrders, Language: lang, Template: "আমার অর্ডার দেখাও", Variants: []string{"অর্ডার খোলো"}, Register: RegisterInformal},
		{Intent: NavigateSettings, Language: lang, Template: "সেটিংস খোলো", Register: RegisterFormal},
		{Intent: NavigateHelp, Language: lang, Template: "সাহায্য চাই", Variants: []string{"সাহায্য করো"}, Register: RegisterInformal},
		{Intent: NavigateHome, Language: lang, Template: "বাড়ি যাও", Variants: []string{"হোম খোলো"}, Register: RegisterInformal},
		{Intent: GoBack, Language: lang, Template: "পিছনে যাও", Variants: []string{"ফিরে যাও"}, Register: RegisterInformal},
		{Intent: SearchMarketplace, Language: lang, Template: "{query} খোঁজো", Variants: []string{"{query} খুঁজে দাও"}, Register: RegisterInformal},
		{Intent: Navigate, Language: lang, Template: "{destination} খোলো", Variants: []string{"{destination} দেখাও"}, Register: RegisterInformal},
		{Intent: ReadPage, Language: lang, Template: "পাতা পড়ে শোনাও", Register: RegisterInformal},
		{Intent: StopListening, Language: lang, Template: "শোনা বন্ধ করো", Variants: []string{"বন্ধ করো"}, Register: RegisterInformal},
	}
}

func tamilPatterns() []Pattern {
	lang := language.TamilIN
	return []Pattern{
		{Intent: NavigateDashboard, Language: lang, Template: "டாஷ்போர்டு திற", Variants: []string{"டாஷ்போர்டு காட்டு", "என் டாஷ்போர்டு"}, Register: RegisterInformal},
		{Intent: NavigateMarketplace, Language: lang, Template: "சந்தை திற", Variants: []string{"சந்தையை காட்டு", "மார்க்கெட் திற"}, Register: RegisterInformal},
		{Intent: NavigateProfile, Language: lang, Template: "சுயவிவரம் திற", Variants: []string{"என் சுயவிவரம் காட்டு"}, Register: RegisterInformal},
		{Intent: NavigateSchemes, Language: lang, Template: "அரசு திட்டங்கள் காட்டு", Variants: []string{"திட்டங்கள் திற"}, Register: RegisterFormal},
		{Intent: NavigateOrders, Language: lang, Template: "என் ஆர்டர்கள் காட்டு", Variants: []string{"ஆர்டர் திற"}, Register: RegisterInformal},
		{Intent: NavigateSettings, Language: lang, Template: "அமைப்புகள் திற", Register: RegisterFormal},
		{Intent: NavigateHelp, Language: lang, Template: "உதவி வேண்டும்", Variants: []string{"உதவி செய்"}, Register: RegisterInformal},
		{Intent: NavigateHome, Language: lang, Template: "முகப்புக்கு போ", Variants: []string{"ஹோம் திற"}, Register: RegisterInformal},
		{Intent: GoBack, Language: lang, Template: "பின்னால் போ", Variants: []string{"திரும்பி போ"}, Register: RegisterInformal},
		{Intent: SearchMarketplace, Language: lang, Template: "{query} தேடு", Register: RegisterInformal},
		{Intent: Navigate, Language: lang, Template: "{destination} திற", Variants: []string{"{destination} காட்டு"}, Register: RegisterInformal},
		{Intent: ReadPage, Language: lang, Template: "பக்கத்தை படி", Register: RegisterInformal},
		{Intent: StopListening, Language: lang, Template: "கேட்பதை நிறுத்து", Variants: []string{"நிறுத்து"}, Register: RegisterInformal},
	}
}

func teluguPatterns() []Pattern {
	lang := language.TeluguIN
	return []Pattern{
		{Intent: NavigateDashboard, Language: lang, Template: "డాష్బోర్డ్ తెరువు", Variants: []string{"డాష్బోర్డ్ చూపించు", "నా డాష్బోర్డ్"}, Register: RegisterInformal},
		{Intent: NavigateMarketplace, Language: lang, Template: "మార్కెట్ తెరువు", Variants: []string{"బజార్ చూపించు", "మార్కెట్ చూపించు"}, Register: RegisterInformal},
		{Intent: NavigateProfile, Language: lang, Template: "ప్రొఫైల్ తెరువు", Variants: []string{"నా ప్రొఫైల్ చూపించు"}, Register: RegisterInformal},
		{Intent: NavigateSchemes, Language: lang, Template: "ప్రభుత్వ పథకాలు చూపించు", Variants: []string{"పథకాలు తెరువు"}, Register: RegisterFormal},
		{Intent: NavigateOrders, Language: lang, Template: "నా ఆర్డర్లు చూపించు", Variants: []string{"ఆర్డర్ తెరువు"}, Register: RegisterInformal},
		{Intent: NavigateSettings, Language: lang, Template: "సెట్టింగ్స్ తెరువు", Register: RegisterFormal},
		{Intent: NavigateHelp, Language: lang, Template: "సహాయం కావాలి", Variants: []string{"సహాయం చెయ్యి"}, Register: RegisterInformal},
		{Intent: NavigateHome, Language: lang, Template: "హోమ్ కి వెళ్ళు", Variants: []string{"హోమ్ తెరువు"}, Register: RegisterInformal},
		{Intent: GoBack, Language: lang, Template: "వెనక్కి వెళ్ళు", Variants: []string{"వెనుకకు వెళ్ళు"}, Register: RegisterInformal},
		{Intent: SearchMarketplace, Language: lang, Template: "{query} వెతుకు", Register: RegisterInformal},
		{Intent: Navigate, Language: lang, Template: "{destination} తెరువు", Variants: []string{"{destination} చూపించు"}, Register: RegisterInformal},
		{Intent: ReadPage, Language: lang, Template: "పేజీ చదువు", Register: RegisterInformal},
		{Intent: StopListening, Language: lang, Template: "వినడం ఆపు", Variants: []string{"ఆపు"}, Register: RegisterInformal},
	}
}

func marathiPatterns() []Pattern {
	lang := language.MarathiIN
	return []Pattern{
		{Intent: NavigateDashboard, Language: lang, Template: "डॅशबोर्ड उघडा", Variants: []string{"डॅशबोर्ड दाखवा", "माझा डॅशबोर्ड"}, Register: RegisterInformal},
		{Intent: NavigateMarketplace, Language: lang, Template: "बाजार उघडा", Variants: []string{"बाजार दाखवा", "मार्केट उघडा"}, Register: RegisterInformal},
		{Intent: NavigateProfile, Language: lang, Template: "प्रोफाइल उघडा", Variants: []string{"माझी प्रोफाइल दाखवा"}, Register: RegisterInformal},
		{Intent: NavigateSchemes, Language: lang, Template: "सरकारी योजना दाखवा", Variants: []string{"योजना उघडा"}, Register: RegisterFormal},
		{Intent: NavigateOrders, Language: lang, Template: "माझ्या ऑर्डर दाखवा", Variants: []string{"ऑर्डर उघडा"}, Register: RegisterInformal},
		{Intent: NavigateSettings, Language: lang, Template: "सेटिंग्ज उघडा", Register: RegisterFormal},
		{Intent: NavigateHelp, Language: lang, Template: "मदत पाहिजे", Variants: []string{"मदत करा"}, Register: RegisterInformal},
		{Intent: NavigateHome, Language: lang, Template: "घरी जा", Variants: []string{"होम उघडा"}, Register: RegisterInformal},
		{Intent: GoBack, Language: lang, Template: "मागे जा", Variants: []string{"परत जा"}, Register: RegisterInformal},
		{Intent: SearchMarketplace, Language: lang, Template: "{query} शोधा", Register: RegisterInformal},
		{Intent: Navigate, Language: lang, Template: "{destination} उघडा", Variants: []string{"{destination} दाखवा"}, Register: RegisterInformal},
		{Intent: ReadPage, Language: lang, Template: "पान वाचून दाखवा", Register: RegisterInformal},
		{Intent: StopListening, Language: lang, Template: "ऐकणे थांबवा", Variants: []string{"थांबवा"}, Register: RegisterInformal},
	}
}

type switchEntry struct {
	phrase string
	target string
}

type nameEntry struct {
	name   string
	target string
}

// Spoken language names per source language. Slices keep dictionary build
// order stable.
var switchNameTables = map[string][]nameEntry{
	language.EnglishUS: {
		{"english", language.EnglishUS},
		{"hindi", language.HindiIN},
		{"bengali", language.BengaliIN},
		{"bangla", language.BengaliIN},
		{"tamil", language.TamilIN},
		{"telugu", language.TeluguIN},
		{"marathi", language.MarathiIN},
	},
	language.HindiIN: {
		{"अंग्रेजी", language.EnglishUS},
		{"इंग्लिश", language.EnglishUS},
		{"हिंदी", language.HindiIN},
		{"बांग्ला", language.BengaliIN},
		{"बंगाली", language.BengaliIN},
		{"तमिल", language.TamilIN},
		{"तेलुगु", language.TeluguIN},
		{"मराठी", language.MarathiIN},
	},
	language.BengaliIN: {
		{"ইংরেজি", language.EnglishUS},
		{"হিন্দি", language.HindiIN},
		{"বাংলা", language.BengaliIN},
		{"তামিল", language.TamilIN},
		{"তেলুগু", language.TeluguIN},
		{"মারাঠি", language.MarathiIN},
	},
	language.TamilIN: {
		{"ஆங்கிலம்", language.EnglishUS},
		{"இந்தி", language.HindiIN},
		{"வங்காளம்", language.BengaliIN},
		{"தமிழ்", language.TamilIN},
		{"தெலுங்கு", language.TeluguIN},
		{"மராத்தி", language.MarathiIN},
	},
	language.TeluguIN: {
		{"ఇంగ్లీష్", language.EnglishUS},
		{"హిందీ", language.HindiIN},
		{"బెంగాలీ", language.BengaliIN},
		{"తమిళం", language.TamilIN},
		{"తెలుగు", language.TeluguIN},
		{"మరాఠీ", language.MarathiIN},
	},
	language.MarathiIN: {
		{"इंग्रजी", language.EnglishUS},
		{"हिंदी", language.HindiIN},
		{"बंगाली", language.BengaliIN},
		{"तमिळ", language.TamilIN},
		{"तेलुगू", language.TeluguIN},
		{"मराठी", language.MarathiIN},
	},
}

var switchTemplates = map[string][]string{
	language.EnglishUS: {
		"switch to {language}",
		"change language to {language}",
		"speak in {language}",
		"talk to me in {language}",
		"{language} me bolo",
		"{language} mein bolo",
	},
	language.HindiIN: {
		"{language} में बोलो",
		"{language} में बात करो",
		"भाषा बदलकर {language} करो",
		"{language} भाषा में बोलो",
	},
	language.BengaliIN: {
		"{language} ভাষায় বলো",
		"{language} তে বলো",
		"ভাষা বদলে {language} করো",
	},
	language.TamilIN: {
		"{language} இல் பேசு",
		"{language} மொழியில் பேசு",
		"மொழியை {language} ஆக மாற்று",
	},
	language.TeluguIN: {
		"{language} లో మాట్లాడు",
		"{language} భాషలో మాట్లాడు",
		"భాషను {language} కి మార్చు",
	},
	language.MarathiIN: {
		"{language} मध्ये बोला",
		"{language} भाषेत बोला",
		"भाषा {language} करा",
	},
}

func buildSwitchDictionaries() map[string][]switchEntry {
	out := make(map[string][]switchEntry, len(switchTemplates))
	for _, lang := range language.Supported() {
		for _, tmpl := range switchTemplates[lang] {
			for _, n := range switchNameTables[lang] {
				phrase := language.NormalizeText(strings.ReplaceAll(tmpl, "{language}", n.name))
				out[lang] = append(out[lang], switchEntry{phrase: phrase, target: n.target})
			}
		}
	}
	return out
}
