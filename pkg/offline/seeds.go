package offline

import (
	"KalaVaani/pkg/intent"
	"KalaVaani/pkg/language"
)

type seed struct {
	Pattern    string
	Intent     string
	Route      string
	Language   string
	Confidence float64
}

// defaultSeeds lists the core navigation commands cached for every language.
// Only routed commands are seeded; the point of the offline path is getting
// the user somewhere, not conversational coverage.
func defaultSeeds() []seed {
	type entry struct {
		pattern string
		intent  string
		route   string
	}
	perLanguage := map[string][]entry{
		language.EnglishUS: {
			{"go to dashboard", intent.NavigateDashboard, "/dashboard"},
			{"show marketplace", intent.NavigateMarketplace, "/marketplace"},
			{"open my profile", intent.NavigateProfile, "/profile"},
			{"show my orders", intent.NavigateOrders, "/orders"},
			{"show government schemes", intent.NavigateSchemes, "/schemes"},
			{"go home", intent.NavigateHome, "/"},
			{"help me", intent.NavigateHelp, "/help"},
		},
		language.HindiIN: {
			{"डैशबोर्ड खोलो", intent.NavigateDashboard, "/dashboard"},
			{"बाजार दिखाओ", intent.NavigateMarketplace, "/marketplace"},
			{"प्रोफाइल खोलो", intent.NavigateProfile, "/profile"},
			{"मेरे ऑर्डर दिखाओ", intent.NavigateOrders, "/orders"},
			{"योजनाएं दिखाओ", intent.NavigateSchemes, "/schemes"},
			{"घर जाओ", intent.NavigateHome, "/"},
			{"मदद चाहिए", intent.NavigateHelp, "/help"},
		},
		language.BengaliIN: {
			{"ড্যাশবোর্ড খোলো", intent.NavigateDashboard, "/dashboard"},
			{"বাজার দেখাও", intent.NavigateMarketplace, "/marketplace"},
			{"প্রোফাইল খোলো", intent.NavigateProfile, "/profile"},
			{"আমার অর্ডার দেখাও", intent.NavigateOrders, "/orders"},
			{"প্রকল্প দেখাও", intent.NavigateSchemes, "/schemes"},
			{"বাড়ি যাও", intent.NavigateHome, "/"},
			{"সাহায্য চাই", intent.NavigateHelp, "/help"},
		},
		language.TamilIN: {
			{"டாஷ்போர்டு திற", intent.NavigateDashboard, "/dashboard"},
			{"சந்தை காட்டு", intent.NavigateMarketplace, "/marketplace"},
			{"சுயவிவரம் திற", intent.NavigateProfile, "/profile"},
			{"என் ஆர்டர்கள் காட்டு", intent.NavigateOrders, "/orders"},
			{"திட்டங்கள் காட்டு", intent.NavigateSchemes, "/schemes"},
			{"முகப்புக்கு போ", intent.NavigateHome, "/"},
			{"உதவி வேண்டும்", intent.NavigateHelp, "/help"},
		},
		language.TeluguIN: {
			{"డాష్బోర్డ్ తెరువు", intent.NavigateDashboard, "/dashboard"},
			{"మార్కెట్ చూపించు", intent.NavigateMarketplace, "/marketplace"},
			{"ప్రొఫైల్ తెరువు", intent.NavigateProfile, "/profile"},
			{"నా ఆర్డర్లు చూపించు", intent.NavigateOrders, "/orders"},
			{"పథకాలు చూపించు", intent.NavigateSchemes, "/schemes"},
			{"హోమ్ కి వెళ్ళు", intent.NavigateHome, "/"},
			{"సహాయం కావాలి", intent.NavigateHelp, "/help"},
		},
		language.MarathiIN: {
			{"डॅशबोर्ड उघडा", intent.NavigateDashboard, "/dashboard"},
			{"बाजार दाखवा", intent.NavigateMarketplace, "/marketplace"},
			{"प्रोफाइल उघडा", intent.NavigateProfile, "/profile"},
			{"माझ्या ऑर्डर दाखवा", intent.NavigateOrders, "/orders"},
			{"योजना दाखवा", intent.NavigateSchemes, "/schemes"},
			{"घरी जा", intent.NavigateHome, "/"},
			{"मदत पाहिजे", intent.NavigateHelp, "/help"},
		},
	}

	var out []seed
	for _, lang := range language.Supported() {
		for _, e := range perLanguage[lang] {
			out = append(out, seed{
				Pattern:    e.pattern,
				Intent:     e.intent,
				Route:      e.route,
				Language:   lang,
				Confidence: 0.9,
			})
		}
	}
	return out
}
