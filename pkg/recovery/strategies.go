package recovery

import (
	"time"

	"github.com/sirupsen/logrus"

	"KalaVaani/pkg/language"
)

// Action is what the caller should do next after a failure.
type Action string

const (
	ActionRetry       Action = "retry"
	ActionManualInput Action = "manual_input"
	ActionHelp        Action = "help"
	ActionCancel      Action = "cancel"
)

// Strategy is the fixed recovery plan for one error kind.
type Strategy struct {
	Action        Action        `json:"action"`
	AudioFeedback bool          `json:"audio_feedback"`
	MaxRetries    int           `json:"max_retries"`
	RetryAfter    time.Duration `json:"retry_after"`
}

// Context carries the situation an error occurred in, for logging and for
// localizing the user message.
type Context struct {
	SessionID string            `json:"session_id,omitempty"`
	UserID    string            `json:"user_id,omitempty"`
	Language  string            `json:"language,omitempty"`
	Data      map[string]string `json:"data,omitempty"`
}

// Result is the well-formed answer HandleError always produces, whatever
// went wrong underneath.
type Result struct {
	Success       bool          `json:"success"`
	Kind          Kind          `json:"kind,omitempty"`
	Action        Action        `json:"action"`
	Message       string        `json:"message"`
	AudioFeedback string        `json:"audio_feedback,omitempty"`
	ShouldRetry   bool          `json:"should_retry"`
	RetryAfter    time.Duration `json:"retry_after,omitempty"`
}

type IHandler interface {
	Strategy(kind Kind) Strategy
	Localize(kind Kind, lang string) string
	HandleError(err error, ec Context) Result
}

type handler struct {
	log *logrus.Logger
}

func NewHandler(log *logrus.Logger) IHandler {
	return &handler{log: log}
}

// genericStrategy handles every kind the table does not know. Cancelling is
// the only plan that needs no working capability.
var genericStrategy = Strategy{Action: ActionCancel}

var strategies = map[Kind]Strategy{
	KindCaptureAccessDenied:  {Action: ActionManualInput, AudioFeedback: true},
	KindCaptureNotFound:      {Action: ActionManualInput, AudioFeedback: true},
	KindSpeechNotRecognized:  {Action: ActionRetry, AudioFeedback: true, MaxRetries: 2},
	KindIntentNotRecognized:  {Action: ActionHelp, AudioFeedback: true, MaxRetries: 1},
	KindLanguageNotSupported: {Action: ActionHelp, AudioFeedback: true},
	KindNetworkError:         {Action: ActionRetry, AudioFeedback: true, MaxRetries: 3, RetryAfter: 2 * time.Second},
	KindServiceUnavailable:   {Action: ActionRetry, AudioFeedback: true, MaxRetries: 2, RetryAfter: 5 * time.Second},
	KindRouteNotFound:        {Action: ActionHelp, AudioFeedback: true, MaxRetries: 1},
	KindAuthenticationFailed: {Action: ActionCancel},
	KindQuotaExceeded:        {Action: ActionCancel, AudioFeedback: true, RetryAfter: time.Minute},
	KindBrowserNotSupported:  {Action: ActionManualInput},
	KindInitializationFailed: {Action: ActionRetry, AudioFeedback: true, MaxRetries: 1, RetryAfter: time.Second},
}

func (h *handler) Strategy(kind Kind) Strategy {
	if s, ok := strategies[kind]; ok {
		return s
	}
	return genericStrategy
}

func (h *handler) HandleError(err error, ec Context) Result {
	kind := Classify(err)
	strategy := h.Strategy(kind)
	message := h.Localize(kind, ec.Language)

	fields := logrus.Fields{
		"error_kind": string(kind),
		"action":     string(strategy.Action),
	}
	if ec.SessionID != "" {
		fields["session_id"] = ec.SessionID
	}
	if ec.UserID != "" {
		fields["user_id"] = ec.UserID
	}
	if ec.Language != "" {
		fields["language"] = ec.Language
	}
	for k, v := range ec.Data {
		fields["ctx_"+k] = v
	}
	if kind == "" {
		fields["error_kind"] = "unclassified"
	}
	h.log.WithFields(fields).WithError(err).Warn("voice command recovery")

	result := Result{
		Success:     true,
		Kind:        kind,
		Action:      strategy.Action,
		Message:     message,
		ShouldRetry: strategy.MaxRetries > 0,
		RetryAfter:  strategy.RetryAfter,
	}
	if strategy.AudioFeedback {
		result.AudioFeedback = message
	}
	return result
}

// Localize returns the user message for a kind in the given language,
// falling back to English, then to the generic cancellation text.
func (h *handler) Localize(kind Kind, lang string) string {
	if !language.IsSupported(lang) {
		lang = language.EnglishUS
	}
	table := messages[lang]
	if msg, ok := table[kind]; ok {
		return msg
	}
	if msg, ok := messages[language.EnglishUS][kind]; ok {
		return msg
	}
	return table[genericKey]
}

// genericKey indexes the catch-all message inside each language table.
const genericKey = Kind("generic")

var messages = map[string]map[Kind]string{
	language.EnglishUS: {
		KindCaptureAccessDenied:  "Microphone access was denied. You can type your command instead.",
		KindCaptureNotFound:      "No microphone was found on this device. Please type your command.",
		KindSpeechNotRecognized:  "I did not catch that. Please say it again.",
		KindIntentNotRecognized:  "I did not understand that command. Say help to hear what you can ask.",
		KindLanguageNotSupported: "That language is not supported yet.",
		KindNetworkError:         "The network is unreachable. Switching to offline commands.",
		KindServiceUnavailable:   "The voice service is not responding right now. Please try again shortly.",
		KindRouteNotFound:        "I could not find that page.",
		KindAuthenticationFailed: "Please sign in again to keep using voice commands.",
		KindQuotaExceeded:        "The voice service limit has been reached. Please try again later.",
		KindBrowserNotSupported:  "Voice control is not supported on this device. Please use the keyboard.",
		KindInitializationFailed: "The voice assistant could not start. Trying again.",
		genericKey:               "Something went wrong, so the action was cancelled.",
	},
	language.HindiIN: {
		KindCaptureAccessDenied:  "माइक्रोफ़ोन की अनुमति नहीं मिली। आप अपना आदेश टाइप कर सकते हैं।",
		KindCaptureNotFound:      "इस डिवाइस पर कोई माइक्रोफ़ोन नहीं मिला। कृपया अपना आदेश टाइप करें।",
		KindSpeechNotRecognized:  "मैं समझ नहीं पाई। कृपया फिर से बोलें।",
		KindIntentNotRecognized:  "यह आदेश समझ नहीं आया। मदद सुनने के लिए मदद बोलें।",
		KindLanguageNotSupported: "यह भाषा अभी उपलब्ध नहीं है।",
		KindNetworkError:         "नेटवर्क नहीं मिल रहा है। ऑफ़लाइन आदेशों पर जा रहे हैं।",
		KindServiceUnavailable:   "वॉयस सेवा अभी जवाब नहीं दे रही है। कृपया थोड़ी देर बाद कोशिश करें।",
		KindRouteNotFound:        "वह पेज नहीं मिला।",
		KindAuthenticationFailed: "वॉयस आदेश जारी रखने के लिए कृपया फिर से साइन इन करें।",
		KindQuotaExceeded:        "वॉयस सेवा की सीमा पूरी हो गई है। कृपया बाद में कोशिश करें।",
		KindBrowserNotSupported:  "इस डिवाइस पर वॉयस नियंत्रण उपलब्ध नहीं है। कृपया कीबोर्ड का उपयोग करें।",
		KindInitializationFailed: "वॉयस सहायक शुरू नहीं हो सका। फिर से कोशिश हो रही है।",
		genericKey:               "कुछ गड़बड़ हो गई, इसलिए कार्रवाई रद्द कर दी गई।",
	},
	language.BengaliIN: {
		KindCaptureAccessDenied:  "মাইক্রোফোনের অনুমতি পাওয়া যায়নি। আপনি আপনার নির্দেশ টাইপ করতে পারেন।",
		KindCaptureNotFound:      "এই ডিভাইসে কোনো মাইক্রোফোন পাওয়া যায়নি। অনুগ্রহ করে নির্দেশ টাইপ করুন।",
		KindSpeechNotRecognized:  "আমি বুঝতে পারিনি। আবার বলুন।",
		KindIntentNotRecognized:  "এই নির্দেশ বোঝা যায়নি। কী বলা যায় জানতে সাহায্য বলুন।",
		KindLanguageNotSupported: "এই ভাষা এখনো সমর্থিত নয়।",
		KindNetworkError:         "নেটওয়ার্ক পাওয়া যাচ্ছে না। অফলাইন নির্দেশে যাওয়া হচ্ছে।",
		KindServiceUnavailable:   "ভয়েস পরিষেবা এখন সাড়া দিচ্ছে না। একটু পরে চেষ্টা করুন।",
		KindRouteNotFound:        "সেই পাতা খুঁজে পাওয়া যায়নি।",
		KindAuthenticationFailed: "ভয়েস নির্দেশ চালিয়ে যেতে আবার সাইন ইন করুন।",
		KindQuotaExceeded:        "ভয়েস পরিষেবার সীমা শেষ। পরে আবার চেষ্টা করুন।",
		KindBrowserNotSupported:  "এই ডিভাইসে ভয়েস নিয়ন্ত্রণ সমর্থিত নয়। কীবোর্ড ব্যবহার করুন।",
		KindInitializationFailed: "ভয়েস সহায়ক চালু হতে পারেনি। আবার চেষ্টা হচ্ছে।",
		genericKey:               "কিছু ভুল হয়েছে, তাই কাজটি বাতিল করা হয়েছে।",
	},
	language.TamilIN: {
		KindCaptureAccessDenied:  "மைக்ரோஃபோன் அனுமதி மறுக்கப்பட்டது. உங்கள் கட்டளையை தட்டச்சு செய்யலாம்.",
		KindCaptureNotFound:      "இந்த சாதனத்தில் மைக்ரோஃபோன் இல்லை. கட்டளையை தட்டச்சு செய்யவும்.",
		KindSpeechNotRecognized:  "எனக்கு புரியவில்லை. மீண்டும் சொல்லுங்கள்.",
		KindIntentNotRecognized:  "இந்த கட்டளை புரியவில்லை. என்ன கேட்கலாம் என அறிய உதவி என்று சொல்லுங்கள்.",
		KindLanguageNotSupported: "இந்த மொழி இன்னும் ஆதரிக்கப்படவில்லை.",
		KindNetworkError:         "நெட்வொர்க் கிடைக்கவில்லை. ஆஃப்லைன் கட்டளைகளுக்கு மாறுகிறது.",
		KindServiceUnavailable:   "குரல் சேவை இப்போது பதில் தரவில்லை. சிறிது நேரம் கழித்து முயற்சிக்கவும்.",
		KindRouteNotFound:        "அந்த பக்கம் கிடைக்கவில்லை.",
		KindAuthenticationFailed: "குரல் கட்டளைகளை தொடர மீண்டும் உள்நுழையவும்.",
		KindQuotaExceeded:        "குரல் சேவை வரம்பு முடிந்தது. பிறகு முயற்சிக்கவும்.",
		KindBrowserNotSupported:  "இந்த சாதனத்தில் குரல் கட்டுப்பாடு இல்லை. கீபோர்டை பயன்படுத்தவும்.",
		KindInitializationFailed: "குரல் உதவியாளர் தொடங்க முடியவில்லை. மீண்டும் முயற்சிக்கிறது.",
		genericKey:               "ஏதோ தவறு நடந்தது, எனவே செயல் ரத்து செய்யப்பட்டது.",
	},
	language.TeluguIN: {
		KindCaptureAccessDenied:  "మైక్రోఫోన్ అనుమతి లభించలేదు. మీ ఆదేశాన్ని టైప్ చేయవచ్చు.",
		KindCaptureNotFound:      "ఈ పరికరంలో మైక్రోఫోన్ కనబడలేదు. దయచేసి ఆదేశాన్ని టైప్ చేయండి.",
		KindSpeechNotRecognized:  "నాకు అర్థం కాలేదు. మళ్ళీ చెప్పండి.",
		KindIntentNotRecognized:  "ఈ ఆదేశం అర్థం కాలేదు. ఏమి అడగవచ్చో తెలుసుకోవడానికి సహాయం అనండి.",
		KindLanguageNotSupported: "ఈ భాష ఇంకా అందుబాటులో లేదు.",
		KindNetworkError:         "నెట్‌వర్క్ అందుబాటులో లేదు. ఆఫ్‌లైన్ ఆదేశాలకు మారుతోంది.",
		KindServiceUnavailable:   "వాయిస్ సేవ ఇప్పుడు స్పందించడం లేదు. కాసేపటి తర్వాత ప్రయత్నించండి.",
		KindRouteNotFound:        "ఆ పేజీ కనబడలేదు.",
		KindAuthenticationFailed: "వాయిస్ ఆదేశాలు కొనసాగించడానికి మళ్ళీ సైన్ ఇన్ చేయండి.",
		KindQuotaExceeded:        "వాయిస్ సేవ పరిమితి ముగిసింది. తర్వాత ప్రయత్నించండి.",
		KindBrowserNotSupported:  "ఈ పరికరంలో వాయిస్ నియంత్రణ లేదు. కీబోర్డ్ వాడండి.",
		KindInitializationFailed: "వాయిస్ సహాయకుడు ప్రారంభం కాలేదు. మళ్ళీ ప్రయత్నిస్తోంది.",
		genericKey:               "ఏదో తప్పు జరిగింది, కాబట్టి చర్య రద్దు చేయబడింది.",
	},
	language.MarathiIN: {
		KindCaptureAccessDenied:  "मायक्रोफोनची परवानगी मिळाली नाही. तुम्ही तुमची आज्ञा टाइप करू शकता.",
		KindCaptureNotFound:      "या डिव्हाइसवर मायक्रोफोन सापडला नाही. कृपया आज्ञा टाइप करा.",
		KindSpeechNotRecognized:  "मला समजले नाही. पुन्हा सांगा.",
		KindIntentNotRecognized:  "ही आज्ञा समजली नाही. काय विचारता येईल हे ऐकण्यासाठी मदत म्हणा.",
		KindLanguageNotSupported: "ही भाषा अजून उपलब्ध नाही.",
		KindNetworkError:         "नेटवर्क मिळत नाही. ऑफलाइन आज्ञांकडे जात आहे.",
		KindServiceUnavailable:   "व्हॉइस सेवा सध्या प्रतिसाद देत नाही. थोड्या वेळाने प्रयत्न करा.",
		KindRouteNotFound:        "ते पान सापडले नाही.",
		KindAuthenticationFailed: "व्हॉइस आज्ञा चालू ठेवण्यासाठी पुन्हा साइन इन करा.",
		KindQuotaExceeded:        "व्हॉइस सेवेची मर्यादा संपली आहे. नंतर प्रयत्न करा.",
		KindBrowserNotSupported:  "या डिव्हाइसवर व्हॉइस नियंत्रण उपलब्ध नाही. कृपया कीबोर्ड वापरा.",
		KindInitializationFailed: "व्हॉइस सहाय्यक सुरू होऊ शकला नाही. पुन्हा प्रयत्न होत आहे.",
		genericKey:               "काहीतरी चूक झाली, म्हणून कृती रद्द केली.",
	},
}
