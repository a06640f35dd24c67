package recovery

import (
	"context"
	"errors"
	"fmt"
)

// Kind enumerates every error class the engine recognizes. Anything else is
// handled through the generic cancel strategy.
type Kind string

const (
	KindCaptureAccessDenied  Kind = "capture-access-denied"
	KindCaptureNotFound      Kind = "capture-not-found"
	KindSpeechNotRecognized  Kind = "speech-not-recognized"
	KindIntentNotRecognized  Kind = "intent-not-recognized"
	KindLanguageNotSupported Kind = "language-not-supported"
	KindNetworkError         Kind = "network-error"
	KindServiceUnavailable   Kind = "service-unavailable"
	KindRouteNotFound        Kind = "route-not-found"
	KindAuthenticationFailed Kind = "authentication-failed"
	KindQuotaExceeded        Kind = "quota-exceeded"
	KindBrowserNotSupported  Kind = "browser-not-supported"
	KindInitializationFailed Kind = "initialization-failed"
)

// Kinds returns every known error kind in declaration order.
func Kinds() []Kind {
	return []Kind{
		KindCaptureAccessDenied,
		KindCaptureNotFound,
		KindSpeechNotRecognized,
		KindIntentNotRecognized,
		KindLanguageNotSupported,
		KindNetworkError,
		KindServiceUnavailable,
		KindRouteNotFound,
		KindAuthenticationFailed,
		KindQuotaExceeded,
		KindBrowserNotSupported,
		KindInitializationFailed,
	}
}

// Error tags an underlying error with its kind so it survives wrapping.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError wraps err with a kind. A nil err still produces a usable error
// carrying just the kind.
func NewError(kind Kind, err error) error {
	return &Error{Kind: kind, Err: err}
}

// Classify extracts the kind from an error chain. Deadline expiry without an
// explicit kind is treated as a network fault; anything unrecognized returns
// the empty kind and falls to the generic strategy.
func Classify(err error) Kind {
	if err == nil {
		return ""
	}

	var tagged *Error
	if errors.As(err, &tagged) {
		return tagged.Kind
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return KindNetworkError
	}
	return ""
}
