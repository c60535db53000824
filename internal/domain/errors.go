package domain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed generation
type ErrorKind int

const (
	KindUnexpected ErrorKind = iota
	KindMissingCredential
	KindMissingPrompt
	KindTransport
	KindMalformedResponse
)

func (k ErrorKind) String() string {
	switch k {
	case KindMissingCredential:
		return "missing_credential"
	case KindMissingPrompt:
		return "missing_prompt"
	case KindTransport:
		return "transport"
	case KindMalformedResponse:
		return "malformed_response"
	default:
		return "unexpected"
	}
}

// GenerationError is a failure that carries its own user-facing diagnostic.
// Detail holds the transport diagnostic or the raw response body.
type GenerationError struct {
	Kind   ErrorKind
	Detail string
	Err    error
}

var (
	ErrMissingCredential = &GenerationError{Kind: KindMissingCredential}
	ErrMissingPrompt     = &GenerationError{Kind: KindMissingPrompt}
)

// NewTransportError wraps a failure of the outbound call itself
func NewTransportError(err error) *GenerationError {
	return &GenerationError{Kind: KindTransport, Detail: err.Error(), Err: err}
}

// NewMalformedResponseError reports a response without predictions
func NewMalformedResponseError(body []byte) *GenerationError {
	return &GenerationError{Kind: KindMalformedResponse, Detail: string(body)}
}

func (e *GenerationError) Error() string {
	switch e.Kind {
	case KindMissingCredential:
		return "Error: Missing GEMINI_API_KEY"
	case KindMissingPrompt:
		return "Error: No prompt provided"
	case KindTransport:
		return fmt.Sprintf("Error calling Gemini: %s", e.Detail)
	case KindMalformedResponse:
		return fmt.Sprintf("Error: No predictions in Gemini response: %s", e.Detail)
	default:
		if e.Err != nil {
			return fmt.Sprintf("Unexpected error: %v", e.Err)
		}
		return fmt.Sprintf("Unexpected error: %s", e.Detail)
	}
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// Is matches another GenerationError of the same kind, so the sentinels work
// with errors.Is.
func (e *GenerationError) Is(target error) bool {
	t, ok := target.(*GenerationError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of the first GenerationError in err's chain
func KindOf(err error) ErrorKind {
	var ge *GenerationError
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return KindUnexpected
}

// Diagnostic renders err as the single line printed before exiting with status 1
func Diagnostic(err error) string {
	var ge *GenerationError
	if errors.As(err, &ge) {
		return ge.Error()
	}
	return fmt.Sprintf("Unexpected error: %v", err)
}
