package domain

import "errors"

type Kind int

const (
	KindUnknown Kind = iota
	KindMetadata
	KindDownload
	KindParse
	KindTranscriptionAPI
	KindEmptyResult
	KindSend
)

func (k Kind) String() string {
	switch k {
	case KindMetadata:
		return "metadata"
	case KindDownload:
		return "download"
	case KindParse:
		return "parse"
	case KindTranscriptionAPI:
		return "transcription_api"
	case KindEmptyResult:
		return "empty_result"
	case KindSend:
		return "send"
	default:
		return "unknown"
	}
}

// Error is returned by every outbound call of the relay. Detail is the
// text shown to the chat user as debug info.
type Error struct {
	Kind   Kind
	Detail string
	Err    error
}

func NewError(kind Kind, detail string, err error) *Error {
	return &Error{Kind: kind, Detail: detail, Err: err}
}

func (e *Error) Error() string {
	return e.Detail
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindUnknown
}

// Detail returns the user-facing detail of err, falling back to err.Error().
func Detail(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Detail
	}
	return err.Error()
}
