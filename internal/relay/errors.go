package relay

// Kind classifies a request failure. Every kind renders into the same JSON
// failure envelope with HTTP 500; the classification feeds logs and tests.
type Kind string

const (
	KindConfig     Kind = "configuration"
	KindCrypto     Kind = "crypto"
	KindAuth       Kind = "auth"
	KindValidation Kind = "validation"
	KindSheets     Kind = "sheets_api"
	KindNetwork    Kind = "network"
)

// Error is a classified request failure with the message that goes into the
// failure envelope verbatim.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

func fail(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}
