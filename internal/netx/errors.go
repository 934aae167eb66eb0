package netx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failed request.
type Kind int

const (
	// KindUnknown covers internal failures where no response could be obtained.
	KindUnknown Kind = iota
	// KindEncoding means the request body could not be serialized.
	KindEncoding
	// KindTransport means the request never produced an HTTP response
	// (DNS, refused or reset connection, timeout).
	KindTransport
	// KindHTTP is a non-2xx response whose body is not a structured API error.
	KindHTTP
	// KindAPI is a non-2xx response carrying a {code, error} body.
	KindAPI
)

func (k Kind) String() string {
	switch k {
	case KindEncoding:
		return "encoding"
	case KindTransport:
		return "transport"
	case KindHTTP:
		return "http"
	case KindAPI:
		return "api"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is matching against an *Error of the same Kind.
var (
	ErrUnknown   = errors.New("unknown networking error")
	ErrEncoding  = errors.New("request encoding failed")
	ErrTransport = errors.New("transport failure")
	ErrHTTP      = errors.New("unexpected http status")
	ErrAPI       = errors.New("api error")
)

func (k Kind) sentinel() error {
	switch k {
	case KindEncoding:
		return ErrEncoding
	case KindTransport:
		return ErrTransport
	case KindHTTP:
		return ErrHTTP
	case KindAPI:
		return ErrAPI
	default:
		return ErrUnknown
	}
}

// APIError is the error body returned by the auth backend.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"error"`
}

// decodeAPIError succeeds only when both keys are present as strings.
func decodeAPIError(raw []byte) (*APIError, bool) {
	var probe struct {
		Code    *string `json:"code"`
		Message *string `json:"error"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, false
	}
	if probe.Code == nil || probe.Message == nil {
		return nil, false
	}
	return &APIError{Code: *probe.Code, Message: *probe.Message}, true
}

// Error is the single error type returned by Client. Status, Header and Raw
// are set for KindHTTP and KindAPI; API only for KindAPI; Err holds the
// underlying cause for the other kinds.
type Error struct {
	Kind     Kind
	Method   string
	URL      string
	Status   int
	Header   http.Header
	Raw      []byte
	API      *APIError
	Err      error
	Attempts int
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindAPI:
		return fmt.Sprintf("api error: status %d, url %s, code %s: %s", e.Status, e.URL, e.API.Code, e.API.Message)
	case KindHTTP:
		return fmt.Sprintf("http error: status %d, url %s", e.Status, e.URL)
	case KindTransport:
		return fmt.Sprintf("transport error: %s %s: %v", e.Method, e.URL, e.Err)
	case KindEncoding:
		return fmt.Sprintf("encoding error: %v", e.Err)
	default:
		if e.Err != nil {
			return fmt.Sprintf("unknown error: %v", e.Err)
		}
		return "unknown error"
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the sentinel of e's Kind.
func (e *Error) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// AsError extracts an *Error from err's chain.
func AsError(err error) (*Error, bool) {
	var ne *Error
	if errors.As(err, &ne) {
		return ne, true
	}
	return nil, false
}

// Unknown returns err unchanged when it already carries an *Error, and
// otherwise wraps it as KindUnknown.
func Unknown(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := AsError(err); ok {
		return err
	}
	return &Error{Kind: KindUnknown, Err: err}
}

type errUnsupportedScheme string

func (e errUnsupportedScheme) Error() string {
	return fmt.Sprintf("unsupported url scheme %q", string(e))
}
