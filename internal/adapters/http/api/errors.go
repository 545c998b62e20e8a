package api

import (
	"errors"
	"net/http"

	"github.com/AutomateThePlanet/atom-evaluate/internal/adapters/repository"
	"github.com/AutomateThePlanet/atom-evaluate/internal/adapters/storage"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest = errors.New("bad request")
	ErrEncode     = errors.New("encode response failed")
)

// opError scopes an error to the handler operation that produced it. Kind is
// the sentinel used for status mapping; err carries the detail.
type opError struct {
	op   string
	kind error
	err  error
}

func (e *opError) Error() string {
	return e.op + ": " + e.message()
}

// message is the client facing text, without the operation prefix.
func (e *opError) message() string {
	switch {
	case e.kind != nil && e.err != nil:
		return e.kind.Error() + ": " + e.err.Error()
	case e.kind != nil:
		return e.kind.Error()
	case e.err != nil:
		return e.err.Error()
	default:
		return "unknown error"
	}
}

func (e *opError) Unwrap() []error {
	out := make([]error, 0, 2)
	if e.kind != nil {
		out = append(out, e.kind)
	}
	if e.err != nil {
		out = append(out, e.err)
	}
	return out
}

// Wrap scopes err to op. A nil err stays nil.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &opError{op: op, err: err}
}

// WrapKind scopes err to op and tags it with kind.
func WrapKind(op string, kind, err error) error {
	return &opError{op: op, kind: kind, err: err}
}

// NewKind returns an error of the given kind scoped to op.
func NewKind(op string, kind error) error {
	return &opError{op: op, kind: kind}
}

// publicMessage strips the operation prefix added by Wrap.
func publicMessage(err error) string {
	var oe *opError
	if errors.As(err, &oe) {
		return oe.message()
	}
	return err.Error()
}

// statusFor maps service errors to an HTTP status and an error code.
func statusFor(err error) (int, string) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, "too_large"
	case errors.Is(err, repository.ErrCompanyNotFound),
		errors.Is(err, repository.ErrCriterionNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, repository.ErrCriterionDisabled),
		errors.Is(err, repository.ErrDuplicateID):
		return http.StatusConflict, "conflict"
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, repository.ErrInvalidCriterion),
		errors.Is(err, repository.ErrInvalidName),
		errors.Is(err, repository.ErrInvalidDocument),
		errors.Is(err, storage.ErrParse),
		errors.Is(err, storage.ErrUnsupportedVersion),
		errors.Is(err, storage.ErrUnknownFormat):
		return http.StatusBadRequest, "bad_request"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
