package core

import "errors"

// Error taxonomy shared by every service. Callers test with errors.Is; services
// wrap these with context using fmt.Errorf("%w: ...").
var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicateResource = errors.New("duplicate resource")
	ErrForbidden         = errors.New("forbidden")
	ErrInvalidRequest    = errors.New("invalid request")
	ErrUnauthorized      = errors.New("unauthorized")
)

// ErrorKind classifies an error into the domain taxonomy.
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindNotFound
	KindDuplicateResource
	KindForbidden
	KindInvalidRequest
	KindUnauthorized
)

func (k ErrorKind) String() string {
	switch k {
	case KindNotFound:
		return "Not Found"
	case KindDuplicateResource:
		return "Conflict"
	case KindForbidden:
		return "Forbidden"
	case KindInvalidRequest:
		return "Bad Request"
	case KindUnauthorized:
		return "Unauthorized"
	default:
		return "Internal Server Error"
	}
}

// KindOf returns the taxonomy kind of err, or KindInternal when err does not
// wrap any of the domain sentinels.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindInternal
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrDuplicateResource):
		return KindDuplicateResource
	case errors.Is(err, ErrForbidden):
		return KindForbidden
	case errors.Is(err, ErrInvalidRequest):
		return KindInvalidRequest
	case errors.Is(err, ErrUnauthorized):
		return KindUnauthorized
	default:
		return KindInternal
	}
}
