package clierr

import "errors"

// Type categorizes a CLI-facing error for consistent messaging & exit codes.
type Type string

const (
	Validation   Type = "validation"
	NotFound     Type = "not_found"
	Unauthorized Type = "unauthorized"
	Network      Type = "network"
	Server       Type = "server"
	Internal     Type = "internal"
)

var exitCodes = map[Type]int{
	Validation:   2,
	NotFound:     3,
	Unauthorized: 4,
	Network:      5,
	Server:       6,
	Internal:     1,
}

// Error is a structured user-facing error.
type Error struct {
	Type    Type
	Message string
	Err     error // optional underlying error
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Unwrap() error { return e.Err }

// New constructs a new CLI Error.
func New(t Type, msg string, err error) *Error { return &Error{Type: t, Message: msg, Err: err} }

// ExitCode maps err to a process exit status. Errors that are not an *Error
// exit with 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var cliErr *Error
	if errors.As(err, &cliErr) {
		if code, ok := exitCodes[cliErr.Type]; ok {
			return code
		}
	}
	return 1
}
