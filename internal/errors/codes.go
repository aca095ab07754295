// Package errors provides structured domain errors for the game core.
package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Level construction errors
	CodeValidation Code = "VALIDATION_FAILED"

	// Lookup errors
	CodeNotFound Code = "NOT_FOUND"

	// Gameplay errors
	CodeInvalidAction Code = "INVALID_ACTION"
	CodeTerminalState Code = "TERMINAL_STATE_VIOLATION"
	CodeInvalidState  Code = "INVALID_STATE"

	// Account errors
	CodeAccountFieldsRequired Code = "ACCOUNT_FIELDS_REQUIRED"
	CodeAccountExists         Code = "ACCOUNT_EXISTS"
	CodeAccountNotFound       Code = "ACCOUNT_NOT_FOUND"
	CodeAccountWrongPassword  Code = "ACCOUNT_WRONG_PASSWORD"
)

// Recoverable reports whether an error with this code leaves the session
// usable. Recoverable errors accompany a valid, already persisted state.
func (c Code) Recoverable() bool {
	switch c {
	case CodeInvalidAction, CodeTerminalState:
		return true
	default:
		return false
	}
}
