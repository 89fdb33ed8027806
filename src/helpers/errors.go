package helpers

import (
	"errors"
	"fmt"
)

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

type SpotObserverError struct {
	Message string
	Cause   error
}

func (e *SpotObserverError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *SpotObserverError) Unwrap() error {
	return e.Cause
}

// TransportError covers connectivity failures, timeouts and non-2xx responses.
type TransportError struct{ SpotObserverError }

// DecodeError covers malformed payloads and payloads failing their validity check.
type DecodeError struct{ SpotObserverError }

// RowParseError marks a single row whose value could not be used.
type RowParseError struct {
	SpotObserverError
	Index int
	Raw   string
}

type ConfigurationError struct{ SpotObserverError }
type DatabaseError struct{ SpotObserverError }

// -----------------------------------------------------------------------------
// Sentinels
// -----------------------------------------------------------------------------

var (
	ErrNoSnapshot    = errors.New("no snapshot available")
	ErrNoRows        = errors.New("no rows in range")
	ErrUnknownSource = errors.New("unknown source")
	ErrInvalidRegime = errors.New("invalid VAT regime")
)

// -----------------------------------------------------------------------------
// Constructors
// -----------------------------------------------------------------------------

func NewTransportError(message string, cause error) error {
	return &TransportError{SpotObserverError{Message: message, Cause: cause}}
}

func NewDecodeError(message string, cause error) error {
	return &DecodeError{SpotObserverError{Message: message, Cause: cause}}
}

func NewRowParseError(index int, raw string) error {
	return &RowParseError{
		SpotObserverError: SpotObserverError{Message: fmt.Sprintf("row %d: unparsable value %q", index, raw)},
		Index:             index,
		Raw:               raw,
	}
}

func NewConfigurationError(message string, cause error) error {
	return &ConfigurationError{SpotObserverError{Message: message, Cause: cause}}
}

func NewDatabaseError(message string, cause error) error {
	return &DatabaseError{SpotObserverError{Message: message, Cause: cause}}
}

// -----------------------------------------------------------------------------
// Classification
// -----------------------------------------------------------------------------

func IsTransport(err error) bool {
	var target *TransportError
	return errors.As(err, &target)
}

func IsDecode(err error) bool {
	var target *DecodeError
	return errors.As(err, &target)
}

func IsRowParse(err error) bool {
	var target *RowParseError
	return errors.As(err, &target)
}

// Kind returns a short label for logs and status surfaces.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case IsTransport(err):
		return "transport"
	case IsDecode(err):
		return "decode"
	case IsRowParse(err):
		return "row_parse"
	default:
		return "internal"
	}
}
