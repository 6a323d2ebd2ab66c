package cache

import (
	"errors"
	"strconv"
)

var (
	ErrInvalidOrder   = errors.New("invalid order")
	ErrInvalidOrderID = errors.New("invalid order id")
)

type ValidationErrorKind int

const (
	EmptyOrderID ValidationErrorKind = iota
	InvalidOrderIDFormat
	EmptySecurityID
	EmptyUser
	EmptyCompany
	InvalidSide
	ZeroQuantity
)

func (k ValidationErrorKind) String() string {
	switch k {
	case EmptyOrderID:
		return "Empty order ID"
	case InvalidOrderIDFormat:
		return "Expected order ID format " + strconv.Quote(OrderIDPrefix+"123")
	case EmptySecurityID:
		return "Empty security ID"
	case EmptyUser:
		return "Empty user"
	case EmptyCompany:
		return "Empty company"
	case InvalidSide:
		return "Invalid side"
	case ZeroQuantity:
		return "Zero quantity"
	default:
		return "Unknown error"
	}
}

type ValidationError struct {
	Kind ValidationErrorKind
}

func (e *ValidationError) Error() string {
	return e.Kind.String()
}

// InvalidOrderIDError reports an order id that does not map to a storage slot.
type InvalidOrderIDError struct {
	OrderID string
}

func (e *InvalidOrderIDError) Error() string {
	return "Failed to parse order ID value : " + e.OrderID
}

func (e *InvalidOrderIDError) Is(target error) bool {
	return target == ErrInvalidOrderID
}

// InvalidOrderError is returned by AddOrder. Cause is either a
// *ValidationError or an *InvalidOrderIDError.
type InvalidOrderError struct {
	OrderID string
	Cause   error
}

func (e *InvalidOrderError) Error() string {
	return "Invalid order : " + e.Cause.Error()
}

func (e *InvalidOrderError) Is(target error) bool {
	return target == ErrInvalidOrder
}

func (e *InvalidOrderError) Unwrap() error {
	return e.Cause
}
