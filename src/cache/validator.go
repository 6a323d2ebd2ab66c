package cache

import "strings"

// Validate checks an order's fields in a fixed order and reports the first
// failure. It does not check that the id fits a slot; see ParseSlot.
func Validate(o Order) error {
	if o.orderID == "" {
		return &ValidationError{Kind: EmptyOrderID}
	}
	if !hasOrderIDShape(o.orderID) {
		return &ValidationError{Kind: InvalidOrderIDFormat}
	}
	if o.securityID == "" {
		return &ValidationError{Kind: EmptySecurityID}
	}
	if o.user == "" {
		return &ValidationError{Kind: EmptyUser}
	}
	if o.company == "" {
		return &ValidationError{Kind: EmptyCompany}
	}
	if !o.side.Valid() {
		return &ValidationError{Kind: InvalidSide}
	}
	if o.qty == 0 {
		return &ValidationError{Kind: ZeroQuantity}
	}
	return nil
}

// hasOrderIDShape accepts the prefix followed only by digits. A bare prefix
// passes here and is rejected later by ParseSlot.
func hasOrderIDShape(id string) bool {
	if !strings.HasPrefix(id, OrderIDPrefix) {
		return false
	}
	return isDigits(id[len(OrderIDPrefix):])
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
