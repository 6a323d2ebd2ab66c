package cache

import (
	"strconv"
	"strings"
)

const OrderIDPrefix = "OrdId"

// ParseSlot maps an order id of the form "OrdId<digits>" to its storage slot.
func ParseSlot(orderID string) (uint64, error) {
	if len(orderID) <= len(OrderIDPrefix) || !strings.HasPrefix(orderID, OrderIDPrefix) {
		return 0, &InvalidOrderIDError{OrderID: orderID}
	}

	digits := orderID[len(OrderIDPrefix):]
	// edge case: ParseUint accepts a leading '+', the id format does not
	if !isDigits(digits) {
		return 0, &InvalidOrderIDError{OrderID: orderID}
	}

	slot, err := strconv.ParseUint(digits, 10, 64)
	if err != nil {
		return 0, &InvalidOrderIDError{OrderID: orderID}
	}
	return slot, nil
}

func FormatOrderID(slot uint64) string {
	return OrderIDPrefix + strconv.FormatUint(slot, 10)
}
