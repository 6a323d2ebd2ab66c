package cache

type Side string

const (
	SideBuy  Side = "Buy"
	SideSell Side = "Sell"
)

func (s Side) Valid() bool {
	return s == SideBuy || s == SideSell
}

// Order is an immutable value; the cache keeps its own copy once admitted.
type Order struct {
	orderID    string
	securityID string
	side       Side
	qty        uint32
	user       string
	company    string
}

func NewOrder(orderID, securityID string, side Side, qty uint32, user, company string) Order {
	return Order{
		orderID:    orderID,
		securityID: securityID,
		side:       side,
		qty:        qty,
		user:       user,
		company:    company,
	}
}

func (o Order) OrderID() string    { return o.orderID }
func (o Order) SecurityID() string { return o.securityID }
func (o Order) Side() Side         { return o.side }
func (o Order) Qty() uint32        { return o.qty }
func (o Order) User() string       { return o.user }
func (o Order) Company() string    { return o.company }

func (o Order) isBuy() bool {
	return o.side == SideBuy
}
