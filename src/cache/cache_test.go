package cache

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache() *OrderCache {
	return New(Config{StoreCapacity: 16, IndexCapacity: 4, MaxSlot: DefaultMaxSlot})
}

func mustAdd(t *testing.T, c *OrderCache, orders ...Order) {
	t.Helper()
	for _, o := range orders {
		require.NoError(t, c.AddOrder(o))
	}
}

func TestSameCompanyCannotMatchItself(t *testing.T) {
	c := newTestCache()
	mustAdd(t, c,
		NewOrder("OrdId1", "S1", SideBuy, 100, "alice", "C1"),
		NewOrder("OrdId2", "S1", SideSell, 100, "bob", "C1"),
	)

	assert.Equal(t, uint32(0), c.GetMatchingSizeForSecurity("S1"))
}

func TestTwoCompaniesFullMatch(t *testing.T) {
	c := newTestCache()
	mustAdd(t, c,
		NewOrder("OrdId3", "S2", SideBuy, 100, "alice", "C1"),
		NewOrder("OrdId4", "S2", SideSell, 100, "bob", "C2"),
	)

	assert.Equal(t, uint32(100), c.GetMatchingSizeForSecurity("S2"))
}

func TestCancelForSecurityWithMinimumQty(t *testing.T) {
	c := newTestCache()
	mustAdd(t, c,
		NewOrder("OrdId10", "S3", SideBuy, 50, "alice", "C1"),
		NewOrder("OrdId11", "S3", SideSell, 150, "alice", "C1"),
		NewOrder("OrdId12", "S3", SideBuy, 300, "alice", "C1"),
	)

	cancelled := c.CancelOrdersForSecIDWithMinimumQty("S3", 150)
	assert.Equal(t, 2, cancelled)

	orders := c.GetAllOrders()
	require.Len(t, orders, 1)
	assert.Equal(t, "OrdId10", orders[0].OrderID())
	assert.Equal(t, uint32(50), orders[0].Qty())

	snap, ok := c.Snapshot("S3")
	require.True(t, ok)
	assert.Equal(t, uint64(50), snap.TotalBuy)
	assert.Equal(t, uint64(0), snap.TotalSell)
}

func TestCancelForSecurityZeroMinimumIsNoop(t *testing.T) {
	c := newTestCache()
	mustAdd(t, c, NewOrder("OrdId1", "S3", SideBuy, 50, "alice", "C1"))

	assert.Equal(t, 0, c.CancelOrdersForSecIDWithMinimumQty("S3", 0))
	assert.Equal(t, 0, c.CancelOrdersForSecIDWithMinimumQty("unknown", 10))
	assert.Equal(t, 1, c.Len())
}

func TestUnknownSecurityMatchesNothing(t *testing.T) {
	c := newTestCache()
	assert.Equal(t, uint32(0), c.GetMatchingSizeForSecurity("NOPE"))

	_, ok := c.Snapshot("NOPE")
	assert.False(t, ok)
}

func TestOneSidedSecurityMatchesNothing(t *testing.T) {
	c := newTestCache()
	mustAdd(t, c,
		NewOrder("OrdId1", "S1", SideBuy, 100, "alice", "C1"),
		NewOrder("OrdId2", "S1", SideBuy, 200, "bob", "C2"),
	)

	assert.Equal(t, uint32(0), c.GetMatchingSizeForSecurity("S1"))
}

func TestMatchingExcludesLargestCompany(t *testing.T) {
	c := newTestCache()
	// C1 holds 300 buy and 100 sell; only C2's 200 sell can meet C1's buys.
	mustAdd(t, c,
		NewOrder("OrdId1", "S1", SideBuy, 300, "u1", "C1"),
		NewOrder("OrdId2", "S1", SideSell, 100, "u1", "C1"),
		NewOrder("OrdId3", "S1", SideSell, 200, "u2", "C2"),
	)

	// B=300 S=300 V=400: exBuy=100 exSell=100, min(200,200)=200
	assert.Equal(t, uint32(200), c.GetMatchingSizeForSecurity("S1"))
}

func TestDuplicateAddKeepsOriginal(t *testing.T) {
	c := newTestCache()
	mustAdd(t, c, NewOrder("OrdId7", "S1", SideBuy, 100, "alice", "C1"))
	mustAdd(t, c, NewOrder("OrdId7", "S9", SideSell, 999, "bob", "C2"))

	orders := c.GetAllOrders()
	require.Len(t, orders, 1)
	assert.Equal(t, "S1", orders[0].SecurityID())
	assert.Equal(t, uint32(100), orders[0].Qty())

	snap, ok := c.Snapshot("S1")
	require.True(t, ok)
	assert.Equal(t, uint64(100), snap.TotalBuy)

	_, ok = c.Snapshot("S9")
	assert.False(t, ok)
}

func TestAddThenCancelRestoresState(t *testing.T) {
	c := newTestCache()
	mustAdd(t, c, NewOrder("OrdId1", "S1", SideBuy, 100, "alice", "C1"))
	before, ok := c.Snapshot("S1")
	require.True(t, ok)

	mustAdd(t, c, NewOrder("OrdId2", "S1", SideSell, 40, "bob", "C2"))
	require.NoError(t, c.CancelOrder("OrdId2"))

	after, ok := c.Snapshot("S1")
	require.True(t, ok)
	assert.Equal(t, before, after)
	assert.False(t, c.userOrders.contains("bob", 2))
	assert.False(t, c.securityOrders.contains("S1", 2))
	assert.False(t, c.store.has(2))
}

func TestCancelLastOrderDropsSecurityAndIndexes(t *testing.T) {
	c := newTestCache()
	mustAdd(t, c, NewOrder("OrdId1", "S1", SideBuy, 100, "alice", "C1"))
	require.NoError(t, c.CancelOrder("OrdId1"))

	_, ok := c.Snapshot("S1")
	assert.False(t, ok)
	assert.Equal(t, 0, c.userOrders.keys())
	assert.Equal(t, 0, c.securityOrders.keys())
	assert.Empty(t, c.GetAllOrders())
}

func TestCancelUnknownOrderIsNoop(t *testing.T) {
	c := newTestCache()
	assert.NoError(t, c.CancelOrder("OrdId42"))

	mustAdd(t, c, NewOrder("OrdId1", "S1", SideBuy, 100, "alice", "C1"))
	require.NoError(t, c.CancelOrder("OrdId1"))
	assert.NoError(t, c.CancelOrder("OrdId1"))
}

func TestCancelRejectsMalformedID(t *testing.T) {
	c := newTestCache()
	mustAdd(t, c, NewOrder("OrdId1", "S1", SideBuy, 100, "alice", "C1"))

	for _, id := range []string{"", "OrdId", "Ord1", "OrdIdx1", "OrdId1a", "ordid1"} {
		err := c.CancelOrder(id)
		assert.ErrorIs(t, err, ErrInvalidOrderID, "id %q", id)
	}
	assert.Equal(t, 1, c.Len())
}

func TestCancelOrdersForUser(t *testing.T) {
	c := newTestCache()
	mustAdd(t, c,
		NewOrder("OrdId1", "S1", SideBuy, 100, "alice", "C1"),
		NewOrder("OrdId2", "S2", SideSell, 200, "alice", "C1"),
		NewOrder("OrdId3", "S1", SideSell, 300, "bob", "C2"),
	)

	assert.Equal(t, 2, c.CancelOrdersForUser("alice"))
	assert.Equal(t, 0, c.CancelOrdersForUser("alice"))
	assert.Equal(t, 0, c.CancelOrdersForUser("nobody"))

	orders := c.GetAllOrders()
	require.Len(t, orders, 1)
	assert.Equal(t, "bob", orders[0].User())

	_, ok := c.Snapshot("S2")
	assert.False(t, ok)
	assert.Equal(t, uint32(0), c.GetMatchingSizeForSecurity("S1"))
}

func TestSlotIsReusedAfterCancel(t *testing.T) {
	c := newTestCache()
	mustAdd(t, c, NewOrder("OrdId5", "S1", SideBuy, 100, "alice", "C1"))
	require.NoError(t, c.CancelOrder("OrdId5"))
	mustAdd(t, c, NewOrder("OrdId5", "S2", SideSell, 10, "bob", "C2"))

	order, ok, err := c.GetOrder("OrdId5")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "S2", order.SecurityID())
	assert.Equal(t, SideSell, order.Side())
}

func TestStoreGrowsPastInitialCapacity(t *testing.T) {
	c := New(Config{StoreCapacity: 0, IndexCapacity: 0})
	mustAdd(t, c,
		NewOrder("OrdId1000", "S1", SideBuy, 10, "alice", "C1"),
		NewOrder("OrdId3", "S1", SideSell, 10, "bob", "C2"),
	)

	assert.Equal(t, 2, c.Len())
	assert.Equal(t, uint32(10), c.GetMatchingSizeForSecurity("S1"))
}

func TestAddRejectsSlotAboveMaximum(t *testing.T) {
	c := New(Config{StoreCapacity: 4, IndexCapacity: 4, MaxSlot: 100})

	err := c.AddOrder(NewOrder("OrdId101", "S1", SideBuy, 10, "alice", "C1"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidOrder)
	assert.ErrorIs(t, err, ErrInvalidOrderID)
	assert.Equal(t, 0, c.Len())

	assert.NoError(t, c.AddOrder(NewOrder("OrdId100", "S1", SideBuy, 10, "alice", "C1")))
}

func TestAddRejectsInvalidOrders(t *testing.T) {
	tests := []struct {
		name  string
		order Order
		kind  ValidationErrorKind
	}{
		{"empty id", NewOrder("", "", "", 0, "", ""), EmptyOrderID},
		{"bad prefix", NewOrder("Order1", "S1", SideBuy, 1, "u", "c"), InvalidOrderIDFormat},
		{"non numeric suffix", NewOrder("OrdId1x", "S1", SideBuy, 1, "u", "c"), InvalidOrderIDFormat},
		{"empty security", NewOrder("OrdId1", "", SideBuy, 1, "u", "c"), EmptySecurityID},
		{"empty user", NewOrder("OrdId1", "S1", SideBuy, 1, "", "c"), EmptyUser},
		{"empty company", NewOrder("OrdId1", "S1", SideBuy, 1, "u", ""), EmptyCompany},
		{"bad side", NewOrder("OrdId1", "S1", "BUY", 1, "u", "c"), InvalidSide},
		{"zero quantity", NewOrder("OrdId1", "S1", SideSell, 0, "u", "c"), ZeroQuantity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCache()
			err := c.AddOrder(tt.order)
			require.ErrorIs(t, err, ErrInvalidOrder)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.kind, verr.Kind)
			assert.Equal(t, 0, c.Len())
		})
	}
}

func TestAddRejectsBarePrefix(t *testing.T) {
	c := newTestCache()
	err := c.AddOrder(NewOrder("OrdId", "S1", SideBuy, 1, "u", "c"))

	var ierr *InvalidOrderError
	require.True(t, errors.As(err, &ierr))
	assert.Equal(t, "OrdId", ierr.OrderID)

	var idErr *InvalidOrderIDError
	require.True(t, errors.As(err, &idErr))
	assert.Equal(t, "Invalid order : Failed to parse order ID value : OrdId", err.Error())
}

func TestSharedMaximumSurvivesRemovalOfOneCompany(t *testing.T) {
	c := newTestCache()
	mustAdd(t, c,
		NewOrder("OrdId1", "S1", SideBuy, 100, "u1", "C1"),
		NewOrder("OrdId2", "S1", SideBuy, 100, "u2", "C2"),
		NewOrder("OrdId3", "S1", SideSell, 50, "u3", "C3"),
	)

	snap, _ := c.Snapshot("S1")
	assert.Equal(t, uint64(100), snap.MaxCompanyVolume)

	require.NoError(t, c.CancelOrder("OrdId1"))
	snap, _ = c.Snapshot("S1")
	assert.Equal(t, uint64(100), snap.MaxCompanyVolume)
	assert.NotContains(t, snap.Companies, "C1")

	require.NoError(t, c.CancelOrder("OrdId2"))
	snap, _ = c.Snapshot("S1")
	assert.Equal(t, uint64(50), snap.MaxCompanyVolume)
}

func TestGetOrder(t *testing.T) {
	c := newTestCache()
	mustAdd(t, c, NewOrder("OrdId9", "S1", SideBuy, 100, "alice", "C1"))

	order, ok, err := c.GetOrder("OrdId9")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, NewOrder("OrdId9", "S1", SideBuy, 100, "alice", "C1"), order)

	_, ok, err = c.GetOrder("OrdId8")
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = c.GetOrder("nope")
	assert.ErrorIs(t, err, ErrInvalidOrderID)
}
