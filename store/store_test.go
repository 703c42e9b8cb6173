package store

import (
	"path/filepath"
	"testing"

	"order-tracking-api/config"
	"order-tracking-api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupDB(t *testing.T) *models.Company {
	t.Helper()
	config.OpenDB(filepath.Join(t.TempDir(), "store_test.db"))
	company := models.Company{Name: "Test Cafe"}
	require.NoError(t, config.DB.Create(&company).Error)
	return &company
}

func sampleItems() []NewItem {
	return []NewItem{
		{ProductID: 1, Name: "Espresso", Price: 2.5, Quantity: 1, RequiresPreparation: true},
		{ProductID: 2, Name: "Bottled Water", Price: 1.0, Quantity: 2, RequiresPreparation: false},
	}
}

func TestPlaceOrderInitialStatuses(t *testing.T) {
	company := setupDB(t)

	public, err := PlaceOrder(company.ID, nil, models.TargetTable, "12", models.SourcePublic, sampleItems())
	require.NoError(t, err)
	// preparation items on a public order start in preparing, not pending
	assert.Equal(t, models.ItemPreparing, public.Items[0].Status)
	// items needing no preparation start in ready, never pending
	assert.Equal(t, models.ItemReady, public.Items[1].Status)
	assert.Equal(t, models.OrderAccepted, public.Status)
	assert.Len(t, public.History, 1)
	assert.NotZero(t, public.Timestamp)

	internal, err := PlaceOrder(company.ID, nil, models.TargetRoom, "204", models.SourceInternal, sampleItems())
	require.NoError(t, err)
	assert.Equal(t, models.ItemPending, internal.Items[0].Status)
	assert.Equal(t, models.ItemReady, internal.Items[1].Status)
}

func TestPlaceOrderRejectsEmptyAndInvalidItems(t *testing.T) {
	company := setupDB(t)

	_, err := PlaceOrder(company.ID, nil, models.TargetTable, "1", models.SourcePublic, nil)
	assert.ErrorIs(t, err, ErrEmptyOrder)

	_, err = PlaceOrder(company.ID, nil, models.TargetTable, "1", models.SourcePublic,
		[]NewItem{{ProductID: 1, Name: "Tea", Price: 2, Quantity: 0}})
	assert.Error(t, err)

	_, err = PlaceOrder(company.ID, nil, models.TargetTable, "1", models.SourcePublic,
		[]NewItem{{ProductID: 1, Name: "Tea", Price: -1, Quantity: 1}})
	assert.Error(t, err)
}

func TestUpdateOrderItemStatusAlwaysAppendsHistory(t *testing.T) {
	company := setupDB(t)
	order, err := PlaceOrder(company.ID, nil, models.TargetTable, "3", models.SourceInternal, sampleItems())
	require.NoError(t, err)

	actor := &models.Actor{ID: 7, Name: "Dana"}
	require.NoError(t, UpdateOrderItemStatus(order.ID, 0, models.ItemPreparing, actor, nil))
	require.NoError(t, UpdateOrderItemStatus(order.ID, 0, models.ItemPreparing, actor, nil)) // same target again

	got, err := GetOrder(order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ItemPreparing, got.Items[0].Status)
	// the primitive is not idempotent by design: one history entry per call
	assert.Len(t, got.History, 3) // placed + 2 transitions
	assert.Equal(t, "preparing", got.History[1].Status)
	assert.Equal(t, "Dana", got.History[1].EmployeeName)
	assert.GreaterOrEqual(t, got.History[2].Timestamp, got.History[1].Timestamp)
}

func TestUpdateOrderItemStatusErrors(t *testing.T) {
	company := setupDB(t)
	order, err := PlaceOrder(company.ID, nil, models.TargetTable, "3", models.SourceInternal, sampleItems())
	require.NoError(t, err)

	assert.ErrorIs(t, UpdateOrderItemStatus("does-not-exist", 0, models.ItemReady, nil, nil), ErrOrderNotFound)
	assert.ErrorIs(t, UpdateOrderItemStatus(order.ID, 99, models.ItemReady, nil, nil), ErrItemIndex)
	assert.ErrorIs(t, UpdateOrderItemStatus(order.ID, -1, models.ItemReady, nil, nil), ErrItemIndex)
}

func TestRevisionBumpsPerWrite(t *testing.T) {
	company := setupDB(t)
	order, err := PlaceOrder(company.ID, nil, models.TargetTable, "3", models.SourceInternal, sampleItems())
	require.NoError(t, err)

	require.NoError(t, UpdateOrderItemStatus(order.ID, 0, models.ItemPreparing, nil, nil))
	require.NoError(t, UpdateOrderItemStatus(order.ID, 0, models.ItemReady, nil, nil))

	got, err := GetOrder(order.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Revision)
}

func TestConfirmOrderReceipt(t *testing.T) {
	company := setupDB(t)
	order, err := PlaceOrder(company.ID, nil, models.TargetTable, "5", models.SourceInternal, sampleItems())
	require.NoError(t, err)

	// deliver only the second item, leave the first in pending
	require.NoError(t, UpdateOrderItemStatus(order.ID, 1, models.ItemDelivered, nil, nil))
	require.NoError(t, ConfirmOrderReceipt(order.ID, nil))

	got, err := GetOrder(order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ItemPending, got.Items[0].Status) // untouched
	assert.Equal(t, models.ItemReceived, got.Items[1].Status)
	// placed + delivered + received
	assert.Len(t, got.History, 3)
	assert.Equal(t, "received", got.History[2].Status)

	assert.ErrorIs(t, ConfirmOrderReceipt("missing", nil), ErrOrderNotFound)
}

func TestArchiveCompletedOrders(t *testing.T) {
	company := setupDB(t)

	done, err := PlaceOrder(company.ID, nil, models.TargetTable, "1", models.SourceInternal, sampleItems())
	require.NoError(t, err)
	require.NoError(t, UpdateOrderItemStatus(done.ID, 0, models.ItemDelivered, nil, nil))
	require.NoError(t, UpdateOrderItemStatus(done.ID, 1, models.ItemDelivered, nil, nil))

	open, err := PlaceOrder(company.ID, nil, models.TargetTable, "2", models.SourceInternal, sampleItems())
	require.NoError(t, err)

	archived, err := ArchiveCompletedOrders(company.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, archived)

	gotDone, err := GetOrder(done.ID)
	require.NoError(t, err)
	assert.True(t, gotDone.IsArchived)

	gotOpen, err := GetOrder(open.ID)
	require.NoError(t, err)
	assert.False(t, gotOpen.IsArchived)

	active, err := GetActiveOrders(company.ID)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, open.ID, active[0].ID)
}

func TestGetOrdersScoping(t *testing.T) {
	company := setupDB(t)
	other := models.Company{Name: "Other Cafe"}
	require.NoError(t, config.DB.Create(&other).Error)

	userID := uint(42)
	_, err := PlaceOrder(company.ID, &userID, models.TargetTable, "1", models.SourcePublic, sampleItems())
	require.NoError(t, err)
	_, err = PlaceOrder(company.ID, nil, models.TargetTable, "2", models.SourcePublic, sampleItems())
	require.NoError(t, err)
	_, err = PlaceOrder(other.ID, nil, models.TargetTable, "3", models.SourcePublic, sampleItems())
	require.NoError(t, err)

	byCompany, err := GetOrders(company.ID, nil)
	require.NoError(t, err)
	assert.Len(t, byCompany, 2)

	byUser, err := GetOrders(0, &userID)
	require.NoError(t, err)
	require.Len(t, byUser, 1)
	require.NotNil(t, byUser[0].UserID)
	assert.Equal(t, userID, *byUser[0].UserID)
}

func TestNewOrderIDUniqueUnderRapidPlacement(t *testing.T) {
	company := setupDB(t)

	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		id := NewOrderID()
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}

	// back-to-back placements must never collide on the primary key
	for i := 0; i < 20; i++ {
		_, err := PlaceOrder(company.ID, nil, models.TargetTable, "9", models.SourceInternal, sampleItems())
		require.NoError(t, err)
	}
}

func TestStaleRevisionRejected(t *testing.T) {
	company := setupDB(t)
	order, err := PlaceOrder(company.ID, nil, models.TargetTable, "4", models.SourceInternal, sampleItems())
	require.NoError(t, err)

	stale := order.Revision // 0 at placement
	require.NoError(t, UpdateOrderItemStatus(order.ID, 0, models.ItemPreparing, nil, nil))

	err = UpdateOrderItemStatus(order.ID, 0, models.ItemReady, nil, &stale)
	assert.ErrorIs(t, err, ErrConcurrentModification)
	assert.ErrorIs(t, ConfirmOrderReceipt(order.ID, &stale), ErrConcurrentModification)

	got, err := GetOrder(order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ItemPreparing, got.Items[0].Status) // stale write changed nothing

	current := got.Revision
	require.NoError(t, UpdateOrderItemStatus(order.ID, 0, models.ItemReady, nil, &current))
}
