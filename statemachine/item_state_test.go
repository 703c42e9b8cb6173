package statemachine

import (
	"testing"

	"order-tracking-api/models"

	"github.com/stretchr/testify/assert"
)

func TestInitialItemStatus(t *testing.T) {
	// no preparation needed -> straight to ready, regardless of source
	assert.Equal(t, models.ItemReady, InitialItemStatus(false, models.SourcePublic))
	assert.Equal(t, models.ItemReady, InitialItemStatus(false, models.SourceInternal))

	// preparation needed: public orders notify the kitchen immediately
	assert.Equal(t, models.ItemPreparing, InitialItemStatus(true, models.SourcePublic))
	assert.Equal(t, models.ItemPending, InitialItemStatus(true, models.SourceInternal))
}

func TestCanTransition(t *testing.T) {
	assert.NoError(t, CanTransition(models.ItemPending, models.ItemPreparing, ActorStaff))
	assert.NoError(t, CanTransition(models.ItemPreparing, models.ItemReady, ActorStaff))
	assert.NoError(t, CanTransition(models.ItemReady, models.ItemDelivered, ActorStaff))
	assert.NoError(t, CanTransition(models.ItemReady, models.ItemDelivered, ActorReceipt))
	assert.NoError(t, CanTransition(models.ItemPending, models.ItemDelivered, ActorReceipt))
	assert.NoError(t, CanTransition(models.ItemDelivered, models.ItemReceived, ActorCustomer))

	// staff cannot short-circuit pending straight to delivered
	assert.Error(t, CanTransition(models.ItemPending, models.ItemDelivered, ActorStaff))
	// the receipt protocol never touches preparing items
	assert.Error(t, CanTransition(models.ItemPreparing, models.ItemDelivered, ActorReceipt))
	// no skipping preparation
	assert.Error(t, CanTransition(models.ItemPending, models.ItemReady, ActorStaff))
	// no going backwards
	assert.Error(t, CanTransition(models.ItemReady, models.ItemPreparing, ActorStaff))
	// received is terminal
	assert.Error(t, CanTransition(models.ItemReceived, models.ItemDelivered, ActorStaff))
}

func TestCanTransitionErrorNamesValidNextStates(t *testing.T) {
	err := CanTransition(models.ItemPending, models.ItemReady, ActorStaff)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "preparing")

	err = CanTransition(models.ItemReceived, models.ItemPending, ActorStaff)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "terminal")
}

func TestIsLegalTransition(t *testing.T) {
	assert.True(t, IsLegalTransition(models.ItemPending, models.ItemPreparing))
	assert.True(t, IsLegalTransition(models.ItemPending, models.ItemDelivered)) // receipt short-circuit
	assert.True(t, IsLegalTransition(models.ItemDelivered, models.ItemReceived))
	assert.False(t, IsLegalTransition(models.ItemPending, models.ItemReady))
	assert.False(t, IsLegalTransition(models.ItemDelivered, models.ItemPending))
}

func items(statuses ...models.ItemStatus) []models.OrderItem {
	out := make([]models.OrderItem, len(statuses))
	for i, s := range statuses {
		out[i] = models.OrderItem{Position: i, Status: s}
	}
	return out
}

func TestDeriveOrderStatus(t *testing.T) {
	tests := []struct {
		name  string
		items []models.OrderItem
		want  models.OrderStatus
	}{
		{"all pending", items(models.ItemPending, models.ItemPending), models.OrderPending},
		{"single pending", items(models.ItemPending), models.OrderPending},
		{"one preparing", items(models.ItemPending, models.ItemPreparing), models.OrderAccepted},
		{"one ready", items(models.ItemReady), models.OrderAccepted},
		{"partially delivered", items(models.ItemDelivered, models.ItemPending), models.OrderAccepted},
		{"preparing and delivered", items(models.ItemPreparing, models.ItemDelivered), models.OrderAccepted},
		{"all delivered", items(models.ItemDelivered, models.ItemDelivered), models.OrderCompleted},
		{"delivered and received", items(models.ItemDelivered, models.ItemReceived), models.OrderCompleted},
		{"all received", items(models.ItemReceived), models.OrderCompleted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveOrderStatus(tt.items))
		})
	}
}
