package statemachine

import "order-tracking-api/models"

// DeriveOrderStatus computes the order-level status from its items.
//
//	completed — every item is delivered or received
//	pending   — every item is still pending
//	accepted  — anything else
//
// The result is a pure function of the item statuses; callers must never
// persist it as independent truth.
func DeriveOrderStatus(items []models.OrderItem) models.OrderStatus {
	if len(items) == 0 {
		return models.OrderPending
	}
	allDone := true
	allPending := true
	for _, it := range items {
		if it.Status != models.ItemDelivered && it.Status != models.ItemReceived {
			allDone = false
		}
		if it.Status != models.ItemPending {
			allPending = false
		}
	}
	if allDone {
		return models.OrderCompleted
	}
	if allPending {
		return models.OrderPending
	}
	return models.OrderAccepted
}
