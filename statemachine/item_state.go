package statemachine

import (
	"errors"

	"order-tracking-api/models"
)

// Actors that may drive item transitions
const (
	ActorStaff    = "staff"    // kitchen, waiter, company admin
	ActorReceipt  = "receipt"  // the receipt-validation protocol
	ActorCustomer = "customer" // customer receipt confirmation
)

// Transition defines a valid item state change and who can perform it
type Transition struct {
	From  models.ItemStatus
	To    models.ItemStatus
	Actor string
}

// validTransitions is the authoritative state machine definition
var validTransitions = []Transition{
	// Kitchen/staff move an item through preparation
	{From: models.ItemPending, To: models.ItemPreparing, Actor: ActorStaff},
	{From: models.ItemPreparing, To: models.ItemReady, Actor: ActorStaff},
	// Waiter hands the item over, or receipt validation confirms it
	{From: models.ItemReady, To: models.ItemDelivered, Actor: ActorStaff},
	{From: models.ItemReady, To: models.ItemDelivered, Actor: ActorReceipt},
	// Receipt validation short-circuits items still waiting in the kitchen
	{From: models.ItemPending, To: models.ItemDelivered, Actor: ActorReceipt},
	// Customer confirms receipt of a delivered item
	{From: models.ItemDelivered, To: models.ItemReceived, Actor: ActorCustomer},
}

// transitionKey is used to look up valid transitions quickly
type transitionKey struct {
	From  models.ItemStatus
	To    models.ItemStatus
	Actor string
}

// Build a lookup map for O(1) validation
var transitionMap = func() map[transitionKey]bool {
	m := make(map[transitionKey]bool)
	for _, t := range validTransitions {
		m[transitionKey{t.From, t.To, t.Actor}] = true
	}
	return m
}()

// InitialItemStatus returns the status an item is created in.
//
// Items that need no preparation start directly in ready. Items that do need
// preparation start in preparing when the order came through the public
// self-service flow (the kitchen is notified at placement), and in pending
// when entered by staff. The public/internal asymmetry is intentional,
// observed product behavior.
func InitialItemStatus(requiresPreparation bool, source models.OrderSource) models.ItemStatus {
	if !requiresPreparation {
		return models.ItemReady
	}
	if source == models.SourcePublic {
		return models.ItemPreparing
	}
	return models.ItemPending
}

// IsLegalTransition reports whether any actor may move an item from one
// status to another. The store primitive itself stays permissive; call sites
// that want strict semantics check this first.
func IsLegalTransition(from, to models.ItemStatus) bool {
	for _, t := range validTransitions {
		if t.From == from && t.To == to {
			return true
		}
	}
	return false
}

// ValidTransitionsFrom returns all valid next states from a given status
func ValidTransitionsFrom(status models.ItemStatus) []models.ItemStatus {
	var nexts []models.ItemStatus
	seen := map[models.ItemStatus]bool{}
	for _, t := range validTransitions {
		if t.From == status && !seen[t.To] {
			nexts = append(nexts, t.To)
			seen[t.To] = true
		}
	}
	return nexts
}

// CanTransition checks if a given actor can move an item from one status to another
func CanTransition(from, to models.ItemStatus, actor string) error {
	key := transitionKey{From: from, To: to, Actor: actor}
	if transitionMap[key] {
		return nil
	}
	return errors.New(
		"invalid transition: " + string(from) + " → " + string(to) +
			" is not allowed for actor '" + actor + "'. " +
			"Valid transitions from " + string(from) + " are: " + describeValidFrom(from),
	)
}

func describeValidFrom(status models.ItemStatus) string {
	nexts := ValidTransitionsFrom(status)
	if len(nexts) == 0 {
		return "none (terminal state)"
	}
	result := ""
	for i, s := range nexts {
		if i > 0 {
			result += ", "
		}
		result += string(s)
	}
	return result
}

// GetAllTransitions returns the full state machine for documentation
func GetAllTransitions() []Transition {
	return validTransitions
}
