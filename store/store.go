package store

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"order-tracking-api/config"
	"order-tracking-api/models"
	"order-tracking-api/statemachine"

	"gorm.io/gorm"
)

var (
	// ErrOrderNotFound — the id resolves to no order in the requested scope
	ErrOrderNotFound = errors.New("order not found")
	// ErrEmptyOrder — orders must contain at least one item at creation
	ErrEmptyOrder = errors.New("order must contain at least one item")
	// ErrItemIndex — item index outside the order's items
	ErrItemIndex = errors.New("item index out of range")
	// ErrConcurrentModification — a writer lost the revision race
	ErrConcurrentModification = errors.New("order was modified concurrently")
)

// NewItem is the input shape for one order line at placement time
type NewItem struct {
	ProductID           uint    `json:"product_id" binding:"required"`
	Name                string  `json:"name" binding:"required"`
	Price               float64 `json:"price"`
	Quantity            int     `json:"quantity" binding:"required,min=1"`
	RequiresPreparation bool    `json:"requires_preparation"`
}

var (
	idMu   sync.Mutex
	lastID int64
)

// NewOrderID returns a current-time-derived order id (epoch milliseconds).
// The id doubles as the payload of the receipt token, so its format is an
// external contract. Two placements in the same millisecond still get
// distinct, strictly increasing ids: the second nudges one past the last id
// handed out, which keeps the token round-trip intact.
func NewOrderID() string {
	idMu.Lock()
	defer idMu.Unlock()
	now := time.Now().UnixMilli()
	if now <= lastID {
		now = lastID + 1
	}
	lastID = now
	return strconv.FormatInt(now, 10)
}

func nowMillis() int64 { return time.Now().UnixMilli() }

// PlaceOrder persists a fully-formed new order atomically: all items plus
// the initial history entry. Item initial statuses follow
// statemachine.InitialItemStatus.
func PlaceOrder(companyID uint, userID *uint, target models.TargetType, targetNumber string, source models.OrderSource, items []NewItem) (*models.Order, error) {
	if len(items) == 0 {
		return nil, ErrEmptyOrder
	}
	for _, it := range items {
		if it.Quantity <= 0 {
			return nil, fmt.Errorf("invalid quantity for product %d", it.ProductID)
		}
		if it.Price < 0 {
			return nil, fmt.Errorf("invalid price for product %d", it.ProductID)
		}
	}

	now := nowMillis()
	order := models.Order{
		ID:           NewOrderID(),
		CompanyID:    companyID,
		UserID:       userID,
		TargetType:   target,
		TargetNumber: targetNumber,
		Source:       source,
		Timestamp:    now,
	}
	for i, it := range items {
		order.Items = append(order.Items, models.OrderItem{
			Position:            i,
			ProductID:           it.ProductID,
			Name:                it.Name,
			Price:               it.Price,
			Quantity:            it.Quantity,
			RequiresPreparation: it.RequiresPreparation,
			Status:              statemachine.InitialItemStatus(it.RequiresPreparation, source),
		})
	}
	order.History = []models.History{{Status: "placed", Timestamp: now}}

	if err := config.DB.Create(&order).Error; err != nil {
		return nil, err
	}
	order.Status = statemachine.DeriveOrderStatus(order.Items)
	return &order, nil
}

// GetOrders returns orders matching the given scope. Pass companyID=0 to
// skip company scoping and userID=nil to skip user scoping; callers are
// expected to provide at least one. Items come back in insertion order,
// history in append order, and the derived order status is populated.
func GetOrders(companyID uint, userID *uint) ([]models.Order, error) {
	query := scopedQuery(config.DB, companyID, userID)
	var orders []models.Order
	if err := query.Order("timestamp asc").Find(&orders).Error; err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Status = statemachine.DeriveOrderStatus(orders[i].Items)
	}
	return orders, nil
}

// GetActiveOrders returns the non-archived orders of a company — the slice
// the tracking views poll.
func GetActiveOrders(companyID uint) ([]models.Order, error) {
	query := scopedQuery(config.DB, companyID, nil).Where("is_archived = ?", false)
	var orders []models.Order
	if err := query.Order("timestamp asc").Find(&orders).Error; err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Status = statemachine.DeriveOrderStatus(orders[i].Items)
	}
	return orders, nil
}

// GetOrder loads a single order by id with items, history and company
func GetOrder(orderID string) (*models.Order, error) {
	var order models.Order
	err := scopedQuery(config.DB, 0, nil).Where("id = ?", orderID).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	order.Status = statemachine.DeriveOrderStatus(order.Items)
	return &order, nil
}

func scopedQuery(db *gorm.DB, companyID uint, userID *uint) *gorm.DB {
	query := db.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Preload("History", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		Preload("Company")
	if companyID != 0 {
		query = query.Where("company_id = ?", companyID)
	}
	if userID != nil {
		query = query.Where("user_id = ?", *userID)
	}
	return query
}

// UpdateOrderItemStatus is the item-transition primitive. It is deliberately
// permissive and total: it sets the item status to whatever the caller asked
// for and always appends one history entry, even when the status does not
// change. Legality checks belong at the call site via
// statemachine.CanTransition.
//
// expectedRev carries the revision the caller read the order at; a non-nil
// value that no longer matches fails with ErrConcurrentModification. nil
// skips the check (last-write-wins, the default).
func UpdateOrderItemStatus(orderID string, itemIndex int, newStatus models.ItemStatus, actor *models.Actor, expectedRev *int64) error {
	return config.DB.Transaction(func(tx *gorm.DB) error {
		order, err := lockOrder(tx, orderID)
		if err != nil {
			return err
		}
		if err := checkRevision(order, expectedRev); err != nil {
			return err
		}
		if itemIndex < 0 || itemIndex >= len(order.Items) {
			return ErrItemIndex
		}

		item := order.Items[itemIndex]
		if err := tx.Model(&models.OrderItem{}).
			Where("id = ?", item.ID).
			Update("status", newStatus).Error; err != nil {
			return err
		}
		if err := appendHistory(tx, orderID, string(newStatus), actor); err != nil {
			return err
		}
		return bumpRevision(tx, order)
	})
}

// ConfirmOrderReceipt is the customer-invoked final confirmation: every
// delivered item moves to received, one history entry each. Succeeds as a
// no-op when nothing is in delivered. expectedRev works as in
// UpdateOrderItemStatus.
func ConfirmOrderReceipt(orderID string, expectedRev *int64) error {
	return config.DB.Transaction(func(tx *gorm.DB) error {
		order, err := lockOrder(tx, orderID)
		if err != nil {
			return err
		}
		if err := checkRevision(order, expectedRev); err != nil {
			return err
		}
		for _, item := range order.Items {
			if item.Status != models.ItemDelivered {
				continue
			}
			if err := tx.Model(&models.OrderItem{}).
				Where("id = ?", item.ID).
				Update("status", models.ItemReceived).Error; err != nil {
				return err
			}
			if err := appendHistory(tx, orderID, string(models.ItemReceived), nil); err != nil {
				return err
			}
		}
		return bumpRevision(tx, order)
	})
}

// ArchiveCompletedOrders flags every order of the company whose derived
// status is completed. Orders are never deleted, only archived. Returns the
// number of orders archived.
func ArchiveCompletedOrders(companyID uint) (int, error) {
	archived := 0
	err := config.DB.Transaction(func(tx *gorm.DB) error {
		var orders []models.Order
		if err := tx.
			Preload("Items").
			Where("company_id = ? AND is_archived = ?", companyID, false).
			Find(&orders).Error; err != nil {
			return err
		}
		for i := range orders {
			if statemachine.DeriveOrderStatus(orders[i].Items) != models.OrderCompleted {
				continue
			}
			if err := tx.Model(&models.Order{}).
				Where("id = ?", orders[i].ID).
				Update("is_archived", true).Error; err != nil {
				return err
			}
			if err := bumpRevision(tx, &orders[i]); err != nil {
				return err
			}
			archived++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return archived, nil
}

// lockOrder reads an order with its items inside the transaction. The
// revision read here backs the guarded update in bumpRevision.
func lockOrder(tx *gorm.DB, orderID string) (*models.Order, error) {
	var order models.Order
	err := tx.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Where("id = ?", orderID).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func appendHistory(tx *gorm.DB, orderID, label string, actor *models.Actor) error {
	entry := models.History{
		OrderID:   orderID,
		Status:    label,
		Timestamp: nowMillis(),
	}
	if actor != nil {
		entry.EmployeeName = actor.Name
	}
	return tx.Create(&entry).Error
}

// checkRevision rejects a writer whose read of the order has gone stale.
// The revision travels from a read, through the caller, back into the next
// write — that round trip is what makes a lost update detectable.
func checkRevision(order *models.Order, expected *int64) error {
	if expected != nil && *expected != order.Revision {
		return ErrConcurrentModification
	}
	return nil
}

// bumpRevision moves the order's revision forward so later writers carrying
// the old value fail their checkRevision.
func bumpRevision(tx *gorm.DB, order *models.Order) error {
	return tx.Model(&models.Order{}).
		Where("id = ?", order.ID).
		Update("revision", order.Revision+1).Error
}
