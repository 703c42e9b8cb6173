package models

import "time"

// OrderStatus is the order-level status. It is always derived from the
// item statuses and is never written to the database.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderAccepted  OrderStatus = "accepted"
	OrderCompleted OrderStatus = "completed"
)

// ItemStatus represents the per-line-item lifecycle states
type ItemStatus string

const (
	ItemPending   ItemStatus = "pending"
	ItemPreparing ItemStatus = "preparing"
	ItemReady     ItemStatus = "ready"
	ItemDelivered ItemStatus = "delivered"
	ItemReceived  ItemStatus = "received"
)

// TargetType describes the kind of physical delivery location
type TargetType string

const (
	TargetTable TargetType = "table"
	TargetRoom  TargetType = "room"
)

// OrderSource records who entered the order
type OrderSource string

const (
	SourcePublic   OrderSource = "public"   // customer self-service
	SourceInternal OrderSource = "internal" // staff-entered
)

type Order struct {
	ID           string      `json:"id" gorm:"primaryKey"` // epoch-millisecond token
	CompanyID    uint        `json:"company_id" gorm:"not null;index"`
	Company      Company     `json:"company,omitempty" gorm:"foreignKey:CompanyID"`
	UserID       *uint       `json:"user_id,omitempty"` // nil for anonymous public orders
	User         *User       `json:"user,omitempty" gorm:"foreignKey:UserID"`
	TargetType   TargetType  `json:"target_type" gorm:"not null"`
	TargetNumber string      `json:"target_number" gorm:"not null"`
	Source       OrderSource `json:"source" gorm:"not null"`
	Status       OrderStatus `json:"status" gorm:"-"` // derived on read, see statemachine.DeriveOrderStatus
	Timestamp    int64       `json:"timestamp"`       // creation time, epoch ms
	Revision     int64       `json:"revision"`        // optimistic concurrency token
	IsArchived   bool        `json:"is_archived" gorm:"default:false;index"`
	Items        []OrderItem `json:"items,omitempty" gorm:"foreignKey:OrderID"`
	History      []History   `json:"history,omitempty" gorm:"foreignKey:OrderID"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// OrderItem is one line of an order. Items carry no independent identity in
// the API — callers address them by Position within the order.
type OrderItem struct {
	ID                  uint       `json:"-" gorm:"primaryKey"`
	OrderID             string     `json:"order_id" gorm:"not null;index"`
	Position            int        `json:"position" gorm:"not null"`
	ProductID           uint       `json:"product_id" gorm:"not null"`
	Name                string     `json:"name"`
	Price               float64    `json:"price" gorm:"not null"` // unit price snapshot
	Quantity            int        `json:"quantity" gorm:"not null"`
	RequiresPreparation bool       `json:"requires_preparation"` // immutable after creation
	Status              ItemStatus `json:"status" gorm:"not null"`
}

// History is the append-only status log of an order. Rows are never updated
// or reordered; each entry's Timestamp is >= the previous entry's.
type History struct {
	ID           uint   `json:"-" gorm:"primaryKey"`
	OrderID      string `json:"order_id" gorm:"not null;index"`
	Status       string `json:"status" gorm:"not null"` // human-readable label
	EmployeeName string `json:"employee_name,omitempty"`
	Timestamp    int64  `json:"timestamp" gorm:"not null"` // epoch ms
}

// Actor identifies the staff member performing a transition, when there is one
type Actor struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}
