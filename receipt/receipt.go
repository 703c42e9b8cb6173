package receipt

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"order-tracking-api/models"
	"order-tracking-api/store"

	qrcode "github.com/skip2/go-qrcode"
)

// TokenPrefix is the fixed, case-sensitive prefix of every receipt token.
// The full token is TokenPrefix + orderID, ASCII, no other delimiters.
const TokenPrefix = "ORDER-RECEIPT-"

// FeedbackDismissAfter is how long validation feedback stays on screen
// before auto-dismissing.
const FeedbackDismissAfter = 5 * time.Second

// ErrInvalidToken — the scanned/typed string is not a receipt token
var ErrInvalidToken = errors.New("invalid receipt token")

// Token builds the receipt token for an order, generated at placement time
// and encoded into the order's scannable code.
func Token(orderID string) string {
	return TokenPrefix + orderID
}

// ParseToken extracts the order id from a raw scanned or typed string
func ParseToken(raw string) (string, error) {
	if !strings.HasPrefix(raw, TokenPrefix) {
		return "", ErrInvalidToken
	}
	orderID := raw[len(TokenPrefix):]
	if orderID == "" {
		return "", ErrInvalidToken
	}
	return orderID, nil
}

// QRPNG renders the order's receipt token as a QR code PNG. High error
// correction so worn printouts still scan.
func QRPNG(orderID string, size int) ([]byte, error) {
	return qrcode.Encode(Token(orderID), qrcode.High, size)
}

// Result describes a successful validation
type Result struct {
	OrderID        string `json:"order_id"`
	ItemsDelivered int    `json:"items_delivered"`
	Message        string `json:"message"`
}

// Validate runs the staff-side flow: parse the token, resolve the order
// within the company's active orders only, and bulk-transition every
// pending/ready item to delivered through the store primitive — one history
// entry per item, exactly as a manual hand-off would produce.
//
// An id that exists for another company, or only as an archived order, is
// reported as store.ErrOrderNotFound; staff never learn about orders outside
// their own active scope through this path.
func Validate(raw string, companyID uint) (*Result, error) {
	orderID, err := ParseToken(raw)
	if err != nil {
		return nil, err
	}

	orders, err := store.GetActiveOrders(companyID)
	if err != nil {
		return nil, err
	}
	var order *models.Order
	for i := range orders {
		if orders[i].ID == orderID {
			order = &orders[i]
			break
		}
	}
	if order == nil {
		return nil, store.ErrOrderNotFound
	}

	delivered := 0
	for idx, item := range order.Items {
		if item.Status != models.ItemPending && item.Status != models.ItemReady {
			continue
		}
		if err := store.UpdateOrderItemStatus(order.ID, idx, models.ItemDelivered, nil, nil); err != nil {
			return nil, err
		}
		delivered++
	}

	return &Result{
		OrderID:        order.ID,
		ItemsDelivered: delivered,
		Message:        fmt.Sprintf("Receipt validated for order ...%s (%d items delivered)", lastN(order.ID, 4), delivered),
	}, nil
}

// lastN is a display-only truncation, not a security property
func lastN(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
