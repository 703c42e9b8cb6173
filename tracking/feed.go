package tracking

import (
	"context"
	"sync"
	"time"

	"order-tracking-api/models"

	log "github.com/sirupsen/logrus"
)

// DefaultInterval is the polling period of a tracking view
const DefaultInterval = 3 * time.Second

// ReadyKey identifies one ready-for-pickup line across polls
type ReadyKey struct {
	OrderID   string `json:"order_id"`
	ProductID uint   `json:"product_id"`
}

// PollFunc reads the current order slice for the feed's scope
type PollFunc func() ([]models.Order, error)

// AlertFunc receives each newly-ready key, exactly once per appearance.
// Implementations that play a sound must swallow playback failures.
type AlertFunc func(ReadyKey)

// Feed is the timer-driven polling loop behind a tracking view. Each tick
// re-reads the scoped orders, replaces the snapshot wholesale, and diffs the
// ready-for-pickup set against the previous tick: only keys that newly
// appeared fire an alert. A key that leaves the set and comes back alerts
// again — that is a fresh service event, not a repeat.
type Feed struct {
	Poll     PollFunc
	Alert    AlertFunc
	Interval time.Duration

	mu        sync.Mutex
	snapshot  []models.Order
	prevReady map[ReadyKey]struct{}
	alertLog  []ReadyKey // newly-ready keys in emission order, trimmed
	logBase   int        // cursor of alertLog[0]
}

// maxAlertLog bounds how far back a slow viewer can read
const maxAlertLog = 256

// Start moves the feed from idle to polling until the context is cancelled.
// Without a Poll the feed has no scope and stays idle. The first read runs
// before Start returns, so a view opened right after never sees an empty
// snapshot while orders exist.
func (f *Feed) Start(ctx context.Context) {
	if f.Poll == nil {
		return
	}
	interval := f.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	f.Refresh()
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				f.Refresh()
			}
		}
	}()
}

// Refresh runs one poll tick. A failed read skips this refresh — snapshot
// and ready-set keep their previous values so no spurious alerts fire on
// recovery — and never stops the loop.
func (f *Feed) Refresh() {
	orders, err := f.Poll()
	if err != nil {
		log.WithError(err).Debug("tracking poll failed, keeping previous snapshot")
		return
	}

	curr := ReadySet(orders)

	f.mu.Lock()
	f.snapshot = orders
	var fresh []ReadyKey
	for key := range curr {
		if _, seen := f.prevReady[key]; !seen {
			fresh = append(fresh, key)
		}
	}
	f.prevReady = curr
	f.alertLog = append(f.alertLog, fresh...)
	if len(f.alertLog) > 2*maxAlertLog {
		drop := len(f.alertLog) - maxAlertLog
		f.logBase += drop
		f.alertLog = append([]ReadyKey(nil), f.alertLog[drop:]...)
	}
	alert := f.Alert
	f.mu.Unlock()

	if alert != nil {
		for _, key := range fresh {
			alert(key)
		}
	}
}

// Snapshot returns the latest polled order slice
func (f *Feed) Snapshot() []models.Order {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshot
}

// AlertsSince returns the newly-ready keys recorded after the given cursor,
// plus the cursor to pass on the next call. Each viewer keeps its own
// cursor, so several staff clients can follow the same feed without
// consuming each other's alerts. Cursor 0 starts at the oldest retained
// alert.
func (f *Feed) AlertsSince(cursor int) ([]ReadyKey, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if cursor < f.logBase {
		cursor = f.logBase
	}
	next := f.logBase + len(f.alertLog)
	if cursor >= next {
		return nil, next
	}
	out := append([]ReadyKey(nil), f.alertLog[cursor-f.logBase:]...)
	return out, next
}

// ReadySet computes the ready-for-pickup keys of an order slice: items in
// ready whose line requires preparation or whose company runs detailed
// tracking. Archived orders never contribute.
func ReadySet(orders []models.Order) map[ReadyKey]struct{} {
	set := make(map[ReadyKey]struct{})
	for _, order := range orders {
		if order.IsArchived {
			continue
		}
		for _, item := range order.Items {
			if item.Status != models.ItemReady {
				continue
			}
			if !item.RequiresPreparation && !order.Company.DetailedTracking {
				continue
			}
			set[ReadyKey{OrderID: order.ID, ProductID: item.ProductID}] = struct{}{}
		}
	}
	return set
}

// LogAlert is the default alert sink: the audible cue is the frontend's job,
// the server just records that a line came up.
func LogAlert(key ReadyKey) {
	log.WithFields(log.Fields{
		"order_id":   key.OrderID,
		"product_id": key.ProductID,
	}).Info("item ready for pickup")
}
