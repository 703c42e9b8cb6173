package tracking

import (
	"context"
	"sync"
	"time"

	"order-tracking-api/models"
	"order-tracking-api/store"
)

// Manager hands out one running feed per company, created lazily the first
// time a staff tracking view asks for it.
type Manager struct {
	mu       sync.Mutex
	feeds    map[uint]*Feed
	ctx      context.Context
	interval time.Duration
	alert    AlertFunc
}

func NewManager(ctx context.Context, interval time.Duration, alert AlertFunc) *Manager {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if alert == nil {
		alert = LogAlert
	}
	return &Manager{
		feeds:    make(map[uint]*Feed),
		ctx:      ctx,
		interval: interval,
		alert:    alert,
	}
}

// ForCompany returns the company's feed, starting it on first use
func (m *Manager) ForCompany(companyID uint) *Feed {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f, ok := m.feeds[companyID]; ok {
		return f
	}
	f := &Feed{
		Poll:     func() ([]models.Order, error) { return store.GetActiveOrders(companyID) },
		Alert:    m.alert,
		Interval: m.interval,
	}
	f.Start(m.ctx)
	m.feeds[companyID] = f
	return f
}
