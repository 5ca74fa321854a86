package notification

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"profitlens/internal/domain"
)

// Derive builds low stock and margin alert notifications for one outlet's
// ingredients. Nothing is persisted; read state comes from reads.
func Derive(ingredients []domain.Ingredient, alerts []domain.MarginAlert, reads *ReadSet, now time.Time) []domain.Notification {
	out := make([]domain.Notification, 0, len(ingredients)+len(alerts))

	for _, ing := range ingredients {
		if !ing.IsLowStock() {
			continue
		}
		out = append(out, domain.Notification{
			ID:               "lowstock-" + ing.ID,
			Type:             domain.NotificationLowStock,
			Message:          fmt.Sprintf("Stok untuk %s menipis (%s %s). Segera lakukan pemesanan ulang.", ing.Name, formatQty(ing.StockLevel), ing.Unit),
			Timestamp:        now,
			RelatedView:      "inventory",
			RelatedViewProps: map[string]string{"filter": "low_stock"},
		})
	}

	for i, alert := range alerts {
		out = append(out, domain.Notification{
			ID:          fmt.Sprintf("margin-%s-%d", alert.IngredientName, i),
			Type:        domain.NotificationMarginAlert,
			Message:     fmt.Sprintf("Harga %s naik %d%%, mempengaruhi margin %s.", alert.IngredientName, alert.PriceIncreasePercent, strings.Join(alert.AffectedMenus, ", ")),
			Timestamp:   now,
			RelatedView: "dashboard",
		})
	}

	for i := range out {
		out[i].IsRead = reads.Has(out[i].ID)
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Timestamp.After(out[b].Timestamp)
	})
	return out
}

func formatQty(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ReadSet tracks notification ids the user has seen. It lives in memory only.
type ReadSet struct {
	mu  sync.RWMutex
	ids map[string]struct{}
}

func NewReadSet() *ReadSet {
	return &ReadSet{ids: make(map[string]struct{})}
}

func (r *ReadSet) MarkRead(ids ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		if id == "" {
			continue
		}
		r.ids[id] = struct{}{}
	}
}

func (r *ReadSet) Has(id string) bool {
	if r == nil {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.ids[id]
	return ok
}

func (r *ReadSet) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.ids)
}
