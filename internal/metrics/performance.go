package metrics

import (
	"sort"

	"profitlens/internal/domain"
)

const topN = 3

type performanceRow struct {
	item      domain.MenuItemView
	unitsSold float64
	revenue   float64
}

// Performance ranks menu items over the given sales. Each ranking sorts its
// own copy stably, so ties keep menu insertion order.
func Performance(menuItems []domain.MenuItemView, sales []domain.SalesRecord) domain.DetailedPerformance {
	rows := make([]performanceRow, 0, len(menuItems))
	index := make(map[string]int, len(menuItems))
	for i, item := range menuItems {
		index[item.ID] = i
		rows = append(rows, performanceRow{item: item})
	}
	for _, rec := range sales {
		i, ok := index[rec.MenuItemID]
		if !ok {
			continue
		}
		rows[i].unitsSold += float64(rec.QuantitySold)
		rows[i].revenue += rec.TotalRevenue
	}

	units := func(r performanceRow) float64 { return r.unitsSold }
	revenue := func(r performanceRow) float64 { return r.revenue }
	margin := func(r performanceRow) float64 { return r.item.ActualMargin }

	return domain.DetailedPerformance{
		BestSellersByUnit:    topBy(rows, units, true),
		HighestRevenueItems:  topBy(rows, revenue, true),
		MostProfitableItems:  topBy(rows, margin, true),
		LeastProfitableItems: topBy(rows, margin, false),
	}
}

func topBy(rows []performanceRow, metric func(performanceRow) float64, desc bool) []domain.PerformanceItem {
	sorted := make([]performanceRow, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(a, b int) bool {
		if desc {
			return metric(sorted[a]) > metric(sorted[b])
		}
		return metric(sorted[a]) < metric(sorted[b])
	})

	n := min(topN, len(sorted))
	out := make([]domain.PerformanceItem, 0, n)
	for _, row := range sorted[:n] {
		out = append(out, domain.PerformanceItem{
			ID:       row.item.ID,
			Name:     row.item.Name,
			ImageURL: row.item.ImageURL,
			Metric:   metric(row),
		})
	}
	return out
}
