package metrics

import (
	"time"

	"profitlens/internal/domain"
)

func DashboardStats(
	rangeDays int,
	now time.Time,
	sales []domain.SalesRecord,
	menuItems []domain.MenuItemView,
	ingredients []domain.Ingredient,
	costs []domain.OperationalCost,
	waste []domain.WasteRecord,
) domain.DashboardStats {
	stats := domain.DashboardStats{
		NetProfit:     ProfitLoss(rangeDays, now, sales, menuItems, costs, waste).NetProfit,
		LowStockCount: len(LowStock(ingredients)),
	}
	for _, rec := range SalesSince(sales, now, rangeDays) {
		stats.TotalRevenue += rec.TotalRevenue
		stats.TotalItemsSold += rec.QuantitySold
	}
	if len(menuItems) > 0 {
		sum := 0.0
		for _, item := range menuItems {
			sum += item.ActualMargin
		}
		stats.AverageMargin = sum / float64(len(menuItems))
	}
	return stats
}

// RevenueChart buckets revenue per day for the last rangeDays days, oldest first.
func RevenueChart(rangeDays int, now time.Time, sales []domain.SalesRecord) domain.ChartData {
	return dailyRevenue(rangeDays, now, 0, SalesSince(sales, now, rangeDays))
}

// ComparisonChart buckets the rangeDays days preceding the current range.
func ComparisonChart(rangeDays int, now time.Time, sales []domain.SalesRecord) domain.ChartData {
	start := now.AddDate(0, 0, -2*rangeDays)
	end := now.AddDate(0, 0, -rangeDays)

	previous := make([]domain.SalesRecord, 0)
	for _, rec := range sales {
		day := rec.Day()
		if !day.Before(start) && day.Before(end) {
			previous = append(previous, rec)
		}
	}
	return dailyRevenue(rangeDays, now, rangeDays, previous)
}

func dailyRevenue(rangeDays int, now time.Time, offsetDays int, sales []domain.SalesRecord) domain.ChartData {
	if rangeDays < 0 {
		rangeDays = 0
	}
	chart := domain.ChartData{
		Labels: make([]string, 0, rangeDays),
		Data:   make([]float64, rangeDays),
	}
	slot := make(map[string]int, rangeDays)
	for i := rangeDays - 1; i >= 0; i-- {
		label := now.AddDate(0, 0, -offsetDays-i).UTC().Format(domain.DateLayout)
		slot[label] = len(chart.Labels)
		chart.Labels = append(chart.Labels, label)
	}
	for _, rec := range sales {
		if i, ok := slot[rec.Date]; ok {
			chart.Data[i] += rec.TotalRevenue
		}
	}
	return chart
}
