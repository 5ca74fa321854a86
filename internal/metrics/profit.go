package metrics

import (
	"time"

	"profitlens/internal/domain"
)

// SalesSince keeps records dated on or after now minus days.
func SalesSince(sales []domain.SalesRecord, now time.Time, days int) []domain.SalesRecord {
	cutoff := now.AddDate(0, 0, -days)
	out := make([]domain.SalesRecord, 0, len(sales))
	for _, rec := range sales {
		if !rec.Day().Before(cutoff) {
			out = append(out, rec)
		}
	}
	return out
}

func WasteSince(waste []domain.WasteRecord, now time.Time, days int) []domain.WasteRecord {
	cutoff := now.AddDate(0, 0, -days)
	out := make([]domain.WasteRecord, 0, len(waste))
	for _, rec := range waste {
		if !rec.Date.Before(cutoff) {
			out = append(out, rec)
		}
	}
	return out
}

// ProfitLoss rolls up one outlet's figures over the last periodDays. COGS uses
// the menu items' current cost; sales of deleted menu items are ignored.
func ProfitLoss(
	periodDays int,
	now time.Time,
	sales []domain.SalesRecord,
	menuItems []domain.MenuItemView,
	costs []domain.OperationalCost,
	waste []domain.WasteRecord,
) domain.ProfitLoss {
	byID := make(map[string]domain.MenuItemView, len(menuItems))
	for _, item := range menuItems {
		byID[item.ID] = item
	}

	pl := domain.ProfitLoss{PeriodDays: periodDays}
	for _, sale := range SalesSince(sales, now, periodDays) {
		item, ok := byID[sale.MenuItemID]
		if !ok {
			continue
		}
		pl.TotalRevenue += sale.TotalRevenue
		pl.TotalCOGS += item.COGS * float64(sale.QuantitySold)
	}

	for _, cost := range costs {
		pl.TotalOperationalCost += cost.DailyAmount() * float64(periodDays)
	}
	for _, rec := range WasteSince(waste, now, periodDays) {
		pl.TotalWasteCost += rec.Cost
	}

	pl.GrossProfit = pl.TotalRevenue - pl.TotalCOGS
	pl.NetProfit = pl.GrossProfit - pl.TotalOperationalCost - pl.TotalWasteCost
	if pl.TotalRevenue > 0 {
		pl.GrossProfitMargin = pl.GrossProfit / pl.TotalRevenue * 100
		pl.NetProfitMargin = pl.NetProfit / pl.TotalRevenue * 100
	}
	return pl
}
