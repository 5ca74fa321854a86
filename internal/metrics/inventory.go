package metrics

import (
	"math"
	"time"

	"profitlens/internal/domain"
)

const wasteWindowDays = 30

func InventoryOverview(ingredients []domain.Ingredient, waste []domain.WasteRecord, now time.Time) domain.InventoryOverview {
	overview := domain.InventoryOverview{TotalItems: len(ingredients)}
	for _, ing := range ingredients {
		if ing.IsLowStock() {
			overview.LowStockCount++
		}
		overview.TotalStockValue += ing.Price * ing.StockLevel
	}
	for _, rec := range WasteSince(waste, now, wasteWindowDays) {
		overview.TotalWasteCostLast30Days += rec.Cost
	}
	return overview
}

func LowStock(ingredients []domain.Ingredient) []domain.Ingredient {
	out := make([]domain.Ingredient, 0)
	for _, ing := range ingredients {
		if ing.IsLowStock() {
			out = append(out, ing)
		}
	}
	return out
}

func IngredientsWithWasteCost(ingredients []domain.Ingredient, waste []domain.WasteRecord, now time.Time) []domain.IngredientView {
	costByIngredient := make(map[string]float64)
	for _, rec := range WasteSince(waste, now, wasteWindowDays) {
		costByIngredient[rec.IngredientID] += rec.Cost
	}

	views := make([]domain.IngredientView, 0, len(ingredients))
	for _, ing := range ingredients {
		views = append(views, domain.IngredientView{
			Ingredient:          ing,
			WasteCostLast30Days: costByIngredient[ing.ID],
		})
	}
	return views
}

// MarginAlerts reports ingredients whose price rose more than 10% over the
// previous price, naming every menu item whose recipe uses them. Ingredients
// used by no menu item produce no alert.
func MarginAlerts(ingredients []domain.Ingredient, menuItems []domain.MenuItem) []domain.MarginAlert {
	alerts := make([]domain.MarginAlert, 0)
	for _, ing := range ingredients {
		if ing.PreviousPrice == nil || *ing.PreviousPrice <= 0 || ing.Price <= *ing.PreviousPrice {
			continue
		}
		prev := *ing.PreviousPrice
		increase := (ing.Price - prev) / prev * 100
		if increase <= 10 {
			continue
		}

		affected := make([]string, 0)
		for _, item := range menuItems {
			if usesDefinition(item, ing.DefinitionID) {
				affected = append(affected, item.Name)
			}
		}
		if len(affected) == 0 {
			continue
		}

		alerts = append(alerts, domain.MarginAlert{
			IngredientID:         ing.ID,
			IngredientName:       ing.Name,
			PriceIncreasePercent: int(math.Round(increase)),
			AffectedMenus:        affected,
		})
	}
	return alerts
}

func usesDefinition(item domain.MenuItem, definitionID string) bool {
	for _, component := range item.Recipe {
		if component.IngredientID == definitionID {
			return true
		}
	}
	return false
}

// WasteSummary totals waste cost per reason. Every known reason is present,
// in declaration order, followed by any unknown reasons found in the records.
func WasteSummary(waste []domain.WasteRecord) domain.ChartData {
	totals := make(map[domain.WasteReason]float64, len(domain.WasteReasons))
	order := make([]domain.WasteReason, 0, len(domain.WasteReasons))
	for _, reason := range domain.WasteReasons {
		totals[reason] = 0
		order = append(order, reason)
	}
	for _, rec := range waste {
		if _, known := totals[rec.Reason]; !known {
			order = append(order, rec.Reason)
		}
		totals[rec.Reason] += rec.Cost
	}

	chart := domain.ChartData{
		Labels: make([]string, 0, len(order)),
		Data:   make([]float64, 0, len(order)),
	}
	for _, reason := range order {
		chart.Labels = append(chart.Labels, string(reason))
		chart.Data = append(chart.Data, totals[reason])
	}
	return chart
}
