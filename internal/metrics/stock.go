package metrics

import (
	"fmt"

	"profitlens/internal/domain"
)

// Consumption returns the stock each sold quantity would draw, keyed by
// ingredient instance id. Components the outlet does not stock are skipped.
func Consumption(sales map[string]int, menuItems []domain.MenuItem, cat Catalog) map[string]float64 {
	used := make(map[string]float64)
	for _, item := range menuItems {
		sold := sales[item.ID]
		if sold <= 0 {
			continue
		}
		for _, component := range item.Recipe {
			ing, ok := cat.Resolve(component.IngredientID)
			if !ok {
				continue
			}
			used[ing.ID] += component.Quantity * float64(sold)
		}
	}
	return used
}

// StockWarnings checks a not yet submitted sales recap against the outlet's
// stock. Requirements are aggregated across all sold items per ingredient
// definition; each sold item is flagged for the first recipe component whose
// aggregated requirement exceeds what the outlet holds. An ingredient the
// outlet does not stock counts as zero available.
func StockWarnings(sales map[string]int, menuItems []domain.MenuItem, ingredients []domain.Ingredient, outletID string) map[string]string {
	cat := NewCatalog(ingredients, outletID)

	required := make(map[string]float64)
	for _, item := range menuItems {
		sold := sales[item.ID]
		if sold <= 0 {
			continue
		}
		for _, component := range item.Recipe {
			required[component.IngredientID] += component.Quantity * float64(sold)
		}
	}

	warnings := make(map[string]string)
	for _, item := range menuItems {
		if sales[item.ID] <= 0 {
			continue
		}
		for _, component := range item.Recipe {
			available := 0.0
			if ing, ok := cat.Resolve(component.IngredientID); ok {
				available = ing.StockLevel
			}
			if required[component.IngredientID] > available {
				warnings[item.ID] = fmt.Sprintf("Stok %s mungkin tidak cukup untuk memenuhi penjualan.", definitionName(component.IngredientID, cat, ingredients))
				break
			}
		}
	}
	return warnings
}

func definitionName(definitionID string, cat Catalog, ingredients []domain.Ingredient) string {
	if ing, ok := cat.Resolve(definitionID); ok {
		return ing.Name
	}
	for _, ing := range ingredients {
		if ing.DefinitionID == definitionID {
			return ing.Name
		}
	}
	return definitionID
}
