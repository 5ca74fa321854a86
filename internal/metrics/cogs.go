// Package metrics derives dashboard figures from store snapshots. Every
// function is pure: unresolved references contribute zero instead of failing.
package metrics

import (
	"profitlens/internal/domain"
)

// Catalog indexes one outlet's ingredient instances by definition id.
type Catalog map[string]domain.Ingredient

// NewCatalog indexes the instances of outletID. The first instance of a
// definition wins.
func NewCatalog(ingredients []domain.Ingredient, outletID string) Catalog {
	cat := make(Catalog, len(ingredients))
	for _, ing := range ingredients {
		if ing.OutletID != outletID {
			continue
		}
		if _, exists := cat[ing.DefinitionID]; exists {
			continue
		}
		cat[ing.DefinitionID] = ing
	}
	return cat
}

func (c Catalog) Resolve(definitionID string) (domain.Ingredient, bool) {
	ing, ok := c[definitionID]
	return ing, ok
}

func COGS(item domain.MenuItem, cat Catalog) float64 {
	total := 0.0
	for _, component := range item.Recipe {
		ing, ok := cat.Resolve(component.IngredientID)
		if !ok {
			continue
		}
		total += ing.Price * component.Quantity
	}
	return total
}

func ActualMargin(sellingPrice float64, cogs float64) float64 {
	if sellingPrice > 0 {
		return (sellingPrice - cogs) / sellingPrice * 100
	}
	return 0
}

func ClassifyMargin(actualMargin float64, targetMargin float64) domain.MarginStatus {
	diff := actualMargin - targetMargin
	switch {
	case diff < -10:
		return domain.MarginDanger
	case diff < 0:
		return domain.MarginWarning
	default:
		return domain.MarginSafe
	}
}

func MenuItemView(item domain.MenuItem, cat Catalog) domain.MenuItemView {
	cogs := COGS(item, cat)
	margin := ActualMargin(item.SellingPrice, cogs)
	return domain.MenuItemView{
		MenuItem:     item,
		COGS:         cogs,
		ActualMargin: margin,
		MarginStatus: ClassifyMargin(margin, item.TargetMargin),
	}
}

// MenuItemViews prices every menu item against one outlet's ingredients.
func MenuItemViews(items []domain.MenuItem, cat Catalog) []domain.MenuItemView {
	views := make([]domain.MenuItemView, 0, len(items))
	for _, item := range items {
		views = append(views, MenuItemView(item, cat))
	}
	return views
}

// MenuItemDetail resolves the recipe to outlet instances, dropping components
// the outlet does not stock.
func MenuItemDetail(item domain.MenuItem, cat Catalog) domain.MenuItemDetail {
	detail := domain.MenuItemDetail{
		MenuItemView: MenuItemView(item, cat),
		Ingredients:  make([]domain.ResolvedComponent, 0, len(item.Recipe)),
	}
	for _, component := range item.Recipe {
		ing, ok := cat.Resolve(component.IngredientID)
		if !ok {
			continue
		}
		detail.Ingredients = append(detail.Ingredients, domain.ResolvedComponent{Ingredient: ing, Quantity: component.Quantity})
	}
	return detail
}
