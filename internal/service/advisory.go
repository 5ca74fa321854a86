package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"profitlens/internal/domain"
	"profitlens/internal/metrics"
	"profitlens/internal/recommendation"
	"profitlens/internal/store"
)

const forecastHistoryDays = 90

func (d outletData) item(id string) (domain.MenuItemView, error) {
	for _, item := range d.items {
		if item.ID == id {
			return item, nil
		}
	}
	return domain.MenuItemView{}, store.ErrNotFound
}

// ingredientByName matches an ingredient name from a model reply against the
// outlet's stock, ignoring case and surrounding space.
func (d outletData) ingredientByName(name string) (domain.Ingredient, bool) {
	name = strings.TrimSpace(name)
	for _, ing := range d.view.Ingredients {
		if strings.EqualFold(ing.Name, name) {
			return ing, true
		}
	}
	return domain.Ingredient{}, false
}

func (d outletData) imageByName(name string) string {
	for _, item := range d.items {
		if strings.EqualFold(item.Name, strings.TrimSpace(name)) {
			return item.ImageURL
		}
	}
	return ""
}

func (s *Service) MarginFix(ctx context.Context, outletID string, menuItemID string) (domain.AdvisoryText, error) {
	d, err := s.load(outletID)
	if err != nil {
		return domain.AdvisoryText{}, err
	}
	item, err := d.item(menuItemID)
	if err != nil {
		return domain.AdvisoryText{}, err
	}
	text, err := s.advisor.MarginFix(ctx, item)
	if err != nil {
		return domain.AdvisoryText{}, err
	}
	return domain.AdvisoryText{Text: text}, nil
}

func (s *Service) SalesForecast(ctx context.Context, outletID string, menuItemID string) (domain.Forecast, error) {
	d, err := s.load(outletID)
	if err != nil {
		return domain.Forecast{}, err
	}
	item, err := d.item(menuItemID)
	if err != nil {
		return domain.Forecast{}, err
	}
	sales := metrics.SalesSince(d.view.SalesHistory, s.now(), forecastHistoryDays)
	return s.advisor.SalesForecast(ctx, item, sales)
}

func (s *Service) GenerateMenuItem(ctx context.Context, outletID string, req domain.MenuIdeaRequest) (domain.GeneratedMenuItem, error) {
	req.Idea = strings.TrimSpace(req.Idea)
	if err := s.validateRequest(req); err != nil {
		return domain.GeneratedMenuItem{}, err
	}
	d, err := s.load(outletID)
	if err != nil {
		return domain.GeneratedMenuItem{}, err
	}
	return s.advisor.CreateMenuItem(ctx, req.Idea, d.view.Ingredients)
}

// AdoptGeneratedMenuItem adds a generated item to the menu. Recipe lines
// naming an ingredient the current outlet does not stock are dropped.
func (s *Service) AdoptGeneratedMenuItem(ctx context.Context, req domain.AdoptMenuItemRequest) (domain.MenuItem, error) {
	if err := s.validateRequest(req); err != nil {
		return domain.MenuItem{}, err
	}
	d, err := s.load("")
	if err != nil {
		return domain.MenuItem{}, err
	}

	recipe := make([]domain.RecipeComponent, 0, len(req.Item.Recipe))
	for _, line := range req.Item.Recipe {
		ing, ok := d.ingredientByName(line.IngredientName)
		if !ok {
			s.log.Warn("generated recipe line skipped", zap.String("ingredient", line.IngredientName))
			continue
		}
		recipe = append(recipe, domain.RecipeComponent{IngredientID: ing.DefinitionID, Quantity: line.Quantity})
	}

	return s.CreateMenuItem(ctx, domain.MenuItemRequest{
		Name:         req.Item.Name,
		ImageURL:     req.ImageURL,
		SellingPrice: req.Item.SellingPrice,
		TargetMargin: req.TargetMargin,
		Recipe:       recipe,
	})
}

func (s *Service) ReorderSuggestion(ctx context.Context, outletID string, forecasts []domain.NamedForecast) (domain.ReorderSuggestion, error) {
	d, err := s.load(outletID)
	if err != nil {
		return domain.ReorderSuggestion{}, err
	}
	lowStock := metrics.LowStock(d.view.Ingredients)
	if len(lowStock) == 0 {
		return domain.ReorderSuggestion{PurchaseList: []domain.ReorderLine{}}, nil
	}
	return s.advisor.ReorderSuggestion(ctx, recommendation.ReorderInput{
		LowStock:       lowStock,
		Ingredients:    d.view.Ingredients,
		Sales:          d.view.SalesHistory,
		MenuItems:      d.items,
		Waste:          d.view.WasteHistory,
		Forecasts:      forecasts,
		Suppliers:      d.view.Suppliers,
		SupplierPrices: d.view.SupplierPrices,
	})
}

// ConfirmReorder turns a reorder suggestion into a pending purchase order for
// the current outlet. Line prices come from the recommended supplier's price
// list, then the estimated cost, then the ingredient's current price.
func (s *Service) ConfirmReorder(ctx context.Context, req domain.ReorderConfirmRequest) (domain.PendingOrder, error) {
	suggestion := req.Suggestion
	if suggestion.RecommendedSupplier == nil || suggestion.RecommendedSupplier.SupplierID == "" {
		return domain.PendingOrder{}, invalidField("Suggestion.RecommendedSupplier", "failed required")
	}
	d, err := s.load("")
	if err != nil {
		return domain.PendingOrder{}, err
	}

	supplier := domain.OrderSupplier{ID: suggestion.RecommendedSupplier.SupplierID, Name: suggestion.RecommendedSupplier.SupplierName}
	for _, sup := range d.view.Suppliers {
		if sup.ID == supplier.ID {
			supplier.Name = sup.Name
		}
	}
	linked := make(map[string]float64)
	for _, sp := range d.view.SupplierPrices {
		if sp.SupplierID == supplier.ID {
			linked[sp.IngredientID] = sp.Price
		}
	}

	items := make([]domain.PurchaseOrderItem, 0, len(suggestion.PurchaseList))
	for _, line := range suggestion.PurchaseList {
		ing, ok := d.ingredientByName(line.IngredientName)
		if !ok || line.QuantityToOrder <= 0 {
			s.log.Warn("reorder line skipped", zap.String("ingredient", line.IngredientName))
			continue
		}
		price, ok := linked[ing.DefinitionID]
		switch {
		case ok:
		case line.EstimatedCost > 0:
			price = line.EstimatedCost / line.QuantityToOrder
		default:
			price = ing.Price
		}
		unit := line.Unit
		if unit == "" {
			unit = ing.Unit
		}
		items = append(items, domain.PurchaseOrderItem{
			IngredientID:    ing.ID,
			IngredientName:  ing.Name,
			QuantityToOrder: line.QuantityToOrder,
			Unit:            unit,
			Price:           price,
		})
	}
	if len(items) == 0 {
		return domain.PendingOrder{}, invalidField("Suggestion.PurchaseList", "no line matches a stocked ingredient")
	}
	return s.CreatePendingOrder(ctx, domain.PendingOrderRequest{Supplier: supplier, Items: items})
}

func (s *Service) DynamicPrice(ctx context.Context, outletID string, menuItemID string) (domain.DynamicPriceSuggestion, error) {
	d, err := s.load(outletID)
	if err != nil {
		return domain.DynamicPriceSuggestion{}, err
	}
	item, err := d.item(menuItemID)
	if err != nil {
		return domain.DynamicPriceSuggestion{}, err
	}
	return s.advisor.DynamicPrice(ctx, item, d.view.SalesHistory, d.items)
}

func (s *Service) ApplyPriceSuggestion(ctx context.Context, menuItemID string, req domain.PriceSuggestionRequest) (domain.MenuItem, error) {
	if err := s.validateRequest(req); err != nil {
		return domain.MenuItem{}, err
	}
	return s.store.UpdateMenuItemPrice(ctx, menuItemID, req.Suggestion.NewSellingPrice)
}

func (s *Service) BasketAnalysis(ctx context.Context, outletID string) (domain.BasketAnalysis, error) {
	d, err := s.load(outletID)
	if err != nil {
		return domain.BasketAnalysis{}, err
	}
	analysis, err := s.advisor.BasketAnalysis(ctx, d.items, d.view.SalesHistory)
	if err != nil {
		return domain.BasketAnalysis{}, err
	}
	for i, p := range analysis.Pairings {
		if p.Item1ImageURL == "" {
			analysis.Pairings[i].Item1ImageURL = d.imageByName(p.Item1Name)
		}
		if p.Item2ImageURL == "" {
			analysis.Pairings[i].Item2ImageURL = d.imageByName(p.Item2Name)
		}
	}
	return analysis, nil
}

func (s *Service) MarketingCampaign(ctx context.Context, outletID string) (domain.MarketingCampaignSuggestion, error) {
	d, err := s.load(outletID)
	if err != nil {
		return domain.MarketingCampaignSuggestion{}, err
	}
	return s.advisor.MarketingCampaign(ctx, d.items, d.view.SalesHistory)
}

// MenuEngineering classifies the menu. Items the model returns without an
// image are matched back to the menu by id, then by name.
func (s *Service) MenuEngineering(ctx context.Context, outletID string) (domain.MenuEngineeringAnalysis, error) {
	d, err := s.load(outletID)
	if err != nil {
		return domain.MenuEngineeringAnalysis{}, err
	}
	analysis, err := s.advisor.MenuEngineering(ctx, d.items, d.view.SalesHistory)
	if err != nil {
		return domain.MenuEngineeringAnalysis{}, err
	}
	for i, it := range analysis.Items {
		if it.ImageURL != "" {
			continue
		}
		if item, err := d.item(it.ID); err == nil {
			analysis.Items[i].ImageURL = item.ImageURL
			continue
		}
		analysis.Items[i].ImageURL = d.imageByName(it.Name)
	}
	return analysis, nil
}

func (s *Service) WastePrevention(ctx context.Context, outletID string) (domain.WastePreventionAdvice, error) {
	d, err := s.load(outletID)
	if err != nil {
		return domain.WastePreventionAdvice{}, err
	}
	return s.advisor.WastePrevention(ctx, d.view.WasteHistory, d.view.Ingredients)
}

func (s *Service) CompetitorAnalysis(ctx context.Context, outletID string, req domain.CompetitorRequest) (domain.CompetitorAnalysis, error) {
	req.Location = strings.TrimSpace(req.Location)
	if err := s.validateRequest(req); err != nil {
		return domain.CompetitorAnalysis{}, err
	}
	d, err := s.load(outletID)
	if err != nil {
		return domain.CompetitorAnalysis{}, err
	}
	return s.advisor.CompetitorAnalysis(ctx, req.Location, d.items)
}

func (s *Service) ProfitLossAnalysis(ctx context.Context, outletID string, periodDays int) (domain.AdvisoryText, error) {
	pl, err := s.ProfitLoss(outletID, periodDays)
	if err != nil {
		return domain.AdvisoryText{}, err
	}
	text, err := s.advisor.ProfitLossAnalysis(ctx, pl)
	if err != nil {
		return domain.AdvisoryText{}, err
	}
	return domain.AdvisoryText{Text: text}, nil
}

// Chat streams the assistant's reply grounded on one outlet's data.
func (s *Service) Chat(ctx context.Context, outletID string, req domain.ChatRequest, onChunk func(text string) error) error {
	req.Message = strings.TrimSpace(req.Message)
	if err := s.validateRequest(req); err != nil {
		return err
	}
	d, err := s.load(outletID)
	if err != nil {
		return err
	}
	in := recommendation.ChatInput{
		MenuItems:        d.items,
		Ingredients:      d.view.Ingredients,
		OperationalCosts: d.view.OperationalCosts,
		Sales:            d.view.SalesHistory,
	}
	return s.advisor.Chat(ctx, in, req.History, req.Message, onChunk)
}
