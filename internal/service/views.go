package service

import (
	"profitlens/internal/domain"
	"profitlens/internal/metrics"
	"profitlens/internal/notification"
	"profitlens/internal/store"
)

// outletData is one outlet's partition with its menu costed against that
// outlet's ingredient prices.
type outletData struct {
	view  store.OutletView
	cat   metrics.Catalog
	items []domain.MenuItemView
}

func (s *Service) load(outletID string) (outletData, error) {
	view, err := s.store.View(outletID)
	if err != nil {
		return outletData{}, err
	}
	cat := metrics.NewCatalog(view.AllIngredients, view.Outlet.ID)
	return outletData{
		view:  view,
		cat:   cat,
		items: metrics.MenuItemViews(view.MenuItems, cat),
	}, nil
}

func (s *Service) campaignPerformance(campaign *domain.ActiveCampaign) *domain.CampaignPerformance {
	if campaign == nil {
		return nil
	}
	view, err := s.store.View("")
	if err != nil {
		return nil
	}
	return metrics.CampaignPerformance(campaign, view.MenuItems, view.AllSalesHistory, s.now())
}

func (s *Service) Ingredients(outletID string) ([]domain.IngredientView, error) {
	d, err := s.load(outletID)
	if err != nil {
		return nil, err
	}
	return metrics.IngredientsWithWasteCost(d.view.Ingredients, d.view.WasteHistory, s.now()), nil
}

func (s *Service) LowStock(outletID string) ([]domain.Ingredient, error) {
	d, err := s.load(outletID)
	if err != nil {
		return nil, err
	}
	return metrics.LowStock(d.view.Ingredients), nil
}

func (s *Service) MenuItems(outletID string) ([]domain.MenuItemView, error) {
	d, err := s.load(outletID)
	if err != nil {
		return nil, err
	}
	return d.items, nil
}

func (s *Service) MenuItemDetail(outletID string, id string) (domain.MenuItemDetail, error) {
	d, err := s.load(outletID)
	if err != nil {
		return domain.MenuItemDetail{}, err
	}
	for _, item := range d.view.MenuItems {
		if item.ID == id {
			return metrics.MenuItemDetail(item, d.cat), nil
		}
	}
	return domain.MenuItemDetail{}, store.ErrNotFound
}

// Dashboard assembles the dashboard of one outlet. compare adds the revenue
// of the preceding window of equal length.
func (s *Service) Dashboard(outletID string, rangeDays int, compare bool) (domain.Dashboard, error) {
	d, err := s.load(outletID)
	if err != nil {
		return domain.Dashboard{}, err
	}
	rangeDays = s.rangeOrDefault(rangeDays)
	now := s.now()
	v := d.view

	dash := domain.Dashboard{
		OutletID:            v.Outlet.ID,
		RangeDays:           rangeDays,
		Stats:               metrics.DashboardStats(rangeDays, now, v.SalesHistory, d.items, v.Ingredients, v.OperationalCosts, v.WasteHistory),
		Chart:               metrics.RevenueChart(rangeDays, now, v.SalesHistory),
		MarginAlerts:        metrics.MarginAlerts(v.Ingredients, v.MenuItems),
		WasteSummary:        metrics.WasteSummary(v.WasteHistory),
		CampaignPerformance: metrics.CampaignPerformance(v.ActiveCampaign, v.MenuItems, v.AllSalesHistory, now),
	}
	if compare {
		comparison := metrics.ComparisonChart(rangeDays, now, v.SalesHistory)
		dash.Comparison = &comparison
	}
	return dash, nil
}

func (s *Service) ProfitLoss(outletID string, periodDays int) (domain.ProfitLoss, error) {
	d, err := s.load(outletID)
	if err != nil {
		return domain.ProfitLoss{}, err
	}
	v := d.view
	return metrics.ProfitLoss(s.rangeOrDefault(periodDays), s.now(), v.SalesHistory, d.items, v.OperationalCosts, v.WasteHistory), nil
}

func (s *Service) InventoryOverview(outletID string) (domain.InventoryOverview, error) {
	d, err := s.load(outletID)
	if err != nil {
		return domain.InventoryOverview{}, err
	}
	return metrics.InventoryOverview(d.view.Ingredients, d.view.WasteHistory, s.now()), nil
}

func (s *Service) MarginAlerts(outletID string) ([]domain.MarginAlert, error) {
	d, err := s.load(outletID)
	if err != nil {
		return nil, err
	}
	return metrics.MarginAlerts(d.view.Ingredients, d.view.MenuItems), nil
}

// Performance ranks items over the last days, or the default dashboard range.
func (s *Service) Performance(outletID string, days int) (domain.DetailedPerformance, error) {
	d, err := s.load(outletID)
	if err != nil {
		return domain.DetailedPerformance{}, err
	}
	sales := metrics.SalesSince(d.view.SalesHistory, s.now(), s.rangeOrDefault(days))
	return metrics.Performance(d.items, sales), nil
}

func (s *Service) Notifications(outletID string) ([]domain.Notification, error) {
	d, err := s.load(outletID)
	if err != nil {
		return nil, err
	}
	alerts := metrics.MarginAlerts(d.view.Ingredients, d.view.MenuItems)
	return notification.Derive(d.view.Ingredients, alerts, s.reads, s.now()), nil
}

// MarkNotificationsRead records ids as read. Read state lives for the
// lifetime of the process only.
func (s *Service) MarkNotificationsRead(req domain.MarkReadRequest) error {
	if err := s.validateRequest(req); err != nil {
		return err
	}
	s.reads.MarkRead(req.IDs...)
	return nil
}

// Digests summarizes every outlet for the scheduled reports.
func (s *Service) Digests(periodDays int) []domain.OutletDigest {
	outlets := s.store.Outlets()
	out := make([]domain.OutletDigest, 0, len(outlets))
	for _, outlet := range outlets {
		d, err := s.load(outlet.ID)
		if err != nil {
			continue
		}
		v := d.view
		now := s.now()
		alerts := metrics.MarginAlerts(v.Ingredients, v.MenuItems)
		unread := 0
		for _, n := range notification.Derive(v.Ingredients, alerts, s.reads, now) {
			if !n.IsRead {
				unread++
			}
		}
		out = append(out, domain.OutletDigest{
			Outlet:        outlet,
			LowStock:      metrics.LowStock(v.Ingredients),
			MarginAlerts:  alerts,
			ProfitLoss:    metrics.ProfitLoss(s.rangeOrDefault(periodDays), now, v.SalesHistory, d.items, v.OperationalCosts, v.WasteHistory),
			GeneratedAt:   now,
			Notifications: unread,
		})
	}
	return out
}
