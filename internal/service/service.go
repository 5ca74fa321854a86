package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"profitlens/internal/domain"
	"profitlens/internal/notification"
	"profitlens/internal/recommendation"
	"profitlens/internal/store"
)

// ValidationError lists the request fields that failed validation.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func (e *ValidationError) Unwrap() error {
	return store.ErrInvalidInput
}

func invalidField(field string, message string) error {
	return &ValidationError{Fields: map[string]string{field: message}}
}

type Options struct {
	Logger           *zap.Logger
	Now              func() time.Time
	DefaultRangeDays int
}

type Service struct {
	store            *store.Store
	advisor          *recommendation.Engine
	validate         *validator.Validate
	reads            *notification.ReadSet
	log              *zap.Logger
	now              func() time.Time
	defaultRangeDays int
}

func New(st *store.Store, advisor *recommendation.Engine, opts Options) *Service {
	if advisor == nil {
		advisor = recommendation.NewEngine(nil, nil, recommendation.Options{})
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.DefaultRangeDays < 1 {
		opts.DefaultRangeDays = 30
	}

	return &Service{
		store:            st,
		advisor:          advisor,
		validate:         validator.New(),
		reads:            notification.NewReadSet(),
		log:              opts.Logger,
		now:              opts.Now,
		defaultRangeDays: opts.DefaultRangeDays,
	}
}

func (s *Service) AdvisoryEnabled() bool {
	return s.advisor.Enabled()
}

func (s *Service) validateRequest(req any) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", store.ErrInvalidInput, err)
	}
	fields := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		name := fe.Namespace()
		if idx := strings.Index(name, "."); idx >= 0 {
			name = name[idx+1:]
		}
		if fe.Param() != "" {
			fields[name] = fmt.Sprintf("failed %s=%s", fe.Tag(), fe.Param())
		} else {
			fields[name] = "failed " + fe.Tag()
		}
	}
	return &ValidationError{Fields: fields}
}

func (s *Service) rangeOrDefault(days int) int {
	if days < 1 {
		return s.defaultRangeDays
	}
	return days
}

func (s *Service) ListOutlets() domain.OutletList {
	return domain.OutletList{Outlets: s.store.Outlets(), CurrentOutletID: s.store.CurrentOutletID()}
}

func (s *Service) CreateOutlet(ctx context.Context, req domain.OutletRequest) (domain.Outlet, error) {
	req.Normalize()
	if err := s.validateRequest(req); err != nil {
		return domain.Outlet{}, err
	}
	return s.store.AddOutlet(ctx, req.Name)
}

func (s *Service) RenameOutlet(ctx context.Context, id string, req domain.OutletRequest) (domain.Outlet, error) {
	req.Normalize()
	if err := s.validateRequest(req); err != nil {
		return domain.Outlet{}, err
	}
	return s.store.UpdateOutlet(ctx, id, req.Name)
}

func (s *Service) DeleteOutlet(ctx context.Context, id string) (domain.Result, error) {
	return s.store.DeleteOutlet(ctx, id)
}

// SelectOutlet switches the current outlet. Unknown ids are not found.
func (s *Service) SelectOutlet(ctx context.Context, req domain.SelectOutletRequest) (domain.OutletList, error) {
	if err := s.validateRequest(req); err != nil {
		return domain.OutletList{}, err
	}
	ok, err := s.store.SetCurrentOutlet(ctx, req.OutletID)
	if err != nil {
		return domain.OutletList{}, err
	}
	if !ok {
		return domain.OutletList{}, store.ErrNotFound
	}
	return s.ListOutlets(), nil
}

func (s *Service) Profile() domain.User {
	return s.store.User()
}

func (s *Service) UpdateProfile(ctx context.Context, req domain.UserUpdateRequest) (domain.User, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Role = strings.TrimSpace(req.Role)
	if err := s.validateRequest(req); err != nil {
		return domain.User{}, err
	}
	return s.store.UpdateUser(ctx, req.Name, req.Role)
}

func (s *Service) CreateIngredient(ctx context.Context, req domain.IngredientCreateRequest) (domain.Ingredient, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Unit = strings.TrimSpace(req.Unit)
	if err := s.validateRequest(req); err != nil {
		return domain.Ingredient{}, err
	}
	return s.store.AddIngredient(ctx, req)
}

// UpdateIngredientPrices applies the daily price list of the current outlet
// and returns its ingredients.
func (s *Service) UpdateIngredientPrices(ctx context.Context, req domain.BulkPriceUpdateRequest) ([]domain.Ingredient, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}
	if err := s.store.UpdateIngredientPrices(ctx, req.Prices); err != nil {
		return nil, err
	}
	return s.store.Ingredients(s.store.CurrentOutletID()), nil
}

func (s *Service) UpdateIngredientPrice(ctx context.Context, id string, req domain.PriceUpdateRequest) (domain.Ingredient, error) {
	if err := s.validateRequest(req); err != nil {
		return domain.Ingredient{}, err
	}
	return s.store.UpdateIngredientPrice(ctx, id, req.Price)
}

func (s *Service) UpdateIngredientStock(ctx context.Context, id string, req domain.StockUpdateRequest) (domain.Ingredient, error) {
	if err := s.validateRequest(req); err != nil {
		return domain.Ingredient{}, err
	}
	return s.store.UpdateIngredientStock(ctx, id, req.StockLevel)
}

func (s *Service) UpdateIngredientUnit(ctx context.Context, id string, req domain.UnitUpdateRequest) (domain.Ingredient, error) {
	req.Unit = strings.TrimSpace(req.Unit)
	if err := s.validateRequest(req); err != nil {
		return domain.Ingredient{}, err
	}
	return s.store.UpdateIngredientUnit(ctx, id, req.Unit)
}

func (s *Service) DeleteIngredient(ctx context.Context, id string) (domain.Result, error) {
	return s.store.DeleteIngredient(ctx, id)
}

func (s *Service) CreateMenuItem(ctx context.Context, req domain.MenuItemRequest) (domain.MenuItem, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validateRequest(req); err != nil {
		return domain.MenuItem{}, err
	}
	return s.store.AddMenuItem(ctx, req)
}

func (s *Service) UpdateMenuItem(ctx context.Context, id string, req domain.MenuItemRequest) (domain.MenuItem, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validateRequest(req); err != nil {
		return domain.MenuItem{}, err
	}
	return s.store.UpdateMenuItem(ctx, id, req)
}

func (s *Service) UpdateMenuItemPrice(ctx context.Context, id string, req domain.PriceUpdateRequest) (domain.MenuItem, error) {
	if err := s.validateRequest(req); err != nil {
		return domain.MenuItem{}, err
	}
	return s.store.UpdateMenuItemPrice(ctx, id, req.Price)
}

func (s *Service) DeleteMenuItem(ctx context.Context, id string) error {
	return s.store.DeleteMenuItem(ctx, id)
}

func (s *Service) ListOperationalCosts(outletID string) ([]domain.OperationalCost, error) {
	view, err := s.store.View(outletID)
	if err != nil {
		return nil, err
	}
	return view.OperationalCosts, nil
}

func (s *Service) CreateOperationalCost(ctx context.Context, req domain.OperationalCostRequest) (domain.OperationalCost, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validateRequest(req); err != nil {
		return domain.OperationalCost{}, err
	}
	return s.store.AddOperationalCost(ctx, req)
}

func (s *Service) UpdateOperationalCost(ctx context.Context, id string, req domain.OperationalCostRequest) (domain.OperationalCost, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validateRequest(req); err != nil {
		return domain.OperationalCost{}, err
	}
	return s.store.UpdateOperationalCost(ctx, id, req)
}

func (s *Service) DeleteOperationalCost(ctx context.Context, id string) error {
	return s.store.DeleteOperationalCost(ctx, id)
}

func (s *Service) ListWaste(outletID string) ([]domain.WasteRecord, error) {
	view, err := s.store.View(outletID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(view.WasteHistory, func(a, b int) bool {
		return view.WasteHistory[a].Date.After(view.WasteHistory[b].Date)
	})
	return view.WasteHistory, nil
}

func (s *Service) RecordWaste(ctx context.Context, req domain.WasteRecordRequest) (domain.WasteRecord, error) {
	if err := s.validateRequest(req); err != nil {
		return domain.WasteRecord{}, err
	}
	if !req.Reason.Valid() {
		return domain.WasteRecord{}, invalidField("Reason", "unknown waste reason")
	}
	return s.store.AddWasteRecord(ctx, req)
}

func (s *Service) DeleteWaste(ctx context.Context, id string) error {
	return s.store.DeleteWasteRecord(ctx, id)
}

func (s *Service) ListSuppliers() []domain.Supplier {
	return s.store.Suppliers()
}

func (s *Service) CreateSupplier(ctx context.Context, req domain.SupplierRequest) (domain.Supplier, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validateRequest(req); err != nil {
		return domain.Supplier{}, err
	}
	return s.store.AddSupplier(ctx, req)
}

func (s *Service) UpdateSupplier(ctx context.Context, id string, req domain.SupplierRequest) (domain.Supplier, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validateRequest(req); err != nil {
		return domain.Supplier{}, err
	}
	return s.store.UpdateSupplier(ctx, id, req)
}

func (s *Service) DeleteSupplier(ctx context.Context, id string) error {
	return s.store.DeleteSupplier(ctx, id)
}

func (s *Service) ListSupplierPrices(supplierID string) []domain.SupplierPrice {
	prices := s.store.SupplierPrices()
	if supplierID == "" {
		return prices
	}
	out := make([]domain.SupplierPrice, 0, len(prices))
	for _, sp := range prices {
		if sp.SupplierID == supplierID {
			out = append(out, sp)
		}
	}
	return out
}

func (s *Service) LinkSupplierPrice(ctx context.Context, req domain.SupplierPriceRequest) (domain.SupplierPrice, error) {
	if err := s.validateRequest(req); err != nil {
		return domain.SupplierPrice{}, err
	}
	return s.store.LinkSupplierIngredient(ctx, req)
}

func (s *Service) UpdateSupplierPrice(ctx context.Context, id string, req domain.PriceUpdateRequest) (domain.SupplierPrice, error) {
	if err := s.validateRequest(req); err != nil {
		return domain.SupplierPrice{}, err
	}
	return s.store.UpdateSupplierPrice(ctx, id, req.Price)
}

func (s *Service) UnlinkSupplierPrice(ctx context.Context, id string) error {
	return s.store.UnlinkSupplierIngredient(ctx, id)
}

func (s *Service) ListPendingOrders(outletID string) ([]domain.PendingOrder, error) {
	view, err := s.store.View(outletID)
	if err != nil {
		return nil, err
	}
	return view.PendingOrders, nil
}

func (s *Service) CreatePendingOrder(ctx context.Context, req domain.PendingOrderRequest) (domain.PendingOrder, error) {
	if err := s.validateRequest(req); err != nil {
		return domain.PendingOrder{}, err
	}
	return s.store.AddPendingOrder(ctx, req)
}

// ReceivePendingOrder books the order into stock and returns the restocked
// ingredients.
func (s *Service) ReceivePendingOrder(ctx context.Context, id string) ([]domain.Ingredient, error) {
	ingredients, err := s.store.ReceiveStock(ctx, id)
	if err != nil {
		return nil, err
	}
	s.log.Info("purchase order received", zap.String("order_id", id), zap.Int("ingredients", len(ingredients)))
	return ingredients, nil
}

func (s *Service) CampaignStatus() domain.CampaignStatus {
	campaign := s.store.ActiveCampaign()
	return domain.CampaignStatus{
		Campaign:    campaign,
		Performance: s.campaignPerformance(campaign),
	}
}

// LaunchCampaign starts a confirmed marketing suggestion.
func (s *Service) LaunchCampaign(ctx context.Context, req domain.MarketingCampaignSuggestion) (domain.CampaignStatus, error) {
	req.CampaignName = strings.TrimSpace(req.CampaignName)
	if err := s.validateRequest(req); err != nil {
		return domain.CampaignStatus{}, err
	}
	active, err := s.store.LaunchCampaign(ctx, req)
	if err != nil {
		return domain.CampaignStatus{}, err
	}
	s.log.Info("campaign launched", zap.String("campaign", active.CampaignName))
	return domain.CampaignStatus{Campaign: &active, Performance: s.campaignPerformance(&active)}, nil
}

func (s *Service) EndCampaign(ctx context.Context) error {
	return s.store.EndCampaign(ctx)
}

func (s *Service) SalesHistory(outletID string, days int) ([]domain.SalesRecord, error) {
	view, err := s.store.View(outletID)
	if err != nil {
		return nil, err
	}
	if days < 1 {
		return view.SalesHistory, nil
	}
	since := s.now().UTC().AddDate(0, 0, -days).Format(domain.DateLayout)
	out := make([]domain.SalesRecord, 0, len(view.SalesHistory))
	for _, rec := range view.SalesHistory {
		if rec.Date >= since {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (s *Service) CheckStock(req domain.DailySalesRequest) (domain.StockCheckResult, error) {
	if err := s.validateRequest(req); err != nil {
		return domain.StockCheckResult{}, err
	}
	return domain.StockCheckResult{Warnings: s.store.CheckStockAvailability(req.Sales)}, nil
}

// ProcessDailySales records the day's recap for the current outlet. Stock
// warnings are reported but never block the recap.
func (s *Service) ProcessDailySales(ctx context.Context, req domain.DailySalesRequest) (domain.DailySalesResult, error) {
	if err := s.validateRequest(req); err != nil {
		return domain.DailySalesResult{}, err
	}
	warnings := s.store.CheckStockAvailability(req.Sales)
	ingredients, err := s.store.ProcessDailySales(ctx, req.Sales)
	if err != nil {
		return domain.DailySalesResult{}, err
	}
	if len(warnings) > 0 {
		s.log.Warn("daily sales exceeded stock", zap.Int("items", len(warnings)))
	}
	return domain.DailySalesResult{Ingredients: ingredients, Warnings: warnings}, nil
}
