package store

import (
	"context"
	"fmt"
	"strings"

	"profitlens/internal/domain"
	"profitlens/internal/metrics"
)

const (
	msgOnlyOutlet      = "Tidak dapat menghapus satu-satunya cabang."
	msgActiveOutlet    = "Tidak dapat menghapus cabang yang sedang aktif. Silakan pindah ke cabang lain terlebih dahulu."
	msgOutletHasData   = "Cabang ini memiliki data terkait (inventaris, penjualan, dll.) dan tidak dapat dihapus."
	msgIngredientInUse = "Bahan ini masih digunakan dalam resep. Hapus dari resep terlebih dahulu."
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// SetCurrentOutlet selects the outlet every partitioned write applies to.
// Unknown ids are ignored and reported as false.
func (s *Store) SetCurrentOutlet(ctx context.Context, id string) (bool, error) {
	selected := false
	err := s.update(ctx, func(st *Snapshot) error {
		if !hasOutlet(st.Outlets, id) {
			return errNoChange
		}
		st.CurrentOutletID = id
		selected = true
		return nil
	})
	return selected, err
}

func (s *Store) UpdateUser(ctx context.Context, name string, role string) (domain.User, error) {
	var user domain.User
	err := s.update(ctx, func(st *Snapshot) error {
		st.User.Name = name
		st.User.Role = role
		user = st.User
		return nil
	})
	return user, err
}

func (s *Store) AddOutlet(ctx context.Context, name string) (domain.Outlet, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Outlet{}, invalid("outlet name is required")
	}

	outlet := domain.Outlet{ID: s.ids.Next("out"), Name: name}
	err := s.update(ctx, func(st *Snapshot) error {
		st.Outlets = append(st.Outlets[:len(st.Outlets):len(st.Outlets)], outlet)
		return nil
	})
	return outlet, err
}

func (s *Store) UpdateOutlet(ctx context.Context, id string, name string) (domain.Outlet, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.Outlet{}, invalid("outlet name is required")
	}

	var updated domain.Outlet
	err := s.update(ctx, func(st *Snapshot) error {
		idx := indexOf(st.Outlets, func(o domain.Outlet) bool { return o.ID == id })
		if idx < 0 {
			return ErrNotFound
		}
		outlets := cloneEach(st.Outlets, identity[domain.Outlet])
		outlets[idx].Name = name
		st.Outlets = outlets
		updated = outlets[idx]
		return nil
	})
	return updated, err
}

// DeleteOutlet refuses to remove the last outlet, the current outlet, or an
// outlet still holding ingredients, sales or operational costs.
func (s *Store) DeleteOutlet(ctx context.Context, id string) (domain.Result, error) {
	res := domain.OK()
	err := s.update(ctx, func(st *Snapshot) error {
		if !hasOutlet(st.Outlets, id) {
			return ErrNotFound
		}
		if len(st.Outlets) <= 1 {
			res = domain.Fail(msgOnlyOutlet)
			return errNoChange
		}
		if id == st.CurrentOutletID {
			res = domain.Fail(msgActiveOutlet)
			return errNoChange
		}
		hasData := indexOf(st.Ingredients, func(i domain.Ingredient) bool { return i.OutletID == id }) >= 0 ||
			indexOf(st.SalesHistory, func(r domain.SalesRecord) bool { return r.OutletID == id }) >= 0 ||
			indexOf(st.OperationalCosts, func(c domain.OperationalCost) bool { return c.OutletID == id }) >= 0
		if hasData {
			res = domain.Fail(msgOutletHasData)
			return errNoChange
		}
		st.Outlets = without(st.Outlets, func(o domain.Outlet) bool { return o.ID == id })
		return nil
	})
	if err != nil {
		return domain.Result{}, err
	}
	return res, nil
}

// AddIngredient stocks a new ingredient in the current outlet. A name already
// known in any outlet joins that ingredient's definition.
func (s *Store) AddIngredient(ctx context.Context, req domain.IngredientCreateRequest) (domain.Ingredient, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Ingredient{}, invalid("ingredient name is required")
	}

	var created domain.Ingredient
	err := s.update(ctx, func(st *Snapshot) error {
		definitionID := ""
		for _, ing := range st.Ingredients {
			if ing.Name == name {
				definitionID = ing.DefinitionID
				break
			}
		}
		if definitionID == "" {
			definitionID = s.ids.Next("ingdef")
		}
		for _, ing := range st.Ingredients {
			if ing.OutletID == st.CurrentOutletID && ing.DefinitionID == definitionID {
				return invalid("ingredient %q already exists in this outlet", name)
			}
		}

		created = domain.Ingredient{
			ID:           s.ids.Next("ing"),
			DefinitionID: definitionID,
			OutletID:     st.CurrentOutletID,
			Name:         name,
			Unit:         strings.TrimSpace(req.Unit),
			Price:        req.Price,
			StockLevel:   req.StockLevel,
			ReorderPoint: req.ReorderPoint,
		}
		st.Ingredients = append(st.Ingredients[:len(st.Ingredients):len(st.Ingredients)], created)
		return nil
	})
	return created, err
}

// UpdateIngredientPrices applies a price per ingredient id, limited to the
// current outlet. Ids of other outlets are ignored.
func (s *Store) UpdateIngredientPrices(ctx context.Context, prices map[string]float64) error {
	return s.update(ctx, func(st *Snapshot) error {
		ingredients := cloneEach(st.Ingredients, cloneIngredient)
		for i, ing := range ingredients {
			price, ok := prices[ing.ID]
			if !ok || ing.OutletID != st.CurrentOutletID {
				continue
			}
			ingredients[i] = withPrice(ing, price)
		}
		st.Ingredients = ingredients
		return nil
	})
}

func (s *Store) UpdateIngredientPrice(ctx context.Context, id string, price float64) (domain.Ingredient, error) {
	return s.updateIngredient(ctx, id, func(ing domain.Ingredient) domain.Ingredient {
		return withPrice(ing, price)
	})
}

func (s *Store) UpdateIngredientStock(ctx context.Context, id string, stock float64) (domain.Ingredient, error) {
	if stock < 0 {
		return domain.Ingredient{}, invalid("stock level cannot be negative")
	}
	return s.updateIngredient(ctx, id, func(ing domain.Ingredient) domain.Ingredient {
		ing.StockLevel = stock
		return ing
	})
}

func (s *Store) UpdateIngredientUnit(ctx context.Context, id string, unit string) (domain.Ingredient, error) {
	unit = strings.TrimSpace(unit)
	if unit == "" {
		return domain.Ingredient{}, invalid("unit is required")
	}
	return s.updateIngredient(ctx, id, func(ing domain.Ingredient) domain.Ingredient {
		ing.Unit = unit
		return ing
	})
}

func (s *Store) updateIngredient(ctx context.Context, id string, change func(domain.Ingredient) domain.Ingredient) (domain.Ingredient, error) {
	var updated domain.Ingredient
	err := s.update(ctx, func(st *Snapshot) error {
		idx := indexOf(st.Ingredients, func(i domain.Ingredient) bool { return i.ID == id })
		if idx < 0 {
			return ErrNotFound
		}
		ingredients := cloneEach(st.Ingredients, cloneIngredient)
		ingredients[idx] = change(ingredients[idx])
		st.Ingredients = ingredients
		updated = cloneIngredient(ingredients[idx])
		return nil
	})
	return updated, err
}

// withPrice records the old price as previous price when the price changes.
func withPrice(ing domain.Ingredient, price float64) domain.Ingredient {
	if ing.Price == price {
		return ing
	}
	prev := ing.Price
	ing.PreviousPrice = &prev
	ing.Price = price
	return ing
}

// DeleteIngredient refuses while any recipe uses the ingredient's definition.
func (s *Store) DeleteIngredient(ctx context.Context, id string) (domain.Result, error) {
	res := domain.OK()
	err := s.update(ctx, func(st *Snapshot) error {
		idx := indexOf(st.Ingredients, func(i domain.Ingredient) bool { return i.ID == id })
		if idx < 0 {
			return ErrNotFound
		}
		target := st.Ingredients[idx]
		for _, item := range st.MenuItems {
			for _, component := range item.Recipe {
				if component.IngredientID == target.DefinitionID || component.IngredientID == target.ID {
					res = domain.Fail(msgIngredientInUse)
					return errNoChange
				}
			}
		}
		st.Ingredients = without(st.Ingredients, func(i domain.Ingredient) bool { return i.ID == id })
		return nil
	})
	if err != nil {
		return domain.Result{}, err
	}
	return res, nil
}

// recipeFromRequest points every component at an ingredient definition.
// Instance ids are translated; unknown ids are kept and resolve to nothing.
func recipeFromRequest(st *Snapshot, recipe []domain.RecipeComponent) []domain.RecipeComponent {
	out := make([]domain.RecipeComponent, 0, len(recipe))
	for _, component := range recipe {
		id := component.IngredientID
		for _, ing := range st.Ingredients {
			if ing.ID == id {
				id = ing.DefinitionID
				break
			}
		}
		out = append(out, domain.RecipeComponent{IngredientID: id, Quantity: component.Quantity})
	}
	return out
}

func (s *Store) AddMenuItem(ctx context.Context, req domain.MenuItemRequest) (domain.MenuItem, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.MenuItem{}, invalid("menu item name is required")
	}

	var created domain.MenuItem
	err := s.update(ctx, func(st *Snapshot) error {
		created = domain.MenuItem{
			ID:           s.ids.Next("menu"),
			Name:         name,
			ImageURL:     req.ImageURL,
			SellingPrice: req.SellingPrice,
			TargetMargin: req.TargetMargin,
			Recipe:       recipeFromRequest(st, req.Recipe),
		}
		st.MenuItems = append(st.MenuItems[:len(st.MenuItems):len(st.MenuItems)], created)
		return nil
	})
	return cloneMenuItem(created), err
}

func (s *Store) UpdateMenuItem(ctx context.Context, id string, req domain.MenuItemRequest) (domain.MenuItem, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.MenuItem{}, invalid("menu item name is required")
	}

	var updated domain.MenuItem
	err := s.update(ctx, func(st *Snapshot) error {
		idx := indexOf(st.MenuItems, func(m domain.MenuItem) bool { return m.ID == id })
		if idx < 0 {
			return ErrNotFound
		}
		items := cloneEach(st.MenuItems, cloneMenuItem)
		items[idx] = domain.MenuItem{
			ID:           id,
			Name:         name,
			ImageURL:     req.ImageURL,
			SellingPrice: req.SellingPrice,
			TargetMargin: req.TargetMargin,
			Recipe:       recipeFromRequest(st, req.Recipe),
		}
		st.MenuItems = items
		updated = cloneMenuItem(items[idx])
		return nil
	})
	return updated, err
}

func (s *Store) UpdateMenuItemPrice(ctx context.Context, id string, price float64) (domain.MenuItem, error) {
	if price < 0 {
		return domain.MenuItem{}, invalid("selling price cannot be negative")
	}

	var updated domain.MenuItem
	err := s.update(ctx, func(st *Snapshot) error {
		idx := indexOf(st.MenuItems, func(m domain.MenuItem) bool { return m.ID == id })
		if idx < 0 {
			return ErrNotFound
		}
		items := cloneEach(st.MenuItems, cloneMenuItem)
		items[idx].SellingPrice = price
		st.MenuItems = items
		updated = cloneMenuItem(items[idx])
		return nil
	})
	return updated, err
}

func (s *Store) DeleteMenuItem(ctx context.Context, id string) error {
	return s.update(ctx, func(st *Snapshot) error {
		if indexOf(st.MenuItems, func(m domain.MenuItem) bool { return m.ID == id }) < 0 {
			return ErrNotFound
		}
		st.MenuItems = without(st.MenuItems, func(m domain.MenuItem) bool { return m.ID == id })
		return nil
	})
}

func (s *Store) AddOperationalCost(ctx context.Context, req domain.OperationalCostRequest) (domain.OperationalCost, error) {
	var created domain.OperationalCost
	err := s.update(ctx, func(st *Snapshot) error {
		created = domain.OperationalCost{
			ID:       s.ids.Next("op"),
			OutletID: st.CurrentOutletID,
			Name:     strings.TrimSpace(req.Name),
			Amount:   req.Amount,
			Interval: req.Interval,
		}
		st.OperationalCosts = append(st.OperationalCosts[:len(st.OperationalCosts):len(st.OperationalCosts)], created)
		return nil
	})
	return created, err
}

// UpdateOperationalCost replaces a cost in place. The outlet it belongs to
// never changes.
func (s *Store) UpdateOperationalCost(ctx context.Context, id string, req domain.OperationalCostRequest) (domain.OperationalCost, error) {
	var updated domain.OperationalCost
	err := s.update(ctx, func(st *Snapshot) error {
		idx := indexOf(st.OperationalCosts, func(c domain.OperationalCost) bool { return c.ID == id })
		if idx < 0 {
			return ErrNotFound
		}
		costs := cloneEach(st.OperationalCosts, identity[domain.OperationalCost])
		costs[idx].Name = strings.TrimSpace(req.Name)
		costs[idx].Amount = req.Amount
		costs[idx].Interval = req.Interval
		st.OperationalCosts = costs
		updated = costs[idx]
		return nil
	})
	return updated, err
}

func (s *Store) DeleteOperationalCost(ctx context.Context, id string) error {
	return s.update(ctx, func(st *Snapshot) error {
		if indexOf(st.OperationalCosts, func(c domain.OperationalCost) bool { return c.ID == id }) < 0 {
			return ErrNotFound
		}
		st.OperationalCosts = without(st.OperationalCosts, func(c domain.OperationalCost) bool { return c.ID == id })
		return nil
	})
}

// AddWasteRecord prices the waste at the ingredient's current price and takes
// the quantity out of stock, never below zero. The ingredient must belong to
// the current outlet.
func (s *Store) AddWasteRecord(ctx context.Context, req domain.WasteRecordRequest) (domain.WasteRecord, error) {
	if req.Quantity <= 0 {
		return domain.WasteRecord{}, invalid("waste quantity must be positive")
	}

	var created domain.WasteRecord
	err := s.update(ctx, func(st *Snapshot) error {
		idx := indexOf(st.Ingredients, func(i domain.Ingredient) bool {
			return i.ID == req.IngredientID && i.OutletID == st.CurrentOutletID
		})
		if idx < 0 {
			return ErrNotFound
		}

		date := s.now()
		if req.Date != nil {
			date = *req.Date
		}
		ingredients := cloneEach(st.Ingredients, cloneIngredient)
		ing := ingredients[idx]
		created = domain.WasteRecord{
			ID:           s.ids.Next("waste"),
			OutletID:     st.CurrentOutletID,
			Date:         date,
			IngredientID: ing.ID,
			Quantity:     req.Quantity,
			Reason:       req.Reason,
			Cost:         ing.Price * req.Quantity,
		}
		ingredients[idx].StockLevel = max(0, ing.StockLevel-req.Quantity)

		st.Ingredients = ingredients
		st.WasteHistory = append(st.WasteHistory[:len(st.WasteHistory):len(st.WasteHistory)], created)
		return nil
	})
	return created, err
}

// DeleteWasteRecord drops the record only; stock is not restored.
func (s *Store) DeleteWasteRecord(ctx context.Context, id string) error {
	return s.update(ctx, func(st *Snapshot) error {
		if indexOf(st.WasteHistory, func(w domain.WasteRecord) bool { return w.ID == id }) < 0 {
			return ErrNotFound
		}
		st.WasteHistory = without(st.WasteHistory, func(w domain.WasteRecord) bool { return w.ID == id })
		return nil
	})
}

func (s *Store) AddSupplier(ctx context.Context, req domain.SupplierRequest) (domain.Supplier, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Supplier{}, invalid("supplier name is required")
	}

	created := domain.Supplier{
		ID:            s.ids.Next("sup"),
		Name:          name,
		ContactPerson: strings.TrimSpace(req.ContactPerson),
		Phone:         strings.TrimSpace(req.Phone),
	}
	err := s.update(ctx, func(st *Snapshot) error {
		st.Suppliers = append(st.Suppliers[:len(st.Suppliers):len(st.Suppliers)], created)
		return nil
	})
	return created, err
}

func (s *Store) UpdateSupplier(ctx context.Context, id string, req domain.SupplierRequest) (domain.Supplier, error) {
	var updated domain.Supplier
	err := s.update(ctx, func(st *Snapshot) error {
		idx := indexOf(st.Suppliers, func(sup domain.Supplier) bool { return sup.ID == id })
		if idx < 0 {
			return ErrNotFound
		}
		suppliers := cloneEach(st.Suppliers, identity[domain.Supplier])
		suppliers[idx] = domain.Supplier{
			ID:            id,
			Name:          strings.TrimSpace(req.Name),
			ContactPerson: strings.TrimSpace(req.ContactPerson),
			Phone:         strings.TrimSpace(req.Phone),
		}
		st.Suppliers = suppliers
		updated = suppliers[idx]
		return nil
	})
	return updated, err
}

// DeleteSupplier also drops the supplier's price links.
func (s *Store) DeleteSupplier(ctx context.Context, id string) error {
	return s.update(ctx, func(st *Snapshot) error {
		if indexOf(st.Suppliers, func(sup domain.Supplier) bool { return sup.ID == id }) < 0 {
			return ErrNotFound
		}
		st.Suppliers = without(st.Suppliers, func(sup domain.Supplier) bool { return sup.ID == id })
		st.SupplierPrices = without(st.SupplierPrices, func(sp domain.SupplierPrice) bool { return sp.SupplierID == id })
		return nil
	})
}

// LinkSupplierIngredient adds a supplier price for an ingredient definition.
// An instance id is accepted and mapped to its definition.
func (s *Store) LinkSupplierIngredient(ctx context.Context, req domain.SupplierPriceRequest) (domain.SupplierPrice, error) {
	var created domain.SupplierPrice
	err := s.update(ctx, func(st *Snapshot) error {
		if indexOf(st.Suppliers, func(sup domain.Supplier) bool { return sup.ID == req.SupplierID }) < 0 {
			return ErrNotFound
		}
		definitionID := ""
		for _, ing := range st.Ingredients {
			if ing.ID == req.IngredientID || ing.DefinitionID == req.IngredientID {
				definitionID = ing.DefinitionID
				break
			}
		}
		if definitionID == "" {
			return ErrNotFound
		}
		created = domain.SupplierPrice{
			ID:           s.ids.Next("sp"),
			SupplierID:   req.SupplierID,
			IngredientID: definitionID,
			Price:        req.Price,
		}
		st.SupplierPrices = append(st.SupplierPrices[:len(st.SupplierPrices):len(st.SupplierPrices)], created)
		return nil
	})
	return created, err
}

func (s *Store) UpdateSupplierPrice(ctx context.Context, linkID string, price float64) (domain.SupplierPrice, error) {
	var updated domain.SupplierPrice
	err := s.update(ctx, func(st *Snapshot) error {
		idx := indexOf(st.SupplierPrices, func(sp domain.SupplierPrice) bool { return sp.ID == linkID })
		if idx < 0 {
			return ErrNotFound
		}
		prices := cloneEach(st.SupplierPrices, identity[domain.SupplierPrice])
		prices[idx].Price = price
		st.SupplierPrices = prices
		updated = prices[idx]
		return nil
	})
	return updated, err
}

func (s *Store) UnlinkSupplierIngredient(ctx context.Context, linkID string) error {
	return s.update(ctx, func(st *Snapshot) error {
		if indexOf(st.SupplierPrices, func(sp domain.SupplierPrice) bool { return sp.ID == linkID }) < 0 {
			return ErrNotFound
		}
		st.SupplierPrices = without(st.SupplierPrices, func(sp domain.SupplierPrice) bool { return sp.ID == linkID })
		return nil
	})
}

// AddPendingOrder files a purchase order for the current outlet. A zero total
// is derived from the item lines.
func (s *Store) AddPendingOrder(ctx context.Context, req domain.PendingOrderRequest) (domain.PendingOrder, error) {
	if len(req.Items) == 0 {
		return domain.PendingOrder{}, invalid("purchase order needs at least one item")
	}

	var created domain.PendingOrder
	err := s.update(ctx, func(st *Snapshot) error {
		now := s.now()
		total := req.TotalAmount
		if total == 0 {
			for _, item := range req.Items {
				total += item.QuantityToOrder * item.Price
			}
		}
		created = domain.PendingOrder{
			ID:          s.ids.Next("po"),
			PONumber:    fmt.Sprintf("PO-%d", now.UnixMilli()),
			Supplier:    req.Supplier,
			OrderDate:   now,
			Items:       append([]domain.PurchaseOrderItem(nil), req.Items...),
			TotalAmount: total,
			OutletID:    st.CurrentOutletID,
		}
		st.PendingOrders = append(st.PendingOrders[:len(st.PendingOrders):len(st.PendingOrders)], created)
		return nil
	})
	return clonePendingOrder(created), err
}

// ReceiveStock books every line of the order into stock and removes the
// order. Lines are matched by instance id, or by definition id within the
// order's outlet.
func (s *Store) ReceiveStock(ctx context.Context, orderID string) ([]domain.Ingredient, error) {
	var touched []domain.Ingredient
	err := s.update(ctx, func(st *Snapshot) error {
		idx := indexOf(st.PendingOrders, func(p domain.PendingOrder) bool { return p.ID == orderID })
		if idx < 0 {
			return ErrNotFound
		}
		order := st.PendingOrders[idx]

		received := make(map[string]float64)
		for _, item := range order.Items {
			received[item.IngredientID] += item.QuantityToOrder
		}

		ingredients := cloneEach(st.Ingredients, cloneIngredient)
		for i, ing := range ingredients {
			qty, ok := received[ing.ID]
			if !ok && ing.OutletID == order.OutletID {
				qty, ok = received[ing.DefinitionID]
			}
			if !ok {
				continue
			}
			ingredients[i].StockLevel = ing.StockLevel + qty
			touched = append(touched, cloneIngredient(ingredients[i]))
		}

		st.Ingredients = ingredients
		st.PendingOrders = without(st.PendingOrders, func(p domain.PendingOrder) bool { return p.ID == orderID })
		return nil
	})
	return touched, err
}

// LaunchCampaign starts campaign now, replacing any running one.
func (s *Store) LaunchCampaign(ctx context.Context, campaign domain.MarketingCampaignSuggestion) (domain.ActiveCampaign, error) {
	if strings.TrimSpace(campaign.CampaignName) == "" {
		return domain.ActiveCampaign{}, invalid("campaign name is required")
	}

	active := domain.ActiveCampaign{MarketingCampaignSuggestion: campaign, StartDate: s.now()}
	err := s.update(ctx, func(st *Snapshot) error {
		st.ActiveCampaign = cloneCampaign(&active)
		return nil
	})
	return active, err
}

func (s *Store) EndCampaign(ctx context.Context) error {
	return s.update(ctx, func(st *Snapshot) error {
		st.ActiveCampaign = nil
		return nil
	})
}

// ProcessDailySales records today's sales for the current outlet and draws
// the recipe quantities from its stock, clamped at zero. It returns the
// current outlet's ingredients after the update.
func (s *Store) ProcessDailySales(ctx context.Context, sales map[string]int) ([]domain.Ingredient, error) {
	var outletIngredients []domain.Ingredient
	err := s.update(ctx, func(st *Snapshot) error {
		outletID := st.CurrentOutletID
		today := s.now().UTC().Format(domain.DateLayout)

		history := st.SalesHistory[:len(st.SalesHistory):len(st.SalesHistory)]
		for _, item := range st.MenuItems {
			sold := sales[item.ID]
			if sold <= 0 {
				continue
			}
			history = append(history, domain.SalesRecord{
				Date:         today,
				MenuItemID:   item.ID,
				QuantitySold: sold,
				TotalRevenue: float64(sold) * item.SellingPrice,
				OutletID:     outletID,
			})
		}

		used := metrics.Consumption(sales, st.MenuItems, metrics.NewCatalog(st.Ingredients, outletID))
		ingredients := cloneEach(st.Ingredients, cloneIngredient)
		for i, ing := range ingredients {
			if qty, ok := used[ing.ID]; ok {
				ingredients[i].StockLevel = max(0, ing.StockLevel-qty)
			}
		}

		st.SalesHistory = history
		st.Ingredients = ingredients
		outletIngredients = filterOutlet(ingredients, outletID, func(i domain.Ingredient) string { return i.OutletID }, cloneIngredient)
		return nil
	})
	return outletIngredients, err
}

// CheckStockAvailability previews ProcessDailySales without changing state.
func (s *Store) CheckStockAvailability(sales map[string]int) map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return metrics.StockWarnings(sales, s.st.MenuItems, s.st.Ingredients, s.st.CurrentOutletID)
}

func indexOf[T any](items []T, match func(T) bool) int {
	for i, item := range items {
		if match(item) {
			return i
		}
	}
	return -1
}

func without[T any](items []T, drop func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if !drop(item) {
			out = append(out, item)
		}
	}
	return out
}
