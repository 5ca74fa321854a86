package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"profitlens/internal/domain"
)

const (
	KeyIngredients      = "profitlens_ingredients"
	KeyMenuItems        = "profitlens_menuItems"
	KeySalesHistory     = "profitlens_salesHistory"
	KeyOperationalCosts = "profitlens_operationalCosts"
	KeyWasteHistory     = "profitlens_wasteHistory"
	KeySuppliers        = "profitlens_suppliers"
	KeySupplierPrices   = "profitlens_supplierPrices"
	KeyPendingOrders    = "profitlens_pendingOrders"
	KeyActiveCampaign   = "profitlens_activeCampaign"
	KeyOutlets          = "profitlens_outlets"
	KeyUser             = "profitlens_user"
	KeyCurrentOutlet    = "profitlens_currentOutlet"
)

var Keys = []string{
	KeyIngredients, KeyMenuItems, KeySalesHistory, KeyOperationalCosts, KeyWasteHistory,
	KeySuppliers, KeySupplierPrices, KeyPendingOrders, KeyActiveCampaign, KeyOutlets,
	KeyUser, KeyCurrentOutlet,
}

// errIncomplete means one of the transactional collections was never saved.
var errIncomplete = errors.New("saved state incomplete")

func encodeState(st Snapshot) (map[string][]byte, error) {
	fields := map[string]any{
		KeyIngredients:      st.Ingredients,
		KeyMenuItems:        st.MenuItems,
		KeySalesHistory:     st.SalesHistory,
		KeyOperationalCosts: st.OperationalCosts,
		KeyWasteHistory:     st.WasteHistory,
		KeySuppliers:        st.Suppliers,
		KeySupplierPrices:   st.SupplierPrices,
		KeyPendingOrders:    st.PendingOrders,
		KeyActiveCampaign:   st.ActiveCampaign,
		KeyOutlets:          st.Outlets,
		KeyUser:             st.User,
		KeyCurrentOutlet:    st.CurrentOutletID,
	}

	values := make(map[string][]byte, len(fields))
	for key, v := range fields {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", key, err)
		}
		values[key] = raw
	}
	return values, nil
}

// decodeState rebuilds a Snapshot from saved values. Ingredients, menu items
// and sales history must all be present; every other key falls back to the
// matching collection of defaults.
func decodeState(values map[string][]byte, defaults func() (Snapshot, error)) (Snapshot, error) {
	for _, key := range []string{KeyIngredients, KeyMenuItems, KeySalesHistory} {
		if _, ok := values[key]; !ok {
			return Snapshot{}, errIncomplete
		}
	}

	var st Snapshot
	required := []struct {
		key  string
		dest any
	}{
		{KeyIngredients, &st.Ingredients},
		{KeyMenuItems, &st.MenuItems},
		{KeySalesHistory, &st.SalesHistory},
	}
	for _, r := range required {
		if err := json.Unmarshal(values[r.key], r.dest); err != nil {
			return Snapshot{}, fmt.Errorf("decode %s: %w", r.key, err)
		}
	}

	var fallback *Snapshot
	useDefaults := func() (*Snapshot, error) {
		if fallback == nil {
			d, err := defaults()
			if err != nil {
				return nil, err
			}
			fallback = &d
		}
		return fallback, nil
	}

	optional := []struct {
		key      string
		dest     any
		fallback func(d *Snapshot)
	}{
		{KeyOperationalCosts, &st.OperationalCosts, func(d *Snapshot) { st.OperationalCosts = d.OperationalCosts }},
		{KeyWasteHistory, &st.WasteHistory, nil},
		{KeySuppliers, &st.Suppliers, func(d *Snapshot) { st.Suppliers = d.Suppliers }},
		{KeySupplierPrices, &st.SupplierPrices, func(d *Snapshot) { st.SupplierPrices = d.SupplierPrices }},
		{KeyPendingOrders, &st.PendingOrders, nil},
		{KeyActiveCampaign, &st.ActiveCampaign, nil},
		{KeyOutlets, &st.Outlets, func(d *Snapshot) { st.Outlets = d.Outlets }},
		{KeyUser, &st.User, func(d *Snapshot) { st.User = d.User }},
		{KeyCurrentOutlet, &st.CurrentOutletID, nil},
	}
	for _, o := range optional {
		raw, ok := values[o.key]
		if ok {
			if err := json.Unmarshal(raw, o.dest); err != nil {
				return Snapshot{}, fmt.Errorf("decode %s: %w", o.key, err)
			}
			continue
		}
		if o.fallback == nil {
			continue
		}
		d, err := useDefaults()
		if err != nil {
			return Snapshot{}, err
		}
		o.fallback(d)
	}

	normalize(&st)
	return st, nil
}

// normalize replaces nil collections with empty ones so saved and reloaded
// state encode identically.
func normalize(st *Snapshot) {
	if st.Outlets == nil {
		st.Outlets = []domain.Outlet{}
	}
	if st.Ingredients == nil {
		st.Ingredients = []domain.Ingredient{}
	}
	if st.MenuItems == nil {
		st.MenuItems = []domain.MenuItem{}
	}
	for i := range st.MenuItems {
		if st.MenuItems[i].Recipe == nil {
			st.MenuItems[i].Recipe = []domain.RecipeComponent{}
		}
	}
	if st.SalesHistory == nil {
		st.SalesHistory = []domain.SalesRecord{}
	}
	if st.OperationalCosts == nil {
		st.OperationalCosts = []domain.OperationalCost{}
	}
	if st.WasteHistory == nil {
		st.WasteHistory = []domain.WasteRecord{}
	}
	if st.Suppliers == nil {
		st.Suppliers = []domain.Supplier{}
	}
	if st.SupplierPrices == nil {
		st.SupplierPrices = []domain.SupplierPrice{}
	}
	if st.PendingOrders == nil {
		st.PendingOrders = []domain.PendingOrder{}
	}
	for i := range st.PendingOrders {
		if st.PendingOrders[i].Items == nil {
			st.PendingOrders[i].Items = []domain.PurchaseOrderItem{}
		}
	}
}

func identity[T any](v T) T { return v }

func cloneEach[T any](items []T, clone func(T) T) []T {
	out := make([]T, len(items))
	for i, item := range items {
		out[i] = clone(item)
	}
	return out
}

func cloneIngredient(ing domain.Ingredient) domain.Ingredient {
	if ing.PreviousPrice != nil {
		prev := *ing.PreviousPrice
		ing.PreviousPrice = &prev
	}
	return ing
}

func cloneMenuItem(item domain.MenuItem) domain.MenuItem {
	item.Recipe = slices.Clone(item.Recipe)
	if item.Recipe == nil {
		item.Recipe = []domain.RecipeComponent{}
	}
	return item
}

func clonePendingOrder(order domain.PendingOrder) domain.PendingOrder {
	order.Items = slices.Clone(order.Items)
	if order.Items == nil {
		order.Items = []domain.PurchaseOrderItem{}
	}
	return order
}

func cloneCampaign(c *domain.ActiveCampaign) *domain.ActiveCampaign {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}

func cloneSnapshot(st Snapshot) Snapshot {
	return Snapshot{
		Outlets:          slices.Clone(st.Outlets),
		CurrentOutletID:  st.CurrentOutletID,
		User:             st.User,
		Ingredients:      cloneEach(st.Ingredients, cloneIngredient),
		MenuItems:        cloneEach(st.MenuItems, cloneMenuItem),
		SalesHistory:     slices.Clone(st.SalesHistory),
		OperationalCosts: slices.Clone(st.OperationalCosts),
		WasteHistory:     slices.Clone(st.WasteHistory),
		Suppliers:        slices.Clone(st.Suppliers),
		SupplierPrices:   slices.Clone(st.SupplierPrices),
		PendingOrders:    cloneEach(st.PendingOrders, clonePendingOrder),
		ActiveCampaign:   cloneCampaign(st.ActiveCampaign),
	}
}
