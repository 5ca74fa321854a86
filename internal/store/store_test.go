package store

import (
	"bytes"
	"context"
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"profitlens/internal/domain"
	"profitlens/internal/store/memory"
	"profitlens/internal/xid"
)

var testNow = time.Date(2024, 5, 10, 9, 30, 0, 0, time.UTC)

func testOptions() Options {
	return Options{
		Now:      func() time.Time { return testNow },
		IDs:      xid.NewGenerator(1000),
		SeedRand: rand.New(rand.NewPCG(1, 2)),
	}
}

func fixtureState() Snapshot {
	st := Snapshot{
		Outlets:         []domain.Outlet{{ID: "out001", Name: "Cilandak"}, {ID: "out002", Name: "Kemang"}},
		CurrentOutletID: "out001",
		User:            domain.User{Name: "Admin", Role: "Manajer"},
		Ingredients: []domain.Ingredient{
			{ID: "milk-1", DefinitionID: "def-milk", OutletID: "out001", Name: "Susu", Unit: "ml", Price: 20, StockLevel: 500, ReorderPoint: 100},
			{ID: "milk-2", DefinitionID: "def-milk", OutletID: "out002", Name: "Susu", Unit: "ml", Price: 21, StockLevel: 900, ReorderPoint: 100},
			{ID: "salt-1", DefinitionID: "def-salt", OutletID: "out001", Name: "Garam", Unit: "gram", Price: 5, StockLevel: 40, ReorderPoint: 10},
		},
		MenuItems: []domain.MenuItem{
			{ID: "latte", Name: "Latte", SellingPrice: 25000, TargetMargin: 60, Recipe: []domain.RecipeComponent{{IngredientID: "def-milk", Quantity: 20}}},
		},
		SalesHistory: []domain.SalesRecord{},
		OperationalCosts: []domain.OperationalCost{
			{ID: "op1", OutletID: "out002", Name: "Sewa", Amount: 3000000, Interval: domain.IntervalMonthly},
		},
		Suppliers:      []domain.Supplier{{ID: "sup1", Name: "Pangan"}},
		SupplierPrices: []domain.SupplierPrice{{ID: "sp1", SupplierID: "sup1", IngredientID: "def-milk", Price: 19}},
	}
	normalize(&st)
	return st
}

func openFixture(t *testing.T) (*Store, *memory.Backend) {
	t.Helper()
	values, err := encodeState(fixtureState())
	if err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	backend := memory.NewWithValues(values)
	s, err := Open(context.Background(), backend, testOptions())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return s, backend
}

func TestOpenSeedsEmptyBackend(t *testing.T) {
	backend := memory.New()
	s, err := Open(context.Background(), backend, testOptions())
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	if s.CurrentOutletID() != "out001" {
		t.Fatalf("expected first seed outlet to be current, got %q", s.CurrentOutletID())
	}
	if got := len(s.Ingredients("out001")); got != 13 {
		t.Fatalf("expected 13 seed ingredients in out001, got %d", got)
	}
	if len(s.SalesHistory("out001")) == 0 {
		t.Fatalf("expected generated sales history")
	}
	if backend.Saves() != 1 {
		t.Fatalf("expected open to flush once, got %d", backend.Saves())
	}
	for _, key := range Keys {
		if _, ok := backend.Values()[key]; !ok {
			t.Fatalf("expected key %s to be persisted", key)
		}
	}
}

func TestOpenFallsBackToSeedOnMissingCollection(t *testing.T) {
	values, _ := encodeState(fixtureState())
	delete(values, KeySalesHistory)

	s, err := Open(context.Background(), memory.NewWithValues(values), testOptions())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := s.Ingredient("milk-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected fixture to be replaced by seed, got %v", err)
	}
}

func TestOpenFallsBackToSeedOnCorruptValue(t *testing.T) {
	values, _ := encodeState(fixtureState())
	values[KeyWasteHistory] = []byte("{not json")

	s, err := Open(context.Background(), memory.NewWithValues(values), testOptions())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if len(s.Ingredients("out001")) != 13 {
		t.Fatalf("expected seed ingredients after corrupt value")
	}
}

func TestOpenDefaultsOptionalKeys(t *testing.T) {
	values, _ := encodeState(fixtureState())
	delete(values, KeyOutlets)
	delete(values, KeyPendingOrders)
	delete(values, KeyCurrentOutlet)

	s, err := Open(context.Background(), memory.NewWithValues(values), testOptions())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := s.Ingredient("milk-1"); err != nil {
		t.Fatalf("expected fixture ingredients to survive: %v", err)
	}
	outlets := s.Outlets()
	if len(outlets) != 2 || outlets[1].Name != "Pop-up Kemang" {
		t.Fatalf("expected seed outlets, got %+v", outlets)
	}
	if s.CurrentOutletID() != "out001" {
		t.Fatalf("expected current outlet to default to first outlet, got %q", s.CurrentOutletID())
	}
	if len(s.PendingOrders("out001")) != 0 {
		t.Fatalf("expected no pending orders")
	}
}

func TestRoundTripThroughBackend(t *testing.T) {
	ctx := context.Background()
	s, backend := openFixture(t)

	if _, err := s.AddWasteRecord(ctx, domain.WasteRecordRequest{IngredientID: "milk-1", Quantity: 50, Reason: domain.WasteDamaged}); err != nil {
		t.Fatalf("add waste: %v", err)
	}
	if _, err := s.UpdateIngredientPrice(ctx, "salt-1", 7); err != nil {
		t.Fatalf("update price: %v", err)
	}
	if _, err := s.LaunchCampaign(ctx, domain.MarketingCampaignSuggestion{CampaignName: "Latte Hemat"}); err != nil {
		t.Fatalf("launch campaign: %v", err)
	}

	before, err := s.MarshalSnapshot()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	reopened, err := Open(ctx, memory.NewWithValues(backend.Values()), testOptions())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	after, err := reopened.MarshalSnapshot()
	if err != nil {
		t.Fatalf("marshal reopened: %v", err)
	}
	if !bytes.Equal(before, after) {
		t.Fatalf("snapshot changed across reload\nbefore=%s\nafter=%s", before, after)
	}
}

func TestProcessDailySalesDrawsOutletStock(t *testing.T) {
	ctx := context.Background()
	s, _ := openFixture(t)

	ingredients, err := s.ProcessDailySales(ctx, map[string]int{"latte": 10, "unknown": 3})
	if err != nil {
		t.Fatalf("process sales: %v", err)
	}

	for _, ing := range ingredients {
		if ing.OutletID != "out001" {
			t.Fatalf("expected only current outlet ingredients, got %+v", ing)
		}
	}
	milk, _ := s.Ingredient("milk-1")
	if milk.StockLevel != 300 {
		t.Fatalf("expected milk 500-10*20=300, got %v", milk.StockLevel)
	}
	other, _ := s.Ingredient("milk-2")
	if other.StockLevel != 900 {
		t.Fatalf("expected other outlet untouched, got %v", other.StockLevel)
	}

	sales := s.SalesHistory("out001")
	if len(sales) != 1 {
		t.Fatalf("expected one sales record, got %d", len(sales))
	}
	rec := sales[0]
	if rec.Date != "2024-05-10" || rec.QuantitySold != 10 || rec.TotalRevenue != 250000 {
		t.Fatalf("unexpected sales record %+v", rec)
	}
}

func TestProcessDailySalesNeverGoesNegative(t *testing.T) {
	ctx := context.Background()
	s, _ := openFixture(t)

	warnings := s.CheckStockAvailability(map[string]int{"latte": 30})
	if warnings["latte"] == "" {
		t.Fatalf("expected stock warning for 600ml against 500ml")
	}

	if _, err := s.ProcessDailySales(ctx, map[string]int{"latte": 30}); err != nil {
		t.Fatalf("process sales: %v", err)
	}
	milk, _ := s.Ingredient("milk-1")
	if milk.StockLevel != 0 {
		t.Fatalf("expected stock clamped at 0, got %v", milk.StockLevel)
	}
}

func TestDeleteIngredientGuardedByRecipes(t *testing.T) {
	ctx := context.Background()
	s, _ := openFixture(t)

	res, err := s.DeleteIngredient(ctx, "milk-1")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if res.Success || res.Message != msgIngredientInUse {
		t.Fatalf("expected guard failure, got %+v", res)
	}
	if _, err := s.Ingredient("milk-1"); err != nil {
		t.Fatalf("expected ingredient to remain: %v", err)
	}

	res, err = s.DeleteIngredient(ctx, "salt-1")
	if err != nil || !res.Success {
		t.Fatalf("expected delete success, got %+v %v", res, err)
	}
	if _, err := s.Ingredient("salt-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected salt to be gone, got %v", err)
	}

	if _, err := s.DeleteIngredient(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDeleteOutletGuards(t *testing.T) {
	ctx := context.Background()
	s, _ := openFixture(t)

	res, _ := s.DeleteOutlet(ctx, "out001")
	if res.Success || res.Message != msgActiveOutlet {
		t.Fatalf("expected active outlet guard, got %+v", res)
	}
	res, _ = s.DeleteOutlet(ctx, "out002")
	if res.Success || res.Message != msgOutletHasData {
		t.Fatalf("expected related data guard, got %+v", res)
	}

	added, err := s.AddOutlet(ctx, "  Depok  ")
	if err != nil {
		t.Fatalf("add outlet: %v", err)
	}
	if added.Name != "Depok" {
		t.Fatalf("expected trimmed name, got %q", added.Name)
	}
	res, err = s.DeleteOutlet(ctx, added.ID)
	if err != nil || !res.Success {
		t.Fatalf("expected empty outlet delete to succeed, got %+v %v", res, err)
	}
	if len(s.Outlets()) != 2 {
		t.Fatalf("expected 2 outlets after delete")
	}
}

func TestDeleteOnlyOutletRefused(t *testing.T) {
	st := fixtureState()
	st.Outlets = st.Outlets[:1]
	values, _ := encodeState(st)
	s, err := Open(context.Background(), memory.NewWithValues(values), testOptions())
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	res, err := s.DeleteOutlet(context.Background(), "out001")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if res.Success || res.Message != msgOnlyOutlet {
		t.Fatalf("expected only outlet guard, got %+v", res)
	}
}

func TestSetCurrentOutletIgnoresUnknown(t *testing.T) {
	ctx := context.Background()
	s, backend := openFixture(t)
	saves := backend.Saves()

	ok, err := s.SetCurrentOutlet(ctx, "nope")
	if err != nil || ok {
		t.Fatalf("expected unknown outlet to be ignored, got %v %v", ok, err)
	}
	if backend.Saves() != saves {
		t.Fatalf("expected no flush for ignored selection")
	}

	ok, _ = s.SetCurrentOutlet(ctx, "out002")
	if !ok || s.CurrentOutletID() != "out002" {
		t.Fatalf("expected out002 selected")
	}
	view, err := s.View("")
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if len(view.Ingredients) != 1 || view.Ingredients[0].ID != "milk-2" {
		t.Fatalf("expected out002 partition, got %+v", view.Ingredients)
	}
}

func TestSubscribersNotifiedAfterCommit(t *testing.T) {
	ctx := context.Background()
	s, _ := openFixture(t)

	calls := 0
	unsubscribe := s.Subscribe(func() {
		calls++
		// Reads must not deadlock inside a callback.
		_ = s.Outlets()
	})

	if _, err := s.AddOutlet(ctx, "Depok"); err != nil {
		t.Fatalf("add outlet: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected one notification, got %d", calls)
	}

	unsubscribe()
	if _, err := s.AddOutlet(ctx, "Bogor"); err != nil {
		t.Fatalf("add outlet: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected no notification after unsubscribe, got %d", calls)
	}
}

func TestPriceUpdateTracksPreviousPrice(t *testing.T) {
	ctx := context.Background()
	s, _ := openFixture(t)

	if err := s.UpdateIngredientPrices(ctx, map[string]float64{"milk-1": 25, "milk-2": 99, "salt-1": 5}); err != nil {
		t.Fatalf("bulk update: %v", err)
	}
	milk, _ := s.Ingredient("milk-1")
	if milk.Price != 25 || milk.PreviousPrice == nil || *milk.PreviousPrice != 20 {
		t.Fatalf("expected price 25 with previous 20, got %+v", milk)
	}
	other, _ := s.Ingredient("milk-2")
	if other.Price != 21 {
		t.Fatalf("expected other outlet price untouched, got %v", other.Price)
	}
	salt, _ := s.Ingredient("salt-1")
	if salt.PreviousPrice != nil {
		t.Fatalf("expected unchanged price to keep no previous price")
	}
}

func TestAddIngredientJoinsDefinitionByName(t *testing.T) {
	ctx := context.Background()
	s, _ := openFixture(t)

	if _, err := s.AddIngredient(ctx, domain.IngredientCreateRequest{Name: "Susu", Unit: "ml"}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected duplicate in outlet to be rejected, got %v", err)
	}

	_, _ = s.SetCurrentOutlet(ctx, "out002")
	created, err := s.AddIngredient(ctx, domain.IngredientCreateRequest{Name: " Garam ", Unit: "gram", Price: 6, StockLevel: 10})
	if err != nil {
		t.Fatalf("add ingredient: %v", err)
	}
	if created.DefinitionID != "def-salt" || created.OutletID != "out002" {
		t.Fatalf("expected to join def-salt in out002, got %+v", created)
	}

	fresh, err := s.AddIngredient(ctx, domain.IngredientCreateRequest{Name: "Madu", Unit: "ml"})
	if err != nil {
		t.Fatalf("add ingredient: %v", err)
	}
	if fresh.DefinitionID == "" || fresh.DefinitionID == fresh.ID {
		t.Fatalf("expected a new definition id, got %+v", fresh)
	}
}

func TestMenuItemRecipeStoresDefinitions(t *testing.T) {
	ctx := context.Background()
	s, _ := openFixture(t)

	item, err := s.AddMenuItem(ctx, domain.MenuItemRequest{
		Name:         "Susu Garam",
		SellingPrice: 15000,
		TargetMargin: 50,
		Recipe:       []domain.RecipeComponent{{IngredientID: "milk-1", Quantity: 100}, {IngredientID: "def-salt", Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("add menu item: %v", err)
	}
	if item.Recipe[0].IngredientID != "def-milk" || item.Recipe[1].IngredientID != "def-salt" {
		t.Fatalf("expected definition ids in recipe, got %+v", item.Recipe)
	}

	if _, err := s.UpdateMenuItemPrice(ctx, item.ID, 18000); err != nil {
		t.Fatalf("update price: %v", err)
	}
	if err := s.DeleteMenuItem(ctx, item.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.MenuItem(item.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected menu item gone, got %v", err)
	}
}

func TestWasteRecordFreezesCostAndClampsStock(t *testing.T) {
	ctx := context.Background()
	s, _ := openFixture(t)

	rec, err := s.AddWasteRecord(ctx, domain.WasteRecordRequest{IngredientID: "salt-1", Quantity: 100, Reason: domain.WasteExpired})
	if err != nil {
		t.Fatalf("add waste: %v", err)
	}
	if rec.Cost != 500 || rec.OutletID != "out001" || !rec.Date.Equal(testNow) {
		t.Fatalf("unexpected waste record %+v", rec)
	}
	salt, _ := s.Ingredient("salt-1")
	if salt.StockLevel != 0 {
		t.Fatalf("expected stock clamped at 0, got %v", salt.StockLevel)
	}

	_, _ = s.UpdateIngredientPrice(ctx, "salt-1", 50)
	if got := s.WasteHistory("out001")[0].Cost; got != 500 {
		t.Fatalf("expected frozen cost 500, got %v", got)
	}

	if _, err := s.AddWasteRecord(ctx, domain.WasteRecordRequest{IngredientID: "milk-2", Quantity: 1, Reason: domain.WasteOther}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected other outlet ingredient to be rejected, got %v", err)
	}
}

func TestPendingOrderReceiveStock(t *testing.T) {
	ctx := context.Background()
	s, _ := openFixture(t)

	order, err := s.AddPendingOrder(ctx, domain.PendingOrderRequest{
		Supplier: domain.OrderSupplier{ID: "sup1", Name: "Pangan"},
		Items: []domain.PurchaseOrderItem{
			{IngredientID: "milk-1", QuantityToOrder: 1000, Price: 19},
			{IngredientID: "def-salt", QuantityToOrder: 60, Price: 5},
		},
	})
	if err != nil {
		t.Fatalf("add order: %v", err)
	}
	if order.TotalAmount != 19300 {
		t.Fatalf("expected derived total 19300, got %v", order.TotalAmount)
	}
	if order.PONumber != "PO-1715333400000" {
		t.Fatalf("unexpected po number %q", order.PONumber)
	}

	touched, err := s.ReceiveStock(ctx, order.ID)
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	if len(touched) != 2 {
		t.Fatalf("expected 2 ingredients restocked, got %d", len(touched))
	}
	milk, _ := s.Ingredient("milk-1")
	salt, _ := s.Ingredient("salt-1")
	if milk.StockLevel != 1500 || salt.StockLevel != 100 {
		t.Fatalf("unexpected stock after receive milk=%v salt=%v", milk.StockLevel, salt.StockLevel)
	}
	if len(s.PendingOrders("out001")) != 0 {
		t.Fatalf("expected order removed")
	}
	if _, err := s.ReceiveStock(ctx, order.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected second receive to fail, got %v", err)
	}
}

func TestDeleteSupplierRemovesLinks(t *testing.T) {
	ctx := context.Background()
	s, _ := openFixture(t)

	link, err := s.LinkSupplierIngredient(ctx, domain.SupplierPriceRequest{SupplierID: "sup1", IngredientID: "salt-1", Price: 4})
	if err != nil {
		t.Fatalf("link: %v", err)
	}
	if link.IngredientID != "def-salt" {
		t.Fatalf("expected link to definition, got %q", link.IngredientID)
	}
	if err := s.DeleteSupplier(ctx, "sup1"); err != nil {
		t.Fatalf("delete supplier: %v", err)
	}
	if len(s.SupplierPrices()) != 0 {
		t.Fatalf("expected supplier links removed, got %+v", s.SupplierPrices())
	}
}

type failingBackend struct {
	*memory.Backend
	fail bool
}

func (f *failingBackend) Save(ctx context.Context, values map[string][]byte) error {
	if f.fail {
		return errors.New("disk full")
	}
	return f.Backend.Save(ctx, values)
}

func TestFlushFailureKeepsState(t *testing.T) {
	ctx := context.Background()
	values, _ := encodeState(fixtureState())
	backend := &failingBackend{Backend: memory.NewWithValues(values)}
	s, err := Open(ctx, backend, testOptions())
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	backend.fail = true
	if _, err := s.AddOutlet(ctx, "Depok"); !errors.Is(err, ErrPersist) {
		t.Fatalf("expected persist error, got %v", err)
	}
	if len(s.Outlets()) != 3 {
		t.Fatalf("expected in-memory state to keep the new outlet")
	}

	backend.fail = false
	if _, err := s.AddOutlet(ctx, "Bogor"); err != nil {
		t.Fatalf("add outlet after recovery: %v", err)
	}
	reopened, err := Open(ctx, backend.Backend, testOptions())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if len(reopened.Outlets()) != 4 {
		t.Fatalf("expected the next flush to persist the earlier outlet too, got %+v", reopened.Outlets())
	}
}
