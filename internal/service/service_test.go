package service

import (
	"context"
	"errors"
	"math/rand/v2"
	"reflect"
	"strings"
	"testing"
	"time"

	"profitlens/internal/domain"
	"profitlens/internal/recommendation"
	"profitlens/internal/store"
	"profitlens/internal/store/memory"
	"profitlens/internal/xid"
)

var testNow = time.Date(2024, 5, 10, 9, 30, 0, 0, time.UTC)

type fakeClient struct {
	reply      string
	chunks     []string
	lastPrompt string
	calls      int
}

func (f *fakeClient) Model() string { return "fake-model" }

func (f *fakeClient) Generate(_ context.Context, req recommendation.Request) (recommendation.Response, error) {
	f.calls++
	f.lastPrompt = req.Contents[len(req.Contents)-1].Text
	return recommendation.Response{Text: f.reply}, nil
}

func (f *fakeClient) Stream(_ context.Context, req recommendation.Request, onChunk func(string) error) error {
	f.calls++
	f.lastPrompt = req.Contents[len(req.Contents)-1].Text
	for _, chunk := range f.chunks {
		if err := onChunk(chunk); err != nil {
			return err
		}
	}
	return nil
}

func newTestService(t *testing.T, client recommendation.Client) *Service {
	t.Helper()
	now := func() time.Time { return testNow }
	st, err := store.Open(context.Background(), memory.New(), store.Options{
		Now:      now,
		IDs:      xid.NewGenerator(1000),
		SeedRand: rand.New(rand.NewPCG(7, 11)),
	})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	var engine *recommendation.Engine
	if client != nil {
		engine = recommendation.NewEngine(client, nil, recommendation.Options{Now: now})
	}
	return New(st, engine, Options{Now: now})
}

func TestSelectOutletRejectsUnknownID(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	if _, err := svc.SelectOutlet(ctx, domain.SelectOutletRequest{OutletID: "out999"}); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	list, err := svc.SelectOutlet(ctx, domain.SelectOutletRequest{OutletID: "out002"})
	if err != nil {
		t.Fatalf("select outlet: %v", err)
	}
	if list.CurrentOutletID != "out002" || len(list.Outlets) != 2 {
		t.Fatalf("unexpected outlet list %+v", list)
	}
}

func TestValidationErrorsWrapInvalidInput(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	_, err := svc.CreateOutlet(ctx, domain.OutletRequest{Name: "   "})
	var verr *ValidationError
	if !errors.As(err, &verr) || !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, ok := verr.Fields["Name"]; !ok {
		t.Fatalf("expected Name field in %v", verr.Fields)
	}

	_, err = svc.RecordWaste(ctx, domain.WasteRecordRequest{IngredientID: "ing001-002", Quantity: 1, Reason: "Hilang"})
	if !errors.As(err, &verr) || verr.Fields["Reason"] == "" {
		t.Fatalf("expected unknown reason to be rejected, got %v", err)
	}
}

func TestProcessDailySalesReportsWarnings(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	check, err := svc.CheckStock(domain.DailySalesRequest{Sales: map[string]int{"menu003": 200}})
	if err != nil {
		t.Fatalf("check stock: %v", err)
	}
	if _, ok := check.Warnings["menu003"]; !ok {
		t.Fatalf("expected warning for brownies, got %v", check.Warnings)
	}

	result, err := svc.ProcessDailySales(ctx, domain.DailySalesRequest{Sales: map[string]int{"menu001": 10}})
	if err != nil {
		t.Fatalf("process sales: %v", err)
	}
	if len(result.Warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", result.Warnings)
	}
	for _, ing := range result.Ingredients {
		if ing.ID == "ing001-002" && ing.StockLevel != 18800 {
			t.Fatalf("expected milk stock 18800, got %v", ing.StockLevel)
		}
	}

	sales, err := svc.SalesHistory("", 1)
	if err != nil {
		t.Fatalf("sales history: %v", err)
	}
	found := false
	for _, rec := range sales {
		if rec.Date == "2024-05-10" && rec.MenuItemID == "menu001" && rec.QuantitySold == 10 && rec.TotalRevenue == 220000 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected today's record in %+v", sales)
	}
}

func TestDashboardDefaultsAndComparison(t *testing.T) {
	svc := newTestService(t, nil)

	dash, err := svc.Dashboard("", 0, true)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if dash.OutletID != "out001" || dash.RangeDays != 30 {
		t.Fatalf("unexpected dashboard header %+v", dash)
	}
	if dash.Comparison == nil {
		t.Fatalf("expected comparison chart")
	}
	if dash.Stats.TotalRevenue <= 0 {
		t.Fatalf("expected seeded revenue, got %v", dash.Stats.TotalRevenue)
	}

	if _, err := svc.Dashboard("out999", 7, false); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected unknown outlet to be not found, got %v", err)
	}
}

func TestPerformanceDefaultsToDashboardRange(t *testing.T) {
	svc := newTestService(t, nil)

	byDefault, err := svc.Performance("", 0)
	if err != nil {
		t.Fatalf("performance: %v", err)
	}
	month, err := svc.Performance("", 30)
	if err != nil {
		t.Fatalf("performance: %v", err)
	}
	if !reflect.DeepEqual(byDefault, month) {
		t.Fatalf("expected default rankings to cover 30 days\ndefault=%+v\nmonth=%+v", byDefault, month)
	}

	quarter, err := svc.Performance("", 90)
	if err != nil {
		t.Fatalf("performance: %v", err)
	}
	if len(byDefault.BestSellersByUnit) == 0 || quarter.BestSellersByUnit[0].Metric <= byDefault.BestSellersByUnit[0].Metric {
		t.Fatalf("expected 90 day units to exceed default window, got %+v vs %+v", quarter.BestSellersByUnit, byDefault.BestSellersByUnit)
	}
}

func TestDashboardWasteSummaryCoversWholeHistory(t *testing.T) {
	svc := newTestService(t, nil)

	damaged := func() float64 {
		t.Helper()
		dash, err := svc.Dashboard("", 7, false)
		if err != nil {
			t.Fatalf("dashboard: %v", err)
		}
		for i, label := range dash.WasteSummary.Labels {
			if label == string(domain.WasteDamaged) {
				return dash.WasteSummary.Data[i]
			}
		}
		t.Fatalf("missing %q in %+v", domain.WasteDamaged, dash.WasteSummary)
		return 0
	}

	before := damaged()
	old := testNow.AddDate(0, 0, -60)
	_, err := svc.RecordWaste(context.Background(), domain.WasteRecordRequest{
		IngredientID: "ing001-002",
		Quantity:     100,
		Reason:       domain.WasteDamaged,
		Date:         &old,
	})
	if err != nil {
		t.Fatalf("record waste: %v", err)
	}
	if got := damaged() - before; got != 1700 {
		t.Fatalf("expected old waste to add 1700, got %v", got)
	}
}

func TestNotificationsMarkRead(t *testing.T) {
	svc := newTestService(t, nil)
	ctx := context.Background()

	if _, err := svc.UpdateIngredientStock(ctx, "ing001-012", domain.StockUpdateRequest{StockLevel: 10}); err != nil {
		t.Fatalf("update stock: %v", err)
	}
	notes, err := svc.Notifications("")
	if err != nil {
		t.Fatalf("notifications: %v", err)
	}
	var egg *domain.Notification
	for i := range notes {
		if notes[i].ID == "lowstock-ing001-012" {
			egg = &notes[i]
		}
	}
	if egg == nil || egg.IsRead {
		t.Fatalf("expected unread egg notification in %+v", notes)
	}

	if err := svc.MarkNotificationsRead(domain.MarkReadRequest{IDs: []string{egg.ID}}); err != nil {
		t.Fatalf("mark read: %v", err)
	}
	notes, _ = svc.Notifications("")
	for _, n := range notes {
		if n.ID == egg.ID && !n.IsRead {
			t.Fatalf("expected notification to be read")
		}
	}

	digests := svc.Digests(30)
	if len(digests) != 2 || len(digests[0].LowStock) != 1 {
		t.Fatalf("unexpected digests %+v", digests)
	}
}

func TestAdvisoryWithoutClientIsNotConfigured(t *testing.T) {
	svc := newTestService(t, nil)
	if svc.AdvisoryEnabled() {
		t.Fatalf("expected advisory to be disabled")
	}
	if _, err := svc.MarginFix(context.Background(), "", "menu001"); !errors.Is(err, recommendation.ErrNotConfigured) {
		t.Fatalf("expected not configured, got %v", err)
	}
}

func TestConfirmReorderCreatesPendingOrder(t *testing.T) {
	svc := newTestService(t, &fakeClient{})
	ctx := context.Background()

	order, err := svc.ConfirmReorder(ctx, domain.ReorderConfirmRequest{Suggestion: domain.ReorderSuggestion{
		PurchaseList: []domain.ReorderLine{
			{IngredientName: "susu uht", QuantityToOrder: 1000, Unit: "ml"},
			{IngredientName: "Telur", QuantityToOrder: 24, EstimatedCost: 48000},
			{IngredientName: "Buah Naga", QuantityToOrder: 5},
		},
		RecommendedSupplier: &domain.RecommendedSupplier{SupplierID: "sup001"},
	}})
	if err != nil {
		t.Fatalf("confirm reorder: %v", err)
	}
	if order.Supplier.Name != "Sumber Pangan Utama" || len(order.Items) != 2 {
		t.Fatalf("unexpected order %+v", order)
	}
	if order.Items[0].IngredientID != "ing001-002" || order.Items[0].Price != 17 {
		t.Fatalf("expected supplier list price for milk, got %+v", order.Items[0])
	}
	if order.Items[1].Price != 2000 || order.Items[1].Unit != "butir" {
		t.Fatalf("expected estimated unit price for eggs, got %+v", order.Items[1])
	}
	if order.TotalAmount != 65000 {
		t.Fatalf("expected total 65000, got %v", order.TotalAmount)
	}

	_, err = svc.ConfirmReorder(ctx, domain.ReorderConfirmRequest{Suggestion: domain.ReorderSuggestion{
		PurchaseList: []domain.ReorderLine{{IngredientName: "Telur", QuantityToOrder: 1}},
	}})
	if !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("expected missing supplier to be invalid, got %v", err)
	}
}

func TestAdoptGeneratedMenuItemMapsNames(t *testing.T) {
	svc := newTestService(t, &fakeClient{})

	item, err := svc.AdoptGeneratedMenuItem(context.Background(), domain.AdoptMenuItemRequest{
		TargetMargin: 60,
		Item: domain.GeneratedMenuItem{
			Name:         "Vanilla Latte",
			SellingPrice: 27000,
			Recipe: []domain.GeneratedRecipeLine{
				{IngredientName: "Susu UHT", Quantity: 150},
				{IngredientName: "Sirup Vanila", Quantity: 15},
				{IngredientName: "Buah Naga", Quantity: 3},
			},
		},
	})
	if err != nil {
		t.Fatalf("adopt: %v", err)
	}
	if len(item.Recipe) != 2 || item.Recipe[0].IngredientID != "ing-002" || item.Recipe[1].IngredientID != "ing-006" {
		t.Fatalf("expected definition ids in recipe, got %+v", item.Recipe)
	}
}

func TestMenuEngineeringBackfillsImages(t *testing.T) {
	f := &fakeClient{reply: `{"summary":"ok","recommendation":"fokus","items":[{"id":"menu001","name":"Kopi Susu Gula Aren","category":"Star"},{"name":"pandan latte","category":"Dog"}]}`}
	svc := newTestService(t, f)

	analysis, err := svc.MenuEngineering(context.Background(), "")
	if err != nil {
		t.Fatalf("menu engineering: %v", err)
	}
	for _, it := range analysis.Items {
		if !strings.HasPrefix(it.ImageURL, "https://images.unsplash.com/") {
			t.Fatalf("expected backfilled image for %q, got %q", it.Name, it.ImageURL)
		}
	}
}

func TestApplyPriceSuggestion(t *testing.T) {
	svc := newTestService(t, &fakeClient{})
	ctx := context.Background()

	item, err := svc.ApplyPriceSuggestion(ctx, "menu001", domain.PriceSuggestionRequest{Suggestion: domain.DynamicPriceSuggestion{NewSellingPrice: 24000}})
	if err != nil {
		t.Fatalf("apply price: %v", err)
	}
	if item.SellingPrice != 24000 {
		t.Fatalf("expected new price, got %v", item.SellingPrice)
	}
	if _, err := svc.ApplyPriceSuggestion(ctx, "menu001", domain.PriceSuggestionRequest{}); !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("expected zero price to be invalid, got %v", err)
	}
}

func TestChatStreamsThroughService(t *testing.T) {
	f := &fakeClient{chunks: []string{"Menu ", "terlaris: Kopi Susu Gula Aren"}}
	svc := newTestService(t, f)

	var got strings.Builder
	err := svc.Chat(context.Background(), "", domain.ChatRequest{Message: " menu terlaris? "}, func(text string) error {
		got.WriteString(text)
		return nil
	})
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if got.String() != "Menu terlaris: Kopi Susu Gula Aren" || f.lastPrompt != "menu terlaris?" {
		t.Fatalf("unexpected chat %q prompt %q", got.String(), f.lastPrompt)
	}

	if err := svc.Chat(context.Background(), "", domain.ChatRequest{}, func(string) error { return nil }); !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("expected empty message to be invalid, got %v", err)
	}
}
