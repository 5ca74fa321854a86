package recommendation

import (
	"strings"
	"testing"
	"time"

	"profitlens/internal/domain"
)

func TestFormatIngredientsAndMenu(t *testing.T) {
	ingredients := []domain.Ingredient{{ID: "ing001-002", Name: "Susu UHT", Unit: "ml", Price: 17.5, StockLevel: 20000}}
	if got := FormatIngredients(ingredients); got != "Susu UHT (ID: ing001-002, Stok: 20000 ml, Harga: 17.5/ml)" {
		t.Fatalf("unexpected ingredients line %q", got)
	}

	if got := FormatMenuItems([]domain.MenuItemView{latteView()}); got != "Kopi Susu (ID: menu001, Harga Jual: 22000, HPP: 9000, Margin: 59.1%)" {
		t.Fatalf("unexpected menu line %q", got)
	}
}

func TestFormatSalesHistoryWindow(t *testing.T) {
	now := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	items := []domain.MenuItemView{latteView()}
	sales := []domain.SalesRecord{
		{Date: "2024-05-02", MenuItemID: "menu001", QuantitySold: 5},
		{Date: "2024-05-03", MenuItemID: "menu001", QuantitySold: 7},
		{Date: "2024-05-09", MenuItemID: "gone", QuantitySold: 2},
	}

	got := FormatSalesHistory(sales, items, now, 7)
	want := "2024-05-03: Kopi Susu terjual 7 unit\n2024-05-09: gone terjual 2 unit"
	if got != want {
		t.Fatalf("unexpected sales\n got %q\nwant %q", got, want)
	}

	if got := FormatSalesHistory(nil, items, now, 7); got != "Tidak ada data penjualan dalam periode ini." {
		t.Fatalf("unexpected empty message %q", got)
	}
}

func TestFormatWasteHistory(t *testing.T) {
	now := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	ingredients := []domain.Ingredient{{ID: "ing001-002", Name: "Susu UHT"}}
	waste := []domain.WasteRecord{
		{Date: now.AddDate(0, 0, -20), IngredientID: "ing001-002", Quantity: 1, Reason: domain.WasteExpired, Cost: 17},
		{Date: now.AddDate(0, 0, -1), IngredientID: "ing001-002", Quantity: 500, Reason: domain.WasteDamaged, Cost: 8500},
		{Date: now, IngredientID: "x", Quantity: 1, Reason: domain.WasteOther, Cost: 1},
	}

	got := FormatWasteHistory(waste, ingredients, now, 14)
	want := "2024-05-09: Susu UHT terbuang 500 unit karena Rusak (kerugian 8500)\n2024-05-10: Unknown Ingredient terbuang 1 unit karena Lainnya (kerugian 1)"
	if got != want {
		t.Fatalf("unexpected waste\n got %q\nwant %q", got, want)
	}
}

func TestFormatSuppliersWithPrices(t *testing.T) {
	suppliers := []domain.Supplier{{ID: "sup001", Name: "Sumber Pangan"}, {ID: "sup002", Name: "Kopi Jaya"}}
	prices := []domain.SupplierPrice{
		{ID: "sp1", SupplierID: "sup001", IngredientID: "ing-002", Price: 17},
		{ID: "sp2", SupplierID: "sup001", IngredientID: "ing-999", Price: 1},
	}
	ingredients := []domain.Ingredient{
		{ID: "ing001-002", DefinitionID: "ing-002", Name: "Susu UHT"},
		{ID: "ing002-002", DefinitionID: "ing-002", Name: "Susu UHT"},
	}

	got := FormatSuppliersWithPrices(suppliers, prices, ingredients)
	want := "Supplier: Sumber Pangan (ID: sup001)\n- Susu UHT: 17\n\nSupplier: Kopi Jaya (ID: sup002)\nTidak ada daftar harga."
	if got != want {
		t.Fatalf("unexpected suppliers\n got %q\nwant %q", got, want)
	}
	if FormatSuppliersWithPrices(nil, nil, nil) != "Tidak ada data supplier." {
		t.Fatalf("unexpected empty supplier message")
	}
}

func TestFormatForecasts(t *testing.T) {
	got := FormatForecasts([]domain.NamedForecast{{
		ItemName: "Kopi Susu",
		Forecast: domain.Forecast{DailyForecasts: []domain.DailyForecast{{Day: "Sabtu", PredictedSales: 30}}},
	}})
	if got != "Proyeksi untuk \"Kopi Susu\":\n- Sabtu: 30 unit" {
		t.Fatalf("unexpected forecasts %q", got)
	}
	if FormatForecasts(nil) != "Tidak ada proyeksi penjualan yang relevan." {
		t.Fatalf("unexpected empty forecast message")
	}
}

func TestExtractJSON(t *testing.T) {
	cases := map[string]string{
		"```json\n{\"a\":1}\n```":  `{"a":1}`,
		"Berikut hasilnya: {\"a\":1}": `{"a":1}`,
		"[1,2]":                    "[1,2]",
		"tidak ada":                "tidak ada",
	}
	for in, want := range cases {
		if got := extractJSON(in); got != want {
			t.Fatalf("extractJSON(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestPromptsAreDeterministic(t *testing.T) {
	in := ReorderInput{
		LowStock:    []domain.Ingredient{{ID: "i1", Name: "Telur", Unit: "butir", StockLevel: 10, ReorderPoint: 24}},
		Ingredients: []domain.Ingredient{{ID: "i1", DefinitionID: "ing-012", Name: "Telur", Unit: "butir", StockLevel: 10}},
	}
	a := reorderPrompt(in, testNow)
	b := reorderPrompt(in, testNow)
	if a != b {
		t.Fatalf("expected identical prompts")
	}
	if !strings.Contains(a, "Telur (ID: i1, Stok: 10 butir") {
		t.Fatalf("expected low stock line in prompt")
	}
}
