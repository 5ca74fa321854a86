package notification

import (
	"testing"
	"time"

	"profitlens/internal/domain"
)

func TestDeriveBuildsLowStockAndMarginNotifications(t *testing.T) {
	now := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	ingredients := []domain.Ingredient{
		{ID: "ing1", Name: "Susu UHT", Unit: "ml", StockLevel: 1500, ReorderPoint: 2000},
		{ID: "ing2", Name: "Gula Pasir", Unit: "gram", StockLevel: 5000, ReorderPoint: 1000},
	}
	alerts := []domain.MarginAlert{{IngredientName: "Biji Kopi Espresso", PriceIncreasePercent: 12, AffectedMenus: []string{"Kopi Susu Gula Aren", "Pandan Latte"}}}

	reads := NewReadSet()
	reads.MarkRead("lowstock-ing1")

	got := Derive(ingredients, alerts, reads, now)
	if len(got) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(got))
	}

	low := got[0]
	if low.ID != "lowstock-ing1" || low.Type != domain.NotificationLowStock || !low.IsRead {
		t.Fatalf("unexpected low stock notification %+v", low)
	}
	if low.Message != "Stok untuk Susu UHT menipis (1500 ml). Segera lakukan pemesanan ulang." {
		t.Fatalf("unexpected message %q", low.Message)
	}

	margin := got[1]
	if margin.ID != "margin-Biji Kopi Espresso-0" || margin.IsRead {
		t.Fatalf("unexpected margin notification %+v", margin)
	}
	if margin.Message != "Harga Biji Kopi Espresso naik 12%, mempengaruhi margin Kopi Susu Gula Aren, Pandan Latte." {
		t.Fatalf("unexpected message %q", margin.Message)
	}
}

func TestReadSetIgnoresEmptyAndDuplicates(t *testing.T) {
	reads := NewReadSet()
	reads.MarkRead("a", "a", "", "b")
	if reads.Len() != 2 {
		t.Fatalf("expected 2 ids, got %d", reads.Len())
	}
	var missing *ReadSet
	if missing.Has("a") {
		t.Fatalf("nil read set must report unread")
	}
}
