package recommendation

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"profitlens/internal/domain"
)

var indonesianWeekdays = [...]string{"Minggu", "Senin", "Selasa", "Rabu", "Kamis", "Jumat", "Sabtu"}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func sinceDate(now time.Time, days int) string {
	return now.UTC().AddDate(0, 0, -days).Format(domain.DateLayout)
}

// FormatIngredients lists ingredients one per line with stock and unit price.
func FormatIngredients(ingredients []domain.Ingredient) string {
	lines := make([]string, 0, len(ingredients))
	for _, i := range ingredients {
		lines = append(lines, fmt.Sprintf("%s (ID: %s, Stok: %s %s, Harga: %s/%s)", i.Name, i.ID, num(i.StockLevel), i.Unit, num(i.Price), i.Unit))
	}
	return strings.Join(lines, "\n")
}

func FormatMenuItems(items []domain.MenuItemView) string {
	lines := make([]string, 0, len(items))
	for _, m := range items {
		lines = append(lines, fmt.Sprintf("%s (ID: %s, Harga Jual: %s, HPP: %s, Margin: %.1f%%)", m.Name, m.ID, num(m.SellingPrice), num(m.COGS), m.ActualMargin))
	}
	return strings.Join(lines, "\n")
}

// FormatSalesHistory lists sales dated on or after now minus days.
func FormatSalesHistory(sales []domain.SalesRecord, items []domain.MenuItemView, now time.Time, days int) string {
	names := make(map[string]string, len(items))
	for _, m := range items {
		names[m.ID] = m.Name
	}
	limit := sinceDate(now, days)

	var lines []string
	for _, s := range sales {
		if s.Date < limit {
			continue
		}
		name := names[s.MenuItemID]
		if name == "" {
			name = s.MenuItemID
		}
		lines = append(lines, fmt.Sprintf("%s: %s terjual %d unit", s.Date, name, s.QuantitySold))
	}
	if len(lines) == 0 {
		return "Tidak ada data penjualan dalam periode ini."
	}
	return strings.Join(lines, "\n")
}

func FormatWasteHistory(waste []domain.WasteRecord, ingredients []domain.Ingredient, now time.Time, days int) string {
	names := make(map[string]string, len(ingredients))
	for _, i := range ingredients {
		names[i.ID] = i.Name
	}
	limit := sinceDate(now, days)

	var lines []string
	for _, w := range waste {
		date := w.Date.UTC().Format(domain.DateLayout)
		if date < limit {
			continue
		}
		name := names[w.IngredientID]
		if name == "" {
			name = "Unknown Ingredient"
		}
		lines = append(lines, fmt.Sprintf("%s: %s terbuang %s unit karena %s (kerugian %s)", date, name, num(w.Quantity), w.Reason, num(w.Cost)))
	}
	if len(lines) == 0 {
		return "Tidak ada data buangan dalam periode ini."
	}
	return strings.Join(lines, "\n")
}

func FormatForecasts(forecasts []domain.NamedForecast) string {
	if len(forecasts) == 0 {
		return "Tidak ada proyeksi penjualan yang relevan."
	}
	blocks := make([]string, 0, len(forecasts))
	for _, f := range forecasts {
		lines := make([]string, 0, len(f.Forecast.DailyForecasts)+1)
		lines = append(lines, fmt.Sprintf("Proyeksi untuk %q:", f.ItemName))
		for _, d := range f.Forecast.DailyForecasts {
			lines = append(lines, fmt.Sprintf("- %s: %s unit", d.Day, num(d.PredictedSales)))
		}
		blocks = append(blocks, strings.Join(lines, "\n"))
	}
	return strings.Join(blocks, "\n\n")
}

// FormatSuppliersWithPrices groups price links under their supplier. Links
// reference ingredient definitions, named through any instance.
func FormatSuppliersWithPrices(suppliers []domain.Supplier, prices []domain.SupplierPrice, ingredients []domain.Ingredient) string {
	if len(suppliers) == 0 {
		return "Tidak ada data supplier."
	}
	names := make(map[string]string, len(ingredients))
	for _, i := range ingredients {
		if _, ok := names[i.DefinitionID]; !ok {
			names[i.DefinitionID] = i.Name
		}
	}

	blocks := make([]string, 0, len(suppliers))
	for _, s := range suppliers {
		var lines []string
		for _, sp := range prices {
			if sp.SupplierID != s.ID {
				continue
			}
			if name, ok := names[sp.IngredientID]; ok {
				lines = append(lines, fmt.Sprintf("- %s: %s", name, num(sp.Price)))
			}
		}
		list := strings.Join(lines, "\n")
		if list == "" {
			list = "Tidak ada daftar harga."
		}
		blocks = append(blocks, fmt.Sprintf("Supplier: %s (ID: %s)\n%s", s.Name, s.ID, list))
	}
	return strings.Join(blocks, "\n\n")
}

func formatOperationalCosts(costs []domain.OperationalCost) string {
	lines := make([]string, 0, len(costs))
	for _, c := range costs {
		lines = append(lines, fmt.Sprintf("- %s: %s per %s", c.Name, num(c.Amount), c.Interval))
	}
	return strings.Join(lines, "\n")
}

// aggregateSales sums units and revenue per menu item name.
func aggregateSales(sales []domain.SalesRecord, items []domain.MenuItemView) string {
	type total struct {
		units   int
		revenue float64
	}
	totals := make(map[string]*total, len(items))
	for _, s := range sales {
		t, ok := totals[s.MenuItemID]
		if !ok {
			t = &total{}
			totals[s.MenuItemID] = t
		}
		t.units += s.QuantitySold
		t.revenue += s.TotalRevenue
	}

	lines := make([]string, 0, len(items))
	for _, m := range items {
		t := totals[m.ID]
		if t == nil {
			t = &total{}
		}
		lines = append(lines, fmt.Sprintf("%s (ID: %s): %d unit terjual, pendapatan %s, margin %.1f%%", m.Name, m.ID, t.units, num(t.revenue), m.ActualMargin))
	}
	return strings.Join(lines, "\n")
}

func marginFixPrompt(item domain.MenuItemView) string {
	return fmt.Sprintf(`Menu item saya %q sedang mengalami masalah margin.
- Harga Jual: %s
- Modal (HPP): %s
- Margin Aktual: %.1f%%
- Target Margin: %s%%

Berikan rekomendasi konkret dalam format markdown untuk memperbaiki margin. Fokus pada:
1. Analisis penyebab masalah (misalnya kenaikan harga bahan baku).
2. Saran penyesuaian harga jual dengan justifikasi.
3. Ide efisiensi resep jika memungkinkan.
4. Saran bundling atau promosi untuk meningkatkan penjualan.`,
		item.Name, num(item.SellingPrice), num(item.COGS), item.ActualMargin, num(item.TargetMargin))
}

func forecastPrompt(item domain.MenuItemView, sales []domain.SalesRecord, now time.Time) string {
	var lines []string
	for _, s := range sales {
		if s.MenuItemID == item.ID {
			lines = append(lines, fmt.Sprintf("%s: %d unit", s.Date, s.QuantitySold))
		}
	}

	return fmt.Sprintf(`Analyze the following sales data for the menu item %q and provide a 7-day sales forecast. Consider potential weekly patterns (weekends vs weekdays).

Historical Sales Data (last 90 days):
%s

Today is %s. Provide a forecast for the next 7 days (e.g., Selasa, Rabu, etc.), starting from tomorrow.

Provide the output in a structured JSON format. The JSON should have two keys: "summary" and "dailyForecasts".
- "summary": A brief, insightful text summary of the sales trend and forecast, mentioning any seasonal or weekly patterns observed.
- "dailyForecasts": An array of objects, where each object has "day" (e.g., "Selasa") and "predictedSales" (a number).`,
		item.Name, strings.Join(lines, "\n"), indonesianWeekdays[now.Weekday()])
}

func menuItemPrompt(idea string, ingredients []domain.Ingredient) string {
	parts := make([]string, 0, len(ingredients))
	for _, i := range ingredients {
		parts = append(parts, fmt.Sprintf("%s (%s)", i.Name, i.Unit))
	}

	return fmt.Sprintf(`You are a creative chef for a modern coffee shop. Based on the user's idea and the available ingredients, create a new menu item.

User Idea: %q

Available Ingredients: %s

Provide a response in a structured JSON format with the following keys: "name", "description", "sellingPrice", and "recipe".
- "name": A creative and appealing name for the new menu item.
- "description": A short, enticing description for the menu.
- "sellingPrice": A recommended selling price (integer) in IDR, considering typical coffee shop pricing.
- "recipe": An array of objects, where each object has "ingredientName", "quantity" (number), and "unit" (e.g., 'gram', 'ml'). The ingredient names must be chosen from the available ingredients list.`,
		idea, strings.Join(parts, ", "))
}

// ReorderInput is the data a reorder suggestion is based on.
type ReorderInput struct {
	LowStock       []domain.Ingredient
	Ingredients    []domain.Ingredient
	Sales          []domain.SalesRecord
	MenuItems      []domain.MenuItemView
	Waste          []domain.WasteRecord
	Forecasts      []domain.NamedForecast
	Suppliers      []domain.Supplier
	SupplierPrices []domain.SupplierPrice
}

func reorderPrompt(in ReorderInput, now time.Time) string {
	return fmt.Sprintf(`Anda adalah manajer inventaris untuk sebuah kedai kopi. Buat daftar belanja untuk bahan yang stoknya menipis.

Bahan dengan stok menipis:
%s

Seluruh inventaris:
%s

Penjualan 7 hari terakhir:
%s

Bahan terbuang 14 hari terakhir:
%s

Proyeksi penjualan:
%s

Supplier dan daftar harga:
%s

Berikan output dalam format JSON dengan kunci "summary", "purchaseList", dan "recommendedSupplier".
- "summary": ringkasan singkat alasan pembelian.
- "purchaseList": array objek dengan "ingredientName", "quantityToOrder" (angka), "unit", dan "estimatedCost" (angka). Nama bahan harus diambil dari daftar inventaris.
- "recommendedSupplier": objek dengan "supplierId", "supplierName", dan "justification", dipilih dari daftar supplier.`,
		FormatIngredients(in.LowStock),
		FormatIngredients(in.Ingredients),
		FormatSalesHistory(in.Sales, in.MenuItems, now, 7),
		FormatWasteHistory(in.Waste, in.Ingredients, now, 14),
		FormatForecasts(in.Forecasts),
		FormatSuppliersWithPrices(in.Suppliers, in.SupplierPrices, in.Ingredients))
}

func dynamicPricePrompt(item domain.MenuItemView, sales []domain.SalesRecord, items []domain.MenuItemView, now time.Time) string {
	return fmt.Sprintf(`Anda adalah konsultan harga untuk kedai kopi. Sarankan harga jual baru untuk %q.
- Harga Jual: %s
- Modal (HPP): %s
- Margin Aktual: %.1f%%
- Target Margin: %s%%

Penjualan 7 hari terakhir:
%s

Berikan output dalam format JSON dengan kunci "newSellingPrice" (angka, IDR), "justification" (teks singkat), dan "projectedMargin" (angka persen).`,
		item.Name, num(item.SellingPrice), num(item.COGS), item.ActualMargin, num(item.TargetMargin),
		FormatSalesHistory(sales, items, now, 7))
}

func basketPrompt(items []domain.MenuItemView, sales []domain.SalesRecord) string {
	return fmt.Sprintf(`Analisis data penjualan berikut untuk menemukan menu yang cenderung dibeli bersamaan.

Menu:
%s

Ringkasan penjualan:
%s

Berikan output dalam format JSON dengan kunci "summary" dan "pairings". "pairings" adalah array objek dengan "item1Name", "item2Name", "item1ImageUrl", "item2ImageUrl", dan "analysis". Nama menu harus diambil dari daftar menu.`,
		FormatMenuItems(items), aggregateSales(sales, items))
}

func campaignPrompt(items []domain.MenuItemView, sales []domain.SalesRecord) string {
	return fmt.Sprintf(`Anda adalah ahli pemasaran untuk kedai kopi. Rancang satu kampanye promosi yang melibatkan dua menu untuk meningkatkan penjualan dan margin.

Menu:
%s

Ringkasan penjualan:
%s

Berikan output dalam format JSON dengan kunci "campaignName", "marketingCopy", "promoMechanic", "justification", dan "involvedItems" (objek dengan "item1Name" dan "item2Name").`,
		FormatMenuItems(items), aggregateSales(sales, items))
}

func menuEngineeringPrompt(items []domain.MenuItemView, sales []domain.SalesRecord) string {
	return fmt.Sprintf(`Lakukan analisis menu engineering (matriks popularitas vs profitabilitas).

Data menu:
%s

Klasifikasikan setiap menu ke salah satu kategori: "Star", "Cash Cow", "Question Mark", atau "Dog".
Berikan output dalam format JSON dengan kunci "summary", "recommendation", dan "items". "items" adalah array objek dengan "id", "name", "imageUrl", dan "category".`,
		aggregateSales(sales, items))
}

func wastePrompt(waste []domain.WasteRecord, ingredients []domain.Ingredient, now time.Time) string {
	return fmt.Sprintf(`Analisis catatan bahan terbuang berikut dan temukan pola pemborosan.

Catatan buangan 30 hari terakhir:
%s

Inventaris:
%s

Berikan output dalam format JSON dengan kunci "summary" dan "patterns". "patterns" adalah array objek dengan "patternDescription", "recommendation", "implicatedIngredient", dan "estimatedCostSaved" (angka).`,
		FormatWasteHistory(waste, ingredients, now, 30), FormatIngredients(ingredients))
}

func competitorPrompt(location string, items []domain.MenuItemView) string {
	return fmt.Sprintf(`Cari informasi terbaru tentang kedai kopi pesaing di sekitar %s. Bandingkan harga dan menu mereka dengan menu saya:
%s

Berikan analisis singkat dalam format markdown: posisi harga saya, menu unggulan pesaing, dan peluang yang bisa saya ambil.`,
		location, FormatMenuItems(items))
}

func profitLossPrompt(pl domain.ProfitLoss) string {
	return fmt.Sprintf(`Berikut laporan laba rugi kedai kopi saya untuk %d hari terakhir:
- Pendapatan: %s
- HPP: %s
- Laba Kotor: %s (%.1f%%)
- Biaya Operasional: %s
- Kerugian Bahan Terbuang: %s
- Laba Bersih: %s (%.1f%%)

Berikan analisis keuangan singkat dalam format markdown beserta tiga langkah konkret untuk meningkatkan laba bersih.`,
		pl.PeriodDays, num(pl.TotalRevenue), num(pl.TotalCOGS), num(pl.GrossProfit), pl.GrossProfitMargin,
		num(pl.TotalOperationalCost), num(pl.TotalWasteCost), num(pl.NetProfit), pl.NetProfitMargin)
}

// ChatInput is the outlet data the assistant is grounded on.
type ChatInput struct {
	MenuItems        []domain.MenuItemView
	Ingredients      []domain.Ingredient
	OperationalCosts []domain.OperationalCost
	Sales            []domain.SalesRecord
}

func chatSystemPrompt(in ChatInput, now time.Time) string {
	return fmt.Sprintf(`You are ProfitLens AI, an expert business analyst and guide for a coffee shop owner using this application.
Your main role is to help the user understand their business data and how to use the ProfitLens AI application's features.

**Application Features Guide:**
If the user asks about a feature, explain it clearly based on this guide.

* **Dashboard:** The main control center showing a real-time overview of business health (Revenue, Profit, Margin). It includes a sales chart, margin alerts, and AI-powered growth opportunities.
* **Laba & Rugi (Profit & Loss):** Automatically calculates the profit and loss statement by breaking down all costs (COGS, operational, waste) to show the net profit. It also offers AI financial analysis.
* **Analisis Performa (Performance Analysis):** Provides deep strategic insights. Includes AI Menu Engineering (Stars, Dogs, etc.), Basket Analysis (what items sell together), and Market Intelligence (competitor pricing research via Google Search).
* **Inventaris (Inventory):** For real-time raw material tracking. It shows low-stock items and provides AI-driven reorder suggestions to prevent stockouts. Also manages Purchase Orders.
* **Supplier:** A directory to manage supplier contacts and their price lists for different ingredients.
* **Buangan (Waste):** A feature to log discarded ingredients. The AI analyzes these logs to find patterns and recommend ways to reduce waste and save money.
* **Menu:** The place to manage all menu items, including recipes, prices, and real-time profit margins. Includes an AI feature to generate new, creative menu ideas.
* **Operasional (Operational):** For tracking all non-ingredient business costs like salaries, rent, and utilities, which is essential for accurate P&L reports.
* **Proyeksi (Forecasting):** Uses AI to predict future sales for any menu item, helping with inventory and staff planning.
* **Rekap Penjualan (Sales Summary):** Where daily sales figures are entered. This action automatically updates inventory and sales history, which fuels all AI analyses.
* **Profil & Pengaturan (Profile & Settings):** Used for managing the user profile and business outlets (adding, editing, or removing them).

**Current Business Data Context:**
Below is the current data for the user's selected outlet. Use this to answer specific questions about their business.

Menu:
%s

Inventory:
%s

Operational Costs:
%s

Recent Sales (last 7 days):
%s`,
		FormatMenuItems(in.MenuItems),
		FormatIngredients(in.Ingredients),
		formatOperationalCosts(in.OperationalCosts),
		FormatSalesHistory(in.Sales, in.MenuItems, now, 7))
}

// extractJSON strips markdown fences and surrounding prose from a JSON reply.
func extractJSON(text string) string {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	start := strings.IndexAny(cleaned, "{[")
	end := strings.LastIndexAny(cleaned, "}]")
	if start < 0 || end < start {
		return cleaned
	}
	return cleaned[start : end+1]
}
