package seed

import (
	_ "embed"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"time"

	"gopkg.in/yaml.v2"

	"profitlens/internal/domain"
)

//go:embed dataset.yaml
var datasetYAML []byte

type fileOutlet struct {
	ID          string  `yaml:"id"`
	Name        string  `yaml:"name"`
	StockFactor float64 `yaml:"stock_factor"`
	PriceFactor float64 `yaml:"price_factor"`
	SalesFactor float64 `yaml:"sales_factor"`
}

type fileIngredient struct {
	ID           string  `yaml:"id"`
	Name         string  `yaml:"name"`
	Unit         string  `yaml:"unit"`
	Price        float64 `yaml:"price"`
	StockLevel   float64 `yaml:"stock_level"`
	ReorderPoint float64 `yaml:"reorder_point"`
}

type fileRecipeComponent struct {
	IngredientID string  `yaml:"ingredient_id"`
	Quantity     float64 `yaml:"quantity"`
}

type fileMenuItem struct {
	ID           string                `yaml:"id"`
	Name         string                `yaml:"name"`
	ImageURL     string                `yaml:"image_url"`
	SellingPrice float64               `yaml:"selling_price"`
	TargetMargin float64               `yaml:"target_margin"`
	Popularity   float64               `yaml:"popularity"`
	Recipe       []fileRecipeComponent `yaml:"recipe"`
}

type fileCost struct {
	ID       string  `yaml:"id"`
	OutletID string  `yaml:"outlet_id"`
	Name     string  `yaml:"name"`
	Amount   float64 `yaml:"amount"`
	Interval string  `yaml:"interval"`
}

type fileSupplier struct {
	ID            string `yaml:"id"`
	Name          string `yaml:"name"`
	ContactPerson string `yaml:"contact_person"`
	Phone         string `yaml:"phone"`
}

type fileSupplierPrice struct {
	ID           string  `yaml:"id"`
	SupplierID   string  `yaml:"supplier_id"`
	IngredientID string  `yaml:"ingredient_id"`
	Price        float64 `yaml:"price"`
}

type fileSales struct {
	Days                int                `yaml:"days"`
	BaseUnits           float64            `yaml:"base_units"`
	DefaultPopularity   float64            `yaml:"default_popularity"`
	DefaultOutletFactor float64            `yaml:"default_outlet_factor"`
	WeekdayFactors      map[string]float64 `yaml:"weekday_factors"`
}

type file struct {
	User struct {
		Name      string `yaml:"name"`
		Role      string `yaml:"role"`
		AvatarURL string `yaml:"avatar_url"`
	} `yaml:"user"`
	Outlets          []fileOutlet        `yaml:"outlets"`
	Ingredients      []fileIngredient    `yaml:"ingredients"`
	MenuItems        []fileMenuItem      `yaml:"menu_items"`
	OperationalCosts []fileCost          `yaml:"operational_costs"`
	Suppliers        []fileSupplier      `yaml:"suppliers"`
	SupplierPrices   []fileSupplierPrice `yaml:"supplier_prices"`
	Sales            fileSales           `yaml:"sales"`
}

// Dataset is the demo data a fresh store starts from.
type Dataset struct {
	User             domain.User
	Outlets          []domain.Outlet
	Ingredients      []domain.Ingredient
	MenuItems        []domain.MenuItem
	SalesHistory     []domain.SalesRecord
	OperationalCosts []domain.OperationalCost
	Suppliers        []domain.Supplier
	SupplierPrices   []domain.SupplierPrice
}

func parse() (file, error) {
	var f file
	if err := yaml.Unmarshal(datasetYAML, &f); err != nil {
		return file{}, fmt.Errorf("parse seed dataset: %w", err)
	}
	return f, nil
}

// Load builds the full seed dataset with a sales history ending at now. rng
// drives the sales noise; a nil rng uses the global source.
func Load(now time.Time, rng *rand.Rand) (Dataset, error) {
	f, err := parse()
	if err != nil {
		return Dataset{}, err
	}

	ds := Dataset{
		User: domain.User{Name: f.User.Name, Role: f.User.Role, AvatarURL: f.User.AvatarURL},
	}

	for _, o := range f.Outlets {
		ds.Outlets = append(ds.Outlets, domain.Outlet{ID: o.ID, Name: o.Name})
	}
	ds.Ingredients = outletIngredients(f)

	for _, m := range f.MenuItems {
		item := domain.MenuItem{
			ID:           m.ID,
			Name:         m.Name,
			ImageURL:     m.ImageURL,
			SellingPrice: m.SellingPrice,
			TargetMargin: m.TargetMargin,
			Recipe:       make([]domain.RecipeComponent, 0, len(m.Recipe)),
		}
		for _, rc := range m.Recipe {
			item.Recipe = append(item.Recipe, domain.RecipeComponent{IngredientID: rc.IngredientID, Quantity: rc.Quantity})
		}
		ds.MenuItems = append(ds.MenuItems, item)
	}

	for _, c := range f.OperationalCosts {
		ds.OperationalCosts = append(ds.OperationalCosts, domain.OperationalCost{
			ID:       c.ID,
			OutletID: c.OutletID,
			Name:     c.Name,
			Amount:   c.Amount,
			Interval: domain.CostInterval(c.Interval),
		})
	}
	for _, s := range f.Suppliers {
		ds.Suppliers = append(ds.Suppliers, domain.Supplier{ID: s.ID, Name: s.Name, ContactPerson: s.ContactPerson, Phone: s.Phone})
	}
	for _, sp := range f.SupplierPrices {
		ds.SupplierPrices = append(ds.SupplierPrices, domain.SupplierPrice{ID: sp.ID, SupplierID: sp.SupplierID, IngredientID: sp.IngredientID, Price: sp.Price})
	}

	ds.SalesHistory = generateSalesHistory(f, now, rng)
	return ds, nil
}

// outletIngredients expands every ingredient definition into one instance per
// outlet, scaled by the outlet's stock and price factors.
func outletIngredients(f file) []domain.Ingredient {
	out := make([]domain.Ingredient, 0, len(f.Outlets)*len(f.Ingredients))
	for _, outlet := range f.Outlets {
		suffix := outlet.ID
		if len(suffix) > 3 {
			suffix = suffix[len(suffix)-3:]
		}
		for idx, ing := range f.Ingredients {
			out = append(out, domain.Ingredient{
				ID:           fmt.Sprintf("ing%s-%03d", suffix, idx+1),
				DefinitionID: ing.ID,
				OutletID:     outlet.ID,
				Name:         ing.Name,
				Unit:         ing.Unit,
				Price:        math.Round(ing.Price * factorOr(outlet.PriceFactor, 1)),
				StockLevel:   math.Round(ing.StockLevel * factorOr(outlet.StockFactor, 1)),
				ReorderPoint: ing.ReorderPoint,
			})
		}
	}
	return out
}

func generateSalesHistory(f file, now time.Time, rng *rand.Rand) []domain.SalesRecord {
	randFloat := rand.Float64
	if rng != nil {
		randFloat = rng.Float64
	}

	cfg := f.Sales
	history := make([]domain.SalesRecord, 0, cfg.Days*len(f.Outlets)*len(f.MenuItems))
	today := now.UTC()

	for i := 0; i < cfg.Days; i++ {
		date := today.AddDate(0, 0, -i)
		dayFactor := factorOr(cfg.WeekdayFactors[date.Weekday().String()], 1)

		for _, outlet := range f.Outlets {
			outletFactor := factorOr(outlet.SalesFactor, cfg.DefaultOutletFactor)
			for _, item := range f.MenuItems {
				popularity := factorOr(item.Popularity, cfg.DefaultPopularity)
				noise := randFloat()*0.4 + 0.8
				qty := int(math.Round(cfg.BaseUnits * popularity * dayFactor * outletFactor * noise))
				if qty <= 0 {
					continue
				}
				history = append(history, domain.SalesRecord{
					Date:         date.Format(domain.DateLayout),
					MenuItemID:   item.ID,
					QuantitySold: qty,
					TotalRevenue: float64(qty) * item.SellingPrice,
					OutletID:     outlet.ID,
				})
			}
		}
	}

	sort.SliceStable(history, func(a, b int) bool {
		return history[a].Date < history[b].Date
	})
	return history
}

func factorOr(v float64, fallback float64) float64 {
	if v == 0 {
		return fallback
	}
	return v
}
