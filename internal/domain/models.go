package domain

import (
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

type Outlet struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type User struct {
	Name      string `json:"name"`
	Role      string `json:"role"`
	AvatarURL string `json:"avatar_url"`
}

// Ingredient is one outlet's stock of an ingredient definition. DefinitionID
// is shared by every outlet's instance of the same ingredient.
type Ingredient struct {
	ID            string   `json:"id"`
	DefinitionID  string   `json:"definition_id"`
	OutletID      string   `json:"outlet_id"`
	Name          string   `json:"name"`
	Unit          string   `json:"unit"`
	Price         float64  `json:"price"`
	PreviousPrice *float64 `json:"previous_price,omitempty"`
	StockLevel    float64  `json:"stock_level"`
	ReorderPoint  float64  `json:"reorder_point"`
}

func (i Ingredient) IsLowStock() bool {
	return i.StockLevel <= i.ReorderPoint
}

type IngredientView struct {
	Ingredient
	WasteCostLast30Days float64 `json:"waste_cost_last_30_days"`
}

// RecipeComponent references an ingredient definition, not an outlet instance.
type RecipeComponent struct {
	IngredientID string  `json:"ingredient_id" validate:"required"`
	Quantity     float64 `json:"quantity" validate:"gt=0"`
}

type MenuItem struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	ImageURL     string            `json:"image_url"`
	SellingPrice float64           `json:"selling_price"`
	TargetMargin float64           `json:"target_margin"`
	Recipe       []RecipeComponent `json:"recipe"`
}

type MarginStatus string

const (
	MarginSafe    MarginStatus = "safe"
	MarginWarning MarginStatus = "warning"
	MarginDanger  MarginStatus = "danger"
)

type MenuItemView struct {
	MenuItem
	COGS         float64      `json:"cogs"`
	ActualMargin float64      `json:"actual_margin"`
	MarginStatus MarginStatus `json:"margin_status"`
}

type ResolvedComponent struct {
	Ingredient
	Quantity float64 `json:"quantity"`
}

type MenuItemDetail struct {
	MenuItemView
	Ingredients []ResolvedComponent `json:"ingredients"`
}

type SalesRecord struct {
	Date         string  `json:"date"`
	MenuItemID   string  `json:"menu_item_id"`
	QuantitySold int     `json:"quantity_sold"`
	TotalRevenue float64 `json:"total_revenue"`
	OutletID     string  `json:"outlet_id"`
}

// Day parses Date as midnight UTC. Unparseable dates map to the zero time.
func (r SalesRecord) Day() time.Time {
	day, err := time.Parse(DateLayout, r.Date)
	if err != nil {
		return time.Time{}
	}
	return day
}

type CostInterval string

const (
	IntervalDaily   CostInterval = "daily"
	IntervalMonthly CostInterval = "monthly"
)

type OperationalCost struct {
	ID       string       `json:"id"`
	OutletID string       `json:"outlet_id"`
	Name     string       `json:"name"`
	Amount   float64      `json:"amount"`
	Interval CostInterval `json:"interval"`
}

// DailyAmount normalizes monthly costs to a 30 day month.
func (c OperationalCost) DailyAmount() float64 {
	if c.Interval == IntervalMonthly {
		return c.Amount / 30
	}
	return c.Amount
}

type WasteReason string

const (
	WasteExpired      WasteReason = "Kedaluwarsa"
	WasteDamaged      WasteReason = "Rusak"
	WasteKitchenError WasteReason = "Kesalahan Dapur"
	WasteOther        WasteReason = "Lainnya"
)

var WasteReasons = []WasteReason{WasteExpired, WasteDamaged, WasteKitchenError, WasteOther}

func (r WasteReason) Valid() bool {
	for _, reason := range WasteReasons {
		if r == reason {
			return true
		}
	}
	return false
}

type WasteRecord struct {
	ID           string      `json:"id"`
	OutletID     string      `json:"outlet_id"`
	Date         time.Time   `json:"date"`
	IngredientID string      `json:"ingredient_id"`
	Quantity     float64     `json:"quantity"`
	Reason       WasteReason `json:"reason"`
	Cost         float64     `json:"cost"`
}

type Supplier struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	ContactPerson string `json:"contact_person"`
	Phone         string `json:"phone"`
}

// SupplierPrice links a supplier to an ingredient definition.
type SupplierPrice struct {
	ID           string  `json:"id"`
	SupplierID   string  `json:"supplier_id"`
	IngredientID string  `json:"ingredient_id"`
	Price        float64 `json:"price"`
}

type OrderSupplier struct {
	ID   string `json:"id" validate:"required"`
	Name string `json:"name" validate:"required"`
}

type PurchaseOrderItem struct {
	IngredientID    string  `json:"ingredient_id" validate:"required"`
	IngredientName  string  `json:"ingredient_name"`
	QuantityToOrder float64 `json:"quantity_to_order" validate:"gt=0"`
	Unit            string  `json:"unit"`
	Price           float64 `json:"price" validate:"gte=0"`
}

type PendingOrder struct {
	ID          string              `json:"id"`
	PONumber    string              `json:"po_number"`
	Supplier    OrderSupplier       `json:"supplier"`
	OrderDate   time.Time           `json:"order_date"`
	Items       []PurchaseOrderItem `json:"items"`
	TotalAmount float64             `json:"total_amount"`
	OutletID    string              `json:"outlet_id"`
}

type ActiveCampaign struct {
	MarketingCampaignSuggestion
	StartDate time.Time `json:"start_date"`
}

type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

func OK() Result {
	return Result{Success: true}
}

func Fail(message string) Result {
	return Result{Success: false, Message: message}
}

type ProfitLoss struct {
	PeriodDays           int     `json:"period_days"`
	TotalRevenue         float64 `json:"total_revenue"`
	TotalCOGS            float64 `json:"total_cogs"`
	GrossProfit          float64 `json:"gross_profit"`
	TotalOperationalCost float64 `json:"total_operational_cost"`
	TotalWasteCost       float64 `json:"total_waste_cost"`
	NetProfit            float64 `json:"net_profit"`
	GrossProfitMargin    float64 `json:"gross_profit_margin"`
	NetProfitMargin      float64 `json:"net_profit_margin"`
}

type DashboardStats struct {
	TotalRevenue   float64 `json:"total_revenue"`
	NetProfit      float64 `json:"net_profit"`
	LowStockCount  int     `json:"low_stock_count"`
	TotalItemsSold int     `json:"total_items_sold"`
	AverageMargin  float64 `json:"average_margin"`
}

type ChartData struct {
	Labels []string  `json:"labels"`
	Data   []float64 `json:"data"`
}

type InventoryOverview struct {
	TotalItems               int     `json:"total_items"`
	LowStockCount            int     `json:"low_stock_count"`
	TotalStockValue          float64 `json:"total_stock_value"`
	TotalWasteCostLast30Days float64 `json:"total_waste_cost_last_30_days"`
}

type MarginAlert struct {
	IngredientID         string   `json:"ingredient_id"`
	IngredientName       string   `json:"ingredient_name"`
	PriceIncreasePercent int      `json:"price_increase_percent"`
	AffectedMenus        []string `json:"affected_menus"`
}

type PerformanceItem struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	ImageURL string  `json:"image_url"`
	Metric   float64 `json:"metric"`
}

type DetailedPerformance struct {
	BestSellersByUnit    []PerformanceItem `json:"best_sellers_by_unit"`
	HighestRevenueItems  []PerformanceItem `json:"highest_revenue_items"`
	MostProfitableItems  []PerformanceItem `json:"most_profitable_items"`
	LeastProfitableItems []PerformanceItem `json:"least_profitable_items"`
}

type CampaignPerformance struct {
	DaysRunning      int     `json:"days_running"`
	PercentageChange float64 `json:"percentage_change"`
}

type NotificationType string

const (
	NotificationLowStock    NotificationType = "low_stock"
	NotificationMarginAlert NotificationType = "margin_alert"
)

type Notification struct {
	ID               string            `json:"id"`
	Type             NotificationType  `json:"type"`
	Message          string            `json:"message"`
	Timestamp        time.Time         `json:"timestamp"`
	IsRead           bool              `json:"is_read"`
	RelatedView      string            `json:"related_view,omitempty"`
	RelatedViewProps map[string]string `json:"related_view_props,omitempty"`
}

type Dashboard struct {
	OutletID            string               `json:"outlet_id"`
	RangeDays           int                  `json:"range_days"`
	Stats               DashboardStats       `json:"stats"`
	Chart               ChartData            `json:"chart"`
	Comparison          *ChartData           `json:"comparison,omitempty"`
	MarginAlerts        []MarginAlert        `json:"margin_alerts"`
	WasteSummary        ChartData            `json:"waste_summary"`
	CampaignPerformance *CampaignPerformance `json:"campaign_performance,omitempty"`
}

type OutletDigest struct {
	Outlet        Outlet        `json:"outlet"`
	LowStock      []Ingredient  `json:"low_stock"`
	MarginAlerts  []MarginAlert `json:"margin_alerts"`
	ProfitLoss    ProfitLoss    `json:"profit_loss"`
	GeneratedAt   time.Time     `json:"generated_at"`
	Notifications int           `json:"notifications"`
}

type OutletRequest struct {
	Name string `json:"name" validate:"required"`
}

func (r *OutletRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
}

type UserUpdateRequest struct {
	Name string `json:"name" validate:"required"`
	Role string `json:"role" validate:"required"`
}

type IngredientCreateRequest struct {
	Name         string  `json:"name" validate:"required"`
	Unit         string  `json:"unit" validate:"required"`
	Price        float64 `json:"price" validate:"gte=0"`
	StockLevel   float64 `json:"stock_level" validate:"gte=0"`
	ReorderPoint float64 `json:"reorder_point" validate:"gte=0"`
}

type BulkPriceUpdateRequest struct {
	Prices map[string]float64 `json:"prices" validate:"required,dive,gte=0"`
}

type PriceUpdateRequest struct {
	Price float64 `json:"price" validate:"gte=0"`
}

type StockUpdateRequest struct {
	StockLevel float64 `json:"stock_level" validate:"gte=0"`
}

type UnitUpdateRequest struct {
	Unit string `json:"unit" validate:"required"`
}

type MenuItemRequest struct {
	Name         string            `json:"name" validate:"required"`
	ImageURL     string            `json:"image_url"`
	SellingPrice float64           `json:"selling_price" validate:"gte=0"`
	TargetMargin float64           `json:"target_margin" validate:"gte=0,lte=100"`
	Recipe       []RecipeComponent `json:"recipe" validate:"dive"`
}

type OperationalCostRequest struct {
	Name     string       `json:"name" validate:"required"`
	Amount   float64      `json:"amount" validate:"gte=0"`
	Interval CostInterval `json:"interval" validate:"required,oneof=daily monthly"`
}

type WasteRecordRequest struct {
	IngredientID string      `json:"ingredient_id" validate:"required"`
	Quantity     float64     `json:"quantity" validate:"gt=0"`
	Reason       WasteReason `json:"reason" validate:"required"`
	Date         *time.Time  `json:"date,omitempty"`
}

type SupplierRequest struct {
	Name          string `json:"name" validate:"required"`
	ContactPerson string `json:"contact_person"`
	Phone         string `json:"phone"`
}

type SupplierPriceRequest struct {
	SupplierID   string  `json:"supplier_id" validate:"required"`
	IngredientID string  `json:"ingredient_id" validate:"required"`
	Price        float64 `json:"price" validate:"gte=0"`
}

type PendingOrderRequest struct {
	Supplier    OrderSupplier       `json:"supplier"`
	Items       []PurchaseOrderItem `json:"items" validate:"required,min=1,dive"`
	TotalAmount float64             `json:"total_amount" validate:"gte=0"`
}

type DailySalesRequest struct {
	Sales map[string]int `json:"sales" validate:"required,dive,gte=0"`
}

type OutletList struct {
	Outlets         []Outlet `json:"outlets"`
	CurrentOutletID string   `json:"current_outlet_id"`
}

type SelectOutletRequest struct {
	OutletID string `json:"outlet_id" validate:"required"`
}

type StockCheckResult struct {
	Warnings map[string]string `json:"warnings"`
}

type DailySalesResult struct {
	Ingredients []Ingredient      `json:"ingredients"`
	Warnings    map[string]string `json:"warnings"`
}

type CampaignStatus struct {
	Campaign    *ActiveCampaign      `json:"campaign"`
	Performance *CampaignPerformance `json:"performance,omitempty"`
}

type MarkReadRequest struct {
	IDs []string `json:"ids" validate:"required,min=1"`
}
