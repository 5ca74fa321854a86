package domain

type DailyForecast struct {
	Day            string  `json:"day" validate:"required"`
	PredictedSales float64 `json:"predictedSales"`
}

type Forecast struct {
	Summary        string          `json:"summary"`
	DailyForecasts []DailyForecast `json:"dailyForecasts" validate:"required,min=1,dive"`
}

type NamedForecast struct {
	ItemName string   `json:"item_name"`
	Forecast Forecast `json:"forecast"`
}

type GeneratedRecipeLine struct {
	IngredientName string  `json:"ingredientName" validate:"required"`
	Quantity       float64 `json:"quantity" validate:"gt=0"`
	Unit           string  `json:"unit"`
}

type GeneratedMenuItem struct {
	Name         string                `json:"name" validate:"required"`
	Description  string                `json:"description"`
	SellingPrice float64               `json:"sellingPrice" validate:"gt=0"`
	Recipe       []GeneratedRecipeLine `json:"recipe" validate:"dive"`
}

type ReorderLine struct {
	IngredientName  string  `json:"ingredientName" validate:"required"`
	QuantityToOrder float64 `json:"quantityToOrder" validate:"gt=0"`
	Unit            string  `json:"unit"`
	EstimatedCost   float64 `json:"estimatedCost"`
}

type RecommendedSupplier struct {
	SupplierID    string `json:"supplierId"`
	SupplierName  string `json:"supplierName"`
	Justification string `json:"justification"`
}

type ReorderSuggestion struct {
	Summary             string               `json:"summary"`
	PurchaseList        []ReorderLine        `json:"purchaseList" validate:"dive"`
	RecommendedSupplier *RecommendedSupplier `json:"recommendedSupplier,omitempty"`
}

type DynamicPriceSuggestion struct {
	NewSellingPrice float64 `json:"newSellingPrice" validate:"gt=0"`
	Justification   string  `json:"justification"`
	ProjectedMargin float64 `json:"projectedMargin"`
}

type ItemPairing struct {
	Item1Name     string `json:"item1Name"`
	Item2Name     string `json:"item2Name"`
	Item1ImageURL string `json:"item1ImageUrl"`
	Item2ImageURL string `json:"item2ImageUrl"`
	Analysis      string `json:"analysis"`
}

type BasketAnalysis struct {
	Summary  string        `json:"summary"`
	Pairings []ItemPairing `json:"pairings"`
}

type InvolvedItems struct {
	Item1Name string `json:"item1Name"`
	Item2Name string `json:"item2Name"`
}

type MarketingCampaignSuggestion struct {
	CampaignName  string        `json:"campaignName" validate:"required"`
	MarketingCopy string        `json:"marketingCopy"`
	PromoMechanic string        `json:"promoMechanic"`
	Justification string        `json:"justification"`
	InvolvedItems InvolvedItems `json:"involvedItems"`
}

type MenuEngineeringCategory string

const (
	CategoryStar         MenuEngineeringCategory = "Star"
	CategoryCashCow      MenuEngineeringCategory = "Cash Cow"
	CategoryQuestionMark MenuEngineeringCategory = "Question Mark"
	CategoryDog          MenuEngineeringCategory = "Dog"
)

type MenuEngineeringItem struct {
	ID       string                  `json:"id"`
	Name     string                  `json:"name" validate:"required"`
	ImageURL string                  `json:"imageUrl"`
	Category MenuEngineeringCategory `json:"category"`
}

type MenuEngineeringAnalysis struct {
	Summary        string                `json:"summary"`
	Recommendation string                `json:"recommendation"`
	Items          []MenuEngineeringItem `json:"items" validate:"dive"`
}

type WastePattern struct {
	PatternDescription   string  `json:"patternDescription"`
	Recommendation       string  `json:"recommendation"`
	ImplicatedIngredient string  `json:"implicatedIngredient"`
	EstimatedCostSaved   float64 `json:"estimatedCostSaved"`
}

type WastePreventionAdvice struct {
	Summary  string         `json:"summary"`
	Patterns []WastePattern `json:"patterns"`
}

type GroundingSource struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

type CompetitorAnalysis struct {
	AnalysisText string            `json:"analysisText"`
	Sources      []GroundingSource `json:"sources"`
}

type ChatMessage struct {
	Role string `json:"role" validate:"required,oneof=user model"`
	Text string `json:"text" validate:"required"`
}

type ChatRequest struct {
	History []ChatMessage `json:"history" validate:"dive"`
	Message string        `json:"message" validate:"required"`
}

type MenuIdeaRequest struct {
	Idea string `json:"idea" validate:"required"`
}

type CompetitorRequest struct {
	Location string `json:"location" validate:"required"`
}

type ReorderConfirmRequest struct {
	Suggestion ReorderSuggestion `json:"suggestion"`
}

type PriceSuggestionRequest struct {
	Suggestion DynamicPriceSuggestion `json:"suggestion"`
}

type AdoptMenuItemRequest struct {
	Item         GeneratedMenuItem `json:"item"`
	ImageURL     string            `json:"image_url"`
	TargetMargin float64           `json:"target_margin" validate:"gte=0,lte=100"`
}

type AdvisoryText struct {
	Text string `json:"text"`
}
