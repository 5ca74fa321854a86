package recommendation

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"profitlens/internal/cache"
	"profitlens/internal/domain"
)

// Engine formats business data into prompts and decodes the model replies
// into suggestion shapes. It never changes state; callers confirm suggestions
// through the store.
type Engine struct {
	client   Client
	cache    cache.AdvisoryCache
	cacheTTL time.Duration
	validate *validator.Validate
	log      *zap.Logger
	now      func() time.Time
}

type Options struct {
	CacheTTL time.Duration
	Logger   *zap.Logger
	Now      func() time.Time
}

// NewEngine builds an engine. A nil client yields ErrNotConfigured from every
// call.
func NewEngine(client Client, cacheStore cache.AdvisoryCache, opts Options) *Engine {
	if cacheStore == nil {
		cacheStore = cache.NoopAdvisoryCache{}
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 10 * time.Minute
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Engine{
		client:   client,
		cache:    cacheStore,
		cacheTTL: opts.CacheTTL,
		validate: validator.New(),
		log:      opts.Logger,
		now:      opts.Now,
	}
}

func (e *Engine) Enabled() bool {
	return e != nil && e.client != nil
}

// generate serves req from the cache or the client. check runs on every
// reply, cached or fresh, and a fresh reply is cached only when it passes.
func (e *Engine) generate(ctx context.Context, kind string, req Request, check func(Response) error) (Response, error) {
	if !e.Enabled() {
		return Response{}, ErrNotConfigured
	}

	key := buildCacheKey(e.client.Model(), kind, req)
	if cached, ok, err := e.cache.Get(ctx, key); err == nil && ok {
		var resp Response
		if err := json.Unmarshal([]byte(cached), &resp); err == nil && (check == nil || check(resp) == nil) {
			return resp, nil
		}
	} else if err != nil {
		e.log.Warn("advisory cache read failed", zap.String("kind", kind), zap.Error(err))
	}

	startedAt := time.Now()
	resp, err := e.client.Generate(ctx, req)
	if err != nil {
		e.log.Warn("advisory call failed", zap.String("kind", kind), zap.Error(err))
		return Response{}, err
	}
	e.log.Info("advisory call completed", zap.String("kind", kind), zap.Duration("duration", time.Since(startedAt)))

	if check != nil {
		if err := check(resp); err != nil {
			e.log.Warn("advisory reply rejected", zap.String("kind", kind), zap.Error(err))
			return Response{}, err
		}
	}
	if payload, err := json.Marshal(resp); err == nil {
		if err := e.cache.Set(ctx, key, string(payload), e.cacheTTL); err != nil {
			e.log.Warn("advisory cache write failed", zap.String("kind", kind), zap.Error(err))
		}
	}
	return resp, nil
}

// generateJSON requests JSON output and decodes it into T. Replies that do not
// decode or fail validation are ErrMalformedResponse.
func generateJSON[T any](ctx context.Context, e *Engine, kind string, prompt string) (T, error) {
	var out T
	_, err := e.generate(ctx, kind, Request{Contents: userPrompt(prompt), JSON: true}, func(resp Response) error {
		var decoded T
		if err := json.Unmarshal([]byte(extractJSON(resp.Text)), &decoded); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrMalformedResponse, kind, err)
		}
		if err := e.validate.Struct(decoded); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrMalformedResponse, kind, err)
		}
		out = decoded
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

func (e *Engine) generateText(ctx context.Context, kind string, prompt string) (string, error) {
	resp, err := e.generate(ctx, kind, Request{Contents: userPrompt(prompt)}, nil)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Text), nil
}

// MarginFix returns markdown advice for an item below its target margin.
func (e *Engine) MarginFix(ctx context.Context, item domain.MenuItemView) (string, error) {
	return e.generateText(ctx, "margin_fix", marginFixPrompt(item))
}

func (e *Engine) SalesForecast(ctx context.Context, item domain.MenuItemView, sales []domain.SalesRecord) (domain.Forecast, error) {
	return generateJSON[domain.Forecast](ctx, e, "sales_forecast", forecastPrompt(item, sales, e.now()))
}

func (e *Engine) CreateMenuItem(ctx context.Context, idea string, ingredients []domain.Ingredient) (domain.GeneratedMenuItem, error) {
	return generateJSON[domain.GeneratedMenuItem](ctx, e, "menu_item", menuItemPrompt(idea, ingredients))
}

func (e *Engine) ReorderSuggestion(ctx context.Context, in ReorderInput) (domain.ReorderSuggestion, error) {
	return generateJSON[domain.ReorderSuggestion](ctx, e, "reorder", reorderPrompt(in, e.now()))
}

func (e *Engine) DynamicPrice(ctx context.Context, item domain.MenuItemView, sales []domain.SalesRecord, items []domain.MenuItemView) (domain.DynamicPriceSuggestion, error) {
	return generateJSON[domain.DynamicPriceSuggestion](ctx, e, "dynamic_price", dynamicPricePrompt(item, sales, items, e.now()))
}

func (e *Engine) BasketAnalysis(ctx context.Context, items []domain.MenuItemView, sales []domain.SalesRecord) (domain.BasketAnalysis, error) {
	return generateJSON[domain.BasketAnalysis](ctx, e, "basket", basketPrompt(items, sales))
}

func (e *Engine) MarketingCampaign(ctx context.Context, items []domain.MenuItemView, sales []domain.SalesRecord) (domain.MarketingCampaignSuggestion, error) {
	return generateJSON[domain.MarketingCampaignSuggestion](ctx, e, "campaign", campaignPrompt(items, sales))
}

func (e *Engine) MenuEngineering(ctx context.Context, items []domain.MenuItemView, sales []domain.SalesRecord) (domain.MenuEngineeringAnalysis, error) {
	return generateJSON[domain.MenuEngineeringAnalysis](ctx, e, "menu_engineering", menuEngineeringPrompt(items, sales))
}

func (e *Engine) WastePrevention(ctx context.Context, waste []domain.WasteRecord, ingredients []domain.Ingredient) (domain.WastePreventionAdvice, error) {
	return generateJSON[domain.WastePreventionAdvice](ctx, e, "waste_prevention", wastePrompt(waste, ingredients, e.now()))
}

func (e *Engine) ProfitLossAnalysis(ctx context.Context, pl domain.ProfitLoss) (string, error) {
	return e.generateText(ctx, "profit_loss", profitLossPrompt(pl))
}

// CompetitorAnalysis uses web search grounding and returns the cited sources.
func (e *Engine) CompetitorAnalysis(ctx context.Context, location string, items []domain.MenuItemView) (domain.CompetitorAnalysis, error) {
	resp, err := e.generate(ctx, "competitor", Request{Contents: userPrompt(competitorPrompt(location, items)), Search: true}, nil)
	if err != nil {
		return domain.CompetitorAnalysis{}, err
	}
	sources := resp.Sources
	if sources == nil {
		sources = []domain.GroundingSource{}
	}
	return domain.CompetitorAnalysis{AnalysisText: strings.TrimSpace(resp.Text), Sources: sources}, nil
}

// Chat streams the assistant's reply. Chat replies are never cached.
func (e *Engine) Chat(ctx context.Context, in ChatInput, history []domain.ChatMessage, message string, onChunk func(text string) error) error {
	if !e.Enabled() {
		return ErrNotConfigured
	}

	contents := make([]Content, 0, len(history)+1)
	for _, m := range history {
		contents = append(contents, Content{Role: m.Role, Text: m.Text})
	}
	contents = append(contents, Content{Role: RoleUser, Text: message})

	err := e.client.Stream(ctx, Request{System: chatSystemPrompt(in, e.now()), Contents: contents}, onChunk)
	if err != nil {
		e.log.Warn("advisory chat failed", zap.Error(err))
	}
	return err
}

func buildCacheKey(model string, kind string, req Request) string {
	parts := []string{model, kind, req.System}
	for _, c := range req.Contents {
		parts = append(parts, c.Role+":"+c.Text)
	}
	parts = append(parts, fmt.Sprintf("json:%t", req.JSON), fmt.Sprintf("search:%t", req.Search))

	hash := sha1.Sum([]byte(strings.Join(parts, "|")))
	return kind + ":" + hex.EncodeToString(hash[:])
}
