package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"profitlens/internal/domain"
	"profitlens/internal/recommendation"
	"profitlens/internal/service"
	"profitlens/internal/store"
)

const maxBodyBytes = 1 << 20

type API struct {
	service       *service.Service
	log           *zap.Logger
	allowedOrigin string
}

func New(svc *service.Service, logger *zap.Logger, allowedOrigin string) *API {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &API{service: svc, log: logger, allowedOrigin: allowedOrigin}
}

func (a *API) Handler() http.Handler {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(a.requestLogger())
	r.Use(cors.New(a.corsConfig()))
	r.Use(securityHeaders())

	r.GET("/healthz", a.handleHealth)

	v1 := r.Group("/api/v1")

	v1.GET("/outlets", a.handleListOutlets)
	v1.POST("/outlets", a.handleCreateOutlet)
	v1.POST("/outlets/select", a.handleSelectOutlet)
	v1.PATCH("/outlets/:id", a.handleRenameOutlet)
	v1.DELETE("/outlets/:id", a.handleDeleteOutlet)

	v1.GET("/profile", a.handleProfile)
	v1.PATCH("/profile", a.handleUpdateProfile)

	v1.GET("/ingredients", a.handleListIngredients)
	v1.GET("/ingredients/low-stock", a.handleLowStock)
	v1.POST("/ingredients", a.handleCreateIngredient)
	v1.PUT("/ingredients/prices", a.handleUpdateIngredientPrices)
	v1.PATCH("/ingredients/:id/price", a.handleUpdateIngredientPrice)
	v1.PATCH("/ingredients/:id/stock", a.handleUpdateIngredientStock)
	v1.PATCH("/ingredients/:id/unit", a.handleUpdateIngredientUnit)
	v1.DELETE("/ingredients/:id", a.handleDeleteIngredient)

	v1.GET("/menu-items", a.handleListMenuItems)
	v1.POST("/menu-items", a.handleCreateMenuItem)
	v1.GET("/menu-items/:id", a.handleMenuItemDetail)
	v1.PUT("/menu-items/:id", a.handleUpdateMenuItem)
	v1.PATCH("/menu-items/:id/price", a.handleUpdateMenuItemPrice)
	v1.DELETE("/menu-items/:id", a.handleDeleteMenuItem)

	v1.GET("/operational-costs", a.handleListOperationalCosts)
	v1.POST("/operational-costs", a.handleCreateOperationalCost)
	v1.PUT("/operational-costs/:id", a.handleUpdateOperationalCost)
	v1.DELETE("/operational-costs/:id", a.handleDeleteOperationalCost)

	v1.GET("/waste", a.handleListWaste)
	v1.POST("/waste", a.handleRecordWaste)
	v1.DELETE("/waste/:id", a.handleDeleteWaste)

	v1.GET("/suppliers", a.handleListSuppliers)
	v1.POST("/suppliers", a.handleCreateSupplier)
	v1.PUT("/suppliers/:id", a.handleUpdateSupplier)
	v1.DELETE("/suppliers/:id", a.handleDeleteSupplier)
	v1.GET("/supplier-prices", a.handleListSupplierPrices)
	v1.POST("/supplier-prices", a.handleLinkSupplierPrice)
	v1.PATCH("/supplier-prices/:id", a.handleUpdateSupplierPrice)
	v1.DELETE("/supplier-prices/:id", a.handleUnlinkSupplierPrice)

	v1.GET("/purchase-orders", a.handleListPurchaseOrders)
	v1.POST("/purchase-orders", a.handleCreatePurchaseOrder)
	v1.POST("/purchase-orders/:id/receive", a.handleReceivePurchaseOrder)

	v1.GET("/campaign", a.handleCampaignStatus)
	v1.POST("/campaign", a.handleLaunchCampaign)
	v1.DELETE("/campaign", a.handleEndCampaign)

	v1.GET("/sales", a.handleSalesHistory)
	v1.POST("/sales/check", a.handleCheckStock)
	v1.POST("/sales/daily", a.handleDailySales)

	v1.GET("/dashboard", a.handleDashboard)
	v1.GET("/profit-loss", a.handleProfitLoss)
	v1.GET("/inventory/overview", a.handleInventoryOverview)
	v1.GET("/margin-alerts", a.handleMarginAlerts)
	v1.GET("/performance", a.handlePerformance)
	v1.GET("/notifications", a.handleNotifications)
	v1.POST("/notifications/read", a.handleMarkNotificationsRead)
	v1.GET("/digests", a.handleDigests)

	ai := v1.Group("/advisory")
	ai.POST("/menu-items/:id/margin-fix", a.handleMarginFix)
	ai.POST("/menu-items/:id/forecast", a.handleSalesForecast)
	ai.POST("/menu-items/:id/dynamic-price", a.handleDynamicPrice)
	ai.POST("/menu-items/:id/apply-price", a.handleApplyPrice)
	ai.POST("/menu-ideas", a.handleGenerateMenuItem)
	ai.POST("/menu-ideas/adopt", a.handleAdoptMenuItem)
	ai.POST("/reorder", a.handleReorderSuggestion)
	ai.POST("/reorder/confirm", a.handleConfirmReorder)
	ai.POST("/basket", a.handleBasketAnalysis)
	ai.POST("/campaign", a.handleMarketingCampaign)
	ai.POST("/menu-engineering", a.handleMenuEngineering)
	ai.POST("/waste", a.handleWastePrevention)
	ai.POST("/competitors", a.handleCompetitorAnalysis)
	ai.POST("/profit-loss", a.handleProfitLossAnalysis)
	ai.POST("/chat", a.handleChat)

	return r
}

func (a *API) corsConfig() cors.Config {
	cfg := cors.DefaultConfig()
	if a.allowedOrigin == "" || a.allowedOrigin == "*" {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = strings.Split(a.allowedOrigin, ",")
	}
	cfg.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions}
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	cfg.MaxAge = 12 * time.Hour
	return cfg
}

func (a *API) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		startedAt := time.Now()
		c.Next()

		a.log.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(startedAt)),
			zap.String("client_ip", c.ClientIP()))
	}
}

func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
		}
		c.Next()
	}
}

func (a *API) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"advisory": a.service.AdvisoryEnabled(),
	})
}

// decodeJSON rejects unknown fields. An empty body decodes to the zero value
// when optional is set.
func decodeJSON(c *gin.Context, dest any, optional bool) error {
	decoder := json.NewDecoder(c.Request.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		if optional && errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	return nil
}

func parsePositiveInt(raw string, fallback int, max int) int {
	n := fallback
	trimmed := strings.TrimSpace(raw)
	if trimmed != "" {
		if parsed, err := strconv.Atoi(trimmed); err == nil && parsed > 0 {
			n = parsed
		}
	}
	if max > 0 && n > max {
		return max
	}
	return n
}

func outletParam(c *gin.Context) string {
	return strings.TrimSpace(c.Query("outlet_id"))
}

func statusFor(err error) int {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr), errors.Is(err, store.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, recommendation.ErrNotConfigured):
		return http.StatusServiceUnavailable
	case errors.Is(err, recommendation.ErrUnavailable), errors.Is(err, recommendation.ErrMalformedResponse):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (a *API) writeError(c *gin.Context, status int, err error) {
	// 5xx responses get a generic message so internals do not leak.
	msg := err.Error()
	if status >= http.StatusInternalServerError && status != http.StatusBadGateway && status != http.StatusServiceUnavailable {
		a.log.Error("request failed", zap.Int("status", status), zap.String("path", c.Request.URL.Path), zap.Error(err))
		msg = "internal server error"
	}

	body := gin.H{"error": msg}
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		body["fields"] = verr.Fields
	}
	c.AbortWithStatusJSON(status, body)
}

func (a *API) fail(c *gin.Context, err error) {
	a.writeError(c, statusFor(err), err)
}

// writeResult reports a refused guarded delete as a conflict.
func (a *API) writeResult(c *gin.Context, result domain.Result, err error) {
	if err != nil {
		a.fail(c, err)
		return
	}
	if !result.Success {
		c.JSON(http.StatusConflict, result)
		return
	}
	c.JSON(http.StatusOK, result)
}
