package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"profitlens/internal/domain"
)

type reorderRequest struct {
	Forecasts []domain.NamedForecast `json:"forecasts"`
}

func (a *API) handleMarginFix(c *gin.Context) {
	advice, err := a.service.MarginFix(c.Request.Context(), outletParam(c), c.Param("id"))
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, advice)
}

func (a *API) handleSalesForecast(c *gin.Context) {
	forecast, err := a.service.SalesForecast(c.Request.Context(), outletParam(c), c.Param("id"))
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, forecast)
}

func (a *API) handleDynamicPrice(c *gin.Context) {
	suggestion, err := a.service.DynamicPrice(c.Request.Context(), outletParam(c), c.Param("id"))
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, suggestion)
}

func (a *API) handleApplyPrice(c *gin.Context) {
	var req domain.PriceSuggestionRequest
	if err := decodeJSON(c, &req, false); err != nil {
		a.writeError(c, http.StatusBadRequest, err)
		return
	}
	item, err := a.service.ApplyPriceSuggestion(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"menu_item": item})
}

func (a *API) handleGenerateMenuItem(c *gin.Context) {
	var req domain.MenuIdeaRequest
	if err := decodeJSON(c, &req, false); err != nil {
		a.writeError(c, http.StatusBadRequest, err)
		return
	}
	item, err := a.service.GenerateMenuItem(c.Request.Context(), outletParam(c), req)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (a *API) handleAdoptMenuItem(c *gin.Context) {
	var req domain.AdoptMenuItemRequest
	if err := decodeJSON(c, &req, false); err != nil {
		a.writeError(c, http.StatusBadRequest, err)
		return
	}
	item, err := a.service.AdoptGeneratedMenuItem(c.Request.Context(), req)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"menu_item": item})
}

func (a *API) handleReorderSuggestion(c *gin.Context) {
	var req reorderRequest
	if err := decodeJSON(c, &req, true); err != nil {
		a.writeError(c, http.StatusBadRequest, err)
		return
	}
	suggestion, err := a.service.ReorderSuggestion(c.Request.Context(), outletParam(c), req.Forecasts)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, suggestion)
}

func (a *API) handleConfirmReorder(c *gin.Context) {
	var req domain.ReorderConfirmRequest
	if err := decodeJSON(c, &req, false); err != nil {
		a.writeError(c, http.StatusBadRequest, err)
		return
	}
	order, err := a.service.ConfirmReorder(c.Request.Context(), req)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"purchase_order": order})
}

func (a *API) handleBasketAnalysis(c *gin.Context) {
	analysis, err := a.service.BasketAnalysis(c.Request.Context(), outletParam(c))
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, analysis)
}

func (a *API) handleMarketingCampaign(c *gin.Context) {
	suggestion, err := a.service.MarketingCampaign(c.Request.Context(), outletParam(c))
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, suggestion)
}

func (a *API) handleMenuEngineering(c *gin.Context) {
	analysis, err := a.service.MenuEngineering(c.Request.Context(), outletParam(c))
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, analysis)
}

func (a *API) handleWastePrevention(c *gin.Context) {
	advice, err := a.service.WastePrevention(c.Request.Context(), outletParam(c))
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, advice)
}

func (a *API) handleCompetitorAnalysis(c *gin.Context) {
	var req domain.CompetitorRequest
	if err := decodeJSON(c, &req, false); err != nil {
		a.writeError(c, http.StatusBadRequest, err)
		return
	}
	analysis, err := a.service.CompetitorAnalysis(c.Request.Context(), outletParam(c), req)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, analysis)
}

func (a *API) handleProfitLossAnalysis(c *gin.Context) {
	advice, err := a.service.ProfitLossAnalysis(c.Request.Context(), outletParam(c), parsePositiveInt(c.Query("days"), 0, 365))
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, advice)
}

// handleChat streams the reply as server-sent events. Failures before the
// first fragment are plain JSON errors; later ones end the stream with an
// error event.
func (a *API) handleChat(c *gin.Context) {
	var req domain.ChatRequest
	if err := decodeJSON(c, &req, false); err != nil {
		a.writeError(c, http.StatusBadRequest, err)
		return
	}

	started := false
	err := a.service.Chat(c.Request.Context(), outletParam(c), req, func(text string) error {
		if !started {
			c.Header("Content-Type", "text/event-stream")
			c.Header("Cache-Control", "no-cache")
			c.Header("Connection", "keep-alive")
			c.Status(http.StatusOK)
			started = true
		}
		return writeEvent(c, "", gin.H{"text": text})
	})

	switch {
	case err != nil && !started:
		a.fail(c, err)
	case err != nil:
		a.log.Warn("chat stream interrupted", zap.Error(err))
		_ = writeEvent(c, "error", gin.H{"error": err.Error()})
	default:
		if !started {
			c.Header("Content-Type", "text/event-stream")
			c.Status(http.StatusOK)
		}
		_ = writeEvent(c, "done", gin.H{})
	}
}

func writeEvent(c *gin.Context, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if event != "" {
		if _, err := fmt.Fprintf(c.Writer, "event: %s\n", event); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(c.Writer, "data: %s\n\n", data); err != nil {
		return err
	}
	c.Writer.Flush()
	return nil
}
