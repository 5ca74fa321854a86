package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"profitlens/internal/domain"
)

func (a *API) handleListOutlets(c *gin.Context) {
	c.JSON(http.StatusOK, a.service.ListOutlets())
}

func (a *API) handleCreateOutlet(c *gin.Context) {
	var req domain.OutletRequest
	if err := decodeJSON(c, &req, false); err != nil {
		a.writeError(c, http.StatusBadRequest, err)
		return
	}
	outlet, err := a.service.CreateOutlet(c.Request.Context(), req)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"outlet": outlet})
}

func (a *API) handleSelectOutlet(c *gin.Context) {
	var req domain.SelectOutletRequest
	if err := decodeJSON(c, &req, false); err != nil {
		a.writeError(c, http.StatusBadRequest, err)
		return
	}
	list, err := a.service.SelectOutlet(c.Request.Context(), req)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (a *API) handleRenameOutlet(c *gin.Context) {
	var req domain.OutletRequest
	if err := decodeJSON(c, &req, false); err != nil {
		a.writeError(c, http.StatusBadRequest, err)
		return
	}
	outlet, err := a.service.RenameOutlet(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"outlet": outlet})
}

func (a *API) handleDeleteOutlet(c *gin.Context) {
	result, err := a.service.DeleteOutlet(c.Request.Context(), c.Param("id"))
	a.writeResult(c, result, err)
}

func (a *API) handleProfile(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user": a.service.Profile()})
}

func (a *API) handleUpdateProfile(c *gin.Context) {
	var req domain.UserUpdateRequest
	if err := decodeJSON(c, &req, false); err != nil {
		a.writeError(c, http.StatusBadRequest, err)
		return
	}
	user, err := a.service.UpdateProfile(c.Request.Context(), req)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (a *API) handleListIngredients(c *gin.Context) {
	ingredients, err := a.service.Ingredients(outletParam(c))
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ingredients": ingredients})
}

func (a *API) handleLowStock(c *gin.Context) {
	ingredients, err := a.service.LowStock(outletParam(c))
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ingredients": ingredients})
}

func (a *API) handleCreateIngredient(c *gin.Context) {
	var req domain.IngredientCreateRequest
	if err := decodeJSON(c, &req, false); err != nil {
		a.writeError(c, http.StatusBadRequest, err)
		return
	}
	ingredient, err := a.service.CreateIngredient(c.Request.Context(), req)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ingredient": ingredient})
}

func (a *API) handleUpdateIngredientPrices(c *gin.Context) {
	var req domain.BulkPriceUpdateRequest
	if err := decodeJSON(c, &req, false); err != nil {
		a.writeError(c, http.StatusBadRequest, err)
		return
	}
	ingredients, err := a.service.UpdateIngredientPrices(c.Request.Context(), req)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ingredients": ingredients})
}

func (a *API) handleUpdateIngredientPrice(c *gin.Context) {
	var req domain.PriceUpdateRequest
	if err := decodeJSON(c, &req, false); err != nil {
		a.writeError(c, http.StatusBadRequest, err)
		return
	}
	ingredient, err := a.service.UpdateIngredientPrice(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ingredient": ingredient})
}

func (a *API) handleUpdateIngredientStock(c *gin.Context) {
	var req domain.StockUpdateRequest
	if err := decodeJSON(c, &req, false); err != nil {
		a.writeError(c, http.StatusBadRequest, err)
		return
	}
	ingredient, err := a.service.UpdateIngredientStock(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ingredient": ingredient})
}

func (a *API) handleUpdateIngredientUnit(c *gin.Context) {
	var req domain.UnitUpdateRequest
	if err := decodeJSON(c, &req, false); err != nil {
		a.writeError(c, http.StatusBadRequest, err)
		return
	}
	ingredient, err := a.service.UpdateIngredientUnit(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ingredient": ingredient})
}

func (a *API) handleDeleteIngredient(c *gin.Context) {
	result, err := a.service.DeleteIngredient(c.Request.Context(), c.Param("id"))
	a.writeResult(c, result, err)
}

func (a *API) handleListMenuItems(c *gin.Context) {
	items, err := a.service.MenuItems(outletParam(c))
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"menu_items": items})
}

func (a *API) handleMenuItemDetail(c *gin.Context) {
	detail, err := a.service.MenuItemDetail(outletParam(c), c.Param("id"))
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"menu_item": detail})
}

func (a *API) handleCreateMenuItem(c *gin.Context) {
	var req domain.MenuItemRequest
	if err := decodeJSON(c, &req, false); err != nil {
		a.writeError(c, http.StatusBadRequest, err)
		return
	}
	item, err := a.service.CreateMenuItem(c.Request.Context(), req)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"menu_item": item})
}

func (a *API) handleUpdateMenuItem(c *gin.Context) {
	var req domain.MenuItemRequest
	if err := decodeJSON(c, &req, false); err != nil {
		a.writeError(c, http.StatusBadRequest, err)
		return
	}
	item, err := a.service.UpdateMenuItem(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"menu_item": item})
}

func (a *API) handleUpdateMenuItemPrice(c *gin.Context) {
	var req domain.PriceUpdateRequest
	if err := decodeJSON(c, &req, false); err != nil {
		a.writeError(c, http.StatusBadRequest, err)
		return
	}
	item, err := a.service.UpdateMenuItemPrice(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"menu_item": item})
}

func (a *API) handleDeleteMenuItem(c *gin.Context) {
	if err := a.service.DeleteMenuItem(c.Request.Context(), c.Param("id")); err != nil {
		a.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *API) handleListOperationalCosts(c *gin.Context) {
	costs, err := a.service.ListOperationalCosts(outletParam(c))
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"operational_costs": costs})
}

func (a *API) handleCreateOperationalCost(c *gin.Context) {
	var req domain.OperationalCostRequest
	if err := decodeJSON(c, &req, false); err != nil {
		a.writeError(c, http.StatusBadRequest, err)
		return
	}
	cost, err := a.service.CreateOperationalCost(c.Request.Context(), req)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"operational_cost": cost})
}

func (a *API) handleUpdateOperationalCost(c *gin.Context) {
	var req domain.OperationalCostRequest
	if err := decodeJSON(c, &req, false); err != nil {
		a.writeError(c, http.StatusBadRequest, err)
		return
	}
	cost, err := a.service.UpdateOperationalCost(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"operational_cost": cost})
}

func (a *API) handleDeleteOperationalCost(c *gin.Context) {
	if err := a.service.DeleteOperationalCost(c.Request.Context(), c.Param("id")); err != nil {
		a.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *API) handleListWaste(c *gin.Context) {
	waste, err := a.service.ListWaste(outletParam(c))
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"waste": waste})
}

func (a *API) handleRecordWaste(c *gin.Context) {
	var req domain.WasteRecordRequest
	if err := decodeJSON(c, &req, false); err != nil {
		a.writeError(c, http.StatusBadRequest, err)
		return
	}
	record, err := a.service.RecordWaste(c.Request.Context(), req)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"waste": record})
}

func (a *API) handleDeleteWaste(c *gin.Context) {
	if err := a.service.DeleteWaste(c.Request.Context(), c.Param("id")); err != nil {
		a.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *API) handleListSuppliers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"suppliers": a.service.ListSuppliers()})
}

func (a *API) handleCreateSupplier(c *gin.Context) {
	var req domain.SupplierRequest
	if err := decodeJSON(c, &req, false); err != nil {
		a.writeError(c, http.StatusBadRequest, err)
		return
	}
	supplier, err := a.service.CreateSupplier(c.Request.Context(), req)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"supplier": supplier})
}

func (a *API) handleUpdateSupplier(c *gin.Context) {
	var req domain.SupplierRequest
	if err := decodeJSON(c, &req, false); err != nil {
		a.writeError(c, http.StatusBadRequest, err)
		return
	}
	supplier, err := a.service.UpdateSupplier(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"supplier": supplier})
}

func (a *API) handleDeleteSupplier(c *gin.Context) {
	if err := a.service.DeleteSupplier(c.Request.Context(), c.Param("id")); err != nil {
		a.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *API) handleListSupplierPrices(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"supplier_prices": a.service.ListSupplierPrices(c.Query("supplier_id"))})
}

func (a *API) handleLinkSupplierPrice(c *gin.Context) {
	var req domain.SupplierPriceRequest
	if err := decodeJSON(c, &req, false); err != nil {
		a.writeError(c, http.StatusBadRequest, err)
		return
	}
	link, err := a.service.LinkSupplierPrice(c.Request.Context(), req)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"supplier_price": link})
}

func (a *API) handleUpdateSupplierPrice(c *gin.Context) {
	var req domain.PriceUpdateRequest
	if err := decodeJSON(c, &req, false); err != nil {
		a.writeError(c, http.StatusBadRequest, err)
		return
	}
	link, err := a.service.UpdateSupplierPrice(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"supplier_price": link})
}

func (a *API) handleUnlinkSupplierPrice(c *gin.Context) {
	if err := a.service.UnlinkSupplierPrice(c.Request.Context(), c.Param("id")); err != nil {
		a.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *API) handleListPurchaseOrders(c *gin.Context) {
	orders, err := a.service.ListPendingOrders(outletParam(c))
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"purchase_orders": orders})
}

func (a *API) handleCreatePurchaseOrder(c *gin.Context) {
	var req domain.PendingOrderRequest
	if err := decodeJSON(c, &req, false); err != nil {
		a.writeError(c, http.StatusBadRequest, err)
		return
	}
	order, err := a.service.CreatePendingOrder(c.Request.Context(), req)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"purchase_order": order})
}

func (a *API) handleReceivePurchaseOrder(c *gin.Context) {
	ingredients, err := a.service.ReceivePendingOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ingredients": ingredients})
}

func (a *API) handleCampaignStatus(c *gin.Context) {
	c.JSON(http.StatusOK, a.service.CampaignStatus())
}

func (a *API) handleLaunchCampaign(c *gin.Context) {
	var req domain.MarketingCampaignSuggestion
	if err := decodeJSON(c, &req, false); err != nil {
		a.writeError(c, http.StatusBadRequest, err)
		return
	}
	status, err := a.service.LaunchCampaign(c.Request.Context(), req)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, status)
}

func (a *API) handleEndCampaign(c *gin.Context) {
	if err := a.service.EndCampaign(c.Request.Context()); err != nil {
		a.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *API) handleSalesHistory(c *gin.Context) {
	sales, err := a.service.SalesHistory(outletParam(c), parsePositiveInt(c.Query("days"), 0, 365))
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sales": sales})
}

func (a *API) handleCheckStock(c *gin.Context) {
	var req domain.DailySalesRequest
	if err := decodeJSON(c, &req, false); err != nil {
		a.writeError(c, http.StatusBadRequest, err)
		return
	}
	result, err := a.service.CheckStock(req)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (a *API) handleDailySales(c *gin.Context) {
	var req domain.DailySalesRequest
	if err := decodeJSON(c, &req, false); err != nil {
		a.writeError(c, http.StatusBadRequest, err)
		return
	}
	result, err := a.service.ProcessDailySales(c.Request.Context(), req)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (a *API) handleDashboard(c *gin.Context) {
	compare := c.Query("compare") == "true" || c.Query("compare") == "1"
	dash, err := a.service.Dashboard(outletParam(c), parsePositiveInt(c.Query("range"), 0, 365), compare)
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, dash)
}

func (a *API) handleProfitLoss(c *gin.Context) {
	pl, err := a.service.ProfitLoss(outletParam(c), parsePositiveInt(c.Query("days"), 0, 365))
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, pl)
}

func (a *API) handleInventoryOverview(c *gin.Context) {
	overview, err := a.service.InventoryOverview(outletParam(c))
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}

func (a *API) handleMarginAlerts(c *gin.Context) {
	alerts, err := a.service.MarginAlerts(outletParam(c))
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"alerts": alerts})
}

func (a *API) handlePerformance(c *gin.Context) {
	perf, err := a.service.Performance(outletParam(c), parsePositiveInt(c.Query("days"), 0, 365))
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, perf)
}

func (a *API) handleNotifications(c *gin.Context) {
	notes, err := a.service.Notifications(outletParam(c))
	if err != nil {
		a.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notes})
}

func (a *API) handleMarkNotificationsRead(c *gin.Context) {
	var req domain.MarkReadRequest
	if err := decodeJSON(c, &req, false); err != nil {
		a.writeError(c, http.StatusBadRequest, err)
		return
	}
	if err := a.service.MarkNotificationsRead(req); err != nil {
		a.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (a *API) handleDigests(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"digests": a.service.Digests(parsePositiveInt(c.Query("days"), 0, 365))})
}
