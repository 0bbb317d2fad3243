package http

import (
	"net/http"

	"github.com/Eldesouky97/home-craft/internal/services"

	"github.com/gin-gonic/gin"
)

func (h *Handler) CreateOrder(c *gin.Context) {
	var req services.CreateOrderInput
	if !h.bindJSON(c, &req) {
		return
	}

	order, err := h.orders.CreateOrder(c.Request.Context(), ActorFrom(c), req)
	if err != nil {
		h.resp.Fail(c, err)
		return
	}
	h.resp.OK(c, http.StatusCreated, order, "order.created")
}

func (h *Handler) GetOrder(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	order, err := h.orders.GetOrder(c.Request.Context(), ActorFrom(c), id)
	if err != nil {
		h.resp.Fail(c, err)
		return
	}
	h.resp.OK(c, http.StatusOK, order, "")
}

func (h *Handler) ListOrders(c *gin.Context) {
	var q services.ListQuery
	if !h.bindQuery(c, &q) {
		return
	}
	page, err := h.orders.ListOrders(c.Request.Context(), ActorFrom(c), q)
	if err != nil {
		h.resp.Fail(c, err)
		return
	}
	writePage(c, page)
}

func (h *Handler) ListMyOrders(c *gin.Context) {
	var q services.ListQuery
	if !h.bindQuery(c, &q) {
		return
	}
	page, err := h.orders.ListMyOrders(c.Request.Context(), ActorFrom(c), q)
	if err != nil {
		h.resp.Fail(c, err)
		return
	}
	writePage(c, page)
}

func (h *Handler) ListStoreOrders(c *gin.Context) {
	var q services.ListQuery
	if !h.bindQuery(c, &q) {
		return
	}
	page, err := h.orders.ListStoreOrders(c.Request.Context(), ActorFrom(c), q)
	if err != nil {
		h.resp.Fail(c, err)
		return
	}
	writePage(c, page)
}

func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req services.UpdateStatusInput
	if !h.bindJSON(c, &req) {
		return
	}

	order, err := h.orders.UpdateStatus(c.Request.Context(), ActorFrom(c), id, req)
	if err != nil {
		h.resp.Fail(c, err)
		return
	}
	h.resp.OK(c, http.StatusOK, order, "order.updated")
}

func (h *Handler) DeleteOrder(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.orders.DeleteOrder(c.Request.Context(), ActorFrom(c), id); err != nil {
		h.resp.Fail(c, err)
		return
	}
	h.resp.OK(c, http.StatusOK, nil, "order.deleted")
}

// OrderStats reports aggregates over the caller's stores.
func (h *Handler) OrderStats(c *gin.Context) {
	stats, err := h.orders.Stats(c.Request.Context(), ActorFrom(c))
	if err != nil {
		h.resp.Fail(c, err)
		return
	}
	h.resp.OK(c, http.StatusOK, stats, "")
}
