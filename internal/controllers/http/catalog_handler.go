package http

import (
	"net/http"

	"github.com/Eldesouky97/home-craft/internal/services"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListProducts(c *gin.Context) {
	var q services.ProductQuery
	if !h.bindQuery(c, &q) {
		return
	}
	page, err := h.catalog.ListProducts(c.Request.Context(), q)
	if err != nil {
		h.resp.Fail(c, err)
		return
	}
	writePage(c, page)
}

func (h *Handler) ListStoreProducts(c *gin.Context) {
	storeID, ok := h.pathUint(c, "storeId")
	if !ok {
		return
	}
	var q services.ProductQuery
	if !h.bindQuery(c, &q) {
		return
	}
	page, err := h.catalog.ListStoreProducts(c.Request.Context(), storeID, q)
	if err != nil {
		h.resp.Fail(c, err)
		return
	}
	writePage(c, page)
}

func (h *Handler) ListCategoryProducts(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var q services.ProductQuery
	if !h.bindQuery(c, &q) {
		return
	}
	page, err := h.catalog.ListCategoryProducts(c.Request.Context(), id, q)
	if err != nil {
		h.resp.Fail(c, err)
		return
	}
	writePage(c, page)
}

func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	p, err := h.catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		h.resp.Fail(c, err)
		return
	}
	h.resp.OK(c, http.StatusOK, p, "")
}

func (h *Handler) CreateProduct(c *gin.Context) {
	var req services.ProductInput
	if !h.bindJSON(c, &req) {
		return
	}
	p, err := h.catalog.CreateProduct(c.Request.Context(), ActorFrom(c), req)
	if err != nil {
		h.resp.Fail(c, err)
		return
	}
	h.resp.OK(c, http.StatusCreated, p, "product.created")
}

func (h *Handler) UpdateProduct(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req services.ProductUpdateInput
	if !h.bindJSON(c, &req) {
		return
	}
	p, err := h.catalog.UpdateProduct(c.Request.Context(), ActorFrom(c), id, req)
	if err != nil {
		h.resp.Fail(c, err)
		return
	}
	h.resp.OK(c, http.StatusOK, p, "")
}

func (h *Handler) DeleteProduct(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.catalog.DeleteProduct(c.Request.Context(), ActorFrom(c), id); err != nil {
		h.resp.Fail(c, err)
		return
	}
	h.resp.OK(c, http.StatusOK, nil, "product.deleted")
}

// ListCategories lists every category, or only top-level ones with ?roots=true.
func (h *Handler) ListCategories(c *gin.Context) {
	var q CategoryQuery
	if !h.bindQuery(c, &q) {
		return
	}
	list, err := h.catalog.ListCategories(c.Request.Context(), q.Roots)
	if err != nil {
		h.resp.Fail(c, err)
		return
	}
	h.resp.OK(c, http.StatusOK, list, "")
}

func (h *Handler) GetCategory(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	cat, err := h.catalog.GetCategory(c.Request.Context(), id)
	if err != nil {
		h.resp.Fail(c, err)
		return
	}
	h.resp.OK(c, http.StatusOK, cat, "")
}

func (h *Handler) CreateCategory(c *gin.Context) {
	var req services.CategoryInput
	if !h.bindJSON(c, &req) {
		return
	}
	cat, err := h.catalog.CreateCategory(c.Request.Context(), ActorFrom(c), req)
	if err != nil {
		h.resp.Fail(c, err)
		return
	}
	h.resp.OK(c, http.StatusCreated, cat, "category.created")
}

func (h *Handler) UpdateCategory(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req services.CategoryInput
	if !h.bindJSON(c, &req) {
		return
	}
	cat, err := h.catalog.UpdateCategory(c.Request.Context(), ActorFrom(c), id, req)
	if err != nil {
		h.resp.Fail(c, err)
		return
	}
	h.resp.OK(c, http.StatusOK, cat, "")
}

func (h *Handler) DeleteCategory(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.catalog.DeleteCategory(c.Request.Context(), ActorFrom(c), id); err != nil {
		h.resp.Fail(c, err)
		return
	}
	h.resp.OK(c, http.StatusOK, nil, "category.deleted")
}
