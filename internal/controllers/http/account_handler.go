package http

import (
	"net/http"

	"github.com/Eldesouky97/home-craft/internal/services"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Register(c *gin.Context) {
	var req services.RegisterInput
	if !h.bindJSON(c, &req) {
		return
	}
	user, token, err := h.auth.Register(c.Request.Context(), req)
	if err != nil {
		h.resp.Fail(c, err)
		return
	}
	h.resp.OK(c, http.StatusCreated, AuthResponse{Token: token, User: user}, "auth.registered")
}

func (h *Handler) Login(c *gin.Context) {
	var req services.LoginInput
	if !h.bindJSON(c, &req) {
		return
	}
	user, token, err := h.auth.Login(c.Request.Context(), req)
	if err != nil {
		h.resp.Fail(c, err)
		return
	}
	h.resp.OK(c, http.StatusOK, AuthResponse{Token: token, User: user}, "auth.logged_in")
}

func (h *Handler) Me(c *gin.Context) {
	user, err := h.auth.Me(c.Request.Context(), ActorFrom(c))
	if err != nil {
		h.resp.Fail(c, err)
		return
	}
	h.resp.OK(c, http.StatusOK, user, "")
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	var req services.ProfileInput
	if !h.bindJSON(c, &req) {
		return
	}
	user, err := h.auth.UpdateProfile(c.Request.Context(), ActorFrom(c), req)
	if err != nil {
		h.resp.Fail(c, err)
		return
	}
	h.resp.OK(c, http.StatusOK, user, "auth.profile_updated")
}

func (h *Handler) ChangePassword(c *gin.Context) {
	var req services.ChangePasswordInput
	if !h.bindJSON(c, &req) {
		return
	}
	if err := h.auth.ChangePassword(c.Request.Context(), ActorFrom(c), req); err != nil {
		h.resp.Fail(c, err)
		return
	}
	h.resp.OK(c, http.StatusOK, nil, "auth.password_changed")
}

func (h *Handler) ListStores(c *gin.Context) {
	var q services.ListQuery
	if !h.bindQuery(c, &q) {
		return
	}
	page, err := h.stores.ListStores(c.Request.Context(), q)
	if err != nil {
		h.resp.Fail(c, err)
		return
	}
	writePage(c, page)
}

func (h *Handler) FeaturedStores(c *gin.Context) {
	var q FeaturedQuery
	if !h.bindQuery(c, &q) {
		return
	}
	list, err := h.stores.FeaturedStores(c.Request.Context(), q.Limit)
	if err != nil {
		h.resp.Fail(c, err)
		return
	}
	h.resp.OK(c, http.StatusOK, list, "")
}

func (h *Handler) ListMyStores(c *gin.Context) {
	list, err := h.stores.ListMyStores(c.Request.Context(), ActorFrom(c))
	if err != nil {
		h.resp.Fail(c, err)
		return
	}
	h.resp.OK(c, http.StatusOK, list, "")
}

func (h *Handler) GetStore(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	store, err := h.stores.GetStore(c.Request.Context(), id)
	if err != nil {
		h.resp.Fail(c, err)
		return
	}
	h.resp.OK(c, http.StatusOK, store, "")
}

func (h *Handler) CreateStore(c *gin.Context) {
	var req services.StoreInput
	if !h.bindJSON(c, &req) {
		return
	}
	store, err := h.stores.CreateStore(c.Request.Context(), ActorFrom(c), req)
	if err != nil {
		h.resp.Fail(c, err)
		return
	}
	h.resp.OK(c, http.StatusCreated, store, "store.created")
}

func (h *Handler) UpdateStore(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req services.StoreUpdateInput
	if !h.bindJSON(c, &req) {
		return
	}
	store, err := h.stores.UpdateStore(c.Request.Context(), ActorFrom(c), id, req)
	if err != nil {
		h.resp.Fail(c, err)
		return
	}
	h.resp.OK(c, http.StatusOK, store, "")
}

func (h *Handler) DeleteStore(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.stores.DeleteStore(c.Request.Context(), ActorFrom(c), id); err != nil {
		h.resp.Fail(c, err)
		return
	}
	h.resp.OK(c, http.StatusOK, nil, "store.deleted")
}

// UploadImage accepts a single multipart "file" field.
func (h *Handler) UploadImage(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		h.resp.FailKey(c, http.StatusBadRequest, "upload.missing_file")
		return
	}
	f, err := fh.Open()
	if err != nil {
		h.resp.Fail(c, err)
		return
	}
	defer f.Close()

	url, err := h.uploads.UploadImage(ActorFrom(c), f, fh.Filename, fh.Size)
	if err != nil {
		h.resp.Fail(c, err)
		return
	}
	h.resp.OK(c, http.StatusCreated, UploadResponse{URL: url}, "upload.stored")
}

func (h *Handler) DeleteImage(c *gin.Context) {
	if err := h.uploads.DeleteImage(ActorFrom(c), c.Param("name")); err != nil {
		h.resp.Fail(c, err)
		return
	}
	h.resp.OK(c, http.StatusOK, nil, "upload.deleted")
}

func (h *Handler) GeneralStats(c *gin.Context) {
	stats, err := h.stats.General(c.Request.Context())
	if err != nil {
		h.resp.Fail(c, err)
		return
	}
	h.resp.OK(c, http.StatusOK, stats, "")
}

func (h *Handler) DashboardStats(c *gin.Context) {
	stats, err := h.stats.Dashboard(c.Request.Context(), ActorFrom(c))
	if err != nil {
		h.resp.Fail(c, err)
		return
	}
	h.resp.OK(c, http.StatusOK, stats, "")
}
