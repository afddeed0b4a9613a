package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/stackmill/accessd/internal/config"
	"github.com/stackmill/accessd/internal/service"
)

// PermissionHandler exposes the permission CRUD endpoints.
type PermissionHandler struct {
	svc *service.PermissionService
	web config.WebConfig
}

// NewPermissionHandler creates a new PermissionHandler.
func NewPermissionHandler(svc *service.PermissionService, web config.WebConfig) *PermissionHandler {
	return &PermissionHandler{svc: svc, web: web}
}

type createPermissionRequest struct {
	PID      uint   `json:"pid"`
	Name     string `json:"name" binding:"required"`
	Code     string `json:"code" binding:"required"`
	Intro    string `json:"intro"`
	Category string `json:"category"`
	Sort     int    `json:"sort"`
}

type editPermissionRequest struct {
	PID      uint   `json:"pid"`
	Name     string `json:"name"`
	Intro    string `json:"intro"`
	Category string `json:"category"`
	Sort     int    `json:"sort"`
}

// List godoc
// @Summary List permissions (paginated)
// @Tags permission
// @Security BearerAuth
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} Response
// @Router /permission [get]
func (h *PermissionHandler) List(c *gin.Context) {
	page, pageSize := h.pageParams(c)

	perms, total, err := h.svc.List(c.Request.Context(), page, pageSize)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	okData(c, PageData{
		Result:   perms,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

// Create godoc
// @Summary Create a permission
// @Tags permission
// @Security BearerAuth
// @Accept json
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Router /permission [post]
func (h *PermissionHandler) Create(c *gin.Context) {
	actor, found := currentActor(c)
	if !found {
		fail(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req createPermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	_, err := h.svc.Create(c.Request.Context(), service.CreatePermissionRequest{
		PID:      req.PID,
		Name:     req.Name,
		Code:     req.Code,
		Intro:    req.Intro,
		Category: req.Category,
		Sort:     req.Sort,
	}, actor)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	ok(c)
}

// Edit godoc
// @Summary Edit a permission (partial update)
// @Tags permission
// @Security BearerAuth
// @Accept json
// @Success 200 {object} Response
// @Failure 404 {object} Response
// @Router /permission/{id} [put]
func (h *PermissionHandler) Edit(c *gin.Context) {
	actor, found := currentActor(c)
	if !found {
		fail(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := parseID(c)
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid id")
		return
	}

	var req editPermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	err = h.svc.Edit(c.Request.Context(), id, service.EditPermissionRequest{
		PID:      req.PID,
		Name:     req.Name,
		Intro:    req.Intro,
		Category: req.Category,
		Sort:     req.Sort,
	}, actor)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	ok(c)
}

// Disable godoc
// @Summary Disable a permission
// @Tags permission
// @Security BearerAuth
// @Success 200 {object} Response
// @Router /permission/{id}/disable [put]
func (h *PermissionHandler) Disable(c *gin.Context) {
	h.transition(c, h.svc.Disable)
}

// Enable godoc
// @Summary Enable a permission
// @Tags permission
// @Security BearerAuth
// @Success 200 {object} Response
// @Router /permission/{id}/enable [put]
func (h *PermissionHandler) Enable(c *gin.Context) {
	h.transition(c, h.svc.Enable)
}

// Delete godoc
// @Summary Soft-delete a permission
// @Tags permission
// @Security BearerAuth
// @Success 200 {object} Response
// @Router /permission/{id} [delete]
func (h *PermissionHandler) Delete(c *gin.Context) {
	h.transition(c, h.svc.Delete)
}

func (h *PermissionHandler) transition(c *gin.Context, op func(ctx context.Context, id uint, actor service.Actor) error) {
	actor, found := currentActor(c)
	if !found {
		fail(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	id, err := parseID(c)
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid id")
		return
	}

	if err := op(c.Request.Context(), id, actor); err != nil {
		writeServiceError(c, err)
		return
	}

	ok(c)
}

func (h *PermissionHandler) pageParams(c *gin.Context) (int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(h.web.Page)))
	if err != nil || page <= 0 {
		page = h.web.Page
	}
	pageSize, err := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(h.web.PageSize)))
	if err != nil || pageSize <= 0 {
		pageSize = h.web.PageSize
	}
	return page, pageSize
}
