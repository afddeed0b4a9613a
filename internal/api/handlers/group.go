package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/stackmill/accessd/internal/config"
	"github.com/stackmill/accessd/internal/service"
)

// GroupHandler exposes the group CRUD endpoints.
type GroupHandler struct {
	svc *service.GroupService
	web config.WebConfig
}

// NewGroupHandler creates a new GroupHandler.
func NewGroupHandler(svc *service.GroupService, web config.WebConfig) *GroupHandler {
	return &GroupHandler{svc: svc, web: web}
}

type createGroupRequest struct {
	PID    uint   `json:"pid"`
	Name   string `json:"name" binding:"required"`
	Code   string `json:"code" binding:"required"`
	Intro  string `json:"intro"`
	Sort   int    `json:"sort"`
	RoleID uint   `json:"role_id"`
}

type editGroupRequest struct {
	PID    uint   `json:"pid"`
	Name   string `json:"name"`
	Intro  string `json:"intro"`
	Sort   int    `json:"sort"`
	RoleID uint   `json:"role_id"`
}

type bindGroupRoleRequest struct {
	GroupID uint `json:"group_id" binding:"required"`
	RoleID  uint `json:"role_id" binding:"required"`
}

// List godoc
// @Summary List groups (paginated)
// @Tags group
// @Security BearerAuth
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} Response
// @Router /group [get]
func (h *GroupHandler) List(c *gin.Context) {
	page, pageSize := h.pageParams(c)

	groups, total, err := h.svc.List(c.Request.Context(), page, pageSize)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	okData(c, PageData{
		Result:   groups,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

// Create godoc
// @Summary Create a group
// @Tags group
// @Security BearerAuth
// @Accept json
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Router /group [post]
func (h *GroupHandler) Create(c *gin.Context) {
	actor, found := currentActor(c)
	if !found {
		fail(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req createGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	_, err := h.svc.Create(c.Request.Context(), service.CreateGroupRequest{
		PID:    req.PID,
		Name:   req.Name,
		Code:   req.Code,
		Intro:  req.Intro,
		Sort:   req.Sort,
		RoleID: req.RoleID,
	}, actor)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	ok(c)
}

// Edit godoc
// @Summary Edit a group (partial update)
// @Tags group
// @Security BearerAuth
// @Accept json
// @Success 200 {object} Response
// @Failure 404 {object} Response
// @Router /group/{id} [put]
func (h *GroupHandler) Edit(c *gin.Context) {
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

	var req editGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	err = h.svc.Edit(c.Request.Context(), id, service.EditGroupRequest{
		PID:    req.PID,
		Name:   req.Name,
		Intro:  req.Intro,
		Sort:   req.Sort,
		RoleID: req.RoleID,
	}, actor)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	ok(c)
}

// Disable godoc
// @Summary Disable a group
// @Tags group
// @Security BearerAuth
// @Success 200 {object} Response
// @Router /group/{id}/disable [put]
func (h *GroupHandler) Disable(c *gin.Context) {
	h.transition(c, h.svc.Disable)
}

// Enable godoc
// @Summary Enable a group
// @Tags group
// @Security BearerAuth
// @Success 200 {object} Response
// @Router /group/{id}/enable [put]
func (h *GroupHandler) Enable(c *gin.Context) {
	h.transition(c, h.svc.Enable)
}

// Delete godoc
// @Summary Soft-delete a group
// @Tags group
// @Security BearerAuth
// @Success 200 {object} Response
// @Router /group/{id} [delete]
func (h *GroupHandler) Delete(c *gin.Context) {
	h.transition(c, h.svc.Delete)
}

// BindRole godoc
// @Summary Bind a group to a role
// @Tags group
// @Security BearerAuth
// @Accept json
// @Success 200 {object} Response
// @Router /group_role [post]
func (h *GroupHandler) BindRole(c *gin.Context) {
	actor, found := currentActor(c)
	if !found {
		fail(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req bindGroupRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.svc.BindRole(c.Request.Context(), req.GroupID, req.RoleID, actor); err != nil {
		writeServiceError(c, err)
		return
	}

	ok(c)
}

// transition is the shared shape of Disable/Enable/Delete: resolve the
// actor, parse the id, run the state transition, answer {code,msg}.
func (h *GroupHandler) transition(c *gin.Context, op func(ctx context.Context, id uint, actor service.Actor) error) {
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

func (h *GroupHandler) pageParams(c *gin.Context) (int, int) {
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

func parseID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
