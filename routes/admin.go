package routes

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"campus-gms/middleware"
	"campus-gms/models"
	"campus-gms/types"
)

func (h *handler) adminCategories(c *gin.Context) {
	rows, err := h.Categories.All(c.Request.Context())
	if err != nil {
		serviceError(c, h.Logger, err)
		return
	}
	respond(c, http.StatusOK, "Categories retrieved successfully", rows)
}

func (h *handler) toggleCategory(c *gin.Context) {
	var req struct {
		IsActive *bool `json:"is_active" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	key := c.Param("key")
	if err := h.Categories.SetActive(c.Request.Context(), key, *req.IsActive); err != nil {
		serviceError(c, h.Logger, err)
		return
	}
	respond(c, http.StatusOK, "Category updated successfully", gin.H{"key": key, "is_active": *req.IsActive})
}

func (h *handler) adminUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	users, p, err := h.Auth.ListUsers(c.Query("role"), page, limit)
	if err != nil {
		serviceError(c, h.Logger, err)
		return
	}
	accounts := make([]*types.Account, 0, len(users))
	for i := range users {
		accounts = append(accounts, users[i].ToAccount())
	}
	respond(c, http.StatusOK, "Users retrieved successfully", gin.H{"users": accounts, "pagination": p})
}

func (h *handler) updateUser(c *gin.Context) {
	var req struct {
		Role      *models.UserRole `json:"role" binding:"omitempty,oneof=student responder admin"`
		Confirmed *bool            `json:"confirmed"`
	}
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.Auth.UpdateUser(c.Param("student_id"), req.Role, req.Confirmed)
	if err != nil {
		serviceError(c, h.Logger, err)
		return
	}
	h.Logger.Info("👤 Admin updated user",
		zap.Uint("admin_id", middleware.CurrentUser(c).ID),
		zap.String("student_id", user.StudentID))
	respond(c, http.StatusOK, "User updated successfully", user.ToAccount())
}
