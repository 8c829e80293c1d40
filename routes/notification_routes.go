package routes

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"campus-gms/middleware"
)

func (h *handler) listNotifications(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	unread := c.Query("unread") == "true"
	list, err := h.Notifications.List(c.Request.Context(), middleware.CurrentUser(c).ID, unread, limit)
	if err != nil {
		serviceError(c, h.Logger, err)
		return
	}
	respond(c, http.StatusOK, "Notifications retrieved successfully", list)
}

func (h *handler) unreadCount(c *gin.Context) {
	n, err := h.Notifications.UnreadCount(c.Request.Context(), middleware.CurrentUser(c).ID)
	if err != nil {
		serviceError(c, h.Logger, err)
		return
	}
	respond(c, http.StatusOK, "Unread count retrieved successfully", gin.H{"unread_count": n})
}

func (h *handler) markNotificationRead(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		fail(c, http.StatusBadRequest, "Invalid ID", "Notification ID must be a number")
		return
	}
	if err := h.Notifications.MarkRead(c.Request.Context(), middleware.CurrentUser(c).ID, uint(id)); err != nil {
		serviceError(c, h.Logger, err)
		return
	}
	respond(c, http.StatusOK, "Notification marked as read", nil)
}

func (h *handler) markAllNotificationsRead(c *gin.Context) {
	n, err := h.Notifications.MarkAllRead(c.Request.Context(), middleware.CurrentUser(c).ID)
	if err != nil {
		serviceError(c, h.Logger, err)
		return
	}
	respond(c, http.StatusOK, "All notifications marked as read", gin.H{"updated": n})
}
