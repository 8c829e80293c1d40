package routes

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"campus-gms/middleware"
	"campus-gms/types"
)

func itemID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		fail(c, http.StatusBadRequest, "Invalid ID", "Item ID must be a number")
		return 0, false
	}
	return uint(id), true
}

func (h *handler) listLostFound(c *gin.Context) {
	items, err := h.LostFound.List(c.Request.Context(), c.Query("kind"), c.Query("status"))
	if err != nil {
		serviceError(c, h.Logger, err)
		return
	}
	out := make([]types.LostFoundView, 0, len(items))
	for i := range items {
		out = append(out, items[i].View())
	}
	respond(c, http.StatusOK, "Items retrieved successfully", out)
}

func (h *handler) createLostFound(c *gin.Context) {
	var req types.LostFoundCreate
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.LostFound.Create(c.Request.Context(), middleware.CurrentUser(c).ID, req)
	if err != nil {
		serviceError(c, h.Logger, err)
		return
	}
	respond(c, http.StatusCreated, "Item posted successfully", item.View())
}

func (h *handler) getLostFound(c *gin.Context) {
	id, ok := itemID(c)
	if !ok {
		return
	}
	item, err := h.LostFound.Get(c.Request.Context(), id)
	if err != nil {
		serviceError(c, h.Logger, err)
		return
	}
	respond(c, http.StatusOK, "Item retrieved successfully", item.View())
}

func (h *handler) claimLostFound(c *gin.Context) {
	id, ok := itemID(c)
	if !ok {
		return
	}
	item, err := h.LostFound.Claim(c.Request.Context(), middleware.CurrentUser(c), id)
	if err != nil {
		serviceError(c, h.Logger, err)
		return
	}
	respond(c, http.StatusOK, "Item claimed successfully", item.View())
}

func (h *handler) deleteLostFound(c *gin.Context) {
	id, ok := itemID(c)
	if !ok {
		return
	}
	if err := h.LostFound.Delete(c.Request.Context(), middleware.CurrentUser(c), id); err != nil {
		serviceError(c, h.Logger, err)
		return
	}
	respond(c, http.StatusOK, "Item deleted successfully", gin.H{"id": id})
}
