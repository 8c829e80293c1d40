package routes

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"campus-gms/middleware"
	"campus-gms/models"
	"campus-gms/services"
	"campus-gms/types"
)

func views(issues []models.Issue, viewerID uint) []types.IssueView {
	out := make([]types.IssueView, 0, len(issues))
	for i := range issues {
		out = append(out, issues[i].View(viewerID))
	}
	return out
}

// listCategories serves the active catalog the report forms are built from
func (h *handler) listCategories(c *gin.Context) {
	cats, err := h.Categories.Active(c.Request.Context())
	if err != nil {
		serviceError(c, h.Logger, err)
		return
	}
	respond(c, http.StatusOK, "Categories retrieved successfully", cats)
}

func (h *handler) createIssue(c *gin.Context) {
	var sub types.IssueSubmission
	if !bindJSON(c, &sub) {
		return
	}
	user := middleware.CurrentUser(c)
	issue, err := h.Issues.Create(c.Request.Context(), user, sub)
	if err != nil {
		serviceError(c, h.Logger, err)
		return
	}
	respond(c, http.StatusCreated, "Issue reported successfully", issue.View(user.ID))
}

func (h *handler) similarIssues(c *gin.Context) {
	q := types.SimilarQuery{
		ActionItem: c.Query("action_item"),
		Block:      c.Query("block"),
		Floor:      c.Query("floor"),
	}
	issues, err := h.Issues.Similar(c.Request.Context(), q)
	if err != nil {
		serviceError(c, h.Logger, err)
		return
	}
	respond(c, http.StatusOK, "Similar issues retrieved successfully", views(issues, middleware.CurrentUser(c).ID))
}

func (h *handler) myIssues(c *gin.Context) {
	user := middleware.CurrentUser(c)
	issues, err := h.Issues.ListMine(c.Request.Context(), user.ID, c.Query("status"))
	if err != nil {
		serviceError(c, h.Logger, err)
		return
	}
	respond(c, http.StatusOK, "Issues retrieved successfully", views(issues, user.ID))
}

func (h *handler) listIssues(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	issues, p, err := h.Issues.List(c.Request.Context(), services.IssueFilter{
		Status:     c.Query("status"),
		Category:   c.Query("category"),
		ActionItem: c.Query("action_item"),
		Block:      c.Query("block"),
		Page:       page,
		Limit:      limit,
	})
	if err != nil {
		serviceError(c, h.Logger, err)
		return
	}
	respond(c, http.StatusOK, "Issues retrieved successfully", gin.H{
		"issues":     views(issues, middleware.CurrentUser(c).ID),
		"pagination": p,
	})
}

// visibleIssue loads the :id issue if the caller may see it. Others get a
// 404 so ticket codes cannot be enumerated.
func (h *handler) visibleIssue(c *gin.Context) (*models.Issue, bool) {
	issue, err := h.Issues.Get(c.Request.Context(), c.Param("id"))
	if err == nil && !services.CanView(middleware.CurrentUser(c), issue) {
		err = services.ErrIssueNotFound
	}
	if err != nil {
		serviceError(c, h.Logger, err)
		return nil, false
	}
	return issue, true
}

func (h *handler) getIssue(c *gin.Context) {
	issue, ok := h.visibleIssue(c)
	if !ok {
		return
	}
	respond(c, http.StatusOK, "Issue retrieved successfully", issue.View(middleware.CurrentUser(c).ID))
}

func (h *handler) issueHistory(c *gin.Context) {
	issue, ok := h.visibleIssue(c)
	if !ok {
		return
	}
	events, err := h.Issues.Events(c.Request.Context(), issue.ID)
	if err != nil {
		serviceError(c, h.Logger, err)
		return
	}
	respond(c, http.StatusOK, "History retrieved successfully", events)
}

func (h *handler) updateIssueStatus(c *gin.Context) {
	var upd types.StatusUpdate
	if !bindJSON(c, &upd) {
		return
	}
	user := middleware.CurrentUser(c)
	issue, err := h.Issues.UpdateStatus(c.Request.Context(), user, c.Param("id"), upd)
	if err != nil {
		serviceError(c, h.Logger, err)
		return
	}
	respond(c, http.StatusOK, "Issue status updated successfully", issue.View(user.ID))
}
