package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"campus-gms/middleware"
)

// uploadAttachment stores one report photo and returns its URL, which the
// client then lists in the issue's attachments.
func (h *handler) uploadAttachment(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		fail(c, http.StatusBadRequest, "File required", "Send the photo as multipart field \"file\"")
		return
	}
	att, err := h.Media.UploadImage(c.Request.Context(), middleware.CurrentUser(c).ID, header)
	if err != nil {
		serviceError(c, h.Logger, err)
		return
	}
	respond(c, http.StatusCreated, "Attachment uploaded successfully", att)
}
