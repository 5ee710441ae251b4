package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"bioregtool/internal/app"
	"bioregtool/internal/transport/http/response"
)

type AttachmentHandler struct {
	attachments *app.AttachmentService
}

func NewAttachmentHandler(attachments *app.AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{attachments: attachments}
}

// Upload accepts one multipart file under "file" plus a "session_id" form
// field, extracts its text and stores the attachment.
func (h *AttachmentHandler) Upload(c *gin.Context) {
	sessionID, ok := parseSessionID(c.PostForm("session_id"))
	if !ok {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid session_id")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "file is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "open uploaded file failed")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "read uploaded file failed")
		return
	}

	att, err := h.attachments.Upload(app.UploadAttachmentInput{
		SessionID: sessionID,
		Filename:  fileHeader.Filename,
		Data:      data,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidAttachment):
			response.Error(c, http.StatusBadRequest, response.CodeInvalidAttachment, err.Error())
		case errors.Is(err, app.ErrValidation):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrSessionNotFound):
			response.Error(c, http.StatusNotFound, response.CodeSessionNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "upload attachment failed")
		}
		return
	}

	response.OK(c, att)
}

func (h *AttachmentHandler) List(c *gin.Context) {
	sessionID, ok := parseSessionID(c.Query("session_id"))
	if !ok {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid session_id")
		return
	}

	attachments, err := h.attachments.List(sessionID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list attachments failed")
		return
	}

	response.OK(c, attachments)
}

func (h *AttachmentHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid attachment id")
		return
	}

	if err := h.attachments.Delete(id); err != nil {
		switch {
		case errors.Is(err, app.ErrAttachmentNotFound):
			response.Error(c, http.StatusNotFound, response.CodeAttachmentNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "delete attachment failed")
		}
		return
	}

	response.OK(c, gin.H{"deleted_attachment_id": id})
}
