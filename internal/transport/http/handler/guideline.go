package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"bioregtool/internal/app"
	"bioregtool/internal/pkg/textextract"
	"bioregtool/internal/transport/http/response"
)

type GuidelineHandler struct {
	guidelines *app.GuidelineService
}

type IngestGuidelineRequest struct {
	Title        string `json:"title" binding:"required"`
	Content      string `json:"content" binding:"required"`
	Reference    string `json:"reference"`
	Jurisdiction string `json:"jurisdiction"`
	Category     string `json:"category"`
}

type SearchGuidelinesRequest struct {
	Query string `json:"query" binding:"required"`
	TopK  int    `json:"top_k"`
}

func NewGuidelineHandler(guidelines *app.GuidelineService) *GuidelineHandler {
	return &GuidelineHandler{guidelines: guidelines}
}

func (h *GuidelineHandler) Ingest(c *gin.Context) {
	var req IngestGuidelineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	doc, err := h.guidelines.Ingest(c.Request.Context(), app.IngestGuidelineInput{
		Title:        req.Title,
		Content:      req.Content,
		Reference:    req.Reference,
		Jurisdiction: req.Jurisdiction,
		Category:     req.Category,
	})
	if err != nil {
		writeGuidelineError(c, err, "ingest guideline failed")
		return
	}

	response.OK(c, doc)
}

// Upload ingests a guideline document from an uploaded file; the title
// defaults to the filename when the form omits it.
func (h *GuidelineHandler) Upload(c *gin.Context) {
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

	content, err := textextract.Extract(fileHeader.Filename, data)
	if err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		return
	}

	title := c.PostForm("title")
	if title == "" {
		title = fileHeader.Filename
	}

	doc, err := h.guidelines.Ingest(c.Request.Context(), app.IngestGuidelineInput{
		Title:        title,
		Content:      content,
		Reference:    c.PostForm("reference"),
		Jurisdiction: c.PostForm("jurisdiction"),
		Category:     c.PostForm("category"),
	})
	if err != nil {
		writeGuidelineError(c, err, "ingest guideline failed")
		return
	}

	response.OK(c, doc)
}

func (h *GuidelineHandler) List(c *gin.Context) {
	docs, err := h.guidelines.List(c.Query("jurisdiction"), c.Query("category"))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "list guidelines failed")
		return
	}

	response.OK(c, docs)
}

func (h *GuidelineHandler) Get(c *gin.Context) {
	id, ok := parseGuidelineID(c.Param("id"))
	if !ok {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid guideline id")
		return
	}

	doc, err := h.guidelines.Get(id)
	if err != nil {
		writeGuidelineError(c, err, "get guideline failed")
		return
	}

	response.OK(c, doc)
}

func (h *GuidelineHandler) Delete(c *gin.Context) {
	id, ok := parseGuidelineID(c.Param("id"))
	if !ok {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid guideline id")
		return
	}

	if err := h.guidelines.Delete(id); err != nil {
		writeGuidelineError(c, err, "delete guideline failed")
		return
	}

	response.OK(c, gin.H{"deleted_guideline_id": id})
}

func (h *GuidelineHandler) Search(c *gin.Context) {
	var req SearchGuidelinesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	results, err := h.guidelines.Search(c.Request.Context(), req.Query, req.TopK)
	if err != nil {
		writeGuidelineError(c, err, "search guidelines failed")
		return
	}

	response.OK(c, results)
}

func writeGuidelineError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, app.ErrValidation):
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
	case errors.Is(err, app.ErrGuidelineNotFound):
		response.Error(c, http.StatusNotFound, response.CodeGuidelineNotFound, err.Error())
	case errors.Is(err, app.ErrNoCorpus):
		response.Error(c, http.StatusServiceUnavailable, response.CodeCorpusUnavailable, err.Error())
	case errors.Is(err, app.ErrUpstream):
		response.Error(c, http.StatusBadGateway, response.CodeUpstreamFailure, err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, fallback)
	}
}

func parseGuidelineID(raw string) (uint, bool) {
	id64, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id64 == 0 {
		return 0, false
	}
	return uint(id64), true
}
