package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"bioregtool/internal/app"
	"bioregtool/internal/model"
	"bioregtool/internal/transport/http/response"
)

type QuestionnaireHandler struct {
	matcher *app.MatcherService
}

type QuestionnaireRequest struct {
	SessionID             uint   `json:"session_id"`
	IntendedPurpose       string `json:"intended_purpose" binding:"required"`
	LifeThreatening       bool   `json:"life_threatening"`
	UserType              string `json:"user_type" binding:"required"`
	RequiresSterilization bool   `json:"requires_sterilization"`
	BodyContactDuration   string `json:"body_contact_duration" binding:"required"`
}

func NewQuestionnaireHandler(matcher *app.MatcherService) *QuestionnaireHandler {
	return &QuestionnaireHandler{matcher: matcher}
}

// Submit matches questionnaire answers against the guideline corpus and
// returns the ranked results.
func (h *QuestionnaireHandler) Submit(c *gin.Context) {
	var req QuestionnaireRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid request payload")
		return
	}

	result, err := h.matcher.Match(c.Request.Context(), app.MatchInput{
		SessionID: req.SessionID,
		Answers: model.QuestionnaireAnswers{
			IntendedPurpose:       req.IntendedPurpose,
			LifeThreatening:       req.LifeThreatening,
			UserType:              req.UserType,
			RequiresSterilization: req.RequiresSterilization,
			BodyContactDuration:   req.BodyContactDuration,
		},
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrValidation):
			response.Error(c, http.StatusBadRequest, response.CodeBadRequest, err.Error())
		case errors.Is(err, app.ErrSessionNotFound):
			response.Error(c, http.StatusNotFound, response.CodeSessionNotFound, err.Error())
		case errors.Is(err, app.ErrNoCorpus):
			response.Error(c, http.StatusServiceUnavailable, response.CodeCorpusUnavailable, err.Error())
		case errors.Is(err, app.ErrUpstream):
			response.Error(c, http.StatusBadGateway, response.CodeUpstreamFailure, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "questionnaire matching failed")
		}
		return
	}

	response.OK(c, result)
}
