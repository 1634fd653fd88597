package services

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// InterviewEndpoints serves the LLM-backed interview operations. The single
// /interview route dispatches on an "action" field, mirroring the wire
// contract the client's wizard speaks.
type InterviewEndpoints struct {
	geminiService *GeminiService
}

func NewInterviewEndpoints(geminiService *GeminiService) *InterviewEndpoints {
	return &InterviewEndpoints{
		geminiService: geminiService,
	}
}

func (e *InterviewEndpoints) RegisterRoutes(r chi.Router) {
	r.Post("/interview", e.InterviewHandler)
}

type interviewAction struct {
	Action string `json:"action"`
}

func (e *InterviewEndpoints) InterviewHandler(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var probe interviewAction
	if err := json.Unmarshal(body, &probe); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	switch probe.Action {
	case "generate_questions":
		e.generateQuestions(w, r, body)
	case "evaluate":
		e.evaluate(w, r, body)
	case "follow_up":
		e.followUp(w, r, body)
	default:
		respondError(w, http.StatusBadRequest, "Invalid action")
	}
}

func (e *InterviewEndpoints) generateQuestions(w http.ResponseWriter, r *http.Request, body []byte) {
	var req GenerateQuestionsRequest
	if err := json.Unmarshal(body, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Role == "" {
		respondError(w, http.StatusBadRequest, "Role is required")
		return
	}
	if !IsValidDifficulty(req.Difficulty) {
		respondError(w, http.StatusBadRequest, "Invalid difficulty")
		return
	}

	resp, err := e.geminiService.GenerateQuestions(r.Context(), &req)
	if err != nil {
		logModelFailure("Question generation failed", err)
		respondError(w, http.StatusInternalServerError, "Failed to generate questions")
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

func (e *InterviewEndpoints) evaluate(w http.ResponseWriter, r *http.Request, body []byte) {
	var req EvaluateRequest
	if err := json.Unmarshal(body, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(req.Questions) == 0 {
		respondError(w, http.StatusBadRequest, "Questions are required")
		return
	}
	if len(req.Answers) != len(req.Questions) {
		respondError(w, http.StatusBadRequest, "Questions and answers must have the same length")
		return
	}

	resp, err := e.geminiService.EvaluateInterview(r.Context(), &req)
	if err != nil {
		logModelFailure("Interview evaluation failed", err)
		respondError(w, http.StatusInternalServerError, "Failed to evaluate interview")
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

func (e *InterviewEndpoints) followUp(w http.ResponseWriter, r *http.Request, body []byte) {
	var req FollowUpRequest
	if err := json.Unmarshal(body, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Question == "" || req.Answer == "" {
		respondError(w, http.StatusBadRequest, "Question and answer are required")
		return
	}

	resp, err := e.geminiService.FollowUpDecision(r.Context(), &req)
	if err != nil {
		logModelFailure("Follow-up decision failed", err)
		respondError(w, http.StatusInternalServerError, "Failed to generate follow-up")
		return
	}

	respondJSON(w, http.StatusOK, resp)
}

func logModelFailure(msg string, err error) {
	var modelErr *ModelOutputError
	if errors.As(err, &modelErr) {
		slog.Error(msg, "error", err, "op", modelErr.Op, "reason", modelErr.Reason)
		return
	}
	slog.Error(msg, "error", err)
}
