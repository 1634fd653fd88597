package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/BetterNetworks-web/interview-preview/models"
	"github.com/go-chi/chi/v5"
	"gorm.io/datatypes"
)

// freeHistoryLimit caps how many scorecards the free tier can list.
const freeHistoryLimit = 3

// ScorecardStore is the slice of the repository the scorecard endpoints
// need.
type ScorecardStore interface {
	SaveInterviewAndScorecard(ctx context.Context, interview *models.Interview, scorecard *models.Scorecard) error
	GetScorecards(ctx context.Context, userID string, limit int) ([]models.Scorecard, error)
	GetSubscription(ctx context.Context, userID string) (*models.Subscription, error)
}

type ScorecardEndpoints struct {
	repo ScorecardStore
}

func NewScorecardEndpoints(repo ScorecardStore) *ScorecardEndpoints {
	return &ScorecardEndpoints{
		repo: repo,
	}
}

func (e *ScorecardEndpoints) RegisterRoutes(r chi.Router) {
	r.Route("/scorecard", func(r chi.Router) {
		r.Post("/", e.SaveScorecardHandler)
		r.Get("/", e.GetScorecardsHandler)
		r.Get("/stats", e.GetStatsHandler)
	})
}

// SaveInterviewPayload is the interview half of a save request, assembled
// client-side across the setup and interview steps.
type SaveInterviewPayload struct {
	Role           string   `json:"role"`
	JobDescription string   `json:"job_description"`
	CVSummary      string   `json:"cv_summary"`
	WeakArea       string   `json:"weak_area"`
	Difficulty     string   `json:"difficulty"`
	Questions      []string `json:"questions"`
	Answers        []string `json:"answers"`
}

type SaveScorecardRequest struct {
	Interview *SaveInterviewPayload `json:"interview"`
	Scorecard *EvaluationResponse   `json:"scorecard"`
}

type GetScorecardsResponse struct {
	Scorecards []models.Scorecard `json:"scorecards"`
	Count      int                `json:"count"`
}

func (e *ScorecardEndpoints) SaveScorecardHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req SaveScorecardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Interview == nil || req.Scorecard == nil {
		respondError(w, http.StatusBadRequest, "Missing interview or scorecard data")
		return
	}
	if req.Interview.Role == "" {
		respondError(w, http.StatusBadRequest, "Interview role is required")
		return
	}
	if len(req.Interview.Questions) != len(req.Interview.Answers) {
		respondError(w, http.StatusBadRequest, "Questions and answers must have the same length")
		return
	}
	if !validScorecardPayload(req.Scorecard, len(req.Interview.Questions)) {
		respondError(w, http.StatusBadRequest, "Invalid scorecard data")
		return
	}

	interview, scorecard, err := buildInterviewRecords(user.ID, req.Interview, req.Scorecard)
	if err != nil {
		slog.Error("Failed to encode scorecard payload", "error", err, "user_id", user.ID)
		respondError(w, http.StatusInternalServerError, "Failed to save scorecard")
		return
	}

	if err := e.repo.SaveInterviewAndScorecard(r.Context(), interview, scorecard); err != nil {
		slog.Error("Failed to save interview and scorecard", "error", err, "user_id", user.ID)
		respondError(w, http.StatusInternalServerError, "Failed to save scorecard")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"success":      true,
		"interview_id": interview.ID,
	})

	slog.Info("Scorecard saved", "interview_id", interview.ID, "user_id", user.ID, "overall_score", scorecard.OverallScore)
}

func (e *ScorecardEndpoints) GetScorecardsHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	limit := freeHistoryLimit
	if e.isPro(r, user.ID) {
		limit = 0 // full history
	}

	scorecards, err := e.repo.GetScorecards(r.Context(), user.ID, limit)
	if err != nil {
		slog.Error("Failed to get scorecards", "error", err, "user_id", user.ID)
		respondError(w, http.StatusInternalServerError, "Failed to get scorecards")
		return
	}

	respondJSON(w, http.StatusOK, GetScorecardsResponse{
		Scorecards: scorecards,
		Count:      len(scorecards),
	})
}

func (e *ScorecardEndpoints) GetStatsHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	pro := e.isPro(r, user.ID)

	// Stats always aggregate over the full history; the free tier limit
	// only applies to listings.
	scorecards, err := e.repo.GetScorecards(r.Context(), user.ID, 0)
	if err != nil {
		slog.Error("Failed to get scorecards for stats", "error", err, "user_id", user.ID)
		respondError(w, http.StatusInternalServerError, "Failed to get stats")
		return
	}

	stats := BuildDashboardStats(scorecards, time.Now(), pro)

	plan := models.PlanFree
	if pro {
		plan = models.PlanPro
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"stats": stats,
		"plan":  plan,
	})
}

func (e *ScorecardEndpoints) isPro(r *http.Request, userID string) bool {
	sub, err := e.repo.GetSubscription(r.Context(), userID)
	if err != nil {
		slog.Error("Failed to check subscription", "error", err, "user_id", userID)
		return false
	}
	return sub.IsPro()
}

// buildInterviewRecords converts a validated save request into the rows to
// insert, encoding the JSONB columns.
func buildInterviewRecords(userID string, in *SaveInterviewPayload, sc *EvaluationResponse) (*models.Interview, *models.Scorecard, error) {
	questions, err := json.Marshal(in.Questions)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode questions: %w", err)
	}
	answers, err := json.Marshal(in.Answers)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode answers: %w", err)
	}
	dimensions, err := json.Marshal(sc.Dimensions)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode dimensions: %w", err)
	}
	breakdown, err := json.Marshal(sc.QuestionBreakdown)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode question breakdown: %w", err)
	}

	difficulty := in.Difficulty
	if difficulty == "" {
		difficulty = models.DifficultyRealistic
	}

	interview := &models.Interview{
		UserID:         userID,
		Role:           in.Role,
		JobDescription: in.JobDescription,
		CVSummary:      in.CVSummary,
		WeakArea:       in.WeakArea,
		Difficulty:     difficulty,
		Questions:      datatypes.JSON(questions),
		Answers:        datatypes.JSON(answers),
	}
	scorecard := &models.Scorecard{
		OverallScore:      sc.OverallScore,
		Verdict:           sc.Verdict,
		Dimensions:        datatypes.JSON(dimensions),
		OneThingToFix:     sc.OneThingToFix,
		FixExplanation:    sc.FixExplanation,
		QuestionBreakdown: datatypes.JSON(breakdown),
	}
	return interview, scorecard, nil
}

func validScorecardPayload(sc *EvaluationResponse, questionCount int) bool {
	if sc.OverallScore < 0 || sc.OverallScore > 100 {
		return false
	}
	for _, dim := range []models.DimensionScore{
		sc.Dimensions.EvidenceSpecificity,
		sc.Dimensions.HandlingPressure,
		sc.Dimensions.SelfAwareness,
		sc.Dimensions.StrategicThinking,
	} {
		if dim.Score < 0 || dim.Score > 100 {
			return false
		}
	}
	if len(sc.QuestionBreakdown) != questionCount {
		return false
	}
	return true
}
