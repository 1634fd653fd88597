package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/BetterNetworks-web/interview-preview/models"
)

// ModelOutputError reports model text that could not be decoded into the
// declared response shape, or that decoded into values violating it.
// Handlers map it to a 500; it is never silently accepted.
type ModelOutputError struct {
	Op     string // the operation that expected the shape
	Reason string
	Raw    string
}

func (e *ModelOutputError) Error() string {
	raw := e.Raw
	if len(raw) > 200 {
		raw = raw[:200] + "..."
	}
	return fmt.Sprintf("model output for %s: %s (raw: %q)", e.Op, e.Reason, raw)
}

// QuestionsResponse is the declared shape of a generate_questions reply.
type QuestionsResponse struct {
	Questions []string `json:"questions"`
}

// ExpectedQuestionCount is the number of questions every interview has.
const ExpectedQuestionCount = 8

func (r *QuestionsResponse) Validate(op, raw string) error {
	if len(r.Questions) != ExpectedQuestionCount {
		return &ModelOutputError{Op: op, Reason: fmt.Sprintf("expected %d questions, got %d", ExpectedQuestionCount, len(r.Questions)), Raw: raw}
	}
	for i, q := range r.Questions {
		if strings.TrimSpace(q) == "" {
			return &ModelOutputError{Op: op, Reason: fmt.Sprintf("question %d is empty", i+1), Raw: raw}
		}
	}
	return nil
}

// EvaluationResponse is the declared shape of an evaluate reply. It doubles
// as the scorecard payload returned to the client.
type EvaluationResponse struct {
	OverallScore      int                       `json:"overall_score"`
	Verdict           string                    `json:"verdict"`
	Dimensions        models.Dimensions         `json:"dimensions"`
	OneThingToFix     string                    `json:"one_thing_to_fix"`
	FixExplanation    string                    `json:"fix_explanation"`
	QuestionBreakdown []models.QuestionFeedback `json:"question_breakdown"`
}

func (r *EvaluationResponse) Validate(op, raw string, questionCount int) error {
	if r.OverallScore < 0 || r.OverallScore > 100 {
		return &ModelOutputError{Op: op, Reason: fmt.Sprintf("overall_score %d out of range", r.OverallScore), Raw: raw}
	}
	if strings.TrimSpace(r.Verdict) == "" {
		return &ModelOutputError{Op: op, Reason: "verdict is empty", Raw: raw}
	}
	dims := map[string]models.DimensionScore{
		"evidence_specificity": r.Dimensions.EvidenceSpecificity,
		"handling_pressure":    r.Dimensions.HandlingPressure,
		"self_awareness":       r.Dimensions.SelfAwareness,
		"strategic_thinking":   r.Dimensions.StrategicThinking,
	}
	for name, dim := range dims {
		if dim.Score < 0 || dim.Score > 100 {
			return &ModelOutputError{Op: op, Reason: fmt.Sprintf("dimension %s score %d out of range", name, dim.Score), Raw: raw}
		}
	}
	if len(r.QuestionBreakdown) != questionCount {
		return &ModelOutputError{Op: op, Reason: fmt.Sprintf("question_breakdown has %d entries, want %d", len(r.QuestionBreakdown), questionCount), Raw: raw}
	}
	for i, qb := range r.QuestionBreakdown {
		if qb.Score < 0 || qb.Score > 100 {
			return &ModelOutputError{Op: op, Reason: fmt.Sprintf("breakdown %d score %d out of range", i+1, qb.Score), Raw: raw}
		}
	}
	return nil
}

// FollowUpResponse is the declared shape of a follow_up reply. A nil
// FollowUp means the answer was judged specific enough to skip the probe.
type FollowUpResponse struct {
	FollowUp *string `json:"follow_up"`
}

// Normalize maps the literal string "null" (a common model slip) and blank
// strings to a real null.
func (r *FollowUpResponse) Normalize() {
	if r.FollowUp != nil {
		if v := strings.TrimSpace(*r.FollowUp); v == "" || strings.EqualFold(v, "null") {
			r.FollowUp = nil
		}
	}
}

// decodeModelJSON parses model text expected to be a single JSON object.
// Strict parse first; when the model wraps the object in prose or a code
// fence, the outermost {...} span is extracted and parsed instead. Anything
// else is a ModelOutputError.
func decodeModelJSON(op, raw string, v interface{}) error {
	trimmed := strings.TrimSpace(raw)
	if err := json.Unmarshal([]byte(trimmed), v); err == nil {
		return nil
	}

	span, ok := extractJSONObject(trimmed)
	if !ok {
		return &ModelOutputError{Op: op, Reason: "no JSON object found", Raw: raw}
	}
	if err := json.Unmarshal([]byte(span), v); err != nil {
		return &ModelOutputError{Op: op, Reason: "invalid JSON: " + err.Error(), Raw: raw}
	}
	return nil
}

// extractJSONObject returns the span from the first '{' to the last '}'.
func extractJSONObject(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}
