package services

import (
	"context"
	"fmt"
	"log/slog"

	"google.golang.org/genai"
)

const (
	ModelName = "gemini-2.5-flash"

	questionsMaxTokens  = 2000
	evaluationMaxTokens = 4000
	followUpMaxTokens   = 500
)

// GeminiService handles all LLM operations: question generation, interview
// evaluation, and follow-up decisions. Each call is a single-shot
// prompt/response exchange; no per-session state is held.
type GeminiService struct {
	genaiClient *genai.Client
}

func NewGeminiService(apiKey string) *GeminiService {
	genaiClient, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		slog.Error("Failed to create genai client", "error", err)
		return nil
	}

	return &GeminiService{
		genaiClient: genaiClient,
	}
}

// GenerateQuestionsRequest carries the interview setup the client assembled.
// Field names match the wire format of the setup wizard.
type GenerateQuestionsRequest struct {
	Role           string `json:"role"`
	JobDescription string `json:"jobDescription"`
	CVSummary      string `json:"cvSummary"`
	WeakArea       string `json:"weakArea"`
	InterviewType  string `json:"interviewType,omitempty"`
	Difficulty     string `json:"difficulty"`
}

// EvaluateRequest carries the full transcript for scoring.
type EvaluateRequest struct {
	Role           string   `json:"role"`
	JobDescription string   `json:"jobDescription"`
	CVSummary      string   `json:"cvSummary"`
	WeakArea       string   `json:"weakArea"`
	Difficulty     string   `json:"difficulty"`
	Questions      []string `json:"questions"`
	Answers        []string `json:"answers"`
}

// FollowUpRequest asks whether one answer warrants a probing follow-up.
type FollowUpRequest struct {
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	Difficulty string `json:"difficulty"`
}

// GenerateQuestions produces exactly eight interview questions tailored to
// the setup. Model output that is not eight well-formed questions is a
// ModelOutputError, never a partial result.
func (g *GeminiService) GenerateQuestions(ctx context.Context, req *GenerateQuestionsRequest) (*QuestionsResponse, error) {
	raw, err := g.generate(ctx, questionsSystemInstruction, buildQuestionsPrompt(req), questionsMaxTokens)
	if err != nil {
		return nil, err
	}

	var resp QuestionsResponse
	if err := decodeModelJSON("generate_questions", raw, &resp); err != nil {
		return nil, err
	}
	if err := resp.Validate("generate_questions", raw); err != nil {
		return nil, err
	}

	slog.Info("Generated interview questions", "role", req.Role, "difficulty", req.Difficulty, "count", len(resp.Questions))
	return &resp, nil
}

// EvaluateInterview scores a completed transcript and returns the full
// scorecard payload.
func (g *GeminiService) EvaluateInterview(ctx context.Context, req *EvaluateRequest) (*EvaluationResponse, error) {
	raw, err := g.generate(ctx, evaluationSystemInstruction, buildEvaluationPrompt(req), evaluationMaxTokens)
	if err != nil {
		return nil, err
	}

	var resp EvaluationResponse
	if err := decodeModelJSON("evaluate", raw, &resp); err != nil {
		return nil, err
	}
	if err := resp.Validate("evaluate", raw, len(req.Questions)); err != nil {
		return nil, err
	}

	slog.Info("Evaluated interview", "role", req.Role, "overall_score", resp.OverallScore)
	return &resp, nil
}

// FollowUpDecision asks whether the answer deserves a probing follow-up.
// A reply the decoder cannot make sense of degrades to "no follow-up",
// matching the interview flow's failure policy; only the upstream call
// itself failing is surfaced as an error.
func (g *GeminiService) FollowUpDecision(ctx context.Context, req *FollowUpRequest) (*FollowUpResponse, error) {
	raw, err := g.generate(ctx, followUpSystemInstruction, buildFollowUpPrompt(req), followUpMaxTokens)
	if err != nil {
		return nil, err
	}

	var resp FollowUpResponse
	if err := decodeModelJSON("follow_up", raw, &resp); err != nil {
		slog.Warn("Unparseable follow-up reply, treating as no follow-up", "error", err)
		return &FollowUpResponse{}, nil
	}
	resp.Normalize()

	slog.Info("Follow-up decision", "difficulty", req.Difficulty, "probe", resp.FollowUp != nil)
	return &resp, nil
}

func (g *GeminiService) generate(ctx context.Context, systemInstruction, prompt string, maxTokens int32) (string, error) {
	if g == nil || g.genaiClient == nil {
		return "", fmt.Errorf("genai client not initialized")
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
		MaxOutputTokens:   maxTokens,
	}

	result, err := g.genaiClient.Models.GenerateContent(
		ctx,
		ModelName,
		genai.Text(prompt),
		config,
	)
	if err != nil {
		return "", fmt.Errorf("failed to generate response: %w", err)
	}

	return result.Text(), nil
}
