package services

import (
	"strings"
	"testing"

	"github.com/BetterNetworks-web/interview-preview/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeModelJSON(t *testing.T) {
	t.Run("strict JSON object", func(t *testing.T) {
		var resp QuestionsResponse
		err := decodeModelJSON("generate_questions", `{"questions":["a","b"]}`, &resp)
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, resp.Questions)
	})

	t.Run("object wrapped in a code fence", func(t *testing.T) {
		raw := "```json\n{\"questions\":[\"a\"]}\n```"
		var resp QuestionsResponse
		err := decodeModelJSON("generate_questions", raw, &resp)
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, resp.Questions)
	})

	t.Run("object wrapped in prose", func(t *testing.T) {
		raw := `Here is the result: {"follow_up":"Why?"} Hope that helps!`
		var resp FollowUpResponse
		err := decodeModelJSON("follow_up", raw, &resp)
		require.NoError(t, err)
		require.NotNil(t, resp.FollowUp)
		assert.Equal(t, "Why?", *resp.FollowUp)
	})

	t.Run("no JSON object at all", func(t *testing.T) {
		var resp QuestionsResponse
		err := decodeModelJSON("generate_questions", "I cannot answer that.", &resp)
		var modelErr *ModelOutputError
		require.ErrorAs(t, err, &modelErr)
		assert.Equal(t, "generate_questions", modelErr.Op)
	})

	t.Run("braces around invalid JSON", func(t *testing.T) {
		var resp QuestionsResponse
		err := decodeModelJSON("generate_questions", "{not json}", &resp)
		var modelErr *ModelOutputError
		require.ErrorAs(t, err, &modelErr)
		assert.Contains(t, modelErr.Reason, "invalid JSON")
	})
}

func TestQuestionsResponseValidate(t *testing.T) {
	valid := func() *QuestionsResponse {
		qs := make([]string, ExpectedQuestionCount)
		for i := range qs {
			qs[i] = "Question"
		}
		return &QuestionsResponse{Questions: qs}
	}

	t.Run("exact count passes", func(t *testing.T) {
		assert.NoError(t, valid().Validate("generate_questions", "{}"))
	})

	t.Run("wrong count fails", func(t *testing.T) {
		resp := valid()
		resp.Questions = resp.Questions[:5]
		err := resp.Validate("generate_questions", "{}")
		var modelErr *ModelOutputError
		require.ErrorAs(t, err, &modelErr)
		assert.Contains(t, modelErr.Reason, "expected 8 questions")
	})

	t.Run("blank question fails", func(t *testing.T) {
		resp := valid()
		resp.Questions[3] = "   "
		err := resp.Validate("generate_questions", "{}")
		var modelErr *ModelOutputError
		require.ErrorAs(t, err, &modelErr)
		assert.Contains(t, modelErr.Reason, "question 4 is empty")
	})
}

func validEvaluation(questionCount int) *EvaluationResponse {
	breakdown := make([]models.QuestionFeedback, questionCount)
	for i := range breakdown {
		breakdown[i] = models.QuestionFeedback{
			Question:      "Q",
			AnswerSummary: "A",
			Score:         70,
			Note:          "fine",
			Tip:           "numbers",
		}
	}
	return &EvaluationResponse{
		OverallScore: 72,
		Verdict:      "Decent showing.",
		Dimensions: models.Dimensions{
			EvidenceSpecificity: models.DimensionScore{Score: 70, Feedback: "ok"},
			HandlingPressure:    models.DimensionScore{Score: 65, Feedback: "ok"},
			SelfAwareness:       models.DimensionScore{Score: 80, Feedback: "ok"},
			StrategicThinking:   models.DimensionScore{Score: 60, Feedback: "ok"},
		},
		OneThingToFix:     "Quantify outcomes",
		FixExplanation:    "Stories lack metrics.",
		QuestionBreakdown: breakdown,
	}
}

func TestEvaluationResponseValidate(t *testing.T) {
	t.Run("valid payload passes", func(t *testing.T) {
		assert.NoError(t, validEvaluation(8).Validate("evaluate", "{}", 8))
	})

	t.Run("overall score out of range", func(t *testing.T) {
		resp := validEvaluation(8)
		resp.OverallScore = 101
		err := resp.Validate("evaluate", "{}", 8)
		var modelErr *ModelOutputError
		require.ErrorAs(t, err, &modelErr)
		assert.Contains(t, modelErr.Reason, "overall_score 101")
	})

	t.Run("negative dimension score", func(t *testing.T) {
		resp := validEvaluation(8)
		resp.Dimensions.HandlingPressure.Score = -1
		err := resp.Validate("evaluate", "{}", 8)
		assert.Error(t, err)
	})

	t.Run("empty verdict", func(t *testing.T) {
		resp := validEvaluation(8)
		resp.Verdict = " "
		assert.Error(t, resp.Validate("evaluate", "{}", 8))
	})

	t.Run("breakdown length mismatch", func(t *testing.T) {
		resp := validEvaluation(8)
		resp.QuestionBreakdown = resp.QuestionBreakdown[:7]
		err := resp.Validate("evaluate", "{}", 8)
		var modelErr *ModelOutputError
		require.ErrorAs(t, err, &modelErr)
		assert.Contains(t, modelErr.Reason, "question_breakdown has 7 entries")
	})

	t.Run("breakdown entry score out of range", func(t *testing.T) {
		resp := validEvaluation(8)
		resp.QuestionBreakdown[2].Score = 120
		assert.Error(t, resp.Validate("evaluate", "{}", 8))
	})
}

func TestFollowUpResponseNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    *string
		wantNil  bool
		wantText string
	}{
		{name: "nil stays nil", input: nil, wantNil: true},
		{name: "real question survives", input: strPtr("What was the actual outcome?"), wantText: "What was the actual outcome?"},
		{name: "empty string becomes nil", input: strPtr(""), wantNil: true},
		{name: "whitespace becomes nil", input: strPtr("  "), wantNil: true},
		{name: "literal null becomes nil", input: strPtr("null"), wantNil: true},
		{name: "literal NULL becomes nil", input: strPtr("NULL"), wantNil: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := &FollowUpResponse{FollowUp: tt.input}
			resp.Normalize()
			if tt.wantNil {
				assert.Nil(t, resp.FollowUp)
			} else {
				require.NotNil(t, resp.FollowUp)
				assert.Equal(t, tt.wantText, *resp.FollowUp)
			}
		})
	}
}

func TestModelOutputErrorTruncatesRaw(t *testing.T) {
	err := &ModelOutputError{
		Op:     "evaluate",
		Reason: "no JSON object found",
		Raw:    strings.Repeat("x", 500),
	}
	msg := err.Error()
	assert.Contains(t, msg, "evaluate")
	assert.Contains(t, msg, "...")
	assert.Less(t, len(msg), 300)
}

func strPtr(s string) *string {
	return &s
}
