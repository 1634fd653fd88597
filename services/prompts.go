package services

import (
	"fmt"
	"strings"
)

// Interview types accepted at setup. "general" applies no extra framing.
const (
	InterviewTypeGeneral     = "general"
	InterviewTypeBehavioral  = "behavioral"
	InterviewTypeTechnical   = "technical"
	InterviewTypeSituational = "situational"
	InterviewTypeCaseStudy   = "case_study"
)

var difficultyInstructions = map[string]string{
	"comfortable": "Ask clear, straightforward questions. Be supportive in framing. Avoid trick questions or heavy pressure.",
	"realistic":   "Ask questions that reflect a standard professional interview. Include a mix of behavioural and situational questions with moderate depth.",
	"hard":        "Ask probing, detailed questions. Include questions that require specific examples and numbers. At least 2 questions should be designed to expose weak areas.",
	"brutal":      "Ask the hardest possible questions for this role. Include questions designed to expose gaps, test under pressure, and require extremely specific answers. Every question should be challenging.",
}

var interviewTypeInstructions = map[string]string{
	InterviewTypeGeneral:     "",
	InterviewTypeBehavioral:  "Focus at least 6 of 8 questions on behavioural format ('Tell me about a time...'). Expect STAR-method answers.",
	InterviewTypeTechnical:   "Focus at least 6 of 8 questions on technical depth, domain knowledge, and problem-solving for this role.",
	InterviewTypeSituational: "Focus at least 6 of 8 questions on hypothetical scenarios ('How would you handle...').",
	InterviewTypeCaseStudy:   "Structure the interview as a progressive case study. Present a business problem and ask the candidate to work through it step by step across the 8 questions.",
}

// IsValidDifficulty reports whether d is one of the accepted difficulty levels.
func IsValidDifficulty(d string) bool {
	_, ok := difficultyInstructions[d]
	return ok
}

const questionsSystemInstruction = "You are a senior interviewer at a highly competitive company. You have conducted thousands of interviews and know exactly which questions separate strong candidates from average ones. Your job is to generate realistic, probing interview questions tailored to the specific role and candidate. Never generate generic questions — every question should feel like it was written for this specific interview."

const evaluationSystemInstruction = "You are a brutally honest interview evaluator. You have no interest in flattering candidates — your job is to give them accurate, specific feedback that will genuinely help them improve. Reference specific things they said in their answers. Never give generic advice. Score honestly: most answers are 55-65, weak answers are 30-50, and only genuinely impressive answers with concrete examples and strategic depth earn 75+. The feedback should feel like it was written by someone who carefully read every word of their responses."

const followUpSystemInstruction = "You are a senior interviewer deciding whether to probe deeper on a candidate's answer. You are looking for specificity, real examples, and clarity. Vague or rehearsed-sounding answers should always get a follow-up."

func buildQuestionsPrompt(req *GenerateQuestionsRequest) string {
	difficultyInstruction := difficultyInstructions[req.Difficulty]

	interviewType := req.InterviewType
	if interviewType == "" {
		interviewType = InterviewTypeGeneral
	}
	typeInstruction := interviewTypeInstructions[interviewType]
	if typeInstruction != "" {
		typeInstruction = "\n" + typeInstruction + "\n"
	}

	return fmt.Sprintf(`Generate interview questions based on the following details.

Role: %s
Job Description: %s
Candidate Experience: %s
Self-identified Weak Area: %s
Difficulty: %s

%s
%s
Generate exactly 8 interview questions as a JSON array. Questions should be a mix of:
- Behavioural ("Tell me about a time...")
- Situational ("How would you handle...")
- Role-specific technical or strategic questions
- At least one question must directly target the weak area: "%s"

Return ONLY valid JSON in this exact format, no other text:
{"questions": ["question1", "question2", "question3", "question4", "question5", "question6", "question7", "question8"]}`,
		req.Role,
		req.JobDescription,
		req.CVSummary,
		req.WeakArea,
		req.Difficulty,
		difficultyInstruction,
		typeInstruction,
		req.WeakArea,
	)
}

func buildEvaluationPrompt(req *EvaluateRequest) string {
	var transcript strings.Builder
	for i, q := range req.Questions {
		answer := "[No answer provided]"
		if i < len(req.Answers) && req.Answers[i] != "" {
			answer = req.Answers[i]
		}
		if i > 0 {
			transcript.WriteString("\n\n")
		}
		fmt.Fprintf(&transcript, "Question %d: %s\nAnswer %d: %s", i+1, q, i+1, answer)
	}

	return fmt.Sprintf(`Evaluate this interview transcript.

Role: %s
Job Description: %s
Candidate Experience: %s
Self-identified Weak Area: %s
Difficulty: %s

TRANSCRIPT:
%s

Evaluate the candidate honestly. An average answer should score 55-65, not 80. Reserve 80+ for genuinely strong answers with specific examples, numbers, and clear strategic thinking.

For each question, also include a "tip" field: a 2-3 sentence coaching insight that teaches the candidate HOW to answer this type of question better. Reference a specific framework or technique (like STAR, the Pyramid Principle, or structured problem-solving). Make it educational, not just critical.

Return ONLY valid JSON in this exact format:
{
  "overall_score": <0-100>,
  "verdict": "<one line summary of candidate performance>",
  "dimensions": {
    "evidence_specificity": {"score": <0-100>, "feedback": "<2-3 sentences referencing specific things they said>"},
    "handling_pressure": {"score": <0-100>, "feedback": "<2-3 sentences referencing specific things they said>"},
    "self_awareness": {"score": <0-100>, "feedback": "<2-3 sentences referencing specific things they said>"},
    "strategic_thinking": {"score": <0-100>, "feedback": "<2-3 sentences referencing specific things they said>"}
  },
  "one_thing_to_fix": "<single specific actionable sentence — the most important improvement>",
  "fix_explanation": "<3-4 sentence explanation of WHY this matters and HOW to practice it>",
  "question_breakdown": [
    {"question": "<question text>", "answer_summary": "<1-2 sentence summary of their answer>", "score": <0-100>, "note": "<one sentence of specific feedback>", "tip": "<2-3 sentence coaching tip for this question type>"}
  ]
}`,
		req.Role,
		req.JobDescription,
		req.CVSummary,
		req.WeakArea,
		req.Difficulty,
		transcript.String(),
	)
}

func buildFollowUpPrompt(req *FollowUpRequest) string {
	pressureLevel := "Be moderately challenging. If the answer is vague or lacks specifics, probe further. If the answer is solid, you may skip the follow-up."
	if req.Difficulty == "brutal" {
		pressureLevel = "Be very aggressive. Challenge vague statements, ask for specific numbers, dates, and outcomes. Do not accept generalities."
	}

	return fmt.Sprintf(`Original question: %s
Candidate's answer: %s

%s

Decide whether a follow-up question is warranted. If the answer is vague, incomplete, or deflective, generate a pointed follow-up. If the answer is specific and complete, return null.

Return ONLY valid JSON:
{"follow_up": "<follow-up question or null>"}`,
		req.Question,
		req.Answer,
		pressureLevel,
	)
}
