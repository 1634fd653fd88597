package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Difficulty levels accepted at interview setup
const (
	DifficultyComfortable = "comfortable"
	DifficultyRealistic   = "realistic"
	DifficultyHard        = "hard"
	DifficultyBrutal      = "brutal"
)

// Interview records a completed mock interview: the setup the user chose
// plus the full question/answer transcript assembled client-side.
// Rows are written once, at scorecard-save time, and never updated.
type Interview struct {
	ID             string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID         string         `gorm:"type:uuid;not null;index" json:"user_id"`
	Role           string         `gorm:"size:255;not null" json:"role"`
	JobDescription string         `gorm:"type:text" json:"job_description,omitempty"`
	CVSummary      string         `gorm:"type:text" json:"cv_summary,omitempty"`
	WeakArea       string         `gorm:"type:text" json:"weak_area,omitempty"`
	Difficulty     string         `gorm:"size:50;not null;default:'realistic';check:difficulty IN ('comfortable', 'realistic', 'hard', 'brutal')" json:"difficulty"`
	Questions      datatypes.JSON `gorm:"type:jsonb;not null" json:"questions"`
	Answers        datatypes.JSON `gorm:"type:jsonb;not null" json:"answers"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	User      User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Scorecard *Scorecard `gorm:"foreignKey:InterviewID" json:"scorecard,omitempty"`
}

// Scorecard stores the AI evaluation of an interview. Exactly one scorecard
// exists per interview; both rows are inserted in the same transaction.
type Scorecard struct {
	ID                string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	InterviewID       string         `gorm:"type:uuid;not null;uniqueIndex" json:"interview_id"`
	UserID            string         `gorm:"type:uuid;not null;index" json:"user_id"`
	OverallScore      int            `gorm:"not null;check:overall_score >= 0 AND overall_score <= 100" json:"overall_score"`
	Verdict           string         `gorm:"type:text" json:"verdict"`
	Dimensions        datatypes.JSON `gorm:"type:jsonb" json:"dimensions"`
	OneThingToFix     string         `gorm:"type:text" json:"one_thing_to_fix"`
	FixExplanation    string         `gorm:"type:text" json:"fix_explanation,omitempty"`
	QuestionBreakdown datatypes.JSON `gorm:"type:jsonb" json:"question_breakdown"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Interview Interview `gorm:"foreignKey:InterviewID" json:"interview,omitempty"`
	User      User      `gorm:"foreignKey:UserID" json:"-"`
}

// DimensionScore is one evaluation axis of a scorecard.
type DimensionScore struct {
	Score    int    `json:"score"`
	Feedback string `json:"feedback"`
}

// Dimensions holds the four fixed evaluation axes.
type Dimensions struct {
	EvidenceSpecificity DimensionScore `json:"evidence_specificity"`
	HandlingPressure    DimensionScore `json:"handling_pressure"`
	SelfAwareness       DimensionScore `json:"self_awareness"`
	StrategicThinking   DimensionScore `json:"strategic_thinking"`
}

// QuestionFeedback is the per-question entry of a scorecard breakdown.
type QuestionFeedback struct {
	Question      string `json:"question"`
	AnswerSummary string `json:"answer_summary"`
	Score         int    `json:"score"`
	Note          string `json:"note"`
	Tip           string `json:"tip"`
}
