package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/BetterNetworks-web/interview-preview/models"
	"github.com/BetterNetworks-web/interview-preview/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
)

// DatabaseSeeder handles database seeding operations
type DatabaseSeeder struct {
	repo *repository.GORMRepository
}

// NewDatabaseSeeder creates a new database seeder
func NewDatabaseSeeder(repo *repository.GORMRepository) *DatabaseSeeder {
	return &DatabaseSeeder{repo: repo}
}

// SeedDatabase seeds the database with a demo account and one finished
// interview so the dashboard has data on first run (idempotent)
func (s *DatabaseSeeder) SeedDatabase() error {
	ctx := context.Background()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.seedUser(ctx, models.User{
		Email:    "demo@example.com",
		Password: string(hashedPassword),
		FullName: "Demo User",
	})
	if err != nil {
		return err
	}

	if err := s.seedSampleInterview(ctx, user); err != nil {
		return err
	}

	slog.Info("Database seeding completed successfully")
	return nil
}

// seedUser creates the user unless one with that email already exists
func (s *DatabaseSeeder) seedUser(ctx context.Context, user models.User) (*models.User, error) {
	existing, err := s.repo.GetUserByEmail(ctx, user.Email)
	if err != nil {
		return nil, fmt.Errorf("error checking user %s: %w", user.Email, err)
	}
	if existing != nil {
		slog.Info("User already exists, skipping", "email", user.Email)
		return existing, nil
	}

	if err := s.repo.CreateUser(ctx, &user); err != nil {
		return nil, fmt.Errorf("failed to create user %s: %w", user.Email, err)
	}

	slog.Info("Created user", "email", user.Email)
	return &user, nil
}

// seedSampleInterview stores one completed interview with its scorecard,
// skipping when the user already has any history
func (s *DatabaseSeeder) seedSampleInterview(ctx context.Context, user *models.User) error {
	count, err := s.repo.CountScorecards(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("error checking scorecards: %w", err)
	}
	if count > 0 {
		slog.Info("Sample interview already exists, skipping", "email", user.Email)
		return nil
	}

	questions := []string{
		"Walk me through a project where you owned the backend end to end.",
		"Tell me about a time a production incident was your fault.",
		"How do you decide when a service needs to be split?",
		"Describe a disagreement with a teammate about a technical choice.",
		"What is the weakest part of the system you maintain today?",
		"How would you explain your current architecture to a new hire?",
		"Tell me about a deadline you missed and what you changed after.",
		"What would your last manager say you should work on?",
	}
	answers := []string{
		"I built our billing pipeline from schema design through deployment.",
		"I shipped a migration without a rollback plan and we lost an hour.",
		"When deploy cadence or load profiles diverge between components.",
		"We argued over queue tech; I lost, and their pick was right.",
		"Our cron jobs have no alerting, failures surface days later.",
		"An API layer over Postgres with a worker pool for async jobs.",
		"I missed a quarter goal by underestimating a data backfill.",
		"Delegating earlier instead of rescuing projects solo.",
	}

	questionsJSON, err := json.Marshal(questions)
	if err != nil {
		return fmt.Errorf("failed to marshal questions: %w", err)
	}
	answersJSON, err := json.Marshal(answers)
	if err != nil {
		return fmt.Errorf("failed to marshal answers: %w", err)
	}

	dimensions := models.Dimensions{
		EvidenceSpecificity: models.DimensionScore{Score: 72, Feedback: "Concrete projects named, but few hard numbers."},
		HandlingPressure:    models.DimensionScore{Score: 65, Feedback: "Owned the incident without deflecting."},
		SelfAwareness:       models.DimensionScore{Score: 78, Feedback: "Honest about delegation as a gap."},
		StrategicThinking:   models.DimensionScore{Score: 61, Feedback: "Service-split reasoning stayed surface level."},
	}
	dimensionsJSON, err := json.Marshal(dimensions)
	if err != nil {
		return fmt.Errorf("failed to marshal dimensions: %w", err)
	}

	breakdown := make([]models.QuestionFeedback, 0, len(questions))
	for i, q := range questions {
		breakdown = append(breakdown, models.QuestionFeedback{
			Question:      q,
			AnswerSummary: answers[i],
			Score:         60 + (i*3)%20,
			Note:          "Clear answer, light on measurable outcomes.",
			Tip:           "Anchor the story with one number.",
		})
	}
	breakdownJSON, err := json.Marshal(breakdown)
	if err != nil {
		return fmt.Errorf("failed to marshal breakdown: %w", err)
	}

	interview := &models.Interview{
		UserID:         user.ID,
		Role:           "Senior Backend Engineer",
		JobDescription: "Own services end to end in a small platform team.",
		Difficulty:     models.DifficultyRealistic,
		Questions:      datatypes.JSON(questionsJSON),
		Answers:        datatypes.JSON(answersJSON),
	}
	scorecard := &models.Scorecard{
		OverallScore:      69,
		Verdict:           "Solid stories undercut by vague impact claims.",
		Dimensions:        datatypes.JSON(dimensionsJSON),
		OneThingToFix:     "Quantify your outcomes.",
		FixExplanation:    "Every story landed, but none carried a metric an interviewer could repeat.",
		QuestionBreakdown: datatypes.JSON(breakdownJSON),
	}

	if err := s.repo.SaveInterviewAndScorecard(ctx, interview, scorecard); err != nil {
		return fmt.Errorf("failed to seed sample interview: %w", err)
	}

	slog.Info("Created sample interview", "email", user.Email)
	return nil
}
