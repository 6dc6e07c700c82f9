package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/easylearn/easylearn-backend/internal/model"
	"github.com/easylearn/easylearn-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

const defaultLeaderboardSize = 50

// ChallengeService enforces bounded-attempt, difficulty-weighted scoring.
type ChallengeService struct {
	tx         Transactor
	challenges ChallengeStore
	attempts   AttemptStore
	users      UserStore
	log        zerolog.Logger
	now        func() time.Time
}

// NewChallengeService creates a new ChallengeService.
func NewChallengeService(tx Transactor, challenges ChallengeStore, attempts AttemptStore, users UserStore, log zerolog.Logger) *ChallengeService {
	return &ChallengeService{
		tx:         tx,
		challenges: challenges,
		attempts:   attempts,
		users:      users,
		log:        log.With().Str("component", "challenge_service").Logger(),
		now:        time.Now,
	}
}

// PointsFor returns the reward for a correct answer on the given attempt.
// The second attempt earns half of the first, both rounded to the nearest integer.
func PointsFor(basePoints int, difficulty model.Difficulty, attempt int) int {
	total := int(math.Round(float64(basePoints) * difficulty.Multiplier()))
	if attempt <= 1 {
		return total
	}
	return int(math.Round(float64(total) / 2.0))
}

// Create authors a challenge for the calling professor.
func (s *ChallengeService) Create(ctx context.Context, professorUserID uuid.UUID, req *model.CreateChallengeRequest) (*model.Challenge, error) {
	if len(req.Options) != model.ChallengeOptionCount || req.CorrectAnswer < 0 || req.CorrectAnswer >= model.ChallengeOptionCount {
		return nil, ErrInvalidChallengeOptions
	}
	if req.BasePoints < model.ChallengeMinBasePoints || req.BasePoints > model.ChallengeMaxBasePoints {
		return nil, ErrInvalidBasePoints
	}
	if req.ExpiresInHours < model.ChallengeMinExpiryHours || req.ExpiresInHours > model.ChallengeMaxExpiryHours {
		return nil, ErrInvalidChallengeExpiry
	}

	prof, err := s.users.GetProfessorByUserID(ctx, professorUserID)
	if err != nil {
		return nil, lookupErr(err, "professor")
	}

	c := &model.Challenge{
		ID:            uuid.New(),
		ProfessorID:   prof.ID,
		ProfessorName: prof.Name,
		Subject:       req.Subject,
		Difficulty:    req.Difficulty,
		Title:         req.Title,
		Question:      req.Question,
		Options:       req.Options,
		CorrectAnswer: req.CorrectAnswer,
		BasePoints:    req.BasePoints,
		ImageURL:      req.ImageURL,
		ExpiresAt:     s.now().Add(time.Duration(req.ExpiresInHours) * time.Hour),
		IsActive:      true,
	}
	if err := s.challenges.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create challenge: %w", err)
	}
	return c, nil
}

// MyChallenges lists the calling professor's challenges with participant counts.
func (s *ChallengeService) MyChallenges(ctx context.Context, professorUserID uuid.UUID) ([]model.Challenge, error) {
	prof, err := s.users.GetProfessorByUserID(ctx, professorUserID)
	if err != nil {
		return nil, lookupErr(err, "professor")
	}
	list, err := s.challenges.ListByProfessor(ctx, prof.ID)
	if err != nil {
		return nil, fmt.Errorf("list challenges: %w", err)
	}
	return list, nil
}

// Delete removes a challenge and its attempts. Only the author may delete it.
func (s *ChallengeService) Delete(ctx context.Context, professorUserID, challengeID uuid.UUID) error {
	if _, err := s.owned(ctx, professorUserID, challengeID); err != nil {
		return err
	}
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		return s.challenges.Delete(ctx, challengeID)
	})
	if err != nil {
		return fmt.Errorf("delete challenge: %w", err)
	}
	return nil
}

// Stats summarises the calling professor's challenges.
func (s *ChallengeService) Stats(ctx context.Context, professorUserID uuid.UUID) (*model.ChallengeStats, error) {
	prof, err := s.users.GetProfessorByUserID(ctx, professorUserID)
	if err != nil {
		return nil, lookupErr(err, "professor")
	}
	list, err := s.challenges.ListByProfessor(ctx, prof.ID)
	if err != nil {
		return nil, fmt.Errorf("list challenges: %w", err)
	}
	attempts, err := s.attempts.ListByProfessor(ctx, prof.ID)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	return challengeStats(list, attempts, s.now()), nil
}

func challengeStats(list []model.Challenge, attempts []model.ChallengeAttempt, now time.Time) *model.ChallengeStats {
	stats := &model.ChallengeStats{TotalChallenges: len(list)}
	for i := range list {
		if list[i].Open(now) {
			stats.ActiveChallenges++
		}
	}

	students := make(map[uuid.UUID]struct{})
	var points, correct int
	for _, a := range attempts {
		students[a.StudentID] = struct{}{}
		points += a.PointsEarned
		if a.IsCorrect {
			correct++
		}
	}
	stats.TotalParticipants = len(students)
	if len(attempts) > 0 {
		stats.AveragePoints = math.Round(float64(points)/float64(len(attempts))*100) / 100
		stats.SuccessRate = math.Round(float64(correct)/float64(len(attempts))*10000) / 100
	}
	return stats
}

// Attempts lists every attempt on one of the caller's challenges, best first.
func (s *ChallengeService) Attempts(ctx context.Context, professorUserID, challengeID uuid.UUID) ([]model.ChallengeAttempt, error) {
	if _, err := s.owned(ctx, professorUserID, challengeID); err != nil {
		return nil, err
	}
	list, err := s.attempts.ListByChallenge(ctx, challengeID)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].PointsEarned > list[j].PointsEarned })
	return list, nil
}

// ActiveList returns open challenges for the calling student, without answers.
func (s *ChallengeService) ActiveList(ctx context.Context, studentUserID uuid.UUID) ([]model.ChallengeForStudent, error) {
	student, err := s.users.GetStudentByUserID(ctx, studentUserID)
	if err != nil {
		return nil, lookupErr(err, "student")
	}
	list, err := s.challenges.ListActive(ctx, s.now())
	if err != nil {
		return nil, fmt.Errorf("list active challenges: %w", err)
	}
	mine, err := s.attempts.ListByStudent(ctx, student.ID)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	byChallenge := make(map[uuid.UUID]model.ChallengeAttempt, len(mine))
	for _, a := range mine {
		byChallenge[a.ChallengeID] = a
	}

	out := make([]model.ChallengeForStudent, 0, len(list))
	for _, c := range list {
		a := byChallenge[c.ID]
		out = append(out, model.ChallengeForStudent{
			ID:            c.ID,
			ProfessorName: c.ProfessorName,
			Subject:       c.Subject,
			Difficulty:    c.Difficulty,
			Title:         c.Title,
			Question:      c.Question,
			Options:       c.Options,
			BasePoints:    c.BasePoints,
			ImageURL:      c.ImageURL,
			ExpiresAt:     c.ExpiresAt,
			Attempts:      a.Attempts,
			Solved:        a.IsCorrect,
		})
	}
	return out, nil
}

// SubmitAnswer grades one answer. The attempt row is locked for the whole check-then-act sequence.
func (s *ChallengeService) SubmitAnswer(ctx context.Context, studentUserID, challengeID uuid.UUID, selected int) (*model.ChallengeAnswerResult, error) {
	var result *model.ChallengeAnswerResult

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		challenge, err := s.challenges.GetByID(ctx, challengeID)
		if err != nil {
			return lookupErr(err, "challenge")
		}
		student, err := s.users.GetStudentByUserID(ctx, studentUserID)
		if err != nil {
			return lookupErr(err, "student")
		}

		now := s.now()
		if !challenge.Open(now) {
			return ErrChallengeInactive
		}

		attempt, err := s.attempts.GetForUpdate(ctx, challengeID, student.ID)
		isNew := errors.Is(err, pgx.ErrNoRows)
		switch {
		case isNew:
			attempt = &model.ChallengeAttempt{ID: uuid.New(), ChallengeID: challengeID, StudentID: student.ID}
		case err != nil:
			return fmt.Errorf("load attempt: %w", err)
		}

		if attempt.IsCorrect {
			return ErrChallengeSolved
		}
		if attempt.Attempts >= model.ChallengeMaxAttempts {
			return ErrMaxAttemptsReached
		}

		attempt.Attempts++
		correct := selected == challenge.CorrectAnswer
		final := attempt.Attempts >= model.ChallengeMaxAttempts || correct

		if correct {
			attempt.IsCorrect = true
			attempt.PointsEarned = PointsFor(challenge.BasePoints, challenge.Difficulty, attempt.Attempts)
		}
		if final {
			attempt.CompletedAt = &now
		}

		if isNew {
			err = s.attempts.Create(ctx, attempt)
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrChallengeAnswered
			}
		} else {
			err = s.attempts.Update(ctx, attempt)
		}
		if err != nil {
			return fmt.Errorf("save attempt: %w", err)
		}

		result = &model.ChallengeAnswerResult{
			Correct:        correct,
			PointsEarned:   attempt.PointsEarned,
			AttemptNumber:  attempt.Attempts,
			IsFinalAttempt: final,
		}
		if final {
			answer := challenge.CorrectAnswer
			result.CorrectAnswer = &answer
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Debug().
		Str("challenge_id", challengeID.String()).
		Bool("correct", result.Correct).
		Int("attempt", result.AttemptNumber).
		Int("points", result.PointsEarned).
		Msg("Challenge answer graded")
	return result, nil
}

// MyAttempts lists the calling student's attempts.
func (s *ChallengeService) MyAttempts(ctx context.Context, studentUserID uuid.UUID) ([]model.ChallengeAttempt, error) {
	student, err := s.users.GetStudentByUserID(ctx, studentUserID)
	if err != nil {
		return nil, lookupErr(err, "student")
	}
	list, err := s.attempts.ListByStudent(ctx, student.ID)
	if err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	return list, nil
}

// Leaderboard ranks students by total points. The store returns rows already ordered
// and truncated; equal totals keep first-come order.
func (s *ChallengeService) Leaderboard(ctx context.Context, limit int) ([]model.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = defaultLeaderboardSize
	}
	rows, err := s.attempts.Leaderboard(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: %w", err)
	}
	return rankLeaderboard(rows), nil
}

func rankLeaderboard(rows []model.LeaderboardEntry) []model.LeaderboardEntry {
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].TotalPoints > rows[j].TotalPoints })
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows
}

func (s *ChallengeService) owned(ctx context.Context, professorUserID, challengeID uuid.UUID) (*model.Challenge, error) {
	c, err := s.challenges.GetByID(ctx, challengeID)
	if err != nil {
		return nil, lookupErr(err, "challenge")
	}
	prof, err := s.users.GetProfessorByUserID(ctx, professorUserID)
	if err != nil {
		return nil, lookupErr(err, "professor")
	}
	if c.ProfessorID != prof.ID {
		return nil, ErrNotChallengeOwner
	}
	return c, nil
}
