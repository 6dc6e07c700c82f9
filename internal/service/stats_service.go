package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/easylearn/easylearn-backend/internal/model"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// StatsService builds dashboard rollups. Independent counts run concurrently.
type StatsService struct {
	stats StatsStore
	users UserStore
	now   func() time.Time
}

// NewStatsService creates a new StatsService.
func NewStatsService(stats StatsStore, users UserStore) *StatsService {
	return &StatsService{stats: stats, users: users, now: time.Now}
}

// Admin returns platform-wide counts.
func (s *StatsService) Admin(ctx context.Context) (*model.AdminStats, error) {
	out := &model.AdminStats{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		out.TotalStudents, err = s.stats.CountUsersByRole(gctx, model.RoleStudent)
		return err
	})
	g.Go(func() (err error) {
		out.TotalProfessors, err = s.stats.CountUsersByRole(gctx, model.RoleProfessor)
		return err
	})
	g.Go(func() (err error) {
		out.RoomsByStatus, err = s.stats.CountRoomsByStatus(gctx, nil)
		return err
	})
	g.Go(func() error {
		n, avg, err := s.stats.EvaluationAggregate(gctx, nil, nil)
		out.TotalEvaluations, out.AverageScore = n, round2(avg)
		return err
	})
	g.Go(func() (err error) {
		out.UnusedAccessCodes, err = s.stats.CountUnusedAccessTokens(gctx, s.now())
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("admin stats: %w", err)
	}
	return out, nil
}

// Professor returns the calling professor's counts.
func (s *StatsService) Professor(ctx context.Context, professorUserID uuid.UUID) (*model.ProfessorStats, error) {
	prof, err := s.users.GetProfessorByUserID(ctx, professorUserID)
	if err != nil {
		return nil, lookupErr(err, "professor")
	}
	id := prof.ID

	out := &model.ProfessorStats{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.RoomsByStatus, err = s.stats.CountRoomsByStatus(gctx, &id)
		return err
	})
	g.Go(func() (err error) {
		out.DistinctStudents, err = s.stats.CountDistinctStudents(gctx, id)
		return err
	})
	g.Go(func() (err error) {
		out.TotalEvaluations, _, err = s.stats.EvaluationAggregate(gctx, &id, nil)
		return err
	})
	g.Go(func() (err error) {
		out.TotalQuizzes, err = s.stats.CountQuizzes(gctx, id)
		return err
	})
	g.Go(func() (err error) {
		out.TotalChallenges, err = s.stats.CountChallenges(gctx, id)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("professor stats: %w", err)
	}
	return out, nil
}

// Student returns the calling student's counts.
func (s *StatsService) Student(ctx context.Context, studentUserID uuid.UUID) (*model.StudentStats, error) {
	student, err := s.users.GetStudentByUserID(ctx, studentUserID)
	if err != nil {
		return nil, lookupErr(err, "student")
	}
	id := student.ID

	out := &model.StudentStats{}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.SessionsAttended, err = s.stats.CountAttendedSessions(gctx, id)
		return err
	})
	g.Go(func() (err error) {
		out.UpcomingSessions, err = s.stats.CountUpcomingSessions(gctx, id, s.now())
		return err
	})
	g.Go(func() error {
		n, avg, err := s.stats.EvaluationAggregate(gctx, nil, &id)
		out.TotalEvaluations, out.AverageScore = n, round2(avg)
		return err
	})
	g.Go(func() (err error) {
		out.ChallengePoints, err = s.stats.SumChallengePoints(gctx, id)
		return err
	})
	g.Go(func() (err error) {
		out.QuizzesPassed, err = s.stats.CountQuizzesPassed(gctx, id)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("student stats: %w", err)
	}
	return out, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
