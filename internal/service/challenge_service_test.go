package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/easylearn/easylearn-backend/internal/model"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

func TestPointsFor(t *testing.T) {
	tests := []struct {
		base       int
		difficulty model.Difficulty
		attempt    int
		want       int
	}{
		{100, model.DifficultyEasy, 1, 100},
		{100, model.DifficultyEasy, 2, 50},
		{100, model.DifficultyMedium, 1, 150},
		{100, model.DifficultyMedium, 2, 75},
		{100, model.DifficultyHard, 1, 200},
		{100, model.DifficultyHard, 2, 100},
		{15, model.DifficultyEasy, 2, 8},
		{15, model.DifficultyMedium, 1, 23},
		{15, model.DifficultyMedium, 2, 12},
		{10, model.Difficulty("unknown"), 1, 10},
	}
	for _, tt := range tests {
		if got := PointsFor(tt.base, tt.difficulty, tt.attempt); got != tt.want {
			t.Fatalf("PointsFor(%d, %s, %d) = %d, want %d", tt.base, tt.difficulty, tt.attempt, got, tt.want)
		}
	}
}

type challengeFixture struct {
	db  *memDB
	svc *ChallengeService
	now time.Time
}

func newChallengeFixture(t *testing.T) *challengeFixture {
	t.Helper()
	f := &challengeFixture{db: newMemDB(), now: time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)}
	f.svc = NewChallengeService(&fakeTx{}, fakeChallenges{f.db}, fakeAttempts{f.db}, fakeUsers{f.db}, zerolog.Nop())
	f.svc.now = func() time.Time { return f.now }
	return f
}

func (f *challengeFixture) create(t *testing.T, prof model.Principal, difficulty model.Difficulty, base int) *model.Challenge {
	t.Helper()
	c, err := f.svc.Create(context.Background(), prof.UserID, &model.CreateChallengeRequest{
		Subject:        model.SubjectMathematics,
		Difficulty:     difficulty,
		Title:          "Derivatives",
		Question:       "d/dx x^2 = ?",
		Options:        []string{"x", "2x", "x^2", "2"},
		CorrectAnswer:  1,
		BasePoints:     base,
		ExpiresInHours: 24,
	})
	if err != nil {
		t.Fatalf("create challenge: %v", err)
	}
	return c
}

func TestCreateChallengeValidation(t *testing.T) {
	f := newChallengeFixture(t)
	prof, _ := f.db.addProfessor("Prof. Idrissi")
	ctx := context.Background()

	base := model.CreateChallengeRequest{
		Subject: model.SubjectPhysics, Difficulty: model.DifficultyEasy, Title: "T", Question: "Q",
		Options: []string{"a", "b", "c", "d"}, CorrectAnswer: 0, BasePoints: 50, ExpiresInHours: 2,
	}

	bad := base
	bad.Options = []string{"a", "b", "c"}
	if _, err := f.svc.Create(ctx, prof.UserID, &bad); !errors.Is(err, ErrInvalidChallengeOptions) {
		t.Fatalf("three options: got %v", err)
	}
	bad = base
	bad.CorrectAnswer = 4
	if _, err := f.svc.Create(ctx, prof.UserID, &bad); !errors.Is(err, ErrInvalidChallengeOptions) {
		t.Fatalf("answer out of range: got %v", err)
	}
	bad = base
	bad.BasePoints = 201
	if _, err := f.svc.Create(ctx, prof.UserID, &bad); !errors.Is(err, ErrInvalidBasePoints) {
		t.Fatalf("base points: got %v", err)
	}
	bad = base
	bad.ExpiresInHours = 169
	if _, err := f.svc.Create(ctx, prof.UserID, &bad); !errors.Is(err, ErrInvalidChallengeExpiry) {
		t.Fatalf("expiry: got %v", err)
	}

	c, err := f.svc.Create(ctx, prof.UserID, &base)
	if err != nil {
		t.Fatalf("valid create: %v", err)
	}
	if !c.ExpiresAt.Equal(f.now.Add(2 * time.Hour)) {
		t.Fatalf("expected expiry two hours from now, got %v", c.ExpiresAt)
	}
}

func TestSubmitCorrectFirstAttempt(t *testing.T) {
	f := newChallengeFixture(t)
	prof, _ := f.db.addProfessor("Prof. Idrissi")
	student, _ := f.db.addStudent("Amine", "EL00000001")
	c := f.create(t, prof, model.DifficultyMedium, 100)
	ctx := context.Background()

	res, err := f.svc.SubmitAnswer(ctx, student.UserID, c.ID, 1)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if !res.Correct || res.PointsEarned != 150 || res.AttemptNumber != 1 || !res.IsFinalAttempt {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.CorrectAnswer == nil || *res.CorrectAnswer != 1 {
		t.Fatalf("expected answer revealed once resolved")
	}

	if _, err := f.svc.SubmitAnswer(ctx, student.UserID, c.ID, 1); !errors.Is(err, ErrChallengeSolved) {
		t.Fatalf("resubmit after solving: got %v", err)
	}
}

func TestSubmitWrongThenRightHalvesPoints(t *testing.T) {
	f := newChallengeFixture(t)
	prof, _ := f.db.addProfessor("Prof. Idrissi")
	student, _ := f.db.addStudent("Amine", "EL00000001")
	c := f.create(t, prof, model.DifficultyHard, 100)
	ctx := context.Background()

	res, err := f.svc.SubmitAnswer(ctx, student.UserID, c.ID, 0)
	if err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if res.Correct || res.PointsEarned != 0 || res.IsFinalAttempt {
		t.Fatalf("unexpected first result %+v", res)
	}
	if res.CorrectAnswer != nil {
		t.Fatalf("answer must stay hidden before the final attempt")
	}

	res, err = f.svc.SubmitAnswer(ctx, student.UserID, c.ID, 1)
	if err != nil {
		t.Fatalf("second submit: %v", err)
	}
	if !res.Correct || res.PointsEarned != 100 || res.AttemptNumber != 2 || !res.IsFinalAttempt {
		t.Fatalf("unexpected second result %+v", res)
	}
}

func TestSubmitExhaustsAttempts(t *testing.T) {
	f := newChallengeFixture(t)
	prof, _ := f.db.addProfessor("Prof. Idrissi")
	student, s := f.db.addStudent("Amine", "EL00000001")
	c := f.create(t, prof, model.DifficultyEasy, 100)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := f.svc.SubmitAnswer(ctx, student.UserID, c.ID, 3); err != nil {
			t.Fatalf("attempt %d: %v", i+1, err)
		}
	}
	a := f.db.attempts[[2]uuid.UUID{c.ID, s.ID}]
	if a.Attempts != 2 || a.IsCorrect || a.PointsEarned != 0 || a.CompletedAt == nil {
		t.Fatalf("unexpected attempt after two misses %+v", a)
	}

	if _, err := f.svc.SubmitAnswer(ctx, student.UserID, c.ID, 1); !errors.Is(err, ErrMaxAttemptsReached) {
		t.Fatalf("third attempt: got %v", err)
	}
}

func TestSubmitExpiredChallenge(t *testing.T) {
	f := newChallengeFixture(t)
	prof, _ := f.db.addProfessor("Prof. Idrissi")
	student, _ := f.db.addStudent("Amine", "EL00000001")
	c := f.create(t, prof, model.DifficultyEasy, 100)

	f.now = c.ExpiresAt
	if _, err := f.svc.SubmitAnswer(context.Background(), student.UserID, c.ID, 1); !errors.Is(err, ErrChallengeInactive) {
		t.Fatalf("expected inactive at expiry instant, got %v", err)
	}
	if _, err := f.svc.SubmitAnswer(context.Background(), student.UserID, uuid.New(), 1); !isKind(err, ErrNotFound) {
		t.Fatalf("unknown challenge: got %v", err)
	}
}

func TestConcurrentSubmitsNeverExceedAttempts(t *testing.T) {
	f := newChallengeFixture(t)
	prof, _ := f.db.addProfessor("Prof. Idrissi")
	student, s := f.db.addStudent("Amine", "EL00000001")
	c := f.create(t, prof, model.DifficultyEasy, 100)

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = f.svc.SubmitAnswer(context.Background(), student.UserID, c.ID, 0)
		}()
	}
	wg.Wait()

	if a := f.db.attempts[[2]uuid.UUID{c.ID, s.ID}]; a.Attempts != model.ChallengeMaxAttempts {
		t.Fatalf("expected %d attempts recorded, got %d", model.ChallengeMaxAttempts, a.Attempts)
	}
}

func TestActiveListHidesAnswers(t *testing.T) {
	f := newChallengeFixture(t)
	prof, _ := f.db.addProfessor("Prof. Idrissi")
	student, _ := f.db.addStudent("Amine", "EL00000001")
	solved := f.create(t, prof, model.DifficultyEasy, 100)
	f.create(t, prof, model.DifficultyEasy, 100)
	ctx := context.Background()

	if _, err := f.svc.SubmitAnswer(ctx, student.UserID, solved.ID, 1); err != nil {
		t.Fatalf("submit: %v", err)
	}

	list, err := f.svc.ActiveList(ctx, student.UserID)
	if err != nil {
		t.Fatalf("active list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 open challenges, got %d", len(list))
	}
	for _, c := range list {
		if c.ID == solved.ID && (!c.Solved || c.Attempts != 1) {
			t.Fatalf("expected solved challenge flagged, got %+v", c)
		}
	}

	f.now = f.now.Add(25 * time.Hour)
	if list, _ := f.svc.ActiveList(ctx, student.UserID); len(list) != 0 {
		t.Fatalf("expected no open challenges after expiry, got %d", len(list))
	}
}

func TestDeleteChallengeOwnerOnly(t *testing.T) {
	f := newChallengeFixture(t)
	owner, _ := f.db.addProfessor("Prof. Idrissi")
	other, _ := f.db.addProfessor("Prof. Tazi")
	c := f.create(t, owner, model.DifficultyEasy, 100)
	ctx := context.Background()

	if err := f.svc.Delete(ctx, other.UserID, c.ID); !errors.Is(err, ErrNotChallengeOwner) {
		t.Fatalf("non-owner delete: got %v", err)
	}
	if err := f.svc.Delete(ctx, owner.UserID, c.ID); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if _, ok := f.db.challenges[c.ID]; ok {
		t.Fatalf("challenge still stored")
	}
}

func TestLeaderboardTiesKeepFirstComeOrder(t *testing.T) {
	f := newChallengeFixture(t)
	prof, _ := f.db.addProfessor("Prof. Idrissi")
	early, _ := f.db.addStudent("Early", "EL00000001")
	late, _ := f.db.addStudent("Late", "EL00000002")
	top, _ := f.db.addStudent("Top", "EL00000003")
	easy := f.create(t, prof, model.DifficultyEasy, 100)
	hard := f.create(t, prof, model.DifficultyHard, 100)
	ctx := context.Background()

	submit := func(p model.Principal, c *model.Challenge) {
		t.Helper()
		if _, err := f.svc.SubmitAnswer(ctx, p.UserID, c.ID, 1); err != nil {
			t.Fatalf("submit: %v", err)
		}
		f.now = f.now.Add(time.Minute)
	}
	submit(early, easy)
	submit(late, easy)
	submit(top, hard)

	board, err := f.svc.Leaderboard(ctx, 0)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(board) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(board))
	}
	want := []struct {
		id     uuid.UUID
		points int
	}{
		{f.studentID(t, top), 200},
		{f.studentID(t, early), 100},
		{f.studentID(t, late), 100},
	}
	for i, w := range want {
		if board[i].StudentID != w.id || board[i].TotalPoints != w.points || board[i].Rank != i+1 {
			t.Fatalf("rank %d: got %+v", i+1, board[i])
		}
	}
	if board[0].PerfectAnswers != 1 {
		t.Fatalf("expected perfect answer counted, got %d", board[0].PerfectAnswers)
	}
}

func TestLeaderboardLimitKeepsHighestScorers(t *testing.T) {
	f := newChallengeFixture(t)
	prof, _ := f.db.addProfessor("Prof. Idrissi")
	first, _ := f.db.addStudent("First", "EL00000011")
	later, _ := f.db.addStudent("Later", "EL00000012")
	easy := f.create(t, prof, model.DifficultyEasy, 10)
	hard := f.create(t, prof, model.DifficultyHard, 200)
	ctx := context.Background()

	if _, err := f.svc.SubmitAnswer(ctx, first.UserID, easy.ID, 1); err != nil {
		t.Fatalf("submit: %v", err)
	}
	f.now = f.now.Add(time.Minute)
	if _, err := f.svc.SubmitAnswer(ctx, later.UserID, hard.ID, 1); err != nil {
		t.Fatalf("submit: %v", err)
	}

	board, err := f.svc.Leaderboard(ctx, 1)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(board) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(board))
	}
	want := PointsFor(200, model.DifficultyHard, 1)
	if board[0].StudentID != f.studentID(t, later) || board[0].TotalPoints != want || board[0].Rank != 1 {
		t.Fatalf("rank 1 = %+v, want the %d-point student", board[0], want)
	}
}

func (f *challengeFixture) studentID(t *testing.T, p model.Principal) uuid.UUID {
	t.Helper()
	s, err := fakeUsers{f.db}.GetStudentByUserID(context.Background(), p.UserID)
	if err != nil {
		t.Fatalf("student: %v", err)
	}
	return s.ID
}

func TestChallengeStats(t *testing.T) {
	now := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	s1, s2 := uuid.New(), uuid.New()
	list := []model.Challenge{
		{IsActive: true, ExpiresAt: now.Add(time.Hour)},
		{IsActive: true, ExpiresAt: now.Add(-time.Hour)},
		{IsActive: false, ExpiresAt: now.Add(time.Hour)},
	}
	attempts := []model.ChallengeAttempt{
		{StudentID: s1, PointsEarned: 100, IsCorrect: true},
		{StudentID: s1, PointsEarned: 0},
		{StudentID: s2, PointsEarned: 75, IsCorrect: true},
	}

	stats := challengeStats(list, attempts, now)
	if stats.TotalChallenges != 3 || stats.ActiveChallenges != 1 || stats.TotalParticipants != 2 {
		t.Fatalf("unexpected counts %+v", stats)
	}
	if stats.AveragePoints != 58.33 {
		t.Fatalf("expected average 58.33, got %v", stats.AveragePoints)
	}
	if stats.SuccessRate != 66.67 {
		t.Fatalf("expected success rate 66.67, got %v", stats.SuccessRate)
	}

	empty := challengeStats(nil, nil, now)
	if empty.AveragePoints != 0 || empty.SuccessRate != 0 {
		t.Fatalf("expected zero stats, got %+v", empty)
	}
}
