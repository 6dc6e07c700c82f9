package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/easylearn/easylearn-backend/internal/model"
	"github.com/easylearn/easylearn-backend/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// memDB is an in-memory stand-in for PostgreSQL. Each store type below is a
// view over it so services see the same data they would through the repositories.
type memDB struct {
	mu sync.Mutex

	users      map[uuid.UUID]model.User
	students   map[uuid.UUID]model.Student
	professors map[uuid.UUID]model.Professor
	tokens     map[string]model.AccessToken

	rooms          map[uuid.UUID]model.Room
	participants   map[[2]uuid.UUID]model.RoomParticipant
	providerTokens []model.ProviderToken

	challenges map[uuid.UUID]model.Challenge
	attempts   map[[2]uuid.UUID]model.ChallengeAttempt

	quizzes map[uuid.UUID]model.Quiz
	results map[[2]uuid.UUID]model.QuizResult
}

func newMemDB() *memDB {
	return &memDB{
		users:        map[uuid.UUID]model.User{},
		students:     map[uuid.UUID]model.Student{},
		professors:   map[uuid.UUID]model.Professor{},
		tokens:       map[string]model.AccessToken{},
		rooms:        map[uuid.UUID]model.Room{},
		participants: map[[2]uuid.UUID]model.RoomParticipant{},
		challenges:   map[uuid.UUID]model.Challenge{},
		attempts:     map[[2]uuid.UUID]model.ChallengeAttempt{},
		quizzes:      map[uuid.UUID]model.Quiz{},
		results:      map[[2]uuid.UUID]model.QuizResult{},
	}
}

// ─── Transactor ─────────────────────────────────────────────────────

type txMarker struct{}

// fakeTx serializes transactions, which is enough to emulate row locks.
type fakeTx struct {
	mu sync.Mutex
}

func (t *fakeTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txMarker{}) != nil {
		return fn(ctx)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return fn(context.WithValue(ctx, txMarker{}, true))
}

// ─── Users ──────────────────────────────────────────────────────────

type fakeUsers struct{ db *memDB }

func (f fakeUsers) CreateUser(_ context.Context, u *model.User) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if u.Email != nil {
		for _, other := range f.db.users {
			if other.Email != nil && *other.Email == *u.Email {
				return repository.ErrDuplicate
			}
		}
	}
	f.db.users[u.ID] = *u
	return nil
}

func (f fakeUsers) CreateStudent(_ context.Context, s *model.Student) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	f.db.students[s.ID] = *s
	return nil
}

func (f fakeUsers) CreateProfessor(_ context.Context, p *model.Professor) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	f.db.professors[p.ID] = *p
	return nil
}

func (f fakeUsers) GetUserByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if u, ok := f.db.users[id]; ok {
		return &u, nil
	}
	return nil, pgx.ErrNoRows
}

func (f fakeUsers) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, u := range f.db.users {
		if u.Email != nil && *u.Email == email {
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f fakeUsers) GetUserByStudentCode(_ context.Context, code string) (*model.User, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, s := range f.db.students {
		if s.UniqueCode == code {
			u := f.db.users[s.UserID]
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f fakeUsers) GetStudentByID(_ context.Context, id uuid.UUID) (*model.Student, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if s, ok := f.db.students[id]; ok {
		return &s, nil
	}
	return nil, pgx.ErrNoRows
}

func (f fakeUsers) GetStudentByUserID(_ context.Context, userID uuid.UUID) (*model.Student, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, s := range f.db.students {
		if s.UserID == userID {
			return &s, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f fakeUsers) GetProfessorByID(_ context.Context, id uuid.UUID) (*model.Professor, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if p, ok := f.db.professors[id]; ok {
		return &p, nil
	}
	return nil, pgx.ErrNoRows
}

func (f fakeUsers) GetProfessorByUserID(_ context.Context, userID uuid.UUID) (*model.Professor, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, p := range f.db.professors {
		if p.UserID == userID {
			return &p, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f fakeUsers) UpdateStudentLevel(_ context.Context, studentID uuid.UUID, level model.LanguageLevel) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	s, ok := f.db.students[studentID]
	if !ok {
		return pgx.ErrNoRows
	}
	s.Level = level
	f.db.students[studentID] = s
	return nil
}

func (f fakeUsers) UpdateUser(_ context.Context, u *model.User) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	stored, ok := f.db.users[u.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	stored.Name, stored.Avatar = u.Name, u.Avatar
	f.db.users[u.ID] = stored
	// Profiles read name and avatar through a join.
	for id, s := range f.db.students {
		if s.UserID == u.ID {
			s.Name, s.Avatar = u.Name, u.Avatar
			f.db.students[id] = s
		}
	}
	for id, p := range f.db.professors {
		if p.UserID == u.ID {
			p.Name, p.Avatar = u.Name, u.Avatar
			f.db.professors[id] = p
		}
	}
	return nil
}

func (f fakeUsers) UpdateStudent(_ context.Context, s *model.Student) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	stored, ok := f.db.students[s.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	stored.Nickname, stored.Bio, stored.Level = s.Nickname, s.Bio, s.Level
	f.db.students[s.ID] = stored
	return nil
}

func (f fakeUsers) UpdateProfessor(_ context.Context, p *model.Professor) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	stored, ok := f.db.professors[p.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	stored.Bio, stored.Languages, stored.Specialization = p.Bio, p.Languages, p.Specialization
	f.db.professors[p.ID] = stored
	return nil
}

func (f fakeUsers) DeleteUser(_ context.Context, id uuid.UUID) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	delete(f.db.users, id)
	for sid, s := range f.db.students {
		if s.UserID == id {
			delete(f.db.students, sid)
		}
	}
	for pid, p := range f.db.professors {
		if p.UserID == id {
			delete(f.db.professors, pid)
		}
	}
	return nil
}

func (f fakeUsers) ListStudents(_ context.Context, pf model.ProfileFilter) ([]model.Student, int, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []model.Student
	for _, s := range f.db.students {
		if f.createdBy(s.UserID, pf.CreatedBy) {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	lo, hi := pageBounds(len(out), pf.Page, pf.PerPage)
	return append([]model.Student{}, out[lo:hi]...), len(out), nil
}

func (f fakeUsers) StudentsByIDs(_ context.Context, ids []uuid.UUID) ([]model.Student, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := []model.Student{}
	for _, id := range ids {
		if s, ok := f.db.students[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f fakeUsers) ListProfessors(_ context.Context, pf model.ProfileFilter) ([]model.Professor, int, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []model.Professor
	for _, p := range f.db.professors {
		if f.createdBy(p.UserID, pf.CreatedBy) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	lo, hi := pageBounds(len(out), pf.Page, pf.PerPage)
	return append([]model.Professor{}, out[lo:hi]...), len(out), nil
}

// createdBy must be called with db.mu held.
func (f fakeUsers) createdBy(userID uuid.UUID, admin *uuid.UUID) bool {
	if admin == nil {
		return true
	}
	u := f.db.users[userID]
	return u.CreatedBy != nil && *u.CreatedBy == *admin
}

// ─── Access tokens ──────────────────────────────────────────────────

type fakeAccessTokens struct{ db *memDB }

func (f fakeAccessTokens) Create(_ context.Context, t *model.AccessToken) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.tokens[t.Token]; ok {
		return repository.ErrDuplicate
	}
	f.db.tokens[t.Token] = *t
	return nil
}

func (f fakeAccessTokens) Consume(_ context.Context, token string, role model.Role, usedBy uuid.UUID, now time.Time) (*model.AccessToken, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	t, ok := f.db.tokens[token]
	if !ok || t.Role != role || t.IsUsed || !now.Before(t.ExpiresAt) {
		return nil, pgx.ErrNoRows
	}
	t.IsUsed, t.UsedBy, t.UsedAt = true, &usedBy, &now
	f.db.tokens[token] = t
	return &t, nil
}

func (f fakeAccessTokens) ListAvailable(_ context.Context, role *model.Role, now time.Time) ([]model.AccessToken, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := []model.AccessToken{}
	for _, t := range f.db.tokens {
		if t.IsUsed || !now.Before(t.ExpiresAt) || (role != nil && t.Role != *role) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (f fakeAccessTokens) DeleteExpiredUnused(_ context.Context, now time.Time) (int64, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var n int64
	for k, t := range f.db.tokens {
		if !t.IsUsed && !now.Before(t.ExpiresAt) {
			delete(f.db.tokens, k)
			n++
		}
	}
	return n, nil
}

// ─── Rooms and participants ─────────────────────────────────────────

type fakeRooms struct{ db *memDB }

func (f fakeRooms) Create(_ context.Context, r *model.Room) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	f.db.rooms[r.ID] = *r
	return nil
}

func (f fakeRooms) GetByID(_ context.Context, id uuid.UUID) (*model.Room, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	r, ok := f.db.rooms[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	r.ParticipantCount = 0
	for k := range f.db.participants {
		if k[0] == id {
			r.ParticipantCount++
		}
	}
	return &r, nil
}

func (f fakeRooms) Update(_ context.Context, r *model.Room) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	stored, ok := f.db.rooms[r.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	stored.Name, stored.Objective, stored.ScheduledAt = r.Name, r.Objective, r.ScheduledAt
	stored.DurationMinutes, stored.MaxStudents = r.DurationMinutes, r.MaxStudents
	f.db.rooms[r.ID] = stored
	return nil
}

func (f fakeRooms) TransitionStatus(_ context.Context, id uuid.UUID, from, to model.RoomStatus) (bool, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	r, ok := f.db.rooms[id]
	if !ok || r.Status != from {
		return false, nil
	}
	r.Status = to
	f.db.rooms[id] = r
	return true, nil
}

func (f fakeRooms) EnsureExternalName(_ context.Context, id uuid.UUID, name string) (string, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	r, ok := f.db.rooms[id]
	if !ok {
		return "", pgx.ErrNoRows
	}
	if r.ExternalRoomName == nil {
		r.ExternalRoomName = &name
		f.db.rooms[id] = r
	}
	return *r.ExternalRoomName, nil
}

func (f fakeRooms) Delete(_ context.Context, id uuid.UUID) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	delete(f.db.rooms, id)
	for k := range f.db.participants {
		if k[0] == id {
			delete(f.db.participants, k)
		}
	}
	return nil
}

func (f fakeRooms) List(_ context.Context, fl model.RoomFilter) ([]model.Room, int, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := []model.Room{}
	for _, r := range f.db.rooms {
		if fl.Status != nil && r.Status != *fl.Status {
			continue
		}
		if fl.ProfessorID != nil && (r.ProfessorID == nil || *r.ProfessorID != *fl.ProfessorID) {
			continue
		}
		if fl.StudentID != nil {
			if _, ok := f.db.participants[[2]uuid.UUID{r.ID, *fl.StudentID}]; !ok {
				continue
			}
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledAt.Before(out[j].ScheduledAt) })
	return out, len(out), nil
}

type fakeParticipants struct{ db *memDB }

func (f fakeParticipants) Create(_ context.Context, p *model.RoomParticipant) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	key := [2]uuid.UUID{p.RoomID, p.StudentID}
	if _, ok := f.db.participants[key]; ok {
		return repository.ErrDuplicate
	}
	f.db.participants[key] = *p
	return nil
}

func (f fakeParticipants) Get(_ context.Context, roomID, studentID uuid.UUID) (*model.RoomParticipant, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if p, ok := f.db.participants[[2]uuid.UUID{roomID, studentID}]; ok {
		return &p, nil
	}
	return nil, pgx.ErrNoRows
}

func (f fakeParticipants) ListByRoom(_ context.Context, roomID uuid.UUID) ([]model.RoomParticipant, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := []model.RoomParticipant{}
	for k, p := range f.db.participants {
		if k[0] == roomID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f fakeParticipants) update(roomID, studentID uuid.UUID, fn func(p *model.RoomParticipant)) (*model.RoomParticipant, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	key := [2]uuid.UUID{roomID, studentID}
	p, ok := f.db.participants[key]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	fn(&p)
	f.db.participants[key] = p
	return &p, nil
}

func (f fakeParticipants) MarkJoined(_ context.Context, roomID, studentID uuid.UUID, at time.Time) error {
	_, err := f.update(roomID, studentID, func(p *model.RoomParticipant) {
		if p.JoinedAt == nil {
			p.JoinedAt = &at
		}
	})
	return err
}

func (f fakeParticipants) MarkLeft(_ context.Context, roomID, studentID uuid.UUID, at time.Time) error {
	_, err := f.update(roomID, studentID, func(p *model.RoomParticipant) {
		if p.LeftAt == nil {
			p.LeftAt = &at
		}
	})
	return err
}

func (f fakeParticipants) CountActive(_ context.Context, roomID uuid.UUID) (int, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	n := 0
	for k, p := range f.db.participants {
		if k[0] == roomID && p.Active() {
			n++
		}
	}
	return n, nil
}

func (f fakeParticipants) SetMuted(_ context.Context, roomID, studentID uuid.UUID, muted bool) (*model.RoomParticipant, error) {
	return f.update(roomID, studentID, func(p *model.RoomParticipant) { p.IsMuted = muted })
}

func (f fakeParticipants) SetPinged(_ context.Context, roomID, studentID uuid.UUID, pingedAt *time.Time) (*model.RoomParticipant, error) {
	return f.update(roomID, studentID, func(p *model.RoomParticipant) {
		p.IsPinged, p.PingedAt = pingedAt != nil, pingedAt
	})
}

type fakeProviderTokens struct{ db *memDB }

func (f fakeProviderTokens) Create(_ context.Context, t *model.ProviderToken) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	f.db.providerTokens = append(f.db.providerTokens, *t)
	return nil
}

func (f fakeProviderTokens) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	kept := f.db.providerTokens[:0]
	var n int64
	for _, t := range f.db.providerTokens {
		if now.Before(t.ExpiresAt) {
			kept = append(kept, t)
		} else {
			n++
		}
	}
	f.db.providerTokens = kept
	return n, nil
}

// fakeProvider records provider calls and can be told to fail.
type fakeProvider struct {
	mu          sync.Mutex
	createCalls int
	created     map[string]int
	deleted     []string
	createErr   error
	deleteErr   error
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{created: map[string]int{}}
}

func (p *fakeProvider) CreateRoom(_ context.Context, name string, maxParticipants int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.createCalls++
	if p.createErr != nil {
		return p.createErr
	}
	p.created[name] = maxParticipants
	return nil
}

func (p *fakeProvider) DeleteRoom(_ context.Context, name string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deleted = append(p.deleted, name)
	return p.deleteErr
}

func (p *fakeProvider) IssueJoinToken(roomName, identity, _ string, canPublish bool) (*model.JoinCredential, error) {
	return &model.JoinCredential{
		Token:      "tok-" + identity,
		Identity:   identity,
		RoomName:   roomName,
		CanPublish: canPublish,
		ExpiresAt:  time.Now().Add(time.Hour),
	}, nil
}

func (p *fakeProvider) createCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.createCalls
}

type fakeEvents struct {
	mu     sync.Mutex
	events []model.RoomEvent
}

func (f *fakeEvents) Publish(_ context.Context, ev model.RoomEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, ev)
	return nil
}

func (f *fakeEvents) count(t model.RoomEventType) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, ev := range f.events {
		if ev.Type == t {
			n++
		}
	}
	return n
}

type fakeNotifier struct {
	mu    sync.Mutex
	ended []uuid.UUID
}

func (f *fakeNotifier) NotifyRoomEnded(_ context.Context, roomID uuid.UUID, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ended = append(f.ended, roomID)
	return nil
}

// ─── Challenges ─────────────────────────────────────────────────────

type fakeChallenges struct{ db *memDB }

func (f fakeChallenges) Create(_ context.Context, c *model.Challenge) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	f.db.challenges[c.ID] = *c
	return nil
}

func (f fakeChallenges) GetByID(_ context.Context, id uuid.UUID) (*model.Challenge, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if c, ok := f.db.challenges[id]; ok {
		return &c, nil
	}
	return nil, pgx.ErrNoRows
}

func (f fakeChallenges) Delete(_ context.Context, id uuid.UUID) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	delete(f.db.challenges, id)
	for k := range f.db.attempts {
		if k[0] == id {
			delete(f.db.attempts, k)
		}
	}
	return nil
}

func (f fakeChallenges) ListByProfessor(_ context.Context, professorID uuid.UUID) ([]model.Challenge, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := []model.Challenge{}
	for _, c := range f.db.challenges {
		if c.ProfessorID == professorID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f fakeChallenges) ListActive(_ context.Context, now time.Time) ([]model.Challenge, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := []model.Challenge{}
	for _, c := range f.db.challenges {
		if c.Open(now) {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakeAttempts struct{ db *memDB }

func (f fakeAttempts) GetForUpdate(_ context.Context, challengeID, studentID uuid.UUID) (*model.ChallengeAttempt, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if a, ok := f.db.attempts[[2]uuid.UUID{challengeID, studentID}]; ok {
		return &a, nil
	}
	return nil, pgx.ErrNoRows
}

func (f fakeAttempts) Create(_ context.Context, a *model.ChallengeAttempt) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	key := [2]uuid.UUID{a.ChallengeID, a.StudentID}
	if _, ok := f.db.attempts[key]; ok {
		return repository.ErrDuplicate
	}
	f.db.attempts[key] = *a
	return nil
}

func (f fakeAttempts) Update(_ context.Context, a *model.ChallengeAttempt) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	f.db.attempts[[2]uuid.UUID{a.ChallengeID, a.StudentID}] = *a
	return nil
}

func (f fakeAttempts) filter(keep func(a model.ChallengeAttempt) bool) []model.ChallengeAttempt {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := []model.ChallengeAttempt{}
	for _, a := range f.db.attempts {
		if keep(a) {
			out = append(out, a)
		}
	}
	return out
}

func (f fakeAttempts) ListByChallenge(_ context.Context, challengeID uuid.UUID) ([]model.ChallengeAttempt, error) {
	return f.filter(func(a model.ChallengeAttempt) bool { return a.ChallengeID == challengeID }), nil
}

func (f fakeAttempts) ListByStudent(_ context.Context, studentID uuid.UUID) ([]model.ChallengeAttempt, error) {
	return f.filter(func(a model.ChallengeAttempt) bool { return a.StudentID == studentID }), nil
}

func (f fakeAttempts) ListByProfessor(_ context.Context, professorID uuid.UUID) ([]model.ChallengeAttempt, error) {
	f.db.mu.Lock()
	owned := map[uuid.UUID]bool{}
	for _, c := range f.db.challenges {
		owned[c.ID] = c.ProfessorID == professorID
	}
	f.db.mu.Unlock()
	return f.filter(func(a model.ChallengeAttempt) bool { return owned[a.ChallengeID] }), nil
}

func (f fakeAttempts) Leaderboard(_ context.Context, limit int) ([]model.LeaderboardEntry, error) {
	correct := f.filter(func(a model.ChallengeAttempt) bool { return a.IsCorrect })

	type agg struct {
		entry model.LeaderboardEntry
		first time.Time
	}
	byStudent := map[uuid.UUID]*agg{}
	for _, a := range correct {
		g, ok := byStudent[a.StudentID]
		if !ok {
			g = &agg{entry: model.LeaderboardEntry{StudentID: a.StudentID, StudentName: a.StudentName}, first: *a.CompletedAt}
			byStudent[a.StudentID] = g
		}
		g.entry.TotalPoints += a.PointsEarned
		g.entry.ChallengesCompleted++
		if a.Attempts == 1 {
			g.entry.PerfectAnswers++
		}
		if a.CompletedAt.Before(g.first) {
			g.first = *a.CompletedAt
		}
	}

	rows := make([]*agg, 0, len(byStudent))
	for _, g := range byStudent {
		rows = append(rows, g)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].entry.TotalPoints != rows[j].entry.TotalPoints {
			return rows[i].entry.TotalPoints > rows[j].entry.TotalPoints
		}
		return rows[i].first.Before(rows[j].first)
	})

	out := []model.LeaderboardEntry{}
	for i, g := range rows {
		if i == limit {
			break
		}
		out = append(out, g.entry)
	}
	return out, nil
}

// ─── Quizzes ────────────────────────────────────────────────────────

type fakeQuizzes struct{ db *memDB }

func (f fakeQuizzes) Create(_ context.Context, q *model.Quiz) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	f.db.quizzes[q.ID] = *q
	return nil
}

func (f fakeQuizzes) GetByID(_ context.Context, id uuid.UUID) (*model.Quiz, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	q, ok := f.db.quizzes[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	q.Questions = append([]model.QuizQuestion(nil), q.Questions...)
	return &q, nil
}

func (f fakeQuizzes) SetPublished(_ context.Context, id uuid.UUID) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	q, ok := f.db.quizzes[id]
	if !ok {
		return pgx.ErrNoRows
	}
	q.IsPublished = true
	f.db.quizzes[id] = q
	return nil
}

func (f fakeQuizzes) Delete(_ context.Context, id uuid.UUID) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	delete(f.db.quizzes, id)
	for k := range f.db.results {
		if k[0] == id {
			delete(f.db.results, k)
		}
	}
	return nil
}

func (f fakeQuizzes) List(_ context.Context, fl model.QuizFilter) ([]model.Quiz, int, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := []model.Quiz{}
	for _, q := range f.db.quizzes {
		if fl.IsPublished != nil && q.IsPublished != *fl.IsPublished {
			continue
		}
		if fl.CreatedBy != nil && q.CreatedBy != *fl.CreatedBy {
			continue
		}
		out = append(out, q)
	}
	return out, len(out), nil
}

type fakeResults struct {
	db *memDB
	// existsLies makes Exists report false so the unique constraint path is exercised.
	existsLies bool
}

func (f fakeResults) Exists(_ context.Context, quizID, studentID uuid.UUID) (bool, error) {
	if f.existsLies {
		return false, nil
	}
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	_, ok := f.db.results[[2]uuid.UUID{quizID, studentID}]
	return ok, nil
}

func (f fakeResults) Create(_ context.Context, r *model.QuizResult) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	key := [2]uuid.UUID{r.QuizID, r.StudentID}
	if _, ok := f.db.results[key]; ok {
		return repository.ErrDuplicate
	}
	f.db.results[key] = *r
	return nil
}

func (f fakeResults) ListByQuiz(_ context.Context, quizID uuid.UUID) ([]model.QuizResult, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := []model.QuizResult{}
	for k, r := range f.db.results {
		if k[0] == quizID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f fakeResults) ListByStudent(_ context.Context, studentID uuid.UUID) ([]model.QuizResult, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := []model.QuizResult{}
	for k, r := range f.db.results {
		if k[1] == studentID {
			out = append(out, r)
		}
	}
	return out, nil
}

// ─── Fixtures ───────────────────────────────────────────────────────

func (db *memDB) addStudent(name, code string) (model.Principal, *model.Student) {
	db.mu.Lock()
	defer db.mu.Unlock()
	u := model.User{ID: uuid.New(), Name: name, Role: model.RoleStudent, IsActive: true}
	s := model.Student{ID: uuid.New(), UserID: u.ID, Name: name, Level: model.LevelA1, UniqueCode: code}
	db.users[u.ID] = u
	db.students[s.ID] = s
	return model.Principal{UserID: u.ID, Role: model.RoleStudent, Name: name}, &s
}

func (db *memDB) addProfessor(name string) (model.Principal, *model.Professor) {
	db.mu.Lock()
	defer db.mu.Unlock()
	u := model.User{ID: uuid.New(), Name: name, Role: model.RoleProfessor, IsActive: true}
	p := model.Professor{ID: uuid.New(), UserID: u.ID, Name: name}
	db.users[u.ID] = u
	db.professors[p.ID] = p
	return model.Principal{UserID: u.ID, Role: model.RoleProfessor, Name: name}, &p
}

func (db *memDB) addAdmin(name string) model.Principal {
	db.mu.Lock()
	defer db.mu.Unlock()
	u := model.User{ID: uuid.New(), Name: name, Role: model.RoleAdmin, IsActive: true}
	db.users[u.ID] = u
	return model.Principal{UserID: u.ID, Role: model.RoleAdmin, Name: name}
}

func isKind(err, kind error) bool {
	return errors.Is(err, kind)
}

func pageBounds(n, page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	lo := min((page-1)*perPage, n)
	return lo, min(lo+perPage, n)
}
