package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/easylearn/easylearn-backend/internal/model"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

const maxRoomSlugLength = 40

// RoomOptions tunes the room lifecycle.
type RoomOptions struct {
	// JoinWindow is how long before scheduledAt a room may be started or joined.
	JoinWindow time.Duration
	// ProviderTimeout bounds every call to the video provider.
	ProviderTimeout time.Duration
}

// RoomService owns the room state machine and participant bookkeeping.
type RoomService struct {
	tx           Transactor
	rooms        RoomStore
	participants ParticipantStore
	users        UserStore
	tokens       ProviderTokenStore
	provider     VideoProvider
	events       RoomEventPublisher
	notifier     SummaryNotifier
	opts         RoomOptions
	log          zerolog.Logger
	now          func() time.Time
}

// NewRoomService creates a new RoomService.
func NewRoomService(
	tx Transactor,
	rooms RoomStore,
	participants ParticipantStore,
	users UserStore,
	tokens ProviderTokenStore,
	provider VideoProvider,
	events RoomEventPublisher,
	notifier SummaryNotifier,
	opts RoomOptions,
	log zerolog.Logger,
) *RoomService {
	return &RoomService{
		tx:           tx,
		rooms:        rooms,
		participants: participants,
		users:        users,
		tokens:       tokens,
		provider:     provider,
		events:       events,
		notifier:     notifier,
		opts:         opts,
		log:          log.With().Str("component", "room_service").Logger(),
		now:          time.Now,
	}
}

// Create schedules a room and invites the listed students.
// A professor creating a room is always assigned to it.
func (s *RoomService) Create(ctx context.Context, caller model.Principal, req *model.CreateRoomRequest) (*model.Room, error) {
	students := uniqueIDs(req.StudentIDs)
	if len(students) > req.MaxStudents {
		return nil, invalidState("cannot invite %d students to a room of %d", len(students), req.MaxStudents)
	}

	room := &model.Room{
		ID:              uuid.New(),
		Name:            req.Name,
		Language:        req.Language,
		Level:           req.Level,
		Objective:       req.Objective,
		ScheduledAt:     req.ScheduledAt,
		DurationMinutes: req.DurationMinutes,
		MaxStudents:     req.MaxStudents,
		Status:          model.RoomStatusScheduled,
		AnimatorType:    req.AnimatorType,
		ProfessorID:     req.ProfessorID,
	}
	if room.AnimatorType == "" {
		room.AnimatorType = model.AnimatorProfessor
	}
	name := externalRoomName(room.Name, room.ID)
	room.ExternalRoomName = &name

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		switch caller.Role {
		case model.RoleProfessor:
			prof, err := s.users.GetProfessorByUserID(ctx, caller.UserID)
			if err != nil {
				return lookupErr(err, "professor")
			}
			room.ProfessorID = &prof.ID
		case model.RoleAdmin:
			if room.ProfessorID != nil {
				if _, err := s.users.GetProfessorByID(ctx, *room.ProfessorID); err != nil {
					return lookupErr(err, "professor")
				}
			}
		case model.RoleStudent:
			return newError(ErrUnauthorized, "students cannot create rooms")
		default:
			return fmt.Errorf("unknown role %q", caller.Role)
		}

		for _, id := range students {
			if _, err := s.users.GetStudentByID(ctx, id); err != nil {
				return lookupErr(err, "student")
			}
		}

		if err := s.rooms.Create(ctx, room); err != nil {
			return fmt.Errorf("create room: %w", err)
		}
		for _, id := range students {
			p := &model.RoomParticipant{ID: uuid.New(), RoomID: room.ID, StudentID: id, Invited: true}
			if err := s.participants.Create(ctx, p); err != nil {
				return fmt.Errorf("invite student %s: %w", id, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	room.ParticipantCount = len(students)
	s.log.Info().Str("room_id", room.ID.String()).Int("invited", len(students)).Msg("Room scheduled")
	return room, nil
}

// Update applies a partial update. Rescheduling is only allowed before the room starts.
func (s *RoomService) Update(ctx context.Context, id uuid.UUID, req *model.UpdateRoomRequest) (*model.Room, error) {
	room, err := s.getRoom(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.ScheduledAt != nil && room.Status != model.RoomStatusScheduled {
		return nil, invalidState("cannot reschedule a room that is %s", strings.ToLower(string(room.Status)))
	}
	if req.Name != nil {
		room.Name = *req.Name
	}
	if req.Objective != nil {
		room.Objective = *req.Objective
	}
	if req.ScheduledAt != nil {
		room.ScheduledAt = *req.ScheduledAt
	}
	if req.DurationMinutes != nil {
		room.DurationMinutes = *req.DurationMinutes
	}
	if req.MaxStudents != nil {
		room.MaxStudents = *req.MaxStudents
	}

	if err := s.rooms.Update(ctx, room); err != nil {
		return nil, fmt.Errorf("update room: %w", err)
	}
	return room, nil
}

// GetByID returns one room.
func (s *RoomService) GetByID(ctx context.Context, id uuid.UUID) (*model.Room, error) {
	return s.getRoom(ctx, id)
}

// List returns a page of rooms.
func (s *RoomService) List(ctx context.Context, f model.RoomFilter) ([]model.Room, int, error) {
	rooms, total, err := s.rooms.List(ctx, f)
	if err != nil {
		return nil, 0, fmt.Errorf("list rooms: %w", err)
	}
	return rooms, total, nil
}

// MyRooms lists rooms relevant to the caller: assigned for professors, invited for students, all for admins.
func (s *RoomService) MyRooms(ctx context.Context, caller model.Principal, f model.RoomFilter) ([]model.Room, int, error) {
	switch caller.Role {
	case model.RoleAdmin:
	case model.RoleProfessor:
		prof, err := s.users.GetProfessorByUserID(ctx, caller.UserID)
		if err != nil {
			return nil, 0, lookupErr(err, "professor")
		}
		f.ProfessorID = &prof.ID
	case model.RoleStudent:
		student, err := s.users.GetStudentByUserID(ctx, caller.UserID)
		if err != nil {
			return nil, 0, lookupErr(err, "student")
		}
		f.StudentID = &student.ID
	default:
		return nil, 0, fmt.Errorf("unknown role %q", caller.Role)
	}
	return s.List(ctx, f)
}

// ProfessorRooms lists the rooms assigned to the professor owning professorUserID.
// Admins may look at any professor; a professor only at themselves.
func (s *RoomService) ProfessorRooms(ctx context.Context, caller model.Principal, professorUserID uuid.UUID, f model.RoomFilter) ([]model.Room, int, error) {
	if caller.Role != model.RoleAdmin && caller.UserID != professorUserID {
		return nil, 0, newError(ErrUnauthorized, "you can only list your own sessions")
	}
	return s.MyRooms(ctx, model.Principal{UserID: professorUserID, Role: model.RoleProfessor}, f)
}

// Participants lists a room's participants.
func (s *RoomService) Participants(ctx context.Context, roomID uuid.UUID) ([]model.RoomParticipant, error) {
	if _, err := s.getRoom(ctx, roomID); err != nil {
		return nil, err
	}
	parts, err := s.participants.ListByRoom(ctx, roomID)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	return parts, nil
}

// Start moves a SCHEDULED room to LIVE after provisioning the provider room.
// A provider failure aborts the transition.
func (s *RoomService) Start(ctx context.Context, caller model.Principal, id uuid.UUID) (*model.Room, error) {
	room, err := s.getRoom(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeHost(ctx, room, caller); err != nil {
		return nil, err
	}
	if room.Status != model.RoomStatusScheduled {
		return nil, ErrRoomAlreadyStarted
	}
	if s.tooEarly(room) {
		return nil, ErrRoomTooEarly
	}

	name, err := s.ensureExternalName(ctx, room)
	if err != nil {
		return nil, err
	}
	if err := s.createProviderRoom(ctx, name, room.MaxStudents); err != nil {
		s.log.Error().Err(err).Str("room_id", id.String()).Msg("Provider room creation failed, start aborted")
		return nil, providerFailure("failed to provision video room", err)
	}

	ok, err := s.rooms.TransitionStatus(ctx, id, model.RoomStatusScheduled, model.RoomStatusLive)
	if err != nil {
		return nil, fmt.Errorf("start room: %w", err)
	}
	if !ok {
		return nil, ErrRoomAlreadyStarted
	}
	room.Status = model.RoomStatusLive

	s.publishStatus(ctx, room.ID, room.Status)
	s.log.Info().Str("room_id", id.String()).Str("external_room", name).Msg("Room started")
	return room, nil
}

// CanJoin checks whether caller may enter the room now.
func (s *RoomService) CanJoin(ctx context.Context, roomID uuid.UUID, caller model.Principal) (*model.Room, error) {
	room, err := s.getRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if err := s.checkJoinable(ctx, room, caller); err != nil {
		return nil, err
	}
	return room, nil
}

// Join authorizes the caller and records attendance.
func (s *RoomService) Join(ctx context.Context, roomID uuid.UUID, caller model.Principal) (*model.Room, error) {
	room, err := s.CanJoin(ctx, roomID, caller)
	if err != nil {
		return nil, err
	}
	if err := s.RecordJoin(ctx, roomID, caller); err != nil {
		return nil, err
	}
	return room, nil
}

// RecordJoin stamps joinedAt for a student the first time only. Hosts are not tracked.
func (s *RoomService) RecordJoin(ctx context.Context, roomID uuid.UUID, caller model.Principal) error {
	switch caller.Role {
	case model.RoleStudent:
		student, err := s.users.GetStudentByUserID(ctx, caller.UserID)
		if err != nil {
			return lookupErr(err, "student")
		}
		part, err := s.participants.Get(ctx, roomID, student.ID)
		if err != nil {
			return lookupErr(err, "participant")
		}
		if part.JoinedAt != nil {
			return nil
		}
		if err := s.participants.MarkJoined(ctx, roomID, student.ID, s.now()); err != nil {
			return fmt.Errorf("record join: %w", err)
		}
		s.publish(ctx, model.RoomEvent{Type: model.RoomEventParticipantJoined, RoomID: roomID, StudentID: &student.ID})
		return nil
	case model.RoleProfessor, model.RoleAdmin:
		return nil
	default:
		return fmt.Errorf("unknown role %q", caller.Role)
	}
}

// IssueJoinToken authorizes the caller and returns a provider credential.
// The first credential for a SCHEDULED room moves it to LIVE.
func (s *RoomService) IssueJoinToken(ctx context.Context, roomID uuid.UUID, caller model.Principal) (*model.JoinCredential, error) {
	room, err := s.CanJoin(ctx, roomID, caller)
	if err != nil {
		return nil, err
	}
	canPublish, err := publishRight(caller.Role)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetUserByID(ctx, caller.UserID)
	if err != nil {
		return nil, lookupErr(err, "user")
	}

	name, err := s.ensureExternalName(ctx, room)
	if err != nil {
		return nil, err
	}

	if room.Status == model.RoomStatusScheduled {
		ok, err := s.rooms.TransitionStatus(ctx, roomID, model.RoomStatusScheduled, model.RoomStatusLive)
		if err != nil {
			return nil, fmt.Errorf("open room: %w", err)
		}
		if ok {
			s.publishStatus(ctx, roomID, model.RoomStatusLive)
		}
	}

	if err := s.createProviderRoom(ctx, name, room.MaxStudents); err != nil {
		s.log.Warn().Err(err).Str("room_id", roomID.String()).Msg("Provider room ensure failed, issuing token anyway")
	}

	cred, err := s.provider.IssueJoinToken(name, caller.UserID.String(), user.Name, canPublish)
	if err != nil {
		return nil, providerFailure("failed to issue join token", err)
	}

	record := &model.ProviderToken{
		ID:        uuid.New(),
		UserID:    caller.UserID,
		RoomID:    roomID,
		Identity:  cred.Identity,
		Token:     cred.Token,
		ExpiresAt: cred.ExpiresAt,
	}
	if err := s.tokens.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("store provider token: %w", err)
	}
	return cred, nil
}

// Leave stamps leftAt for a student the first time only, then recomputes the room status.
func (s *RoomService) Leave(ctx context.Context, roomID uuid.UUID, caller model.Principal) (*model.Room, error) {
	if _, err := s.getRoom(ctx, roomID); err != nil {
		return nil, err
	}

	switch caller.Role {
	case model.RoleStudent:
		student, err := s.users.GetStudentByUserID(ctx, caller.UserID)
		if err != nil {
			return nil, lookupErr(err, "student")
		}
		part, err := s.participants.Get(ctx, roomID, student.ID)
		switch {
		case errors.Is(err, pgx.ErrNoRows):
		case err != nil:
			return nil, fmt.Errorf("get participant: %w", err)
		case part.LeftAt == nil:
			if err := s.participants.MarkLeft(ctx, roomID, student.ID, s.now()); err != nil {
				return nil, fmt.Errorf("record leave: %w", err)
			}
			s.publish(ctx, model.RoomEvent{Type: model.RoomEventParticipantLeft, RoomID: roomID, StudentID: &student.ID})
		}
	case model.RoleProfessor, model.RoleAdmin:
	default:
		return nil, fmt.Errorf("unknown role %q", caller.Role)
	}

	if _, err := s.RecomputeStatus(ctx, roomID); err != nil {
		return nil, err
	}
	return s.getRoom(ctx, roomID)
}

// RecomputeStatus completes a LIVE room that has no active participants left.
// It is idempotent and returns the resulting status.
func (s *RoomService) RecomputeStatus(ctx context.Context, roomID uuid.UUID) (model.RoomStatus, error) {
	var completed bool
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		active, err := s.participants.CountActive(ctx, roomID)
		if err != nil {
			return fmt.Errorf("count active participants: %w", err)
		}
		if active > 0 {
			return nil
		}
		completed, err = s.rooms.TransitionStatus(ctx, roomID, model.RoomStatusLive, model.RoomStatusCompleted)
		if err != nil {
			return fmt.Errorf("complete room: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	if completed {
		s.log.Info().Str("room_id", roomID.String()).Msg("Room completed, no active participants left")
		s.onCompleted(ctx, roomID)
		return model.RoomStatusCompleted, nil
	}

	room, err := s.getRoom(ctx, roomID)
	if err != nil {
		return "", err
	}
	return room.Status, nil
}

// End moves a LIVE room to COMPLETED.
func (s *RoomService) End(ctx context.Context, caller model.Principal, id uuid.UUID) (*model.Room, error) {
	room, err := s.getRoom(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeHost(ctx, room, caller); err != nil {
		return nil, err
	}
	if room.Status != model.RoomStatusLive {
		return nil, ErrRoomNotLive
	}

	ok, err := s.rooms.TransitionStatus(ctx, id, model.RoomStatusLive, model.RoomStatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("end room: %w", err)
	}
	if !ok {
		return nil, ErrRoomNotLive
	}
	room.Status = model.RoomStatusCompleted

	s.log.Info().Str("room_id", id.String()).Msg("Room ended")
	s.onCompleted(ctx, id)
	return room, nil
}

// Mute sets a participant's mute flag.
func (s *RoomService) Mute(ctx context.Context, caller model.Principal, roomID, studentID uuid.UUID, muted bool) (*model.RoomParticipant, error) {
	if err := s.authorizeHostByID(ctx, roomID, caller); err != nil {
		return nil, err
	}
	part, err := s.participants.SetMuted(ctx, roomID, studentID, muted)
	if err != nil {
		return nil, lookupErr(err, "participant")
	}
	s.publish(ctx, model.RoomEvent{Type: model.RoomEventMuted, RoomID: roomID, StudentID: &studentID, Muted: &muted})
	return part, nil
}

// Ping flags a participant for attention and stamps pingedAt.
func (s *RoomService) Ping(ctx context.Context, caller model.Principal, roomID, studentID uuid.UUID) (*model.RoomParticipant, error) {
	if err := s.authorizeHostByID(ctx, roomID, caller); err != nil {
		return nil, err
	}
	at := s.now()
	part, err := s.participants.SetPinged(ctx, roomID, studentID, &at)
	if err != nil {
		return nil, lookupErr(err, "participant")
	}
	s.publish(ctx, model.RoomEvent{Type: model.RoomEventPinged, RoomID: roomID, StudentID: &studentID})
	return part, nil
}

// ClearPing removes the ping flag. The pinged student may clear their own ping.
func (s *RoomService) ClearPing(ctx context.Context, caller model.Principal, roomID, studentID uuid.UUID) (*model.RoomParticipant, error) {
	room, err := s.getRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	switch caller.Role {
	case model.RoleStudent:
		student, err := s.users.GetStudentByUserID(ctx, caller.UserID)
		if err != nil {
			return nil, lookupErr(err, "student")
		}
		if student.ID != studentID {
			return nil, newError(ErrUnauthorized, "students may only clear their own ping")
		}
	case model.RoleProfessor, model.RoleAdmin:
		if err := s.authorizeHost(ctx, room, caller); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown role %q", caller.Role)
	}

	part, err := s.participants.SetPinged(ctx, roomID, studentID, nil)
	if err != nil {
		return nil, lookupErr(err, "participant")
	}
	s.publish(ctx, model.RoomEvent{Type: model.RoomEventPingCleared, RoomID: roomID, StudentID: &studentID})
	return part, nil
}

// Delete removes the provider room on a best-effort basis, then the room and its children.
func (s *RoomService) Delete(ctx context.Context, id uuid.UUID) error {
	room, err := s.getRoom(ctx, id)
	if err != nil {
		return err
	}

	if room.ExternalRoomName != nil && *room.ExternalRoomName != "" {
		pctx, cancel := context.WithTimeout(ctx, s.providerTimeout())
		err := s.provider.DeleteRoom(pctx, *room.ExternalRoomName)
		cancel()
		if err != nil {
			s.log.Warn().Err(err).Str("room_id", id.String()).Msg("Provider room deletion failed, deleting locally anyway")
		}
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		return s.rooms.Delete(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("delete room: %w", err)
	}
	s.log.Info().Str("room_id", id.String()).Msg("Room deleted")
	return nil
}

// ─── Internal helpers ───────────────────────────────────────────────

func (s *RoomService) getRoom(ctx context.Context, id uuid.UUID) (*model.Room, error) {
	room, err := s.rooms.GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, "room")
	}
	return room, nil
}

func (s *RoomService) tooEarly(room *model.Room) bool {
	return s.now().Before(room.ScheduledAt.Add(-s.opts.JoinWindow))
}

func (s *RoomService) checkJoinable(ctx context.Context, room *model.Room, caller model.Principal) error {
	if s.tooEarly(room) {
		return ErrRoomTooEarly
	}
	if room.Status == model.RoomStatusCompleted {
		return ErrRoomCompleted
	}

	switch caller.Role {
	case model.RoleAdmin:
		return nil
	case model.RoleProfessor:
		prof, err := s.users.GetProfessorByUserID(ctx, caller.UserID)
		if err != nil {
			return lookupErr(err, "professor")
		}
		if room.ProfessorID == nil || *room.ProfessorID != prof.ID {
			return ErrNotAssignedProfessor
		}
		return nil
	case model.RoleStudent:
		student, err := s.users.GetStudentByUserID(ctx, caller.UserID)
		if err != nil {
			return lookupErr(err, "student")
		}
		part, err := s.participants.Get(ctx, room.ID, student.ID)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotInvited
		}
		if err != nil {
			return fmt.Errorf("get participant: %w", err)
		}
		if !part.Invited {
			return ErrNotInvited
		}
		return nil
	default:
		return fmt.Errorf("unknown role %q", caller.Role)
	}
}

// authorizeHost allows admins and the room's assigned professor.
func (s *RoomService) authorizeHost(ctx context.Context, room *model.Room, caller model.Principal) error {
	switch caller.Role {
	case model.RoleAdmin:
		return nil
	case model.RoleProfessor:
		prof, err := s.users.GetProfessorByUserID(ctx, caller.UserID)
		if err != nil {
			return lookupErr(err, "professor")
		}
		if room.ProfessorID == nil || *room.ProfessorID != prof.ID {
			return ErrNotAssignedProfessor
		}
		return nil
	case model.RoleStudent:
		return newError(ErrUnauthorized, "only the room's professor or an admin can do this")
	default:
		return fmt.Errorf("unknown role %q", caller.Role)
	}
}

func (s *RoomService) authorizeHostByID(ctx context.Context, roomID uuid.UUID, caller model.Principal) error {
	room, err := s.getRoom(ctx, roomID)
	if err != nil {
		return err
	}
	return s.authorizeHost(ctx, room, caller)
}

func (s *RoomService) ensureExternalName(ctx context.Context, room *model.Room) (string, error) {
	if room.ExternalRoomName != nil && *room.ExternalRoomName != "" {
		return *room.ExternalRoomName, nil
	}
	stored, err := s.rooms.EnsureExternalName(ctx, room.ID, externalRoomName(room.Name, room.ID))
	if err != nil {
		return "", fmt.Errorf("assign external room name: %w", err)
	}
	room.ExternalRoomName = &stored
	return stored, nil
}

func (s *RoomService) createProviderRoom(ctx context.Context, name string, maxStudents int) error {
	ctx, cancel := context.WithTimeout(ctx, s.providerTimeout())
	defer cancel()
	// +1 seat for the professor.
	return s.provider.CreateRoom(ctx, name, maxStudents+1)
}

func (s *RoomService) providerTimeout() time.Duration {
	if s.opts.ProviderTimeout > 0 {
		return s.opts.ProviderTimeout
	}
	return 10 * time.Second
}

func (s *RoomService) onCompleted(ctx context.Context, roomID uuid.UUID) {
	s.publishStatus(ctx, roomID, model.RoomStatusCompleted)
	if err := s.notifier.NotifyRoomEnded(ctx, roomID, s.now()); err != nil {
		s.log.Warn().Err(err).Str("room_id", roomID.String()).Msg("Failed to queue session summary")
	}
}

func (s *RoomService) publishStatus(ctx context.Context, roomID uuid.UUID, status model.RoomStatus) {
	s.publish(ctx, model.RoomEvent{Type: model.RoomEventStatusChanged, RoomID: roomID, Status: status})
}

func (s *RoomService) publish(ctx context.Context, ev model.RoomEvent) {
	ev.At = s.now()
	if err := s.events.Publish(ctx, ev); err != nil {
		s.log.Warn().Err(err).Str("room_id", ev.RoomID.String()).Str("event", string(ev.Type)).Msg("Failed to publish room event")
	}
}

// publishRight reports whether a role may publish audio/video.
func publishRight(role model.Role) (bool, error) {
	switch role {
	case model.RoleAdmin, model.RoleProfessor:
		return true, nil
	case model.RoleStudent:
		return false, nil
	default:
		return false, fmt.Errorf("unknown role %q", role)
	}
}

// externalRoomName derives a provider-safe room name such as "room-french-b1-3fa85f64".
func externalRoomName(name string, id uuid.UUID) string {
	short := strings.ReplaceAll(id.String(), "-", "")[:8]
	s := slug.Make(name)
	if len(s) > maxRoomSlugLength {
		s = strings.Trim(s[:maxRoomSlugLength], "-")
	}
	if s == "" {
		return "room-" + short
	}
	return "room-" + s + "-" + short
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
