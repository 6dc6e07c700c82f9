package repository

import (
	"context"
	"time"

	"github.com/easylearn/easylearn-backend/internal/database"
	"github.com/easylearn/easylearn-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ParticipantRepository handles room participant persistence.
type ParticipantRepository struct {
	pool *pgxpool.Pool
}

// NewParticipantRepository creates a new ParticipantRepository.
func NewParticipantRepository(pool *pgxpool.Pool) *ParticipantRepository {
	return &ParticipantRepository{pool: pool}
}

const participantColumns = `rp.id, rp.room_id, rp.student_id, u.name, rp.invited, rp.joined_at, rp.left_at,
		rp.is_muted, rp.is_pinged, rp.pinged_at, rp.hand_raised, rp.is_camera_on, rp.is_screen_sharing`

const participantSelect = `SELECT ` + participantColumns + `
	 FROM room_participants rp
	 JOIN students s ON s.id = rp.student_id
	 JOIN users u ON u.id = s.user_id`

func scanParticipant(row interface{ Scan(...any) error }) (*model.RoomParticipant, error) {
	p := &model.RoomParticipant{}
	err := row.Scan(&p.ID, &p.RoomID, &p.StudentID, &p.StudentName, &p.Invited, &p.JoinedAt, &p.LeftAt,
		&p.IsMuted, &p.IsPinged, &p.PingedAt, &p.HandRaised, &p.IsCameraOn, &p.IsScreenSharing)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Create invites a student. A second invitation to the same room yields ErrDuplicate.
func (r *ParticipantRepository) Create(ctx context.Context, p *model.RoomParticipant) error {
	_, err := database.Conn(ctx, r.pool).Exec(ctx,
		`INSERT INTO room_participants (id, room_id, student_id, invited) VALUES ($1, $2, $3, $4)`,
		p.ID, p.RoomID, p.StudentID, p.Invited,
	)
	return mapErr(err)
}

// Get retrieves the participant record of one student in one room.
func (r *ParticipantRepository) Get(ctx context.Context, roomID, studentID uuid.UUID) (*model.RoomParticipant, error) {
	return scanParticipant(database.Conn(ctx, r.pool).QueryRow(ctx,
		participantSelect+` WHERE rp.room_id = $1 AND rp.student_id = $2`, roomID, studentID))
}

// ListByRoom returns every participant of a room ordered by name.
func (r *ParticipantRepository) ListByRoom(ctx context.Context, roomID uuid.UUID) ([]model.RoomParticipant, error) {
	rows, err := database.Conn(ctx, r.pool).Query(ctx,
		participantSelect+` WHERE rp.room_id = $1 ORDER BY u.name`, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	parts := []model.RoomParticipant{}
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, err
		}
		parts = append(parts, *p)
	}
	return parts, rows.Err()
}

// MarkJoined stamps joined_at unless it is already set.
func (r *ParticipantRepository) MarkJoined(ctx context.Context, roomID, studentID uuid.UUID, at time.Time) error {
	_, err := database.Conn(ctx, r.pool).Exec(ctx,
		`UPDATE room_participants SET joined_at = $3
		 WHERE room_id = $1 AND student_id = $2 AND joined_at IS NULL`,
		roomID, studentID, at,
	)
	return err
}

// MarkLeft stamps left_at unless it is already set.
func (r *ParticipantRepository) MarkLeft(ctx context.Context, roomID, studentID uuid.UUID, at time.Time) error {
	_, err := database.Conn(ctx, r.pool).Exec(ctx,
		`UPDATE room_participants SET left_at = $3
		 WHERE room_id = $1 AND student_id = $2 AND left_at IS NULL`,
		roomID, studentID, at,
	)
	return err
}

// CountActive counts participants who joined and have not left.
func (r *ParticipantRepository) CountActive(ctx context.Context, roomID uuid.UUID) (int, error) {
	var n int
	err := database.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT COUNT(*) FROM room_participants
		 WHERE room_id = $1 AND joined_at IS NOT NULL AND left_at IS NULL`, roomID,
	).Scan(&n)
	return n, err
}

// SetMuted updates the mute flag and returns the updated record.
func (r *ParticipantRepository) SetMuted(ctx context.Context, roomID, studentID uuid.UUID, muted bool) (*model.RoomParticipant, error) {
	conn := database.Conn(ctx, r.pool)
	tag, err := conn.Exec(ctx,
		`UPDATE room_participants SET is_muted = $3 WHERE room_id = $1 AND student_id = $2`,
		roomID, studentID, muted,
	)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, pgx.ErrNoRows
	}
	return r.Get(ctx, roomID, studentID)
}

// SetPinged sets the ping flag when pingedAt is non-nil and clears it otherwise.
func (r *ParticipantRepository) SetPinged(ctx context.Context, roomID, studentID uuid.UUID, pingedAt *time.Time) (*model.RoomParticipant, error) {
	conn := database.Conn(ctx, r.pool)
	tag, err := conn.Exec(ctx,
		`UPDATE room_participants SET is_pinged = $3, pinged_at = $4 WHERE room_id = $1 AND student_id = $2`,
		roomID, studentID, pingedAt != nil, pingedAt,
	)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, pgx.ErrNoRows
	}
	return r.Get(ctx, roomID, studentID)
}
