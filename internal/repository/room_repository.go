package repository

import (
	"context"
	"strconv"
	"strings"

	"github.com/easylearn/easylearn-backend/internal/database"
	"github.com/easylearn/easylearn-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RoomRepository handles room persistence.
type RoomRepository struct {
	pool *pgxpool.Pool
}

// NewRoomRepository creates a new RoomRepository.
func NewRoomRepository(pool *pgxpool.Pool) *RoomRepository {
	return &RoomRepository{pool: pool}
}

const roomSelect = `SELECT r.id, r.name, r.language, r.level, r.objective, r.scheduled_at, r.duration_minutes,
		r.max_students, r.status, r.animator_type, r.external_room_name, r.professor_id, COALESCE(u.name, ''),
		(SELECT COUNT(*) FROM room_participants rp WHERE rp.room_id = r.id),
		r.created_at, r.updated_at
	 FROM rooms r
	 LEFT JOIN professors p ON p.id = r.professor_id
	 LEFT JOIN users u ON u.id = p.user_id`

func scanRoom(row interface{ Scan(...any) error }) (*model.Room, error) {
	rm := &model.Room{}
	err := row.Scan(&rm.ID, &rm.Name, &rm.Language, &rm.Level, &rm.Objective, &rm.ScheduledAt, &rm.DurationMinutes,
		&rm.MaxStudents, &rm.Status, &rm.AnimatorType, &rm.ExternalRoomName, &rm.ProfessorID, &rm.ProfessorName,
		&rm.ParticipantCount, &rm.CreatedAt, &rm.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return rm, nil
}

// Create inserts a new room.
func (r *RoomRepository) Create(ctx context.Context, rm *model.Room) error {
	err := database.Conn(ctx, r.pool).QueryRow(ctx,
		`INSERT INTO rooms (id, name, language, level, objective, scheduled_at, duration_minutes, max_students,
		                    status, animator_type, external_room_name, professor_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING created_at, updated_at`,
		rm.ID, rm.Name, rm.Language, rm.Level, rm.Objective, rm.ScheduledAt, rm.DurationMinutes, rm.MaxStudents,
		rm.Status, rm.AnimatorType, rm.ExternalRoomName, rm.ProfessorID,
	).Scan(&rm.CreatedAt, &rm.UpdatedAt)
	return mapErr(err)
}

// GetByID retrieves a room with its professor name and participant count.
func (r *RoomRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Room, error) {
	return scanRoom(database.Conn(ctx, r.pool).QueryRow(ctx, roomSelect+` WHERE r.id = $1`, id))
}

// Update writes the editable fields. Status is left untouched.
func (r *RoomRepository) Update(ctx context.Context, rm *model.Room) error {
	return database.Conn(ctx, r.pool).QueryRow(ctx,
		`UPDATE rooms SET name = $1, objective = $2, scheduled_at = $3, duration_minutes = $4, max_students = $5,
		        updated_at = NOW()
		 WHERE id = $6
		 RETURNING updated_at`,
		rm.Name, rm.Objective, rm.ScheduledAt, rm.DurationMinutes, rm.MaxStudents, rm.ID,
	).Scan(&rm.UpdatedAt)
}

// TransitionStatus moves the room from one status to another only if it is still in from.
func (r *RoomRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to model.RoomStatus) (bool, error) {
	tag, err := database.Conn(ctx, r.pool).Exec(ctx,
		`UPDATE rooms SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`,
		to, id, from,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

// EnsureExternalName assigns name if the room has none yet and returns whichever is stored.
func (r *RoomRepository) EnsureExternalName(ctx context.Context, id uuid.UUID, name string) (string, error) {
	var stored string
	err := database.Conn(ctx, r.pool).QueryRow(ctx,
		`UPDATE rooms SET external_room_name = COALESCE(external_room_name, $1)
		 WHERE id = $2
		 RETURNING external_room_name`,
		name, id,
	).Scan(&stored)
	return stored, mapErr(err)
}

// Delete removes a room. Participants, provider tokens and summaries cascade.
func (r *RoomRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := database.Conn(ctx, r.pool).Exec(ctx, `DELETE FROM rooms WHERE id = $1`, id)
	return err
}

// List returns a page of rooms ordered by schedule, with the total match count.
func (r *RoomRepository) List(ctx context.Context, f model.RoomFilter) ([]model.Room, int, error) {
	var where []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if f.Status != nil {
		where = append(where, "r.status = "+arg(*f.Status))
	}
	if f.ProfessorID != nil {
		where = append(where, "r.professor_id = "+arg(*f.ProfessorID))
	}
	if f.StudentID != nil {
		where = append(where, "EXISTS (SELECT 1 FROM room_participants x WHERE x.room_id = r.id AND x.student_id = "+arg(*f.StudentID)+")")
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	conn := database.Conn(ctx, r.pool)

	var total int
	if err := conn.QueryRow(ctx, `SELECT COUNT(*) FROM rooms r`+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	order := " ORDER BY r.scheduled_at ASC"
	if f.SortDesc {
		order = " ORDER BY r.scheduled_at DESC"
	}
	page, perPage := normalizePage(f.Page, f.PerPage)
	query := roomSelect + clause + order + " LIMIT " + arg(perPage) + " OFFSET " + arg((page-1)*perPage)

	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	rooms := []model.Room{}
	for rows.Next() {
		rm, err := scanRoom(rows)
		if err != nil {
			return nil, 0, err
		}
		rooms = append(rooms, *rm)
	}
	return rooms, total, rows.Err()
}

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

func normalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	return page, perPage
}
