package repository

import (
	"context"
	"strconv"

	"github.com/easylearn/easylearn-backend/internal/database"
	"github.com/easylearn/easylearn-backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepository handles accounts and their role profiles.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, name, email, password_hash, role, avatar, is_active, created_by, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	u := &model.User{}
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Avatar, &u.IsActive, &u.CreatedBy, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return u, nil
}

// CreateUser inserts a new account. A taken email yields ErrDuplicate.
func (r *UserRepository) CreateUser(ctx context.Context, u *model.User) error {
	err := database.Conn(ctx, r.pool).QueryRow(ctx,
		`INSERT INTO users (id, name, email, password_hash, role, avatar, is_active, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING created_at, updated_at`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Role, u.Avatar, u.IsActive, u.CreatedBy,
	).Scan(&u.CreatedAt, &u.UpdatedAt)
	return mapErr(err)
}

// CreateStudent inserts a student profile.
func (r *UserRepository) CreateStudent(ctx context.Context, s *model.Student) error {
	err := database.Conn(ctx, r.pool).QueryRow(ctx,
		`INSERT INTO students (id, user_id, nickname, bio, level, unique_code)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING created_at`,
		s.ID, s.UserID, s.Nickname, s.Bio, s.Level, s.UniqueCode,
	).Scan(&s.CreatedAt)
	return mapErr(err)
}

// CreateProfessor inserts a professor profile.
func (r *UserRepository) CreateProfessor(ctx context.Context, p *model.Professor) error {
	languages := p.Languages
	if languages == nil {
		languages = []string{}
	}
	err := database.Conn(ctx, r.pool).QueryRow(ctx,
		`INSERT INTO professors (id, user_id, bio, languages, specialization)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at`,
		p.ID, p.UserID, p.Bio, languages, p.Specialization,
	).Scan(&p.CreatedAt)
	return mapErr(err)
}

// GetUserByID retrieves an account by ID.
func (r *UserRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return scanUser(database.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// GetUserByEmail retrieves an account by its lowercased email.
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return scanUser(database.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)`, email))
}

// GetUserByStudentCode retrieves the account owning a student unique code.
func (r *UserRepository) GetUserByStudentCode(ctx context.Context, code string) (*model.User, error) {
	return scanUser(database.Conn(ctx, r.pool).QueryRow(ctx,
		`SELECT u.id, u.name, u.email, u.password_hash, u.role, u.avatar, u.is_active, u.created_by, u.created_at, u.updated_at
		 FROM users u JOIN students s ON s.user_id = u.id
		 WHERE s.unique_code = $1`, code))
}

const studentSelect = `SELECT s.id, s.user_id, u.name, u.email, u.avatar, s.nickname, s.bio, s.level, s.unique_code,
		(SELECT COUNT(*) FROM room_participants rp WHERE rp.student_id = s.id AND rp.joined_at IS NOT NULL),
		s.created_at
	 FROM students s JOIN users u ON u.id = s.user_id`

func scanStudent(row interface{ Scan(...any) error }) (*model.Student, error) {
	s := &model.Student{}
	if err := row.Scan(&s.ID, &s.UserID, &s.Name, &s.Email, &s.Avatar, &s.Nickname, &s.Bio, &s.Level, &s.UniqueCode, &s.TotalSessions, &s.CreatedAt); err != nil {
		return nil, err
	}
	return s, nil
}

// GetStudentByID retrieves a student profile by its ID.
func (r *UserRepository) GetStudentByID(ctx context.Context, id uuid.UUID) (*model.Student, error) {
	return scanStudent(database.Conn(ctx, r.pool).QueryRow(ctx, studentSelect+` WHERE s.id = $1`, id))
}

// GetStudentByUserID retrieves the student profile of an account.
func (r *UserRepository) GetStudentByUserID(ctx context.Context, userID uuid.UUID) (*model.Student, error) {
	return scanStudent(database.Conn(ctx, r.pool).QueryRow(ctx, studentSelect+` WHERE s.user_id = $1`, userID))
}

const professorSelect = `SELECT p.id, p.user_id, u.name, u.email, u.avatar, p.bio, p.languages, p.specialization, p.created_at
	 FROM professors p JOIN users u ON u.id = p.user_id`

func scanProfessor(row interface{ Scan(...any) error }) (*model.Professor, error) {
	p := &model.Professor{}
	if err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.Email, &p.Avatar, &p.Bio, &p.Languages, &p.Specialization, &p.CreatedAt); err != nil {
		return nil, err
	}
	return p, nil
}

// GetProfessorByID retrieves a professor profile by its ID.
func (r *UserRepository) GetProfessorByID(ctx context.Context, id uuid.UUID) (*model.Professor, error) {
	return scanProfessor(database.Conn(ctx, r.pool).QueryRow(ctx, professorSelect+` WHERE p.id = $1`, id))
}

// GetProfessorByUserID retrieves the professor profile of an account.
func (r *UserRepository) GetProfessorByUserID(ctx context.Context, userID uuid.UUID) (*model.Professor, error) {
	return scanProfessor(database.Conn(ctx, r.pool).QueryRow(ctx, professorSelect+` WHERE p.user_id = $1`, userID))
}

// UpdateStudentLevel sets a student's language level.
func (r *UserRepository) UpdateStudentLevel(ctx context.Context, studentID uuid.UUID, level model.LanguageLevel) error {
	_, err := database.Conn(ctx, r.pool).Exec(ctx,
		`UPDATE students SET level = $1 WHERE id = $2`, level, studentID)
	return err
}

// UpdateUser saves an account's name and avatar.
func (r *UserRepository) UpdateUser(ctx context.Context, u *model.User) error {
	err := database.Conn(ctx, r.pool).QueryRow(ctx,
		`UPDATE users SET name = $1, avatar = $2, updated_at = NOW() WHERE id = $3
		 RETURNING updated_at`,
		u.Name, u.Avatar, u.ID,
	).Scan(&u.UpdatedAt)
	return err
}

// UpdateStudent saves a student's nickname, bio and level.
func (r *UserRepository) UpdateStudent(ctx context.Context, s *model.Student) error {
	_, err := database.Conn(ctx, r.pool).Exec(ctx,
		`UPDATE students SET nickname = $1, bio = $2, level = $3 WHERE id = $4`,
		s.Nickname, s.Bio, s.Level, s.ID)
	return err
}

// UpdateProfessor saves a professor's bio, languages and specialization.
func (r *UserRepository) UpdateProfessor(ctx context.Context, p *model.Professor) error {
	languages := p.Languages
	if languages == nil {
		languages = []string{}
	}
	_, err := database.Conn(ctx, r.pool).Exec(ctx,
		`UPDATE professors SET bio = $1, languages = $2, specialization = $3 WHERE id = $4`,
		p.Bio, languages, p.Specialization, p.ID)
	return err
}

// DeleteUser removes an account. The role profile and everything hanging off it cascade.
func (r *UserRepository) DeleteUser(ctx context.Context, id uuid.UUID) error {
	_, err := database.Conn(ctx, r.pool).Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	return err
}

// ListStudents returns a page of students, newest first, with the total match count.
func (r *UserRepository) ListStudents(ctx context.Context, f model.ProfileFilter) ([]model.Student, int, error) {
	clause, args := createdByClause(f)
	conn := database.Conn(ctx, r.pool)

	var total int
	if err := conn.QueryRow(ctx, `SELECT COUNT(*) FROM students s JOIN users u ON u.id = s.user_id`+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page, perPage := normalizePage(f.Page, f.PerPage)
	args = append(args, perPage, (page-1)*perPage)
	query := studentSelect + clause + ` ORDER BY s.created_at DESC, s.id` +
		` LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))

	students, err := r.queryStudents(ctx, query, args...)
	return students, total, err
}

// StudentsByIDs returns the students among ids that exist, in no particular order.
func (r *UserRepository) StudentsByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Student, error) {
	return r.queryStudents(ctx, studentSelect+` WHERE s.id = ANY($1)`, ids)
}

func (r *UserRepository) queryStudents(ctx context.Context, query string, args ...any) ([]model.Student, error) {
	rows, err := database.Conn(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	students := []model.Student{}
	for rows.Next() {
		s, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		students = append(students, *s)
	}
	return students, rows.Err()
}

// ListProfessors returns a page of professors, newest first, with the total match count.
func (r *UserRepository) ListProfessors(ctx context.Context, f model.ProfileFilter) ([]model.Professor, int, error) {
	clause, args := createdByClause(f)
	conn := database.Conn(ctx, r.pool)

	var total int
	if err := conn.QueryRow(ctx, `SELECT COUNT(*) FROM professors p JOIN users u ON u.id = p.user_id`+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page, perPage := normalizePage(f.Page, f.PerPage)
	args = append(args, perPage, (page-1)*perPage)
	query := professorSelect + clause + ` ORDER BY p.created_at DESC, p.id` +
		` LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))

	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	profs := []model.Professor{}
	for rows.Next() {
		p, err := scanProfessor(rows)
		if err != nil {
			return nil, 0, err
		}
		profs = append(profs, *p)
	}
	return profs, total, rows.Err()
}

func createdByClause(f model.ProfileFilter) (string, []any) {
	if f.CreatedBy == nil {
		return "", nil
	}
	return ` WHERE u.created_by = $1`, []any{*f.CreatedBy}
}
