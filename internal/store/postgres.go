package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"classmark/internal/session"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// Postgres implements session.Store on top of the relational schema.
// The unique constraints on attendance_records close the check-then-act
// race: a concurrent duplicate surfaces as ErrDuplicateAttendance, and
// the record/summary pair is written in one transaction.
type Postgres struct {
	db *sql.DB
}

// NewPostgres creates the store.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// UpsertTeacher ensures a teacher row exists.
func (p *Postgres) UpsertTeacher(ctx context.Context, email string) error {
	if email == "" {
		return errors.New("teacher email required")
	}
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO teachers (email)
		VALUES ($1)
		ON CONFLICT (email) DO NOTHING
	`, email)
	return err
}

// UpsertStudent ensures a student row exists.
func (p *Postgres) UpsertStudent(ctx context.Context, email string) error {
	if email == "" {
		return errors.New("student email required")
	}
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO students (email)
		VALUES ($1)
		ON CONFLICT (email) DO NOTHING
	`, email)
	return err
}

// TeacherByEmail loads the teacher document: sessions in creation order,
// each with its roster in check-in order.
func (p *Postgres) TeacherByEmail(ctx context.Context, email string) (session.Teacher, error) {
	var exists bool
	if err := p.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM teachers WHERE email = $1)`, email,
	).Scan(&exists); err != nil {
		return session.Teacher{}, err
	}
	if !exists {
		return session.Teacher{}, fmt.Errorf("%w: %s", session.ErrTeacherNotFound, email)
	}

	t := session.Teacher{Email: email}
	rows, err := p.db.QueryContext(ctx, `
		SELECT session_id, name, session_date, session_time, duration, location, radius
		FROM sessions
		WHERE teacher_email = $1
		ORDER BY id
	`, email)
	if err != nil {
		return session.Teacher{}, err
	}
	defer rows.Close()
	index := map[string]int{}
	for rows.Next() {
		var s session.Session
		if err := rows.Scan(&s.SessionID, &s.Name, &s.Date, &s.Time, &s.Duration, &s.Location, &s.Radius); err != nil {
			return session.Teacher{}, err
		}
		index[s.SessionID] = len(t.Sessions)
		t.Sessions = append(t.Sessions, s)
	}
	if err := rows.Err(); err != nil {
		return session.Teacher{}, err
	}

	recRows, err := p.db.QueryContext(ctx, `
		SELECT session_id, id, regno, student_email, image_url, marked_date, ip, location, distance::float8, created_at
		FROM attendance_records
		WHERE teacher_email = $1
		ORDER BY created_at, id
	`, email)
	if err != nil {
		return session.Teacher{}, err
	}
	defer recRows.Close()
	for recRows.Next() {
		var sid string
		var rec session.AttendanceRecord
		if err := recRows.Scan(&sid, &rec.ID, &rec.RegNo, &rec.StudentEmail, &rec.ImageURL,
			&rec.Date, &rec.IP, &rec.Location, &rec.Distance, &rec.CreatedAt); err != nil {
			return session.Teacher{}, err
		}
		if i, ok := index[sid]; ok {
			t.Sessions[i].Roster = append(t.Sessions[i].Roster, rec)
		}
	}
	return t, recRows.Err()
}

// AppendSession inserts a session under the teacher.
func (p *Postgres) AppendSession(ctx context.Context, teacherEmail string, s session.Session) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO sessions (teacher_email, session_id, name, session_date, session_time, duration, location, radius)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, teacherEmail, s.SessionID, s.Name, s.Date, s.Time, s.Duration, s.Location, s.Radius)
	switch {
	case isPgCode(err, pgUniqueViolation):
		return fmt.Errorf("%w: %s", session.ErrSessionExists, s.SessionID)
	case isPgCode(err, pgForeignKeyViolation):
		return fmt.Errorf("%w: %s", session.ErrTeacherNotFound, teacherEmail)
	}
	return err
}

// AppendAttendance writes the roster record and the student summary in
// one transaction.
func (p *Postgres) AppendAttendance(ctx context.Context, teacherEmail, sessionID string, rec session.AttendanceRecord, sum session.Summary) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO attendance_records
			(id, teacher_email, session_id, regno, student_email, image_url, marked_date, ip, location, distance, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, rec.ID, teacherEmail, sessionID, rec.RegNo, rec.StudentEmail, rec.ImageURL,
		rec.Date, rec.IP, rec.Location, rec.Distance, rec.CreatedAt)
	switch {
	case isPgCode(err, pgUniqueViolation):
		return fmt.Errorf("%w: %s", session.ErrDuplicateAttendance, rec.RegNo)
	case isPgCode(err, pgForeignKeyViolation):
		return fmt.Errorf("%w: %s", session.ErrSessionNotFound, sessionID)
	case err != nil:
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO student_sessions
			(student_email, session_id, teacher_email, name, session_date, session_time, duration, distance, radius, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, rec.StudentEmail, sum.SessionID, sum.TeacherEmail, sum.Name, sum.Date, sum.Time,
		sum.Duration, sum.Distance, sum.Radius, sum.ImageURL)
	switch {
	case isPgCode(err, pgUniqueViolation):
		return fmt.Errorf("%w: %s", session.ErrDuplicateAttendance, rec.StudentEmail)
	case isPgCode(err, pgForeignKeyViolation):
		return fmt.Errorf("%w: %s", session.ErrStudentNotFound, rec.StudentEmail)
	case err != nil:
		return err
	}

	return tx.Commit()
}

// StudentSessions returns the student's summaries in insertion order.
func (p *Postgres) StudentSessions(ctx context.Context, email string) ([]session.Summary, error) {
	var exists bool
	if err := p.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM students WHERE email = $1)`, email,
	).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", session.ErrStudentNotFound, email)
	}

	rows, err := p.db.QueryContext(ctx, `
		SELECT session_id, teacher_email, name, session_date, session_time, duration, distance::float8, radius, image_url
		FROM student_sessions
		WHERE student_email = $1
		ORDER BY id
	`, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	sums := []session.Summary{}
	for rows.Next() {
		var s session.Summary
		if err := rows.Scan(&s.SessionID, &s.TeacherEmail, &s.Name, &s.Date, &s.Time,
			&s.Duration, &s.Distance, &s.Radius, &s.ImageURL); err != nil {
			return nil, err
		}
		sums = append(sums, s)
	}
	return sums, rows.Err()
}

// AppendStudentSummary inserts a summary if it is not already present.
// Used by the reconcile worker, so it must be safe to replay.
func (p *Postgres) AppendStudentSummary(ctx context.Context, studentEmail string, sum session.Summary) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO student_sessions
			(student_email, session_id, teacher_email, name, session_date, session_time, duration, distance, radius, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT ON CONSTRAINT student_sessions_uniq DO NOTHING
	`, studentEmail, sum.SessionID, sum.TeacherEmail, sum.Name, sum.Date, sum.Time,
		sum.Duration, sum.Distance, sum.Radius, sum.ImageURL)
	if isPgCode(err, pgForeignKeyViolation) {
		return fmt.Errorf("%w: %s", session.ErrStudentNotFound, studentEmail)
	}
	return err
}

func isPgCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
