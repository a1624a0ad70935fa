package session

import (
	"context"
	"fmt"
	"sync"
)

// MemStore is an in-memory Store for dev and tests. A single mutex held
// across each operation serializes check-ins, so the roster uniqueness
// guarantee holds without a database constraint.
type MemStore struct {
	mu       sync.Mutex
	teachers map[string]*Teacher
	students map[string][]Summary
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{
		teachers: make(map[string]*Teacher),
		students: make(map[string][]Summary),
	}
}

// UpsertTeacher ensures a teacher document exists.
func (m *MemStore) UpsertTeacher(ctx context.Context, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.teachers[email]; !ok {
		m.teachers[email] = &Teacher{Email: email}
	}
	return nil
}

// UpsertStudent ensures a student document exists.
func (m *MemStore) UpsertStudent(ctx context.Context, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.students[email]; !ok {
		m.students[email] = []Summary{}
	}
	return nil
}

// TeacherByEmail returns a deep copy of the teacher document.
func (m *MemStore) TeacherByEmail(ctx context.Context, email string) (Teacher, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.teachers[email]
	if !ok {
		return Teacher{}, fmt.Errorf("%w: %s", ErrTeacherNotFound, email)
	}
	return copyTeacher(t), nil
}

// AppendSession adds a session, enforcing per-teacher id uniqueness.
func (m *MemStore) AppendSession(ctx context.Context, teacherEmail string, s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.teachers[teacherEmail]
	if !ok {
		return fmt.Errorf("%w: %s", ErrTeacherNotFound, teacherEmail)
	}
	for _, existing := range t.Sessions {
		if existing.SessionID == s.SessionID {
			return fmt.Errorf("%w: %s", ErrSessionExists, s.SessionID)
		}
	}
	t.Sessions = append(t.Sessions, s)
	return nil
}

// AppendAttendance appends the record and the summary under one lock.
// Both land or neither does.
func (m *MemStore) AppendAttendance(ctx context.Context, teacherEmail, sessionID string, rec AttendanceRecord, sum Summary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.teachers[teacherEmail]
	if !ok {
		return fmt.Errorf("%w: %s", ErrTeacherNotFound, teacherEmail)
	}
	var sess *Session
	for i := range t.Sessions {
		if t.Sessions[i].SessionID == sessionID {
			sess = &t.Sessions[i]
			break
		}
	}
	if sess == nil {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	if hasAttended(sess.Roster, rec.RegNo, rec.StudentEmail) {
		return fmt.Errorf("%w: %s", ErrDuplicateAttendance, rec.RegNo)
	}
	if _, ok := m.students[rec.StudentEmail]; !ok {
		return fmt.Errorf("%w: %s", ErrStudentNotFound, rec.StudentEmail)
	}
	sess.Roster = append(sess.Roster, rec)
	m.students[rec.StudentEmail] = append(m.students[rec.StudentEmail], sum)
	return nil
}

// StudentSessions returns a copy of the student's summaries.
func (m *MemStore) StudentSessions(ctx context.Context, email string) ([]Summary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sums, ok := m.students[email]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrStudentNotFound, email)
	}
	out := make([]Summary, len(sums))
	copy(out, sums)
	return out, nil
}

// AppendStudentSummary adds a summary, skipping if one for the session
// is already present (reconcile repairs must be idempotent).
func (m *MemStore) AppendStudentSummary(ctx context.Context, studentEmail string, sum Summary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	sums, ok := m.students[studentEmail]
	if !ok {
		return fmt.Errorf("%w: %s", ErrStudentNotFound, studentEmail)
	}
	for _, existing := range sums {
		if existing.SessionID == sum.SessionID && existing.TeacherEmail == sum.TeacherEmail {
			return nil
		}
	}
	m.students[studentEmail] = append(sums, sum)
	return nil
}

func copyTeacher(t *Teacher) Teacher {
	out := Teacher{Email: t.Email, Sessions: make([]Session, len(t.Sessions))}
	for i, s := range t.Sessions {
		roster := make([]AttendanceRecord, len(s.Roster))
		copy(roster, s.Roster)
		s.Roster = roster
		out.Sessions[i] = s
	}
	return out
}
