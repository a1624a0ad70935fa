package session

import "context"

// Store is the persistence boundary for teacher and student documents.
// Implementations must enforce the roster uniqueness constraint: at most
// one attendance record per (session, regno) and per (session, student
// email), returning ErrDuplicateAttendance on violation. AppendAttendance
// must write the teacher-side record and the student-side summary
// atomically, or not at all.
type Store interface {
	// UpsertTeacher ensures a teacher document exists.
	UpsertTeacher(ctx context.Context, email string) error
	// UpsertStudent ensures a student document exists.
	UpsertStudent(ctx context.Context, email string) error

	// TeacherByEmail returns the teacher with sessions and rosters in
	// insertion order. Returns ErrTeacherNotFound if absent.
	TeacherByEmail(ctx context.Context, email string) (Teacher, error)
	// AppendSession adds a session to the teacher's list. Returns
	// ErrTeacherNotFound or ErrSessionExists.
	AppendSession(ctx context.Context, teacherEmail string, s Session) error

	// AppendAttendance appends a record to the session's roster and the
	// summary to the student's history in one atomic write. Returns
	// ErrDuplicateAttendance when the identity already checked in.
	AppendAttendance(ctx context.Context, teacherEmail, sessionID string, rec AttendanceRecord, sum Summary) error

	// StudentSessions returns the student's summaries in insertion
	// order. Returns ErrStudentNotFound if absent.
	StudentSessions(ctx context.Context, email string) ([]Summary, error)
	// AppendStudentSummary adds a summary to the student's history.
	// Used by the reconcile worker to repair a missing summary.
	AppendStudentSummary(ctx context.Context, studentEmail string, sum Summary) error
}

// EvidenceStore persists check-in photos and hands back a durable URL.
type EvidenceStore interface {
	// Upload pushes the image at localPath to remote storage and
	// returns its secure URL. The caller owns localPath cleanup.
	Upload(ctx context.Context, localPath string) (string, error)
}
