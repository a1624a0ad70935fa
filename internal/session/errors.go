package session

import "errors"

var (
	// ErrTeacherNotFound means the teacher email resolves to no document.
	ErrTeacherNotFound = errors.New("teacher not found")
	// ErrStudentNotFound means the student email resolves to no document.
	ErrStudentNotFound = errors.New("student not found")
	// ErrSessionNotFound means no session with the given id exists under
	// the teacher.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionExists means the teacher already has a session with the
	// given id.
	ErrSessionExists = errors.New("session id already in use")
	// ErrDuplicateAttendance is returned by stores when an insert hits
	// the per-session uniqueness constraint on regno or student email.
	// The recorder maps it to StatusAlreadyMarked.
	ErrDuplicateAttendance = errors.New("attendance already recorded")
	// ErrEvidenceUpload means the evidence image could not be stored.
	// No attendance record is persisted when this is returned.
	ErrEvidenceUpload = errors.New("evidence upload failed")
	// ErrMissingField means a required check-in or session field is empty.
	ErrMissingField = errors.New("missing required field")
)
