package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"classmark/internal/geo"
)

// Service coordinates session management and attendance recording.
type Service struct {
	store         Store
	evidence      EvidenceStore
	links         LinkBuilder
	uploadTimeout time.Duration
}

// NewService creates a service backed by a store and an evidence store.
func NewService(store Store, evidence EvidenceStore, links LinkBuilder, uploadTimeout time.Duration) *Service {
	if uploadTimeout <= 0 {
		uploadTimeout = 30 * time.Second
	}
	return &Service{store: store, evidence: evidence, links: links, uploadTimeout: uploadTimeout}
}

// CreateSession appends a new session to the teacher's list and returns
// the session plus its check-in link. An empty session id gets a
// generated one. The teacher's session ids must be unique; reuse fails
// with ErrSessionExists.
func (s *Service) CreateSession(ctx context.Context, teacherEmail string, sess Session) (Session, string, error) {
	if teacherEmail == "" || sess.Name == "" {
		return Session{}, "", fmt.Errorf("%w: teacher email and session name", ErrMissingField)
	}
	if _, err := geo.ParsePoint(sess.Location); err != nil {
		return Session{}, "", err
	}
	if sess.SessionID == "" {
		sess.SessionID = uuid.NewString()
	}
	sess.Roster = nil
	if err := s.store.AppendSession(ctx, teacherEmail, sess); err != nil {
		return Session{}, "", err
	}
	return sess, s.links.CheckInLink(sess.SessionID, teacherEmail), nil
}

// ListSessions returns the teacher's sessions in creation order.
func (s *Service) ListSessions(ctx context.Context, teacherEmail string) ([]Session, error) {
	t, err := s.store.TeacherByEmail(ctx, teacherEmail)
	if err != nil {
		return nil, err
	}
	return t.Sessions, nil
}

// CheckInLink returns the check-in link for an existing session.
func (s *Service) CheckInLink(ctx context.Context, teacherEmail, sessionID string) (string, error) {
	t, err := s.store.TeacherByEmail(ctx, teacherEmail)
	if err != nil {
		return "", err
	}
	if _, err := findSession(t.Sessions, sessionID); err != nil {
		return "", err
	}
	return s.links.CheckInLink(sessionID, teacherEmail), nil
}

// ListStudentSessions returns the student's attendance history.
func (s *Service) ListStudentSessions(ctx context.Context, studentEmail string) ([]Summary, error) {
	return s.store.StudentSessions(ctx, studentEmail)
}

// RecordAttendance processes one check-in attempt. imagePath is a local
// temporary file holding the evidence photo; it is removed before the
// call returns, whatever the outcome. Checking in twice is not an
// error: the second call returns StatusAlreadyMarked and leaves the
// roster untouched.
func (s *Service) RecordAttendance(ctx context.Context, teacherEmail, sessionID string, id Identity, location, imagePath string) (Outcome, error) {
	defer func() {
		if imagePath != "" {
			_ = os.Remove(imagePath)
		}
	}()

	if teacherEmail == "" || sessionID == "" || id.RegNo == "" || id.Email == "" {
		return Outcome{}, fmt.Errorf("%w: session id, teacher email, regno and student email", ErrMissingField)
	}

	teacher, err := s.store.TeacherByEmail(ctx, teacherEmail)
	if err != nil {
		return Outcome{}, err
	}
	sess, err := findSession(teacher.Sessions, sessionID)
	if err != nil {
		return Outcome{}, err
	}

	distance, err := geo.Distance(location, sess.Location)
	if err != nil {
		return Outcome{}, err
	}

	if hasAttended(sess.Roster, id.RegNo, id.Email) {
		return alreadyMarked(teacher.Email, sess, id), nil
	}

	if imagePath == "" {
		return Outcome{}, fmt.Errorf("%w: evidence image", ErrMissingField)
	}
	uploadCtx, cancel := context.WithTimeout(ctx, s.uploadTimeout)
	defer cancel()
	imageURL, err := s.evidence.Upload(uploadCtx, imagePath)
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: %v", ErrEvidenceUpload, err)
	}

	now := time.Now().UTC()
	rec := AttendanceRecord{
		ID:           uuid.NewString(),
		RegNo:        id.RegNo,
		StudentEmail: id.Email,
		ImageURL:     imageURL,
		Date:         now.Format("2006-01-02"),
		IP:           id.IP,
		Location:     location,
		Distance:     distance,
		CreatedAt:    now,
	}
	sum := Summary{
		SessionID:    sess.SessionID,
		TeacherEmail: teacher.Email,
		Name:         sess.Name,
		Date:         sess.Date,
		Time:         sess.Time,
		Duration:     sess.Duration,
		Distance:     distance,
		Radius:       sess.Radius,
		ImageURL:     imageURL,
	}

	if err := s.store.AppendAttendance(ctx, teacher.Email, sess.SessionID, rec, sum); err != nil {
		// A concurrent check-in may land between the roster read and
		// this write; the store's uniqueness constraint is the real
		// guard and the scan above only the fast path.
		if errors.Is(err, ErrDuplicateAttendance) {
			return alreadyMarked(teacher.Email, sess, id), nil
		}
		return Outcome{}, err
	}

	return Outcome{Status: StatusMarked, Summary: sum}, nil
}

// ReconcileSummary repairs the student-side view of a check-in: when
// the teacher's roster holds a record for the student but the student's
// history lacks the matching summary, the summary is rebuilt from the
// roster and appended. The teacher-side roster is the source of truth.
func (s *Service) ReconcileSummary(ctx context.Context, teacherEmail, sessionID, studentEmail string) error {
	teacher, err := s.store.TeacherByEmail(ctx, teacherEmail)
	if err != nil {
		return err
	}
	sess, err := findSession(teacher.Sessions, sessionID)
	if err != nil {
		return err
	}
	var rec *AttendanceRecord
	for i := range sess.Roster {
		if sess.Roster[i].StudentEmail == studentEmail {
			rec = &sess.Roster[i]
			break
		}
	}
	if rec == nil {
		// Nothing on the roster, so nothing to mirror.
		return nil
	}

	sums, err := s.store.StudentSessions(ctx, studentEmail)
	if err != nil {
		return err
	}
	for _, sum := range sums {
		if sum.SessionID == sessionID && sum.TeacherEmail == teacherEmail {
			return nil
		}
	}

	return s.store.AppendStudentSummary(ctx, studentEmail, Summary{
		SessionID:    sess.SessionID,
		TeacherEmail: teacher.Email,
		Name:         sess.Name,
		Date:         sess.Date,
		Time:         sess.Time,
		Duration:     sess.Duration,
		Distance:     rec.Distance,
		Radius:       sess.Radius,
		ImageURL:     rec.ImageURL,
	})
}

// alreadyMarked rebuilds the summary for an identity that is already on
// the roster, preferring the stored record's distance and image.
func alreadyMarked(teacherEmail string, sess *Session, id Identity) Outcome {
	sum := Summary{
		SessionID:    sess.SessionID,
		TeacherEmail: teacherEmail,
		Name:         sess.Name,
		Date:         sess.Date,
		Time:         sess.Time,
		Duration:     sess.Duration,
		Radius:       sess.Radius,
	}
	for _, rec := range sess.Roster {
		if rec.RegNo == id.RegNo || rec.StudentEmail == id.Email {
			sum.Distance = rec.Distance
			sum.ImageURL = rec.ImageURL
			break
		}
	}
	return Outcome{Status: StatusAlreadyMarked, Summary: sum}
}

// findSession scans a teacher's sessions for a matching id. A miss is an
// explicit ErrSessionNotFound, never a silent no-op.
func findSession(sessions []Session, sessionID string) (*Session, error) {
	for i := range sessions {
		if sessions[i].SessionID == sessionID {
			return &sessions[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
}
