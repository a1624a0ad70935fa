package session

import (
	"context"
	"errors"
	"testing"
	"time"
)

// damageRoster appends a roster record without the student-side summary,
// simulating out-of-band damage the worker must repair.
func damageRoster(t *testing.T, store *MemStore, rec AttendanceRecord) {
	t.Helper()
	store.mu.Lock()
	defer store.mu.Unlock()
	teacher := store.teachers[teacherEmail]
	sess := &teacher.Sessions[0]
	sess.Roster = append(sess.Roster, rec)
}

func TestReconcileSummaryRepairsMissing(t *testing.T) {
	svc, store := newTestService(t, &fakeEvidence{})
	damageRoster(t, store, AttendanceRecord{
		ID:           "rec-1",
		RegNo:        "21BCE100",
		StudentEmail: studentEmail,
		ImageURL:     "https://images.example.com/evidence/1.jpg",
		Distance:     43.34,
		CreatedAt:    time.Now().UTC(),
	})

	if err := svc.ReconcileSummary(context.Background(), teacherEmail, "S1", studentEmail); err != nil {
		t.Fatal(err)
	}

	sums, err := store.StudentSessions(context.Background(), studentEmail)
	if err != nil {
		t.Fatal(err)
	}
	if len(sums) != 1 {
		t.Fatalf("summaries = %d, want 1", len(sums))
	}
	if sums[0].SessionID != "S1" || sums[0].Distance != 43.34 {
		t.Errorf("repaired summary = %+v", sums[0])
	}
	if sums[0].ImageURL != "https://images.example.com/evidence/1.jpg" {
		t.Errorf("summary image = %q", sums[0].ImageURL)
	}
}

func TestReconcileSummaryIdempotent(t *testing.T) {
	svc, store := newTestService(t, &fakeEvidence{})
	if _, err := checkIn(svc, tempImage(t)); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		if err := svc.ReconcileSummary(context.Background(), teacherEmail, "S1", studentEmail); err != nil {
			t.Fatal(err)
		}
	}
	sums, _ := store.StudentSessions(context.Background(), studentEmail)
	if len(sums) != 1 {
		t.Errorf("summaries = %d after repeated reconcile, want 1", len(sums))
	}
}

func TestReconcileSummaryNoRosterRecord(t *testing.T) {
	svc, store := newTestService(t, &fakeEvidence{})
	if err := svc.ReconcileSummary(context.Background(), teacherEmail, "S1", studentEmail); err != nil {
		t.Fatal(err)
	}
	sums, _ := store.StudentSessions(context.Background(), studentEmail)
	if len(sums) != 0 {
		t.Errorf("summaries = %d with empty roster, want 0", len(sums))
	}
}

func TestReconcileSummaryUnknownSession(t *testing.T) {
	svc, _ := newTestService(t, &fakeEvidence{})
	err := svc.ReconcileSummary(context.Background(), teacherEmail, "NO-SUCH", studentEmail)
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("err = %v, want ErrSessionNotFound", err)
	}
}
