package session

import "time"

// Session is a scheduled attendance-taking event owned by one teacher.
type Session struct {
	SessionID string             `json:"session_id"`
	Name      string             `json:"name"`
	Date      string             `json:"date"`
	Time      string             `json:"time"`
	Duration  string             `json:"duration"`
	Location  string             `json:"location"` // "lat,lon"
	Radius    float64            `json:"radius"`   // meters
	Roster    []AttendanceRecord `json:"attendance"`
}

// AttendanceRecord is one student's successful check-in. Records are
// created once and never mutated.
type AttendanceRecord struct {
	ID           string    `json:"id"`
	RegNo        string    `json:"regno"`
	StudentEmail string    `json:"student_email"`
	ImageURL     string    `json:"image"`
	Date         string    `json:"date"`
	IP           string    `json:"ip"`
	Location     string    `json:"location"`
	Distance     float64   `json:"distance"` // meters, 2-decimal precision
	CreatedAt    time.Time `json:"created_at"`
}

// Teacher owns an ordered list of sessions.
type Teacher struct {
	Email    string    `json:"email"`
	Sessions []Session `json:"sessions"`
}

// Summary is the denormalized copy of a check-in appended to the
// student's own history.
type Summary struct {
	SessionID    string  `json:"session_id"`
	TeacherEmail string  `json:"teacher_email"`
	Name         string  `json:"name"`
	Date         string  `json:"date"`
	Time         string  `json:"time"`
	Duration     string  `json:"duration"`
	Distance     float64 `json:"distance"`
	Radius       float64 `json:"radius"`
	ImageURL     string  `json:"image"`
}

// Status distinguishes the two successful check-in outcomes.
type Status string

const (
	// StatusMarked means a new attendance record was created.
	StatusMarked Status = "marked"
	// StatusAlreadyMarked means the student had already checked in.
	// It is a success, not an error: retrying a check-in is safe.
	StatusAlreadyMarked Status = "already_marked"
)

// Outcome is the result of a successful RecordAttendance call.
type Outcome struct {
	Status  Status  `json:"status"`
	Summary Summary `json:"summary"`
}

// Identity is the checking-in student as seen by the recorder. Email
// comes from the auth token and is trusted as-is.
type Identity struct {
	RegNo string
	Email string
	IP    string
}
