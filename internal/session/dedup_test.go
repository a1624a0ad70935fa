package session

import "testing"

func TestHasAttended(t *testing.T) {
	roster := []AttendanceRecord{
		{RegNo: "21BCE100", StudentEmail: "a@uni.edu"},
		{RegNo: "21BCE101", StudentEmail: "b@uni.edu"},
	}

	cases := []struct {
		name  string
		regno string
		email string
		want  bool
	}{
		{"both match", "21BCE100", "a@uni.edu", true},
		{"regno only", "21BCE101", "other@uni.edu", true},
		{"email only", "21BCE999", "b@uni.edu", true},
		{"no match", "21BCE999", "c@uni.edu", false},
		{"empty roster fields never match new identity", "21BCE998", "d@uni.edu", false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := hasAttended(roster, c.regno, c.email); got != c.want {
				t.Errorf("hasAttended(%q, %q) = %v, want %v", c.regno, c.email, got, c.want)
			}
		})
	}
}

func TestHasAttendedEmptyRoster(t *testing.T) {
	if hasAttended(nil, "21BCE100", "a@uni.edu") {
		t.Error("empty roster reported an attendee")
	}
}
