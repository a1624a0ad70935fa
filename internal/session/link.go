package session

import "net/url"

// LinkBuilder formats check-in links pointing at the client app's login
// page. Pure string formatting, no I/O.
type LinkBuilder struct {
	ClientURL string
}

// CheckInLink returns the login URL a student follows (usually via QR
// code) to check in to a session.
func (b LinkBuilder) CheckInLink(sessionID, teacherEmail string) string {
	q := url.Values{}
	q.Set("session_id", sessionID)
	q.Set("email", teacherEmail)
	return b.ClientURL + "/login?" + q.Encode()
}
