package session

import (
	"net/url"
	"testing"
)

func TestCheckInLink(t *testing.T) {
	b := LinkBuilder{ClientURL: "https://classmark.example.com"}
	link := b.CheckInLink("S1", "teacher@uni.edu")

	u, err := url.Parse(link)
	if err != nil {
		t.Fatalf("link does not parse: %v", err)
	}
	if u.Path != "/login" {
		t.Errorf("path = %q, want /login", u.Path)
	}
	q := u.Query()
	if q.Get("session_id") != "S1" {
		t.Errorf("session_id = %q", q.Get("session_id"))
	}
	if q.Get("email") != "teacher@uni.edu" {
		t.Errorf("email = %q", q.Get("email"))
	}
}

func TestCheckInLinkEscaping(t *testing.T) {
	b := LinkBuilder{ClientURL: "http://localhost:3000"}
	link := b.CheckInLink("lab session #2", "t+cs@uni.edu")
	u, err := url.Parse(link)
	if err != nil {
		t.Fatalf("link does not parse: %v", err)
	}
	if u.Query().Get("session_id") != "lab session #2" {
		t.Errorf("session_id roundtrip = %q", u.Query().Get("session_id"))
	}
	if u.Query().Get("email") != "t+cs@uni.edu" {
		t.Errorf("email roundtrip = %q", u.Query().Get("email"))
	}
}
