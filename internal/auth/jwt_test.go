package auth

import (
	"testing"
	"time"
)

func TestIssueParseRoundTrip(t *testing.T) {
	pair, err := Issue("teacher@uni.edu", RoleTeacher, "classmark", "test-key", time.Minute, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	claims, err := Parse(pair.AccessToken, "test-key", "classmark")
	if err != nil {
		t.Fatal(err)
	}
	if claims.Email != "teacher@uni.edu" || claims.Role != RoleTeacher {
		t.Errorf("claims = %+v", claims)
	}
}

func TestIssueRejectsUnknownRole(t *testing.T) {
	if _, err := Issue("x@uni.edu", "admin", "classmark", "k", time.Minute, time.Hour); err == nil {
		t.Error("unknown role accepted")
	}
}

func TestParseWrongKey(t *testing.T) {
	pair, err := Issue("s@uni.edu", RoleStudent, "classmark", "key-a", time.Minute, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Parse(pair.AccessToken, "key-b", "classmark"); err == nil {
		t.Error("token verified with wrong key")
	}
}

func TestParseIssuerMismatch(t *testing.T) {
	pair, err := Issue("s@uni.edu", RoleStudent, "other-issuer", "k", time.Minute, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Parse(pair.AccessToken, "k", "classmark"); err == nil {
		t.Error("issuer mismatch accepted")
	}
}

func TestParseExpired(t *testing.T) {
	pair, err := Issue("s@uni.edu", RoleStudent, "classmark", "k", -time.Minute, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Parse(pair.AccessToken, "k", "classmark"); err == nil {
		t.Error("expired token accepted")
	}
}
