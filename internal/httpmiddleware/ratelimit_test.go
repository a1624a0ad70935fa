package httpmiddleware

import "testing"

func TestAllowWithinCapacity(t *testing.T) {
	l := NewSimpleTokenBucket(3, 60)
	for i := 0; i < 3; i++ {
		if !l.allow("10.0.0.1") {
			t.Fatalf("request %d denied within capacity", i)
		}
	}
	if l.allow("10.0.0.1") {
		t.Error("request allowed over capacity")
	}
}

func TestAllowPerKeyIsolation(t *testing.T) {
	l := NewSimpleTokenBucket(1, 60)
	if !l.allow("10.0.0.1") {
		t.Fatal("first key denied")
	}
	if !l.allow("10.0.0.2") {
		t.Error("second key throttled by first key's bucket")
	}
}

func TestCapacityDefaultsToRate(t *testing.T) {
	l := NewSimpleTokenBucket(0, 5)
	for i := 0; i < 5; i++ {
		if !l.allow("k") {
			t.Fatalf("request %d denied, capacity should default to rate", i)
		}
	}
	if l.allow("k") {
		t.Error("sixth request allowed")
	}
}
