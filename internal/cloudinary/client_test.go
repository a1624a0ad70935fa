package cloudinary

import "testing"

func TestSignExcludesAPIKeyAndFile(t *testing.T) {
	c := New("demo", "key", "secret", "student_image")

	base := map[string]string{
		"timestamp": "1700000000",
		"folder":    "student_image",
	}
	withExcluded := map[string]string{
		"timestamp": "1700000000",
		"folder":    "student_image",
		"api_key":   "key",
		"file":      "ignored",
	}
	if c.sign(base) != c.sign(withExcluded) {
		t.Error("api_key/file params changed the signature")
	}
}

func TestSignOrderIndependent(t *testing.T) {
	c := New("demo", "key", "secret", "")
	a := c.sign(map[string]string{"timestamp": "1", "folder": "f", "public_id": "p"})
	b := c.sign(map[string]string{"public_id": "p", "folder": "f", "timestamp": "1"})
	if a != b {
		t.Error("signature depends on map iteration order")
	}
}

func TestSignSecretChangesSignature(t *testing.T) {
	a := New("demo", "key", "secret-a", "").sign(map[string]string{"timestamp": "1"})
	b := New("demo", "key", "secret-b", "").sign(map[string]string{"timestamp": "1"})
	if a == b {
		t.Error("different secrets produced equal signatures")
	}
}
