package logger

import (
	"strings"
	"testing"
)

func TestSanitizeValue(t *testing.T) {
	if got := sanitizeValue("access_token", "abc"); got != "[REDACTED]" {
		t.Fatalf("token: want=[REDACTED] got=%v", got)
	}
	if got := sanitizeValue("email", "a@b.co"); got != "[REDACTED]" {
		t.Fatalf("email: want=[REDACTED] got=%v", got)
	}
	if got := sanitizeValue("lesson_id", uint(7)); got != uint(7) {
		t.Fatalf("lesson_id: want=7 got=%v", got)
	}
	jwtish := "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiIxMjM0NSJ9.sig"
	if got := sanitizeValue("note", jwtish); got != "[REDACTED]" {
		t.Fatalf("jwt-looking value: want=[REDACTED] got=%v", got)
	}
	nested := sanitizeValue("payload", map[string]interface{}{"password": "pw", "title": "Go"}).(map[string]interface{})
	if nested["password"] != "[REDACTED]" || nested["title"] != "Go" {
		t.Fatalf("nested: got=%v", nested)
	}
}

func TestUserIDsAreHashed(t *testing.T) {
	got, ok := sanitizeValue("user_id", uint(42)).(string)
	if !ok || !strings.HasPrefix(got, "hash:") || len(got) != len("hash:")+12 {
		t.Fatalf("user_id: got=%v", got)
	}
	if again := sanitizeValue("user_id", uint(42)); again != got {
		t.Fatalf("hash not stable: %v vs %v", got, again)
	}
	if !isHashKey("reviewed_user_id") || isHashKey("user_ids") {
		t.Fatalf("isHashKey suffix handling wrong")
	}
}

func TestSanitizeKVsKeepsOddTrailer(t *testing.T) {
	out := sanitizeKVs([]interface{}{"password", "x", "dangling"})
	if len(out) != 3 || out[1] != "[REDACTED]" || out[2] != "dangling" {
		t.Fatalf("kvs: got=%v", out)
	}
}

func TestNewTestModeIsNop(t *testing.T) {
	log, err := New("test")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	log.With("service", "x").Info("discarded", "k", "v")
	log.Sync()
}
