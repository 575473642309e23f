package logger

import "testing"

func TestSanitizeKVs_RedactsSecrets(t *testing.T) {
	out := sanitizeKVs([]interface{}{"password", "hunter2", "user_id", "ND001", "Authorization", "Bearer x"})
	if len(out) != 6 {
		t.Fatalf("expected 6 items got %d", len(out))
	}
	if out[1] != "[REDACTED]" {
		t.Fatalf("password not redacted: %v", out[1])
	}
	if out[3] != "ND001" {
		t.Fatalf("user_id should pass through, got %v", out[3])
	}
	if out[5] != "[REDACTED]" {
		t.Fatalf("authorization not redacted: %v", out[5])
	}
}

func TestSanitizeKVs_OddLength(t *testing.T) {
	out := sanitizeKVs([]interface{}{"a", 1, "dangling"})
	if len(out) != 3 || out[2] != "dangling" {
		t.Fatalf("unexpected output %v", out)
	}
}
