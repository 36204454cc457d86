package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

func newJSONLogger(t *testing.T, buf *bytes.Buffer) *slog.Logger {
	t.Helper()
	l, err := New(Config{Level: "info", Format: "json", Output: buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return l
}

func decodeEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to parse JSON log: %v", err)
	}
	return entry
}

func TestRedactSensitive_SensitiveKeyName(t *testing.T) {
	var buf bytes.Buffer
	l := newJSONLogger(t, &buf)

	tests := []struct {
		key   string
		value string
	}{
		{"password", "mysecret123"},
		{"new_password", "hunter2"},
		{"passphrase", "correct horse"},
		{"password_hash", "YWJjZGVm"},
		{"salt", "c2FsdA=="},
		{"token", "6f1c2d9e-8a40-4c57-9d6b-0f3e7a1b2c4d"},
		{"X-Auth-Key", "6f1c2d9e-8a40-4c57-9d6b-0f3e7a1b2c4d"},
		{"encryption_key", "base64key"},
		{"credential", "cred123"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			buf.Reset()
			l.Info("test", tt.key, tt.value)

			entry := decodeEntry(t, &buf)
			if got := entry[tt.key]; got != redactedValue {
				t.Errorf("Key %q should be redacted, got %v", tt.key, got)
			}
		})
	}
}

func TestRedactSensitive_ByteSlice(t *testing.T) {
	var buf bytes.Buffer
	l := newJSONLogger(t, &buf)

	l.Info("salt rotated", "salt", []byte{1, 2, 3, 4})

	entry := decodeEntry(t, &buf)
	if got := entry["salt"]; got != redactedValue {
		t.Errorf("byte slice under sensitive key should be redacted, got %v", got)
	}
}

func TestRedactSensitive_Group(t *testing.T) {
	var buf bytes.Buffer
	l := newJSONLogger(t, &buf)

	l.Info("login", slog.Group("user", slog.String("username", "alice"), slog.String("password", "pw")))

	entry := decodeEntry(t, &buf)
	group, ok := entry["user"].(map[string]any)
	if !ok {
		t.Fatalf("expected user group, got %v", entry["user"])
	}
	if group["username"] != "alice" {
		t.Errorf("username = %v, want alice", group["username"])
	}
	if group["password"] != redactedValue {
		t.Errorf("nested password should be redacted, got %v", group["password"])
	}
}

func TestRedactSensitive_NormalValues(t *testing.T) {
	var buf bytes.Buffer
	l := newJSONLogger(t, &buf)

	l.Info("pet fed", "user_id", "user123", "pet_id", "pet-abc", "session", RedactString("6f1c2d9e-8a40-4c57-9d6b-0f3e7a1b2c4d"))

	entry := decodeEntry(t, &buf)
	if entry["user_id"] != "user123" {
		t.Errorf("user_id should not be redacted, got %v", entry["user_id"])
	}
	if entry["pet_id"] != "pet-abc" {
		t.Errorf("pet_id should not be redacted, got %v", entry["pet_id"])
	}
	if entry["session"] != "6f1...c4d" {
		t.Errorf("session hint = %v, want 6f1...c4d", entry["session"])
	}
}

func TestRedactSensitive_EmptyValueKept(t *testing.T) {
	var buf bytes.Buffer
	l := newJSONLogger(t, &buf)

	l.Info("no token", "token", "")

	entry := decodeEntry(t, &buf)
	if entry["token"] != "" {
		t.Errorf("empty value should pass through, got %v", entry["token"])
	}
}

func TestRedactString(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"uuid token", "6f1c2d9e-8a40-4c57-9d6b-0f3e7a1b2c4d", "6f1...c4d"},
		{"short", "abcdefgh", "***"},
		{"nine chars", "abcdefghi", "abc...ghi"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RedactString(tt.input); got != tt.expected {
				t.Errorf("RedactString(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestIsSensitiveKey(t *testing.T) {
	tests := []struct {
		key       string
		sensitive bool
	}{
		{"password", true},
		{"PASSWORD", true},
		{"Passphrase", true},
		{"password_salt", true},
		{"auth_token", true},
		{"api_key", true},
		{"username", false},
		{"pet_id", false},
		{"route", false},
		{"status", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := IsSensitiveKey(tt.key); got != tt.sensitive {
				t.Errorf("IsSensitiveKey(%q) = %v, want %v", tt.key, got, tt.sensitive)
			}
		})
	}
}
