package util

import (
	"testing"
	"time"
)

func TestGetEnvDuration(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		setValue bool
		fallback time.Duration
		want     time.Duration
	}{
		{
			name:     "unset returns default",
			setValue: false,
			fallback: 5 * time.Minute,
			want:     5 * time.Minute,
		},
		{
			name:     "valid duration",
			value:    "90s",
			setValue: true,
			fallback: 5 * time.Minute,
			want:     90 * time.Second,
		},
		{
			name:     "invalid duration returns default",
			value:    "soon",
			setValue: true,
			fallback: 5 * time.Minute,
			want:     5 * time.Minute,
		},
		{
			name:     "non-positive duration returns default",
			value:    "-10s",
			setValue: true,
			fallback: 5 * time.Minute,
			want:     5 * time.Minute,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setValue {
				t.Setenv("TEST_DURATION", tt.value)
			}
			if got := GetEnvDuration("TEST_DURATION", tt.fallback); got != tt.want {
				t.Fatalf("unexpected duration: got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetEnvNumeric(t *testing.T) {
	if got := GetEnvNumeric("TEST_MISSING_NUMERIC", 5); got != 5 {
		t.Fatalf("unexpected value: got %v, want 5", got)
	}

	t.Setenv("TEST_NUMERIC", "12")
	if got := GetEnvNumeric("TEST_NUMERIC", 5); got != 12 {
		t.Fatalf("unexpected value: got %v, want 12", got)
	}

	t.Setenv("TEST_NUMERIC", "many")
	if got := GetEnvNumeric("TEST_NUMERIC", 5); got != 5 {
		t.Fatalf("non-numeric value must return the default: got %v", got)
	}
}

func TestGetEnvBool(t *testing.T) {
	t.Setenv("TEST_BOOL", "true")
	if !GetEnvBool("TEST_BOOL", false) {
		t.Fatal("expected true")
	}

	t.Setenv("TEST_BOOL", "yes")
	if GetEnvBool("TEST_BOOL", false) {
		t.Fatal("non-boolean value must return the default")
	}
}

func TestGetEnvString(t *testing.T) {
	if got := GetEnvString("TEST_MISSING_STRING", "fallback"); got != "fallback" {
		t.Fatalf("unexpected value: got %q, want %q", got, "fallback")
	}

	t.Setenv("TEST_STRING", "value")
	if got := GetEnvString("TEST_STRING", "fallback"); got != "value" {
		t.Fatalf("unexpected value: got %q, want %q", got, "value")
	}
}
