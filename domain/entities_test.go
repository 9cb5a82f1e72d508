package domain

import (
	"testing"
	"time"
)

func TestSession_Valid(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		session     *Session
		expectValid bool
		description string
	}{
		{
			name: "live session",
			session: &Session{
				ID:        "sess-1",
				UserID:    "user-1",
				ExpiresAt: now.Add(24 * time.Hour),
				CreatedAt: now.Add(-time.Hour),
			},
			expectValid: true,
			description: "session expiring in the future is valid",
		},
		{
			name: "expired session",
			session: &Session{
				ID:        "sess-2",
				UserID:    "user-1",
				ExpiresAt: now.Add(-time.Minute),
				CreatedAt: now.Add(-48 * time.Hour),
			},
			expectValid: false,
			description: "session past its expiry must be rejected",
		},
		{
			name: "session expiring exactly now",
			session: &Session{
				ID:        "sess-3",
				UserID:    "user-2",
				ExpiresAt: now,
			},
			expectValid: false,
			description: "validity requires now strictly before expiresAt",
		},
		{
			name:        "nil session",
			session:     nil,
			expectValid: false,
			description: "nil session is never valid",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.session.Valid(now); got != tt.expectValid {
				t.Errorf("Valid() = %v, want %v (%s)", got, tt.expectValid, tt.description)
			}
		})
	}
}

func TestParseSocialProvider(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		expected  SocialProvider
		expectErr bool
	}{
		{name: "google", input: "google", expected: SocialGoogle},
		{name: "unknown provider", input: "myspace", expectErr: true},
		{name: "empty string", input: "", expectErr: true},
		{name: "case sensitive", input: "Google", expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSocialProvider(tt.input)
			if tt.expectErr {
				if err == nil {
					t.Fatalf("expected error for %q, got provider %q", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("expected provider %q, got %q", tt.expected, got)
			}
		})
	}
}
