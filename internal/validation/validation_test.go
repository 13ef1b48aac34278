package validation

import (
	"bytes"
	"io"
	"math"
	"testing"
	"time"
)

func TestValidateGoalTarget(t *testing.T) {
	tests := []struct {
		target float64
		ok     bool
	}{
		{2000, true},
		{0.5, true},
		{0, false},
		{-4, false},
		{math.NaN(), false},
		{math.Inf(1), false},
		{MaxGoalTarget + 1, false},
	}
	for _, tt := range tests {
		err := ValidateGoalTarget(tt.target)
		if (err == nil) != tt.ok {
			t.Errorf("ValidateGoalTarget(%v) error = %v, want ok=%v", tt.target, err, tt.ok)
		}
	}
}

func TestValidateEmail(t *testing.T) {
	for _, email := range []string{"a@example.com", "first.last@sub.example.org"} {
		if err := ValidateEmail(email); err != nil {
			t.Errorf("ValidateEmail(%q) = %v", email, err)
		}
	}
	for _, email := range []string{"", "not-an-email", "Name <a@example.com>"} {
		if err := ValidateEmail(email); err == nil {
			t.Errorf("ValidateEmail(%q) = nil, want error", email)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("correct horse battery"); err != nil {
		t.Fatalf("strong password rejected: %v", err)
	}
	for _, pw := range []string{"short", "mypassword99", string(bytes.Repeat([]byte("x"), 73))} {
		if err := ValidatePassword(pw); err == nil {
			t.Errorf("ValidatePassword(%q) = nil, want error", pw)
		}
	}
}

func TestValidateEventTime(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	if err := ValidateEventTime(now.Add(-48*time.Hour), now); err != nil {
		t.Fatalf("past entry rejected: %v", err)
	}
	if err := ValidateEventTime(now.Add(time.Minute), now); err != nil {
		t.Fatalf("entry within skew rejected: %v", err)
	}
	if err := ValidateEventTime(now.Add(time.Hour), now); err == nil {
		t.Fatal("future entry accepted")
	}
}

func TestSniffPhoto(t *testing.T) {
	png := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)

	contentType, ext, r, err := SniffPhoto(bytes.NewReader(png), int64(len(png)))
	if err != nil {
		t.Fatalf("SniffPhoto: %v", err)
	}
	if contentType != "image/png" || ext != ".png" {
		t.Fatalf("got %s %s, want image/png .png", contentType, ext)
	}
	replayed, _ := io.ReadAll(r)
	if !bytes.Equal(replayed, png) {
		t.Fatalf("replayed %d bytes, want %d", len(replayed), len(png))
	}

	if _, _, _, err := SniffPhoto(bytes.NewReader([]byte("plain text, not an image")), 24); err == nil {
		t.Fatal("text accepted as photo")
	}
	if _, _, _, err := SniffPhoto(bytes.NewReader(nil), 0); err == nil {
		t.Fatal("empty photo accepted")
	}
	if _, _, _, err := SniffPhoto(bytes.NewReader(png), MaxPhotoSize+1); err == nil {
		t.Fatal("oversized photo accepted")
	}
}
