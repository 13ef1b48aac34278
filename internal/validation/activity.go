package validation

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// Logged timestamps may run slightly ahead of the server clock.
const maxClockSkew = 5 * time.Minute

// ValidateAmount rejects negative and non-finite quantities.
func ValidateAmount(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%s must be a number", name)
	}
	if v < 0 {
		return fmt.Errorf("%s must not be negative", name)
	}
	return nil
}

func ValidateLabel(name, v string) error {
	v = strings.TrimSpace(v)
	if v == "" {
		return fmt.Errorf("%s is required", name)
	}
	if len(v) > 200 {
		return fmt.Errorf("%s is too long (max 200 characters)", name)
	}
	return nil
}

// ValidateEventTime rejects entries dated in the future.
func ValidateEventTime(at, now time.Time) error {
	if at.After(now.Add(maxClockSkew)) {
		return errors.New("time must not be in the future")
	}
	return nil
}
