package validation

import (
	"errors"
	"math"
)

// MaxGoalTarget bounds targets to something a person could log.
const MaxGoalTarget = 1_000_000

func ValidateGoalTarget(target float64) error {
	switch {
	case math.IsNaN(target) || math.IsInf(target, 0):
		return errors.New("target must be a number")
	case target <= 0:
		return errors.New("target must be greater than zero")
	case target > MaxGoalTarget:
		return errors.New("target is unrealistically large")
	}
	return nil
}
