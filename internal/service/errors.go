package service

import (
	"errors"
	"fmt"

	"github.com/fitfuel/fitfuel/internal/model"
)

// ErrRefreshFailed is the message clients see when List falls back to
// stored values.
var ErrRefreshFailed = errors.New("goal progress could not be refreshed")

// ValidationError is returned before anything is written.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// AggregationError reports a failed activity log read for one goal.
type AggregationError struct {
	GoalID   string
	GoalType model.GoalType
	Err      error
}

func (e *AggregationError) Error() string {
	if e.GoalID == "" {
		return fmt.Sprintf("failed to aggregate %s: %v", e.GoalType, e.Err)
	}
	return fmt.Sprintf("failed to aggregate %s for goal %s: %v", e.GoalType, e.GoalID, e.Err)
}

func (e *AggregationError) Unwrap() error {
	return e.Err
}
