package service

import (
	"fmt"
	"strconv"

	"github.com/fitfuel/fitfuel/internal/model"
)

func goalReachedEmailTemplate(goal *model.Goal, dashboardURL, appName string) (string, string) {
	label := goal.GoalType.Label()
	target := strconv.FormatFloat(goal.TargetValue, 'f', -1, 64)
	current := strconv.FormatFloat(goal.CurrentValue, 'f', -1, 64)

	subject := fmt.Sprintf("Goal reached: %s", label)
	body := fmt.Sprintf(`Nice work!

You reached your %s goal: %s of %s %s.

See all your goals:
%s

Best,
The %s Team`, label, current, target, goal.Unit, dashboardURL, appName)

	return subject, body
}
