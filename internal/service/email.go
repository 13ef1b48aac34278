package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fitfuel/fitfuel/internal/model"
	"github.com/fitfuel/fitfuel/internal/repository"
	"github.com/resend/resend-go/v2"
)

type EmailService struct {
	client    *resend.Client
	fromEmail string
	isDev     bool
	appURL    string
	appName   string
}

func NewEmailService(apiKey, fromEmail, appURL, appName string, isDev bool) *EmailService {
	var client *resend.Client
	if apiKey != "" && !isDev {
		client = resend.NewClient(apiKey)
	}

	return &EmailService{
		client:    client,
		fromEmail: fromEmail,
		isDev:     isDev,
		appURL:    appURL,
		appName:   appName,
	}
}

func (s *EmailService) SendGoalReachedEmail(ctx context.Context, email string, goal *model.Goal) error {
	subject, body := goalReachedEmailTemplate(goal, s.appURL+"/api/goals", s.appName)

	if s.isDev {
		slog.Info("email sent (dev mode)", "type", "goal_reached", "to", email, "subject", subject, "goal_id", goal.ID)
		return nil
	}

	if s.client == nil {
		return fmt.Errorf("email service not configured (missing RESEND_API_KEY)")
	}

	params := &resend.SendEmailRequest{
		From:    s.fromEmail,
		To:      []string{email},
		Subject: subject,
		Text:    body,
	}

	_, err := s.client.Emails.SendWithContext(ctx, params)
	if err == nil {
		slog.Info("email sent", "type", "goal_reached", "to", email, "goal_id", goal.ID)
	}
	return err
}

// GoalMailer emails owners when a goal is reached. It implements Events and
// ignores everything else. Sends happen in the background.
type GoalMailer struct {
	email *EmailService
	users repository.UserRepository
}

func NewGoalMailer(email *EmailService, users repository.UserRepository) *GoalMailer {
	return &GoalMailer{email: email, users: users}
}

func (m *GoalMailer) ActivityLogged(string, string, time.Time) {}
func (m *GoalMailer) GoalsRefreshed(string, model.RefreshResult) {}

func (m *GoalMailer) GoalReached(_ context.Context, goal *model.Goal) {
	snapshot := *goal
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		user, err := m.users.ByID(ctx, snapshot.OwnerID)
		if err != nil {
			slog.Warn("failed to load goal owner for email", "error", err, "user_id", snapshot.OwnerID)
			return
		}
		if err := m.email.SendGoalReachedEmail(ctx, user.Email, &snapshot); err != nil {
			slog.Error("failed to send goal reached email", "error", err, "user_id", snapshot.OwnerID, "goal_id", snapshot.ID)
		}
	}()
}
