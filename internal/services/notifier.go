package services

import (
	"context"
	"fmt"

	userrepo "github.com/edulearn/edulearn-backend/internal/data/repos/user"
	types "github.com/edulearn/edulearn-backend/internal/domain"
	"github.com/edulearn/edulearn-backend/internal/platform/ctxutil"
	"github.com/edulearn/edulearn-backend/internal/platform/dbctx"
	"github.com/edulearn/edulearn-backend/internal/platform/logger"
	"github.com/edulearn/edulearn-backend/internal/platform/sendgrid"
	"github.com/edulearn/edulearn-backend/internal/realtime"
	"github.com/edulearn/edulearn-backend/internal/realtime/bus"
)

// Notifier fans domain events out to the event bus and email. Every method
// is best-effort: failures are logged and never returned.
type Notifier interface {
	EnrollmentCreated(ctx context.Context, lesson *types.Lesson, enrollment *types.LessonEnrollment, payment *types.Payment)
	LessonCompleted(ctx context.Context, enrollment *types.LessonEnrollment)
	PodcastPublished(ctx context.Context, podcast *types.Podcast, shares *ShareResults)
	ApplicationStatusChanged(ctx context.Context, app *types.JobApplication)
}

type notifier struct {
	log    *logger.Logger
	bus    bus.Bus
	mailer sendgrid.Client
	users  userrepo.UserRepo
}

func NewNotifier(baseLog *logger.Logger, b bus.Bus, mailer sendgrid.Client, users userrepo.UserRepo) Notifier {
	if b == nil {
		b = bus.Nop{}
	}
	if mailer == nil {
		mailer = sendgrid.Nop{}
	}
	return &notifier{
		log:    baseLog.With("service", "Notifier"),
		bus:    b,
		mailer: mailer,
		users:  users,
	}
}

func (n *notifier) publish(ctx context.Context, evt realtime.Event) {
	if err := n.bus.Publish(ctxutil.Default(ctx), evt); err != nil {
		n.log.Warn("publish event failed", "type", evt.Type, "error", err)
	}
}

func (n *notifier) email(ctx context.Context, userID uint, subject, text string) {
	if n.users == nil {
		return
	}
	u, err := n.users.GetByID(dbctx.Context{Ctx: ctx}, userID)
	if err != nil || u == nil {
		n.log.Warn("email recipient lookup failed", "user_id", userID, "error", err)
		return
	}
	_, err = n.mailer.Send(ctxutil.Default(ctx), sendgrid.SendEmailRequest{
		To:      sendgrid.EmailAddress{Email: u.Email, Name: u.Username},
		Subject: subject,
		Text:    text,
	})
	if err != nil {
		n.log.Warn("send email failed", "user_id", userID, "subject", subject, "error", err)
	}
}

func (n *notifier) EnrollmentCreated(ctx context.Context, lesson *types.Lesson, e *types.LessonEnrollment, p *types.Payment) {
	data := map[string]any{
		"enrollment_id": e.ID,
		"price_paid":    e.PricePaid,
	}
	if p != nil {
		data["payment_id"] = p.ID
		data["transaction_id"] = p.TransactionID
	}
	evt := realtime.NewEvent(realtime.EventEnrollmentCreated, e.UserID, data)
	evt.LessonID = e.LessonID
	n.publish(ctx, evt)

	text := fmt.Sprintf("You are now enrolled in %q.", lesson.Title)
	if p != nil {
		text += fmt.Sprintf("\n\nAmount paid: %.2f\nTransaction: %s", p.Amount, p.TransactionID)
	}
	n.email(ctx, e.UserID, "Enrollment confirmed: "+lesson.Title, text)
}

func (n *notifier) LessonCompleted(ctx context.Context, e *types.LessonEnrollment) {
	evt := realtime.NewEvent(realtime.EventLessonCompleted, e.UserID, map[string]any{
		"enrollment_id": e.ID,
		"completed_at":  e.CompletedAt,
	})
	evt.LessonID = e.LessonID
	n.publish(ctx, evt)
}

func (n *notifier) PodcastPublished(ctx context.Context, p *types.Podcast, shares *ShareResults) {
	data := map[string]any{"podcast_id": p.ID, "title": p.Title}
	if shares != nil {
		data["shared"] = shares.SuccessCount()
	}
	n.publish(ctx, realtime.NewEvent(realtime.EventPodcastPublished, p.PublisherID, data))
}

func (n *notifier) ApplicationStatusChanged(ctx context.Context, a *types.JobApplication) {
	n.publish(ctx, realtime.NewEvent(realtime.EventApplicationStatusChanged, a.UserID, map[string]any{
		"application_id": a.ID,
		"job_id":         a.JobID,
		"status":         a.Status,
	}))
	title := "your application"
	if a.Job != nil {
		title = a.Job.Title
	}
	text := fmt.Sprintf("The status of your application for %s is now: %s.", title, a.Status)
	if a.Feedback != "" {
		text += "\n\nFeedback: " + a.Feedback
	}
	n.email(ctx, a.UserID, "Application update: "+title, text)
}
