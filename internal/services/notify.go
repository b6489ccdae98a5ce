package services

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/gobuddy-app/gobuddy-backend/internal/models"
)

// NotificationService sends WhatsApp messages to runners and callers via
// Twilio. When credentials are absent it degrades to a logged no-op so local
// development works without a Twilio account.
type NotificationService struct {
	client *twilio.RestClient
	from   string // Twilio WhatsApp number, format "whatsapp:+14155238886"
}

// NewNotificationService creates a notification service from
// TWILIO_ACCOUNT_SID / TWILIO_AUTH_TOKEN / TWILIO_WHATSAPP_FROM.
func NewNotificationService() *NotificationService {
	accountSid := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")
	from := os.Getenv("TWILIO_WHATSAPP_FROM")

	if accountSid == "" || authToken == "" || from == "" {
		slog.Warn("Twilio credentials not set - notifications disabled")
		return &NotificationService{}
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSid,
		Password: authToken,
	})

	return &NotificationService{
		client: client,
		from:   from,
	}
}

// Enabled reports whether outbound messages will actually be sent.
func (n *NotificationService) Enabled() bool {
	return n.client != nil
}

// SendWhatsApp sends a WhatsApp message to the given phone number.
func (n *NotificationService) SendWhatsApp(to, message string) error {
	if !n.Enabled() {
		slog.Debug("Notification skipped (Twilio disabled)", "to", to)
		return nil
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(n.from)
	params.SetTo(fmt.Sprintf("whatsapp:%s", to))
	params.SetBody(message)

	resp, err := n.client.Api.CreateMessage(params)
	if err != nil {
		slog.Error("Failed to send WhatsApp message", "to", to, "error", err)
		return err
	}

	slog.Info("WhatsApp message sent", "sid", *resp.Sid)
	return nil
}

// NotifySettlementCreated tells a runner their earnings for a period are
// batched and pending payout.
func (n *NotificationService) NotifySettlementCreated(runner *models.Runner, s *models.Settlement) error {
	message := fmt.Sprintf(
		"Hi %s! Your GoBuddy settlement for %s to %s is ready: ₱%.2f across %d errands. Payout is on the way.",
		runner.Name,
		s.PeriodStart.Format("Jan 2"),
		s.PeriodEnd.Format("Jan 2"),
		s.TotalEarnings,
		s.TotalErrands,
	)
	return n.SendWhatsApp(runner.Phone, message)
}

// NotifySettlementPaid tells a runner their payout went through.
func (n *NotificationService) NotifySettlementPaid(runner *models.Runner, s *models.Settlement) error {
	message := fmt.Sprintf(
		"Hi %s! Your settlement of ₱%.2f (%s to %s) has been paid out.",
		runner.Name,
		s.TotalEarnings,
		s.PeriodStart.Format("Jan 2"),
		s.PeriodEnd.Format("Jan 2"),
	)
	return n.SendWhatsApp(runner.Phone, message)
}

// NotifyErrandCompleted tells a caller their errand is done.
func (n *NotificationService) NotifyErrandCompleted(caller *models.Caller, e *models.Errand) error {
	message := fmt.Sprintf(
		"Hi %s! Your errand %s (%s) has been completed. Don't forget to rate your BuddyRunner!",
		caller.Name,
		e.ErrandID,
		e.Category,
	)
	return n.SendWhatsApp(caller.Phone, message)
}
