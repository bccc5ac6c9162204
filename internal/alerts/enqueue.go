package alerts

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hibiken/asynq"

	"github.com/fanvault/backoffice/internal/config"
)

// ensureClient returns a usable client instance
func ensureClient() *asynq.Client {
	if client == nil {
		Init()
	}
	return client
}

// EnqueueWelcomeEmail schedules a welcome email to the user
func EnqueueWelcomeEmail(userID, email, name string) error {
	base := strings.TrimRight(config.C.AppURL, "/")

	subject := fmt.Sprintf("Welcome to FanVault, %s!", name)
	body := fmt.Sprintf("Hi %s, thanks for joining FanVault.\n\nOpen your dashboard: %s\n", name, base)

	payload := WelcomeEmailPayload{
		UserID: userID, Name: name, Email: email,
		Envelope: EmailEnvelope{To: email, Subject: subject, Body: body},
		SentAt:   time.Now(),
	}
	b, _ := json.Marshal(payload)
	_, err := ensureClient().Enqueue(asynq.NewTask(TaskWelcomeEmail, b), asynq.Queue("emails"))
	return err
}

// EnqueuePasswordReset schedules a password reset notification
func EnqueuePasswordReset(userID, email, resetURL, name string) error {
	subject := "Password reset instructions"
	body := fmt.Sprintf("Hello %s,\n\nWe received a request to reset your FanVault password.\n\nTo proceed, open the link below:\n%s\n\nThis link expires in %d minutes. If you did not request this, no action is required.\n",
		name, resetURL, int(config.C.PasswordResetTTL.Minutes()))

	payload := PasswordResetPayload{
		UserID: userID, Email: email, ResetURL: resetURL,
		Envelope:  EmailEnvelope{To: email, Subject: subject, Body: body},
		Requested: time.Now(),
	}
	b, _ := json.Marshal(payload)
	_, err := ensureClient().Enqueue(asynq.NewTask(TaskPasswordReset, b), asynq.Queue("emails"))
	return err
}

// EnqueuePayoutDecision notifies the creator of an approve/reject decision
func EnqueuePayoutDecision(payoutID, creatorID, email, decision, note string, amountCents int64) error {
	subject := fmt.Sprintf("Your payout request was %s", decision)
	body := fmt.Sprintf("Payout %s for %.2f was %s.", payoutID, float64(amountCents)/100, decision)
	if note != "" {
		body += "\n\nReviewer note: " + note
	}

	payload := PayoutDecisionPayload{
		PayoutID: payoutID, CreatorID: creatorID, Email: email,
		Decision: decision, AmountCents: amountCents, Note: note,
		Envelope: EmailEnvelope{To: email, Subject: subject, Body: body},
		SentAt:   time.Now(),
	}
	b, _ := json.Marshal(payload)
	_, err := ensureClient().Enqueue(asynq.NewTask(TaskPayoutDecision, b), asynq.Queue("emails"))
	return err
}

// EnqueueVerificationDecision notifies the user of a KYC review outcome
func EnqueueVerificationDecision(verificationID, userID, email, decision, note string) error {
	subject := fmt.Sprintf("Your identity verification was %s", decision)
	body := fmt.Sprintf("Your verification submission %s was %s.", verificationID, decision)
	if note != "" {
		body += "\n\nReviewer note: " + note
	}

	payload := VerificationDecisionPayload{
		VerificationID: verificationID, UserID: userID, Email: email,
		Decision: decision, Note: note,
		Envelope: EmailEnvelope{To: email, Subject: subject, Body: body},
		SentAt:   time.Now(),
	}
	b, _ := json.Marshal(payload)
	_, err := ensureClient().Enqueue(asynq.NewTask(TaskVerificationDecision, b), asynq.Queue("emails"))
	return err
}

// EnqueueComplaintResolved notifies the reporter when a complaint is closed
func EnqueueComplaintResolved(complaintID, reporterID, email, outcome, resolution string) error {
	subject := "Update on your report"
	body := fmt.Sprintf("Your report %s was %s.", complaintID, outcome)
	if resolution != "" {
		body += "\n\nResolution: " + resolution
	}

	payload := ComplaintResolvedPayload{
		ComplaintID: complaintID, ReporterID: reporterID, Email: email,
		Outcome: outcome, Resolution: resolution,
		Envelope: EmailEnvelope{To: email, Subject: subject, Body: body},
		SentAt:   time.Now(),
	}
	b, _ := json.Marshal(payload)
	_, err := ensureClient().Enqueue(asynq.NewTask(TaskComplaintResolved, b), asynq.Queue("emails"))
	return err
}
