package alerts

import "time"

// Task type constants
const (
	TaskWelcomeEmail         = "email:welcome"
	TaskPasswordReset        = "email:password_reset"
	TaskPayoutDecision       = "email:payout_decision"
	TaskVerificationDecision = "email:verification_decision"
	TaskComplaintResolved    = "email:complaint_resolved"
)

// Common envelope for email-like notifications
type EmailEnvelope struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type WelcomeEmailPayload struct {
	UserID   string        `json:"user_id"`
	Name     string        `json:"name"`
	Email    string        `json:"email"`
	Envelope EmailEnvelope `json:"envelope"`
	SentAt   time.Time     `json:"sent_at"`
}

type PasswordResetPayload struct {
	UserID    string        `json:"user_id"`
	Email     string        `json:"email"`
	ResetURL  string        `json:"reset_url"`
	Envelope  EmailEnvelope `json:"envelope"`
	Requested time.Time     `json:"requested"`
}

// PayoutDecisionPayload is sent to the creator after an admin reviews a
// payout request.
type PayoutDecisionPayload struct {
	PayoutID    string        `json:"payout_id"`
	CreatorID   string        `json:"creator_id"`
	Email       string        `json:"email"`
	Decision    string        `json:"decision"` // approved|rejected
	AmountCents int64         `json:"amount_cents"`
	Note        string        `json:"note"`
	Envelope    EmailEnvelope `json:"envelope"`
	SentAt      time.Time     `json:"sent_at"`
}

// VerificationDecisionPayload is sent to the user after a KYC review.
type VerificationDecisionPayload struct {
	VerificationID string        `json:"verification_id"`
	UserID         string        `json:"user_id"`
	Email          string        `json:"email"`
	Decision       string        `json:"decision"` // approved|rejected
	Note           string        `json:"note"`
	Envelope       EmailEnvelope `json:"envelope"`
	SentAt         time.Time     `json:"sent_at"`
}

// ComplaintResolvedPayload is sent to the reporter when their complaint is
// resolved or dismissed.
type ComplaintResolvedPayload struct {
	ComplaintID string        `json:"complaint_id"`
	ReporterID  string        `json:"reporter_id"`
	Email       string        `json:"email"`
	Outcome     string        `json:"outcome"` // resolved|dismissed
	Resolution  string        `json:"resolution"`
	Envelope    EmailEnvelope `json:"envelope"`
	SentAt      time.Time     `json:"sent_at"`
}
