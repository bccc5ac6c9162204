package alerts

import (
	"context"
	"encoding/json"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/fanvault/backoffice/internal/config"
	"github.com/fanvault/backoffice/internal/logging"
)

var (
	client *asynq.Client
	server *asynq.Server
)

// Init starts the Asynq server and initializes a shared client.
func Init() {
	opts := asynq.RedisClientOpt{Addr: config.C.RedisAddr}
	client = asynq.NewClient(opts)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskWelcomeEmail, handleWelcomeEmail)
	mux.HandleFunc(TaskPasswordReset, handlePasswordReset)
	mux.HandleFunc(TaskPayoutDecision, handlePayoutDecision)
	mux.HandleFunc(TaskVerificationDecision, handleVerificationDecision)
	mux.HandleFunc(TaskComplaintResolved, handleComplaintResolved)

	server = asynq.NewServer(opts, asynq.Config{
		Concurrency: 5,
		Queues: map[string]int{
			"emails": 10,
		},
	})
	go func() {
		if err := server.Run(mux); err != nil {
			logging.L.Error("asynq server stopped", zap.Error(err))
		}
	}()

	logging.L.Info("asynq initialized", zap.String("addr", config.C.RedisAddr))
}

// Close releases client and stops server.
func Close() {
	if client != nil {
		_ = client.Close()
	}
	if server != nil {
		server.Shutdown()
	}
}

func handleWelcomeEmail(_ context.Context, t *asynq.Task) error {
	var p WelcomeEmailPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return err
	}
	if err := SendEmail(p.Email, p.Envelope.Subject, p.Envelope.Body); err != nil {
		logging.L.Error("welcome email send failed", zap.Error(err))
		return err
	}
	logging.L.Info("welcome email sent", zap.String("to", p.Email), zap.String("user", p.UserID))
	return nil
}

func handlePasswordReset(_ context.Context, t *asynq.Task) error {
	var p PasswordResetPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return err
	}
	if err := SendEmail(p.Email, p.Envelope.Subject, p.Envelope.Body); err != nil {
		logging.L.Error("password reset email send failed", zap.Error(err))
		return err
	}
	logging.L.Info("password reset email sent", zap.String("to", p.Email))
	return nil
}

func handlePayoutDecision(_ context.Context, t *asynq.Task) error {
	var p PayoutDecisionPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return err
	}
	if err := SendEmail(p.Email, p.Envelope.Subject, p.Envelope.Body); err != nil {
		logging.L.Error("payout decision email send failed", zap.Error(err))
		return err
	}
	logging.L.Info("payout decision email sent",
		zap.String("payout", p.PayoutID), zap.String("decision", p.Decision))
	return nil
}

func handleVerificationDecision(_ context.Context, t *asynq.Task) error {
	var p VerificationDecisionPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return err
	}
	if err := SendEmail(p.Email, p.Envelope.Subject, p.Envelope.Body); err != nil {
		logging.L.Error("verification decision email send failed", zap.Error(err))
		return err
	}
	logging.L.Info("verification decision email sent",
		zap.String("verification", p.VerificationID), zap.String("decision", p.Decision))
	return nil
}

func handleComplaintResolved(_ context.Context, t *asynq.Task) error {
	var p ComplaintResolvedPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return err
	}
	if err := SendEmail(p.Email, p.Envelope.Subject, p.Envelope.Body); err != nil {
		logging.L.Error("complaint outcome email send failed", zap.Error(err))
		return err
	}
	logging.L.Info("complaint outcome email sent", zap.String("complaint", p.ComplaintID))
	return nil
}
