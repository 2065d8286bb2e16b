package sendmfacode

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"partner-dashboard/internal/common/errors"
	"partner-dashboard/internal/common/logger"
	"partner-dashboard/internal/common/metrics"
	"partner-dashboard/internal/common/validation"
)

type Service struct {
	config   *Config
	logger   logger.Logger
	store    CodeStore
	cooldown Cooldown
	mailer   Mailer
	newCode  func() (string, error)
	now      func() time.Time
}

func NewService(deps ServiceDependencies, config *Config) *Service {
	return &Service{
		config:   config,
		logger:   deps.Logger,
		store:    deps.Store,
		cooldown: deps.Cooldown,
		mailer:   deps.Mailer,
		newCode:  GenerateCode,
		now:      time.Now,
	}
}

// GenerateCode returns a uniformly random six digit code in [100000, 999999].
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// Execute issues a code for caller. The caller must already be
// authenticated and the input validated against the schema.
func (s *Service) Execute(ctx context.Context, caller *Caller, input *Input) (*Output, error) {
	if input.UserID != caller.ID {
		metrics.MFACodesIssued.WithLabelValues("forbidden").Inc()
		return nil, errors.NewForbiddenError("userId does not match the authenticated user")
	}

	log := s.logger.WithFields(map[string]interface{}{"userId": caller.ID})

	if s.cooldown != nil {
		ok, wait, err := s.cooldown.Acquire(ctx, caller.ID, s.config.Cooldown)
		if err != nil {
			// an unavailable cache must not lock users out
			log.WithError(err).Warn("Cooldown check failed, continuing", map[string]interface{}{
				"errorCode": string(errors.AsStandard(err).Code),
			})
		} else if !ok {
			metrics.MFACodesIssued.WithLabelValues("rate_limited").Inc()
			return nil, errors.NewRateLimitedError(wait)
		}
	}

	code, err := s.newCode()
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	expiresAt := s.now().Add(s.config.CodeTTL)

	if err := s.store.SaveCode(ctx, caller.ID, code, expiresAt); err != nil {
		s.release(ctx, log, caller.ID)
		metrics.MFACodesIssued.WithLabelValues("db_failed").Inc()
		return nil, errors.NewDatabaseUpdateFailedError(err)
	}

	if s.mailer == nil {
		log.Warn("No mail transport configured, code stored without delivery", nil)
		metrics.MFACodesIssued.WithLabelValues("stored_only").Inc()
		return &Output{Success: true, Warning: WarningNoTransport}, nil
	}

	if !validation.ValidateEmail(caller.Email) {
		s.release(ctx, log, caller.ID)
		metrics.MFACodesIssued.WithLabelValues("send_failed").Inc()
		return nil, errors.NewEmailSendFailedError(fmt.Errorf("caller has no deliverable email address"))
	}

	messageID, err := s.mailer.Send(ctx, renderMessage(s.config, caller.Email, code))
	if err != nil {
		s.release(ctx, log, caller.ID)
		metrics.MFACodesIssued.WithLabelValues("send_failed").Inc()
		return nil, errors.NewEmailSendFailedError(err)
	}

	log.Info("MFA code sent", map[string]interface{}{
		"provider":  s.mailer.Provider(),
		"messageId": messageID,
		"expiresAt": expiresAt.UTC().Format(time.RFC3339),
	})
	metrics.MFACodesIssued.WithLabelValues("sent").Inc()

	return &Output{Success: true}, nil
}

func (s *Service) release(ctx context.Context, log logger.Logger, userID string) {
	if s.cooldown == nil {
		return
	}
	if err := s.cooldown.Release(ctx, userID); err != nil {
		log.WithError(err).Warn("Failed to release cooldown", nil)
	}
}
