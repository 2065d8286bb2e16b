package sendmfacode

import (
	"partner-dashboard/internal/common/auth"
	"partner-dashboard/internal/common/logger"
)

type Input struct {
	UserID string `json:"userId"`
}

type Output struct {
	Success bool   `json:"success"`
	Warning string `json:"warning,omitempty"`
}

// WarningNoTransport is returned when the code was stored but no mail
// transport is configured to deliver it.
const WarningNoTransport = "Email rendszer nincs beállítva, de a kód generálva."

type ServiceDependencies struct {
	Logger   logger.Logger
	Store    CodeStore
	Cooldown Cooldown
	// Mailer may be nil: the code is then stored but not sent.
	Mailer Mailer
}

// Caller is the authenticated identity behind the request.
type Caller = auth.Identity
