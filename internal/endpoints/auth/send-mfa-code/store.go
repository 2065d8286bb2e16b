package sendmfacode

import (
	"context"
	"fmt"
	"time"

	"partner-dashboard/internal/common/database"
	"partner-dashboard/internal/common/logger"
)

// CodeStore persists the issued code for later verification.
type CodeStore interface {
	SaveCode(ctx context.Context, userID, code string, expiresAt time.Time) error
}

const updateCodeQuery = `UPDATE user_mfa_settings
SET email_code = $1, email_code_expires_at = $2, email_code_attempts = 0
WHERE user_id = $3`

// PostgresCodeStore writes codes to user_mfa_settings.
type PostgresCodeStore struct {
	db     *database.PostgresClient
	logger logger.Logger
}

func NewPostgresCodeStore(db *database.PostgresClient, log logger.Logger) *PostgresCodeStore {
	return &PostgresCodeStore{db: db, logger: log}
}

// SaveCode overwrites the pending code and resets the attempt counter. A
// user without an MFA settings row is not an error; it is logged.
func (s *PostgresCodeStore) SaveCode(ctx context.Context, userID, code string, expiresAt time.Time) error {
	res, err := s.db.Exec(ctx, updateCodeQuery, code, expiresAt.UTC(), userID)
	if err != nil {
		return fmt.Errorf("update user_mfa_settings: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		s.logger.Warn("No MFA settings row for user, code not persisted", map[string]interface{}{
			"userId": userID,
		})
	}
	return nil
}
