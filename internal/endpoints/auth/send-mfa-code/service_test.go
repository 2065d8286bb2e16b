package sendmfacode

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"partner-dashboard/internal/common/errors"
	"partner-dashboard/internal/common/logger"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, store CodeStore, cd Cooldown, mailer Mailer) *Service {
	t.Helper()
	svc := NewService(ServiceDependencies{
		Logger:   logger.NewTestLogger(t),
		Store:    store,
		Cooldown: cd,
		Mailer:   mailer,
	}, DefaultConfig())
	svc.newCode = func() (string, error) { return "123456", nil }
	svc.now = func() time.Time { return fixedNow }
	return svc
}

var caller = &Caller{ID: "user-1", Email: "anna@example.com"}

func TestGenerateCode_SixDigitsInRange(t *testing.T) {
	pattern := regexp.MustCompile(`^\d{6}$`)
	for i := 0; i < 200; i++ {
		code, err := GenerateCode()
		require.NoError(t, err)
		require.Regexp(t, pattern, code)
		n, _ := strconv.Atoi(code)
		assert.GreaterOrEqual(t, n, 100000)
		assert.LessOrEqual(t, n, 999999)
	}
}

func TestExecute_SendsCode(t *testing.T) {
	store := new(MockStore)
	cd := new(MockCooldown)
	mailer := new(MockMailer)

	cd.On("Acquire", mock.Anything, "user-1", 60*time.Second).Return(true, time.Duration(0), nil)
	store.On("SaveCode", mock.Anything, "user-1", "123456", fixedNow.Add(10*time.Minute)).Return(nil)
	mailer.On("Send", mock.Anything, mock.MatchedBy(func(m Message) bool {
		return m.To == "anna@example.com" &&
			m.Subject == "Umbroll MFA Kód" &&
			m.Text == "A belépési kódod: 123456" &&
			m.HTML == "<h2>Belépési kód: 123456</h2><p>10 percig érvényes.</p>" &&
			m.From.String() == `"Umbroll Security" <security@umbroll.com>`
	})).Return("msg-1", nil)

	out, err := newTestService(t, store, cd, mailer).Execute(context.Background(), caller, &Input{UserID: "user-1"})
	require.NoError(t, err)
	assert.Equal(t, &Output{Success: true}, out)

	store.AssertExpectations(t)
	cd.AssertExpectations(t)
	mailer.AssertExpectations(t)
}

func TestExecute_UserMismatchIsForbidden(t *testing.T) {
	store := new(MockStore)
	_, err := newTestService(t, store, nil, nil).Execute(context.Background(), caller, &Input{UserID: "someone-else"})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeForbidden))
	store.AssertNotCalled(t, "SaveCode", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestExecute_CooldownActive(t *testing.T) {
	store := new(MockStore)
	cd := new(MockCooldown)
	cd.On("Acquire", mock.Anything, "user-1", 60*time.Second).Return(false, 42*time.Second, nil)

	_, err := newTestService(t, store, cd, nil).Execute(context.Background(), caller, &Input{UserID: "user-1"})
	require.Error(t, err)
	std := errors.AsStandard(err)
	assert.Equal(t, errors.ErrCodeRateLimited, std.Code)
	assert.Equal(t, 42, std.Metadata["retryAfterSeconds"])
	store.AssertNotCalled(t, "SaveCode", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestExecute_CooldownErrorDoesNotBlock(t *testing.T) {
	store := new(MockStore)
	cd := new(MockCooldown)
	cd.On("Acquire", mock.Anything, "user-1", mock.Anything).Return(false, time.Duration(0), fmt.Errorf("redis down"))
	store.On("SaveCode", mock.Anything, "user-1", "123456", mock.Anything).Return(nil)

	out, err := newTestService(t, store, cd, nil).Execute(context.Background(), caller, &Input{UserID: "user-1"})
	require.NoError(t, err)
	assert.True(t, out.Success)
}

func TestExecute_DatabaseFailureReleasesCooldown(t *testing.T) {
	store := new(MockStore)
	cd := new(MockCooldown)
	mailer := new(MockMailer)
	cd.On("Acquire", mock.Anything, "user-1", mock.Anything).Return(true, time.Duration(0), nil)
	cd.On("Release", mock.Anything, "user-1").Return(nil)
	store.On("SaveCode", mock.Anything, "user-1", "123456", mock.Anything).Return(fmt.Errorf("connection reset"))

	_, err := newTestService(t, store, cd, mailer).Execute(context.Background(), caller, &Input{UserID: "user-1"})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeDatabaseUpdateFailed))
	cd.AssertCalled(t, "Release", mock.Anything, "user-1")
	mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestExecute_NoMailerReturnsWarning(t *testing.T) {
	store := new(MockStore)
	store.On("SaveCode", mock.Anything, "user-1", "123456", mock.Anything).Return(nil)

	out, err := newTestService(t, store, nil, nil).Execute(context.Background(), caller, &Input{UserID: "user-1"})
	require.NoError(t, err)
	assert.Equal(t, &Output{Success: true, Warning: WarningNoTransport}, out)
}

func TestExecute_SendFailure(t *testing.T) {
	store := new(MockStore)
	cd := new(MockCooldown)
	mailer := new(MockMailer)
	cd.On("Acquire", mock.Anything, "user-1", mock.Anything).Return(true, time.Duration(0), nil)
	cd.On("Release", mock.Anything, "user-1").Return(nil)
	store.On("SaveCode", mock.Anything, "user-1", "123456", mock.Anything).Return(nil)
	mailer.On("Send", mock.Anything, mock.Anything).Return("", fmt.Errorf("535 auth failed"))

	_, err := newTestService(t, store, cd, mailer).Execute(context.Background(), caller, &Input{UserID: "user-1"})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeEmailSendFailed))
	cd.AssertCalled(t, "Release", mock.Anything, "user-1")
}

func TestExecute_UndeliverableEmail(t *testing.T) {
	store := new(MockStore)
	mailer := new(MockMailer)
	store.On("SaveCode", mock.Anything, "user-2", "123456", mock.Anything).Return(nil)

	_, err := newTestService(t, store, nil, mailer).Execute(context.Background(),
		&Caller{ID: "user-2"}, &Input{UserID: "user-2"})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeEmailSendFailed))
	mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}
