package auth

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	accountMySQLRepo "github.com/agora-community/agora/auth/repository/account/mysql"
	memorySessionRepo "github.com/agora-community/agora/auth/repository/session/memory"
	tokenRepoLib "github.com/agora-community/agora/auth/repository/token"
	"github.com/agora-community/agora/domain"
	"github.com/agora-community/agora/kit/code"
	loggerKit "github.com/agora-community/agora/kit/logger"
	ormKit "github.com/agora-community/agora/kit/orm"
	utilKit "github.com/agora-community/agora/kit/util"
)

type testEnv struct {
	authUseCase domain.AuthUseCase
	accountRepo domain.AccountRepo
	sessionRepo *memorySessionRepo.SessionRepo
	tokenRepo   domain.TokenRepo
}

func createTestEnv(t *testing.T) *testEnv {
	db, err := ormKit.CreateDB(ormKit.UseSQLite(filepath.Join(t.TempDir(), "test.db")))
	assert.Nil(t, err)
	assert.Nil(t, db.Exec(`
		CREATE TABLE account (
			id INTEGER PRIMARY KEY,
			display_id TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			handle TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			role INTEGER NOT NULL,
			status INTEGER NOT NULL,
			last_login_at DATETIME,
			created_at DATETIME,
			updated_at DATETIME
		)
	`).Error)
	assert.Nil(t, db.Exec(`
		CREATE TABLE account_politician_profile (
			account_id INTEGER PRIMARY KEY,
			party TEXT,
			district TEXT
		)
	`).Error)

	accountRepo := accountMySQLRepo.CreateAccountRepo(db)
	sessionRepo := memorySessionRepo.CreateSessionRepo()
	tokenRepo, err := tokenRepoLib.CreateTokenRepo(tokenRepoLib.Config{
		AccessTokenSecret:  "access-secret-access-secret-access-secret",
		RefreshTokenSecret: "refresh-secret-refresh-secret-refresh-secret",
		Issuer:             "agora",
		Audience:           "agora-web",
	})
	assert.Nil(t, err)
	logger, err := loggerKit.NewLogger(filepath.Join(t.TempDir(), "test.log"), loggerKit.DebugLevel, loggerKit.NoStdout)
	assert.Nil(t, err)
	authUseCase, err := CreateAuthUseCase(accountRepo, tokenRepo, sessionRepo, logger)
	assert.Nil(t, err)

	return &testEnv{
		authUseCase: authUseCase,
		accountRepo: accountRepo,
		sessionRepo: sessionRepo,
		tokenRepo:   tokenRepo,
	}
}

func (env *testEnv) createAccount(t *testing.T, email, handle, password string, status domain.AccountStatus) *domain.Account {
	hashedPassword, err := utilKit.GetBcrypt(password)
	assert.Nil(t, err)
	uniqueIDGenerate, err := utilKit.GetUniqueIDGenerate()
	assert.Nil(t, err)
	uniqueID := uniqueIDGenerate.Generate()
	account, err := env.accountRepo.Create(&domain.Account{
		ID:        uniqueID.GetInt64(),
		DisplayID: uniqueID.GetBase62(),
		Email:     email,
		Handle:    handle,
		Password:  hashedPassword,
		Role:      domain.ACCOUNT_ROLE_NORMAL,
		Status:    status,
	})
	assert.Nil(t, err)
	return account
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	env := createTestEnv(t)
	env.createAccount(t, "citizen@example.com", "citizen", "Sup3r-secret", domain.ACCOUNT_STATUS_APPROVED)

	account, err := env.authUseCase.Login(ctx, "citizen@example.com", "Sup3r-secret")
	assert.Nil(t, err)
	assert.NotEmpty(t, account.AccessToken)
	assert.NotEmpty(t, account.RefreshToken)
	assert.Empty(t, account.Password)

	valid, err := env.sessionRepo.IsRefreshTokenValid(ctx, account.ID, account.RefreshToken)
	assert.Nil(t, err)
	assert.True(t, valid)

	stored, err := env.accountRepo.GetByID(account.ID)
	assert.Nil(t, err)
	assert.NotNil(t, stored.LastLoginAt)

	claims, err := env.authUseCase.Verify(ctx, account.AccessToken)
	assert.Nil(t, err)
	assert.Equal(t, account.ID, claims.AccountID)
}

func TestLoginInvalidCredentials(t *testing.T) {
	ctx := context.Background()
	env := createTestEnv(t)
	env.createAccount(t, "citizen@example.com", "citizen", "Sup3r-secret", domain.ACCOUNT_STATUS_APPROVED)

	// unknown email and wrong password fail identically
	_, unknownEmailErr := env.authUseCase.Login(ctx, "nobody@example.com", "Sup3r-secret")
	_, wrongPasswordErr := env.authUseCase.Login(ctx, "citizen@example.com", "not-the-password")

	for _, err := range []error{unknownEmailErr, wrongPasswordErr} {
		errorCode := code.ParseErrorCode(err)
		assert.Equal(t, http.StatusUnauthorized, errorCode.HTTPCode)
		assert.Equal(t, code.PasswordInvalid, errorCode.Code)
	}
	assert.Equal(t, code.ParseErrorCode(unknownEmailErr).Message, code.ParseErrorCode(wrongPasswordErr).Message)
}

func TestLoginStatusGate(t *testing.T) {
	ctx := context.Background()
	env := createTestEnv(t)

	testCases := []struct {
		scenario string
		status   domain.AccountStatus
		code     int
	}{
		{
			scenario: "pending",
			status:   domain.ACCOUNT_STATUS_PENDING,
			code:     code.PendingApproval,
		},
		{
			scenario: "suspended",
			status:   domain.ACCOUNT_STATUS_SUSPENDED,
			code:     code.Suspended,
		},
		{
			scenario: "banned",
			status:   domain.ACCOUNT_STATUS_BANNED,
			code:     code.Banned,
		},
		{
			scenario: "withdrawn",
			status:   domain.ACCOUNT_STATUS_WITHDRAWN,
			code:     code.Withdrawn,
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.scenario, func(t *testing.T) {
			email := testCase.scenario + "@example.com"
			env.createAccount(t, email, testCase.scenario, "Sup3r-secret", testCase.status)

			_, err := env.authUseCase.Login(ctx, email, "Sup3r-secret")
			errorCode := code.ParseErrorCode(err)
			assert.Equal(t, http.StatusForbidden, errorCode.HTTPCode)
			assert.Equal(t, testCase.code, errorCode.Code)
		})
	}
}

func TestRefreshTokenPairRotation(t *testing.T) {
	ctx := context.Background()
	env := createTestEnv(t)
	env.createAccount(t, "citizen@example.com", "citizen", "Sup3r-secret", domain.ACCOUNT_STATUS_APPROVED)

	account, err := env.authUseCase.Login(ctx, "citizen@example.com", "Sup3r-secret")
	assert.Nil(t, err)
	firstRefreshToken := account.RefreshToken

	pair, err := env.authUseCase.RefreshTokenPair(ctx, firstRefreshToken)
	assert.Nil(t, err)
	assert.NotEqual(t, firstRefreshToken, pair.RefreshToken)

	// the superseded token is rejected, the rotated one is live
	_, err = env.authUseCase.RefreshTokenPair(ctx, firstRefreshToken)
	errorCode := code.ParseErrorCode(err)
	assert.Equal(t, http.StatusUnauthorized, errorCode.HTTPCode)
	assert.Equal(t, code.InvalidRefreshToken, errorCode.Code)

	valid, err := env.sessionRepo.IsRefreshTokenValid(ctx, account.ID, pair.RefreshToken)
	assert.Nil(t, err)
	assert.True(t, valid)
}

func TestRefreshTokenPairRejects(t *testing.T) {
	ctx := context.Background()
	env := createTestEnv(t)
	account := env.createAccount(t, "citizen@example.com", "citizen", "Sup3r-secret", domain.ACCOUNT_STATUS_APPROVED)

	t.Run("garbage token", func(t *testing.T) {
		_, err := env.authUseCase.RefreshTokenPair(ctx, "not-a-token")
		assert.Equal(t, code.TokenMalformed, code.ParseErrorCode(err).Code)
	})

	t.Run("access token presented as refresh token", func(t *testing.T) {
		loggedIn, err := env.authUseCase.Login(ctx, "citizen@example.com", "Sup3r-secret")
		assert.Nil(t, err)
		_, err = env.authUseCase.RefreshTokenPair(ctx, loggedIn.AccessToken)
		assert.Equal(t, code.TokenMalformed, code.ParseErrorCode(err).Code)
	})

	t.Run("account gone", func(t *testing.T) {
		ghost := *account
		ghost.ID = account.ID + 1
		ghostToken, _, err := env.tokenRepo.GenerateRefreshToken(&ghost, time.Now())
		assert.Nil(t, err)
		_, err = env.authUseCase.RefreshTokenPair(ctx, ghostToken)
		assert.Equal(t, code.InvalidRefreshToken, code.ParseErrorCode(err).Code)
	})

	t.Run("account suspended after mint", func(t *testing.T) {
		suspended := env.createAccount(t, "suspended@example.com", "suspended", "Sup3r-secret", domain.ACCOUNT_STATUS_SUSPENDED)
		suspendedToken, _, err := env.tokenRepo.GenerateRefreshToken(suspended, time.Now())
		assert.Nil(t, err)
		assert.Nil(t, env.sessionRepo.SaveRefreshToken(ctx, suspended.ID, suspendedToken, time.Minute))
		_, err = env.authUseCase.RefreshTokenPair(ctx, suspendedToken)
		assert.Equal(t, code.Suspended, code.ParseErrorCode(err).Code)
	})
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	env := createTestEnv(t)
	account := env.createAccount(t, "citizen@example.com", "citizen", "Sup3r-secret", domain.ACCOUNT_STATUS_APPROVED)

	loggedIn, err := env.authUseCase.Login(ctx, "citizen@example.com", "Sup3r-secret")
	assert.Nil(t, err)

	assert.Nil(t, env.authUseCase.Logout(ctx, loggedIn.AccessToken))

	// the denylisted access token stops verifying
	_, err = env.authUseCase.Verify(ctx, loggedIn.AccessToken)
	assert.Equal(t, code.Revoked, code.ParseErrorCode(err).Code)

	// the refresh session is gone
	_, ok, err := env.sessionRepo.GetRefreshToken(ctx, account.ID)
	assert.Nil(t, err)
	assert.False(t, ok)

	t.Run("malformed token", func(t *testing.T) {
		err := env.authUseCase.Logout(ctx, "not-a-token")
		assert.Equal(t, code.TokenMalformed, code.ParseErrorCode(err).Code)
	})
}

func TestCacheDownDegradation(t *testing.T) {
	ctx := context.Background()
	env := createTestEnv(t)
	env.createAccount(t, "citizen@example.com", "citizen", "Sup3r-secret", domain.ACCOUNT_STATUS_APPROVED)
	env.sessionRepo.SetDown(true)

	// login succeeds without the session write
	account, err := env.authUseCase.Login(ctx, "citizen@example.com", "Sup3r-secret")
	assert.Nil(t, err)

	// refresh succeeds on the signature alone, the stored-session check
	// is skipped
	pair, err := env.authUseCase.RefreshTokenPair(ctx, account.RefreshToken)
	assert.Nil(t, err)
	assert.NotEmpty(t, pair.AccessToken)

	// verification falls back to the signature check
	claims, err := env.authUseCase.Verify(ctx, account.AccessToken)
	assert.Nil(t, err)
	assert.Equal(t, account.ID, claims.AccountID)

	// logout has nothing to clean up, it still succeeds
	assert.Nil(t, env.authUseCase.Logout(ctx, account.AccessToken))
	_, err = env.authUseCase.Verify(ctx, account.AccessToken)
	assert.Nil(t, err)

	// once the cache is back the denylist is enforced again
	env.sessionRepo.SetDown(false)
	assert.Nil(t, env.authUseCase.Logout(ctx, account.AccessToken))
	_, err = env.authUseCase.Verify(ctx, account.AccessToken)
	assert.Equal(t, code.Revoked, code.ParseErrorCode(err).Code)
}

func TestVerify(t *testing.T) {
	ctx := context.Background()
	env := createTestEnv(t)
	env.createAccount(t, "citizen@example.com", "citizen", "Sup3r-secret", domain.ACCOUNT_STATUS_APPROVED)

	account, err := env.authUseCase.Login(ctx, "citizen@example.com", "Sup3r-secret")
	assert.Nil(t, err)

	t.Run("valid access token", func(t *testing.T) {
		claims, err := env.authUseCase.Verify(ctx, account.AccessToken)
		assert.Nil(t, err)
		assert.Equal(t, account.Email, claims.Email)
	})

	t.Run("refresh token presented as access token", func(t *testing.T) {
		_, err := env.authUseCase.Verify(ctx, account.RefreshToken)
		assert.Equal(t, code.TokenMalformed, code.ParseErrorCode(err).Code)
	})

	t.Run("expired access token", func(t *testing.T) {
		past := time.Now().Add(-24 * time.Hour)
		expiredToken, _, err := env.tokenRepo.GenerateAccessToken(account, past)
		assert.Nil(t, err)
		_, err = env.authUseCase.Verify(ctx, expiredToken)
		assert.Equal(t, code.Expired, code.ParseErrorCode(err).Code)
	})
}
