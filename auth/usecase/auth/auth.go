package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/agora-community/agora/domain"
	"github.com/agora-community/agora/kit/code"
	loggerKit "github.com/agora-community/agora/kit/logger"
	ormKit "github.com/agora-community/agora/kit/orm"
	utilKit "github.com/agora-community/agora/kit/util"
)

// AuthService orchestrates login, refresh rotation, logout and access
// verification. It is stateless per call: durable state lives in the
// account repo, volatile session state in the session repo. Session
// cache failures degrade guarantees, they never abort the primary
// operation.
type AuthService struct {
	accountRepo domain.AccountRepo
	tokenRepo   domain.TokenRepo
	sessionRepo domain.SessionRepo
	logger      *loggerKit.Logger
}

func CreateAuthUseCase(accountRepo domain.AccountRepo, tokenRepo domain.TokenRepo, sessionRepo domain.SessionRepo, logger *loggerKit.Logger) (domain.AuthUseCase, error) {
	if logger == nil {
		return nil, errors.New("create use case failed")
	}
	return &AuthService{
		accountRepo: accountRepo,
		tokenRepo:   tokenRepo,
		sessionRepo: sessionRepo,
		logger:      logger,
	}, nil
}

func (a *AuthService) Login(ctx context.Context, email, password string) (*domain.Account, error) {
	account, err := a.accountRepo.GetByEmail(email)
	if errors.Is(err, ormKit.ErrRecordNotFound) {
		// same failure as a wrong password, the caller must not learn
		// which part was wrong
		return nil, code.CreateErrorCode(http.StatusUnauthorized).AddCode(code.PasswordInvalid)
	} else if err != nil {
		return nil, errors.Wrap(err, "get account failed")
	}

	if err := utilKit.CompareBcrypt([]byte(account.Password), []byte(password)); err != nil {
		return nil, code.CreateErrorCode(http.StatusUnauthorized).AddCode(code.PasswordInvalid)
	}

	if err := gateStatusError(account.Status); err != nil {
		return nil, err
	}

	now := time.Now()
	signedAccessToken, _, err := a.tokenRepo.GenerateAccessToken(account, now)
	if err != nil {
		return nil, errors.Wrap(err, "signed access token failed")
	}
	signedRefreshToken, _, err := a.tokenRepo.GenerateRefreshToken(account, now)
	if err != nil {
		return nil, errors.Wrap(err, "signed refresh token failed")
	}

	a.applyCacheWrite(ctx, "save refresh session", func(ctx context.Context) error {
		return a.sessionRepo.SaveRefreshToken(ctx, account.ID, signedRefreshToken, a.tokenRepo.RefreshTokenDuration())
	})

	if err := a.accountRepo.UpdateLastLogin(account.ID, now); err != nil {
		a.logger.Warn("update last login failed", loggerKit.Int64("account_id", account.ID), loggerKit.Error(err))
	}

	account.Password = ""
	account.AccessToken = signedAccessToken
	account.RefreshToken = signedRefreshToken
	return account, nil
}

func (a *AuthService) RefreshTokenPair(ctx context.Context, refreshTokenString string) (*domain.TokenPair, error) {
	claims, err := a.tokenRepo.VerifyRefreshToken(refreshTokenString)
	if errors.Is(err, domain.ErrExpired) {
		return nil, code.CreateErrorCode(http.StatusUnauthorized).AddCode(code.Expired).AddErrorMetaData(err)
	} else if err != nil {
		return nil, code.CreateErrorCode(http.StatusUnauthorized).AddCode(code.TokenMalformed).AddErrorMetaData(err)
	}

	// the stored-session match detects stolen or superseded tokens.
	// it is skipped, not failed, while the cache is unreachable.
	valid, err := a.sessionRepo.IsRefreshTokenValid(ctx, claims.AccountID, refreshTokenString)
	if err != nil {
		a.logCacheDegraded("refresh session check", err)
	} else if !valid {
		return nil, code.CreateErrorCode(http.StatusUnauthorized).AddCode(code.InvalidRefreshToken)
	}

	// re-fetch: the account may have been suspended since the token
	// was minted
	account, err := a.accountRepo.GetByID(claims.AccountID)
	if errors.Is(err, ormKit.ErrRecordNotFound) {
		return nil, code.CreateErrorCode(http.StatusUnauthorized).AddCode(code.InvalidRefreshToken)
	} else if err != nil {
		return nil, errors.Wrap(err, "get account failed")
	}
	if err := gateStatusError(account.Status); err != nil {
		return nil, err
	}

	now := time.Now()
	signedAccessToken, _, err := a.tokenRepo.GenerateAccessToken(account, now)
	if err != nil {
		return nil, errors.Wrap(err, "signed access token failed")
	}
	signedRefreshToken, _, err := a.tokenRepo.GenerateRefreshToken(account, now)
	if err != nil {
		return nil, errors.Wrap(err, "signed refresh token failed")
	}

	// rotation: the stored session is overwritten, the presented token
	// stops being the live one as soon as the cache can record that
	a.applyCacheWrite(ctx, "rotate refresh session", func(ctx context.Context) error {
		return a.sessionRepo.SaveRefreshToken(ctx, account.ID, signedRefreshToken, a.tokenRepo.RefreshTokenDuration())
	})

	return &domain.TokenPair{
		AccessToken:  signedAccessToken,
		RefreshToken: signedRefreshToken,
	}, nil
}

func (a *AuthService) Logout(ctx context.Context, accessToken string) error {
	claims, err := a.tokenRepo.VerifyAccessToken(accessToken)
	if errors.Is(err, domain.ErrExpired) {
		return code.CreateErrorCode(http.StatusUnauthorized).AddCode(code.Expired).AddErrorMetaData(err)
	} else if err != nil {
		return code.CreateErrorCode(http.StatusUnauthorized).AddCode(code.TokenMalformed).AddErrorMetaData(err)
	}

	// denylist the presented access token for its remaining lifetime,
	// best effort
	a.applyCacheWrite(ctx, "denylist access token", func(ctx context.Context) error {
		return a.sessionRepo.BlacklistAccessToken(ctx, accessToken, time.Until(claims.ExpireAt))
	})

	// an unreachable cache means nothing to clean up, but a reachable
	// cache refusing the delete is a real failure
	outcome := a.applyCacheWrite(ctx, "delete refresh session", func(ctx context.Context) error {
		return a.sessionRepo.DeleteRefreshToken(ctx, claims.AccountID)
	})
	if outcome == domain.CACHE_WRITE_FAILED {
		return code.CreateErrorCode(http.StatusInternalServerError)
	}

	return nil
}

func (a *AuthService) Verify(ctx context.Context, accessToken string) (*domain.TokenClaims, error) {
	claims, err := a.tokenRepo.VerifyAccessToken(accessToken)
	if errors.Is(err, domain.ErrExpired) {
		return nil, code.CreateErrorCode(http.StatusUnauthorized).AddCode(code.Expired).AddErrorMetaData(err)
	} else if err != nil {
		return nil, code.CreateErrorCode(http.StatusUnauthorized).AddCode(code.TokenMalformed).AddErrorMetaData(err)
	}

	blacklisted, err := a.sessionRepo.IsAccessTokenBlacklisted(ctx, accessToken)
	if err != nil {
		// degraded mode: the signature check alone carries the request
		a.logCacheDegraded("denylist check", err)
	} else if blacklisted {
		return nil, code.CreateErrorCode(http.StatusUnauthorized).AddCode(code.Revoked)
	}

	return claims, nil
}

// applyCacheWrite wraps a best-effort session-cache write. The outcome
// is explicit so tests can assert which path was taken, and nothing is
// raised past this boundary.
func (a *AuthService) applyCacheWrite(ctx context.Context, operation string, fn func(ctx context.Context) error) domain.CacheWriteOutcome {
	err := fn(ctx)
	if err == nil {
		return domain.CACHE_WRITE_APPLIED
	}
	if errors.Is(err, domain.ErrCacheUnavailable) {
		a.logger.Warn("session cache down, skipped", loggerKit.String("operation", operation))
		return domain.CACHE_WRITE_SKIPPED_CACHE_DOWN
	}
	a.logger.Error("session cache write failed", loggerKit.String("operation", operation), loggerKit.Error(err))
	return domain.CACHE_WRITE_FAILED
}

func (a *AuthService) logCacheDegraded(operation string, err error) {
	if errors.Is(err, domain.ErrCacheUnavailable) {
		a.logger.Warn("session cache down, skipped", loggerKit.String("operation", operation))
		return
	}
	a.logger.Error("session cache read failed", loggerKit.String("operation", operation), loggerKit.Error(err))
}

// gateStatusError applies the status table shared by login and refresh.
func gateStatusError(status domain.AccountStatus) error {
	switch domain.GateStatus(status) {
	case domain.STATUS_GATE_ALLOWED:
		return nil
	case domain.STATUS_GATE_PENDING:
		return code.CreateErrorCode(http.StatusForbidden).AddCode(code.PendingApproval)
	case domain.STATUS_GATE_SUSPENDED:
		return code.CreateErrorCode(http.StatusForbidden).AddCode(code.Suspended)
	case domain.STATUS_GATE_BANNED:
		return code.CreateErrorCode(http.StatusForbidden).AddCode(code.Banned)
	default:
		return code.CreateErrorCode(http.StatusForbidden).AddCode(code.Withdrawn)
	}
}
