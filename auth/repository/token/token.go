package token

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	"github.com/agora-community/agora/domain"
	utilKit "github.com/agora-community/agora/kit/util"
)

const (
	_MIN_SECRET_LENGTH = 32

	_PURPOSE_ACCESS  = "access"
	_PURPOSE_REFRESH = "refresh"
)

type Config struct {
	AccessTokenSecret  string
	RefreshTokenSecret string

	AccessTokenDuration  time.Duration
	RefreshTokenDuration time.Duration

	Issuer   string
	Audience string
}

type sessionClaims struct {
	DisplayID string `json:"did"`
	Email     string `json:"email"`
	Role      int    `json:"role"`
	Status    int    `json:"status"`
	// Purpose pins a token to its kind so an access token never
	// verifies as a refresh token, even if the two secrets were
	// misconfigured to the same value.
	Purpose string `json:"purpose"`

	jwt.RegisteredClaims
}

type tokenRepo struct {
	cfg Config
}

func CreateTokenRepo(cfg Config) (domain.TokenRepo, error) {
	if len(cfg.AccessTokenSecret) < _MIN_SECRET_LENGTH || len(cfg.RefreshTokenSecret) < _MIN_SECRET_LENGTH {
		return nil, errors.New("token secret needs at least 32 bytes")
	}
	if cfg.AccessTokenSecret == cfg.RefreshTokenSecret {
		return nil, errors.New("access and refresh token secrets must differ")
	}
	if cfg.AccessTokenDuration <= 0 {
		cfg.AccessTokenDuration = 15 * time.Minute
	}
	if cfg.RefreshTokenDuration <= 0 {
		cfg.RefreshTokenDuration = 7 * 24 * time.Hour
	}
	return &tokenRepo{cfg: cfg}, nil
}

func (t *tokenRepo) GenerateAccessToken(account *domain.Account, now time.Time) (string, time.Time, error) {
	return t.generateToken(account, now, now.Add(t.cfg.AccessTokenDuration), _PURPOSE_ACCESS, t.cfg.AccessTokenSecret)
}

func (t *tokenRepo) GenerateRefreshToken(account *domain.Account, now time.Time) (string, time.Time, error) {
	return t.generateToken(account, now, now.Add(t.cfg.RefreshTokenDuration), _PURPOSE_REFRESH, t.cfg.RefreshTokenSecret)
}

func (t *tokenRepo) generateToken(account *domain.Account, iat, exp time.Time, purpose, secret string) (string, time.Time, error) {
	uniqueIDGenerate, err := utilKit.GetUniqueIDGenerate()
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, "generate unique id failed")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &sessionClaims{
		DisplayID: account.DisplayID,
		Email:     account.Email,
		Role:      int(account.Role),
		Status:    int(account.Status),
		Purpose:   purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			// the timestamps carry second precision, the jti keeps two
			// mints within the same second distinct so rotation always
			// replaces
			ID:        uniqueIDGenerate.Generate().GetBase62(),
			Subject:   strconv.FormatInt(account.ID, 10),
			Issuer:    t.cfg.Issuer,
			Audience:  jwt.ClaimStrings{t.cfg.Audience},
			IssuedAt:  jwt.NewNumericDate(iat),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	signedToken, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, "signed token failed")
	}
	return signedToken, exp, nil
}

func (t *tokenRepo) VerifyAccessToken(token string) (*domain.TokenClaims, error) {
	return t.verifyToken(token, _PURPOSE_ACCESS, t.cfg.AccessTokenSecret)
}

func (t *tokenRepo) VerifyRefreshToken(token string) (*domain.TokenClaims, error) {
	return t.verifyToken(token, _PURPOSE_REFRESH, t.cfg.RefreshTokenSecret)
}

func (t *tokenRepo) verifyToken(tokenString, purpose, secret string) (*domain.TokenClaims, error) {
	var claims sessionClaims
	_, err := jwt.ParseWithClaims(
		tokenString,
		&claims,
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.Errorf("unexpected signing %v", token.Header["alg"])
			}
			return []byte(secret), nil
		},
		jwt.WithIssuer(t.cfg.Issuer),
		jwt.WithAudience(t.cfg.Audience),
		jwt.WithIssuedAt(),
	)
	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, errors.Wrap(domain.ErrExpired, err.Error())
	} else if errors.Is(err, jwt.ErrTokenInvalidIssuer) || errors.Is(err, jwt.ErrTokenInvalidAudience) {
		return nil, errors.Wrap(domain.ErrIssuerMismatch, err.Error())
	} else if err != nil {
		return nil, errors.Wrap(domain.ErrInvalidData, err.Error())
	}
	if claims.Purpose != purpose {
		return nil, errors.Wrap(domain.ErrInvalidData, "token purpose mismatch")
	}
	return toDomainClaims(&claims)
}

// DecodeUnverified parses claims without signature verification, for
// diagnostics only.
func (t *tokenRepo) DecodeUnverified(tokenString string) *domain.TokenClaims {
	var claims sessionClaims
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, &claims); err != nil {
		return nil
	}
	domainClaims, err := toDomainClaims(&claims)
	if err != nil {
		return nil
	}
	return domainClaims
}

func (t *tokenRepo) AccessTokenDuration() time.Duration {
	return t.cfg.AccessTokenDuration
}

func (t *tokenRepo) RefreshTokenDuration() time.Duration {
	return t.cfg.RefreshTokenDuration
}

func toDomainClaims(claims *sessionClaims) (*domain.TokenClaims, error) {
	accountID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, errors.Wrap(domain.ErrInvalidData, "parse subject failed")
	}
	domainClaims := domain.TokenClaims{
		AccountID: accountID,
		DisplayID: claims.DisplayID,
		Email:     claims.Email,
		Role:      domain.AccountRole(claims.Role),
		Status:    domain.AccountStatus(claims.Status),
	}
	if claims.IssuedAt != nil {
		domainClaims.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		domainClaims.ExpireAt = claims.ExpiresAt.Time
	}
	return &domainClaims, nil
}
