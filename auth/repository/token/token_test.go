package token

import (
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/agora-community/agora/domain"
)

var testConfig = Config{
	AccessTokenSecret:    "access-secret-access-secret-access-secret",
	RefreshTokenSecret:   "refresh-secret-refresh-secret-refresh-secret",
	AccessTokenDuration:  15 * time.Minute,
	RefreshTokenDuration: 7 * 24 * time.Hour,
	Issuer:               "agora",
	Audience:             "agora-web",
}

var testAccount = &domain.Account{
	ID:        100,
	DisplayID: "1C",
	Email:     "citizen@example.com",
	Role:      domain.ACCOUNT_ROLE_NORMAL,
	Status:    domain.ACCOUNT_STATUS_APPROVED,
}

func TestCreateTokenRepo(t *testing.T) {
	t.Run("rejects short secret", func(t *testing.T) {
		cfg := testConfig
		cfg.AccessTokenSecret = "too-short"
		_, err := CreateTokenRepo(cfg)
		assert.Error(t, err)
	})

	t.Run("rejects identical secrets", func(t *testing.T) {
		cfg := testConfig
		cfg.RefreshTokenSecret = cfg.AccessTokenSecret
		_, err := CreateTokenRepo(cfg)
		assert.Error(t, err)
	})

	t.Run("applies default durations", func(t *testing.T) {
		cfg := testConfig
		cfg.AccessTokenDuration = 0
		cfg.RefreshTokenDuration = 0
		tokenRepo, err := CreateTokenRepo(cfg)
		assert.Nil(t, err)
		assert.Equal(t, 15*time.Minute, tokenRepo.AccessTokenDuration())
		assert.Equal(t, 7*24*time.Hour, tokenRepo.RefreshTokenDuration())
	})
}

func TestGenerateAndVerify(t *testing.T) {
	tokenRepo, err := CreateTokenRepo(testConfig)
	assert.Nil(t, err)
	now := time.Now()

	accessToken, expireAt, err := tokenRepo.GenerateAccessToken(testAccount, now)
	assert.Nil(t, err)
	assert.Equal(t, now.Add(testConfig.AccessTokenDuration), expireAt)

	claims, err := tokenRepo.VerifyAccessToken(accessToken)
	assert.Nil(t, err)
	assert.Equal(t, int64(100), claims.AccountID)
	assert.Equal(t, "1C", claims.DisplayID)
	assert.Equal(t, "citizen@example.com", claims.Email)
	assert.Equal(t, domain.ACCOUNT_ROLE_NORMAL, claims.Role)
	assert.Equal(t, domain.ACCOUNT_STATUS_APPROVED, claims.Status)
	assert.Equal(t, expireAt.Unix(), claims.ExpireAt.Unix())

	refreshToken, _, err := tokenRepo.GenerateRefreshToken(testAccount, now)
	assert.Nil(t, err)
	refreshClaims, err := tokenRepo.VerifyRefreshToken(refreshToken)
	assert.Nil(t, err)
	assert.Equal(t, int64(100), refreshClaims.AccountID)
}

func TestGenerateIsUniquePerMint(t *testing.T) {
	tokenRepo, err := CreateTokenRepo(testConfig)
	assert.Nil(t, err)
	now := time.Now()

	// identical account and instant must still yield distinct tokens,
	// otherwise rotating a refresh token could re-store the token being
	// rotated out
	firstToken, _, err := tokenRepo.GenerateRefreshToken(testAccount, now)
	assert.Nil(t, err)
	secondToken, _, err := tokenRepo.GenerateRefreshToken(testAccount, now)
	assert.Nil(t, err)
	assert.NotEqual(t, firstToken, secondToken)

	for _, token := range []string{firstToken, secondToken} {
		claims, err := tokenRepo.VerifyRefreshToken(token)
		assert.Nil(t, err)
		assert.Equal(t, int64(100), claims.AccountID)
	}
}

func TestVerifyRejectsWrongKind(t *testing.T) {
	cfg := testConfig
	tokenRepo, err := CreateTokenRepo(cfg)
	assert.Nil(t, err)
	now := time.Now()

	accessToken, _, err := tokenRepo.GenerateAccessToken(testAccount, now)
	assert.Nil(t, err)
	refreshToken, _, err := tokenRepo.GenerateRefreshToken(testAccount, now)
	assert.Nil(t, err)

	_, err = tokenRepo.VerifyRefreshToken(accessToken)
	assert.ErrorIs(t, errors.Cause(err), domain.ErrInvalidData)
	_, err = tokenRepo.VerifyAccessToken(refreshToken)
	assert.ErrorIs(t, errors.Cause(err), domain.ErrInvalidData)
}

func TestVerifyExpired(t *testing.T) {
	tokenRepo, err := CreateTokenRepo(testConfig)
	assert.Nil(t, err)

	past := time.Now().Add(-testConfig.AccessTokenDuration - time.Hour)
	accessToken, _, err := tokenRepo.GenerateAccessToken(testAccount, past)
	assert.Nil(t, err)

	_, err = tokenRepo.VerifyAccessToken(accessToken)
	assert.ErrorIs(t, errors.Cause(err), domain.ErrExpired)
}

func TestVerifyIssuerMismatch(t *testing.T) {
	otherIssuer := testConfig
	otherIssuer.Issuer = "someone-else"
	issuerRepo, err := CreateTokenRepo(otherIssuer)
	assert.Nil(t, err)
	tokenRepo, err := CreateTokenRepo(testConfig)
	assert.Nil(t, err)

	foreignToken, _, err := issuerRepo.GenerateAccessToken(testAccount, time.Now())
	assert.Nil(t, err)

	_, err = tokenRepo.VerifyAccessToken(foreignToken)
	assert.ErrorIs(t, errors.Cause(err), domain.ErrIssuerMismatch)
}

func TestVerifyTamperedSignature(t *testing.T) {
	tokenRepo, err := CreateTokenRepo(testConfig)
	assert.Nil(t, err)

	accessToken, _, err := tokenRepo.GenerateAccessToken(testAccount, time.Now())
	assert.Nil(t, err)

	parts := strings.Split(accessToken, ".")
	assert.Len(t, parts, 3)
	flipped := byte('A')
	if parts[2][0] == flipped {
		flipped = 'B'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(flipped) + parts[2][1:]

	_, err = tokenRepo.VerifyAccessToken(tampered)
	assert.ErrorIs(t, errors.Cause(err), domain.ErrInvalidData)
}

func TestDecodeUnverified(t *testing.T) {
	tokenRepo, err := CreateTokenRepo(testConfig)
	assert.Nil(t, err)

	past := time.Now().Add(-48 * time.Hour)
	accessToken, _, err := tokenRepo.GenerateAccessToken(testAccount, past)
	assert.Nil(t, err)

	claims := tokenRepo.DecodeUnverified(accessToken)
	assert.NotNil(t, claims)
	assert.Equal(t, int64(100), claims.AccountID)

	assert.Nil(t, tokenRepo.DecodeUnverified("not-a-token"))
}
