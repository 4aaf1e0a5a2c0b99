package account

import (
	"net/http"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	accountMySQLRepo "github.com/agora-community/agora/auth/repository/account/mysql"
	"github.com/agora-community/agora/domain"
	"github.com/agora-community/agora/kit/code"
	loggerKit "github.com/agora-community/agora/kit/logger"
	ormKit "github.com/agora-community/agora/kit/orm"
	utilKit "github.com/agora-community/agora/kit/util"
)

func createTestAccountRepo(t *testing.T) domain.AccountRepo {
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
	return accountMySQLRepo.CreateAccountRepo(db)
}

func createTestAccountUseCase(t *testing.T) (domain.AccountUseCase, domain.AccountRepo) {
	logger, err := loggerKit.NewLogger(filepath.Join(t.TempDir(), "test.log"), loggerKit.DebugLevel, loggerKit.NoStdout)
	assert.Nil(t, err)
	accountRepo := createTestAccountRepo(t)
	accountUseCase, err := CreateAccountUseCase(accountRepo, logger)
	assert.Nil(t, err)
	return accountUseCase, accountRepo
}

func TestRegister(t *testing.T) {
	accountUseCase, accountRepo := createTestAccountUseCase(t)

	account, err := accountUseCase.Register(&domain.SignupProfile{
		Email:    "citizen@example.com",
		Handle:   "citizen",
		Password: "Sup3r-secret",
		Role:     domain.ACCOUNT_ROLE_NORMAL,
	})
	assert.Nil(t, err)
	assert.NotZero(t, account.ID)
	assert.NotEmpty(t, account.DisplayID)
	assert.Equal(t, domain.ACCOUNT_STATUS_APPROVED, account.Status)
	assert.Empty(t, account.Password)

	// the stored digest verifies against the plaintext
	stored, err := accountRepo.GetByEmail("citizen@example.com")
	assert.Nil(t, err)
	assert.Nil(t, utilKit.CompareBcrypt([]byte(stored.Password), []byte("Sup3r-secret")))
}

func TestRegisterPolitician(t *testing.T) {
	accountUseCase, _ := createTestAccountUseCase(t)

	account, err := accountUseCase.Register(&domain.SignupProfile{
		Email:    "rep@example.com",
		Handle:   "rep",
		Password: "Sup3r-secret",
		Role:     domain.ACCOUNT_ROLE_POLITICIAN,
		PoliticianInfo: &domain.PoliticianInfo{
			Party:    "independent",
			District: "5th",
		},
	})
	assert.Nil(t, err)
	assert.Equal(t, domain.ACCOUNT_STATUS_PENDING, account.Status)

	fetched, err := accountUseCase.Get(account.ID)
	assert.Nil(t, err)
	assert.NotNil(t, fetched.PoliticianInfo)
	assert.Equal(t, "independent", fetched.PoliticianInfo.Party)
	assert.Equal(t, "5th", fetched.PoliticianInfo.District)
}

func TestRegisterPasswordRules(t *testing.T) {
	accountUseCase, _ := createTestAccountUseCase(t)

	_, err := accountUseCase.Register(&domain.SignupProfile{
		Email:    "citizen@example.com",
		Handle:   "citizen",
		Password: "weak",
		Role:     domain.ACCOUNT_ROLE_NORMAL,
	})
	assert.Equal(t, code.WeakPassword, code.ParseErrorCode(err).Code)

	_, err = accountUseCase.Register(&domain.SignupProfile{
		Email:    "citizen@example.com",
		Handle:   "citizen",
		Password: "Qwerty-123456",
		Role:     domain.ACCOUNT_ROLE_NORMAL,
	})
	assert.Equal(t, code.CommonPassword, code.ParseErrorCode(err).Code)
}

func TestRegisterConflicts(t *testing.T) {
	accountUseCase, _ := createTestAccountUseCase(t)

	_, err := accountUseCase.Register(&domain.SignupProfile{
		Email:    "citizen@example.com",
		Handle:   "citizen",
		Password: "Sup3r-secret",
		Role:     domain.ACCOUNT_ROLE_NORMAL,
	})
	assert.Nil(t, err)

	testCases := []struct {
		scenario string
		email    string
		handle   string
		code     int
	}{
		{
			scenario: "email and handle taken",
			email:    "citizen@example.com",
			handle:   "citizen",
			code:     code.EmailAndHandleAlreadyExist,
		},
		{
			scenario: "email taken",
			email:    "citizen@example.com",
			handle:   "someone-else",
			code:     code.EmailAlreadyExists,
		},
		{
			scenario: "handle taken",
			email:    "someone-else@example.com",
			handle:   "citizen",
			code:     code.HandleAlreadyExists,
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.scenario, func(t *testing.T) {
			_, err := accountUseCase.Register(&domain.SignupProfile{
				Email:    testCase.email,
				Handle:   testCase.handle,
				Password: "Sup3r-secret",
				Role:     domain.ACCOUNT_ROLE_NORMAL,
			})
			errorCode := code.ParseErrorCode(err)
			assert.Equal(t, http.StatusConflict, errorCode.HTTPCode)
			assert.Equal(t, testCase.code, errorCode.Code)
		})
	}
}

func TestGet(t *testing.T) {
	accountUseCase, _ := createTestAccountUseCase(t)

	account, err := accountUseCase.Register(&domain.SignupProfile{
		Email:    "citizen@example.com",
		Handle:   "citizen",
		Password: "Sup3r-secret",
		Role:     domain.ACCOUNT_ROLE_NORMAL,
	})
	assert.Nil(t, err)

	fetched, err := accountUseCase.Get(account.ID)
	assert.Nil(t, err)
	assert.Equal(t, "citizen", fetched.Handle)
	assert.Empty(t, fetched.Password)
	assert.Nil(t, fetched.PoliticianInfo)

	_, err = accountUseCase.Get(42)
	assert.Equal(t, http.StatusNotFound, code.ParseErrorCode(err).HTTPCode)
}

func TestChangePassword(t *testing.T) {
	accountUseCase, accountRepo := createTestAccountUseCase(t)

	account, err := accountUseCase.Register(&domain.SignupProfile{
		Email:    "citizen@example.com",
		Handle:   "citizen",
		Password: "Sup3r-secret",
		Role:     domain.ACCOUNT_ROLE_NORMAL,
	})
	assert.Nil(t, err)

	err = accountUseCase.ChangePassword(account.ID, "not-the-password", "N3w-password")
	errorCode := code.ParseErrorCode(err)
	assert.Equal(t, http.StatusUnauthorized, errorCode.HTTPCode)
	assert.Equal(t, code.PasswordInvalid, errorCode.Code)

	err = accountUseCase.ChangePassword(account.ID, "Sup3r-secret", "weak")
	assert.Equal(t, code.WeakPassword, code.ParseErrorCode(err).Code)

	assert.Nil(t, accountUseCase.ChangePassword(account.ID, "Sup3r-secret", "N3w-password"))
	stored, err := accountRepo.GetByID(account.ID)
	assert.Nil(t, err)
	assert.Nil(t, utilKit.CompareBcrypt([]byte(stored.Password), []byte("N3w-password")))

	err = accountUseCase.ChangePassword(42, "Sup3r-secret", "N3w-password")
	assert.Equal(t, http.StatusNotFound, code.ParseErrorCode(err).HTTPCode)
}
