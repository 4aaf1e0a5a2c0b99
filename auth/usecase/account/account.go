package account

import (
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"github.com/agora-community/agora/domain"
	"github.com/agora-community/agora/kit/code"
	loggerKit "github.com/agora-community/agora/kit/logger"
	ormKit "github.com/agora-community/agora/kit/orm"
	utilKit "github.com/agora-community/agora/kit/util"
)

type accountUseCase struct {
	accountRepo domain.AccountRepo
	logger      *loggerKit.Logger
}

func CreateAccountUseCase(accountRepo domain.AccountRepo, logger *loggerKit.Logger) (domain.AccountUseCase, error) {
	if logger == nil {
		return nil, errors.New("create use case failed")
	}
	return &accountUseCase{
		accountRepo: accountRepo,
		logger:      logger,
	}, nil
}

func (a *accountUseCase) Register(profile *domain.SignupProfile) (*domain.Account, error) {
	if ok, reasons := utilKit.ValidatePasswordStrength(profile.Password); !ok {
		return nil, code.CreateErrorCode(http.StatusBadRequest).AddCode(code.WeakPassword, strings.Join(reasons, ", "))
	}
	if utilKit.IsCommonPassword(profile.Password) {
		return nil, code.CreateErrorCode(http.StatusBadRequest).AddCode(code.CommonPassword)
	}

	// both uniqueness checks run so the caller learns every conflicting
	// field, not just the first
	emailExists, err := a.accountRepo.EmailExists(profile.Email)
	if err != nil {
		return nil, errors.Wrap(err, "check email exists failed")
	}
	handleExists, err := a.accountRepo.HandleExists(profile.Handle)
	if err != nil {
		return nil, errors.Wrap(err, "check handle exists failed")
	}
	switch {
	case emailExists && handleExists:
		return nil, code.CreateErrorCode(http.StatusConflict).AddCode(code.EmailAndHandleAlreadyExist)
	case emailExists:
		return nil, code.CreateErrorCode(http.StatusConflict).AddCode(code.EmailAlreadyExists)
	case handleExists:
		return nil, code.CreateErrorCode(http.StatusConflict).AddCode(code.HandleAlreadyExists)
	}

	hashedPassword, err := utilKit.GetBcrypt(profile.Password)
	if err != nil {
		return nil, errors.Wrap(err, "hash password failed")
	}

	uniqueIDGenerate, err := utilKit.GetUniqueIDGenerate()
	if err != nil {
		return nil, errors.Wrap(err, "generate unique id failed")
	}
	uniqueID := uniqueIDGenerate.Generate()

	account, err := a.accountRepo.Create(&domain.Account{
		ID:             uniqueID.GetInt64(),
		DisplayID:      uniqueID.GetBase62(),
		Email:          profile.Email,
		Handle:         profile.Handle,
		Password:       hashedPassword,
		Role:           profile.Role,
		Status:         domain.InitialStatusForRole(profile.Role),
		PoliticianInfo: profile.PoliticianInfo,
	})
	if errors.Is(err, ormKit.ErrDuplicatedKey) {
		// lost a signup race after the exists checks
		return nil, code.CreateErrorCode(http.StatusConflict)
	} else if err != nil {
		return nil, errors.Wrap(err, "create account failed")
	}

	account.Password = ""
	return account, nil
}

func (a *accountUseCase) Get(accountID int64) (*domain.Account, error) {
	account, err := a.accountRepo.GetByID(accountID)
	if errors.Is(err, ormKit.ErrRecordNotFound) {
		return nil, code.CreateErrorCode(http.StatusNotFound)
	} else if err != nil {
		return nil, errors.Wrap(err, "get account failed")
	}
	account.Password = ""
	if !account.Role.IsVetted() {
		account.PoliticianInfo = nil
	}
	return account, nil
}

func (a *accountUseCase) ChangePassword(accountID int64, currentPassword, newPassword string) error {
	account, err := a.accountRepo.GetByID(accountID)
	if errors.Is(err, ormKit.ErrRecordNotFound) {
		return code.CreateErrorCode(http.StatusNotFound)
	} else if err != nil {
		return errors.Wrap(err, "get account failed")
	}

	if err := utilKit.CompareBcrypt([]byte(account.Password), []byte(currentPassword)); err != nil {
		return code.CreateErrorCode(http.StatusUnauthorized).AddCode(code.PasswordInvalid)
	}

	if ok, reasons := utilKit.ValidatePasswordStrength(newPassword); !ok {
		return code.CreateErrorCode(http.StatusBadRequest).AddCode(code.WeakPassword, strings.Join(reasons, ", "))
	}
	if utilKit.IsCommonPassword(newPassword) {
		return code.CreateErrorCode(http.StatusBadRequest).AddCode(code.CommonPassword)
	}

	hashedPassword, err := utilKit.GetBcrypt(newPassword)
	if err != nil {
		return errors.Wrap(err, "hash password failed")
	}
	if err := a.accountRepo.UpdatePassword(accountID, hashedPassword); err != nil {
		return errors.Wrap(err, "update password failed")
	}

	// existing sessions stay valid on purpose, access tokens are short
	// lived and the refresh session still belongs to the account owner
	return nil
}
