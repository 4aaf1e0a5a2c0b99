package mysql

import (
	"time"

	"github.com/pkg/errors"

	"github.com/agora-community/agora/domain"
	ormKit "github.com/agora-community/agora/kit/orm"
)

type accountEntity struct {
	*domain.Account
}

func (accountEntity) TableName() string {
	return "account"
}

type politicianProfileEntity struct {
	AccountID int64  `gorm:"primaryKey"`
	Party     string
	District  string
}

func (politicianProfileEntity) TableName() string {
	return "account_politician_profile"
}

type accountRepo struct {
	db *ormKit.DB
}

func CreateAccountRepo(db *ormKit.DB) domain.AccountRepo {
	return &accountRepo{db: db}
}

func (a *accountRepo) Create(account *domain.Account) (*domain.Account, error) {
	accountInstance := accountEntity{Account: account}
	// account and profile land atomically, a failed profile insert must
	// not leave a vetted account without one
	err := a.db.Transaction(func(tx *ormKit.TX) error {
		if err := tx.Create(&accountInstance).Error; err != nil {
			return err
		}
		if account.PoliticianInfo != nil {
			profileInstance := politicianProfileEntity{
				AccountID: account.ID,
				Party:     account.PoliticianInfo.Party,
				District:  account.PoliticianInfo.District,
			}
			if err := tx.Create(&profileInstance).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if duplicatedErr, ok := ormKit.ConvertMySQLErr(err); ok {
			return nil, duplicatedErr
		}
		return nil, errors.Wrap(err, "create account failed")
	}
	return accountInstance.Account, nil
}

func (a *accountRepo) GetByID(accountID int64) (*domain.Account, error) {
	return a.getAccount("id = ?", accountID)
}

func (a *accountRepo) GetByEmail(email string) (*domain.Account, error) {
	return a.getAccount("email = ?", email)
}

func (a *accountRepo) GetByHandle(handle string) (*domain.Account, error) {
	return a.getAccount("handle = ?", handle)
}

func (a *accountRepo) getAccount(query string, arg interface{}) (*domain.Account, error) {
	var accountInstance accountEntity
	if err := a.db.First(&accountInstance, query, arg); err != nil {
		return nil, errors.Wrap(err, "get account failed")
	}
	account := accountInstance.Account
	if account.Role.IsVetted() {
		var profileInstance politicianProfileEntity
		err := a.db.First(&profileInstance, "account_id = ?", account.ID)
		if err == nil {
			account.PoliticianInfo = &domain.PoliticianInfo{
				Party:    profileInstance.Party,
				District: profileInstance.District,
			}
		} else if !errors.Is(err, ormKit.ErrRecordNotFound) {
			return nil, errors.Wrap(err, "get politician profile failed")
		}
	}
	return account, nil
}

func (a *accountRepo) EmailExists(email string) (bool, error) {
	return a.exists("email = ?", email)
}

func (a *accountRepo) HandleExists(handle string) (bool, error) {
	return a.exists("handle = ?", handle)
}

func (a *accountRepo) exists(query string, arg interface{}) (bool, error) {
	var count int64
	if err := a.db.Model(&accountEntity{}).Where(query, arg).Count(&count).Error; err != nil {
		return false, errors.Wrap(err, "count account failed")
	}
	return count > 0, nil
}

func (a *accountRepo) UpdateLastLogin(accountID int64, lastLoginAt time.Time) error {
	if err := a.db.Model(&accountEntity{}).Where("id = ?", accountID).Updates(map[string]interface{}{
		"last_login_at": lastLoginAt,
		"updated_at":    time.Now(),
	}).Error; err != nil {
		return errors.Wrap(err, "update last login failed")
	}
	return nil
}

func (a *accountRepo) UpdatePassword(accountID int64, hashedPassword string) error {
	if err := a.db.Model(&accountEntity{}).Where("id = ?", accountID).Updates(map[string]interface{}{
		"password":   hashedPassword,
		"updated_at": time.Now(),
	}).Error; err != nil {
		return errors.Wrap(err, "update password failed")
	}
	return nil
}
