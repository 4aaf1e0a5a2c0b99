package domain

import "time"

type AccountRole int

const (
	ACCOUNT_ROLE_UNKNOWN AccountRole = iota
	ACCOUNT_ROLE_NORMAL
	ACCOUNT_ROLE_POLITICIAN
	ACCOUNT_ROLE_ORGANIZATION
	ACCOUNT_ROLE_ADMIN
)

func ParseAccountRole(role string) (AccountRole, error) {
	switch role {
	case "normal":
		return ACCOUNT_ROLE_NORMAL, nil
	case "politician":
		return ACCOUNT_ROLE_POLITICIAN, nil
	case "organization":
		return ACCOUNT_ROLE_ORGANIZATION, nil
	case "admin":
		return ACCOUNT_ROLE_ADMIN, nil
	}
	return ACCOUNT_ROLE_UNKNOWN, ErrInvalidData
}

func (a AccountRole) String() string {
	switch a {
	case ACCOUNT_ROLE_NORMAL:
		return "normal"
	case ACCOUNT_ROLE_POLITICIAN:
		return "politician"
	case ACCOUNT_ROLE_ORGANIZATION:
		return "organization"
	case ACCOUNT_ROLE_ADMIN:
		return "admin"
	}
	return "unknown"
}

// IsVetted reports whether the role requires manual review before the
// account may log in.
func (a AccountRole) IsVetted() bool {
	return a == ACCOUNT_ROLE_POLITICIAN || a == ACCOUNT_ROLE_ORGANIZATION
}

type AccountStatus int

const (
	ACCOUNT_STATUS_UNKNOWN AccountStatus = iota
	ACCOUNT_STATUS_PENDING
	ACCOUNT_STATUS_APPROVED
	ACCOUNT_STATUS_SUSPENDED
	ACCOUNT_STATUS_BANNED
	ACCOUNT_STATUS_WITHDRAWN
)

func (a AccountStatus) String() string {
	switch a {
	case ACCOUNT_STATUS_PENDING:
		return "pending"
	case ACCOUNT_STATUS_APPROVED:
		return "approved"
	case ACCOUNT_STATUS_SUSPENDED:
		return "suspended"
	case ACCOUNT_STATUS_BANNED:
		return "banned"
	case ACCOUNT_STATUS_WITHDRAWN:
		return "withdrawn"
	}
	return "unknown"
}

// InitialStatusForRole: self-service roles are usable immediately, vetted
// roles wait for manual approval.
func InitialStatusForRole(role AccountRole) AccountStatus {
	if role.IsVetted() {
		return ACCOUNT_STATUS_PENDING
	}
	return ACCOUNT_STATUS_APPROVED
}

type StatusGateResult int

const (
	STATUS_GATE_ALLOWED StatusGateResult = iota
	STATUS_GATE_PENDING
	STATUS_GATE_SUSPENDED
	STATUS_GATE_BANNED
	STATUS_GATE_WITHDRAWN
)

// GateStatus decides whether an account in the given lifecycle state may
// log in or refresh. Callers switch on the result, the same table is
// applied at login and at refresh.
func GateStatus(status AccountStatus) StatusGateResult {
	switch status {
	case ACCOUNT_STATUS_APPROVED:
		return STATUS_GATE_ALLOWED
	case ACCOUNT_STATUS_PENDING:
		return STATUS_GATE_PENDING
	case ACCOUNT_STATUS_SUSPENDED:
		return STATUS_GATE_SUSPENDED
	case ACCOUNT_STATUS_BANNED:
		return STATUS_GATE_BANNED
	default:
		return STATUS_GATE_WITHDRAWN
	}
}

type PoliticianInfo struct {
	Party    string `json:"party"`
	District string `json:"district"`
}

type Account struct {
	ID        int64         `json:"id"`
	DisplayID string        `json:"display_id"`
	Email     string        `json:"email"`
	Handle    string        `json:"handle"`
	Password  string        `json:"-"`
	Role      AccountRole   `json:"-"`
	Status    AccountStatus `json:"-"`

	PoliticianInfo *PoliticianInfo `gorm:"-" json:"politician_info,omitempty"`

	AccessToken  string `gorm:"-" json:"access_token,omitempty"`
	RefreshToken string `gorm:"-" json:"refresh_token,omitempty"`

	LastLoginAt *time.Time `json:"-"`
	CreatedAt   time.Time  `json:"-"`
	UpdatedAt   time.Time  `json:"-"`
}

type SignupProfile struct {
	Email          string
	Handle         string
	Password       string
	Role           AccountRole
	PoliticianInfo *PoliticianInfo
}

type AccountRepo interface {
	Create(account *Account) (*Account, error)
	GetByID(accountID int64) (*Account, error)
	GetByEmail(email string) (*Account, error)
	GetByHandle(handle string) (*Account, error)
	EmailExists(email string) (bool, error)
	HandleExists(handle string) (bool, error)
	UpdateLastLogin(accountID int64, lastLoginAt time.Time) error
	UpdatePassword(accountID int64, hashedPassword string) error
}

type AccountUseCase interface {
	Register(profile *SignupProfile) (*Account, error)
	Get(accountID int64) (*Account, error)
	ChangePassword(accountID int64, currentPassword, newPassword string) error
}
