package domain

type MemberRole string

const (
	MemberRoleMember MemberRole = "member"
	MemberRoleAdmin  MemberRole = "admin"
)

type AccountStatus string

const (
	AccountStatusActive    AccountStatus = "active"
	AccountStatusPending   AccountStatus = "pending"
	AccountStatusSuspended AccountStatus = "suspended"
)

type Member struct {
	ID           int32         `json:"id"`
	Name         string        `json:"name"`
	Email        string        `json:"email"`
	Phone        string        `json:"phone"`
	PasswordHash string        `json:"-"`
	PhotoURL     string        `json:"photo_url"`
	Role         MemberRole    `json:"role"`
	AccountStatus AccountStatus `json:"account_status"`
	Address      string        `json:"address,omitempty"`
	Occupation   string        `json:"occupation,omitempty"`
	BirthDate    string        `json:"birth_date,omitempty"`
	MemberSince  string        `json:"member_since"`
	CreatedOn    string        `json:"created_on"`
	UpdatedOn    string        `json:"updated_on"`
}

// CanTransact reports whether the member may initiate deposits, withdrawals
// or loan requests. Pending and suspended accounts are read-only.
func (m *Member) CanTransact() bool {
	return m.AccountStatus == AccountStatusActive
}
