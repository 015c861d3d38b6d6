package domain

type Role string

const (
	RoleStandard Role = "standard"
	RoleAdmin    Role = "admin"
)

// Principal is the authenticated caller of a ledger operation.
type Principal struct {
	UserID int64
	Email  string
	Role   Role
}

func (p Principal) Authenticated() bool {
	return p.UserID > 0
}

func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
