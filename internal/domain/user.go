package domain

import "time"

// Role enumerates the workforce roles known to the service.
type Role string

const (
	RoleEmployee             Role = "EMPLOYEE"
	RoleSupervisor           Role = "SUPERVISOR"
	RoleManager              Role = "MANAGER"
	RoleSystemAdministrator  Role = "SYSTEM_ADMINISTRATOR"
	RoleOHSPractitioner      Role = "OHS_PRACTITIONER"
	RoleSecurityPractitioner Role = "SECURITY_PRACTITIONER"
	RoleFinanceOfficial      Role = "FINANCE_OFFICIAL"
)

// User is a directory entry consumed by the case engine. Identity and role
// management live in an external system; this service only reads them.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	DepartmentID *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserRef is the short user shape embedded in read models.
type UserRef struct {
	ID    string
	Name  string
	Email string
}

// Ref projects the directory entry to its embedded form.
func (u *User) Ref() UserRef {
	return UserRef{ID: u.ID, Name: u.Name, Email: u.Email}
}
