package domain

import "time"

// StaffRole enumerates internal operator roles.
type StaffRole string

const (
	StaffRoleAgent    StaffRole = "AGENT"
	StaffRoleTeamLead StaffRole = "TEAM_LEAD"
	StaffRoleAdmin    StaffRole = "ADMIN"
)

// StaffMember models a support agent or administrator. A nil DepartmentID
// means the member is unscoped and sees every department.
type StaffMember struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         StaffRole
	DepartmentID *string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
