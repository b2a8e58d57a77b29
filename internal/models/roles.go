package models

const (
	RoleAdmin    = 1
	RoleEmployer = 2
	RoleEmployee = 3
)

const (
	RoleTextAdmin    = "Admin"
	RoleTextEmployer = "Employer"
	RoleTextEmployee = "Employee"
)

// RoleFromText maps a role name to its numeric value. Unknown names fall
// back to Employee.
func RoleFromText(role string) int {
	switch role {
	case RoleTextAdmin:
		return RoleAdmin
	case RoleTextEmployer:
		return RoleEmployer
	default:
		return RoleEmployee
	}
}

// RoleText maps a numeric role to its display name. Unknown values fall
// back to "Employee".
func RoleText(role int) string {
	switch role {
	case RoleAdmin:
		return RoleTextAdmin
	case RoleEmployer:
		return RoleTextEmployer
	default:
		return RoleTextEmployee
	}
}

func (u *User) IsAdmin() bool {
	return u.UserRole == RoleAdmin
}

func (u *User) IsEmployer() bool {
	return u.UserRole == RoleEmployer
}

func (u *User) IsEmployee() bool {
	return u.UserRole == RoleEmployee
}
