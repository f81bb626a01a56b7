package entity

// Role is the authorization role carried by every user.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleManager   Role = "manager"
	RoleDeveloper Role = "developer"
	RoleDesigner  Role = "designer"
	RoleTester    Role = "tester"
)

// DefaultRole is assigned on registration when none is supplied.
const DefaultRole = RoleDeveloper

func Roles() []Role {
	return []Role{RoleAdmin, RoleManager, RoleDeveloper, RoleDesigner, RoleTester}
}

func (r Role) Valid() bool {
	for _, v := range Roles() {
		if r == v {
			return true
		}
	}
	return false
}
