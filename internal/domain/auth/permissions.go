package auth

const (
	PermCommissionRead      = "commission.read"
	PermCommissionRun       = "commission.run"
	PermCommissionConfigure = "commission.configure"
)

const (
	RoleEmployee     = "employee"
	RoleSalesManager = "sales_manager"
	RoleFinance      = "finance"
	RoleSystemAdmin  = "system_admin"
)

var DefaultPermissions = []string{
	PermCommissionRead,
	PermCommissionRun,
	PermCommissionConfigure,
}

// RolePermissions is the built-in grant table. The role_permissions table
// seeded by the first migration mirrors it.
var RolePermissions = map[string][]string{
	RoleEmployee: {
		PermCommissionRead,
	},
	RoleSalesManager: {
		PermCommissionRead,
		PermCommissionRun,
	},
	RoleFinance: {
		PermCommissionRead,
		PermCommissionRun,
		PermCommissionConfigure,
	},
	RoleSystemAdmin: {
		PermCommissionRead,
		PermCommissionRun,
		PermCommissionConfigure,
	},
}

// SelfScoped reports whether role may only see its own commission data.
func SelfScoped(role string) bool {
	return role == RoleEmployee
}
