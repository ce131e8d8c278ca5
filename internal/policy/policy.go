// Package policy maps roles to the lending operations they may perform.
package policy

import "github.com/irozhkov/library-server/internal/model"

// Operation identifies a permission-gated action.
type Operation string

const (
	BookRead         Operation = "book:read"
	BookWrite        Operation = "book:write"
	BorrowingCreate  Operation = "borrowing:create"
	BorrowingReadAny Operation = "borrowing:read_any"
	BorrowingReturn  Operation = "borrowing:return"
	DashboardView    Operation = "dashboard:view"
)

// Self-scoped access (a member reading their own borrowing or their own
// dashboard) is enforced by the services on top of this table.
var permissions = map[model.Role]map[Operation]bool{
	model.RoleMember: {
		BookRead:        true,
		BorrowingCreate: true,
		DashboardView:   true,
	},
	model.RoleLibrarian: {
		BookRead:         true,
		BookWrite:        true,
		BorrowingReadAny: true,
		BorrowingReturn:  true,
		DashboardView:    true,
	},
}

// Allowed reports whether the role may perform the operation.
func Allowed(role model.Role, op Operation) bool {
	return permissions[role][op]
}
