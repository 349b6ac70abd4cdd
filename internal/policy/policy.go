// Package policy implements the explicit access-control check invoked at
// the start of every aggregate-service operation. It replaces ambient
// current-user state with a pure function over an Actor passed in by the
// caller, so authorization is testable without global setup.
package policy

import (
	"plantkeeper.io/plantkeeper/internal/domain"
	apperrors "plantkeeper.io/plantkeeper/internal/pkg/errors"
)

// Actor is the authenticated caller of a service operation.
type Actor struct {
	UserID int64
	Role   domain.Role
}

// Operation identifies one service operation for policy purposes.
type Operation string

const (
	OpSiteCreate Operation = "site:create"
	OpSiteUpdate Operation = "site:update"
	OpSiteDelete Operation = "site:delete"
	OpSiteRead   Operation = "site:read"

	OpUserCreate     Operation = "user:create"
	OpUserUpdate     Operation = "user:update"
	OpUserDeactivate Operation = "user:deactivate"
	OpUserRead       Operation = "user:read"

	OpMachineCreate Operation = "machine:create"
	OpMachineUpdate Operation = "machine:update"
	OpMachineRead   Operation = "machine:read"

	OpMaintenanceCreate Operation = "maintenance:create"
	OpMaintenanceUpdate Operation = "maintenance:update"
	OpMaintenanceRead   Operation = "maintenance:read"

	OpReportCreate Operation = "report:create"
	OpReportRead   Operation = "report:read"

	OpNotificationRead Operation = "notification:read"
)

// rolePermissions maps each role to the operations it may perform.
// The administrator row lists everything explicitly: there is no implicit
// super-role shortcut inside Allow.
var rolePermissions = map[domain.Role][]Operation{
	domain.RoleAdministrator: {
		OpSiteCreate, OpSiteUpdate, OpSiteDelete, OpSiteRead,
		OpUserCreate, OpUserUpdate, OpUserDeactivate, OpUserRead,
		OpMachineCreate, OpMachineUpdate, OpMachineRead,
		OpMaintenanceCreate, OpMaintenanceUpdate, OpMaintenanceRead,
		OpReportCreate, OpReportRead,
		OpNotificationRead,
	},
	domain.RoleManager: {
		OpSiteCreate, OpSiteUpdate, OpSiteRead,
		OpUserRead,
		OpMachineCreate, OpMachineUpdate, OpMachineRead,
		OpMaintenanceCreate, OpMaintenanceUpdate, OpMaintenanceRead,
		OpReportRead,
		OpNotificationRead,
	},
	domain.RoleResponsible: {
		OpSiteRead, OpSiteUpdate,
		OpUserRead,
		OpMachineCreate, OpMachineUpdate, OpMachineRead,
		OpMaintenanceCreate, OpMaintenanceUpdate, OpMaintenanceRead,
		OpReportRead,
		OpNotificationRead,
	},
	domain.RoleTechnician: {
		OpSiteRead,
		OpUserRead,
		OpMachineRead,
		OpMaintenanceCreate, OpMaintenanceUpdate, OpMaintenanceRead,
		OpReportCreate, OpReportRead,
		OpNotificationRead,
	},
}

// Allow reports whether the actor's role permits the operation.
// Pure function: {role, operation} → allow/deny.
func Allow(role domain.Role, op Operation) bool {
	for _, allowed := range rolePermissions[role] {
		if allowed == op {
			return true
		}
	}
	return false
}

// Check returns a permission-denied error when the actor may not perform
// the operation. Denial is a hard failure, never a silent no-op.
func Check(actor Actor, op Operation) error {
	if !Allow(actor.Role, op) {
		return apperrors.ErrPermissionDenied(string(op))
	}
	return nil
}
