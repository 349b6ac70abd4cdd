// Package domain provides the PlantKeeper domain model: entities, their
// builders and the domain event dispatcher.
//
// Entities are plain data holders. All invariants are enforced by the
// builders at finalization time; persistence-level existence rules live in
// the repositories.
package domain

import "errors"

// Entity is implemented by every persisted aggregate. Identity is numeric
// and assigned by the store on insert.
type Entity interface {
	EntityID() int64
	SetEntityID(id int64)
}

// ErrBuilderConsumed is returned when Build is called twice on one builder.
// Builders are single-use.
var ErrBuilderConsumed = errors.New("builder already consumed")

// Status is the active/inactive flag shared by users and sites.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
)

// Valid reports whether the status is one of the enumerated values.
func (s Status) Valid() bool {
	return s == StatusActive || s == StatusInactive
}

// Role is the capability tag carried by a user.
type Role string

const (
	RoleAdministrator Role = "ADMINISTRATOR"
	RoleResponsible   Role = "RESPONSIBLE"
	RoleTechnician    Role = "TECHNICIAN"
	RoleManager       Role = "MANAGER"
)

// Valid reports whether the role is one of the enumerated values.
func (r Role) Valid() bool {
	switch r {
	case RoleAdministrator, RoleResponsible, RoleTechnician, RoleManager:
		return true
	}
	return false
}

// MachineStatus is the machine's operational condition.
type MachineStatus string

const (
	MachineOperational  MachineStatus = "OPERATIONAL"
	MachineDegraded     MachineStatus = "DEGRADED"
	MachineOutOfService MachineStatus = "OUT_OF_SERVICE"
)

// Valid reports whether the machine status is enumerated.
func (s MachineStatus) Valid() bool {
	switch s {
	case MachineOperational, MachineDegraded, MachineOutOfService:
		return true
	}
	return false
}

// ProductionStatus is the machine's production state.
type ProductionStatus string

const (
	ProductionProducing ProductionStatus = "PRODUCING"
	ProductionIdle      ProductionStatus = "IDLE"
	ProductionHalted    ProductionStatus = "HALTED"
)

// Valid reports whether the production status is enumerated.
func (s ProductionStatus) Valid() bool {
	switch s {
	case ProductionProducing, ProductionIdle, ProductionHalted:
		return true
	}
	return false
}

// MaintenanceStatus is the lifecycle state of a maintenance event:
// planned → in-progress → completed.
type MaintenanceStatus string

const (
	MaintenancePlanned    MaintenanceStatus = "PLANNED"
	MaintenanceInProgress MaintenanceStatus = "IN_PROGRESS"
	MaintenanceCompleted  MaintenanceStatus = "COMPLETED"
)

// Valid reports whether the maintenance status is enumerated.
func (s MaintenanceStatus) Valid() bool {
	switch s {
	case MaintenancePlanned, MaintenanceInProgress, MaintenanceCompleted:
		return true
	}
	return false
}
