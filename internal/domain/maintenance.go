package domain

import (
	"strings"
	"time"

	apperrors "plantkeeper.io/plantkeeper/internal/pkg/errors"
)

// Maintenance is one maintenance event on one machine, executed by one
// technician. Status moves planned → in-progress → completed; start and end
// timestamps become mandatory as the event progresses.
type Maintenance struct {
	ID           int64             `json:"id"`
	MachineID    int64             `json:"machine_id"`
	TechnicianID int64             `json:"technician_id"`
	PlannedDate  time.Time         `json:"planned_date"`
	Start        *time.Time        `json:"start,omitempty"`
	End          *time.Time        `json:"end,omitempty"`
	Reason       string            `json:"reason"`
	Comments     string            `json:"comments,omitempty"`
	Status       MaintenanceStatus `json:"status"`
}

// EntityID implements Entity.
func (m *Maintenance) EntityID() int64 { return m.ID }

// SetEntityID implements Entity.
func (m *Maintenance) SetEntityID(id int64) { m.ID = id }

// ExecutionDate is the timestamp the maintenance actually finished.
// ok is false while the event has no end timestamp.
func (m *Maintenance) ExecutionDate() (time.Time, bool) {
	if m.End == nil {
		return time.Time{}, false
	}
	return *m.End, true
}

// MaintenanceBuilder accumulates maintenance fields and validates the whole
// entity on Build. Single-use. Machine and technician arrive resolved.
type MaintenanceBuilder struct {
	id         int64
	machine    *Machine
	technician *User
	planned    time.Time
	hasPlanned bool
	start      *time.Time
	end        *time.Time
	reason     string
	comments   string
	status     MaintenanceStatus
	hasStatus  bool
	consumed   bool
}

// NewMaintenanceBuilder creates an empty builder.
func NewMaintenanceBuilder() *MaintenanceBuilder {
	return &MaintenanceBuilder{}
}

// ID sets the existing identity (updates only).
func (b *MaintenanceBuilder) ID(id int64) *MaintenanceBuilder {
	b.id = id
	return b
}

// Machine sets the resolved machine.
func (b *MaintenanceBuilder) Machine(m *Machine) *MaintenanceBuilder {
	b.machine = m
	return b
}

// Technician sets the resolved technician.
func (b *MaintenanceBuilder) Technician(u *User) *MaintenanceBuilder {
	b.technician = u
	return b
}

// PlannedDate sets the planned execution date.
func (b *MaintenanceBuilder) PlannedDate(t time.Time) *MaintenanceBuilder {
	b.planned = t
	b.hasPlanned = true
	return b
}

// Start sets the actual start timestamp.
func (b *MaintenanceBuilder) Start(t time.Time) *MaintenanceBuilder {
	b.start = &t
	return b
}

// End sets the actual end timestamp.
func (b *MaintenanceBuilder) End(t time.Time) *MaintenanceBuilder {
	b.end = &t
	return b
}

// Reason sets the maintenance reason.
func (b *MaintenanceBuilder) Reason(v string) *MaintenanceBuilder {
	b.reason = v
	return b
}

// Comments sets free-form comments (optional).
func (b *MaintenanceBuilder) Comments(v string) *MaintenanceBuilder {
	b.comments = v
	return b
}

// Status sets the lifecycle state.
func (b *MaintenanceBuilder) Status(v MaintenanceStatus) *MaintenanceBuilder {
	b.status = v
	b.hasStatus = true
	return b
}

// Build validates the entire accumulated state at once and returns either a
// fully constructed Maintenance or a ValidationError listing every violated
// field. The end-before-start rule contributes to the same set and is only
// evaluated when both timestamps are present; an end equal to the start is
// accepted, an end strictly before it is not, even on the same day.
func (b *MaintenanceBuilder) Build() (*Maintenance, error) {
	if b.consumed {
		return nil, ErrBuilderConsumed
	}
	b.consumed = true

	v := make(map[string]apperrors.RuleCode)
	if b.machine == nil {
		v["machine"] = apperrors.RuleRequired
	}
	if b.technician == nil {
		v["technician"] = apperrors.RuleRequired
	}
	if !b.hasPlanned {
		v["plannedDate"] = apperrors.RuleRequired
	}
	if strings.TrimSpace(b.reason) == "" {
		v["reason"] = apperrors.RuleRequired
	}
	switch {
	case !b.hasStatus:
		v["status"] = apperrors.RuleRequired
	case !b.status.Valid():
		v["status"] = apperrors.RuleInvalidStatus
	default:
		// Progress rules: in-progress needs a start, completed needs both.
		if b.status != MaintenancePlanned && b.start == nil {
			v["startDate"] = apperrors.RuleRequired
		}
		if b.status == MaintenanceCompleted && b.end == nil {
			v["endDate"] = apperrors.RuleRequired
		}
	}
	if b.start != nil && b.end != nil && b.end.Before(*b.start) {
		v["endDate"] = apperrors.RuleEndDateBeforeStart
	}

	if len(v) > 0 {
		return nil, apperrors.Validation("maintenance", v)
	}

	return &Maintenance{
		ID:           b.id,
		MachineID:    b.machine.ID,
		TechnicianID: b.technician.ID,
		PlannedDate:  b.planned,
		Start:        b.start,
		End:          b.end,
		Reason:       strings.TrimSpace(b.reason),
		Comments:     strings.TrimSpace(b.comments),
		Status:       b.status,
	}, nil
}
