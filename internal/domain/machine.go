package domain

import (
	"strings"
	"time"

	apperrors "plantkeeper.io/plantkeeper/internal/pkg/errors"
)

// Machine is production equipment belonging to exactly one Site (owning
// foreign reference) with one assigned technician (weak reference).
// LastMaintenance and NextMaintenance are nullable timestamps; the
// days-since and uptime figures are derived, never stored.
type Machine struct {
	ID               int64            `json:"id"`
	SiteID           int64            `json:"site_id"`
	TechnicianID     int64            `json:"technician_id"`
	Code             string           `json:"code"`
	Location         string           `json:"location"`
	Product          string           `json:"product"`
	Status           MachineStatus    `json:"status"`
	ProductionStatus ProductionStatus `json:"production_status"`
	LastMaintenance  *time.Time       `json:"last_maintenance,omitempty"`
	NextMaintenance  *time.Time       `json:"next_maintenance,omitempty"`
}

// EntityID implements Entity.
func (m *Machine) EntityID() int64 { return m.ID }

// SetEntityID implements Entity.
func (m *Machine) SetEntityID(id int64) { m.ID = id }

// DaysSinceMaintenance computes whole days between the last maintenance and
// now. ok is false when no maintenance was ever recorded.
func (m *Machine) DaysSinceMaintenance(now time.Time) (days int, ok bool) {
	if m.LastMaintenance == nil {
		return 0, false
	}
	d := now.Sub(*m.LastMaintenance)
	if d < 0 {
		return 0, true
	}
	return int(d.Hours() / 24), true
}

// UptimeHours computes hours elapsed since the last maintenance.
// ok is false when no maintenance was ever recorded.
func (m *Machine) UptimeHours(now time.Time) (hours float64, ok bool) {
	if m.LastMaintenance == nil {
		return 0, false
	}
	h := now.Sub(*m.LastMaintenance).Hours()
	if h < 0 {
		h = 0
	}
	return h, true
}

// MachineBuilder accumulates machine fields and validates the whole entity
// on Build. Single-use. Site and technician arrive resolved.
type MachineBuilder struct {
	id            int64
	site          *Site
	technician    *User
	code          string
	location      string
	product       string
	status        MachineStatus
	hasStatus     bool
	prodStatus    ProductionStatus
	hasProdStatus bool
	lastMaint     *time.Time
	nextMaint     *time.Time
	consumed      bool
}

// NewMachineBuilder creates an empty builder.
func NewMachineBuilder() *MachineBuilder {
	return &MachineBuilder{}
}

// ID sets the existing identity (updates only).
func (b *MachineBuilder) ID(id int64) *MachineBuilder {
	b.id = id
	return b
}

// Site sets the resolved owning site.
func (b *MachineBuilder) Site(s *Site) *MachineBuilder {
	b.site = s
	return b
}

// Technician sets the resolved assigned technician.
func (b *MachineBuilder) Technician(u *User) *MachineBuilder {
	b.technician = u
	return b
}

// Code sets the machine code.
func (b *MachineBuilder) Code(v string) *MachineBuilder {
	b.code = v
	return b
}

// Location sets the machine location (optional).
func (b *MachineBuilder) Location(v string) *MachineBuilder {
	b.location = v
	return b
}

// Product sets the product info (optional).
func (b *MachineBuilder) Product(v string) *MachineBuilder {
	b.product = v
	return b
}

// Status sets the operational condition.
func (b *MachineBuilder) Status(v MachineStatus) *MachineBuilder {
	b.status = v
	b.hasStatus = true
	return b
}

// ProductionStatus sets the production state.
func (b *MachineBuilder) ProductionStatus(v ProductionStatus) *MachineBuilder {
	b.prodStatus = v
	b.hasProdStatus = true
	return b
}

// LastMaintenance sets the last performed maintenance timestamp (optional).
func (b *MachineBuilder) LastMaintenance(t time.Time) *MachineBuilder {
	b.lastMaint = &t
	return b
}

// NextMaintenance sets the next planned maintenance timestamp (optional).
func (b *MachineBuilder) NextMaintenance(t time.Time) *MachineBuilder {
	b.nextMaint = &t
	return b
}

// Build validates the entire accumulated state at once and returns either a
// fully constructed Machine or a ValidationError listing every violated
// field.
func (b *MachineBuilder) Build() (*Machine, error) {
	if b.consumed {
		return nil, ErrBuilderConsumed
	}
	b.consumed = true

	v := make(map[string]apperrors.RuleCode)
	if b.site == nil {
		v["site"] = apperrors.RuleRequired
	}
	if b.technician == nil {
		v["technician"] = apperrors.RuleRequired
	}
	if strings.TrimSpace(b.code) == "" {
		v["code"] = apperrors.RuleRequired
	}
	switch {
	case !b.hasStatus:
		v["machineStatus"] = apperrors.RuleRequired
	case !b.status.Valid():
		v["machineStatus"] = apperrors.RuleInvalidStatus
	}
	switch {
	case !b.hasProdStatus:
		v["productionStatus"] = apperrors.RuleRequired
	case !b.prodStatus.Valid():
		v["productionStatus"] = apperrors.RuleInvalidStatus
	}

	if len(v) > 0 {
		return nil, apperrors.Validation("machine", v)
	}

	return &Machine{
		ID:               b.id,
		SiteID:           b.site.ID,
		TechnicianID:     b.technician.ID,
		Code:             strings.TrimSpace(b.code),
		Location:         strings.TrimSpace(b.location),
		Product:          strings.TrimSpace(b.product),
		Status:           b.status,
		ProductionStatus: b.prodStatus,
		LastMaintenance:  b.lastMaint,
		NextMaintenance:  b.nextMaint,
	}, nil
}
