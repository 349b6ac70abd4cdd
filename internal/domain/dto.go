package domain

import "time"

// DTO projections returned to callers outside the core. All fields are
// plain values; mutating a DTO never touches a persisted entity.

// UserRef is a minimal reference to a user embedded in other projections.
type UserRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// MachineRef is a minimal reference to a machine embedded in the site
// projection.
type MachineRef struct {
	ID   int64  `json:"id"`
	Code string `json:"code"`
}

// UserDTO is the read-only projection of a User. The password hash is never
// projected.
type UserDTO struct {
	ID        int64   `json:"id"`
	Username  string  `json:"username"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Address   Address `json:"address"`
	Role      Role    `json:"role"`
	Status    Status  `json:"status"`
}

// NewUserDTO projects a User.
func NewUserDTO(u *User) UserDTO {
	return UserDTO{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Address:   u.Address,
		Role:      u.Role,
		Status:    u.Status,
	}
}

// SiteDTO is the read-only projection of a Site with its resolved
// responsible user and the non-owning machine view.
type SiteDTO struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	Address     Address      `json:"address"`
	Status      Status       `json:"status"`
	Responsible UserRef      `json:"responsible"`
	Machines    []MachineRef `json:"machines"`
}

// MachineCount returns the size of the machine view.
func (d SiteDTO) MachineCount() int { return len(d.Machines) }

// NewSiteDTO projects a Site with its resolved references.
func NewSiteDTO(s *Site, responsible *User, machines []*Machine) SiteDTO {
	refs := make([]MachineRef, 0, len(machines))
	for _, m := range machines {
		refs = append(refs, MachineRef{ID: m.ID, Code: m.Code})
	}
	dto := SiteDTO{
		ID:       s.ID,
		Name:     s.Name,
		Address:  s.Address,
		Status:   s.Status,
		Machines: refs,
	}
	if responsible != nil {
		dto.Responsible = UserRef{ID: responsible.ID, Name: responsible.FullName()}
	}
	return dto
}

// MachineDTO is the read-only projection of a Machine with its resolved
// technician and the derived maintenance figures.
type MachineDTO struct {
	ID               int64            `json:"id"`
	SiteID           int64            `json:"site_id"`
	Code             string           `json:"code"`
	Location         string           `json:"location,omitempty"`
	Product          string           `json:"product,omitempty"`
	Status           MachineStatus    `json:"status"`
	ProductionStatus ProductionStatus `json:"production_status"`
	Technician       UserRef          `json:"technician"`
	LastMaintenance  *time.Time       `json:"last_maintenance,omitempty"`
	NextMaintenance  *time.Time       `json:"next_maintenance,omitempty"`
	DaysSinceMaint   *int             `json:"days_since_maintenance,omitempty"`
	UptimeHours      *float64         `json:"uptime_hours,omitempty"`
}

// NewMachineDTO projects a Machine, computing the derived figures at now.
func NewMachineDTO(m *Machine, technician *User, now time.Time) MachineDTO {
	dto := MachineDTO{
		ID:               m.ID,
		SiteID:           m.SiteID,
		Code:             m.Code,
		Location:         m.Location,
		Product:          m.Product,
		Status:           m.Status,
		ProductionStatus: m.ProductionStatus,
		LastMaintenance:  m.LastMaintenance,
		NextMaintenance:  m.NextMaintenance,
	}
	if technician != nil {
		dto.Technician = UserRef{ID: technician.ID, Name: technician.FullName()}
	}
	if days, ok := m.DaysSinceMaintenance(now); ok {
		dto.DaysSinceMaint = &days
	}
	if hours, ok := m.UptimeHours(now); ok {
		dto.UptimeHours = &hours
	}
	return dto
}

// MaintenanceDTO is the read-only projection of a Maintenance event.
type MaintenanceDTO struct {
	ID          int64             `json:"id"`
	Machine     MachineRef        `json:"machine"`
	Technician  UserRef           `json:"technician"`
	PlannedDate time.Time         `json:"planned_date"`
	Start       *time.Time        `json:"start,omitempty"`
	End         *time.Time        `json:"end,omitempty"`
	Reason      string            `json:"reason"`
	Comments    string            `json:"comments,omitempty"`
	Status      MaintenanceStatus `json:"status"`
}

// NewMaintenanceDTO projects a Maintenance with its resolved references.
func NewMaintenanceDTO(m *Maintenance, machine *Machine, technician *User) MaintenanceDTO {
	dto := MaintenanceDTO{
		ID:          m.ID,
		PlannedDate: m.PlannedDate,
		Start:       m.Start,
		End:         m.End,
		Reason:      m.Reason,
		Comments:    m.Comments,
		Status:      m.Status,
	}
	if machine != nil {
		dto.Machine = MachineRef{ID: machine.ID, Code: machine.Code}
	}
	if technician != nil {
		dto.Technician = UserRef{ID: technician.ID, Name: technician.FullName()}
	}
	return dto
}

// ReportDTO is the read-only projection of a Report.
type ReportDTO struct {
	ID            int64     `json:"id"`
	MaintenanceID int64     `json:"maintenance_id"`
	Technician    UserRef   `json:"technician"`
	SiteID        int64     `json:"site_id"`
	PeriodStart   time.Time `json:"period_start"`
	PeriodEnd     time.Time `json:"period_end"`
	Reason        string    `json:"reason"`
	Remarks       string    `json:"remarks,omitempty"`
}

// NewReportDTO projects a Report with its resolved technician.
func NewReportDTO(r *Report, technician *User) ReportDTO {
	dto := ReportDTO{
		ID:            r.ID,
		MaintenanceID: r.MaintenanceID,
		SiteID:        r.SiteID,
		PeriodStart:   r.PeriodStart,
		PeriodEnd:     r.PeriodEnd,
		Reason:        r.Reason,
		Remarks:       r.Remarks,
	}
	if technician != nil {
		dto.Technician = UserRef{ID: technician.ID, Name: technician.FullName()}
	}
	return dto
}

// NotificationDTO is the read-only projection of a Notification.
type NotificationDTO struct {
	ID        int64            `json:"id"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	CreatedAt time.Time        `json:"created_at"`
	Read      bool             `json:"read"`
}

// NewNotificationDTO projects a Notification.
func NewNotificationDTO(n *Notification) NotificationDTO {
	return NotificationDTO{
		ID:        n.ID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		CreatedAt: n.CreatedAt,
		Read:      n.Read,
	}
}
