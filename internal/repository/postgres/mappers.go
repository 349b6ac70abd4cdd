package postgres

import (
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"plantkeeper.io/plantkeeper/internal/domain"
)

// NewUserRepo returns the user repository bound to the users table.
func NewUserRepo(pool *pgxpool.Pool) *Repo[*domain.User] {
	return NewRepo(pool, Mapper[*domain.User]{
		Entity: "user",
		Table:  "users",
		Columns: []string{
			"username", "first_name", "last_name", "password_hash",
			"street", "number", "postal_code", "city", "role", "status",
		},
		Scan: func(row pgx.Row) (*domain.User, error) {
			u := &domain.User{}
			err := row.Scan(&u.ID, &u.Username, &u.FirstName, &u.LastName,
				&u.PasswordHash, &u.Address.Street, &u.Address.Number,
				&u.Address.PostalCode, &u.Address.City, &u.Role, &u.Status)
			return u, err
		},
		Args: func(u *domain.User) []any {
			return []any{u.Username, u.FirstName, u.LastName, u.PasswordHash,
				u.Address.Street, u.Address.Number, u.Address.PostalCode,
				u.Address.City, u.Role, u.Status}
		},
	})
}

// NewSiteRepo returns the site repository bound to the sites table.
func NewSiteRepo(pool *pgxpool.Pool) *Repo[*domain.Site] {
	return NewRepo(pool, Mapper[*domain.Site]{
		Entity: "site",
		Table:  "sites",
		Columns: []string{
			"name", "responsible_id", "street", "number", "postal_code",
			"city", "status",
		},
		Scan: func(row pgx.Row) (*domain.Site, error) {
			s := &domain.Site{}
			err := row.Scan(&s.ID, &s.Name, &s.ResponsibleID,
				&s.Address.Street, &s.Address.Number, &s.Address.PostalCode,
				&s.Address.City, &s.Status)
			return s, err
		},
		Args: func(s *domain.Site) []any {
			return []any{s.Name, s.ResponsibleID, s.Address.Street,
				s.Address.Number, s.Address.PostalCode, s.Address.City, s.Status}
		},
	})
}

// NewMachineRepo returns the machine repository bound to the machines table.
func NewMachineRepo(pool *pgxpool.Pool) *Repo[*domain.Machine] {
	return NewRepo(pool, Mapper[*domain.Machine]{
		Entity: "machine",
		Table:  "machines",
		Columns: []string{
			"site_id", "technician_id", "code", "location", "product",
			"status", "production_status", "last_maintenance", "next_maintenance",
		},
		Scan: func(row pgx.Row) (*domain.Machine, error) {
			m := &domain.Machine{}
			err := row.Scan(&m.ID, &m.SiteID, &m.TechnicianID, &m.Code,
				&m.Location, &m.Product, &m.Status, &m.ProductionStatus,
				&m.LastMaintenance, &m.NextMaintenance)
			return m, err
		},
		Args: func(m *domain.Machine) []any {
			return []any{m.SiteID, m.TechnicianID, m.Code, m.Location,
				m.Product, m.Status, m.ProductionStatus,
				m.LastMaintenance, m.NextMaintenance}
		},
	})
}

// NewMaintenanceRepo returns the maintenance repository bound to the
// maintenances table.
func NewMaintenanceRepo(pool *pgxpool.Pool) *Repo[*domain.Maintenance] {
	return NewRepo(pool, Mapper[*domain.Maintenance]{
		Entity: "maintenance",
		Table:  "maintenances",
		Columns: []string{
			"machine_id", "technician_id", "planned_date", "start_time",
			"end_time", "reason", "comments", "status",
		},
		Scan: func(row pgx.Row) (*domain.Maintenance, error) {
			m := &domain.Maintenance{}
			err := row.Scan(&m.ID, &m.MachineID, &m.TechnicianID,
				&m.PlannedDate, &m.Start, &m.End, &m.Reason, &m.Comments, &m.Status)
			return m, err
		},
		Args: func(m *domain.Maintenance) []any {
			return []any{m.MachineID, m.TechnicianID, m.PlannedDate,
				m.Start, m.End, m.Reason, m.Comments, m.Status}
		},
	})
}

// NewReportRepo returns the report repository bound to the reports table.
func NewReportRepo(pool *pgxpool.Pool) *Repo[*domain.Report] {
	return NewRepo(pool, Mapper[*domain.Report]{
		Entity: "report",
		Table:  "reports",
		Columns: []string{
			"maintenance_id", "technician_id", "site_id", "period_start",
			"period_end", "reason", "remarks",
		},
		Scan: func(row pgx.Row) (*domain.Report, error) {
			r := &domain.Report{}
			err := row.Scan(&r.ID, &r.MaintenanceID, &r.TechnicianID,
				&r.SiteID, &r.PeriodStart, &r.PeriodEnd, &r.Reason, &r.Remarks)
			return r, err
		},
		Args: func(r *domain.Report) []any {
			return []any{r.MaintenanceID, r.TechnicianID, r.SiteID,
				r.PeriodStart, r.PeriodEnd, r.Reason, r.Remarks}
		},
	})
}

// NewNotificationRepo returns the notification repository bound to the
// notifications table.
func NewNotificationRepo(pool *pgxpool.Pool) *Repo[*domain.Notification] {
	return NewRepo(pool, Mapper[*domain.Notification]{
		Entity: "notification",
		Table:  "notifications",
		Columns: []string{
			"recipient_id", "type", "title", "message", "created_at", "read",
		},
		Scan: func(row pgx.Row) (*domain.Notification, error) {
			n := &domain.Notification{}
			err := row.Scan(&n.ID, &n.RecipientID, &n.Type, &n.Title,
				&n.Message, &n.CreatedAt, &n.Read)
			return n, err
		},
		Args: func(n *domain.Notification) []any {
			return []any{n.RecipientID, n.Type, n.Title, n.Message,
				n.CreatedAt, n.Read}
		},
	})
}
