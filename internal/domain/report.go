package domain

import (
	"strings"
	"time"

	apperrors "plantkeeper.io/plantkeeper/internal/pkg/errors"
)

// Report is produced from a completed or in-progress Maintenance. It
// references the maintenance event, the executing technician and the site,
// and carries a reporting period under the same ordering rule as
// Maintenance.
type Report struct {
	ID            int64     `json:"id"`
	MaintenanceID int64     `json:"maintenance_id"`
	TechnicianID  int64     `json:"technician_id"`
	SiteID        int64     `json:"site_id"`
	PeriodStart   time.Time `json:"period_start"`
	PeriodEnd     time.Time `json:"period_end"`
	Reason        string    `json:"reason"`
	Remarks       string    `json:"remarks,omitempty"`
}

// EntityID implements Entity.
func (r *Report) EntityID() int64 { return r.ID }

// SetEntityID implements Entity.
func (r *Report) SetEntityID(id int64) { r.ID = id }

// ReportBuilder accumulates report fields and validates the whole entity on
// Build. Single-use. References arrive resolved.
type ReportBuilder struct {
	id          int64
	maintenance *Maintenance
	technician  *User
	site        *Site
	start       time.Time
	hasStart    bool
	end         time.Time
	hasEnd      bool
	reason      string
	remarks     string
	consumed    bool
}

// NewReportBuilder creates an empty builder.
func NewReportBuilder() *ReportBuilder {
	return &ReportBuilder{}
}

// ID sets the existing identity (updates only).
func (b *ReportBuilder) ID(id int64) *ReportBuilder {
	b.id = id
	return b
}

// Maintenance sets the resolved maintenance event.
func (b *ReportBuilder) Maintenance(m *Maintenance) *ReportBuilder {
	b.maintenance = m
	return b
}

// Technician sets the resolved technician.
func (b *ReportBuilder) Technician(u *User) *ReportBuilder {
	b.technician = u
	return b
}

// Site sets the resolved site.
func (b *ReportBuilder) Site(s *Site) *ReportBuilder {
	b.site = s
	return b
}

// PeriodStart sets the reporting period start.
func (b *ReportBuilder) PeriodStart(t time.Time) *ReportBuilder {
	b.start = t
	b.hasStart = true
	return b
}

// PeriodEnd sets the reporting period end.
func (b *ReportBuilder) PeriodEnd(t time.Time) *ReportBuilder {
	b.end = t
	b.hasEnd = true
	return b
}

// Reason sets the report reason.
func (b *ReportBuilder) Reason(v string) *ReportBuilder {
	b.reason = v
	return b
}

// Remarks sets free-form remarks (optional).
func (b *ReportBuilder) Remarks(v string) *ReportBuilder {
	b.remarks = v
	return b
}

// Build validates the entire accumulated state at once and returns either a
// fully constructed Report or a ValidationError listing every violated
// field. A report can only be produced from an in-progress or completed
// maintenance event.
func (b *ReportBuilder) Build() (*Report, error) {
	if b.consumed {
		return nil, ErrBuilderConsumed
	}
	b.consumed = true

	v := make(map[string]apperrors.RuleCode)
	switch {
	case b.maintenance == nil:
		v["maintenance"] = apperrors.RuleRequired
	case b.maintenance.Status == MaintenancePlanned:
		v["maintenance"] = apperrors.RuleInvalidStatus
	}
	if b.technician == nil {
		v["technician"] = apperrors.RuleRequired
	}
	if b.site == nil {
		v["site"] = apperrors.RuleRequired
	}
	if !b.hasStart {
		v["startDate"] = apperrors.RuleRequired
	}
	if !b.hasEnd {
		v["endDate"] = apperrors.RuleRequired
	}
	if b.hasStart && b.hasEnd && b.end.Before(b.start) {
		v["endDate"] = apperrors.RuleEndDateBeforeStart
	}
	if strings.TrimSpace(b.reason) == "" {
		v["reason"] = apperrors.RuleRequired
	}

	if len(v) > 0 {
		return nil, apperrors.Validation("report", v)
	}

	return &Report{
		ID:            b.id,
		MaintenanceID: b.maintenance.ID,
		TechnicianID:  b.technician.ID,
		SiteID:        b.site.ID,
		PeriodStart:   b.start,
		PeriodEnd:     b.end,
		Reason:        strings.TrimSpace(b.reason),
		Remarks:       strings.TrimSpace(b.remarks),
	}, nil
}
