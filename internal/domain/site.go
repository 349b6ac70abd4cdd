package domain

import (
	"strings"

	apperrors "plantkeeper.io/plantkeeper/internal/pkg/errors"
)

// Site is an industrial site. It owns its Address, references exactly one
// responsible User (weak reference, many sites may share one) and carries a
// non-owning view of its machines: the "belongs to site" relation is owned
// by Machine, so Site stores no machine list.
type Site struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	ResponsibleID int64   `json:"responsible_id"`
	Address       Address `json:"address"`
	Status        Status  `json:"status"`
}

// EntityID implements Entity.
func (s *Site) EntityID() int64 { return s.ID }

// SetEntityID implements Entity.
func (s *Site) SetEntityID(id int64) { s.ID = id }

// SiteBuilder accumulates site fields and validates the whole entity on
// Build. Single-use. The responsible user is taken as a resolved *User so
// the caller (SiteService) resolves the reference before building; only the
// id is stored on the entity.
type SiteBuilder struct {
	id          int64
	name        string
	responsible *User
	addr        addressFields
	status      Status
	hasStatus   bool
	consumed    bool
}

// NewSiteBuilder creates an empty builder.
func NewSiteBuilder() *SiteBuilder {
	return &SiteBuilder{}
}

// ID sets the existing identity (updates only).
func (b *SiteBuilder) ID(id int64) *SiteBuilder {
	b.id = id
	return b
}

// Name sets the site name.
func (b *SiteBuilder) Name(v string) *SiteBuilder {
	b.name = v
	return b
}

// Responsible sets the resolved responsible user.
func (b *SiteBuilder) Responsible(u *User) *SiteBuilder {
	b.responsible = u
	return b
}

// Street sets the address street.
func (b *SiteBuilder) Street(v string) *SiteBuilder {
	b.addr.street = v
	return b
}

// Number sets the address house number.
func (b *SiteBuilder) Number(v int) *SiteBuilder {
	b.addr.number = v
	b.addr.hasNumber = true
	return b
}

// PostalCode sets the address postal code.
func (b *SiteBuilder) PostalCode(v int) *SiteBuilder {
	b.addr.postalCode = v
	b.addr.hasPostal = true
	return b
}

// City sets the address city.
func (b *SiteBuilder) City(v string) *SiteBuilder {
	b.addr.city = v
	return b
}

// Status sets the active/inactive flag.
func (b *SiteBuilder) Status(v Status) *SiteBuilder {
	b.status = v
	b.hasStatus = true
	return b
}

// Build validates the entire accumulated state at once and returns either a
// fully constructed Site or a ValidationError listing every violated field.
// The responsible-user violation is keyed "employee", matching the wire
// format the presentation layer renders.
func (b *SiteBuilder) Build() (*Site, error) {
	if b.consumed {
		return nil, ErrBuilderConsumed
	}
	b.consumed = true

	v := make(map[string]apperrors.RuleCode)
	if strings.TrimSpace(b.name) == "" {
		v["siteName"] = apperrors.RuleRequired
	}
	if b.responsible == nil {
		v["employee"] = apperrors.RuleRequired
	}
	b.addr.collect(v)
	switch {
	case !b.hasStatus:
		v["status"] = apperrors.RuleRequired
	case !b.status.Valid():
		v["status"] = apperrors.RuleInvalidStatus
	}

	if len(v) > 0 {
		return nil, apperrors.Validation("site", v)
	}

	return &Site{
		ID:            b.id,
		Name:          strings.TrimSpace(b.name),
		ResponsibleID: b.responsible.ID,
		Address:       b.addr.toAddress(),
		Status:        b.status,
	}, nil
}
