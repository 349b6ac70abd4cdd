package domain

import (
	"strings"

	apperrors "plantkeeper.io/plantkeeper/internal/pkg/errors"
)

// User is a platform user: technician, responsible person, manager or
// administrator. Users are never hard-deleted; deactivation flips Status.
type User struct {
	ID           int64   `json:"id"`
	Username     string  `json:"username"`
	FirstName    string  `json:"first_name"`
	LastName     string  `json:"last_name"`
	PasswordHash string  `json:"-"`
	Address      Address `json:"address"`
	Role         Role    `json:"role"`
	Status       Status  `json:"status"`
}

// EntityID implements Entity.
func (u *User) EntityID() int64 { return u.ID }

// SetEntityID implements Entity. Called by the repository on insert only.
func (u *User) SetEntityID(id int64) { u.ID = id }

// FullName returns "First Last" for display projections.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// UserBuilder accumulates user fields and validates the whole entity on
// Build. Single-use.
type UserBuilder struct {
	id        int64
	username  string
	firstName string
	lastName  string
	addr      addressFields
	role      Role
	hasRole   bool
	status    Status
	hasStatus bool
	consumed  bool
}

// NewUserBuilder creates an empty builder.
func NewUserBuilder() *UserBuilder {
	return &UserBuilder{}
}

// ID sets the existing identity (updates only).
func (b *UserBuilder) ID(id int64) *UserBuilder {
	b.id = id
	return b
}

// Username sets the login name.
func (b *UserBuilder) Username(v string) *UserBuilder {
	b.username = v
	return b
}

// FirstName sets the first name.
func (b *UserBuilder) FirstName(v string) *UserBuilder {
	b.firstName = v
	return b
}

// LastName sets the last name.
func (b *UserBuilder) LastName(v string) *UserBuilder {
	b.lastName = v
	return b
}

// Street sets the address street.
func (b *UserBuilder) Street(v string) *UserBuilder {
	b.addr.street = v
	return b
}

// Number sets the address house number.
func (b *UserBuilder) Number(v int) *UserBuilder {
	b.addr.number = v
	b.addr.hasNumber = true
	return b
}

// PostalCode sets the address postal code.
func (b *UserBuilder) PostalCode(v int) *UserBuilder {
	b.addr.postalCode = v
	b.addr.hasPostal = true
	return b
}

// City sets the address city.
func (b *UserBuilder) City(v string) *UserBuilder {
	b.addr.city = v
	return b
}

// Role sets the capability tag.
func (b *UserBuilder) Role(v Role) *UserBuilder {
	b.role = v
	b.hasRole = true
	return b
}

// Status sets the active/inactive flag.
func (b *UserBuilder) Status(v Status) *UserBuilder {
	b.status = v
	b.hasStatus = true
	return b
}

// Build validates the entire accumulated state at once and returns either a
// fully constructed User or a ValidationError listing every violated field.
func (b *UserBuilder) Build() (*User, error) {
	if b.consumed {
		return nil, ErrBuilderConsumed
	}
	b.consumed = true

	v := make(map[string]apperrors.RuleCode)
	if strings.TrimSpace(b.username) == "" {
		v["username"] = apperrors.RuleRequired
	}
	if strings.TrimSpace(b.firstName) == "" {
		v["firstName"] = apperrors.RuleRequired
	}
	if strings.TrimSpace(b.lastName) == "" {
		v["lastName"] = apperrors.RuleRequired
	}
	b.addr.collect(v)
	switch {
	case !b.hasRole:
		v["role"] = apperrors.RuleRequired
	case !b.role.Valid():
		v["role"] = apperrors.RuleInvalidRole
	}
	switch {
	case !b.hasStatus:
		v["status"] = apperrors.RuleRequired
	case !b.status.Valid():
		v["status"] = apperrors.RuleInvalidStatus
	}

	if len(v) > 0 {
		return nil, apperrors.Validation("user", v)
	}

	return &User{
		ID:        b.id,
		Username:  strings.TrimSpace(b.username),
		FirstName: strings.TrimSpace(b.firstName),
		LastName:  strings.TrimSpace(b.lastName),
		Address:   b.addr.toAddress(),
		Role:      b.role,
		Status:    b.status,
	}, nil
}
