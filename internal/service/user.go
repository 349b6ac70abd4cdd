package service

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"plantkeeper.io/plantkeeper/internal/domain"
	apperrors "plantkeeper.io/plantkeeper/internal/pkg/errors"
	"plantkeeper.io/plantkeeper/internal/policy"
	"plantkeeper.io/plantkeeper/internal/repository"
)

// UserService manages the user aggregate. Users are never hard-deleted;
// deactivation flips the status to INACTIVE and keeps the record.
type UserService struct {
	repo       repository.Repository[*domain.User]
	dispatcher *domain.Dispatcher
	now        clock
}

// NewUserService wires the user aggregate service.
func NewUserService(repo repository.Repository[*domain.User], dispatcher *domain.Dispatcher) *UserService {
	return &UserService{repo: repo, dispatcher: dispatcher, now: systemClock}
}

// UserInput carries the caller-supplied fields for create and update.
type UserInput struct {
	Username   string        `json:"username"`
	Password   string        `json:"password,omitempty"`
	FirstName  string        `json:"first_name"`
	LastName   string        `json:"last_name"`
	Street     string        `json:"street"`
	Number     int           `json:"number"`
	PostalCode int           `json:"postal_code"`
	City       string        `json:"city"`
	Role       domain.Role   `json:"role"`
	Status     domain.Status `json:"status"`
}

func (in UserInput) builder() *domain.UserBuilder {
	return domain.NewUserBuilder().
		Username(in.Username).
		FirstName(in.FirstName).
		LastName(in.LastName).
		Street(in.Street).
		Number(in.Number).
		PostalCode(in.PostalCode).
		City(in.City).
		Role(in.Role).
		Status(in.Status)
}

// Create registers a new user. Administrator only.
func (s *UserService) Create(ctx context.Context, actor policy.Actor, in UserInput) (*domain.UserDTO, error) {
	if err := policy.Check(actor, policy.OpUserCreate); err != nil {
		return nil, err
	}
	if err := s.checkUsernameFree(ctx, in.Username, 0); err != nil {
		return nil, err
	}
	user, err := in.builder().Build()
	if err != nil {
		return nil, err
	}
	if in.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeInternal, "hash password", 500)
		}
		user.PasswordHash = string(hash)
	}
	err = repository.WithTx[*domain.User](ctx, s.repo, func(tx repository.Tx[*domain.User]) error {
		user, err = tx.Insert(ctx, user)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.notify(ctx, domain.EventUserCreated, actor, user,
		fmt.Sprintf("user %s was created", user.Username))
	dto := domain.NewUserDTO(user)
	return &dto, nil
}

// Update replaces the user's mutable fields. The target must exist before
// any builder work starts. An empty password keeps the current hash.
func (s *UserService) Update(ctx context.Context, actor policy.Actor, id int64, in UserInput) (*domain.UserDTO, error) {
	if err := policy.Check(actor, policy.OpUserUpdate); err != nil {
		return nil, err
	}
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkUsernameFree(ctx, in.Username, id); err != nil {
		return nil, err
	}
	user, err := in.builder().ID(id).Build()
	if err != nil {
		return nil, err
	}
	user.PasswordHash = existing.PasswordHash
	if in.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeInternal, "hash password", 500)
		}
		user.PasswordHash = string(hash)
	}
	err = repository.WithTx[*domain.User](ctx, s.repo, func(tx repository.Tx[*domain.User]) error {
		user, err = tx.Update(ctx, user)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.notify(ctx, domain.EventUserUpdated, actor, user,
		fmt.Sprintf("user %s was updated", user.Username))
	dto := domain.NewUserDTO(user)
	return &dto, nil
}

// Deactivate soft-deletes a user by flipping the status to INACTIVE.
func (s *UserService) Deactivate(ctx context.Context, actor policy.Actor, id int64) (*domain.UserDTO, error) {
	if err := policy.Check(actor, policy.OpUserDeactivate); err != nil {
		return nil, err
	}
	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Status == domain.StatusInactive {
		dto := domain.NewUserDTO(user)
		return &dto, nil
	}
	user.Status = domain.StatusInactive
	err = repository.WithTx[*domain.User](ctx, s.repo, func(tx repository.Tx[*domain.User]) error {
		user, err = tx.Update(ctx, user)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.notify(ctx, domain.EventUserUpdated, actor, user,
		fmt.Sprintf("user %s was deactivated", user.Username))
	dto := domain.NewUserDTO(user)
	return &dto, nil
}

// Get returns one user projection.
func (s *UserService) Get(ctx context.Context, actor policy.Actor, id int64) (*domain.UserDTO, error) {
	if err := policy.Check(actor, policy.OpUserRead); err != nil {
		return nil, err
	}
	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := domain.NewUserDTO(user)
	return &dto, nil
}

// List returns all user projections ordered by id.
func (s *UserService) List(ctx context.Context, actor policy.Actor) ([]domain.UserDTO, error) {
	if err := policy.Check(actor, policy.OpUserRead); err != nil {
		return nil, err
	}
	users, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.UserDTO, 0, len(users))
	for _, u := range users {
		out = append(out, domain.NewUserDTO(u))
	}
	return out, nil
}

// Authenticate verifies the credentials of an active user and returns the
// entity so the caller can mint a token.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	users, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.Username != username {
			continue
		}
		if u.Status != domain.StatusActive {
			break
		}
		if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil {
			return u, nil
		}
		break
	}
	return nil, apperrors.Unauthorized(apperrors.CodeAuthFailed, "invalid credentials")
}

// Resolve looks up a user entity for sibling services. Not policy-checked;
// the calling operation already is.
func (s *UserService) Resolve(ctx context.Context, id int64) (*domain.User, error) {
	return s.repo.Get(ctx, id)
}

func (s *UserService) checkUsernameFree(ctx context.Context, username string, selfID int64) error {
	if username == "" {
		return nil
	}
	users, err := s.repo.FindAll(ctx)
	if err != nil {
		return err
	}
	for _, u := range users {
		if u.Username == username && u.ID != selfID {
			return apperrors.Conflict(apperrors.CodeUsernameTaken,
				fmt.Sprintf("username %s is already taken", username))
		}
	}
	return nil
}

func (s *UserService) notify(ctx context.Context, typ domain.EventType, actor policy.Actor, u *domain.User, msg string) {
	_ = s.dispatcher.Notify(ctx, domain.Event{
		Type:        typ,
		Aggregate:   "user",
		AggregateID: u.ID,
		ActorID:     actor.UserID,
		Message:     msg,
		OccurredAt:  s.now(),
	})
}
