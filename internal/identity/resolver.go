package identity

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tmarowa/zimcart-backend/internal/users"
	"github.com/tmarowa/zimcart-backend/pkg/config"
	"github.com/tmarowa/zimcart-backend/pkg/db"
	"github.com/tmarowa/zimcart-backend/pkg/enums"
	pkgerrors "github.com/tmarowa/zimcart-backend/pkg/errors"
	"github.com/tmarowa/zimcart-backend/pkg/logger"
	"github.com/tmarowa/zimcart-backend/pkg/security"
)

// Session is the authenticated principal attached to a request, if any.
type Session struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

// Contact is the customer-entered contact block used to provision a
// guest account when no session exists.
type Contact struct {
	Email    string
	FullName string
	Phone    *string
}

// Resolution names the customer an order batch belongs to. The
// generated password is set only for freshly provisioned guests and
// must be surfaced to the caller exactly once; it is never persisted
// in clear.
type Resolution struct {
	UserID            uuid.UUID
	GeneratedPassword string
	GuestCreated      bool
}

// Resolver turns a session-or-contact pair into a concrete customer id.
type Resolver interface {
	Resolve(ctx context.Context, session *Session, contact Contact) (*Resolution, error)
}

type resolver struct {
	db          *db.Client
	passwordCfg config.PasswordConfig
	logg        *logger.Logger
}

// NewResolver builds an identity resolver with the provided dependencies.
func NewResolver(client *db.Client, passwordCfg config.PasswordConfig, logg *logger.Logger) (Resolver, error) {
	if client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &resolver{db: client, passwordCfg: passwordCfg, logg: logg}, nil
}

func (r *resolver) Resolve(ctx context.Context, session *Session, contact Contact) (*Resolution, error) {
	if session != nil && session.UserID != uuid.Nil {
		return &Resolution{UserID: session.UserID}, nil
	}

	email := strings.ToLower(strings.TrimSpace(contact.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required for guest checkout")
	}
	fullName := strings.TrimSpace(contact.FullName)
	if fullName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "full name is required for guest checkout")
	}

	password, err := security.GenerateGuestPassword()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate guest password")
	}
	passwordHash, err := security.HashPassword(password, r.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash guest password")
	}

	var resolution *Resolution
	err = r.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := users.NewRepository(tx)

		if _, err := repo.FindByEmail(ctx, email); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "email already registered, please sign in to checkout")
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check guest email")
		}

		profile, err := repo.Create(ctx, users.CreateProfileDTO{
			Email:        email,
			PasswordHash: passwordHash,
			FullName:     fullName,
			Phone:        contact.Phone,
			Role:         enums.UserRoleCustomer,
			IsGuest:      true,
		})
		if err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.New(pkgerrors.CodeConflict, "email already registered, please sign in to checkout")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create guest profile")
		}

		resolution = &Resolution{
			UserID:            profile.ID,
			GeneratedPassword: password,
			GuestCreated:      true,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.logg.Info(r.logg.WithUserID(ctx, resolution.UserID.String()), "guest profile provisioned for checkout")
	return resolution, nil
}
