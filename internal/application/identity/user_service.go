package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/orders/backend/internal/domain/identity"
	"github.com/orders/backend/internal/domain/shared"
	"github.com/orders/backend/internal/infrastructure/auth"
	"github.com/orders/backend/internal/infrastructure/config"
	"github.com/orders/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// UserService manages accounts: registration, email confirmation, details and password reset
type UserService struct {
	userRepo  identity.UserRepository
	tokenRepo identity.TokenRepository
	events    shared.EventPublisher
	blacklist auth.TokenBlacklist
	tokenCfg  config.TokenConfig
	tokenTTL  time.Duration
	now       func() time.Time
}

// NewUserService creates a new user service. tokenTTL is the access token
// lifetime, used to invalidate outstanding tokens after a password reset.
func NewUserService(
	userRepo identity.UserRepository,
	tokenRepo identity.TokenRepository,
	events shared.EventPublisher,
	blacklist auth.TokenBlacklist,
	tokenCfg config.TokenConfig,
	tokenTTL time.Duration,
) *UserService {
	return &UserService{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		events:    events,
		blacklist: blacklist,
		tokenCfg:  tokenCfg,
		tokenTTL:  tokenTTL,
		now:       time.Now,
	}
}

// Register creates an inactive account and sends the confirmation token
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*UserDTO, error) {
	log := logger.L(ctx)

	email := strings.ToLower(strings.TrimSpace(in.Email))
	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailTaken
	}

	user, err := identity.NewUser(email, in.Password, in.Type, identity.Profile{
		FirstName: &in.FirstName,
		LastName:  &in.LastName,
		Company:   &in.Company,
		Position:  &in.Position,
	})
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.issueToken(ctx, user.ID, identity.TokenPurposeConfirmEmail)
	if err != nil {
		return nil, err
	}
	if err := s.events.Publish(ctx, identity.NewUserRegisteredEvent(user, token)); err != nil {
		log.Error("Failed to publish registration event", zap.Uint64("user_id", user.ID), zap.Error(err))
	}

	log.Info("User registered", zap.Uint64("user_id", user.ID), zap.String("user_type", string(user.Type)))
	return ToUserDTO(user), nil
}

// Confirm activates the account when the token matches and has not expired
func (s *UserService) Confirm(ctx context.Context, email, key string) error {
	user, token, err := s.checkToken(ctx, email, key, identity.TokenPurposeConfirmEmail, s.tokenCfg.ConfirmEmailTTL)
	if err != nil {
		return err
	}

	user.Activate()
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}
	if err := s.tokenRepo.Delete(ctx, token.UserID, token.Purpose); err != nil {
		return err
	}

	logger.L(ctx).Info("User email confirmed", zap.Uint64("user_id", user.ID))
	return nil
}

// GetDetails returns the caller's own account
func (s *UserService) GetDetails(ctx context.Context, userID uint64) (*UserDTO, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return ToUserDTO(user), nil
}

// UpdateDetails applies a partial update, including an optional new password
func (s *UserService) UpdateDetails(ctx context.Context, userID uint64, in UpdateDetailsInput) (*UserDTO, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*in.Email))
		if email != user.Email {
			exists, err := s.userRepo.ExistsByEmail(ctx, email)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, ErrEmailTaken
			}
		}
	}

	if err := user.UpdateProfile(identity.Profile{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Company:   in.Company,
		Position:  in.Position,
	}); err != nil {
		return nil, err
	}
	if in.Password != nil {
		if err := user.SetPassword(*in.Password); err != nil {
			return nil, err
		}
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	logger.L(ctx).Info("User details updated",
		zap.Uint64("user_id", user.ID),
		zap.Bool("password_changed", in.Password != nil),
	)
	return ToUserDTO(user), nil
}

// RequestPasswordReset mails a reset token. Unknown emails succeed silently.
func (s *UserService) RequestPasswordReset(ctx context.Context, email string) error {
	log := logger.L(ctx)

	user, err := s.userRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			log.Info("Password reset requested for unknown email")
			return nil
		}
		return err
	}

	token, err := s.issueToken(ctx, user.ID, identity.TokenPurposePasswordReset)
	if err != nil {
		return err
	}
	if err := s.events.Publish(ctx, identity.NewPasswordResetRequestedEvent(user, token)); err != nil {
		log.Error("Failed to publish password reset event", zap.Uint64("user_id", user.ID), zap.Error(err))
	}

	log.Info("Password reset requested", zap.Uint64("user_id", user.ID))
	return nil
}

// ConfirmPasswordReset sets the new password and revokes tokens issued before it
func (s *UserService) ConfirmPasswordReset(ctx context.Context, email, key, password string) error {
	user, token, err := s.checkToken(ctx, email, key, identity.TokenPurposePasswordReset, s.tokenCfg.PasswordResetTTL)
	if err != nil {
		return err
	}

	if err := user.SetPassword(password); err != nil {
		return err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}
	if err := s.tokenRepo.Delete(ctx, token.UserID, token.Purpose); err != nil {
		return err
	}
	if err := s.blacklist.InvalidateUser(ctx, user.ID, s.tokenTTL); err != nil {
		logger.L(ctx).Warn("Failed to invalidate access tokens", zap.Uint64("user_id", user.ID), zap.Error(err))
	}

	logger.L(ctx).Info("Password reset completed", zap.Uint64("user_id", user.ID))
	return nil
}

func (s *UserService) issueToken(ctx context.Context, userID uint64, purpose identity.TokenPurpose) (*identity.OneTimeToken, error) {
	token, err := identity.NewOneTimeToken(userID, purpose)
	if err != nil {
		return nil, err
	}
	if err := s.tokenRepo.Replace(ctx, token); err != nil {
		return nil, err
	}
	return token, nil
}

// checkToken never tells apart an unknown email from a wrong token
func (s *UserService) checkToken(
	ctx context.Context,
	email, key string,
	purpose identity.TokenPurpose,
	ttl time.Duration,
) (*identity.User, *identity.OneTimeToken, error) {
	user, err := s.userRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil, ErrInvalidToken
		}
		return nil, nil, err
	}

	token, err := s.tokenRepo.Find(ctx, user.ID, purpose)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil, ErrInvalidToken
		}
		return nil, nil, err
	}
	if !token.Matches(key) || token.IsExpired(s.now(), ttl) {
		return nil, nil, ErrInvalidToken
	}
	return user, token, nil
}
