package usecases

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"leadflow.backend/internal/domain/entities"
	domainerrors "leadflow.backend/internal/domain/errors"
	"leadflow.backend/internal/domain/repositories"
	"leadflow.backend/pkg/crypto"
	"leadflow.backend/pkg/jwt"
	redispkg "leadflow.backend/pkg/redis"
)

// sessionTTL bounds how long a Redis-backed browser session lives.
const sessionTTL = 24 * time.Hour

// AuthUsecase handles signup, login and profile management.
type AuthUsecase struct {
	userRepo         repositories.UserRepository
	jwtService       *jwt.JWTService
	sessionStore     *redispkg.SessionStore
	adminEmails      map[string]struct{}
	superAdminEmails map[string]struct{}
}

// NewAuthUsecase creates a new auth usecase. adminEmails and
// superAdminEmails drive role derivation at signup.
func NewAuthUsecase(
	userRepo repositories.UserRepository,
	jwtService *jwt.JWTService,
	sessionStore *redispkg.SessionStore,
	adminEmails, superAdminEmails []string,
) *AuthUsecase {
	return &AuthUsecase{
		userRepo:         userRepo,
		jwtService:       jwtService,
		sessionStore:     sessionStore,
		adminEmails:      emailSet(adminEmails),
		superAdminEmails: emailSet(superAdminEmails),
	}
}

func emailSet(emails []string) map[string]struct{} {
	set := make(map[string]struct{}, len(emails))
	for _, e := range emails {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			set[e] = struct{}{}
		}
	}
	return set
}

// roleForEmail derives the signup role from the configured admin lists.
func (u *AuthUsecase) roleForEmail(email string) entities.UserRole {
	key := strings.ToLower(email)
	if _, ok := u.superAdminEmails[key]; ok {
		return entities.UserRoleSuperAdmin
	}
	if _, ok := u.adminEmails[key]; ok {
		return entities.UserRoleAdmin
	}
	return entities.UserRoleSalesRep
}

// Signup registers a new user.
func (u *AuthUsecase) Signup(ctx context.Context, input *entities.CreateUserInput) (*entities.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	_, err := u.userRepo.GetByEmail(ctx, email)
	if err == nil {
		return nil, domainerrors.Conflict("email already registered")
	}
	if !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, err
	}

	passwordHash, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &entities.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PasswordHash: passwordHash,
		Role:         u.roleForEmail(email),
	}
	if err := u.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domainerrors.ErrAlreadyExists) {
			return nil, domainerrors.Conflict("email already registered")
		}
		return nil, err
	}
	return user, nil
}

// Login authenticates a user. With UseSession set, the token pair is parked
// in the encrypted Redis session store and only the session id goes back to
// the client.
func (u *AuthUsecase) Login(ctx context.Context, input *entities.LoginInput) (*entities.AuthResponse, error) {
	user, err := u.userRepo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !crypto.CheckPassword(input.Password, user.PasswordHash) {
		return nil, domainerrors.ErrInvalidCredentials
	}

	tokenPair, err := u.jwtService.GenerateTokenPair(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, err
	}

	if input.UseSession && u.sessionStore != nil {
		sessionID := uuid.New().String()
		err := u.sessionStore.CreateSession(ctx, sessionID, &redispkg.SessionData{
			AccessToken:  tokenPair.AccessToken,
			RefreshToken: tokenPair.RefreshToken,
		}, sessionTTL)
		if err != nil {
			return nil, err
		}
		return &entities.AuthResponse{SessionID: sessionID, User: user}, nil
	}

	return &entities.AuthResponse{
		AccessToken:  tokenPair.AccessToken,
		RefreshToken: tokenPair.RefreshToken,
		User:         user,
	}, nil
}

// Refresh exchanges a refresh token for a new pair.
func (u *AuthUsecase) Refresh(ctx context.Context, refreshToken string) (*jwt.TokenPair, error) {
	claims, err := u.jwtService.ValidateToken(refreshToken)
	if err != nil {
		return nil, domainerrors.ErrUnauthorized
	}

	user, err := u.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, domainerrors.ErrUnauthorized
	}

	return u.jwtService.GenerateTokenPair(user.ID, user.Email, string(user.Role))
}

// Logout drops a Redis-backed session. Token-only clients just discard their
// tokens.
func (u *AuthUsecase) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" || u.sessionStore == nil {
		return nil
	}
	return u.sessionStore.DeleteSession(ctx, sessionID)
}

// GetProfile returns the actor's own user record.
func (u *AuthUsecase) GetProfile(ctx context.Context, userID uuid.UUID) (*entities.User, error) {
	return u.userRepo.GetByID(ctx, userID)
}

// UpdateProfile applies a self-service profile change. Role never changes
// here.
func (u *AuthUsecase) UpdateProfile(ctx context.Context, userID uuid.UUID, input *entities.UpdateProfileInput) (*entities.User, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.Name = strings.TrimSpace(input.Name)

	taken, err := u.userRepo.EmailTaken(ctx, input.Email, userID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, domainerrors.Conflict("email already in use")
	}

	return u.userRepo.UpdateProfile(ctx, userID, input)
}
