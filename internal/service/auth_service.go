package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/gabrielle-jeco/personal-performance-app/internal/apierror"
	"github.com/gabrielle-jeco/personal-performance-app/internal/config"
	"github.com/gabrielle-jeco/personal-performance-app/internal/dto"
	"github.com/gabrielle-jeco/personal-performance-app/internal/model"
	"github.com/gabrielle-jeco/personal-performance-app/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// AuthService is the session issuer: it verifies credentials, applies the
// account and location-lock checks, and manages opaque bearer tokens backed by
// the session store.
type AuthService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
	// Logout invalidates exactly the presented token.
	Logout(ctx context.Context, token string) error
	// Authenticate resolves a bearer token into an Actor, or Unauthorized.
	Authenticate(ctx context.Context, token string) (*Actor, error)
	Me(ctx context.Context, actor Actor) (*dto.UserResponse, error)
}

type authService struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	cfg      *config.Config
}

func NewAuthService(users repository.UserRepository, sessions repository.SessionRepository, cfg *config.Config) AuthService {
	return &authService{users: users, sessions: sessions, cfg: cfg}
}

func (s *authService) Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.users.FindByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	// Same generic message for unknown user and wrong password — the login
	// form must not reveal which field was wrong.
	if user == nil {
		return nil, apierror.E(apierror.KindInvalidCredentials, "invalid credentials")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, apierror.E(apierror.KindInvalidCredentials, "invalid credentials")
	}

	if !user.Active {
		return nil, apierror.E(apierror.KindAccountInactive, "account is inactive")
	}

	if user.IsStoreManager() {
		if user.LocationID == nil {
			return nil, apierror.E(apierror.KindConfiguration, "store manager has no assigned location")
		}
		// Location lock: a site claim (kiosk/device) must match the assigned
		// location. Reported explicitly — this one is operationally actionable.
		if req.LocationID != nil {
			claimed, err := uuid.Parse(*req.LocationID)
			if err != nil || claimed != *user.LocationID {
				return nil, apierror.E(apierror.KindLocationMismatch, "access denied: you are locked to a different location")
			}
		}
	}
	// Regional managers carry no lock and may log in from anywhere.

	token, err := newSessionToken()
	if err != nil {
		return nil, err
	}
	ttl := time.Duration(s.cfg.SessionTTLHours) * time.Hour
	sess := repository.Session{
		UserID:      user.ID,
		Role:        user.Role,
		ManagerType: user.ManagerType,
		LocationID:  user.LocationID,
	}
	if err := s.sessions.Save(ctx, token, sess, ttl); err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   s.cfg.SessionTTLHours * 3600,
		User:        userResponse(user),
	}, nil
}

func (s *authService) Logout(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}

func (s *authService) Authenticate(ctx context.Context, token string) (*Actor, error) {
	sess, err := s.sessions.Find(ctx, token)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, apierror.E(apierror.KindUnauthorized, "invalid or expired session")
	}
	return &Actor{
		ID:          sess.UserID,
		Role:        sess.Role,
		ManagerType: sess.ManagerType,
		LocationID:  sess.LocationID,
	}, nil
}

func (s *authService) Me(ctx context.Context, actor Actor) (*dto.UserResponse, error) {
	user, err := s.users.FindByID(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apierror.E(apierror.KindNotFound, "user not found")
	}
	resp := userResponse(user)
	return &resp, nil
}

// newSessionToken returns a 256-bit random hex token. Opaque by design: all
// session state lives server-side so revocation is a single key delete.
func newSessionToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func userResponse(u *model.User) dto.UserResponse {
	resp := dto.UserResponse{
		ID:          u.ID.String(),
		Username:    u.Username,
		FullName:    u.FullName,
		Email:       u.Email,
		Role:        u.Role,
		ManagerType: u.ManagerType,
		Active:      u.Active,
	}
	if u.LocationID != nil {
		id := u.LocationID.String()
		resp.LocationID = &id
	}
	if u.Location != nil {
		name := u.Location.Name
		resp.LocationName = &name
	}
	return resp
}
