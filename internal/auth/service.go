package auth

import (
	"context"
	"errors"
	"log/slog"

	"medivault/internal/audit"
	"medivault/internal/credential"
	id "medivault/pkg/domain"
	dErrors "medivault/pkg/domain-errors"
	"medivault/pkg/platform/sentinel"
	"medivault/pkg/requestcontext"
)

// Service authenticates principals and opens sessions. Authentication
// failures are always reported generically: the caller never learns whether
// the username or the password was wrong.
type Service struct {
	users   UserStore
	creds   *credential.Store
	tokens  *TokenIssuer
	auditor *audit.Publisher
	logger  *slog.Logger
}

func NewService(users UserStore, creds *credential.Store, tokens *TokenIssuer,
	auditor *audit.Publisher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{users: users, creds: creds, tokens: tokens, auditor: auditor, logger: logger}
}

// LoginResult is the opened session.
type LoginResult struct {
	Token     string
	ActorID   id.ActorID
	Role      id.Role
	SessionID id.SessionID
}

// Login verifies the credential and issues a session token. Both outcomes are
// audit-logged; a successful login is only reported after its audit entry is
// durable.
func (s *Service) Login(ctx context.Context, username, password string) (LoginResult, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return LoginResult{}, s.fail(ctx, username)
		}
		return LoginResult{}, dErrors.Wrap(dErrors.CodeInternal, "user store failure", err)
	}
	if !user.Active || !s.creds.Verify(password, user.PasswordHash) {
		return LoginResult{}, s.fail(ctx, username)
	}

	now := requestcontext.Now(ctx)
	sessionID := id.NewSessionID()

	user.LastLogin = &now
	if err := s.users.Save(ctx, user); err != nil {
		return LoginResult{}, dErrors.Wrap(dErrors.CodeInternal, "user store failure", err)
	}

	token, err := s.tokens.Issue(user, sessionID, now)
	if err != nil {
		return LoginResult{}, dErrors.Wrap(dErrors.CodeInternal, "could not issue session token", err)
	}

	// The session has no context values yet; snapshot actor and role into
	// the entry directly.
	err = s.auditor.Record(ctx, audit.Entry{
		ActorID: user.ID,
		Role:    user.Role,
		Action:  audit.ActionLogin,
		Detail:  "user " + username + " logged in",
	})
	if err != nil {
		return LoginResult{}, err
	}

	return LoginResult{Token: token, ActorID: user.ID, Role: user.Role, SessionID: sessionID}, nil
}

// Register stores a new user with a freshly hashed credential.
func (s *Service) Register(ctx context.Context, username, fullName, password string, role id.Role) (User, error) {
	if !role.IsValid() {
		return User{}, dErrors.New(dErrors.CodeInvalidInput, "invalid role")
	}
	hash, err := s.creds.Hash(password)
	if err != nil {
		return User{}, err
	}
	user := User{
		ID:           id.NewActorID(),
		Username:     username,
		FullName:     fullName,
		PasswordHash: hash,
		Role:         role,
		Active:       true,
	}
	if err := s.users.Save(ctx, user); err != nil {
		return User{}, dErrors.Wrap(dErrors.CodeInternal, "user store failure", err)
	}
	return user, nil
}

// fail records the failed attempt and returns the generic error. If even the
// audit append fails, that error wins: nothing proceeds without the trail.
func (s *Service) fail(ctx context.Context, username string) error {
	err := s.auditor.Record(ctx, audit.Entry{
		Action: audit.ActionLoginFailed,
		Detail: "failed login attempt for username " + username,
	})
	if err != nil {
		return err
	}
	return dErrors.New(dErrors.CodeAuthenticationFailed, "invalid username or password")
}
