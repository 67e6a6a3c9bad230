// Package auth issues player identities and session tokens.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/fogwalk/internal/dependencies/clock"
	"github.com/mcoot/fogwalk/internal/model"
	"github.com/mcoot/fogwalk/internal/storage"
)

// Errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidSession     = errors.New("invalid or expired session")
	ErrLoginExists        = errors.New("login already exists")
	ErrLoginRequired      = errors.New("login and password are required")
	ErrIdentityExpired    = errors.New("identity expired, create a new guest")
	ErrPasswordNeeded     = errors.New("registered players must log in with a password")
)

// GuestPrefix starts every generated guest username
const GuestPrefix = "Player_"

// Session represents an authenticated session
type Session struct {
	Token     string
	PlayerID  model.PlayerID
	Player    model.Player
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Service handles authentication and session management
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	logger  *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session

	sessionDuration   time.Duration
	identityFreshness time.Duration
}

// Config holds configuration for the auth service
type Config struct {
	SessionDuration time.Duration
	// IdentityFreshness is how long a guest identity may go unused before Resume refuses it
	IdentityFreshness time.Duration
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		SessionDuration:   24 * time.Hour,
		IdentityFreshness: 7 * 24 * time.Hour,
	}
}

// New creates a new AuthService
func New(storage storage.Storage, clock clock.Clock, logger *slog.Logger, cfg Config) *Service {
	defaults := DefaultConfig()
	if cfg.SessionDuration == 0 {
		cfg.SessionDuration = defaults.SessionDuration
	}
	if cfg.IdentityFreshness == 0 {
		cfg.IdentityFreshness = defaults.IdentityFreshness
	}
	return &Service{
		storage:           storage,
		clock:             clock,
		logger:            logger,
		sessions:          make(map[string]*Session),
		sessionDuration:   cfg.SessionDuration,
		identityFreshness: cfg.IdentityFreshness,
	}
}

// GuestUsername derives the default username from a player ID
func GuestUsername(id model.PlayerID) string {
	short := strings.ReplaceAll(string(id), "-", "")
	if len(short) > 6 {
		short = short[:6]
	}
	return GuestPrefix + short
}

// CreateGuestPlayer creates an anonymous player and session.
// An empty username is replaced with GuestUsername.
func (s *Service) CreateGuestPlayer(ctx context.Context, username string) (*Session, error) {
	playerID := model.PlayerID(uuid.NewString())
	now := s.clock.Now()

	username = strings.TrimSpace(username)
	if username == "" {
		username = GuestUsername(playerID)
	}

	player := &model.Player{
		ID:        playerID,
		Username:  username,
		IsGuest:   true,
		CreatedAt: now,
		LastLogin: now,
	}

	if err := s.storage.SavePlayer(ctx, player); err != nil {
		return nil, err
	}

	s.logger.Info("guest player created",
		slog.String("player_id", string(playerID)),
		slog.String("username", username),
	)
	return s.createSession(player)
}

// Resume reissues a session for a stored guest identity that was used within the
// freshness window. Stale identities are deleted.
func (s *Service) Resume(ctx context.Context, playerID model.PlayerID) (*Session, error) {
	player, err := s.storage.GetPlayer(ctx, playerID)
	if err != nil {
		if errors.Is(err, model.ErrPlayerNotFound) {
			return nil, ErrIdentityExpired
		}
		return nil, err
	}

	if !player.IsGuest {
		return nil, ErrPasswordNeeded
	}

	if clock.Since(s.clock, player.LastLogin) > s.identityFreshness {
		if err := s.storage.DeletePlayer(ctx, playerID); err != nil {
			return nil, err
		}
		s.logger.Info("stale guest identity discarded",
			slog.String("player_id", string(playerID)),
			slog.Time("last_login", player.LastLogin),
		)
		return nil, ErrIdentityExpired
	}

	if err := s.touch(ctx, player); err != nil {
		return nil, err
	}
	return s.createSession(player)
}

// RegisterPlayer creates a registered player account and session.
// An empty username defaults to the login.
func (s *Service) RegisterPlayer(ctx context.Context, login, password, username string) (*Session, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, ErrLoginRequired
	}

	// Check if login exists
	_, err := s.storage.GetRegisteredPlayerByLogin(ctx, login)
	if err == nil {
		return nil, ErrLoginExists
	}
	if !errors.Is(err, model.ErrPlayerNotFound) {
		return nil, err
	}

	// Hash password
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	playerID := model.PlayerID(uuid.NewString())
	now := s.clock.Now()

	username = strings.TrimSpace(username)
	if username == "" {
		username = login
	}

	player := &model.Player{
		ID:        playerID,
		Username:  username,
		IsGuest:   false,
		CreatedAt: now,
		LastLogin: now,
	}

	registeredPlayer := &model.RegisteredPlayer{
		PlayerID:     playerID,
		Login:        login,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.storage.SavePlayer(ctx, player); err != nil {
		return nil, err
	}

	if err := s.storage.SaveRegisteredPlayer(ctx, registeredPlayer); err != nil {
		return nil, err
	}

	s.logger.Info("player registered", slog.String("player_id", string(playerID)))
	return s.createSession(player)
}

// Login authenticates a registered player and creates a session
func (s *Service) Login(ctx context.Context, login, password string) (*Session, error) {
	rp, err := s.storage.GetRegisteredPlayerByLogin(ctx, strings.TrimSpace(login))
	if err != nil {
		if errors.Is(err, model.ErrPlayerNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(rp.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	player, err := s.storage.GetPlayer(ctx, rp.PlayerID)
	if err != nil {
		return nil, err
	}

	if err := s.touch(ctx, player); err != nil {
		return nil, err
	}
	return s.createSession(player)
}

// ValidateSession checks if a session token is valid and returns the session
func (s *Service) ValidateSession(token string) (*Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[token]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrInvalidSession
	}

	if s.clock.Now().After(session.ExpiresAt) {
		s.mu.Lock()
		delete(s.sessions, token)
		s.mu.Unlock()
		return nil, ErrInvalidSession
	}

	return session, nil
}

// InvalidateSession removes a session
func (s *Service) InvalidateSession(token string) {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
}

// GetPlayer returns the player for a session token
func (s *Service) GetPlayer(token string) (*model.Player, error) {
	session, err := s.ValidateSession(token)
	if err != nil {
		return nil, err
	}
	player := session.Player
	return &player, nil
}

// touch records a login
func (s *Service) touch(ctx context.Context, player *model.Player) error {
	player.LastLogin = s.clock.Now()
	return s.storage.SavePlayer(ctx, player)
}

// createSession creates a new session for a player
func (s *Service) createSession(player *model.Player) (*Session, error) {
	token, err := generateToken("sess_")
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()

	session := &Session{
		Token:     token,
		PlayerID:  player.ID,
		Player:    *player,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionDuration),
	}

	s.mu.Lock()
	s.sessions[token] = session
	s.mu.Unlock()

	return session, nil
}

// generateToken returns an unguessable token with a prefix
func generateToken(prefix string) (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return prefix + base64.RawURLEncoding.EncodeToString(b), nil
}

// CleanExpiredSessions removes expired sessions (call periodically)
func (s *Service) CleanExpiredSessions() {
	now := s.clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for token, session := range s.sessions {
		if now.After(session.ExpiresAt) {
			delete(s.sessions, token)
			removed++
		}
	}
	if removed > 0 {
		s.logger.Debug("expired sessions removed", slog.Int("count", removed))
	}
}
