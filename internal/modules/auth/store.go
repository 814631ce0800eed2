package auth

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/georgemunganga/mascotas-backend/internal/modules/user"
	"github.com/georgemunganga/mascotas-backend/internal/platform/observable"
	"github.com/georgemunganga/mascotas-backend/internal/platform/storage"
	"golang.org/x/crypto/bcrypt"
)

// Storage keys of the persisted session.
const (
	UserKey  = "currentUser"
	TokenKey = "token"
)

// Options tunes a Store.
type Options struct {
	Tokens *Tokens
	// Delay is the simulated round trip of login and register.
	Delay time.Duration
	Now   func() time.Time
}

// Store owns the current session, if any.
type Store struct {
	mu         sync.Mutex
	generation uint64 // bumped by every login, register and logout
	cancelWait context.CancelFunc
	session    *observable.Subject[*Session]

	users   user.Repository
	storage storage.Storage
	tokens  *Tokens
	delay   time.Duration // guarded by mu
	now     func() time.Time
	logger  *log.Logger
}

// NewStore restores the persisted session. A session whose token no longer
// verifies, or that cannot be read, is discarded.
func NewStore(ctx context.Context, users user.Repository, st storage.Storage, opts Options, logger *log.Logger) *Store {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	s := &Store{
		session: observable.New[*Session](nil),
		users:   users,
		storage: st,
		tokens:  opts.Tokens,
		delay:   opts.Delay,
		now:     opts.Now,
		logger:  logger,
	}
	if restored := s.restore(ctx); restored != nil {
		s.session.Next(restored)
	}
	return s
}

func (s *Store) restore(ctx context.Context) *Session {
	var u user.User
	found, err := storage.LoadJSON(ctx, s.storage, UserKey, &u)
	if err != nil {
		s.logger.Printf("load session: %v", err)
	}
	if !found {
		return nil
	}
	var token string
	if _, err := storage.LoadJSON(ctx, s.storage, TokenKey, &token); err != nil {
		s.logger.Printf("load token: %v", err)
	}
	claims, err := s.tokens.Verify(token)
	if err == nil {
		if id, idErr := claims.UserID(); idErr != nil || id != u.ID {
			err = ErrInvalidToken
		}
	}
	if err != nil {
		s.logger.Printf("dropping stored session of %s: %v", u.Email, err)
		s.forget(ctx)
		return nil
	}
	// the account may have been disabled or changed since the session was saved
	current, err := s.users.GetByID(ctx, u.ID)
	if err == nil && !current.Active {
		err = ErrAccountDisabled
	}
	if err != nil {
		s.logger.Printf("dropping stored session of %s: %v", u.Email, err)
		s.forget(ctx)
		return nil
	}
	return &Session{User: *current, Token: token, IssuedAt: time.Unix(claims.IssuedAt, 0).UTC()}
}

// Login checks the credentials, waits out the simulated round trip and
// installs the new session. Nothing changes when it fails.
func (s *Store) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, user.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	if !u.Active {
		return nil, ErrAccountDisabled
	}
	return s.open(ctx, *u)
}

// Register creates a customer account and logs it in.
func (s *Store) Register(ctx context.Context, req RegisterRequest) (*Session, error) {
	if strings.TrimSpace(req.FirstName) == "" || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return nil, ErrMissingFields
	}
	if req.Password != req.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}
	if _, err := s.users.GetByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, user.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &user.User{
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        req.Email,
		Phone:        req.Phone,
		Address:      req.Address,
		PasswordHash: string(hash),
		Role:         user.RoleCustomer,
		Active:       true,
		RegisteredAt: s.now().UTC(),
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	s.logger.Printf("registered %s (id %d)", u.Email, u.ID)
	return s.open(ctx, *u)
}

// open waits for the simulated round trip, then installs a session for u
// unless a logout or another login happened in the meantime.
func (s *Store) open(ctx context.Context, u user.User) (*Session, error) {
	s.mu.Lock()
	s.supersede()
	gen, delay := s.generation, s.delay
	waitCtx, cancel := context.WithCancel(ctx)
	s.cancelWait = cancel
	s.mu.Unlock()
	defer cancel()

	waitErr := wait(waitCtx, delay)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation != gen {
		return nil, ErrSuperseded
	}
	s.cancelWait = nil
	if waitErr != nil {
		return nil, waitErr
	}

	now := s.now()
	token, err := s.tokens.Issue(u, now)
	if err != nil {
		return nil, err
	}
	sess := &Session{User: u, Token: token, IssuedAt: time.Unix(now.Unix(), 0).UTC()}
	s.session.Next(sess)
	if err := storage.SaveJSON(ctx, s.storage, UserKey, u); err != nil {
		s.logger.Printf("save session: %v", err)
	}
	if err := storage.SaveJSON(ctx, s.storage, TokenKey, token); err != nil {
		s.logger.Printf("save token: %v", err)
	}
	s.logger.Printf("session opened for %s (%s)", u.Email, u.Role)
	return copySession(sess), nil
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Logout ends the session and invalidates any login still in flight.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.supersede()
	if prev := s.session.Value(); prev != nil {
		s.logger.Printf("session closed for %s", prev.User.Email)
	}
	s.session.Next(nil)
	s.forget(ctx)
}

// AccountChanged keeps the session in line with an updated account: a
// session whose user was disabled is closed, any other change is picked up.
func (s *Store) AccountChanged(ctx context.Context, u *user.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.session.Value()
	if sess == nil || sess.User.ID != u.ID {
		return
	}
	if !u.Active {
		s.supersede()
		s.session.Next(nil)
		s.forget(ctx)
		s.logger.Printf("session closed for %s: account disabled", u.Email)
		return
	}
	next := copySession(sess)
	next.User = *u
	s.session.Next(next)
	if err := storage.SaveJSON(ctx, s.storage, UserKey, next.User); err != nil {
		s.logger.Printf("save session: %v", err)
	}
}

// supersede invalidates the pending login, if any. Callers hold s.mu.
func (s *Store) supersede() {
	s.generation++
	if s.cancelWait != nil {
		s.cancelWait()
		s.cancelWait = nil
	}
}

func (s *Store) forget(ctx context.Context) {
	for _, key := range []string{UserKey, TokenKey} {
		if err := s.storage.RemoveItem(ctx, key); err != nil {
			s.logger.Printf("remove %s: %v", key, err)
		}
	}
}

// Current returns a copy of the session.
func (s *Store) Current() (*Session, bool) {
	sess := s.session.Value()
	if sess == nil {
		return nil, false
	}
	return copySession(sess), true
}

func (s *Store) IsAuthenticated() bool {
	return s.session.Value() != nil
}

// Role is the role of the session's user, or RoleGuest without a session.
func (s *Store) Role() user.Role {
	if sess := s.session.Value(); sess != nil {
		return sess.User.Role
	}
	return user.RoleGuest
}

// Permissions of the current role.
func (s *Store) Permissions() Permissions {
	return PermissionsFor(s.Role())
}

func (s *Store) HasPermission(p Permission) bool {
	return s.Permissions().Has(p)
}

// Subscribe calls fn with the current session (nil when logged out) and after every change.
func (s *Store) Subscribe(fn func(*Session)) func() {
	return s.session.Subscribe(func(sess *Session) {
		if sess == nil {
			fn(nil)
			return
		}
		fn(copySession(sess))
	})
}

func copySession(sess *Session) *Session {
	c := *sess
	return &c
}
