// Package auth implements registration, password login, the mock Google
// sign-in, and current-session resolution over the shared store.
package auth

import (
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"server/internal/domain"
	"server/internal/kvstore"
	"server/internal/ledger"
)

// InitialCreditGrant is credited to every account on creation.
const InitialCreditGrant = 100

const minPasswordLen = 6

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Service owns the user collection and the current-session pointer.
type Service struct {
	store  kvstore.Store
	ledger *ledger.Ledger
	log    zerolog.Logger
	now    func() time.Time
}

// NewService creates an auth Service.
func NewService(store kvstore.Store, l *ledger.Ledger, log zerolog.Logger) *Service {
	return &Service{
		store:  store,
		ledger: l,
		log:    log.With().Str("component", "auth").Logger(),
		now:    time.Now,
	}
}

// RegisterInput carries the registration form fields.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Confirm  string
}

// Register validates the input, creates the account, grants the initial
// credits, and signs the new user in. A duplicate email leaves the existing
// record untouched.
func (s *Service) Register(in RegisterInput) (domain.SessionUser, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)

	if name == "" {
		return domain.SessionUser{}, domain.NewValidationError("name", "name is required")
	}
	if !emailPattern.MatchString(email) {
		return domain.SessionUser{}, domain.NewValidationError("email", "invalid email")
	}
	if len(in.Password) < minPasswordLen {
		return domain.SessionUser{}, domain.NewValidationError("password", "password too short")
	}
	if in.Password != in.Confirm {
		return domain.SessionUser{}, domain.NewValidationError("confirm", "passwords do not match")
	}

	users := s.loadUsers()
	if _, exists := users[email]; exists {
		return domain.SessionUser{}, domain.ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.SessionUser{}, err
	}
	hashed := string(hash)

	user := domain.User{
		Name:     name,
		Email:    email,
		Password: &hashed,
		Plan:     domain.UserPlanFree,
		Created:  s.now().UTC(),
	}
	users[email] = user
	s.store.Set(kvstore.KeyUsers, users)

	s.ledger.Add(email, InitialCreditGrant)

	session := domain.SessionOf(user)
	s.store.Set(kvstore.KeyCurrentUser, session)
	s.log.Info().Str("email", email).Msg("account registered")
	return session, nil
}

// Login verifies the credential and signs the user in. Unknown accounts and
// wrong passwords are rejected without mutating any state.
func (s *Service) Login(email, password string) (domain.SessionUser, error) {
	email = strings.TrimSpace(email)
	if !emailPattern.MatchString(email) {
		return domain.SessionUser{}, domain.NewValidationError("email", "invalid email")
	}
	if len(password) < minPasswordLen {
		return domain.SessionUser{}, domain.NewValidationError("password", "password too short")
	}

	users := s.loadUsers()
	user, ok := users[email]
	if !ok {
		return domain.SessionUser{}, domain.ErrUnknownAccount
	}
	if user.Password == nil {
		// Google-backed account with no local credential.
		return domain.SessionUser{}, domain.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(*user.Password), []byte(password)) != nil {
		return domain.SessionUser{}, domain.ErrInvalidCredentials
	}

	session := domain.SessionOf(user)
	s.store.Set(kvstore.KeyCurrentUser, session)
	s.log.Info().Str("email", email).Msg("login")
	return session, nil
}

// GoogleSignIn signs in one of the mock Google accounts, creating it with a
// null credential and the initial credit grant on first sight.
func (s *Service) GoogleSignIn(name, email string) (domain.SessionUser, error) {
	email = strings.TrimSpace(email)
	if !emailPattern.MatchString(email) {
		return domain.SessionUser{}, domain.NewValidationError("email", "invalid email")
	}
	if strings.TrimSpace(name) == "" {
		name = email
	}

	users := s.loadUsers()
	user, ok := users[email]
	if !ok {
		user = domain.User{
			Name:    strings.TrimSpace(name),
			Email:   email,
			Plan:    domain.UserPlanFree,
			Created: s.now().UTC(),
			Google:  true,
		}
		users[email] = user
		s.store.Set(kvstore.KeyUsers, users)
		s.ledger.Add(email, InitialCreditGrant)
		s.log.Info().Str("email", email).Msg("google account created")
	}

	session := domain.SessionOf(user)
	session.Google = true
	s.store.Set(kvstore.KeyCurrentUser, session)
	return session, nil
}

// Logout clears the current-session pointer.
func (s *Service) Logout() {
	s.store.Remove(kvstore.KeyCurrentUser)
}

// Current resolves the logged-in user from the current-session pointer.
func (s *Service) Current() (domain.SessionUser, bool) {
	var session domain.SessionUser
	if !s.store.Get(kvstore.KeyCurrentUser, &session) || session.Email == "" {
		return domain.SessionUser{}, false
	}
	return session, true
}

func (s *Service) loadUsers() map[string]domain.User {
	users := map[string]domain.User{}
	s.store.Get(kvstore.KeyUsers, &users)
	return users
}
