package auth

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"server/internal/domain"
	"server/internal/kvstore"
	"server/internal/ledger"
)

func newTestService() (*Service, *ledger.Ledger) {
	store := kvstore.NewMemStore()
	l := ledger.New(store, zerolog.Nop())
	return NewService(store, l, zerolog.Nop()), l
}

func validInput() RegisterInput {
	return RegisterInput{Name: "Ana", Email: "a@b.com", Password: "secret1", Confirm: "secret1"}
}

func TestRegisterGrantsInitialCredits(t *testing.T) {
	s, l := newTestService()

	session, err := s.Register(validInput())
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	if session.Email != "a@b.com" || session.Plan != domain.UserPlanFree {
		t.Fatalf("Register() session = %+v", session)
	}
	if got := l.Balance("a@b.com"); got != InitialCreditGrant {
		t.Fatalf("balance after registration = %d, want %d", got, InitialCreditGrant)
	}
	if _, ok := s.Current(); !ok {
		t.Fatalf("Register() did not sign the user in")
	}
}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RegisterInput)
		field  string
	}{
		{name: "missing name", mutate: func(in *RegisterInput) { in.Name = "  " }, field: "name"},
		{name: "bad email", mutate: func(in *RegisterInput) { in.Email = "not-an-email" }, field: "email"},
		{name: "email with spaces", mutate: func(in *RegisterInput) { in.Email = "a b@c.com" }, field: "email"},
		{name: "short password", mutate: func(in *RegisterInput) { in.Password = "abc"; in.Confirm = "abc" }, field: "password"},
		{name: "mismatched confirm", mutate: func(in *RegisterInput) { in.Confirm = "secret2" }, field: "confirm"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s, l := newTestService()
			in := validInput()
			tc.mutate(&in)

			_, err := s.Register(in)
			var verr *domain.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Register() error = %v, want ValidationError", err)
			}
			if verr.Field != tc.field {
				t.Fatalf("ValidationError field = %q, want %q", verr.Field, tc.field)
			}
			if bal := l.Balance(in.Email); bal != 0 {
				t.Fatalf("rejected registration granted credits: %d", bal)
			}
		})
	}
}

func TestRegisterDuplicateEmailLeavesOriginalUntouched(t *testing.T) {
	s, l := newTestService()
	if _, err := s.Register(validInput()); err != nil {
		t.Fatalf("first Register() error: %v", err)
	}

	second := validInput()
	second.Name = "Impostor"
	if _, err := s.Register(second); !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("second Register() error = %v, want ErrEmailTaken", err)
	}

	session, err := s.Login("a@b.com", "secret1")
	if err != nil {
		t.Fatalf("Login() after duplicate attempt: %v", err)
	}
	if session.Name != "Ana" {
		t.Fatalf("original record mutated: name = %q", session.Name)
	}
	if got := l.Balance("a@b.com"); got != InitialCreditGrant {
		t.Fatalf("duplicate attempt changed balance: %d", got)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	s, l := newTestService()
	if _, err := s.Register(validInput()); err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	s.Logout()

	if _, err := s.Login("a@b.com", "secret2"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("Login() error = %v, want ErrInvalidCredentials", err)
	}
	if _, ok := s.Current(); ok {
		t.Fatalf("failed login left a session behind")
	}
	if got := l.Balance("a@b.com"); got != InitialCreditGrant {
		t.Fatalf("failed login changed balance: %d, want %d", got, InitialCreditGrant)
	}

	if _, err := s.Login("a@b.com", "secret1"); err != nil {
		t.Fatalf("Login() with correct password: %v", err)
	}
}

func TestLoginUnknownAccount(t *testing.T) {
	s, _ := newTestService()
	if _, err := s.Login("nadie@b.com", "secret1"); !errors.Is(err, domain.ErrUnknownAccount) {
		t.Fatalf("Login() error = %v, want ErrUnknownAccount", err)
	}
}

func TestGoogleSignInCreatesOnce(t *testing.T) {
	s, l := newTestService()

	first, err := s.GoogleSignIn("Demo User", "demo@gmail.com")
	if err != nil {
		t.Fatalf("GoogleSignIn() error: %v", err)
	}
	if !first.Google {
		t.Fatalf("GoogleSignIn() session missing google flag: %+v", first)
	}
	if got := l.Balance("demo@gmail.com"); got != InitialCreditGrant {
		t.Fatalf("balance after first google sign-in = %d, want %d", got, InitialCreditGrant)
	}

	// Second sign-in reuses the account and grants nothing.
	if _, err := s.GoogleSignIn("Demo User", "demo@gmail.com"); err != nil {
		t.Fatalf("second GoogleSignIn() error: %v", err)
	}
	if got := l.Balance("demo@gmail.com"); got != InitialCreditGrant {
		t.Fatalf("repeat google sign-in granted again: %d", got)
	}

	// A google account has no password login.
	if _, err := s.Login("demo@gmail.com", "whatever"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("Login() on google account = %v, want ErrInvalidCredentials", err)
	}
}

func TestLogoutClearsSession(t *testing.T) {
	s, _ := newTestService()
	if _, err := s.Register(validInput()); err != nil {
		t.Fatalf("Register() error: %v", err)
	}
	s.Logout()
	if _, ok := s.Current(); ok {
		t.Fatalf("Current() found a session after Logout()")
	}
}
