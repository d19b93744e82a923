package users_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/Spok95/recycle-stock/internal/auth"
	"github.com/Spok95/recycle-stock/internal/domain/users"
	"github.com/Spok95/recycle-stock/internal/store/memory"
)

func newService() (*users.Service, *auth.TokenManager) {
	tokens := auth.NewTokenManager("secret", time.Hour)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return users.NewService(memory.New().Users(), tokens, log), tokens
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc, tokens := newService()

	s, err := svc.Register(ctx, " Ana ", " Ana@Example.com", "segredo1")
	if err != nil {
		t.Fatal(err)
	}
	if s.User.ID == 0 || s.User.Name != "Ana" || s.User.Email != "ana@example.com" {
		t.Errorf("user = %+v", s.User)
	}
	if s.User.PasswordHash == "segredo1" {
		t.Error("password stored in clear")
	}
	if id, err := tokens.Verify(s.Token); err != nil || id != s.User.ID {
		t.Errorf("token subject = %d, %v; want %d", id, err, s.User.ID)
	}

	logged, err := svc.Login(ctx, "ANA@example.com", "segredo1")
	if err != nil {
		t.Fatal(err)
	}
	if logged.User.ID != s.User.ID {
		t.Errorf("login user = %d, want %d", logged.User.ID, s.User.ID)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()
	if _, err := svc.Register(ctx, "Ana", "ana@example.com", "segredo1"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Register(ctx, "Ana 2", "ANA@example.com", "outra123"); !errors.Is(err, users.ErrEmailTaken) {
		t.Errorf("err = %v, want ErrEmailTaken", err)
	}
}

func TestRegisterRejectsBlankName(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()
	for _, name := range []string{"", "   ", "\t\n"} {
		if _, err := svc.Register(ctx, name, "ana@example.com", "segredo1"); !errors.Is(err, users.ErrInvalidInput) {
			t.Errorf("Register(%q) err = %v, want ErrInvalidInput", name, err)
		}
	}
	// ни одна попытка не заняла email
	if _, err := svc.Register(ctx, "Ana", "ana@example.com", "segredo1"); err != nil {
		t.Errorf("Register after rejected attempts: %v", err)
	}
}

func TestLoginFailuresLookAlike(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService()
	if _, err := svc.Register(ctx, "Ana", "ana@example.com", "segredo1"); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name, email, password string
	}{
		{"unknown email", "bia@example.com", "segredo1"},
		{"wrong password", "ana@example.com", "segredo2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Login(ctx, tt.email, tt.password); !errors.Is(err, users.ErrInvalidCredentials) {
				t.Errorf("err = %v, want ErrInvalidCredentials", err)
			}
		})
	}
}
