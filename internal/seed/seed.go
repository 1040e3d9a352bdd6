// Package seed loads fixture users and accounts from YAML and applies them
// through the auth and ledger services at startup.
package seed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"ledger-api/internal/core/domain"
	"ledger-api/internal/core/ports"
	"ledger-api/pkg/apperror"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Fixture is the on-disk seed document.
type Fixture struct {
	Users    []User    `yaml:"users"`
	Accounts []Account `yaml:"accounts"`
}

// User is a fixture user. Role defaults to USER.
type User struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Role     string `yaml:"role"`
}

// Account is a fixture account. An empty Owner makes a flat account.
type Account struct {
	ID      string `yaml:"id"`
	Owner   string `yaml:"owner"`
	Balance int64  `yaml:"balance"`
}

// Result counts the users ensured and the accounts created or already present.
type Result struct {
	UsersEnsured    int
	AccountsCreated int
	AccountsSkipped int
}

// Load reads and parses a fixture file.
func Load(path string) (*Fixture, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(raw)
}

// Parse decodes a fixture document. Unknown fields are rejected; an empty
// document yields an empty fixture.
func Parse(raw []byte) (*Fixture, error) {
	var f Fixture
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return &f, nil
}

// Apply creates the fixture's users and accounts. Existing users and
// accounts are left as they are, so applying the same fixture twice is a no-op.
func Apply(ctx context.Context, f *Fixture, authSvc ports.AuthService, ledgerSvc ports.LedgerService, log zerolog.Logger) (*Result, error) {
	res := &Result{}
	admin := &domain.Actor{ID: "seed", Role: domain.RoleAdmin}

	for _, u := range f.Users {
		role := domain.RoleUser
		if u.Role != "" {
			role = domain.Role(u.Role)
		}
		user, err := authSvc.EnsureUser(ctx, u.Username, u.Password, role)
		if err != nil {
			return res, fmt.Errorf("seed user %q: %w", u.Username, err)
		}
		if user.Role != role {
			log.Warn().Str("username", u.Username).Str("role", string(user.Role)).Msg("seed user exists with a different role")
		}
		res.UsersEnsured++
	}

	for _, a := range f.Accounts {
		req := ports.CreateAccountRequest{ID: a.ID, InitialBalance: a.Balance}
		if a.Owner != "" {
			owner := a.Owner
			req.OwnerID = &owner
		}

		_, err := ledgerSvc.CreateAccount(ctx, admin, req)
		switch {
		case err == nil:
			res.AccountsCreated++
		case apperror.Code(err) == apperror.CodeConflict:
			res.AccountsSkipped++
		default:
			return res, fmt.Errorf("seed account %q: %w", a.ID, err)
		}
	}

	log.Info().
		Int("users", res.UsersEnsured).
		Int("accounts_created", res.AccountsCreated).
		Int("accounts_skipped", res.AccountsSkipped).
		Msg("seed applied")
	return res, nil
}
