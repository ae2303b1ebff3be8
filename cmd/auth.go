package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/justmusik/jmk/internal/models"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

// readPassword takes the password from the flag when given, otherwise prompts
// without echo.
func (r *Runner) readPassword(cmd *cli.Command) (string, error) {
	if pw := cmd.String("password"); pw != "" {
		return pw, nil
	}

	r.writePlain("Password: ")
	data, err := term.ReadPassword(0)
	r.writePlain("\n")
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(data), nil
}

// AuthLogin signs in and persists the session.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	password, err := r.readPassword(cmd)
	if err != nil {
		return err
	}

	creds := models.Credentials{Username: cmd.String("username"), Password: password}
	if err := r.session.Login(ctx, creds); err != nil {
		return err
	}

	user := r.session.Current()
	r.logger.Info("signed in", "user", user.Username)
	return r.writePlain("✓ Signed in as %s (%s)\n", user.Username, user.RoleDisplay())
}

// AuthRegister creates a new account. The new user signs in separately.
func (r *Runner) AuthRegister(ctx context.Context, cmd *cli.Command) error {
	password, err := r.readPassword(cmd)
	if err != nil {
		return err
	}

	reg := models.Registration{
		Username: cmd.String("username"),
		Email:    cmd.String("email"),
		Password: password,
	}
	if err := r.session.Register(ctx, reg); err != nil {
		return err
	}

	return r.writePlain("✓ Account created, sign in with 'jmk auth login'\n")
}

// AuthLogout clears the persisted session.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	r.session.Logout()
	return r.writePlain("✓ Signed out\n")
}

// AuthStatus shows the session state and, when signed in, the token's expiry.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	if !r.session.Authenticated() {
		return r.writePlain("✗ Not signed in\n")
	}

	user := r.session.Current()
	r.writePlain("✓ Signed in as %s\n", user.Username)
	r.writePlain("Roles: %s\n", user.RoleDisplay())

	info, err := r.session.Inspect()
	if err != nil {
		r.logger.Debug("token claims unreadable", "err", err)
		return nil
	}
	if !info.ExpiresAt.IsZero() {
		state := "valid"
		if info.Expired() {
			state = "expired"
		}
		r.writePlain("Token: %s, expires %s\n", state, info.ExpiresAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

// AuthWhoami prints the signed-in user's profile.
func (r *Runner) AuthWhoami(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireSession(); err != nil {
		return err
	}

	user := r.session.Current()
	if cmd.Bool("json") {
		return r.writeJSON(user, true)
	}

	r.writePlain("Username: %s\n", user.Username)
	r.writePlain("Email: %s\n", user.Email)
	r.writePlain("Roles: %s\n", strings.Join(user.Roles, ", "))
	if user.IsPaid {
		r.writePlain("Plan: paid\n")
	} else {
		r.writePlain("Plan: free\n")
	}
	return nil
}
