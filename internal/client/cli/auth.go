package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/authflow/internal/client/client"
	"github.com/dmitrijs2005/authflow/internal/client/models"
	"github.com/dmitrijs2005/authflow/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// errAborted ends a command the user walked away from. The REPL does not
// report it.
var errAborted = errors.New("aborted")

const resendWord = "resend"

// Signup walks through the whole registration: email, code, password and an
// optional username. Leaving the username empty keeps the account without
// one; the username command sets it later.
func (a *App) Signup(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	if err := a.authService.RequestCode(ctx, email, models.SceneSignup); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "A verification code was sent to %s.\n", email)

	if err := a.verify(ctx, email, models.SceneSignup); err != nil {
		return err
	}

	password, err := a.newPassword()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.authService.CreateAccount(ctx, password); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Account created.")

	name, err := getSimpleText(a.reader, "Choose a username (empty to skip)", a.out)
	if err != nil {
		return err
	}
	if name == "" {
		return nil
	}
	return a.assignUsername(ctx, name)
}

// ResetPassword replaces a forgotten password through an emailed code.
func (a *App) ResetPassword(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	if err := a.authService.RequestCode(ctx, email, models.SceneResetPassword); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "A verification code was sent to %s.\n", email)

	if err := a.verify(ctx, email, models.SceneResetPassword); err != nil {
		return err
	}

	password, err := a.newPassword()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.authService.ResetPassword(ctx, password); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Password changed. You can log in now.")
	return nil
}

// verify prompts for codes until one is accepted. "resend" requests a fresh
// code; an empty line abandons the flow. A rejected code is reported and
// asked for again, while errors that invalidate the flow end the command.
func (a *App) verify(ctx context.Context, email string, scene models.Scene) error {
	for {
		code, err := getSimpleText(a.reader, fmt.Sprintf("Enter the code (%q for a new one, empty to cancel)", resendWord), a.out)
		if err != nil {
			return err
		}

		switch code {
		case "":
			if err := a.authService.Reset(ctx); err != nil {
				return err
			}
			return errAborted
		case resendWord:
			if err := a.authService.RequestCode(ctx, email, scene); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "A new code was sent.")
			continue
		}

		err = a.authService.VerifyCode(ctx, email, code, scene)
		if err == nil {
			return nil
		}
		if errors.Is(err, client.ErrPrecondition) || errors.Is(err, client.ErrFlowAbandoned) || ctx.Err() != nil {
			return err
		}
		fmt.Fprintln(a.out, client.Describe(err))
	}
}

// newPassword reads a password twice. A mismatch aborts the command.
func (a *App) newPassword() ([]byte, error) {
	first, err := getPassword(a.out, "New password")
	if err != nil {
		return nil, err
	}
	second, err := getPassword(a.out, "Repeat password")
	if err != nil {
		common.WipeByteArray(first)
		return nil, err
	}
	defer common.WipeByteArray(second)

	if len(first) == 0 || !bytes.Equal(first, second) {
		common.WipeByteArray(first)
		fmt.Fprintln(a.out, "Passwords are empty or do not match.")
		return nil, errAborted
	}
	return first, nil
}

// Login prompts for credentials and opens a session.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out, "Enter password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.authService.Login(ctx, email, password); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Logged in as user %d.\n", a.authService.Session().UserID)
	return nil
}

// Username sets the display name of the logged-in account.
func (a *App) Username(ctx context.Context) error {
	name, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	if name == "" {
		return errAborted
	}
	return a.assignUsername(ctx, name)
}

func (a *App) assignUsername(ctx context.Context, name string) error {
	got, err := a.authService.SetUsername(ctx, name)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Username set to %s.\n", got)
	return nil
}

// Passwd changes the password of the logged-in account.
func (a *App) Passwd(ctx context.Context) error {
	old, err := getPassword(a.out, "Current password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(old)

	password, err := a.newPassword()
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.authService.ChangePassword(ctx, old, password); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Password changed.")
	return nil
}

func (a *App) Refresh(ctx context.Context) error {
	if err := a.authService.Refresh(ctx); err != nil {
		return err
	}
	s := a.authService.Session()
	if s.ExpiresAt.IsZero() {
		fmt.Fprintln(a.out, "Session refreshed.")
		return nil
	}
	fmt.Fprintf(a.out, "Session refreshed, valid until %s.\n", s.ExpiresAt.Local().Format(time.DateTime))
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.authService.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

// LogoutAll ends every session of the account. The local session is gone
// even when the server call fails.
func (a *App) LogoutAll(ctx context.Context) error {
	if err := a.authService.LogoutAll(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged out on all devices.")
	return nil
}

// Cancel abandons a half-finished signup or password reset.
func (a *App) Cancel(ctx context.Context) error {
	if err := a.authService.Reset(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Cancelled.")
	return nil
}

func (a *App) Ping(ctx context.Context) error {
	pctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := a.authService.Ping(pctx); err != nil {
		a.setMode(ctx, ModeOffline)
		return err
	}
	a.setMode(ctx, ModeOnline)
	fmt.Fprintln(a.out, "Server is reachable.")
	return nil
}

// Whoami prints the session and the flow in progress.
func (a *App) Whoami(context.Context) error {
	s := a.authService.Session()
	if s.LoggedIn {
		fmt.Fprintf(a.out, "Logged in as user %d.\n", s.UserID)
		if !s.ExpiresAt.IsZero() {
			fmt.Fprintf(a.out, "Access token valid until %s.\n", s.ExpiresAt.Local().Format(time.DateTime))
		}
	} else {
		fmt.Fprintln(a.out, "Not logged in.")
	}

	st := a.authService.State()
	fmt.Fprintf(a.out, "Flow: %s\n", st)
	if st.Email != "" {
		fmt.Fprintf(a.out, "Email: %s\n", st.Email)
	}
	return nil
}
