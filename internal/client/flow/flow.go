// Package flow computes the transitions of the OTP auth flow.
//
// Every transition is a pure function from the current State to the next
// State plus the side effects the caller must commit: secret store writes
// and session changes. Nothing here performs I/O.
package flow

import (
	"fmt"

	"github.com/dmitrijs2005/authflow/internal/client/client"
	"github.com/dmitrijs2005/authflow/internal/client/models"
	"github.com/dmitrijs2005/authflow/internal/client/repositories/secrets"
)

type Phase int

const (
	Idle Phase = iota
	CodeRequested
	CodeVerified
	// AccountCreated holds a session and waits for a username.
	AccountCreated
	LoggedIn
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case CodeRequested:
		return "codeRequested"
	case CodeVerified:
		return "codeVerified"
	case AccountCreated:
		return "accountCreated"
	case LoggedIn:
		return "loggedIn"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// State is immutable; transitions return a new value. Scene is empty when
// the flow was resumed from stored identifiers and the scene is unknown.
type State struct {
	Phase Phase
	Scene models.Scene
	Email string
}

func (s State) String() string {
	if s.Scene == "" {
		return s.Phase.String()
	}
	return fmt.Sprintf("%s(%s)", s.Phase, s.Scene)
}

// CheckScene fails with client.ErrSceneMismatch when scene differs from the
// scene of the active flow.
func (s State) CheckScene(scene models.Scene) error {
	if s.Scene != "" && s.Scene != scene {
		return fmt.Errorf("%w: flow is %s, got %s", client.ErrSceneMismatch, s.Scene, scene)
	}
	return nil
}

// Resume derives the starting state from the identifiers found in the
// store: an ott means a verified code, a codeID a requested one.
func Resume(hasCodeID, hasOTT bool) State {
	switch {
	case hasOTT:
		return State{Phase: CodeVerified}
	case hasCodeID:
		return State{Phase: CodeRequested}
	default:
		return State{Phase: Idle}
	}
}

// CodeIssued starts a new flow. Any earlier ott is stale.
func CodeIssued(_ State, email string, scene models.Scene, codeID string) (State, []Effect) {
	return State{Phase: CodeRequested, Scene: scene, Email: email},
		[]Effect{saveSecret(secrets.KeyCodeID, codeID), deleteSecret(secrets.KeyOTT)}
}

// CodeAccepted moves the code identifier out and the transfer token in.
func CodeAccepted(_ State, email string, scene models.Scene, ott string) (State, []Effect) {
	return State{Phase: CodeVerified, Scene: scene, Email: email},
		[]Effect{deleteSecret(secrets.KeyCodeID), saveSecret(secrets.KeyOTT, ott)}
}

// Restart abandons a flow whose code can no longer be correlated.
func Restart(State) (State, []Effect) {
	return State{Phase: Idle}, purge()
}

// AccountOpened consumes the ott and starts the new account's session.
func AccountOpened(s State, auth models.AuthResponse) (State, []Effect) {
	return State{Phase: AccountCreated, Scene: models.SceneSignup, Email: s.Email},
		[]Effect{deleteSecret(secrets.KeyOTT), startSession(auth)}
}

// UsernameAssigned completes signup. In any other phase the username is a
// profile change and the flow, with its identifiers, is left alone.
func UsernameAssigned(s State) (State, []Effect) {
	if s.Phase != AccountCreated {
		return s, nil
	}
	return State{Phase: LoggedIn, Email: s.Email}, nil
}

// PasswordReset consumes the ott and ends the flow without logging in.
func PasswordReset(State) (State, []Effect) {
	return State{Phase: Idle}, purge()
}

// LoginSucceeded clears every flow-scoped identifier regardless of where
// the flow was.
func LoginSucceeded(_ State, email string, auth models.AuthResponse) (State, []Effect) {
	return State{Phase: LoggedIn, Email: email}, append(purge(), startSession(auth))
}

// Refreshed replaces the session credentials in place.
func Refreshed(s State, auth models.AuthResponse) (State, []Effect) {
	return s, []Effect{startSession(auth)}
}

// LoggedOut ends the session and purges the flow identifiers. The device
// identifier is kept.
func LoggedOut(State) (State, []Effect) {
	return State{Phase: Idle}, append(purge(), endSession())
}

// Abandoned drops an in-progress OTP flow. An established session is kept.
func Abandoned(s State) (State, []Effect) {
	switch s.Phase {
	case AccountCreated, LoggedIn:
		return s, purge()
	default:
		return State{Phase: Idle}, purge()
	}
}

func purge() []Effect {
	return []Effect{deleteSecret(secrets.KeyCodeID), deleteSecret(secrets.KeyOTT)}
}
