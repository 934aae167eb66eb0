package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/authflow/internal/client/client"
)

// printlnFn and printFn are test seams for user-facing output. In tests,
// replace them with stubs.
var (
	printlnFn = fmt.Println
	printFn   = fmt.Print
)

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Signup(ctx context.Context) error
	ResetPassword(ctx context.Context) error
	Login(ctx context.Context) error
	Username(ctx context.Context) error
	Passwd(ctx context.Context) error
	Refresh(ctx context.Context) error
	Logout(ctx context.Context) error
	LogoutAll(ctx context.Context) error
	Cancel(ctx context.Context) error
	Ping(ctx context.Context) error
	Whoami(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the authflow CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. The loop exits on EOF, when ctx ends, or
// when the user types "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  - signup         - register with an emailed code
//	  - reset          - replace a forgotten password
//	  - login          - authenticate
//	  - cancel         - abandon a half-finished signup or reset
//
//	Logged in:
//	  - username       - set the display name
//	  - passwd         - change the password
//	  - refresh        - renew the access token
//	  - logout         - end this session
//	  - logout-all     - end every session of the account
//
//	Always:
//	  - whoami, ping, help, exit | quit
//
// Command errors are printed as user-facing messages and the loop goes on.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printFn(fmt.Sprintf("af%s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			printlnFn()
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		var run func(context.Context) error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: username, passwd, refresh, logout, logout-all, whoami, ping, exit")
			} else {
				printlnFn("Available commands: signup, reset, login, cancel, whoami, ping, exit")
			}
			continue

		case "signup", "register":
			run = a.Signup
		case "reset", "forgot":
			run = a.ResetPassword
		case "login":
			run = a.Login
		case "username":
			run = a.Username
		case "passwd":
			run = a.Passwd
		case "refresh":
			run = a.Refresh
		case "logout":
			run = a.Logout
		case "logout-all":
			run = a.LogoutAll
		case "cancel":
			run = a.Cancel
		case "ping":
			run = a.Ping
		case "whoami", "status":
			run = a.Whoami

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
			continue
		}

		if err := run(ctx); err != nil && !errors.Is(err, errAborted) {
			printlnFn(client.Describe(err))
		}
	}
}
