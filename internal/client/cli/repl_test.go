package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrijs2005/authflow/internal/client/client"
)

type fakeExec struct {
	loggedIn bool
	calls    []string
	errs     map[string]error
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }

func (f *fakeExec) do(name string) error {
	f.calls = append(f.calls, name)
	return f.errs[name]
}

func (f *fakeExec) Signup(context.Context) error        { return f.do("signup") }
func (f *fakeExec) ResetPassword(context.Context) error { return f.do("reset") }
func (f *fakeExec) Username(context.Context) error      { return f.do("username") }
func (f *fakeExec) Passwd(context.Context) error        { return f.do("passwd") }
func (f *fakeExec) Refresh(context.Context) error       { return f.do("refresh") }
func (f *fakeExec) LogoutAll(context.Context) error     { return f.do("logout-all") }
func (f *fakeExec) Cancel(context.Context) error        { return f.do("cancel") }
func (f *fakeExec) Ping(context.Context) error          { return f.do("ping") }
func (f *fakeExec) Whoami(context.Context) error        { return f.do("whoami") }

func (f *fakeExec) Login(context.Context) error {
	f.loggedIn = true
	return f.do("login")
}

func (f *fakeExec) Logout(context.Context) error {
	f.loggedIn = false
	return f.do("logout")
}

// captureOutput stubs the print seams and returns the printed lines.
func captureOutput(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	origPrintln, origPrint := printlnFn, printFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, strings.TrimSuffix(fmt.Sprintln(a...), "\n"))
		return 0, nil
	}
	printFn = func(...any) (int, error) { return 0, nil }
	t.Cleanup(func() {
		printlnFn = origPrintln
		printFn = origPrint
	})
	return &lines
}

func TestRunREPL_DispatchesCommands(t *testing.T) {
	lines := captureOutput(t)

	input := strings.NewReader(strings.Join([]string{
		"help",
		"signup",
		"",
		"reset",
		"login",
		"help",
		"username",
		"passwd",
		"refresh",
		"whoami",
		"ping",
		"logout-all",
		"logout",
		"cancel",
		"foobar",
		"exit",
		"login",
	}, "\n"))

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewReader(input))

	want := []string{"signup", "reset", "login", "username", "passwd", "refresh", "whoami", "ping", "logout-all", "logout", "cancel"}
	assert.Equal(t, want, exec.calls)
	assert.Contains(t, *lines, "Available commands: signup, reset, login, cancel, whoami, ping, exit")
	assert.Contains(t, *lines, "Available commands: username, passwd, refresh, logout, logout-all, whoami, ping, exit")
	assert.Contains(t, *lines, "Unknown command: foobar")
	assert.Equal(t, "Bye!", (*lines)[len(*lines)-1])
}

func TestRunREPL_ReportsErrors(t *testing.T) {
	lines := captureOutput(t)

	exec := &fakeExec{errs: map[string]error{
		"refresh": client.ErrNotLoggedIn,
		"signup":  errAborted,
	}}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewReader(strings.NewReader("refresh\nsignup\nquit\n")))

	assert.Equal(t, []string{client.Describe(client.ErrNotLoggedIn), "Bye!"}, *lines)
}

func TestRunREPL_EOFWithoutNewline(t *testing.T) {
	captureOutput(t)

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewReader(strings.NewReader("whoami")))

	assert.Equal(t, []string{"whoami"}, exec.calls)
}

func TestRunREPL_StopsOnCancelledContext(t *testing.T) {
	captureOutput(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	exec := &fakeExec{}
	runREPL(ctx, exec, func() string { return "" }, bufio.NewReader(strings.NewReader("whoami\n")))

	assert.Empty(t, exec.calls)
}
