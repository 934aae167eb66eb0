package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/authflow/internal/client/models"
	"github.com/dmitrijs2005/authflow/internal/client/repositories/secrets"
)

// fakeClient implements client.Client for AuthService unit tests.
type fakeClient struct {
	mu       sync.Mutex
	calls    map[string]int
	args     map[string][]string
	inFlight map[string]int
	maxIn    map[string]int

	// hook, when set, runs on entry to every method outside the lock
	hook func(method string)

	codeSeq        int
	requestCodeErr error
	verifyRet      string
	verifyErr      error
	createRet      models.AuthResponse
	createErr      error
	loginRet       models.AuthResponse
	loginErr       error
	refreshRet     models.AuthResponse
	refreshErr     error
	usernameErr    error
	forgetErr      error
	changeErr      error
	logoutAllErr   error
	pingErr        error
}

func newFakeClient() *fakeClient {
	auth := models.AuthResponse{AccessToken: "at", TokenType: "Bearer", ExpiresIn: 900, RefreshToken: "rt", UserID: 42}
	return &fakeClient{
		calls:      map[string]int{},
		args:       map[string][]string{},
		inFlight:   map[string]int{},
		maxIn:      map[string]int{},
		verifyRet:  "t1",
		createRet:  auth,
		loginRet:   auth,
		refreshRet: models.AuthResponse{AccessToken: "at2", TokenType: "Bearer", ExpiresIn: 900, RefreshToken: "rt2", UserID: 42},
	}
}

func (f *fakeClient) enter(method string, args ...string) func() {
	f.mu.Lock()
	f.calls[method]++
	f.args[method] = args
	f.inFlight[method]++
	if f.inFlight[method] > f.maxIn[method] {
		f.maxIn[method] = f.inFlight[method]
	}
	hook := f.hook
	f.mu.Unlock()

	if hook != nil {
		hook(method)
	}
	return func() {
		f.mu.Lock()
		f.inFlight[method]--
		f.mu.Unlock()
	}
}

func (f *fakeClient) count(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *fakeClient) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeClient) lastArgs(method string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.args[method]
}

func (f *fakeClient) maxConcurrent(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.maxIn[method]
}

func (f *fakeClient) RequestCode(ctx context.Context, email string, scene models.Scene) (string, error) {
	defer f.enter("RequestCode", email, string(scene))()
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.requestCodeErr != nil {
		return "", f.requestCodeErr
	}
	f.codeSeq++
	return fmt.Sprintf("c%d", f.codeSeq), nil
}

func (f *fakeClient) VerifyCode(ctx context.Context, email string, scene models.Scene, code, codeID string) (string, error) {
	defer f.enter("VerifyCode", email, string(scene), code, codeID)()
	return f.verifyRet, f.verifyErr
}

func (f *fakeClient) CreateAccount(ctx context.Context, ott, password, deviceID string) (models.AuthResponse, error) {
	defer f.enter("CreateAccount", ott, password, deviceID)()
	return f.createRet, f.createErr
}

func (f *fakeClient) Login(ctx context.Context, email, password, deviceID string) (models.AuthResponse, error) {
	defer f.enter("Login", email, password, deviceID)()
	return f.loginRet, f.loginErr
}

func (f *fakeClient) ForgetPassword(ctx context.Context, ott, password string) error {
	defer f.enter("ForgetPassword", ott, password)()
	return f.forgetErr
}

func (f *fakeClient) ChangePassword(ctx context.Context, accessToken, oldPassword, newPassword string) error {
	defer f.enter("ChangePassword", accessToken, oldPassword, newPassword)()
	return f.changeErr
}

func (f *fakeClient) Refresh(ctx context.Context, refreshToken string) (models.AuthResponse, error) {
	defer f.enter("Refresh", refreshToken)()
	return f.refreshRet, f.refreshErr
}

func (f *fakeClient) SetUsername(ctx context.Context, accessToken, username string) (string, error) {
	defer f.enter("SetUsername", accessToken, username)()
	return username, f.usernameErr
}

func (f *fakeClient) LogoutAll(ctx context.Context, accessToken string) error {
	defer f.enter("LogoutAll", accessToken)()
	return f.logoutAllErr
}

func (f *fakeClient) Ping(ctx context.Context) error {
	defer f.enter("Ping")()
	return f.pingErr
}

// applyFailStore fails every Apply while reads and single writes work.
type applyFailStore struct {
	*secrets.MemoryStore
	err error
}

func (s applyFailStore) Apply(context.Context, ...secrets.Mutation) error {
	return s.err
}

// gate blocks one method until released and reports when it was entered.
type gate struct {
	method  string
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func newGate(method string) *gate {
	return &gate{method: method, entered: make(chan struct{}, 64), release: make(chan struct{})}
}

func (g *gate) hook(method string) {
	if method != g.method {
		return
	}
	g.entered <- struct{}{}
	<-g.release
}

func (g *gate) open() {
	g.once.Do(func() { close(g.release) })
}
