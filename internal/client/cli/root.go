package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/authflow/internal/client/flow"
)

func (a *App) getStatus() string {
	var parts []string
	if s := a.authService.Session(); s.LoggedIn {
		parts = append(parts, fmt.Sprintf("user %d", s.UserID))
	}
	if st := a.authService.State(); st.Phase != flow.Idle && st.Phase != flow.LoggedIn {
		parts = append(parts, st.String())
	}
	if m := a.Mode(); m != "" {
		parts = append(parts, string(m))
	}
	if len(parts) == 0 {
		return ""
	}
	return fmt.Sprintf(" (%s)", strings.Join(parts, " "))
}

// Root greets the user and blocks in the REPL.
func (a *App) Root(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to authflow (type 'help' for commands)")
	switch a.authService.State().Phase {
	case flow.CodeRequested:
		fmt.Fprintln(a.out, "A code was requested earlier. Run signup or reset again, or cancel.")
	case flow.CodeVerified:
		fmt.Fprintln(a.out, "A code was verified earlier. Run signup or reset again, or cancel.")
	}

	runREPL(ctx, a, a.getStatus, a.reader)
}
