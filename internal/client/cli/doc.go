// Package cli provides the interactive authflow command-line client.
//
// It drives the OTP signup and password reset flows, password login and the
// session commands from a small REPL. Typical flow: type "signup", enter the
// email, paste the emailed code, pick a password and a username.
//
// Key features:
//   - Signup / Reset with resendable codes
//   - Login / Logout / Logout on all devices
//   - Username, password change and token refresh
//   - Background connectivity watcher shown in the prompt
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher, and runREPL for details.
package cli
