// Package cli provides the interactive studio agenda terminal client.
//
// It wires configuration, the local session store, the API client and the
// entity services, then runs a REPL over path-addressed screens. Each
// navigation goes through the role router: a signed-out user lands on the
// login screen, an administrator on the user management dashboard and an
// operator on their appointments.
//
// Key features:
//   - Login / Logout with a session that survives restarts
//   - Users and operator registration (administrators)
//   - Clients, services and appointments (operators)
//   - search, new, edit and delete on list screens
//
// The REPL is started via App.Run(ctx, path), which blocks until the user
// exits. See App, Deps and runREPL for details.
package cli
