// Package session owns the authenticated identity of the client process.
//
// Store persists the session as two entries of a kv.Repository: "user"
// (JSON) and "token" (the raw bearer token). Manager is the in-memory
// holder restored from the Store at startup; it is the only writer of the
// Store apart from the request client, which clears it when the API
// rejects the token.
//
// Typical wiring:
//
//	store := session.NewSQLiteStore(db, log)
//	mgr := session.NewManager(store, log)
//	if _, err := mgr.Restore(ctx); err != nil { ... }
//	unsubscribe := mgr.Subscribe(func(s models.Session) { redraw(s) })
package session
