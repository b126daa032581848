// Package client is the authenticated HTTP client for the studio REST API.
//
// Every request reads the bearer token from the session store, so callers
// outside the view tree see the same credential. A 401 or 403 clears the
// store, runs the unauthorized hook and yields ErrUnauthorized; a transport
// failure notifies the user and yields ErrNoResponse. All other responses
// are handed back untouched; Decode turns them into values or *APIError.
package client
