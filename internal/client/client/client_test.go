package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nailstudio/agenda/internal/client/notify"
)

type fakeStore struct {
	token    string
	tokenErr error
	cleared  int
}

func (f *fakeStore) Token(context.Context) (string, error) { return f.token, f.tokenErr }
func (f *fakeStore) Clear(context.Context) error {
	f.cleared++
	f.token = ""
	return nil
}

func TestSend_AttachesBearerFromStore(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	store := &fakeStore{token: "t1"}
	c := New(srv.URL+"/api/", store)

	for _, token := range []string{"t1", "another-token.with.dots"} {
		store.token = token
		resp, err := c.Send(context.Background(), http.MethodGet, "/clients", nil)
		require.NoError(t, err)
		_ = resp.Body.Close()

		assert.Equal(t, "Bearer "+token, got.Header.Get("Authorization"))
		assert.Equal(t, "/api/clients", got.URL.Path)
		_, err = uuid.Parse(got.Header.Get("X-Request-ID"))
		assert.NoError(t, err)
	}
}

func TestSend_ContentType(t *testing.T) {
	var ct string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ct = r.Header.Get("Content-Type")
	}))
	defer srv.Close()
	c := New(srv.URL, &fakeStore{token: "t"})
	ctx := context.Background()

	resp, err := c.SendJSON(ctx, http.MethodPost, "/clients", map[string]string{"name": "Ana"})
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, "application/json", ct)

	resp, err = c.Send(ctx, http.MethodPost, "/upload", strings.NewReader("--x--"),
		WithContentType("multipart/form-data; boundary=x"))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, "multipart/form-data; boundary=x", ct)
}

func TestSend_UnauthorizedClearsStore(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(status)
				_, _ = io.WriteString(w, `{"message":"token expired"}`)
			}))
			defer srv.Close()

			store := &fakeStore{token: "t1"}
			hooked := 0
			c := New(srv.URL, store, WithUnauthorizedHook(func() { hooked++ }))

			resp, err := c.Send(context.Background(), http.MethodDelete, "/appointments/3", nil)
			require.ErrorIs(t, err, ErrUnauthorized)
			assert.Nil(t, resp)
			assert.Equal(t, 1, store.cleared)
			assert.Equal(t, 1, hooked)
		})
	}
}

func TestSend_WithoutAuth(t *testing.T) {
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"message":"invalid credentials"}`)
	}))
	defer srv.Close()

	store := &fakeStore{token: "stale"}
	hooked := false
	c := New(srv.URL, store, WithUnauthorizedHook(func() { hooked = true }))

	err := c.Do(context.Background(), http.MethodPost, "/auth/login",
		map[string]string{"username": "ana"}, nil, WithoutAuth())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "invalid credentials", apiErr.Message)
	assert.Empty(t, auth)
	assert.Zero(t, store.cleared)
	assert.False(t, hooked)
}

func TestSend_NetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	rec := &notify.Recorder{}
	c := New(url, &fakeStore{token: "t"}, WithNotifier(rec))

	resp, err := c.Send(context.Background(), http.MethodGet, "/clients", nil)
	require.ErrorIs(t, err, ErrNoResponse)
	assert.Nil(t, resp)
	assert.Equal(t, []string{NetworkErrorMessage}, rec.Errors)
}

func TestSend_Timeout(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	c := New(srv.URL, &fakeStore{}, WithTimeout(50*time.Millisecond))
	_, err := c.Send(context.Background(), http.MethodGet, "/users", nil)
	require.ErrorIs(t, err, ErrNoResponse)
}

func TestSend_TokenReadError(t *testing.T) {
	store := &fakeStore{tokenErr: errors.New("db locked")}
	c := New("http://127.0.0.1:0", store)

	_, err := c.Send(context.Background(), http.MethodGet, "/users", nil)
	require.ErrorIs(t, err, store.tokenErr)
}

func TestSend_BusinessErrorsPassThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = io.WriteString(w, `{"message":"username already exists"}`)
	}))
	defer srv.Close()

	store := &fakeStore{token: "t"}
	c := New(srv.URL, store)

	resp, err := c.Send(context.Background(), http.MethodPost, "/auth/register", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Zero(t, store.cleared)

	err = Decode(resp, nil)
	assert.True(t, IsStatus(err, http.StatusConflict))
	assert.Equal(t, "username already exists", Message(err))
}

func newResponse(status int, body string) *http.Response {
	return &http.Response{StatusCode: status, Body: io.NopCloser(strings.NewReader(body))}
}

func TestDecode(t *testing.T) {
	var out struct {
		Clients []struct {
			Name string `json:"name"`
		} `json:"clients"`
	}
	require.NoError(t, Decode(newResponse(200, `{"clients":[{"name":"Ana"}]}`), &out))
	require.Len(t, out.Clients, 1)
	assert.Equal(t, "Ana", out.Clients[0].Name)

	require.NoError(t, Decode(newResponse(204, ""), &out))
	require.Error(t, Decode(newResponse(200, "{"), &out))

	cases := map[string]struct {
		status int
		body   string
		want   string
	}{
		"message":  {404, `{"message":"not found"}`, "not found"},
		"error":    {400, `{"error":"bad date"}`, "bad date"},
		"no json":  {502, `<html>`, "Bad Gateway"},
		"empty":    {500, ``, "Internal Server Error"},
		"odd code": {599, `{}`, "HTTP 599"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			err := Decode(newResponse(tc.status, tc.body), nil)
			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tc.want, apiErr.Message)
			assert.Equal(t, tc.status, apiErr.Status)
		})
	}
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "boom", Message(errors.New("boom")))
	assert.Equal(t, "not found", Message(&APIError{Status: 404, Message: "not found"}))
	assert.Equal(t, "not found (HTTP 404)", (&APIError{Status: 404, Message: "not found"}).Error())
}
