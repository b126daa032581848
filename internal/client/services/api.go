// Package services wraps the REST resources the client works with.
// Forms are validated locally first; an invalid form never reaches the
// network.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/nailstudio/agenda/internal/client/client"
	"github.com/nailstudio/agenda/internal/client/models"
)

// Requester sends one JSON request and decodes the reply into out.
// *client.Client implements it.
type Requester interface {
	Do(ctx context.Context, method, path string, payload, out any, opts ...client.RequestOption) error
}

// resource is a REST collection whose list reply is {"<envelope>": [...]}.
type resource[T any] struct {
	api      Requester
	path     string
	envelope string
}

func (r resource[T]) itemPath(id models.ID, suffix ...string) string {
	p := r.path + "/" + url.PathEscape(id.String())
	for _, s := range suffix {
		p += "/" + s
	}
	return p
}

func (r resource[T]) list(ctx context.Context) ([]T, error) {
	var env map[string]json.RawMessage
	if err := r.api.Do(ctx, http.MethodGet, r.path, nil, &env); err != nil {
		return nil, err
	}
	items := []T{}
	raw, ok := env[r.envelope]
	if !ok || string(raw) == "null" {
		return items, nil
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", r.envelope, err)
	}
	return items, nil
}

func (r resource[T]) get(ctx context.Context, id models.ID) (T, error) {
	var item T
	err := r.api.Do(ctx, http.MethodGet, r.itemPath(id), nil, &item)
	return item, err
}

func (r resource[T]) create(ctx context.Context, payload any) error {
	return r.api.Do(ctx, http.MethodPost, r.path, payload, nil)
}

func (r resource[T]) update(ctx context.Context, id models.ID, payload any) error {
	return r.api.Do(ctx, http.MethodPut, r.itemPath(id), payload, nil)
}

func (r resource[T]) delete(ctx context.Context, id models.ID) error {
	return r.api.Do(ctx, http.MethodDelete, r.itemPath(id), nil, nil)
}
