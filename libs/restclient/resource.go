package restclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Resource is the uniform CRUD interface for one backend entity. T is the
// item shape the collection serves; the client itself assumes nothing about
// it beyond JSON.
type Resource[T any] struct {
	client *Client
	path   string
}

// NewResource binds a collection path to a client. The base path may be
// supplied with or without surrounding slashes; it is normalized to exactly
// one leading and one trailing slash, so "continents" and "/continents/"
// produce identical request paths.
func NewResource[T any](client *Client, basePath string) *Resource[T] {
	return &Resource[T]{client: client, path: NormalizeBasePath(basePath)}
}

// NormalizeBasePath strips existing leading/trailing slashes and wraps the
// remainder in exactly one of each.
func NormalizeBasePath(basePath string) string {
	return "/" + strings.Trim(basePath, "/") + "/"
}

// Path returns the normalized collection path.
func (r *Resource[T]) Path() string { return r.path }

func (r *Resource[T]) itemPath(id string) string {
	return r.path + url.PathEscape(id) + "/"
}

// listEnvelope is the paginated collection shape some endpoints return
// instead of a bare array.
type listEnvelope[T any] struct {
	Count   int `json:"count"`
	Results []T `json:"results"`
}

// List fetches the collection. Both a bare JSON array and a paginated
// {count, results} object are accepted.
func (r *Resource[T]) List(ctx context.Context, opts ...RequestOption) ([]T, error) {
	var raw json.RawMessage
	if err := r.client.do(ctx, http.MethodGet, r.path, nil, &raw, opts...); err != nil {
		return nil, err
	}
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return []T{}, nil
	}
	if strings.HasPrefix(trimmed, "[") {
		var items []T
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("decode collection %s: %w", r.path, err)
		}
		return items, nil
	}
	var envelope listEnvelope[T]
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("decode paginated collection %s: %w", r.path, err)
	}
	if envelope.Results == nil {
		return []T{}, nil
	}
	return envelope.Results, nil
}

// Get fetches one item by its id or unique_id.
func (r *Resource[T]) Get(ctx context.Context, id string, opts ...RequestOption) (T, error) {
	var item T
	err := r.client.do(ctx, http.MethodGet, r.itemPath(id), nil, &item, opts...)
	return item, err
}

// Create posts a new item to the collection and returns the created item.
func (r *Resource[T]) Create(ctx context.Context, payload any, opts ...RequestOption) (T, error) {
	var item T
	err := r.client.do(ctx, http.MethodPost, r.path, payload, &item, opts...)
	return item, err
}

// Update replaces an item and returns the updated item.
func (r *Resource[T]) Update(ctx context.Context, id string, payload any, opts ...RequestOption) (T, error) {
	var item T
	err := r.client.do(ctx, http.MethodPut, r.itemPath(id), payload, &item, opts...)
	return item, err
}

// Patch applies a partial update and returns the updated item.
func (r *Resource[T]) Patch(ctx context.Context, id string, payload any, opts ...RequestOption) (T, error) {
	var item T
	err := r.client.do(ctx, http.MethodPatch, r.itemPath(id), payload, &item, opts...)
	return item, err
}

// Delete removes an item.
func (r *Resource[T]) Delete(ctx context.Context, id string, opts ...RequestOption) error {
	return r.client.do(ctx, http.MethodDelete, r.itemPath(id), nil, nil, opts...)
}

// Post sends an arbitrary action payload to a subpath of the API root, for
// endpoints like login-user/ that are not collection-shaped.
func Post[T any](ctx context.Context, client *Client, path string, payload any, opts ...RequestOption) (T, error) {
	var out T
	err := client.do(ctx, http.MethodPost, NormalizeBasePath(path), payload, &out, opts...)
	return out, err
}
