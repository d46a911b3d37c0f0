package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/erp/backoffice/internal/application/listing"
	"github.com/erp/backoffice/internal/application/mutation"
	"github.com/erp/backoffice/internal/application/stats"
)

// Resource is the client of one entity's routes. It satisfies
// listing.Source and mutation.Mutator.
type Resource[T any] struct {
	client *Client
	entity string
}

var _ mutation.Mutator = (*Resource[struct{}])(nil)

// NewResource creates the client of entity, e.g. "partners"
func NewResource[T any](c *Client, entity string) *Resource[T] {
	return &Resource[T]{client: c, entity: entity}
}

// Entity returns the resource key
func (r *Resource[T]) Entity() string { return r.entity }

func (r *Resource[T]) path(parts ...string) string {
	p := "/" + url.PathEscape(r.entity)
	for _, part := range parts {
		p += "/" + url.PathEscape(part)
	}
	return p
}

// List fetches the records matching params
func (r *Resource[T]) List(ctx context.Context, params url.Values) (listing.Page[T], error) {
	var page listing.Page[T]
	_, err := r.client.call(ctx, request{method: http.MethodGet, path: r.path(), query: params}, &page)
	return page, err
}

// Get fetches one record
func (r *Resource[T]) Get(ctx context.Context, id string) (*T, error) {
	var rec T
	if _, err := r.client.call(ctx, request{method: http.MethodGet, path: r.path(id)}, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Values fetches one record as a field map, the shape a form is seeded with
func (r *Resource[T]) Values(ctx context.Context, id string) (map[string]any, error) {
	var values map[string]any
	if _, err := r.client.call(ctx, request{method: http.MethodGet, path: r.path(id)}, &values); err != nil {
		return nil, err
	}
	return values, nil
}

// Fetch gets one record in a single request and returns it both typed and as a field map
func (r *Resource[T]) Fetch(ctx context.Context, id string) (*T, map[string]any, error) {
	var raw json.RawMessage
	if _, err := r.client.call(ctx, request{method: http.MethodGet, path: r.path(id)}, &raw); err != nil {
		return nil, nil, err
	}
	if len(raw) == 0 {
		return nil, nil, errors.New("apiclient: empty record")
	}
	var rec T
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, nil, fmt.Errorf("apiclient: failed to decode record: %w", err)
	}
	var values map[string]any
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, nil, fmt.Errorf("apiclient: failed to decode record: %w", err)
	}
	return &rec, values, nil
}

// Create posts a new record
func (r *Resource[T]) Create(ctx context.Context, payload mutation.Payload) (*mutation.Result, error) {
	return r.mutate(ctx, http.MethodPost, r.path(), payload)
}

// Update sends the changed fields of record id
func (r *Resource[T]) Update(ctx context.Context, id string, payload mutation.Payload) (*mutation.Result, error) {
	return r.mutate(ctx, http.MethodPut, r.path(id), payload)
}

// Toggle flips a binary flag; an empty field lets the server pick the entity's flag
func (r *Resource[T]) Toggle(ctx context.Context, id, field string) (*mutation.Result, error) {
	var body any
	if field != "" {
		body = map[string]string{"field": field}
	}
	return r.mutate(ctx, http.MethodPatch, r.path(id, "toggle"), body)
}

// Delete removes record id
func (r *Resource[T]) Delete(ctx context.Context, id string) (*mutation.Result, error) {
	return r.mutate(ctx, http.MethodDelete, r.path(id), nil)
}

// mutate turns API rejections into an error result; only transport
// failures come back as errors
func (r *Resource[T]) mutate(ctx context.Context, method, path string, body any) (*mutation.Result, error) {
	req, err := jsonRequest(method, path, body)
	if err != nil {
		return nil, err
	}
	env, err := r.client.call(ctx, req, nil)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return mutation.Failed(apiErr.Message), nil
		}
		return nil, err
	}
	return &mutation.Result{Message: env.Message, Data: env.Data}, nil
}

// Dashboard fetches the statistics page of the records matching params
func (r *Resource[T]) Dashboard(ctx context.Context, params url.Values, theme stats.Theme) (stats.Dashboard, error) {
	q := url.Values{}
	for k, v := range params {
		q[k] = v
	}
	if theme != "" {
		q.Set("theme", string(theme))
	}
	var d stats.Dashboard
	_, err := r.client.call(ctx, request{method: http.MethodGet, path: r.path("stats"), query: q}, &d)
	return d, err
}

// Export downloads the records matching params as a workbook
func (r *Resource[T]) Export(ctx context.Context, params url.Values) ([]byte, error) {
	body, _, err := r.client.send(ctx, request{method: http.MethodGet, path: r.path("export"), query: params})
	return body, err
}

// Decode unmarshals the data of a successful mutation result
func Decode[T any](res *mutation.Result) (*T, error) {
	var rec T
	if res == nil || len(res.Data) == 0 {
		return &rec, nil
	}
	if err := json.Unmarshal(res.Data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}
