package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"strconv"

	"github.com/billyloki/module-shop-admin/pkg/types"
)

// Endpoints names the API paths of one collection. An empty path marks the
// operation unsupported.
type Endpoints struct {
	Grid   string
	Create string
	Update string
	Delete string
	Toggle string
}

// Resource binds a remote collection of T. Scope keys are added to every
// request, e.g. freightTemplateId for price destinations.
type Resource[T any] struct {
	client    *Client
	endpoints Endpoints
	scope     map[string]any
}

// NewResource returns a Resource over client. scope is copied.
func NewResource[T any](client *Client, endpoints Endpoints, scope map[string]any) *Resource[T] {
	return &Resource[T]{client: client, endpoints: endpoints, scope: maps.Clone(scope)}
}

// Fetch runs the grid query for q and returns the page.
func (r *Resource[T]) Fetch(ctx context.Context, q types.QueryState) (types.PageResult[T], error) {
	if r.endpoints.Grid == "" {
		return types.PageResult[T]{}, fmt.Errorf("fetch: %w", types.ErrUnsupported)
	}
	var page types.PageData[T]
	if err := r.client.Invoke(ctx, r.endpoints.Grid, q.Request(r.scope), &page); err != nil {
		return types.PageResult[T]{}, err
	}
	return page.Result(), nil
}

// Create posts values as a new record.
func (r *Resource[T]) Create(ctx context.Context, values any) error {
	if r.endpoints.Create == "" {
		return fmt.Errorf("create: %w", types.ErrUnsupported)
	}
	payload, err := r.payload(r.endpoints.Create, "", values)
	if err != nil {
		return err
	}
	_, err = r.client.Call(ctx, r.endpoints.Create, payload)
	return err
}

// Update posts values for the record with the given id.
func (r *Resource[T]) Update(ctx context.Context, id string, values any) error {
	if r.endpoints.Update == "" {
		return fmt.Errorf("update: %w", types.ErrUnsupported)
	}
	payload, err := r.payload(r.endpoints.Update, id, values)
	if err != nil {
		return err
	}
	_, err = r.client.Call(ctx, r.endpoints.Update, payload)
	return err
}

// Delete removes the record with the given id.
func (r *Resource[T]) Delete(ctx context.Context, id string) error {
	if r.endpoints.Delete == "" {
		return fmt.Errorf("delete: %w", types.ErrUnsupported)
	}
	payload, err := r.payload(r.endpoints.Delete, id, nil)
	if err != nil {
		return err
	}
	_, err = r.client.Call(ctx, r.endpoints.Delete, payload)
	return err
}

// SetFlag sets one boolean field of a record, sending {id, field: value}.
func (r *Resource[T]) SetFlag(ctx context.Context, id, field string, value bool) error {
	if r.endpoints.Toggle == "" {
		return fmt.Errorf("set %s: %w", field, types.ErrUnsupported)
	}
	payload, err := r.payload(r.endpoints.Toggle, id, map[string]any{field: value})
	if err != nil {
		return err
	}
	_, err = r.client.Call(ctx, r.endpoints.Toggle, payload)
	return err
}

// payload merges scope, the fields of values and the id into one object.
// values may be a map or any struct that encodes to a JSON object.
func (r *Resource[T]) payload(op, id string, values any) (map[string]any, error) {
	out := maps.Clone(r.scope)
	if out == nil {
		out = make(map[string]any)
	}
	if values != nil {
		fields, ok := values.(map[string]any)
		if !ok {
			raw, err := json.Marshal(values)
			if err != nil {
				return nil, &types.TransportError{Op: op, Err: fmt.Errorf("encoding values: %w", err)}
			}
			if err := json.Unmarshal(raw, &fields); err != nil {
				return nil, &types.TransportError{Op: op, Err: fmt.Errorf("values must encode to an object: %w", err)}
			}
		}
		maps.Copy(out, fields)
	}
	if id != "" {
		out["id"] = idValue(id)
	}
	return out, nil
}

// idValue sends numeric identifiers as JSON numbers.
func idValue(id string) any {
	if n, err := strconv.ParseInt(id, 10, 64); err == nil {
		return n
	}
	return id
}
