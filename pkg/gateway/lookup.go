package gateway

import (
	"context"

	"github.com/billyloki/module-shop-admin/pkg/types"
)

// Lookup fetches option lists such as countries or the provinces of a
// country.
type Lookup struct {
	client    *Client
	path      string
	parentKey string
}

// NewLookup returns a lookup posting to path. Child lookups send the parent
// as parentId and, when parentKey is set, under parentKey too.
func NewLookup(client *Client, path, parentKey string) *Lookup {
	return &Lookup{client: client, path: path, parentKey: parentKey}
}

// List fetches the full option list.
func (l *Lookup) List(ctx context.Context) ([]types.Option, error) {
	return l.fetch(ctx, map[string]any{})
}

// Children fetches the options under parentID.
func (l *Lookup) Children(ctx context.Context, parentID string) ([]types.Option, error) {
	payload := map[string]any{"parentId": idValue(parentID)}
	if l.parentKey != "" {
		payload[l.parentKey] = idValue(parentID)
	}
	return l.fetch(ctx, payload)
}

func (l *Lookup) fetch(ctx context.Context, payload map[string]any) ([]types.Option, error) {
	var opts []types.Option
	if err := l.client.Invoke(ctx, l.path, payload, &opts); err != nil {
		return nil, err
	}
	if opts == nil {
		opts = []types.Option{}
	}
	return opts, nil
}
