package gateway

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/billyloki/module-shop-admin/pkg/types"
)

func TestDecode(t *testing.T) {
	emptyPage := `{"success":true,"data":{"list":[],"pagination":{"total":0}}}`
	doubled, err := json.Marshal(emptyPage)
	require.NoError(t, err)

	tests := []struct {
		name        string
		body        string
		wantDoubled bool
		wantErr     error
		check       func(t *testing.T, env types.Envelope)
	}{
		{
			name: "structured success",
			body: emptyPage,
			check: func(t *testing.T, env types.Envelope) {
				assert.True(t, env.Success)
				assert.JSONEq(t, `{"list":[],"pagination":{"total":0}}`, string(env.Data))
			},
		},
		{
			name: "structured failure",
			body: `{"success":false,"message":"名称已存在"}`,
			check: func(t *testing.T, env types.Envelope) {
				assert.False(t, env.Success)
				assert.Equal(t, "名称已存在", env.Message)
				assert.Empty(t, env.Data)
			},
		},
		{
			name:        "string-encoded success",
			body:        string(doubled),
			wantDoubled: true,
			check: func(t *testing.T, env types.Envelope) {
				assert.True(t, env.Success)
				var page types.PageData[types.Category]
				require.NoError(t, json.Unmarshal(env.Data, &page))
				assert.Equal(t, 0, page.Result().TotalCount())
				assert.Equal(t, 0, page.Result().Len())
			},
		},
		{
			name:        "string-encoded failure",
			body:        `"{\"success\":false,\"message\":\"in use\"}"`,
			wantDoubled: true,
			check: func(t *testing.T, env types.Envelope) {
				assert.False(t, env.Success)
				assert.Equal(t, "in use", env.Message)
			},
		},
		{
			name: "null data",
			body: `{"success":true,"data":null}`,
			check: func(t *testing.T, env types.Envelope) {
				assert.True(t, env.Success)
				assert.Nil(t, env.Data)
			},
		},
		{
			name: "string data keeps its quotes",
			body: `{"success":true,"data":"ok"}`,
			check: func(t *testing.T, env types.Envelope) {
				assert.Equal(t, `"ok"`, string(env.Data))
			},
		},
		{
			name:    "missing success flag",
			body:    `{"data":[]}`,
			wantErr: ErrMissingSuccess,
		},
		{
			name:    "array body",
			body:    `[1,2]`,
			wantErr: ErrMalformedEnvelope,
		},
		{
			name:    "empty body",
			body:    ``,
			wantErr: ErrMalformedEnvelope,
		},
		{
			name:        "string that is not json",
			body:        `"<html>"`,
			wantDoubled: true,
			wantErr:     ErrMalformedEnvelope,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, gotDoubled, err := Decode([]byte(tt.body))
			assert.Equal(t, tt.wantDoubled, gotDoubled)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			if tt.check != nil {
				tt.check(t, env)
			}
		})
	}
}
