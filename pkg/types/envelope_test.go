package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryRequestMarshal(t *testing.T) {
	tests := []struct {
		name  string
		state func() QueryState
		scope map[string]any
		want  string
	}{
		{
			name: "page 2 sorted by id descending",
			state: func() QueryState {
				q := NewQueryState()
				_ = q.SetPage(2, 10)
				return q
			},
			want: `{"pagination":{"current":2,"pageSize":10},"search":{"predicateObject":{}},"sort":{"predicate":"id","reverse":true}}`,
		},
		{
			name: "filters and scope are flattened",
			state: func() QueryState {
				q := NewQueryState()
				q.SetFilters(map[string]any{"name": "shoes"})
				q.SetSort("name", false)
				return q
			},
			scope: map[string]any{FreightTemplateScopeKey: 7},
			want:  `{"freightTemplateId":7,"pagination":{"current":1,"pageSize":10},"search":{"predicateObject":{"name":"shoes"}},"sort":{"predicate":"name","reverse":false}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.state().Request(tt.scope))
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(data))
		})
	}
}

func TestQueryRequestUnmarshal(t *testing.T) {
	body := `{"pagination":{"current":3,"pageSize":5},"sort":{"predicate":"note","reverse":false},"search":{"predicateObject":{"isEnabled":true}},"freightTemplateId":12}`

	var req QueryRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	assert.Equal(t, RequestPagination{Current: 3, PageSize: 5}, req.Pagination)
	assert.Equal(t, RequestSort{Predicate: "note", Reverse: false}, req.Sort)
	assert.Equal(t, true, req.Search.PredicateObject["isEnabled"])
	assert.Equal(t, float64(12), req.Scope[FreightTemplateScopeKey])
}

func TestEnvelopeErr(t *testing.T) {
	assert.NoError(t, Envelope{Success: true}.Err())

	err := Envelope{Success: false, Message: "category is in use"}.Err()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRemote)
	assert.Equal(t, "category is in use", err.Error())

	err = Envelope{Success: false}.Err()
	assert.Equal(t, ErrRemote.Error(), err.Error())
}
