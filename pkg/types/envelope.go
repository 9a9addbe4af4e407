package types

import (
	"encoding/json"
	"fmt"
)

// RequestPagination is the pagination block of a query request.
type RequestPagination struct {
	Current  int `json:"current"`
	PageSize int `json:"pageSize"`
}

// RequestSort is the sort block of a query request.
type RequestSort struct {
	Predicate string `json:"predicate"`
	Reverse   bool   `json:"reverse"`
}

// RequestSearch carries the filter map. PredicateObject is always encoded,
// as {} when empty.
type RequestSearch struct {
	PredicateObject map[string]any `json:"predicateObject"`
}

// QueryRequest is the payload of a remote query operation. Scope holds extra
// top-level keys the resource is bound to, e.g. freightTemplateId.
type QueryRequest struct {
	Pagination RequestPagination
	Sort       RequestSort
	Search     RequestSearch
	Scope      map[string]any
}

// reserved request keys that Scope may not override.
const (
	keyPagination = "pagination"
	keySort       = "sort"
	keySearch     = "search"
)

// MarshalJSON flattens Scope next to the pagination, sort and search blocks.
func (r QueryRequest) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Scope)+3)
	for k, v := range r.Scope {
		out[k] = v
	}
	search := r.Search
	if search.PredicateObject == nil {
		search.PredicateObject = map[string]any{}
	}
	out[keyPagination] = r.Pagination
	out[keySort] = r.Sort
	out[keySearch] = search
	return json.Marshal(out)
}

// UnmarshalJSON reverses MarshalJSON; unknown top-level keys land in Scope.
func (r *QueryRequest) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = QueryRequest{}
	for k, v := range raw {
		var err error
		switch k {
		case keyPagination:
			err = json.Unmarshal(v, &r.Pagination)
		case keySort:
			err = json.Unmarshal(v, &r.Sort)
		case keySearch:
			err = json.Unmarshal(v, &r.Search)
		default:
			var val any
			err = json.Unmarshal(v, &val)
			if r.Scope == nil {
				r.Scope = make(map[string]any)
			}
			r.Scope[k] = val
		}
		if err != nil {
			return fmt.Errorf("decoding %s: %w", k, err)
		}
	}
	if r.Search.PredicateObject == nil {
		r.Search.PredicateObject = map[string]any{}
	}
	return nil
}

// Envelope wraps every remote response.
type Envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Err returns a RemoteFailure for a success:false envelope, nil otherwise.
// An envelope without a message gets the generic ErrRemote text.
func (e Envelope) Err() error {
	if e.Success {
		return nil
	}
	if e.Message == "" {
		return &RemoteFailure{Message: ErrRemote.Error()}
	}
	return &RemoteFailure{Message: e.Message}
}

// PageData is the data block of a successful query response.
type PageData[T any] struct {
	List       []T            `json:"list"`
	Pagination PageDataTotals `json:"pagination"`
}

// PageDataTotals carries the total row count of a query.
type PageDataTotals struct {
	Total int `json:"total"`
}

// Result converts the wire page into a PageResult.
func (p PageData[T]) Result() PageResult[T] {
	return NewPageResult(p.List, p.Pagination.Total)
}
