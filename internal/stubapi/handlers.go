package stubapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/buger/jsonparser"

	"github.com/billyloki/module-shop-admin/pkg/types"
)

// errBadRequest marks bodies that cannot be read as the route expects.
var errBadRequest = errors.New("bad request")

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err != nil {
		return nil, badRequest("reading body: %v", err)
	}
	if len(body) == 0 {
		return []byte("{}"), nil
	}
	return body, nil
}

// int64Field reads key as an integer, accepting a JSON number or a numeric
// string.
func int64Field(body []byte, key string) (int64, bool, error) {
	v, typ, _, err := jsonparser.Get(body, key)
	if errors.Is(err, jsonparser.KeyPathNotFoundError) || typ == jsonparser.Null {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, badRequest("reading %s: %v", key, err)
	}
	var n int64
	switch typ {
	case jsonparser.Number:
		n, err = jsonparser.ParseInt(v)
	case jsonparser.String:
		n, err = strconv.ParseInt(string(v), 10, 64)
	default:
		err = fmt.Errorf("unexpected %s", typ)
	}
	if err != nil {
		return 0, false, badRequest("%s must be an integer", key)
	}
	return n, true, nil
}

// requireID reads the mandatory record id of a mutation.
func requireID(body []byte) (int64, error) {
	id, ok, err := int64Field(body, "id")
	if err != nil {
		return 0, err
	}
	if !ok || id <= 0 {
		return 0, types.NewValidationError("id", types.ErrInvalidID)
	}
	return id, nil
}

// queryState decodes a grid request into a query state.
func queryState(body []byte) (types.QueryState, error) {
	var req types.QueryRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return types.QueryState{}, badRequest("decoding query: %v", err)
	}
	q := types.NewQueryState()
	if err := q.SetPage(req.Pagination.Current, req.Pagination.PageSize); err != nil {
		return types.QueryState{}, err
	}
	q.SortPredicate = req.Sort.Predicate
	q.SortDescending = req.Sort.Reverse
	q.Filters = req.Search.PredicateObject
	return q, nil
}

func (s *Server) categoryGrid(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	q, err := queryState(body)
	if err != nil {
		s.writeError(w, err)
		return
	}
	page, err := s.backend.Categories().Page(r.Context(), q)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, types.PageData[types.Category]{
		List:       page.Items(),
		Pagination: types.PageDataTotals{Total: page.TotalCount()},
	}, false)
}

// categorySwitch sets the one switchable flag present in the body.
func (s *Server) categorySwitch(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	id, err := requireID(body)
	if err != nil {
		s.writeError(w, err)
		return
	}
	for _, field := range []string{types.CategoryFieldIncludeInMenu, types.CategoryFieldIsPublished} {
		value, err := jsonparser.GetBoolean(body, field)
		if errors.Is(err, jsonparser.KeyPathNotFoundError) {
			continue
		}
		if err != nil {
			s.writeError(w, badRequest("%s must be a boolean", field))
			return
		}
		if err := s.backend.Categories().SetFlag(r.Context(), id, field, value); err != nil {
			s.writeError(w, err)
			return
		}
		s.writeData(w, nil, false)
		return
	}
	s.writeError(w, types.NewValidationError("field", types.ErrUnknownField))
}

func (s *Server) categoryDelete(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	id, err := requireID(body)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.backend.Categories().Delete(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, nil, s.doubleEncode)
}

func (s *Server) countries(w http.ResponseWriter, r *http.Request) {
	list, err := s.backend.Regions().Countries(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, nonNil(list), false)
}

// provinces answers with the region tree of countryId, falling back to
// parentId.
func (s *Server) provinces(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	countryID, ok, err := int64Field(body, "countryId")
	if err == nil && !ok {
		countryID, ok, err = int64Field(body, "parentId")
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !ok {
		s.writeError(w, types.NewValidationError("countryId", types.ErrInvalidID))
		return
	}
	list, err := s.backend.Regions().Provinces(r.Context(), countryID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, nonNil(list), false)
}

func nonNil(list []types.Option) []types.Option {
	if list == nil {
		return []types.Option{}
	}
	return list
}

// templateID reads the freight template scope of a destination request.
func templateID(body []byte) (int64, error) {
	id, ok, err := int64Field(body, types.FreightTemplateScopeKey)
	if err != nil {
		return 0, err
	}
	if !ok || id <= 0 {
		return 0, types.NewValidationError(types.FreightTemplateScopeKey, types.ErrInvalidID)
	}
	return id, nil
}

func (s *Server) destinationGrid(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	tid, err := templateID(body)
	if err != nil {
		s.writeError(w, err)
		return
	}
	q, err := queryState(body)
	if err != nil {
		s.writeError(w, err)
		return
	}
	page, err := s.backend.Destinations().Page(r.Context(), tid, q)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, types.PageData[types.PriceDestination]{
		List:       page.Items(),
		Pagination: types.PageDataTotals{Total: page.TotalCount()},
	}, false)
}

// destinationForm decodes and validates the form fields of an add or edit.
func (s *Server) destinationForm(body []byte) (types.PriceDestinationForm, error) {
	var form types.PriceDestinationForm
	if err := json.Unmarshal(body, &form); err != nil {
		return form, badRequest("decoding form: %v", err)
	}
	if err := s.validate.Struct(form); err != nil {
		return form, &types.ValidationError{Message: err.Error(), Err: err}
	}
	return form, nil
}

func (s *Server) destinationAdd(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	tid, err := templateID(body)
	if err != nil {
		s.writeError(w, err)
		return
	}
	form, err := s.destinationForm(body)
	if err != nil {
		s.writeError(w, err)
		return
	}
	id, err := s.backend.Destinations().Create(r.Context(), tid, form)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, map[string]int64{"id": id}, false)
}

func (s *Server) destinationEdit(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	id, err := requireID(body)
	if err != nil {
		s.writeError(w, err)
		return
	}
	tid, _, err := int64Field(body, types.FreightTemplateScopeKey)
	if err != nil {
		s.writeError(w, err)
		return
	}
	form, err := s.destinationForm(body)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.backend.Destinations().Update(r.Context(), id, tid, form); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, nil, false)
}

func (s *Server) destinationDelete(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	id, err := requireID(body)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.backend.Destinations().Delete(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, nil, false)
}
