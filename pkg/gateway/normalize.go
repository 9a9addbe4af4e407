package gateway

import (
	"errors"
	"fmt"

	"github.com/buger/jsonparser"

	"github.com/billyloki/module-shop-admin/pkg/types"
)

// Decode errors.
var (
	ErrMalformedEnvelope = errors.New("malformed response envelope")
	ErrMissingSuccess    = errors.New("response envelope has no success flag")
)

// Decode normalizes a response body into an Envelope. A body that is a JSON
// string is unescaped and parsed once more; doubled reports whether that
// happened so callers can log it.
func Decode(body []byte) (env types.Envelope, doubled bool, err error) {
	value, dataType, _, err := jsonparser.Get(body)
	if err != nil {
		return types.Envelope{}, false, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}

	if dataType == jsonparser.String {
		inner, err := jsonparser.ParseString(value)
		if err != nil {
			return types.Envelope{}, true, fmt.Errorf("%w: unescaping string body: %v", ErrMalformedEnvelope, err)
		}
		doubled = true
		value, dataType, _, err = jsonparser.Get([]byte(inner))
		if err != nil {
			return types.Envelope{}, doubled, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
		}
	}

	if dataType != jsonparser.Object {
		return types.Envelope{}, doubled, fmt.Errorf("%w: expected object, got %s", ErrMalformedEnvelope, dataType)
	}

	env.Success, err = jsonparser.GetBoolean(value, "success")
	if err != nil {
		return types.Envelope{}, doubled, ErrMissingSuccess
	}
	if msg, err := jsonparser.GetString(value, "message"); err == nil {
		env.Message = msg
	}

	data, dataType, _, err := jsonparser.Get(value, "data")
	switch {
	case err != nil, dataType == jsonparser.Null:
	case dataType == jsonparser.String:
		env.Data = make([]byte, 0, len(data)+2)
		env.Data = append(env.Data, '"')
		env.Data = append(env.Data, data...)
		env.Data = append(env.Data, '"')
	default:
		env.Data = append([]byte(nil), data...)
	}
	return env, doubled, nil
}
