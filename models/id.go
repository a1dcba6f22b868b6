package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var ErrInvalidID = errors.New("invalid identifier")

// ID is an opaque identifier. Rows created by older clients carry numeric ids, newer
// ones carry text ids; both are kept in their canonical text form.
type ID string

func (id ID) String() string { return string(id) }

func (id ID) IsZero() bool { return strings.TrimSpace(string(id)) == "" }

// ParseID normalizes a raw identifier coming from the backend or from a request body.
func ParseID(raw interface{}) (ID, error) {
	switch v := raw.(type) {
	case nil:
		return "", ErrInvalidID
	case ID:
		if v.IsZero() {
			return "", ErrInvalidID
		}
		return ID(strings.TrimSpace(string(v))), nil
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return "", ErrInvalidID
		}
		return ID(s), nil
	case []byte:
		return ParseID(string(v))
	case int:
		return ID(strconv.Itoa(v)), nil
	case int32:
		return ID(strconv.FormatInt(int64(v), 10)), nil
	case int64:
		return ID(strconv.FormatInt(v, 10)), nil
	case uint64:
		return ID(strconv.FormatUint(v, 10)), nil
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
			return "", fmt.Errorf("%w: non-integer number %v", ErrInvalidID, v)
		}
		return ID(strconv.FormatFloat(v, 'f', -1, 64)), nil
	case json.Number:
		return ParseID(v.String())
	default:
		return "", fmt.Errorf("%w: unsupported type %T", ErrInvalidID, raw)
	}
}

// UnmarshalJSON accepts both `"12"` and `12`.
func (id *ID) UnmarshalJSON(data []byte) error {
	var raw interface{}
	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	if raw == nil {
		*id = ""
		return nil
	}
	parsed, err := ParseID(raw)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
