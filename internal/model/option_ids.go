package model

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/lib/pq"
)

// ErrMalformedOptionIDs is returned when a stored or submitted option id list
// cannot be decoded.
var ErrMalformedOptionIDs = errors.New("malformed option ids")

// OptionIDs is the canonical form of a combination: sorted ascending, no
// duplicates. Two combinations are the same SKU iff their OptionIDs are Equal.
type OptionIDs []int64

// NewOptionIDs normalizes ids into canonical form. The input is not modified.
func NewOptionIDs(ids ...int64) OptionIDs {
	out := make(OptionIDs, len(ids))
	copy(out, ids)
	slices.Sort(out)
	return slices.Compact(out)
}

func (o OptionIDs) Len() int { return len(o) }

func (o OptionIDs) Equal(other OptionIDs) bool {
	return slices.Equal(o, other)
}

func (o OptionIDs) Contains(id int64) bool {
	_, found := slices.BinarySearch(o, id)
	return found
}

// Key is a stable string form ("3,7"), used as map key, cache key part and the
// option_key column backing the per-product uniqueness constraint.
func (o OptionIDs) Key() string {
	parts := make([]string, len(o))
	for i, id := range o {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}

func (o OptionIDs) String() string { return "{" + o.Key() + "}" }

func (o OptionIDs) MarshalJSON() ([]byte, error) {
	if o == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]int64(o))
}

// UnmarshalJSON accepts both a JSON array and a JSON string holding an array.
// null yields the empty set.
func (o *OptionIDs) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		*o = nil
		return nil
	}
	ids, err := DecodeOptionIDs(data)
	if err != nil {
		return err
	}
	*o = ids
	return nil
}

// Value stores the canonical JSON array.
func (o OptionIDs) Value() (driver.Value, error) {
	b, err := o.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (o *OptionIDs) Scan(src any) error {
	ids, err := DecodeOptionIDs(src)
	if err != nil {
		return err
	}
	*o = ids
	return nil
}

// DecodeOptionIDs is the single decoding boundary for option id lists. It
// accepts a JSON array ([7,3]), a JSON string wrapping one ("[7,3]"), a
// Postgres array literal ({7,3}), or an already-decoded slice, and returns the
// canonical set.
func DecodeOptionIDs(src any) (OptionIDs, error) {
	switch v := src.(type) {
	case nil:
		return nil, fmt.Errorf("%w: null", ErrMalformedOptionIDs)
	case OptionIDs:
		return NewOptionIDs(v...), nil
	case []int64:
		return NewOptionIDs(v...), nil
	case string:
		return decodeText([]byte(v), 0)
	case []byte:
		return decodeText(v, 0)
	default:
		return nil, fmt.Errorf("%w: unsupported type %T", ErrMalformedOptionIDs, src)
	}
}

func decodeText(raw []byte, depth int) (OptionIDs, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrMalformedOptionIDs)
	}

	switch raw[0] {
	case '[':
		var nums []json.Number
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		if err := dec.Decode(&nums); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedOptionIDs, err)
		}
		ids := make([]int64, 0, len(nums))
		for _, n := range nums {
			id, err := strconv.ParseInt(n.String(), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: %q is not an id", ErrMalformedOptionIDs, n)
			}
			ids = append(ids, id)
		}
		return NewOptionIDs(ids...), nil
	case '"':
		// Older rows stored the array JSON-encoded a second time.
		if depth > 0 {
			return nil, fmt.Errorf("%w: nested string", ErrMalformedOptionIDs)
		}
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedOptionIDs, err)
		}
		return decodeText([]byte(inner), depth+1)
	case '{':
		var arr pq.Int64Array
		if err := arr.Scan(raw); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedOptionIDs, err)
		}
		return NewOptionIDs(arr...), nil
	default:
		return nil, fmt.Errorf("%w: unexpected %q", ErrMalformedOptionIDs, raw[0])
	}
}
