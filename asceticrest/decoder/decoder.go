package decoder

import (
	"encoding/json"
	"slices"
	"strconv"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"

	"github.com/krew-solutions/ascetic-rest-go/asceticrest/session"
)

type Record = map[string]any

// Decoder normalizes raw responses into records.
type Decoder interface {
	Decode(resp *session.Response, acceptable ...int) (any, error)
	AsSingleRecord(payload any) (Record, error)
	AsRecordList(payload any) ([]Record, error)
	Pagination(payload any) (Pagination, bool)
}

var DefaultAcceptable = []int{200, 201, 202, 203, 204, 206}

const envelopeKey = "data"

// JSONDecoder decodes JSON bodies keeping numbers as json.Number, so
// identifiers survive without float rounding.
type JSONDecoder struct {
	api jsoniter.API
}

func NewJSONDecoder() *JSONDecoder {
	return &JSONDecoder{
		api: jsoniter.Config{
			UseNumber:   true,
			EscapeHTML:  true,
			SortMapKeys: true,
		}.Froze(),
	}
}

// Decode checks the status code against acceptable (DefaultAcceptable when
// none are given) and parses the body. An empty body decodes to nil.
func (d *JSONDecoder) Decode(resp *session.Response, acceptable ...int) (any, error) {
	if resp == nil {
		return nil, errors.Wrap(ErrUnexpectedPayload, "no response")
	}
	if len(acceptable) == 0 {
		acceptable = DefaultAcceptable
	}
	if !slices.Contains(acceptable, resp.StatusCode) {
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Acceptable: acceptable,
			Content:    resp.Content,
		}
	}
	if len(resp.Content) == 0 {
		return nil, nil
	}
	var payload any
	if err := d.api.Unmarshal(resp.Content, &payload); err != nil {
		return nil, errors.Wrap(err, "decoder: invalid JSON body")
	}
	return payload, nil
}

// AsSingleRecord returns the enveloped record, or the first one of a list.
// A nil record with a nil error means the payload holds nothing.
func (d *JSONDecoder) AsSingleRecord(payload any) (Record, error) {
	switch p := unwrap(payload).(type) {
	case nil:
		return nil, nil
	case map[string]any:
		if isNumericKeyed(p) {
			return d.first(p)
		}
		return p, nil
	case []any:
		if len(p) == 0 {
			return nil, nil
		}
		record, ok := p[0].(map[string]any)
		if !ok {
			return nil, errors.Wrapf(ErrUnexpectedPayload, "list item is %T", p[0])
		}
		return record, nil
	default:
		return nil, errors.Wrapf(ErrUnexpectedPayload, "payload is %T", p)
	}
}

func (d *JSONDecoder) first(p map[string]any) (Record, error) {
	records, err := d.AsRecordList(p)
	if err != nil || len(records) == 0 {
		return nil, err
	}
	return records[0], nil
}

// AsRecordList returns the records of the payload. An object whose keys
// are all numeric is a list ordered by key; any other object is a single
// record.
func (d *JSONDecoder) AsRecordList(payload any) ([]Record, error) {
	switch p := unwrap(payload).(type) {
	case nil:
		return []Record{}, nil
	case map[string]any:
		if !isNumericKeyed(p) {
			return []Record{p}, nil
		}
		keys := make([]string, 0, len(p))
		for key := range p {
			keys = append(keys, key)
		}
		slices.SortFunc(keys, func(a, b string) int {
			x, _ := strconv.Atoi(a)
			y, _ := strconv.Atoi(b)
			return x - y
		})
		items := make([]any, len(keys))
		for i, key := range keys {
			items[i] = p[key]
		}
		return toRecords(items)
	case []any:
		return toRecords(p)
	default:
		return nil, errors.Wrapf(ErrUnexpectedPayload, "payload is %T", p)
	}
}

func toRecords(items []any) ([]Record, error) {
	records := make([]Record, 0, len(items))
	for i, item := range items {
		record, ok := item.(map[string]any)
		if !ok {
			return nil, errors.Wrapf(ErrUnexpectedPayload, "list item %d is %T", i, item)
		}
		records = append(records, record)
	}
	return records, nil
}

func unwrap(payload any) any {
	if m, ok := payload.(map[string]any); ok {
		switch data := m[envelopeKey].(type) {
		case map[string]any, []any:
			return data
		}
	}
	return payload
}

func isNumericKeyed(m map[string]any) bool {
	if len(m) == 0 {
		return false
	}
	for key := range m {
		if _, err := strconv.Atoi(key); err != nil {
			return false
		}
	}
	return true
}

// ToInt reads an integer out of a decoded JSON value.
func ToInt(value any) (int, bool) {
	switch v := value.(type) {
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			f, err := v.Float64()
			if err != nil {
				return 0, false
			}
			return int(f), true
		}
		return int(n), true
	case float64:
		return int(v), true
	case int:
		return v, true
	case int64:
		return int(v), true
	case string:
		n, err := strconv.Atoi(v)
		return n, err == nil
	}
	return 0, false
}
