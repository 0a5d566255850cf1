package specification

import (
	"crypto/sha256"
	"encoding/hex"
	"maps"
	"net/url"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"unicode"

	s "github.com/krew-solutions/ascetic-rest-go/asceticrest/specification/domain"
)

// Params is the wire form of a query: a tree of maps, lists and scalars.
// Maps carry no order; every serialized form visits keys sorted.
type Params map[string]any

func (p Params) Keys() []string {
	return SortedKeys(p)
}

func SortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}

// Values flattens nested maps into bracketed keys ("filter[name]"). Lists of
// scalars repeat the key, lists holding maps are indexed ("parts[0][field]").
func (p Params) Values() url.Values {
	values := url.Values{}
	for _, key := range p.Keys() {
		flatten(values, key, p[key])
	}
	return values
}

// Encode returns the canonical query string.
func (p Params) Encode() string {
	return p.Values().Encode()
}

// Signature identifies a request with these parameters independently of map
// iteration order.
func (p Params) Signature() string {
	sum := sha256.Sum256([]byte(p.Encode()))
	return hex.EncodeToString(sum[:])
}

func flatten(values url.Values, key string, value any) {
	switch v := value.(type) {
	case nil:
		values.Add(key, "")
	case Params:
		flatten(values, key, map[string]any(v))
	case map[string]any:
		for _, sub := range SortedKeys(v) {
			flatten(values, key+"["+sub+"]", v[sub])
		}
	case []string:
		for _, item := range v {
			values.Add(key, item)
		}
	case []any:
		indexed := slices.ContainsFunc(v, func(item any) bool {
			_, isMap := item.(map[string]any)
			return isMap
		})
		for i, item := range v {
			if indexed {
				flatten(values, key+"["+strconv.Itoa(i)+"]", item)
			} else {
				flatten(values, key, item)
			}
		}
	default:
		rv := reflect.ValueOf(value)
		if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
			for i := 0; i < rv.Len(); i++ {
				flatten(values, key, rv.Index(i).Interface())
			}
			return
		}
		values.Add(key, s.FormatValue(value))
	}
}

// SnakeCase converts every dot-separated segment of an include path,
// keeping the dots: "userGroups.somePermissions" -> "user_groups.some_permissions".
func SnakeCase(path string) string {
	segments := strings.Split(path, ".")
	for i, segment := range segments {
		segments[i] = snakeCaseSegment(segment)
	}
	return strings.Join(segments, ".")
}

func snakeCaseSegment(segment string) string {
	runes := []rune(segment)
	var b strings.Builder
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if prev != '_' && (unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower)) {
					b.WriteByte('_')
				}
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
