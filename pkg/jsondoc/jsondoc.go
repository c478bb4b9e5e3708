package jsondoc

import (
	"encoding/json"
	"strconv"
)

// Doc is a dynamic JSON object. Every accessor returns the given default on
// a missing key, a null value or a wrong type; none of them ever panic. The
// supplier API omits and re-types fields freely, so the fetch path reads
// responses through this layer instead of rigid structs.
type Doc map[string]interface{}

func Parse(data []byte) (Doc, error) {
	var doc Doc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (d Doc) OptString(key, def string) string {
	v, ok := d[key]
	if !ok || v == nil {
		return def
	}
	switch s := v.(type) {
	case string:
		return s
	case float64:
		// numeric fields arrive as strings or numbers interchangeably
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	default:
		return def
	}
}

func (d Doc) OptInt(key string, def int) int {
	v, ok := d[key]
	if !ok || v == nil {
		return def
	}
	switch n := v.(type) {
	case float64:
		return int(n)
	case string:
		if parsed, err := strconv.ParseFloat(n, 64); err == nil {
			return int(parsed)
		}
		return def
	default:
		return def
	}
}

func (d Doc) OptFloat(key string, def float64) float64 {
	v, ok := d[key]
	if !ok || v == nil {
		return def
	}
	switch n := v.(type) {
	case float64:
		return n
	case string:
		if parsed, err := strconv.ParseFloat(n, 64); err == nil {
			return parsed
		}
		return def
	default:
		return def
	}
}

// OptArray returns the array under key as a slice of Docs, skipping entries
// that are not objects. Missing or mistyped keys yield an empty slice.
func (d Doc) OptArray(key string) []Doc {
	v, ok := d[key]
	if !ok || v == nil {
		return nil
	}
	raw, ok := v.([]interface{})
	if !ok {
		return nil
	}
	docs := make([]Doc, 0, len(raw))
	for _, item := range raw {
		if obj, ok := item.(map[string]interface{}); ok {
			docs = append(docs, Doc(obj))
		}
	}
	return docs
}

func (d Doc) Has(key string) bool {
	v, ok := d[key]
	return ok && v != nil
}
