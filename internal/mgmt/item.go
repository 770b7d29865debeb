package mgmt

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Text returns field as display text. Missing fields are "".
func (i Item) Text(field string) string {
	v, ok := i[field]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', 2, 64)
	case bool:
		return strconv.FormatBool(t)
	case []interface{}:
		parts := make([]string, len(t))
		for n, e := range t {
			parts[n] = fmt.Sprint(e)
		}
		return strings.Join(parts, ",")
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}

// Int returns field as an integer, 0 when missing or not numeric.
func (i Item) Int(field string) int64 {
	switch t := i[field].(type) {
	case float64:
		return int64(t)
	case string:
		n, _ := strconv.ParseInt(t, 10, 64)
		return n
	default:
		return 0
	}
}

// Float returns field as a float, 0 when missing or not numeric.
func (i Item) Float(field string) float64 {
	switch t := i[field].(type) {
	case float64:
		return t
	case string:
		f, _ := strconv.ParseFloat(t, 64)
		return f
	default:
		return 0
	}
}
