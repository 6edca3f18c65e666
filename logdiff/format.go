package logdiff

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// Placeholder stands in for absent values.
const Placeholder = "—"

var isoDate = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}(T\d{2}:\d{2}(:\d{2}(\.\d+)?)?(Z|[+-]\d{2}:?\d{2})?)?$`)

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// Formatter turns metadata values into display text. Dates are shown in
// Location.
type Formatter struct {
	Location *time.Location
}

// Default formats dates in UTC.
var Default = Formatter{Location: time.UTC}

// FormatValue formats v with the default formatter.
func FormatValue(v any) string {
	return Default.FormatValue(v)
}

// FormatValue renders nil as the placeholder, booleans as Yes/No, ISO
// dates as readable dates and objects by their name, label or full_name.
func (f Formatter) FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return Placeholder
	case bool:
		if x {
			return "Yes"
		}
		return "No"
	case string:
		if isoDate.MatchString(x) {
			if s, ok := f.formatDate(x); ok {
				return s
			}
		}
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case json.Number:
		return x.String()
	case map[string]any:
		for _, key := range []string{"name", "label", "full_name"} {
			if s, ok := x[key].(string); ok && s != "" {
				return s
			}
		}
		return pretty(x)
	case []any:
		return pretty(x)
	}
	return fmt.Sprint(v)
}

func (f Formatter) formatDate(s string) (string, bool) {
	loc := f.Location
	if loc == nil {
		loc = time.UTC
	}
	if len(s) == len("2006-01-02") {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			return "", false
		}
		return t.Format("Jan 2, 2006"), true
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.In(loc).Format("Jan 2, 2006, 3:04 PM"), true
		}
	}
	return "", false
}

func pretty(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

// Humanize turns a metadata key such as first_name, companyId or
// companyID into a column label. A run of capitals stays one word.
func Humanize(key string) string {
	var words []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = nil
		}
	}
	rs := []rune(key)
	for i, r := range rs {
		if r == '_' || r == '-' || r == ' ' || r == '.' {
			flush()
			continue
		}
		if unicode.IsUpper(r) && len(cur) > 0 {
			prev := cur[len(cur)-1]
			nextLower := i+1 < len(rs) && unicode.IsLower(rs[i+1])
			if !unicode.IsUpper(prev) || nextLower {
				flush()
			}
		}
		cur = append(cur, r)
	}
	flush()
	for i, w := range words {
		rs := []rune(w)
		rs[0] = unicode.ToUpper(rs[0])
		words[i] = string(rs)
	}
	return strings.Join(words, " ")
}
