package portal

import (
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
)

var (
	timeType = reflect.TypeOf(time.Time{})

	// Layouts the parser is known to emit for dates.
	dateLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02", "2006-01"}
)

func decode(input any, result any) error {
	cfg := &mapstructure.DecoderConfig{
		Metadata:   nil,
		Result:     result,
		TagName:    "json",
		DecodeHook: lenientTimeHook,
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return err
	}

	return decoder.Decode(input)
}

// lenientTimeHook turns date strings into time.Time. Anything that is not a
// recognizable date yields the zero time, which callers treat as absent.
func lenientTimeHook(_ reflect.Type, to reflect.Type, data any) (any, error) {
	if to != timeType {
		return data, nil
	}

	switch v := data.(type) {
	case time.Time:
		return v, nil
	case string:
		return parseDate(v), nil
	default:
		return time.Time{}, nil
	}
}

func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
