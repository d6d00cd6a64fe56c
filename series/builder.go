package series

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/Mause/tuya-graphing/data"
)

// Builds series from events. The zero value skips nothing and indexes in UTC.
type Builder struct {
	Skip     map[string]struct{}
	Location *time.Location
}

func NewBuilder(location *time.Location, skipCodes ...string) Builder {
	skip := make(map[string]struct{}, len(skipCodes))
	for _, code := range skipCodes {
		skip[code] = struct{}{}
	}
	return Builder{Skip: skip, Location: location}
}

// Partition events by code and coerce each partition to a uniform type.
// codes gives the codes to consider and their order; nil means every code present in events.
// Codes that are skipped or have no events are left out of the result.
func (b Builder) Build(events []data.Event, codes []string) (Set, error) {
	if codes == nil {
		codes = codesOf(events)
	}
	location := b.Location
	if location == nil {
		location = time.UTC
	}

	set := Set{}
	for _, code := range codes {
		if _, skipped := b.Skip[code]; skipped {
			continue
		}
		if _, done := set[code]; done {
			continue
		}

		points := []data.Event{}
		for _, event := range events {
			if event.Code == code {
				points = append(points, event)
			}
		}
		if len(points) == 0 {
			continue
		}

		series, err := coerce(code, points)
		if err != nil {
			return nil, err
		}
		series.Index = make([]time.Time, len(points))
		for i, point := range points {
			series.Index[i] = point.EventTime.In(location)
		}
		set[code] = series
	}
	return set, nil
}

func coerce(code string, points []data.Event) (Series, error) {
	series := Series{Code: code}

	isBoolean := false
	for _, point := range points {
		if isBooleanString(point.Value.String()) {
			isBoolean = true
			break
		}
	}

	if isBoolean {
		series.Kind = Boolean
		series.Bools = make([]bool, len(points))
		for i, point := range points {
			value := point.Value.String()
			if !isBooleanString(value) {
				return Series{}, fmt.Errorf("error coercing %v value %q at %v: %w", code, value, point.EventTime, ErrMixedSeries)
			}
			series.Bools[i] = value == "true"
		}
		return series, nil
	}

	series.Kind = Integer
	series.Ints = make([]int64, len(points))
	for i, point := range points {
		value := point.Value.String()
		parsed, err := parseInteger(point.Value)
		if err != nil {
			return Series{}, &ParseError{Code: code, Value: value, Err: err}
		}
		series.Ints[i] = parsed
	}
	return series, nil
}

// Base-10 integer. JSON numbers with a fraction are truncated toward zero; strings must be integral.
func parseInteger(value data.Value) (int64, error) {
	text := strings.TrimSpace(value.String())
	parsed, err := strconv.ParseInt(text, 10, 64)
	if err == nil || value.Kind() != data.NumberValue {
		return parsed, err
	}
	f, floatErr := strconv.ParseFloat(text, 64)
	if floatErr != nil || math.IsNaN(f) || f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, err
	}
	return int64(math.Trunc(f)), nil
}

// Case sensitive: "True" is not a boolean.
func isBooleanString(value string) bool {
	return value == "true" || value == "false"
}

func codesOf(events []data.Event) []string {
	seen := map[string]struct{}{}
	codes := []string{}
	for _, event := range events {
		if _, ok := seen[event.Code]; ok {
			continue
		}
		seen[event.Code] = struct{}{}
		codes = append(codes, event.Code)
	}
	return codes
}
