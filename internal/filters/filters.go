// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package filters implements the --filter row selection language, a comma
// separated list of key, operator and target triples such as
// "type=address,name^LAN,items@10.0.0.1".
package filters

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/apex/log"
	"github.com/tidwall/gjson"

	"github.com/staranto/vyctl/internal/attrs"
	"github.com/staranto/vyctl/internal/driller"
)

// filterRegex splits an expression into key, operator and target. Operators
// are one of = ^ ~ < > @ or /, optionally negated with a leading !.
var filterRegex = regexp.MustCompile(`^(.*?)(!?[=^~<>@/])(.*)$`)

var ErrInvalidFilter = errors.New("invalid filter")

// Filter is a single parsed --filter expression.
type Filter struct {
	Key     string
	Negate  bool
	Operand string
	Target  string
}

func (f Filter) String() string {
	neg := ""
	if f.Negate {
		neg = "!"
	}
	return f.Key + neg + f.Operand + f.Target
}

// Delimiter separates expressions. VYCTL_FILTER_DELIM overrides the default
// comma for targets that contain commas.
func Delimiter() string {
	if d, ok := os.LookupEnv("VYCTL_FILTER_DELIM"); ok && d != "" {
		return d
	}
	return ","
}

// BuildFilters parses spec. Every malformed expression is reported, joined
// into one error, and the valid ones are still returned.
func BuildFilters(spec string) ([]Filter, error) {
	if strings.TrimSpace(spec) == "" {
		return nil, nil
	}

	var (
		filters []Filter
		errs    []error
	)
	for _, expr := range strings.Split(spec, Delimiter()) {
		parts := filterRegex.FindStringSubmatch(expr)
		if parts == nil || strings.TrimSpace(parts[1]) == "" {
			errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidFilter, expr))
			continue
		}

		f := Filter{
			Key:     strings.TrimSpace(parts[1]),
			Operand: parts[2],
			Target:  parts[3],
		}
		if strings.HasPrefix(f.Operand, "!") {
			f.Negate = true
			f.Operand = f.Operand[1:]
		}
		if f.Operand == "/" {
			if _, err := regexp.Compile(f.Target); err != nil {
				errs = append(errs, fmt.Errorf("%w: %q: %w", ErrInvalidFilter, expr, err))
				continue
			}
		}
		filters = append(filters, f)
	}

	return filters, errors.Join(errs...)
}

// FilterDataset returns the rows of candidates that match every filter, each
// projected onto attrs keyed by OutputKey. Transforms are left to the caller.
func FilterDataset(candidates gjson.Result, list attrs.AttrList, filters []Filter) []map[string]any {
	var rows []map[string]any

	for _, candidate := range rowsOf(candidates) {
		if !Match(candidate, list, filters) {
			continue
		}

		row := make(map[string]any, len(list))
		for _, attr := range list {
			if attr.Key == "*" {
				continue
			}
			row[attr.OutputKey] = driller.Driller(candidate.Raw, attr.Key).Value()
		}
		rows = append(rows, row)
	}

	return rows
}

// rowsOf treats a bare object as a one row dataset.
func rowsOf(candidates gjson.Result) []gjson.Result {
	if candidates.IsObject() {
		return []gjson.Result{candidates}
	}
	return candidates.Array()
}

// Match reports whether candidate satisfies every filter. A filter key names
// an attr by OutputKey or Key; anything else is drilled as a raw path.
func Match(candidate gjson.Result, list attrs.AttrList, filters []Filter) bool {
	for _, f := range filters {
		key := f.Key
		if attr, ok := list.Lookup(f.Key); ok {
			key = attr.Key
		}

		value := driller.Driller(candidate.Raw, key).Value()
		if value == nil {
			if f.Negate {
				continue
			}
			return false
		}

		if !f.check(value) {
			return false
		}
	}
	return true
}

func (f Filter) check(value any) bool {
	switch v := value.(type) {
	case string:
		if n, err := strconv.ParseFloat(v, 64); err == nil && isNumericOperand(f) {
			return f.checkNumeric(n)
		}
		return f.checkString(v)
	case bool:
		return f.checkString(strconv.FormatBool(v))
	case float64:
		return f.checkNumeric(v)
	case []any, map[string]any:
		if f.Operand != "@" {
			log.Debugf("operand %s not supported on collections, filter %s", f.Operand, f)
			return false
		}
		return f.checkContains(v)
	default:
		return false
	}
}

// isNumericOperand is true when a numeric string should compare as a number.
// VyOS reports ports and intervals as strings.
func isNumericOperand(f Filter) bool {
	if f.Operand != "<" && f.Operand != ">" && f.Operand != "=" {
		return false
	}
	_, err := strconv.ParseFloat(strings.TrimSpace(f.Target), 64)
	return err == nil
}

func (f Filter) checkContains(value any) bool {
	found := false
	switch val := value.(type) {
	case []any:
		for _, item := range val {
			if fmt.Sprint(item) == f.Target {
				found = true
				break
			}
		}
	case map[string]any:
		_, found = val[f.Target]
	}
	return found != f.Negate
}

func (f Filter) checkNumeric(value float64) bool {
	tgt, err := strconv.ParseFloat(strings.TrimSpace(f.Target), 64)
	if err != nil {
		return f.checkString(strconv.FormatFloat(value, 'f', -1, 64))
	}

	var result bool
	switch f.Operand {
	case "=":
		result = value == tgt
	case ">":
		result = value > tgt
	case "<":
		result = value < tgt
	default:
		return f.checkString(strconv.FormatFloat(value, 'f', -1, 64))
	}
	return result != f.Negate
}

func (f Filter) checkString(value string) bool {
	var result bool
	switch f.Operand {
	case "=":
		result = value == f.Target
	case "~":
		result = strings.EqualFold(value, f.Target)
	case "^":
		result = strings.HasPrefix(value, f.Target)
	case ">":
		result = value > f.Target
	case "<":
		result = value < f.Target
	case "@":
		result = strings.Contains(value, f.Target)
	case "/":
		re, err := regexp.Compile(f.Target)
		if err != nil {
			return false
		}
		result = re.MatchString(value)
	default:
		return false
	}
	return result != f.Negate
}
