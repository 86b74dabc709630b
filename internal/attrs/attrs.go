// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package attrs parses the --attrs flag into the list of columns a command
// prints, and applies the per-column value transforms.
package attrs

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"

	"github.com/staranto/vyctl/internal/config"
)

// Attr is one output column. Key is the dotted path into each JSON row,
// OutputKey is the column title and the key in json/yaml output.
type Attr struct {
	Key string `yaml:"key"`
	// Include is false for attrs only used for filtering or sorting.
	Include       bool   `yaml:"include"`
	OutputKey     string `yaml:"outputKey"`
	TransformSpec string `yaml:"transformSpec"`
}

var lengthRegex = regexp.MustCompile(`-?\d+`)

// now is swapped in tests so relative times are stable.
var now = time.Now

// Transform applies TransformSpec to value. The spec letters are:
//
//	t  RFC3339 timestamps shown in the configured timezone
//	h  humanized timestamps ("3 minutes ago") and numbers ("12,345")
//	l  lower case
//	u  upper case
//	N  truncate to N runes, -N keeps both ends joined with ".."
//
// Letters are case insensitive. When both l and u appear the later one wins
// so a column spec overrides a global one.
func (a *Attr) Transform(value any) any {
	spec := a.TransformSpec
	if spec == "" {
		return value
	}

	var result string
	switch v := value.(type) {
	case string:
		result = v
	case float64:
		if !strings.ContainsAny(spec, "hH") {
			return value
		}
		return humanize.Commaf(v)
	case int:
		if !strings.ContainsAny(spec, "hH") {
			return value
		}
		return humanize.Comma(int64(v))
	default:
		return value
	}

	if strings.ContainsAny(spec, "hH") {
		if ts, err := time.Parse(time.RFC3339, result); err == nil {
			result = humanize.RelTime(ts, now(), "ago", "from now")
		}
	} else if strings.ContainsAny(spec, "tT") {
		result = localTime(result)
	}

	lastL := strings.LastIndexAny(spec, "lL")
	lastU := strings.LastIndexAny(spec, "uU")
	switch {
	case lastL > lastU:
		result = strings.ToLower(result)
	case lastU > lastL:
		result = strings.ToUpper(result)
	}

	if match := lengthRegex.FindAllString(spec, -1); len(match) != 0 {
		n, _ := strconv.Atoi(match[len(match)-1])
		result = truncate(result, n)
	}

	return result
}

func localTime(value string) string {
	tz, _ := config.GetString("timezone", "")
	if v := os.Getenv("VYCTL_TIMEZONE"); v != "" {
		tz = v
	}
	if tz == "" {
		tz = os.Getenv("TZ")
	}
	if tz == "" {
		return value
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.WithField("tz", tz).Warn("unknown timezone")
		return value
	}

	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return value
	}
	return t.In(loc).Format("2006-01-02T15:04:05MST")
}

func truncate(s string, n int) string {
	runes := []rune(s)
	abs := n
	if abs < 0 {
		abs = -abs
	}
	if len(runes) <= abs {
		return s
	}
	if n >= 0 {
		return string(runes[:n])
	}

	keep := abs/2 - 1
	if keep < 1 {
		return string(runes[:abs])
	}
	return string(runes[:keep]) + ".." + string(runes[len(runes)-keep:])
}

type AttrList []Attr

// String renders the list back into --attrs syntax.
func (a *AttrList) String() string {
	result := make([]string, 0, len(*a))
	for _, attr := range *a {
		key := attr.Key
		if !attr.Include && key != "*" {
			key = "!" + key
		}
		result = append(result, fmt.Sprintf("%s:%s:%s", key, attr.OutputKey, attr.TransformSpec))
	}
	return strings.Join(result, ",")
}

// Set parses a comma separated list of Key:OutputKey:Transform specs and
// merges them into the list. A spec naming an attr already present updates it
// in place, which is how user --attrs override a command's defaults. A
// leading ! hides the column and a Key of * carries a global transform.
func (a *AttrList) Set(value string) error {
	if value == "" || value == "*" {
		return nil
	}

	for _, spec := range strings.Split(value, ",") {
		spec = strings.TrimSpace(spec)
		if spec == "" {
			continue
		}

		fields := strings.Split(spec, ":")
		if len(fields) > 3 {
			return fmt.Errorf("invalid attr spec %q: too many fields", spec)
		}

		attr := Attr{Include: true}
		attr.Key = strings.TrimSpace(fields[0])
		if strings.HasPrefix(attr.Key, "!") {
			attr.Include = false
			attr.Key = attr.Key[1:]
		}
		attr.Key = strings.TrimPrefix(attr.Key, ".")
		if attr.Key == "" {
			return fmt.Errorf("invalid attr spec %q: empty key", spec)
		}
		if attr.Key == "*" {
			attr.Include = false
		}

		segments := strings.Split(attr.Key, ".")
		attr.OutputKey = segments[len(segments)-1]
		if len(fields) > 1 && strings.TrimSpace(fields[1]) != "" {
			attr.OutputKey = strings.TrimSpace(fields[1])
		}
		if len(fields) > 2 {
			attr.TransformSpec = strings.TrimSpace(fields[2])
		}

		if i := a.index(attr.Key); i >= 0 {
			(*a)[i].Include = attr.Include
			(*a)[i].OutputKey = attr.OutputKey
			(*a)[i].TransformSpec = attr.TransformSpec
			continue
		}

		*a = append(*a, attr)
	}

	return nil
}

func (a *AttrList) index(key string) int {
	for i := range *a {
		if (*a)[i].Key == key || (*a)[i].OutputKey == key {
			return i
		}
	}
	return -1
}

// SetGlobalTransformSpec prepends the * attr's transform to every attr.
func (a *AttrList) SetGlobalTransformSpec() {
	i := a.index("*")
	if i < 0 || (*a)[i].TransformSpec == "" {
		return
	}

	spec := (*a)[i].TransformSpec
	for j := range *a {
		if j == i {
			continue
		}
		(*a)[j].TransformSpec = spec + "," + (*a)[j].TransformSpec
	}
}

// Columns returns the attrs that are printed.
func (a AttrList) Columns() AttrList {
	var cols AttrList
	for _, attr := range a {
		if attr.Include {
			cols = append(cols, attr)
		}
	}
	return cols
}

// Lookup returns the attr whose OutputKey or Key is name.
func (a AttrList) Lookup(name string) (Attr, bool) {
	if i := a.index(name); i >= 0 {
		return a[i], true
	}
	return Attr{}, false
}

func (a *AttrList) Type() string {
	return "list"
}
