// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/apex/log"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/lipgloss/v2/table"
	"github.com/tidwall/gjson"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v2"

	"github.com/staranto/vyctl/internal/attrs"
	"github.com/staranto/vyctl/internal/config"
	"github.com/staranto/vyctl/internal/filters"
)

// Formats accepted by --output.
var Formats = []string{"text", "json", "yaml", "raw"}

// Options carries the presentation flags shared by every listing command.
type Options struct {
	Format string
	Filter string
	Sort   string
	Color  bool
	Titles bool
	Local  bool
}

// OptionsFromCommand reads Options from the global flags.
func OptionsFromCommand(cmd *cli.Command) Options {
	return Options{
		Format: cmd.String("output"),
		Filter: cmd.String("filter"),
		Sort:   cmd.String("sort"),
		Color:  cmd.Bool("color"),
		Titles: cmd.Bool("titles"),
		Local:  cmd.Bool("local"),
	}
}

// SliceDiceSpit filters, transforms, sorts and renders the JSON rows in raw.
// raw is an array of objects, or a single object treated as one row.
func SliceDiceSpit(raw []byte, list attrs.AttrList, opts Options, w io.Writer) error {
	if w == nil {
		w = os.Stdout
	}

	if opts.Format == "raw" {
		_, err := w.Write(raw)
		return err
	}

	if !gjson.ValidBytes(raw) {
		return fmt.Errorf("cannot render rows: invalid JSON")
	}

	flts, err := filters.BuildFilters(opts.Filter)
	if err != nil {
		return err
	}

	rows := filters.FilterDataset(gjson.ParseBytes(raw), list, flts)
	log.Debugf("%d rows after filter %q", len(rows), opts.Filter)

	list = append(attrs.AttrList(nil), list...)
	if opts.Local {
		for i := range list {
			list[i].TransformSpec += "t"
		}
	}

	for _, row := range rows {
		for i := range list {
			if list[i].TransformSpec != "" && list[i].Key != "*" {
				row[list[i].OutputKey] = list[i].Transform(row[list[i].OutputKey])
			}
		}
	}

	SortDataset(rows, opts.Sort)

	switch opts.Format {
	case "json":
		out := make([]map[string]any, 0, len(rows))
		for _, row := range rows {
			out = append(out, project(row, list))
		}
		b, err := json.Marshal(out)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	case "yaml":
		out := make([]yaml.MapSlice, 0, len(rows))
		for _, row := range rows {
			out = append(out, orderedRow(row, list))
		}
		b, err := yaml.Marshal(out)
		if err != nil {
			return err
		}
		_, err = w.Write(b)
		return err
	default:
		TableWriter(rows, list, opts, w)
		return nil
	}
}

// project drops the hidden attrs from a row.
func project(row map[string]any, list attrs.AttrList) map[string]any {
	out := make(map[string]any, len(row))
	for _, attr := range list.Columns() {
		out[attr.OutputKey] = row[attr.OutputKey]
	}
	return out
}

// orderedRow keeps the --attrs column order in yaml output.
func orderedRow(row map[string]any, list attrs.AttrList) yaml.MapSlice {
	var out yaml.MapSlice
	for _, attr := range list.Columns() {
		out = append(out, yaml.MapItem{Key: attr.OutputKey, Value: row[attr.OutputKey]})
	}
	return out
}

// TableWriter renders rows as a borderless table with optional titles and
// alternating row colors.
func TableWriter(rows []map[string]any, list attrs.AttrList, opts Options, w io.Writer) {
	if len(rows) == 0 {
		return
	}

	var (
		headerStyle  = lipgloss.NewStyle().Align(lipgloss.Left)
		cellStyle    = lipgloss.NewStyle().Padding(0, 0).Align(lipgloss.Left)
		evenRowStyle = cellStyle
		oddRowStyle  = cellStyle
	)

	if opts.Color {
		headerColor, evenColor, oddColor := getColors("colors")
		headerStyle = headerStyle.Foreground(lipgloss.Color(headerColor))
		evenRowStyle = evenRowStyle.Foreground(lipgloss.Color(evenColor))
		oddRowStyle = oddRowStyle.Foreground(lipgloss.Color(oddColor))
	}

	pad, _ := config.GetInt("padding", 2)
	cols := list.Columns()

	var data [][]string
	for _, row := range rows {
		line := make([]string, 0, len(cols))
		for _, attr := range cols {
			line = append(line, InterfaceToString(row[attr.OutputKey], "-"))
		}
		data = append(data, line)
	}

	t := table.New().
		BorderBottom(false).
		BorderTop(false).
		BorderLeft(false).
		BorderRight(false).
		Border(lipgloss.HiddenBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			var style lipgloss.Style
			switch {
			case row == table.HeaderRow:
				style = headerStyle
			case row%2 == 0:
				style = evenRowStyle
			default:
				style = oddRowStyle
			}
			if col > 0 {
				style = style.PaddingLeft(pad)
			}
			return style
		}).
		Rows(data...)

	if opts.Titles {
		headers := make([]string, 0, len(cols))
		for _, attr := range cols {
			headers = append(headers, attr.OutputKey)
		}
		// https://github.com/charmbracelet/lipgloss/issues/261
		t = t.Headers(headers...).BorderHeader(false)
	}

	fmt.Fprintln(w, t)
}

func getColors(key string) (header string, even string, odd string) {
	header, _ = config.GetString(key+".title", "#f6be00")
	even, _ = config.GetString(key+".even", "#ffffff")
	odd, _ = config.GetString(key+".odd", "#00c8f0")
	return
}

// SortDataset orders rows by a comma separated list of output keys. A key
// prefixed with - sorts descending and one prefixed with ! compares strings
// case sensitively. Numbers compare numerically and missing values sort
// last. The sort is stable.
func SortDataset(rows []map[string]any, spec string) {
	if spec == "" || len(rows) < 2 {
		return
	}

	type sortKey struct {
		name  string
		desc  bool
		exact bool
	}

	var keys []sortKey
	for _, s := range strings.Split(spec, ",") {
		k := sortKey{}
		s = strings.TrimSpace(s)
		for len(s) > 0 && (s[0] == '-' || s[0] == '!') {
			if s[0] == '-' {
				k.desc = true
			} else {
				k.exact = true
			}
			s = s[1:]
		}
		if s == "" {
			continue
		}
		k.name = s
		keys = append(keys, k)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		for _, k := range keys {
			a, b := rows[i][k.name], rows[j][k.name]
			if (a == nil) != (b == nil) {
				return b == nil
			}
			c := compare(a, b, k.exact)
			if c == 0 {
				continue
			}
			if k.desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

func compare(a, b any, exact bool) int {
	if a == nil || b == nil {
		return 0
	}

	if fa, ok := number(a); ok {
		if fb, ok := number(b); ok {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			}
			return 0
		}
	}

	sa, sb := InterfaceToString(a), InterfaceToString(b)
	if !exact {
		sa, sb = strings.ToLower(sa), strings.ToLower(sb)
	}
	return strings.Compare(sa, sb)
}

// number accepts JSON numbers and numeric strings, which VyOS uses for ports
// and intervals.
func number(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}

// InterfaceToString converts a row value to display text. Missing and empty
// values render as emptyValue, which defaults to "".
func InterfaceToString(value any, emptyValue ...string) string {
	if len(emptyValue) == 0 {
		emptyValue = []string{""}
	}

	switch value := value.(type) {
	case nil:
		return emptyValue[0]
	case string:
		if value == "" {
			return emptyValue[0]
		}
		return value
	case int:
		return strconv.Itoa(value)
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(value)
	case []any:
		if len(value) == 0 {
			return emptyValue[0]
		}
		parts := make([]string, 0, len(value))
		for _, v := range value {
			parts = append(parts, InterfaceToString(v))
		}
		return strings.Join(parts, ",")
	default:
		rv := reflect.ValueOf(value)
		if rv.IsZero() || ((rv.Kind() == reflect.Map || rv.Kind() == reflect.Slice) && rv.Len() == 0) {
			return emptyValue[0]
		}
		b, err := json.Marshal(value)
		if err != nil {
			return fmt.Sprintf("%v", value)
		}
		return string(b)
	}
}
