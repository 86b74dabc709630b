// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package driller

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// segmentRegex splits a path segment into its key and optional index.
var segmentRegex = regexp.MustCompile(`^(.*?)(?:\[(\d+)\])?$`)

// gjsonSpecial are the characters gjson treats as path syntax.
const gjsonSpecial = `.*?|#@!=<>%\`

// Driller walks doc along path and returns what it finds. A single element
// array is unwrapped transparently, both in the middle of a path and at its
// end, so "members.address" works whether members holds one object or is the
// object itself. Missing keys and out of range indexes yield an empty Result.
func Driller(doc string, path string) gjson.Result {
	current := gjson.Parse(doc)
	if path == "" {
		return current
	}

	for _, segment := range strings.Split(path, ".") {
		key, index, indexed := parseSegment(segment)

		if key != "" {
			current = unwrap(current).Get(escape(key))
			if !current.Exists() {
				return gjson.Result{}
			}
		}

		if indexed {
			if !current.IsArray() {
				return gjson.Result{}
			}
			items := current.Array()
			if index >= len(items) {
				return gjson.Result{}
			}
			current = items[index]
		}
	}

	return unwrap(current)
}

func parseSegment(segment string) (string, int, bool) {
	parts := segmentRegex.FindStringSubmatch(segment)
	if parts == nil || parts[2] == "" {
		return segment, 0, false
	}

	idx, err := strconv.Atoi(parts[2])
	if err != nil {
		return segment, 0, false
	}
	return parts[1], idx, true
}

func unwrap(r gjson.Result) gjson.Result {
	if r.IsArray() {
		if items := r.Array(); len(items) == 1 {
			return items[0]
		}
	}
	return r
}

// escape makes key literal for gjson so node names carrying wildcard or
// modifier characters are matched as written.
func escape(key string) string {
	if !strings.ContainsAny(key, gjsonSpecial) {
		return key
	}

	var b strings.Builder
	for _, r := range key {
		if strings.ContainsRune(gjsonSpecial, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
