// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package formengine

import "strings"

// Rule is a validation constraint spanning several fields. A failing rule
// marks every field it covers as invalid and reports one shared message,
// rendered in the element identified by ErrorID.
type Rule struct {
	Name    string
	Fields  []string
	Message string
	ErrorID string
	// Satisfied reports whether the rule holds for the current values.
	Satisfied func(value func(key string) string) bool
}

func (r Rule) covers(key string) bool {
	for _, f := range r.Fields {
		if f == key {
			return true
		}
	}
	return false
}

// AtLeastOne returns a rule that holds when any of the given fields is non-blank.
func AtLeastOne(name, errorID, message string, fields ...string) Rule {
	return Rule{
		Name:    name,
		Fields:  fields,
		Message: message,
		ErrorID: errorID,
		Satisfied: func(value func(string) string) bool {
			for _, f := range fields {
				if strings.TrimSpace(value(f)) != "" {
					return true
				}
			}
			return false
		},
	}
}
