// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package formengine

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/mozillazg/go-unidecode"
)

// Authoring limits enforced by ValidateSchema.
const (
	MaxLabelLength           = 120
	MaxThankYouTitleLength   = 120
	MaxThankYouMessageLength = 400
)

// SchemaIssue is an authoring mistake in a form definition.
type SchemaIssue struct {
	Index   int    // position of the field in the authored list, -1 for list-level issues
	Path    string // attribute the issue refers to, e.g. "fieldKey"
	Message string
}

func (i SchemaIssue) String() string {
	if i.Index < 0 {
		return fmt.Sprintf("%s: %s", i.Path, i.Message)
	}
	return fmt.Sprintf("formFields[%d].%s: %s", i.Index, i.Path, i.Message)
}

// ValidateSchema checks authored field definitions the way the content studio
// does before publishing. It does not change render-time behavior.
func ValidateSchema(descriptors []FieldDescriptor) []SchemaIssue {
	var issues []SchemaIssue

	if len(descriptors) == 0 {
		issues = append(issues, SchemaIssue{Index: -1, Path: "formFields", Message: "Add at least one form field."})
		return issues
	}

	keys := make([]string, len(descriptors))
	for i, d := range descriptors {
		keys[i] = NormalizeFieldKey(d.FieldKey)
	}

	for i, d := range descriptors {
		key := keys[i]
		switch {
		case strings.TrimSpace(d.FieldKey) == "":
			issues = append(issues, SchemaIssue{Index: i, Path: "fieldKey", Message: "Field name is required."})
		case key == "":
			msg := "Field name must contain letters or numbers."
			if suggestion := SuggestFieldKey(d.FieldKey); suggestion != "" {
				msg = fmt.Sprintf("Field name must contain letters or numbers; try %q.", suggestion)
			}
			issues = append(issues, SchemaIssue{Index: i, Path: "fieldKey", Message: msg})
		case IsReservedKey(key):
			issues = append(issues, SchemaIssue{Index: i, Path: "fieldKey", Message: "Field name is reserved for form processing."})
		case keyUsedElsewhere(keys, i):
			issues = append(issues, SchemaIssue{Index: i, Path: "fieldKey", Message: "Field name must be unique."})
		}

		label := strings.TrimSpace(d.Label)
		if label == "" {
			issues = append(issues, SchemaIssue{Index: i, Path: "label", Message: "Label is required."})
		} else if utf8.RuneCountInString(label) > MaxLabelLength {
			issues = append(issues, SchemaIssue{
				Index:   i,
				Path:    "label",
				Message: fmt.Sprintf("Label must be at most %d characters.", MaxLabelLength),
			})
		}

		if d.Type.HasOptions() {
			if msg := validateOptions(d.Options); msg != "" {
				issues = append(issues, SchemaIssue{Index: i, Path: "options", Message: msg})
			}
		}
	}

	return issues
}

// SuggestFieldKey transliterates s to ASCII before normalizing it, giving
// authors a usable key for names written in other scripts.
func SuggestFieldKey(s string) string {
	return NormalizeFieldKey(unidecode.Unidecode(s))
}

// ValidateThankYou checks the optional registration thank-you content.
func ValidateThankYou(t *ThankYou) []SchemaIssue {
	if t == nil {
		return nil
	}
	var issues []SchemaIssue
	title := strings.TrimSpace(t.Title)
	switch {
	case title == "":
		issues = append(issues, SchemaIssue{Index: -1, Path: "thankYou.title", Message: "Title is required."})
	case utf8.RuneCountInString(title) > MaxThankYouTitleLength:
		issues = append(issues, SchemaIssue{
			Index:   -1,
			Path:    "thankYou.title",
			Message: fmt.Sprintf("Title must be at most %d characters.", MaxThankYouTitleLength),
		})
	}
	msg := strings.TrimSpace(t.Message)
	switch {
	case msg == "":
		issues = append(issues, SchemaIssue{Index: -1, Path: "thankYou.message", Message: "Message is required."})
	case utf8.RuneCountInString(msg) > MaxThankYouMessageLength:
		issues = append(issues, SchemaIssue{
			Index:   -1,
			Path:    "thankYou.message",
			Message: fmt.Sprintf("Message must be at most %d characters.", MaxThankYouMessageLength),
		})
	}
	return issues
}

func keyUsedElsewhere(keys []string, idx int) bool {
	for i, k := range keys {
		if i != idx && k != "" && k == keys[idx] {
			return true
		}
	}
	return false
}

func validateOptions(options []string) string {
	seen := make(map[string]struct{}, len(options))
	count := 0
	for _, opt := range options {
		opt = strings.TrimSpace(opt)
		if opt == "" {
			continue
		}
		count++
		lower := strings.ToLower(opt)
		if _, dup := seen[lower]; dup {
			return "Options must be unique."
		}
		seen[lower] = struct{}{}
	}
	if count == 0 {
		return "Add at least one option."
	}
	return ""
}
