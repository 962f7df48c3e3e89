// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package formengine renders, validates and submits CMS-defined forms.
//
// Field definitions arrive from the CMS as free-text descriptors. They are
// normalized into stable input keys, bound to posted values, validated and
// serialized into an ordered URL-encoded payload that a Transport delivers
// to the form backend.
package formengine

import (
	"errors"
	"fmt"
	"strings"
)

// FieldType is the closed set of input controls a form field can render as.
type FieldType int

// Field types, in the order the CMS lists them.
const (
	FieldText FieldType = iota
	FieldTextarea
	FieldEmail
	FieldPhone
	FieldDate
	FieldSelect
	FieldRadio
	FieldCheckbox
)

// ErrUnknownFieldType is returned by ParseFieldType for unsupported type names.
var ErrUnknownFieldType = errors.New("unknown field type")

// AllFieldTypes returns every field type.
func AllFieldTypes() []FieldType {
	return []FieldType{
		FieldText,
		FieldTextarea,
		FieldEmail,
		FieldPhone,
		FieldDate,
		FieldSelect,
		FieldRadio,
		FieldCheckbox,
	}
}

// ParseFieldType maps a CMS type name to a FieldType.
func ParseFieldType(s string) (FieldType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text":
		return FieldText, nil
	case "textarea":
		return FieldTextarea, nil
	case "email":
		return FieldEmail, nil
	case "tel", "phone":
		return FieldPhone, nil
	case "date":
		return FieldDate, nil
	case "select":
		return FieldSelect, nil
	case "radio":
		return FieldRadio, nil
	case "checkbox":
		return FieldCheckbox, nil
	}
	return FieldText, fmt.Errorf("%w: %q", ErrUnknownFieldType, s)
}

// String returns the CMS name of the type.
func (t FieldType) String() string {
	switch t {
	case FieldText:
		return "text"
	case FieldTextarea:
		return "textarea"
	case FieldEmail:
		return "email"
	case FieldPhone:
		return "tel"
	case FieldDate:
		return "date"
	case FieldSelect:
		return "select"
	case FieldRadio:
		return "radio"
	case FieldCheckbox:
		return "checkbox"
	}
	return fmt.Sprintf("FieldType(%d)", int(t))
}

// InputType returns the HTML input type attribute for single-line controls.
// Multi-line and choice controls return an empty string.
func (t FieldType) InputType() string {
	switch t {
	case FieldText:
		return "text"
	case FieldEmail:
		return "email"
	case FieldPhone:
		return "tel"
	case FieldDate:
		return "date"
	case FieldTextarea, FieldSelect, FieldRadio, FieldCheckbox:
		return ""
	}
	return ""
}

// IsFullWidth reports whether the control spans both grid columns.
func (t FieldType) IsFullWidth() bool {
	switch t {
	case FieldTextarea, FieldRadio, FieldCheckbox:
		return true
	case FieldText, FieldEmail, FieldPhone, FieldDate, FieldSelect:
		return false
	}
	return false
}

// HasOptions reports whether the type is a choice among authored options.
func (t FieldType) HasOptions() bool {
	return t == FieldSelect || t == FieldRadio
}

// AcceptsPlaceholder reports whether the CMS exposes a placeholder for the type.
func (t FieldType) AcceptsPlaceholder() bool {
	switch t {
	case FieldText, FieldTextarea, FieldEmail, FieldPhone, FieldDate:
		return true
	case FieldSelect, FieldRadio, FieldCheckbox:
		return false
	}
	return false
}

// FieldDescriptor is one author-supplied form input definition.
type FieldDescriptor struct {
	FieldKey    string
	Label       string
	Type        FieldType
	Required    bool
	Options     []string
	Placeholder string
	HelpText    string
}

// KeySource returns the string the normalized key is derived from:
// FieldKey when set, Label otherwise.
func (d FieldDescriptor) KeySource() string {
	if d.FieldKey != "" {
		return d.FieldKey
	}
	return d.Label
}

// HasOption reports whether v is one of the descriptor's options.
func (d FieldDescriptor) HasOption(v string) bool {
	for _, opt := range d.Options {
		if opt == v {
			return true
		}
	}
	return false
}

// NormalizedField is a descriptor with its derived input key.
// Key is used as the HTML id/name and as the payload key.
type NormalizedField struct {
	FieldDescriptor
	Key string
}
