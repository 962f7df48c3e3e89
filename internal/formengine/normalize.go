// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package formengine

import (
	"regexp"
	"strings"
)

// Keys owned by the submission transport. Authored fields never use them.
const (
	FormNameKey        = "form-name"
	HoneypotKey        = "bot-field"
	RecaptchaKey       = "g-recaptcha-response"
	HCaptchaKey        = "h-captcha-response"
	CheckboxCheckedVal = "yes"
)

var (
	// separatorRun matches runs of whitespace (including vertical tab and Unicode spaces) and underscores
	separatorRun = regexp.MustCompile(`[_\s\v\p{Z}\x{FEFF}]+`)
	// disallowedKeyChars matches anything outside lowercase ASCII letters, digits and hyphens
	disallowedKeyChars = regexp.MustCompile(`[^a-z0-9-]`)
	// hyphenRun matches two or more consecutive hyphens
	hyphenRun = regexp.MustCompile(`-{2,}`)
)

// ReservedKeys returns the keys the transport reserves for itself.
func ReservedKeys() []string {
	return []string{FormNameKey, HoneypotKey, RecaptchaKey, HCaptchaKey}
}

// IsReservedKey reports whether key is reserved for form processing.
func IsReservedKey(key string) bool {
	for _, k := range ReservedKeys() {
		if k == key {
			return true
		}
	}
	return false
}

// NormalizeFieldKey converts an authored field name into an HTML-safe key.
// An empty result means the field cannot be rendered.
func NormalizeFieldKey(s string) string {
	result := strings.ToLower(s)
	result = strings.TrimSpace(result)
	result = separatorRun.ReplaceAllString(result, "-")
	result = disallowedKeyChars.ReplaceAllString(result, "")
	result = hyphenRun.ReplaceAllString(result, "-")
	return strings.Trim(result, "-")
}

// DerivedID returns the id of an element that belongs to the field key,
// such as its error message or one of its options. Normalized keys never
// contain underscores, so a derived id cannot equal another field's key.
func DerivedID(key, suffix string) string {
	return key + "__" + suffix
}

// DropReason explains why a descriptor was left out of the rendered form.
type DropReason string

// Drop reasons reported by NormalizeFields.
const (
	DropEmptyKey     DropReason = "empty key"
	DropDuplicateKey DropReason = "duplicate key"
	DropReservedKey  DropReason = "reserved key"
)

// DroppedField is a descriptor NormalizeFields refused to render.
type DroppedField struct {
	Descriptor FieldDescriptor
	Key        string
	Reason     DropReason
}

// NormalizeResult holds the usable fields in authoring order and the dropped ones.
type NormalizeResult struct {
	Fields  []NormalizedField
	Dropped []DroppedField
}

// NormalizeFields derives keys for descriptors and filters out the ones that
// cannot be rendered. When two descriptors share a key the first one wins.
func NormalizeFields(descriptors []FieldDescriptor) NormalizeResult {
	res := NormalizeResult{
		Fields: make([]NormalizedField, 0, len(descriptors)),
	}
	seen := make(map[string]struct{}, len(descriptors))

	for _, d := range descriptors {
		key := NormalizeFieldKey(d.KeySource())
		switch {
		case key == "":
			res.Dropped = append(res.Dropped, DroppedField{Descriptor: d, Reason: DropEmptyKey})
			continue
		case IsReservedKey(key):
			res.Dropped = append(res.Dropped, DroppedField{Descriptor: d, Key: key, Reason: DropReservedKey})
			continue
		}
		if _, dup := seen[key]; dup {
			res.Dropped = append(res.Dropped, DroppedField{Descriptor: d, Key: key, Reason: DropDuplicateKey})
			continue
		}
		seen[key] = struct{}{}
		res.Fields = append(res.Fields, NormalizedField{FieldDescriptor: d, Key: key})
	}

	return res
}
