// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package formengine

import (
	"fmt"
	"net/url"
	"strings"
)

// Pair is one key/value entry of a submission.
type Pair struct {
	Key   string
	Value string
}

// Payload is an ordered list of submission entries. Keys may repeat; readers
// resolve repeats the way same-name form fields resolve, last one wins.
type Payload []Pair

// Add appends an entry.
func (p *Payload) Add(key, value string) {
	*p = append(*p, Pair{Key: key, Value: value})
}

// Get returns the last value for key, or "" if absent.
func (p Payload) Get(key string) string {
	for i := len(p) - 1; i >= 0; i-- {
		if p[i].Key == key {
			return p[i].Value
		}
	}
	return ""
}

// Has reports whether key is present.
func (p Payload) Has(key string) bool {
	for _, pair := range p {
		if pair.Key == key {
			return true
		}
	}
	return false
}

// Keys returns the distinct keys in first-seen order.
func (p Payload) Keys() []string {
	seen := make(map[string]struct{}, len(p))
	keys := make([]string, 0, len(p))
	for _, pair := range p {
		if _, ok := seen[pair.Key]; ok {
			continue
		}
		seen[pair.Key] = struct{}{}
		keys = append(keys, pair.Key)
	}
	return keys
}

// Map collapses the payload into a map, last value wins.
func (p Payload) Map() map[string]string {
	m := make(map[string]string, len(p))
	for _, pair := range p {
		m[pair.Key] = pair.Value
	}
	return m
}

// Values converts the payload to url.Values.
func (p Payload) Values() url.Values {
	v := make(url.Values, len(p))
	for _, pair := range p {
		v.Add(pair.Key, pair.Value)
	}
	return v
}

// Encode serializes the payload as application/x-www-form-urlencoded,
// preserving entry order.
func (p Payload) Encode() string {
	var sb strings.Builder
	for i, pair := range p {
		if i > 0 {
			sb.WriteByte('&')
		}
		sb.WriteString(url.QueryEscape(pair.Key))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(pair.Value))
	}
	return sb.String()
}

// ParsePayload decodes an application/x-www-form-urlencoded body, keeping
// entry order. Empty segments are skipped.
func ParsePayload(body string) (Payload, error) {
	var p Payload
	for _, segment := range strings.Split(body, "&") {
		if segment == "" {
			continue
		}
		rawKey, rawValue, _ := strings.Cut(segment, "=")
		key, err := url.QueryUnescape(rawKey)
		if err != nil {
			return nil, fmt.Errorf("decoding key %q: %w", rawKey, err)
		}
		value, err := url.QueryUnescape(rawValue)
		if err != nil {
			return nil, fmt.Errorf("decoding value for %q: %w", key, err)
		}
		p.Add(key, value)
	}
	return p, nil
}
