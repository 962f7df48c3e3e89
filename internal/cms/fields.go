// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cms

import (
	"log/slog"

	"github.com/olegiv/reclaim-go/internal/formengine"
)

// FormField is a registration field definition as authored in the CMS.
type FormField struct {
	FieldKey    string   `json:"fieldKey" yaml:"fieldKey"`
	Label       string   `json:"label" yaml:"label"`
	Type        string   `json:"type" yaml:"type"`
	Required    bool     `json:"required,omitempty" yaml:"required,omitempty"`
	Placeholder string   `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	HelpText    string   `json:"helpText,omitempty" yaml:"helpText,omitempty"`
	Options     []string `json:"options,omitempty" yaml:"options,omitempty"`
}

// Descriptor converts the authored field. Unknown types become text inputs;
// the returned error reports the fallback.
func (f FormField) Descriptor() (formengine.FieldDescriptor, error) {
	ft, err := formengine.ParseFieldType(f.Type)
	return formengine.FieldDescriptor{
		FieldKey:    f.FieldKey,
		Label:       f.Label,
		Type:        ft,
		Required:    f.Required,
		Options:     f.Options,
		Placeholder: f.Placeholder,
		HelpText:    f.HelpText,
	}, err
}

// FieldDescriptors converts the page's form fields, keeping the nil/empty
// distinction of FormFields.
func (p *RegisterPage) FieldDescriptors(logger *slog.Logger) []formengine.FieldDescriptor {
	if p == nil || p.FormFields == nil {
		return nil
	}
	out := make([]formengine.FieldDescriptor, 0, len(p.FormFields))
	for _, f := range p.FormFields {
		d, err := f.Descriptor()
		if err != nil {
			logger.Warn("unknown form field type, rendering as text",
				"category", "content",
				"field", f.FieldKey,
				"type", f.Type,
			)
		}
		out = append(out, d)
	}
	return out
}
