// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package formengine

import "strings"

// RegistrationFormName is the form-name of the registration form.
const RegistrationFormName = "registration"

// Registration view messages.
const (
	AwaitingDraftMessage = "Loading draft form fields..."
	EmptySchemaMessage   = "Form fields are empty. Please add fields in the Register Page document."
)

// ThankYou is the CMS-authored success content of the registration form.
type ThankYou struct {
	Title   string `json:"title" yaml:"title"`
	Message string `json:"message" yaml:"message"`
}

// RegistrationMessages are the default texts of the registration form.
var RegistrationMessages = Messages{
	SuccessTitle:    "Thank you for registering.",
	SuccessMessage:  "We'll reach out within 24 hours to confirm next steps.",
	Failure:         "We couldn't submit your registration. Please try again or contact us directly.",
	SubmitLabel:     "Submit Registration",
	SubmittingLabel: "Submitting...",
}

// ViewState decides what the registration section shows.
type ViewState int

// View states layered over the submission lifecycle.
const (
	ViewForm ViewState = iota
	ViewAwaitingDraft
	ViewEmptySchema
)

func (v ViewState) String() string {
	switch v {
	case ViewForm:
		return "form"
	case ViewAwaitingDraft:
		return "awaiting-draft"
	case ViewEmptySchema:
		return "empty-schema"
	}
	return "unknown"
}

// Registration is the registration form together with its view state.
// Form is nil unless View is ViewForm.
type Registration struct {
	View    ViewState
	Form    *Form
	Dropped []DroppedField
}

// NewRegistrationForm builds the registration form from CMS field definitions.
//
// A nil fields slice means the document has no field list yet; in preview
// that is a draft still loading. An empty or fully degenerate list yields
// ViewEmptySchema. Thank-you content overrides the default success texts
// when present.
func NewRegistrationForm(fields []FieldDescriptor, preview bool, thanks *ThankYou, opts ...Option) Registration {
	if fields == nil && preview {
		return Registration{View: ViewAwaitingDraft}
	}

	res := NormalizeFields(fields)
	if len(res.Fields) == 0 {
		return Registration{View: ViewEmptySchema, Dropped: res.Dropped}
	}

	msgs := RegistrationMessages
	if thanks != nil {
		if t := strings.TrimSpace(thanks.Title); t != "" {
			msgs.SuccessTitle = t
		}
		if m := strings.TrimSpace(thanks.Message); m != "" {
			msgs.SuccessMessage = m
		}
	}

	base := []Option{WithMessages(msgs)}
	return Registration{
		View:    ViewForm,
		Form:    New(RegistrationFormName, res.Fields, append(base, opts...)...),
		Dropped: res.Dropped,
	}
}
