// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package render

import (
	"strconv"
	"strings"

	"github.com/olegiv/reclaim-go/internal/formengine"
)

// Field template names defined in partials/fields.html.
const (
	TemplateInput    = "field-input"
	TemplateTextarea = "field-textarea"
	TemplateSelect   = "field-select"
	TemplateRadio    = "field-radio"
	TemplateCheckbox = "field-checkbox"
)

// FormView is the template model of one form instance.
type FormView struct {
	Name           string
	Action         string
	Fields         []FieldView
	Status         formengine.Status
	Messages       formengine.Messages
	RuleErrors     []formengine.FieldError
	ShowCaptcha    bool
	CaptchaSiteKey string
}

// NewFormView snapshots f for rendering. action is the URL the browser
// posts the form to.
func NewFormView(f *formengine.Form, action, captchaSiteKey string) FormView {
	v := FormView{
		Name:           f.Name(),
		Action:         action,
		Status:         f.Status(),
		Messages:       f.Messages(),
		RuleErrors:     f.RuleErrors(),
		ShowCaptcha:    f.ShowCaptcha(),
		CaptchaSiteKey: captchaSiteKey,
	}
	for _, field := range f.Fields() {
		v.Fields = append(v.Fields, newFieldView(f, field))
	}
	return v
}

// Submitting reports whether a submission is in flight.
func (v FormView) Submitting() bool { return v.Status == formengine.StatusSubmitting }

// Succeeded reports whether the last submission was accepted.
func (v FormView) Succeeded() bool { return v.Status == formengine.StatusSuccess }

// Failed reports whether the last submission failed.
func (v FormView) Failed() bool { return v.Status == formengine.StatusError }

// SubmitText is the label of the submit button for the current status.
func (v FormView) SubmitText() string {
	if v.Submitting() {
		return v.Messages.SubmittingLabel
	}
	return v.Messages.SubmitLabel
}

// FieldView is the template model of one input control.
type FieldView struct {
	Key         string
	Label       string
	Type        formengine.FieldType
	Required    bool
	Placeholder string
	HelpText    string
	Value       string
	Checked     bool
	Options     []OptionView
	Error       *formengine.FieldError
}

// OptionView is one choice of a select or radio control.
type OptionView struct {
	ID       string
	Value    string
	Selected bool
	Required bool
}

func newFieldView(f *formengine.Form, field formengine.NormalizedField) FieldView {
	v := FieldView{
		Key:         field.Key,
		Label:       field.Label,
		Type:        field.Type,
		Required:    field.Required,
		Placeholder: field.Placeholder,
		HelpText:    field.HelpText,
		Value:       f.Value(field.Key),
		Checked:     f.Checked(field.Key),
	}
	if fe, ok := f.FieldError(field.Key); ok {
		v.Error = &fe
	}
	if field.Type.HasOptions() {
		for i, opt := range field.Options {
			v.Options = append(v.Options, OptionView{
				ID:       formengine.DerivedID(field.Key, strconv.Itoa(i)),
				Value:    opt,
				Selected: opt == v.Value,
				// radio groups carry required on the first option only
				Required: field.Required && i == 0,
			})
		}
	}
	return v
}

// Template returns the name of the template that renders the control.
func (v FieldView) Template() string {
	switch v.Type {
	case formengine.FieldText, formengine.FieldEmail, formengine.FieldPhone, formengine.FieldDate:
		return TemplateInput
	case formengine.FieldTextarea:
		return TemplateTextarea
	case formengine.FieldSelect:
		return TemplateSelect
	case formengine.FieldRadio:
		return TemplateRadio
	case formengine.FieldCheckbox:
		return TemplateCheckbox
	}
	return TemplateInput
}

// InputType is the type attribute of single-line inputs.
func (v FieldView) InputType() string {
	if t := v.Type.InputType(); t != "" {
		return t
	}
	return "text"
}

// FullWidth reports whether the control spans both grid columns.
func (v FieldView) FullWidth() bool { return v.Type.IsFullWidth() }

// Invalid reports whether the field currently has an error.
func (v FieldView) Invalid() bool { return v.Error != nil }

// HelpID is the id of the help text element.
func (v FieldView) HelpID() string { return formengine.DerivedID(v.Key, "help") }

// DescribedBy lists the ids of the elements describing the control.
func (v FieldView) DescribedBy() string {
	var ids []string
	if v.HelpText != "" {
		ids = append(ids, v.HelpID())
	}
	if v.Error != nil {
		ids = append(ids, v.Error.ElementID)
	}
	return strings.Join(ids, " ")
}

// OwnError reports whether the field's error is displayed next to the field
// rather than in a shared rule error element.
func (v FieldView) OwnError() bool { return v.Error != nil && v.Error.Rule == "" }

// RegistrationView is the template model of the registration section.
type RegistrationView struct {
	View    formengine.ViewState
	Form    *FormView
	Message string
}

// NewRegistrationView builds the registration section model.
func NewRegistrationView(reg formengine.Registration, action, captchaSiteKey string) RegistrationView {
	switch reg.View {
	case formengine.ViewAwaitingDraft:
		return RegistrationView{View: reg.View, Message: formengine.AwaitingDraftMessage}
	case formengine.ViewEmptySchema:
		return RegistrationView{View: reg.View, Message: formengine.EmptySchemaMessage}
	case formengine.ViewForm:
		fv := NewFormView(reg.Form, action, captchaSiteKey)
		return RegistrationView{View: reg.View, Form: &fv}
	}
	return RegistrationView{View: formengine.ViewEmptySchema, Message: formengine.EmptySchemaMessage}
}
