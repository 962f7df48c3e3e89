// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package formengine

// Contact form constants.
const (
	ContactFormName       = "contact"
	EmailOrPhoneRule      = "email-or-phone"
	ContactMethodErrorID  = "contact-method-error"
	ContactMethodRequired = "Please provide an email or phone number."
)

// ContactMessages are the texts of the contact form.
var ContactMessages = Messages{
	SuccessTitle:    "Thanks for reaching out.",
	SuccessMessage:  "We will respond within one business day.",
	Failure:         "We could not send your message. Please try again or contact us directly.",
	SubmitLabel:     "Send Message",
	SubmittingLabel: "Sending...",
}

// ContactFields returns the fixed contact form fields.
func ContactFields() []NormalizedField {
	return []NormalizedField{
		{Key: "name", FieldDescriptor: FieldDescriptor{FieldKey: "name", Label: "Name", Type: FieldText, Required: true}},
		{Key: "email", FieldDescriptor: FieldDescriptor{FieldKey: "email", Label: "Email", Type: FieldEmail}},
		{Key: "phone", FieldDescriptor: FieldDescriptor{FieldKey: "phone", Label: "Phone", Type: FieldPhone}},
		{Key: "message", FieldDescriptor: FieldDescriptor{FieldKey: "message", Label: "Message", Type: FieldTextarea, Required: true}},
	}
}

// EmailOrPhone requires at least one way to reach the visitor.
func EmailOrPhone() Rule {
	return AtLeastOne(EmailOrPhoneRule, ContactMethodErrorID, ContactMethodRequired, "email", "phone")
}

// NewContactForm creates a contact form instance.
func NewContactForm(opts ...Option) *Form {
	base := []Option{WithMessages(ContactMessages), WithRules(EmailOrPhone())}
	return New(ContactFormName, ContactFields(), append(base, opts...)...)
}
