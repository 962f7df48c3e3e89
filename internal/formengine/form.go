// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package formengine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"
)

// DefaultSubmitTimeout bounds a single transport call.
const DefaultSubmitTimeout = 15 * time.Second

var (
	// ErrValidation is returned by Submit when the current values do not
	// pass validation. No transport call is made.
	ErrValidation = errors.New("form validation failed")
	// ErrSubmitTimeout is returned when the transport does not answer within
	// the submit timeout.
	ErrSubmitTimeout = errors.New("form submission timed out")
)

var dateRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Messages holds the user-facing texts of a form.
type Messages struct {
	SuccessTitle    string
	SuccessMessage  string
	Failure         string
	SubmitLabel     string
	SubmittingLabel string
}

// FieldError is a validation message attached to a field.
type FieldError struct {
	Message   string
	ElementID string   // id of the element that displays Message
	Rule      string   // name of the cross-field rule that raised it, if any
	Fields    []string // keys covered by Rule
}

// FieldList returns the keys covered by the rule, space separated.
func (e FieldError) FieldList() string { return strings.Join(e.Fields, " ") }

// Option configures a Form.
type Option func(*Form)

// WithRules adds cross-field rules.
func WithRules(rules ...Rule) Option {
	return func(f *Form) {
		f.rules = append(f.rules, rules...)
	}
}

// WithMessages sets the form texts.
func WithMessages(m Messages) Option {
	return func(f *Form) {
		f.messages = m
	}
}

// WithSubmitTimeout bounds each transport call. Non-positive values keep the default.
func WithSubmitTimeout(d time.Duration) Option {
	return func(f *Form) {
		if d > 0 {
			f.submitTimeout = d
		}
	}
}

// WithLogger sets the logger submission failures are reported to.
func WithLogger(l *slog.Logger) Option {
	return func(f *Form) {
		if l != nil {
			f.logger = l
		}
	}
}

// Form is one instance of a rendered form: its fields, the values entered
// so far, validation errors and the submission lifecycle.
type Form struct {
	name          string
	fields        []NormalizedField
	index         map[string]int
	rules         []Rule
	messages      Messages
	submitTimeout time.Duration
	logger        *slog.Logger

	machine Machine

	mu          sync.RWMutex
	values      map[string]string
	fieldErrors map[string]FieldError
	ruleErrors  map[string]FieldError
}

// New creates an idle form named name. The name is sent as form-name with
// every submission. Fields are expected to carry unique keys; when they do
// not, the first field with a key is the one values bind to.
func New(name string, fields []NormalizedField, opts ...Option) *Form {
	f := &Form{
		name:          name,
		fields:        fields,
		index:         make(map[string]int, len(fields)),
		submitTimeout: DefaultSubmitTimeout,
		logger:        slog.Default(),
		values:        make(map[string]string),
		fieldErrors:   make(map[string]FieldError),
		ruleErrors:    make(map[string]FieldError),
	}
	for i, field := range fields {
		if _, exists := f.index[field.Key]; !exists {
			f.index[field.Key] = i
		}
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Name returns the form-name value.
func (f *Form) Name() string { return f.name }

// Fields returns the form fields in authoring order.
func (f *Form) Fields() []NormalizedField {
	out := make([]NormalizedField, len(f.fields))
	copy(out, f.fields)
	return out
}

// Field returns the field with the given key.
func (f *Form) Field(key string) (NormalizedField, bool) {
	i, ok := f.index[key]
	if !ok {
		return NormalizedField{}, false
	}
	return f.fields[i], true
}

// Messages returns the form texts.
func (f *Form) Messages() Messages { return f.messages }

// Rules returns the cross-field rules.
func (f *Form) Rules() []Rule { return f.rules }

// Status returns the submission state.
func (f *Form) Status() Status { return f.machine.Status() }

// Err returns the cause of the last failed submission.
func (f *Form) Err() error { return f.machine.Err() }

// ShowCaptcha reports whether the CAPTCHA placeholder belongs in the view.
// It disappears once a submission succeeded.
func (f *Form) ShowCaptcha() bool { return f.machine.Status() != StatusSuccess }

// Value returns the current value of key.
func (f *Form) Value(key string) string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.values[key]
}

// Checked reports whether the checkbox key is checked.
func (f *Form) Checked(key string) bool {
	return f.Value(key) == CheckboxCheckedVal
}

// Values returns a copy of the current values.
func (f *Form) Values() map[string]string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make(map[string]string, len(f.values))
	for k, v := range f.values {
		out[k] = v
	}
	return out
}

// Set records the value of a field as the user edits it. Unknown keys are
// ignored and reported with false. Errors already shown for the field, and
// for rules covering it, are re-checked so they clear as soon as the input
// satisfies them.
func (f *Form) Set(key, value string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	field, ok := f.Field(key)
	if !ok {
		return false
	}
	f.store(field, value)

	if fe, had := f.fieldErrors[key]; had && fe.Rule == "" {
		if msg := f.checkField(field); msg == "" {
			delete(f.fieldErrors, key)
		} else {
			fe.Message = msg
			f.fieldErrors[key] = fe
		}
	}
	f.recheckRules(key)
	return true
}

// SetChecked checks or unchecks a checkbox field.
func (f *Form) SetChecked(key string, checked bool) bool {
	if checked {
		return f.Set(key, CheckboxCheckedVal)
	}
	return f.Set(key, "")
}

// Bind loads posted values into the form. Values are trimmed; when a key
// was posted several times the last value wins.
func (f *Form) Bind(posted url.Values) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, field := range f.fields {
		var v string
		if raw := posted[field.Key]; len(raw) > 0 {
			v = strings.TrimSpace(raw[len(raw)-1])
		}
		f.store(field, v)
	}
}

// Validate checks required fields, field formats and cross-field rules,
// replacing the previous errors. It reports whether the form is valid.
func (f *Form) Validate() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.fieldErrors = make(map[string]FieldError)
	f.ruleErrors = make(map[string]FieldError)

	for _, field := range f.fields {
		if _, done := f.fieldErrors[field.Key]; done {
			continue
		}
		if msg := f.checkField(field); msg != "" {
			f.fieldErrors[field.Key] = FieldError{Message: msg, ElementID: DerivedID(field.Key, "error")}
		}
	}

	for _, rule := range f.rules {
		if rule.Satisfied(f.valueLocked) {
			continue
		}
		fe := FieldError{Message: rule.Message, ElementID: rule.ErrorID, Rule: rule.Name, Fields: rule.Fields}
		f.ruleErrors[rule.Name] = fe
		for _, key := range rule.Fields {
			if _, exists := f.fieldErrors[key]; !exists {
				f.fieldErrors[key] = fe
			}
		}
	}

	return len(f.fieldErrors) == 0 && len(f.ruleErrors) == 0
}

// FieldError returns the error shown for key.
func (f *Form) FieldError(key string) (FieldError, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	fe, ok := f.fieldErrors[key]
	return fe, ok
}

// Errors returns a copy of the field errors.
func (f *Form) Errors() map[string]FieldError {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make(map[string]FieldError, len(f.fieldErrors))
	for k, v := range f.fieldErrors {
		out[k] = v
	}
	return out
}

// RuleErrors returns the failing cross-field rules in declaration order.
func (f *Form) RuleErrors() []FieldError {
	f.mu.RLock()
	defer f.mu.RUnlock()
	var out []FieldError
	for _, rule := range f.rules {
		if fe, ok := f.ruleErrors[rule.Name]; ok {
			out = append(out, fe)
		}
	}
	return out
}

// RuleError returns the error of the named rule, if it is failing.
func (f *Form) RuleError(name string) (FieldError, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	fe, ok := f.ruleErrors[name]
	return fe, ok
}

// Payload serializes the form: form-name first, then every field with a
// non-blank value in authoring order. Unchecked checkboxes are absent.
func (f *Form) Payload() Payload {
	f.mu.RLock()
	defer f.mu.RUnlock()

	p := make(Payload, 0, len(f.fields)+1)
	p.Add(FormNameKey, f.name)
	for i, field := range f.fields {
		if f.index[field.Key] != i {
			continue
		}
		v := f.values[field.Key]
		if strings.TrimSpace(v) == "" {
			continue
		}
		p.Add(field.Key, v)
	}
	return p
}

// Reset clears every value and error, like resetting the native form.
func (f *Form) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values = make(map[string]string)
	f.fieldErrors = make(map[string]FieldError)
	f.ruleErrors = make(map[string]FieldError)
}

// Submit validates the form and hands its payload to t.
//
// Invalid forms return ErrValidation without calling t and without changing
// the submission state. A form that is already submitting returns
// ErrSubmissionInFlight. On success all values are cleared; on failure they
// are kept so the visitor can retry.
func (f *Form) Submit(ctx context.Context, t Transport) error {
	if !f.Validate() {
		return ErrValidation
	}
	if err := f.machine.Begin(); err != nil {
		return err
	}

	payload := f.Payload()

	submitCtx, cancel := context.WithTimeout(ctx, f.submitTimeout)
	defer cancel()

	err := t.Submit(submitCtx, payload)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			err = fmt.Errorf("%w after %s: %w", ErrSubmitTimeout, f.submitTimeout, err)
		}
		f.logger.Error("form submission failed",
			"form", f.name,
			"error", err,
		)
		_ = f.machine.Fail(err)
		return fmt.Errorf("submitting %s form: %w", f.name, err)
	}

	f.Reset()
	_ = f.machine.Succeed()
	f.logger.Info("form submitted", "form", f.name, "fields", len(payload)-1)
	return nil
}

// store records value for field, normalizing checkbox and choice values.
// Caller holds f.mu.
func (f *Form) store(field NormalizedField, value string) {
	key := field.Key
	switch field.Type {
	case FieldCheckbox:
		if strings.TrimSpace(value) == "" {
			delete(f.values, key)
			return
		}
		f.values[key] = CheckboxCheckedVal
	case FieldSelect, FieldRadio:
		if value == "" || !field.HasOption(value) {
			delete(f.values, key)
			return
		}
		f.values[key] = value
	case FieldText, FieldTextarea, FieldEmail, FieldPhone, FieldDate:
		if value == "" {
			delete(f.values, key)
			return
		}
		f.values[key] = value
	}
}

// checkField returns the validation message for a single field, or "".
// Caller holds f.mu.
func (f *Form) checkField(field NormalizedField) string {
	v := strings.TrimSpace(f.values[field.Key])
	if v == "" {
		if field.Required {
			return requiredMessage(field)
		}
		return ""
	}

	switch field.Type {
	case FieldEmail:
		if !isValidEmail(v) {
			return "Please enter a valid email address"
		}
	case FieldDate:
		if !isValidDate(v) {
			return "Please enter a valid date"
		}
	case FieldText, FieldTextarea, FieldPhone, FieldSelect, FieldRadio, FieldCheckbox:
	}
	return ""
}

// recheckRules clears failing rules covering key that now hold.
// Caller holds f.mu.
func (f *Form) recheckRules(key string) {
	for _, rule := range f.rules {
		if !rule.covers(key) {
			continue
		}
		if _, failing := f.ruleErrors[rule.Name]; !failing {
			continue
		}
		if !rule.Satisfied(f.valueLocked) {
			continue
		}
		delete(f.ruleErrors, rule.Name)
		for _, k := range rule.Fields {
			if fe, ok := f.fieldErrors[k]; ok && fe.Rule == rule.Name {
				delete(f.fieldErrors, k)
			}
		}
	}
}

// valueLocked reads a value while f.mu is held.
func (f *Form) valueLocked(key string) string {
	return f.values[key]
}

func requiredMessage(field NormalizedField) string {
	label := strings.TrimSpace(field.Label)
	if label == "" {
		label = field.Key
	}
	switch field.Type {
	case FieldCheckbox:
		return fmt.Sprintf("%s must be checked", label)
	case FieldSelect, FieldRadio:
		return fmt.Sprintf("Please choose an option for %s", label)
	case FieldText, FieldTextarea, FieldEmail, FieldPhone, FieldDate:
	}
	return fmt.Sprintf("%s is required", label)
}

// isValidEmail checks if the email is valid.
func isValidEmail(email string) bool {
	_, err := mail.ParseAddress(email)
	return err == nil
}

// isValidDate checks if the date is valid (YYYY-MM-DD format).
func isValidDate(date string) bool {
	if !dateRegex.MatchString(date) {
		return false
	}
	_, err := time.Parse("2006-01-02", date)
	return err == nil
}
