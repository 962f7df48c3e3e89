// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package formengine

import "context"

// Transport delivers a submission payload to a form backend. A nil error
// means the backend accepted the submission; anything else is a failure.
// Backend specifics such as honeypot or CAPTCHA fields belong to the
// Transport implementation, not to the form.
type Transport interface {
	Submit(ctx context.Context, p Payload) error
}

// TransportFunc adapts a function to the Transport interface.
type TransportFunc func(ctx context.Context, p Payload) error

// Submit calls f(ctx, p).
func (f TransportFunc) Submit(ctx context.Context, p Payload) error {
	return f(ctx, p)
}
