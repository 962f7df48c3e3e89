// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package formbackend

import "context"

type ctxKey int

const (
	clientKey ctxKey = iota
	transportFieldsKey
)

// Client identifies who sent a submission.
type Client struct {
	IP        string
	UserAgent string
}

// TransportFields are the posted values a transport owns: the honeypot and
// the CAPTCHA response. Forms never see them.
type TransportFields struct {
	Honeypot        string
	CaptchaResponse string
}

// WithClient returns a copy of ctx carrying c.
func WithClient(ctx context.Context, c Client) context.Context {
	return context.WithValue(ctx, clientKey, c)
}

// ClientFrom returns the Client stored in ctx, if any.
func ClientFrom(ctx context.Context) Client {
	c, _ := ctx.Value(clientKey).(Client)
	return c
}

// WithTransportFields returns a copy of ctx carrying f.
func WithTransportFields(ctx context.Context, f TransportFields) context.Context {
	return context.WithValue(ctx, transportFieldsKey, f)
}

// TransportFieldsFrom returns the TransportFields stored in ctx, if any.
func TransportFieldsFrom(ctx context.Context) TransportFields {
	f, _ := ctx.Value(transportFieldsKey).(TransportFields)
	return f
}
