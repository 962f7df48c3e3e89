// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package formbackend

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/reclaim-go/internal/formengine"
)

func formPayload() formengine.Payload {
	var p formengine.Payload
	p.Add(formengine.FormNameKey, formengine.ContactFormName)
	p.Add("name", "Grace")
	p.Add("message", "Hi there")
	return p
}

func TestHTTPTransport_PostsEncodedPayload(t *testing.T) {
	var (
		gotBody   string
		gotHeader http.Header
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		gotHeader = r.Header.Clone()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctx := WithClient(context.Background(), Client{IP: "203.0.113.4", UserAgent: "browser/1.0"})
	ctx = WithTransportFields(ctx, TransportFields{CaptchaResponse: "tok"})

	require.NoError(t, NewHTTPTransport(srv.URL, nil).Submit(ctx, formPayload()))

	assert.Equal(t, "form-name=contact&name=Grace&message=Hi+there&bot-field=&h-captcha-response=tok", gotBody)
	assert.Equal(t, "application/x-www-form-urlencoded", gotHeader.Get("Content-Type"))
	assert.Equal(t, "203.0.113.4", gotHeader.Get("X-Forwarded-For"))
	assert.Equal(t, "browser/1.0", gotHeader.Get("User-Agent"))
}

func TestHTTPTransport_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewHTTPTransport(srv.URL, nil).Submit(context.Background(), formPayload())
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadGateway, statusErr.Code)
	assert.Contains(t, err.Error(), "502")
}

func TestHTTPTransport_AgainstService(t *testing.T) {
	svc, db := newTestService(t)
	srv := httptest.NewServer(svc)
	defer srv.Close()

	tr := NewHTTPTransport(srv.URL, srv.Client())
	require.NoError(t, tr.Submit(context.Background(), formPayload()))
	assert.Equal(t, int64(1), countSubmissions(t, db, formengine.ContactFormName))

	// A filled honeypot still reports success but stores nothing.
	ctx := WithTransportFields(context.Background(), TransportFields{Honeypot: "spam"})
	require.NoError(t, tr.Submit(ctx, formPayload()))
	assert.Equal(t, int64(1), countSubmissions(t, db, formengine.ContactFormName))

	var unknown formengine.Payload
	unknown.Add(formengine.FormNameKey, "mystery")
	var statusErr *StatusError
	require.ErrorAs(t, tr.Submit(context.Background(), unknown), &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.Code)
}

func TestLocalTransport(t *testing.T) {
	captcha := &stubCaptcha{}
	svc, db := newTestService(t, WithCaptcha(captcha))
	tr := NewLocalTransport(svc)

	ctx := WithClient(context.Background(), Client{IP: "198.51.100.9"})
	ctx = WithTransportFields(ctx, TransportFields{CaptchaResponse: "tok"})
	require.NoError(t, tr.Submit(ctx, formPayload()))

	assert.Equal(t, "tok", captcha.response)
	assert.Equal(t, "198.51.100.9", captcha.remoteIP)
	assert.Equal(t, int64(1), countSubmissions(t, db, formengine.ContactFormName))

	captcha.err = ErrCaptchaRequired
	assert.ErrorIs(t, tr.Submit(context.Background(), formPayload()), ErrCaptchaRequired)
}

func TestLocalTransport_WithFormEngine(t *testing.T) {
	svc, db := newTestService(t)
	form := formengine.NewContactForm()
	form.Set("name", "Linus")
	form.Set("phone", "+1 555 0100")
	form.Set("message", "Call me")

	require.NoError(t, form.Submit(context.Background(), NewLocalTransport(svc)))
	assert.Equal(t, formengine.StatusSuccess, form.Status())
	assert.Equal(t, int64(1), countSubmissions(t, db, formengine.ContactFormName))
}
