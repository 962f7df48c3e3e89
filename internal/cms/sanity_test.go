// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cms

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSanity(t *testing.T, handler http.HandlerFunc) *SanityClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewSanityClient(SanityConfig{
		Dataset:    "production",
		APIVersion: "v2024-01-01",
		Token:      "read-token",
		BaseURL:    srv.URL,
	})
	require.NoError(t, err)
	return c
}

func TestSanityClient_Published(t *testing.T) {
	var gotPath, gotPerspective, gotAuth, gotQuery string
	c := newTestSanity(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotPerspective = r.URL.Query().Get("perspective")
		gotQuery = r.URL.Query().Get("query")
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"ms":3,"result":{"title":"Register","subtitle":"Start here",
			"formFields":[{"fieldKey":"full_name","label":"Full name","type":"text","required":true}],
			"thankYou":{"title":"Thanks!","message":"Talk soon."}}}`))
	})

	page, err := c.RegisterPage(context.Background(), Options{})
	require.NoError(t, err)

	assert.Equal(t, "/v2024-01-01/data/query/production", gotPath)
	assert.Equal(t, "published", gotPerspective)
	assert.True(t, strings.HasPrefix(gotQuery, `*[_type == "registerPage"][0]`))
	assert.Empty(t, gotAuth, "token must not be sent for published content")

	assert.Equal(t, "Register", page.Title)
	require.Len(t, page.FormFields, 1)
	assert.Equal(t, "full_name", page.FormFields[0].FieldKey)
	require.NotNil(t, page.ThankYou)
	assert.Equal(t, "Thanks!", page.ThankYou.Title)
}

func TestSanityClient_Preview(t *testing.T) {
	var gotPerspective, gotAuth string
	c := newTestSanity(t, func(w http.ResponseWriter, r *http.Request) {
		gotPerspective = r.URL.Query().Get("perspective")
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"result":{"title":"Draft","formFields":null}}`))
	})

	page, err := c.RegisterPage(context.Background(), Options{Preview: true})
	require.NoError(t, err)
	assert.Equal(t, "previewDrafts", gotPerspective)
	assert.Equal(t, "Bearer read-token", gotAuth)
	assert.Nil(t, page.FormFields)
}

func TestSanityClient_NotFound(t *testing.T) {
	c := newTestSanity(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"result":null}`))
	})

	_, err := c.AboutPage(context.Background(), Options{})
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSanityClient_ErrorStatus(t *testing.T) {
	c := newTestSanity(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"description":"param $x referenced, but not provided"}}`))
	})

	_, err := c.HomePage(context.Background(), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
	assert.Contains(t, err.Error(), "param $x")
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestSanityClient_Endpoint(t *testing.T) {
	c, err := NewSanityClient(SanityConfig{ProjectID: "abc123", Dataset: "production", APIVersion: "2024-01-01"})
	require.NoError(t, err)

	assert.Equal(t, "https://abc123.apicdn.sanity.io/v2024-01-01/data/query/production", c.endpoint(false))
	assert.Equal(t, "https://abc123.api.sanity.io/v2024-01-01/data/query/production", c.endpoint(true))

	_, err = NewSanityClient(SanityConfig{})
	assert.Error(t, err)
}
