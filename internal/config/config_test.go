// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

const strongSecret = "Str0ng-secret-key-32-bytes-long!"

func setEnv(t *testing.T, key, value string) {
	t.Helper()
	if err := os.Setenv(key, value); err != nil {
		t.Fatalf("failed to set %s: %v", key, err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.DBPath != "./data/reclaim.db" {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, "./data/reclaim.db")
	}
	if cfg.ServerAddr() != "localhost:8080" {
		t.Errorf("ServerAddr() = %q, want %q", cfg.ServerAddr(), "localhost:8080")
	}
	if !cfg.IsDevelopment() {
		t.Errorf("Env = %q, want development", cfg.Env)
	}
	if cfg.ContentSource != ContentSourceFile {
		t.Errorf("ContentSource = %q, want %q", cfg.ContentSource, ContentSourceFile)
	}
	if cfg.FormBackend != FormBackendLocal {
		t.Errorf("FormBackend = %q, want %q", cfg.FormBackend, FormBackendLocal)
	}
	if cfg.FormSubmitTimeout != 15*time.Second {
		t.Errorf("FormSubmitTimeout = %v, want 15s", cfg.FormSubmitTimeout)
	}
	if cfg.CacheTTLDuration() != time.Hour {
		t.Errorf("CacheTTLDuration() = %v, want 1h", cfg.CacheTTLDuration())
	}
	if cfg.Retention() != 180*24*time.Hour {
		t.Errorf("Retention() = %v, want 180 days", cfg.Retention())
	}
	if cfg.UseRedisCache() || cfg.HCaptchaEnabled() || cfg.WebhookEnabled() {
		t.Error("optional integrations should be disabled by default")
	}
}

func TestLoad_CustomValues(t *testing.T) {
	os.Clearenv()
	setEnv(t, "RML_ENV", "production")
	setEnv(t, "RML_SESSION_SECRET", strongSecret)
	setEnv(t, "RML_SERVER_PORT", "3000")
	setEnv(t, "RML_CONTENT_SOURCE", "sanity")
	setEnv(t, "RML_SANITY_PROJECT_ID", "abc123")
	setEnv(t, "RML_FORM_SUBMIT_TIMEOUT", "5s")
	setEnv(t, "RML_RETENTION_DAYS", "0")
	setEnv(t, "RML_HCAPTCHA_SITE_KEY", "site")
	setEnv(t, "RML_HCAPTCHA_SECRET_KEY", "secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.ServerPort != 3000 {
		t.Errorf("ServerPort = %d, want 3000", cfg.ServerPort)
	}
	if cfg.SanityProjectID != "abc123" {
		t.Errorf("SanityProjectID = %q, want abc123", cfg.SanityProjectID)
	}
	if cfg.FormSubmitTimeout != 5*time.Second {
		t.Errorf("FormSubmitTimeout = %v, want 5s", cfg.FormSubmitTimeout)
	}
	if cfg.Retention() != 0 {
		t.Errorf("Retention() = %v, want 0", cfg.Retention())
	}
	if !cfg.HCaptchaEnabled() {
		t.Error("HCaptchaEnabled() = false, want true")
	}
}

func TestLoad_InvalidOptions(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "unknown content source",
			env:     map[string]string{"RML_CONTENT_SOURCE": "wordpress"},
			wantErr: "RML_CONTENT_SOURCE",
		},
		{
			name:    "sanity without project",
			env:     map[string]string{"RML_CONTENT_SOURCE": "sanity"},
			wantErr: "RML_SANITY_PROJECT_ID",
		},
		{
			name:    "unknown form backend",
			env:     map[string]string{"RML_FORM_BACKEND": "netlify"},
			wantErr: "RML_FORM_BACKEND",
		},
		{
			name:    "production without session secret",
			env:     map[string]string{"RML_ENV": "production"},
			wantErr: "RML_SESSION_SECRET is required",
		},
		{
			name:    "short revalidate secret",
			env:     map[string]string{"RML_ENV": "production", "RML_SESSION_SECRET": strongSecret, "RML_REVALIDATE_SECRET": "short"},
			wantErr: "RML_REVALIDATE_SECRET must be at least",
		},
		{
			name:    "weak session secret",
			env:     map[string]string{"RML_ENV": "production", "RML_SESSION_SECRET": "change-me-to-32-byte-secret-key!"},
			wantErr: "known default value",
		},
		{
			name:    "webhook without secret",
			env:     map[string]string{"RML_ENV": "production", "RML_SESSION_SECRET": strongSecret, "RML_WEBHOOK_URL": "https://example.com/hook"},
			wantErr: "RML_WEBHOOK_SECRET",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Clearenv()
			for k, v := range tt.env {
				setEnv(t, k, v)
			}
			_, err := Load()
			if err == nil {
				t.Fatal("Load() error = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestHasMinimumEntropy(t *testing.T) {
	if hasMinimumEntropy("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa") {
		t.Error("single character class should not pass")
	}
	if !hasMinimumEntropy(strongSecret) {
		t.Error("mixed secret should pass")
	}
}
