// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/olegiv/reclaim-go/internal/cms"
	"github.com/olegiv/reclaim-go/internal/config"
	"github.com/olegiv/reclaim-go/internal/formengine"
)

const checkTimeout = 30 * time.Second

// runCheckContent validates the published registration page and returns
// the process exit code.
func runCheckContent() int {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		return 2
	}
	source, err := newContentSource(cfg, nil)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "initializing content source: %v\n", err)
		return 2
	}

	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()
	return checkRegisterPage(ctx, source, os.Stdout)
}

// checkRegisterPage prints every schema issue of the register page to out.
// It returns 0 when the content is valid, 1 when issues were found and 2
// when the page could not be loaded.
func checkRegisterPage(ctx context.Context, source cms.Source, out io.Writer) int {
	page, err := source.RegisterPage(ctx, cms.Options{})
	if err != nil {
		_, _ = fmt.Fprintf(out, "loading %s: %v\n", cms.TypeRegisterPage, err)
		return 2
	}

	found := 0
	for _, f := range page.FormFields {
		if _, err := f.Descriptor(); err != nil {
			_, _ = fmt.Fprintf(out, "field %q: %v\n", f.FieldKey, err)
			found++
		}
	}
	issues := formengine.ValidateSchema(page.FieldDescriptors(slog.New(slog.DiscardHandler)))
	issues = append(issues, formengine.ValidateThankYou(page.ThankYou)...)
	for _, issue := range issues {
		_, _ = fmt.Fprintln(out, issue.String())
	}
	found += len(issues)

	if found > 0 {
		_, _ = fmt.Fprintf(out, "%d issue(s) found in %s\n", found, cms.TypeRegisterPage)
		return 1
	}
	_, _ = fmt.Fprintf(out, "%s: %d field(s) OK\n", cms.TypeRegisterPage, len(page.FormFields))
	return 0
}
