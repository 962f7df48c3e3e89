// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cms

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileSource reads documents from YAML files named after their type, e.g.
// registerPage.yaml. In preview a sibling registerPage.draft.yaml, when
// present, takes precedence.
type FileSource struct {
	fsys fs.FS
}

// NewFileSource reads documents from dir.
func NewFileSource(dir string) *FileSource {
	return &FileSource{fsys: os.DirFS(dir)}
}

// NewFileSourceFS reads documents from fsys.
func NewFileSourceFS(fsys fs.FS) *FileSource {
	return &FileSource{fsys: fsys}
}

func (s *FileSource) load(ctx context.Context, docType string, opts Options, dst any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	names := []string{docType + ".yaml"}
	if opts.Preview {
		names = append([]string{docType + ".draft.yaml"}, names...)
	}

	for _, name := range names {
		data, err := fs.ReadFile(s.fsys, name)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("reading %s: %w", name, err)
		}
		if err := yaml.Unmarshal(data, dst); err != nil {
			return fmt.Errorf("parsing %s: %w", filepath.Base(name), err)
		}
		return nil
	}
	return ErrNotFound
}

// HomePage implements Source.
func (s *FileSource) HomePage(ctx context.Context, opts Options) (*HomePage, error) {
	return loadFile[HomePage](ctx, s, TypeHomePage, opts)
}

// AboutPage implements Source.
func (s *FileSource) AboutPage(ctx context.Context, opts Options) (*AboutPage, error) {
	return loadFile[AboutPage](ctx, s, TypeAboutPage, opts)
}

// ContactPage implements Source.
func (s *FileSource) ContactPage(ctx context.Context, opts Options) (*ContactPage, error) {
	return loadFile[ContactPage](ctx, s, TypeContactPage, opts)
}

// RegisterPage implements Source.
func (s *FileSource) RegisterPage(ctx context.Context, opts Options) (*RegisterPage, error) {
	return loadFile[RegisterPage](ctx, s, TypeRegisterPage, opts)
}

// SiteSettings implements Source.
func (s *FileSource) SiteSettings(ctx context.Context, opts Options) (*SiteSettings, error) {
	return loadFile[SiteSettings](ctx, s, TypeSiteSettings, opts)
}

func loadFile[T any](ctx context.Context, s *FileSource, docType string, opts Options) (*T, error) {
	var doc T
	if err := s.load(ctx, docType, opts, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

var _ Source = (*FileSource)(nil)
