// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package render

import (
	"html/template"

	"github.com/olegiv/reclaim-go/internal/cms"
)

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"add": func(a, b int) int {
			return a + b
		},
		"richText": func(rt cms.RichText) template.HTML {
			return rt.HTML()
		},
		"imageURL": func(img *cms.Image) string {
			return img.URL()
		},
		"hasAddress": func(c *cms.ContactInfo) bool {
			return c != nil && !c.Address.IsZero()
		},
	}
}
