// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package render

import "github.com/olegiv/reclaim-go/internal/cms"

// Defaults used when site settings are missing.
const (
	DefaultSiteName = "Reclaim My Life"
	DefaultTagline  = "A safe, supportive environment for recovery and growth."
)

var knownPlatforms = map[string]bool{
	"facebook":  true,
	"instagram": true,
	"twitter":   true,
	"linkedin":  true,
	"youtube":   true,
}

// NavLink is a navigation entry.
type NavLink struct {
	Href   string
	Label  string
	Active bool
}

// NavLinks returns the primary navigation with the current page marked.
// Register is rendered separately as a call-to-action.
func NavLinks(currentPath string) []NavLink {
	links := []NavLink{
		{Href: "/about", Label: "About"},
		{Href: "/contact", Label: "Contact"},
	}
	for i := range links {
		links[i].Active = links[i].Href == currentPath
	}
	return links
}

// SiteView is the template model of the global site chrome.
type SiteView struct {
	Name        string
	Tagline     string
	Contact     *cms.ContactInfo
	SocialLinks []cms.SocialLink
}

// NewSiteView converts site settings, falling back to defaults when s is nil.
// Social links with unknown platforms or no URL are left out.
func NewSiteView(s *cms.SiteSettings) SiteView {
	v := SiteView{Name: DefaultSiteName, Tagline: DefaultTagline}
	if s == nil {
		return v
	}
	if s.SiteName != "" {
		v.Name = s.SiteName
	}
	if s.Tagline != "" {
		v.Tagline = s.Tagline
	}
	v.Contact = s.ContactInfo
	for _, l := range s.SocialLinks {
		if knownPlatforms[l.Platform] && l.URL != "" {
			v.SocialLinks = append(v.SocialLinks, l)
		}
	}
	return v
}

// SEODefaults are the fallback metadata of a page.
type SEODefaults struct {
	Title       string
	Description string
}

// Per-page metadata defaults.
var (
	HomeSEO     = SEODefaults{Title: "Reclaim My Life", Description: "A safe, supportive environment for recovery and personal growth"}
	AboutSEO    = SEODefaults{Title: "About Us - Reclaim My Life", Description: "Learn about our mission, values, and approach to supporting recovery."}
	ContactSEO  = SEODefaults{Title: "Contact Us - Reclaim My Life", Description: "Get in touch with us. We are here to help 24/7."}
	RegisterSEO = SEODefaults{Title: "Register - Reclaim My Life", Description: "Begin your journey to recovery. Register for our sober living home program."}
)

// Meta is the resolved metadata of a rendered page.
type Meta struct {
	Title       string
	Description string
	OGImage     string
}

// ResolveMeta applies document SEO overrides on top of the defaults.
func ResolveMeta(def SEODefaults, seo *cms.SEO) Meta {
	m := Meta{Title: def.Title, Description: def.Description}
	if seo == nil {
		return m
	}
	if seo.MetaTitle != "" {
		m.Title = seo.MetaTitle
	}
	if seo.MetaDescription != "" {
		m.Description = seo.MetaDescription
	}
	m.OGImage = seo.OGImage.URL()
	return m
}
