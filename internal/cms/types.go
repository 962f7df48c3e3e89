// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cms

import (
	"strings"

	"github.com/olegiv/reclaim-go/internal/formengine"
)

// Document types.
const (
	TypeHomePage     = "homePage"
	TypeAboutPage    = "aboutPage"
	TypeContactPage  = "contactPage"
	TypeRegisterPage = "registerPage"
	TypeSiteSettings = "siteSettings"
)

// DocumentTypes returns every document type the site reads.
func DocumentTypes() []string {
	return []string{TypeHomePage, TypeAboutPage, TypeContactPage, TypeRegisterPage, TypeSiteSettings}
}

// IsDocumentType reports whether t is a known document type.
func IsDocumentType(t string) bool {
	for _, dt := range DocumentTypes() {
		if dt == t {
			return true
		}
	}
	return false
}

// Asset is a resolved image asset reference.
type Asset struct {
	ID  string `json:"_id,omitempty" yaml:"_id,omitempty"`
	URL string `json:"url" yaml:"url"`
}

// Image is an image with alt text.
type Image struct {
	Asset *Asset `json:"asset,omitempty" yaml:"asset,omitempty"`
	Alt   string `json:"alt,omitempty" yaml:"alt,omitempty"`
}

// URL returns the asset URL or "".
func (i *Image) URL() string {
	if i == nil || i.Asset == nil {
		return ""
	}
	return i.Asset.URL
}

// Button is a call-to-action link.
type Button struct {
	Text string `json:"text" yaml:"text"`
	URL  string `json:"url" yaml:"url"`
}

// SocialLink points to one of the organization's social profiles.
type SocialLink struct {
	Key      string `json:"_key,omitempty" yaml:"_key,omitempty"`
	Platform string `json:"platform" yaml:"platform"`
	URL      string `json:"url" yaml:"url"`
}

// Label returns the display name of the platform, e.g. "Facebook".
func (s SocialLink) Label() string {
	if s.Platform == "" {
		return ""
	}
	return strings.ToUpper(s.Platform[:1]) + s.Platform[1:]
}

// Address is a postal address.
type Address struct {
	Street string `json:"street" yaml:"street"`
	City   string `json:"city" yaml:"city"`
	State  string `json:"state" yaml:"state"`
	Zip    string `json:"zip" yaml:"zip"`
}

// IsZero reports whether no part of the address is set.
func (a *Address) IsZero() bool {
	return a == nil || (a.Street == "" && a.City == "" && a.State == "" && a.Zip == "")
}

// ContactInfo holds the organization's contact details.
type ContactInfo struct {
	Phone   string   `json:"phone" yaml:"phone"`
	Email   string   `json:"email" yaml:"email"`
	Address *Address `json:"address,omitempty" yaml:"address,omitempty"`
}

// SiteSettings is the global site configuration document.
type SiteSettings struct {
	SiteName    string       `json:"siteName" yaml:"siteName"`
	Tagline     string       `json:"tagline,omitempty" yaml:"tagline,omitempty"`
	ContactInfo *ContactInfo `json:"contactInfo,omitempty" yaml:"contactInfo,omitempty"`
	SocialLinks []SocialLink `json:"socialLinks,omitempty" yaml:"socialLinks,omitempty"`
}

// SEO holds per-page metadata overrides.
type SEO struct {
	MetaTitle       string `json:"metaTitle,omitempty" yaml:"metaTitle,omitempty"`
	MetaDescription string `json:"metaDescription,omitempty" yaml:"metaDescription,omitempty"`
	OGImage         *Image `json:"ogImage,omitempty" yaml:"ogImage,omitempty"`
}

// Hero is the home page header section.
type Hero struct {
	Title           string  `json:"title" yaml:"title"`
	Subtitle        string  `json:"subtitle" yaml:"subtitle"`
	Image           *Image  `json:"image,omitempty" yaml:"image,omitempty"`
	PrimaryButton   *Button `json:"primaryButton,omitempty" yaml:"primaryButton,omitempty"`
	SecondaryButton *Button `json:"secondaryButton,omitempty" yaml:"secondaryButton,omitempty"`
}

// Mission is the home page mission statement.
type Mission struct {
	Title   string   `json:"title" yaml:"title"`
	Content RichText `json:"content" yaml:"content"`
}

// CTASection is the home page closing call to action.
type CTASection struct {
	Title    string  `json:"title" yaml:"title"`
	Subtitle string  `json:"subtitle" yaml:"subtitle"`
	Button   *Button `json:"button,omitempty" yaml:"button,omitempty"`
}

// HomePage document.
type HomePage struct {
	Hero       Hero       `json:"hero" yaml:"hero"`
	Mission    Mission    `json:"mission" yaml:"mission"`
	CTASection CTASection `json:"ctaSection" yaml:"ctaSection"`
	SEO        *SEO       `json:"seo,omitempty" yaml:"seo,omitempty"`
}

// AboutPage document.
type AboutPage struct {
	Title   string   `json:"title" yaml:"title"`
	Content RichText `json:"content" yaml:"content"`
	SEO     *SEO     `json:"seo,omitempty" yaml:"seo,omitempty"`
}

// ContactPage document.
type ContactPage struct {
	Title     string `json:"title" yaml:"title"`
	IntroText string `json:"introText" yaml:"introText"`
	FormTitle string `json:"formTitle" yaml:"formTitle"`
	SEO       *SEO   `json:"seo,omitempty" yaml:"seo,omitempty"`
}

// Step is one item of the registration next-steps list.
type Step struct {
	Description string `json:"description" yaml:"description"`
}

// NextSteps explains what happens after registering.
type NextSteps struct {
	Title string `json:"title" yaml:"title"`
	Steps []Step `json:"steps,omitempty" yaml:"steps,omitempty"`
}

// RegisterPage document. FormFields is nil when the document has no field
// list at all and empty when the list exists but has no entries.
type RegisterPage struct {
	Title      string               `json:"title" yaml:"title"`
	Subtitle   string               `json:"subtitle" yaml:"subtitle"`
	FormFields []FormField          `json:"formFields" yaml:"formFields"`
	ThankYou   *formengine.ThankYou `json:"thankYou,omitempty" yaml:"thankYou,omitempty"`
	NextSteps  *NextSteps           `json:"nextSteps,omitempty" yaml:"nextSteps,omitempty"`
	SEO        *SEO                 `json:"seo,omitempty" yaml:"seo,omitempty"`
}
