// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package render

import "github.com/olegiv/reclaim-go/internal/cms"

// Page template names.
const (
	PageHome     = "home"
	PageAbout    = "about"
	PageContact  = "contact"
	PageRegister = "register"
	PageError    = "error"
)

// HomeData is the model of the home page. Page is nil when the document is missing.
type HomeData struct {
	Page *cms.HomePage
}

// AboutData is the model of the about page.
type AboutData struct {
	Page *cms.AboutPage
}

// ContactData is the model of the contact page.
type ContactData struct {
	Page    *cms.ContactPage
	Contact *cms.ContactInfo
	Form    FormView
}

// RegisterData is the model of the register page.
type RegisterData struct {
	Page         *cms.RegisterPage
	Registration RegistrationView
}

// ErrorData is the model of the error page.
type ErrorData struct {
	Status  int
	Title   string
	Message string
}
