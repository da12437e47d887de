// Package web holds the server-rendered pages and the login page script.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/99minutos/account-portal/internal/core/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Page template names.
const (
	PageLogin      = "login"
	PageError      = "error"
	PageOnboarding = "onboarding"
	PageDashboard  = "dashboard"
)

// Renderer implements echo.Renderer over the embedded templates. Every page
// is parsed together with base.html and rendered through its "base" block.
type Renderer struct {
	pages map[string]*template.Template
}

func NewRenderer() (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template)}
	for _, name := range []string{PageLogin, PageError, PageOnboarding, PageDashboard} {
		t, err := template.ParseFS(templateFS, "templates/base.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

func (r *Renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	return t.ExecuteTemplate(w, "base", data)
}

// Static returns the login page assets rooted at the static directory.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// Static error strings shown by the login page.
const (
	MessageAuthFailed    = "Authentication failed"
	MessagePasskeyFailed = "Passkey authentication failed"
)

// LoginView is the data behind the login page.
type LoginView struct {
	Title         string
	CallbackURL   string
	Authenticated bool
	Error         string
}

// PasskeyLabel is the passkey button text; signed-in visitors register an
// additional passkey instead of signing in.
func (v LoginView) PasskeyLabel() string {
	if v.Authenticated {
		return "Register new Passkey"
	}
	return "Sign in with Passkey"
}

// NewLoginView builds the page data. An empty callbackURL falls back to the
// dashboard; errCode "passkey" selects the passkey message, any other
// non-empty code the generic one.
func NewLoginView(callbackURL string, authenticated bool, errCode string) LoginView {
	if strings.TrimSpace(callbackURL) == "" {
		callbackURL = domain.PathDashboard
	}
	v := LoginView{Title: "Sign in", CallbackURL: callbackURL, Authenticated: authenticated}
	switch strings.TrimSpace(errCode) {
	case "":
	case domain.ProviderPasskey:
		v.Error = MessagePasskeyFailed
	default:
		v.Error = MessageAuthFailed
	}
	return v
}

// ErrorView is the data behind the generic error page.
type ErrorView struct {
	Title   string
	Code    string
	Message string
}

// NewErrorView maps an error code from the query string to a message.
func NewErrorView(code string) ErrorView {
	msg := "Something went wrong while signing you in."
	switch code {
	case "AccessDenied":
		msg = "You do not have permission to sign in."
	case "Configuration":
		msg = "The sign-in service is not configured correctly."
	case "Verification":
		msg = "The sign-in link is no longer valid."
	case "OAuthAccountNotLinked":
		msg = "This email is already used by another account. Sign in the way you used originally."
	}
	return ErrorView{Title: "Sign-in error", Code: code, Message: msg}
}

// OnboardingView is the data behind the onboarding form.
type OnboardingView struct {
	Title        string
	CallbackURL  string
	AccountTypes []string
	Error        string
}

func NewOnboardingView(callbackURL, errMsg string) OnboardingView {
	return OnboardingView{
		Title:        "Finish setting up your account",
		CallbackURL:  callbackURL,
		AccountTypes: []string{domain.AccountTypePersonal, domain.AccountTypeBusiness},
		Error:        errMsg,
	}
}

// DashboardView is the data behind the signed-in landing page.
type DashboardView struct {
	Title   string
	Session *domain.Session
}
