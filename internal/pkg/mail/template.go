package mail

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"maps"
	texttemplate "text/template"
)

// Kind names one of the embedded email templates.
type Kind string

const (
	// KindOTP carries the one-time verification code.
	KindOTP Kind = "otp"
	// KindWelcome greets an owner whose email has just been verified.
	KindWelcome Kind = "welcome"
)

// ErrUnknownKind is returned when rendering a template that does not exist.
var ErrUnknownKind = errors.New("mail: unknown template kind")

//go:embed templates/*.html templates/*.txt
var templateFS embed.FS

var subjects = map[Kind]string{
	KindOTP:     "Your SkillPort verification code",
	KindWelcome: "Welcome to SkillPort",
}

// Templates renders the embedded email templates.
type Templates struct {
	html *htmltemplate.Template
	text *texttemplate.Template
	base map[string]any
}

// NewTemplates parses the embedded templates. base values (company name,
// support address) are merged under every render call's vars.
func NewTemplates(base map[string]any) (*Templates, error) {
	html, err := htmltemplate.New("mail").Option("missingkey=zero").ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("mail: parse html templates: %w", err)
	}
	text, err := texttemplate.New("mail").Option("missingkey=zero").ParseFS(templateFS, "templates/*.txt")
	if err != nil {
		return nil, fmt.Errorf("mail: parse text templates: %w", err)
	}

	return &Templates{html: html, text: text, base: base}, nil
}

// Render builds the message for kind addressed to `to`.
func (t *Templates) Render(kind Kind, to string, vars map[string]any) (Message, error) {
	subject, ok := subjects[kind]
	if !ok {
		return Message{}, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}

	data := make(map[string]any, len(t.base)+len(vars))
	maps.Copy(data, t.base)
	maps.Copy(data, vars)

	var htmlBuf, textBuf bytes.Buffer
	if err := t.html.ExecuteTemplate(&htmlBuf, string(kind)+".html", data); err != nil {
		return Message{}, fmt.Errorf("mail: render %s html: %w", kind, err)
	}
	if err := t.text.ExecuteTemplate(&textBuf, string(kind)+".txt", data); err != nil {
		return Message{}, fmt.Errorf("mail: render %s text: %w", kind, err)
	}

	return Message{
		To:       []string{to},
		Subject:  subject,
		HTMLBody: htmlBuf.String(),
		TextBody: textBuf.String(),
	}, nil
}
