// Package compose turns an email template into a draft and opens it in a mail client.
//
// Opening a draft in a web mail client is best effort. WithFallback degrades any failure to a
// plain mailto link, which every mail client understands.
package compose

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"gitlab.com/dirk.krummacker/jobapp-helper/pkg/model"
)

// Draft is an email ready to be composed.
type Draft struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Composer opens a draft and returns a link to it.
type Composer interface {
	Compose(ctx context.Context, d Draft) (string, error)
}

// DefaultIntroduction is used when no introduction template was saved.
var DefaultIntroduction = model.EmailTemplate{
	Subject: "Introduction and Networking Opportunity",
	Body: `Hello,

I hope this email finds you well. I recently came across your profile and was impressed by your experience and background in the industry. I'm currently exploring new opportunities in the field and would love to connect to learn more about your experience and insights.

Would you be open to a brief conversation in the coming weeks? I'd appreciate the opportunity to discuss industry trends and potentially learn about any opportunities that might align with my background.

Thank you for your time and consideration.

Best regards,
[Your Name]`,
}

// Introduction builds the introduction email to contact from the saved "introduction"
// template. Company placeholders are filled in when the contact's employer is known.
func Introduction(contact model.Contact, templates model.Templates) Draft {
	template, ok := templates[model.IntroductionTemplate]
	if !ok {
		template = DefaultIntroduction
	}
	fill := strings.NewReplacer()
	if contact.Employer != "" {
		fill = strings.NewReplacer("[Company Name]", contact.Employer, "[Company]", contact.Employer)
	}
	return Draft{
		To:      contact.Email,
		Subject: fill.Replace(template.Subject),
		Body:    fill.Replace(template.Body),
	}
}

// MailtoURL returns a mailto link for d. Spaces are encoded as %20.
func MailtoURL(d Draft) string {
	var b strings.Builder
	b.WriteString("mailto:")
	b.WriteString(url.PathEscape(d.To))
	sep := "?"
	if d.Subject != "" {
		b.WriteString(sep + "subject=" + escape(d.Subject))
		sep = "&"
	}
	if d.Body != "" {
		b.WriteString(sep + "body=" + escape(d.Body))
	}
	return b.String()
}

func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// Mailto composes drafts as mailto links. It never fails.
type Mailto struct{}

func (Mailto) Compose(_ context.Context, d Draft) (string, error) {
	return MailtoURL(d), nil
}

type fallback struct {
	primary Composer
	log     *slog.Logger
}

// WithFallback returns a Composer that tries primary and returns a mailto link when primary
// fails. The returned Composer never fails.
func WithFallback(primary Composer, log *slog.Logger) Composer {
	return &fallback{primary: primary, log: log}
}

func (f *fallback) Compose(ctx context.Context, d Draft) (string, error) {
	link, err := f.primary.Compose(ctx, d)
	if err == nil {
		return link, nil
	}
	f.log.Warn("composer failed, using mailto link", "err", err)
	return MailtoURL(d), nil
}
