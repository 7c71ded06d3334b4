package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"strings"

	"gitlab.com/dirk.krummacker/jobapp-helper/internal/kvstore"
	"gitlab.com/dirk.krummacker/jobapp-helper/internal/recordstore"
	"gitlab.com/dirk.krummacker/jobapp-helper/pkg/model"
)

// Names of the built-in templates.
const (
	FollowUp     = model.FollowUpTemplate
	Introduction = model.IntroductionTemplate
)

// DefaultTemplates are used until the user saves their own templates.
var DefaultTemplates = model.Templates{
	FollowUp: {
		Subject: "Following up on [Position] interview at [Company]",
		Body: `Dear [Hiring Manager's Name],

Thank you for the opportunity to interview for the [Position] role at [Company Name]. I enjoyed our conversation and learning more about the team and position.

I'm writing to follow up on our discussion about [specific topic discussed]. As I mentioned during the interview, my experience with [relevant skill/project] has prepared me well for this role.

Please let me know if you need any additional information from me. I'm excited about the possibility of joining [Company Name] and contributing to [specific goal or project].

Best regards,
[Your Name]`,
	},
	Introduction: {
		Subject: "[Your Name] - Application for [Position] at [Company]",
		Body: `Dear [Hiring Manager's Name],

I'm reaching out to express my interest in the [Position] role at [Company Name]. With [number] years of experience in [relevant field] and a background in [relevant background], I believe I would be a great fit for this position.

My key accomplishments include:
• [Accomplishment 1]
• [Accomplishment 2]
• [Accomplishment 3]

I'm particularly drawn to [Company Name] because of [specific reason, e.g., company values, projects, etc.]. I've attached my resume for your review and would welcome the opportunity to discuss how my skills align with your needs.

Thank you for your consideration.

Best regards,
[Your Name]`,
	},
}

// TemplateStore loads and saves the email templates.
type TemplateStore struct {
	kv kvstore.Store
}

// NewTemplates returns the email templates kept in kv.
func NewTemplates(kv kvstore.Store) *TemplateStore {
	return &TemplateStore{kv: kv}
}

// Load returns the saved templates, or the defaults when none were saved.
func (s *TemplateStore) Load(ctx context.Context) (model.Templates, error) {
	raw, err := s.kv.Get(ctx, kvstore.TemplatesKey)
	if errors.Is(err, kvstore.ErrNotFound) {
		return maps.Clone(DefaultTemplates), nil
	}
	if err != nil {
		return nil, &recordstore.IoError{Op: "templates load", Err: err}
	}
	templates, err := MigrateTemplates(raw)
	if err != nil {
		return nil, &recordstore.IoError{Op: "templates decode", Err: err}
	}
	return templates, nil
}

// Save stores one template under name, keeping all others. It returns the stored templates.
func (s *TemplateStore) Save(ctx context.Context, name string, template model.EmailTemplate) (model.Templates, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &recordstore.ValidationError{Field: "name", Reason: "is required"}
	}
	templates, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	templates[name] = model.EmailTemplate{
		Subject: strings.TrimSpace(template.Subject),
		Body:    strings.TrimSpace(template.Body),
	}
	raw, err := json.Marshal(templates)
	if err != nil {
		return nil, &recordstore.IoError{Op: "templates encode", Err: err}
	}
	if err := s.kv.Set(ctx, kvstore.TemplatesKey, raw); err != nil {
		return nil, &recordstore.IoError{Op: "templates save", Err: err}
	}
	return templates, nil
}

// MigrateTemplates decodes stored templates. A template stored as a plain body string gets a
// default subject.
func MigrateTemplates(raw []byte) (model.Templates, error) {
	var stored map[string]json.RawMessage
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, fmt.Errorf("decode templates: %w", err)
	}
	if stored == nil {
		return maps.Clone(DefaultTemplates), nil
	}
	templates := make(model.Templates, len(stored))
	for name, value := range stored {
		var body string
		if err := json.Unmarshal(value, &body); err == nil {
			templates[name] = model.EmailTemplate{Subject: legacySubject(name), Body: body}
			continue
		}
		var template model.EmailTemplate
		if err := json.Unmarshal(value, &template); err != nil {
			return nil, fmt.Errorf("decode template %q: %w", name, err)
		}
		templates[name] = template
	}
	return templates, nil
}

func legacySubject(name string) string {
	if name == FollowUp {
		return "Following up on interview"
	}
	return "Application for position"
}
