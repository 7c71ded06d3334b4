package model

// Contact is the data structure for a person that we know from networking.
// The email address identifies the contact; all other fields except the name are optional.
type Contact struct {
	Name       string `json:"name"                validate:"required"`
	Email      string `json:"email"               validate:"required,plausible_email"`
	Employer   string `json:"employer"`
	URL        string `json:"url"`
	ReachedOut bool   `json:"reachedOut"`
	Timestamp  int64  `json:"timestamp,omitempty"`
}

// Job is a saved job posting. Its id is generated when the job is added and never changes
// afterwards. DateApplied is a calendar date (YYYY-MM-DD), DateAdded an RFC 3339 timestamp.
type Job struct {
	ID          string `json:"id"`
	Title       string `json:"title"       validate:"required"`
	Employer    string `json:"employer"`
	URL         string `json:"url"         validate:"required"`
	DateApplied string `json:"dateApplied" validate:"omitempty,datetime=2006-01-02"`
	DateAdded   string `json:"dateAdded"   validate:"omitempty,rfc3339"`
}

// QuickLink is a personal link (profile, portfolio, repository) the user copies into applications.
type QuickLink struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// EmailTemplate is a reusable email with a subject line.
type EmailTemplate struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Names of the built-in email templates.
const (
	FollowUpTemplate     = "follow-up"
	IntroductionTemplate = "introduction"
)

// Templates maps a template name such as "introduction" to its content.
type Templates map[string]EmailTemplate
