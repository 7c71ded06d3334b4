package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/gin-gonic/gin"
	"gitlab.com/dirk.krummacker/jobapp-helper/internal/compose"
	"gitlab.com/dirk.krummacker/jobapp-helper/internal/config"
	"gitlab.com/dirk.krummacker/jobapp-helper/internal/kvstore"
	"gitlab.com/dirk.krummacker/jobapp-helper/internal/logging"
	"gitlab.com/dirk.krummacker/jobapp-helper/internal/prefill"
	"gitlab.com/dirk.krummacker/jobapp-helper/internal/recordstore"
	"gitlab.com/dirk.krummacker/jobapp-helper/internal/settings"
	"gitlab.com/dirk.krummacker/jobapp-helper/pkg/model"
)

// Service serves the saved contacts, jobs, quick links and email templates over HTTP.
type Service struct {
	kv         kvstore.Store
	contacts   *recordstore.Store[model.Contact]
	jobs       *recordstore.Store[model.Job]
	links      *settings.Links
	templates  *settings.TemplateStore
	composer   compose.Composer
	scraper    prefill.PageScraper
	metrics    *metrics.Set
	log        *slog.Logger
	now        func() time.Time
	ginLogging bool
}

// Options configure a Service. Zero values select the defaults.
type Options struct {
	// Logger receives store failures. Defaults to discarding.
	Logger *slog.Logger

	// Metrics is the set exposed on /metrics. Defaults to a new set.
	Metrics *metrics.Set

	// Composer opens email drafts. Defaults to mailto links. Failures always fall back to a
	// mailto link.
	Composer compose.Composer

	// Scraper suggests contact fields from a page URL. Defaults to prefill.ProfileURLScraper.
	Scraper prefill.PageScraper

	// Clock is the time source for creation timestamps and export file names.
	Clock func() time.Time

	// GinLogging turns on gin's request logging.
	GinLogging bool
}

// New returns a Service that keeps all its data in kv.
func New(kv kvstore.Store, opts Options) *Service {
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewSet()
	}
	if opts.Composer == nil {
		opts.Composer = compose.Mailto{}
	}
	if opts.Scraper == nil {
		opts.Scraper = prefill.ProfileURLScraper{}
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	storeOpts := []recordstore.Option{
		recordstore.WithClock(opts.Clock),
		recordstore.WithLogger(opts.Logger),
	}
	return &Service{
		kv:         kv,
		contacts:   recordstore.NewContacts(kv, storeOpts...),
		jobs:       recordstore.NewJobs(kv, storeOpts...),
		links:      settings.NewLinks(kv),
		templates:  settings.NewTemplates(kv),
		composer:   compose.WithFallback(opts.Composer, opts.Logger),
		scraper:    opts.Scraper,
		metrics:    opts.Metrics,
		log:        opts.Logger,
		now:        opts.Clock,
		ginLogging: opts.GinLogging,
	}
}

// CreateDatabase opens the key-value store selected by the configuration. SQLite creates its
// table on open; the MySQL table is created by the migration command.
func CreateDatabase(cfg config.Config) (*kvstore.SQL, error) {
	switch cfg.DBDriver {
	case config.DriverMySQL:
		return kvstore.OpenMySQL(cfg.DSN())
	case config.DriverSQLite:
		return kvstore.OpenSQLite(cfg.DSN())
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.DBDriver)
	}
}

// SetupHttpRouter initializes the REST API router and registers all endpoints.
func (s *Service) SetupHttpRouter() *gin.Engine {
	router := gin.New()
	// Email addresses may contain "/", which clients send as %2F.
	router.UseRawPath = true
	router.UnescapePathValues = true
	router.Use(gin.Recovery(), s.countRequests)
	if s.ginLogging {
		router.Use(gin.Logger())
	}
	router.GET("/health", s.health)
	router.GET("/metrics", s.writeMetrics)

	router.GET("/contacts", s.findContacts)
	router.POST("/contacts", s.createContact)
	router.DELETE("/contacts", s.clearContacts)
	router.GET("/contacts/export", s.exportContacts)
	router.GET("/contacts/prefill", s.prefillContact)
	router.DELETE("/contacts/:email", s.deleteContact)
	router.PUT("/contacts/:email/reached-out", s.toggleReachedOut)
	router.GET("/contacts/:email/compose", s.composeIntroduction)

	router.GET("/jobs", s.findJobs)
	router.POST("/jobs", s.createJob)
	router.DELETE("/jobs", s.clearJobs)
	router.GET("/jobs/export", s.exportJobs)
	router.DELETE("/jobs/:id", s.deleteJob)

	router.GET("/links", s.findLinks)
	router.PUT("/links", s.replaceLinks)
	router.GET("/templates", s.findTemplates)
	router.PUT("/templates/:name", s.saveTemplate)
	return router
}

// countRequests records every request by route and status code.
func (s *Service) countRequests(c *gin.Context) {
	start := time.Now()
	c.Next()
	path := c.FullPath()
	if path == "" {
		path = "unmatched"
	}
	s.metrics.GetOrCreateCounter(fmt.Sprintf(`http_requests_total{method=%q,path=%q,status="%d"}`,
		c.Request.Method, path, c.Writer.Status())).Inc()
	s.metrics.GetOrCreateHistogram(fmt.Sprintf(`http_request_duration_seconds{path=%q}`, path)).UpdateDuration(start)
}

// health responds with 200 when the key-value store is reachable.
//
// Example REST API call:
//
//	> curl http://localhost:8080/health
func (s *Service) health(c *gin.Context) {
	if p, ok := s.kv.(interface{ Ping(context.Context) error }); ok {
		if err := p.Ping(c.Request.Context()); err != nil {
			s.log.Error("health check failed", "err", err)
			c.IndentedJSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.IndentedJSON(http.StatusOK, gin.H{"status": "ok"})
}

// writeMetrics responds with the service and process metrics in Prometheus text format.
func (s *Service) writeMetrics(c *gin.Context) {
	c.Header("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
	c.Status(http.StatusOK)
	s.metrics.WritePrometheus(c.Writer)
	metrics.WriteProcessMetrics(c.Writer)
}

// findContacts responds with the list of saved contacts as JSON. Without the URL parameter 'sort'
// the contacts are returned in stored order, newest addition first.
//
// The URL parameter 'sort' orders the list: 'recent' puts the newest contacts first, 'name'
// orders by name and 'employer' orders by employer with contacts without an employer last.
//
// REST API calls:
//
//	> curl "http://localhost:8080/contacts"
//	> curl "http://localhost:8080/contacts?sort=employer"
func (s *Service) findContacts(c *gin.Context) {
	contacts, err := s.contacts.List(c.Request.Context())
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	if sort, ok := c.GetQuery("sort"); ok {
		key, err := recordstore.ParseContactSortKey(sort)
		if err != nil {
			s.abortWithError(c, err)
			return
		}
		contacts = recordstore.SortContacts(contacts, key)
	}
	c.IndentedJSON(http.StatusOK, contacts)
}

// createContact saves the contact specified in the request's JSON. It responds with the stored
// contact including its creation timestamp.
//
// Example REST API call:
//
//	> curl http://localhost:8080/contacts --request "POST" --include --header "Content-Type: application/json" --data '{"name": "Erika Mustermann", "email": "erika@example.com", "employer": "Initech"}'
func (s *Service) createContact(c *gin.Context) {
	var newContact model.Contact
	if err := c.ShouldBindJSON(&newContact); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "invalid JSON"})
		return
	}
	saved, err := s.contacts.Add(c.Request.Context(), newContact)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.IndentedJSON(http.StatusCreated, saved)
}

// clearContacts deletes all contacts.
//
// Example REST API call:
//
//	> curl http://localhost:8080/contacts --request "DELETE"
func (s *Service) clearContacts(c *gin.Context) {
	if err := s.contacts.Clear(c.Request.Context()); err != nil {
		s.abortWithError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"message": "contacts cleared"})
}

// deleteContact deletes the contact whose email address matches the email parameter of the
// request URL. Deleting an unknown email address succeeds as well.
//
// Example REST API call:
//
//	> curl http://localhost:8080/contacts/erika@example.com --request "DELETE"
func (s *Service) deleteContact(c *gin.Context) {
	if err := s.contacts.Remove(c.Request.Context(), c.Param("email")); err != nil {
		s.abortWithError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"message": "contact deleted"})
}

// toggleReachedOut flips the reached-out flag of the contact whose email address matches the
// email parameter of the request URL, then responds with the updated contact.
//
// Example REST API call:
//
//	> curl http://localhost:8080/contacts/erika@example.com/reached-out --request "PUT"
func (s *Service) toggleReachedOut(c *gin.Context) {
	updated, err := s.contacts.Update(c.Request.Context(), c.Param("email"), func(contact model.Contact) model.Contact {
		contact.ReachedOut = !contact.ReachedOut
		return contact
	})
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, updated)
}

// exportContacts responds with all contacts as a CSV file download.
//
// Example REST API call:
//
//	> curl --remote-name --remote-header-name http://localhost:8080/contacts/export
func (s *Service) exportContacts(c *gin.Context) {
	contacts, err := s.contacts.List(c.Request.Context())
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	if len(contacts) == 0 {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "no contacts to export"})
		return
	}
	s.sendCSV(c, "contacts", recordstore.ToCSV(contacts, recordstore.ContactColumns))
}

// prefillContact suggests contact fields for the page given in the URL parameter 'url'. Fields
// that could not be found are omitted. Scraper failures respond with an empty suggestion.
//
// Example REST API call:
//
//	> curl "http://localhost:8080/contacts/prefill?url=https://www.linkedin.com/in/erika/"
func (s *Service) prefillContact(c *gin.Context) {
	pageURL := c.Query("url")
	if pageURL == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "missing url parameter"})
		return
	}
	profile, err := s.scraper.Scrape(c.Request.Context(), pageURL)
	if err != nil {
		s.log.Warn("prefill failed", "url", pageURL, "err", err)
		profile = prefill.Profile{}
	}
	c.IndentedJSON(http.StatusOK, profile)
}

// composeIntroduction builds the introduction email for the contact whose email address matches
// the email parameter of the request URL and responds with a link that opens the draft.
//
// Example REST API call:
//
//	> curl http://localhost:8080/contacts/erika@example.com/compose
func (s *Service) composeIntroduction(c *gin.Context) {
	ctx := c.Request.Context()
	contact, err := s.contacts.Get(ctx, c.Param("email"))
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	templates, err := s.templates.Load(ctx)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	link, err := s.composer.Compose(ctx, compose.Introduction(contact, templates))
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"link": link})
}

// findJobs responds with the list of saved jobs as JSON. The URL parameter 'sort' accepts
// 'recent' and 'employer'.
//
// REST API calls:
//
//	> curl "http://localhost:8080/jobs"
//	> curl "http://localhost:8080/jobs?sort=recent"
func (s *Service) findJobs(c *gin.Context) {
	jobs, err := s.jobs.List(c.Request.Context())
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	if sort, ok := c.GetQuery("sort"); ok {
		key, err := recordstore.ParseJobSortKey(sort)
		if err != nil {
			s.abortWithError(c, err)
			return
		}
		jobs = recordstore.SortJobs(jobs, key)
	}
	c.IndentedJSON(http.StatusOK, jobs)
}

// createJob saves the job specified in the request's JSON. It responds with the stored job
// including its generated id and the date it was added.
//
// Example REST API call:
//
//	> curl http://localhost:8080/jobs --request "POST" --include --header "Content-Type: application/json" --data '{"title": "Backend Engineer", "employer": "Initech", "url": "https://initech.example/jobs/7", "dateApplied": "2024-05-01"}'
func (s *Service) createJob(c *gin.Context) {
	var newJob model.Job
	if err := c.ShouldBindJSON(&newJob); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "invalid JSON"})
		return
	}
	saved, err := s.jobs.Add(c.Request.Context(), newJob)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.IndentedJSON(http.StatusCreated, saved)
}

// clearJobs deletes all jobs.
//
// Example REST API call:
//
//	> curl http://localhost:8080/jobs --request "DELETE"
func (s *Service) clearJobs(c *gin.Context) {
	if err := s.jobs.Clear(c.Request.Context()); err != nil {
		s.abortWithError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"message": "jobs cleared"})
}

// deleteJob deletes the job whose id matches the id parameter of the request URL.
//
// Example REST API call:
//
//	> curl http://localhost:8080/jobs/job-0190f1c2-7b1e-7c3a-9f4e-3b2a1c0d9e8f --request "DELETE"
func (s *Service) deleteJob(c *gin.Context) {
	if err := s.jobs.Remove(c.Request.Context(), c.Param("id")); err != nil {
		s.abortWithError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, gin.H{"message": "job deleted"})
}

// exportJobs responds with all jobs as a CSV file download.
//
// Example REST API call:
//
//	> curl --remote-name --remote-header-name http://localhost:8080/jobs/export
func (s *Service) exportJobs(c *gin.Context) {
	jobs, err := s.jobs.List(c.Request.Context())
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	if len(jobs) == 0 {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": "no jobs to export"})
		return
	}
	s.sendCSV(c, "jobs", recordstore.ToCSV(jobs, recordstore.JobColumns))
}

// findLinks responds with the quick links.
//
// Example REST API call:
//
//	> curl http://localhost:8080/links
func (s *Service) findLinks(c *gin.Context) {
	links, err := s.links.Load(c.Request.Context())
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, links)
}

// replaceLinks replaces all quick links by the list in the request's JSON and responds with the
// stored links.
//
// Example REST API call:
//
//	> curl http://localhost:8080/links --request "PUT" --header "Content-Type: application/json" --data '[{"type": "github", "url": "https://github.com/erika"}]'
func (s *Service) replaceLinks(c *gin.Context) {
	var links []model.QuickLink
	if err := c.ShouldBindJSON(&links); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "invalid JSON"})
		return
	}
	saved, err := s.links.Save(c.Request.Context(), links)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, saved)
}

// findTemplates responds with all email templates by name.
//
// Example REST API call:
//
//	> curl http://localhost:8080/templates
func (s *Service) findTemplates(c *gin.Context) {
	templates, err := s.templates.Load(c.Request.Context())
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, templates)
}

// saveTemplate stores the template in the request's JSON under the name parameter of the
// request URL and responds with all templates.
//
// Example REST API call:
//
//	> curl http://localhost:8080/templates/introduction --request "PUT" --header "Content-Type: application/json" --data '{"subject": "Hello", "body": "Dear [Company] team,"}'
func (s *Service) saveTemplate(c *gin.Context) {
	var template model.EmailTemplate
	if err := c.ShouldBindJSON(&template); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "invalid JSON"})
		return
	}
	templates, err := s.templates.Save(c.Request.Context(), c.Param("name"), template)
	if err != nil {
		s.abortWithError(c, err)
		return
	}
	c.IndentedJSON(http.StatusOK, templates)
}

// sendCSV responds with body as a file download named after the collection and today's date.
func (s *Service) sendCSV(c *gin.Context, collection string, body string) {
	filename := recordstore.ExportFilename(collection, s.now())
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", []byte(body))
}

// abortWithError responds with the status code matching the kind of err. Unexpected errors are
// logged and hidden from the client.
func (s *Service) abortWithError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, recordstore.ErrValidation):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": err.Error()})
	case errors.Is(err, recordstore.ErrDuplicateKey):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"message": err.Error()})
	case errors.Is(err, recordstore.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"message": err.Error()})
	default:
		s.log.Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
	}
}
