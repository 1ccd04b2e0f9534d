package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aeoscan/aeoscan/internal/config"
	"github.com/aeoscan/aeoscan/internal/crawler"
	"github.com/aeoscan/aeoscan/internal/evidence"
	"github.com/aeoscan/aeoscan/internal/model"
	"github.com/aeoscan/aeoscan/internal/robots"
	"github.com/aeoscan/aeoscan/internal/rubric"
	"github.com/aeoscan/aeoscan/internal/score"
)

// State carries intermediate artifacts between steps that inform later
// stages but don't belong in the persisted report, such as the parsed
// robots rules and the discovered sitemap URL set.
//
// Design decision: Steps share a State pointer created alongside the
// pipeline instead of stashing these artifacts on the report, because
// the report is serialized to the database and raw rule sets are
// implementation detail, not audit output.
type State struct {
	// Rules are the parsed robots.txt rules, nil when robots.txt was
	// missing or unreadable (crawl everything).
	Rules *robots.RuleSet

	// SitemapURLs is the normalized set of page URLs listed in sitemaps.
	SitemapURLs map[string]bool
}

// EvidenceWriter persists captured evidence records.
// *database.AuditDB satisfies this interface.
type EvidenceWriter interface {
	InsertEvidence(ctx context.Context, record *model.EvidenceRecord) (int64, error)
}

// ReportSaver persists completed scan reports.
// *database.AuditDB satisfies this interface.
type ReportSaver interface {
	SaveScanReport(ctx context.Context, report *model.ScanReport) error
}

// siteBaseURL turns a target domain into a crawlable base URL.
// Targets that already carry a scheme pass through unchanged.
func siteBaseURL(domain string) string {
	if strings.Contains(domain, "://") {
		return domain
	}
	return "https://" + domain
}

// RobotsStep fetches and parses the site's robots.txt.
// The parsed rules gate every subsequent fetch, and any declared
// sitemaps and crawl delay are recorded on the report.
//
// Design decision: A missing or unreadable robots.txt is not an error.
// The convention is that absent rules mean everything is allowed, so
// the step records RobotsFound=false and lets the crawl proceed.
type RobotsStep struct {
	// client is the HTTP client used to fetch robots.txt.
	client *http.Client

	// state receives the parsed rule set for later steps.
	state *State

	// userAgent is sent with the request and matched against rules.
	userAgent string

	// maxBodySize limits the robots.txt size to read.
	maxBodySize int64

	// logger for structured logging.
	logger *slog.Logger
}

// RobotsStepOption configures a RobotsStep.
type RobotsStepOption func(*RobotsStep)

// WithRobotsUserAgent sets the user agent used for fetching and matching.
func WithRobotsUserAgent(ua string) RobotsStepOption {
	return func(s *RobotsStep) {
		s.userAgent = ua
	}
}

// WithRobotsLogger sets a custom logger for the robots step.
func WithRobotsLogger(logger *slog.Logger) RobotsStepOption {
	return func(s *RobotsStep) {
		s.logger = logger
	}
}

// NewRobotsStep creates a new robots.txt resolution step.
func NewRobotsStep(client *http.Client, state *State, opts ...RobotsStepOption) *RobotsStep {
	s := &RobotsStep{
		client:      client,
		state:       state,
		userAgent:   config.DefaultUserAgent,
		maxBodySize: 1 * 1024 * 1024, // 1MB, robots.txt is tiny in practice
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *RobotsStep) Name() string {
	return "robots"
}

// Do executes the robots resolution step.
func (s *RobotsStep) Do(ctx context.Context, report *model.ScanReport) error {
	robotsURL := siteBaseURL(report.Domain) + "/robots.txt"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return fmt.Errorf("build robots request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Debug("robots.txt unreachable", "url", robotsURL, "error", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.logger.Debug("robots.txt not found", "url", robotsURL, "status", resp.StatusCode)
		return nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBodySize))
	if err != nil {
		s.logger.Debug("robots.txt read failed", "url", robotsURL, "error", err)
		return nil
	}

	rules := robots.Parse(string(body))
	s.state.Rules = rules

	report.RobotsFound = true
	report.Sitemaps = rules.Sitemaps
	if rule := rules.FindMatchingRule(s.userAgent); rule != nil {
		report.CrawlDelay = rule.CrawlDelay
	}

	s.logger.Debug("robots.txt parsed",
		"url", robotsURL,
		"rules", len(rules.Rules),
		"sitemaps", len(rules.Sitemaps),
	)

	return nil
}

// SitemapStep downloads the site's sitemaps and builds the URL set the
// crawler uses to fill the SitemapListed signal. Sitemap URLs declared
// in robots.txt take precedence; without any, the conventional
// /sitemap.xml location is tried.
type SitemapStep struct {
	// client is the HTTP client used to fetch sitemaps.
	client *http.Client

	// state receives the discovered URL set.
	state *State

	// overrideSitemaps replaces robots-declared sitemaps when non-empty.
	overrideSitemaps []string

	// userAgent is sent with sitemap requests.
	userAgent string

	// logger for structured logging.
	logger *slog.Logger
}

// SitemapStepOption configures a SitemapStep.
type SitemapStepOption func(*SitemapStep)

// WithSitemapOverride sets explicit sitemap URLs to use instead of the
// ones declared in robots.txt.
func WithSitemapOverride(urls []string) SitemapStepOption {
	return func(s *SitemapStep) {
		s.overrideSitemaps = urls
	}
}

// WithSitemapStepUserAgent sets the user agent for sitemap requests.
func WithSitemapStepUserAgent(ua string) SitemapStepOption {
	return func(s *SitemapStep) {
		s.userAgent = ua
	}
}

// WithSitemapLogger sets a custom logger for the sitemap step.
func WithSitemapLogger(logger *slog.Logger) SitemapStepOption {
	return func(s *SitemapStep) {
		s.logger = logger
	}
}

// NewSitemapStep creates a new sitemap discovery step.
func NewSitemapStep(client *http.Client, state *State, opts ...SitemapStepOption) *SitemapStep {
	s := &SitemapStep{
		client:    client,
		state:     state,
		userAgent: config.DefaultUserAgent,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *SitemapStep) Name() string {
	return "sitemap"
}

// Do executes the sitemap discovery step.
// Sitemap failures are logged but never fail the audit.
func (s *SitemapStep) Do(ctx context.Context, report *model.ScanReport) error {
	sitemaps := report.Sitemaps
	if len(s.overrideSitemaps) > 0 {
		sitemaps = s.overrideSitemaps
		report.Sitemaps = s.overrideSitemaps
	}

	fetcher := crawler.NewSitemapFetcher(s.client, crawler.WithSitemapUserAgent(s.userAgent))
	urls, err := fetcher.Discover(ctx, siteBaseURL(report.Domain), sitemaps)
	if err != nil {
		s.logger.Debug("sitemap discovery failed", "domain", report.Domain, "error", err)
		return nil
	}

	s.state.SitemapURLs = urls
	report.SitemapURLCount = len(urls)

	s.logger.Debug("sitemaps discovered",
		"domain", report.Domain,
		"urls", len(urls),
	)

	return nil
}

// CrawlStep crawls the site and extracts per-page AEO signals.
// Robots rules resolved by the earlier step gate every fetch.
type CrawlStep struct {
	// client is the HTTP client for crawling.
	client *http.Client

	// state supplies the robots rules and sitemap URL set.
	state *State

	// maxDepth limits crawl recursion depth.
	maxDepth int

	// maxPages limits total pages crawled.
	maxPages int

	// delay is the configured politeness delay between requests.
	delay time.Duration

	// userAgent identifies the crawler.
	userAgent string

	// maxBodySize limits response body reads.
	maxBodySize int64

	// logger for structured logging.
	logger *slog.Logger
}

// CrawlStepOption configures a CrawlStep.
type CrawlStepOption func(*CrawlStep)

// WithCrawlMaxDepth sets the maximum crawl depth.
func WithCrawlMaxDepth(depth int) CrawlStepOption {
	return func(s *CrawlStep) {
		s.maxDepth = depth
	}
}

// WithCrawlMaxPages sets the maximum number of pages to crawl.
func WithCrawlMaxPages(maxPages int) CrawlStepOption {
	return func(s *CrawlStep) {
		s.maxPages = maxPages
	}
}

// WithCrawlDelay sets the delay between requests.
func WithCrawlDelay(d time.Duration) CrawlStepOption {
	return func(s *CrawlStep) {
		s.delay = d
	}
}

// WithCrawlUserAgent sets the User-Agent for crawling.
func WithCrawlUserAgent(userAgent string) CrawlStepOption {
	return func(s *CrawlStep) {
		s.userAgent = userAgent
	}
}

// WithCrawlMaxBodySize sets the maximum response body size.
func WithCrawlMaxBodySize(maxBodySize int64) CrawlStepOption {
	return func(s *CrawlStep) {
		s.maxBodySize = maxBodySize
	}
}

// WithCrawlLogger sets a custom logger for the crawl step.
func WithCrawlLogger(logger *slog.Logger) CrawlStepOption {
	return func(s *CrawlStep) {
		s.logger = logger
	}
}

// NewCrawlStep creates a new crawling step.
func NewCrawlStep(client *http.Client, state *State, opts ...CrawlStepOption) *CrawlStep {
	s := &CrawlStep{
		client:      client,
		state:       state,
		maxDepth:    config.DefaultCrawlDepth,
		maxPages:    config.DefaultMaxPages,
		delay:       config.DefaultCrawlDelay,
		userAgent:   config.DefaultUserAgent,
		maxBodySize: config.DefaultMaxBodySize,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *CrawlStep) Name() string {
	return "crawl"
}

// Do executes the crawl step.
func (s *CrawlStep) Do(ctx context.Context, report *model.ScanReport) error {
	spiderOpts := []crawler.SpiderOption{
		crawler.WithMaxDepth(s.maxDepth),
		crawler.WithMaxPages(s.maxPages),
		crawler.WithDelay(s.delay),
		crawler.WithSpiderUserAgent(s.userAgent),
		crawler.WithSpiderMaxBodySize(s.maxBodySize),
	}
	if s.state.Rules != nil {
		spiderOpts = append(spiderOpts, crawler.WithRobotsRules(s.state.Rules))
	}
	if len(s.state.SitemapURLs) > 0 {
		spiderOpts = append(spiderOpts, crawler.WithSitemapURLs(s.state.SitemapURLs))
	}

	spider := crawler.NewSpider(s.client, spiderOpts...)

	result, err := spider.Crawl(ctx, siteBaseURL(report.Domain))
	if result != nil {
		report.Pages = result.Pages
		report.PagesCrawled = result.Crawled
		report.PagesBlocked = result.Blocked
		report.CrawlDelay = result.CrawlDelay
	}
	if err != nil {
		return fmt.Errorf("crawl %s: %w", report.Domain, err)
	}

	s.logger.Debug("crawl complete",
		"domain", report.Domain,
		"crawled", result.Crawled,
		"blocked", result.Blocked,
	)

	return nil
}

// EvidenceStep captures redacted evidence for each crawled page and
// persists it. Findings in the final report reference evidence rows by
// ID rather than embedding content.
//
// Per-record persistence failures are logged and skipped; losing one
// snippet should not abort the audit.
type EvidenceStep struct {
	// store persists evidence records, nil disables capture.
	store EvidenceWriter

	// mode controls how much content each record retains.
	mode model.EvidenceMode

	// logger for structured logging.
	logger *slog.Logger
}

// EvidenceStepOption configures an EvidenceStep.
type EvidenceStepOption func(*EvidenceStep)

// WithEvidenceMode sets the capture mode.
func WithEvidenceMode(mode model.EvidenceMode) EvidenceStepOption {
	return func(s *EvidenceStep) {
		s.mode = mode
	}
}

// WithEvidenceLogger sets a custom logger for the evidence step.
func WithEvidenceLogger(logger *slog.Logger) EvidenceStepOption {
	return func(s *EvidenceStep) {
		s.logger = logger
	}
}

// NewEvidenceStep creates a new evidence capture step.
func NewEvidenceStep(store EvidenceWriter, opts ...EvidenceStepOption) *EvidenceStep {
	s := &EvidenceStep{
		store:  store,
		mode:   model.EvidenceModeExtractOnly,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *EvidenceStep) Name() string {
	return "evidence"
}

// Do executes the evidence capture step.
func (s *EvidenceStep) Do(ctx context.Context, report *model.ScanReport) error {
	if s.store == nil {
		return nil
	}

	for _, page := range report.Pages {
		for _, rec := range capturePageEvidence(page, s.mode) {
			id, err := s.store.InsertEvidence(ctx, &rec)
			if err != nil {
				s.logger.Warn("evidence insert failed",
					"page", page.URL,
					"type", rec.Type,
					"error", err,
				)
				continue
			}
			report.EvidenceIDs = append(report.EvidenceIDs, id)
		}
	}

	s.logger.Debug("evidence captured",
		"domain", report.Domain,
		"records", len(report.EvidenceIDs),
	)

	return nil
}

// capturePageEvidence builds the evidence records for one page: the
// title, the meta description, and every JSON-LD block.
func capturePageEvidence(page *model.PageSignals, mode model.EvidenceMode) []model.EvidenceRecord {
	var records []model.EvidenceRecord

	add := func(content, selector, evidenceType string) {
		if content == "" {
			return
		}
		rec := evidence.Capture(content, selector, evidenceType, mode)
		rec.PageURL = page.URL
		records = append(records, rec)
	}

	add(page.Title, "title", "meta_tag")
	add(page.MetaDescription, `meta[name="description"]`, "meta_tag")
	for _, block := range page.SchemaBlocks {
		add(block.Raw, `script[type="application/ld+json"]`, "schema_block")
	}

	return records
}

// ScoreStep runs the rubric over every crawled page and aggregates the
// per-page results into a site score.
type ScoreStep struct {
	// rubric is the scoring configuration.
	rubric *rubric.Rubric

	// siteType is the weighting profile used when the report carries none.
	siteType string

	// logger for structured logging.
	logger *slog.Logger
}

// ScoreStepOption configures a ScoreStep.
type ScoreStepOption func(*ScoreStep)

// WithScoreSiteType sets the fallback weighting profile.
func WithScoreSiteType(siteType string) ScoreStepOption {
	return func(s *ScoreStep) {
		s.siteType = siteType
	}
}

// WithScoreLogger sets a custom logger for the score step.
func WithScoreLogger(logger *slog.Logger) ScoreStepOption {
	return func(s *ScoreStep) {
		s.logger = logger
	}
}

// NewScoreStep creates a new scoring step with the given rubric.
func NewScoreStep(r *rubric.Rubric, opts ...ScoreStepOption) *ScoreStep {
	s := &ScoreStep{
		rubric:   r,
		siteType: config.DefaultSiteType,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *ScoreStep) Name() string {
	return "score"
}

// Do executes the scoring step.
func (s *ScoreStep) Do(_ context.Context, report *model.ScanReport) error {
	if len(report.Pages) == 0 {
		s.logger.Warn("no pages to score", "domain", report.Domain)
		return nil
	}

	if report.SiteType == "" {
		report.SiteType = s.siteType
	}

	if report.PageScores == nil {
		report.PageScores = make(map[string]*model.ScoreResult, len(report.Pages))
	}
	for _, page := range report.Pages {
		report.PageScores[page.URL] = score.ScorePage(page, s.rubric, report.SiteType, report.DateScanned)
	}

	// Aggregate in URL order for deterministic output.
	results := make([]*model.ScoreResult, 0, len(report.PageScores))
	for _, u := range report.SortedPageURLs() {
		results = append(results, report.PageScores[u])
	}
	report.SiteScore = score.ScoreSite(results, s.rubric, report.DateScanned)

	s.logger.Debug("scoring complete",
		"domain", report.Domain,
		"pages", len(report.PageScores),
		"overall", report.SiteScore.OverallScore,
	)

	return nil
}

// PersistStep saves the completed report to the database.
type PersistStep struct {
	// saver persists the report, nil disables persistence.
	saver ReportSaver

	// logger for structured logging.
	logger *slog.Logger
}

// PersistStepOption configures a PersistStep.
type PersistStepOption func(*PersistStep)

// WithPersistLogger sets a custom logger for the persist step.
func WithPersistLogger(logger *slog.Logger) PersistStepOption {
	return func(s *PersistStep) {
		s.logger = logger
	}
}

// NewPersistStep creates a new persistence step.
func NewPersistStep(saver ReportSaver, opts ...PersistStepOption) *PersistStep {
	s := &PersistStep{
		saver:  saver,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *PersistStep) Name() string {
	return "persist"
}

// Do executes the persistence step.
func (s *PersistStep) Do(ctx context.Context, report *model.ScanReport) error {
	if s.saver == nil {
		return nil
	}

	if err := s.saver.SaveScanReport(ctx, report); err != nil {
		return fmt.Errorf("save report for %s: %w", report.Domain, err)
	}

	s.logger.Debug("report persisted", "domain", report.Domain)
	return nil
}

// DefaultPipelineConfig holds the configuration for building the
// standard audit pipeline.
type DefaultPipelineConfig struct {
	// CrawlDepth is the maximum crawl recursion depth.
	CrawlDepth int

	// MaxPages is the page budget per site.
	MaxPages int

	// CrawlDelay is the politeness delay between requests.
	CrawlDelay time.Duration

	// UserAgent identifies the auditor.
	UserAgent string

	// MaxBodySize limits response body reads.
	MaxBodySize int64

	// EvidenceMode controls evidence capture.
	EvidenceMode model.EvidenceMode

	// SiteType is the fallback scoring profile.
	SiteType string

	// Sitemaps overrides robots-declared sitemap URLs when non-empty.
	Sitemaps []string
}

// DefaultPipelineOption configures the default pipeline.
type DefaultPipelineOption func(*DefaultPipelineConfig)

// WithPipelineCrawlDepth sets the crawl depth.
func WithPipelineCrawlDepth(depth int) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.CrawlDepth = depth
	}
}

// WithPipelineCrawlMaxPages sets the page budget.
func WithPipelineCrawlMaxPages(maxPages int) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.MaxPages = maxPages
	}
}

// WithPipelineCrawlDelay sets the politeness delay.
func WithPipelineCrawlDelay(delay time.Duration) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.CrawlDelay = delay
	}
}

// WithPipelineUserAgent sets the User-Agent.
func WithPipelineUserAgent(userAgent string) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.UserAgent = userAgent
	}
}

// WithPipelineMaxBodySize sets the response body limit.
func WithPipelineMaxBodySize(maxBodySize int64) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.MaxBodySize = maxBodySize
	}
}

// WithPipelineEvidenceMode sets the evidence capture mode.
func WithPipelineEvidenceMode(mode model.EvidenceMode) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.EvidenceMode = mode
	}
}

// WithPipelineSiteType sets the fallback scoring profile.
func WithPipelineSiteType(siteType string) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.SiteType = siteType
	}
}

// WithPipelineSitemaps sets explicit sitemap URLs.
func WithPipelineSitemaps(urls []string) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Sitemaps = urls
	}
}

// DefaultPipeline builds the standard audit pipeline: robots resolution,
// sitemap discovery, crawling, evidence capture, scoring, and persistence.
// The store and saver may be nil to disable evidence capture and report
// persistence respectively.
func DefaultPipeline(
	client *http.Client,
	r *rubric.Rubric,
	store EvidenceWriter,
	saver ReportSaver,
	pipelineOpts []Option,
	configOpts ...DefaultPipelineOption,
) *Pipeline {
	cfg := &DefaultPipelineConfig{
		CrawlDepth:   config.DefaultCrawlDepth,
		MaxPages:     config.DefaultMaxPages,
		CrawlDelay:   config.DefaultCrawlDelay,
		UserAgent:    config.DefaultUserAgent,
		MaxBodySize:  config.DefaultMaxBodySize,
		EvidenceMode: model.EvidenceModeExtractOnly,
		SiteType:     config.DefaultSiteType,
	}

	for _, opt := range configOpts {
		opt(cfg)
	}

	state := &State{}
	p := New(pipelineOpts...)

	p.AddSteps(
		NewRobotsStep(client, state, WithRobotsUserAgent(cfg.UserAgent)),
		NewSitemapStep(client, state,
			WithSitemapStepUserAgent(cfg.UserAgent),
			WithSitemapOverride(cfg.Sitemaps),
		),
		NewCrawlStep(client, state,
			WithCrawlMaxDepth(cfg.CrawlDepth),
			WithCrawlMaxPages(cfg.MaxPages),
			WithCrawlDelay(cfg.CrawlDelay),
			WithCrawlUserAgent(cfg.UserAgent),
			WithCrawlMaxBodySize(cfg.MaxBodySize),
		),
		NewEvidenceStep(store, WithEvidenceMode(cfg.EvidenceMode)),
		NewScoreStep(r, WithScoreSiteType(cfg.SiteType)),
		NewPersistStep(saver),
	)

	return p
}
