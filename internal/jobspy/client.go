// Package jobspy queries the JobSpy scraping API across job platforms.
//
// Platform quirks (measured against the live API):
//   - indeed: 1-2s, requires country_indeed (full country name)
//   - linkedin: 0.6-1s, ignores country_indeed, job_type comes back null
//   - glassdoor: 0.3s, requires country_indeed, least reliable
//
// The API has no 429 responses; timeouts show up instead, so searches wait a
// cooldown between platforms.
package jobspy

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/waterboxdeveloper/miprimerachamba-bot/pkg/errors"
	"github.com/waterboxdeveloper/miprimerachamba-bot/pkg/types"
)

const (
	searchPath         = "/api/v1/search_jobs"
	healthPath         = "/health"
	defaultTimeout     = 30 * time.Second
	defaultCooldown    = 2 * time.Second
	healthCheckTimeout = 5 * time.Second

	// DefaultResultsWanted is what the API is asked for per platform.
	DefaultResultsWanted = 25
)

// Client talks to the JobSpy API.
type Client struct {
	baseURL  string
	client   *http.Client
	cooldown time.Duration
}

// New constructs a client with a shared HTTP client. A zero timeout falls
// back to 30s.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		client:   &http.Client{Timeout: timeout},
		cooldown: defaultCooldown,
	}
}

// SetCooldown overrides the inter-platform wait. Tests shorten it.
func (c *Client) SetCooldown(d time.Duration) {
	c.cooldown = d
}

// SearchParams are the caller-supplied search criteria.
type SearchParams struct {
	Keywords      string
	Country       string
	JobType       string   // optional, one of types.ValidJobTypes
	IsRemote      *bool    // optional
	Platforms     []string // default: all three, in order
	ResultsWanted int      // default: DefaultResultsWanted
}

// searchResponse mirrors the top-level JobSpy JSON response.
type searchResponse struct {
	Jobs  []jobRecord `json:"jobs"`
	Count int         `json:"count"`
}

// jobRecord mirrors a single JobSpy listing.
type jobRecord struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Company     string `json:"company"`
	JobURL      string `json:"job_url"`
	Location    string `json:"location"`
	IsRemote    bool   `json:"is_remote"`
	Description string `json:"description"`
	JobType     string `json:"job_type"`
	DatePosted  string `json:"date_posted"`
}

// Search validates params, then queries each platform in order. A failing
// platform is logged and skipped; a single outage never aborts the whole
// search. Results are concatenated in platform order without deduplication.
func (c *Client) Search(ctx context.Context, p SearchParams) ([]types.Job, error) {
	country, err := validateParams(p)
	if err != nil {
		return nil, err
	}

	platforms := p.Platforms
	if len(platforms) == 0 {
		platforms = types.ValidPlatforms
	}
	resultsWanted := p.ResultsWanted
	if resultsWanted <= 0 {
		resultsWanted = DefaultResultsWanted
	}

	var allJobs []types.Job

	for i, platform := range platforms {
		if i > 0 {
			select {
			case <-ctx.Done():
				return allJobs, ctx.Err()
			case <-time.After(c.cooldown):
			}
		}

		slog.Info("buscando empleos", "platform", platform, "keywords", p.Keywords, "country", country)

		jobs, err := c.searchPlatform(ctx, platform, p.Keywords, country, p.JobType, p.IsRemote, resultsWanted)
		if err != nil {
			slog.Error("error buscando en plataforma, se omite", "platform", platform, "error", err)
			continue
		}
		allJobs = append(allJobs, jobs...)
	}

	slog.Info("búsqueda agregada completa", "total", len(allJobs), "platforms", len(platforms))

	return allJobs, nil
}

// searchPlatform performs one API call for a single platform.
// linkedin ignores country_indeed, job_type and is_remote; they are sent
// anyway for uniformity, nothing assumes they take effect.
func (c *Client) searchPlatform(ctx context.Context, platform, keywords, country, jobType string, isRemote *bool, resultsWanted int) ([]types.Job, error) {
	params := url.Values{}
	params.Set("search_term", keywords)
	params.Set("site_name", platform)
	params.Set("results_wanted", strconv.Itoa(resultsWanted))
	params.Set("country_indeed", country)
	if jobType != "" {
		params.Set("job_type", jobType)
	}
	if isRemote != nil {
		params.Set("is_remote", strconv.FormatBool(*isRemote))
	}

	reqURL := c.baseURL + searchPath + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http GET: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("jobspy returned %d: %s", resp.StatusCode, string(body))
	}

	var apiResp searchResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}

	slog.Info("plataforma respondió",
		"platform", platform,
		"count", apiResp.Count,
		"duration_ms", time.Since(start).Milliseconds())

	jobs := make([]types.Job, 0, len(apiResp.Jobs))
	for _, r := range apiResp.Jobs {
		job := types.Job{
			Title:       r.Title,
			Company:     r.Company,
			JobURL:      r.JobURL,
			Location:    r.Location,
			IsRemote:    r.IsRemote,
			JobType:     r.JobType,
			Description: r.Description,
			Source:      platform,
			DatePosted:  r.DatePosted,
		}
		if err := job.Validate(); err != nil {
			slog.Warn("registro inválido descartado", "platform", platform, "error", err)
			continue
		}
		jobs = append(jobs, job)
	}

	return jobs, nil
}

// HealthCheck probes the API liveness endpoint. It never returns an error;
// any failure reads as false.
func (c *Client) HealthCheck(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+healthPath, nil)
	if err != nil {
		return false
	}

	resp, err := c.client.Do(req)
	if err != nil {
		slog.Error("API no está disponible", "error", err)
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK
}

// validateParams rejects bad input before any network call, returning the
// canonical country name on success.
func validateParams(p SearchParams) (string, error) {
	if strings.TrimSpace(p.Keywords) == "" {
		return "", errors.ErrEmptyKeywords()
	}

	country, ok := types.NormalizeCountry(p.Country)
	if !ok {
		return "", errors.ErrInvalidCountry(p.Country, strings.Join(types.CountryNames(), ", "))
	}

	if p.JobType != "" {
		if _, ok := types.NormalizeJobType(p.JobType); !ok {
			return "", errors.ErrInvalidJobType(p.JobType, strings.Join(types.ValidJobTypes, ", "))
		}
	}

	return country, nil
}
