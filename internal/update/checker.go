// Package update checks GitHub releases for a newer version of the
// application. The check is best-effort: any network or API problem is
// reported as a status, never an application failure.
package update

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
)

// DefaultTimeout bounds one release check.
const DefaultTimeout = 15 * time.Second

// Status summarizes the outcome of a release check.
type Status string

// Possible check outcomes
const (
	// StatusUpToDate means the running version is the latest release.
	StatusUpToDate Status = "up_to_date"

	// StatusUpdateAvailable means a newer release exists.
	StatusUpdateAvailable Status = "update_available"

	// StatusDevBuild means the running version is not a valid release
	// version (a local or development build), so no comparison was made.
	StatusDevBuild Status = "dev_build"

	// StatusUnavailable means the check could not be completed.
	StatusUnavailable Status = "unavailable"
)

// Result is the outcome of one release check.
type Result struct {
	Status         Status `json:"status"`
	CurrentVersion string `json:"current_version"`
	LatestVersion  string `json:"latest_version,omitempty"`
	ReleaseURL     string `json:"release_url,omitempty"`
}

// release is the subset of the GitHub release payload the checker reads.
type release struct {
	TagName    string `json:"tag_name"`
	Prerelease bool   `json:"prerelease"`
	Draft      bool   `json:"draft"`
	HTMLURL    string `json:"html_url"`
}

// Checker queries the GitHub releases API for the newest release of a
// repository.
type Checker struct {
	repo    string
	client  *http.Client
	logger  *slog.Logger
	baseURL string
}

// NewChecker creates a checker for the given GitHub "owner/name"
// repository. A non-positive timeout uses DefaultTimeout.
func NewChecker(repo string, timeout time.Duration, logger *slog.Logger) *Checker {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Checker{
		repo:    repo,
		client:  &http.Client{Timeout: timeout},
		logger:  logger.With(slog.String("component", "update_checker")),
		baseURL: "https://api.github.com",
	}
}

// Check compares currentVersion against the newest non-prerelease,
// non-draft release. It never returns an error: failures come back as
// StatusUnavailable so callers can surface them without special-casing.
func (c *Checker) Check(ctx context.Context, currentVersion string) Result {
	result := Result{CurrentVersion: currentVersion}

	current, err := semver.NewVersion(strings.TrimPrefix(currentVersion, "v"))
	if err != nil {
		result.Status = StatusDevBuild
		return result
	}

	latest, err := c.latestRelease(ctx)
	if err != nil {
		c.logger.Warn("release check failed", slog.String("error", err.Error()))
		result.Status = StatusUnavailable
		return result
	}

	latestVersion, err := semver.NewVersion(strings.TrimPrefix(latest.TagName, "v"))
	if err != nil {
		c.logger.Warn("latest release tag is not semver",
			slog.String("tag", latest.TagName))
		result.Status = StatusUnavailable
		return result
	}

	result.LatestVersion = latestVersion.String()
	result.ReleaseURL = latest.HTMLURL
	if latestVersion.GreaterThan(current) {
		result.Status = StatusUpdateAvailable
	} else {
		result.Status = StatusUpToDate
	}
	return result
}

// latestRelease returns the newest published release, skipping drafts and
// prereleases.
func (c *Checker) latestRelease(ctx context.Context) (*release, error) {
	url := fmt.Sprintf("%s/repos/%s/releases?per_page=10", c.baseURL, c.repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build release request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("release request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("github API rate limited")
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("repository %s has no releases", c.repo)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("unexpected status %d from github API", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read release response: %w", err)
	}

	var releases []release
	if err := json.Unmarshal(body, &releases); err != nil {
		return nil, fmt.Errorf("failed to decode release response: %w", err)
	}

	for i := range releases {
		if releases[i].Draft || releases[i].Prerelease {
			continue
		}
		return &releases[i], nil
	}
	return nil, fmt.Errorf("repository %s has no stable releases", c.repo)
}
