// Package registry queries the package index for project metadata.
// The default endpoint is the public PyPI JSON API; private mirrors are
// supported through a base URL override and a Bearer token env var.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	masterminds "github.com/Masterminds/semver/v3"
)

// DefaultBaseURL is the public PyPI JSON API.
const DefaultBaseURL = "https://pypi.org/pypi"

// ErrNotFound is returned when the index has no project by that name.
var ErrNotFound = errors.New("project not found")

// Client is a PyPI JSON API client.
type Client struct {
	baseURL string
	http    *httpClient
}

// NewClient creates a client. baseURL "" uses the public index;
// timeoutSecs <= 0 uses a 10s default; authEnv "" sends no credentials.
func NewClient(baseURL string, timeoutSecs int, authEnv string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    newHTTPClient(timeoutSecs, authEnv),
	}
}

// Project is the subset of index metadata pindown consumes.
type Project struct {
	Name      string
	Latest    string    // index's current release version
	Releases  []Release // all published versions, ascending where parseable
	SourceURL string    // API URL that was queried
}

// Release is one published version.
type Release struct {
	Version string
	Yanked  bool
}

// pypiResponse matches the PyPI JSON API response shape.
type pypiResponse struct {
	Info struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	} `json:"info"`
	Releases map[string][]struct {
		Yanked bool `json:"yanked"`
	} `json:"releases"`
}

// Project fetches metadata for one package by name.
func (c *Client) Project(ctx context.Context, name string) (*Project, error) {
	url := fmt.Sprintf("%s/%s/json", c.baseURL, name)

	var resp pypiResponse
	if err := c.http.fetchJSON(ctx, url, &resp); err != nil {
		return nil, err
	}

	p := &Project{
		Name:      resp.Info.Name,
		Latest:    resp.Info.Version,
		SourceURL: url,
	}

	for version, files := range resp.Releases {
		// A release counts as yanked when every file of it is yanked.
		yanked := len(files) > 0
		for _, f := range files {
			if !f.Yanked {
				yanked = false
				break
			}
		}
		p.Releases = append(p.Releases, Release{Version: version, Yanked: yanked})
	}
	sortReleases(p.Releases)

	return p, nil
}

// ReleaseYanked reports whether a specific published version is yanked.
// Unknown versions return false.
func (p *Project) ReleaseYanked(version string) bool {
	for _, r := range p.Releases {
		if r.Version == version {
			return r.Yanked
		}
	}
	return false
}

// HasRelease reports whether the index knows the given version.
func (p *Project) HasRelease(version string) bool {
	for _, r := range p.Releases {
		if r.Version == version {
			return true
		}
	}
	return false
}

// sortReleases orders releases ascending by parsed version; versions that
// fail to parse sort first by raw string.
func sortReleases(releases []Release) {
	sort.SliceStable(releases, func(i, j int) bool {
		vi := lenientVersion(releases[i].Version)
		vj := lenientVersion(releases[j].Version)
		switch {
		case vi == nil && vj == nil:
			return releases[i].Version < releases[j].Version
		case vi == nil:
			return true
		case vj == nil:
			return false
		default:
			return vi.LessThan(vj)
		}
	})
}

// lenientVersion parses a version string, stripping a leading 'v' and any
// local-version suffix.
func lenientVersion(s string) *masterminds.Version {
	clean := strings.TrimPrefix(s, "v")
	if idx := strings.IndexByte(clean, '+'); idx >= 0 {
		clean = clean[:idx]
	}
	v, err := masterminds.NewVersion(clean)
	if err != nil {
		return nil
	}
	return v
}
