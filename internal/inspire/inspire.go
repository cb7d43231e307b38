// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package inspire queries the INSPIRE-HEP literature API for citation
// counts, abstracts, and date-bounded LHCb paper listings.
package inspire

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/reallyblaised/beauty-in-stats/internal/httputil"
	"github.com/reallyblaised/beauty-in-stats/pkg/types"
)

// APIBase is the INSPIRE-HEP API root. Declared as a var so tests can
// substitute an httptest server.
var APIBase = "https://inspirehep.net/api"

// queryFields limits the literature response to what the corpus needs.
const queryFields = "titles,arxiv_eprints,dois,citation_count,abstracts"

// pageSize is the API maximum per request, used when paginating an
// unbounded query.
const pageSize = 250

// Client talks to the INSPIRE-HEP literature endpoint.
type Client struct {
	HTTP *http.Client
	Cfg  types.InspireConfig
}

// NewClient builds a client with the configured timeout.
func NewClient(cfg types.InspireConfig) *Client {
	return &Client{
		HTTP: &http.Client{Timeout: cfg.Timeout},
		Cfg:  cfg,
	}
}

type literatureResponse struct {
	Hits struct {
		Total int `json:"total"`
		Hits  []struct {
			Metadata metadata `json:"metadata"`
		} `json:"hits"`
	} `json:"hits"`
}

type metadata struct {
	Titles []struct {
		Title string `json:"title"`
	} `json:"titles"`
	ArxivEprints []struct {
		Value string `json:"value"`
	} `json:"arxiv_eprints"`
	CitationCount int        `json:"citation_count"`
	Abstracts     []abstract `json:"abstracts"`
}

type abstract struct {
	Source string `json:"source"`
	Value  string `json:"value"`
}

// preferredAbstract picks the arXiv-sourced abstract when present,
// otherwise the first available one.
func preferredAbstract(abstracts []abstract) string {
	for _, a := range abstracts {
		if a.Source == "arXiv" {
			return a.Value
		}
	}
	if len(abstracts) > 0 {
		return abstracts[0].Value
	}
	return ""
}

// Enrich fills the paper's citation count and abstract from INSPIRE.
// Papers without an arXiv id are left untouched. Callers treat a
// returned error as a degraded record, not a batch failure.
func (c *Client) Enrich(ctx context.Context, paper *types.Paper) error {
	if paper.ArxivID == "" {
		return nil
	}

	params := url.Values{}
	params.Set("q", "arxiv:"+paper.ArxivID)
	params.Set("fields", queryFields)

	resp, err := c.get(ctx, params)
	if err != nil {
		return err
	}

	if len(resp.Hits.Hits) == 0 {
		return fmt.Errorf("no INSPIRE record for arXiv:%s", paper.ArxivID)
	}

	meta := resp.Hits.Hits[0].Metadata
	paper.Citations = meta.CitationCount
	paper.Abstract = strings.TrimSpace(preferredAbstract(meta.Abstracts))
	return nil
}

// FetchLHCbPapers queries INSPIRE for LHCb collaboration articles,
// optionally date-bounded, sorted by sortBy ("mostcited" or
// "mostrecent"). maxResults of 0 paginates through every match.
func (c *Client) FetchLHCbPapers(ctx context.Context, startDate, endDate string, maxResults int, sortBy string, w io.Writer) ([]*types.Paper, error) {
	query := `collaboration:"LHCb" and document_type:article`
	if startDate != "" {
		query += " and date>=" + startDate
	}
	if endDate != "" {
		query += " and date<=" + endDate
	}
	if sortBy == "" {
		sortBy = "mostcited"
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("sort", sortBy)
	params.Set("fields", queryFields)

	if maxResults > 0 {
		params.Set("size", strconv.Itoa(maxResults))
		resp, err := c.get(ctx, params)
		if err != nil {
			return nil, err
		}
		return papersFromResponse(resp), nil
	}

	// Unbounded: walk the API's pages.
	params.Set("size", strconv.Itoa(pageSize))
	var papers []*types.Paper
	for page := 1; ; page++ {
		params.Set("page", strconv.Itoa(page))
		resp, err := c.get(ctx, params)
		if err != nil {
			return papers, err
		}
		batch := papersFromResponse(resp)
		papers = append(papers, batch...)
		fmt.Fprintf(w, "INSPIRE page %d: %d papers (total available %d)\n",
			page, len(batch), resp.Hits.Total)
		if len(resp.Hits.Hits) < pageSize {
			break
		}
	}
	return papers, nil
}

func papersFromResponse(resp *literatureResponse) []*types.Paper {
	var papers []*types.Paper
	for _, hit := range resp.Hits.Hits {
		meta := hit.Metadata
		if len(meta.Titles) == 0 {
			continue
		}
		p := &types.Paper{
			Title:     strings.TrimSpace(meta.Titles[0].Title),
			Citations: meta.CitationCount,
			Abstract:  strings.TrimSpace(preferredAbstract(meta.Abstracts)),
		}
		if len(meta.ArxivEprints) > 0 {
			p.ArxivID = meta.ArxivEprints[0].Value
		}
		papers = append(papers, p)
	}
	return papers
}

func (c *Client) get(ctx context.Context, params url.Values) (*literatureResponse, error) {
	reqURL := APIBase + "/literature?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.Cfg.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := httputil.DoWithRetry(ctx, c.HTTP, req, 0)
	if err != nil {
		return nil, fmt.Errorf("INSPIRE API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("INSPIRE API returned HTTP %d", resp.StatusCode)
	}

	var lit literatureResponse
	if err := json.NewDecoder(resp.Body).Decode(&lit); err != nil {
		return nil, fmt.Errorf("parsing INSPIRE response: %w", err)
	}
	return &lit, nil
}
