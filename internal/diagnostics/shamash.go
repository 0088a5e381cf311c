// Package diagnostics renders issued planner queries as links to the
// GraphQL explorer ("shamash") so a failed search can be replayed by hand.
package diagnostics

import (
	"encoding/json"
	"net/url"
	"strings"

	"github.com/dharmasatrya/tripsearch/internal/upstream"
)

// LinkBuilder is disabled in production, where it returns no links.
type LinkBuilder struct {
	baseURL string
	enabled bool
}

func NewLinkBuilder(baseURL string, production bool) *LinkBuilder {
	return &LinkBuilder{
		baseURL: strings.TrimRight(baseURL, "/"),
		enabled: !production && baseURL != "",
	}
}

func (b *LinkBuilder) Enabled() bool {
	return b != nil && b.enabled
}

// Link returns the explorer URL for query with variables.
func (b *LinkBuilder) Link(query string, variables any) (string, bool) {
	if !b.Enabled() {
		return "", false
	}
	vars, err := json.Marshal(variables)
	if err != nil {
		return "", false
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("variables", string(vars))
	return b.baseURL + "/?" + params.Encode(), true
}

// TripQueryLinks renders one link per issued trip query.
func (b *LinkBuilder) TripQueryLinks(queries []upstream.TripVariables) []string {
	if !b.Enabled() {
		return nil
	}
	links := make([]string, 0, len(queries))
	for _, q := range queries {
		if link, ok := b.Link(upstream.TripQuery, q); ok {
			links = append(links, link)
		}
	}
	return links
}
