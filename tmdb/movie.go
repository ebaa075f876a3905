package tmdb

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"moviefinder/movie"
)

const (
	endpointSearch  = "search"
	endpointSimilar = "similar"
)

var errNoResults = errors.New("response has no results field")

// resultsPage is the paged envelope shared by /search/movie and
// /movie/{id}/similar. Only the first page is ever read.
type resultsPage struct {
	Page         int           `json:"page"`
	Results      []movie.Movie `json:"results"`
	TotalPages   int           `json:"total_pages"`
	TotalResults int           `json:"total_results"`
}

// SearchMovies returns the first page of /search/movie in TMDb's relevance
// order. A body without results counts as no match.
func (c *Client) SearchMovies(ctx context.Context, q movie.Query) (movies []movie.Movie, err error) {
	defer func(start time.Time) { c.observe(endpointSearch, start, err) }(time.Now())

	params := url.Values{"query": {q.Title}}
	if q.Year > 0 {
		params.Set("year", strconv.Itoa(q.Year))
	}
	if c.includeAdult {
		params.Set("include_adult", "true")
	}

	var page resultsPage
	if err = c.get(ctx, endpointSearch, "/search/movie", params, &page); err != nil {
		return nil, err
	}
	return page.Results, nil
}

// SimilarMovies returns the first page of /movie/{id}/similar unmodified.
func (c *Client) SimilarMovies(ctx context.Context, id int64) (movies []movie.Movie, err error) {
	defer func(start time.Time) { c.observe(endpointSimilar, start, err) }(time.Now())

	var page resultsPage
	if err = c.get(ctx, endpointSimilar, fmt.Sprintf("/movie/%d/similar", id), nil, &page); err != nil {
		return nil, err
	}
	if page.Results == nil {
		return nil, fmt.Errorf("tmdb %s %d: %w", endpointSimilar, id, errNoResults)
	}
	return page.Results, nil
}
