package movie

import (
	"encoding/json"
	"strings"

	"moviefinder/errs"
)

const upstreamUnavailableMessage = "There was an error searching for similar movies"

var (
	ErrMissingTitle = errs.Errorf(errs.EINVALID, "Must Provide a movie title")
	ErrInvalidYear  = errs.Errorf(errs.EINVALID, "invalid release year")
	ErrNotFound     = errs.Errorf(errs.ENOTFOUND, "Movie not found.")
)

// UpstreamUnavailable wraps a failed upstream call. The cause is kept for
// logging and is never part of the caller-facing message.
func UpstreamUnavailable(cause error) *errs.Error {
	return errs.Wrapf(cause, errs.EUNAVAILABLE, upstreamUnavailableMessage)
}

// Movie is a single upstream movie record. Only ID and Title are read by
// the lookup; the full upstream object is kept and written back verbatim.
type Movie struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`

	raw json.RawMessage
}

// NewMovie builds a record with no upstream payload attached.
func NewMovie(id int64, title string) Movie {
	return Movie{ID: id, Title: title}
}

func (m *Movie) UnmarshalJSON(data []byte) error {
	var fields struct {
		ID    int64  `json:"id"`
		Title string `json:"title"`
	}
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	m.ID = fields.ID
	m.Title = fields.Title
	m.raw = append(json.RawMessage(nil), data...)
	return nil
}

func (m Movie) MarshalJSON() ([]byte, error) {
	if len(m.raw) > 0 {
		return m.raw, nil
	}
	return json.Marshal(struct {
		ID    int64  `json:"id"`
		Title string `json:"title"`
	}{m.ID, m.Title})
}

// Query is a title lookup. Year optionally narrows the upstream search; the
// first result is still taken as-is.
type Query struct {
	Title string
	Year  int
}

func (q Query) Validate() error {
	if strings.TrimSpace(q.Title) == "" {
		return ErrMissingTitle
	}
	if q.Year < 0 {
		return ErrInvalidYear
	}
	return nil
}
