package httpserver

import (
	"errors"
	"moviefinder/errs"
	"moviefinder/movie"
	"strings"

	"github.com/labstack/echo/v4"
)

type SimilarMoviesRequest struct {
	Title string `query:"title" validate:"required"`
	Year  int    `query:"year" validate:"omitempty,gte=1870,lte=9999"`
}

// bindSimilarMoviesRequest reads only the query string. A GET body, whatever
// its media type, is ignored.
func bindSimilarMoviesRequest(c echo.Context) (SimilarMoviesRequest, error) {
	var req SimilarMoviesRequest
	err := echo.QueryParamsBinder(c).
		String("title", &req.Title).
		Int("year", &req.Year).
		BindError()
	if err != nil {
		var be *echo.BindingError
		if errors.As(err, &be) && be.Field == "year" {
			return req, movie.ErrInvalidYear
		}
		return req, errs.Wrapf(err, errs.EINVALID, "invalid query parameters")
	}
	req.Title = strings.TrimSpace(req.Title)
	return req, nil
}

func (r SimilarMoviesRequest) ToQuery() movie.Query {
	return movie.Query{
		Title: r.Title,
		Year:  r.Year,
	}
}
