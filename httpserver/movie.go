package httpserver

import (
	"moviefinder/errs"
	"moviefinder/movie"
	"moviefinder/pkg/metrics"
	"net/http"

	"github.com/labstack/echo/v4"
)

func (s *Server) RegisterMovieRoutes() {
	s.Router.GET("/movies/similar", s.handleSimilarMovies)
}

// handleSimilarMovies godoc
// @Summary Similar Movies
// @Description Resolve a title to its best TMDb match and list similar movies
// @Tags movies
// @Produce json
// @Param title query string true "Movie title"
// @Param year query int false "Release year to narrow the search"
// @Success 200 {array} movie.Movie
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /movies/similar [get]
func (s *Server) handleSimilarMovies(c echo.Context) error {
	if s.MovieService == nil {
		return errs.Errorf(errs.ENOTIMPLEMENTED, "movie service not configured")
	}

	req, err := bindSimilarMoviesRequest(c)
	if err != nil {
		metrics.ObserveLookup(metrics.LookupInvalid)
		return err
	}
	if req.Title == "" {
		metrics.ObserveLookup(metrics.LookupInvalid)
		return movie.ErrMissingTitle
	}
	if err := c.Validate(&req); err != nil {
		metrics.ObserveLookup(metrics.LookupInvalid)
		return err
	}

	movies, err := s.MovieService.FindSimilar(c.Request().Context(), req.ToQuery())
	metrics.ObserveLookup(lookupOutcome(err))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, movies)
}

func lookupOutcome(err error) string {
	if err == nil {
		return metrics.LookupFound
	}
	if metrics.IsBreakerRejection(err) {
		return metrics.LookupBreakerOpen
	}
	switch errs.ErrorCode(err) {
	case errs.EINVALID:
		return metrics.LookupInvalid
	case errs.ENOTFOUND:
		return metrics.LookupNotFound
	case errs.EUNAVAILABLE:
		return metrics.LookupUnavailable
	}
	return metrics.LookupUnclassified
}
