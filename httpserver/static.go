package httpserver

import (
	"embed"

	"github.com/labstack/echo/v4"
)

//go:embed public
var publicFS embed.FS

// RegisterStaticRoutes serves the search form and its script. Unknown paths
// fall through to a JSON 404.
func (s *Server) RegisterStaticRoutes() {
	s.Router.StaticFS("/", echo.MustSubFS(publicFS, "public"))
}
