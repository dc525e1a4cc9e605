package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-roast/internal/config"
	"go-roast/internal/roast"
)

func SetupRouter(cfg *config.Config, svc *roast.Service, log *zap.Logger) *gin.Engine {
	if log == nil {
		log = zap.NewNop()
	}
	r := gin.New()
	r.Use(RequestID(), RequestLogger(log), gin.Recovery())

	subpath := cfg.Server.Subpath // "" or e.g. "/roaster", never with a trailing slash

	roastHandler := RoastHandler(svc, log)
	roastPath := subpath + "/api/roast"

	group := r.Group(subpath)
	{
		group.GET("/health", healthHandler)
		group.GET("/config", configHandler(cfg, svc))

		// Method gating happens inside the handler so non-POST calls get Allow: POST.
		group.Any("/api/roast", roastHandler)
	}

	// Any only covers the standard methods; extension methods (PROPFIND, ...)
	// have no route tree and land here. Other paths fall through to gin's 404.
	r.NoRoute(func(c *gin.Context) {
		if c.Request.URL.Path == roastPath {
			roastHandler(c)
		}
	})
	return r
}
