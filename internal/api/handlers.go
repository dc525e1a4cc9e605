package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-roast/internal/config"
	"go-roast/internal/roast"
)

// GET /health
func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

// GET /config
func configHandler(cfg *config.Config, svc *roast.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Only return non-sensitive config fields
		c.JSON(http.StatusOK, gin.H{
			"server": gin.H{
				"subpath": cfg.Server.Subpath,
			},
			"model": gin.H{
				"name":           cfg.OpenAI.Model,
				"temperature":    cfg.OpenAI.Temperature,
				"max_tokens":     cfg.OpenAI.MaxTokens,
				"key_configured": svc != nil && svc.Ready(),
			},
			"fetch": gin.H{
				"snippet_mode":   cfg.Fetch.SnippetMode,
				"snippet_length": cfg.Fetch.SnippetLength,
			},
		})
	}
}
