package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"go-roast/internal/logger"
	"go-roast/internal/roast"
)

const (
	errMethodNotAllowed = "Method not allowed"
	errInvalidURL       = `Missing or invalid "url"`
	errKeyNotConfigured = "OPENAI_API_KEY not configured"
)

// RoastHandler serves POST /api/roast. Upstream failures never surface as
// errors: once the request is valid and a key is configured the answer is 200.
func RoastHandler(svc *roast.Service, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodPost {
			c.Header("Allow", http.MethodPost)
			c.JSON(http.StatusMethodNotAllowed, gin.H{"error": errMethodNotAllowed})
			return
		}

		req, err := decodeRoastRequest(c)
		if err != nil {
			log.Debug("rejected roast request",
				logger.RequestField(c.Request.Context()),
				zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidURL})
			return
		}

		if svc == nil || !svc.Ready() {
			log.Error("roast requested without a configured API key",
				logger.RequestField(c.Request.Context()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": errKeyNotConfigured})
			return
		}

		result := svc.Roast(c.Request.Context(), req.URL)
		c.JSON(http.StatusOK, result.Response)
	}
}

var errURLRequired = errors.New("url is required")

// decodeRoastRequest binds the JSON body. Missing, empty or non-string url
// values and undecodable bodies are all rejected.
func decodeRoastRequest(c *gin.Context) (roast.Request, error) {
	var req roast.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return req, errURLRequired
		}
		return req, err
	}
	return req, nil
}
