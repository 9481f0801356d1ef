package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"fileshare-api/internal/application/apperr"
)

func statusOf(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindAuthorization, apperr.KindCrypto:
		return http.StatusForbidden
	case apperr.KindExpired:
		return http.StatusGone
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err as {"error","code","details"}. Causes are logged,
// never returned.
func writeError(c *gin.Context, logger *zap.Logger, op string, err error) {
	var ae *apperr.Error
	if !errors.As(err, &ae) {
		ae = apperr.Storage(op, err)
	}

	status := statusOf(ae.Kind)
	if status == http.StatusInternalServerError {
		logger.Error(op+" error", zap.Error(err))
	}

	body := gin.H{
		"error": ae.Message,
		"code":  ae.Code,
	}
	if len(ae.Fields) > 0 {
		body["details"] = ae.Fields
	}
	c.JSON(status, body)
}
