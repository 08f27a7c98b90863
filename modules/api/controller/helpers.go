package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/op/go-logging"
	"github.com/tryanzu/overflow/board/moderation"
	"github.com/tryanzu/overflow/board/propagation"
)

var log = logging.MustGetLogger("api")

func jsonErr(c *gin.Context, status int, message string) {
	// This specific json error structure is handled
	// by the frontend in a generic way so errors
	// can be shown to the user and also translated.
	c.AbortWithStatusJSON(status, gin.H{
		"status":  "error",
		"message": message,
	})
}

func jsonBindErr(c *gin.Context, status int, message string, bindErr error) {
	body := gin.H{
		"status":  "error",
		"message": message,
	}
	var verrs validator.ValidationErrors
	if errors.As(bindErr, &verrs) {
		details := make([]gin.H, len(verrs))
		for i, fe := range verrs {
			details[i] = gin.H{"field": fe.Field(), "rule": fe.Tag()}
		}
		body["details"] = details
	}
	c.AbortWithStatusJSON(status, body)
}

// jsonFail maps the error taxonomy to a response.
func jsonFail(c *gin.Context, err error) {
	var (
		verr    *moderation.ValidationError
		nf      *moderation.NotFoundError
		account *moderation.AccountError
		partial *propagation.Error
	)
	switch {
	case errors.As(err, &verr):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"status": "error", "message": verr.Error(), "field": verr.Field})
	case errors.Is(err, moderation.ErrNotAuthorized):
		jsonErr(c, http.StatusForbidden, err.Error())
	case errors.As(err, &account):
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"status": "error", "message": account.Error(), "banned": !account.Shadow})
	case errors.As(err, &nf):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"status": "error", "message": nf.Error(), "resolved": nf.Resolved})
	case errors.Is(err, moderation.ErrFlagLimit):
		jsonErr(c, http.StatusPreconditionFailed, err.Error())
	case errors.As(err, &partial):
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "propagation incomplete", "failed": partial.Steps()})
	default:
		log.Errorf("%s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
		jsonErr(c, http.StatusInternalServerError, err.Error())
	}
}

func queryInt(c *gin.Context, key string, fallback int) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return fallback
	}
	return n
}
