package api

import (
	"time"

	"github.com/ethanbaker/attio-relay/internal/relay"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/newrelic/go-agent/v3/newrelic"
	log "github.com/sirupsen/logrus"
)

const (
	REQUEST_ID_HEADER     = "X-Request-ID"
	REQUEST_ID_KEY        = "request_id"
	MAX_REQUEST_ID_LENGTH = 128
)

// requestID tags each request with the caller's X-Request-ID, or a fresh one when
// the caller sent none or one that is not safe to echo and log
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(REQUEST_ID_HEADER)
		if !validRequestID(id) {
			id = uuid.NewString()
		}

		c.Set(REQUEST_ID_KEY, id)
		c.Header(REQUEST_ID_HEADER, id)
		c.Next()
	}
}

// validRequestID accepts non-empty ids of at most MAX_REQUEST_ID_LENGTH characters
// drawn from letters, digits, '.', '_' and '-'
func validRequestID(id string) bool {
	if id == "" || len(id) > MAX_REQUEST_ID_LENGTH {
		return false
	}

	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '.', r == '_', r == '-':
		default:
			return false
		}
	}
	return true
}

// transaction records each request as a New Relic web transaction. The transaction
// rides on the request context so outbound Attio calls are attached to it
func transaction(app *newrelic.Application) gin.HandlerFunc {
	return func(c *gin.Context) {
		if app == nil {
			c.Next()
			return
		}

		txn := app.StartTransaction(c.Request.Method + " " + c.FullPath())
		defer txn.End()

		txn.SetWebRequestHTTP(c.Request)
		txn.AddAttribute(REQUEST_ID_KEY, c.GetString(REQUEST_ID_KEY))
		c.Request = newrelic.RequestWithTransactionContext(c.Request, txn)

		c.Next()

		txn.SetWebResponse(nil).WriteHeader(c.Writer.Status())
	}
}

// accessLog logs one line per request. Bodies are never logged since they carry credentials
func accessLog(logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		entry := logger.WithContext(c.Request.Context()).WithFields(log.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     status,
			"latency":    time.Since(start).String(),
			"client_ip":  c.ClientIP(),
			"request_id": c.GetString(REQUEST_ID_KEY),
		})

		switch {
		case status >= 500:
			entry.Error("request failed")
		case status >= 400:
			entry.Warn("request rejected")
		default:
			entry.Info("request handled")
		}
	}
}

// recovery turns a panic into the same JSON envelope as any other internal error
func recovery(logger *log.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.WithContext(c.Request.Context()).
			WithField(REQUEST_ID_KEY, c.GetString(REQUEST_ID_KEY)).
			Errorf("recovered from panic: %v", recovered)

		result := relay.Unexpected(recovered)
		c.Data(result.Status, relay.CONTENT_TYPE, result.Body)
		c.Abort()
	})
}
