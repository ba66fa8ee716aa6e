package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"crm-simulator/internal/attempt"
)

// TrackInbound records mutating requests that do not originate from a
// trusted frontend origin. It captures the request body once, replays
// it to the downstream handler, and appends exactly one InboundAttempt
// after the response is known. A handler panic is logged with a 500
// sentinel and re-raised unchanged so the surrounding Recovery
// middleware produces the actual response.
func TrackInbound(log *attempt.Log[attempt.InboundAttempt], trustedOrigins []string, clock func() time.Time) gin.HandlerFunc {
	if clock == nil {
		clock = time.Now
	}
	trusted := make(map[string]struct{}, len(trustedOrigins))
	for _, o := range trustedOrigins {
		trusted[o] = struct{}{}
	}

	return func(c *gin.Context) {
		if !isMutating(c.Request.Method) {
			c.Next()
			return
		}
		if _, ok := trusted[c.GetHeader("Origin")]; ok {
			c.Next()
			return
		}

		method := c.Request.Method
		path := c.Request.URL.Path
		payload := capturePayload(c)

		defer func() {
			rec := attempt.InboundAttempt{
				ID:      uuid.NewString(),
				At:      clock().UTC(),
				Method:  method,
				Path:    path,
				Payload: payload,
			}
			if r := recover(); r != nil {
				msg := fmt.Sprint(r)
				rec.Success = false
				rec.StatusCode = http.StatusInternalServerError
				rec.Error = &msg
				log.Append(rec)
				panic(r)
			}
			status := c.Writer.Status()
			rec.Success = status < http.StatusBadRequest
			rec.StatusCode = status
			if len(c.Errors) > 0 {
				msg := c.Errors.String()
				rec.Error = &msg
			}
			log.Append(rec)
		}()

		c.Next()
	}
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	default:
		return false
	}
}

// capturePayload reads the body once and replaces it so the handler
// still sees the full content. The decoded JSON value is kept when the
// body parses, the raw text otherwise, nil for an empty body.
func capturePayload(c *gin.Context) any {
	if c.Request.Body == nil {
		return nil
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(body))
	if len(body) == 0 {
		return nil
	}
	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return string(body)
	}
	return payload
}
