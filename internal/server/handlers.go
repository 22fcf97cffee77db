package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/aleister1102/pagecheck/internal/common/textsanitize"
	"github.com/aleister1102/pagecheck/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const auditIDHeader = "X-Audit-Id"

// handleAudit serves GET /?fetch_url=&timeout=&enforce_policy=
func (s *Server) handleAudit(c *gin.Context) {
	req := s.buildRequest(c)
	c.Header(auditIDHeader, req.ID)

	release, err := s.limiter.Acquire(c.Request.Context())
	if err != nil {
		s.logger.Warn().Err(err).Str("audit_id", req.ID).Msg("Audit not admitted")
		s.writeResult(c, models.TransportFailure(err))
		return
	}
	defer release()

	done := s.metrics.AuditStarted()
	defer done()

	s.writeResult(c, s.auditor.Audit(c.Request.Context(), req))
}

// buildRequest reads the query. A missing fetch_url is left empty and rejected by validation.
func (s *Server) buildRequest(c *gin.Context) models.AuditRequest {
	audit := s.config.AuditConfig

	req := models.NewAuditRequest(uuid.NewString(), c.Query("fetch_url"))
	req.Timeout = audit.DefaultTimeout()
	req.EnforcePolicy = audit.EnforcePolicy

	if raw := c.Query("timeout"); raw != "" {
		if timeout, ok := parseTimeout(raw); ok {
			req.Timeout = timeout
		}
	}

	if audit.AllowPolicyOptOut {
		if raw := c.Query("enforce_policy"); raw != "" {
			if enforce, err := strconv.ParseBool(raw); err == nil {
				req.EnforcePolicy = enforce
			}
		}
	}

	return req
}

// parseTimeout reads a millisecond timeout. Values too large for int64 are capped like any
// other oversized value.
func parseTimeout(raw string) (time.Duration, bool) {
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) && ms > 0 {
			return models.MaxAuditTimeout, true
		}
		return 0, false
	}
	return models.TimeoutFromMillis(ms)
}

func (s *Server) writeResult(c *gin.Context, result models.AuditResult) {
	body, err := textsanitize.MarshalJSON(result)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to encode audit result")
		body, _ = textsanitize.MarshalJSON(models.TransportFailure(err))
		c.Data(http.StatusInternalServerError, "application/json; charset=utf-8", body)
		return
	}
	c.Data(result.HTTPStatus(), "application/json; charset=utf-8", body)
}

// handleStatus is the liveness check
func (s *Server) handleStatus(c *gin.Context) {
	c.String(http.StatusOK, "OK!")
}
