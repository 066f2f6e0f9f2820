package core

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// blockedKeyword triggers a deterministic guardrail intervention on INPUT and
// OUTPUT checks.
const blockedKeyword = "아이유"

type (
	guardrailFile struct {
		Filename      string `json:"filename"`
		Mimetype      string `json:"mimetype"`
		ContentBase64 string `json:"content_base64"`
	}

	guardrailRequest struct {
		Text     string         `json:"text"`
		Source   string         `json:"source"`
		Metadata map[string]any `json:"metadata"`
		File     *guardrailFile `json:"file"`
	}

	guardrailResponse struct {
		Action         string         `json:"action"`
		IsSafe         bool           `json:"is_safe"`
		BlockedReasons map[string]any `json:"blocked_reasons,omitempty"`
	}
)

// handleGuardrail is a toy content-guardrail check. INPUT and OUTPUT sources
// get a keyword scan; FILE sources alternate pass/block on a process-wide
// counter so clients can exercise both outcomes.
func (s *Server) handleGuardrail(c *gin.Context) {
	s.logRequestHeaders(c, "guardrail request")

	var payload guardrailRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid JSON: " + err.Error()})
		return
	}

	s.logger.Info("guardrail check",
		zap.String("source", payload.Source),
		zap.Int("text_len", len(payload.Text)))

	if payload.Source == "FILE" {
		count := s.guardrailFileCalls.Add(1)
		if count%2 == 0 {
			s.logger.Info("guardrail file blocked", zap.Int64("file_call_count", count))
			c.JSON(http.StatusOK, guardrailResponse{
				Action: "GUARDRAIL_INTERVENED",
				IsSafe: false,
				BlockedReasons: map[string]any{
					"reason": "file guardrail blocked (simulated failure)",
				},
			})
			return
		}
		c.JSON(http.StatusOK, guardrailResponse{Action: "NONE", IsSafe: true})
		return
	}

	if strings.Contains(payload.Text, blockedKeyword) {
		s.logger.Info("guardrail keyword blocked")
		c.JSON(http.StatusOK, guardrailResponse{
			Action: "GUARDRAIL_INTERVENED",
			IsSafe: false,
			BlockedReasons: map[string]any{
				"reason": "content mentioning '" + blockedKeyword + "' is not allowed",
			},
		})
		return
	}

	c.JSON(http.StatusOK, guardrailResponse{Action: "NONE", IsSafe: true})
}
