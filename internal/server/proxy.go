package server

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/TIMOVIS/mandarin-exam/internal/llm"
)

type proxyRequest struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload"`
}

type generatePayload struct {
	Prompt string `json:"prompt"`
}

type evaluatePayload struct {
	PromptText   string `json:"promptText"`
	IsMultimodal bool   `json:"isMultimodal"`
	InlineData   struct {
		MIMEType string `json:"mimeType"`
		Data     string `json:"data"`
	} `json:"inlineData"`
}

// proxy forwards generate and evaluate calls to the configured model so
// browsers never hold the API key.
func (s *Server) proxy(c *gin.Context) {
	if c.Request.Method != http.MethodPost {
		c.String(http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}
	if s.opts.Provider == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no LLM provider configured"})
		return
	}

	var req proxyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.proxyError(c, fmt.Errorf("decode request: %w", err))
		return
	}

	var msg llm.Message
	switch req.Action {
	case "generate":
		var p generatePayload
		if err := json.Unmarshal(req.Payload, &p); err != nil {
			s.proxyError(c, fmt.Errorf("decode generate payload: %w", err))
			return
		}
		msg = llm.Message{Role: llm.RoleUser, Content: p.Prompt}

	case "evaluate":
		var p evaluatePayload
		if err := json.Unmarshal(req.Payload, &p); err != nil {
			s.proxyError(c, fmt.Errorf("decode evaluate payload: %w", err))
			return
		}
		msg = llm.Message{Role: llm.RoleUser, Content: p.PromptText}
		if p.IsMultimodal {
			raw, err := base64.StdEncoding.DecodeString(p.InlineData.Data)
			if err != nil {
				s.proxyError(c, fmt.Errorf("decode inline data: %w", err))
				return
			}
			msg.Attachments = []llm.Attachment{{MIMEType: p.InlineData.MIMEType, Data: raw}}
		}

	default:
		c.String(http.StatusBadRequest, "Invalid Action")
		return
	}

	ctx := llm.WithPurpose(c.Request.Context(), llm.PurposeProxy)
	resp, err := s.opts.Provider.Generate(ctx, llm.Request{
		Messages:  []llm.Message{msg},
		MaxTokens: 8192,
	})
	if err != nil {
		s.proxyError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"text": responseText(resp.Content)})
}

func (s *Server) proxyError(c *gin.Context, err error) {
	s.log.Error("proxy request failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

// responseText unwraps a JSON string response; structured responses are
// returned as their JSON text.
func responseText(content json.RawMessage) string {
	var text string
	if err := json.Unmarshal(content, &text); err == nil {
		return text
	}
	return string(content)
}
