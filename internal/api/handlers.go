package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"amc-news-assistant/internal/app"
	"amc-news-assistant/internal/apperr"
	"amc-news-assistant/internal/models"
)

const healthPingTimeout = 2 * time.Second

func errorBody(message string) gin.H {
	return gin.H{"status": app.StatusError, "message": message}
}

func (s *Server) handleAsk(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, errorBody("Invalid request format"))
		return
	}

	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil || data == nil {
		c.JSON(http.StatusBadRequest, errorBody("Invalid request format"))
		return
	}

	value, ok := data["message"]
	if !ok {
		c.JSON(http.StatusBadRequest, errorBody("No message provided"))
		return
	}
	message, ok := value.(string)
	if !ok || strings.TrimSpace(message) == "" {
		c.JSON(http.StatusBadRequest, errorBody("Invalid message format"))
		return
	}

	language, _ := data["language"].(string)
	if language == "" {
		language = models.LangAmharic
	}

	resp, err := s.asker.Ask(c.Request.Context(), app.Request{Message: message, Language: language})
	if err != nil {
		_ = c.Error(err)
		status := http.StatusInternalServerError
		if apperr.Is(err, apperr.KindValidation) {
			status = http.StatusBadRequest
		}
		s.logger.Error("Error processing request", "error", err)
		c.JSON(status, errorBody(err.Error()))
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleHealth(c *gin.Context) {
	store := "not available"
	if s.store != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthPingTimeout)
		defer cancel()
		if err := s.store.Ping(ctx); err == nil {
			store = "connected"
		} else {
			s.logger.Warn("Article store ping failed", "error", err)
		}
	}

	scraperStatus := "not initialized"
	if s.scraperReady {
		scraperStatus = "initialized"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"mongodb": store,
		"scraper": scraperStatus,
		"version": s.version,
	})
}
