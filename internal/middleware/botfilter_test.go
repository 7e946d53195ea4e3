package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/contextual-news/internal/middleware"
)

func newBotFilterRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.BotFilter())
	r.POST("/events", func(c *gin.Context) {
		if c.GetBool("is_bot") {
			c.String(http.StatusOK, "bot")
			return
		}
		c.String(http.StatusOK, "human")
	})
	return r
}

func postWithUA(r *gin.Engine, userAgent string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/events", http.NoBody)
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestBotFilter_AllowsNormalUA(t *testing.T) {
	r := newBotFilterRouter()

	w := postWithUA(r, "Mozilla/5.0 (Windows NT 10.0; Win64; x64)")

	if w.Body.String() != "human" {
		t.Fatalf("expected 'human' for normal UA, got %q", w.Body.String())
	}
}

func TestBotFilter_FlagsGooglebot(t *testing.T) {
	r := newBotFilterRouter()

	w := postWithUA(r, "Googlebot/2.1 (+http://www.google.com/bot.html)")

	if w.Body.String() != "bot" {
		t.Fatalf("expected 'bot' for Googlebot, got %q", w.Body.String())
	}
}

func TestBotFilter_FlagsMissingUA(t *testing.T) {
	r := newBotFilterRouter()

	w := postWithUA(r, "")

	if w.Body.String() != "bot" {
		t.Fatalf("expected 'bot' for missing UA, got %q", w.Body.String())
	}
}
