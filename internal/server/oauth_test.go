package server

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang.org/x/oauth2"
)

// newExchangeConfig points token exchange at a local server that always
// returns a fixed access token.
func newExchangeConfig(t *testing.T) *oauth2.Config {
	t.Helper()

	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token": "test-access", "token_type": "Bearer", "refresh_token": "test-refresh"}`)
	}))
	t.Cleanup(tokenServer.Close)

	return &oauth2.Config{
		ClientID:     "client",
		ClientSecret: "secret",
		Endpoint:     oauth2.Endpoint{TokenURL: tokenServer.URL},
	}
}

func TestOAuthHandler(t *testing.T) {
	t.Run("successful callback", func(t *testing.T) {
		handler := NewOAuthHandler(newExchangeConfig(t), "good-state")

		req := httptest.NewRequest(http.MethodGet, "/callback?state=good-state&code=auth-code", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Authorization Successful") {
			t.Error("success page not rendered")
		}

		result := <-handler.Result()
		if result.Error() != nil {
			t.Fatalf("unexpected error: %v", result.Error())
		}
		if result.Token == nil || result.Token.AccessToken != "test-access" {
			t.Errorf("unexpected token: %+v", result.Token)
		}
	})

	t.Run("state mismatch", func(t *testing.T) {
		handler := NewOAuthHandler(newExchangeConfig(t), "good-state")

		req := httptest.NewRequest(http.MethodGet, "/callback?state=evil&code=auth-code", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}

		result := <-handler.Result()
		if result.Error() == nil {
			t.Error("expected state validation error")
		}
	})

	t.Run("provider error", func(t *testing.T) {
		handler := NewOAuthHandler(newExchangeConfig(t), "good-state")

		req := httptest.NewRequest(http.MethodGet, "/callback?state=good-state&error=access_denied&error_description=user+declined", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}

		result := <-handler.Result()
		if result.Error() == nil || !strings.Contains(result.Error().Error(), "access_denied") {
			t.Errorf("expected access_denied error, got %v", result.Error())
		}
	})

	t.Run("second callback rejected", func(t *testing.T) {
		handler := NewOAuthHandler(newExchangeConfig(t), "good-state")

		first := httptest.NewRecorder()
		handler.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/callback?state=good-state&code=auth-code", nil))

		second := httptest.NewRecorder()
		handler.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/callback?state=good-state&code=auth-code", nil))

		if second.Code != http.StatusBadRequest {
			t.Errorf("second callback status = %d, want 400", second.Code)
		}
	})
}

func TestRouter(t *testing.T) {
	t.Run("method filtering", func(t *testing.T) {
		router := NewRouter()
		router.Handle(http.MethodGet, "/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, "pong")
		}))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
		if rec.Code != http.StatusOK || rec.Body.String() != "pong" {
			t.Errorf("GET /ping = %d %q", rec.Code, rec.Body.String())
		}

		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/ping", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("POST /ping status = %d, want 405", rec.Code)
		}
	})

	t.Run("middleware order", func(t *testing.T) {
		var calls []string
		mw := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					calls = append(calls, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		router := NewRouter()
		router.Use(mw("outer"), mw("inner"))
		router.Handle(http.MethodGet, "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls = append(calls, "handler")
		}))

		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

		if strings.Join(calls, ",") != "outer,inner,handler" {
			t.Errorf("call order = %v", calls)
		}
	})

	t.Run("registers handler routes", func(t *testing.T) {
		router := NewRouter()
		router.Handler(NewOAuthHandler(newExchangeConfig(t), "state"))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback?state=wrong", nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("callback route not registered, status = %d", rec.Code)
		}
	})
}
