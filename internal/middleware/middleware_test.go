package middleware

import (
	"bufio"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pliu/socialboard/internal/auth"
)

func TestAuthMiddleware(t *testing.T) {
	tokens := auth.NewTokenManager([]byte("test-secret"))
	validToken, err := tokens.Issue("user-123")
	if err != nil {
		t.Fatal(err)
	}
	foreignToken, _ := auth.NewTokenManager([]byte("other")).Issue("user-123")

	// Mock next handler
	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := UserID(r.Context())
		if userID != "user-123" {
			t.Errorf("Expected userID user-123, got %q", userID)
		}
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name           string
		header         string
		expectedStatus int
	}{
		{
			name:           "Valid Token",
			header:         "Bearer " + validToken,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Lowercase Scheme",
			header:         "bearer " + validToken,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Uppercase Scheme",
			header:         "BEARER " + validToken,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Other Scheme",
			header:         "Basic " + validToken,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Missing Header",
			header:         "",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Missing Scheme",
			header:         validToken,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Empty Token",
			header:         "Bearer ",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Invalid Signature",
			header:         "Bearer " + foreignToken,
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Garbage",
			header:         "Bearer not_a_token",
			expectedStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()

			Auth(tokens)(nextHandler).ServeHTTP(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("handler returned wrong status code: got %v want %v",
					rr.Code, tt.expectedStatus)
			}
		})
	}
}

func TestLoggingMiddleware(t *testing.T) {
	// Mock next handler that returns 404
	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	req := httptest.NewRequest("GET", "/", nil)
	rr := httptest.NewRecorder()

	LoggingMiddleware(nextHandler).ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("handler returned wrong status code: got %v want %v",
			rr.Code, http.StatusNotFound)
	}
	if rr.Header().Get(RequestIDHeader) == "" {
		t.Error("Expected a generated request id")
	}
}

func TestLoggingMiddleware_KeepsRequestID(t *testing.T) {
	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(RequestIDHeader, "abc")
	rr := httptest.NewRecorder()

	LoggingMiddleware(nextHandler).ServeHTTP(rr, req)

	if got := rr.Header().Get(RequestIDHeader); got != "abc" {
		t.Errorf("request id: got %q want %q", got, "abc")
	}
}

// MockHijacker implements http.Hijacker for testing
type MockHijacker struct {
	httptest.ResponseRecorder
	hijacked bool
}

func (m *MockHijacker) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	m.hijacked = true
	return nil, nil, nil
}

func TestLoggingMiddleware_Hijack(t *testing.T) {
	// Mock next handler that tries to hijack
	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hijacker, ok := w.(http.Hijacker)
		if !ok {
			t.Error("ResponseWriter does not implement http.Hijacker")
			return
		}
		_, _, err := hijacker.Hijack()
		if err != nil {
			t.Errorf("Hijack failed: %v", err)
		}
	})

	req := httptest.NewRequest("GET", "/", nil)
	mockWriter := &MockHijacker{ResponseRecorder: *httptest.NewRecorder()}

	LoggingMiddleware(nextHandler).ServeHTTP(mockWriter, req)

	if !mockWriter.hijacked {
		t.Error("Expected the underlying writer to be hijacked")
	}
}

func TestLoggingMiddleware_HijackUnsupported(t *testing.T) {
	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _, err := w.(http.Hijacker).Hijack()
		if err == nil {
			t.Error("Expected hijack to fail on a recorder")
		}
	})

	req := httptest.NewRequest("GET", "/", nil)
	LoggingMiddleware(nextHandler).ServeHTTP(httptest.NewRecorder(), req)
}
