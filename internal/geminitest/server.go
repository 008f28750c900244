package geminitest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

// Reply - один заскриптованный ответ апстрима
type Reply struct {
	Status int
	Body   string
}

func Text(text string) Reply {
	body, _ := json.Marshal(map[string]any{
		"candidates": []any{
			map[string]any{
				"content": map[string]any{
					"role":  "model",
					"parts": []any{map[string]any{"text": text}},
				},
			},
		},
	})
	return Reply{Status: http.StatusOK, Body: string(body)}
}

func RateLimited() Reply {
	return Reply{
		Status: http.StatusTooManyRequests,
		Body:   `{"error":{"code":429,"message":"Resource has been exhausted","status":"RESOURCE_EXHAUSTED"}}`,
	}
}

func APIError(status int, message string) Reply {
	body, _ := json.Marshal(map[string]any{
		"error": map[string]any{"code": status, "message": message},
	})
	return Reply{Status: status, Body: string(body)}
}

type Call struct {
	Path   string
	Key    string
	Header http.Header
	Body   []byte
}

// Server - фейковый generateContent. Отдаёт ответы по очереди,
// последний повторяется. Все вызовы запоминаются.
type Server struct {
	*httptest.Server

	mu      sync.Mutex
	replies []Reply
	calls   []Call
}

func NewServer(replies ...Reply) *Server {
	s := &Server{replies: replies}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	s.mu.Lock()
	s.calls = append(s.calls, Call{
		Path:   r.URL.Path,
		Key:    r.URL.Query().Get("key"),
		Header: r.Header.Clone(),
		Body:   body,
	})

	reply := Text("mock response")
	idx := len(s.calls) - 1
	if n := len(s.replies); n > 0 {
		if idx >= n {
			idx = n - 1
		}
		reply = s.replies[idx]
	}
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(reply.Status)
	io.WriteString(w, reply.Body)
}

// URL для WithBaseURL: клиент дописывает /{model}:generateContent
func (s *Server) BaseURL() string {
	return strings.TrimSuffix(s.URL, "/") + "/v1/models"
}

func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

func (s *Server) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func (s *Server) LastCall() Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.calls) == 0 {
		return Call{}
	}
	return s.calls[len(s.calls)-1]
}
