package internal

import (
	"html/template"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
)

const sessionCookie = "medrag_session"

var chatTemplate = template.Must(template.New("chat").Funcs(template.FuncMap{
	"nl2br": nl2br,
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Medical Chatbot</title>
<style>
body { font-family: sans-serif; max-width: 48rem; margin: 2rem auto; }
.message { padding: .5rem 1rem; margin: .5rem 0; border-radius: .5rem; }
.user { background: #e8f0fe; }
.assistant { background: #f1f3f4; }
.error { color: #b00020; }
</style>
</head>
<body>
<h1>Medical Chatbot</h1>
{{range .Messages}}<div class="message {{.Role}}"><strong>{{.Role}}:</strong> {{nl2br .Content}}</div>
{{end}}{{with .Error}}<p class="error">{{.}}</p>
{{end}}<form method="post" action="/">
<textarea name="prompt" rows="3" cols="60" placeholder="Ask a medical question"></textarea>
<button type="submit">Send</button>
</form>
<p><a href="/clear">Clear chat</a></p>
</body>
</html>
`))

// nl2br escapes s, then turns newlines into <br> tags.
func nl2br(s string) template.HTML {
	escaped := template.HTMLEscapeString(s)
	return template.HTML(strings.ReplaceAll(escaped, "\n", "<br>\n"))
}

type chatPage struct {
	Messages []Message
	Error    string
}

// ChatServer serves the browser chat UI.
type ChatServer struct {
	answerer Answerer
	sessions *SessionStore
	logger   *log.Logger
	mux      *http.ServeMux
}

var _ http.Handler = (*ChatServer)(nil)

func NewChatServer(answerer Answerer, sessions *SessionStore, logger *log.Logger) *ChatServer {
	if sessions == nil {
		sessions = NewSessionStore()
	}
	if logger == nil {
		logger = discardLogger()
	}

	s := &ChatServer{
		answerer: answerer,
		sessions: sessions,
		logger:   logger,
		mux:      http.NewServeMux(),
	}
	s.mux.HandleFunc("GET /{$}", s.handleIndex)
	s.mux.HandleFunc("POST /{$}", s.handleAsk)
	s.mux.HandleFunc("GET /clear", s.handleClear)
	return s
}

func (s *ChatServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *ChatServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	id := s.session(w, r)
	s.render(w, chatPage{Messages: s.sessions.History(id)})
}

func (s *ChatServer) handleAsk(w http.ResponseWriter, r *http.Request) {
	id := s.session(w, r)

	question, err := ValidateQuestion(r.FormValue("prompt"))
	if err != nil {
		s.render(w, chatPage{Messages: s.sessions.History(id)})
		return
	}

	s.sessions.Append(id, Message{Role: RoleUser, Content: question})

	page := chatPage{}
	answer, err := s.answerer.Answer(r.Context(), question)
	if err != nil {
		s.logger.Error("answer failed", "session", id, "err", err)
		page.Error = "Error : " + err.Error()
	} else {
		s.sessions.Append(id, Message{Role: RoleAssistant, Content: answer})
	}

	page.Messages = s.sessions.History(id)
	s.render(w, page)
}

func (s *ChatServer) handleClear(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(sessionCookie); err == nil {
		s.sessions.Clear(c.Value)
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

// session returns the caller's session id. Cookies that do not name a
// live session get a freshly issued one.
func (s *ChatServer) session(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil && s.sessions.Touch(c.Value) {
		return c.Value
	}

	id := s.sessions.NewID()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

func (s *ChatServer) render(w http.ResponseWriter, page chatPage) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := chatTemplate.Execute(w, page); err != nil {
		s.logger.Error("render chat page", "err", err)
	}
}
