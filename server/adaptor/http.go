package adaptor

import (
	"encoding/json"
	"errors"
	"mime"
	"net"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/ponyo877/livechat/server/domain"
	"github.com/ponyo877/livechat/server/logging"
)

type chatRequest struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// HTTPHandler serves the JSON API and the live event stream.
type HTTPHandler struct {
	uc       Usecase
	stream   StreamUsecase
	sessions *SessionStore
	validate *validator.Validate
}

func NewHTTPHandler(uc Usecase, stream StreamUsecase, sessions *SessionStore) *HTTPHandler {
	return &HTTPHandler{
		uc:       uc,
		stream:   stream,
		sessions: sessions,
		validate: newValidator(),
	}
}

func (h *HTTPHandler) Routes() *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/join", h.Join).Methods(http.MethodPost)
	router.HandleFunc("/logout", h.Logout).Methods(http.MethodPost)
	router.HandleFunc("/chat", h.SendMessage).Methods(http.MethodPost)
	router.HandleFunc("/live/chat", h.LiveChat).Methods(http.MethodGet)
	router.HandleFunc("/users", h.ListUsers).Methods(http.MethodGet)
	router.HandleFunc("/users/{name}", h.DoesUserExist).Methods(http.MethodGet)
	router.HandleFunc("/stats", h.Stats).Methods(http.MethodGet)
	router.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	return router
}

// Join handles POST /join
func (h *HTTPHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req joinRequest
	if err := decodeRequest(r, &req, func(form func(string) string) {
		req.User = form("user")
	}); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid user name")
		return
	}

	if err := h.uc.Join(req.User); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			writeError(w, http.StatusConflict, "User already exists")
			return
		}
		logging.Ctx(r.Context()).Error().Err(err).Msg("join failed")
		writeError(w, http.StatusInternalServerError, "join failed")
		return
	}

	if err := h.sessions.Issue(w, req.User); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("failed to issue session")
		h.uc.Leave(req.User)
		writeError(w, http.StatusInternalServerError, "failed to create session")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"user": req.User})
}

// Logout handles POST /logout
func (h *HTTPHandler) Logout(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}
	h.uc.Leave(user)
	h.sessions.Destroy(w)
	w.WriteHeader(http.StatusNoContent)
}

// SendMessage handles POST /chat
func (h *HTTPHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	var req chatRequest
	if err := decodeRequest(r, &req, func(form func(string) string) {
		req.Message = form("message")
	}); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.uc.SendMessage(user, domain.TruncateMessage(req.Message, domain.MaxMessageLength))
	w.WriteHeader(http.StatusNoContent)
}

// LiveChat handles GET /live/chat
func (h *HTTPHandler) LiveChat(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	sink, err := NewSSEWriter(w)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("event stream unsupported")
		return
	}

	if err := h.stream.HandleStreamSession(r.Context(), user, remoteHost(r), sink); err != nil &&
		!errors.Is(err, domain.ErrSessionClosed) {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("stream session ended with error")
	}
}

// ListUsers handles GET /users
func (h *HTTPHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users := h.uc.ListUsers()
	if users == nil {
		users = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"users": users})
}

// DoesUserExist handles GET /users/{name}
func (h *HTTPHandler) DoesUserExist(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	writeJSON(w, http.StatusOK, map[string]any{
		"user":   name,
		"exists": h.uc.DoesUserExist(name),
	})
}

// Stats handles GET /stats
func (h *HTTPHandler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.stream.GetStreamStats())
}

// HealthCheck handles GET /health
func (h *HTTPHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HTTPHandler) requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	user, err := h.sessions.User(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthenticated")
		return "", false
	}
	return user, true
}

// decodeRequest reads a JSON body into v, or hands form values to fromForm
// for urlencoded and multipart posts.
func decodeRequest(r *http.Request, v any, fromForm func(func(string) string)) error {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		return json.NewDecoder(r.Body).Decode(v)
	}
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			return err
		}
	} else if err := r.ParseForm(); err != nil {
		return err
	}
	fromForm(r.PostFormValue)
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
