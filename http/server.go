package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/csrf"
	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"warbler/crud"
	"warbler/domain"
	"warbler/errs"
)

// sessionName is the cookie holding the session identity.
const sessionName = "warbler_session"

// Server provides most of the http functionality of this app, namely routing,
// request handling, and middleware. It also performs authentication and
// authorization before handing things over to one of the crud services.
type Server struct {
	router *mux.Router
	store *sessions.CookieStore
	metrics *Metrics
	us domain.UserService
	ms domain.MessageService
	fs domain.FollowService
	ls domain.LikeService
}

// NewServer returns a new instance of the server, registers all necessary
// routes and gives their handlers access to the app services passed in.
func NewServer(isProd bool, sessionKey, csrfKey string, services *crud.Services) *Server {
	store := sessions.NewCookieStore([]byte(sessionKey))
	store.Options.HttpOnly = true
	store.Options.Secure = isProd

	s := &Server{
		router: mux.NewRouter(),
		store: store,
		metrics: InitMetrics(),
		us: services.User,
		ms: services.Message,
		fs: services.Follow,
		ls: services.Like,
	}

	// Register routes of the auth system.
	s.registerAuthRoutes(s.router)

	// Register routes of the crud system.
	s.registerUserRoutes(s.router)
	s.registerFollowRoutes(s.router)
	s.registerLikeRoutes(s.router)
	s.registerMessageRoutes(s.router)

	s.router.HandleFunc("/", s.handleHome).Methods("GET")
	s.router.Handle("/metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{})).Methods("GET")

	// Set up middleware that needs to run on every request. CSRF tokens are
	// issued per session and checked on every mutating request.
	csrfMw := csrf.Protect([]byte(csrfKey), csrf.Secure(isProd), csrf.Path("/"))
	s.router.Use(csrfMw, setContentTypeJSON, issueCSRFToken, s.logRequest, s.countRequest, s.loadUser)
	return s
}

// The setContentTypeJSON middleware sets the content type to "application/json".
func setContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// The issueCSRFToken middleware hands the per-session CSRF token to the
// client in a response header, so api clients can echo it back in
// X-CSRF-Token on mutating requests.
func issueCSRFToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-CSRF-Token", csrf.Token(r))
		next.ServeHTTP(w, r)
	})
}

// The logRequest middleware logs every request with its duration.
func (s *Server) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logrus.WithFields(logrus.Fields{
			"method": r.Method,
			"path": r.URL.Path,
			"duration": time.Since(start).String(),
		}).Info("request")
	})
}

// statusRecorder captures the status code a handler wrote, for metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(status int) {
	sr.status = status
	sr.ResponseWriter.WriteHeader(status)
}

// The countRequest middleware feeds the request counters.
func (s *Server) countRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		if rec.status >= 400 {
			s.metrics.BadRequests.WithLabelValues(r.URL.Path).Inc()
		} else {
			s.metrics.SuccessfulRequests.WithLabelValues(r.URL.Path).Inc()
		}
	})
}

// handleHome handles the route "GET /".
// Authenticated users get their feed: the warbles of everyone they follow
// plus their own. Anonymous visitors get pointed at signup.
func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	user := s.getUserFromContext(r.Context())
	if user == nil {
		response := map[string]string{"message": "Sign up to see warbles."}
		writeJSON(w, r, &response)
		return
	}
	feed, err := s.ms.Feed(r.Context(), user.ID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	writeJSON(w, r, &feed)
}

// writeJSON encodes v as the response body and logs, rather than returns,
// an encoding failure since the header is already out the door.
func writeJSON(w http.ResponseWriter, r *http.Request, v interface{}) {
	if err := json.NewEncoder(w).Encode(v); err != nil {
		errs.LogError(r, err)
	}
}

// Run starts to listen and serve on the specified port.
func (s *Server) Run(port int) {
	logrus.Fatal(http.ListenAndServe(":"+strconv.Itoa(port), s.router))
}

// Handler exposes the fully assembled router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}
