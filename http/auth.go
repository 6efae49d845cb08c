package http

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"warbler/auth"
	"warbler/domain"
	"warbler/errs"
)

func (s *Server) registerAuthRoutes(r *mux.Router) {
	r.HandleFunc("/signup", s.handleSignup).Methods("POST")
	r.HandleFunc("/login", s.handleLogin).Methods("POST")
	r.HandleFunc("/logout", s.handleLogout).Methods("GET")
}

// handleSignup handles the route "POST /signup".
// It creates a new user from the submitted form, signs them in and redirects
// home. A taken username or email surfaces as a conflict after the write
// attempt, the store's constraint is the only uniqueness check.
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid form data."))
		return
	}
	user := domain.User{
		Username: r.PostFormValue("username"),
		Email: r.PostFormValue("email"),
		Password: r.PostFormValue("password"),
		ImageURL: r.PostFormValue("image_url"),
	}
	if err := s.us.Signup(r.Context(), &user); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	if err := s.signIn(w, r, &user); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	s.flash(w, r, "You were successfully registered.")
	http.Redirect(w, r, "/", http.StatusFound)
}

// handleLogin handles the route "POST /login".
// Unknown username and wrong password are indistinguishable in the response.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid form data."))
		return
	}
	user, err := s.us.Authenticate(r.Context(), r.PostFormValue("username"), r.PostFormValue("password"))
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	if err := s.signIn(w, r, user); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	s.flash(w, r, "You were logged in.")
	http.Redirect(w, r, "/", http.StatusFound)
}

// handleLogout handles the route "GET /logout".
// It drops the session identity and redirects to the login page.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	session, _ := s.store.Get(r, sessionName)
	delete(session.Values, "user_id")
	session.Options.MaxAge = -1
	if err := session.Save(r, w); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

// signIn stores the user's ID as the session identity.
func (s *Server) signIn(w http.ResponseWriter, r *http.Request, user *domain.User) error {
	session, _ := s.store.Get(r, sessionName)
	session.Values["user_id"] = user.ID
	return session.Save(r, w)
}

// flash stores a one-shot message in the session, Flask style. A failure to
// save the flash never fails the request that caused it.
func (s *Server) flash(w http.ResponseWriter, r *http.Request, message string) {
	session, _ := s.store.Get(r, sessionName)
	session.AddFlash(message)
	if err := session.Save(r, w); err != nil {
		errs.LogError(r, err)
	}
}

// The loadUser middleware resolves the session identity to a user record and
// stashes it in the request context. Requests without a valid session pass
// through unauthenticated, requireAuth decides what that means per route.
func (s *Server) loadUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := s.store.Get(r, sessionName)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		id, ok := session.Values["user_id"].(int)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		user, err := s.us.ByID(r.Context(), id)
		if err != nil {
			// Stale session pointing at a deleted account.
			next.ServeHTTP(w, r)
			return
		}
		r = r.WithContext(auth.SetUser(r.Context(), user))
		next.ServeHTTP(w, r)
	})
}

// requireAuth guards routes that only make sense with a session identity.
// Unauthenticated requests are redirected to the login page.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := s.getUserFromContext(r.Context())
		if user == nil {
			s.flash(w, r, "Access unauthorized.")
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	}
}

func (s *Server) getUserFromContext(ctx context.Context) *domain.User {
	return auth.GetUser(ctx)
}
