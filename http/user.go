package http

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"warbler/domain"
	"warbler/errs"
)

func (s *Server) registerUserRoutes(r *mux.Router) {
	// List all users, or search them with ?q=<term>.
	r.HandleFunc("/users", s.handleIndexUsers).Methods("GET")

	// Show a user's profile with their warbles.
	r.HandleFunc("/users/{id:[0-9]+}", s.handleShowUser).Methods("GET")

	// Update the authed user's profile.
	r.HandleFunc("/users/profile", s.requireAuth(s.handleUpdateProfile)).Methods("POST")

	// Delete the authed user's account.
	r.HandleFunc("/users/delete", s.requireAuth(s.handleDeleteUser)).Methods("POST")
}

// handleIndexUsers handles the route "GET /users".
// With a "q" query parameter it runs a case-insensitive substring search on
// usernames; without one it lists all users.
func (s *Server) handleIndexUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.us.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	writeJSON(w, r, &users)
}

// handleShowUser handles the route "GET /users/{id}".
// It returns the user's profile data and warbles, plus the follow relation
// between the authed user and the shown user, if there is a session.
func (s *Server) handleShowUser(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || userID <= 0 {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid Id format."))
		return
	}

	user, err := s.us.ByID(r.Context(), userID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	messages, err := s.ms.ByUserID(r.Context(), userID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	user.Messages = messages

	response := struct {
		User *domain.User `json:"user"`
		IsFollowing bool `json:"is_following"`
		IsFollowedBy bool `json:"is_followed_by"`
	}{User: user}

	if authed := s.getUserFromContext(r.Context()); authed != nil && authed.ID != userID {
		if response.IsFollowing, err = s.us.IsFollowing(r.Context(), authed.ID, userID); err != nil {
			errs.ReturnError(w, r, err)
			return
		}
		if response.IsFollowedBy, err = s.us.IsFollowedBy(r.Context(), authed.ID, userID); err != nil {
			errs.ReturnError(w, r, err)
			return
		}
	}

	writeJSON(w, r, &response)
}

// handleUpdateProfile handles the route "POST /users/profile".
// It applies the submitted form fields to the authed user's own record.
// Leaving the password field empty keeps the current password.
func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid form data."))
		return
	}

	user := s.getUserFromContext(r.Context())
	if v := r.PostFormValue("username"); v != "" {
		user.Username = v
	}
	if v := r.PostFormValue("email"); v != "" {
		user.Email = v
	}
	user.Password = r.PostFormValue("password")
	if v := r.PostFormValue("image_url"); v != "" {
		user.ImageURL = v
	}
	if v := r.PostFormValue("header_image_url"); v != "" {
		user.HeaderImageURL = v
	}
	if v := r.PostFormValue("bio"); v != "" {
		user.Bio = v
	}
	if v := r.PostFormValue("location"); v != "" {
		user.Location = v
	}

	if err := s.us.Update(r.Context(), user); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	http.Redirect(w, r, "/users/"+strconv.Itoa(user.ID), http.StatusFound)
}

// handleDeleteUser handles the route "POST /users/delete".
// It deletes the authed user's account. The crud service cascades the
// deletion to their warbles, follow edges and likes; the session identity
// is dropped afterwards.
func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	user := s.getUserFromContext(r.Context())
	if err := s.us.Delete(r.Context(), user.ID); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	session, _ := s.store.Get(r, sessionName)
	delete(session.Values, "user_id")
	session.Options.MaxAge = -1
	if err := session.Save(r, w); err != nil {
		errs.LogError(r, err)
	}
	http.Redirect(w, r, "/", http.StatusFound)
}
