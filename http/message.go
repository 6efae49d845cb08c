package http

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"warbler/domain"
	"warbler/errs"
)

func (s *Server) registerMessageRoutes(r *mux.Router) {
	// Post a new warble.
	r.HandleFunc("/messages/new", s.requireAuth(s.handleCreateMessage)).Methods("POST")

	// Show a single warble with the users who like it.
	r.HandleFunc("/messages/{id:[0-9]+}", s.handleShowMessage).Methods("GET")

	// Delete a warble. Only its owner may do this.
	r.HandleFunc("/messages/{id:[0-9]+}/delete", s.requireAuth(s.handleDeleteMessage)).Methods("POST")
}

// handleCreateMessage handles the route "POST /messages/new".
func (s *Server) handleCreateMessage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid form data."))
		return
	}

	user := s.getUserFromContext(r.Context())
	message := domain.Message{
		UserID: user.ID,
		Text: r.PostFormValue("text"),
	}
	if err := s.ms.Create(r.Context(), &message); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	s.metrics.WarblesPosted.WithLabelValues(r.URL.Path).Inc()
	http.Redirect(w, r, "/users/"+strconv.Itoa(user.ID), http.StatusFound)
}

// handleShowMessage handles the route "GET /messages/{id}".
func (s *Server) handleShowMessage(w http.ResponseWriter, r *http.Request) {
	messageID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || messageID <= 0 {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid Id format."))
		return
	}

	message, err := s.ms.ByID(r.Context(), messageID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	likers, err := s.ls.LikesFor(r.Context(), messageID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	response := struct {
		Message *domain.Message `json:"message"`
		LikedBy []domain.User `json:"liked_by"`
	}{Message: message, LikedBy: likers}
	writeJSON(w, r, &response)
}

// handleDeleteMessage handles the route "POST /messages/{id}/delete".
// The crud service rejects the request if the authed user is not the owner.
func (s *Server) handleDeleteMessage(w http.ResponseWriter, r *http.Request) {
	messageID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || messageID <= 0 {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid Id format."))
		return
	}

	user := s.getUserFromContext(r.Context())
	if err := s.ms.Delete(r.Context(), messageID, user.ID); err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	http.Redirect(w, r, "/users/"+strconv.Itoa(user.ID), http.StatusFound)
}
