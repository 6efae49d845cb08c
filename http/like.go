package http

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"warbler/errs"
)

func (s *Server) registerLikeRoutes(r *mux.Router) {
	// Toggle the authed user's like on a warble.
	r.HandleFunc("/users/add_like/{message_id:[0-9]+}", s.requireAuth(s.handleToggleLike)).Methods("POST")

	// List the warbles a user likes.
	r.HandleFunc("/users/{id:[0-9]+}/likes", s.handleIndexLikes).Methods("GET")
}

// handleToggleLike handles the route "POST /users/add_like/{message_id}".
// The same route likes and unlikes: the resulting state is always the
// opposite of the prior one. Users may like their own warbles.
func (s *Server) handleToggleLike(w http.ResponseWriter, r *http.Request) {
	messageID, err := strconv.Atoi(mux.Vars(r)["message_id"])
	if err != nil || messageID <= 0 {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid Id format."))
		return
	}

	user := s.getUserFromContext(r.Context())
	if _, err := s.ls.Toggle(r.Context(), user.ID, messageID); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	s.metrics.LikeToggles.WithLabelValues(r.URL.Path).Inc()
	http.Redirect(w, r, "/", http.StatusFound)
}

// handleIndexLikes handles the route "GET /users/{id}/likes".
func (s *Server) handleIndexLikes(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || userID <= 0 {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid Id format."))
		return
	}
	messages, err := s.ls.LikedBy(r.Context(), userID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	writeJSON(w, r, &messages)
}
