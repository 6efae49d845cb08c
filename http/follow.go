package http

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"warbler/domain"
	"warbler/errs"
)

func (s *Server) registerFollowRoutes(r *mux.Router) {
	// Follow a user.
	r.HandleFunc("/users/follow/{id:[0-9]+}", s.requireAuth(s.handleCreateFollow)).Methods("POST")

	// Stop following a user.
	r.HandleFunc("/users/stop-following/{id:[0-9]+}", s.requireAuth(s.handleDeleteFollow)).Methods("POST")

	// List who follows a user and whom a user follows.
	r.HandleFunc("/users/{id:[0-9]+}/followers", s.handleIndexFollowers).Methods("GET")
	r.HandleFunc("/users/{id:[0-9]+}/following", s.handleIndexFollowing).Methods("GET")
}

// handleCreateFollow handles the route "POST /users/follow/{id}".
// It creates a follow edge from the authed user to the user in the url.
// Following the same user twice is a conflict, not a silent no-op.
func (s *Server) handleCreateFollow(w http.ResponseWriter, r *http.Request) {
	followedID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || followedID <= 0 {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid Id format."))
		return
	}

	follower := s.getUserFromContext(r.Context())
	follow := domain.Follow{
		FollowerID: follower.ID,
		FollowedID: followedID,
	}
	if err := s.fs.Create(r.Context(), &follow); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	s.metrics.FollowRequests.WithLabelValues(r.URL.Path).Inc()
	http.Redirect(w, r, "/users/"+strconv.Itoa(follower.ID)+"/following", http.StatusFound)
}

// handleDeleteFollow handles the route "POST /users/stop-following/{id}".
// Unfollowing a user that was never followed quietly succeeds.
func (s *Server) handleDeleteFollow(w http.ResponseWriter, r *http.Request) {
	followedID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || followedID <= 0 {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid Id format."))
		return
	}

	follower := s.getUserFromContext(r.Context())
	follow := domain.Follow{
		FollowerID: follower.ID,
		FollowedID: followedID,
	}
	if err := s.fs.Delete(r.Context(), &follow); err != nil {
		errs.ReturnError(w, r, err)
		return
	}

	s.metrics.UnfollowRequests.WithLabelValues(r.URL.Path).Inc()
	http.Redirect(w, r, "/users/"+strconv.Itoa(follower.ID)+"/following", http.StatusFound)
}

// handleIndexFollowers handles the route "GET /users/{id}/followers".
func (s *Server) handleIndexFollowers(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || userID <= 0 {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid Id format."))
		return
	}
	followers, err := s.fs.Followers(r.Context(), userID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	writeJSON(w, r, &followers)
}

// handleIndexFollowing handles the route "GET /users/{id}/following".
func (s *Server) handleIndexFollowing(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil || userID <= 0 {
		errs.ReturnError(w, r, errs.Errorf(errs.EINVALID, "Invalid Id format."))
		return
	}
	following, err := s.fs.Following(r.Context(), userID)
	if err != nil {
		errs.ReturnError(w, r, err)
		return
	}
	writeJSON(w, r, &following)
}
