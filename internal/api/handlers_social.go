package api

import (
	"net/http"
	"strconv"
)

// followRequest is the body for POST and DELETE /api/follow
type followRequest struct {
	FollowerAddress  string `json:"followerAddress"`
	FollowingAddress string `json:"followingAddress"`
}

// handleFollow handles POST /api/follow
func (s *Server) handleFollow(w http.ResponseWriter, r *http.Request) {
	var req followRequest
	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT", "Invalid request body", nil)
		return
	}

	if err := s.socialService.Follow(r.Context(), req.FollowerAddress, req.FollowingAddress); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"following": true})
}

// handleUnfollow handles DELETE /api/follow
func (s *Server) handleUnfollow(w http.ResponseWriter, r *http.Request) {
	var req followRequest
	if err := parseJSONBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT", "Invalid request body", nil)
		return
	}

	if err := s.socialService.Unfollow(r.Context(), req.FollowerAddress, req.FollowingAddress); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"following": false})
}

// handleFollowStatus handles GET /api/follow. With walletAddress it returns
// the wallet's following list; with followerAddress and followingAddress it
// returns the relationship between the two.
func (s *Server) handleFollowStatus(w http.ResponseWriter, r *http.Request) {
	if walletAddress := r.URL.Query().Get("walletAddress"); walletAddress != "" {
		following, err := s.socialService.ListFollowing(r.Context(), walletAddress)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		if following == nil {
			following = []string{}
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{"following": following})
		return
	}

	follower := r.URL.Query().Get("followerAddress")
	following := r.URL.Query().Get("followingAddress")

	if follower == "" || following == "" {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT",
			"walletAddress, or followerAddress and followingAddress, are required", nil)
		return
	}

	status, err := s.socialService.GetFollowStatus(r.Context(), follower, following)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, status)
}

// handleActivity handles GET /api/activity?walletAddress=&limit=
func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	walletAddress := r.URL.Query().Get("walletAddress")
	if walletAddress == "" {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT", "walletAddress is required", nil)
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respondError(w, http.StatusBadRequest, "INVALID_INPUT", "limit must be a positive integer", nil)
			return
		}
		limit = parsed
	}

	feed, err := s.activityService.GetFeed(r.Context(), walletAddress, limit)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{"activities": feed})
}
