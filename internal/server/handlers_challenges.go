package server

import (
	"net/http"
	"time"
)

func (s *Server) handleListChallenges(w http.ResponseWriter, r *http.Request) {
	challenges, err := s.db.ListChallenges(r.Context(), time.Now())
	if err != nil {
		s.writeError(w, err, "challenges")
		return
	}
	writeJSON(w, http.StatusOK, challenges)
}

func (s *Server) handleJoinedChallenges(w http.ResponseWriter, r *http.Request) {
	joined, err := s.db.QueryJoinedChallenges(r.Context(), userIDFromContext(r))
	if err != nil {
		s.writeError(w, err, "challenges")
		return
	}
	writeJSON(w, http.StatusOK, joined)
}

// handleJoinChallenge is idempotent: joining twice returns the existing participation.
func (s *Server) handleJoinChallenge(w http.ResponseWriter, r *http.Request) {
	challengeID, err := uuidParam(r, "id")
	if err != nil {
		s.writeError(w, err, "challenge")
		return
	}
	p, err := s.db.JoinChallenge(r.Context(), challengeID, userIDFromContext(r))
	if err != nil {
		s.writeError(w, err, "challenge")
		return
	}
	writeJSON(w, http.StatusOK, p)
}
