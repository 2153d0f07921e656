package api

import "net/http"

func (s *Server) handleWallet(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFromContext(r.Context())
	wal, err := s.wallets.GetOrCreate(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, wal)
}
