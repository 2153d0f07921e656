package api

import (
	"net/http"
	"strconv"

	"github.com/reviewforge/reviewforge/internal/app/auth"
	"github.com/reviewforge/reviewforge/internal/domain"
)

// verifyAdminTxnPassword re-loads the acting admin and checks their
// 4-digit transactional password, required before every wallet
// mutation per spec.md §6.
func (s *Server) verifyAdminTxnPassword(r *http.Request, password string) error {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		return domain.Auth(domain.ErrInvalidSession, "")
	}
	admin, err := s.db.GetUser(r.Context(), claims.UserID)
	if err != nil {
		return err
	}
	if admin == nil {
		return domain.NotFoundErr(domain.ErrNotFound, "admin not found")
	}
	return auth.VerifyTransactionalPassword(admin, password)
}

func (s *Server) handleCreateSpecialTask(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFromContext(r.Context())

	var req createSpecialTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	task, err := s.special.Create(r.Context(), req.UserID, req.HoldBandID, req.NumberOfNegativeProduct, req.RankAppearance)
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}

	_ = s.notify.LogAdminAction(r.Context(), claims.UserID,
		"injected special task for user "+strconv.FormatInt(req.UserID, 10))
	writeJSON(w, http.StatusCreated, task)
}

func (s *Server) handleAdminSetBalance(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFromContext(r.Context())
	var req adminWalletRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := s.verifyAdminTxnPassword(r, req.TransactionalPassword); err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	wal, err := s.wallets.AdminSetBalance(r.Context(), req.UserID, req.Value)
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	_ = s.notify.LogAdminAction(r.Context(), claims.UserID,
		"credited "+req.Value.String()+" to balance for user "+strconv.FormatInt(req.UserID, 10))
	writeJSON(w, http.StatusOK, wal)
}

func (s *Server) handleAdminSetTodayProfit(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFromContext(r.Context())
	var req adminWalletRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := s.verifyAdminTxnPassword(r, req.TransactionalPassword); err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	if err := s.wallets.AdminSetTodayProfit(r.Context(), req.UserID, req.Value); err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	_ = s.notify.LogAdminAction(r.Context(), claims.UserID,
		"set today_profit for user "+strconv.FormatInt(req.UserID, 10)+" to "+req.Value.String())
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleAdminSetSalary(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFromContext(r.Context())
	var req adminWalletRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := s.verifyAdminTxnPassword(r, req.TransactionalPassword); err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	wal, err := s.wallets.AdminSetSalary(r.Context(), req.UserID, req.Value)
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	_ = s.notify.LogAdminAction(r.Context(), claims.UserID,
		"set salary for user "+strconv.FormatInt(req.UserID, 10)+" to "+req.Value.String())
	writeJSON(w, http.StatusOK, wal)
}

func (s *Server) handleAdminToggleRegBonus(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFromContext(r.Context())
	var req adminToggleRegBonusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := s.verifyAdminTxnPassword(r, req.TransactionalPassword); err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	wal, err := s.wallets.AdminSetRegBonusCredited(r.Context(), req.UserID, req.Credited)
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	_ = s.notify.LogAdminAction(r.Context(), claims.UserID,
		"toggled registration bonus for user "+strconv.FormatInt(req.UserID, 10))
	writeJSON(w, http.StatusOK, wal)
}

func (s *Server) handleAdminSetCreditScore(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFromContext(r.Context())
	var req adminWalletRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := s.verifyAdminTxnPassword(r, req.TransactionalPassword); err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	wal, err := s.wallets.AdminSetCreditScore(r.Context(), req.UserID, req.Value)
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	_ = s.notify.LogAdminAction(r.Context(), claims.UserID,
		"set credit score for user "+strconv.FormatInt(req.UserID, 10)+" to "+req.Value.String())
	writeJSON(w, http.StatusOK, wal)
}

func (s *Server) handleAdminSetPack(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFromContext(r.Context())
	var req adminSetPackRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := s.verifyAdminTxnPassword(r, req.TransactionalPassword); err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	wal, err := s.wallets.AdminSetPack(r.Context(), req.UserID, req.PackID)
	if err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	_ = s.notify.LogAdminAction(r.Context(), claims.UserID,
		"set pack for user "+strconv.FormatInt(req.UserID, 10)+" to pack "+strconv.FormatInt(req.PackID, 10))
	writeJSON(w, http.StatusOK, wal)
}

func (s *Server) handleAdminResetAccount(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFromContext(r.Context())
	var req adminResetAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if err := s.verifyAdminTxnPassword(r, req.TransactionalPassword); err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	if err := s.wallets.AdminResetAccount(r.Context(), req.UserID, req.SubmissionsToday, req.SetsToday); err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	_ = s.notify.LogAdminAction(r.Context(), claims.UserID,
		"reset account counters for user "+strconv.FormatInt(req.UserID, 10))
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleResetNow(w http.ResponseWriter, r *http.Request) {
	claims, _ := claimsFromContext(r.Context())
	if err := s.reset.CheckAndReset(r.Context()); err != nil {
		writeError(w, statusForError(err), err.Error())
		return
	}
	_ = s.notify.LogAdminAction(r.Context(), claims.UserID, "triggered an out-of-band daily reset")
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
