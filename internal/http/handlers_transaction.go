package http

import (
	"fmt"
	"net/http"

	"finman/internal/core"
	"finman/internal/services"
)

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if req.Amount == nil {
		s.fail(w, r, fmt.Errorf("%w: amount is required", core.ErrInvalidRequest))
		return
	}

	t, err := s.svc.Transactions.Create(r.Context(), currentUser(r), services.NewTransaction{
		Amount:      amountOrZero(req.Amount),
		Date:        sanitizeInput(req.Date),
		Category:    sanitizeInput(req.Category),
		Description: sanitizeInput(req.Description),
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	Created(transactionResponse(t)).Write(w)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	filter, err := ParseTransactionFilter(r.URL.Query())
	if err != nil {
		s.fail(w, r, err)
		return
	}

	txs, err := s.svc.Transactions.List(r.Context(), currentUser(r), filter)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	resp := TransactionListResponse{Transactions: make([]TransactionResponse, 0, len(txs))}
	for _, t := range txs {
		resp.Transactions = append(resp.Transactions, transactionResponse(t))
	}
	OK(resp).Write(w)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := PathInt64(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}

	t, err := s.svc.Transactions.Get(r.Context(), currentUser(r), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	OK(transactionResponse(t)).Write(w)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := PathInt64(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	var req transactionUpdateRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	t, err := s.svc.Transactions.Update(r.Context(), currentUser(r), id, services.TransactionPatch{
		Amount:      req.Amount,
		Date:        optionalString(req.Date),
		Category:    optionalString(req.Category),
		Description: optionalString(req.Description),
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	OK(transactionResponse(t)).Write(w)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := PathInt64(r, "id")
	if err != nil {
		s.fail(w, r, err)
		return
	}

	if err := s.svc.Transactions.Delete(r.Context(), currentUser(r), id); err != nil {
		s.fail(w, r, err)
		return
	}
	Message("Transaction deleted successfully").Write(w)
}
