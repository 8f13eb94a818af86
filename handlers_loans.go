package main

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) ListLoans(w http.ResponseWriter, r *http.Request) {
	userId, ok := callerId(w, r)
	if !ok {
		return
	}

	loans, err := h.store.ListLoans(r.Context(), userId)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, loans)
}

func (h *Handler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	userId, ok := callerId(w, r)
	if !ok {
		return
	}

	var in LoanInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, r, ValidationErrors{"body": "invalid request payload"})
		return
	}
	if err := in.Validate(); err != nil {
		writeError(w, r, err)
		return
	}

	status := LoanStatus(in.Status)
	if status == "" {
		status = LoanStatusPending
	}

	loan, err := h.store.CreateLoan(r.Context(), Loan{
		UserId:      userId,
		PersonName:  in.PersonName,
		Type:        in.Type,
		Amount:      in.Amount,
		Description: in.Description,
		Status:      status,
		DueDate:     in.DueDate,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, loan)
}

func (h *Handler) UpdateLoan(w http.ResponseWriter, r *http.Request) {
	userId, ok := callerId(w, r)
	if !ok {
		return
	}

	loanId, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || loanId <= 0 {
		writeError(w, r, ValidationErrors{"id": "invalid loan id"})
		return
	}

	var in LoanInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, r, ValidationErrors{"body": "invalid request payload"})
		return
	}
	if err := in.Validate(); err != nil {
		writeError(w, r, err)
		return
	}

	status := LoanStatus(in.Status)
	if status == "" {
		status = LoanStatusPending
	}

	loan, err := h.store.UpdateLoan(r.Context(), Loan{
		Id:          loanId,
		UserId:      userId,
		PersonName:  in.PersonName,
		Type:        in.Type,
		Amount:      in.Amount,
		Description: in.Description,
		Status:      status,
		DueDate:     in.DueDate,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, loan)
}

func (h *Handler) DeleteLoan(w http.ResponseWriter, r *http.Request) {
	userId, ok := callerId(w, r)
	if !ok {
		return
	}

	loanId, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || loanId <= 0 {
		writeError(w, r, ValidationErrors{"id": "invalid loan id"})
		return
	}

	if err := h.store.DeleteLoan(r.Context(), userId, loanId); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Loan deleted"})
}
