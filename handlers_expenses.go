package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	userId, ok := callerId(w, r)
	if !ok {
		return
	}

	expenses, err := h.store.ListExpenses(r.Context(), userId)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, expenses)
}

func (h *Handler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	userId, ok := callerId(w, r)
	if !ok {
		return
	}

	var in ExpenseInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, r, ValidationErrors{"body": "invalid request payload"})
		return
	}
	if err := in.Validate(); err != nil {
		writeError(w, r, err)
		return
	}

	date := time.Now()
	if in.Date != nil {
		date = *in.Date
	}

	expense, err := h.store.CreateExpense(r.Context(), Expense{
		UserId:      userId,
		Type:        ExpenseType,
		Category:    in.Category,
		Amount:      in.Amount,
		Description: in.Description,
		Date:        date,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.notifyWeeklyLimit(r, userId)

	writeJSON(w, http.StatusCreated, expense)
}

// notifyWeeklyLimit publishes a warning when the caller's spending for the
// current week crosses their configured limit. A limit of zero disables the
// check, and publish failures never fail the request.
func (h *Handler) notifyWeeklyLimit(r *http.Request, userId int) {
	ctx := r.Context()

	limit, err := h.store.GetWeeklyLimit(ctx, userId)
	if err != nil {
		slog.ErrorContext(ctx, "failed to retrieve weekly limit", "error", err, "user_id", userId)
		return
	}
	if !limit.IsPositive() {
		return
	}

	spent, err := h.store.WeeklyExpenseTotal(ctx, userId)
	if err != nil {
		slog.ErrorContext(ctx, "failed to calculate weekly expenses", "error", err, "user_id", userId)
		return
	}
	if spent.LessThanOrEqual(limit) {
		return
	}

	notification := Notification{
		UserId:       userId,
		Message:      "You have exceeded your weekly spending limit!",
		CurrentSpent: spent,
		Limit:        limit,
	}
	if err := h.publisher.Publish(ctx, notification); err != nil {
		slog.ErrorContext(ctx, "failed to publish notification", "error", err, "user_id", userId)
	}
}

func (h *Handler) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	userId, ok := callerId(w, r)
	if !ok {
		return
	}

	expenseId, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || expenseId <= 0 {
		writeError(w, r, ValidationErrors{"id": "invalid expense id"})
		return
	}

	var in ExpenseInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, r, ValidationErrors{"body": "invalid request payload"})
		return
	}
	if err := in.Validate(); err != nil {
		writeError(w, r, err)
		return
	}

	expense, err := h.store.UpdateExpense(r.Context(), Expense{
		Id:          expenseId,
		UserId:      userId,
		Category:    in.Category,
		Amount:      in.Amount,
		Description: in.Description,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, expense)
}

func (h *Handler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	userId, ok := callerId(w, r)
	if !ok {
		return
	}

	expenseId, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || expenseId <= 0 {
		writeError(w, r, ValidationErrors{"id": "invalid expense id"})
		return
	}

	if err := h.store.DeleteExpense(r.Context(), userId, expenseId); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Expense deleted"})
}
