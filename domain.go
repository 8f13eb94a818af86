package main

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type User struct {
	Id           int             `json:"id"`
	Name         string          `json:"name"`
	Email        string          `json:"email"`
	PasswordHash string          `json:"-"`
	WeeklyLimit  decimal.Decimal `json:"weekly_limit"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Expense is a transaction row of type "expense". The type column exists so
// the same table can later hold income rows.
type Expense struct {
	Id          int             `json:"id"`
	UserId      int             `json:"user_id"`
	Type        string          `json:"type"`
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Date        time.Time       `json:"date"`
	CreatedAt   time.Time       `json:"created_at"`
}

const ExpenseType = "expense"

type LoanStatus string

const (
	LoanStatusPending LoanStatus = "pending"
	LoanStatusSettled LoanStatus = "settled"
	LoanStatusOverdue LoanStatus = "overdue"
)

func (s LoanStatus) Valid() bool {
	switch s {
	case LoanStatusPending, LoanStatusSettled, LoanStatusOverdue:
		return true
	}
	return false
}

// Loan records money lent to or borrowed from another person. Status carries
// no transition graph: any valid value may replace any other.
type Loan struct {
	Id          int             `json:"id"`
	UserId      int             `json:"user_id"`
	PersonName  string          `json:"person_name"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Status      LoanStatus      `json:"status"`
	DueDate     *time.Time      `json:"due_date,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (in *RegisterInput) Validate() error {
	errs := ValidationErrors{}
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	if in.Name == "" {
		errs["name"] = "name is required"
	}
	if in.Email == "" {
		errs["email"] = "email is required"
	}
	if in.Password == "" {
		errs["password"] = "password is required"
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ExpenseInput struct {
	Category    string          `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Date        *time.Time      `json:"date,omitempty"`
}

func (in *ExpenseInput) Validate() error {
	errs := ValidationErrors{}
	in.Category = strings.TrimSpace(in.Category)
	in.Description = strings.TrimSpace(in.Description)
	if in.Category == "" {
		errs["category"] = "category is required"
	}
	if in.Description == "" {
		errs["description"] = "description is required"
	}
	if !in.Amount.IsPositive() {
		errs["amount"] = "amount must be a positive number"
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type LoanInput struct {
	PersonName  string          `json:"person_name"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Status      string          `json:"status,omitempty"`
	DueDate     *time.Time      `json:"due_date,omitempty"`
}

func (in *LoanInput) Validate() error {
	errs := ValidationErrors{}
	in.PersonName = strings.TrimSpace(in.PersonName)
	in.Type = strings.TrimSpace(in.Type)
	in.Description = strings.TrimSpace(in.Description)
	if in.PersonName == "" {
		errs["person_name"] = "person name is required"
	}
	if in.Type == "" {
		errs["type"] = "loan type is required"
	}
	if in.Description == "" {
		errs["description"] = "description is required"
	}
	if !in.Amount.IsPositive() {
		errs["amount"] = "amount must be a positive number"
	}
	if in.Status != "" && !LoanStatus(in.Status).Valid() {
		errs["status"] = "status must be one of pending, settled, overdue"
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type WeeklyLimitInput struct {
	WeeklyLimit decimal.Decimal `json:"weekly_limit"`
}

func (in *WeeklyLimitInput) Validate() error {
	if in.WeeklyLimit.IsNegative() {
		return ValidationErrors{"weekly_limit": "weekly limit cannot be negative"}
	}
	return nil
}
