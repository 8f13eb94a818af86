package main

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// MemoryStore is an in-memory implementation of Store. It backs the tests
// and the DATA_BACKEND=memory mode, and is safe for concurrent use.
type MemoryStore struct {
	mu sync.Mutex

	users    map[int]User
	expenses map[int]Expense
	loans    map[int]Loan

	nextUserId    int
	nextExpenseId int
	nextLoanId    int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:         make(map[int]User),
		expenses:      make(map[int]Expense),
		loans:         make(map[int]Loan),
		nextUserId:    1,
		nextExpenseId: 1,
		nextLoanId:    1,
	}
}

func (m *MemoryStore) CreateUser(ctx context.Context, name, email, passwordHash string) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Email == email {
			return User{}, ErrDuplicateUser
		}
	}

	u := User{
		Id:           m.nextUserId,
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		WeeklyLimit:  decimal.Zero,
		CreatedAt:    time.Now(),
	}
	m.users[u.Id] = u
	m.nextUserId++
	return u, nil
}

func (m *MemoryStore) GetUserByEmail(ctx context.Context, email string) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return User{}, fmt.Errorf("user %s: %w", email, ErrNotFound)
}

func (m *MemoryStore) CreateExpense(ctx context.Context, e Expense) (Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e.Id = m.nextExpenseId
	e.CreatedAt = time.Now()
	m.expenses[e.Id] = e
	m.nextExpenseId++
	return e, nil
}

func (m *MemoryStore) ListExpenses(ctx context.Context, userId int) ([]Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	expenses := []Expense{}
	for _, e := range m.expenses {
		if e.UserId == userId && e.Type == ExpenseType {
			expenses = append(expenses, e)
		}
	}
	sort.Slice(expenses, func(i, j int) bool {
		return expenses[i].Date.After(expenses[j].Date)
	})
	return expenses, nil
}

func (m *MemoryStore) UpdateExpense(ctx context.Context, e Expense) (Expense, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.expenses[e.Id]
	if !ok || existing.UserId != e.UserId {
		return Expense{}, notFound("expense", e.Id)
	}

	existing.Category = e.Category
	existing.Amount = e.Amount
	existing.Description = e.Description
	m.expenses[e.Id] = existing
	return existing, nil
}

func (m *MemoryStore) DeleteExpense(ctx context.Context, userId, expenseId int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.expenses[expenseId]
	if !ok || existing.UserId != userId {
		return notFound("expense", expenseId)
	}
	delete(m.expenses, expenseId)
	return nil
}

func (m *MemoryStore) WeeklyExpenseTotal(ctx context.Context, userId int) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	weekStart := startOfWeek(time.Now())
	total := decimal.Zero
	for _, e := range m.expenses {
		if e.UserId != userId || e.Type != ExpenseType {
			continue
		}
		if e.Date.Before(weekStart) || !e.Date.Before(weekStart.AddDate(0, 0, 7)) {
			continue
		}
		total = total.Add(e.Amount)
	}
	return total, nil
}

// startOfWeek mirrors Postgres date_trunc('week', ...): weeks start Monday.
func startOfWeek(t time.Time) time.Time {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return day.AddDate(0, 0, 1-weekday)
}

func (m *MemoryStore) CreateLoan(ctx context.Context, l Loan) (Loan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	l.Id = m.nextLoanId
	l.CreatedAt = now
	l.UpdatedAt = now
	m.loans[l.Id] = l
	m.nextLoanId++
	return l, nil
}

func (m *MemoryStore) ListLoans(ctx context.Context, userId int) ([]Loan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	loans := []Loan{}
	for _, l := range m.loans {
		if l.UserId == userId {
			loans = append(loans, l)
		}
	}
	sort.Slice(loans, func(i, j int) bool {
		if loans[i].CreatedAt.Equal(loans[j].CreatedAt) {
			return loans[i].Id > loans[j].Id
		}
		return loans[i].CreatedAt.After(loans[j].CreatedAt)
	})
	return loans, nil
}

func (m *MemoryStore) UpdateLoan(ctx context.Context, l Loan) (Loan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.loans[l.Id]
	if !ok || existing.UserId != l.UserId {
		return Loan{}, notFound("loan", l.Id)
	}

	existing.PersonName = l.PersonName
	existing.Type = l.Type
	existing.Amount = l.Amount
	existing.Description = l.Description
	existing.Status = l.Status
	existing.DueDate = l.DueDate
	existing.UpdatedAt = time.Now()
	m.loans[l.Id] = existing
	return existing, nil
}

func (m *MemoryStore) DeleteLoan(ctx context.Context, userId, loanId int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.loans[loanId]
	if !ok || existing.UserId != userId {
		return notFound("loan", loanId)
	}
	delete(m.loans, loanId)
	return nil
}

func (m *MemoryStore) GetWeeklyLimit(ctx context.Context, userId int) (decimal.Decimal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[userId]
	if !ok {
		return decimal.Zero, notFound("user", userId)
	}
	return u.WeeklyLimit, nil
}

func (m *MemoryStore) SetWeeklyLimit(ctx context.Context, userId int, limit decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[userId]
	if !ok {
		return notFound("user", userId)
	}
	u.WeeklyLimit = limit
	m.users[userId] = u
	return nil
}

var _ Store = (*MemoryStore)(nil)
