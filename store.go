package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type Store interface {
	CreateUser(ctx context.Context, name, email, passwordHash string) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)

	CreateExpense(ctx context.Context, e Expense) (Expense, error)
	ListExpenses(ctx context.Context, userId int) ([]Expense, error)
	UpdateExpense(ctx context.Context, e Expense) (Expense, error)
	DeleteExpense(ctx context.Context, userId, expenseId int) error
	WeeklyExpenseTotal(ctx context.Context, userId int) (decimal.Decimal, error)

	CreateLoan(ctx context.Context, l Loan) (Loan, error)
	ListLoans(ctx context.Context, userId int) ([]Loan, error)
	UpdateLoan(ctx context.Context, l Loan) (Loan, error)
	DeleteLoan(ctx context.Context, userId, loanId int) error

	GetWeeklyLimit(ctx context.Context, userId int) (decimal.Decimal, error)
	SetWeeklyLimit(ctx context.Context, userId int, limit decimal.Decimal) error
}

// A pgx pool lets the app reuse a managed set of connections to the database
// instead of opening a new one for every query.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connStr string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (p *PostgresStore) Close() {
	p.pool.Close()
}

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func (p *PostgresStore) CreateUser(ctx context.Context, name, email, passwordHash string) (User, error) {
	query := `
        INSERT INTO users (name, email, password_hash)
        VALUES ($1, $2, $3)
        RETURNING id, weekly_limit, created_at;
    `

	u := User{Name: name, Email: email, PasswordHash: passwordHash}
	err := p.pool.QueryRow(ctx, query, name, email, passwordHash).
		Scan(&u.Id, &u.WeeklyLimit, &u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return User{}, ErrDuplicateUser
		}
		return User{}, fmt.Errorf("failed to create user: %w", err)
	}

	return u, nil
}

func (p *PostgresStore) GetUserByEmail(ctx context.Context, email string) (User, error) {
	query := `
        SELECT id, name, email, password_hash, weekly_limit, created_at
        FROM users
        WHERE email = $1;
    `

	var u User
	err := p.pool.QueryRow(ctx, query, email).
		Scan(&u.Id, &u.Name, &u.Email, &u.PasswordHash, &u.WeeklyLimit, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, fmt.Errorf("user %s: %w", email, ErrNotFound)
		}
		return User{}, fmt.Errorf("failed to get user by email: %w", err)
	}
	return u, nil
}

func (p *PostgresStore) CreateExpense(ctx context.Context, e Expense) (Expense, error) {
	query := `
        INSERT INTO transactions (user_id, type, category, amount, description, date)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at;
    `

	err := p.pool.QueryRow(ctx, query, e.UserId, e.Type, e.Category, e.Amount, e.Description, e.Date).
		Scan(&e.Id, &e.CreatedAt)
	if err != nil {
		return Expense{}, fmt.Errorf("failed to create expense: %w", err)
	}

	return e, nil
}

func (p *PostgresStore) ListExpenses(ctx context.Context, userId int) ([]Expense, error) {
	query := `
        SELECT id, user_id, type, category, amount, description, date, created_at
        FROM transactions
        WHERE user_id = $1 AND type = $2
        ORDER BY date DESC;
    `

	rows, err := p.pool.Query(ctx, query, userId, ExpenseType)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses for user %d: %w", userId, err)
	}
	defer rows.Close()

	expenses := []Expense{}
	for rows.Next() {
		var e Expense
		err := rows.Scan(&e.Id, &e.UserId, &e.Type, &e.Category, &e.Amount, &e.Description, &e.Date, &e.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return expenses, nil
}

func (p *PostgresStore) UpdateExpense(ctx context.Context, e Expense) (Expense, error) {
	query := `
        UPDATE transactions
        SET category = $1, amount = $2, description = $3
        WHERE id = $4 AND user_id = $5 AND type = $6
        RETURNING type, date, created_at;
    `

	err := p.pool.QueryRow(ctx, query, e.Category, e.Amount, e.Description, e.Id, e.UserId, ExpenseType).
		Scan(&e.Type, &e.Date, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Expense{}, notFound("expense", e.Id)
		}
		return Expense{}, fmt.Errorf("failed to update expense: %w", err)
	}

	return e, nil
}

func (p *PostgresStore) DeleteExpense(ctx context.Context, userId, expenseId int) error {
	query := `
        DELETE FROM transactions
        WHERE id = $1 AND user_id = $2 AND type = $3;
    `

	result, err := p.pool.Exec(ctx, query, expenseId, userId, ExpenseType)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	if result.RowsAffected() == 0 {
		return notFound("expense", expenseId)
	}

	return nil
}

func (p *PostgresStore) WeeklyExpenseTotal(ctx context.Context, userId int) (decimal.Decimal, error) {
	query := `
        SELECT COALESCE(SUM(amount), 0)
        FROM transactions
        WHERE user_id = $1
          AND type = $2
          AND date >= date_trunc('week', CURRENT_DATE)
          AND date < date_trunc('week', CURRENT_DATE) + interval '1 week';
    `

	var total decimal.Decimal
	err := p.pool.QueryRow(ctx, query, userId, ExpenseType).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to calculate weekly expenses: %w", err)
	}

	return total, nil
}

func (p *PostgresStore) CreateLoan(ctx context.Context, l Loan) (Loan, error) {
	query := `
        INSERT INTO loans (user_id, person_name, type, amount, description, status, due_date)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id, created_at, updated_at;
    `

	err := p.pool.QueryRow(ctx, query, l.UserId, l.PersonName, l.Type, l.Amount, l.Description, l.Status, l.DueDate).
		Scan(&l.Id, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return Loan{}, fmt.Errorf("failed to create loan: %w", err)
	}

	return l, nil
}

func (p *PostgresStore) ListLoans(ctx context.Context, userId int) ([]Loan, error) {
	query := `
        SELECT id, user_id, person_name, type, amount, description, status, due_date, created_at, updated_at
        FROM loans
        WHERE user_id = $1
        ORDER BY created_at DESC;
    `

	rows, err := p.pool.Query(ctx, query, userId)
	if err != nil {
		return nil, fmt.Errorf("failed to list loans for user %d: %w", userId, err)
	}
	defer rows.Close()

	loans := []Loan{}
	for rows.Next() {
		var l Loan
		err := rows.Scan(&l.Id, &l.UserId, &l.PersonName, &l.Type, &l.Amount, &l.Description, &l.Status, &l.DueDate, &l.CreatedAt, &l.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan loan: %w", err)
		}
		loans = append(loans, l)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return loans, nil
}

func (p *PostgresStore) UpdateLoan(ctx context.Context, l Loan) (Loan, error) {
	query := `
        UPDATE loans
        SET person_name = $1, type = $2, amount = $3, description = $4, status = $5, due_date = $6, updated_at = NOW()
        WHERE id = $7 AND user_id = $8
        RETURNING created_at, updated_at;
    `

	err := p.pool.QueryRow(ctx, query, l.PersonName, l.Type, l.Amount, l.Description, l.Status, l.DueDate, l.Id, l.UserId).
		Scan(&l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Loan{}, notFound("loan", l.Id)
		}
		return Loan{}, fmt.Errorf("failed to update loan: %w", err)
	}

	return l, nil
}

func (p *PostgresStore) DeleteLoan(ctx context.Context, userId, loanId int) error {
	query := `
        DELETE FROM loans
        WHERE id = $1 AND user_id = $2;
    `

	result, err := p.pool.Exec(ctx, query, loanId, userId)
	if err != nil {
		return fmt.Errorf("failed to delete loan: %w", err)
	}
	if result.RowsAffected() == 0 {
		return notFound("loan", loanId)
	}

	return nil
}

func (p *PostgresStore) GetWeeklyLimit(ctx context.Context, userId int) (decimal.Decimal, error) {
	query := `
        SELECT weekly_limit
        FROM users
        WHERE id = $1;
    `

	var limit decimal.Decimal
	err := p.pool.QueryRow(ctx, query, userId).Scan(&limit)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, notFound("user", userId)
		}
		return decimal.Zero, fmt.Errorf("failed to retrieve weekly limit: %w", err)
	}

	return limit, nil
}

func (p *PostgresStore) SetWeeklyLimit(ctx context.Context, userId int, limit decimal.Decimal) error {
	query := `
        UPDATE users
        SET weekly_limit = $1
        WHERE id = $2;
    `

	result, err := p.pool.Exec(ctx, query, limit, userId)
	if err != nil {
		return fmt.Errorf("failed to set weekly limit: %w", err)
	}
	if result.RowsAffected() == 0 {
		return notFound("user", userId)
	}

	return nil
}

// Keep this in sync with the Store interface.
var _ Store = (*PostgresStore)(nil)
