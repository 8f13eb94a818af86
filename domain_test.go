package main

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpenseInputValidate(t *testing.T) {
	in := ExpenseInput{
		Category:    "  food ",
		Amount:      decimal.NewFromFloat(12.50),
		Description: "lunch",
	}
	require.NoError(t, in.Validate())
	assert.Equal(t, "food", in.Category, "category should be trimmed")

	tests := []struct {
		name  string
		in    ExpenseInput
		field string
	}{
		{"missing category", ExpenseInput{Amount: decimal.NewFromInt(1), Description: "x"}, "category"},
		{"missing description", ExpenseInput{Category: "food", Amount: decimal.NewFromInt(1)}, "description"},
		{"zero amount", ExpenseInput{Category: "food", Description: "x"}, "amount"},
		{"negative amount", ExpenseInput{Category: "food", Amount: decimal.NewFromInt(-5), Description: "x"}, "amount"},
		{"whitespace category", ExpenseInput{Category: "   ", Amount: decimal.NewFromInt(1), Description: "x"}, "category"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Validate()
			require.Error(t, err)
			var verrs ValidationErrors
			require.ErrorAs(t, err, &verrs)
			assert.Contains(t, verrs, tt.field)
		})
	}
}

func TestLoanInputValidate(t *testing.T) {
	in := LoanInput{
		PersonName:  "Peter",
		Type:        "lent",
		Amount:      decimal.NewFromInt(50),
		Description: "dinner",
	}
	require.NoError(t, in.Validate())

	in.Status = "settled"
	require.NoError(t, in.Validate())

	in.Status = "whatever"
	err := in.Validate()
	require.Error(t, err)
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs, "status")

	empty := LoanInput{}
	err = empty.Validate()
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs, "person_name")
	assert.Contains(t, verrs, "type")
	assert.Contains(t, verrs, "description")
	assert.Contains(t, verrs, "amount")
}

func TestLoanStatusValid(t *testing.T) {
	assert.True(t, LoanStatusPending.Valid())
	assert.True(t, LoanStatusSettled.Valid())
	assert.True(t, LoanStatusOverdue.Valid())
	assert.False(t, LoanStatus("paid").Valid())
	assert.False(t, LoanStatus("").Valid())
}

func TestValidationErrorsMessage(t *testing.T) {
	err := ValidationErrors{
		"amount":      "amount must be a positive number",
		"person_name": "person name is required",
	}
	// Messages are joined in field order so the output is deterministic.
	assert.Equal(t, "amount must be a positive number; person name is required", err.Error())
}
