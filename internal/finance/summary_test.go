package finance_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/dropDatabas3/lumify/internal/finance"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestSummarize(t *testing.T) {
	s := finance.Summarize([]finance.Entry{
		{Amount: "1000.50", Kind: "income"},
		{Amount: "250.25", Kind: "expense"},
		{Amount: "99.99", Kind: "expense"},
		{Amount: "500", Kind: "investment"},
	})

	if !s.Income.Equal(dec(t, "1000.50")) {
		t.Fatalf("income: %s", s.Income)
	}
	if !s.Expenses.Equal(dec(t, "350.24")) {
		t.Fatalf("expenses: %s", s.Expenses)
	}
	if !s.Balance.Equal(dec(t, "650.26")) {
		t.Fatalf("balance: %s", s.Balance)
	}
	if !s.Invested.Equal(dec(t, "500")) {
		t.Fatalf("invested: %s", s.Invested)
	}
}

func TestSummarize_ExactDecimalArithmetic(t *testing.T) {
	// 0.1 + 0.2 en float64 no da 0.3; acá sí
	s := finance.Summarize([]finance.Entry{
		{Amount: "0.1", Kind: "income"},
		{Amount: "0.2", Kind: "income"},
	})
	if !s.Income.Equal(dec(t, "0.3")) {
		t.Fatalf("expected exact 0.3, got %s", s.Income)
	}
}

func TestSummarize_IgnoresCorruptEntries(t *testing.T) {
	s := finance.Summarize([]finance.Entry{
		{Amount: "not-a-number", Kind: "income"},
		{Amount: "10", Kind: "income"},
		{Amount: "5", Kind: "unknown-kind"},
	})
	if !s.Income.Equal(dec(t, "10")) {
		t.Fatalf("expected 10, got %s", s.Income)
	}
	if !s.Balance.Equal(dec(t, "10")) {
		t.Fatalf("expected balance 10, got %s", s.Balance)
	}
}

func TestSummarize_Empty(t *testing.T) {
	s := finance.Summarize(nil)
	if !s.Balance.IsZero() || !s.Income.IsZero() {
		t.Fatalf("expected zero summary, got %+v", s)
	}
}
