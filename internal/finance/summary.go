// Package finance arma el resumen del dashboard a partir de los datos que
// viven en el backend hosted (API REST estilo PostgREST). Acá no hay
// modelado de dominio: solo agregación exacta de montos para mostrar.
package finance

import (
	"github.com/shopspring/decimal"
)

// Entry es un movimiento tal como lo devuelve la API de datos.
type Entry struct {
	Amount string `json:"amount"`
	Kind   string `json:"kind"` // "income" | "expense" | "investment"
}

// Summary son los totales del dashboard.
type Summary struct {
	Income   decimal.Decimal
	Expenses decimal.Decimal
	Balance  decimal.Decimal
	Invested decimal.Decimal
}

// Summarize agrega los movimientos con aritmética decimal exacta.
// Montos no parseables se ignoran (el backend es la fuente de verdad;
// un registro corrupto no voltea el dashboard).
func Summarize(entries []Entry) Summary {
	var s Summary
	for _, e := range entries {
		amt, err := decimal.NewFromString(e.Amount)
		if err != nil {
			continue
		}
		switch e.Kind {
		case "income":
			s.Income = s.Income.Add(amt)
		case "expense":
			s.Expenses = s.Expenses.Add(amt)
		case "investment":
			s.Invested = s.Invested.Add(amt)
		}
	}
	s.Balance = s.Income.Sub(s.Expenses)
	return s
}
