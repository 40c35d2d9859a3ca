package repository

import (
	"cashvelo/internal/database"
	"cashvelo/internal/models"
)

type (
	BudgetRepository     = OwnedRepository[models.Budget, *models.Budget]
	ExpenseRepository    = OwnedRepository[models.Expense, *models.Expense]
	CreditCardRepository = OwnedRepository[models.CreditCard, *models.CreditCard]
	IncomeRepository     = OwnedRepository[models.Income, *models.Income]
	GoalRepository       = OwnedRepository[models.Goal, *models.Goal]
)

var budgetSchema = Schema[models.Budget]{
	Table:   "budgets",
	Columns: []string{"name", "limit_amount", "type"},
	OrderBy: "created_at",
	Values: func(b *models.Budget) []interface{} {
		return []interface{}{b.Name, b.Limit, b.Type}
	},
	Fields: func(b *models.Budget) []interface{} {
		return []interface{}{&b.Name, &b.Limit, &b.Type}
	},
}

var expenseSchema = Schema[models.Expense]{
	Table:   "expenses",
	Columns: []string{"amount", "category", "entry_date", "note"},
	OrderBy: "entry_date DESC, created_at DESC",
	Filters: map[string]string{"category": "category"},
	Values: func(e *models.Expense) []interface{} {
		return []interface{}{e.Amount, e.Category, e.Date, e.Note}
	},
	Fields: func(e *models.Expense) []interface{} {
		return []interface{}{&e.Amount, &e.Category, &e.Date, &e.Note}
	},
}

var creditCardSchema = Schema[models.CreditCard]{
	Table:   "credit_cards",
	Columns: []string{"name", "balance", "pending", "payment"},
	OrderBy: "created_at",
	Values: func(c *models.CreditCard) []interface{} {
		return []interface{}{c.Name, c.Balance, c.Pending, c.Payment}
	},
	Fields: func(c *models.CreditCard) []interface{} {
		return []interface{}{&c.Name, &c.Balance, &c.Pending, &c.Payment}
	},
}

var incomeSchema = Schema[models.Income]{
	Table:   "incomes",
	Columns: []string{"type", "amount", "source", "entry_date", "note"},
	OrderBy: "entry_date DESC, created_at DESC",
	Filters: map[string]string{"type": "type"},
	Values: func(i *models.Income) []interface{} {
		return []interface{}{i.Type, i.Amount, i.Source, i.Date, i.Note}
	},
	Fields: func(i *models.Income) []interface{} {
		return []interface{}{&i.Type, &i.Amount, &i.Source, &i.Date, &i.Note}
	},
}

var goalSchema = Schema[models.Goal]{
	Table: "goals",
	Columns: []string{
		"name", "description", "target_amount", "current_amount", "target_date",
		"category", "icon", "color", "completed", "completed_at",
	},
	OrderBy: "created_at DESC",
	Filters: map[string]string{"category": "category"},
	Values: func(g *models.Goal) []interface{} {
		return []interface{}{
			g.Name, g.Description, g.TargetAmount, g.CurrentAmount, g.TargetDate,
			g.Category, g.Icon, g.Color, g.Completed, nullableTime(g.CompletedAt),
		}
	},
	Fields: func(g *models.Goal) []interface{} {
		return []interface{}{
			&g.Name, &g.Description, &g.TargetAmount, &g.CurrentAmount, &g.TargetDate,
			&g.Category, &g.Icon, &g.Color, &g.Completed, scanNullTime(&g.CompletedAt),
		}
	},
}

// NewBudgetRepository creates the budget store
func NewBudgetRepository(db database.DBTX) *BudgetRepository {
	return NewOwnedRepository[models.Budget, *models.Budget](db, budgetSchema)
}

// NewExpenseRepository creates the expense store
func NewExpenseRepository(db database.DBTX) *ExpenseRepository {
	return NewOwnedRepository[models.Expense, *models.Expense](db, expenseSchema)
}

// NewCreditCardRepository creates the credit card store
func NewCreditCardRepository(db database.DBTX) *CreditCardRepository {
	return NewOwnedRepository[models.CreditCard, *models.CreditCard](db, creditCardSchema)
}

// NewIncomeRepository creates the income store
func NewIncomeRepository(db database.DBTX) *IncomeRepository {
	return NewOwnedRepository[models.Income, *models.Income](db, incomeSchema)
}

// NewGoalRepository creates the goal store
func NewGoalRepository(db database.DBTX) *GoalRepository {
	return NewOwnedRepository[models.Goal, *models.Goal](db, goalSchema)
}
