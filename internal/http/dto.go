package http

import (
	"finman/internal/core"
	"finman/internal/services"

	"github.com/shopspring/decimal"
)

type (
	registerRequest struct {
		Username    string `json:"username"`
		Password    string `json:"password"`
		FullName    string `json:"fullName"`
		PhoneNumber string `json:"phoneNumber"`
	}

	loginRequest struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	categoryRequest struct {
		Name string `json:"name"`
		Type string `json:"type"`
	}

	transactionRequest struct {
		Amount      *decimal.Decimal `json:"amount"`
		Date        string           `json:"date"`
		Category    string           `json:"category"`
		Description string           `json:"description"`
	}

	transactionUpdateRequest struct {
		Amount      *decimal.Decimal `json:"amount"`
		Date        *string          `json:"date"`
		Category    *string          `json:"category"`
		Description *string          `json:"description"`
	}

	goalRequest struct {
		GoalName     string           `json:"goalName"`
		TargetAmount *decimal.Decimal `json:"targetAmount"`
		TargetDate   string           `json:"targetDate"`
		StartDate    string           `json:"startDate"`
	}

	goalUpdateRequest struct {
		TargetAmount *decimal.Decimal `json:"targetAmount"`
		TargetDate   *string          `json:"targetDate"`
	}
)

type (
	RegisterResponse struct {
		Message string      `json:"message"`
		UserID  core.UserID `json:"userId"`
	}

	LoginResponse struct {
		Message   string `json:"message"`
		Token     string `json:"token"`
		ExpiresAt string `json:"expiresAt"`
	}

	CategoryResponse struct {
		Name   string               `json:"name"`
		Type   core.TransactionType `json:"type"`
		Custom bool                 `json:"custom"`
	}

	CategoryListResponse struct {
		Categories []CategoryResponse `json:"categories"`
	}

	TransactionResponse struct {
		ID          int64                `json:"id"`
		Amount      core.Money           `json:"amount"`
		Date        core.Date            `json:"date"`
		Category    string               `json:"category"`
		Description string               `json:"description"`
		Type        core.TransactionType `json:"type"`
	}

	TransactionListResponse struct {
		Transactions []TransactionResponse `json:"transactions"`
	}

	GoalResponse struct {
		ID                 int64           `json:"id"`
		GoalName           string          `json:"goalName"`
		TargetAmount       core.Money      `json:"targetAmount"`
		TargetDate         core.Date       `json:"targetDate"`
		StartDate          core.Date       `json:"startDate"`
		CurrentProgress    core.Money      `json:"currentProgress"`
		ProgressPercentage core.Percentage `json:"progressPercentage"`
		RemainingAmount    core.Money      `json:"remainingAmount"`
	}

	GoalListResponse struct {
		Goals []GoalResponse `json:"goals"`
	}
)

func categoryResponse(c core.Category) CategoryResponse {
	return CategoryResponse{Name: c.Name, Type: c.Type, Custom: c.Custom}
}

func transactionResponse(t core.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:          t.ID,
		Amount:      core.RoundMoney(t.Amount),
		Date:        t.Date,
		Category:    t.Category,
		Description: t.Description,
		Type:        t.Type,
	}
}

func goalResponse(g services.GoalView) GoalResponse {
	return GoalResponse{
		ID:                 g.ID,
		GoalName:           g.Name,
		TargetAmount:       g.Progress.Target,
		TargetDate:         g.TargetDate,
		StartDate:          g.StartDate,
		CurrentProgress:    g.Progress.Progress,
		ProgressPercentage: g.Progress.Percentage,
		RemainingAmount:    g.Progress.Remaining,
	}
}

func amountOrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
