package dto

import (
	"time"

	"github.com/corebooks/corebooks/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateTransactionRequest is a single debit or credit line in a journal
// creation request. A line carries one positive amount and one side.
type CreateTransactionRequest struct {
	AccountID       string                 `json:"accountID" binding:"required"`
	Amount          decimal.Decimal        `json:"amount" binding:"required"`
	TransactionType domain.TransactionType `json:"transactionType" binding:"required,oneof=DEBIT CREDIT"`
	Notes           string                 `json:"notes"`
	TransactionDate *time.Time             `json:"transactionDate"` // Defaults to the journal date
}

// CreateJournalRequest defines the data needed to create a journal entry.
// SaveAs selects whether the entry is kept as a draft or posted immediately.
type CreateJournalRequest struct {
	Date         time.Time                  `json:"date" binding:"required"`
	Reference    string                     `json:"reference"`
	Description  string                     `json:"description" binding:"required"`
	CurrencyCode string                     `json:"currencyCode" binding:"required,currencycode"`
	SaveAs       string                     `json:"saveAs" binding:"omitempty,oneof=DRAFT POSTED"`
	Transactions []CreateTransactionRequest `json:"transactions" binding:"required,min=2,dive"`
}

// UpdateJournalRequest defines the header fields editable while an entry is
// still DRAFT or PENDING.
type UpdateJournalRequest struct {
	Date        *time.Time `json:"date"`
	Reference   *string    `json:"reference"`
	Description *string    `json:"description"`
}

// ListJournalsParams holds query parameters for listing journals.
type ListJournalsParams struct {
	Limit               int     `form:"limit,default=20"`
	NextToken           *string `form:"nextToken"`
	IncludeReversals    bool    `form:"includeReversals,default=true"`
	IncludeTransactions bool    `form:"includeTransactions,default=false"`
}

// ListTransactionsParams holds query parameters for listing account transactions.
type ListTransactionsParams struct {
	Limit     int     `form:"limit,default=20"`
	NextToken *string `form:"nextToken"`
}

// TransactionResponse defines the data returned for a transaction line.
type TransactionResponse struct {
	TransactionID   string                 `json:"transactionID"`
	JournalID       string                 `json:"journalID"`
	AccountID       string                 `json:"accountID"`
	Amount          decimal.Decimal        `json:"amount"`
	TransactionType domain.TransactionType `json:"transactionType"`
	CurrencyCode    string                 `json:"currencyCode"`
	Notes           string                 `json:"notes"`
	TransactionDate time.Time              `json:"transactionDate"`
	RunningBalance  decimal.Decimal        `json:"runningBalance"`
}

// JournalResponse defines the data returned for a journal entry.
type JournalResponse struct {
	JournalID          string                `json:"journalID"`
	Date               time.Time             `json:"date"`
	Reference          string                `json:"reference"`
	Description        string                `json:"description"`
	CurrencyCode       string                `json:"currencyCode"`
	Status             domain.EntryStatus    `json:"status"`
	Amount             decimal.Decimal       `json:"amount"`
	OriginalJournalID  *string               `json:"originalJournalID,omitempty"`
	ReversingJournalID *string               `json:"reversingJournalID,omitempty"`
	Transactions       []TransactionResponse `json:"transactions,omitempty"`
	CreatedAt          time.Time             `json:"createdAt"`
	CreatedBy          string                `json:"createdBy"`
}

// ListJournalsResponse wraps a page of journals plus the next page token.
type ListJournalsResponse struct {
	Journals  []JournalResponse `json:"journals"`
	NextToken *string           `json:"nextToken,omitempty"`
}

// ListTransactionsResponse wraps a page of transactions plus the next page token.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	NextToken    *string               `json:"nextToken,omitempty"`
}

// ToTransactionResponse converts a domain.Transaction to TransactionResponse DTO.
func ToTransactionResponse(txn *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID:   txn.TransactionID,
		JournalID:       txn.JournalID,
		AccountID:       txn.AccountID,
		Amount:          txn.Amount,
		TransactionType: txn.TransactionType,
		CurrencyCode:    txn.CurrencyCode,
		Notes:           txn.Notes,
		TransactionDate: txn.TransactionDate,
		RunningBalance:  txn.RunningBalance,
	}
}

// ToTransactionResponses converts a slice of domain.Transaction to response DTOs.
func ToTransactionResponses(txns []domain.Transaction) []TransactionResponse {
	responses := make([]TransactionResponse, len(txns))
	for i, txn := range txns {
		responses[i] = ToTransactionResponse(&txn)
	}
	return responses
}

// ToJournalResponse converts a domain.Journal to JournalResponse DTO.
func ToJournalResponse(j *domain.Journal) JournalResponse {
	resp := JournalResponse{
		JournalID:          j.JournalID,
		Date:               j.JournalDate,
		Reference:          j.Reference,
		Description:        j.Description,
		CurrencyCode:       j.CurrencyCode,
		Status:             j.Status,
		Amount:             j.Amount,
		OriginalJournalID:  j.OriginalJournalID,
		ReversingJournalID: j.ReversingJournalID,
		CreatedAt:          j.CreatedAt,
		CreatedBy:          j.CreatedBy,
	}
	if len(j.Transactions) > 0 {
		resp.Transactions = ToTransactionResponses(j.Transactions)
	}
	return resp
}
