package docs

import (
	"time"
)

// This file contains models used by Swagger documentation
// It doesn't affect the actual application logic, just documentation

// ErrorResponse represents an error response
// @Description Error information
type ErrorResponse struct {
	// Error category
	Type string `json:"type" example:"VALIDATION_ERROR"`

	// Machine readable reason
	Code string `json:"code" example:"INVALID_AMOUNT"`

	// Error message
	Message string `json:"message" example:"invalid amount"`

	// Detailed error information
	Details string `json:"details,omitempty" example:"amount must be greater than zero"`
}

// SplitResponse is used for Swagger documentation
// @Description One participant's share of an expense
type SplitResponse struct {
	MemberID string `json:"memberId" example:"a1b2c3d4-e5f6-7890-abcd-ef1234567890"`

	// Decimal string in the trip currency
	Amount string `json:"amount" example:"33.34"`

	// Only present for Percentage splits
	Percentage string `json:"percentage,omitempty" example:"33.34"`
}

// ExpenseResponse is used for Swagger documentation
// @Description Expense information
type ExpenseResponse struct {
	ID            string          `json:"id" example:"a1b2c3d4-e5f6-7890-abcd-ef1234567890"`
	TripID        string          `json:"tripId" example:"a1b2c3d4-e5f6-7890-abcd-ef1234567890"`
	Description   string          `json:"description" example:"Dinner at Ramiro"`
	Category      string          `json:"category,omitempty" example:"food"`
	Amount        string          `json:"amount" example:"100.00"`
	Currency      string          `json:"currency" example:"PHP"`
	PaidBy        string          `json:"paidBy" example:"a1b2c3d4-e5f6-7890-abcd-ef1234567890"`
	PaidByName    string          `json:"paidByName,omitempty" example:"Ana"`
	SplitType     string          `json:"splitType" example:"Equal" enums:"Equal,Custom,PaidFor,Percentage"`
	Splits        []SplitResponse `json:"splits"`
	HasSettlement bool            `json:"hasSettlements" example:"false"`
	CreatedAt     time.Time       `json:"createdAt" example:"2026-01-01T00:00:00Z"`
	UpdatedAt     time.Time       `json:"updatedAt" example:"2026-01-01T00:00:00Z"`
}

// BalanceResponse is used for Swagger documentation
// @Description A member's net balance. Positive means the member is owed.
type BalanceResponse struct {
	MemberID    string `json:"memberId" example:"a1b2c3d4-e5f6-7890-abcd-ef1234567890"`
	DisplayName string `json:"displayName,omitempty" example:"Ana"`
	Balance     string `json:"balance" example:"-33.33"`
}
