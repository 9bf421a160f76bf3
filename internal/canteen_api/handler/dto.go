package handler

// IssueCardRequest represents a request to issue a new stored-value card
type IssueCardRequest struct {
	CardID         string `json:"card_id" binding:"required"`
	InitialBalance int64  `json:"initial_balance" binding:"min=0"`
}

// TopUpRequest represents a request to credit a cardholder's balance
type TopUpRequest struct {
	Amount      int64  `json:"amount" binding:"required,gt=0"`
	Description string `json:"description,omitempty"`
}

// CardResponse represents a card in API responses
type CardResponse struct {
	CardID       string `json:"card_id"`
	CardholderID string `json:"cardholder_id"`
	Status       string `json:"status"`
	Balance      int64  `json:"balance"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

// HistoryEntryResponse represents one balance change in API responses
type HistoryEntryResponse struct {
	ID            string `json:"id"`
	CardID        string `json:"card_id"`
	Delta         int64  `json:"delta"`
	BalanceBefore int64  `json:"balance_before"`
	BalanceAfter  int64  `json:"balance_after"`
	Description   string `json:"description"`
	TransactionID string `json:"transaction_id,omitempty"`
	CreatedAt     string `json:"created_at"`
}

// TopUpResponse represents the outcome of a balance credit
type TopUpResponse struct {
	CardholderID    string `json:"cardholder_id"`
	PreviousBalance int64  `json:"previous_balance"`
	NewBalance      int64  `json:"new_balance"`
}

// MenuItemRequest represents a staff request to create or replace a menu item
type MenuItemRequest struct {
	ID        string `json:"id" binding:"required"`
	Name      string `json:"name" binding:"required"`
	Category  string `json:"category" binding:"required"`
	Price     int64  `json:"price" binding:"min=0"`
	Available bool   `json:"available"`
}

// AvailabilityRequest represents a staff request to flip item availability
type AvailabilityRequest struct {
	Available *bool `json:"available" binding:"required"`
}

// AddCartItemRequest represents a request to add a line to a terminal's cart
type AddCartItemRequest struct {
	ItemID   string `json:"item_id" binding:"required"`
	Quantity int    `json:"quantity" binding:"required,gt=0"`
}

// PresentCardRequest represents a card read at a terminal
type PresentCardRequest struct {
	CardID string `json:"card_id" binding:"required"`
}

// ManualPaymentRequest represents a staff-recorded cash settlement
type ManualPaymentRequest struct {
	Amount int64 `json:"amount" binding:"min=0"`
}

// PaginationParams represents pagination parameters for list endpoints
type PaginationParams struct {
	Page    int `form:"page,default=1" binding:"min=1"`
	PerPage int `form:"per_page,default=10" binding:"min=1,max=100"`
}
