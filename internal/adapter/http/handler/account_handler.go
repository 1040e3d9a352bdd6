package handler

import (
	"ledger-api/internal/adapter/http/dto"
	"ledger-api/internal/adapter/http/middleware"
	"ledger-api/internal/core/domain"
	"ledger-api/internal/core/ports"
	"ledger-api/pkg/response"

	"github.com/gin-gonic/gin"
)

// AccountHandler handles account endpoints.
type AccountHandler struct {
	ledgerSvc ports.LedgerService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(ledgerSvc ports.LedgerService) *AccountHandler {
	return &AccountHandler{ledgerSvc: ledgerSvc}
}

// List handles GET /api/v1/accounts.
func (h *AccountHandler) List(c *gin.Context) {
	accounts, err := h.ledgerSvc.ListAccounts(c.Request.Context(), middleware.ActorFrom(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.AccountResponse, 0, len(accounts))
	for i := range accounts {
		items = append(items, toAccountResponse(&accounts[i]))
	}
	response.OK(c, items)
}

// Create handles POST /api/v1/accounts.
func (h *AccountHandler) Create(c *gin.Context) {
	var req dto.CreateAccountRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	account, err := h.ledgerSvc.CreateAccount(c.Request.Context(), middleware.ActorFrom(c), ports.CreateAccountRequest{
		ID:             req.ID,
		OwnerID:        req.OwnerID,
		InitialBalance: req.InitialBalance,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Set(middleware.CtxResourceID, account.ID)
	response.Created(c, toAccountResponse(account))
}

// GetBalance handles GET /api/v1/accounts/:id/balance.
func (h *AccountHandler) GetBalance(c *gin.Context) {
	id := c.Param("id")

	balance, err := h.ledgerSvc.GetBalance(c.Request.Context(), middleware.ActorFrom(c), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.BalanceResponse{AccountID: id, Balance: balance})
}

// Delete handles DELETE /api/v1/accounts/:id.
func (h *AccountHandler) Delete(c *gin.Context) {
	if err := h.ledgerSvc.DeleteAccount(c.Request.Context(), middleware.ActorFrom(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

func toAccountResponse(a *domain.Account) dto.AccountResponse {
	return dto.AccountResponse{
		ID:        a.ID,
		OwnerID:   a.OwnerID,
		Balance:   a.Balance,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}
