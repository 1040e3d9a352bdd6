package handler

import (
	"ledger-api/internal/adapter/http/dto"
	"ledger-api/internal/adapter/http/middleware"
	"ledger-api/internal/core/ports"
	"ledger-api/pkg/apperror"
	"ledger-api/pkg/response"

	"github.com/gin-gonic/gin"
)

// TransactionHandler serves the transaction log.
type TransactionHandler struct {
	ledgerSvc ports.LedgerService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(ledgerSvc ports.LedgerService) *TransactionHandler {
	return &TransactionHandler{ledgerSvc: ledgerSvc}
}

// List handles GET /api/v1/transactions?account_id=&limit=.
func (h *TransactionHandler) List(c *gin.Context) {
	var q dto.TransactionListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, apperror.InvalidRequest(err.Error()))
		return
	}

	txs, err := h.ledgerSvc.ListTransactions(c.Request.Context(), middleware.ActorFrom(c), ports.TransactionFilter{
		AccountID: q.AccountID,
		Limit:     q.Limit,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]dto.TransactionResponse, 0, len(txs))
	for _, tx := range txs {
		items = append(items, dto.TransactionResponse{
			ID:                tx.ID,
			SenderAccountID:   tx.SenderAccountID,
			ReceiverAccountID: tx.ReceiverAccountID,
			Amount:            tx.Amount,
			CreatedAt:         tx.CreatedAt,
		})
	}

	response.OK(c, dto.TransactionListResponse{Items: items, Count: len(items)})
}
