package handler

import (
	"strconv"

	"ledger-api/internal/adapter/http/dto"
	"ledger-api/internal/adapter/http/middleware"
	"ledger-api/internal/core/domain"
	"ledger-api/internal/core/ports"
	"ledger-api/pkg/response"

	"github.com/gin-gonic/gin"
)

// TransferHandler handles the transfer endpoint.
type TransferHandler struct {
	ledgerSvc ports.LedgerService
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(ledgerSvc ports.LedgerService) *TransferHandler {
	return &TransferHandler{ledgerSvc: ledgerSvc}
}

// Transfer handles POST /api/v1/transfers.
func (h *TransferHandler) Transfer(c *gin.Context) {
	var req dto.TransferRequest
	if err := bindJSON(c, &req); err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.ledgerSvc.Transfer(c.Request.Context(), ports.TransferRequest{
		Actor:          middleware.ActorFrom(c),
		FromAccountID:  req.FromAccountID,
		ToAccountID:    req.ToAccountID,
		Amount:         req.Amount,
		IdempotencyKey: c.GetHeader(middleware.HeaderIdempotencyKey),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Set(middleware.CtxResourceID, strconv.FormatInt(result.Transaction.ID, 10))
	response.Created(c, toTransferResponse(result))
}

func toTransferResponse(r *domain.TransferResult) dto.TransferResponse {
	return dto.TransferResponse{
		TransactionID:   r.Transaction.ID,
		FromAccountID:   r.Transaction.SenderAccountID,
		ToAccountID:     r.Transaction.ReceiverAccountID,
		Amount:          r.Transaction.Amount,
		SenderBalance:   r.SenderBalance,
		ReceiverBalance: r.ReceiverBalance,
		CreatedAt:       r.Transaction.CreatedAt,
	}
}
