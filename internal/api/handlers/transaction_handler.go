package handlers

import (
	"finagent/internal/dto"
	"finagent/internal/models"
	"finagent/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type TransactionHandler struct {
	fetcher *service.Fetcher
	logger  *zap.Logger
}

func NewTransactionHandler(fetcher *service.Fetcher, logger *zap.Logger) *TransactionHandler {
	return &TransactionHandler{
		fetcher: fetcher,
		logger:  logger,
	}
}

// List godoc
// @Summary List transactions
// @Description The full transaction set in store order. When the store is unreachable an empty list with a warning is returned.
// @Tags transactions
// @Produce json
// @Param fresh query bool false "Bypass the cache" default(false)
// @Success 200 {object} dto.TransactionListResponse
// @Router /api/v1/transactions [get]
func (h *TransactionHandler) List(c *fiber.Ctx) error {
	var (
		transactions []models.Transaction
		err          error
	)
	if c.QueryBool("fresh", false) {
		transactions, err = h.fetcher.FetchFresh(c.Context())
	} else {
		transactions, err = h.fetcher.Fetch(c.Context())
	}

	resp := dto.TransactionListResponse{
		Transactions: make([]dto.TransactionResponse, 0, len(transactions)),
		Count:        len(transactions),
	}
	if err != nil {
		h.logger.Warn("Transaction list served degraded", zap.Error(err))
		resp.Warning = "The transaction store is unreachable. Figures may be missing."
	}

	for _, tx := range transactions {
		resp.Transactions = append(resp.Transactions, dto.TransactionResponse{
			Date:     tx.Date.Format("2006-01-02"),
			Amount:   tx.Amount,
			Category: tx.Category,
			Merchant: tx.Merchant,
		})
	}

	return c.JSON(resp)
}
