package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kayoni-co/stocklog/internal/domain/models"
)

// LedgerService describes the ledger operations the HTTP layer can perform.
type LedgerService interface {
	RecordMovement(ctx context.Context, m models.Movement) (*models.Item, *models.Transaction, error)
	CreateItem(ctx context.Context, name string) (*models.Item, error)
	ListItems(ctx context.Context) ([]models.Item, error)
}

// ItemsHandler handles item and movement HTTP requests.
type ItemsHandler struct {
	ledger LedgerService
	logger *zap.Logger
}

// NewItemsHandler constructs the HTTP handler adapter.
func NewItemsHandler(ledger LedgerService, logger *zap.Logger) *ItemsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ItemsHandler{ledger: ledger, logger: logger}
}

type movementRequest struct {
	Name      string     `json:"name" binding:"required"`
	Type      string     `json:"type" binding:"required"`
	Quantity  float64    `json:"quantity" binding:"required"`
	UnitCost  float64    `json:"unitCost"`
	UnitPrice float64    `json:"unitPrice"`
	Date      *time.Time `json:"date"`
}

type registerItemRequest struct {
	Name string `json:"name" binding:"required"`
}

// RecordMovement commits a purchase or sale against the ledger.
func (h *ItemsHandler) RecordMovement(c *gin.Context) {
	var req movementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid movement payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "name, type and quantity > 0 are required"})
		return
	}

	kind, ok := models.ParseKind(req.Type)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": `type must be "purchase" or "sale"`})
		return
	}

	movement := models.Movement{
		Name:      req.Name,
		Kind:      kind,
		Quantity:  req.Quantity,
		UnitCost:  req.UnitCost,
		UnitPrice: req.UnitPrice,
	}
	if req.Date != nil {
		movement.Date = *req.Date
	}

	item, tx, err := h.ledger.RecordMovement(c.Request.Context(), movement)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":     "transaction recorded",
		"item":        item.View(),
		"transaction": tx,
	})
}

// RegisterItem creates an empty item through the explicit registration path.
func (h *ItemsHandler) RegisterItem(c *gin.Context) {
	var req registerItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid register payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	item, err := h.ledger.CreateItem(c.Request.Context(), req.Name)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"item": item.View()})
}

// ListItems returns every item with derived metrics attached.
func (h *ItemsHandler) ListItems(c *gin.Context) {
	items, err := h.ledger.ListItems(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}

	views := make([]models.ItemView, 0, len(items))
	for i := range items {
		views = append(views, items[i].View())
	}
	c.JSON(http.StatusOK, views)
}

func (h *ItemsHandler) writeError(c *gin.Context, err error) {
	var stockErr *models.InsufficientStockError

	switch {
	case errors.As(err, &stockErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": stockErr.Error()})
	case errors.Is(err, models.ErrValidation), errors.Is(err, models.ErrInvalidMovement):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrDuplicateItem):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.logger.Error("ledger operation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
