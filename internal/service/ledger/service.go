package ledger

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kayoni-co/stocklog/internal/domain/models"
)

// Repository defines the persistence operations the ledger needs. The item
// document is the unit of atomicity: Insert and AppendTransaction must each
// fully apply or not at all.
type Repository interface {
	FindByKey(ctx context.Context, nameKey string) (*models.Item, error)
	FindAll(ctx context.Context) ([]models.Item, error)
	Insert(ctx context.Context, item *models.Item) error
	AppendTransaction(ctx context.Context, nameKey string, tx models.Transaction) error
}

// Service is the single writer to the item ledger. The stock check and the
// transaction append for one item form a critical section: without it two
// concurrent sales can each observe sufficient stock and jointly oversell.
// Writes are serialized per item key; different items proceed in parallel,
// and reads take no lock at all.
type Service struct {
	repo   Repository
	logger *zap.Logger
	now    func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewService wires a new ledger service instance.
func NewService(repo Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:   repo,
		logger: logger,
		now:    time.Now,
		locks:  make(map[string]*sync.Mutex),
	}
}

// RecordMovement validates and commits one purchase or sale. Unknown names
// are created implicitly, but only by a purchase. The returned item carries
// the freshly appended transaction.
func (s *Service) RecordMovement(ctx context.Context, m models.Movement) (*models.Item, *models.Transaction, error) {
	m.Name = strings.TrimSpace(m.Name)
	if err := validateMovement(m); err != nil {
		return nil, nil, err
	}

	key := models.NormalizeName(m.Name)

	lock := s.lockFor(key)
	lock.Lock()
	defer lock.Unlock()

	item, err := s.repo.FindByKey(ctx, key)
	if err != nil {
		return nil, nil, err
	}

	now := s.now().UTC()
	tx := m.Transaction(now)

	if item == nil {
		if m.Kind == models.KindSale {
			return nil, nil, fmt.Errorf("record sale for %q: %w", m.Name, models.ErrInvalidMovement)
		}

		item = &models.Item{
			Name:         m.Name,
			NameKey:      key,
			Transactions: []models.Transaction{tx},
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := s.repo.Insert(ctx, item); err != nil {
			return nil, nil, err
		}

		s.logger.Debug("item created via purchase",
			zap.String("item", m.Name),
			zap.Float64("quantity", tx.Quantity),
			zap.Float64("total", tx.Total))
		return item, &tx, nil
	}

	if m.Kind == models.KindSale {
		available := item.CurrentStock()
		if m.Quantity > available {
			return nil, nil, &models.InsufficientStockError{
				Name:      item.Name,
				Requested: m.Quantity,
				Available: available,
			}
		}
	}

	if err := s.repo.AppendTransaction(ctx, key, tx); err != nil {
		return nil, nil, err
	}

	item.Transactions = append(item.Transactions, tx)
	item.UpdatedAt = now

	s.logger.Debug("movement recorded",
		zap.String("item", item.Name),
		zap.String("kind", string(tx.Kind)),
		zap.Float64("quantity", tx.Quantity),
		zap.Float64("total", tx.Total))
	return item, &tx, nil
}

// CreateItem registers an empty item by name. Unlike the movement path this
// never upserts: an existing case-insensitive name is a conflict.
func (s *Service) CreateItem(ctx context.Context, name string) (*models.Item, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", models.ErrValidation)
	}

	key := models.NormalizeName(name)

	lock := s.lockFor(key)
	lock.Lock()
	defer lock.Unlock()

	existing, err := s.repo.FindByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("create item %q: %w", name, models.ErrDuplicateItem)
	}

	now := s.now().UTC()
	item := &models.Item{
		Name:         name,
		NameKey:      key,
		Transactions: []models.Transaction{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Insert(ctx, item); err != nil {
		return nil, err
	}

	s.logger.Debug("item registered", zap.String("item", name))
	return item, nil
}

// ListItems returns a snapshot of every item with its full history. The
// snapshot is consistent per item; it is not linearizable with writes that
// land while the listing runs.
func (s *Service) ListItems(ctx context.Context) ([]models.Item, error) {
	return s.repo.FindAll(ctx)
}

func (s *Service) lockFor(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[key] = lock
	}
	return lock
}

func validateMovement(m models.Movement) error {
	if m.Name == "" {
		return fmt.Errorf("%w: name is required", models.ErrValidation)
	}
	if m.Kind != models.KindPurchase && m.Kind != models.KindSale {
		return fmt.Errorf("%w: kind must be %q or %q", models.ErrValidation, models.KindPurchase, models.KindSale)
	}
	if !isFinite(m.Quantity) || m.Quantity <= 0 {
		return fmt.Errorf("%w: quantity must be a positive number", models.ErrValidation)
	}

	switch m.Kind {
	case models.KindPurchase:
		if !isFinite(m.UnitCost) || m.UnitCost < 0 {
			return fmt.Errorf("%w: unitCost must be a non-negative number", models.ErrValidation)
		}
	case models.KindSale:
		if !isFinite(m.UnitPrice) || m.UnitPrice < 0 {
			return fmt.Errorf("%w: unitPrice must be a non-negative number", models.ErrValidation)
		}
	}
	return nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
