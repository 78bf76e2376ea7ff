package suppliers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dukkanhq/dukkan-backend/pkg/db/models"
	pkgerrors "github.com/dukkanhq/dukkan-backend/pkg/errors"
)

// View is one supplier on the wire.
type View struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
}

// Service is the supplier directory.
type Service interface {
	List(ctx context.Context) ([]View, error)
	Get(ctx context.Context, id uuid.UUID) (*View, error)
	// ResolveNames maps supplier ids to display names at sub-order creation time.
	ResolveNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
}

type service struct {
	db *gorm.DB
}

// NewService builds the supplier directory over the shared DB handle.
func NewService(db *gorm.DB) (Service, error) {
	if db == nil {
		return nil, fmt.Errorf("db handle required")
	}
	return &service{db: db}, nil
}

func (s *service) List(ctx context.Context) ([]View, error) {
	var rows []models.Supplier
	err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list suppliers")
	}
	views := make([]View, 0, len(rows))
	for _, row := range rows {
		views = append(views, newView(row))
	}
	return views, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*View, error) {
	var row models.Supplier
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "supplier not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load supplier")
	}
	view := newView(row)
	return &view, nil
}

func (s *service) ResolveNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	names := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}
	var rows []models.Supplier
	err := s.db.WithContext(ctx).
		Select("id", "name").
		Where("id IN ?", ids).
		Find(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve supplier names")
	}
	for _, row := range rows {
		names[row.ID] = row.Name
	}
	return names, nil
}

func newView(row models.Supplier) View {
	return View{
		ID:        row.ID,
		Name:      row.Name,
		IsActive:  row.IsActive,
		CreatedAt: row.CreatedAt,
	}
}
