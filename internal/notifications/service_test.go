package notifications

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dukkanhq/dukkan-backend/pkg/db/models"
	pkgerrors "github.com/dukkanhq/dukkan-backend/pkg/errors"
	"github.com/dukkanhq/dukkan-backend/pkg/pagination"
)

type stubRepo struct {
	listParams  listParams
	listRows    []models.Notification
	listCursor  *pagination.Cursor
	listErr     error
	markResult  markResult
	markErr     error
	markAllErr  error
	markedCount int64
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) Create(ctx context.Context, notification *models.Notification) error {
	panic("not implemented")
}

func (s *stubRepo) List(ctx context.Context, params listParams) ([]models.Notification, *pagination.Cursor, error) {
	s.listParams = params
	return s.listRows, s.listCursor, s.listErr
}

func (s *stubRepo) MarkRead(ctx context.Context, supplierID, notificationID uuid.UUID, now time.Time) (markResult, error) {
	return s.markResult, s.markErr
}

func (s *stubRepo) MarkAllRead(ctx context.Context, supplierID uuid.UUID, now time.Time) (int64, error) {
	return s.markedCount, s.markAllErr
}

func (s *stubRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	panic("not implemented")
}

func TestListEncodesNextCursor(t *testing.T) {
	t.Parallel()
	next := pagination.Cursor{CreatedAt: time.Now().UTC(), ID: uuid.New()}
	repo := &stubRepo{
		listRows:   []models.Notification{{ID: uuid.New()}},
		listCursor: &next,
	}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	result, err := svc.List(context.Background(), ListParams{SupplierID: uuid.New(), Limit: 10})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(result.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(result.Items))
	}
	if result.Cursor == "" {
		t.Fatal("expected encoded cursor")
	}
	parsed, err := pagination.ParseCursor(result.Cursor)
	if err != nil || parsed.ID != next.ID {
		t.Fatalf("cursor round trip failed: %v", err)
	}
	if repo.listParams.Limit != 10 {
		t.Fatalf("expected limit passed through, got %d", repo.listParams.Limit)
	}
}

func TestListRejectsMissingSupplier(t *testing.T) {
	t.Parallel()
	svc, _ := NewService(&stubRepo{})
	_, err := svc.List(context.Background(), ListParams{})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestListRejectsBadCursor(t *testing.T) {
	t.Parallel()
	svc, _ := NewService(&stubRepo{})
	_, err := svc.List(context.Background(), ListParams{SupplierID: uuid.New(), Cursor: "!!not-a-cursor!!"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMarkReadNotFound(t *testing.T) {
	t.Parallel()
	svc, _ := NewService(&stubRepo{markResult: markResult{Found: false}})
	err := svc.MarkRead(context.Background(), uuid.New(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMarkReadAlreadyReadIsOK(t *testing.T) {
	t.Parallel()
	svc, _ := NewService(&stubRepo{markResult: markResult{Found: true, Updated: false}})
	if err := svc.MarkRead(context.Background(), uuid.New(), uuid.New()); err != nil {
		t.Fatalf("expected already-read to succeed, got %v", err)
	}
}

func TestMarkAllReadWrapsRepoError(t *testing.T) {
	t.Parallel()
	svc, _ := NewService(&stubRepo{markAllErr: errors.New("db down")})
	_, err := svc.MarkAllRead(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMarkAllReadReturnsCount(t *testing.T) {
	t.Parallel()
	svc, _ := NewService(&stubRepo{markedCount: 4})
	count, err := svc.MarkAllRead(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("MarkAllRead: %v", err)
	}
	if count != 4 {
		t.Fatalf("expected 4, got %d", count)
	}
}
