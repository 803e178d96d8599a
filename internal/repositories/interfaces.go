package repositories

import (
	"context"

	"github.com/swoopdelivery/swoopsim/internal/models"
)

type AssetRepository interface {
	BulkCreate(ctx context.Context, assets []*models.DeliveryAsset) error
	Create(ctx context.Context, asset *models.DeliveryAsset) error
	GetAll(ctx context.Context) ([]*models.DeliveryAsset, error)
	Count(ctx context.Context) (int, error)
	DeleteAll(ctx context.Context) error
}

type OrderRepository interface {
	BulkCreate(ctx context.Context, orders []*models.Order) error
	Create(ctx context.Context, order *models.Order) error
	GetAll(ctx context.Context) ([]*models.Order, error)
	GetByAsset(ctx context.Context, assetID string) ([]*models.Order, error)
	Count(ctx context.Context) (int, error)
	DeleteAll(ctx context.Context) error
}
