package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/swoopdelivery/swoopsim/internal/models"
)

// AssetRepository persists the delivery fleet. Locations are stored as the
// hole number with 0 meaning the clubhouse.
type AssetRepository struct {
	pool *pgxpool.Pool
}

func NewAssetRepository(pool *pgxpool.Pool) *AssetRepository {
	return &AssetRepository{pool: pool}
}

const assetInsert = `
	INSERT INTO delivery_assets (
		id, name, kind, loop, status, current_hole, last_update_time
	) VALUES ($1, $2, $3, $4, $5, $6, $7)`

func (r *AssetRepository) BulkCreate(ctx context.Context, assets []*models.DeliveryAsset) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, asset := range assets {
		_, err = tx.Exec(ctx, assetInsert,
			asset.ID,
			asset.Name,
			string(asset.Kind),
			string(asset.Loop),
			string(asset.Status),
			asset.CurrentLocation.HoleNumber(),
			asset.LastUpdateTime,
		)
		if err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *AssetRepository) Create(ctx context.Context, asset *models.DeliveryAsset) error {
	_, err := r.pool.Exec(ctx, assetInsert,
		asset.ID,
		asset.Name,
		string(asset.Kind),
		string(asset.Loop),
		string(asset.Status),
		asset.CurrentLocation.HoleNumber(),
		asset.LastUpdateTime,
	)
	return err
}

func (r *AssetRepository) GetAll(ctx context.Context) ([]*models.DeliveryAsset, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, kind, loop, status, current_hole, last_update_time
		FROM delivery_assets
		ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assets []*models.DeliveryAsset
	for rows.Next() {
		var (
			asset  models.DeliveryAsset
			kind   string
			loop   string
			status string
			hole   int
		)
		if err := rows.Scan(&asset.ID, &asset.Name, &kind, &loop, &status, &hole, &asset.LastUpdateTime); err != nil {
			return nil, err
		}
		asset.Kind = models.AssetKind(kind)
		asset.Loop = models.Loop(loop)
		parsed, err := models.ParseAssetStatus(status)
		if err != nil {
			return nil, err
		}
		asset.Status = parsed
		if hole == 0 {
			asset.CurrentLocation = models.Clubhouse()
		} else {
			asset.CurrentLocation = models.Hole(hole)
		}
		assets = append(assets, &asset)
	}
	return assets, rows.Err()
}

func (r *AssetRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM delivery_assets`).Scan(&count)
	return count, err
}

func (r *AssetRepository) DeleteAll(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM delivery_assets`)
	return err
}
