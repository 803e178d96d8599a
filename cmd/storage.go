package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/swoopdelivery/swoopsim/internal/models"
	"github.com/swoopdelivery/swoopsim/internal/repositories/postgres"
	"github.com/swoopdelivery/swoopsim/internal/simulator"
)

// loadFleet pulls the delivery fleet from the database when one is
// configured. An empty table falls back to generated assets.
func loadFleet(ctx context.Context, pool *pgxpool.Pool, sim *simulator.Simulator) error {
	repo := postgres.NewAssetRepository(pool)
	assets, err := repo.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("loading fleet: %w", err)
	}
	if len(assets) == 0 {
		log.Printf("no assets in database, generating fleet from config")
		return nil
	}
	log.Printf("loaded %d assets from database", len(assets))
	sim.SetAssets(assets)
	return nil
}

// saveRun persists the fleet's final state and every order the run
// produced, replacing whatever the previous run left behind.
func saveRun(ctx context.Context, pool *pgxpool.Pool, sim *simulator.Simulator) error {
	assetRepo := postgres.NewAssetRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)

	if err := assetRepo.DeleteAll(ctx); err != nil {
		return fmt.Errorf("clearing assets: %w", err)
	}
	if err := assetRepo.BulkCreate(ctx, sim.Assets); err != nil {
		return fmt.Errorf("saving assets: %w", err)
	}

	if err := orderRepo.DeleteAll(ctx); err != nil {
		return fmt.Errorf("clearing orders: %w", err)
	}
	orders := make([]*models.Order, 0, len(sim.Orders))
	for _, o := range sim.Orders {
		orders = append(orders, o)
	}
	if err := orderRepo.BulkCreate(ctx, orders); err != nil {
		return fmt.Errorf("saving orders: %w", err)
	}
	log.Printf("persisted %d assets and %d orders", len(sim.Assets), len(orders))
	return nil
}

func runWithDatabase(ctx context.Context, cfg *models.Config, sim *simulator.Simulator) error {
	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer pool.Close()

	if err := loadFleet(ctx, pool, sim); err != nil {
		return err
	}
	if _, err := sim.Run(); err != nil {
		return err
	}
	return saveRun(ctx, pool, sim)
}
