package migrations

import (
	"context"

	"github.com/terracapital/marketplace/db/models"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		if _, err := db.NewCreateIndex().Model((*models.Purchase)(nil)).
			Index("index_purchases_on_buyer").IfNotExists().Column("buyer", "created_at").Exec(ctx); err != nil {
			return err
		}
		_, err := db.NewCreateIndex().Model((*models.Purchase)(nil)).
			Index("index_purchases_on_asset_id").IfNotExists().Column("asset_id").Exec(ctx)
		return err
	}, func(ctx context.Context, db *bun.DB) error {
		if _, err := db.NewDropIndex().Index("index_purchases_on_buyer").IfExists().Exec(ctx); err != nil {
			return err
		}
		_, err := db.NewDropIndex().Index("index_purchases_on_asset_id").IfExists().Exec(ctx)
		return err
	})
}
