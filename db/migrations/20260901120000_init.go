package migrations

import (
	"context"

	"github.com/terracapital/marketplace/db/models"
	"github.com/uptrace/bun"
)

// Since this init will reflect the latest model fields when run on fresh db
// make sure that when you add/remove columns in subsequent migrations IfNotExists/IfExists is used
// otherwise it's going to result in errors.
func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		if _, err := db.NewCreateTable().Model((*models.StateEntry)(nil)).IfNotExists().Exec(ctx); err != nil {
			return err
		}
		if _, err := db.NewCreateTable().Model((*models.Purchase)(nil)).IfNotExists().Exec(ctx); err != nil {
			return err
		}
		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		if _, err := db.NewDropTable().Model((*models.Purchase)(nil)).IfExists().Exec(ctx); err != nil {
			return err
		}
		_, err := db.NewDropTable().Model((*models.StateEntry)(nil)).IfExists().Exec(ctx)
		return err
	})
}
