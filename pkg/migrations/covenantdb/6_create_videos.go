package covenantdb

import (
	"context"
	"log"

	mghelper "github.com/yntoyg/covenant-api/pkg/pgutil/migrations"
	"github.com/yntoyg/covenant-api/pkg/store"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		log.Println("creating videos table...")
		if err := mghelper.CreateSchema(ctx, db, &store.VideoDao{}); err != nil {
			return err
		}
		return mghelper.CreateModelIndexes(ctx, db, &store.VideoDao{}, "is_active")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping videos table...")
		return mghelper.DropTables(ctx, db, &store.VideoDao{})
	})
}
