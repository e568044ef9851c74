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
		log.Println("creating users table...")
		if err := mghelper.CreateSchema(ctx, db, &store.UserDao{}); err != nil {
			return err
		}
		return mghelper.CreateModelIndexes(ctx, db, &store.UserDao{}, "telegram_id", "gentleman_score")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping users table...")
		return mghelper.DropTables(ctx, db, &store.UserDao{})
	})
}
