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
		log.Println("creating sessions table...")
		if err := mghelper.CreateSchema(ctx, db, &store.SessionDao{}); err != nil {
			return err
		}
		return mghelper.CreateModelIndexes(ctx, db, &store.SessionDao{}, "user_id", "expires_at")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping sessions table...")
		return mghelper.DropTables(ctx, db, &store.SessionDao{})
	})
}
