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
		log.Println("creating telegram_connect_tokens table...")
		if err := mghelper.CreateSchema(ctx, db, &store.ConnectTokenDao{}); err != nil {
			return err
		}
		return mghelper.CreateModelIndexes(ctx, db, &store.ConnectTokenDao{}, "user_id")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping telegram_connect_tokens table...")
		return mghelper.DropTables(ctx, db, &store.ConnectTokenDao{})
	})
}
