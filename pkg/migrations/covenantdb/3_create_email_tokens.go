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
		log.Println("creating email_tokens table...")
		if err := mghelper.CreateSchema(ctx, db, &store.EmailTokenDao{}); err != nil {
			return err
		}
		return mghelper.CreateModelIndexes(ctx, db, &store.EmailTokenDao{}, "email", "expires_at")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping email_tokens table...")
		return mghelper.DropTables(ctx, db, &store.EmailTokenDao{})
	})
}
