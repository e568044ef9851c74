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
		log.Println("creating daily_claims table...")
		if err := mghelper.CreateSchema(ctx, db, &store.DailyClaimDao{}); err != nil {
			return err
		}
		if err := mghelper.CreateModelIndexes(ctx, db, &store.DailyClaimDao{}, "video_expires_at"); err != nil {
			return err
		}
		// One claim per user per calendar day, enforced at the store level so
		// concurrent claim requests cannot race the application check.
		return mghelper.CreateModelCompositeUniqueIndex(ctx, db, &store.DailyClaimDao{}, "user_id", "claim_date")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping daily_claims table...")
		return mghelper.DropTables(ctx, db, &store.DailyClaimDao{})
	})
}
