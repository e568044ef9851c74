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
		log.Println("creating email_rate_limits table...")
		if err := mghelper.CreateSchema(ctx, db, &store.RateLimitDao{}); err != nil {
			return err
		}
		if err := mghelper.CreateModelIndexes(ctx, db, &store.RateLimitDao{}, "email"); err != nil {
			return err
		}
		// One window record per email per window start. Concurrent sends for
		// the same email collapse into a 23505 handled by the limiter.
		return mghelper.CreateModelCompositeUniqueIndex(ctx, db, &store.RateLimitDao{}, "email", "first_attempt_at")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping email_rate_limits table...")
		return mghelper.DropTables(ctx, db, &store.RateLimitDao{})
	})
}
