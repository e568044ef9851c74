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
		log.Println("creating reposts table...")
		if err := mghelper.CreateSchema(ctx, db, &store.RepostDao{}); err != nil {
			return err
		}
		// One repost per (user, video, platform).
		return mghelper.CreateModelCompositeUniqueIndex(ctx, db, &store.RepostDao{}, "user_id", "video_id", "platform")
	}, func(ctx context.Context, db *bun.DB) error {
		log.Println("dropping reposts table...")
		return mghelper.DropTables(ctx, db, &store.RepostDao{})
	})
}
