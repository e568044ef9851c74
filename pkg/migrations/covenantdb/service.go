// Package covenantdb holds all the migrations for the covenant database
package covenantdb

import (
	"github.com/uptrace/bun/migrate"
)

// Migrations is the collection of all migrations for the covenant database
var Migrations = migrate.NewMigrations()
