// Package database opens the Postgres connection the ledger persists to.
package database

import (
	"github.com/amirasaad/custodia/infra/repository"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Connect opens the connection and migrates the ledger schema.
func Connect(url string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(url), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(
		&repository.User{},
		&repository.Account{},
		&repository.Transaction{},
	); err != nil {
		return nil, err
	}
	return db, nil
}
