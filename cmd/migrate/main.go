// Command migrate applies (or rolls back) the goose migrations under
// migrations/ against the configured database.
//
// Usage:
//
//	migrate up
//	migrate down
//	migrate status
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/heartmarshall/myenglish-backend/internal/config"
)

func main() {
	flag.Parse()
	cmd := flag.Arg(0)
	if cmd == "" {
		cmd = "up"
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("migrate: load config: %v", err)
	}

	db, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		log.Fatalf("migrate: open db: %v", err)
	}
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, os.DirFS("migrations"))
	if err != nil {
		log.Fatalf("migrate: new provider: %v", err)
	}

	ctx := context.Background()

	switch cmd {
	case "up":
		results, err := provider.Up(ctx)
		if err != nil {
			log.Fatalf("migrate: up: %v", err)
		}
		for _, r := range results {
			fmt.Printf("applied %s (%s)\n", r.Source.Path, r.Duration)
		}
	case "down":
		result, err := provider.Down(ctx)
		if err != nil {
			log.Fatalf("migrate: down: %v", err)
		}
		fmt.Printf("rolled back %s (%s)\n", result.Source.Path, result.Duration)
	case "status":
		statuses, err := provider.Status(ctx)
		if err != nil {
			log.Fatalf("migrate: status: %v", err)
		}
		for _, s := range statuses {
			fmt.Printf("%s\tapplied=%v\n", s.Source.Path, s.State == goose.StateApplied)
		}
	default:
		log.Fatalf("migrate: unknown command %q (want up, down, or status)", cmd)
	}
}
