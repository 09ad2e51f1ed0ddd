package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/hetulpatel/sqlchat/internal/config"
	"github.com/hetulpatel/sqlchat/internal/logging"
	"github.com/hetulpatel/sqlchat/internal/storage/sqlite"
)

func main() {
	cfg := config.Load()
	logging.InitFromEnv()

	path := cfg.DBPath
	if len(os.Args) > 1 {
		path = config.ResolvePath(os.Args[1])
	}

	ctx := context.Background()
	store, err := sqlite.Open(ctx, path)
	if err != nil {
		logging.Fatalf("open sqlite: %v", err)
	}
	defer store.Close()

	tables, err := store.Tables(ctx)
	if err != nil {
		logging.Fatalf("list tables: %v", err)
	}
	fmt.Printf("Database: %s\n", path)
	fmt.Printf("Tables (%d): %s\n\n", len(tables), strings.Join(tables, ", "))
	if len(tables) == 0 {
		return
	}

	info, err := store.TableInfo(ctx, tables)
	if err != nil {
		logging.Fatalf("table info: %v", err)
	}
	fmt.Println(info)
}
