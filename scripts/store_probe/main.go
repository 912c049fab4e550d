package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/vitrine-labs/vitrine-mod-api/internal/repository"
	"github.com/vitrine-labs/vitrine-mod-api/internal/service"
	"github.com/vitrine-labs/vitrine-mod-api/pkg/config"
	"github.com/vitrine-labs/vitrine-mod-api/pkg/database"
)

// store_probe inspects the moderation store from the command line: it prints
// the same diagnostic snapshot the API serves, and can optionally apply the
// self-repair pass. Useful on hosts where the API is down precisely because
// the store drifted.
func main() {
	var (
		repair    bool
		grantRole string
		timeout   time.Duration
	)

	flag.BoolVar(&repair, "repair", false, "apply additive self-repair after the snapshot")
	flag.StringVar(&grantRole, "grant-role", "", "database role to re-grant table privileges during repair")
	flag.DurationVar(&timeout, "timeout", 30*time.Second, "overall probe timeout")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if grantRole == "" {
		grantRole = cfg.Diagnostics.GrantRole
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	diagnostics := service.NewDiagnosticService(repository.NewSchemaRepository(db), grantRole, zap.NewNop())

	snapshot, err := diagnostics.Snapshot(ctx)
	if err != nil {
		log.Fatalf("snapshot failed: %v", err)
	}
	printJSON("snapshot", snapshot)

	if !repair {
		if !snapshot.Healthy {
			fmt.Fprintln(os.Stderr, "store is unhealthy; re-run with -repair to fix")
			os.Exit(1)
		}
		return
	}

	report, repairErr := diagnostics.Repair(ctx)
	printJSON("repair", report)
	if repairErr != nil {
		log.Fatalf("repair finished with failures: %v", repairErr)
	}

	after, err := diagnostics.Snapshot(ctx)
	if err != nil {
		log.Fatalf("post-repair snapshot failed: %v", err)
	}
	printJSON("post-repair snapshot", after)
	if !after.Healthy {
		os.Exit(1)
	}
}

func printJSON(label string, v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("failed to encode %s: %v", label, err)
	}
	fmt.Printf("== %s ==\n%s\n", label, data)
}
