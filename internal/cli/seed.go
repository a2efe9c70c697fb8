package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pulsedigest/pulse/internal/seed"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the demo workspace into the database",
	RunE:  runSeed,
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	stats, err := seed.Seed(db, time.Now())
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "seeded %d projects, %d users, %d messages into %s\n",
		stats.Projects, stats.Users, stats.Messages, db.Path)
	return nil
}
