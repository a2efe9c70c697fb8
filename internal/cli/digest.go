package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pulsedigest/pulse/internal/attribute"
	"github.com/pulsedigest/pulse/internal/digest"
	"github.com/pulsedigest/pulse/internal/engine"
)

var (
	digestUser  string
	digestHours int
)

var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Generate a digest for a user and print it",
	RunE:  runDigest,
}

func init() {
	digestCmd.Flags().StringVar(&digestUser, "user", "", "user to generate the digest for (required)")
	digestCmd.Flags().IntVar(&digestHours, "hours", 0, "window in hours (default from config)")
	digestCmd.MarkFlagRequired("user")
}

func runDigest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	hours := digestHours
	if hours <= 0 {
		hours = cfg.Digest.WindowHours
	}

	db, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	projects, err := db.LoadProjects()
	if err != nil {
		return fmt.Errorf("load projects: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	eng := engine.New(db, attribute.NewResolver(projects), cfg.Digest.MaxItems)
	ranked, records, err := eng.GenerateRankedMessages(ctx, digestUser, hours)
	if err != nil {
		return fmt.Errorf("generate digest: %w", err)
	}
	fmt.Fprintf(os.Stderr, "ranked %d messages, %d phase records updated\n", len(ranked), len(records))

	names := make(map[string]string, len(projects))
	for _, p := range projects {
		names[p.ProjectID] = p.Name
	}

	asm := digest.NewAssembler(newSummaryClient(cfg))
	doc := asm.Assemble(ctx, ranked, digestUser, names, time.Now())

	body, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal digest: %w", err)
	}
	if err := db.SaveDigest(digestUser, doc.GeneratedAt, body); err != nil {
		return fmt.Errorf("save digest: %w", err)
	}

	fmt.Println(string(body))
	return nil
}
