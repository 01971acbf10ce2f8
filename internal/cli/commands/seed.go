package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/new-arrivals-chi/arrivals/internal/cli/output"
	"github.com/new-arrivals-chi/arrivals/internal/directory"
)

// SeedOutput is the JSON result of the seed command.
type SeedOutput struct {
	File      string `json:"file"`
	Resources int    `json:"resources"`
}

// NewSeedCommand creates the seed command.
func NewSeedCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed <file>",
		Short: "Load resources from a YAML seed file",
		Long: `Load organization locations from a YAML seed file into the directory.

Resources with an id replace the stored resource of that id; resources
without one are added. Status defaults to ACTIVE.`,
		Example: `  # Load resources
  arrivals seed resources.yaml

  # Report as JSON
  arrivals seed resources.yaml --format json`,
		Args: cobra.ExactArgs(1),
		RunE: runSeed,
	}

	cmd.Flags().String("format", "table", "Output format (table|json)")

	return cmd
}

func runSeed(cmd *cobra.Command, args []string) error {
	cmdCtx, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	r := cmdCtx.Renderer

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open seed file: %w", err)
	}
	defer func() { _ = f.Close() }()

	resources, err := directory.LoadSeed(f)
	if err != nil {
		return err
	}

	store, err := cmdCtx.OpenStore(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	n, err := directory.Seed(cmd.Context(), store, resources)
	if err != nil {
		return fmt.Errorf("seeded %d of %d resources: %w", n, len(resources), err)
	}
	cmdCtx.Logger.Info("seeded directory", "file", args[0], "resources", n)

	if r.Mode() == output.ModeJSON {
		return r.JSON(SeedOutput{File: args[0], Resources: n})
	}
	r.Success(fmt.Sprintf("loaded %d resources from %s", n, args[0]))
	return nil
}
