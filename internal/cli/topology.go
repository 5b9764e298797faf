package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yunchaoli/cablerig/pkg/pipeline"
	"github.com/yunchaoli/cablerig/pkg/scene"
)

// topologyCommand creates the topology command for rendering a saved batch.
func (c *CLI) topologyCommand() *cobra.Command {
	var (
		formatsStr string
		output     string
		noCache    bool
		detailed   bool
	)

	cmd := &cobra.Command{
		Use:   "topology [batch.json]",
		Short: "Render the joint topology of a saved batch",
		Long: `Render the joint topology of a saved batch as a Graphviz diagram.

The topology command takes a batch.json file (produced by 'build') and
renders the payload, link chains and anchors as a directed graph in DOT
or SVG format. With --detailed, link nodes are annotated with their
canonical positions.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats := parseTopologyFormats(formatsStr)
			if err := pipeline.ValidateFormats(formats); err != nil {
				return err
			}
			opts := pipeline.Options{
				Formats:  formats,
				Detailed: detailed,
			}
			return c.runTopology(cmd.Context(), args[0], opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): dot (default), svg (comma-separated)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "annotate link nodes with positions")

	return cmd
}

// parseTopologyFormats parses the --format flag, defaulting to DOT.
func parseTopologyFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatDOT}
	}
	return parseFormats(s)
}

// runTopology loads the batch and renders its topology.
func (c *CLI) runTopology(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	b, err := scene.ImportJSON(input)
	if err != nil {
		return fmt.Errorf("load batch %s: %w", input, err)
	}

	// Carry the stored build inputs so cache keys stay consistent.
	opts.Config = b.Config
	opts.Stage = b.Stage

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, "Rendering topology...")
	spinner.Start()

	artifacts, cacheHit, err := runner.RenderWithCacheInfo(ctx, b, "", opts)
	if err != nil {
		spinner.StopWithError("Topology render failed")
		return fmt.Errorf("topology: %w", err)
	}
	spinner.Stop()

	printSuccess("Rendered topology for batch %s", b.ID)
	printStats(len(b.Assemblies), b.NumLinks(), b.NumJoints(), cacheHit)

	return writeArtifacts(artifactWriteParams{
		artifacts: artifacts,
		formats:   opts.Formats,
		output:    output,
		cacheHit:  cacheHit,
	})
}
