package cli

import (
	"context"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/yunchaoli/cablerig/pkg/pipeline"
	"github.com/yunchaoli/cablerig/pkg/rig"
	"github.com/yunchaoli/cablerig/pkg/spatial"
)

// fileConfig is the on-disk TOML configuration for the build command.
//
//	[rig]
//	num_assemblies = 4
//	assembly_length = 1.0
//	payload_mass = 10.0
//
//	[stage]
//	up_axis = "Z"
//	meters_per_unit = 0.01
type fileConfig struct {
	Rig   rig.Config `toml:"rig"`
	Stage rig.Stage  `toml:"stage"`
}

// loadFileConfig reads and decodes a TOML configuration file.
func loadFileConfig(path string) (*fileConfig, error) {
	var fc fileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return &fc, nil
}

// buildCommand creates the build command for generating a cable rig batch.
func (c *CLI) buildCommand() *cobra.Command {
	var (
		configPath string
		formatsStr string
		output     string
		noCache    bool
		upAxis     string
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build a cable rig batch and write artifacts",
		Long: `Build a cable rig batch from configuration and write artifacts.

Configuration comes from a TOML file (--config) and/or command-line flags;
flags override file values. The resulting batch describes capsule link
chains, joint constraint groups, the payload and the anchor structures.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath != "" {
				fc, err := loadFileConfig(configPath)
				if err != nil {
					return err
				}
				flagCfg := opts.Config
				opts.Config = fc.Rig
				opts.Stage = fc.Stage
				applyConfigOverrides(cmd, &opts.Config, flagCfg)
			}
			if cmd.Flags().Changed("up-axis") {
				opts.Stage.UpAxis = spatial.UpAxis(upAxis)
			}
			opts.Formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.Formats); err != nil {
				return err
			}
			return c.runBuild(cmd.Context(), opts, output, noCache)
		},
	}

	// Common flags
	cmd.Flags().StringVar(&configPath, "config", "", "TOML configuration file")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): json (default), dot, svg (comma-separated)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "rebuild even if a cached batch exists")

	// Rig flags
	cmd.Flags().IntVarP(&opts.Config.NumAssemblies, "num", "n", 0, "number of cable assemblies")
	cmd.Flags().Float64VarP(&opts.Config.AssemblyLength, "length", "l", 0, "cable length in meters")
	cmd.Flags().Float64VarP(&opts.Config.PayloadMass, "mass", "m", 0, "payload mass in kilograms")
	cmd.Flags().Float64Var(&opts.Config.PayloadRadius, "payload-radius", 0, "payload disc radius in meters")
	cmd.Flags().Float64Var(&opts.Config.LoadHeight, "load-height", 0, "payload center height in meters")
	cmd.Flags().Float64Var(&opts.Config.ElevationAngle, "elevation", 0, "radial cable elevation angle in radians")

	// Stage flags
	cmd.Flags().StringVar(&upAxis, "up-axis", "", "stage up axis: Z (default), Y, X")
	cmd.Flags().Float64Var(&opts.Stage.MetersPerUnit, "meters-per-unit", 0, "stage meters per unit")

	// Render flags
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "show link positions in topology output")

	return cmd
}

// applyConfigOverrides copies flag-set rig values over the file configuration.
// Only flags the user actually changed win over the file.
func applyConfigOverrides(cmd *cobra.Command, cfg *rig.Config, flags rig.Config) {
	if cmd.Flags().Changed("num") {
		cfg.NumAssemblies = flags.NumAssemblies
	}
	if cmd.Flags().Changed("length") {
		cfg.AssemblyLength = flags.AssemblyLength
	}
	if cmd.Flags().Changed("mass") {
		cfg.PayloadMass = flags.PayloadMass
	}
	if cmd.Flags().Changed("payload-radius") {
		cfg.PayloadRadius = flags.PayloadRadius
	}
	if cmd.Flags().Changed("load-height") {
		cfg.LoadHeight = flags.LoadHeight
	}
	if cmd.Flags().Changed("elevation") {
		cfg.ElevationAngle = flags.ElevationAngle
	}
}

// runBuild executes the pipeline and writes the requested artifacts.
func (c *CLI) runBuild(ctx context.Context, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, "Building cable rig...")
	spinner.Start()
	p := newProgress(c.Logger)

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Build failed")
		return fmt.Errorf("build: %w", err)
	}
	spinner.Stop()
	p.done(fmt.Sprintf("Built %d assemblies", result.Stats.NumAssemblies))

	printSuccess("Built batch %s", result.Batch.ID)
	printStats(result.Stats.NumAssemblies, result.Stats.NumLinks, result.Stats.NumJoints, result.CacheInfo.BuildHit)

	if err := writeArtifacts(artifactWriteParams{
		artifacts: result.Artifacts,
		formats:   opts.Formats,
		output:    output,
		cacheHit:  result.CacheInfo.RenderHit,
	}); err != nil {
		return err
	}

	if len(opts.Formats) == 1 && opts.Formats[0] == pipeline.FormatJSON {
		printNextStep("Render topology", "cablerig topology "+basePath(output)+".json")
	}
	return nil
}
