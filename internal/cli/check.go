package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yunchaoli/cablerig/pkg/rig"
)

// checkCommand creates the check command for validating a configuration.
func (c *CLI) checkCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check [config.toml]",
		Short: "Validate a configuration and print derived rig values",
		Long: `Validate a configuration file and print the values derived from it.

The derived values show how the configuration resolves before any geometry
is built: the chosen layout, link pitch, link count per cable and the joint
drive limits.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fc, err := loadFileConfig(args[0])
			if err != nil {
				return err
			}
			return runCheck(fc)
		},
	}
}

// runCheck validates the configuration and prints derived values.
func runCheck(fc *fileConfig) error {
	cfg := fc.Rig
	stage := fc.Stage

	if err := stage.ValidateAndSetDefaults(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	builder, err := rig.NewBuilder(&cfg, stage)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	layout := builder.Layout()
	linksPerCable := cfg.NumLinks()

	fmt.Println(StyleTitle.Render("Configuration OK"))
	printKeyValue("layout", string(layout.Kind))
	printKeyValue("assemblies", fmt.Sprintf("%d", cfg.NumAssemblies))
	printKeyValue("cable length", fmt.Sprintf("%.3f m", cfg.AssemblyLength))
	printKeyValue("link pitch", fmt.Sprintf("%.4f m", cfg.LinkPitch()))
	printKeyValue("links per cable", fmt.Sprintf("%d", linksPerCable))
	printKeyValue("total links", fmt.Sprintf("%d", linksPerCable*cfg.NumAssemblies))
	printKeyValue("payload height", fmt.Sprintf("%.4f m", cfg.PayloadHeight()))
	printKeyValue("limit stiffness", fmt.Sprintf("%.0f", cfg.LimitStiffness()))
	printKeyValue("max drive force", fmt.Sprintf("%.1f N", cfg.MaxDriveForce()))
	if !layout.IsRadial() {
		printKeyValue("table height", fmt.Sprintf("%.2f", builder.TableHeight()))
	}
	printKeyValue("up axis", string(stage.UpAxis))
	printKeyValue("scale factor", fmt.Sprintf("%.4f", stage.ScaleFactor()))

	return nil
}
