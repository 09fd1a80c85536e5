package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conneroisu/templex/internal/config"
)

var (
	configShowFormat = newOutputFormat("yaml", "yaml", "json")
	configInitOutput string
	configInitForce  bool
	configInitQuick  bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage templex configuration",
	Long: `Manage templex configuration files and settings.

Examples:
  templex config show               # Print the effective configuration
  templex config init               # Create .templex.yml interactively
  templex config init --defaults    # Create .templex.yml with defaults
  templex config validate           # Check the configuration`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE:  runConfigShow,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a configuration file",
	Long: `Create a configuration file by answering a few questions. Empty
answers keep the defaults. An existing file is only replaced with --force.`,
	RunE: runConfigInit,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration",
	RunE:  runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd, configInitCmd, configValidateCmd)

	configShowCmd.Flags().VarP(configShowFormat, "output", "o", configShowFormat.usage("Output"))

	configInitCmd.Flags().StringVar(&configInitOutput, "output", config.FileName, "File to write")
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "Overwrite an existing file")
	configInitCmd.Flags().BoolVar(&configInitQuick, "defaults", false, "Write the defaults without asking")
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if configShowFormat.String() == "json" {
		return encode(cmd.OutOrStdout(), "json", cfg)
	}
	data, err := config.Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if !configInitQuick {
		var err error
		cfg, err = config.NewConfigWizard(cmd.InOrStdin(), cmd.OutOrStdout()).Run()
		if err != nil {
			return err
		}
	}

	if err := config.WriteConfigFile(cfg, configInitOutput, configInitForce); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to %s\n", configInitOutput)
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	result := config.ValidateWithDetails(cfg)
	if result.HasWarnings() {
		fmt.Fprint(cmd.OutOrStdout(), result.String())
	}
	okLabel.Fprint(cmd.OutOrStdout(), "ok ")
	fmt.Fprintln(cmd.OutOrStdout(), "configuration is valid")
	return nil
}
