package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conneroisu/templex/internal/version"
)

var (
	versionFormat   = newOutputFormat("text", "text", "json", "yaml")
	versionShort    bool
	versionDetailed bool
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long: `Display version information for templex.

Examples:
  templex version              # Version, commit and platform
  templex version --short      # Version only
  templex version --detailed   # Every build field
  templex version -f json      # Machine-readable`,
	Args: cobra.NoArgs,
	RunE: runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)

	versionCmd.Flags().VarP(versionFormat, "format", "f", versionFormat.usage("Output"))
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Show short version only")
	versionCmd.Flags().BoolVar(&versionDetailed, "detailed", false, "Show detailed version information")
}

func runVersion(cmd *cobra.Command, args []string) error {
	info := version.Get()
	out := cmd.OutOrStdout()

	switch {
	case versionFormat.String() != "text":
		return encode(out, versionFormat.String(), info)
	case versionShort:
		fmt.Fprintln(out, info.Short())
	case versionDetailed:
		fmt.Fprintln(out, info.Detailed())
	default:
		fmt.Fprintf(out, "templex %s\n", info.Short())
		fmt.Fprintf(out, "Go: %s\n", info.GoVersion)
		fmt.Fprintf(out, "Platform: %s\n", info.Platform)
	}
	return nil
}
