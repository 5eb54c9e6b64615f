package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/uispec/uispec/packages/core/scenario"
)

var listCmd = &cobra.Command{
	Use:   "list <file|directory>",
	Short: "List all scenarios in uispec files",
	Long: `List all scenarios defined in .uispec.yaml files.

Examples:
  uispec list login.uispec.yaml
  uispec list ./scenarios/`,
	Args: cobra.MinimumNArgs(1),
	RunE: listCommand,
}

func listCommand(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args)
	if err != nil {
		return err
	}

	if len(files) == 0 {
		return fmt.Errorf("no .uispec.yaml files found")
	}

	for _, file := range files {
		scenarios, err := scenario.ParseFile(file)
		if err != nil {
			fmt.Fprintf(cmd.OutOrStderr(), "Error parsing %s: %v\n", file, err)
			continue
		}

		fmt.Fprintf(cmd.OutOrStdout(), "\n%s:\n", file)
		for _, sc := range scenarios {
			fmt.Fprintf(cmd.OutOrStdout(), "  - %s (%d steps)\n", sc.Name, len(sc.Steps))
			if len(sc.Tags) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "    tags: %v\n", sc.Tags)
			}
			if sc.Data != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "    data: %s\n", sc.Data)
			}
		}
	}

	return nil
}
