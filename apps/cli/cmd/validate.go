package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/uispec/uispec/packages/core/scenario"
	"github.com/uispec/uispec/packages/core/testdata"
)

var (
	validateDataDir string
	validateSchema  string
)

var validateCmd = &cobra.Command{
	Use:   "validate <file|directory>",
	Short: "Validate uispec files for syntax errors",
	Long: `Validate uispec scenario files without executing them. Data file
references are checked against the data directory.

Examples:
  uispec validate login.uispec.yaml
  uispec validate ./scenarios/ --data-dir ./data`,
	Args: cobra.MinimumNArgs(1),
	RunE: validateCommand,
}

func init() {
	validateCmd.Flags().StringVar(&validateDataDir, "data-dir", getEnvString("UISPEC_DATA_DIR", "data"), "Directory with test data files (env: UISPEC_DATA_DIR)")
	validateCmd.Flags().StringVar(&validateSchema, "schema", "", "JSON schema to validate every data record against")
}

func validateCommand(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args)
	if err != nil {
		return err
	}

	if len(files) == 0 {
		return fmt.Errorf("no .uispec.yaml files found")
	}

	loaderOpts := []testdata.Option{}
	if validateSchema != "" {
		loaderOpts = append(loaderOpts, testdata.WithSchema(validateSchema))
	}
	loader := testdata.NewLoader(validateDataDir, loaderOpts...)

	hasErrors := false
	for _, file := range files {
		scenarios, err := scenario.ParseFile(file)
		if err != nil {
			fmt.Fprintf(cmd.OutOrStderr(), "Error in %s: %v\n", file, err)
			hasErrors = true
			continue
		}

		fileOK := true
		for _, sc := range scenarios {
			if sc.Data == "" {
				continue
			}
			if _, err := loader.LoadTable(sc.Data); err != nil {
				fmt.Fprintf(cmd.OutOrStderr(), "Error in %s: scenario %q: %v\n", file, sc.Name, err)
				hasErrors = true
				fileOK = false
			}
		}

		if fileOK {
			fmt.Fprintf(cmd.OutOrStdout(), "Valid: %s\n", file)
		}
	}

	if hasErrors {
		return fmt.Errorf("validation failed")
	}

	return nil
}
