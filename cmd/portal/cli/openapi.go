package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bpbdbogor/portal/internal/openapi"
)

func newOpenAPICmd() *cobra.Command {
	var (
		baseURL    string
		outputFile string
	)

	cmd := &cobra.Command{
		Use:   "openapi",
		Short: "Generate the OpenAPI specification",
		Long:  `Generate the OpenAPI 3.1 document for the admin auth API, the same one served at /openapi.json.`,
		Example: `  portal openapi                                 # print to stdout
  portal openapi --url https://portal.example.org -o spec.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := json.MarshalIndent(openapi.GenerateAuthSpec(baseURL), "", "  ")
			if err != nil {
				return fmt.Errorf("encode spec: %w", err)
			}
			if outputFile != "" {
				if err := os.WriteFile(outputFile, data, 0644); err != nil {
					return fmt.Errorf("write spec: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", outputFile)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}

	cmd.Flags().StringVar(&baseURL, "url", "http://localhost:8080", "Server URL advertised in the document")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Write spec to file instead of stdout")

	return cmd
}
