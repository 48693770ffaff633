// cmd/tools/headline-cli/cmd_validate.go
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"headline-agent/internal/common/validation"
)

var validateFlags struct {
	file string
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a JSON-RPC response envelope against the outbound schema",
	RunE:  runValidate,
}

func init() {
	f := validateCmd.Flags()
	f.StringVar(&validateFlags.file, "file", "-", "Envelope file, or - for stdin")
}

func runValidate(cmd *cobra.Command, _ []string) error {
	var (
		doc []byte
		err error
	)
	if validateFlags.file == "-" {
		doc, err = io.ReadAll(cmd.InOrStdin())
	} else {
		doc, err = os.ReadFile(validateFlags.file)
	}
	if err != nil {
		return fmt.Errorf("read envelope: %w", err)
	}

	result, err := validation.ValidateEnvelopeJSON(doc)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if result.Valid {
		fmt.Fprintln(out, "valid")
		return nil
	}
	for _, msg := range result.GetErrorMessages() {
		fmt.Fprintf(out, "  %s\n", msg)
	}
	return fmt.Errorf("envelope is invalid (%d errors)", len(result.Errors))
}
