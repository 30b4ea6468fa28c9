package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/usestring/critpath/internal/report"
	"github.com/usestring/critpath/pkg/types"
)

func kindNames() string {
	var names []string
	for _, k := range report.Kinds() {
		names = append(names, string(k))
	}
	return strings.Join(names, ", ")
}

func newSchemaCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "schema <kind>",
		Short:     "Print the JSON Schema of an export kind",
		Long:      "Schema prints the JSON Schema of one export kind: " + kindNames() + ".",
		Args:      cobra.ExactArgs(1),
		ValidArgs: strings.Split(kindNames(), ", "),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := report.ParseKind(args[0])
			if err != nil {
				return err
			}
			s, err := report.Schema(kind)
			if err != nil {
				return err
			}
			data, err := types.MarshalIndent(s, "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}

func newValidateCmd(a *app) *cobra.Command {
	var kindFlag string

	cmd := &cobra.Command{
		Use:   "validate <export.json>...",
		Short: "Validate export files against their schema",
		Long: `Validate checks each export file against its JSON Schema and the rules a
schema cannot express. The kind is inferred from the file name suffix unless
--kind is given.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			invalid := 0
			for _, path := range args {
				hint := kindFlag
				if hint == "" {
					hint = path
				}
				kind, err := report.ParseKind(hint)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				v, err := report.NewValidator(kind)
				if err != nil {
					return err
				}
				data, err := os.ReadFile(path)
				if err != nil {
					return err
				}

				result := v.Validate(data)
				if result.Valid {
					fmt.Fprintf(out, "%s: valid %s\n", path, kind)
					continue
				}
				invalid++
				fmt.Fprintf(out, "%s: invalid %s\n", path, kind)
				for _, msg := range result.Errors {
					fmt.Fprintf(out, "  %s\n", msg)
				}
			}
			if invalid > 0 {
				return fmt.Errorf("%d of %d files invalid", invalid, len(args))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&kindFlag, "kind", "k", "", "export kind: "+kindNames())
	return cmd
}
