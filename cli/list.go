package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ardanlabs/fptrgen/classifier"
	"github.com/ardanlabs/fptrgen/parser"
)

func newListCmd(flags *globalFlags) *cobra.Command {
	var showTypes bool

	cmd := &cobra.Command{
		Use:   "list <preprocessed_file>",
		Short: "List the selected functions and, optionally, the matching types",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := flags.logger(cmd)

			cfg, err := flags.config()
			if err != nil {
				return err
			}

			header, err := parser.ParseFile(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("parsing %s: %w", args[0], err)
			}

			opts := cfg.ClassifierOptions()
			opts.Logger = log
			res, err := classifier.New(opts).Classify(header.Declarations)
			if err != nil {
				return fmt.Errorf("classifying: %w", err)
			}

			w := cmd.OutOrStdout()
			for _, e := range res.Entries {
				fmt.Fprintf(w, "%-32s %-40s %d:%d\n", e.Field(), e.OriginalSymbol, e.Decl.Pos.Line, e.Decl.Pos.Column)
			}

			if showTypes {
				printTypes(w, "struct", res.Structs)
				printTypes(w, "typedef", res.Typedefs)
				printTypes(w, "enum", res.Enums)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&showTypes, "types", false, "also list structs, typedefs and enums matching the type prefixes")

	return cmd
}

func printTypes(w io.Writer, label string, decls []parser.Declaration) {
	for _, d := range decls {
		suffix := ""
		if d.IsOpaque {
			suffix = " (opaque)"
		}
		fmt.Fprintf(w, "%-8s %s%s\n", label, d.Name, suffix)
	}
}
