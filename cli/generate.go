package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ardanlabs/fptrgen/classifier"
	"github.com/ardanlabs/fptrgen/config"
	"github.com/ardanlabs/fptrgen/generator"
	"github.com/ardanlabs/fptrgen/parser"
)

func newGenerateCmd(flags *globalFlags) *cobra.Command {
	var (
		structName   string
		instanceName string
	)

	cmd := &cobra.Command{
		Use:   "generate <preprocessed_file> [output_file]",
		Short: "Generate the binding struct and initializer table",
		Long: `Generate the binding struct and its initializer table from a
preprocessed translation unit. Output goes to stdout unless an output
file is given; the file is only replaced once generation succeeded.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := flags.logger(cmd)

			cfg, err := flags.config()
			if err != nil {
				return err
			}
			if structName != "" {
				cfg.StructName = structName
			}
			if instanceName != "" {
				cfg.InstanceName = instanceName
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			out, err := generate(cmd.Context(), args[0], cfg, log)
			if err != nil {
				return err
			}

			if len(args) < 2 || args[1] == "-" {
				_, err := cmd.OutOrStdout().Write(out.Bytes())
				return err
			}

			if err := writeFile(args[1], out.Bytes()); err != nil {
				return err
			}
			log.Info().Str("path", args[1]).Msg("generated")

			return nil
		},
	}

	cmd.Flags().StringVar(&structName, "struct-name", "", "override the binding struct name")
	cmd.Flags().StringVar(&instanceName, "instance-name", "", "override the initializer variable name")

	return cmd
}

// generate runs parse, classify and emit over one translation unit.
func generate(ctx context.Context, path string, cfg *config.Config, log zerolog.Logger) (*generator.Output, error) {
	header, err := parser.ParseFile(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	log.Debug().Int("declarations", len(header.Declarations)).Msg("parsed")

	opts := cfg.ClassifierOptions()
	opts.Logger = log
	res, err := classifier.New(opts).Classify(header.Declarations)
	if err != nil {
		return nil, fmt.Errorf("classifying: %w", err)
	}
	log.Info().
		Int("functions", len(header.Functions())).
		Int("bindings", len(res.Entries)).
		Msg("classified")

	out, err := generator.New(cfg.GeneratorOptions(), res.Entries).Generate()
	if err != nil {
		return nil, fmt.Errorf("generating code: %w", err)
	}

	return out, nil
}

// writeFile replaces path with data through a temporary file in the same
// directory so a failed run leaves the previous output untouched.
func writeFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	return nil
}
