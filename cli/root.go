package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ardanlabs/fptrgen/config"
	"github.com/ardanlabs/fptrgen/logging"
)

var version = "dev"

type globalFlags struct {
	configPath string
	logLevel   string
	logPretty  bool
}

// NewRootCmd builds the command tree. Commands share the flags through a
// pointer so tests can build independent trees.
func NewRootCmd() *cobra.Command {
	var flags globalFlags

	cmd := &cobra.Command{
		Use:   "fptrgen",
		Short: "Generate function-pointer binding tables from preprocessed C headers",
		Long: `fptrgen reads a preprocessed C translation unit, selects the functions
matching the configured prefix groups and prints a struct of function
pointers together with a static initializer table binding each field
to its symbol.

Preprocess the header first, for example:
  clang -P -E -DCIMGUI_DEFINE_ENUMS_AND_STRUCTS cimgui.h > cimgui.i`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "YAML configuration file (default: built-in cimgui config)")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().BoolVar(&flags.logPretty, "log-pretty", true, "human-readable log output")

	cmd.AddCommand(newGenerateCmd(&flags))
	cmd.AddCommand(newListCmd(&flags))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("fptrgen version %s\n", version)
		},
	}
}

func (f *globalFlags) logger(cmd *cobra.Command) zerolog.Logger {
	cfg := logging.DefaultConfig()
	cfg.Level = f.logLevel
	cfg.Pretty = f.logPretty
	cfg.Output = cmd.ErrOrStderr()

	return logging.New(cfg)
}

func (f *globalFlags) config() (*config.Config, error) {
	return config.Load(f.configPath)
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}
