// Package cli implements the carepath operator command line: one-shot
// assessments against a local model, specialty lookups and config dumps.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// app carries state shared by all subcommands of one root command.
type app struct {
	v       *viper.Viper
	cfgFile string
	verbose bool
}

// NewRootCmd builds the carepath command tree. Each call returns an
// independent tree with its own viper instance.
func NewRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "carepath",
		Short: "Carepath - symptom triage from the command line",
		Long: `Carepath predicts likely conditions from a free-text symptom description,
grades emergency severity on the five-level ESI scale and routes the top
condition to a medical specialty.

It is not a substitute for professional medical advice.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.initConfig(cmd.ErrOrStderr())
		},
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default: $HOME/.carepath/config.yaml)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "verbose output")
	root.PersistentFlags().String("tables-path", "", "YAML file overriding the built-in keyword tables")
	root.PersistentFlags().String("emergency-number", "108", "emergency number quoted in actions and the disclaimer")

	_ = a.v.BindPFlag("tables-path", root.PersistentFlags().Lookup("tables-path"))
	_ = a.v.BindPFlag("emergency-number", root.PersistentFlags().Lookup("emergency-number"))

	root.AddCommand(
		newAssessCmd(a),
		newSpecialtyCmd(a),
		newConfigCmd(a),
		newModelCmd(a),
		newVersionCmd(),
	)
	return root
}

// Execute runs the root command against os.Args.
func Execute() error {
	return NewRootCmd().Execute()
}

// initConfig reads the config file and CAREPATH_* environment variables.
// Flags set on the command line take precedence over both.
func (a *app) initConfig(stderr io.Writer) error {
	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			a.v.AddConfigPath(filepath.Join(home, ".carepath"))
		}
		a.v.SetConfigType("yaml")
		a.v.SetConfigName("config")
	}

	a.v.SetEnvPrefix("CAREPATH")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	err := a.v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	switch {
	case err == nil:
		if a.verbose {
			fmt.Fprintf(stderr, "Using config file: %s\n", a.v.ConfigFileUsed())
		}
	case errors.As(err, &notFound) && a.cfgFile == "":
	default:
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// bind ties the named flags of the running command to viper keys. Commands
// share key names, so binding happens per invocation rather than at build.
func (a *app) bind(fs *pflag.FlagSet, names ...string) error {
	for _, n := range names {
		if err := a.v.BindPFlag(n, fs.Lookup(n)); err != nil {
			return fmt.Errorf("bind flag %s: %w", n, err)
		}
	}
	return nil
}
