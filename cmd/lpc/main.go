package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	_ "github.com/tliron/commonlog/simple"

	"github.com/dhamidi/lpc/logging"
	"github.com/dhamidi/lpc/lpc/parser"
	"github.com/dhamidi/lpc/project"
)

const version = "0.1.0"

func main() {
	var logLevel string

	rootCmd := &cobra.Command{
		Use:           "lpc",
		Short:         "Parse and check LPC mudlib sources",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if logLevel == "" {
				logLevel = "info"
				if p, err := project.Load(); err == nil {
					logLevel = p.Config.LogLevel
				}
			}
			logging.Configure(logLevel)
		},
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error); defaults to log_level in lpc.yaml")

	rootCmd.AddCommand(newParseCmd())
	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newScanCmd())
	rootCmd.AddCommand(newTokensCmd())
	rootCmd.AddCommand(newLSPCmd())

	if err := rootCmd.Execute(); err != nil {
		logging.Default().Error(err.Error())
		os.Exit(1)
	}
}

// projectFor loads the project that path belongs to.
func projectFor(path string) (*project.Project, error) {
	dir := path
	if info, err := os.Stat(path); err != nil || !info.IsDir() {
		dir = filepath.Dir(path)
	}
	return project.LoadFrom(dir)
}

// parseSource parses text, turning a parser invariant violation into an
// error so one bad file does not take down a batch run.
func parseSource(p *project.Project, path, text string) (sf *parser.SourceFile, err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		var inv *parser.InvariantError
		if e, ok := r.(error); ok && errors.As(e, &inv) {
			err = fmt.Errorf("parse %s: %w", path, inv)
			return
		}
		panic(r)
	}()
	return parser.ParseSourceFile(path, text, p.ParseOptions(path)...), nil
}

func readAndParse(p *project.Project, path string) (*parser.SourceFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return parseSource(p, path, string(data))
}
