package main

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/dhamidi/lpc/format"
	"github.com/dhamidi/lpc/logging"
	"github.com/dhamidi/lpc/lpc/parser"
	"github.com/dhamidi/lpc/project"
)

func newCheckCmd() *cobra.Command {
	var (
		color   string
		context bool
	)

	cmd := &cobra.Command{
		Use:   "check [path...]",
		Short: "Report syntax diagnostics for LPC files",
		Long: `Parse each file (or every source file under each directory) and print
its diagnostics. Exits non-zero when any error was reported.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{"."}
			}
			styles := format.NewStyles(format.IsColorEnabled(color, os.Stdout))
			return runCheck(args, styles, context)
		},
	}

	cmd.Flags().StringVar(&color, "color", "auto", "colorize output (auto, always, never)")
	cmd.Flags().BoolVar(&context, "context", true, "show the offending source line")

	return cmd
}

type checkTarget struct {
	project *project.Project
	path    string
}

func collectTargets(args []string) ([]checkTarget, error) {
	var targets []checkTarget
	for _, arg := range args {
		p, err := projectFor(arg)
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			targets = append(targets, checkTarget{project: p, path: arg})
			continue
		}
		// A directory may sit below the project root; only check files under it.
		sub := *p
		sub.RootDir = arg
		files, err := sub.SourceFiles()
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			targets = append(targets, checkTarget{project: p, path: f})
		}
	}
	sort.SliceStable(targets, func(i, j int) bool { return targets[i].path < targets[j].path })
	return targets, nil
}

func runCheck(args []string, styles *format.Styles, showContext bool) error {
	targets, err := collectTargets(args)
	if err != nil {
		return err
	}

	logger := logging.Default()
	var errorCount, warningCount int

	for _, t := range targets {
		started := time.Now()
		data, err := os.ReadFile(t.path)
		if err != nil {
			return fmt.Errorf("read %s: %w", t.path, err)
		}
		text := string(data)
		sf, err := parseSource(t.project, t.path, text)
		if err != nil {
			return err
		}
		logger.Debug("parsed", "file", t.path, "nodes", sf.NodeCount, "duration", time.Since(started))

		if len(sf.Diagnostics) == 0 {
			continue
		}
		lines := format.NewLineMap(text)
		fmt.Println(styles.FormatFileHeader(t.path, len(sf.Diagnostics)))
		for _, d := range sf.Diagnostics {
			switch d.Category() {
			case parser.CategoryError:
				errorCount++
			case parser.CategoryWarning:
				warningCount++
			}
			fmt.Print(styles.FormatDiagnostic(t.path, lines, d, showContext))
		}
		fmt.Println()
	}

	fmt.Println(styles.FormatSummary(len(targets), errorCount, warningCount))
	if errorCount > 0 {
		return fmt.Errorf("found %d errors", errorCount)
	}
	return nil
}
