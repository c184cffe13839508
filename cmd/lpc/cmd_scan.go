package main

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dhamidi/lpc/logging"
	"github.com/dhamidi/lpc/lpc/parser"
	"github.com/dhamidi/lpc/project"
)

func newScanCmd() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "scan <path>",
		Short: "Parse every LPC file in a directory or zip archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(args[0], timeout)
		},
	}

	cmd.Flags().DurationVarP(&timeout, "timeout", "t", 10*time.Second, "timeout per file")

	return cmd
}

type scanStats struct {
	files       int
	nodes       int
	diagnostics int
	failed      int
	errors      []string
}

func (s *scanStats) add(sf *parser.SourceFile) {
	s.files++
	s.nodes += sf.NodeCount
	s.diagnostics += len(sf.Diagnostics)
	if len(sf.Diagnostics) > 0 {
		s.failed++
	}
}

func runScan(path string, timeout time.Duration) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	p, err := projectFor(path)
	if err != nil {
		return err
	}

	stats := &scanStats{}
	started := time.Now()

	switch {
	case info.IsDir():
		scanDirectory(p, path, timeout, stats)
	case strings.EqualFold(filepath.Ext(path), ".zip"):
		scanZipFile(p, path, timeout, stats)
	case p.IsSource(path):
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		scanSource(p, path, string(data), timeout, stats)
	default:
		return fmt.Errorf("unsupported file type: %s", filepath.Ext(path))
	}

	logging.Default().Debug("scan finished", "path", path, "duration", time.Since(started))

	fmt.Printf("\n=== SCAN COMPLETE ===\n")
	fmt.Printf("Files parsed: %d\n", stats.files)
	fmt.Printf("Nodes: %d\n", stats.nodes)
	fmt.Printf("Files with diagnostics: %d\n", stats.failed)
	fmt.Printf("Diagnostics: %d\n", stats.diagnostics)
	fmt.Printf("Errors: %d\n", len(stats.errors))
	for _, e := range stats.errors {
		fmt.Printf("  - %s\n", e)
	}
	return nil
}

// scanSource parses one file, giving up after timeout.
func scanSource(p *project.Project, name, text string, timeout time.Duration, stats *scanStats) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	done := make(chan struct{})
	var sf *parser.SourceFile
	var parseErr error

	go func() {
		defer close(done)
		sf, parseErr = parseSource(p, name, text)
	}()

	select {
	case <-done:
		if parseErr != nil {
			fmt.Printf("[ERROR] %s: %v\n", name, parseErr)
			stats.errors = append(stats.errors, parseErr.Error())
			return
		}
		stats.add(sf)
		fmt.Printf("[OK] %s (%d nodes, %d diagnostics)\n", name, sf.NodeCount, len(sf.Diagnostics))
	case <-ctx.Done():
		fmt.Printf("[TIMEOUT] %s\n", name)
		stats.errors = append(stats.errors, fmt.Sprintf("timeout parsing %s", name))
	}
}

func scanDirectory(p *project.Project, path string, timeout time.Duration, stats *scanStats) {
	sub := *p
	sub.RootDir = path
	files, err := sub.SourceFiles()
	if err != nil {
		stats.errors = append(stats.errors, err.Error())
	}

	fmt.Printf("Found %d files to scan\n", len(files))

	for i, file := range files {
		fmt.Printf("[%d/%d] ", i+1, len(files))
		data, err := os.ReadFile(file)
		if err != nil {
			fmt.Printf("[ERROR] read %s: %v\n", file, err)
			stats.errors = append(stats.errors, fmt.Sprintf("read %s: %v", file, err))
			continue
		}
		scanSource(p, file, string(data), timeout, stats)
	}
}

func scanZipFile(p *project.Project, path string, timeout time.Duration, stats *scanStats) {
	r, err := zip.OpenReader(path)
	if err != nil {
		stats.errors = append(stats.errors, fmt.Sprintf("open zip: %v", err))
		return
	}
	defer r.Close()

	var entries []*zip.File
	for _, f := range r.File {
		if f.FileInfo().IsDir() || !p.IsSource(f.Name) {
			continue
		}
		entries = append(entries, f)
	}

	fmt.Printf("Found %d files to scan in %s\n", len(entries), path)

	for i, f := range entries {
		fmt.Printf("[%d/%d] ", i+1, len(entries))
		data, err := readZipEntry(f)
		if err != nil {
			fmt.Printf("[ERROR] %v\n", err)
			stats.errors = append(stats.errors, err.Error())
			continue
		}
		scanSource(p, f.Name, data, timeout, stats)
	}
}

func readZipEntry(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", f.Name, err)
	}
	return string(data), nil
}
