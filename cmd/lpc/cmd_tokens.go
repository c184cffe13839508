package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dhamidi/lpc/format"
	"github.com/dhamidi/lpc/lpc/scanner"
)

func newTokensCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tokens <file>",
		Short: "Dump the token stream of an LPC file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			text := string(data)
			lines := format.NewLineMap(text)

			for _, tok := range scanner.Tokens(text) {
				pos := lines.Position(tok.Start)
				fmt.Printf("%d:%d\t%s", pos.Line, pos.Column, tok.Kind)
				if tok.Value != "" {
					fmt.Printf("\t%s", strconv.Quote(tok.Value))
				}
				fmt.Println()
			}
			return nil
		},
	}
}
