package format

import (
	"fmt"
	"io"

	"github.com/dhamidi/lpc/lpc/parser"
)

type Encoder interface {
	Encode(sf *parser.SourceFile) error
	MarshalText(sf *parser.SourceFile) ([]byte, error)
}

// Names lists the formats accepted by New.
var Names = []string{"json", "tree", "summary"}

// New returns the encoder registered under name.
func New(name string, w io.Writer) (Encoder, error) {
	switch name {
	case "json":
		return NewASTJSONEncoder(w), nil
	case "tree":
		return NewTreeEncoder(w), nil
	case "summary":
		return NewSummaryEncoder(w), nil
	default:
		return nil, fmt.Errorf("unknown format %q", name)
	}
}

func write(w io.Writer, e Encoder, sf *parser.SourceFile) error {
	text, err := e.MarshalText(sf)
	if err != nil {
		return err
	}
	_, err = w.Write(text)
	return err
}
