package compiler

import (
	"os"

	"github.com/aretw0/switchback/pkg/domain"
)

// Load reads and parses a graph description from disk. It is the I/O
// boundary of the engine: read failures surface as ParseError and the rest
// is delegated to the pure Parse function.
func Load(path string) (*domain.TransitionGraph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseError{Msg: "cannot read graph description " + path, Err: err}
	}
	return Parse(data)
}
