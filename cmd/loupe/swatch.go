package main

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/1broseidon/loupe/internal/pixel"
)

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// writeSwatch prints a truecolor block followed by the RGB components.
func writeSwatch(w io.Writer, c pixel.Pixel) {
	fmt.Fprintf(w, "\x1b[48;2;%d;%d;%dm      \x1b[0m %s rgb(%d, %d, %d)\n",
		c.R(), c.G(), c.B(), c.Hex(), c.R(), c.G(), c.B())
}
