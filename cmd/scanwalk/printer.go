package main

import (
	"bufio"
	"fmt"
	"io"

	"github.com/joe/scanwalk/internal/walkengine"
	"github.com/joe/scanwalk/pkg/scanwalk"
)

// printer writes visited entries to w, one per line.
type printer struct {
	w    *bufio.Writer
	long bool
	err  error
}

func newPrinter(w io.Writer, long bool) *printer {
	return &printer{w: bufio.NewWriter(w), long: long}
}

// Emit implements walkengine.EventEmitter.
func (p *printer) Emit(event walkengine.Event) {
	visited, ok := event.(walkengine.EntryVisited)
	if !ok || p.err != nil {
		return
	}

	if p.long {
		_, p.err = fmt.Fprintf(p.w, "%c %10d %12d %s\n",
			typeLetter(visited.Type), visited.Inode, visited.Size, visited.Path)
	} else {
		_, p.err = fmt.Fprintln(p.w, visited.Path)
	}
}

// Flush writes out buffered lines and reports the first write error.
func (p *printer) Flush() error {
	if p.err != nil {
		return p.err
	}

	return p.w.Flush()
}

// typeLetter follows find -printf %y.
func typeLetter(kind scanwalk.TypeHint) rune {
	switch kind {
	case scanwalk.TypeDirectory:
		return 'd'
	case scanwalk.TypeRegular:
		return 'f'
	case scanwalk.TypeSymlink:
		return 'l'
	case scanwalk.TypeSocket:
		return 's'
	case scanwalk.TypeFIFO:
		return 'p'
	case scanwalk.TypeBlockDevice:
		return 'b'
	case scanwalk.TypeCharDevice:
		return 'c'
	case scanwalk.TypeUnknown:
		return '?'
	default:
		return '?'
	}
}
