package utils

import (
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
)

func NewTable() table.Writer {
	return NewTableTo(os.Stdout)
}

// NewTableTo is NewTable rendering to w, for when stdout carries records.
func NewTableTo(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	return t
}
