package io

import (
	"fmt"
	"io"
)

// Console writes each printed value as a line of decimal text.
type Console struct {
	Output io.Writer // Destination of printed lines.
	Lines  int       // Lines written since the last Rewind.
}

var _ Channel = (*Console)(nil)

// Rewind restarts the line count. Output already written is kept.
func (con *Console) Rewind() {
	con.Lines = 0
}

// Print writes value in decimal, followed by a newline.
func (con *Console) Print(value uint8) (err error) {
	if con.Output == nil {
		err = ErrChannelClosed
		return
	}

	_, err = fmt.Fprintf(con.Output, "%d\n", value)
	if err != nil {
		return
	}

	con.Lines++

	return
}
