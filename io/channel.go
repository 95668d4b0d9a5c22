// Package io provides the I/O channels of the LS-8 emulator. The only
// peripheral is the Console, which receives PRN output.
package io

// Channel defines the interface for output channels attached to the CPU.
type Channel interface {
	// Rewind resets the channel to its initial state.
	Rewind()
	// Print writes a single byte value to the channel.
	Print(value uint8) error
}
