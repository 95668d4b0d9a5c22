package cpu

const (
	MEMORY_SIZE = 256 // Bytes of addressable memory.
)

// Memory is the LS-8 main memory. Addresses are 8 bits wide, so every
// address is in range.
type Memory [MEMORY_SIZE]uint8

// Read returns the byte at addr.
func (mem *Memory) Read(addr uint8) uint8 {
	return mem[addr]
}

// Write stores value at addr.
func (mem *Memory) Write(addr uint8, value uint8) {
	mem[addr] = value
}

// Load copies data into memory starting at address 0. Bytes past the end
// of data are left untouched.
func (mem *Memory) Load(data []uint8) (err error) {
	if len(data) > MEMORY_SIZE {
		err = ErrProgramSize
		return
	}

	copy(mem[:], data)

	return
}

// Reset zeros all of memory.
func (mem *Memory) Reset() {
	clear(mem[:])
}
