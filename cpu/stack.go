package cpu

// The stack lives in main memory and grows downward from the stack
// origin. SP (r7) addresses the most recently pushed byte.

// Push decrements SP, then writes value at the new top of stack.
func (cpu *Cpu) Push(value uint8) {
	cpu.Register[REG_SP]--
	cpu.Memory.Write(cpu.Register[REG_SP], value)
}

// Pop reads the top of stack, then increments SP.
func (cpu *Cpu) Pop() (value uint8) {
	value = cpu.Peek()
	cpu.Register[REG_SP]++
	return
}

// Peek returns the top of stack without moving SP.
func (cpu *Cpu) Peek() uint8 {
	return cpu.Memory.Read(cpu.Register[REG_SP])
}

// Depth returns the number of bytes between SP and the stack origin.
func (cpu *Cpu) Depth() int {
	return int(cpu.StackOrigin - cpu.Register[REG_SP])
}
