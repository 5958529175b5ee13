package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtendedInstructions(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name  string
		ir    uint16
		r0    uint16
		r1    uint16
		r2    uint16
		want0 uint16
		want1 uint16
		cc    CC
	}){
		{"mul", 0070002, 2, 0, 3, 0, 6, CC{}},
		{"mul-negative", 0070002, 0177777, 0, 2, 0177777, 0177776, CC{N: true}},
		{"mul-carry", 0070002, 0100, 0, 01000, 0, 0100000, CC{C: true}},
		{"div", 0071002, 0, 7, 2, 3, 1, CC{}},
		{"div-negative", 0071002, 0, 7, 0177776, 0177775, 1, CC{N: true}},
		{"div-zero", 0071002, 0, 7, 0, 0, 7, CC{Z: true, V: true, C: true}},
		{"div-overflow", 0071002, 1, 0, 1, 1, 0, CC{V: true}},
		{"div-minimum", 0071002, 0100000, 0, 0177777, 0100000, 0, CC{V: true}},
		{"ash-left", 0072002, 1, 0, 3, 010, 0, CC{}},
		{"ash-right", 0072002, 0100000, 0, 077, 0140000, 0, CC{N: true}},
		{"ash-overflow", 0072002, 040000, 0, 1, 0100000, 0, CC{N: true, V: true}},
		{"ash-right-carry", 0072002, 3, 0, 076, 0, 0, CC{Z: true, C: true}},
		{"ashc-left", 0073002, 0, 0100000, 1, 1, 0, CC{}},
		{"ashc-right", 0073002, 0, 3, 077, 0, 1, CC{C: true}},
		{"ashc-sign", 0073002, 0100000, 0, 040, 0177777, 0177777, CC{N: true, C: true}},
	}

	for _, entry := range table {
		cpu, mem, _ := newTestCpu(t, MODEL_1170)
		loadWords(mem, 001000, entry.ir)
		cpu.R[0] = entry.r0
		cpu.R[1] = entry.r1
		cpu.R[2] = entry.r2
		cpu.R[REG_PC] = 001000
		assert.NoError(cpu.Step(), entry.name)
		assert.Equal(entry.want0, cpu.R[0], entry.name)
		assert.Equal(entry.want1, cpu.R[1], entry.name)
		assert.Equal(entry.cc, cpu.CC(), entry.name)
	}
}

func TestExtendedMissing(t *testing.T) {
	assert := assert.New(t)

	cpu, mem, _ := newTestCpu(t, MODEL_1104)
	loadWords(mem, 001000, 0070002)
	cpu.R[REG_PC] = 001000
	assert.NoError(cpu.Step())
	assert.True(cpu.trapReq.Has(TRAP_ILL))
}
