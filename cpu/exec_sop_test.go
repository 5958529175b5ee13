package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMark(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name  string
		model Model
		n     uint16
		sp    uint16
		ill   bool
	}){
		{"1170-mark0", MODEL_1170, 0, 000704, false},
		{"1170-mark2", MODEL_1170, 2, 000710, false},
		{"1173-mark2", MODEL_1173, 2, 000710, false},
		{"1120", MODEL_1120, 2, 001000, true},
	}

	for _, entry := range table {
		cpu, mem, _ := newTestCpu(t, entry.model)
		// MARK n; n arguments; saved R5
		loadWords(mem, 000700, 0006400|entry.n)
		for n := uint16(0); n < entry.n; n++ {
			mem.WriteWord(000702+uint32(n)*2, 0111+n)
		}
		mem.WriteWord(000702+uint32(entry.n)*2, 0555)
		cpu.R[5] = 002000
		cpu.R[REG_SP] = 001000
		cpu.R[REG_PC] = 000700

		assert.NoError(cpu.Step(), entry.name)
		assert.Equal(entry.ill, cpu.trapReq.Has(TRAP_ILL), entry.name)
		assert.Equal(entry.sp, cpu.SP(), entry.name)
		if entry.ill {
			assert.Equal(uint16(000702), cpu.PC(), entry.name)
			assert.Equal(uint16(002000), cpu.R[5], entry.name)
			continue
		}
		assert.Equal(uint16(002000), cpu.PC(), entry.name)
		assert.Equal(uint16(0555), cpu.R[5], entry.name)
	}
}

func TestCallSupervisor(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name  string
		model Model
		psw   PSW
		mmr3  uint16
		ill   bool
		saved uint16 // PSW on the supervisor stack
	}){
		{"user", MODEL_1173, PSW(0140017), MMR3_CSM, false, 0140000},
		{"supervisor", MODEL_1173, PSW(0050004), MMR3_CSM, false, 0050000},
		{"kernel", MODEL_1173, PSW(0000017), MMR3_CSM, true, 0},
		{"disabled", MODEL_1173, PSW(0140017), 0, true, 0},
		{"1170", MODEL_1170, PSW(0140017), MMR3_CSM, true, 0},
	}

	for _, entry := range table {
		cpu, mem, _ := newTestCpu(t, entry.model)
		assert.NoError(cpu.DepositRegister("MMR3", entry.mmr3), entry.name)
		// CSM R1
		loadWords(mem, 001000, 0007001)
		mem.WriteWord(uint32(VEC_CSM), 003000)
		cpu.SetPSW(entry.psw)
		mode := cpu.PSW().CM()
		cpu.SetStackPointer(MODE_SUPERVISOR, 0)
		cpu.R[REG_SP] = 002000
		cpu.R[REG_PC] = 001000
		cpu.R[1] = 0123

		assert.NoError(cpu.Step(), entry.name)
		assert.Equal(entry.ill, cpu.trapReq.Has(TRAP_ILL), entry.name)
		if entry.ill {
			assert.Equal(uint16(001002), cpu.PC(), entry.name)
			assert.Equal(mode, cpu.PSW().CM(), entry.name)
			continue
		}

		psw := cpu.PSW()
		assert.Equal(MODE_SUPERVISOR, psw.CM(), entry.name)
		assert.Equal(mode, psw.PM(), entry.name)
		assert.Equal(CC{}, psw.CC(), entry.name)
		assert.Equal(uint16(003000), cpu.PC(), entry.name)
		assert.Equal(uint16(001772), cpu.StackPointer(MODE_SUPERVISOR), entry.name)
		assert.Equal(entry.saved, mem.ReadWord(001776), entry.name)
		assert.Equal(uint16(001002), mem.ReadWord(001774), entry.name)
		assert.Equal(uint16(0123), mem.ReadWord(001772), entry.name)
		if mode == MODE_USER {
			assert.Equal(uint16(002000), cpu.StackPointer(MODE_USER), entry.name)
		}
	}
}
