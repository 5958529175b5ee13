package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeString(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		code Code
		text string
	}){
		{Code{Word: 0005000}, "CLR R0"},
		{Code{Word: 0012737, Immediates: []uint16{0123, 0100}}, "MOV #123,@#100"},
		{Code{Word: 0016767, Immediates: []uint16{1, 2}}, "MOV 1(PC),2(PC)"},
		{Code{Word: 0004767}, "JSR PC,?(PC)"},
		{Code{Word: 0000777}, "BR .+0"},
		{Code{Word: 0001376}, "BNE .-2"},
		{Code{Word: 0077105}, "SOB R1,.-10"},
		{Code{Word: 0000240}, "NOP"},
		{Code{Word: 0000257}, "CCC"},
		{Code{Word: 0000277}, "SCC"},
		{Code{Word: 0000261}, "SEC"},
		{Code{Word: 0000243}, "CLC!CLV"},
		{Code{Word: 0000234}, "SPL 4"},
		{Code{Word: 0006404}, "MARK 4"},
		{Code{Word: 0104401}, "TRAP 1"},
		{Code{Word: 0070002}, "MUL R2,R0"},
		{Code{Word: 0074001}, "XOR R0,R1"},
		{Code{Word: 0075012}, "FSUB R2"},
		{Code{Word: 0000207}, "RTS PC"},
		{Code{Word: 0000002}, "RTI"},
		{Code{Word: 0105737, Immediates: []uint16{0177564}}, "TSTB @#177564"},
		{Code{Word: 0013746, Immediates: []uint16{0200}}, "MOV @#200,-(SP)"},
		{Code{Word: 0170000}, ".WORD 170000"},
	}

	for _, entry := range table {
		assert.Equal(entry.text, entry.code.String(), entry.text)
	}
}

func TestCodeImmediateNeed(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		word  uint16
		count int
	}){
		{0005000, 0},
		{0012737, 2},
		{0016767, 2},
		{0004767, 1},
		{0000777, 0},
		{0070027, 1},
		{0062706, 1},
		{0170000, 0},
	}

	for _, entry := range table {
		code := Code{Word: entry.word}
		assert.Equal(entry.count, code.ImmediateNeed(), Disassemble(entry.word))
	}
}

func TestCodeName(t *testing.T) {
	assert := assert.New(t)

	assert.Equal("MOVB", Code{Word: 0110001}.Name())
	assert.Equal("SUB", Code{Word: 0160001}.Name())
	assert.Equal("", Code{Word: 0170000}.Name())
	assert.Equal("CLR R0", Disassemble(0005000))
}
