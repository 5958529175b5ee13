package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConditionCodes(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name string
		cc   CC
		want CC
	}){
		{"add-byte", ccAdd(BYTE, 1, 0177, 0200), CC{N: true, V: true}},
		{"add-word", ccAdd(WORD, 0100000, 0100000, 0), CC{Z: true, V: true, C: true}},
		{"sub-byte", ccSub(BYTE, 1, 0200, 0177), CC{V: true}},
		{"sub-borrow", ccSub(WORD, 2, 1, 0177777), CC{N: true, C: true}},
		{"cmp-byte", ccCmp(BYTE, 0200, 1, 0177), CC{V: true}},
		{"cmp-equal", ccCmp(WORD, 0123, 0123, 0), CC{Z: true}},
		{"inc-byte", ccInc(BYTE, 0200, true), CC{N: true, V: true, C: true}},
		{"dec-byte", ccDec(BYTE, 0177, false), CC{V: true}},
		{"neg-zero", ccNeg(BYTE, 0), CC{Z: true}},
		{"neg", ccNeg(WORD, 0177777), CC{N: true, C: true}},
		{"adc", ccAdc(WORD, 0, true), CC{Z: true, C: true}},
		{"adc-clear", ccAdc(WORD, 0, false), CC{Z: true}},
		{"sbc", ccSbc(WORD, 0177777, true), CC{N: true, C: true}},
		{"sbc-overflow", ccSbc(WORD, 077777, true), CC{V: true}},
		{"shift", ccShift(WORD, 0, true), CC{Z: true, V: true, C: true}},
		{"shift-negative", ccShift(BYTE, 0200, true), CC{N: true, C: true}},
		{"logic-byte", ccLogic(BYTE, 0400, true), CC{Z: true, C: true}},
	}

	for _, entry := range table {
		assert.Equal(entry.want, entry.cc, entry.name)
	}
}

func TestWidth(t *testing.T) {
	assert := assert.New(t)

	assert.Equal(uint16(0200), BYTE.Sign())
	assert.Equal(uint16(0100000), WORD.Sign())
	assert.True(BYTE.zero(0177400))
	assert.False(WORD.zero(0177400))
}

func TestCCWord(t *testing.T) {
	assert := assert.New(t)

	for word := range uint16(020) {
		cc := MakeCC(word)
		assert.Equal(word, cc.Word())
	}
	assert.Equal("NzVc", CC{N: true, V: true}.String())
}
