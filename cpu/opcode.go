package cpu

import (
	"fmt"
	"strings"
)

// CodeFormat is an instruction operand layout.
type CodeFormat int

const (
	FORMAT_NONE   = CodeFormat(iota) // No operands.
	FORMAT_DD                        // Destination.
	FORMAT_SSDD                      // Source, destination.
	FORMAT_R                         // Register, low three bits.
	FORMAT_RDD                       // Register, destination.
	FORMAT_DDR                       // Source, register.
	FORMAT_BRANCH                    // Signed word offset.
	FORMAT_SOB                       // Register, unsigned word offset.
	FORMAT_N3                        // Three bit number.
	FORMAT_N6                        // Six bit number.
	FORMAT_N8                        // Eight bit number.
	FORMAT_CC                        // Condition code set or clear.
)

type opcode struct {
	name   string
	value  uint16
	mask   uint16
	format CodeFormat
}

var _opcodes = []opcode{
	{"HALT", 0000000, 0177777, FORMAT_NONE},
	{"WAIT", 0000001, 0177777, FORMAT_NONE},
	{"RTI", 0000002, 0177777, FORMAT_NONE},
	{"BPT", 0000003, 0177777, FORMAT_NONE},
	{"IOT", 0000004, 0177777, FORMAT_NONE},
	{"RESET", 0000005, 0177777, FORMAT_NONE},
	{"RTT", 0000006, 0177777, FORMAT_NONE},
	{"MFPT", 0000007, 0177777, FORMAT_NONE},
	{"JMP", 0000100, 0177700, FORMAT_DD},
	{"RTS", 0000200, 0177770, FORMAT_R},
	{"SPL", 0000230, 0177770, FORMAT_N3},
	{"NOP", 0000240, 0177777, FORMAT_NONE},
	{"CC", 0000240, 0177740, FORMAT_CC},
	{"SWAB", 0000300, 0177700, FORMAT_DD},
	{"BR", 0000400, 0177400, FORMAT_BRANCH},
	{"BNE", 0001000, 0177400, FORMAT_BRANCH},
	{"BEQ", 0001400, 0177400, FORMAT_BRANCH},
	{"BGE", 0002000, 0177400, FORMAT_BRANCH},
	{"BLT", 0002400, 0177400, FORMAT_BRANCH},
	{"BGT", 0003000, 0177400, FORMAT_BRANCH},
	{"BLE", 0003400, 0177400, FORMAT_BRANCH},
	{"JSR", 0004000, 0177000, FORMAT_RDD},
	{"CLR", 0005000, 0177700, FORMAT_DD},
	{"COM", 0005100, 0177700, FORMAT_DD},
	{"INC", 0005200, 0177700, FORMAT_DD},
	{"DEC", 0005300, 0177700, FORMAT_DD},
	{"NEG", 0005400, 0177700, FORMAT_DD},
	{"ADC", 0005500, 0177700, FORMAT_DD},
	{"SBC", 0005600, 0177700, FORMAT_DD},
	{"TST", 0005700, 0177700, FORMAT_DD},
	{"ROR", 0006000, 0177700, FORMAT_DD},
	{"ROL", 0006100, 0177700, FORMAT_DD},
	{"ASR", 0006200, 0177700, FORMAT_DD},
	{"ASL", 0006300, 0177700, FORMAT_DD},
	{"MARK", 0006400, 0177700, FORMAT_N6},
	{"MFPI", 0006500, 0177700, FORMAT_DD},
	{"MTPI", 0006600, 0177700, FORMAT_DD},
	{"SXT", 0006700, 0177700, FORMAT_DD},
	{"CSM", 0007000, 0177700, FORMAT_DD},
	{"TSTSET", 0007200, 0177700, FORMAT_DD},
	{"WRTLCK", 0007300, 0177700, FORMAT_DD},
	{"MOV", 0010000, 0170000, FORMAT_SSDD},
	{"CMP", 0020000, 0170000, FORMAT_SSDD},
	{"BIT", 0030000, 0170000, FORMAT_SSDD},
	{"BIC", 0040000, 0170000, FORMAT_SSDD},
	{"BIS", 0050000, 0170000, FORMAT_SSDD},
	{"ADD", 0060000, 0170000, FORMAT_SSDD},
	{"MUL", 0070000, 0177000, FORMAT_DDR},
	{"DIV", 0071000, 0177000, FORMAT_DDR},
	{"ASH", 0072000, 0177000, FORMAT_DDR},
	{"ASHC", 0073000, 0177000, FORMAT_DDR},
	{"XOR", 0074000, 0177000, FORMAT_RDD},
	{"FADD", 0075000, 0177770, FORMAT_R},
	{"FSUB", 0075010, 0177770, FORMAT_R},
	{"FMUL", 0075020, 0177770, FORMAT_R},
	{"FDIV", 0075030, 0177770, FORMAT_R},
	{"SOB", 0077000, 0177000, FORMAT_SOB},
	{"BPL", 0100000, 0177400, FORMAT_BRANCH},
	{"BMI", 0100400, 0177400, FORMAT_BRANCH},
	{"BHI", 0101000, 0177400, FORMAT_BRANCH},
	{"BLOS", 0101400, 0177400, FORMAT_BRANCH},
	{"BVC", 0102000, 0177400, FORMAT_BRANCH},
	{"BVS", 0102400, 0177400, FORMAT_BRANCH},
	{"BCC", 0103000, 0177400, FORMAT_BRANCH},
	{"BCS", 0103400, 0177400, FORMAT_BRANCH},
	{"EMT", 0104000, 0177400, FORMAT_N8},
	{"TRAP", 0104400, 0177400, FORMAT_N8},
	{"CLRB", 0105000, 0177700, FORMAT_DD},
	{"COMB", 0105100, 0177700, FORMAT_DD},
	{"INCB", 0105200, 0177700, FORMAT_DD},
	{"DECB", 0105300, 0177700, FORMAT_DD},
	{"NEGB", 0105400, 0177700, FORMAT_DD},
	{"ADCB", 0105500, 0177700, FORMAT_DD},
	{"SBCB", 0105600, 0177700, FORMAT_DD},
	{"TSTB", 0105700, 0177700, FORMAT_DD},
	{"RORB", 0106000, 0177700, FORMAT_DD},
	{"ROLB", 0106100, 0177700, FORMAT_DD},
	{"ASRB", 0106200, 0177700, FORMAT_DD},
	{"ASLB", 0106300, 0177700, FORMAT_DD},
	{"MTPS", 0106400, 0177700, FORMAT_DD},
	{"MFPD", 0106500, 0177700, FORMAT_DD},
	{"MTPD", 0106600, 0177700, FORMAT_DD},
	{"MFPS", 0106700, 0177700, FORMAT_DD},
	{"MOVB", 0110000, 0170000, FORMAT_SSDD},
	{"CMPB", 0120000, 0170000, FORMAT_SSDD},
	{"BITB", 0130000, 0170000, FORMAT_SSDD},
	{"BICB", 0140000, 0170000, FORMAT_SSDD},
	{"BISB", 0150000, 0170000, FORMAT_SSDD},
	{"SUB", 0160000, 0170000, FORMAT_SSDD},
}

var _register_text = [8]string{"R0", "R1", "R2", "R3", "R4", "R5", "SP", "PC"}

// Code is an instruction word, and the immediate words that follow it.
type Code struct {
	Word       uint16
	Immediates []uint16
}

// lookup finds the opcode table entry of the word.
func (code Code) lookup() (op opcode, ok bool) {
	for _, op = range _opcodes {
		if (code.Word & op.mask) == op.value {
			ok = true
			return
		}
	}
	return
}

// Name returns the mnemonic of the instruction, or the empty string if
// the word is not an instruction of the basic set.
func (code Code) Name() string {
	op, ok := code.lookup()
	if !ok {
		return ""
	}
	return op.name
}

// specs returns the operand specifiers of the word that may use
// immediate words, in fetch order.
func (code Code) specs() (specs []int) {
	op, ok := code.lookup()
	if !ok {
		return
	}
	switch op.format {
	case FORMAT_DD, FORMAT_RDD, FORMAT_DDR:
		specs = []int{int(code.Word) & 077}
	case FORMAT_SSDD:
		specs = []int{int(code.Word>>6) & 077, int(code.Word) & 077}
	}
	return
}

func needsImmediate(spec int) bool {
	mode := spec >> 3
	return mode >= 6 || ((mode == 2 || mode == 3) && (spec&07) == REG_PC)
}

// ImmediateNeed returns the number of immediate words the instruction uses.
func (code Code) ImmediateNeed() (count int) {
	for _, spec := range code.specs() {
		if needsImmediate(spec) {
			count++
		}
	}
	return
}

// operandText formats an operand specifier. Immediates are consumed
// from imms as used; a missing immediate is shown as '?'.
func operandText(spec int, imms *[]uint16) string {
	reg := _register_text[spec&07]
	next := func() string {
		if len(*imms) == 0 {
			return "?"
		}
		value := (*imms)[0]
		*imms = (*imms)[1:]
		return fmt.Sprintf("%o", value)
	}

	pc := (spec & 07) == REG_PC
	switch spec >> 3 {
	case 0:
		return reg
	case 1:
		return "(" + reg + ")"
	case 2:
		if pc {
			return "#" + next()
		}
		return "(" + reg + ")+"
	case 3:
		if pc {
			return "@#" + next()
		}
		return "@(" + reg + ")+"
	case 4:
		return "-(" + reg + ")"
	case 5:
		return "@-(" + reg + ")"
	case 6:
		return next() + "(" + reg + ")"
	default:
		return "@" + next() + "(" + reg + ")"
	}
}

// String disassembles the instruction in MACRO-11 syntax. Branch
// offsets are shown relative to the updated PC, as .+n.
func (code Code) String() (out string) {
	op, ok := code.lookup()
	if !ok {
		return fmt.Sprintf(".WORD %06o", code.Word)
	}

	imms := code.Immediates
	word := code.Word
	switch op.format {
	case FORMAT_NONE:
		out = op.name
	case FORMAT_DD:
		out = op.name + " " + operandText(int(word)&077, &imms)
	case FORMAT_SSDD:
		src := operandText(int(word>>6)&077, &imms)
		out = op.name + " " + src + "," + operandText(int(word)&077, &imms)
	case FORMAT_R:
		out = op.name + " " + _register_text[word&07]
	case FORMAT_RDD:
		out = op.name + " " + _register_text[(word>>6)&07] + "," + operandText(int(word)&077, &imms)
	case FORMAT_DDR:
		out = op.name + " " + operandText(int(word)&077, &imms) + "," + _register_text[(word>>6)&07]
	case FORMAT_BRANCH:
		offset := int(int8(word))*2 + 2
		out = fmt.Sprintf("%v .%+o", op.name, offset)
	case FORMAT_SOB:
		offset := 2 - int(word&077)*2
		out = fmt.Sprintf("%v %v,.%+o", op.name, _register_text[(word>>6)&07], offset)
	case FORMAT_N3:
		out = fmt.Sprintf("%v %o", op.name, word&07)
	case FORMAT_N6:
		out = fmt.Sprintf("%v %o", op.name, word&077)
	case FORMAT_N8:
		out = fmt.Sprintf("%v %o", op.name, word&0377)
	case FORMAT_CC:
		var names []string
		prefix := "CL"
		if (word & 020) != 0 {
			prefix = "SE"
		}
		for n, letter := range "CVZN" {
			if (word & (1 << n)) != 0 {
				names = append(names, prefix+string(letter))
			}
		}
		if len(names) == 4 {
			names = []string{prefix[:1] + "CC"}
		}
		out = strings.Join(names, "!")
	}

	return
}

// Disassemble returns the MACRO-11 text of a single instruction word.
func Disassemble(ir uint16) string {
	return Code{Word: ir}.String()
}
