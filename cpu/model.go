// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"strings"
)

// Model is a PDP-11 processor model.
type Model int

//go:generate go tool stringer -linecomment -type=Model
const (
	MODEL_1103  = Model(0)  // 11/03
	MODEL_1104  = Model(1)  // 11/04
	MODEL_1105  = Model(2)  // 11/05
	MODEL_1120  = Model(3)  // 11/20
	MODEL_1123  = Model(4)  // 11/23
	MODEL_1123P = Model(5)  // 11/23+
	MODEL_1124  = Model(6)  // 11/24
	MODEL_1134  = Model(7)  // 11/34
	MODEL_1140  = Model(8)  // 11/40
	MODEL_1144  = Model(9)  // 11/44
	MODEL_1145  = Model(10) // 11/45
	MODEL_1160  = Model(11) // 11/60
	MODEL_1170  = Model(12) // 11/70
	MODEL_1153  = Model(13) // 11/53
	MODEL_1173  = Model(14) // 11/73
	MODEL_1173B = Model(15) // 11/73B
	MODEL_1183  = Model(16) // 11/83
	MODEL_1184  = Model(17) // 11/84
	MODEL_1193  = Model(18) // 11/93
	MODEL_1194  = Model(19) // 11/94
	MODEL_T11   = Model(20) // T-11
)

// ParseModel finds a model by name, with or without the "11/" prefix.
func ParseModel(name string) (model Model, err error) {
	name = strings.ToUpper(strings.TrimSpace(name))
	for n := range len(Models) {
		model = Model(n)
		known := strings.ToUpper(model.String())
		if name == known || "11/"+name == known || "PDP-"+known == name {
			return
		}
	}

	err = ErrModel
	return
}

// Feature is a set of model capability flags.
type Feature uint32

const (
	FEATURE_SXS       = Feature(1 << iota) // SXT, XOR, SOB
	FEATURE_MARK                           // MARK
	FEATURE_SPL                            // SPL
	FEATURE_MXPY                           // MFPI, MTPI, MFPD, MTPD
	FEATURE_MXPS                           // MFPS, MTPS
	FEATURE_MFPT                           // MFPT
	FEATURE_CSM                            // CSM
	FEATURE_TSWLK                          // TSTSET, WRTLCK
	FEATURE_RTT                            // RTT
	FEATURE_ODD                            // Odd address trap
	FEATURE_HALT4                          // HALT in user mode is a privilege trap
	FEATURE_JREG4                          // JMP/JSR to register is a privilege trap
	FEATURE_EXPT                           // Explicit PSW writes can set T
	FEATURE_STOP_STKA                      // Stop on stack push abort
	FEATURE_STKLF                          // Fixed stack limit
	FEATURE_STKLR                          // Stack limit register
	FEATURE_SID                            // Instruction and data space
	FEATURE_MMTR                           // MMU traps
	FEATURE_SDSD                           // Source register read after destination decode
	FEATURE_PIRQ                           // Program interrupt requests
	FEATURE_CPUERR                         // CPU error register
	FEATURE_JPOSTINC                       // JMP/JSR (R)+ jumps to the incremented R
	FEATURE_SWABV                          // SWAB preserves V
	FEATURE_MED                            // Maintenance instruction 076600
	FEATURE_MMR1PC                         // MMR1 omits PC increments
)

// Option is a set of processor options.
type Option uint32

const (
	OPTION_EIS   = Option(1 << iota) // Extended instruction set
	OPTION_FIS                       // Floating instruction set
	OPTION_FPP                       // Floating point processor
	OPTION_CIS                       // Commercial instruction set
	OPTION_MMU                       // Memory management
	OPTION_UBM                       // Unibus map
	OPTION_22BIT                     // 22-bit physical addressing
)

var _option_names = []struct {
	option Option
	name   string
}{
	{OPTION_EIS, "EIS"},
	{OPTION_FIS, "FIS"},
	{OPTION_FPP, "FPP"},
	{OPTION_CIS, "CIS"},
	{OPTION_MMU, "MMU"},
	{OPTION_UBM, "UBM"},
	{OPTION_22BIT, "22BIT"},
}

// ParseOption returns an option by name.
func ParseOption(name string) (option Option, err error) {
	name = strings.ToUpper(strings.TrimSpace(name))
	for _, entry := range _option_names {
		if entry.name == name {
			option = entry.option
			return
		}
	}

	err = &ErrOption{Name: name}
	return
}

func (opt Option) String() string {
	var names []string
	for _, entry := range _option_names {
		if (opt & entry.option) != 0 {
			names = append(names, entry.name)
		}
	}
	return strings.Join(names, ",")
}

// ModelInfo describes a processor model.
type ModelInfo struct {
	Model     Model
	Features  Feature
	Options   Option // Standard options.
	Allowed   Option // Options that may be enabled.
	MaxMemory uint32 // Physical address space, in bytes.
	MfptCode  uint16 // Value returned by MFPT.
	PswMask   uint16 // Implemented PSW bits.
	ParMask   uint16 // Implemented PAR bits.
	PdrMask   uint16 // Implemented PDR bits.
	Mm0Mask   uint16 // Implemented MMR0 bits.
	Mm3Mask   uint16 // Implemented MMR3 bits.
}

// Has returns true if the model has all the features of feat.
func (mi *ModelInfo) Has(feat Feature) bool {
	return (mi.Features & feat) == feat
}

const (
	memory64K  = uint32(0200000)
	memory256K = uint32(01000000)
	memory4M   = uint32(020000000)
)

const (
	_features_f11 = FEATURE_SXS | FEATURE_MARK | FEATURE_MXPY | FEATURE_MXPS |
		FEATURE_RTT | FEATURE_STKLF | FEATURE_SDSD
	_features_j11 = FEATURE_SXS | FEATURE_MARK | FEATURE_SPL | FEATURE_MXPY |
		FEATURE_MXPS | FEATURE_MFPT | FEATURE_CSM | FEATURE_TSWLK | FEATURE_RTT |
		FEATURE_ODD | FEATURE_HALT4 | FEATURE_STKLF | FEATURE_SID | FEATURE_SDSD |
		FEATURE_PIRQ | FEATURE_CPUERR | FEATURE_MMR1PC
	_features_1145 = FEATURE_SXS | FEATURE_MARK | FEATURE_SPL | FEATURE_MXPY |
		FEATURE_RTT | FEATURE_ODD | FEATURE_HALT4 | FEATURE_STKLR | FEATURE_SID |
		FEATURE_MMTR | FEATURE_PIRQ | FEATURE_CPUERR
	_features_early = FEATURE_ODD | FEATURE_JREG4 | FEATURE_EXPT | FEATURE_STKLF

	_options_qbus = OPTION_EIS | OPTION_FPP | OPTION_MMU | OPTION_22BIT
	_options_j11  = _options_qbus
)

// Models is the model table, indexed by Model.
var Models = [...]ModelInfo{
	MODEL_1103: {
		Features:  FEATURE_SXS | FEATURE_MARK | FEATURE_MXPS | FEATURE_RTT | FEATURE_JREG4 | FEATURE_STOP_STKA,
		Options:   OPTION_EIS,
		Allowed:   OPTION_EIS | OPTION_FIS,
		MaxMemory: memory64K,
		PswMask:   0000377,
	},
	MODEL_1104: {
		Features:  _features_early | FEATURE_RTT | FEATURE_STOP_STKA,
		MaxMemory: memory64K,
		PswMask:   0000377,
	},
	MODEL_1105: {
		Features:  _features_early | FEATURE_JPOSTINC,
		MaxMemory: memory64K,
		PswMask:   0000377,
	},
	MODEL_1120: {
		Features:  _features_early | FEATURE_JPOSTINC | FEATURE_SWABV,
		MaxMemory: memory64K,
		PswMask:   0000377,
	},
	MODEL_1123: {
		Features:  _features_f11 | FEATURE_MFPT,
		Options:   _options_qbus,
		Allowed:   _options_qbus | OPTION_CIS,
		MaxMemory: memory4M,
		MfptCode:  3,
		PswMask:   0170777,
		ParMask:   0177777,
		PdrMask:   0077516,
		Mm0Mask:   0160157,
		Mm3Mask:   0000060,
	},
	MODEL_1123P: {
		Features:  _features_f11 | FEATURE_MFPT,
		Options:   _options_qbus,
		Allowed:   _options_qbus | OPTION_CIS,
		MaxMemory: memory4M,
		MfptCode:  3,
		PswMask:   0170777,
		ParMask:   0177777,
		PdrMask:   0077516,
		Mm0Mask:   0160157,
		Mm3Mask:   0000060,
	},
	MODEL_1124: {
		Features:  _features_f11 | FEATURE_MFPT,
		Options:   _options_qbus | OPTION_UBM,
		Allowed:   _options_qbus | OPTION_UBM | OPTION_CIS,
		MaxMemory: memory4M,
		MfptCode:  3,
		PswMask:   0170777,
		ParMask:   0177777,
		PdrMask:   0077516,
		Mm0Mask:   0160157,
		Mm3Mask:   0000060,
	},
	MODEL_1134: {
		Features:  FEATURE_SXS | FEATURE_MARK | FEATURE_MXPY | FEATURE_MXPS | FEATURE_RTT | FEATURE_ODD | FEATURE_JREG4 | FEATURE_STKLF,
		Options:   OPTION_EIS | OPTION_MMU,
		Allowed:   OPTION_EIS | OPTION_MMU | OPTION_FPP,
		MaxMemory: memory256K,
		PswMask:   0170377,
		ParMask:   0007777,
		PdrMask:   0077516,
		Mm0Mask:   0160557,
	},
	MODEL_1140: {
		Features:  FEATURE_SXS | FEATURE_MARK | FEATURE_MXPY | FEATURE_RTT | FEATURE_ODD | FEATURE_JREG4 | FEATURE_STKLF,
		Options:   OPTION_EIS | OPTION_MMU,
		Allowed:   OPTION_EIS | OPTION_MMU | OPTION_FIS,
		MaxMemory: memory256K,
		PswMask:   0170377,
		ParMask:   0007777,
		PdrMask:   0077516,
		Mm0Mask:   0160557,
	},
	MODEL_1144: {
		Features: FEATURE_SXS | FEATURE_MARK | FEATURE_SPL | FEATURE_MXPY | FEATURE_MFPT |
			FEATURE_CSM | FEATURE_RTT | FEATURE_ODD | FEATURE_HALT4 | FEATURE_STKLF |
			FEATURE_SID | FEATURE_PIRQ | FEATURE_CPUERR,
		Options:   OPTION_EIS | OPTION_FPP | OPTION_MMU | OPTION_UBM | OPTION_22BIT,
		Allowed:   OPTION_EIS | OPTION_FPP | OPTION_MMU | OPTION_UBM | OPTION_22BIT | OPTION_CIS,
		MaxMemory: memory4M,
		MfptCode:  1,
		PswMask:   0170777,
		ParMask:   0177777,
		PdrMask:   0177516,
		Mm0Mask:   0160557,
		Mm3Mask:   0000077,
	},
	MODEL_1145: {
		Features:  _features_1145,
		Options:   OPTION_EIS | OPTION_FPP | OPTION_MMU,
		Allowed:   OPTION_EIS | OPTION_FPP | OPTION_MMU,
		MaxMemory: memory256K,
		PswMask:   0174377,
		ParMask:   0007777,
		PdrMask:   0077717,
		Mm0Mask:   0171777,
		Mm3Mask:   0000007,
	},
	MODEL_1160: {
		Features:  FEATURE_SXS | FEATURE_MARK | FEATURE_MXPY | FEATURE_RTT | FEATURE_ODD | FEATURE_JREG4 | FEATURE_STKLF | FEATURE_MED,
		Options:   OPTION_EIS | OPTION_FPP | OPTION_MMU,
		Allowed:   OPTION_EIS | OPTION_FPP | OPTION_MMU,
		MaxMemory: memory256K,
		PswMask:   0170377,
		ParMask:   0007777,
		PdrMask:   0077516,
		Mm0Mask:   0160557,
	},
	MODEL_1170: {
		Features:  _features_1145,
		Options:   OPTION_EIS | OPTION_FPP | OPTION_MMU | OPTION_UBM | OPTION_22BIT,
		Allowed:   OPTION_EIS | OPTION_FPP | OPTION_MMU | OPTION_UBM | OPTION_22BIT,
		MaxMemory: memory4M,
		PswMask:   0174377,
		ParMask:   0177777,
		PdrMask:   0077717,
		Mm0Mask:   0171777,
		Mm3Mask:   0000067,
	},
	MODEL_1153: {
		Features:  _features_j11,
		Options:   _options_j11,
		Allowed:   _options_j11 | OPTION_CIS,
		MaxMemory: memory4M,
		MfptCode:  5,
		PswMask:   0174777,
		ParMask:   0177777,
		PdrMask:   0177516,
		Mm0Mask:   0160177,
		Mm3Mask:   0000077,
	},
	MODEL_1173: {
		Features:  _features_j11,
		Options:   _options_j11,
		Allowed:   _options_j11 | OPTION_CIS,
		MaxMemory: memory4M,
		MfptCode:  5,
		PswMask:   0174777,
		ParMask:   0177777,
		PdrMask:   0177516,
		Mm0Mask:   0160177,
		Mm3Mask:   0000077,
	},
	MODEL_1173B: {
		Features:  _features_j11,
		Options:   _options_j11,
		Allowed:   _options_j11 | OPTION_CIS,
		MaxMemory: memory4M,
		MfptCode:  5,
		PswMask:   0174777,
		ParMask:   0177777,
		PdrMask:   0177516,
		Mm0Mask:   0160177,
		Mm3Mask:   0000077,
	},
	MODEL_1183: {
		Features:  _features_j11,
		Options:   _options_j11,
		Allowed:   _options_j11 | OPTION_CIS,
		MaxMemory: memory4M,
		MfptCode:  5,
		PswMask:   0174777,
		ParMask:   0177777,
		PdrMask:   0177516,
		Mm0Mask:   0160177,
		Mm3Mask:   0000077,
	},
	MODEL_1184: {
		Features:  _features_j11,
		Options:   _options_j11 | OPTION_UBM,
		Allowed:   _options_j11 | OPTION_UBM | OPTION_CIS,
		MaxMemory: memory4M,
		MfptCode:  5,
		PswMask:   0174777,
		ParMask:   0177777,
		PdrMask:   0177516,
		Mm0Mask:   0160177,
		Mm3Mask:   0000077,
	},
	MODEL_1193: {
		Features:  _features_j11,
		Options:   _options_j11,
		Allowed:   _options_j11 | OPTION_CIS,
		MaxMemory: memory4M,
		MfptCode:  5,
		PswMask:   0174777,
		ParMask:   0177777,
		PdrMask:   0177516,
		Mm0Mask:   0160177,
		Mm3Mask:   0000077,
	},
	MODEL_1194: {
		Features:  _features_j11,
		Options:   _options_j11 | OPTION_UBM,
		Allowed:   _options_j11 | OPTION_UBM | OPTION_CIS,
		MaxMemory: memory4M,
		MfptCode:  5,
		PswMask:   0174777,
		ParMask:   0177777,
		PdrMask:   0177516,
		Mm0Mask:   0160177,
		Mm3Mask:   0000077,
	},
	MODEL_T11: {
		Features:  FEATURE_SXS | FEATURE_MXPS | FEATURE_MFPT | FEATURE_RTT,
		MaxMemory: memory64K,
		MfptCode:  4,
		PswMask:   0000377,
	},
}

// LookupModel returns the table entry for a model.
func LookupModel(model Model) (info ModelInfo, err error) {
	if model < 0 || int(model) >= len(Models) {
		err = ErrModel
		return
	}

	info = Models[model]
	info.Model = model
	return
}
