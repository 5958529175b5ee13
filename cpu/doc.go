// Package cpu implements the central processor of the PDP-11 family.
//
// The processor has eight 16-bit registers (r0-r5, SP, PC), with two sets of
// r0-r5 and a stack pointer per mode, a processor status word, and a memory
// management unit that relocates 16-bit virtual addresses into a 22-bit
// physical space. Instructions that fault unwind through an *Abort, which the
// instruction loop recovers into a trap request.
//
// Model differences, such as the odd address trap, the stack limit rules, and
// the optional instruction sets, are table driven from Models.
package cpu
