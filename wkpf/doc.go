// Package wkpf implements the WuKong Profile Framework command set of a node.
//
// Commands arrive as WKPF sub-frames forwarded by the master:
//
//	opcode(1) | seq(2, LE) | body
//
// and every response echoes the sequence number with opcode+1. Failures that
// cannot be expressed as a command-specific status are answered with ERROR_R
// carrying the original opcode and an error code.
//
// The [Dispatcher] owns the node's [Registry] of WuClasses and WuObjects, the
// location transfer state and the reprogramming engine. It is driven by a
// single goroutine; the registry may be read and extended concurrently.
package wkpf
