// Package reprog implements the WKPF reprogramming transfer: a fixed-capacity
// buffer filled by positioned chunk writes, and the parser that splits the
// committed bytes into typed configuration sections.
//
// A transfer is driven by three commands:
//
//	OPEN   -> Engine.Open    allocates a fresh buffer and reports its capacity
//	WRITE  -> Engine.Write   copies a chunk at a position
//	COMMIT -> Engine.Commit  parses [0, filled) and drops the buffer
//
// The committed blob is a sequence of sections:
//
//	length(2, LE) | type(1) | body(length)
//
// Link tables, component maps and init-value tables are decoded into [LinkTable],
// [ComponentMap] and [InitValues]; every other section type is kept as [Opaque].
package reprog
