// internal/document/buffer.go
package document

// Buffer is a finalized, read-only sequence of builder operations
type Buffer struct {
	ops []Op
}

// NewBuffer wraps ops into a buffer; the slice is copied
func NewBuffer(ops ...Op) Buffer {
	cp := make([]Op, len(ops))
	copy(cp, ops)
	return Buffer{ops: cp}
}

// Ops returns a copy of the operations in emission order
func (b Buffer) Ops() []Op {
	cp := make([]Op, len(b.ops))
	copy(cp, b.ops)
	return cp
}

// Len returns the number of operations
func (b Buffer) Len() int {
	return len(b.ops)
}

// IsEmpty reports whether the buffer carries no operations
func (b Buffer) IsEmpty() bool {
	return len(b.ops) == 0
}
