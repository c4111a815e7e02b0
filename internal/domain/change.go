package domain

// Change is a document write: Before is nil on create, After is nil on
// delete.
type Change[T any] struct {
	Before *T
	After  *T
}
