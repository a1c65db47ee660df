package streamable

import "reflect"

// Node is an opaque UI-representable value. The core never inspects nodes;
// it only moves them from producers to consumers.
type Node any

// Chunk is one immutable state in the lazily-unfolding sequence exposed to
// a consumer. Next is non-nil iff Done is false: a terminal chunk has no
// successor. Append signals the consumer to concatenate Node onto the prior
// accumulated content instead of replacing it.
type Chunk struct {
	Node   Node
	Done   bool
	Append bool
	Next   *Promise[Chunk]
}

// newSuspendedChunk builds the first chain link. The head resolves
// immediately to the initial value with a pending Next, so a consumer that
// starts reading before any producer action suspends on Next instead of
// erroring.
func newSuspendedChunk(initial Node) (head, tail *Promise[Chunk]) {
	head = NewPromise[Chunk]()
	tail = NewPromise[Chunk]()
	head.Resolve(Chunk{Node: initial, Next: tail})
	return head, tail
}

// sameNode reports whether two nodes are referentially identical.
// Pointer-like kinds compare by identity; comparable values by equality.
// Uncomparable non-pointer values are never considered the same.
func sameNode(a, b Node) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	switch va.Kind() {
	case reflect.Pointer, reflect.Chan, reflect.Map, reflect.Func, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	case reflect.Slice:
		return va.Len() == vb.Len() && (va.Len() == 0 || va.Pointer() == vb.Pointer())
	}
	if va.Type().Comparable() {
		return a == b
	}
	return false
}
