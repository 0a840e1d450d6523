package pointers

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T { return &v }

// Or dereferences p, returning def when p is nil.
func Or[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}
