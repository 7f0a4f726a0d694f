package domain

// Optional marks a patch field as present or absent. A present field with a
// nil pointer value means "clear"; an absent field means "leave unchanged".
type Optional[T any] struct {
	Value T
	Set   bool
}

// Some returns a present Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

// None returns an absent Optional.
func None[T any]() Optional[T] {
	return Optional[T]{}
}
