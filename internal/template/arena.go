package template

// Arena stores nodes contiguously; ids are 1-based so zero means "none".
type Arena[T any] struct {
	data []T
}

func NewArena[T any](capHint int) *Arena[T] {
	return &Arena[T]{data: make([]T, 0, capHint)}
}

// Allocate возвращает индекс нового элемента (1-based).
func (a *Arena[T]) Allocate(value T) uint32 {
	a.data = append(a.data, value)
	return uint32(len(a.data)) // #nosec G115 -- templates are far below 4G nodes
}

func (a *Arena[T]) Get(index uint32) *T {
	if index == 0 || int(index) > len(a.data) {
		return nil
	}
	return &a.data[index-1]
}

func (a *Arena[T]) Len() int {
	return len(a.data)
}
