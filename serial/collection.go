package serial

import (
	"cmp"
	"fmt"
	"maps"
	"slices"

	"github.com/arloliu/bytecodec/buffer"
	"github.com/arloliu/bytecodec/errs"
)

// MaxZeroWidthCount is the largest list or map count accepted when an element
// decodes from zero bytes and the remaining input can no longer bound the count.
const MaxZeroWidthCount = 1 << 20

// checkCount rejects a count once an element took no bytes and more elements are
// announced than bytes remain.
func checkCount(what string, n, left, avail, consumed int) error {
	if consumed == 0 && left > avail && n > MaxZeroWidthCount {
		return fmt.Errorf("%w: %s of %d zero-width elements", errs.ErrLengthOverflow, what, n)
	}

	return nil
}

type list[T any] struct {
	elem Serializer[T]
}

// List returns a Serializer for slices whose elements are encoded by elem. The wire
// form is an element count followed by each element in order.
func List[T any](elem Serializer[T]) Serializer[[]T] {
	return list[T]{elem: elem}
}

func (l list[T]) Serialize(b *buffer.Buffer, v []T) error {
	before := b.Avail()
	putSize(b, len(v))
	for _, e := range v {
		if err := l.elem.Serialize(b, e); err != nil {
			truncate(b, before)
			return err
		}
	}

	return nil
}

func (l list[T]) Deserialize(b *buffer.Buffer) ([]T, error) {
	before := b.Avail()
	n, err := getSize(b, "list")
	if err != nil {
		return nil, err
	}

	out := make([]T, 0, min(n, b.Avail()))
	for i := range n {
		start := b.Avail()
		e, err := l.elem.Deserialize(b)
		if err == nil {
			err = checkCount("list", n, n-i-1, b.Avail(), start-b.Avail())
		}
		if err != nil {
			rollback(b, before)
			return nil, err
		}
		out = append(out, e)
	}

	return out, nil
}

type dict[K cmp.Ordered, V any] struct {
	key Serializer[K]
	val Serializer[V]
}

// Map returns a Serializer for maps. The wire form is an entry count followed by
// key and value pairs in ascending key order, so equal maps encode identically.
// When the input repeats a key, the last entry wins.
func Map[K cmp.Ordered, V any](key Serializer[K], val Serializer[V]) Serializer[map[K]V] {
	return dict[K, V]{key: key, val: val}
}

func (d dict[K, V]) Serialize(b *buffer.Buffer, v map[K]V) error {
	before := b.Avail()
	putSize(b, len(v))
	for _, k := range slices.Sorted(maps.Keys(v)) {
		if err := d.key.Serialize(b, k); err != nil {
			truncate(b, before)
			return err
		}
		if err := d.val.Serialize(b, v[k]); err != nil {
			truncate(b, before)
			return err
		}
	}

	return nil
}

func (d dict[K, V]) Deserialize(b *buffer.Buffer) (map[K]V, error) {
	before := b.Avail()
	n, err := getSize(b, "map")
	if err != nil {
		return nil, err
	}

	out := make(map[K]V, min(n, b.Avail()))
	for i := range n {
		start := b.Avail()
		k, err := d.key.Deserialize(b)
		if err != nil {
			rollback(b, before)
			return nil, err
		}
		v, err := d.val.Deserialize(b)
		if err == nil {
			err = checkCount("map", n, n-i-1, b.Avail(), start-b.Avail())
		}
		if err != nil {
			rollback(b, before)
			return nil, err
		}
		out[k] = v
	}

	return out, nil
}
