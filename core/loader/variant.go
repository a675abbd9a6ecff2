package loader

// VariantStrategy picks which pre-rendered variant of a (style, word) pair
// to load. Implementations may keep history; a returned error is logged and
// the returned variant is still used.
type VariantStrategy interface {
	Variant(style, word string) (int, error)
}

// FixedVariant always loads the same variant.
type FixedVariant int

func (v FixedVariant) Variant(string, string) (int, error) {
	if v < 1 {
		return 1, nil
	}
	return int(v), nil
}

// Counter persists per-key counts.
type Counter interface {
	Count(key string) (int, error)
	SetCount(key string, n int) error
}

// CountingVariant loads variant k on the k-th request of a pair, capped at
// Max, so repeat visits walk through the alternates.
type CountingVariant struct {
	Store Counter
	Max   int
}

// CounterKey names the persisted count of a pair.
func CounterKey(style, word string) string {
	return "h5_seq_count_" + style + "_" + word
}

func (c CountingVariant) Variant(style, word string) (int, error) {
	limit := c.Max
	if limit < 1 {
		limit = 1
	}
	key := CounterKey(style, word)
	n, err := c.Store.Count(key)
	if err != nil {
		n = 0
	}
	n++
	if serr := c.Store.SetCount(key, n); serr != nil && err == nil {
		err = serr
	}
	if n > limit {
		n = limit
	}
	return n, err
}

// VariantFunc adapts a plain function.
type VariantFunc func(style, word string) (int, error)

func (f VariantFunc) Variant(style, word string) (int, error) { return f(style, word) }
