package folder

// ordered is a string-keyed map that enumerates keys in first-insertion
// order. Re-setting a key replaces the value in place.
type ordered[V any] struct {
	keys  []string
	items map[string]V
}

func (o *ordered[V]) get(key string) (V, bool) {
	v, ok := o.items[key]
	return v, ok
}

func (o *ordered[V]) set(key string, v V) {
	if o.items == nil {
		o.items = make(map[string]V)
	}
	if _, ok := o.items[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.items[key] = v
}

func (o *ordered[V]) values() []V {
	out := make([]V, 0, len(o.keys))
	for _, k := range o.keys {
		out = append(out, o.items[k])
	}
	return out
}

func (o *ordered[V]) len() int { return len(o.keys) }
