// Package utils holds small shared helpers with no domain knowledge.
package utils

import (
	"bytes"
	"encoding/json"
	"sort"
)

// OrderedKV is a value paired with an explicit ordering key.
type OrderedKV[T any] struct {
	Value T
	Order int64
}

// OrderedKVMap marshals as a JSON object whose keys appear in Order, so the
// renderer receives page sections in display sequence.
type OrderedKVMap[T any] map[string]OrderedKV[T]

// Put inserts value under key at the given order.
func (om OrderedKVMap[T]) Put(key string, order int64, value T) {
	om[key] = OrderedKV[T]{Value: value, Order: order}
}

func (om OrderedKVMap[T]) MarshalJSON() ([]byte, error) {
	type pair struct {
		key   string
		value T
		order int64
	}
	pairs := make([]pair, 0, len(om))
	for k, v := range om {
		pairs = append(pairs, pair{
			key:   k,
			value: v.Value,
			order: v.Order,
		})
	}

	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].order < pairs[j].order
	})

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range pairs {
		if i > 0 {
			buf.WriteByte(',')
		}

		keyBytes, err := json.Marshal(p.key)
		if err != nil {
			return nil, err
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')

		valueBytes, err := json.Marshal(p.value)
		if err != nil {
			return nil, err
		}
		buf.Write(valueBytes)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
