package comparer

import (
	"socialgraph/src/domain/entities"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func IgnoreFieldsFor[T any](fields ...string) cmp.Option {
	var t T
	return cmpopts.IgnoreFields(t, fields...)
}

// UnorderedEdges ignora a ordem de slices de arestas; as queries do store não garantem ordem.
func UnorderedEdges() cmp.Option {
	return cmpopts.SortSlices(func(a, b entities.Edge) bool {
		if a.Owner != b.Owner {
			return a.Owner < b.Owner
		}
		return a.Peer < b.Peer
	})
}
