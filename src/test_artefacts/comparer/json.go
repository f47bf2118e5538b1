package comparer

import (
	"encoding/json"
	"reflect"

	"github.com/google/go-cmp/cmp"
)

// JSONPayload compara payloads []byte pelo conteúdo JSON, ignorando a ordem das chaves.
// Payloads que não são JSON caem na comparação byte a byte.
func JSONPayload() cmp.Option {
	return cmp.Comparer(func(x, y []byte) bool {
		if len(x) == 0 && len(y) == 0 {
			return true
		}

		var xObj, yObj any
		if json.Unmarshal(x, &xObj) != nil || json.Unmarshal(y, &yObj) != nil {
			return string(x) == string(y)
		}

		return reflect.DeepEqual(xObj, yObj)
	})
}
