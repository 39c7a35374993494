package stripe

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParamsEncode(t *testing.T) {
	tests := []struct {
		name   string
		params Params
		want   string
	}{
		{
			name:   "empty",
			params: Params{},
			want:   "",
		},
		{
			name:   "scalars are sorted and escaped",
			params: Params{"description": "a b&c", "amount": 1000, "capture": false},
			want:   "amount=1000&capture=false&description=a+b%26c",
		},
		{
			name:   "nested mapping",
			params: Params{"card": Params{"number": "4242424242424242", "exp_month": 12}},
			want:   "card%5Bexp_month%5D=12&card%5Bnumber%5D=4242424242424242",
		},
		{
			name:   "string map",
			params: Params{"metadata": map[string]string{"order": "42"}},
			want:   "metadata%5Border%5D=42",
		},
		{
			name:   "sequence",
			params: Params{"expand": []string{"customer", "invoice"}},
			want:   "expand%5B%5D=customer&expand%5B%5D=invoice",
		},
		{
			name:   "sequence of mappings",
			params: Params{"items": []Params{{"price": "p_1"}}},
			want:   "items%5B%5D%5Bprice%5D=p_1",
		},
		{
			name:   "nil values are omitted",
			params: Params{"a": nil, "b": "x", "c": Params{"d": nil}, "e": (*string)(nil)},
			want:   "b=x",
		},
		{
			name:   "pointers are dereferenced",
			params: Params{"amount": int64Ptr(500)},
			want:   "amount=500",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.params.Encode())
		})
	}
}

func TestParamsEncodeRegroupsToOriginal(t *testing.T) {
	params := Params{
		"amount":   "2000",
		"currency": "usd",
		"card": Params{
			"number":        "4242424242424242",
			"address_line1": "1 Main St, Apt #2",
		},
		"metadata": map[string]string{
			"order id": "A&B=C",
			"ключ":     "значение",
		},
		"expand":  []string{"customer", "balance_transaction"},
		"ignored": nil,
	}

	got := regroup(t, params.Encode())

	want := map[string]interface{}{
		"amount":   "2000",
		"currency": "usd",
		"card": map[string]interface{}{
			"number":        "4242424242424242",
			"address_line1": "1 Main St, Apt #2",
		},
		"metadata": map[string]interface{}{
			"order id": "A&B=C",
			"ключ":     "значение",
		},
		"expand": []interface{}{"customer", "balance_transaction"},
	}
	assert.Equal(t, want, got)
	assert.NotContains(t, params.Encode(), "ignored")
}

// regroup разбирает form-encoded строку обратно в структуру по скобочной нотации.
// Поддерживает вложенные map со строковыми значениями и срезы строк.
func regroup(t *testing.T, encoded string) map[string]interface{} {
	t.Helper()

	out := map[string]interface{}{}
	for _, pair := range strings.Split(encoded, "&") {
		kv := strings.SplitN(pair, "=", 2)
		require.Len(t, kv, 2)

		key, err := url.QueryUnescape(kv[0])
		require.NoError(t, err)
		value, err := url.QueryUnescape(kv[1])
		require.NoError(t, err)

		path := splitKey(key)
		node := out
		for i, seg := range path[:len(path)-1] {
			if path[i+1] == "" {
				list, _ := node[seg].([]interface{})
				node[seg] = append(list, value)
				node = nil
				break
			}
			child, ok := node[seg].(map[string]interface{})
			if !ok {
				child = map[string]interface{}{}
				node[seg] = child
			}
			node = child
		}
		if node != nil {
			node[path[len(path)-1]] = value
		}
	}
	return out
}

func splitKey(key string) []string {
	open := strings.Index(key, "[")
	if open < 0 {
		return []string{key}
	}

	parts := []string{key[:open]}
	for _, seg := range strings.Split(key[open+1:], "[") {
		parts = append(parts, strings.TrimSuffix(seg, "]"))
	}
	return parts
}

func int64Ptr(v int64) *int64 {
	return &v
}
