package stripe

import (
	"fmt"
	"net/url"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// Params параметры запроса к API Stripe.
//
// Значения могут быть скалярами, вложенными Params (или любыми map) и срезами.
// Вложенная map под ключом k кодируется как k[subkey]=value, срез как повторяющиеся k[]=value.
// Значения nil (в том числе nil-указатели) пропускаются.
type Params map[string]interface{}

// Encode кодирует параметры в application/x-www-form-urlencoded.
// Ключи сортируются, поэтому результат детерминирован.
func (p Params) Encode() string {
	if len(p) == 0 {
		return ""
	}

	pairs := make([]string, 0, len(p))
	appendMap(&pairs, reflect.ValueOf(map[string]interface{}(p)), "")
	return strings.Join(pairs, "&")
}

func appendMap(pairs *[]string, m reflect.Value, prefix string) {
	keys := m.MapKeys()
	names := make([]string, len(keys))
	byName := make(map[string]reflect.Value, len(keys))
	for i, k := range keys {
		names[i] = fmt.Sprint(k.Interface())
		byName[names[i]] = k
	}
	sort.Strings(names)

	for _, name := range names {
		key := name
		if prefix != "" {
			key = prefix + "[" + name + "]"
		}
		appendValue(pairs, key, m.MapIndex(byName[name]))
	}
}

func appendValue(pairs *[]string, key string, v reflect.Value) {
	v = indirect(v)
	if !v.IsValid() {
		return
	}

	switch v.Kind() {
	case reflect.Map:
		appendMap(pairs, v, key)
	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice && v.Type().Elem().Kind() == reflect.Uint8 {
			*pairs = append(*pairs, encodePair(key, string(v.Bytes())))
			return
		}
		for i := 0; i < v.Len(); i++ {
			appendValue(pairs, key+"[]", v.Index(i))
		}
	default:
		*pairs = append(*pairs, encodePair(key, scalar(v)))
	}
}

// indirect снимает interface и указатели; для nil возвращает невалидное значение
func indirect(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Interface || v.Kind() == reflect.Ptr) {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

func scalar(v reflect.Value) string {
	if v.CanInterface() {
		if s, ok := v.Interface().(fmt.Stringer); ok {
			return s.String()
		}
	}

	switch v.Kind() {
	case reflect.String:
		return v.String()
	case reflect.Bool:
		return strconv.FormatBool(v.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(v.Uint(), 10)
	case reflect.Float32:
		return strconv.FormatFloat(v.Float(), 'f', -1, 32)
	case reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'f', -1, 64)
	default:
		return fmt.Sprint(v.Interface())
	}
}

func encodePair(key, value string) string {
	return url.QueryEscape(key) + "=" + url.QueryEscape(value)
}
