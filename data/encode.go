package data

import (
	"math"
	"reflect"
	"strconv"
	"strings"
)

// TagName is the struct tag consulted by [Encode] and [Decode] for field
// names. A tag value of "-" excludes the field.
const TagName = "l20n"

var dataType = reflect.TypeFor[Data]()

// Encode converts a host value into a [Data] tree.
//
// Nil values and nil pointers become [Null]. Integers become [Num]; floats are
// truncated toward zero. Slices and arrays become [List]. Maps become [Map]
// and must be keyed by strings. Structs become [Map] keyed by field name (or
// the l20n tag). Values that already implement [Data] are returned unchanged.
func Encode(v any) (Data, error) {
	if v == nil {
		return Null{}, nil
	}

	return encode(reflect.ValueOf(v), "")
}

func encode(rv reflect.Value, path string) (Data, error) {
	if !rv.IsValid() {
		return Null{}, nil
	}

	if rv.Type().Implements(dataType) {
		if rv.Kind() == reflect.Interface && rv.IsNil() {
			return Null{}, nil
		}

		d, _ := rv.Interface().(Data)
		if d == nil {
			return Null{}, nil
		}

		return d, nil
	}

	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Null{}, nil
		}

		return encode(rv.Elem(), path)

	case reflect.Bool:
		return Bool(rv.Bool()), nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Num(rv.Int()), nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return nil, &EncodeError{
				Kind: UnsupportedType,
				Type: rv.Type().String(),
				Path: path,
			}
		}

		return Num(int64(u)), nil

	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, &EncodeError{
				Kind: UnsupportedType,
				Type: rv.Type().String(),
				Path: path,
			}
		}

		return Num(int64(f)), nil

	case reflect.String:
		return Str(rv.String()), nil

	case reflect.Slice:
		if rv.IsNil() {
			return Null{}, nil
		}

		fallthrough

	case reflect.Array:
		list := make(List, rv.Len())

		for i := range rv.Len() {
			d, err := encode(rv.Index(i), path+"["+strconv.Itoa(i)+"]")
			if err != nil {
				return nil, err
			}

			list[i] = d
		}

		return list, nil

	case reflect.Map:
		if rv.IsNil() {
			return Null{}, nil
		}

		m := make(Map, rv.Len())

		iter := rv.MapRange()
		for iter.Next() {
			key, err := encodeKey(iter.Key(), path)
			if err != nil {
				return nil, err
			}

			d, err := encode(iter.Value(), join(path, key))
			if err != nil {
				return nil, err
			}

			m[key] = d
		}

		return m, nil

	case reflect.Struct:
		return encodeStruct(rv, path)

	default:
		return nil, &EncodeError{
			Kind: UnsupportedType,
			Type: rv.Type().String(),
			Path: path,
		}
	}
}

func encodeKey(k reflect.Value, path string) (string, error) {
	for k.Kind() == reflect.Interface {
		if k.IsNil() {
			return "", &EncodeError{Kind: MissingElements, Path: path}
		}

		k = k.Elem()
	}

	if k.Kind() != reflect.String {
		return "", &EncodeError{
			Kind: KeyIsNotString,
			Type: k.Type().String(),
			Path: path,
		}
	}

	return k.String(), nil
}

func encodeStruct(rv reflect.Value, path string) (Data, error) {
	rt := rv.Type()
	m := make(Map, rt.NumField())

	for i := range rt.NumField() {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}

		name, ok := fieldName(field)
		if !ok {
			continue
		}

		d, err := encode(rv.Field(i), join(path, name))
		if err != nil {
			return nil, err
		}

		m[name] = d
	}

	return m, nil
}

// fieldName returns the data key for a struct field and false if the field is
// excluded by its tag.
func fieldName(field reflect.StructField) (string, bool) {
	tag, ok := field.Tag.Lookup(TagName)
	if !ok {
		return field.Name, true
	}

	name, _, _ := strings.Cut(tag, ",")

	switch name {
	case "-":
		return "", false
	case "":
		return field.Name, true
	default:
		return name, true
	}
}

func join(path, key string) string {
	if path == "" {
		return key
	}

	return path + "." + key
}
