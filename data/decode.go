package data

import (
	"math"
	"reflect"
	"strings"
)

// Decode stores the host representation of d in the value pointed to by out.
//
// Struct fields are matched against map keys by l20n tag, then by exact field
// name, then case-insensitively. A field with no matching key fails with
// MissingField unless its tag carries the "omitempty" option. Decoding into
// an interface stores the result of [Native].
func Decode(d Data, out any) error {
	rv := reflect.ValueOf(out)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		want := "<nil>"
		if out != nil {
			want = rv.Type().String()
		}

		return &DecodeError{Kind: WrongType, Want: want, Got: TypeName(d)}
	}

	return decode(d, rv.Elem(), "")
}

func decode(d Data, rv reflect.Value, field string) error {
	if d == nil {
		d = Null{}
	}

	if rv.Type().Implements(dataType) && rv.Kind() == reflect.Interface {
		rv.Set(reflect.ValueOf(d))

		return nil
	}

	mismatch := func() error {
		return &DecodeError{
			Kind:  WrongType,
			Field: field,
			Want:  rv.Type().String(),
			Got:   TypeName(d),
		}
	}

	switch rv.Kind() {
	case reflect.Pointer:
		if _, ok := d.(Null); ok {
			rv.SetZero()

			return nil
		}

		if rv.IsNil() {
			rv.Set(reflect.New(rv.Type().Elem()))
		}

		return decode(d, rv.Elem(), field)

	case reflect.Interface:
		if rv.NumMethod() != 0 {
			return mismatch()
		}

		native := Native(d)
		if native == nil {
			rv.SetZero()
		} else {
			rv.Set(reflect.ValueOf(native))
		}

		return nil

	case reflect.Bool:
		b, ok := d.(Bool)
		if !ok {
			return mismatch()
		}

		rv.SetBool(bool(b))

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, ok := d.(Num)
		if !ok || rv.OverflowInt(int64(n)) {
			return mismatch()
		}

		rv.SetInt(int64(n))

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Uint64, reflect.Uintptr:
		n, ok := d.(Num)
		if !ok || n < 0 || rv.OverflowUint(uint64(n)) {
			return mismatch()
		}

		rv.SetUint(uint64(n))

	case reflect.Float32, reflect.Float64:
		n, ok := d.(Num)
		if !ok {
			return mismatch()
		}

		f := float64(n)
		if rv.Kind() == reflect.Float32 && math.Abs(f) > math.MaxFloat32 {
			return mismatch()
		}

		rv.SetFloat(f)

	case reflect.String:
		s, ok := d.(Str)
		if !ok {
			return mismatch()
		}

		rv.SetString(string(s))

	case reflect.Slice:
		switch d := d.(type) {
		case Null:
			rv.SetZero()
		case List:
			s := reflect.MakeSlice(rv.Type(), len(d), len(d))
			for i, e := range d {
				if err := decode(e, s.Index(i), field); err != nil {
					return err
				}
			}

			rv.Set(s)
		default:
			return mismatch()
		}

	case reflect.Array:
		l, ok := d.(List)
		if !ok || len(l) != rv.Len() {
			return mismatch()
		}

		for i, e := range l {
			if err := decode(e, rv.Index(i), field); err != nil {
				return err
			}
		}

	case reflect.Map:
		m, ok := d.(Map)
		if !ok || rv.Type().Key().Kind() != reflect.String {
			return mismatch()
		}

		out := reflect.MakeMapWithSize(rv.Type(), len(m))
		for k, e := range m {
			v := reflect.New(rv.Type().Elem()).Elem()
			if err := decode(e, v, k); err != nil {
				return err
			}

			out.SetMapIndex(reflect.ValueOf(k).Convert(rv.Type().Key()), v)
		}

		rv.Set(out)

	case reflect.Struct:
		m, ok := d.(Map)
		if !ok {
			return mismatch()
		}

		return decodeStruct(m, rv)

	default:
		return mismatch()
	}

	return nil
}

func decodeStruct(m Map, rv reflect.Value) error {
	rt := rv.Type()

	for i := range rt.NumField() {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}

		name, ok := fieldName(field)
		if !ok {
			continue
		}

		d, ok := lookupField(m, name)
		if !ok {
			if hasOption(field, "omitempty") {
				continue
			}

			return &DecodeError{Kind: MissingField, Field: name}
		}

		if err := decode(d, rv.Field(i), name); err != nil {
			return err
		}
	}

	return nil
}

func lookupField(m Map, name string) (Data, bool) {
	if d, ok := m[name]; ok {
		return d, true
	}

	for _, k := range m.Keys() {
		if strings.EqualFold(k, name) {
			return m[k], true
		}
	}

	return nil, false
}

func hasOption(field reflect.StructField, option string) bool {
	tag, ok := field.Tag.Lookup(TagName)
	if !ok {
		return false
	}

	_, opts, _ := strings.Cut(tag, ",")
	for opt := range strings.SplitSeq(opts, ",") {
		if opt == option {
			return true
		}
	}

	return false
}
