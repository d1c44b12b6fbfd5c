// Package bstruct converts Go structs to and from their packed binary
// representation.
//
// Fields are encoded in declaration order using the caller's byte order.
// No alignment padding is ever inserted, so the resulting layout depends
// only on the field types, never on the compiler's struct layout.
package bstruct

import (
	"encoding/binary"
	"errors"
	"fmt"
	"reflect"
)

// ErrShortBuffer is returned by FromBytes when the source buffer does
// not contain enough bytes for the struct.
var ErrShortBuffer = errors.New("buffer is too short")

// Byter is implemented by field types that know how to encode
// themselves. Byter fields are only supported by ToBytes.
type Byter interface {
	ToBytes(binary.ByteOrder) []byte
}

// FieldInfo describes a single encoded leaf field. Nested struct fields
// are named "Outer.Inner" and array elements "Name[i]".
type FieldInfo struct {
	Index int
	Name  string
	Type  string
	Value []byte
}

// ToBytes packs s (a struct or a pointer to one) into a []byte.
//
// Supported field types are uint8, uint16, uint32, uint64, fixed-size
// arrays of supported types, nested structs and Byter. If optFn is
// non-nil, it is called after each leaf field is encoded.
func ToBytes(bo binary.ByteOrder, s interface{}, optFn func(FieldInfo) error) ([]byte, error) {
	structValue, err := structOf(s)
	if err != nil {
		return nil, err
	}

	enc := encoder{
		bo:    bo,
		optFn: optFn,
	}

	err = enc.structFields(structValue, "")
	if err != nil {
		return nil, err
	}

	return enc.b, nil
}

// Size returns the number of bytes ToBytes produces for s.
func Size(s interface{}) (int, error) {
	b, err := ToBytes(binary.LittleEndian, s, nil)
	if err != nil {
		return 0, err
	}

	return len(b), nil
}

// FromBytes unpacks b into the struct pointed to by ptr. It returns
// the number of bytes consumed. Trailing bytes are ignored.
func FromBytes(bo binary.ByteOrder, b []byte, ptr interface{}) (int, error) {
	if ptr == nil {
		return 0, errors.New("destination is nil")
	}

	ptrValue := reflect.ValueOf(ptr)
	if ptrValue.Kind() != reflect.Ptr || ptrValue.IsNil() {
		return 0, fmt.Errorf("destination must be a non-nil pointer to a struct - got %T", ptr)
	}

	structValue := ptrValue.Elem()
	if structValue.Kind() != reflect.Struct {
		return 0, fmt.Errorf("destination must point to a struct - got %T", ptr)
	}

	dec := decoder{
		bo: bo,
		b:  b,
	}

	err := dec.structFields(structValue, "")
	if err != nil {
		return dec.offset, err
	}

	return dec.offset, nil
}

func structOf(s interface{}) (reflect.Value, error) {
	if s == nil {
		return reflect.Value{}, errors.New("struct is nil")
	}

	v := reflect.ValueOf(s)
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return reflect.Value{}, errors.New("struct pointer is nil")
		}

		v = v.Elem()
	}

	if v.Kind() != reflect.Struct {
		return reflect.Value{}, fmt.Errorf("expected a struct - got %T", s)
	}

	return v, nil
}

type encoder struct {
	bo    binary.ByteOrder
	optFn func(FieldInfo) error
	b     []byte
	index int
}

func (o *encoder) structFields(v reflect.Value, prefix string) error {
	structType := v.Type()

	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		if !field.IsExported() {
			return fmt.Errorf("field %q is not exported", prefix+field.Name)
		}

		err := o.value(v.Field(i), prefix+field.Name)
		if err != nil {
			return err
		}
	}

	return nil
}

func (o *encoder) value(v reflect.Value, name string) error {
	if byter, ok := v.Interface().(Byter); ok {
		return o.leaf(name, v.Type(), byter.ToBytes(o.bo))
	}

	switch v.Kind() {
	case reflect.Struct:
		return o.structFields(v, name+".")
	case reflect.Array:
		for i := 0; i < v.Len(); i++ {
			err := o.value(v.Index(i), fmt.Sprintf("%s[%d]", name, i))
			if err != nil {
				return err
			}
		}

		return nil
	case reflect.Uint8:
		return o.leaf(name, v.Type(), []byte{uint8(v.Uint())})
	case reflect.Uint16:
		buf := make([]byte, 2)
		o.bo.PutUint16(buf, uint16(v.Uint()))
		return o.leaf(name, v.Type(), buf)
	case reflect.Uint32:
		buf := make([]byte, 4)
		o.bo.PutUint32(buf, uint32(v.Uint()))
		return o.leaf(name, v.Type(), buf)
	case reflect.Uint64:
		buf := make([]byte, 8)
		o.bo.PutUint64(buf, v.Uint())
		return o.leaf(name, v.Type(), buf)
	default:
		return fmt.Errorf("unsupported data type %s for field %q (index %d)",
			v.Type(), name, o.index)
	}
}

func (o *encoder) leaf(name string, t reflect.Type, value []byte) error {
	o.b = append(o.b, value...)

	index := o.index
	o.index++

	if o.optFn == nil {
		return nil
	}

	return o.optFn(FieldInfo{
		Index: index,
		Name:  name,
		Type:  t.String(),
		Value: value,
	})
}

type decoder struct {
	bo     binary.ByteOrder
	b      []byte
	offset int
}

func (o *decoder) structFields(v reflect.Value, prefix string) error {
	structType := v.Type()

	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		if !field.IsExported() {
			return fmt.Errorf("field %q is not exported", prefix+field.Name)
		}

		err := o.value(v.Field(i), prefix+field.Name)
		if err != nil {
			return err
		}
	}

	return nil
}

func (o *decoder) value(v reflect.Value, name string) error {
	switch v.Kind() {
	case reflect.Struct:
		return o.structFields(v, name+".")
	case reflect.Array:
		for i := 0; i < v.Len(); i++ {
			err := o.value(v.Index(i), fmt.Sprintf("%s[%d]", name, i))
			if err != nil {
				return err
			}
		}

		return nil
	case reflect.Uint8:
		buf, err := o.next(name, 1)
		if err != nil {
			return err
		}

		v.SetUint(uint64(buf[0]))
	case reflect.Uint16:
		buf, err := o.next(name, 2)
		if err != nil {
			return err
		}

		v.SetUint(uint64(o.bo.Uint16(buf)))
	case reflect.Uint32:
		buf, err := o.next(name, 4)
		if err != nil {
			return err
		}

		v.SetUint(uint64(o.bo.Uint32(buf)))
	case reflect.Uint64:
		buf, err := o.next(name, 8)
		if err != nil {
			return err
		}

		v.SetUint(o.bo.Uint64(buf))
	default:
		return fmt.Errorf("unsupported data type %s for field %q", v.Type(), name)
	}

	return nil
}

func (o *decoder) next(name string, n int) ([]byte, error) {
	remaining := len(o.b) - o.offset
	if remaining < n {
		return nil, fmt.Errorf("%w - field %q needs %d bytes at offset %d, %d remain",
			ErrShortBuffer, name, n, o.offset, remaining)
	}

	buf := o.b[o.offset : o.offset+n]
	o.offset += n

	return buf, nil
}
