package classfile

import (
	"strings"

	"github.com/cubewhy/asm-go/errors"
)

// Sort is a stable small-integer tag identifying a Type's variant.
// Values are compatible with the ASM Type sort constants.
type Sort byte

const (
	SortVoid    Sort = 0
	SortBoolean Sort = 1
	SortChar    Sort = 2
	SortByte    Sort = 3
	SortShort   Sort = 4
	SortInt     Sort = 5
	SortFloat   Sort = 6
	SortLong    Sort = 7
	SortDouble  Sort = 8
	SortArray   Sort = 9
	SortObject  Sort = 10
	SortMethod  Sort = 11
)

// Type represents a field or method type from the descriptor grammar.
// Values are immutable once constructed; the zero value is the void type.
type Type struct {
	name string // object internal name, e.g. "java/lang/Object"
	elem *Type  // array element type
	args []Type // method argument types
	ret  *Type  // method return type
	sort Sort
}

// Predeclared primitive types.
var (
	Void    = Type{sort: SortVoid}
	Boolean = Type{sort: SortBoolean}
	Char    = Type{sort: SortChar}
	Byte    = Type{sort: SortByte}
	Short   = Type{sort: SortShort}
	Int     = Type{sort: SortInt}
	Float   = Type{sort: SortFloat}
	Long    = Type{sort: SortLong}
	Double  = Type{sort: SortDouble}
)

// ParseType returns the Type corresponding to the given field or method
// descriptor. One complete type is parsed from the start of the string;
// trailing bytes are ignored. Malformed input yields an
// errors.KindInvalidDescriptor error carrying the byte offset.
func ParseType(descriptor string) (Type, error) {
	pos := 0
	return parseType(descriptor, &pos)
}

// ParseMethodType returns the method Type corresponding to the given method
// descriptor. A syntactically valid descriptor that does not denote a method
// yields an errors.KindNotMethod error.
func ParseMethodType(descriptor string) (Type, error) {
	t, err := ParseType(descriptor)
	if err != nil {
		return Type{}, err
	}
	if t.sort != SortMethod {
		return Type{}, errors.NotAMethodDescriptor(descriptor)
	}
	return t, nil
}

// ObjectType returns the Type corresponding to the given internal name.
// A name starting with '[' is treated as an array descriptor and parsed.
func ObjectType(internalName string) (Type, error) {
	if strings.HasPrefix(internalName, "[") {
		return ParseType(internalName)
	}
	return Type{sort: SortObject, name: internalName}, nil
}

// MethodTypeOf composes a method type from its return type and argument types.
func MethodTypeOf(returnType Type, argumentTypes ...Type) Type {
	args := make([]Type, len(argumentTypes))
	copy(args, argumentTypes)
	return Type{sort: SortMethod, args: args, ret: &returnType}
}

// ArrayOf returns the array type with the given element type.
func ArrayOf(element Type) Type {
	return Type{sort: SortArray, elem: &element}
}

func parseType(desc string, pos *int) (Type, error) {
	if *pos >= len(desc) {
		return Type{}, errors.InvalidDescriptor(desc, *pos, "unexpected end of descriptor")
	}
	switch c := desc[*pos]; c {
	case 'V':
		*pos++
		return Void, nil
	case 'Z':
		*pos++
		return Boolean, nil
	case 'C':
		*pos++
		return Char, nil
	case 'B':
		*pos++
		return Byte, nil
	case 'S':
		*pos++
		return Short, nil
	case 'I':
		*pos++
		return Int, nil
	case 'F':
		*pos++
		return Float, nil
	case 'J':
		*pos++
		return Long, nil
	case 'D':
		*pos++
		return Double, nil
	case 'L':
		*pos++
		start := *pos
		for *pos < len(desc) && desc[*pos] != ';' {
			*pos++
		}
		if *pos >= len(desc) {
			return Type{}, errors.InvalidDescriptor(desc, start-1, "unterminated object name")
		}
		name := desc[start:*pos]
		*pos++ // skip ';'
		return Type{sort: SortObject, name: name}, nil
	case '[':
		*pos++
		elem, err := parseType(desc, pos)
		if err != nil {
			return Type{}, err
		}
		return Type{sort: SortArray, elem: &elem}, nil
	case '(':
		open := *pos
		*pos++
		var args []Type
		for {
			if *pos >= len(desc) {
				return Type{}, errors.InvalidDescriptor(desc, open, "unterminated argument list")
			}
			if desc[*pos] == ')' {
				break
			}
			arg, err := parseType(desc, pos)
			if err != nil {
				return Type{}, err
			}
			args = append(args, arg)
		}
		*pos++ // skip ')'
		ret, err := parseType(desc, pos)
		if err != nil {
			return Type{}, err
		}
		return Type{sort: SortMethod, args: args, ret: &ret}, nil
	default:
		return Type{}, errors.New(errors.PhaseParse, errors.KindInvalidDescriptor).
			Input(desc).
			Offset(*pos).
			Detail("invalid descriptor character %q", c).
			Build()
	}
}

// Sort returns the variant tag of this type.
func (t Type) Sort() Sort {
	return t.sort
}

// Descriptor returns the wire-format descriptor of this type. It is the
// exact left-inverse of ParseType for any value the parser can produce.
func (t Type) Descriptor() string {
	var b strings.Builder
	t.appendDescriptor(&b)
	return b.String()
}

func (t Type) appendDescriptor(b *strings.Builder) {
	switch t.sort {
	case SortVoid:
		b.WriteByte('V')
	case SortBoolean:
		b.WriteByte('Z')
	case SortChar:
		b.WriteByte('C')
	case SortByte:
		b.WriteByte('B')
	case SortShort:
		b.WriteByte('S')
	case SortInt:
		b.WriteByte('I')
	case SortFloat:
		b.WriteByte('F')
	case SortLong:
		b.WriteByte('J')
	case SortDouble:
		b.WriteByte('D')
	case SortArray:
		b.WriteByte('[')
		t.elem.appendDescriptor(b)
	case SortObject:
		b.WriteByte('L')
		b.WriteString(t.name)
		b.WriteByte(';')
	case SortMethod:
		b.WriteByte('(')
		for _, arg := range t.args {
			arg.appendDescriptor(b)
		}
		b.WriteByte(')')
		t.ret.appendDescriptor(b)
	}
}

// String returns the descriptor of this type.
func (t Type) String() string {
	return t.Descriptor()
}

// ClassName returns the source-level class name of this type, e.g. "int" or
// "java.lang.Object[]". Undefined for method types, which yield "".
func (t Type) ClassName() string {
	switch t.sort {
	case SortVoid:
		return "void"
	case SortBoolean:
		return "boolean"
	case SortChar:
		return "char"
	case SortByte:
		return "byte"
	case SortShort:
		return "short"
	case SortInt:
		return "int"
	case SortFloat:
		return "float"
	case SortLong:
		return "long"
	case SortDouble:
		return "double"
	case SortArray:
		return t.elem.ClassName() + "[]"
	case SortObject:
		return strings.ReplaceAll(t.name, "/", ".")
	default:
		return ""
	}
}

// InternalName returns the internal name of this type. For object types this
// is the slash-separated name; for array types the descriptor itself (arrays
// have no separate internal name in the format). The second result is false
// for primitives and method types.
func (t Type) InternalName() (string, bool) {
	switch t.sort {
	case SortObject:
		return t.name, true
	case SortArray:
		return t.Descriptor(), true
	default:
		return "", false
	}
}

// Size returns the number of slots values of this type occupy: 2 for long
// and double, 0 for void, 1 otherwise.
func (t Type) Size() int {
	switch t.sort {
	case SortVoid:
		return 0
	case SortLong, SortDouble:
		return 2
	default:
		return 1
	}
}

// Dimensions returns the number of dimensions of an array type, 0 otherwise.
func (t Type) Dimensions() int {
	if t.sort == SortArray {
		return 1 + t.elem.Dimensions()
	}
	return 0
}

// ElementType returns the element type of an array type. The second result
// is false for non-array types.
func (t Type) ElementType() (Type, bool) {
	if t.sort == SortArray {
		return *t.elem, true
	}
	return Type{}, false
}

// ArgumentTypes returns the argument types of a method type, nil otherwise.
func (t Type) ArgumentTypes() []Type {
	if t.sort == SortMethod {
		return t.args
	}
	return nil
}

// ReturnType returns the return type of a method type. The second result is
// false for non-method types.
func (t Type) ReturnType() (Type, bool) {
	if t.sort == SortMethod {
		return *t.ret, true
	}
	return Type{}, false
}

// ArgumentCount returns the number of arguments of a method type, 0 otherwise.
func (t Type) ArgumentCount() int {
	if t.sort == SortMethod {
		return len(t.args)
	}
	return 0
}

// Equal reports whether two types are structurally identical.
func (t Type) Equal(other Type) bool {
	if t.sort != other.sort {
		return false
	}
	switch t.sort {
	case SortObject:
		return t.name == other.name
	case SortArray:
		return t.elem.Equal(*other.elem)
	case SortMethod:
		if len(t.args) != len(other.args) {
			return false
		}
		for i := range t.args {
			if !t.args[i].Equal(other.args[i]) {
				return false
			}
		}
		return t.ret.Equal(*other.ret)
	default:
		return true
	}
}
