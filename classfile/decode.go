package classfile

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"math"

	"github.com/cubewhy/asm-go/classfile/internal/binary"
	"github.com/cubewhy/asm-go/errors"
)

// Parsing errors returned by ParseClass.
var (
	ErrInvalidMagic = stderrors.New("invalid class file magic number")
)

// PoolUtf8 resolves a Utf8 entry in a raw pool. The second result is false
// when the index is out of range or addresses a different kind.
func PoolUtf8(pool []CpInfo, index uint16) (string, bool) {
	if int(index) >= len(pool) || pool[index].Tag != TagUtf8 {
		return "", false
	}
	return pool[index].Utf8, true
}

// PoolClassName resolves a Class entry's name through a raw pool.
func PoolClassName(pool []CpInfo, index uint16) (string, bool) {
	if int(index) >= len(pool) || pool[index].Tag != TagClass {
		return "", false
	}
	return PoolUtf8(pool, pool[index].NameIndex)
}

// ParseClass parses a class file binary into a ClassNode.
func ParseClass(data []byte) (*ClassNode, error) {
	r := binary.NewReader(bytes.NewReader(data))

	magic, err := r.ReadU32()
	if err != nil {
		return nil, r.WrapError("header", err)
	}
	if magic != Magic {
		return nil, ErrInvalidMagic
	}

	c := &ClassNode{}

	if c.MinorVersion, err = r.ReadU16(); err != nil {
		return nil, r.WrapError("header", err)
	}
	if c.MajorVersion, err = r.ReadU16(); err != nil {
		return nil, r.WrapError("header", err)
	}

	if c.ConstantPool, err = parseConstantPool(r); err != nil {
		return nil, fmt.Errorf("constant pool: %w", err)
	}

	if c.AccessFlags, err = r.ReadU16(); err != nil {
		return nil, r.WrapError("access flags", err)
	}
	if c.ThisClass, err = r.ReadU16(); err != nil {
		return nil, r.WrapError("this class", err)
	}
	if c.SuperClass, err = r.ReadU16(); err != nil {
		return nil, r.WrapError("super class", err)
	}

	if name, ok := PoolClassName(c.ConstantPool, c.ThisClass); ok {
		c.Name = name
	} else {
		return nil, errors.BadReference(errors.PhaseDecode, []string{"this_class"}, c.ThisClass, "Class", tagAt(c.ConstantPool, c.ThisClass))
	}
	if c.SuperClass != 0 {
		if name, ok := PoolClassName(c.ConstantPool, c.SuperClass); ok {
			c.SuperName = name
		} else {
			return nil, errors.BadReference(errors.PhaseDecode, []string{"super_class"}, c.SuperClass, "Class", tagAt(c.ConstantPool, c.SuperClass))
		}
	}

	ifaceCount, err := r.ReadU16()
	if err != nil {
		return nil, r.WrapError("interfaces", err)
	}
	for i := 0; i < int(ifaceCount); i++ {
		idx, err := r.ReadU16()
		if err != nil {
			return nil, r.WrapError("interfaces", err)
		}
		name, ok := PoolClassName(c.ConstantPool, idx)
		if !ok {
			return nil, errors.BadReference(errors.PhaseDecode, []string{"interfaces", fmt.Sprint(i)}, idx, "Class", tagAt(c.ConstantPool, idx))
		}
		c.InterfaceIndices = append(c.InterfaceIndices, idx)
		c.Interfaces = append(c.Interfaces, name)
	}

	if err := parseFields(r, c); err != nil {
		return nil, fmt.Errorf("fields: %w", err)
	}
	if err := parseMethods(r, c); err != nil {
		return nil, fmt.Errorf("methods: %w", err)
	}

	attrs, err := parseAttributes(r, c.ConstantPool)
	if err != nil {
		return nil, fmt.Errorf("class attributes: %w", err)
	}
	c.Attributes = attrs

	for _, attr := range attrs {
		switch attr.Name {
		case "SourceFile":
			if err := parseSourceFile(c, attr); err != nil {
				return nil, fmt.Errorf("SourceFile attribute: %w", err)
			}
		case "InnerClasses":
			if err := parseInnerClasses(c, attr); err != nil {
				return nil, fmt.Errorf("InnerClasses attribute: %w", err)
			}
		}
	}

	return c, nil
}

func tagAt(pool []CpInfo, index uint16) string {
	if int(index) >= len(pool) {
		return "out of range"
	}
	return TagName(pool[index].Tag)
}

// DecodeConstantPool decodes the binary constant pool layout: a u2 slot
// count followed by one tagged record per non-placeholder entry, starting at
// logical index 1. Long and Double records consume two slots.
func DecodeConstantPool(data []byte) ([]CpInfo, error) {
	r := binary.NewReader(bytes.NewReader(data))
	return parseConstantPool(r)
}

func parseConstantPool(r *binary.Reader) ([]CpInfo, error) {
	count, err := r.ReadU16()
	if err != nil {
		return nil, r.WrapError("count", err)
	}

	capacity := int(count)
	if capacity < 1 {
		capacity = 1
	}
	pool := make([]CpInfo, 1, capacity)
	pool[0] = UnusableInfo()

	for len(pool) < int(count) {
		index := len(pool)
		tag, err := r.ReadByte()
		if err != nil {
			return nil, errors.Truncated(errors.PhaseDecode, "constant pool", err)
		}

		switch tag {
		case TagUtf8:
			value, err := r.ReadUTF8()
			if err != nil {
				return nil, r.WrapError("Utf8", err)
			}
			pool = append(pool, Utf8Info(value))
		case TagInteger:
			v, err := r.ReadU32()
			if err != nil {
				return nil, r.WrapError("Integer", err)
			}
			pool = append(pool, IntegerInfo(int32(v)))
		case TagFloat:
			v, err := r.ReadU32()
			if err != nil {
				return nil, r.WrapError("Float", err)
			}
			pool = append(pool, FloatInfo(math.Float32frombits(v)))
		case TagLong:
			v, err := r.ReadU64()
			if err != nil {
				return nil, r.WrapError("Long", err)
			}
			pool = append(pool, LongInfo(int64(v)), UnusableInfo())
		case TagDouble:
			v, err := r.ReadU64()
			if err != nil {
				return nil, r.WrapError("Double", err)
			}
			pool = append(pool, DoubleInfo(math.Float64frombits(v)), UnusableInfo())
		case TagClass, TagModule, TagPackage:
			nameIndex, err := r.ReadU16()
			if err != nil {
				return nil, r.WrapError(TagName(tag), err)
			}
			pool = append(pool, CpInfo{Tag: tag, NameIndex: nameIndex})
		case TagString:
			stringIndex, err := r.ReadU16()
			if err != nil {
				return nil, r.WrapError("String", err)
			}
			pool = append(pool, StringInfo(stringIndex))
		case TagFieldref, TagMethodref, TagInterfaceMethodref:
			classIndex, err := r.ReadU16()
			if err != nil {
				return nil, r.WrapError(TagName(tag), err)
			}
			natIndex, err := r.ReadU16()
			if err != nil {
				return nil, r.WrapError(TagName(tag), err)
			}
			pool = append(pool, CpInfo{Tag: tag, ClassIndex: classIndex, NameAndTypeIndex: natIndex})
		case TagNameAndType:
			nameIndex, err := r.ReadU16()
			if err != nil {
				return nil, r.WrapError("NameAndType", err)
			}
			descIndex, err := r.ReadU16()
			if err != nil {
				return nil, r.WrapError("NameAndType", err)
			}
			pool = append(pool, NameAndTypeInfo(nameIndex, descIndex))
		case TagMethodHandle:
			kind, err := r.ReadByte()
			if err != nil {
				return nil, r.WrapError("MethodHandle", err)
			}
			refIndex, err := r.ReadU16()
			if err != nil {
				return nil, r.WrapError("MethodHandle", err)
			}
			pool = append(pool, MethodHandleInfo(kind, refIndex))
		case TagMethodType:
			descIndex, err := r.ReadU16()
			if err != nil {
				return nil, r.WrapError("MethodType", err)
			}
			pool = append(pool, MethodTypeInfo(descIndex))
		case TagDynamic, TagInvokeDynamic:
			bsmIndex, err := r.ReadU16()
			if err != nil {
				return nil, r.WrapError(TagName(tag), err)
			}
			natIndex, err := r.ReadU16()
			if err != nil {
				return nil, r.WrapError(TagName(tag), err)
			}
			pool = append(pool, CpInfo{Tag: tag, BootstrapMethodAttrIndex: bsmIndex, NameAndTypeIndex: natIndex})
		default:
			return nil, errors.InvalidTag(tag, index)
		}
	}

	return pool, nil
}

func parseFields(r *binary.Reader, c *ClassNode) error {
	count, err := r.ReadU16()
	if err != nil {
		return err
	}
	for i := 0; i < int(count); i++ {
		var f FieldNode
		if f.AccessFlags, err = r.ReadU16(); err != nil {
			return err
		}
		if f.NameIndex, err = r.ReadU16(); err != nil {
			return err
		}
		if f.DescriptorIndex, err = r.ReadU16(); err != nil {
			return err
		}
		name, ok := PoolUtf8(c.ConstantPool, f.NameIndex)
		if !ok {
			return errors.BadReference(errors.PhaseDecode, []string{"field", fmt.Sprint(i)}, f.NameIndex, "Utf8", tagAt(c.ConstantPool, f.NameIndex))
		}
		desc, ok := PoolUtf8(c.ConstantPool, f.DescriptorIndex)
		if !ok {
			return errors.BadReference(errors.PhaseDecode, []string{"field", fmt.Sprint(i)}, f.DescriptorIndex, "Utf8", tagAt(c.ConstantPool, f.DescriptorIndex))
		}
		f.Name = name
		f.Descriptor = desc
		if f.Attributes, err = parseAttributes(r, c.ConstantPool); err != nil {
			return err
		}
		c.Fields = append(c.Fields, f)
	}
	return nil
}

func parseMethods(r *binary.Reader, c *ClassNode) error {
	count, err := r.ReadU16()
	if err != nil {
		return err
	}
	for i := 0; i < int(count); i++ {
		var m MethodNode
		if m.AccessFlags, err = r.ReadU16(); err != nil {
			return err
		}
		if m.NameIndex, err = r.ReadU16(); err != nil {
			return err
		}
		if m.DescriptorIndex, err = r.ReadU16(); err != nil {
			return err
		}
		name, ok := PoolUtf8(c.ConstantPool, m.NameIndex)
		if !ok {
			return errors.BadReference(errors.PhaseDecode, []string{"method", fmt.Sprint(i)}, m.NameIndex, "Utf8", tagAt(c.ConstantPool, m.NameIndex))
		}
		desc, ok := PoolUtf8(c.ConstantPool, m.DescriptorIndex)
		if !ok {
			return errors.BadReference(errors.PhaseDecode, []string{"method", fmt.Sprint(i)}, m.DescriptorIndex, "Utf8", tagAt(c.ConstantPool, m.DescriptorIndex))
		}
		m.Name = name
		m.Descriptor = desc

		attrs, err := parseAttributes(r, c.ConstantPool)
		if err != nil {
			return err
		}
		for _, attr := range attrs {
			if attr.Name == "Code" && !m.HasCode {
				if err := parseCodeAttribute(&m, attr, c.ConstantPool); err != nil {
					return fmt.Errorf("Code attribute of %s%s: %w", name, desc, err)
				}
				continue
			}
			m.Attributes = append(m.Attributes, attr)
		}
		c.Methods = append(c.Methods, m)
	}
	return nil
}

func parseAttributes(r *binary.Reader, pool []CpInfo) ([]AttributeInfo, error) {
	count, err := r.ReadU16()
	if err != nil {
		return nil, err
	}
	var attrs []AttributeInfo
	for i := 0; i < int(count); i++ {
		nameIndex, err := r.ReadU16()
		if err != nil {
			return nil, err
		}
		length, err := r.ReadU32()
		if err != nil {
			return nil, err
		}
		data, err := r.ReadBytes(int(length))
		if err != nil {
			return nil, errors.Truncated(errors.PhaseDecode, "attribute", err)
		}
		name, _ := PoolUtf8(pool, nameIndex)
		attrs = append(attrs, AttributeInfo{NameIndex: nameIndex, Name: name, Data: data})
	}
	return attrs, nil
}

func parseCodeAttribute(m *MethodNode, attr AttributeInfo, pool []CpInfo) error {
	r := binary.NewReader(bytes.NewReader(attr.Data))
	var err error
	if m.MaxStack, err = r.ReadU16(); err != nil {
		return err
	}
	if m.MaxLocals, err = r.ReadU16(); err != nil {
		return err
	}
	codeLen, err := r.ReadU32()
	if err != nil {
		return err
	}
	if m.Code, err = r.ReadBytes(int(codeLen)); err != nil {
		return errors.Truncated(errors.PhaseDecode, "bytecode", err)
	}
	tableLen, err := r.ReadU16()
	if err != nil {
		return err
	}
	for i := 0; i < int(tableLen); i++ {
		var e ExceptionTableEntry
		if e.StartPC, err = r.ReadU16(); err != nil {
			return err
		}
		if e.EndPC, err = r.ReadU16(); err != nil {
			return err
		}
		if e.HandlerPC, err = r.ReadU16(); err != nil {
			return err
		}
		if e.CatchType, err = r.ReadU16(); err != nil {
			return err
		}
		m.ExceptionTable = append(m.ExceptionTable, e)
	}
	if m.CodeAttributes, err = parseAttributes(r, pool); err != nil {
		return err
	}
	m.HasCode = true
	m.CodeNameIndex = attr.NameIndex
	return nil
}

func parseSourceFile(c *ClassNode, attr AttributeInfo) error {
	r := binary.NewReader(bytes.NewReader(attr.Data))
	index, err := r.ReadU16()
	if err != nil {
		return err
	}
	name, ok := PoolUtf8(c.ConstantPool, index)
	if !ok {
		return errors.BadReference(errors.PhaseDecode, []string{"SourceFile"}, index, "Utf8", tagAt(c.ConstantPool, index))
	}
	c.SourceFile = name
	return nil
}

func parseInnerClasses(c *ClassNode, attr AttributeInfo) error {
	r := binary.NewReader(bytes.NewReader(attr.Data))
	count, err := r.ReadU16()
	if err != nil {
		return err
	}
	for i := 0; i < int(count); i++ {
		innerIndex, err := r.ReadU16()
		if err != nil {
			return err
		}
		outerIndex, err := r.ReadU16()
		if err != nil {
			return err
		}
		nameIndex, err := r.ReadU16()
		if err != nil {
			return err
		}
		flags, err := r.ReadU16()
		if err != nil {
			return err
		}

		var icn InnerClassNode
		icn.AccessFlags = flags
		if name, ok := PoolClassName(c.ConstantPool, innerIndex); ok {
			icn.Name = name
		}
		if outerIndex != 0 {
			if name, ok := PoolClassName(c.ConstantPool, outerIndex); ok {
				icn.OuterName = name
			}
		}
		if nameIndex != 0 {
			if name, ok := PoolUtf8(c.ConstantPool, nameIndex); ok {
				icn.InnerName = name
			}
		}
		c.InnerClasses = append(c.InnerClasses, icn)

		if icn.Name != "" && icn.Name == c.Name && icn.OuterName != "" {
			c.OuterClass = icn.OuterName
		}
	}
	return nil
}
