package classfile

import (
	"math"

	"github.com/cubewhy/asm-go/classfile/internal/binary"
	"github.com/cubewhy/asm-go/errors"
)

// Encode serializes the class back to class file binary form. Attribute
// payloads are emitted as decoded; the Code attribute is rebuilt from the
// method's structured fields.
func (c *ClassNode) Encode() ([]byte, error) {
	w := binary.NewWriter()

	w.WriteU32(Magic)
	w.WriteU16(c.MinorVersion)
	w.WriteU16(c.MajorVersion)

	if err := encodeConstantPool(w, c.ConstantPool); err != nil {
		return nil, err
	}

	w.WriteU16(c.AccessFlags)
	w.WriteU16(c.ThisClass)
	w.WriteU16(c.SuperClass)

	w.WriteU16(uint16(len(c.InterfaceIndices)))
	for _, idx := range c.InterfaceIndices {
		w.WriteU16(idx)
	}

	w.WriteU16(uint16(len(c.Fields)))
	for i := range c.Fields {
		f := &c.Fields[i]
		w.WriteU16(f.AccessFlags)
		w.WriteU16(f.NameIndex)
		w.WriteU16(f.DescriptorIndex)
		encodeAttributes(w, f.Attributes)
	}

	w.WriteU16(uint16(len(c.Methods)))
	for i := range c.Methods {
		if err := encodeMethod(w, &c.Methods[i]); err != nil {
			return nil, err
		}
	}

	encodeAttributes(w, c.Attributes)

	return w.Bytes(), nil
}

// EncodeConstantPool serializes a raw pool into the binary layout: slot
// count followed by one tagged record per non-placeholder entry.
func EncodeConstantPool(pool []CpInfo) ([]byte, error) {
	w := binary.NewWriter()
	if err := encodeConstantPool(w, pool); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

func encodeConstantPool(w *binary.Writer, pool []CpInfo) error {
	if len(pool) > MaxPoolSlots {
		return errors.PoolOverflow(len(pool))
	}
	if len(pool) == 0 {
		w.WriteU16(1)
		return nil
	}
	w.WriteU16(uint16(len(pool)))

	for i := 1; i < len(pool); i++ {
		entry := pool[i]
		switch entry.Tag {
		case TagUnusable:
			// Second slot of a Long or Double; nothing on disk.
		case TagUtf8:
			w.Byte(TagUtf8)
			w.WriteUTF8(entry.Utf8)
		case TagInteger:
			w.Byte(TagInteger)
			w.WriteU32(uint32(entry.Int))
		case TagFloat:
			w.Byte(TagFloat)
			w.WriteU32(math.Float32bits(entry.Float))
		case TagLong:
			w.Byte(TagLong)
			w.WriteU64(uint64(entry.Long))
		case TagDouble:
			w.Byte(TagDouble)
			w.WriteU64(math.Float64bits(entry.Double))
		case TagClass, TagModule, TagPackage:
			w.Byte(entry.Tag)
			w.WriteU16(entry.NameIndex)
		case TagString:
			w.Byte(TagString)
			w.WriteU16(entry.StringIndex)
		case TagFieldref, TagMethodref, TagInterfaceMethodref:
			w.Byte(entry.Tag)
			w.WriteU16(entry.ClassIndex)
			w.WriteU16(entry.NameAndTypeIndex)
		case TagNameAndType:
			w.Byte(TagNameAndType)
			w.WriteU16(entry.NameIndex)
			w.WriteU16(entry.DescriptorIndex)
		case TagMethodHandle:
			w.Byte(TagMethodHandle)
			w.Byte(entry.ReferenceKind)
			w.WriteU16(entry.ReferenceIndex)
		case TagMethodType:
			w.Byte(TagMethodType)
			w.WriteU16(entry.DescriptorIndex)
		case TagDynamic, TagInvokeDynamic:
			w.Byte(entry.Tag)
			w.WriteU16(entry.BootstrapMethodAttrIndex)
			w.WriteU16(entry.NameAndTypeIndex)
		default:
			return errors.InvalidTag(entry.Tag, i)
		}
	}

	return nil
}

func encodeMethod(w *binary.Writer, m *MethodNode) error {
	w.WriteU16(m.AccessFlags)
	w.WriteU16(m.NameIndex)
	w.WriteU16(m.DescriptorIndex)

	attrCount := len(m.Attributes)
	if m.HasCode {
		attrCount++
	}
	w.WriteU16(uint16(attrCount))

	if m.HasCode {
		if m.CodeNameIndex == 0 {
			return errors.InvalidData(errors.PhaseEncode, []string{"method", m.Name}, "Code attribute name index is unset")
		}
		code := encodeCodeAttribute(m)
		w.WriteU16(m.CodeNameIndex)
		w.WriteU32(uint32(len(code)))
		w.WriteBytes(code)
	}

	for _, attr := range m.Attributes {
		w.WriteU16(attr.NameIndex)
		w.WriteU32(uint32(len(attr.Data)))
		w.WriteBytes(attr.Data)
	}
	return nil
}

func encodeCodeAttribute(m *MethodNode) []byte {
	w := binary.NewWriter()
	w.WriteU16(m.MaxStack)
	w.WriteU16(m.MaxLocals)
	w.WriteU32(uint32(len(m.Code)))
	w.WriteBytes(m.Code)
	w.WriteU16(uint16(len(m.ExceptionTable)))
	for _, e := range m.ExceptionTable {
		w.WriteU16(e.StartPC)
		w.WriteU16(e.EndPC)
		w.WriteU16(e.HandlerPC)
		w.WriteU16(e.CatchType)
	}
	encodeAttributes(w, m.CodeAttributes)
	return w.Bytes()
}

func encodeAttributes(w *binary.Writer, attrs []AttributeInfo) {
	w.WriteU16(uint16(len(attrs)))
	for _, attr := range attrs {
		w.WriteU16(attr.NameIndex)
		w.WriteU32(uint32(len(attr.Data)))
		w.WriteBytes(attr.Data)
	}
}
