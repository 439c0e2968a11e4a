package classfile

// Class file magic number and common format versions.
const (
	// Magic is the class file magic number.
	Magic uint32 = 0xCAFEBABE

	// Major versions for notable Java releases.
	MajorJava8  uint16 = 52
	MajorJava11 uint16 = 55
	MajorJava17 uint16 = 61
	MajorJava21 uint16 = 65
)

// Constant pool tags define the binary identifiers for each entry kind.
// Tag 0 is not part of the format; it marks the reserved slot 0 and the
// second slot of 8-byte constants in the in-memory pool.
const (
	TagUnusable           byte = 0  // Placeholder, never written to disk
	TagUtf8               byte = 1  // CONSTANT_Utf8
	TagInteger            byte = 3  // CONSTANT_Integer
	TagFloat              byte = 4  // CONSTANT_Float
	TagLong               byte = 5  // CONSTANT_Long (two slots)
	TagDouble             byte = 6  // CONSTANT_Double (two slots)
	TagClass              byte = 7  // CONSTANT_Class
	TagString             byte = 8  // CONSTANT_String
	TagFieldref           byte = 9  // CONSTANT_Fieldref
	TagMethodref          byte = 10 // CONSTANT_Methodref
	TagInterfaceMethodref byte = 11 // CONSTANT_InterfaceMethodref
	TagNameAndType        byte = 12 // CONSTANT_NameAndType
	TagMethodHandle       byte = 15 // CONSTANT_MethodHandle
	TagMethodType         byte = 16 // CONSTANT_MethodType
	TagDynamic            byte = 17 // CONSTANT_Dynamic
	TagInvokeDynamic      byte = 18 // CONSTANT_InvokeDynamic
	TagModule             byte = 19 // CONSTANT_Module
	TagPackage            byte = 20 // CONSTANT_Package
)

// Method handle reference kinds specify the access mode a
// CONSTANT_MethodHandle represents.
const (
	RefGetField         byte = 1
	RefGetStatic        byte = 2
	RefPutField         byte = 3
	RefPutStatic        byte = 4
	RefInvokeVirtual    byte = 5
	RefInvokeStatic     byte = 6
	RefInvokeSpecial    byte = 7
	RefNewInvokeSpecial byte = 8
	RefInvokeInterface  byte = 9
)

// Access flags for classes, fields, and methods.
const (
	AccPublic     uint16 = 0x0001
	AccPrivate    uint16 = 0x0002
	AccProtected  uint16 = 0x0004
	AccStatic     uint16 = 0x0008
	AccFinal      uint16 = 0x0010
	AccSuper      uint16 = 0x0020 // ACC_SYNCHRONIZED for methods
	AccVolatile   uint16 = 0x0040 // ACC_BRIDGE for methods
	AccTransient  uint16 = 0x0080 // ACC_VARARGS for methods
	AccNative     uint16 = 0x0100
	AccInterface  uint16 = 0x0200
	AccAbstract   uint16 = 0x0400
	AccStrict     uint16 = 0x0800
	AccSynthetic  uint16 = 0x1000
	AccAnnotation uint16 = 0x2000
	AccEnum       uint16 = 0x4000
	AccModule     uint16 = 0x8000
)

// MaxPoolSlots is the format-imposed ceiling on addressable pool slots:
// indices are u16 and index 0 is reserved.
const MaxPoolSlots = 65536

// TagName returns the JVM spec name for a constant pool tag.
func TagName(tag byte) string {
	switch tag {
	case TagUnusable:
		return "Unusable"
	case TagUtf8:
		return "Utf8"
	case TagInteger:
		return "Integer"
	case TagFloat:
		return "Float"
	case TagLong:
		return "Long"
	case TagDouble:
		return "Double"
	case TagClass:
		return "Class"
	case TagString:
		return "String"
	case TagFieldref:
		return "Fieldref"
	case TagMethodref:
		return "Methodref"
	case TagInterfaceMethodref:
		return "InterfaceMethodref"
	case TagNameAndType:
		return "NameAndType"
	case TagMethodHandle:
		return "MethodHandle"
	case TagMethodType:
		return "MethodType"
	case TagDynamic:
		return "Dynamic"
	case TagInvokeDynamic:
		return "InvokeDynamic"
	case TagModule:
		return "Module"
	case TagPackage:
		return "Package"
	default:
		return "unknown"
	}
}
