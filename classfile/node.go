package classfile

// ClassNode represents a parsed Java class file: header fields, constant
// pool, interfaces, fields, methods, and attributes.
type ClassNode struct {
	// MinorVersion and MajorVersion identify the class file format version
	// (e.g. major 52 for Java 8, 61 for Java 17).
	MinorVersion uint16
	MajorVersion uint16

	// AccessFlags is a bitmask of AccPublic, AccFinal, AccInterface, etc.
	AccessFlags uint16

	// ConstantPool is the raw pool. Index 0 is reserved.
	ConstantPool []CpInfo

	// ThisClass and SuperClass are the pool indices of the Class entries
	// for this class and its superclass (SuperClass is 0 for
	// java/lang/Object).
	ThisClass  uint16
	SuperClass uint16

	// Name is the internal name of the class (e.g. "java/lang/String").
	Name string

	// SuperName is the internal name of the superclass; empty for
	// java/lang/Object and module-info.
	SuperName string

	// SourceFile is the source file name, when the SourceFile attribute
	// was present.
	SourceFile string

	// Interfaces holds the internal names of the direct superinterfaces.
	Interfaces []string

	// InterfaceIndices holds the pool indices of the direct superinterfaces.
	InterfaceIndices []uint16

	Fields  []FieldNode
	Methods []MethodNode

	// Attributes holds the class-level attributes in raw form.
	Attributes []AttributeInfo

	// InnerClasses is the decoded view of the InnerClasses attribute.
	InnerClasses []InnerClassNode

	// OuterClass is the internal name of the enclosing class, when known.
	OuterClass string
}

// IsInterface reports whether the class is an interface.
func (c *ClassNode) IsInterface() bool {
	return c.AccessFlags&AccInterface != 0
}

// Method returns the first method with the given name and descriptor.
func (c *ClassNode) Method(name, descriptor string) *MethodNode {
	for i := range c.Methods {
		if c.Methods[i].Name == name && c.Methods[i].Descriptor == descriptor {
			return &c.Methods[i]
		}
	}
	return nil
}

// Field returns the first field with the given name.
func (c *ClassNode) Field(name string) *FieldNode {
	for i := range c.Fields {
		if c.Fields[i].Name == name {
			return &c.Fields[i]
		}
	}
	return nil
}

// InnerClassNode represents one entry of the InnerClasses attribute.
type InnerClassNode struct {
	// Name is the internal name of the inner class (e.g. "a/b/Outer$Inner").
	Name string

	// OuterName is the internal name of the enclosing class, when present.
	OuterName string

	// InnerName is the simple name of the inner class; empty for anonymous
	// classes.
	InnerName string

	// AccessFlags holds the access flags as declared in source.
	AccessFlags uint16
}

// FieldNode represents a field declared by a class or interface.
type FieldNode struct {
	// AccessFlags is a bitmask of AccPublic, AccStatic, AccFinal, etc.
	AccessFlags uint16

	// NameIndex and DescriptorIndex are the pool indices of the field's
	// name and descriptor.
	NameIndex       uint16
	DescriptorIndex uint16

	// Name is the field name.
	Name string

	// Descriptor is the field descriptor (e.g. "Ljava/lang/String;" or "I").
	Descriptor string

	// Attributes holds the field attributes in raw form (ConstantValue,
	// Synthetic, Signature, ...).
	Attributes []AttributeInfo
}

// MethodNode represents a method declared by a class or interface.
type MethodNode struct {
	// AccessFlags is a bitmask of AccPublic, AccStatic, etc.
	AccessFlags uint16

	// NameIndex and DescriptorIndex are the pool indices of the method's
	// name and descriptor.
	NameIndex       uint16
	DescriptorIndex uint16

	// CodeNameIndex is the pool index of the "Code" attribute name, kept
	// so the Code attribute can be re-encoded. Zero when HasCode is false.
	CodeNameIndex uint16

	// Name is the method name.
	Name string

	// Descriptor is the method descriptor (e.g. "(I)V").
	Descriptor string

	// HasCode reports whether the method carried a Code attribute. It is
	// false for native and abstract methods.
	HasCode bool

	// MaxStack and MaxLocals are the operand stack and local variable
	// slot counts from the Code attribute.
	MaxStack  uint16
	MaxLocals uint16

	// Code holds the raw bytecode of the Code attribute. Instruction
	// decoding is left to the caller.
	Code []byte

	// ExceptionTable holds the raw exception handler entries.
	ExceptionTable []ExceptionTableEntry

	// CodeAttributes holds the attributes nested inside the Code attribute
	// (LineNumberTable, LocalVariableTable, ...).
	CodeAttributes []AttributeInfo

	// Attributes holds the remaining method attributes (Exceptions,
	// Signature, ...).
	Attributes []AttributeInfo
}

// ExceptionTableEntry is one handler range in a Code attribute.
type ExceptionTableEntry struct {
	StartPC   uint16
	EndPC     uint16
	HandlerPC uint16
	// CatchType is the pool index of the caught Class, 0 for catch-all.
	CatchType uint16
}

// AttributeInfo holds a generic attribute as an opaque blob.
type AttributeInfo struct {
	// NameIndex is the pool index of the attribute name.
	NameIndex uint16

	// Name is the resolved attribute name (e.g. "Code", "SourceFile").
	Name string

	// Data is the raw attribute payload.
	Data []byte
}

// Handle describes a method handle: an access mode plus the referenced
// member. It is the structural input for MethodHandle pool constants.
type Handle struct {
	// Owner is the internal name of the class owning the member.
	Owner string

	// Name is the member name.
	Name string

	// Descriptor is the member's field or method descriptor.
	Descriptor string

	// ReferenceKind is one of the Ref* constants.
	ReferenceKind byte

	// IsInterface reports whether the owner is an interface.
	IsInterface bool
}
