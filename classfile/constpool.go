package classfile

import (
	"go.uber.org/zap"

	"github.com/cubewhy/asm-go/errors"
)

// CpInfo represents a single constant pool entry. The Tag field selects the
// variant; index fields address other slots in the same pool and literal
// fields carry the payload. Entries never embed other entries.
type CpInfo struct {
	Utf8   string
	Long   int64
	Double float64
	Int    int32
	Float  float32

	// NameIndex addresses a Utf8 entry (Class, Module, Package).
	NameIndex uint16
	// StringIndex addresses a Utf8 entry (String).
	StringIndex uint16
	// ClassIndex addresses a Class entry (Fieldref, Methodref, InterfaceMethodref).
	ClassIndex uint16
	// NameAndTypeIndex addresses a NameAndType entry (refs, Dynamic, InvokeDynamic).
	NameAndTypeIndex uint16
	// DescriptorIndex addresses a Utf8 entry (NameAndType, MethodType).
	DescriptorIndex uint16
	// BootstrapMethodAttrIndex addresses the class's bootstrap method table
	// (Dynamic, InvokeDynamic).
	BootstrapMethodAttrIndex uint16
	// ReferenceIndex addresses a member ref entry (MethodHandle).
	ReferenceIndex uint16
	// ReferenceKind is the method handle access mode (MethodHandle).
	ReferenceKind byte

	Tag byte
}

// Constructors for each constant pool entry kind.

func UnusableInfo() CpInfo            { return CpInfo{Tag: TagUnusable} }
func Utf8Info(value string) CpInfo    { return CpInfo{Tag: TagUtf8, Utf8: value} }
func IntegerInfo(value int32) CpInfo  { return CpInfo{Tag: TagInteger, Int: value} }
func FloatInfo(value float32) CpInfo  { return CpInfo{Tag: TagFloat, Float: value} }
func LongInfo(value int64) CpInfo     { return CpInfo{Tag: TagLong, Long: value} }
func DoubleInfo(value float64) CpInfo { return CpInfo{Tag: TagDouble, Double: value} }

func ClassInfo(nameIndex uint16) CpInfo {
	return CpInfo{Tag: TagClass, NameIndex: nameIndex}
}

func StringInfo(stringIndex uint16) CpInfo {
	return CpInfo{Tag: TagString, StringIndex: stringIndex}
}

func FieldrefInfo(classIndex, nameAndTypeIndex uint16) CpInfo {
	return CpInfo{Tag: TagFieldref, ClassIndex: classIndex, NameAndTypeIndex: nameAndTypeIndex}
}

func MethodrefInfo(classIndex, nameAndTypeIndex uint16) CpInfo {
	return CpInfo{Tag: TagMethodref, ClassIndex: classIndex, NameAndTypeIndex: nameAndTypeIndex}
}

func InterfaceMethodrefInfo(classIndex, nameAndTypeIndex uint16) CpInfo {
	return CpInfo{Tag: TagInterfaceMethodref, ClassIndex: classIndex, NameAndTypeIndex: nameAndTypeIndex}
}

func NameAndTypeInfo(nameIndex, descriptorIndex uint16) CpInfo {
	return CpInfo{Tag: TagNameAndType, NameIndex: nameIndex, DescriptorIndex: descriptorIndex}
}

func MethodHandleInfo(referenceKind byte, referenceIndex uint16) CpInfo {
	return CpInfo{Tag: TagMethodHandle, ReferenceKind: referenceKind, ReferenceIndex: referenceIndex}
}

func MethodTypeInfo(descriptorIndex uint16) CpInfo {
	return CpInfo{Tag: TagMethodType, DescriptorIndex: descriptorIndex}
}

func DynamicInfo(bootstrapMethodAttrIndex, nameAndTypeIndex uint16) CpInfo {
	return CpInfo{Tag: TagDynamic, BootstrapMethodAttrIndex: bootstrapMethodAttrIndex, NameAndTypeIndex: nameAndTypeIndex}
}

func InvokeDynamicInfo(bootstrapMethodAttrIndex, nameAndTypeIndex uint16) CpInfo {
	return CpInfo{Tag: TagInvokeDynamic, BootstrapMethodAttrIndex: bootstrapMethodAttrIndex, NameAndTypeIndex: nameAndTypeIndex}
}

func ModuleInfo(nameIndex uint16) CpInfo {
	return CpInfo{Tag: TagModule, NameIndex: nameIndex}
}

func PackageInfo(nameIndex uint16) CpInfo {
	return CpInfo{Tag: TagPackage, NameIndex: nameIndex}
}

// Deduplication map keys. Each key captures the semantic identity of a
// constant shape, not its structural encoding.

type nameAndTypeKey struct {
	name       string
	descriptor string
}

type memberRefKey struct {
	owner      string
	name       string
	descriptor string
}

type methodHandleKey struct {
	owner       string
	name        string
	descriptor  string
	kind        byte
	isInterface bool
}

type invokeDynamicKey struct {
	name       string
	descriptor string
	bootstrap  uint16
}

// ConstantPoolBuilder manages deduplicated, index-addressed storage of
// constant pool entries. Slot 0 is reserved; Long and Double entries occupy
// two consecutive slots. The builder is not safe for concurrent use.
type ConstantPoolBuilder struct {
	pool               []CpInfo
	utf8               map[string]uint16
	class              map[string]uint16
	strings            map[string]uint16
	nameAndType        map[nameAndTypeKey]uint16
	fieldRef           map[memberRefKey]uint16
	methodRef          map[memberRefKey]uint16
	interfaceMethodRef map[memberRefKey]uint16
	methodType         map[string]uint16
	methodHandle       map[methodHandleKey]uint16
	invokeDynamic      map[invokeDynamicKey]uint16
	consumed           bool
}

// NewConstantPoolBuilder creates an empty builder with the reserved
// unusable slot 0 pre-populated.
func NewConstantPoolBuilder() *ConstantPoolBuilder {
	b := &ConstantPoolBuilder{pool: []CpInfo{UnusableInfo()}}
	b.initMaps()
	return b
}

func (b *ConstantPoolBuilder) initMaps() {
	b.utf8 = make(map[string]uint16)
	b.class = make(map[string]uint16)
	b.strings = make(map[string]uint16)
	b.nameAndType = make(map[nameAndTypeKey]uint16)
	b.fieldRef = make(map[memberRefKey]uint16)
	b.methodRef = make(map[memberRefKey]uint16)
	b.interfaceMethodRef = make(map[memberRefKey]uint16)
	b.methodType = make(map[string]uint16)
	b.methodHandle = make(map[methodHandleKey]uint16)
	b.invokeDynamic = make(map[invokeDynamicKey]uint16)
}

// FromPool creates a builder pre-populated with an existing pool, preserving
// indices. Deduplication maps are rebuilt by inspecting each entry; a
// composite entry whose index fields do not resolve, transitively, to
// well-formed entries of the expected kind is left out of its map but keeps
// its slot. Such entries stay addressable by existing references; a later
// logically-equal insertion appends a fresh entry instead of reusing them.
func FromPool(pool []CpInfo) *ConstantPoolBuilder {
	cp := pool
	if len(cp) == 0 {
		cp = []CpInfo{UnusableInfo()}
	}
	b := &ConstantPoolBuilder{pool: cp}
	b.initMaps()

	for i, entry := range b.pool {
		index := uint16(i)
		switch entry.Tag {
		case TagUtf8:
			if _, ok := b.utf8[entry.Utf8]; !ok {
				b.utf8[entry.Utf8] = index
			}
		case TagClass:
			name, ok := b.cpUtf8(entry.NameIndex)
			if !ok {
				b.skipAdopted(index, entry)
				continue
			}
			if _, dup := b.class[name]; !dup {
				b.class[name] = index
			}
		case TagString:
			value, ok := b.cpUtf8(entry.StringIndex)
			if !ok {
				b.skipAdopted(index, entry)
				continue
			}
			if _, dup := b.strings[value]; !dup {
				b.strings[value] = index
			}
		case TagNameAndType:
			name, okName := b.cpUtf8(entry.NameIndex)
			desc, okDesc := b.cpUtf8(entry.DescriptorIndex)
			if !okName || !okDesc {
				b.skipAdopted(index, entry)
				continue
			}
			key := nameAndTypeKey{name, desc}
			if _, dup := b.nameAndType[key]; !dup {
				b.nameAndType[key] = index
			}
		case TagFieldref, TagMethodref, TagInterfaceMethodref:
			owner, okOwner := b.cpClassName(entry.ClassIndex)
			name, desc, okNat := b.cpNameAndType(entry.NameAndTypeIndex)
			if !okOwner || !okNat {
				b.skipAdopted(index, entry)
				continue
			}
			key := memberRefKey{owner, name, desc}
			m := b.methodRef
			switch entry.Tag {
			case TagFieldref:
				m = b.fieldRef
			case TagInterfaceMethodref:
				m = b.interfaceMethodRef
			}
			if _, dup := m[key]; !dup {
				m[key] = index
			}
		case TagMethodType:
			desc, ok := b.cpUtf8(entry.DescriptorIndex)
			if !ok {
				b.skipAdopted(index, entry)
				continue
			}
			if _, dup := b.methodType[desc]; !dup {
				b.methodType[desc] = index
			}
		case TagMethodHandle:
			owner, name, desc, isInterface, ok := b.cpMemberRef(entry.ReferenceIndex)
			if !ok {
				b.skipAdopted(index, entry)
				continue
			}
			key := methodHandleKey{owner, name, desc, entry.ReferenceKind, isInterface}
			if _, dup := b.methodHandle[key]; !dup {
				b.methodHandle[key] = index
			}
		case TagInvokeDynamic:
			name, desc, ok := b.cpNameAndType(entry.NameAndTypeIndex)
			if !ok {
				b.skipAdopted(index, entry)
				continue
			}
			key := invokeDynamicKey{name, desc, entry.BootstrapMethodAttrIndex}
			if _, dup := b.invokeDynamic[key]; !dup {
				b.invokeDynamic[key] = index
			}
		}
	}

	return b
}

// skipAdopted records an adopted entry whose dependencies did not resolve.
// The entry keeps its slot but is excluded from deduplication.
func (b *ConstantPoolBuilder) skipAdopted(index uint16, entry CpInfo) {
	Logger().Debug("adopted pool entry excluded from dedup",
		zap.Uint16("index", index),
		zap.String("tag", TagName(entry.Tag)))
}

func (b *ConstantPoolBuilder) cpUtf8(index uint16) (string, bool) {
	if int(index) >= len(b.pool) || b.pool[index].Tag != TagUtf8 {
		return "", false
	}
	return b.pool[index].Utf8, true
}

func (b *ConstantPoolBuilder) cpClassName(index uint16) (string, bool) {
	if int(index) >= len(b.pool) || b.pool[index].Tag != TagClass {
		return "", false
	}
	return b.cpUtf8(b.pool[index].NameIndex)
}

func (b *ConstantPoolBuilder) cpNameAndType(index uint16) (name, descriptor string, ok bool) {
	if int(index) >= len(b.pool) || b.pool[index].Tag != TagNameAndType {
		return "", "", false
	}
	entry := b.pool[index]
	name, okName := b.cpUtf8(entry.NameIndex)
	descriptor, okDesc := b.cpUtf8(entry.DescriptorIndex)
	return name, descriptor, okName && okDesc
}

func (b *ConstantPoolBuilder) cpMemberRef(index uint16) (owner, name, descriptor string, isInterface, ok bool) {
	if int(index) >= len(b.pool) {
		return "", "", "", false, false
	}
	entry := b.pool[index]
	switch entry.Tag {
	case TagFieldref, TagMethodref, TagInterfaceMethodref:
		owner, okOwner := b.cpClassName(entry.ClassIndex)
		name, descriptor, okNat := b.cpNameAndType(entry.NameAndTypeIndex)
		if !okOwner || !okNat {
			return "", "", "", false, false
		}
		return owner, name, descriptor, entry.Tag == TagInterfaceMethodref, true
	default:
		return "", "", "", false, false
	}
}

// Pool consumes the builder and returns the entry sequence. The builder
// cannot be used afterwards; further insertions fail.
func (b *ConstantPoolBuilder) Pool() ([]CpInfo, error) {
	if b.consumed {
		return nil, errors.Consumed("constant pool builder")
	}
	b.consumed = true
	pool := b.pool
	b.pool = nil
	b.utf8 = nil
	b.class = nil
	b.strings = nil
	b.nameAndType = nil
	b.fieldRef = nil
	b.methodRef = nil
	b.interfaceMethodRef = nil
	b.methodType = nil
	b.methodHandle = nil
	b.invokeDynamic = nil
	return pool, nil
}

// Len returns the current number of slots, including slot 0 and the
// placeholder slots of 8-byte constants.
func (b *ConstantPoolBuilder) Len() int {
	return len(b.pool)
}

// At returns the entry at the given index.
func (b *ConstantPoolBuilder) At(index uint16) (CpInfo, bool) {
	if int(index) >= len(b.pool) {
		return CpInfo{}, false
	}
	return b.pool[index], true
}

func (b *ConstantPoolBuilder) push(entry CpInfo) (uint16, error) {
	if b.consumed {
		return 0, errors.Consumed("constant pool builder")
	}
	if len(b.pool) >= MaxPoolSlots {
		return 0, errors.PoolOverflow(len(b.pool))
	}
	b.pool = append(b.pool, entry)
	return uint16(len(b.pool) - 1), nil
}

// pushWide appends an 8-byte constant followed by its unusable placeholder.
func (b *ConstantPoolBuilder) pushWide(entry CpInfo) (uint16, error) {
	if b.consumed {
		return 0, errors.Consumed("constant pool builder")
	}
	if len(b.pool)+2 > MaxPoolSlots {
		return 0, errors.PoolOverflow(len(b.pool))
	}
	b.pool = append(b.pool, entry, UnusableInfo())
	return uint16(len(b.pool) - 2), nil
}

// Utf8 adds a UTF-8 string constant, reusing an existing entry with the
// same value.
func (b *ConstantPoolBuilder) Utf8(value string) (uint16, error) {
	if index, ok := b.utf8[value]; ok {
		return index, nil
	}
	index, err := b.push(Utf8Info(value))
	if err != nil {
		return 0, err
	}
	b.utf8[value] = index
	return index, nil
}

// Class adds a Class constant, recursively adding the UTF-8 name.
func (b *ConstantPoolBuilder) Class(name string) (uint16, error) {
	if index, ok := b.class[name]; ok {
		return index, nil
	}
	nameIndex, err := b.Utf8(name)
	if err != nil {
		return 0, err
	}
	index, err := b.push(ClassInfo(nameIndex))
	if err != nil {
		return 0, err
	}
	b.class[name] = index
	return index, nil
}

// String adds a String constant for a string literal.
func (b *ConstantPoolBuilder) String(value string) (uint16, error) {
	if index, ok := b.strings[value]; ok {
		return index, nil
	}
	stringIndex, err := b.Utf8(value)
	if err != nil {
		return 0, err
	}
	index, err := b.push(StringInfo(stringIndex))
	if err != nil {
		return 0, err
	}
	b.strings[value] = index
	return index, nil
}

// Integer adds an Integer constant. Numeric literals are never
// deduplicated; each call appends a fresh entry.
func (b *ConstantPoolBuilder) Integer(value int32) (uint16, error) {
	return b.push(IntegerInfo(value))
}

// Float adds a Float constant. Not deduplicated.
func (b *ConstantPoolBuilder) Float(value float32) (uint16, error) {
	return b.push(FloatInfo(value))
}

// Long adds a Long constant, consuming two consecutive slots. The returned
// index is the primary slot; the placeholder is never separately addressable.
// Not deduplicated.
func (b *ConstantPoolBuilder) Long(value int64) (uint16, error) {
	return b.pushWide(LongInfo(value))
}

// Double adds a Double constant, consuming two consecutive slots.
// Not deduplicated.
func (b *ConstantPoolBuilder) Double(value float64) (uint16, error) {
	return b.pushWide(DoubleInfo(value))
}

// NameAndType adds a NameAndType constant for a member name and descriptor.
func (b *ConstantPoolBuilder) NameAndType(name, descriptor string) (uint16, error) {
	key := nameAndTypeKey{name, descriptor}
	if index, ok := b.nameAndType[key]; ok {
		return index, nil
	}
	nameIndex, err := b.Utf8(name)
	if err != nil {
		return 0, err
	}
	descriptorIndex, err := b.Utf8(descriptor)
	if err != nil {
		return 0, err
	}
	index, err := b.push(NameAndTypeInfo(nameIndex, descriptorIndex))
	if err != nil {
		return 0, err
	}
	b.nameAndType[key] = index
	return index, nil
}

// FieldRef adds a Fieldref constant.
func (b *ConstantPoolBuilder) FieldRef(owner, name, descriptor string) (uint16, error) {
	return b.memberRef(TagFieldref, b.fieldRef, owner, name, descriptor)
}

// MethodRef adds a Methodref constant.
func (b *ConstantPoolBuilder) MethodRef(owner, name, descriptor string) (uint16, error) {
	return b.memberRef(TagMethodref, b.methodRef, owner, name, descriptor)
}

// InterfaceMethodRef adds an InterfaceMethodref constant.
func (b *ConstantPoolBuilder) InterfaceMethodRef(owner, name, descriptor string) (uint16, error) {
	return b.memberRef(TagInterfaceMethodref, b.interfaceMethodRef, owner, name, descriptor)
}

func (b *ConstantPoolBuilder) memberRef(tag byte, m map[memberRefKey]uint16, owner, name, descriptor string) (uint16, error) {
	key := memberRefKey{owner, name, descriptor}
	if index, ok := m[key]; ok {
		return index, nil
	}
	classIndex, err := b.Class(owner)
	if err != nil {
		return 0, err
	}
	nameAndTypeIndex, err := b.NameAndType(name, descriptor)
	if err != nil {
		return 0, err
	}
	index, err := b.push(CpInfo{Tag: tag, ClassIndex: classIndex, NameAndTypeIndex: nameAndTypeIndex})
	if err != nil {
		return 0, err
	}
	m[key] = index
	return index, nil
}

// MethodType adds a MethodType constant for a method descriptor.
func (b *ConstantPoolBuilder) MethodType(descriptor string) (uint16, error) {
	if index, ok := b.methodType[descriptor]; ok {
		return index, nil
	}
	descriptorIndex, err := b.Utf8(descriptor)
	if err != nil {
		return 0, err
	}
	index, err := b.push(MethodTypeInfo(descriptorIndex))
	if err != nil {
		return 0, err
	}
	b.methodType[descriptor] = index
	return index, nil
}

// MethodHandle adds a MethodHandle constant. The referenced member is
// resolved through the field path for kinds 1-4, the interface method path
// for kind 9, and the plain method path otherwise. This mapping is fixed by
// the class file format.
func (b *ConstantPoolBuilder) MethodHandle(handle Handle) (uint16, error) {
	key := methodHandleKey{handle.Owner, handle.Name, handle.Descriptor, handle.ReferenceKind, handle.IsInterface}
	if index, ok := b.methodHandle[key]; ok {
		return index, nil
	}
	var referenceIndex uint16
	var err error
	switch handle.ReferenceKind {
	case RefGetField, RefGetStatic, RefPutField, RefPutStatic:
		referenceIndex, err = b.FieldRef(handle.Owner, handle.Name, handle.Descriptor)
	case RefInvokeInterface:
		referenceIndex, err = b.InterfaceMethodRef(handle.Owner, handle.Name, handle.Descriptor)
	default:
		referenceIndex, err = b.MethodRef(handle.Owner, handle.Name, handle.Descriptor)
	}
	if err != nil {
		return 0, err
	}
	index, err := b.push(MethodHandleInfo(handle.ReferenceKind, referenceIndex))
	if err != nil {
		return 0, err
	}
	b.methodHandle[key] = index
	return index, nil
}

// InvokeDynamic adds an InvokeDynamic constant for a call site bound to the
// given bootstrap method table index.
func (b *ConstantPoolBuilder) InvokeDynamic(bootstrapIndex uint16, name, descriptor string) (uint16, error) {
	key := invokeDynamicKey{name, descriptor, bootstrapIndex}
	if index, ok := b.invokeDynamic[key]; ok {
		return index, nil
	}
	nameAndTypeIndex, err := b.NameAndType(name, descriptor)
	if err != nil {
		return 0, err
	}
	index, err := b.push(InvokeDynamicInfo(bootstrapIndex, nameAndTypeIndex))
	if err != nil {
		return 0, err
	}
	b.invokeDynamic[key] = index
	return index, nil
}
