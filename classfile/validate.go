package classfile

import (
	"fmt"

	"github.com/cubewhy/asm-go/errors"
)

// ValidatePool checks the structural integrity of a raw constant pool: slot
// 0 is unusable, every index field addresses an entry of the expected tag,
// and 8-byte constants are followed by their placeholder slot.
func ValidatePool(pool []CpInfo) error {
	if len(pool) == 0 {
		return nil
	}
	if len(pool) > MaxPoolSlots {
		return errors.PoolOverflow(len(pool))
	}
	if pool[0].Tag != TagUnusable {
		return errors.InvalidData(errors.PhaseValidate, []string{"pool", "0"},
			fmt.Sprintf("slot 0 must be unusable, got %s", TagName(pool[0].Tag)))
	}

	for i := 1; i < len(pool); i++ {
		entry := pool[i]
		path := []string{"pool", fmt.Sprint(i)}

		switch entry.Tag {
		case TagUnusable, TagUtf8, TagInteger, TagFloat:
		case TagLong, TagDouble:
			if i+1 >= len(pool) || pool[i+1].Tag != TagUnusable {
				return errors.InvalidData(errors.PhaseValidate, path,
					fmt.Sprintf("%s entry not followed by a placeholder slot", TagName(entry.Tag)))
			}
			i++
		case TagClass, TagModule, TagPackage:
			if err := expectTag(pool, path, entry.NameIndex, TagUtf8); err != nil {
				return err
			}
		case TagString:
			if err := expectTag(pool, path, entry.StringIndex, TagUtf8); err != nil {
				return err
			}
		case TagNameAndType:
			if err := expectTag(pool, path, entry.NameIndex, TagUtf8); err != nil {
				return err
			}
			if err := expectTag(pool, path, entry.DescriptorIndex, TagUtf8); err != nil {
				return err
			}
		case TagFieldref, TagMethodref, TagInterfaceMethodref:
			if err := expectTag(pool, path, entry.ClassIndex, TagClass); err != nil {
				return err
			}
			if err := expectTag(pool, path, entry.NameAndTypeIndex, TagNameAndType); err != nil {
				return err
			}
		case TagMethodType:
			if err := expectTag(pool, path, entry.DescriptorIndex, TagUtf8); err != nil {
				return err
			}
		case TagMethodHandle:
			if entry.ReferenceKind < RefGetField || entry.ReferenceKind > RefInvokeInterface {
				return errors.InvalidData(errors.PhaseValidate, path,
					fmt.Sprintf("reference kind %d out of range 1-9", entry.ReferenceKind))
			}
			if err := expectMemberRef(pool, path, entry.ReferenceIndex); err != nil {
				return err
			}
		case TagDynamic, TagInvokeDynamic:
			if err := expectTag(pool, path, entry.NameAndTypeIndex, TagNameAndType); err != nil {
				return err
			}
		default:
			return errors.InvalidTag(entry.Tag, i)
		}
	}

	return nil
}

func expectTag(pool []CpInfo, path []string, index uint16, want byte) error {
	if int(index) >= len(pool) {
		return errors.OutOfBounds(errors.PhaseValidate, path, int(index), len(pool))
	}
	if got := pool[index].Tag; got != want {
		return errors.BadReference(errors.PhaseValidate, path, index, TagName(want), TagName(got))
	}
	return nil
}

func expectMemberRef(pool []CpInfo, path []string, index uint16) error {
	if int(index) >= len(pool) {
		return errors.OutOfBounds(errors.PhaseValidate, path, int(index), len(pool))
	}
	switch pool[index].Tag {
	case TagFieldref, TagMethodref, TagInterfaceMethodref:
		return nil
	default:
		return errors.BadReference(errors.PhaseValidate, path, index, "member reference", TagName(pool[index].Tag))
	}
}

// ValidateClass checks a decoded class for structural consistency: the pool
// is well-formed, header indices resolve to Class entries, and member name
// and descriptor indices resolve to Utf8 entries with parseable descriptors.
func ValidateClass(c *ClassNode) error {
	if err := ValidatePool(c.ConstantPool); err != nil {
		return err
	}

	if err := expectTag(c.ConstantPool, []string{"this_class"}, c.ThisClass, TagClass); err != nil {
		return err
	}
	if c.SuperClass != 0 {
		if err := expectTag(c.ConstantPool, []string{"super_class"}, c.SuperClass, TagClass); err != nil {
			return err
		}
	}
	for i, idx := range c.InterfaceIndices {
		if err := expectTag(c.ConstantPool, []string{"interfaces", fmt.Sprint(i)}, idx, TagClass); err != nil {
			return err
		}
	}

	for i := range c.Fields {
		f := &c.Fields[i]
		path := []string{"field", f.Name}
		if err := expectTag(c.ConstantPool, path, f.NameIndex, TagUtf8); err != nil {
			return err
		}
		if err := expectTag(c.ConstantPool, path, f.DescriptorIndex, TagUtf8); err != nil {
			return err
		}
		if _, err := ParseType(f.Descriptor); err != nil {
			return fmt.Errorf("field %s: %w", f.Name, err)
		}
	}

	for i := range c.Methods {
		m := &c.Methods[i]
		path := []string{"method", m.Name}
		if err := expectTag(c.ConstantPool, path, m.NameIndex, TagUtf8); err != nil {
			return err
		}
		if err := expectTag(c.ConstantPool, path, m.DescriptorIndex, TagUtf8); err != nil {
			return err
		}
		if _, err := ParseMethodType(m.Descriptor); err != nil {
			return fmt.Errorf("method %s: %w", m.Name, err)
		}
		for j, e := range m.ExceptionTable {
			if e.CatchType != 0 {
				if err := expectTag(c.ConstantPool, []string{"method", m.Name, "handler", fmt.Sprint(j)}, e.CatchType, TagClass); err != nil {
					return err
				}
			}
		}
	}

	return nil
}
