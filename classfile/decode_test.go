package classfile_test

import (
	stderrors "errors"
	"testing"

	"github.com/cubewhy/asm-go/classfile"
	"github.com/cubewhy/asm-go/errors"
)

// buildTestClass assembles a small but complete class: one field, one
// method with bytecode, and a SourceFile attribute.
func buildTestClass(t *testing.T) *classfile.ClassNode {
	t.Helper()
	cp := classfile.NewConstantPoolBuilder()

	must := func(idx uint16, err error) uint16 {
		t.Helper()
		if err != nil {
			t.Fatalf("pool insertion failed: %v", err)
		}
		return idx
	}

	thisClass := must(cp.Class("com/example/Greeter"))
	superClass := must(cp.Class("java/lang/Object"))
	iface := must(cp.Class("java/lang/Runnable"))

	fieldName := must(cp.Utf8("greeting"))
	fieldDesc := must(cp.Utf8("Ljava/lang/String;"))
	methodName := must(cp.Utf8("run"))
	methodDesc := must(cp.Utf8("()V"))
	codeName := must(cp.Utf8("Code"))
	sourceFileName := must(cp.Utf8("SourceFile"))
	sourceFile := must(cp.Utf8("Greeter.java"))
	catchType := must(cp.Class("java/lang/Exception"))

	pool, err := cp.Pool()
	if err != nil {
		t.Fatalf("Pool failed: %v", err)
	}

	return &classfile.ClassNode{
		MajorVersion:     classfile.MajorJava17,
		AccessFlags:      classfile.AccPublic | classfile.AccSuper,
		ConstantPool:     pool,
		ThisClass:        thisClass,
		SuperClass:       superClass,
		Name:             "com/example/Greeter",
		SuperName:        "java/lang/Object",
		InterfaceIndices: []uint16{iface},
		Interfaces:       []string{"java/lang/Runnable"},
		Fields: []classfile.FieldNode{{
			AccessFlags:     classfile.AccPrivate | classfile.AccFinal,
			NameIndex:       fieldName,
			DescriptorIndex: fieldDesc,
			Name:            "greeting",
			Descriptor:      "Ljava/lang/String;",
		}},
		Methods: []classfile.MethodNode{{
			AccessFlags:     classfile.AccPublic,
			NameIndex:       methodName,
			DescriptorIndex: methodDesc,
			CodeNameIndex:   codeName,
			Name:            "run",
			Descriptor:      "()V",
			HasCode:         true,
			MaxStack:        2,
			MaxLocals:       1,
			Code:            []byte{0xb1}, // return
			ExceptionTable: []classfile.ExceptionTableEntry{{
				StartPC: 0, EndPC: 1, HandlerPC: 1, CatchType: catchType,
			}},
		}},
		Attributes: []classfile.AttributeInfo{{
			NameIndex: sourceFileName,
			Name:      "SourceFile",
			Data:      []byte{byte(sourceFile >> 8), byte(sourceFile)},
		}},
		SourceFile: "Greeter.java",
	}
}

func TestClassRoundTrip(t *testing.T) {
	original := buildTestClass(t)

	data, err := original.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	parsed, err := classfile.ParseClass(data)
	if err != nil {
		t.Fatalf("ParseClass failed: %v", err)
	}

	if parsed.Name != original.Name {
		t.Errorf("name = %q, want %q", parsed.Name, original.Name)
	}
	if parsed.SuperName != original.SuperName {
		t.Errorf("super name = %q, want %q", parsed.SuperName, original.SuperName)
	}
	if parsed.MajorVersion != classfile.MajorJava17 {
		t.Errorf("major version = %d", parsed.MajorVersion)
	}
	if len(parsed.Interfaces) != 1 || parsed.Interfaces[0] != "java/lang/Runnable" {
		t.Errorf("interfaces = %v", parsed.Interfaces)
	}
	if parsed.SourceFile != "Greeter.java" {
		t.Errorf("source file = %q", parsed.SourceFile)
	}

	field := parsed.Field("greeting")
	if field == nil {
		t.Fatal("field greeting not found")
	}
	if field.Descriptor != "Ljava/lang/String;" {
		t.Errorf("field descriptor = %q", field.Descriptor)
	}

	method := parsed.Method("run", "()V")
	if method == nil {
		t.Fatal("method run()V not found")
	}
	if !method.HasCode {
		t.Fatal("method lost its Code attribute")
	}
	if method.MaxStack != 2 || method.MaxLocals != 1 {
		t.Errorf("max stack/locals = %d/%d", method.MaxStack, method.MaxLocals)
	}
	if len(method.Code) != 1 || method.Code[0] != 0xb1 {
		t.Errorf("bytecode = %x", method.Code)
	}
	if len(method.ExceptionTable) != 1 {
		t.Fatalf("exception table length = %d", len(method.ExceptionTable))
	}

	// Byte-exact second round trip.
	reencoded, err := parsed.Encode()
	if err != nil {
		t.Fatalf("re-encode failed: %v", err)
	}
	if len(reencoded) != len(data) {
		t.Fatalf("re-encoded length %d != original %d", len(reencoded), len(data))
	}
	for i := range data {
		if reencoded[i] != data[i] {
			t.Fatalf("re-encoded bytes differ at offset %d", i)
		}
	}
}

func TestClassRoundTripValidates(t *testing.T) {
	data, err := buildTestClass(t).Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	parsed, err := classfile.ParseClass(data)
	if err != nil {
		t.Fatalf("ParseClass failed: %v", err)
	}
	if err := classfile.ValidateClass(parsed); err != nil {
		t.Errorf("round-tripped class failed validation: %v", err)
	}
}

func TestParseClassBadMagic(t *testing.T) {
	data := []byte{0xDE, 0xAD, 0xBE, 0xEF, 0, 0, 0, 52}
	_, err := classfile.ParseClass(data)
	if !stderrors.Is(err, classfile.ErrInvalidMagic) {
		t.Errorf("got %v, want ErrInvalidMagic", err)
	}
}

func TestParseClassTruncated(t *testing.T) {
	data, err := buildTestClass(t).Encode()
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	for _, n := range []int{3, 7, 10, len(data) / 2, len(data) - 1} {
		if _, err := classfile.ParseClass(data[:n]); err == nil {
			t.Errorf("ParseClass of %d-byte prefix succeeded", n)
		}
	}
}

func TestConstantPoolCodecRoundTrip(t *testing.T) {
	cp := classfile.NewConstantPoolBuilder()
	if _, err := cp.Utf8("hello"); err != nil {
		t.Fatalf("Utf8 failed: %v", err)
	}
	if _, err := cp.Integer(-7); err != nil {
		t.Fatalf("Integer failed: %v", err)
	}
	if _, err := cp.Long(1 << 40); err != nil {
		t.Fatalf("Long failed: %v", err)
	}
	if _, err := cp.Double(3.25); err != nil {
		t.Fatalf("Double failed: %v", err)
	}
	if _, err := cp.MethodRef("a/b/C", "m", "(J)D"); err != nil {
		t.Fatalf("MethodRef failed: %v", err)
	}
	if _, err := cp.MethodHandle(classfile.Handle{
		Owner: "a/b/C", Name: "m", Descriptor: "(J)D",
		ReferenceKind: classfile.RefInvokeStatic,
	}); err != nil {
		t.Fatalf("MethodHandle failed: %v", err)
	}
	pool, err := cp.Pool()
	if err != nil {
		t.Fatalf("Pool failed: %v", err)
	}

	data, err := classfile.EncodeConstantPool(pool)
	if err != nil {
		t.Fatalf("EncodeConstantPool failed: %v", err)
	}
	decoded, err := classfile.DecodeConstantPool(data)
	if err != nil {
		t.Fatalf("DecodeConstantPool failed: %v", err)
	}

	if len(decoded) != len(pool) {
		t.Fatalf("decoded %d slots, want %d", len(decoded), len(pool))
	}
	for i := range pool {
		if decoded[i] != pool[i] {
			t.Errorf("slot %d: decoded %+v, want %+v", i, decoded[i], pool[i])
		}
	}
}

func TestDecodeConstantPoolInvalidTag(t *testing.T) {
	// count=2, then an entry with tag 2 (unassigned by the format).
	data := []byte{0x00, 0x02, 0x02}
	_, err := classfile.DecodeConstantPool(data)
	var e *errors.Error
	if !stderrors.As(err, &e) || e.Kind != errors.KindInvalidTag {
		t.Errorf("got %v, want invalid_tag", err)
	}
}

func TestValidatePoolRejectsBadReference(t *testing.T) {
	pool := []classfile.CpInfo{
		classfile.UnusableInfo(),
		classfile.ClassInfo(2),
		classfile.IntegerInfo(1),
	}
	err := classfile.ValidatePool(pool)
	var e *errors.Error
	if !stderrors.As(err, &e) || e.Kind != errors.KindBadReference {
		t.Errorf("got %v, want bad_reference", err)
	}
}

func TestValidatePoolRejectsMissingPlaceholder(t *testing.T) {
	pool := []classfile.CpInfo{
		classfile.UnusableInfo(),
		classfile.LongInfo(1),
		classfile.Utf8Info("x"),
	}
	err := classfile.ValidatePool(pool)
	var e *errors.Error
	if !stderrors.As(err, &e) || e.Kind != errors.KindInvalidData {
		t.Errorf("got %v, want invalid_data", err)
	}
}

func TestValidatePoolRejectsBadHandleKind(t *testing.T) {
	pool := []classfile.CpInfo{
		classfile.UnusableInfo(),
		classfile.MethodHandleInfo(12, 2),
		classfile.MethodrefInfo(3, 4),
		classfile.ClassInfo(5),
		classfile.NameAndTypeInfo(5, 5),
		classfile.Utf8Info("x"),
	}
	err := classfile.ValidatePool(pool)
	var e *errors.Error
	if !stderrors.As(err, &e) || e.Kind != errors.KindInvalidData {
		t.Errorf("got %v, want invalid_data", err)
	}
}
