// Package classfile provides JVM class file parsing, encoding, and constant
// pool construction.
//
// The package covers three concerns: a deduplicating constant pool builder
// for emitting class files, a structural model of the type descriptor
// grammar, and a binary codec for whole class files.
//
// # Constant Pool Construction
//
// ConstantPoolBuilder manages index-addressed, deduplicated storage of
// constant pool entries. Composite constants insert their dependencies
// recursively, so one call materializes a full entry chain:
//
//	cp := classfile.NewConstantPoolBuilder()
//	idx, err := cp.MethodRef("java/io/PrintStream", "println", "(Ljava/lang/String;)V")
//	// pool now holds the Methodref plus its Class, NameAndType, and
//	// Utf8 dependencies, each exactly once
//
// Slot 0 is reserved and never addressable. Long and Double constants occupy
// two consecutive slots; the second slot is an internal placeholder. String
// shaped constants are deduplicated by value, while Integer, Float, Long,
// and Double literals always append fresh entries, matching the reference
// compiler behavior for numeric constants.
//
// The pool holds at most 65535 addressable slots. An insertion past the
// ceiling fails with a pool_overflow error rather than silently wrapping
// the 16-bit index.
//
// Adopt an existing pool while preserving its indices:
//
//	cp := classfile.FromPool(node.ConstantPool)
//
// Adopted entries whose index fields do not resolve cleanly keep their
// slots but are excluded from deduplication.
//
// # Type Descriptors
//
// Type models the recursive descriptor grammar covering primitives, object
// types, arrays, and method signatures:
//
//	t, err := classfile.ParseType("([[IJ)Ljava/lang/String;")
//	t.Sort()        // SortMethod
//	t.Descriptor()  // the input, reconstructed exactly
//
// Parsing and Descriptor are mutually inverse for every well-formed
// descriptor. Malformed input yields an error carrying the offending string
// and the byte offset the parser stopped at.
//
// # Parsing and Encoding
//
// Parse a class file from binary:
//
//	data, _ := os.ReadFile("Main.class")
//	node, err := classfile.ParseClass(data)
//
// Encode it back:
//
//	encoded, err := node.Encode()
//
// Round-trip parsing and encoding preserves class semantics.
//
// # Validation
//
// Validate pool structure and class consistency:
//
//	if err := classfile.ValidateClass(node); err != nil {
//	    log.Printf("invalid class: %v", err)
//	}
//
// Validation checks:
//   - Every pool index field addresses an entry of the expected tag
//   - 8-byte constants are followed by their placeholder slot
//   - Method handle reference kinds are in range
//   - Field and method descriptors parse
package classfile
