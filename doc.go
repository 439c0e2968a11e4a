// Package asmgo provides JVM class file manipulation primitives for Go.
//
// The library covers class file parsing and encoding, type descriptor
// analysis, and deduplicated constant pool construction.
//
// # Architecture Overview
//
// The library is organized into packages with distinct responsibilities:
//
//	asm-go/
//	├── classfile/       Class file parsing, encoding, descriptors, constant pool
//	├── errors/          Structured error types for debugging
//	└── cmd/classdump/   Class file inspection CLI
//
// # Quick Start
//
// Parse a class file:
//
//	data, _ := os.ReadFile("Main.class")
//	node, err := classfile.ParseClass(data)
//	fmt.Println(node.Name, node.SuperName)
//
// Build a constant pool:
//
//	cp := classfile.NewConstantPoolBuilder()
//	idx, err := cp.MethodRef("java/io/PrintStream", "println", "(Ljava/lang/String;)V")
//	pool, err := cp.Pool()
//
// Work with descriptors:
//
//	t, err := classfile.ParseMethodType("([[IJ)Ljava/lang/String;")
//	for _, arg := range t.ArgumentTypes() {
//	    fmt.Println(arg.ClassName())
//	}
package asmgo
