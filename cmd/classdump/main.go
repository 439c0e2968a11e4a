package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/cubewhy/asm-go/classfile"
)

func main() {
	var (
		classFile   = flag.String("class", "", "Path to class file")
		showPool    = flag.Bool("pool", false, "Dump the constant pool and exit")
		validate    = flag.Bool("validate", false, "Run structural validation")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		verbose     = flag.Bool("v", false, "Verbose logging")
	)
	flag.Parse()

	if *classFile == "" && flag.NArg() > 0 {
		*classFile = flag.Arg(0)
	}
	if *classFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: classdump -class <file.class> [-pool] [-validate]")
		fmt.Fprintln(os.Stderr, "       classdump -class <file.class> -i  (interactive mode)")
		os.Exit(1)
	}

	if *verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()
		classfile.SetLogger(logger)
	}

	if *interactive {
		if err := runInteractive(*classFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(*classFile, *showPool, *validate); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
)

func run(classFile string, showPool, validate bool) error {
	data, err := os.ReadFile(classFile)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	node, err := classfile.ParseClass(data)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		headerStyle = lipgloss.NewStyle()
		dimStyle = lipgloss.NewStyle()
	}

	if showPool {
		dumpPool(node.ConstantPool)
		return nil
	}

	fmt.Printf("%s %s\n", headerStyle.Render("Class:"), node.Name)
	if node.SuperName != "" {
		fmt.Printf("%s %s\n", headerStyle.Render("Super:"), node.SuperName)
	}
	fmt.Printf("%s %d.%d\n", headerStyle.Render("Version:"), node.MajorVersion, node.MinorVersion)
	if node.SourceFile != "" {
		fmt.Printf("%s %s\n", headerStyle.Render("Source:"), node.SourceFile)
	}
	if len(node.Interfaces) > 0 {
		fmt.Printf("%s %s\n", headerStyle.Render("Implements:"), strings.Join(node.Interfaces, ", "))
	}
	fmt.Printf("%s %d entries\n", headerStyle.Render("Constant pool:"), len(node.ConstantPool))

	if len(node.Fields) > 0 {
		fmt.Printf("\n%s\n", headerStyle.Render("Fields:"))
		for _, f := range node.Fields {
			fmt.Printf("  %s %s\n", f.Name, dimStyle.Render(describeField(f.Descriptor)))
		}
	}

	if len(node.Methods) > 0 {
		fmt.Printf("\n%s\n", headerStyle.Render("Methods:"))
		for _, m := range node.Methods {
			fmt.Printf("  %s%s\n", m.Name, dimStyle.Render(describeMethod(m.Descriptor)))
		}
	}

	if validate {
		if err := classfile.ValidateClass(node); err != nil {
			return fmt.Errorf("validate: %w", err)
		}
		fmt.Printf("\n%s\n", headerStyle.Render("Validation passed."))
	}

	return nil
}

func describeField(descriptor string) string {
	t, err := classfile.ParseType(descriptor)
	if err != nil {
		return descriptor
	}
	return t.ClassName()
}

func describeMethod(descriptor string) string {
	t, err := classfile.ParseMethodType(descriptor)
	if err != nil {
		return descriptor
	}
	var args []string
	for _, arg := range t.ArgumentTypes() {
		args = append(args, arg.ClassName())
	}
	ret, _ := t.ReturnType()
	return "(" + strings.Join(args, ", ") + ") " + ret.ClassName()
}

func dumpPool(pool []classfile.CpInfo) {
	for i := 1; i < len(pool); i++ {
		entry := pool[i]
		if entry.Tag == classfile.TagUnusable {
			continue
		}
		fmt.Printf("%5d: %-19s %s\n", i,
			classfile.TagName(entry.Tag), dimStyle.Render(formatEntry(pool, entry)))
	}
}

func formatEntry(pool []classfile.CpInfo, entry classfile.CpInfo) string {
	switch entry.Tag {
	case classfile.TagUtf8:
		return fmt.Sprintf("%q", entry.Utf8)
	case classfile.TagInteger:
		return fmt.Sprint(entry.Int)
	case classfile.TagFloat:
		return fmt.Sprint(entry.Float)
	case classfile.TagLong:
		return fmt.Sprint(entry.Long)
	case classfile.TagDouble:
		return fmt.Sprint(entry.Double)
	case classfile.TagClass, classfile.TagModule, classfile.TagPackage:
		if name, ok := classfile.PoolUtf8(pool, entry.NameIndex); ok {
			return name
		}
		return fmt.Sprintf("#%d", entry.NameIndex)
	case classfile.TagString:
		if value, ok := classfile.PoolUtf8(pool, entry.StringIndex); ok {
			return fmt.Sprintf("%q", value)
		}
		return fmt.Sprintf("#%d", entry.StringIndex)
	case classfile.TagFieldref, classfile.TagMethodref, classfile.TagInterfaceMethodref:
		return fmt.Sprintf("#%d.#%d", entry.ClassIndex, entry.NameAndTypeIndex)
	case classfile.TagNameAndType:
		name, _ := classfile.PoolUtf8(pool, entry.NameIndex)
		desc, _ := classfile.PoolUtf8(pool, entry.DescriptorIndex)
		return name + ":" + desc
	case classfile.TagMethodHandle:
		return fmt.Sprintf("kind %d #%d", entry.ReferenceKind, entry.ReferenceIndex)
	case classfile.TagMethodType:
		if desc, ok := classfile.PoolUtf8(pool, entry.DescriptorIndex); ok {
			return desc
		}
		return fmt.Sprintf("#%d", entry.DescriptorIndex)
	case classfile.TagDynamic, classfile.TagInvokeDynamic:
		return fmt.Sprintf("bsm %d #%d", entry.BootstrapMethodAttrIndex, entry.NameAndTypeIndex)
	default:
		return ""
	}
}
