package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseParse,
				Kind:   KindInvalidDescriptor,
				Input:  "(IJ",
				Offset: 3,
				Detail: "unterminated argument list",
			},
			contains: []string{"[parse]", "invalid_descriptor", `"(IJ"`, "offset 3", "unterminated argument list"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase:  PhaseDecode,
				Kind:   KindOutOfBounds,
				Offset: -1,
			},
			contains: []string{"[decode]", "out_of_bounds"},
		},
		{
			name: "error with path",
			err: &Error{
				Phase:  PhaseValidate,
				Kind:   KindBadReference,
				Path:   []string{"pool", "3"},
				Detail: "index 5 addresses Utf8, want Class",
				Offset: -1,
			},
			contains: []string{"[validate]", "bad_reference", "pool.3", "want Class"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseLoad,
				Kind:   KindInvalidData,
				Detail: "bad magic",
				Cause:  errors.New("underlying error"),
				Offset: -1,
			},
			contains: []string{"[load]", "invalid_data", "bad magic", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseDecode,
		Kind:  KindInvalidData,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}

	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase: PhaseParse,
		Kind:  KindInvalidDescriptor,
		Input: "X",
	}

	if !err.Is(&Error{Phase: PhaseParse, Kind: KindInvalidDescriptor}) {
		t.Error("Is should match same phase and kind")
	}

	if err.Is(&Error{Phase: PhaseDecode, Kind: KindInvalidDescriptor}) {
		t.Error("Is should not match different phase")
	}

	if err.Is(&Error{Phase: PhaseParse, Kind: KindNotMethod}) {
		t.Error("Is should not match different kind")
	}

	target := &Error{Phase: PhaseParse, Kind: KindInvalidDescriptor}
	if !errors.Is(err, target) {
		t.Error("errors.Is should match same phase and kind")
	}

	if err.Is(errors.New("plain")) {
		t.Error("Is should not match a non-structured error")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("cause")
	err := New(PhaseParse, KindInvalidDescriptor).
		Input("LFoo").
		Offset(4).
		Path("method", "descriptor").
		Detail("unterminated object name").
		Value(byte('L')).
		Cause(cause).
		Build()

	if err.Phase != PhaseParse || err.Kind != KindInvalidDescriptor {
		t.Errorf("unexpected phase/kind: %s/%s", err.Phase, err.Kind)
	}
	if err.Input != "LFoo" || err.Offset != 4 {
		t.Errorf("unexpected input/offset: %q/%d", err.Input, err.Offset)
	}
	if len(err.Path) != 2 || err.Path[0] != "method" {
		t.Errorf("unexpected path: %v", err.Path)
	}
	if !errors.Is(err, cause) {
		t.Error("cause not chained")
	}
}

func TestBuilder_DetailFormatting(t *testing.T) {
	err := New(PhaseBuild, KindPoolOverflow).Detail("pool has %d slots", 65536).Build()
	if err.Detail != "pool has 65536 slots" {
		t.Errorf("Detail not formatted: %q", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	t.Run("InvalidDescriptor", func(t *testing.T) {
		err := InvalidDescriptor("(I", 2, "unterminated argument list")
		if err.Kind != KindInvalidDescriptor || err.Phase != PhaseParse {
			t.Errorf("unexpected phase/kind: %s/%s", err.Phase, err.Kind)
		}
		if err.Offset != 2 {
			t.Errorf("Offset = %d, want 2", err.Offset)
		}
	})

	t.Run("InvalidDescriptor truncates long input", func(t *testing.T) {
		long := strings.Repeat("[", 200) + "I"
		err := InvalidDescriptor(long, 0, "deep array")
		if len(err.Input) > 70 {
			t.Errorf("input not truncated: %d bytes", len(err.Input))
		}
		if !strings.HasSuffix(err.Input, "...") {
			t.Errorf("truncated input missing ellipsis: %q", err.Input)
		}
	})

	t.Run("NotAMethodDescriptor", func(t *testing.T) {
		err := NotAMethodDescriptor("I")
		if err.Kind != KindNotMethod {
			t.Errorf("Kind = %s, want %s", err.Kind, KindNotMethod)
		}
	})

	t.Run("PoolOverflow", func(t *testing.T) {
		err := PoolOverflow(65536)
		if err.Kind != KindPoolOverflow || err.Phase != PhaseBuild {
			t.Errorf("unexpected phase/kind: %s/%s", err.Phase, err.Kind)
		}
		if err.Value != 65536 {
			t.Errorf("Value = %v, want 65536", err.Value)
		}
	})

	t.Run("Consumed", func(t *testing.T) {
		err := Consumed("constant pool builder")
		if err.Kind != KindConsumed {
			t.Errorf("Kind = %s, want %s", err.Kind, KindConsumed)
		}
	})

	t.Run("InvalidTag", func(t *testing.T) {
		err := InvalidTag(0x2A, 7)
		if err.Kind != KindInvalidTag {
			t.Errorf("Kind = %s, want %s", err.Kind, KindInvalidTag)
		}
		if !strings.Contains(err.Detail, "0x2a") || !strings.Contains(err.Detail, "entry 7") {
			t.Errorf("Detail missing tag or index: %q", err.Detail)
		}
	})

	t.Run("OutOfBounds", func(t *testing.T) {
		err := OutOfBounds(PhaseDecode, []string{"pool"}, 10, 5)
		if !strings.Contains(err.Detail, "10") || !strings.Contains(err.Detail, "5") {
			t.Errorf("Detail missing indices: %q", err.Detail)
		}
	})

	t.Run("BadReference", func(t *testing.T) {
		err := BadReference(PhaseValidate, []string{"pool", "2"}, 5, "Utf8", "Class")
		if !strings.Contains(err.Detail, "want Utf8") {
			t.Errorf("Detail missing expected tag: %q", err.Detail)
		}
	})

	t.Run("Truncated", func(t *testing.T) {
		cause := errors.New("EOF")
		err := Truncated(PhaseDecode, "constant pool", cause)
		if !errors.Is(err, cause) {
			t.Error("cause not chained")
		}
	})

	t.Run("Wrap", func(t *testing.T) {
		cause := errors.New("inner")
		err := Wrap(PhaseEncode, KindInvalidData, cause, "encode pool")
		if !errors.Is(err, cause) {
			t.Error("cause not chained")
		}
	})

	t.Run("Load", func(t *testing.T) {
		err := Load("read class file", errors.New("io error"))
		if err.Phase != PhaseLoad {
			t.Errorf("Phase = %s, want %s", err.Phase, PhaseLoad)
		}
	})
}
