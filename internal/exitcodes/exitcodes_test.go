package exitcodes

import (
	"errors"
	"fmt"
	"testing"
)

func TestCodeForError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, Success},
		{"plain", errors.New("boom"), GeneralError},
		{"coded", ValidationErr("unsupported os"), ValidationError},
		{"wrapped coded", fmt.Errorf("outer: %w", ProcessErr("stop failed")), ProcessError},
		{"network", NetworkErr("download x"), NetworkError},
	}
	for _, tc := range cases {
		if got := CodeForError(tc.err); got != tc.want {
			t.Errorf("%s: CodeForError = %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestErrorWithCode_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := WrapError(PreconditionFailed, "not installed", cause)
	if !errors.Is(err, cause) {
		t.Fatal("wrapped cause not reachable via errors.Is")
	}
	if err.Error() != "not installed: root cause" {
		t.Fatalf("unexpected message: %s", err.Error())
	}
	if NewError(InvalidArgs, "bad flag").Error() != "bad flag" {
		t.Fatal("message without cause should be bare")
	}
}
