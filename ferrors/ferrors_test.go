package ferrors

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/duskbyte/filedrop/userfile"
	"github.com/duskbyte/filedrop/wire"
)

func TestWrapAndUnwrap(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(StageSendFile, CodeBadPadding, cause)

	var fe *Error
	if !errors.As(err, &fe) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if fe.Stage != StageSendFile || fe.Code != CodeBadPadding {
		t.Fatalf("unexpected stage/code: %+v", fe)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected Unwrap to expose cause")
	}
}

func TestErrorStringNilSafe(t *testing.T) {
	var e *Error
	if e.Error() != "<nil>" {
		t.Fatalf("expected nil-safe Error(), got %q", e.Error())
	}
}

func TestClassifyReadCode(t *testing.T) {
	cases := []struct {
		err  error
		want Code
	}{
		{context.DeadlineExceeded, CodeTimeout},
		{context.Canceled, CodeCanceled},
		{io.EOF, CodeTransportIO},
		{errors.New("reset"), CodeTransportIO},
	}
	for _, tc := range cases {
		if got := ClassifyReadCode(tc.err); got != tc.want {
			t.Errorf("ClassifyReadCode(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}

func TestClassifyFrameCode(t *testing.T) {
	if got := ClassifyFrameCode(wire.ErrMalformedFrame); got != CodeMalformedFrame {
		t.Errorf("got %v, want %v", got, CodeMalformedFrame)
	}
	if got := ClassifyFrameCode(io.EOF); got != CodeTransportIO {
		t.Errorf("got %v, want %v", got, CodeTransportIO)
	}
}

func TestClassifyFinalizeCode(t *testing.T) {
	incomplete := &userfile.IncompletePacketSetError{Index: 2}
	if got := ClassifyFinalizeCode(incomplete); got != CodeIncompletePacketSet {
		t.Errorf("got %v, want %v", got, CodeIncompletePacketSet)
	}
	if got := ClassifyFinalizeCode(userfile.ErrBadPadding); got != CodeBadPadding {
		t.Errorf("got %v, want %v", got, CodeBadPadding)
	}
}
