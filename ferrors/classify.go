package ferrors

import (
	"context"
	"errors"
	"io"

	"github.com/duskbyte/filedrop/cryptoutil"
	"github.com/duskbyte/filedrop/userfile"
	"github.com/duskbyte/filedrop/wire"
)

// ClassifyReadCode maps a transport-layer read/write error to a stable
// Code, distinguishing deadline/cancellation from a plain I/O failure.
func ClassifyReadCode(err error) Code {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return CodeTimeout
	case errors.Is(err, context.Canceled):
		return CodeCanceled
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return CodeTransportIO
	default:
		return CodeTransportIO
	}
}

// ClassifyFinalizeCode maps a UserFile.Finalize error to a stable Code.
func ClassifyFinalizeCode(err error) Code {
	var incomplete *userfile.IncompletePacketSetError
	switch {
	case errors.As(err, &incomplete):
		return CodeIncompletePacketSet
	case errors.Is(err, userfile.ErrBadPadding), errors.Is(err, cryptoutil.ErrBadPadding):
		return CodeBadPadding
	default:
		return CodeTransportIO
	}
}

// ClassifyFrameCode maps a codec decode error to a stable Code.
func ClassifyFrameCode(err error) Code {
	if errors.Is(err, wire.ErrMalformedFrame) {
		return CodeMalformedFrame
	}
	return ClassifyReadCode(err)
}
