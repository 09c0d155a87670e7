package wire

import "errors"

// ErrMalformedFrame is returned when a payload's declared size disagrees
// with the expected constant for its code, a field lacks its declared
// width, or a UTF-8 field cannot be decoded after NUL-trimming.
var ErrMalformedFrame = errors.New("malformed frame")
