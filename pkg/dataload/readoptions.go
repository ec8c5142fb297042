package dataload

import (
	"fmt"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
)

// ReadMode selects how file content is interpreted.
type ReadMode string

const (
	// ModeAuto attempts a text read and falls back to binary exactly once;
	// the decision is remembered per loader instance.
	ModeAuto ReadMode = ""
	// ModeText forces text interpretation.
	ModeText ReadMode = "text"
	// ModeBinary forces raw bytes.
	ModeBinary ReadMode = "binary"
)

// NewlineMode selects newline handling for text reads.
type NewlineMode string

const (
	// NewlineTranslate converts "\r\n" to "\n" (the default).
	NewlineTranslate NewlineMode = ""
	// NewlineKeep leaves line terminators untouched.
	NewlineKeep NewlineMode = "keep"
)

// ReadOptions are the supported options for reading a data file. The zero
// value means auto mode, UTF-8, newline translation. ReadOptions is
// comparable and serves as a cache-key component for open file handles.
type ReadOptions struct {
	Mode     ReadMode
	Encoding string // IANA charset name; empty means UTF-8
	Newline  NewlineMode
}

// Validate checks every option against its fixed allow-list. Unsupported
// values are configuration-time usage errors.
func (o ReadOptions) Validate() error {
	switch o.Mode {
	case ModeAuto, ModeText, ModeBinary:
	default:
		return &UsageError{Reason: fmt.Sprintf("read options: invalid read mode %q", o.Mode)}
	}
	switch o.Newline {
	case NewlineTranslate, NewlineKeep:
	default:
		return &UsageError{Reason: fmt.Sprintf("read options: invalid newline mode %q", o.Newline)}
	}
	if o.Encoding != "" {
		if _, err := o.Charset(); err != nil {
			return err
		}
	}
	return nil
}

// Charset resolves the configured encoding via the IANA index. It returns
// nil for the default (UTF-8), which needs no transformation.
func (o ReadOptions) Charset() (encoding.Encoding, error) {
	if o.Encoding == "" {
		return nil, nil
	}
	enc, err := ianaindex.IANA.Encoding(o.Encoding)
	if err != nil || enc == nil {
		return nil, &UsageError{Reason: fmt.Sprintf("read options: unsupported encoding %q", o.Encoding)}
	}
	return enc, nil
}

// IsDefaultText reports whether reads use plain UTF-8 text semantics. Only
// such files can be streamed by byte offset: with a charset transformation
// in play, stored offsets would not be valid seek targets.
func (o ReadOptions) IsDefaultText() bool {
	return o.Mode != ModeBinary && o.Encoding == ""
}
