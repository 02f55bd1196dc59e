package encoding

import (
	"io"
	"strings"
	"unicode/utf8"

	"gitlab.com/tozd/go/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// 🔤 Codec is a named text encoding that can decode file bytes to UTF-8
// and encode UTF-8 back to file bytes. The zero value is not usable;
// obtain codecs via Lookup or Candidates.
type Codec struct {
	name string
	enc  encoding.Encoding // nil means plain UTF-8 (validated, not converted)
}

// Name returns the canonical name of the codec (e.g. "utf-8").
func (c Codec) Name() string {
	return c.name
}

// Reader wraps r so that reads yield UTF-8 text decoded from the codec's
// byte representation. For the UTF-8 codec the bytes pass through a strict
// validator, so invalid sequences surface as decode errors instead of
// being silently replaced.
func (c Codec) Reader(r io.Reader) io.Reader {
	if c.enc == nil {
		return transform.NewReader(r, encoding.UTF8Validator)
	}
	return transform.NewReader(r, transform.Chain(c.enc.NewDecoder(), replacementGuard{}))
}

// Writer wraps w so that UTF-8 writes are encoded into the codec's byte
// representation. The returned writer must be closed to flush any
// buffered partial sequence before the underlying file is committed.
func (c Codec) Writer(w io.Writer) io.WriteCloser {
	if c.enc == nil {
		return nopWriteCloser{w}
	}
	return transform.NewWriter(w, c.enc.NewEncoder())
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// IsDecodeError reports whether err indicates that bytes could not be
// decoded under some codec, as opposed to an I/O failure.
func IsDecodeError(err error) bool {
	return errors.Is(err, encoding.ErrInvalidUTF8) ||
		errors.Is(err, ErrUnmappedByte) ||
		errors.Is(err, ErrNoEncoding)
}

// ErrUnmappedByte is returned when an input byte has no mapping in the
// codec being tried.
var ErrUnmappedByte = errors.New("byte has no mapping in this encoding")

// replacementGuard fails a charmap decode when the decoder emits U+FFFD,
// which only an unmapped byte produces for a single-byte charmap.
// Charmap decoders substitute instead of erroring, so without the guard
// windows-1252 would accept the five bytes it leaves undefined and a
// later candidate could never be reached.
type replacementGuard struct{ transform.NopResetter }

func (replacementGuard) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for nSrc < len(src) {
		if !atEOF && !utf8.FullRune(src[nSrc:]) {
			err = transform.ErrShortSrc
			break
		}
		r, size := utf8.DecodeRune(src[nSrc:])
		if r == utf8.RuneError && size == 3 {
			// A genuine three-byte U+FFFD, not an invalid sequence.
			err = ErrUnmappedByte
			break
		}
		if nDst+size > len(dst) {
			err = transform.ErrShortDst
			break
		}
		copy(dst[nDst:], src[nSrc:nSrc+size])
		nDst += size
		nSrc += size
	}
	return nDst, nSrc, err
}

// 📚 codec registry. Aliases follow the names Python's codecs module uses,
// since candidate lists are user-supplied strings.
var codecs = map[string]Codec{
	"utf-8":        {name: "utf-8"},
	"utf8":         {name: "utf-8"},
	"windows-1252": {name: "windows-1252", enc: charmap.Windows1252},
	"cp1252":       {name: "windows-1252", enc: charmap.Windows1252},
	"iso-8859-1":   {name: "iso-8859-1", enc: charmap.ISO8859_1},
	"latin-1":      {name: "iso-8859-1", enc: charmap.ISO8859_1},
	"latin1":       {name: "iso-8859-1", enc: charmap.ISO8859_1},
}

// Lookup resolves a codec by name or alias.
func Lookup(name string) (Codec, error) {
	c, ok := codecs[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Codec{}, errors.Errorf("unknown encoding %q", name)
	}
	return c, nil
}

// Candidates resolves an ordered list of encoding names into codecs,
// preserving priority order.
func Candidates(names []string) ([]Codec, error) {
	out := make([]Codec, 0, len(names))
	for _, name := range names {
		c, err := Lookup(name)
		if err != nil {
			return nil, errors.Errorf("resolving candidate encodings: %w", err)
		}
		out = append(out, c)
	}
	return out, nil
}

// DefaultCandidates returns the default probe order: strict UTF-8 first,
// then the two legacy single-byte encodings the original tool tried.
func DefaultCandidates() []Codec {
	cs, _ := Candidates([]string{"utf-8", "windows-1252", "iso-8859-1"})
	return cs
}
