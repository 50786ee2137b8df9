package sixheat

import (
	"bytes"
	"errors"
	"strconv"
)

// DefaultMinRun is the shortest run that is replaced by a repeat token.
const DefaultMinRun = 3

// DefaultMaxExpanded is the largest stream Expand produces.
const DefaultMaxExpanded = 64 << 20

// ErrMalformedStream is returned by Expand for a repeat token without a count
// or without a sixel character.
var ErrMalformedStream = errors.New("sixheat: malformed repeat token")

// ErrStreamTooLarge is returned by Expand when the expanded stream would
// exceed its limit.
var ErrStreamTooLarge = errors.New("sixheat: expanded stream too large")

// Compressor rewrites runs of identical sixel characters as repeat tokens.
type Compressor struct {
	// MinRun is the shortest run to replace, DefaultMinRun if <= 0.
	MinRun int
	// Fold drops a lone blank column right before a carriage return that is
	// followed by a color change. The result draws the same image but no
	// longer expands to the input.
	Fold bool
}

// Compress compresses a sixel stream with the default settings.
func Compress(stream []byte) []byte {
	return Compressor{}.Compress(stream)
}

type run struct {
	char byte
	n    int
}

type compressState struct {
	out    *bytes.Buffer
	cur    run
	minRun int
}

func (s *compressState) add(c byte, n int) {
	if s.cur.n > 0 && s.cur.char != c {
		s.flush()
	}
	s.cur.char = c
	s.cur.n += n
}

func (s *compressState) flush() {
	switch {
	case s.cur.n == 0:
	case s.cur.n >= s.minRun:
		s.out.WriteByte(RepeatIntroducer)
		s.out.WriteString(strconv.Itoa(s.cur.n))
		s.out.WriteByte(s.cur.char)
	default:
		for i := 0; i < s.cur.n; i++ {
			s.out.WriteByte(s.cur.char)
		}
	}
	s.cur = run{}
}

// foldable is whether the pending run is a single blank column.
func (s *compressState) foldable() bool {
	return s.cur.n == 1 && s.cur.char == sixelChars[0]
}

// Compress returns the compressed stream. Runs never cross color selects,
// carriage returns, line feeds or escape sequences. Existing repeat tokens
// are merged with neighbouring runs, so compressing twice is a no-op.
func (c Compressor) Compress(stream []byte) []byte {
	s := &compressState{
		out:    new(bytes.Buffer),
		minRun: c.MinRun,
	}
	if s.minRun <= 0 {
		s.minRun = DefaultMinRun
	}
	s.out.Grow(len(stream))

	for i := 0; i < len(stream); {
		b := stream[i]

		switch {
		case b == 0x1b:
			s.flush()
			end := escapeEnd(stream, i)
			s.out.Write(stream[i:end])
			i = end

		case b == RepeatIntroducer:
			count, char, end, ok := parseRepeat(stream, i)
			if !ok {
				s.flush()
				s.out.Write(stream[i:end])
			} else {
				s.add(char, count)
			}
			i = end

		case IsSixelChar(b):
			s.add(b, 1)
			i++

		case b == CarriageReturn:
			if c.Fold && s.foldable() && i+1 < len(stream) &&
				stream[i+1] == ColorIntroducer {
				s.cur = run{}
			}
			s.flush()
			s.out.WriteByte(b)
			i++

		case b == ColorIntroducer:
			s.flush()
			end := colorEnd(stream, i)
			s.out.Write(stream[i:end])
			i = end

		default:
			s.flush()
			s.out.WriteByte(b)
			i++
		}
	}
	s.flush()

	return s.out.Bytes()
}

// Expand replaces every repeat token with the characters it stands for. The
// result is limited to DefaultMaxExpanded bytes.
func Expand(stream []byte) ([]byte, error) {
	return ExpandLimit(stream, DefaultMaxExpanded)
}

// ExpandLimit is Expand with a limit on the size of the result. A limit of
// zero or less means no limit.
func ExpandLimit(stream []byte, limit int) ([]byte, error) {
	if limit > 0 && len(stream) > limit {
		return nil, ErrStreamTooLarge
	}

	out := new(bytes.Buffer)
	out.Grow(len(stream))

	for i := 0; i < len(stream); {
		switch stream[i] {
		case 0x1b:
			end := escapeEnd(stream, i)
			out.Write(stream[i:end])
			i = end
		case RepeatIntroducer:
			count, char, end, ok := parseRepeat(stream, i)
			if !ok {
				return nil, ErrMalformedStream
			}
			if limit > 0 && count > limit-out.Len() {
				return nil, ErrStreamTooLarge
			}
			out.Write(bytes.Repeat([]byte{char}, count))
			i = end
		case ColorIntroducer:
			end := colorEnd(stream, i)
			out.Write(stream[i:end])
			i = end
		default:
			out.WriteByte(stream[i])
			i++
		}
	}

	if limit > 0 && out.Len() > limit {
		return nil, ErrStreamTooLarge
	}

	return out.Bytes(), nil
}

// parseRepeat parses a repeat token at stream[i]. A zero count means one.
// end is the index after the token, or after the consumed prefix if ok is
// false.
func parseRepeat(stream []byte, i int) (count int, char byte, end int, ok bool) {
	j := i + 1
	for j < len(stream) && isDigit(stream[j]) {
		j++
	}
	if j == i+1 || j >= len(stream) || !IsSixelChar(stream[j]) {
		return 0, 0, j, false
	}

	count, err := strconv.Atoi(string(stream[i+1 : j]))
	if err != nil {
		return 0, 0, j, false
	}
	if count == 0 {
		count = 1
	}

	return count, stream[j], j + 1, true
}

// colorEnd returns the index after a color select or definition at
// stream[i].
func colorEnd(stream []byte, i int) int {
	j := i + 1
	for j < len(stream) && (isDigit(stream[j]) || stream[j] == ';') {
		j++
	}
	return j
}

// escapeEnd returns the index after the escape sequence at stream[i]. For a
// device control string introducer this includes its parameters and final
// 'q'.
func escapeEnd(stream []byte, i int) int {
	j := i + 1
	if j >= len(stream) {
		return j
	}
	if stream[j] != 'P' {
		return j + 1
	}

	j++
	for j < len(stream) && (isDigit(stream[j]) || stream[j] == ';') {
		j++
	}
	if j < len(stream) && stream[j] == 'q' {
		j++
	}
	return j
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
