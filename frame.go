package sixheat

import (
	"bufio"
	"io"
)

// WriteTo writes the sixel stream of the result to w. An empty result writes
// nothing.
func (r *Result) WriteTo(w io.Writer) (int64, error) {
	if r.Empty() {
		return 0, nil
	}

	wr := bufio.NewWriter(w)
	n, err := wr.Write(r.Sixel)
	if err != nil {
		return int64(n), err
	}

	return int64(n), wr.Flush()
}
