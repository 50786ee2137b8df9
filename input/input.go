// Package input reads sample tokens from plain or compressed streams.
package input

import (
	"bufio"
	"bytes"
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
	log "github.com/sirupsen/logrus"
	"github.com/ulikunitz/xz"
)

var gzipMagic = []byte{0x1f, 0x8b}
var bzip2Magic = []byte{0x42, 0x5a, 0x68}
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
var xzMagic = []byte{0xfd, 0x37, 0x7a, 0x58, 0x5a, 0x00}

// maxToken bounds a single token, anything longer is not an integer anyway.
const maxToken = 1 << 20

// ZReader returns a reader that decompresses the input stream if it starts
// with a gzip, bzip2, zstd or xz header. Other streams are returned as-is.
func ZReader(input io.Reader) (io.Reader, error) {
	firstBytes := make([]byte, len(xzMagic))
	n, err := io.ReadFull(input, firstBytes)
	if err == io.EOF {
		return bytes.NewReader(nil), nil
	}
	if err != nil && err != io.ErrUnexpectedEOF {
		return nil, fmt.Errorf("failed to read stream: %w", err)
	}
	firstBytes = firstBytes[:n]

	input = io.MultiReader(bytes.NewReader(firstBytes), input)

	switch {
	case bytes.HasPrefix(firstBytes, gzipMagic):
		log.Info("Input stream is gzip compressed")
		return gzip.NewReader(input)
	case bytes.HasPrefix(firstBytes, zstdMagic):
		log.Info("Input stream is zstd compressed")
		return zstd.NewReader(input)
	case bytes.HasPrefix(firstBytes, bzip2Magic):
		log.Info("Input stream is bzip2 compressed")
		return bzip2.NewReader(input), nil
	case bytes.HasPrefix(firstBytes, xzMagic):
		log.Info("Input stream is xz compressed")
		return xz.NewReader(input)
	default:
		log.Debug("Input stream is assumed to be uncompressed")
		return input, nil
	}
}

// ReadTokens reads all whitespace separated tokens from r, decompressing it
// first if needed.
func ReadTokens(r io.Reader) ([]string, error) {
	zr, err := ZReader(r)
	if err != nil {
		return nil, err
	}

	scanner := bufio.NewScanner(zr)
	scanner.Buffer(make([]byte, 64*1024), maxToken)
	scanner.Split(bufio.ScanWords)

	var tokens []string
	for scanner.Scan() {
		tokens = append(tokens, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read tokens: %w", err)
	}

	return tokens, nil
}

// ReadFile reads the tokens of the named file, or of stdin if the name is
// empty or "-".
func ReadFile(filename string) ([]string, error) {
	if filename == "" || filename == "-" {
		return ReadTokens(os.Stdin)
	}

	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return ReadTokens(file)
}
