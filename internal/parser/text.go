package parser

import (
	"bufio"
	"io"
	"strings"
)

const byteOrderMark = "\uFEFF"

// TextExtractor handles plain mARkdown files. Lines are read without a
// length cap; some OpenITI files carry a whole chapter on one line.
type TextExtractor struct{}

func (p *TextExtractor) Extract(r io.Reader, filename string) (string, error) {
	br := bufio.NewReader(r)

	var buf strings.Builder
	first := true
	for {
		raw, err := br.ReadString('\n')
		if err != nil && err != io.EOF {
			return "", err
		}
		if raw == "" && err == io.EOF {
			break
		}
		line := strings.TrimSuffix(strings.TrimSuffix(raw, "\n"), "\r")
		if first {
			line = strings.TrimPrefix(line, byteOrderMark)
			first = false
		} else {
			buf.WriteByte('\n')
		}
		buf.WriteString(line)
		if err == io.EOF {
			break
		}
	}
	return buf.String(), nil
}
