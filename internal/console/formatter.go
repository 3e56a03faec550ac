package console

import (
	"bufio"
	"fmt"
	"sort"
	"strings"
)

// Formatter writes console output blocks.
type Formatter struct {
	writer *bufio.Writer
}

func NewFormatter(writer *bufio.Writer) *Formatter {
	return &Formatter{writer: writer}
}

func (f *Formatter) WriteHeader(text string) {
	_, _ = f.writer.WriteString("\n")
	_, _ = f.writer.WriteString(text)
	_, _ = f.writer.WriteString("\n")
	_, _ = f.writer.WriteString(strings.Repeat("=", len(text)))
	_, _ = f.writer.WriteString("\n")
}

func (f *Formatter) WriteKeyValue(key, value string) {
	_, _ = f.writer.WriteString(fmt.Sprintf("%-32s: %s\n", key, value))
}

// WriteMap writes m sorted by key.
func (f *Formatter) WriteMap(m map[string]string) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		f.WriteKeyValue(k, m[k])
	}
}

func (f *Formatter) WriteInfo(text string) {
	_, _ = f.writer.WriteString(text)
	_, _ = f.writer.WriteString("\n")
}

func (f *Formatter) WriteSuccess(text string) {
	_, _ = f.writer.WriteString("[OK] ")
	_, _ = f.writer.WriteString(text)
	_, _ = f.writer.WriteString("\n")
}

func (f *Formatter) WriteError(text string) {
	_, _ = f.writer.WriteString("[ERROR] ")
	_, _ = f.writer.WriteString(text)
	_, _ = f.writer.WriteString("\n")
}

func (f *Formatter) Flush() error {
	return f.writer.Flush()
}
