// Package labelmap loads classifier label lists.
package labelmap

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrEmpty is returned when a label list contains no labels.
var ErrEmpty = errors.New("labelmap: no labels")

// LoadFile reads a text file with one label per line.
func LoadFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open label file: %w", err)
	}
	defer f.Close()

	return Read(f)
}

// Read parses one label per line. Surrounding whitespace is trimmed and
// blank lines are skipped.
func Read(r io.Reader) ([]string, error) {
	labels := []string{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			labels = append(labels, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read labels: %w", err)
	}
	if len(labels) == 0 {
		return nil, ErrEmpty
	}
	return labels, nil
}
