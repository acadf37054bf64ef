// internal/pipeline/urls.go
package pipeline

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// ReadURLFile reads a newline-delimited URL list. Blank lines and lines
// starting with # are skipped; dedup and platform filtering happen later in
// the batch runner.
func ReadURLFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open URL file: %w", err)
	}
	defer file.Close()

	return ReadURLs(file)
}

// ReadURLs reads a newline-delimited URL list from a reader.
func ReadURLs(reader io.Reader) ([]string, error) {
	var urls []string

	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read URL list: %w", err)
	}

	return urls, nil
}
