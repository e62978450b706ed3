package watchlist

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Load reads tickers from a file: one or more per line, separated by commas
// or whitespace; "#" starts a comment. Duplicates are dropped, order kept.
func Load(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open watchlist: %w", err)
	}
	defer f.Close()

	tickers, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("read watchlist %s: %w", path, err)
	}
	return tickers, nil
}

// Parse reads tickers from r using the Load format
func Parse(r io.Reader) ([]string, error) {
	var tickers []string
	seen := make(map[string]struct{})

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if i := strings.Index(line, "#"); i >= 0 {
			line = line[:i]
		}

		for _, field := range strings.FieldsFunc(line, isSeparator) {
			ticker := strings.ToUpper(field)
			if _, dup := seen[ticker]; dup {
				continue
			}
			seen[ticker] = struct{}{}
			tickers = append(tickers, ticker)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return tickers, nil
}

// Resolve prefers the file when given, else the configured list
func Resolve(path string, fallback []string) ([]string, error) {
	if path != "" {
		return Load(path)
	}
	if len(fallback) == 0 {
		return nil, fmt.Errorf("no watchlist: pass --watchlist or set WATCHLIST")
	}
	return Parse(strings.NewReader(strings.Join(fallback, ",")))
}

func isSeparator(r rune) bool {
	return r == ',' || r == ';' || r == ' ' || r == '\t'
}
