// Package corpus reads tagged sentences from column-formatted treebank files
// and prepares train/test splits.
package corpus

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"text2phenotype.com/hmmtag/types"
)

const (
	wordColumn = 1
	tagColumn  = 3
	minColumns = 4

	maxLineSize = 1024 * 1024
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadSentences parses blank-line separated blocks, one token per line. The
// word is the second column and the tag the fourth; shorter lines are ignored.
func ReadSentences(r io.Reader) ([]types.TaggedSentence, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var sentences []types.TaggedSentence
	var sent types.TaggedSentence
	flush := func() {
		if len(sent) > 0 {
			sentences = append(sentences, sent)
		}
		sent = nil
	}

	first := true
	for scanner.Scan() {
		line := scanner.Bytes()
		if first {
			line = bytes.TrimPrefix(line, utf8BOM)
			first = false
		}
		text := strings.TrimSpace(string(line))
		if text == "" {
			flush()
			continue
		}
		if strings.HasPrefix(text, "#") {
			continue
		}

		parts := strings.Fields(text)
		if len(parts) < minColumns || isSyntheticRow(parts[0]) {
			continue
		}
		sent = append(sent, types.TaggedWord{Word: parts[wordColumn], Tag: parts[tagColumn]})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	flush()

	return sentences, nil
}

// multi-word ranges ("3-4") and empty nodes ("5.1") are not surface tokens
func isSyntheticRow(id string) bool {
	return strings.ContainsAny(id, "-.")
}

func LoadSentences(path string) ([]types.TaggedSentence, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sents, err := ReadSentences(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return sents, nil
}

// LoadFiles concatenates the sentences of every file in order.
func LoadFiles(paths ...string) ([]types.TaggedSentence, error) {
	var all []types.TaggedSentence
	for _, p := range paths {
		sents, err := LoadSentences(p)
		if err != nil {
			return nil, err
		}
		all = append(all, sents...)
	}
	return all, nil
}
