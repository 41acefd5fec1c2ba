// Package results renders a finished run into the tabular files written by
// the experiment: probability matrices, accuracy, mismatches and predictions.
package results

import (
	"bytes"
	"encoding/csv"
	"math"
	"os"
	"path"
	"sort"
	"strconv"
	"strings"
	"text2phenotype.com/hmmtag/pos"
)

const (
	TransitionsFile = "transition_probs.csv"
	EmissionsFile   = "emission_probs.csv"
	AccuracyFile    = "accuracy.csv"
	MismatchesFile  = "mismatches.csv"
	PredictedFile   = "predicted_tags.txt"
)

type Report struct {
	Tables     pos.Tables
	Evaluation pos.Evaluation
	Tagged     []pos.Decoded
}

type Uploader interface {
	Upload(data string, key string) error
}

// Render returns file name -> contents.
func Render(report Report) (map[string][]byte, error) {
	files := make(map[string][]byte, 5)
	var err error

	if files[TransitionsFile], err = matrix(report.Tables.A); err != nil {
		return nil, err
	}
	if files[EmissionsFile], err = matrix(report.Tables.B); err != nil {
		return nil, err
	}
	if files[AccuracyFile], err = writeRows([][]string{
		{"accuracy"},
		{formatFloat(report.Evaluation.Accuracy)},
	}); err != nil {
		return nil, err
	}

	rows := [][]string{{"word", "predicted", "gold"}}
	for _, m := range report.Evaluation.Mismatches {
		rows = append(rows, []string{m.Word, m.PredictedTag(), m.Gold})
	}
	if files[MismatchesFile], err = writeRows(rows); err != nil {
		return nil, err
	}

	var predicted bytes.Buffer
	for _, d := range report.Tagged {
		predicted.WriteString(d.Word)
		predicted.WriteByte('\t')
		predicted.WriteString(d.TagOrEmpty())
		predicted.WriteByte('\n')
	}
	files[PredictedFile] = predicted.Bytes()

	return files, nil
}

// matrix lays out outer keys as columns and inner keys as rows; missing
// cells are written as 0.
func matrix(table map[string]map[string]float64) ([]byte, error) {
	columns := make([]string, 0, len(table))
	rowSet := make(map[string]bool)
	for col, inner := range table {
		columns = append(columns, col)
		for row := range inner {
			rowSet[row] = true
		}
	}
	sort.Strings(columns)
	rowKeys := make([]string, 0, len(rowSet))
	for row := range rowSet {
		rowKeys = append(rowKeys, row)
	}
	sort.Strings(rowKeys)

	rows := make([][]string, 0, len(rowKeys)+1)
	rows = append(rows, append([]string{""}, columns...))
	for _, key := range rowKeys {
		row := make([]string, 0, len(columns)+1)
		row = append(row, key)
		for _, col := range columns {
			row = append(row, formatFloat(table[col][key]))
		}
		rows = append(rows, row)
	}
	return writeRows(rows)
}

func writeRows(rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// formatFloat writes the shortest representation and keeps a decimal point
// on whole numbers (1.0, 0.0) so every cell reads as a float.
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if math.IsInf(f, 0) || math.IsNaN(f) || strings.ContainsAny(s, ".e") {
		return s
	}
	return s + ".0"
}

func SaveToDir(dir string, files map[string][]byte) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	for _, name := range sortedNames(files) {
		if err := os.WriteFile(path.Join(dir, name), files[name], 0o644); err != nil {
			return err
		}
	}
	return nil
}

func Upload(uploader Uploader, prefix string, files map[string][]byte) error {
	for _, name := range sortedNames(files) {
		if err := uploader.Upload(string(files[name]), path.Join(prefix, name)); err != nil {
			return err
		}
	}
	return nil
}

func sortedNames(files map[string][]byte) []string {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
