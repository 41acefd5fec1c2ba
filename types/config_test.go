package types

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadConfigurations(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "gsd.yaml", `
train_files: [parse/GSD_train.txt]
test_files: [parse/GSD_test.txt]
output_dir: output
`)
	writeFile(t, dir, "custom.yaml", `
source: s3
train_files: [corpora/train.conllu]
train_size: 0.9
seed: 7
floor: 0.001
`)
	writeFile(t, dir, "broken.yaml", `
train_files: [a.txt]
floor: 2
`)
	writeFile(t, dir, "notes.txt", "ignored")

	cfgs, err := LoadConfigurations(dir)
	require.NoError(t, err)
	require.Len(t, cfgs, 2)

	custom, gsd := cfgs[0], cfgs[1]
	assert.Equal(t, "custom", custom.Name)
	assert.Equal(t, SourceS3, custom.Source)
	assert.Equal(t, 0.9, custom.TrainSize)
	assert.Equal(t, int64(7), custom.Seed)
	assert.Equal(t, 0.001, custom.Floor)

	assert.Equal(t, "gsd", gsd.Name)
	assert.Equal(t, SourceLocal, gsd.Source)
	assert.Equal(t, DefaultTrainSize, gsd.TrainSize)
	assert.Equal(t, int64(DefaultSeed), gsd.Seed)
	assert.Equal(t, DefaultFloor, gsd.Floor)
	assert.Equal(t, []string{"parse/GSD_test.txt"}, gsd.TestFiles)
}

func TestValidate(t *testing.T) {
	base := Configuration{Source: SourceLocal, TrainFiles: []string{"a"}, TrainSize: 0.8, Floor: 1e-8}
	require.NoError(t, base.Validate())

	noFiles := base
	noFiles.TrainFiles = nil
	assert.Error(t, noFiles.Validate())

	badSource := base
	badSource.Source = "ftp"
	assert.Error(t, badSource.Validate())

	badSplit := base
	badSplit.TrainSize = 1
	assert.Error(t, badSplit.Validate())

	nanSplit := base
	nanSplit.TrainSize = math.NaN()
	assert.Error(t, nanSplit.Validate())

	nanFloor := base
	nanFloor.Floor = math.NaN()
	assert.Error(t, nanFloor.Validate())
}

func TestLoadConfigurationRejectsNaN(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "split.yaml", "train_files: [a.txt]\ntrain_size: .nan\n")
	writeFile(t, dir, "floor.yaml", "train_files: [a.txt]\nfloor: .nan\n")

	_, err := LoadConfiguration(filepath.Join(dir, "split.yaml"))
	assert.Error(t, err)
	_, err = LoadConfiguration(filepath.Join(dir, "floor.yaml"))
	assert.Error(t, err)
}

func TestLoadConfigurationKeepsExplicitZeroSeed(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "zero.yaml", "train_files: [a.txt]\nseed: 0\n")
	writeFile(t, dir, "unset.yaml", "train_files: [a.txt]\n")

	zero, err := LoadConfiguration(filepath.Join(dir, "zero.yaml"))
	require.NoError(t, err)
	assert.Equal(t, int64(0), zero.Seed)

	unset, err := LoadConfiguration(filepath.Join(dir, "unset.yaml"))
	require.NoError(t, err)
	assert.Equal(t, int64(DefaultSeed), unset.Seed)
}

func TestLoadConfigurationRejectsExplicitZeroFloor(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "zero.yaml", "train_files: [a.txt]\nfloor: 0\n")
	_, err := LoadConfiguration(filepath.Join(dir, "zero.yaml"))
	assert.Error(t, err)
}

func TestFlatten(t *testing.T) {
	sents := []TaggedSentence{
		{{Word: "the", Tag: "DET"}, {Word: "dog", Tag: "NOUN"}},
		{},
		{{Word: "runs", Tag: "VERB"}},
	}
	pairs := Flatten(sents)
	assert.Equal(t, []TaggedWord{{Word: "the", Tag: "DET"}, {Word: "dog", Tag: "NOUN"}, {Word: "runs", Tag: "VERB"}}, pairs)
	assert.Equal(t, []string{"the", "dog", "runs"}, Words(pairs))
}
