package experiment

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"text2phenotype.com/hmmtag/corpus"
	"text2phenotype.com/hmmtag/logger"
	"text2phenotype.com/hmmtag/pos"
	"text2phenotype.com/hmmtag/results"
	"text2phenotype.com/hmmtag/types"
)

var ErrNoStorage = errors.New("configuration needs s3 but no storage was given")

// Storage is the object store holding corpora and receiving result files.
type Storage interface {
	Download(key string) ([]byte, error)
	results.Uploader
}

type ModelCache interface {
	GetOrTrain(ctx context.Context, fingerprint string, train func() (pos.Model, error)) (pos.Model, error)
}

// Deps are optional; a nil Models trains in process every time.
type Deps struct {
	Storage Storage
	Models  ModelCache
}

type Summary struct {
	Name           string
	Fingerprint    string
	TrainSentences int
	TestSentences  int
	Evaluation     pos.Evaluation
	Files          []string
}

var expLogger = logger.NewLogger("Experiment")

func Run(ctx context.Context, cfg types.Configuration, deps Deps) (Summary, error) {
	runLogger := expLogger.With().Str("config", cfg.Name).Logger()
	summary := Summary{Name: cfg.Name}

	sentences, err := loadCorpus(cfg, deps)
	if err != nil {
		return summary, err
	}
	train, test, err := corpus.Split(sentences, cfg.TrainSize, cfg.Seed)
	if err != nil {
		return summary, err
	}
	summary.TrainSentences, summary.TestSentences = len(train), len(test)
	summary.Fingerprint = corpus.Fingerprint(train)
	runLogger.Info().
		Int("train", len(train)).
		Int("test", len(test)).
		Str("fingerprint", summary.Fingerprint).
		Msg("Split corpus")

	trainFn := func() (pos.Model, error) { return pos.Train(train, cfg.Floor) }
	var model pos.Model
	if deps.Models != nil {
		model, err = deps.Models.GetOrTrain(ctx, summary.Fingerprint, trainFn)
	} else {
		model, err = trainFn()
	}
	if err != nil {
		return summary, fmt.Errorf("failed to train model: %w", err)
	}
	// cached models may carry another floor
	model.Floor = cfg.Floor

	gold := types.Flatten(test)
	predicted := model.Decode(types.Words(gold))
	evaluation, err := pos.Evaluate(predicted, gold)
	if err != nil {
		return summary, err
	}
	summary.Evaluation = evaluation
	runLogger.Info().Msgf("Accuracy: %.2f%%", evaluation.Accuracy*100)

	files, err := results.Render(results.Report{Tables: model.Tables, Evaluation: evaluation, Tagged: predicted})
	if err != nil {
		return summary, err
	}
	for name := range files {
		summary.Files = append(summary.Files, name)
	}
	sort.Strings(summary.Files)

	if cfg.OutputDir != "" {
		if err = results.SaveToDir(cfg.OutputDir, files); err != nil {
			return summary, err
		}
		runLogger.Info().Str("dir", cfg.OutputDir).Msg("Saved results")
	}
	if cfg.OutputPrefix != "" {
		if deps.Storage == nil {
			return summary, ErrNoStorage
		}
		if err = results.Upload(deps.Storage, cfg.OutputPrefix, files); err != nil {
			return summary, err
		}
		runLogger.Info().Str("prefix", cfg.OutputPrefix).Msg("Uploaded results")
	}
	if cfg.ModelFile != "" {
		if err = pos.SaveModelToFile(cfg.ModelFile, model); err != nil {
			return summary, err
		}
	}
	return summary, nil
}

// RunAll runs every configuration in order and keeps going past failures.
func RunAll(ctx context.Context, cfgs []types.Configuration, deps Deps) []Summary {
	summaries := make([]Summary, 0, len(cfgs))
	for _, cfg := range cfgs {
		if ctx.Err() != nil {
			break
		}
		summary, err := Run(ctx, cfg, deps)
		if err != nil {
			expLogger.Err(err).Str("config", cfg.Name).Msg("Experiment failed")
			continue
		}
		summaries = append(summaries, summary)
	}
	return summaries
}

func loadCorpus(cfg types.Configuration, deps Deps) ([]types.TaggedSentence, error) {
	paths := append(append([]string{}, cfg.TrainFiles...), cfg.TestFiles...)
	if cfg.Source != types.SourceS3 {
		return corpus.LoadFiles(paths...)
	}
	if deps.Storage == nil {
		return nil, ErrNoStorage
	}
	var sentences []types.TaggedSentence
	for _, key := range paths {
		data, err := deps.Storage.Download(key)
		if err != nil {
			return nil, fmt.Errorf("failed to download %s: %w", key, err)
		}
		loaded, err := corpus.ReadSentences(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", key, err)
		}
		sentences = append(sentences, loaded...)
	}
	return sentences, nil
}
