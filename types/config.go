package types

import (
	"errors"
	"fmt"
	"gopkg.in/yaml.v3"
	"os"
	"path"
	"sort"
	"strings"
	"sync"
	"text2phenotype.com/hmmtag/logger"
)

const (
	SourceLocal = "local"
	SourceS3    = "s3"

	DefaultTrainSize = 0.8
	DefaultSeed      = 1234
	DefaultFloor     = 1e-8
)

type Configuration struct {
	Name         string   `json:"name"`
	FilePath     string   `json:"file_path"`
	Source       string   `yaml:"source" json:"source"`
	TrainFiles   []string `yaml:"train_files" json:"train_files"`
	TestFiles    []string `yaml:"test_files" json:"test_files"`
	TrainSize    float64  `yaml:"train_size" json:"train_size"`
	Seed         int64    `yaml:"seed" json:"seed"`
	Floor        float64  `yaml:"floor" json:"floor"`
	OutputDir    string   `yaml:"output_dir" json:"output_dir"`
	OutputPrefix string   `yaml:"output_prefix" json:"output_prefix"`
	ModelFile    string   `yaml:"model_file" json:"model_file"`
}

// defaultConfiguration is filled before decoding, so only keys present in
// the file override it and an explicit "seed: 0" stays 0.
func defaultConfiguration(name, filePath string) Configuration {
	return Configuration{
		Name:      name,
		FilePath:  filePath,
		Source:    SourceLocal,
		TrainSize: DefaultTrainSize,
		Seed:      DefaultSeed,
		Floor:     DefaultFloor,
	}
}

func (cfg Configuration) Validate() error {
	if cfg.Source != SourceLocal && cfg.Source != SourceS3 {
		return fmt.Errorf("wrong corpus source %q", cfg.Source)
	}
	if len(cfg.TrainFiles) == 0 {
		return errors.New("no train files")
	}
	if !(cfg.TrainSize > 0 && cfg.TrainSize < 1) {
		return fmt.Errorf("train_size must be in (0, 1), got %v", cfg.TrainSize)
	}
	if !(cfg.Floor > 0 && cfg.Floor < 1) {
		return fmt.Errorf("floor must be in (0, 1), got %v", cfg.Floor)
	}
	return nil
}

func LoadConfiguration(filePath string) (Configuration, error) {
	_, fileName := path.Split(filePath)
	cfg := defaultConfiguration(strings.TrimSuffix(fileName, ".yaml"), filePath)
	buf, err := os.ReadFile(filePath)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// LoadConfigurations reads every *.yaml run configuration in dirPath.
// Broken files are logged and skipped.
func LoadConfigurations(dirPath string) ([]Configuration, error) {
	hmmLogger := logger.NewLogger("LoadConfigurations")

	files, err := os.ReadDir(dirPath)
	if err != nil {
		return nil, err
	}

	var wg sync.WaitGroup
	configChan := make(chan Configuration, len(files))
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".yaml") {
			continue
		}

		wg.Add(1)
		go func(filePath string) {
			defer wg.Done()
			cfg, err := LoadConfiguration(filePath)
			if err != nil {
				hmmLogger.Err(err).Str("file_path", filePath).Msg("Skipping run configuration")
				return
			}
			configChan <- cfg
		}(path.Join(dirPath, f.Name()))
	}

	go func() {
		wg.Wait()
		close(configChan)
	}()

	configs := make([]Configuration, 0, len(files))
	for cfg := range configChan {
		configs = append(configs, cfg)
	}
	sort.Slice(configs, func(i, j int) bool { return configs[i].Name < configs[j].Name })
	return configs, nil
}
