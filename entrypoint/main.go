package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"github.com/kelseyhightower/envconfig"
	"net/http"
	"os"
	"text2phenotype.com/hmmtag/api"
	"text2phenotype.com/hmmtag/experiment"
	"text2phenotype.com/hmmtag/logger"
	"text2phenotype.com/hmmtag/pipeline"
	"text2phenotype.com/hmmtag/pos"
	"text2phenotype.com/hmmtag/s3client"
	"text2phenotype.com/hmmtag/tasks"
	"text2phenotype.com/hmmtag/types"
	"text2phenotype.com/hmmtag/worker"
	"time"
)

type Config struct {
	ConfigPath       string `envconfig:"HMMTAG_CONFIG_PATH"`
	ModelPath        string `envconfig:"HMMTAG_MODEL_PATH"`
	ModelFingerprint string `envconfig:"HMMTAG_MODEL_FINGERPRINT"`
	ModelCacheActive bool   `envconfig:"HMMTAG_MODEL_CACHE_ACTIVE" default:"false"`
	S3Active         bool   `envconfig:"HMMTAG_S3_ACTIVE" default:"false"`
	RestAPIActive    bool   `envconfig:"HMMTAG_REST_API_ACTIVE" default:"false"`
	RestAPIPort      string `envconfig:"HMMTAG_REST_API_PORT" default:"10000"`
	WorkerActive     bool   `envconfig:"HMMTAG_WORKER_ACTIVE" default:"true"`
}

const modelLoadMaxRetries = 5

var errNoModelSource = errors.New("neither HMMTAG_MODEL_PATH nor HMMTAG_MODEL_FINGERPRINT is set")

func main() {
	logger.SetupLogging()
	hmmLogger := logger.NewLogger("Main")
	fatalErrLogger := hmmLogger.Fatal().Caller()
	runExperiments := flag.Bool("experiment", false, "train and evaluate every run configuration, then exit")
	flag.Parse()
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		fatalErrLogger.Err(err).Msg("Failed to read environment")
		os.Exit(1)
	}
	ctx := context.Background()

	if *runExperiments {
		if config.ConfigPath == "" {
			fatalErrLogger.Msg("HMMTAG_CONFIG_PATH is required to run experiments")
			os.Exit(1)
		}
		cfgs, err := types.LoadConfigurations(config.ConfigPath)
		if err != nil {
			fatalErrLogger.Err(err).Msg("Failed to load configurations")
			os.Exit(1)
		}
		hmmLogger.Info().Msgf("Loaded %d configurations", len(cfgs))
		deps, closeDeps, err := experimentDeps(config)
		if err != nil {
			fatalErrLogger.Err(err).Msg("Failed to connect experiment dependencies")
			os.Exit(1)
		}
		defer closeDeps()
		summaries := experiment.RunAll(ctx, cfgs, deps)
		hmmLogger.Info().Msgf("Finished %d of %d experiments. Exit...", len(summaries), len(cfgs))
		return
	}

	// Load model
	modelChannel := make(chan pos.Model)
	go func() {
		for retry := 0; retry < modelLoadMaxRetries; retry++ {
			model, err := loadModel(ctx, config)
			if err != nil {
				hmmLogger.Err(err).Msg("Failed to load model. Retrying in 5 sec")
				time.Sleep(5 * time.Second)
				continue
			}
			hmmLogger.Info().Int("tags", len(model.Tags)).Msg("Model loaded")
			modelChannel <- model
			return
		}
		fatalErrLogger.Msgf("Could not load model after %d retries, exiting", modelLoadMaxRetries)
		os.Exit(1)
	}()

	// block until model loads
	ppln := pipeline.New(<-modelChannel)

	if config.RestAPIActive {
		go func() {
			apiRequest := &api.Request{Pipeline: ppln}
			host := fmt.Sprintf(":%s", config.RestAPIPort)
			hmmLogger.Info().Msgf("REST API on %s", host)
			err := http.ListenAndServe(host, apiRequest.Handler())
			fatalErrLogger.Err(err).Msg("REST API stopped with error")
		}()
	}

	if !config.WorkerActive {
		select {}
	}

	hmmLogger.Info().Msg("Start HMM tagger worker")
	for {
		rmqWorker, err := worker.New(ppln)
		if err != nil {
			fatalErrLogger.Err(err).Msg("Could not initialize RMQ worker")
			os.Exit(1)
		}
		err = rmqWorker.StartWorker(ctx)
		if err != nil {
			hmmLogger.Err(err).Msg("Worker returned with error. Launching new in 5 seconds")
			time.Sleep(5 * time.Second)
		}
	}
}

func loadModel(ctx context.Context, config Config) (pos.Model, error) {
	if config.ModelPath != "" {
		return pos.LoadModelFromFile(config.ModelPath)
	}
	if config.ModelFingerprint == "" {
		return pos.Model{}, errNoModelSource
	}
	client, err := tasks.NewClient()
	if err != nil {
		return pos.Model{}, err
	}
	defer client.Close()
	return client.Models.Get(ctx, config.ModelFingerprint)
}

func experimentDeps(config Config) (experiment.Deps, func(), error) {
	var deps experiment.Deps
	var closers []func()
	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}
	if config.S3Active {
		client, err := s3client.New()
		if err != nil {
			return deps, closeAll, err
		}
		deps.Storage = client
		closers = append(closers, client.Close)
	}
	if config.ModelCacheActive {
		client, err := tasks.NewClient()
		if err != nil {
			closeAll()
			return deps, func() {}, err
		}
		deps.Models = client.Models
		closers = append(closers, client.Close)
	}
	return deps, closeAll, nil
}
