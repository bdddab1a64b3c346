package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mseclab/gramfuzz/gram"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate samples from one or more grammar files",
	RunE:  runGenerate,
}

func init() {
	flags := generateCmd.Flags()
	flags.StringSlice("grammar", nil, "grammar file to load (repeatable)")
	flags.String("category", "", "category to generate from")
	flags.String("group", "", "group to generate from (uses its registered top category)")
	flags.Int("count", 1, "number of samples per grammar file")
	flags.StringSlice("preferred", nil, "preferred rule/group names")
	flags.Float64("preferred-ratio", 0.5, "probability of drawing from the preferred set")
	flags.Int("max-recursion", 50, "reference-depth cap before forcing shortest mode")
	flags.Uint64("seed", 1, "PRNG seed")
	flags.Int("workers", 1, "number of grammar files generated concurrently")
	if err := viper.BindPFlags(flags); err != nil {
		logger.WithError(err).Fatal("gramfuzz: failed to bind generate flags")
	}
}

type generationJob struct {
	path string
}

type generationResult struct {
	path    string
	samples []string
	err     error
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	paths := viper.GetStringSlice("grammar")
	if len(paths) == 0 {
		return errors.New("gramfuzz: --grammar is required (may be repeated)")
	}

	opts := generateOptionsFromFlags()

	workers := viper.GetInt("workers")
	if workers < 1 {
		workers = 1
	}

	process := func(job generationJob) generationResult {
		samples, err := generateFromFile(ctx, job.path, opts)
		return generationResult{path: job.path, samples: samples, err: err}
	}

	p := newPool(ctx, workers, process)
	defer p.stopAndWait()

	go func() {
		for _, path := range paths {
			if err := p.run(ctx, generationJob{path: path}); err != nil {
				return
			}
		}
	}()

	var failed error
	for i := 0; i < len(paths); i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case result, ok := <-p.results:
			if !ok {
				return errors.New("gramfuzz: generation result channel closed early")
			}
			if result.err != nil {
				logger.WithError(result.err).WithField("grammar", result.path).Error("gramfuzz: generation failed")
				failed = result.err
				continue
			}
			for _, s := range result.samples {
				fmt.Println(s)
			}
		}
	}
	return failed
}

func generateOptionsFromFlags() []gram.GenerateOption {
	opts := []gram.GenerateOption{
		gram.WithCount(viper.GetInt("count")),
		gram.WithPreferredRatio(viper.GetFloat64("preferred-ratio")),
		gram.WithMaxRecursion(viper.GetInt("max-recursion")),
		gram.WithSeed(viper.GetUint64("seed")),
	}
	if cat := viper.GetString("category"); cat != "" {
		opts = append(opts, gram.WithCategory(cat))
	}
	if group := viper.GetString("group"); group != "" {
		opts = append(opts, gram.WithGroup(group))
	}
	if preferred := viper.GetStringSlice("preferred"); len(preferred) > 0 {
		opts = append(opts, gram.WithPreferred(preferred...))
	}
	return opts
}

func generateFromFile(ctx context.Context, path string, opts []gram.GenerateOption) ([]string, error) {
	reg, src, err := loadRegistry(path)
	if err != nil {
		return nil, err
	}

	fileOpts := opts
	if viper.GetString("category") == "" && viper.GetString("group") == "" {
		fileOpts = append(append([]gram.GenerateOption{}, opts...), gram.WithCategory(src.Category))
	}

	return reg.Generate(ctx, fileOpts...)
}
