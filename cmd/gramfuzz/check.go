package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mseclab/gramfuzz/gram"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run the reference analyzer and report pruned or unreachable rules",
	RunE:  runCheck,
}

func init() {
	flags := checkCmd.Flags()
	flags.StringSlice("grammar", nil, "grammar file to check (repeatable)")
	if err := viper.BindPFlags(flags); err != nil {
		logger.WithError(err).Fatal("gramfuzz: failed to bind check flags")
	}
}

func runCheck(_ *cobra.Command, _ []string) error {
	paths := viper.GetStringSlice("grammar")
	if len(paths) == 0 {
		return fmt.Errorf("gramfuzz: --grammar is required (may be repeated)")
	}

	var anyUnreachable bool
	for _, path := range paths {
		reg, src, err := loadRegistry(path)
		if err != nil {
			return err
		}

		before := reg.Names(src.Category)
		reg.Preprocess()
		after := reg.Names(src.Category)

		pruned := diffNames(before, after)
		for _, name := range pruned {
			logger.WithField("grammar", path).WithField("rule", name).Warn("gramfuzz: rule pruned as unreachable")
		}

		if len(after) == 0 {
			anyUnreachable = true
			logger.WithField("grammar", path).WithField("category", src.Category).
				WithError(gram.ErrUnreachableGrammar).Error("gramfuzz: every rule in category is unreachable")
			continue
		}
		fmt.Printf("%s: category %q ok, %d live rule(s), %d pruned\n", path, src.Category, len(after), len(pruned))
	}

	if anyUnreachable {
		return gram.ErrUnreachableGrammar
	}
	return nil
}

func diffNames(before, after []string) []string {
	live := make(map[string]bool, len(after))
	for _, n := range after {
		live[n] = true
	}
	var pruned []string
	for _, n := range before {
		if !live[n] {
			pruned = append(pruned, n)
		}
	}
	return pruned
}
