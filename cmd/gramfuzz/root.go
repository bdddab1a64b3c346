package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfg    = viper.New()
	logger = logrus.New()
)

var rootCmd = &cobra.Command{
	Use:   "gramfuzz",
	Short: "Grammar-based data generator for fuzz testing",
}

// Execute wires up the command tree and flag binding, then runs cobra.
func Execute() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
	if err := cfg.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		logger.WithError(err).Fatal("gramfuzz: failed to bind persistent flags")
	}

	cobra.OnInitialize(func() {
		if cfg.GetBool("verbose") {
			logger.SetLevel(logrus.DebugLevel)
			logrus.SetLevel(logrus.DebugLevel)
		}
	})

	rootCmd.AddCommand(generateCmd, checkCmd)

	if err := rootCmd.Execute(); err != nil {
		logger.WithError(err).Error("gramfuzz: command failed")
		os.Exit(1)
	}
}
