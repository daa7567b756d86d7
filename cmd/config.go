package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/schematiq/schematiq/internal/config"
	"github.com/schematiq/schematiq/internal/logger"
)

const configName = ".schematiq"

// InitConfig reads in the config file and environment variables.
func InitConfig() {
	// A missing .env is fine.
	_ = godotenv.Load()

	viper.SetEnvPrefix(config.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	config.SetDefaults(viper.GetViper())

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigName(configName)
	}

	readErr := viper.ReadInConfig()

	// Logging comes up before config errors are reported so they are visible.
	logger.Setup(os.Stderr, levelFromViper())

	if readErr != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(readErr, &notFound) && cfgFile == "" {
			slog.Debug("no config file found, using defaults and environment")
		} else {
			slog.Error("reading config file", "file", viper.ConfigFileUsed(), "error", readErr)
		}
		return
	}
	slog.Debug("using config file", "file", viper.ConfigFileUsed())
}

func levelFromViper() slog.Level {
	if viper.GetBool("verbose") {
		return slog.LevelDebug
	}
	lvl, err := logger.ParseLevel(viper.GetString("log.level"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid log.level: %v\n", err)
	}
	return lvl
}

// loadConfig decodes and validates the merged configuration.
func loadConfig() (*config.AppConfig, error) {
	return config.Load(viper.GetViper())
}

// watchConfig re-applies the log level whenever the config file changes.
// Other settings take effect on restart.
func watchConfig() {
	if viper.ConfigFileUsed() == "" {
		return
	}
	viper.OnConfigChange(func(e fsnotify.Event) {
		slog.Info("config file changed", "file", e.Name, "op", e.Op.String())
		logger.SetLevel(levelFromViper())
	})
	viper.WatchConfig()
}
