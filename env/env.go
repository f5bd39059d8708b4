// Package env loads configuration structs from the environment.
package env

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

const DefaultEnvFile = ".env"

// InitConfig loads DefaultEnvFile if present and fills config from the
// environment using envconfig tags.
func InitConfig(config any) error {
	return InitConfigFrom(config, DefaultEnvFile)
}

// InitConfigFrom loads the given dotenv files, skipping missing ones, and
// fills config. Variables already set in the environment win over files.
func InitConfigFrom(config any, files ...string) error {
	for _, file := range files {
		if _, err := os.Stat(file); err != nil {
			continue
		}
		if err := godotenv.Load(file); err != nil {
			return errors.Wrapf(err, "failed to load %s", file)
		}
	}

	if err := envconfig.Process("", config); err != nil {
		return errors.Wrap(err, "failed to envconfig.Process")
	}

	return nil
}
