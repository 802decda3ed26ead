package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env"
	yaml "gopkg.in/yaml.v2"
)

type Config struct {
	Addr   string `yaml:"addr" env:"URW_ADDR"`
	DBPath string `yaml:"db-path" env:"URW_DB_PATH"`
}

func Default() Config {
	return Config{
		Addr:   "127.0.0.1:8080",
		DBPath: "urw.db",
	}
}

// Load superpose: défauts ← fichier YAML (optionnel) ← variables
// d'environnement. path vide → URW_CONFIG, sinon pas de fichier.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("URW_CONFIG")
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
