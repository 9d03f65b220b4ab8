package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultFileName   = ".piispectre.yaml"
	alternateFileName = ".piispectre.yml"
)

// Environment variables recognized for deployment parity with the original
// scanner.
const (
	EnvResultBucket = "RESULT_BUCKET"
	EnvEnableSQS    = "ENABLE_SQS"
	EnvSQSQueueURL  = "SQS_QUEUE_URL"
)

// File holds persistent defaults loaded from a config file.
type File struct {
	Region         string   `yaml:"region"`
	ResultBucket   string   `yaml:"result_bucket"`
	ExcludeBuckets []string `yaml:"exclude_buckets"`
	Concurrency    int      `yaml:"concurrency"`
	Format         string   `yaml:"format"`
	Timeout        string   `yaml:"timeout"`
}

// TimeoutDuration parses the Timeout field as a Go duration.
// Returns 0 if empty or unparseable.
func (f *File) TimeoutDuration() time.Duration {
	if f.Timeout == "" {
		return 0
	}
	d, err := time.ParseDuration(f.Timeout)
	if err != nil {
		return 0
	}
	return d
}

// Load searches for a config file in the given directory and the user's home
// directory. Returns a zero-value File if no file is found.
func Load(dir string) (File, error) {
	paths := searchPaths(dir)
	for _, p := range paths {
		cfg, found, err := loadPath(p)
		if err != nil {
			return File{}, err
		}
		if found {
			return cfg, nil
		}
	}
	return File{}, nil
}

func searchPaths(dir string) []string {
	var paths []string
	if dir != "" {
		paths = append(paths, filepath.Join(dir, defaultFileName))
		paths = append(paths, filepath.Join(dir, alternateFileName))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, defaultFileName))
		paths = append(paths, filepath.Join(home, alternateFileName))
	}
	return paths
}

func loadPath(path string) (File, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return File{}, false, nil
		}
		return File{}, false, err
	}
	var cfg File
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return File{}, false, err
	}
	return cfg, true, nil
}

// Settings is the resolved runtime configuration for a scan.
type Settings struct {
	ResultBucket string
	EnableSQS    bool
	SQSQueueURL  string
}

// FromEnv reads the recognized environment variables.
func FromEnv() Settings {
	return Settings{
		ResultBucket: os.Getenv(EnvResultBucket),
		EnableSQS:    parseBool(os.Getenv(EnvEnableSQS)),
		SQSQueueURL:  os.Getenv(EnvSQSQueueURL),
	}
}

// Validate checks that required settings are present, including the queue
// URL when notification is on.
func (s Settings) Validate() error {
	if s.ResultBucket == "" {
		return fmt.Errorf("%s is required", EnvResultBucket)
	}
	if s.EnableSQS && s.SQSQueueURL == "" {
		return fmt.Errorf("%s is required when %s is true", EnvSQSQueueURL, EnvEnableSQS)
	}
	return nil
}

func parseBool(v string) bool {
	return strings.EqualFold(strings.TrimSpace(v), "true")
}
