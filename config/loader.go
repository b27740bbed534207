package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = "campusdash.yaml"
	DefaultEnvFile    = ".env"
)

// Loader layers the config sources: defaults, then the YAML file, then the dotenv file and the environment, then
// flags. The environment wins over the dotenv file.
type Loader struct {
	configPath string
	envFile    string
	flags      *Flags
	lookupEnv  func(string) (string, bool)
}

func NewLoader(flags *Flags) *Loader {
	l := &Loader{envFile: DefaultEnvFile, flags: flags, lookupEnv: os.LookupEnv}
	if flags != nil {
		l.configPath = flags.ConfigPath
		if flags.EnvFile != "" {
			l.envFile = flags.EnvFile
		}
	}
	return l
}

func (l *Loader) Load() (*Config, error) {
	cfg := Default()

	if err := l.loadFile(cfg); err != nil {
		return nil, err
	}
	if err := l.loadEnv(cfg); err != nil {
		return nil, err
	}
	l.flags.apply(cfg)

	cfg.Process()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (l *Loader) loadFile(cfg *Config) error {
	path := l.configPath
	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath
	}

	c, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return NewReadError(path, err)
	}
	if err = yaml.Unmarshal(c, cfg); err != nil {
		return NewParseError(path, err)
	}
	return nil
}

func (l *Loader) loadEnv(cfg *Config) error {
	dotenv, err := godotenv.Read(l.envFile)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return NewReadError(l.envFile, err)
		}
		dotenv = map[string]string{}
	}
	getenv := func(key string) string {
		if v, ok := l.lookupEnv(key); ok && v != "" {
			return v
		}
		return dotenv[key]
	}

	if v := getenv("LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := getenv("SHUTDOWN_WAIT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return NewEnvError("SHUTDOWN_WAIT", err)
		}
		cfg.ShutdownWait = d
	}
	if v := getenv("API_BASE_URL"); v != "" {
		cfg.APIBaseURL = v
	}
	if v := getenv("TIMEZONE"); v != "" {
		cfg.Timezone = v
	}
	return nil
}
