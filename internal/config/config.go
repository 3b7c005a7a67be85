package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. QUILL_OUTPUTDIR.
const EnvPrefix = "QUILL"

type Config struct {
	SiteTitle    string        `mapstructure:"siteTitle"`
	BaseURL      string        `mapstructure:"baseURL"`
	OutputDir    string        `mapstructure:"outputDir"`
	ContentDir   string        `mapstructure:"contentDir"`
	LayoutsDir   string        `mapstructure:"layoutsDir"`
	StaticDir    string        `mapstructure:"staticDir"`
	ProjectsFile string        `mapstructure:"projectsFile"`
	ImageDir     string        `mapstructure:"imageDir"`
	ImageWidth   int           `mapstructure:"imageWidth"`
	Production   bool          `mapstructure:"production"`
	LogLevel     string        `mapstructure:"logLevel"`
	FetchTimeout time.Duration `mapstructure:"fetchTimeout"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("siteTitle", "My Site")
	v.SetDefault("baseURL", "")
	v.SetDefault("outputDir", "public")
	v.SetDefault("contentDir", "src/posts")
	v.SetDefault("layoutsDir", "layouts")
	v.SetDefault("staticDir", "static")
	v.SetDefault("projectsFile", "src/_data/site/projects.json")
	v.SetDefault("imageDir", "src/assets/img/projects")
	v.SetDefault("imageWidth", 512)
	v.SetDefault("production", false)
	v.SetDefault("logLevel", "info")
	v.SetDefault("fetchTimeout", 30*time.Second)
}

// Load builds the configuration from defaults, an optional config file and
// QUILL_* environment variables (a .env file in the working directory is read
// first). When cfgFile is empty, ./config.yaml is used if it exists.
func Load(cfgFile string) (Config, error) {
	var cfg Config

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("failed to read .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		log.Debug().Msg("no config file found, using defaults and environment")
	} else {
		log.Debug().Str("file", v.ConfigFileUsed()).Msg("using config file")
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	return cfg, nil
}
