package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v2"

	"github.com/Bitlatte/quill/cmd"
	"github.com/Bitlatte/quill/internal/logger"
	"github.com/Bitlatte/quill/internal/model"
)

var site model.SiteData

// loadSiteConfig reads the free-form site settings layouts see as
// .Site.Config. A missing file leaves them empty.
func loadSiteConfig(filename string) error {
	yamlFile, err := os.ReadFile(filename)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("error reading config file %s: %w", filename, err)
	}

	err = yaml.Unmarshal(yamlFile, &site.Config)
	if err != nil {
		return fmt.Errorf("error unmarshalling config file %s: %w", filename, err)
	}
	return nil
}

func main() {
	logger.Initialize("info")
	if err := loadSiteConfig("config.yaml"); err != nil {
		log.Fatal().Err(err).Msg("error loading site configuration")
	}
	cmd.Execute(&site)
}
