package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Bitlatte/quill/internal/config"
	"github.com/Bitlatte/quill/internal/logger"
	"github.com/Bitlatte/quill/internal/model"
)

var cfgFile string
var appConfig config.Config

// siteData is shared by build and serve; main fills Config from config.yaml.
var siteData *model.SiteData

var rootCmd = &cobra.Command{
	Use:   "quill",
	Short: "quill - write, build and measure a Markdown site",
	Long: `quill scaffolds posts, link posts, changelog entries and projects for a
Markdown site, builds it into static HTML and reports writing statistics.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeConfig(cmd)
	},
}

func Execute(site *model.SiteData) {
	siteData = site
	if siteData.Config == nil {
		siteData.Config = make(map[string]interface{})
	}
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
}

func initializeConfig(_ *cobra.Command) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	appConfig = cfg
	logger.Initialize(cfg.LogLevel)

	// Layouts read site settings from Site.Config; fill in what config.yaml
	// left out so defaults and QUILL_* overrides are visible there too.
	for key, value := range map[string]interface{}{
		"siteTitle":  cfg.SiteTitle,
		"baseURL":    cfg.BaseURL,
		"production": cfg.Production,
	} {
		if _, ok := siteData.Config[key]; !ok {
			siteData.Config[key] = value
		}
	}
	return nil
}
