package cmd

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Bitlatte/quill/internal/collections"
	"github.com/Bitlatte/quill/internal/config"
	"github.com/Bitlatte/quill/internal/content"
	"github.com/Bitlatte/quill/internal/model"
	"github.com/Bitlatte/quill/internal/render"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Builds the static site from content, layouts, and static assets",
	Long: `The build command loads the Markdown files below the content directory,
builds the collections and writing statistics, renders every page with the
layouts directory (including partials), copies static assets and writes the
site to the output directory (default './public/').`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBuildProcess(appConfig, siteData)
	},
}

func runBuildProcess(cfg config.Config, site *model.SiteData) error {
	start := time.Now()
	log.Info().
		Str("outputDir", cfg.OutputDir).
		Str("baseURL", cfg.BaseURL).
		Str("siteTitle", cfg.SiteTitle).
		Bool("production", cfg.Production).
		Msg("starting build")

	if _, err := os.Stat(cfg.LayoutsDir); os.IsNotExist(err) {
		return fmt.Errorf("layouts directory '%s' not found. Please create it and add your .html layout files", cfg.LayoutsDir)
	}
	renderer, err := render.New(cfg.LayoutsDir, cfg.OutputDir)
	if err != nil {
		return err
	}

	items, err := content.Load(cfg.ContentDir)
	if err != nil {
		return fmt.Errorf("loading content: %w", err)
	}
	site.ContentItems = items
	site.ContentByType = content.ByType(items)
	site.Collections = collections.Build(items, collections.Options{Production: cfg.Production})

	if err := os.RemoveAll(cfg.OutputDir); err != nil {
		return fmt.Errorf("failed to remove output directory '%s': %w", cfg.OutputDir, err)
	}
	if err := os.MkdirAll(cfg.OutputDir, os.ModePerm); err != nil {
		return fmt.Errorf("failed to create output directory '%s': %w", cfg.OutputDir, err)
	}

	if _, err := os.Stat(cfg.StaticDir); !os.IsNotExist(err) {
		if err := copyDirContents(cfg.StaticDir, cfg.OutputDir); err != nil {
			return fmt.Errorf("failed to copy static assets: %w", err)
		}
		log.Debug().Str("dir", cfg.StaticDir).Msg("static assets copied")
	} else {
		log.Debug().Str("dir", cfg.StaticDir).Msg("static assets directory not found, skipping copy")
	}

	if err := renderer.Site(site); err != nil {
		return err
	}

	dataDir := filepath.Join(cfg.OutputDir, "data")
	if err := render.WriteJSON(filepath.Join(dataDir, "stats.json"), site.Collections.PostStats); err != nil {
		return fmt.Errorf("writing stats.json: %w", err)
	}
	if err := render.WriteJSON(filepath.Join(dataDir, "tags.json"), site.Collections.BlogTags); err != nil {
		return fmt.Errorf("writing tags.json: %w", err)
	}

	log.Info().
		Int("items", len(items)).
		Int("posts", len(site.Collections.Posts)).
		Dur("took", time.Since(start)).
		Msg("build completed")
	return nil
}

// copyDirContents recursively copies the files and directories below src
// into dst.
func copyDirContents(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		relPath, err := filepath.Rel(src, path)
		if err != nil {
			return fmt.Errorf("failed to get relative path for %s: %w", path, err)
		}
		dstPath := filepath.Join(dst, relPath)

		if d.IsDir() {
			if err := os.MkdirAll(dstPath, os.ModePerm); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", dstPath, err)
			}
			return nil
		}
		if err := copyFile(path, dstPath); err != nil {
			return fmt.Errorf("failed to copy file from %s to %s: %w", path, dstPath, err)
		}
		return nil
	})
}

// copyFile copies srcFile to dstFile, keeping its permissions.
func copyFile(srcFile, dstFile string) error {
	srcF, err := os.Open(srcFile)
	if err != nil {
		return err
	}
	defer srcF.Close()

	info, err := srcF.Stat()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dstFile), os.ModePerm); err != nil {
		return err
	}

	dstF, err := os.OpenFile(dstFile, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(dstF, srcF); err != nil {
		dstF.Close()
		return err
	}
	return dstF.Close()
}

func init() {
	rootCmd.AddCommand(buildCmd)
}
