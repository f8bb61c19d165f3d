package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"media-resolver/internal/catalog"
	"media-resolver/internal/filesystem"
	"media-resolver/internal/loader"
	"media-resolver/internal/logging"
	"media-resolver/internal/resolver"
	"media-resolver/internal/startup"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "media-resolver",
		Short:         "Resolve media paths into playable items",
		Long:          "Resolve media paths into playable items using plugin unpackers and tag parsers.",
		Version:       startup.Version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.PersistentFlags().String("manifest", "", "Plugin manifest (overrides RESOLVER_MANIFEST)")
	root.PersistentFlags().BoolP("verbose", "v", false, "Log at debug level")

	root.AddCommand(
		newResolveCmd(),
		newServeCmd(),
		newPluginsCmd(),
	)
	return root
}

// applyGlobalFlags maps the persistent flags onto the environment read by
// startup.LoadConfig and onto the log level.
func applyGlobalFlags(cmd *cobra.Command, quiet bool) error {
	if manifest, _ := cmd.Flags().GetString("manifest"); manifest != "" {
		if err := os.Setenv("RESOLVER_MANIFEST", manifest); err != nil {
			return err
		}
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		logging.SetLevel(logging.LevelDebug)
	} else if quiet && logging.GetLevel() < logging.LevelWarn {
		logging.SetLevel(logging.LevelWarn)
	}
	return nil
}

// configureVolumes labels filesystem metrics by the media root and the
// catalog directory.
func configureVolumes(config *startup.Config) {
	volumes := map[string]string{"catalog": filepath.Dir(config.CatalogDB)}
	if config.MediaDir != "" {
		volumes["media"] = config.MediaDir
	}
	filesystem.SetDefaultVolumeResolver(filesystem.NewVolumeResolver(volumes))
}

// newLoader returns a resolver and a loader for the configured manifest
// with the catalog defaulting to CATALOG_DB. The manifest is not loaded.
func newLoader(config *startup.Config) (*resolver.Resolver, *loader.Loader) {
	r := resolver.New()
	l := loader.New(r, config.ManifestPath)
	l.SetOptionDefault(catalog.Name, catalog.OptionDatabase, config.CatalogDB)
	return r, l
}
