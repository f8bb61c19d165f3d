package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"media-resolver/internal/loader"
	"media-resolver/internal/option"
	"media-resolver/internal/startup"
)

func newPluginsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plugins",
		Short: "List built-in plugins and their options",
		Long:  "List the built-in plugins with their option schemas and whether the manifest enables them.",
		Args:  cobra.NoArgs,
		RunE:  runPlugins,
	}
	cmd.Flags().Bool("json", false, "Print JSON")
	return cmd
}

func runPlugins(cmd *cobra.Command, _ []string) error {
	if err := applyGlobalFlags(cmd, true); err != nil {
		return err
	}
	config, err := startup.LoadQuietConfig()
	if err != nil {
		return err
	}
	manifest, err := loader.LoadManifest(config.ManifestPath)
	if err != nil {
		return err
	}
	infos := loader.Describe(manifest)

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(infos)
	}

	source := config.ManifestPath
	if !config.ManifestExists {
		source = "built-in default"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Manifest: %s\n\n", source)
	writePluginList(cmd.OutOrStdout(), infos)
	return nil
}

func writePluginList(w io.Writer, infos []loader.Info) {
	for _, info := range infos {
		state := "disabled"
		if info.Enabled {
			state = "enabled"
		}
		fmt.Fprintf(w, "%-10s %-10s %-9s %s\n", info.Name, info.Kind, state, info.Description)
		for _, spec := range info.Options {
			fmt.Fprintf(w, "    %-14s %-8s default=%v%s  %s\n",
				spec.Name, spec.Kind, spec.Default, constraint(spec), spec.Description)
		}
	}
}

// constraint renders the range or choices of an option spec.
func constraint(spec option.Spec) string {
	switch {
	case spec.Min != nil || spec.Max != nil:
		return fmt.Sprintf(" range=[%v,%v]", spec.Min, spec.Max)
	case len(spec.Enumeration) > 0:
		choices := make([]string, len(spec.Enumeration))
		for i, v := range spec.Enumeration {
			choices[i] = fmt.Sprint(v)
		}
		return " choices=" + strings.Join(choices, "|")
	default:
		return ""
	}
}
