package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"auto_slide_deck_generator/deck"
	"auto_slide_deck_generator/generator"
	"auto_slide_deck_generator/render"
	"auto_slide_deck_generator/theme"
)

func generateCMD(cfgPath *string) *cobra.Command {
	var (
		topic    string
		textFile string
		tone     string
		slides   int
		out      string
	)
	gen := &cobra.Command{
		Use:   "generate",
		Short: "Generate one deck and write it to disk",
		RunE: func(cmd *cobra.Command, args []string) error {
			text := topic
			if textFile != "" {
				b, err := os.ReadFile(textFile)
				if err != nil {
					return fmt.Errorf("read text file: %w", err)
				}
				text = string(b)
			}
			if strings.TrimSpace(text) == "" {
				return errors.New("--topic or --text-file is required")
			}

			cfg, logger, err := loadConfig(*cfgPath)
			if err != nil {
				return err
			}
			// nothing is persisted through the store here; --out is written directly
			svc, err := newService(cfg, nil, logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			ctx, cancel := context.WithTimeout(ctx, cfg.Server.RequestTimeout)
			defer cancel()

			res, err := svc.Build(ctx, generator.Spec{Text: text, Tone: tone, NumSlides: slides})
			if err != nil {
				return err
			}

			path := out
			if path == "" {
				path = deck.BaseName(res.Outline) + render.Extension
			}
			if dir := filepath.Dir(path); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return err
				}
			}
			if err := os.WriteFile(path, res.Data, 0o644); err != nil {
				return fmt.Errorf("write deck: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\ttheme=%s\tslides=%d\n", path, res.Theme.Name, res.SlideCount())
			return nil
		},
	}
	gen.Flags().StringVarP(&topic, "topic", "t", "", "topic or source text")
	gen.Flags().StringVar(&textFile, "text-file", "", "read the source text from a file")
	gen.Flags().StringVar(&tone, "tone", "", "presentation tone (default professional)")
	gen.Flags().IntVarP(&slides, "slides", "n", 0, "number of slides (default from config)")
	gen.Flags().StringVarP(&out, "out", "o", "", "output path (default <title>.pptx)")
	return gen
}

func themesCMD() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "themes",
		Short: "List the built-in themes",
		RunE: func(cmd *cobra.Command, args []string) error {
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(theme.All())
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tFONT\tPRIMARY\tBACKGROUND\tKEYWORDS")
			for _, d := range theme.All() {
				fmt.Fprintf(w, "%s\t%s\t#%s\t%s\t%s\n",
					d.Name, d.FontFamily, d.Colors.Primary.Hex(), d.Background.Kind,
					strings.Join(theme.Aliases(d.Name), ", "))
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print definitions as JSON")
	return cmd
}
