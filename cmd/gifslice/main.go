package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/kikiluvv/gifslice/internal/config"
	"github.com/kikiluvv/gifslice/internal/logging"
	"github.com/kikiluvv/gifslice/internal/pipeline"
	"github.com/kikiluvv/gifslice/internal/segment"
)

var (
	cfgFile string
	verbose bool
)

func main() {
	ctx := context.Background()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "gifslice",
	Short: "gifslice - cut videos into looping scene GIFs and stitch them back together",
	Long:  "Splits a video into independently playable GIF scenes using luminance-based scene detection, and recombines or trims already-decoded clips into new GIFs.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize logging
		logging.Init(verbose)

		// Load config
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		// Store config in context
		ctx := config.WithConfig(cmd.Context(), cfg)
		cmd.SetContext(ctx)

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(splitCmd)
	rootCmd.AddCommand(combineCmd)
	rootCmd.AddCommand(probeCmd)
}

var (
	splitRate      float64
	splitMaxDim    int
	splitThreshold float64
	splitMinFrames int
	splitQuality   int
	splitDither    bool
	splitOutDir    string
)

var splitCmd = &cobra.Command{
	Use:   "split [input video]",
	Short: "Detect scenes in a video and write each one as a GIF",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		pipe, err := pipeline.New(log.Logger, cfg)
		if err != nil {
			return err
		}

		opts := pipeline.SplitOptions{
			SampleRate:     splitRate,
			MaxDimension:   splitMaxDim,
			Threshold:      splitThreshold,
			MinSceneFrames: splitMinFrames,
			Quality:        splitQuality,
			Dither:         splitDither,
			OutputDir:      splitOutDir,
			OnProgress: func(done, total int) {
				log.Debug().Int("done", done).Int("total", total).Msg("sampling")
			},
		}

		results, err := pipe.Split(cmd.Context(), args[0], opts)
		if errors.Is(err, segment.ErrNoScenes) {
			log.Warn().Msg("no scenes detected; lower --threshold or raise --rate and try again")
			return nil
		}
		if err != nil {
			return err
		}

		failed := 0
		for _, r := range results {
			if r.EncodeErr != nil {
				failed++
			}
		}

		log.Info().
			Int("scenes", len(results)).
			Int("failed", failed).
			Str("output", opts.OutputDir).
			Msg("split complete")

		return nil
	},
}

var (
	combineOrder   string
	combineStart   int
	combineEnd     int
	combineQuality int
	combineDither  bool
	combineOut     string
)

var combineCmd = &cobra.Command{
	Use:   "combine [clips...]",
	Short: "Recombine and trim GIF clips into a single GIF",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		pipe, err := pipeline.New(log.Logger, cfg)
		if err != nil {
			return err
		}

		order, err := parseOrder(combineOrder, len(args))
		if err != nil {
			return err
		}

		opts := pipeline.CombineOptions{
			Order:      order,
			TrimStart:  combineStart,
			TrimEnd:    combineEnd,
			Quality:    combineQuality,
			Dither:     combineDither,
			OutputPath: combineOut,
		}

		result, err := pipe.Combine(cmd.Context(), args, opts)
		if err != nil {
			return err
		}

		log.Info().
			Str("output", result.OutputPath).
			Int("frames", result.Frames).
			Dur("duration", result.Duration).
			Msg("combine complete")

		return nil
	},
}

var probeCmd = &cobra.Command{
	Use:   "probe [input video]",
	Short: "Print video metadata",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		pipe, err := pipeline.New(log.Logger, cfg)
		if err != nil {
			return err
		}

		info, err := pipe.Probe(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("%s\n", info.FilePath)
		fmt.Printf("  duration: %s\n", info.Duration)
		fmt.Printf("  size:     %dx%d\n", info.Width, info.Height)
		fmt.Printf("  fps:      %.2f\n", info.FPS)
		fmt.Printf("  codec:    %s\n", info.VideoCodec)

		return nil
	},
}

// parseOrder turns "2,0,1" into a source permutation
func parseOrder(s string, sources int) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	if len(parts) != sources {
		return nil, fmt.Errorf("--order has %d entries for %d clips", len(parts), sources)
	}
	order := make([]int, 0, len(parts))
	for _, part := range parts {
		idx, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid --order entry %q", part)
		}
		order = append(order, idx)
	}
	return order, nil
}

func init() {
	splitCmd.Flags().Float64Var(&splitRate, "rate", 0, "samples per second (default from config)")
	splitCmd.Flags().IntVar(&splitMaxDim, "max-dim", 0, "max output dimension in pixels (0 = config default, negative keeps source size)")
	splitCmd.Flags().Float64Var(&splitThreshold, "threshold", 0, "scene cut threshold percent (default from config)")
	splitCmd.Flags().IntVar(&splitMinFrames, "min-frames", 0, "minimum frames per scene (default from config)")
	splitCmd.Flags().IntVar(&splitQuality, "quality", 0, "palette quality 1-20, lower is better")
	splitCmd.Flags().BoolVar(&splitDither, "dither", true, "error-diffusion dithering")
	splitCmd.Flags().StringVar(&splitOutDir, "out", "", "output directory (default from config)")

	combineCmd.Flags().StringVar(&combineOrder, "order", "", "clip order as comma-separated indices, e.g. 2,0,1")
	combineCmd.Flags().IntVar(&combineStart, "start", -1, "trim start frame index into the flattened timeline")
	combineCmd.Flags().IntVar(&combineEnd, "end", -1, "trim end frame index (inclusive)")
	combineCmd.Flags().IntVar(&combineQuality, "quality", 0, "palette quality 1-20, lower is better")
	combineCmd.Flags().BoolVar(&combineDither, "dither", true, "error-diffusion dithering")
	combineCmd.Flags().StringVar(&combineOut, "out", "combined.gif", "output file")
}
