package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/openvax/varcode-go/internal/effect"
	"github.com/openvax/varcode-go/internal/genome"
	"github.com/openvax/varcode-go/internal/store"
	"github.com/openvax/varcode-go/internal/vcf"
)

func newAnnotateCmd() *cobra.Command {
	var (
		annotationDir string
		assembly      string
		cachePath     string
		workers       int
		perGene       bool
		dropSilent    bool
		onlyPassing   bool
	)

	cmd := &cobra.Command{
		Use:   "annotate <input.vcf>",
		Short: "Predict effects for every variant in a VCF file",
		Long: `Annotate classifies each variant in a VCF file against every
transcript it overlaps and writes one effect per (variant, transcript) pair.
Transcript annotation is loaded from a directory of JSON files.`,
		Example: `  varcode annotate --annotation ./annotation input.vcf
  varcode annotate --annotation ./annotation --per-gene input.vcf
  varcode annotate --annotation ./annotation --cache effects.duckdb input.vcf`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if assembly == "" {
				assembly = viper.GetString("assembly")
			}
			if annotationDir == "" {
				annotationDir = viper.GetString("annotation")
			}
			if annotationDir == "" {
				return fmt.Errorf("no annotation directory: pass --annotation or set the annotation config key")
			}
			return runAnnotate(args[0], annotationDir, assembly, cachePath, workers, perGene, dropSilent, onlyPassing)
		},
	}

	cmd.Flags().StringVar(&annotationDir, "annotation", "", "directory of transcript annotation JSON files")
	cmd.Flags().StringVar(&assembly, "assembly", "", "genome assembly the input coordinates use (default from config)")
	cmd.Flags().StringVar(&cachePath, "cache", "", "DuckDB file to persist effects to")
	cmd.Flags().IntVar(&workers, "workers", 0, "number of classification workers (0 = all cores)")
	cmd.Flags().BoolVar(&perGene, "per-gene", false, "report only the top-priority effect per gene")
	cmd.Flags().BoolVar(&dropSilent, "drop-silent", false, "drop silent and non-coding effects")
	cmd.Flags().BoolVar(&onlyPassing, "only-passing", false, "skip records whose FILTER is not PASS or .")

	return cmd
}

func runAnnotate(inputPath, annotationDir, assembly, cachePath string, workers int, perGene, dropSilent, onlyPassing bool) error {
	logger, err := newLogger()
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	provider := genome.NewMemoryProvider(assembly)
	if err := genome.LoadJSONDir(provider, annotationDir); err != nil {
		return err
	}
	logger.Info("annotation loaded",
		zap.Int("transcripts", provider.TranscriptCount()),
		zap.String("assembly", assembly))

	parser, err := vcf.NewParser(inputPath, assembly)
	if err != nil {
		return err
	}
	defer parser.Close()
	parser.SetOnlyPassing(onlyPassing)

	variants, err := parser.ReadAll()
	if err != nil {
		return err
	}
	logger.Info("variants parsed", zap.Int("count", variants.Len()))

	classifier := effect.NewClassifier(provider)
	classifier.SetLogger(logger)
	classifier.SetSpliceWindows(
		viper.GetInt64("splice.intronic_window"),
		viper.GetInt64("splice.exonic_window"))

	effects, failures := classifier.ClassifyCollection(variants, workers)

	if dropSilent {
		effects = effects.DropSilentAndNoncoding()
	}

	if cachePath != "" {
		s, err := store.Open(cachePath)
		if err != nil {
			return err
		}
		defer s.Close()
		if err := s.SaveEffects(effects.Effects()); err != nil {
			return err
		}
		logger.Info("effects cached", zap.String("path", cachePath))
	}

	if err := writeEffects(os.Stdout, effects, perGene); err != nil {
		return err
	}

	if len(failures) > 0 {
		fmt.Fprintf(os.Stderr, "\n%d classification failure(s):\n", len(failures))
		for _, f := range failures {
			fmt.Fprintf(os.Stderr, "  %s\t%s\t%v\n", f.Variant.Description(), f.TranscriptID, f.Err)
		}
	}

	return nil
}

func writeEffects(out *os.File, effects *effect.Collection, perGene bool) error {
	w := tabwriter.NewWriter(out, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "variant\tgene\ttranscript\tcategory\tdescription")

	write := func(e *effect.Effect) {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			e.Variant.Description(), e.GeneName, e.TranscriptID, e.Category, e.Description)
	}

	if perGene {
		top, order := effects.TopPriorityEffectPerGene()
		for _, geneID := range order {
			write(top[geneID])
		}
	} else {
		for _, e := range effects.Effects() {
			write(e)
		}
	}

	return w.Flush()
}
