package main

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/sandevgo/medrag/internal/config"
	"github.com/sandevgo/medrag/internal/providers/index"
	"github.com/sandevgo/medrag/internal/providers/rag"
	"github.com/sandevgo/medrag/internal/service/ingest"
	"github.com/sandevgo/medrag/internal/service/ui"
	"github.com/sandevgo/medrag/pkg/log"
	"github.com/sandevgo/medrag/pkg/retry"
	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:          "ingest [dir]",
	Short:        "Split, embed and index the documents in a directory",
	Long:         `Loads *.pdf, *.txt and *.md files, splits them into passages and upserts them into the configured vector index.`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		var flushLog func()
		ctx, flushLog = setupLoggerTo(ctx, cmd.ErrOrStderr())
		defer flushLog()

		logger := log.FromCtx(ctx)

		if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
			return err
		}
		appCfg, err := config.LoadAppConfig()
		if err != nil {
			return err
		}
		ragCfg, err := config.LoadRAGConfig()
		if err != nil {
			return err
		}

		pages, err := ingest.LoadDir(args[0])
		if err != nil {
			return err
		}
		if len(pages) == 0 {
			return fmt.Errorf("no supported documents under %s", args[0])
		}
		logger.Info().Int("pages", len(pages)).Str("dir", args[0]).Msg("documents loaded")

		embedder, err := rag.NewEmbedder(ctx, ragCfg)
		if err != nil {
			return err
		}
		if c, ok := embedder.(*rag.CachedEmbedder); ok {
			defer c.Close()
		}

		idx, err := index.New(ctx, appCfg, ragCfg)
		if err != nil {
			return err
		}
		if c, ok := idx.(interface{ Close() error }); ok {
			defer c.Close()
		}

		in := ingest.NewIngester(embedder, idx, rag.IngestSplitConfig(), retry.NewDefaultRetrier())
		res, err := in.Run(ctx, pages)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, ui.TitleStyle.Render("INGESTED"))
		fmt.Fprintf(out, "  pages:     %d\n", res.Pages)
		fmt.Fprintf(out, "  chunks:    %d\n", res.Chunks)
		fmt.Fprintf(out, "  took:      %s\n", res.Duration.Round(time.Millisecond))
		fmt.Fprintf(out, "  index:     %s (%s)\n", res.Stats.Name, res.Stats.Kind)
		fmt.Fprintf(out, "  documents: %d\n", res.Stats.Documents)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}
