package main

import (
	"github.com/sandevgo/medrag/internal/config"
	"github.com/sandevgo/medrag/internal/service/installer"
	"github.com/sandevgo/medrag/pkg/log"
	"github.com/spf13/cobra"
)

var installCmd = &cobra.Command{
	Use:          "install",
	Short:        "Write a .env for MedRAG interactively",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		logger := log.FromCtx(ctx)

		state, err := installer.RunWizard()
		if err != nil {
			return err
		}

		force, _ := cmd.Flags().GetBool("force")
		path, err := installer.Save(state, config.GetRuntimePath(), force)
		if err != nil {
			return err
		}

		logger.Info().Str("path", path).Msg("configuration saved")
		logger.Info().Msg("run 'medrag ingest <dir>' to index documents, then 'medrag serve'")
		return nil
	},
}

func init() {
	installCmd.Flags().Bool("force", false, "overwrite an existing .env")
	rootCmd.AddCommand(installCmd)
}
