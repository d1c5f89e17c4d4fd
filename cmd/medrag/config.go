package main

import (
	"fmt"

	"github.com/sandevgo/medrag/internal/config"
	"github.com/sandevgo/medrag/pkg/env"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:          "config",
	Short:        "Print the effective configuration as a .env file",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var flushLog func()
		ctx, flushLog = setupLoggerTo(ctx, cmd.ErrOrStderr())
		defer flushLog()

		if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
			return err
		}

		showSecrets, _ := cmd.Flags().GetBool("show-secrets")
		var opts []env.Option
		if !showSecrets {
			opts = append(opts, env.WithRedactedSecrets())
		}

		appCfg, err := config.LoadAppConfig()
		if err != nil {
			return err
		}
		ragCfg, err := config.LoadRAGConfig()
		if err != nil {
			return err
		}
		llmCfg, err := config.LoadLLMConfig()
		if err != nil {
			return err
		}
		webCfg := config.NewWebConfig(ctx)

		out := cmd.OutOrStdout()
		for _, section := range []struct {
			name string
			cfg  any
		}{
			{"app", appCfg},
			{"llm", llmCfg},
			{"rag", ragCfg},
			{"web", webCfg},
		} {
			body, err := env.MarshalEnv(section.cfg, opts...)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "# %s\n%s\n", section.name, body)
		}
		return nil
	},
}

func init() {
	configCmd.Flags().Bool("show-secrets", false, "print api keys and tokens in clear text")
	rootCmd.AddCommand(configCmd)
}
