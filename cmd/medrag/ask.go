package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sandevgo/medrag/internal/service/chat"
	"github.com/sandevgo/medrag/internal/transport/cli"
	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:          "ask [question]",
	Short:        "Answer a single question and exit",
	Args:         cobra.MinimumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var flushLog func()
		ctx, flushLog = setupLoggerTo(ctx, cmd.ErrOrStderr())
		defer flushLog()

		question := strings.Join(args, " ")
		if err := chat.Validate(question); err != nil {
			return errors.New(chat.ValidationMessage)
		}

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		sessionID, _ := cmd.Flags().GetString("session")
		reply, err := a.chat.Handle(ctx, sessionID, question)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), cli.FormatReply(reply))
		return nil
	},
}

func init() {
	askCmd.Flags().String("session", "", "session id, a new one is created when empty")
	rootCmd.AddCommand(askCmd)
}
