package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"slskdrelay/internal/core"
	"slskdrelay/internal/notifications/translate"
	"slskdrelay/internal/notifications/webhook"
	"slskdrelay/internal/types"
)

func newRenderCmd() *cobra.Command {
	var opts translate.Options

	cmd := &cobra.Command{
		Use:   "render [file|-]",
		Short: "Print the Discord payload for an slskd event without sending it",
		Long: "render reads one slskd event (from a file, or stdin when the argument is\n" +
			"omitted or \"-\"), translates it and prints the execute-webhook JSON body.\n" +
			"Events that would not be delivered print \"ignored\".",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			return render(in, cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.MentionUserID, "mention-user", "", "Discord user ID to mention")
	cmd.Flags().StringVar(&opts.SourceBaseURL, "source-url", "", "slskd base URL used for author links")
	cmd.Flags().StringVar(&opts.Username, "username", "", "webhook display name")
	return cmd
}

func render(in io.Reader, out io.Writer, opts translate.Options) error {
	raw, err := io.ReadAll(io.LimitReader(in, core.DefaultMaxBodyBytes+1))
	if err != nil {
		return fmt.Errorf("reading event: %w", err)
	}
	if int64(len(raw)) > core.DefaultMaxBodyBytes {
		return fmt.Errorf("event exceeds %d bytes", core.DefaultMaxBodyBytes)
	}

	ev, err := types.DecodeEvent(raw)
	if err != nil {
		return fmt.Errorf("decoding event: %w", err)
	}

	msg, ok := translate.New(opts).Translate(ev).Get()
	if !ok {
		_, err := fmt.Fprintln(out, "ignored")
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(webhook.ToWebhookParams(msg))
}
