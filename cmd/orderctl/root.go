package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"connectrpc.com/connect"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/voicetyped/orderbot/internal/connectutil"
	"github.com/voicetyped/orderbot/pkg/conversation"
)

var version = "dev"

type clientFlags struct {
	server string
	token  string
}

func newRootCommand() *cobra.Command {
	flags := &clientFlags{}

	cmd := &cobra.Command{
		Use:   "orderctl",
		Short: "orderctl - talk to a running order bot",
		Long: `orderctl is a command-line channel for the order bot.

It sends user messages to the bot's conversation service and prints the
bot's replies, prompts and later holdings answers.`,
		Version:      version,
		SilenceUsage: true,
	}

	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&flags.server, "server", envOr("ORDERBOT_URL", "http://localhost:8080"), "Order bot base URL")
	cmd.PersistentFlags().StringVar(&flags.token, "token", os.Getenv("ORDERBOT_TOKEN"), "Bearer token for the conversation service")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if *debugLogging {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	}

	cmd.AddCommand(newChatCommand(flags))
	cmd.AddCommand(newShowCommand(flags))
	cmd.AddCommand(newEndCommand(flags))

	return cmd
}

func execute() error {
	// Flags default from the environment, so .env must be loaded first.
	_ = godotenv.Load()
	return newRootCommand().Execute()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func (f *clientFlags) client() *conversation.Client {
	opts := connectutil.DefaultClientOptions()
	if f.token != "" {
		opts = append(opts, connect.WithInterceptors(bearerInterceptor(f.token)))
	}
	return conversation.NewClient(http.DefaultClient, f.server, opts...)
}

func bearerInterceptor(token string) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			req.Header().Set("Authorization", "Bearer "+token)
			return next(ctx, req)
		}
	}
}
