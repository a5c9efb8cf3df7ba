package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"connectrpc.com/connect"
	"github.com/rs/xid"
	"github.com/spf13/cobra"

	"github.com/voicetyped/orderbot/pkg/conversation"
)

func newChatCommand(flags *clientFlags) *cobra.Command {
	var (
		conversationID string
		channel        string
		locale         string
		waitSeconds    int
	)

	cmd := &cobra.Command{
		Use:   "chat [message...]",
		Short: "Chat with the order bot",
		Long: `Chat with the order bot.

With arguments, the arguments are sent as a single message. Without
arguments, every line read from stdin is sent as a message until EOF.
Answers that arrive after a turn, such as holdings summaries, are collected
for up to --wait seconds when a turn produced no reply.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if conversationID == "" {
				conversationID = xid.New().String()
			}
			c := &chatSession{
				client:         flags.client(),
				conversationID: conversationID,
				channel:        channel,
				locale:         locale,
				wait:           waitSeconds,
				out:            cmd.OutOrStdout(),
			}
			fmt.Fprintf(c.out, "conversation %s\n", conversationID)

			if len(args) > 0 {
				return c.send(cmd, strings.Join(args, " "))
			}
			return c.loop(cmd, cmd.InOrStdin())
		},
	}

	cmd.Flags().StringVar(&conversationID, "conversation", "", "Conversation id (default: a new id)")
	cmd.Flags().StringVar(&channel, "channel", "orderctl", "Channel id reported to the bot")
	cmd.Flags().StringVar(&locale, "locale", "", "Message locale")
	cmd.Flags().IntVar(&waitSeconds, "wait", 3, "Seconds to wait for late replies")

	return cmd
}

type chatSession struct {
	client         *conversation.Client
	conversationID string
	channel        string
	locale         string
	wait           int
	out            io.Writer
}

func (c *chatSession) loop(cmd *cobra.Command, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if err := c.send(cmd, text); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func (c *chatSession) send(cmd *cobra.Command, text string) error {
	ctx := cmd.Context()
	resp, err := c.client.SendTurn(ctx, connect.NewRequest(&conversation.SendTurnRequest{
		ConversationID: c.conversationID,
		ChannelID:      c.channel,
		Text:           text,
		Locale:         c.locale,
	}))
	if err != nil {
		return fmt.Errorf("sending message: %w", err)
	}

	msgs := resp.Msg.Messages
	if len(msgs) == 0 && c.wait > 0 {
		late, err := c.client.DrainMessages(ctx, connect.NewRequest(&conversation.DrainMessagesRequest{
			ConversationID: c.conversationID,
			WaitSeconds:    c.wait,
		}))
		if err != nil {
			return fmt.Errorf("collecting replies: %w", err)
		}
		msgs = late.Msg.Messages
	}

	printMessages(c.out, msgs)
	return nil
}

func printMessages(w io.Writer, msgs []conversation.Message) {
	for _, m := range msgs {
		fmt.Fprintf(w, "bot> %s\n", m.Text)
		if m.Prompt == nil || len(m.Prompt.Choices) == 0 {
			continue
		}
		choices := make([]string, len(m.Prompt.Choices))
		for i, choice := range m.Prompt.Choices {
			choices[i] = fmt.Sprintf("%d. %s", i+1, choice)
		}
		fmt.Fprintf(w, "     %s\n", strings.Join(choices, "  "))
	}
}
