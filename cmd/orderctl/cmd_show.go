package main

import (
	"fmt"
	"io"

	"connectrpc.com/connect"
	"github.com/spf13/cobra"

	"github.com/voicetyped/orderbot/pkg/conversation"
	"github.com/voicetyped/orderbot/pkg/dialog"
)

func newShowCommand(flags *clientFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show <conversation-id>",
		Short: "Show a conversation's order dialog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := flags.client().GetConversation(cmd.Context(), connect.NewRequest(&conversation.GetConversationRequest{
				ConversationID: args[0],
			}))
			if err != nil {
				return fmt.Errorf("getting conversation: %w", err)
			}
			printConversation(cmd.OutOrStdout(), resp.Msg)
			return nil
		},
	}
}

func newEndCommand(flags *clientFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "end <conversation-id>",
		Short: "End a conversation and discard its state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := flags.client().EndConversation(cmd.Context(), connect.NewRequest(&conversation.EndConversationRequest{
				ConversationID: args[0],
			}))
			if err != nil {
				return fmt.Errorf("ending conversation: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Conversation ended: %s\n", args[0])
			return nil
		},
	}
}

func printConversation(w io.Writer, c *conversation.GetConversationResponse) {
	fmt.Fprintf(w, "Conversation: %s\n", c.ConversationID)
	fmt.Fprintf(w, "Channel:      %s\n", c.ChannelID)
	fmt.Fprintf(w, "Pending:      %d\n", c.Pending)
	if c.Phase == "" {
		fmt.Fprintln(w, "Order:        none")
		return
	}
	fmt.Fprintf(w, "Phase:        %s (active: %t, restarts: %d)\n", c.Phase, c.Active, c.Restarts)
	if c.Order != nil {
		fmt.Fprintf(w, "Order:        %s\n", describeOrder(*c.Order))
	}
	for _, r := range c.History {
		fmt.Fprintf(w, "  %s  %s -> %s  %q\n", r.Timestamp.Format("15:04:05"), r.FromState, r.ToState, r.Trigger)
	}
}

func describeOrder(o dialog.OrderState) string {
	s := "stock=" + valueOr(o.Stock)
	qty := "?"
	if o.Qty != nil {
		qty = dialog.FormatQty(*o.Qty)
	}
	s += " qty=" + qty
	dir := "?"
	if o.Direction != nil {
		dir = string(*o.Direction)
	}
	s += " direction=" + dir
	if o.Price != nil {
		s += " price=" + dialog.FormatMoney(*o.Price)
	}
	if total, ok := o.Total(); ok {
		s += " total=" + dialog.FormatMoney(total)
	}
	if o.Completed != nil {
		s += fmt.Sprintf(" completed=%t", *o.Completed)
	}
	return s
}

func valueOr(s *string) string {
	if s == nil {
		return "?"
	}
	return *s
}
