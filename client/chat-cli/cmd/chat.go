package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newAskCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask the chat service a question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := opts.client()
			var resp struct {
				Response string `json:"response"`
			}
			question := strings.Join(args, " ")
			if err := client.PostJSON(cmd.Context(), "/chat", map[string]string{"question": question}, &resp); err != nil {
				return fmt.Errorf("ask failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Response)
			return nil
		},
	}
}

func newTeachCmd(opts *options) *cobra.Command {
	var question, answer string

	cmd := &cobra.Command{
		Use:     "teach",
		Short:   "Teach the chat service a new answer",
		Example: `  chat-cli teach --question "Tell me about the route" --answer "Lagos is past Ibadan"`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := opts.client()
			var resp struct {
				Message string `json:"message"`
			}
			body := map[string]string{"question": question, "answer": answer}
			if err := client.PostJSON(cmd.Context(), "/train", body, &resp); err != nil {
				return fmt.Errorf("teach failed: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Message)
			return nil
		},
	}
	cmd.Flags().StringVarP(&question, "question", "q", "", "question to learn")
	cmd.Flags().StringVarP(&answer, "answer", "a", "", "answer to store")
	_ = cmd.MarkFlagRequired("question")
	_ = cmd.MarkFlagRequired("answer")
	return cmd
}
