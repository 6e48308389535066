package cmd

import (
	"fmt"
	"os"
	"time"

	"moihub_chatbot/backend/go/pkg/circuitbreaker"
	chathttp "moihub_chatbot/backend/go/pkg/http"

	"github.com/spf13/cobra"
)

const defaultServerURL = "http://localhost:5000"

// options 是所有子命令共享的全局参数。
type options struct {
	serverURL string
	timeout   time.Duration
	breaker   bool
}

func (o *options) client() *chathttp.Client {
	var breaker circuitbreaker.CircuitBreaker
	if o.breaker {
		breaker = circuitbreaker.New(3, 1, 30*time.Second)
	}
	return chathttp.NewClient(o.serverURL, o.timeout, breaker)
}

// newRootCmd 构建命令树。
func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "chat-cli",
		Short:         "A CLI client to interact with the moihub chat service",
		Long:          `A command-line interface for asking questions, teaching new answers and exporting the knowledge base.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	serverURL := os.Getenv("CHAT_SERVER_URL")
	if serverURL == "" {
		serverURL = defaultServerURL
	}
	rootCmd.PersistentFlags().StringVar(&opts.serverURL, "server", serverURL, "chat service base URL (env CHAT_SERVER_URL)")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 15*time.Second, "request timeout")
	rootCmd.PersistentFlags().BoolVar(&opts.breaker, "circuit-breaker", false, "stop calling the server after repeated 5xx responses")

	rootCmd.AddCommand(newAskCmd(opts))
	rootCmd.AddCommand(newTeachCmd(opts))
	rootCmd.AddCommand(newKnowledgeCmd(opts))
	return rootCmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Whoops. There was an error while executing your CLI: %s\n", err)
		os.Exit(1)
	}
}
