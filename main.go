package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath string
	verbose    bool

	// Root flags
	resumeChatID int64

	// Subcommand flags
	serveAddr    string
	historyLimit int
)

var rootCmd = &cobra.Command{
	Use:   "glowdesk",
	Short: "Beauty advisor chat in the terminal",
	Long: `glowdesk is a chat assistant for skincare, haircare, makeup and
fragrance questions.

Run without arguments to start the interactive chat interface.`,
	SilenceUsage: true,
	RunE:         runInteractive,
}

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a single question and print the answer",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the chat widget API over HTTP",
	RunE:  runServe,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List archived chats",
	RunE:  runHistory,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: user config dir)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.Flags().Int64Var(&resumeChatID, "resume", 0, "Resume an archived chat by id")
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default: server.addr from config)")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Number of chats to list")

	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(historyCmd)
}

func main() {
	// a missing .env is fine
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
