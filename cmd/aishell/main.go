package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	_ "github.com/TonnyWong1052/aishell/internal/llm/anthropic"
	_ "github.com/TonnyWong1052/aishell/internal/llm/ollama"
	_ "github.com/TonnyWong1052/aishell/internal/llm/openai"
)

// _version is set at build time with -ldflags "-X main._version=..."
var _version string

func versionString() string {
	if strings.TrimSpace(_version) == "" {
		return "v0.1.0"
	}
	return _version
}

func main() {
	// Ctrl+C 取消進行中的請求，並以 130 結束
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := newApp().execute(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}

// newRootCmd builds the command tree bound to a.
func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "aishell [prompt]",
		Short: "Generates shell commands from natural language descriptions.",
		Long: `Generates shell commands from natural language descriptions.

If no prompt is provided, it will ask for one interactively.
After a command is shown, type a clarification to refine it or press Enter
to accept it. The accepted command is printed on stdout.`,
		Example: `  aishell "find all files larger than 100MB"
  aishell -c "show disk usage of the current directory" | pbcopy
  aishell --exec "compress the logs directory"`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true, // avoid printing usage on errors we already handle
		SilenceErrors: true, // let our error handler own error messages
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runGenerate(cmd.Context(), args)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&a.opts.commandOnly, "command-only", "c", false, "print only the raw command, no interaction")
	flags.BoolVar(&a.opts.once, "once", false, "generate a single command without refinement")
	flags.BoolVar(&a.opts.handoff, "handoff", false, "write the accepted command to the handoff file for the shell wrapper")
	flags.BoolVarP(&a.opts.exec, "exec", "x", false, "run the accepted command")
	flags.BoolVar(&a.opts.copy, "copy", false, "copy the accepted command to the clipboard")
	flags.StringVar(&a.opts.provider, "provider", "", "LLM provider (claude, openai, ollama)")
	flags.StringVar(&a.opts.model, "model", "", "model name for the selected provider")
	flags.StringVar(&a.opts.lang, "lang", "", "prompt language (en, zh-TW)")
	flags.BoolVar(&a.opts.debug, "debug", false, "enable debug logging and request tracing")
	_ = flags.MarkHidden("handoff")
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(
		newInitCmd(a),
		newUninstallCmd(a),
		newConfigCmd(a),
		newVersionCmd(a),
	)
	return rootCmd
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// "aishell version of node" is a description, not the subcommand
			if len(args) > 0 {
				return a.runGenerate(cmd.Context(), append([]string{cmd.Name()}, args...))
			}
			cmd.Println("aishell " + versionString())
			return nil
		},
	}
}
