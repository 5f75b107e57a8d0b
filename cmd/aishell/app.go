package main

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pterm/pterm"
	"golang.org/x/term"

	"github.com/TonnyWong1052/aishell/internal/clipboard"
	"github.com/TonnyWong1052/aishell/internal/config"
	aerrors "github.com/TonnyWong1052/aishell/internal/errors"
	"github.com/TonnyWong1052/aishell/internal/handoff"
	"github.com/TonnyWong1052/aishell/internal/llm"
	"github.com/TonnyWong1052/aishell/internal/logging"
	"github.com/TonnyWong1052/aishell/internal/prompt"
	"github.com/TonnyWong1052/aishell/internal/security"
	"github.com/TonnyWong1052/aishell/internal/session"
	"github.com/TonnyWong1052/aishell/internal/shell"
	"github.com/TonnyWong1052/aishell/internal/ui"
)

// DescriptionPrompt asks for the request when none was given on the command line.
const DescriptionPrompt = "What do you want to do? (describe the command you need): "

type options struct {
	commandOnly bool
	once        bool
	handoff     bool
	exec        bool
	copy        bool
	debug       bool
	provider    string
	model       string
	lang        string
}

// app carries the process environment so the whole command can run in tests
// with fake streams, a fake environment and a fake provider.
type app struct {
	opts options

	lookup config.LookupFunc
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	stdinTTY  bool
	stderrTTY bool

	goos        string
	configPath  func() (string, error)
	home        func() (string, error)
	newProvider func(name string, pc config.ProviderConfig) (llm.Provider, error)
	newReader   func() ui.LineReader
	pickAction  func() (ui.Action, error)
	copier      func(mode string) clipboard.Copier
	runner      shell.Runner
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func newApp() *app {
	a := &app{
		lookup:      config.OSLookup,
		stdin:       os.Stdin,
		stdout:      os.Stdout,
		stderr:      os.Stderr,
		stdinTTY:    isTerminal(os.Stdin),
		stderrTTY:   isTerminal(os.Stderr),
		goos:        runtime.GOOS,
		configPath:  config.GetConfigPath,
		home:        os.UserHomeDir,
		newProvider: llm.GetProvider,
		runner:      shell.NewExecRunner(),
	}
	a.newReader = func() ui.LineReader {
		if a.stdinTTY && a.stderrTTY {
			return ui.NewTerminalReader(a.stdin, a.stderr)
		}
		return ui.NewPlainReader(a.stdin, a.stderr)
	}
	a.pickAction = ui.NewActionPicker(os.Stderr).Pick
	a.copier = func(mode string) clipboard.Copier {
		return clipboard.ForMode(mode, os.Stderr, a.stderrTTY)
	}
	return a
}

// execute runs the command line and returns the process exit status.
func (a *app) execute(ctx context.Context, args []string) int {
	// stdout carries only the accepted command
	pterm.SetDefaultOutput(a.stderr)
	rootCmd := newRootCmd(a)
	rootCmd.SetArgs(args)
	rootCmd.SetIn(a.stdin)
	rootCmd.SetOut(a.stdout)
	rootCmd.SetErr(a.stderr)

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		aerrors.NewConsoleErrorHandler(a.stderr, a.debugEnabled()).Handle(err)
	}
	return aerrors.ExitCode(err)
}

func (a *app) debugEnabled() bool {
	return a.opts.debug || config.DebugEnabled(a.lookup)
}

// loadConfig reads the config file and layers the environment and the
// command line flags over it.
func (a *app) loadConfig() (*config.Config, string, error) {
	path, err := a.configPath()
	if err != nil {
		return nil, "", aerrors.ErrConfigLoadFailed("", err)
	}
	if v, ok := a.lookup(config.EnvAishellConfig); ok && v != "" {
		path = v
	}
	cfg, err := config.LoadFrom(path)
	if err != nil {
		return nil, path, err
	}
	cfg.ApplyEnv(a.lookup)

	if a.opts.provider != "" {
		cfg.DefaultProvider = a.opts.provider
	}
	if a.opts.model != "" {
		if pc, ok := cfg.Providers[cfg.DefaultProvider]; ok {
			pc.Model = a.opts.model
			cfg.Providers[cfg.DefaultProvider] = pc
		}
	}
	if a.opts.lang != "" {
		cfg.UserPreferences.Language = a.opts.lang
	}
	return cfg, path, nil
}

func (a *app) initLogging(cfg *config.Config) {
	lc := cfg.UserPreferences.Logging
	level := logging.LogLevel(lc.Level)
	if a.debugEnabled() {
		level = logging.DebugLevel
	}
	logCfg := logging.DefaultConfig()
	logCfg.Level = level
	logCfg.Console = a.stderr
	if lc.Format != "" {
		logCfg.Format = lc.Format
	}
	if lc.Output != "" {
		logCfg.Output = lc.Output
	}
	if lc.LogFile != "" {
		logCfg.LogFile = lc.LogFile
	}
	if lc.MaxSize > 0 {
		logCfg.MaxSize = lc.MaxSize
	}
	if lc.MaxBackups > 0 {
		logCfg.MaxBackups = lc.MaxBackups
	}
	if lc.MaxAge > 0 {
		logCfg.MaxAge = lc.MaxAge
	}

	if err := logging.Init(logCfg); err != nil {
		fallback := logging.DefaultConfig()
		fallback.Console = a.stderr
		_ = logging.Init(fallback)
		logging.WithComponent("main").WithError(err).Warn("Log file unavailable, logging to stderr only")
	}
}

// description joins the positional words, or asks for the request when there are none.
func (a *app) description(ctx context.Context, args []string, reader ui.LineReader) (string, error) {
	desc := strings.TrimSpace(strings.Join(args, " "))
	if desc != "" {
		return desc, nil
	}
	if a.opts.commandOnly {
		return "", aerrors.ErrMissingDescription()
	}
	line, err := reader.ReadLine(ctx, DescriptionPrompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(line) == "" {
		return "", aerrors.ErrMissingDescription()
	}
	return strings.TrimSpace(line), nil
}

func (a *app) loopMode() session.Mode {
	switch {
	case a.opts.commandOnly:
		return session.ModeCommandOnly
	case a.opts.once || !a.stdinTTY:
		return session.ModeOnce
	}
	return session.ModeRefine
}

func (a *app) shellName() string {
	if v, ok := a.lookup("SHELL"); ok && v != "" {
		return filepath.Base(v)
	}
	if a.goos == "windows" {
		return "cmd"
	}
	return "sh"
}

// runGenerate turns a description into a command and prints it on stdout.
func (a *app) runGenerate(ctx context.Context, args []string) error {
	cfg, cfgPath, err := a.loadConfig()
	if err != nil {
		return err
	}
	a.initLogging(cfg)
	defer logging.Close()
	logger := logging.WithComponent("main")

	providerName := cfg.DefaultProvider
	pc, ok := cfg.Provider(providerName)
	if !ok {
		return aerrors.ErrProviderNotFoundError(providerName, llm.RegisteredProviders())
	}
	// 先檢查憑證，缺少時不建立 provider
	pc, err = config.ResolveCredential(pc, a.lookup)
	if err != nil {
		return err
	}

	reader := a.newReader()
	desc, err := a.description(ctx, args, reader)
	if err != nil {
		return err
	}

	provider, err := a.newProvider(providerName, pc)
	if err != nil {
		return err
	}

	pm, err := prompt.LoadManager(filepath.Dir(cfgPath))
	if err != nil {
		logger.WithError(err).Warn("Failed to load prompts.json, using built-in prompts")
		pm = prompt.NewDefaultManager()
	}

	genOpts := []llm.GeneratorOption{
		llm.WithLanguage(cfg.UserPreferences.Language),
		llm.WithShell(a.shellName(), a.goos),
		llm.WithMaxTokens(pc.MaxTokens),
	}
	if a.debugEnabled() {
		sanitizer := security.NewSanitizer()
		sanitizer.AddLiteral("credential", pc.APIKey)
		genOpts = append(genOpts, llm.WithTrace(security.NewWriter(a.stderr, sanitizer)))
	}
	gen := llm.NewGenerator(provider, pm, pc.Model, genOpts...)

	sess, err := session.New(desc)
	if err != nil {
		return err
	}

	mode := a.loopMode()
	presenter := ui.NewPresenter(a.stderr,
		ui.WithDiff(cfg.UserPreferences.ShowDiff),
		ui.WithInteractive(a.stderrTTY),
	)
	loop := session.NewLoop(gen, a.stdout,
		session.WithMode(mode),
		session.WithView(presenter),
		session.WithPrompter(reader),
	)

	logger.WithField("session", sess.ID()).
		WithField("provider", providerName).
		WithField("mode", string(loop.Mode())).
		Debug("Starting session")

	command, err := loop.Run(ctx, sess)
	if err != nil {
		if ctx.Err() != nil {
			return aerrors.ErrUserCancelled()
		}
		return err
	}

	if a.opts.handoff {
		if err := a.writeHandoff(command); err != nil {
			return err
		}
	}
	if mode == session.ModeCommandOnly {
		return nil
	}
	return a.postAction(ctx, cfg, command)
}

// writeHandoff stores the accepted command for the shell wrapper
func (a *app) writeHandoff(command string) error {
	path, err := handoff.Path(a.lookup)
	if err != nil {
		return aerrors.ErrHandoffFailed("", err)
	}
	return handoff.Write(path, command)
}

// postAction applies the flags and the configured post_action to the
// accepted command. Clipboard and execution failures are warnings.
func (a *app) postAction(ctx context.Context, cfg *config.Config, command string) error {
	prefs := cfg.UserPreferences
	doCopy := a.opts.copy || prefs.PostAction == config.PostActionCopy
	// the shell wrapper runs the command itself in handoff mode
	doExec := !a.opts.handoff && (a.opts.exec || prefs.PostAction == config.PostActionRun)

	if !a.opts.copy && !a.opts.exec && !a.opts.handoff &&
		prefs.PostAction == config.PostActionAsk && a.stdinTTY && a.stderrTTY {
		action, err := a.pickAction()
		if err != nil {
			return err
		}
		doCopy = action == ui.ActionCopy
		doExec = action == ui.ActionRun
	}

	var warn error
	if doCopy && prefs.Clipboard != config.ClipboardOff {
		if err := a.copier(prefs.Clipboard).Copy(command); err != nil {
			warn = err
		} else {
			pterm.Success.WithWriter(a.stderr).Println("Copied to clipboard")
		}
	}
	if doExec {
		if err := a.runner.Run(ctx, command); err != nil {
			if ctx.Err() != nil {
				return aerrors.ErrUserCancelled()
			}
			warn = err
		}
	}
	return warn
}
