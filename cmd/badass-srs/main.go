package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"

	"github.com/moriyoshi/badass-srs/address"
	"github.com/moriyoshi/badass-srs/rewriter"
	"github.com/moriyoshi/badass-srs/types"
)

type Globals struct {
	Config    string     `name:"config" short:"c" help:"Path to the rewriter configuration file." env:"BADASS_SRS_CONFIG" type:"path" optional:""`
	Domain    string     `name:"domain" help:"Domain the rewritten addresses belong to. Overrides the configuration file." env:"BADASS_SRS_DOMAIN" optional:""`
	Secrets   []string   `name:"secret" help:"Secret used to sign addresses. The first one signs, all of them verify." env:"BADASS_SRS_SECRET" optional:""`
	Separator string     `name:"separator" help:"Separator following the SRS0/SRS1 marker (=, + or -)." env:"BADASS_SRS_SEPARATOR" optional:""`
	LogLevel  slog.Level `name:"log-level" help:"Log level." env:"BADASS_SRS_LOG_LEVEL" default:"WARN" enum:"DEBUG,INFO,WARN,ERROR"`
}

type App struct {
	*Globals
	ctx    context.Context
	logger *slog.Logger
	stdin  io.Reader
	stdout io.Writer
}

func (app *App) config() (rewriter.Config, error) {
	c := rewriter.DefaultConfig()
	if app.Config != "" {
		var err error
		c, err = rewriter.LoadConfigFile(app.Config)
		if err != nil {
			return c, err
		}
	}
	if app.Domain != "" {
		c.Domain = app.Domain
	}
	if len(app.Secrets) > 0 {
		c.Secrets = app.Secrets
	}
	if app.Separator != "" {
		c.Separator = app.Separator
	}
	return c, nil
}

func (app *App) rewriter() (*rewriter.Rewriter, error) {
	c, err := app.config()
	if err != nil {
		return nil, err
	}
	return rewriter.NewRewriter(c, rewriter.WithLogger(app.logger))
}

type ForwardCmd struct {
	Addresses []string `arg:"" name:"address" help:"Addresses to rewrite."`
}

func (cmd *ForwardCmd) Run(app *App) error {
	rw, err := app.rewriter()
	if err != nil {
		return err
	}
	for _, addr := range cmd.Addresses {
		fwd, err := rw.Forward(addr)
		if err != nil {
			return err
		}
		fmt.Fprintln(app.stdout, fwd)
	}
	return nil
}

type ReverseCmd struct {
	Base      bool     `name:"base" help:"Print the original sender even for SRS1 addresses."`
	Addresses []string `arg:"" name:"address" help:"SRS addresses to decode."`
}

func (cmd *ReverseCmd) Run(app *App) error {
	rw, err := app.rewriter()
	if err != nil {
		return err
	}
	for _, addr := range cmd.Addresses {
		reverse := rw.Reverse
		if cmd.Base {
			reverse = rw.ReverseBase
		}
		rev, err := reverse(addr)
		if err != nil {
			return err
		}
		fmt.Fprintln(app.stdout, rev)
	}
	return nil
}

type ValidateCmd struct {
	Addresses []string `arg:"" name:"address" help:"Addresses to check."`
}

func (cmd *ValidateCmd) Run(app *App) error {
	invalid := 0
	for _, addr := range cmd.Addresses {
		email := address.ExtractEmail(addr)
		if address.Validate(email) {
			fmt.Fprintf(app.stdout, "%s\tvalid\n", email)
		} else {
			fmt.Fprintf(app.stdout, "%s\tinvalid\n", email)
			invalid++
		}
	}
	if invalid > 0 {
		return fmt.Errorf("%d of %d addresses are invalid", invalid, len(cmd.Addresses))
	}
	return nil
}

type BatchCmd struct {
	Direction   types.Direction `name:"direction" short:"d" help:"forward or reverse." required:""`
	Concurrency int             `name:"concurrency" help:"Number of addresses processed at once (0 for unbounded)." default:"8"`
}

// Run reads one address per line from stdin and writes the results, one per
// line in the same order, to stdout. Failed lines are left empty.
func (cmd *BatchCmd) Run(app *App) error {
	rw, err := app.rewriter()
	if err != nil {
		return err
	}
	var addrs []string
	sc := bufio.NewScanner(app.stdin)
	for sc.Scan() {
		if l := strings.TrimSpace(sc.Text()); l != "" {
			addrs = append(addrs, l)
		}
	}
	if err := sc.Err(); err != nil {
		return err
	}
	w := bufio.NewWriter(app.stdout)
	failed := 0
	for _, res := range rewriter.Batch(app.ctx, rw, cmd.Direction, addrs, cmd.Concurrency) {
		if res.Err != nil {
			app.logger.Error("failed", slog.String("address", res.Input), slog.Any("error", res.Err))
			failed++
		}
		fmt.Fprintln(w, res.Output)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d addresses failed", failed, len(addrs))
	}
	return nil
}

type FilterCmd struct {
	Direction types.Direction `name:"direction" short:"d" help:"forward or reverse." required:""`
	Headers   []string        `name:"header" short:"H" help:"Header to rewrite. May be repeated." default:"Return-Path"`
}

func (cmd *FilterCmd) Run(app *App) error {
	rw, err := app.rewriter()
	if err != nil {
		return err
	}
	w := bufio.NewWriter(app.stdout)
	err = rewriter.FilterHeaders(w, app.stdin, rw, cmd.Direction, cmd.Headers...)
	if err != nil {
		return err
	}
	return w.Flush()
}

type CLI struct {
	Globals

	Forward  ForwardCmd  `cmd:"" help:"Rewrite envelope senders into SRS addresses."`
	Reverse  ReverseCmd  `cmd:"" help:"Decode SRS addresses, verifying SRS0 hashes and timestamps."`
	Validate ValidateCmd `cmd:"" help:"Check that addresses are syntactically valid."`
	Batch    BatchCmd    `cmd:"" help:"Rewrite addresses read from stdin, one per line."`
	Filter   FilterCmd   `cmd:"" help:"Rewrite address headers of a message read from stdin."`
}

func (CLI *CLI) initLogger(w *os.File) *slog.Logger {
	var handler slog.Handler
	if isatty.IsTerminal(w.Fd()) || isatty.IsCygwinTerminal(w.Fd()) {
		handler = tint.NewHandler(colorable.NewColorable(w), &tint.Options{Level: CLI.LogLevel})
	} else {
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: CLI.LogLevel})
	}
	return slog.New(handler)
}

func newParser(cli *CLI, options ...kong.Option) (*kong.Kong, error) {
	return kong.New(
		cli,
		append(
			[]kong.Option{
				kong.Name("badass-srs"),
				kong.Description("Sender Rewriting Scheme address rewriter."),
				kong.UsageOnError(),
			},
			options...,
		)...,
	)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	var CLI CLI
	parser, err := newParser(&CLI)
	if err != nil {
		panic(err)
	}
	kongCtx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)
	logger := CLI.initLogger(os.Stderr)
	err = kongCtx.Run(&App{
		Globals: &CLI.Globals,
		ctx:     ctx,
		logger:  logger,
		stdin:   os.Stdin,
		stdout:  os.Stdout,
	})
	kongCtx.FatalIfErrorf(err)
}
