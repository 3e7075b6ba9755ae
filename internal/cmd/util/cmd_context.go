package util

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/tmeckel/az-cli/internal/azure"
	"github.com/tmeckel/az-cli/internal/config"
	"github.com/tmeckel/az-cli/internal/iostreams"
	"github.com/tmeckel/az-cli/internal/printer"
	"github.com/tmeckel/az-cli/internal/profile"
	"github.com/tmeckel/az-cli/internal/prompter"
	"github.com/tmeckel/az-cli/internal/util"
)

//go:generate mockgen -destination=../../mocks/cmd_context_mock.go -package=mocks github.com/tmeckel/az-cli/internal/cmd/util CmdContext

type CmdContext interface {
	util.ContextAware
	Config() (config.Config, error)
	Profile() (profile.Store, error)
	IOStreams() (*iostreams.IOStreams, error)
	Prompter() (prompter.Prompter, error)
	ClientFactory() (azure.ClientFactory, error)
	Printer(string) (printer.Printer, error)
}

type cmdContext struct {
	ioStreams *iostreams.IOStreams
	prompter  prompter.Prompter
	ctx       context.Context
	cfg       config.Config

	profileOnce sync.Once
	profile     profile.Store
	profileErr  error

	factoryOnce sync.Once
	factory     azure.ClientFactory
	factoryErr  error
}

func NewCmdContext(ctx context.Context) (CmdContext, error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, err
	}

	iostrms, err := newIOStreams(cfg)
	if err != nil {
		return nil, err
	}

	return &cmdContext{
		ioStreams: iostrms,
		prompter:  prompter.New(iostrms.In, iostrms.Out, iostrms.ErrOut),
		ctx:       ctx,
		cfg:       cfg,
	}, nil
}

func (c *cmdContext) Context() context.Context {
	return c.ctx
}

func (c *cmdContext) Config() (config.Config, error) {
	return c.cfg, nil
}

// Profile loads the profile on first use, so commands that do not need an account keep working
// with a damaged profile.
func (c *cmdContext) Profile() (profile.Store, error) {
	c.profileOnce.Do(func() {
		p, err := profile.Load(config.ConfigDir())
		if err != nil {
			c.profileErr = err
			return
		}
		c.profile = p
	})
	return c.profile, c.profileErr
}

func (c *cmdContext) IOStreams() (*iostreams.IOStreams, error) {
	return c.ioStreams, nil
}

func (c *cmdContext) Prompter() (prompter.Prompter, error) {
	return c.prompter, nil
}

func (c *cmdContext) ClientFactory() (azure.ClientFactory, error) {
	c.factoryOnce.Do(func() {
		p, err := c.Profile()
		if err != nil {
			c.factoryErr = err
			return
		}
		c.factory, c.factoryErr = azure.NewClientFactory(c.cfg, p)
	})
	return c.factory, c.factoryErr
}

func (c *cmdContext) Printer(t string) (p printer.Printer, err error) {
	switch t {
	case OutputTable:
		p, err = newTablePrinter(c.ioStreams)
	case OutputTSV:
		p, err = printer.NewTSVPrinter(c.ioStreams.Out)
	default:
		return nil, printer.NewUnsupportedPrinterError(t)
	}
	return
}

func newIOStreams(cfg config.Config) (*iostreams.IOStreams, error) {
	io := iostreams.System()
	defaults := cfg.Defaults()

	if _, promptDisabled := os.LookupEnv("AZ_PROMPT_DISABLED"); promptDisabled {
		io.SetNeverPrompt(true)
	} else if !defaults.Prompt() {
		io.SetNeverPrompt(true)
	}

	// Pager precedence
	// 1. AZ_PAGER
	// 2. pager from config
	// 3. PAGER
	if pager, ok := os.LookupEnv("AZ_PAGER"); ok {
		io.SetPager(pager)
	} else if pager := defaults.Pager(); pager != "" {
		io.SetPager(pager)
	}

	if defaults.NoColor() {
		io.SetColorEnabled(false)
	}
	if defaults.OnlyShowErrors() {
		io.SetQuiet(true)
	}

	return io, nil
}

func newTablePrinter(ios *iostreams.IOStreams) (printer.TablePrinter, error) {
	maxWidth := 80
	isTTY := ios.IsStdoutTTY()
	if isTTY {
		maxWidth = ios.TerminalWidth()
	}
	pt, err := printer.NewTablePrinter(ios.Out, isTTY, maxWidth)
	if err != nil {
		return nil, fmt.Errorf("failed to create new table printer: %w", err)
	}
	return pt, nil
}
