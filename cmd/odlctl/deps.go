package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/opendaylight-tools/odlctl/internal/config"
	"github.com/opendaylight-tools/odlctl/internal/controller"
	"github.com/opendaylight-tools/odlctl/internal/exitcodes"
	"github.com/opendaylight-tools/odlctl/internal/initsys"
	"github.com/opendaylight-tools/odlctl/internal/installer"
	"github.com/opendaylight-tools/odlctl/internal/karafcfg"
	"github.com/opendaylight-tools/odlctl/internal/osfamily"
	"github.com/opendaylight-tools/odlctl/internal/pkgmgr"
	ui "github.com/opendaylight-tools/odlctl/internal/ui"
)

// Prompter abstracts interactive terminal I/O for testability.
type Prompter interface {
	// ReadLine displays the prompt and reads a line of input.
	ReadLine(prompt string) (string, error)
	// IsInteractive returns whether the terminal supports interactive input.
	IsInteractive() bool
}

// Deps holds all injectable dependencies for command handlers.
type Deps struct {
	Cfg       config.Config
	OS        osfamily.Info
	Init      initsys.Manager
	Pkg       pkgmgr.Manager
	Installer *installer.Installer
	Store     karafcfg.Store
	Client    controller.Client
	Printer   ui.Printer
	Prompter  Prompter
	Output    io.Writer
}

// ttyPrompter reads from /dev/tty when stdin is not a terminal.
type ttyPrompter struct{}

func (p *ttyPrompter) ReadLine(prompt string) (string, error) {
	fmt.Print(prompt)

	var reader *bufio.Reader
	if term.IsTerminal(int(os.Stdin.Fd())) {
		reader = bufio.NewReader(os.Stdin)
	} else {
		tty, err := os.OpenFile("/dev/tty", os.O_RDONLY, 0)
		if err != nil {
			return "", fmt.Errorf("no interactive terminal available: %w", err)
		}
		defer tty.Close()
		reader = bufio.NewReader(tty)
	}

	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (p *ttyPrompter) IsInteractive() bool {
	if flagNonInteractive {
		return false
	}
	if term.IsTerminal(int(os.Stdin.Fd())) {
		return true
	}
	tty, err := os.OpenFile("/dev/tty", os.O_RDONLY, 0)
	if err == nil {
		tty.Close()
		return true
	}
	return false
}

// newDeps creates production dependencies from the current flags and
// config. OS and init-system detection failures surface as validation
// errors before any handler runs.
func newDeps() (*Deps, error) {
	cfg, err := loadCfg()
	if err != nil {
		return nil, err
	}

	osInfo, err := osfamily.Detect("/")
	if err != nil {
		return nil, exitcodes.ValidationErr(err.Error())
	}
	initKind := osfamily.DetectInit("/")
	initMgr, err := initsys.New(initKind, nil, "/")
	if err != nil {
		return nil, exitcodes.ValidationErr(err.Error())
	}
	pkgMgr, err := pkgmgr.ForFamily(osInfo.Family, nil, "/")
	if err != nil {
		return nil, exitcodes.ValidationErr(err.Error())
	}

	store := karafcfg.New(cfg.InstallDir())
	client := controller.New("127.0.0.1", cfg.RestPort, controller.Options{
		User:     cfg.AdminUser,
		Password: cfg.AdminPassword,
	})

	inst := installer.New(cfg, installer.Deps{
		OS:    osInfo,
		Init:  initMgr,
		Pkg:   pkgMgr,
		Store: store,
	})

	return &Deps{
		Cfg:       cfg,
		OS:        osInfo,
		Init:      initMgr,
		Pkg:       pkgMgr,
		Installer: inst,
		Store:     store,
		Client:    client,
		Printer:   getPrinter(),
		Prompter:  &ttyPrompter{},
		Output:    os.Stdout,
	}, nil
}
