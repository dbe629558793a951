// Package cli is the spacectl command tree. Every command opens a store,
// dispatches saga triggers, waits for them to settle and renders the
// resulting state.
package cli

import (
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/yungbote/spacekeeper-backend/internal/client/view"
	"github.com/yungbote/spacekeeper-backend/internal/platform/logger"
)

// Version is set at build time.
var Version = "dev"

type Deps struct {
	NewService ServiceFactory
	Out        io.Writer
	Err        io.Writer
}

type cli struct {
	newService ServiceFactory

	flagConfigDir string
	flagServer    string
	flagOutput    string
	flagDebug     bool

	configDir string
	server    string
	format    string
	v         *viper.Viper
	log       *logger.Logger
}

func NewRootCommand(deps Deps) *cobra.Command {
	c := &cli{newService: deps.NewService, log: logger.Nop()}
	if c.newService == nil {
		c.newService = defaultServiceFactory
	}

	root := &cobra.Command{
		Use:           "spacectl",
		Short:         "spacectl manages spaces, grids and items on a spacekeeper server",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd)
		},
	}
	if deps.Out != nil {
		root.SetOut(deps.Out)
	}
	if deps.Err != nil {
		root.SetErr(deps.Err)
	}

	pf := root.PersistentFlags()
	pf.StringVar(&c.flagConfigDir, "config-dir", "", "configuration directory (default: ~/.spacekeeper)")
	pf.StringVar(&c.flagServer, "server", "", "server base URL (default: "+defaultServer+")")
	pf.StringVarP(&c.flagOutput, "output", "o", "", "output format: text, json or yaml")
	pf.BoolVar(&c.flagDebug, "debug", false, "log requests and saga activity to stderr")

	root.AddCommand(
		c.loginCmd(),
		c.logoutCmd(),
		c.registerCmd(),
		c.refreshCmd(),
		c.meCmd(),
		c.spacesCmd(),
		c.gridsCmd(),
		c.itemsCmd(),
		c.searchCmd(),
		c.remindersCmd(),
	)
	return root
}

// setup loads config once per invocation; flags override file and env.
func (c *cli) setup(cmd *cobra.Command) error {
	dir, err := resolveConfigDir(c.flagConfigDir)
	if err != nil {
		return err
	}
	v, err := loadConfig(dir)
	if err != nil {
		return err
	}
	c.server = v.GetString(cfgKeyServer)
	if c.flagServer != "" {
		c.server = c.flagServer
	}
	c.format = v.GetString(cfgKeyOutput)
	if c.flagOutput != "" {
		c.format = c.flagOutput
	}
	if err := validOutput(c.format); err != nil {
		return err
	}
	if c.flagDebug {
		log, err := logger.New("development")
		if err != nil {
			return err
		}
		c.log = log
	}
	c.configDir = dir
	c.v = v
	return nil
}

func (c *cli) render(cmd *cobra.Command, data any, text func(st view.Styles) string) error {
	return render(cmd.OutOrStdout(), c.format, data, text)
}
