package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/mit-pdos/go-simplefs/config"
	"github.com/mit-pdos/go-simplefs/disk"
	"github.com/mit-pdos/go-simplefs/fs"
	"github.com/mit-pdos/go-simplefs/util"
)

type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
	log     *zap.SugaredLogger
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.New(), log: zap.NewNop().Sugar()}
	root := &cobra.Command{
		Use:   config.AppName,
		Short: "Inspect and modify a simplefs disk image",
		Long: `simplefs manages a flat, inode-numbered file system stored in a
disk image. Files are named by inode number; create returns a new one.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.log.Sync()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (yaml)")
	flags.String("disk", "", "disk image path (default simplefs.img)")
	flags.Uint64("blocks", 0, "number of blocks when formatting a new image (default 100)")
	flags.Uint64("debug", 0, "debug log level")
	flags.String("log-format", "", "log format: json or human")
	a.v.BindPFlag("disk", flags.Lookup("disk"))
	a.v.BindPFlag("blocks", flags.Lookup("blocks"))
	a.v.BindPFlag("debug", flags.Lookup("debug"))
	a.v.BindPFlag("log_format", flags.Lookup("log-format"))

	root.AddCommand(
		a.formatCmd(),
		a.debugCmd(),
		a.createCmd(),
		a.deleteCmd(),
		a.getsizeCmd(),
		a.catCmd(),
		a.copyinCmd(),
		a.copyoutCmd(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	logger, err := util.NewLogger(cfg.LogFormat, cfg.Debug > 0)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.cfg = cfg
	a.log = logger.Sugar()
	util.SetLogger(a.log)
	util.Debug = cfg.Debug
	return nil
}

// withFs opens the configured image, mounting it if mount is set, and runs
// f. nblocks is passed to disk.NewFileDisk.
func (a *app) withFs(nblocks uint64, mount bool, f func(*fs.Fs) error) error {
	d, err := disk.NewFileDisk(a.cfg.Disk, nblocks)
	if err != nil {
		return err
	}
	defer d.Close()
	fsys := fs.New(d)
	if mount {
		if err := fsys.Mount(); err != nil {
			a.log.Errorw("mount failed", "disk", a.cfg.Disk, "error", err)
			return err
		}
	}
	if err := f(fsys); err != nil {
		return err
	}
	return d.Barrier()
}
