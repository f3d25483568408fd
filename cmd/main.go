package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/brettbedarf/doctree"
	"github.com/brettbedarf/doctree/config"
	"github.com/brettbedarf/doctree/document"
	"github.com/brettbedarf/doctree/filetree"
	"github.com/brettbedarf/doctree/internal/util"
	"github.com/brettbedarf/doctree/mount"
	"github.com/brettbedarf/doctree/storage"
)

// decode tries text first and falls back to an opaque blob, so binary
// entries never abort a load from the CLI.
func decode(name string, data []byte) (doctree.Content, error) {
	if c, err := doctree.DecodeText(name, data); err == nil {
		return c, nil
	}
	return doctree.DecodeBlob(name, data)
}

// setup resolves the runtime config and initializes logging. The config's
// log level is the baseline; an explicit --verbose flag overrides it.
func setup(cmd *cli.Command) (*config.Config, error) {
	cfg := config.NewDefaultConfig()
	if path := cmd.String("config"); path != "" {
		var err error
		cfg, err = config.NewConfigFromFile(path)
		if err != nil {
			return nil, err
		}
	}
	util.InitializeLogger(resolveLogLevel(cfg, int(cmd.Int("verbose")), cmd.IsSet("verbose")))
	return cfg, nil
}

func resolveLogLevel(cfg *config.Config, verbose int, verboseSet bool) util.LogLevel {
	if !verboseSet {
		return cfg.LogLvl
	}
	if verbose < 1 {
		verbose = 1
	}
	if verbose > 5 {
		verbose = 5
	}
	logLvls := [5]util.LogLevel{util.ErrorLevel, util.WarnLevel, util.InfoLevel, util.DebugLevel, util.TraceLevel}
	return logLvls[verbose-1]
}

func openDoc(cmd *cli.Command, cfg *config.Config) (*document.Document, error) {
	dir := cmd.Args().Get(0)
	if dir == "" {
		return nil, fmt.Errorf("document directory not specified; it must be the first argument")
	}
	prov, err := storage.NewFS(dir)
	if err != nil {
		return nil, err
	}
	return document.Open(prov, "", decode, cfg)
}

func printTree(doc *document.Document) {
	t := doc.Tree()
	root := t.Root()
	fmt.Printf(". [%s]\n", root.ID())
	root.Walk(func(p string, item filetree.Item[*filetree.Proxy]) bool {
		kind := "file"
		if item.IsFolder() {
			kind = "dir"
		}
		fmt.Printf("%-6s %s [%s]\n", kind, p, item.ID())
		return true
	})
}

func runTree(_ context.Context, cmd *cli.Command) error {
	cfg, err := setup(cmd)
	if err != nil {
		return err
	}
	doc, err := openDoc(cmd, cfg)
	if err != nil {
		return err
	}
	printTree(doc)
	return nil
}

func runAdd(_ context.Context, cmd *cli.Command) error {
	cfg, err := setup(cmd)
	if err != nil {
		return err
	}
	doc, err := openDoc(cmd, cfg)
	if err != nil {
		return err
	}
	target := cmd.Args().Get(1)
	if target == "" {
		return fmt.Errorf("target path not specified")
	}
	parentPath, name := filetree.ParentPath(target)

	var actual string
	var ok bool
	if cmd.Bool("folder") {
		actual, ok, err = doc.AddFolder(parentPath, name)
	} else {
		actual, ok, err = doc.AddFile(parentPath, name, doctree.NewText(cmd.String("text")))
	}
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no free name for %q", name)
	}
	if err := doc.Save(); err != nil {
		return err
	}
	fmt.Printf("added %s\n", filetree.JoinPath(parentPath, actual))
	return nil
}

func runRename(_ context.Context, cmd *cli.Command) error {
	cfg, err := setup(cmd)
	if err != nil {
		return err
	}
	doc, err := openDoc(cmd, cfg)
	if err != nil {
		return err
	}
	target, newName := cmd.Args().Get(1), cmd.Args().Get(2)
	if target == "" || newName == "" {
		return fmt.Errorf("usage: rename DIR PATH NEWNAME")
	}
	parentPath, oldName := filetree.ParentPath(target)
	ok, err := doc.Rename(parentPath, oldName, newName, cmd.Bool("keep-position"))
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%q already exists", newName)
	}
	if err := doc.Save(); err != nil {
		return err
	}
	fmt.Printf("renamed %s -> %s\n", target, filetree.JoinPath(parentPath, newName))
	return nil
}

func runRemove(_ context.Context, cmd *cli.Command) error {
	cfg, err := setup(cmd)
	if err != nil {
		return err
	}
	doc, err := openDoc(cmd, cfg)
	if err != nil {
		return err
	}
	target := cmd.Args().Get(1)
	if target == "" {
		return fmt.Errorf("target path not specified")
	}
	ok, err := doc.Remove(target)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("nothing at %q", target)
	}
	if err := doc.Save(); err != nil {
		return err
	}
	fmt.Printf("removed %s\n", target)
	return nil
}

func runMount(_ context.Context, cmd *cli.Command) error {
	cfg, err := setup(cmd)
	if err != nil {
		return err
	}
	logger := util.GetLogger("main")
	doc, err := openDoc(cmd, cfg)
	if err != nil {
		return err
	}
	mnt := cmd.Args().Get(1)
	if mnt == "" {
		return fmt.Errorf("mount point not specified")
	}
	snap, err := doc.Tree().Snapshot()
	if err != nil {
		return err
	}
	srv, err := mount.Serve(mnt, snap, cmd.Bool("debug"))
	if err != nil {
		return err
	}
	logger.Info().Str("mountpoint", mnt).Msg("Snapshot mounted")

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	sig := <-signalChan
	logger.Info().Str("signal", sig.String()).Msg("Received signal, unmounting")

	if err := srv.Unmount(); err != nil {
		return err
	}
	srv.Wait()
	return nil
}

func runWatch(ctx context.Context, cmd *cli.Command) error {
	cfg, err := setup(cmd)
	if err != nil {
		return err
	}
	logger := util.GetLogger("main")
	doc, err := openDoc(cmd, cfg)
	if err != nil {
		return err
	}
	printTree(doc)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return doc.Watch(ctx, func() {
		if err := doc.Reload(); err != nil {
			logger.Error().Err(err).Msg("Reload failed")
			return
		}
		printTree(doc)
	})
}

func main() {
	globalFlags := []cli.Flag{
		&cli.IntFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "Log verbosity level between 1 (error) and 5 (trace)",
			Value:   3,
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to config override file (YAML or JSON)",
			Sources: cli.EnvVars("DOCTREE_CONFIG"),
		},
	}

	cmd := &cli.Command{
		Name:  "doctree",
		Usage: "Inspect and edit a document directory with stable item identity",
		Flags: globalFlags,
		Commands: []*cli.Command{
			{
				Name:      "tree",
				Usage:     "Print the hierarchy with item identifiers",
				ArgsUsage: "DIR",
				Action:    runTree,
			},
			{
				Name:      "add",
				Usage:     "Add a file or folder",
				ArgsUsage: "DIR PATH",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "text", Usage: "Text content for the new file"},
					&cli.BoolFlag{Name: "folder", Usage: "Create a folder instead of a file"},
				},
				Action: runAdd,
			},
			{
				Name:      "rename",
				Usage:     "Rename an item in place",
				ArgsUsage: "DIR PATH NEWNAME",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "keep-position", Usage: "Keep the item's position instead of re-sorting"},
				},
				Action: runRename,
			},
			{
				Name:      "remove",
				Usage:     "Remove an item and its subtree",
				ArgsUsage: "DIR PATH",
				Action:    runRemove,
			},
			{
				Name:      "mount",
				Usage:     "Mount a read-only snapshot over FUSE",
				ArgsUsage: "DIR MOUNTPOINT",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "debug", Usage: "Enable FUSE wire debugging"},
				},
				Action: runMount,
			},
			{
				Name:      "watch",
				Usage:     "Reload and reprint the tree on external changes",
				ArgsUsage: "DIR",
				Action:    runWatch,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
