package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/tylersense-ui/Bitburner-Scripts/internal/store"
	"github.com/tylersense-ui/Bitburner-Scripts/internal/targets"
	"github.com/tylersense-ui/Bitburner-Scripts/internal/text"
	"github.com/tylersense-ui/Bitburner-Scripts/internal/ui"
	"github.com/tylersense-ui/Bitburner-Scripts/internal/util"
)

var version = "0.1.0"

func main() {
	// Load .env file if it exists (ignore error if file doesn't exist)
	_ = godotenv.Load()

	cfg := util.FromEnv()
	flag.StringVar(&cfg.DSN, "dsn", cfg.DSN, "PostgreSQL DSN")
	flag.StringVar(&cfg.Theme, "theme", cfg.Theme, "TUI theme: catppuccin|dracula|gruvbox|solarized_dark")
	flag.StringVar(&cfg.Format, "format", cfg.Format, "Export format: yaml|json")
	flag.BoolVar(&cfg.Debug, "debug", cfg.Debug, "Debug logging")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "bbtargets [--dsn DSN] [--theme NAME] [--format yaml|json] [--debug] "+
			"| tier NAME | setting GROUP KEY | show | export [--format yaml|json] | check | migrate up|down | publish | version\n")
	}
	flag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true, Prefix: "bbtargets"})
	if cfg.Debug {
		logger.SetLevel(log.DebugLevel)
	}
	log.SetDefault(logger)

	if err := run(cfg, flag.Args(), os.Stdout); err != nil {
		log.Error("command failed", "err", err)
		os.Exit(1)
	}
}

func run(cfg util.Config, args []string, out io.Writer) error {
	if len(args) == 0 {
		return ui.Run(context.Background(), cfg, version)
	}
	switch args[0] {
	case "version":
		fmt.Fprintln(out, "bbtargets", version)
		return nil
	case "tier":
		if len(args) < 2 {
			return errors.New("tier requires a name: EARLY|MID|LATE|ENDGAME")
		}
		t, err := targets.ParseTier(args[1])
		if err != nil {
			return err
		}
		hosts, err := targets.Targets(t)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, strings.Join(hosts, "\n"))
		return nil
	case "setting":
		if len(args) < 3 {
			return errors.New("setting requires GROUP and KEY")
		}
		g, err := targets.ParseGroup(args[1])
		if err != nil {
			return err
		}
		k, err := targets.ParseKey(g, args[2])
		if err != nil {
			return err
		}
		v, err := targets.GetSetting(string(g), string(k))
		if err != nil {
			return err
		}
		fmt.Fprintln(out, v)
		return nil
	case "show":
		fmt.Fprint(out, text.Report())
		return nil
	case "export":
		fs := flag.NewFlagSet("export", flag.ContinueOnError)
		fs.SetOutput(io.Discard)
		format := fs.String("format", cfg.Format, "Export format: yaml|json")
		if err := fs.Parse(args[1:]); err != nil {
			return fmt.Errorf("export: %w", err)
		}
		if fs.NArg() > 0 {
			return fmt.Errorf("export: unexpected argument %q", fs.Arg(0))
		}
		return text.Export(out, *format)
	case "check":
		if err := targets.Check(); err != nil {
			return err
		}
		log.Info("table ok", "tiers", len(targets.AllTiers), "groups", len(targets.AllSettingGroups))
		return nil
	case "migrate":
		if len(args) < 2 {
			return errors.New("migrate requires 'up' or 'down'")
		}
		return migrate(cfg, args[1])
	case "publish":
		return publish(cfg)
	}
	flag.Usage()
	return fmt.Errorf("unknown command %q", args[0])
}

func migrate(cfg util.Config, action string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	migrator, err := store.NewMigrator(cfg.DSN)
	if err != nil {
		return err
	}
	switch action {
	case "up":
		err = migrator.Up(ctx)
	case "down":
		err = migrator.Down(ctx)
	default:
		return errors.New("unknown migrate action; use up|down")
	}
	if errors.Is(err, store.ErrNoChange) {
		log.Info("migrations already current")
		return nil
	}
	if err != nil {
		return err
	}
	log.Info("migrations applied", "action", action)
	return nil
}

func publish(cfg util.Config) error {
	if err := targets.Check(); err != nil {
		return err
	}
	if err := migrate(cfg, "up"); err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	db, err := store.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	id, err := store.NewSnapshotRepo(db).Publish(ctx, version)
	if err != nil {
		return err
	}
	log.Info("snapshot published", "id", id, "version", version)
	return nil
}
