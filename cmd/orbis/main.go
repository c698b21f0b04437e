package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/OCharnyshevich/orbis/internal/config"
	"github.com/OCharnyshevich/orbis/internal/preview"
	"github.com/OCharnyshevich/orbis/pkg/gen"
	"github.com/OCharnyshevich/orbis/pkg/orbis"
)

func main() {
	cfg := config.DefaultConfig()

	cfgPath := flag.String("config", "orbis.yaml", "config file (YAML)")
	flag.StringVar(&cfg.Directory, "dir", cfg.Directory, "engine directory holding packs/ and data/")
	flag.StringVar(&cfg.Adaptation, "adaptation", cfg.Adaptation, "host adaptation name, used to prefix data files")
	flag.StringVar(&cfg.DataURL, "data-url", cfg.DataURL, "base URL for missing data files")
	flag.BoolVar(&cfg.Index, "index", cfg.Index, "record pack scans in <dir>/packs.db")
	flag.IntVar(&cfg.ScanWorkers, "scan-workers", cfg.ScanWorkers, "concurrent pack reads during a scan")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	flag.StringVar(&cfg.World, "world", cfg.World, "world name")
	flag.StringVar(&cfg.Pack, "pack", cfg.Pack, "pack to load into the world")
	flag.Int64Var(&cfg.Seed, "seed", cfg.Seed, "world seed")
	flag.StringVar(&cfg.PreviewOut, "preview", cfg.PreviewOut, "write a compressed region preview to this file")
	flag.IntVar(&cfg.PreviewRadius, "radius", cfg.PreviewRadius, "preview radius in chunks")
	install := flag.String("install", "", "install a pack from a local folder, archive or URL, as folder=source")
	dataFile := flag.String("data", "", "provision a data file by name and print its path")
	list := flag.Bool("list", false, "list packs and providers, then exit")
	saveConfig := flag.Bool("save-config", false, "write the effective config back to -config")
	flag.Parse()

	explicit := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

	fromFile, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	config.Merge(cfg, fromFile, explicit)

	level, err := cfg.Level()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfg, log, *install, *dataFile, *list); err != nil {
		log.Error("orbis", "error", err)
		os.Exit(1)
	}

	if *saveConfig {
		if err := config.Save(*cfgPath, cfg); err != nil {
			log.Error("save config", "error", err)
			os.Exit(1)
		}
		log.Info("config saved", "path", *cfgPath)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger, install, dataFile string, list bool) error {
	opts := []orbis.Option{
		orbis.WithDataURL(cfg.DataURL),
		orbis.WithScanWorkers(cfg.ScanWorkers),
	}
	if cfg.Index {
		opts = append(opts, orbis.WithIndex(filepath.Join(cfg.Directory, "packs.db")))
	}

	engine, err := orbis.New(ctx, orbis.LocalPlatform{Name: cfg.Adaptation, Log: log, Dir: cfg.Directory}, opts...)
	if err != nil {
		return err
	}
	defer engine.Close()

	if install != "" {
		folder, src, ok := strings.Cut(install, "=")
		if !ok {
			return fmt.Errorf("install: want folder=source, got %q", install)
		}
		p, err := engine.Packs().Install(ctx, folder, src)
		if err != nil {
			return err
		}
		log.Info("pack installed", "pack", p.Name, "version", p.Version, "dir", p.Dir)
	}

	if dataFile != "" {
		path, err := engine.DataFile(ctx, dataFile)
		if err != nil {
			return err
		}
		fmt.Println(path)
	}

	if list {
		for _, p := range engine.Packs().Packs() {
			fmt.Printf("pack\t%s\t%s\t%s\n", p.Name, p.Version, p.Dimension)
		}
		for _, kind := range []gen.Kind{gen.KindTerrain, gen.KindDistributor} {
			for _, id := range engine.Registry().IDs(kind) {
				fmt.Printf("%s\t%s\n", kind, id)
			}
		}
		return nil
	}

	if cfg.Pack == "" {
		return nil
	}
	world, err := engine.LoadWorld(cfg.World, cfg.Pack, cfg.Seed)
	if err != nil {
		return err
	}

	h, err := world.HeightAt(0, 0)
	if err != nil {
		return err
	}
	b, err := world.BiomeAt(0, 0)
	if err != nil {
		return err
	}
	log.Info("spawn column", "world", cfg.World, "height", h, "biome", b.ID())

	if cfg.PreviewOut == "" {
		return nil
	}
	hdr := preview.Header{
		World:  cfg.World,
		Pack:   cfg.Pack,
		Seed:   cfg.Seed,
		Region: preview.Around(0, 0, cfg.PreviewRadius),
	}
	st, err := preview.ExportFile(ctx, cfg.PreviewOut, world, hdr, cfg.ScanWorkers)
	if err != nil {
		return fmt.Errorf("preview: %w", err)
	}
	log.Info("preview written",
		"path", cfg.PreviewOut,
		"chunks", st.Chunks,
		"min_height", st.MinHeight,
		"max_height", st.MaxHeight,
		"biomes", len(st.Biomes),
	)
	return nil
}
