// Command dmd downloads a pack folder from a git repository of packs and
// checks that it opens.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/OCharnyshevich/orbis/pkg/datafile"
	"github.com/OCharnyshevich/orbis/pkg/gen"
	"github.com/OCharnyshevich/orbis/pkg/pack"
)

func main() {
	var (
		base = flag.String("base", "https://github.com/OCharnyshevich/orbis-packs.git", "base url of the pack repository")
		name = flag.String("pack", "", "pack folder inside the repository")
		ref  = flag.String("ref", "", "git ref to check out (default branch if empty)")
		out  = flag.String("o", "./orbis/packs", "output dir path")
	)
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *out == "" {
		log.Error("output dir path required")
		os.Exit(2)
	}
	if *name == "" {
		log.Error("pack required")
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	path := filepath.Join(*out, *name)
	if err := os.RemoveAll(path); err != nil {
		log.Error("clear destination", "path", path, "error", err)
		os.Exit(1)
	}

	url := fmt.Sprintf("git::%s//%s", *base, *name)
	if *ref != "" {
		url += "?ref=" + *ref
	}

	log.Info("start downloading pack", "src", url, "dst", path)
	if err := datafile.FetchDir(ctx, url, path); err != nil {
		log.Error("download pack", "error", err)
		os.Exit(1)
	}

	p, err := pack.Open(path)
	if err != nil {
		log.Error("open pack", "path", path, "error", err)
		os.Exit(1)
	}
	if err := gen.CheckVersion(p.Version); err != nil {
		log.Warn("pack version unsupported", "pack", p.Name, "error", err)
	}
	log.Info("done downloading pack", "pack", p.Name, "version", p.Version, "dir", path)
}
