package datafile

import (
	"context"
	"fmt"
	"maps"
	"os"

	get "github.com/hashicorp/go-getter"
)

// FetchFile downloads a single file from any go-getter source (https, s3,
// gcs, git, local path, ...) to dst.
func FetchFile(ctx context.Context, src, dst string) error {
	return fetch(ctx, src, dst, get.ClientModeFile)
}

// FetchDir downloads a directory tree, or unpacks an archive, into dst. A
// local directory is copied as is.
func FetchDir(ctx context.Context, src, dst string) error {
	if fi, err := os.Stat(src); err == nil && fi.IsDir() {
		if err := os.CopyFS(dst, os.DirFS(src)); err != nil {
			return fmt.Errorf("copy %s: %w", src, err)
		}
		return nil
	}
	return fetch(ctx, src, dst, get.ClientModeDir)
}

func fetch(ctx context.Context, src, dst string, mode get.ClientMode) error {
	pwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("fetch %s: %w", src, err)
	}

	// Local sources are copied; the default getter would symlink them.
	getters := maps.Clone(get.Getters)
	getters["file"] = &get.FileGetter{Copy: true}

	client := &get.Client{
		Ctx:     ctx,
		Src:     src,
		Dst:     dst,
		Pwd:     pwd,
		Mode:    mode,
		Getters: getters,
	}
	if err := client.Get(); err != nil {
		return fmt.Errorf("fetch %s: %w", src, err)
	}
	return nil
}
