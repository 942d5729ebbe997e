package fetch

import (
	"bytes"
	"context"
	"log"
	"os"

	getter "github.com/hashicorp/go-getter"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"

	"github.com/ceph/releasedocs/releases"
	"github.com/ceph/releasedocs/utils"
)

// Config fetches a releases file from a remote location and stores it once
// it decodes cleanly, so a broken upstream file never replaces a good one.
type Config struct {
	appFs afero.Fs
	src   string
	dst   string
}

type option func(*Config)

func WithFs(fs afero.Fs) option {
	return func(c *Config) {
		c.appFs = fs
	}
}

func NewConfig(src, dst string, opts ...option) Config {
	c := Config{
		appFs: afero.NewOsFs(),
		src:   src,
		dst:   dst,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

func (c Config) Fetch(ctx context.Context) (releases.Releases, error) {
	log.Printf("Fetching releases from %s", c.src)
	tmpFile, err := downloadToTempFile(ctx, c.src)
	if err != nil {
		return releases.Releases{}, xerrors.Errorf("failed to fetch %s: %w", c.src, err)
	}
	defer os.Remove(tmpFile)

	b, err := os.ReadFile(tmpFile)
	if err != nil {
		return releases.Releases{}, xerrors.Errorf("unable to read %s: %w", tmpFile, err)
	}

	rels, err := releases.Decode(bytes.NewReader(b))
	if err != nil {
		return releases.Releases{}, xerrors.Errorf("invalid releases file from %s: %w", c.src, err)
	}

	if err = utils.NewFs(c.appFs).WriteFile(c.dst, b); err != nil {
		return releases.Releases{}, xerrors.Errorf("failed to write %s: %w", c.dst, err)
	}
	log.Printf("Saved %d release lines to %s", len(rels.Lines), c.dst)
	return rels, nil
}

func downloadToTempFile(ctx context.Context, src string) (string, error) {
	f, err := os.CreateTemp("", "releasedocs")
	if err != nil {
		return "", xerrors.Errorf("failed to create a temp file: %w", err)
	}
	if err = f.Close(); err != nil {
		return "", xerrors.Errorf("close error: %w", err)
	}

	pwd, err := os.Getwd()
	if err != nil {
		return "", xerrors.Errorf("unable to get the current dir: %w", err)
	}

	client := &getter.Client{
		Ctx:     ctx,
		Src:     src,
		Dst:     f.Name(),
		Pwd:     pwd,
		Getters: getter.Getters,
		Mode:    getter.ClientModeFile,
	}
	if err = client.Get(); err != nil {
		os.Remove(f.Name())
		return "", xerrors.Errorf("failed to download: %w", err)
	}

	return f.Name(), nil
}
