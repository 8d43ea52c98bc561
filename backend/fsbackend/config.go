package fsbackend

import (
	"path/filepath"

	"github.com/gitcore/git-go/internal/gitpath"
	"golang.org/x/xerrors"
	"gopkg.in/ini.v1"
)

// .git/config config keys
const (
	cfgCore              = "core"
	cfgCoreFormatVersion = "repositoryformatversion"
	cfgCoreFileMode      = "filemode"
	cfgCoreBare          = "bare"
)

// setDefaultCfg sets and persists the default git configuration for
// the repository
func (b *Backend) setDefaultCfg() error {
	cfg := ini.Empty()

	// Core
	core, err := cfg.NewSection(cfgCore)
	if err != nil {
		return xerrors.Errorf("could not create core section: %w", err)
	}
	coreCfg := []struct{ k, v string }{
		{cfgCoreFormatVersion, "0"},
		{cfgCoreFileMode, "true"},
		{cfgCoreBare, "false"},
	}
	for _, kv := range coreCfg {
		if _, err := core.NewKey(kv.k, kv.v); err != nil {
			return xerrors.Errorf("could not set %s: %w", kv.k, err)
		}
	}

	f, err := b.fs.Create(filepath.Join(b.root, gitpath.ConfigPath))
	if err != nil {
		return xerrors.Errorf("could not create the config file: %w", err)
	}
	if _, err = cfg.WriteTo(f); err != nil {
		f.Close() //nolint:errcheck // it already failed
		return xerrors.Errorf("could not write the config file: %w", err)
	}
	return f.Close()
}
