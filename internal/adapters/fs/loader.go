package fs

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/stash/internal/core/domain"
	"go.trai.ch/stash/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Loader = (*LocalLoader)(nil)

// LocalLoader resolves plain local file paths by copying them into the
// source's target directory. It is the loader of last resort: remote
// protocol loaders sit in front of it in real deployments.
type LocalLoader struct {
	hasher *Hasher
	log    ports.Logger
}

// NewLocalLoader creates a new LocalLoader.
func NewLocalLoader(hasher *Hasher, log ports.Logger) *LocalLoader {
	return &LocalLoader{hasher: hasher, log: log}
}

// Load materializes a local file into the target directory. It returns
// nil, nil when the path does not exist locally, handing the source over to
// the next loader in the chain.
func (l *LocalLoader) Load(ctx context.Context, source domain.ResolveSource) (*domain.ResolveResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := os.Stat(source.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(err, "failed to stat source path"), "path", source.Path)
	}
	if info.IsDir() {
		return nil, zerr.With(zerr.New("local loader does not resolve directories"), "path", source.Path)
	}

	algorithm := domain.ChecksumSHA256
	if a := source.Param(domain.ParamChecksumAlgorithm); a != "" {
		algorithm = domain.ChecksumAlgorithm(a)
	}
	checksum, err := l.hasher.ComputeFileChecksum(source.Path, algorithm)
	if err != nil {
		return nil, err
	}

	// A source that declares its expected checksum gets verified up front;
	// serving mismatched content is worse than failing the resolution.
	if want := source.Param(domain.ParamChecksum); want != "" && want != checksum.Hex {
		return nil, zerr.With(zerr.With(domain.ErrChecksumMismatch, "want", want), "got", checksum.Hex)
	}

	target := filepath.Join(source.TargetDir, filepath.Base(source.Path))
	if err := CopyFile(source.Path, target); err != nil {
		return nil, err
	}

	l.log.Debug("resolved local file", "path", source.Path, "target", target, "checksum", checksum.Encode())

	return &domain.ResolveResult{
		Files: []domain.ResolvedFile{{Path: target, Checksum: &checksum}},
		Metadata: map[string]string{
			"loader":   "local",
			"checksum": checksum.Encode(),
		},
		Source: source,
	}, nil
}
