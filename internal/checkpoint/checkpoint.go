package checkpoint

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/photon-dotcom/brandswitch/internal/model"
)

// FileName is the checkpoint file name inside the data directory.
const FileName = ".sync-checkpoint.json"

// Load reads a checkpoint from path. A missing file returns (nil, nil).
// A file in an unrecognized or legacy shape is discarded with a warning
// rather than failing the run.
func Load(path string) (*model.Checkpoint, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "checkpoint: read %s", path)
	}

	var cp model.Checkpoint
	if err := json.Unmarshal(raw, &cp); err != nil {
		zap.L().Warn("checkpoint: unparsable file discarded, starting fresh",
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, nil
	}
	if cp.Version != model.CheckpointVersion {
		zap.L().Warn("checkpoint: legacy shape discarded, starting fresh",
			zap.String("path", path),
			zap.Int("version", cp.Version),
		)
		return nil, nil
	}

	return &cp, nil
}

// Save writes the checkpoint atomically: a temp file in the same directory is
// renamed over the target so an interrupted write never corrupts progress.
func Save(path string, cp *model.Checkpoint) error {
	raw, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return eris.Wrap(err, "checkpoint: marshal")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return eris.Wrapf(err, "checkpoint: mkdir %s", dir)
	}

	tmp, err := os.CreateTemp(dir, ".checkpoint-*.tmp")
	if err != nil {
		return eris.Wrap(err, "checkpoint: create temp")
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return eris.Wrap(err, "checkpoint: write temp")
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return eris.Wrap(err, "checkpoint: close temp")
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return eris.Wrapf(err, "checkpoint: rename to %s", path)
	}
	return nil
}
