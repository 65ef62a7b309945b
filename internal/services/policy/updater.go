package policy

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	nethttp "TradeGate/pkg/http"
	"TradeGate/pkg/logger"
)

// Updater downloads fresh model and scaler artifacts and hot-swaps them into
// the running service.
type Updater struct {
	client *nethttp.Client
	model  *Model
	scaler *StandardScaler
	log    *logger.Logger

	modelURL  string
	scalerURL string
}

func NewUpdater(client *nethttp.Client, model *Model, scaler *StandardScaler, modelURL, scalerURL string, log *logger.Logger) *Updater {
	return &Updater{
		client:    client,
		model:     model,
		scaler:    scaler,
		modelURL:  modelURL,
		scalerURL: scalerURL,
		log:       log,
	}
}

// Update fetches both artifacts (when URLs are configured) and reloads them.
// The old model keeps serving until the new one is in place.
func (u *Updater) Update(ctx context.Context) error {
	if u.modelURL != "" {
		if err := u.download(ctx, u.modelURL, u.model.cfg.Path); err != nil {
			return fmt.Errorf("download model: %w", err)
		}
	}
	if u.scalerURL != "" {
		if err := u.download(ctx, u.scalerURL, u.scaler.path); err != nil {
			return fmt.Errorf("download scaler: %w", err)
		}
	}
	return u.Reload()
}

// Reload re-reads both artifacts from disk without downloading.
func (u *Updater) Reload() error {
	if err := u.scaler.Reload(); err != nil {
		return err
	}
	if err := u.model.Reload(); err != nil {
		return err
	}
	return nil
}

// download writes to a temp file in the target directory then renames, so a
// failed transfer never clobbers a working artifact.
func (u *Updater) download(ctx context.Context, url, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	err = u.client.SendAndParse(ctx, &nethttp.RequestOptions{
		Method: nethttp.MethodGet,
		URL:    url,
	}, tmp)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return err
	}
	u.log.Info("artifact downloaded", logger.String("url", url), logger.String("path", path))
	return nil
}
