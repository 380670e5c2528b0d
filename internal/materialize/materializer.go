package materialize

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"assetpack/internal/config"
	"assetpack/internal/fileutil"
	"assetpack/internal/logging"
	"assetpack/internal/scanner"
	"assetpack/internal/services"
)

// Materializer copies enumerated reference files into an asset's library
// folder.
type Materializer struct {
	cfg    *config.Config
	logger *slog.Logger
}

// New constructs a materializer.
func New(cfg *config.Config, logger *slog.Logger) *Materializer {
	return &Materializer{cfg: cfg, logger: logging.WithComponent(logger, "materializer")}
}

// Materialize copies every concrete file of every reference into destRoot.
// References are processed concurrently up to the configured worker count;
// the call returns only once all workers finish, so the phase boundary is a
// barrier. On the first failure remaining references are skipped and the
// failing reference's own copies are removed; whole-asset rollback belongs
// to the orchestrator.
func (m *Materializer) Materialize(ctx context.Context, refs []scanner.Reference, destRoot string) error {
	work := make([]scanner.Reference, 0, len(refs))
	for _, ref := range refs {
		if len(ref.Files) == 0 {
			continue
		}
		destDir := filepath.Join(destRoot, RelativeDir(ref))
		if err := os.MkdirAll(destDir, 0o755); err != nil {
			return services.Wrap(services.ErrCopyFailure, "materializing", "create directory",
				fmt.Sprintf("failed to create %s", destDir), err)
		}
		work = append(work, ref)
	}

	workers := m.cfg.Materialize.CopyWorkers
	if workers > len(work) {
		workers = len(work)
	}
	if workers < 1 {
		workers = 1
	}
	timeout := time.Duration(m.cfg.Materialize.CopyTimeoutSeconds) * time.Second

	jobs := make(chan scanner.Reference)
	errs := make(chan error, len(work))
	copyCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ref := range jobs {
				if err := m.copyReference(copyCtx, ref, destRoot, timeout); err != nil {
					errs <- err
					cancel()
					return
				}
			}
		}()
	}

dispatch:
	for _, ref := range work {
		select {
		case jobs <- ref:
		case <-copyCtx.Done():
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()
	close(errs)

	if err, ok := <-errs; ok {
		return err
	}
	if err := ctx.Err(); err != nil {
		return services.Wrap(services.ErrTransient, "materializing", "copy files", "materialization canceled", err)
	}
	return nil
}

// copyReference copies one reference's files, removing everything it wrote
// on failure so the reference is never half-materialized.
func (m *Materializer) copyReference(ctx context.Context, ref scanner.Reference, destRoot string, timeout time.Duration) error {
	destDir := filepath.Join(destRoot, RelativeDir(ref))
	var written []string

	cleanup := func() {
		for _, path := range written {
			_ = os.Remove(path)
		}
	}

	for _, src := range ref.Files {
		if err := ctx.Err(); err != nil {
			cleanup()
			return services.Wrap(services.ErrTransient, "materializing", "copy files", "materialization canceled", err)
		}
		dst := filepath.Join(destDir, filepath.Base(src))

		identical, err := fileutil.SameContent(src, dst)
		if err != nil {
			cleanup()
			return services.Wrap(services.ErrCopyFailure, "materializing", "compare content",
				fmt.Sprintf("%s.%s: %s", ref.NodePath, ref.Parameter, src), err)
		}
		if identical {
			m.logger.Debug("destination already current", logging.String("file", dst))
			continue
		}

		if err := copyWithTimeout(ctx, src, dst, timeout); err != nil {
			_ = os.Remove(dst)
			cleanup()
			return services.Wrap(services.ErrCopyFailure, "materializing", "copy file",
				fmt.Sprintf("%s.%s: %s", ref.NodePath, ref.Parameter, src), err)
		}
		written = append(written, dst)
	}

	m.logger.Info("reference materialized",
		logging.String(logging.FieldNodePath, ref.NodePath),
		logging.String(logging.FieldParameter, ref.Parameter),
		logging.Int("files", len(ref.Files)))
	return nil
}

// copyWithTimeout runs a verified copy, treating a per-file timeout or
// cancellation as a copy failure.
func copyWithTimeout(ctx context.Context, src, dst string, timeout time.Duration) error {
	copyCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		copyCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	// The copy goroutine watches the same context, so once the select below
	// gives up it stops writing dst on its own rather than racing the
	// caller's cleanup.
	done := make(chan error, 1)
	go func() {
		done <- fileutil.CopyFileVerifiedContext(copyCtx, src, dst)
	}()

	select {
	case err := <-done:
		return err
	case <-copyCtx.Done():
		if copyCtx.Err() == context.DeadlineExceeded {
			return services.Wrap(services.ErrTimeout, "materializing", "copy file",
				fmt.Sprintf("copy of %s exceeded %s", src, timeout), nil)
		}
		return copyCtx.Err()
	}
}
