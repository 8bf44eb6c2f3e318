package service

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"redditimport/internal/adapters/ingest/pushshift"
	perr "redditimport/internal/platform/errors"
	"redditimport/internal/platform/logger"
	"redditimport/internal/services/importer/domain"
)

// Walk lists the recognized archive files under root in lexical order.
// Hidden files are skipped but hidden directories are still walked.
// Unrecognized names are ignored and unreadable directories are logged and skipped. root may also name a single file
func Walk(ctx context.Context, root string) ([]domain.SourceFile, error) {
	if _, err := os.Stat(root); err != nil {
		if os.IsNotExist(err) {
			return nil, perr.NotFoundf("data dir %s does not exist", root)
		}
		return nil, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "data dir %s", root)
	}

	var out []domain.SourceFile
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		if err != nil {
			if path == root {
				return err
			}
			logger.C(ctx).Warn().Err(err).Str("path", path).Msg("walk: entry unreadable, skipping")
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() || strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		c, ok := pushshift.Classify(d.Name())
		if !ok {
			return nil
		}
		out = append(out, domain.NewSourceFile(path, c))
		return nil
	})
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "walk %s", root)
	}
	return out, nil
}
