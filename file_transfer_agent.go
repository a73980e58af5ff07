package godatabend

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/samber/lo"
	"github.com/sourcegraph/conc/pool"
)

type resultStatus int

const (
	errStatus resultStatus = iota
	uploaded
	downloaded
)

func (rs resultStatus) String() string {
	return [...]string{"ERROR", "UPLOADED", "DOWNLOADED"}[rs]
}

// FileTransfer is one file of a batch transfer: the local file and the
// presigned request for its stage object.
type FileTransfer struct {
	LocalPath string
	URL       string
	Headers   map[string]string
}

// TransferResult reports the outcome of one file of a batch transfer.
type TransferResult struct {
	LocalPath string
	Status    string
	Size      int64
	Err       error
}

// UploadFiles uploads every file on at most Config.MaxConcurrentTransfers
// goroutines. Each file retries on its own; one failing file does not stop
// the others. Results keep the order of files and the returned error joins
// the errors of the failed files.
func (tc *TransferClient) UploadFiles(ctx context.Context, files []FileTransfer) ([]TransferResult, error) {
	return tc.transferFiles(ctx, opUpload, files, func(ctx context.Context, f FileTransfer) (int64, error) {
		if err := tc.UploadFile(ctx, f.LocalPath, f.Headers, f.URL); err != nil {
			return 0, err
		}
		stat, err := os.Stat(expandUser(f.LocalPath))
		if err != nil {
			return 0, nil
		}
		return stat.Size(), nil
	})
}

// DownloadFiles downloads every file to its LocalPath, in parallel like UploadFiles.
func (tc *TransferClient) DownloadFiles(ctx context.Context, files []FileTransfer) ([]TransferResult, error) {
	return tc.transferFiles(ctx, opDownload, files, func(ctx context.Context, f FileTransfer) (int64, error) {
		return tc.DownloadFile(ctx, f.URL, f.Headers, f.LocalPath)
	})
}

func (tc *TransferClient) transferFiles(ctx context.Context, op string, files []FileTransfer, transfer func(context.Context, FileTransfer) (int64, error)) ([]TransferResult, error) {
	status := uploaded
	if op == opDownload {
		status = downloaded
	}
	results := make([]TransferResult, len(files))
	p := pool.New().WithMaxGoroutines(tc.cfg.MaxConcurrentTransfers).WithContext(ctx)
	for i, f := range files {
		i, f := i, f
		p.Go(func(ctx context.Context) error {
			size, err := transfer(ctx, f)
			results[i] = TransferResult{LocalPath: f.LocalPath, Status: status.String(), Size: size, Err: err}
			if err != nil {
				results[i].Status = errStatus.String()
			}
			return err
		})
	}
	err := p.Wait()
	failed := lo.CountBy(results, func(r TransferResult) bool { return r.Err != nil })
	logger.WithContext(ctx).Infof("%v of %v files: %v succeeded, %v failed", op, len(files), len(files)-failed, failed)
	return results, err
}

// PresignUploads presigns an upload of each local file to the stage object
// named after the file.
func PresignUploads(ctx context.Context, p StagePresigner, localPaths []string, expires time.Duration) ([]FileTransfer, error) {
	files := make([]FileTransfer, 0, len(localPaths))
	for _, localPath := range localPaths {
		req, err := p.PresignUpload(ctx, baseName(localPath), expires)
		if err != nil {
			return nil, err
		}
		files = append(files, FileTransfer{LocalPath: localPath, URL: req.URL, Headers: req.Headers})
	}
	return files, nil
}

// PresignDownloads presigns a download of each stage object into dstDir.
func PresignDownloads(ctx context.Context, p StagePresigner, keys []string, dstDir string, expires time.Duration) ([]FileTransfer, error) {
	files := make([]FileTransfer, 0, len(keys))
	for _, key := range lo.Uniq(keys) {
		req, err := p.PresignDownload(ctx, key, expires)
		if err != nil {
			return nil, err
		}
		files = append(files, FileTransfer{
			LocalPath: filepath.Join(dstDir, filepath.Base(key)),
			URL:       req.URL,
			Headers:   req.Headers,
		})
	}
	return files, nil
}
