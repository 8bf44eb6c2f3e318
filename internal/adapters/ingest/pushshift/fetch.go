package pushshift

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultBaseURL is where monthly dumps were published
const DefaultBaseURL = "https://files.pushshift.io/reddit/"

const defaultHTTPTO = 6 * time.Hour

// Fetcher downloads monthly archives into a local directory so the importer can pick them up.
// Files already on disk are left alone; a .meta sidecar remembers the validators of the download
type Fetcher struct {
	BaseURL string
	Dir     string
	Client  *http.Client
}

// FetchResult describes one archive after Fetch
type FetchResult struct {
	Path    string
	Bytes   int64
	Skipped bool // already present locally
}

type fetchMeta struct {
	URL          string    `json:"url"`
	ETag         string    `json:"etag,omitempty"`
	LastModified string    `json:"last_modified,omitempty"`
	Size         int64     `json:"size"`
	FetchedAt    time.Time `json:"fetched_at"`
}

// NewFetcher builds a fetcher writing into dir with the default base URL
func NewFetcher(dir string) *Fetcher {
	return &Fetcher{
		BaseURL: DefaultBaseURL,
		Dir:     dir,
		Client:  &http.Client{Timeout: defaultHTTPTO},
	}
}

// URL returns the download location of the kind's archive for p
func (f *Fetcher) URL(k Kind, p Partition) string {
	base := strings.TrimRight(f.BaseURL, "/")
	return fmt.Sprintf("%s/%s/%s", base, k.String(), p.ArchiveName(k))
}

// Fetch downloads the archive unless a regular file with the same name already exists
func (f *Fetcher) Fetch(ctx context.Context, k Kind, p Partition) (FetchResult, error) {
	path := filepath.Join(f.Dir, p.ArchiveName(k))
	if fi, err := os.Stat(path); err == nil && fi.Mode().IsRegular() {
		return FetchResult{Path: path, Bytes: fi.Size(), Skipped: true}, nil
	}
	if err := os.MkdirAll(f.Dir, 0o755); err != nil {
		return FetchResult{}, err
	}

	url := f.URL(k, p)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return FetchResult{}, err
	}
	client := f.Client
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTO}
	}
	resp, err := client.Do(req)
	if err != nil {
		return FetchResult{}, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return FetchResult{}, fmt.Errorf("pushshift: unexpected status %d for %s", resp.StatusCode, url)
	}

	n, err := writeAtomic(path, resp.Body)
	if err != nil {
		return FetchResult{}, err
	}
	_ = saveMeta(path+".meta", &fetchMeta{
		URL:          url,
		ETag:         strings.TrimSpace(resp.Header.Get("ETag")),
		LastModified: strings.TrimSpace(resp.Header.Get("Last-Modified")),
		Size:         n,
		FetchedAt:    time.Now().UTC(),
	})
	return FetchResult{Path: path, Bytes: n}, nil
}

// writeAtomic streams body to path via a .part file so a cancelled download never looks complete
func writeAtomic(path string, body io.Reader) (int64, error) {
	tmp := path + ".part"
	out, err := os.Create(tmp)
	if err != nil {
		return 0, err
	}
	n, werr := io.Copy(out, body)
	cerr := out.Close()
	if werr == nil {
		werr = cerr
	}
	if werr != nil {
		_ = os.Remove(tmp)
		return 0, werr
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return 0, err
	}
	return n, nil
}

func saveMeta(path string, m *fetchMeta) error {
	b, err := json.Marshal(m)
	if err != nil {
		return err
	}
	_, err = writeAtomic(path, strings.NewReader(string(b)+"\n"))
	return err
}
