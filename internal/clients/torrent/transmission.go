package torrent

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"

	"github.com/avast/retry-go"

	"snatcher/internal/config"
	"snatcher/internal/tv"
	"snatcher/internal/utils"
)

const (
	transmissionUserAgent = "snatcher-transmission-client/1.0"
	sessionHeader         = "X-Transmission-Session-Id"
	// one renewal per logical call
	rpcAttempts = 2
)

var (
	sessionIDPattern = regexp.MustCompile(`X-Transmission-Session-Id:\s*(\w+)`)

	defaultTorrentFields = []string{
		"id", "hashString", "name", "status", "percentDone", "rateDownload", "rateUpload",
		"eta", "downloadDir", "files", "uploadRatio", "sizeWhenDone",
	}

	torrentStatusNames = map[int]string{
		0: "stopped",
		1: "check pending",
		2: "checking",
		3: "download pending",
		4: "downloading",
		5: "seed pending",
		6: "seeding",
	}
)

// RPCError is a response whose result is not "success".
type RPCError struct {
	Method string
	Result string
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("transmission %s failed: %s", e.Method, e.Result)
}

// PayloadFetcher downloads .torrent files for SendTorrent.
type PayloadFetcher interface {
	Fetch(ctx context.Context, url string, headers map[string]string) ([]byte, error)
}

type rpcRequest struct {
	Method    string                 `json:"method"`
	Arguments map[string]interface{} `json:"arguments,omitempty"`
	Tag       int                    `json:"tag"`
}

type rpcResponse struct {
	Result    string                 `json:"result"`
	Arguments map[string]interface{} `json:"arguments"`
	Tag       int                    `json:"tag"`
}

// TransmissionClient speaks the Transmission JSON-RPC protocol. The session
// id is renewed transparently, at most once per call.
type TransmissionClient struct {
	endpoint    string
	username    string
	password    string
	downloadDir string
	httpClient  *http.Client
	fetcher     PayloadFetcher
	logger      *utils.Logger

	mu        sync.Mutex // guards sessionID and tag
	sessionID string
	tag       int
}

// NewTransmissionClient builds a client and warms the session with a
// session-get call. A failed warm-up is logged, not returned.
func NewTransmissionClient(ctx context.Context, cfg config.TransmissionConfig, httpClient *http.Client, fetcher PayloadFetcher, logger *utils.Logger) (*TransmissionClient, error) {
	endpoint, err := rpcEndpoint(cfg.Host)
	if err != nil {
		return nil, err
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	t := &TransmissionClient{
		endpoint:    endpoint,
		username:    cfg.Username,
		password:    cfg.Password,
		downloadDir: cfg.DownloadDir,
		httpClient:  httpClient,
		fetcher:     fetcher,
		logger:      logger.WithField("client", "transmission"),
	}
	if (t.username == "") != (t.password == "") {
		t.logger.Debug("Only one of username and password is set, not sending credentials")
	}

	if _, err := t.SessionGet(ctx); err != nil {
		t.logger.Warn("Could not open a Transmission session:", err)
	}
	return t, nil
}

// rpcEndpoint accepts "host:port", a base URL or the full RPC URL.
func rpcEndpoint(host string) (string, error) {
	host = strings.TrimSpace(host)
	if host == "" {
		return "", fmt.Errorf("transmission host is empty")
	}
	if !strings.Contains(host, "://") {
		host = "http://" + host
	}
	u, err := url.Parse(host)
	if err != nil {
		return "", fmt.Errorf("invalid transmission host %q: %w", host, err)
	}
	switch {
	case u.Path == "" || u.Path == "/":
		u.Path = "/transmission/rpc"
	case strings.HasSuffix(u.Path, "/transmission/") || strings.HasSuffix(u.Path, "/transmission"):
		u.Path = strings.TrimSuffix(u.Path, "/") + "/rpc"
	}
	return u.String(), nil
}

func (t *TransmissionClient) nextTag() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tag++
	return t.tag
}

// renewSession stores fresh unless another request already replaced stale.
func (t *TransmissionClient) renewSession(stale, fresh string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.sessionID == stale {
		t.sessionID = fresh
	}
}

func (t *TransmissionClient) request(ctx context.Context, method string, args map[string]interface{}) (map[string]interface{}, error) {
	body, err := json.Marshal(rpcRequest{Method: method, Arguments: args, Tag: t.nextTag()})
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s request: %w", method, err)
	}

	var resp *rpcResponse
	err = retry.Do(
		func() error {
			r, err := t.post(ctx, body)
			if err != nil {
				return err
			}
			resp = r
			return nil
		},
		retry.Attempts(rpcAttempts),
		retry.Delay(0),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return errors.Is(err, tv.ErrSessionExpired)
		}),
		retry.OnRetry(func(n uint, err error) {
			if n+1 < rpcAttempts {
				t.logger.Debug("Transmission session renewed, retrying", method)
			}
		}),
	)
	if err != nil {
		return nil, err
	}

	if resp.Result != "success" {
		return nil, &RPCError{Method: method, Result: resp.Result}
	}
	return resp.Arguments, nil
}

func (t *TransmissionClient) post(ctx context.Context, body []byte) (*rpcResponse, error) {
	t.mu.Lock()
	session := t.sessionID
	t.mu.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", tv.ErrNetwork, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", transmissionUserAgent)
	if t.username != "" && t.password != "" {
		req.SetBasicAuth(t.username, t.password)
	}
	if session != "" {
		req.Header.Set(sessionHeader, session)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: transmission unreachable: %w", tv.ErrNetwork, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusConflict:
		fresh := resp.Header.Get(sessionHeader)
		if fresh == "" {
			data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
			if m := sessionIDPattern.FindSubmatch(data); m != nil {
				fresh = string(m[1])
			}
		}
		if fresh == "" {
			return nil, fmt.Errorf("%w: transmission returned 409 without a session id", tv.ErrNetwork)
		}
		t.renewSession(session, fresh)
		return nil, fmt.Errorf("%w: transmission rejected session %q", tv.ErrSessionExpired, session)
	case http.StatusUnauthorized:
		return nil, fmt.Errorf("%w: transmission rejected the credentials", tv.ErrAuthFailure)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: transmission returned status %d", tv.ErrNetwork, resp.StatusCode)
	}

	var out rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode transmission response: %w", err)
	}
	return &out, nil
}

func withArgs(base, extra map[string]interface{}) map[string]interface{} {
	merged := make(map[string]interface{}, len(base)+len(extra))
	for k, v := range extra {
		merged[k] = v
	}
	for k, v := range base {
		merged[k] = v
	}
	return merged
}

func (t *TransmissionClient) SessionGet(ctx context.Context) (map[string]interface{}, error) {
	return t.request(ctx, "session-get", nil)
}

// AddTorrentURI adds a torrent by URL or magnet link.
func (t *TransmissionClient) AddTorrentURI(ctx context.Context, uri string, args map[string]interface{}) (map[string]interface{}, error) {
	return t.request(ctx, "torrent-add", withArgs(map[string]interface{}{"filename": uri}, args))
}

// AddTorrentFile adds a torrent from its raw metainfo; it is base64 encoded
// for transport here.
func (t *TransmissionClient) AddTorrentFile(ctx context.Context, metainfo []byte, args map[string]interface{}) (map[string]interface{}, error) {
	encoded := base64.StdEncoding.EncodeToString(metainfo)
	return t.request(ctx, "torrent-add", withArgs(map[string]interface{}{"metainfo": encoded}, args))
}

func (t *TransmissionClient) SetTorrent(ctx context.Context, ids []string, args map[string]interface{}) error {
	_, err := t.request(ctx, "torrent-set", withArgs(map[string]interface{}{"ids": ids}, args))
	return err
}

func (t *TransmissionClient) StopTorrent(ctx context.Context, ids []string) error {
	_, err := t.request(ctx, "torrent-stop", map[string]interface{}{"ids": ids})
	return err
}

func (t *TransmissionClient) RemoveTorrent(ctx context.Context, ids []string, deleteLocalData bool) error {
	_, err := t.request(ctx, "torrent-remove", map[string]interface{}{
		"ids":               ids,
		"delete-local-data": deleteLocalData,
	})
	return err
}

// ListTorrents returns the given torrents, or all of them when ids is empty.
func (t *TransmissionClient) ListTorrents(ctx context.Context, ids []string) ([]TorrentStatus, error) {
	args := map[string]interface{}{"fields": defaultTorrentFields}
	if len(ids) > 0 {
		args["ids"] = ids
	}
	resp, err := t.request(ctx, "torrent-get", args)
	if err != nil {
		return nil, err
	}

	raw, _ := resp["torrents"].([]interface{})
	statuses := make([]TorrentStatus, 0, len(raw))
	for _, entry := range raw {
		torrent, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		status := TorrentStatus{
			ID:           int(getFloat(torrent, "id")),
			Hash:         getString(torrent, "hashString"),
			Name:         getString(torrent, "name"),
			Status:       torrentStatusNames[int(getFloat(torrent, "status"))],
			Progress:     getFloat(torrent, "percentDone"),
			DownloadDir:  getString(torrent, "downloadDir"),
			DownloadRate: int64(getFloat(torrent, "rateDownload")),
			UploadRate:   int64(getFloat(torrent, "rateUpload")),
			ETA:          int(getFloat(torrent, "eta")),
			UploadRatio:  getFloat(torrent, "uploadRatio"),
			SizeWhenDone: int64(getFloat(torrent, "sizeWhenDone")),
			Files:        []string{},
		}
		if files, ok := torrent["files"].([]interface{}); ok {
			for _, file := range files {
				if fileMap, ok := file.(map[string]interface{}); ok {
					status.Files = append(status.Files, getString(fileMap, "name"))
				}
			}
		}
		status.IsCompleted = status.Progress >= 1.0
		statuses = append(statuses, status)
	}
	return statuses, nil
}

// SendTorrent queues a release on Transmission. Magnet links are added by
// URI; anything else is downloaded first and added as metainfo.
func (t *TransmissionClient) SendTorrent(ctx context.Context, name, link string) (map[string]interface{}, bool) {
	args := map[string]interface{}{}
	if t.downloadDir != "" {
		args["download-dir"] = t.downloadDir
	}

	var (
		resp map[string]interface{}
		err  error
	)
	if utils.IsMagnet(link) {
		resp, err = t.AddTorrentURI(ctx, link, args)
	} else {
		if t.fetcher == nil {
			t.logger.Error("No fetcher configured, cannot download", name)
			return nil, false
		}
		data, ferr := t.fetcher.Fetch(ctx, link, nil)
		if ferr != nil || len(data) == 0 {
			t.logger.Error("Could not download torrent for", name, ":", ferr)
			return nil, false
		}
		resp, err = t.AddTorrentFile(ctx, data, args)
	}
	if err != nil {
		t.logger.Error("Could not queue", name, "on Transmission:", err)
		return nil, false
	}

	t.logger.Info("Queued", name, "on Transmission")
	return resp, true
}

func getFloat(data map[string]interface{}, key string) float64 {
	if val, ok := data[key]; ok {
		switch v := val.(type) {
		case float64:
			return v
		case int64:
			return float64(v)
		case int:
			return float64(v)
		}
	}
	return 0.0
}

func getString(data map[string]interface{}, key string) string {
	s, _ := data[key].(string)
	return s
}
