package torrent

import "context"

// QueueClient hands a torrent to a download client.
type QueueClient interface {
	SendTorrent(ctx context.Context, name, url string) (map[string]interface{}, bool)
}

type TorrentStatus struct {
	ID           int      `json:"id"`
	Hash         string   `json:"hash"`
	Name         string   `json:"name"`
	Status       string   `json:"status"`
	Progress     float64  `json:"progress"`
	Files        []string `json:"files"`
	DownloadDir  string   `json:"download_dir"`
	IsCompleted  bool     `json:"is_completed"`
	DownloadRate int64    `json:"download_rate"`
	UploadRate   int64    `json:"upload_rate"`
	ETA          int      `json:"eta"`
	UploadRatio  float64  `json:"upload_ratio"`
	SizeWhenDone int64    `json:"size_when_done"`
}
