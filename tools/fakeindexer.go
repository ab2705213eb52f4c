package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/feeds"
	"github.com/gorilla/mux"
)

// A fake indexer for manual runs. It answers Fanzub style /rss queries and
// Torznab style /api queries with generated releases, and serves matching
// .nzb and .torrent payloads from /get.

var (
	episodeQuery  = regexp.MustCompile(`(?i)S(\d+)E(\d+)`)
	absoluteQuery = regexp.MustCompile(`\s(\d{1,3})$`)
	versionQuery  = regexp.MustCompile(`^v(\d)$`)

	animeGroups  = []string{"HorribleSubs", "Commie", "FFF", "Doki", "UTW"}
	sceneGroups  = []string{"LOL", "DIMENSION", "KILLERS", "NTb", "CtrlHD"}
	resolutions  = []string{"480p", "720p", "1080p"}
	sceneQuality = []string{"720p.HDTV.x264", "1080p.WEB-DL.DD5.1.H.264", "HDTV.x264", "720p.BluRay.x264"}
	rejectExtras = []string{"HARDSUB", "SAMPLE", "RUS"}
)

func main() {
	addr := flag.String("addr", ":8080", "Listen address")
	flag.Parse()

	fmt.Println("Fake indexer starting on", *addr)
	fmt.Println("Fanzub: http://localhost" + *addr + "/rss?cat=anime&q=Show%2005")
	fmt.Println("Torznab: http://localhost" + *addr + "/api?t=tvsearch&q=Show%20S01E02")
	log.Fatal(http.ListenAndServe(*addr, newRouter(*addr)))
}

func newRouter(addr string) http.Handler {
	host := "http://localhost" + addr
	router := mux.NewRouter()
	router.HandleFunc("/rss", func(w http.ResponseWriter, r *http.Request) { rssHandler(w, r, host) }).Methods("GET")
	router.HandleFunc("/api", func(w http.ResponseWriter, r *http.Request) { apiHandler(w, r, host) }).Methods("GET")
	router.HandleFunc("/get/{name}", payloadHandler).Methods("GET")
	return router
}

// rssHandler generates anime NZB releases for q, or a recent snapshot
// without q.
func rssHandler(w http.ResponseWriter, r *http.Request, host string) {
	log.Printf("Received request URL: %s", r.URL.String())
	query := r.URL.Query()
	limit, err := strconv.Atoi(query.Get("max"))
	if err != nil || limit <= 0 {
		limit = 100
	}

	var titles []string
	q := strings.TrimSpace(query.Get("q"))
	switch {
	case versionQuery.MatchString(q):
		version := versionQuery.FindStringSubmatch(q)[1]
		for i := 1; i <= 3; i++ {
			titles = append(titles, fmt.Sprintf("[%s] Some Show - %02dv%s [720p]", pick(animeGroups), i, version))
		}
	case q == "":
		for i := 1; i <= 10; i++ {
			titles = append(titles, fmt.Sprintf("[%s] Some Show - %02d [%s]", pick(animeGroups), i, pick(resolutions)))
		}
	default:
		name, number := q, rand.Intn(12)+1
		if m := absoluteQuery.FindStringSubmatch(q); m != nil {
			number, _ = strconv.Atoi(m[1])
			name = strings.TrimSpace(strings.TrimSuffix(q, m[0]))
		}
		for i := 0; i < 6; i++ {
			titles = append(titles, fmt.Sprintf("[%s] %s - %02d [%s]", pick(animeGroups), name, number, pick(resolutions)))
		}
		titles = append(titles, fmt.Sprintf("[%s] %s - %02d [720p] [%s]", pick(animeGroups), name, number, pick(rejectExtras)))
	}
	if len(titles) > limit {
		titles = titles[:limit]
	}
	writeFeed(w, host, "Fake Fanzub", titles, "nzb")
}

// apiHandler answers the torznab caps, search and tvsearch functions.
func apiHandler(w http.ResponseWriter, r *http.Request, host string) {
	log.Printf("Received request URL: %s", r.URL.String())
	query := r.URL.Query()

	if query.Get("t") == "caps" {
		w.Header().Set("Content-Type", "application/xml")
		fmt.Fprint(w, `<caps><server title="Fake Indexer"/><searching><tv-search available="yes" supportedParams="q,season,ep"/></searching></caps>`)
		return
	}

	q := strings.TrimSpace(query.Get("q"))
	season, episode := 1, rand.Intn(12)+1
	if m := episodeQuery.FindStringSubmatch(q); m != nil {
		season, _ = strconv.Atoi(m[1])
		episode, _ = strconv.Atoi(m[2])
		q = strings.TrimSpace(episodeQuery.ReplaceAllString(q, ""))
	}
	if q == "" {
		q = "Some Show"
	}
	name := strings.ReplaceAll(q, " ", ".")

	var titles []string
	for i := 0; i < 5; i++ {
		titles = append(titles, fmt.Sprintf("%s.S%02dE%02d.%s-%s", name, season, episode, pick(sceneQuality), pick(sceneGroups)))
	}
	titles = append(titles,
		fmt.Sprintf("%s.S%02dE%02d.PROPER.720p.HDTV.x264-%s", name, season, episode, pick(sceneGroups)),
		fmt.Sprintf("%s.S%02dE%02dE%02d.720p.HDTV.x264-%s", name, season, episode, episode+1, pick(sceneGroups)),
		fmt.Sprintf("%s.S%02d.720p.BluRay.x264-%s", name, season, pick(sceneGroups)),
	)
	writeFeed(w, host, "Fake Torznab", titles, "torrent")
}

func writeFeed(w http.ResponseWriter, host, title string, titles []string, ext string) {
	now := time.Now()
	feed := &feeds.Feed{
		Title:       title,
		Link:        &feeds.Link{Href: host},
		Description: "Generated releases",
		Created:     now,
	}
	for i, t := range titles {
		link := fmt.Sprintf("%s/get/%s.%s", host, strings.ReplaceAll(t, " ", "_"), ext)
		feed.Items = append(feed.Items, &feeds.Item{
			Id:          link,
			Title:       t,
			Link:        &feeds.Link{Href: link},
			Description: t,
			Created:     now.Add(-time.Duration(i) * time.Hour),
			Enclosure: &feeds.Enclosure{
				Url:    link,
				Length: strconv.FormatInt(rand.Int63n(1<<30)+(100<<20), 10),
				Type:   payloadType(ext),
			},
		})
	}

	rss, err := feed.ToRss()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/rss+xml")
	fmt.Fprint(w, rss)
}

func payloadHandler(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	switch {
	case strings.HasSuffix(name, ".nzb"):
		w.Header().Set("Content-Type", payloadType("nzb"))
		fmt.Fprintf(w, `<?xml version="1.0" encoding="utf-8"?><nzb xmlns="http://www.newzbin.com/DTD/2003/nzb"><file subject="%s"/></nzb>`, strings.TrimSuffix(name, ".nzb"))
	case strings.HasSuffix(name, ".torrent"):
		w.Header().Set("Content-Type", payloadType("torrent"))
		fmt.Fprint(w, fakeMetainfo(strings.TrimSuffix(name, ".torrent")))
	default:
		http.NotFound(w, r)
	}
}

func payloadType(ext string) string {
	if ext == "torrent" {
		return "application/x-bittorrent"
	}
	return "application/x-nzb"
}

// fakeMetainfo bencodes a single-file torrent with one dummy piece.
func fakeMetainfo(name string) string {
	file := name + ".mkv"
	return fmt.Sprintf("d8:announce%d:%s4:infod6:lengthi1024e4:name%d:%s12:piece lengthi16384e6:pieces20:%see",
		len("http://localhost/announce"), "http://localhost/announce", len(file), file, strings.Repeat("0", 20))
}

func pick(options []string) string {
	return options[rand.Intn(len(options))]
}
