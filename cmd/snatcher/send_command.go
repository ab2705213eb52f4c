package main

import (
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"snatcher/internal/clients/indexers"
	"snatcher/internal/clients/torrent"
)

func newSendCommand(ctx *commandContext) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "send <url>",
		Short: "Queue a torrent URL or magnet link on Transmission",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			link := args[0]
			if name == "" {
				name = nameFromLink(link)
			}

			client, err := torrent.NewTransmissionClient(cmd.Context(), ctx.config.Transmission,
				&http.Client{Timeout: 30 * time.Second}, indexers.NewFetcher(nil), ctx.logger)
			if err != nil {
				return err
			}
			if _, ok := client.SendTorrent(cmd.Context(), name, link); !ok {
				return fmt.Errorf("could not queue %s", name)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Queued", name)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Name used in logs (defaults to the link's name)")
	return cmd
}

// nameFromLink uses a magnet's display name or the last path element.
func nameFromLink(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return link
	}
	if u.Scheme == "magnet" {
		if dn := u.Query().Get("dn"); dn != "" {
			return dn
		}
		return link
	}
	base := strings.TrimSuffix(path.Base(u.Path), ".torrent")
	if base == "" || base == "." || base == "/" {
		return link
	}
	return base
}
