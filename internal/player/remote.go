package player

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/Batman1190/Spirify/internal/models"
	"github.com/Batman1190/Spirify/internal/shared"
)

// RemoteSource streams a track's audio from the stream proxy at
// {streamURL}/{videoID}. Progressive bodies cannot be seeked, so the
// duration stays unknown and Seek is a no-op.
type RemoteSource struct {
	*source
	client    *http.Client
	streamURL string
}

// WithHTTPClient overrides the streaming client.
func WithHTTPClient(client *http.Client) SourceOption {
	return func(o *sourceOptions) { o.client = client }
}

func NewRemoteSource(streamURL string, opts ...SourceOption) *RemoteSource {
	o := applyOptions(opts)

	client := o.client
	if client == nil {
		// Streams are long-lived, so no overall timeout. The dial and
		// header timeouts catch dead proxies.
		client = &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   10 * time.Second,
				ResponseHeaderTimeout: 15 * time.Second,
				DisableCompression:    true,
			},
		}
	}

	r := &RemoteSource{
		client:    client,
		streamURL: strings.TrimRight(streamURL, "/"),
	}
	r.source = newSource("remote", r.openStream, false, o)
	return r
}

func (r *RemoteSource) openStream(ctx context.Context, track models.Track) (io.ReadCloser, error) {
	url := fmt.Sprintf("%s/%s", r.streamURL, track.ID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrPlayback, err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: stream request: %w", shared.ErrPlayback, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: stream returned status %d", shared.ErrPlayback, resp.StatusCode)
	}
	return resp.Body, nil
}
