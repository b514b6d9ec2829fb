package ollama

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"medspresso/pkg/types"
)

const (
	opListModels = "list_models"
	opPull       = "pull"
)

// ListModels returns the names of models installed in the daemon, in the
// order the daemon lists them. An empty list is not an error.
func (d *Daemon) ListModels(ctx context.Context) ([]string, error) {
	resp, err := d.send(ctx, opListModels, "", http.MethodGet, pathTags, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	var tags types.TagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, &Error{Kind: KindInternal, Op: opListModels, Endpoint: d.baseURL + pathTags, Message: "decode response", Err: err}
	}
	names := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

// PullModel asks the daemon to download name. Success means the daemon
// accepted the request with a 2xx status. When onProgress is nil the progress
// stream is drained unread; otherwise each decodable progress line is passed
// to it and a progress record carrying an error fails the pull.
func (d *Daemon) PullModel(ctx context.Context, name string, onProgress func(types.PullProgress)) error {
	resp, err := d.send(ctx, opPull, name, http.MethodPost, pathPull, types.PullRequest{Name: name, Stream: true})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	endpoint := d.baseURL + pathPull
	if onProgress == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	sc := bufio.NewScanner(resp.Body)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		text := trimLine(sc.Bytes())
		if text == "" {
			continue
		}
		var p types.PullProgress
		if err := json.Unmarshal([]byte(text), &p); err != nil {
			d.log.Warn().Str("op", opPull).Str("model", name).Err(err).Msg("skipping malformed progress line")
			continue
		}
		if p.Error != "" {
			return &Error{Kind: KindServerReported, Op: opPull, Model: name, Endpoint: endpoint, Message: p.Error}
		}
		onProgress(p)
	}
	if err := sc.Err(); err != nil {
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		return &Error{Kind: KindInternal, Op: opPull, Model: name, Endpoint: endpoint, Message: "read progress", Err: err}
	}
	return nil
}

// PullModel pulls a model through the session's daemon.
func (c *Client) PullModel(ctx context.Context, name string, onProgress func(types.PullProgress)) error {
	return c.daemon.PullModel(ctx, name, onProgress)
}
