package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// inputSet is the parsed list of render inputs. Nothing is opened until
// open is called, and every call starts over, which is what --watch needs.
type inputSet struct {
	stdin   io.Reader
	sources []inputSource
}

type inputSource struct {
	// url is set for http(s) inputs, path for local files.
	url  string
	path string
}

func (s inputSource) open(ctx context.Context) (io.ReadCloser, error) {
	if s.url != "" {
		return fetch(ctx, s.url)
	}
	return os.Open(s.path)
}

// parseInputs classifies args as http(s) URLs, file:// URLs or local paths.
// No args means stdin.
func parseInputs(stdin io.Reader, args []string) (inputSet, error) {
	set := inputSet{stdin: stdin, sources: make([]inputSource, 0, len(args))}
	for _, arg := range args {
		src, err := parseInput(arg)
		if err != nil {
			return inputSet{}, err
		}
		set.sources = append(set.sources, src)
	}
	return set, nil
}

func parseInput(arg string) (inputSource, error) {
	raw := strings.TrimSpace(arg)
	if raw == "" {
		return inputSource{}, fmt.Errorf("empty input argument")
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" {
		return inputSource{path: expandPath(raw)}, nil
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return inputSource{url: raw}, nil
	case "file":
		p := u.Path
		if p == "" {
			p = u.Opaque
		}
		return inputSource{path: expandPath(p)}, nil
	default:
		// Windows drive letters and other oddities are treated as paths.
		return inputSource{path: expandPath(raw)}, nil
	}
}

// open returns the concatenation of all sources, or stdin when there are none.
func (s inputSet) open(ctx context.Context) io.ReadCloser {
	if len(s.sources) == 0 {
		return io.NopCloser(s.stdin)
	}
	return &concatReader{ctx: ctx, pending: s.sources}
}

// localPaths lists the inputs that can be watched.
func (s inputSet) localPaths() []string {
	var paths []string
	for _, src := range s.sources {
		if src.path != "" {
			paths = append(paths, src.path)
		}
	}
	return paths
}

// remoteURL reports the URL when the only input is an http(s) document.
func (s inputSet) remoteURL() (string, bool) {
	if len(s.sources) == 1 && s.sources[0].url != "" {
		return s.sources[0].url, true
	}
	return "", false
}

// concatReader reads its sources back to back, opening each on first read
// and closing it at EOF.
type concatReader struct {
	ctx     context.Context
	pending []inputSource
	cur     io.ReadCloser
}

func (c *concatReader) Read(p []byte) (int, error) {
	for {
		if c.cur == nil {
			if len(c.pending) == 0 {
				return 0, io.EOF
			}
			rc, err := c.pending[0].open(c.ctx)
			if err != nil {
				return 0, err
			}
			c.cur, c.pending = rc, c.pending[1:]
		}
		n, err := c.cur.Read(p)
		if err == io.EOF {
			_ = c.cur.Close()
			c.cur = nil
			if n == 0 {
				continue
			}
			err = nil
		}
		return n, err
	}
}

func (c *concatReader) Close() error {
	c.pending = nil
	if c.cur == nil {
		return nil
	}
	err := c.cur.Close()
	c.cur = nil
	return err
}

func fetch(ctx context.Context, raw string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, raw, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode/100 != 2 {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("fetch %s: %s", raw, resp.Status)
	}
	return resp.Body, nil
}

// writeOutput sends html to stdout, or replaces the file at path, creating
// parent directories. A failed render never reaches this point, so a watched
// output keeps its last good content.
func writeOutput(stdout io.Writer, path string, html []byte) error {
	if strings.TrimSpace(path) == "" {
		_, err := stdout.Write(html)
		return err
	}
	path = expandPath(path)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, html, 0o644)
}

// expandPath resolves a leading ~ and makes path absolute where possible.
func expandPath(path string) string {
	if rest, ok := strings.CutPrefix(path, "~"); ok && (rest == "" || os.IsPathSeparator(rest[0])) {
		if home, err := os.UserHomeDir(); err == nil {
			path = home + rest
		}
	}
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
