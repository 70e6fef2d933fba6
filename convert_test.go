package mdhtml

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestConvertWritesHTML(t *testing.T) {
	var out bytes.Buffer
	err := Convert(ConvertRequest{
		Reader: strings.NewReader("# Title\n\ntext\n"),
		Writer: &out,
	})
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if !strings.Contains(out.String(), "<h1>Title</h1>") {
		t.Fatalf("unexpected output: %q", out.String())
	}
}

func TestConvertRejectsBadInput(t *testing.T) {
	var out bytes.Buffer
	err := Convert(ConvertRequest{Reader: bytes.NewReader([]byte{0xff, 0xfe}), Writer: &out})
	if !errors.Is(err, ErrInvalidUTF8) {
		t.Fatalf("expected ErrInvalidUTF8, got %v", err)
	}
	if out.Len() != 0 {
		t.Fatalf("expected no output, got %q", out.String())
	}
	err = Convert(ConvertRequest{Reader: bytes.NewReader(make([]byte, MaxInputBytes+1)), Writer: &out})
	if !errors.Is(err, ErrInputTooLarge) {
		t.Fatalf("expected ErrInputTooLarge, got %v", err)
	}
}

func TestConvertRequiresReaderAndWriter(t *testing.T) {
	if err := Convert(ConvertRequest{Writer: &bytes.Buffer{}}); err == nil {
		t.Fatalf("expected error for nil reader")
	}
	if err := Convert(ConvertRequest{Reader: strings.NewReader("x")}); err == nil {
		t.Fatalf("expected error for nil writer")
	}
}

func TestConvertWithSanitizerDropsScriptLinks(t *testing.T) {
	var out bytes.Buffer
	err := Convert(ConvertRequest{
		Reader:  strings.NewReader("[x](javascript:alert(1)) and [ok](https://example.com)\n\n|a|\n|:-:|\n|1|\n"),
		Writer:  &out,
		Options: []RenderOption{WithSanitizer(SanitizePolicy())},
	})
	if err != nil {
		t.Fatalf("Convert: %v", err)
	}
	got := out.String()
	if strings.Contains(got, "javascript:") {
		t.Fatalf("script scheme survived sanitizing: %q", got)
	}
	if !strings.Contains(got, `href="https://example.com"`) {
		t.Fatalf("safe link removed: %q", got)
	}
	if !strings.Contains(got, "<table>") {
		t.Fatalf("table removed: %q", got)
	}
}

func TestHTTPConvert(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("## Remote\n"))
	}))
	defer srv.Close()

	var out bytes.Buffer
	if err := HTTPConvert(context.Background(), HTTPConvertRequest{URL: srv.URL, Writer: &out}); err != nil {
		t.Fatalf("HTTPConvert: %v", err)
	}
	if !strings.Contains(out.String(), "<h2>Remote</h2>") {
		t.Fatalf("unexpected output: %q", out.String())
	}
	if err := HTTPConvert(context.Background(), HTTPConvertRequest{URL: srv.URL + "/missing", Writer: &out}); err == nil {
		t.Fatalf("expected status error")
	}
	if err := HTTPConvert(context.Background(), HTTPConvertRequest{URL: "ftp://example.com/x.md", Writer: &out}); err == nil {
		t.Fatalf("expected scheme error")
	}
}
