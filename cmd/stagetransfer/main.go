// Command stagetransfer uploads a file to, or downloads a file from, a
// presigned stage URL with retries and a progress bar.
//
//	stagetransfer --upload data.csv.gz --url "$PRESIGNED_PUT_URL"
//	stagetransfer --download data.csv.gz --url "$PRESIGNED_GET_URL"
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/jessevdk/go-flags"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	db "github.com/datafuselabs/databend-go"
)

type options struct {
	Upload     string            `long:"upload" short:"u" description:"Local file to upload"`
	Download   string            `long:"download" short:"d" description:"Local file to download into"`
	URL        string            `long:"url" env:"DATABEND_PRESIGNED_URL" required:"true" description:"Presigned URL of the stage object"`
	Header     map[string]string `long:"header" short:"H" key-value-delimiter:":" description:"Header to send, e.g. -H x-ms-blob-type:BlockBlob"`
	Config     string            `long:"config" short:"c" env:"DATABEND_CLIENT_CONFIG_FILE" description:"Client config file"`
	LogLevel   string            `long:"log-level" description:"Driver log level" choice:"TRACE" choice:"DEBUG" choice:"INFO" choice:"WARN" choice:"ERROR" choice:"OFF"`
	NoProgress bool              `long:"no-progress" description:"Do not render a progress bar"`
}

func main() {
	var opts options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); flags.WroteHelp(err) {
		return
	} else if err != nil {
		os.Exit(2)
	}
	if (opts.Upload == "") == (opts.Download == "") {
		parser.WriteHelp(os.Stderr)
		exitf("exactly one of --upload and --download is required\n")
	}

	cfg, err := loadConfig(opts.Config)
	if err != nil {
		exitf("%v\n", err)
	}
	if opts.LogLevel != "" {
		cfg.LogLevel = opts.LogLevel
	}
	if err = db.ConfigureLoggingFromConfig(cfg); err != nil {
		exitf("%v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	client := db.NewTransferClient(cfg)
	if opts.Upload != "" {
		err = upload(ctx, client, opts)
	} else {
		err = download(ctx, client, opts)
	}
	if err != nil {
		exitf("%v\n", err)
	}
}

func loadConfig(path string) (*db.Config, error) {
	if path == "" {
		return db.LoadConfig()
	}
	return db.LoadConfigFile(path)
}

func newBar(p *mpb.Progress, name string, total int64) *mpb.Bar {
	return p.AddBar(total,
		mpb.PrependDecorators(
			decor.Name(name, decor.WCSyncSpaceR),
			decor.CountersKibiByte("% .1f / % .1f", decor.WCSyncSpace)),
		mpb.AppendDecorators(
			decor.Percentage(decor.WCSyncSpace),
			decor.Elapsed(decor.ET_STYLE_MMSS, decor.WCSyncSpace)),
	)
}

func upload(ctx context.Context, client *db.TransferClient, opts options) error {
	stat, err := os.Stat(opts.Upload)
	if err != nil {
		return err
	}
	if opts.NoProgress {
		return client.UploadFile(ctx, opts.Upload, opts.Header, opts.URL)
	}

	p := mpb.NewWithContext(ctx, mpb.WithOutput(os.Stderr))
	bar := newBar(p, filepath.Base(opts.Upload), stat.Size())
	open := func() (io.ReadCloser, error) {
		f, err := os.Open(opts.Upload)
		if err != nil {
			return nil, err
		}
		// restart the bar when a retried attempt reopens the file
		bar.SetCurrent(0)
		return bar.ProxyReader(f), nil
	}
	headers := withContentType(opts.Header, opts.Upload)
	err = client.UploadFrom(ctx, open, stat.Size(), headers, opts.URL)
	if err != nil {
		bar.Abort(false)
	}
	p.Wait()
	return err
}

func download(ctx context.Context, client *db.TransferClient, opts options) error {
	if opts.NoProgress {
		n, err := client.DownloadFile(ctx, opts.URL, opts.Header, opts.Download)
		if err == nil {
			fmt.Fprintf(os.Stderr, "downloaded %d bytes\n", n)
		}
		return err
	}

	body, err := client.Download(ctx, opts.URL, opts.Header)
	if err != nil {
		return err
	}
	defer body.Close()
	f, err := os.Create(opts.Download)
	if err != nil {
		return err
	}
	defer f.Close()

	p := mpb.NewWithContext(ctx, mpb.WithOutput(os.Stderr))
	bar := newBar(p, filepath.Base(opts.Download), 0)
	proxy := bar.ProxyReader(body)
	_, err = io.Copy(f, proxy)
	proxy.Close()
	if err != nil {
		bar.Abort(false)
	} else {
		bar.SetTotal(-1, true)
	}
	p.Wait()
	return err
}

func withContentType(headers map[string]string, path string) map[string]string {
	out := make(map[string]string, len(headers)+1)
	for k, v := range headers {
		out[k] = v
	}
	for k := range out {
		if strings.EqualFold(k, "Content-Type") {
			return out
		}
	}
	if ct := db.DetectContentType(path); ct != "" {
		out["Content-Type"] = ct
	}
	return out
}

func exitf(format string, a ...interface{}) {
	fmt.Fprintf(os.Stderr, format, a...)
	os.Exit(1)
}
