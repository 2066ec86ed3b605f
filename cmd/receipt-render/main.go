package main

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/zombor/receipt-render/internal/canvas"
	"github.com/zombor/receipt-render/internal/imaging"
	"github.com/zombor/receipt-render/internal/receipt"
	"github.com/zombor/receipt-render/internal/server"
	"github.com/zombor/receipt-render/internal/storage"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	root := newRootCommand(os.Stdin, os.Stdout)
	err := root.ParseAndRun(context.Background(), os.Args[1:],
		ff.WithEnvVarPrefix("RECEIPT"),
	)
	switch {
	case err == nil:
	case errors.Is(err, ff.ErrHelp):
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Command(root.GetSelected()))
	case errors.Is(err, ff.ErrNoExec):
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Command(root.GetSelected()))
		os.Exit(1)
	default:
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

// settings are the receipt defaults shared by every subcommand
type settings struct {
	storeName *string
	currency  *string
	qrSize    *int
}

func (s settings) defaults() receipt.Defaults {
	d := receipt.DefaultSettings
	d.StoreName = *s.storeName
	d.Currency = *s.currency
	d.QRSize = *s.qrSize
	return d
}

func newRootCommand(stdin io.Reader, stdout io.Writer) *ff.Command {
	rootFlags := ff.NewFlagSet("receipt-render")
	cfg := settings{
		storeName: rootFlags.StringLong("default-store-name", receipt.DefaultSettings.StoreName, "Store name used when a receipt has none"),
		currency:  rootFlags.StringLong("default-currency", receipt.DefaultSettings.Currency, "Currency symbol used when a receipt has none"),
		qrSize:    rootFlags.IntLong("default-qr-size", receipt.DefaultSettings.QRSize, "QR code size in pixels when a receipt has none"),
	}
	rootFlags.BoolLong("version", "Show version information")

	textFlags := ff.NewFlagSet("text").SetParent(rootFlags)
	var (
		textInput  = textFlags.StringLong("input", "-", "Receipt JSON file, or - for stdin")
		textOutput = textFlags.StringLong("out", "", "Write the receipt to this file instead of stdout")
	)
	textCmd := &ff.Command{
		Name:      "text",
		Usage:     "receipt-render text [FLAGS]",
		ShortHelp: "render a receipt as monospace text",
		Flags:     textFlags,
		Exec: func(ctx context.Context, _ []string) error {
			r, _, err := readReceipt(stdin, *textInput)
			if err != nil {
				return err
			}
			text := receipt.NewTextRenderer(cfg.defaults(), receipt.SlogSink{}).Render(r)
			if *textOutput == "" {
				_, err := io.WriteString(stdout, text)
				return err
			}
			store, err := storage.NewLocalStorage(".")
			if err != nil {
				return err
			}
			return store.Write(ctx, *textOutput, []byte(text))
		},
	}

	imageFlags := ff.NewFlagSet("image").SetParent(rootFlags)
	var (
		imageInput  = imageFlags.StringLong("input", "-", "Receipt JSON file, or - for stdin")
		imageOutput = imageFlags.StringLong("out", receipt.DownloadFilename, "PNG file to write")
	)
	imageCmd := &ff.Command{
		Name:      "image",
		Usage:     "receipt-render image [FLAGS]",
		ShortHelp: "render a receipt as a PNG image",
		Flags:     imageFlags,
		Exec: func(ctx context.Context, _ []string) error {
			r, baseDir, err := readReceipt(stdin, *imageInput)
			if err != nil {
				return err
			}
			store, err := storage.NewLocalStorage(".")
			if err != nil {
				return err
			}
			renderer := receipt.NewImageRendererWithDeps(
				canvas.RasterFactory{},
				imaging.NewFileDecoder(baseDir),
				imaging.NewQRCoder(),
				receipt.SlogSink{},
				cfg.defaults(),
			)
			result, err := renderer.RenderTo(ctx, r, receipt.FileOutput{Writer: store, Path: *imageOutput})
			if err != nil {
				return err
			}
			slog.Info("Receipt image written", "path", result.Path, "bytes", len(result.PNG))
			return nil
		},
	}

	serveFlags := ff.NewFlagSet("serve").SetParent(rootFlags)
	var (
		port     = serveFlags.IntLong("port", 8080, "HTTP server port")
		dbPath   = serveFlags.StringLong("db", "receipt.db", "Database file path for persisted receipts")
		authUser = serveFlags.StringLong("auth-user", "", "Basic auth username (optional)")
		authPass = serveFlags.StringLong("auth-pass", "", "Basic auth password (optional)")
	)
	serveCmd := &ff.Command{
		Name:      "serve",
		Usage:     "receipt-render serve [FLAGS]",
		ShortHelp: "serve the receipt rendering HTTP API",
		Flags:     serveFlags,
		Exec: func(ctx context.Context, _ []string) error {
			return serve(cfg.defaults(), *port, *dbPath, server.BasicAuth{
				Username: *authUser,
				Password: *authPass,
			})
		},
	}

	return &ff.Command{
		Name:        "receipt-render",
		Usage:       "receipt-render <SUBCOMMAND> [FLAGS]",
		ShortHelp:   "render retail receipts as text or images",
		Flags:       rootFlags,
		Subcommands: []*ff.Command{textCmd, imageCmd, serveCmd},
	}
}

// readReceipt loads a receipt from path, or stdin for "-". The returned
// directory is where relative logo paths are resolved.
func readReceipt(stdin io.Reader, path string) (receipt.Receipt, string, error) {
	var (
		data    []byte
		baseDir = "."
		err     error
	)
	if path == "-" || path == "" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
		baseDir = filepath.Dir(path)
	}
	if err != nil {
		return receipt.Receipt{}, "", fmt.Errorf("reading receipt: %w", err)
	}

	var r receipt.Receipt
	if err := json.Unmarshal(data, &r); err != nil {
		return receipt.Receipt{}, "", fmt.Errorf("parsing receipt: %w", err)
	}
	return r, baseDir, nil
}

func serve(defaults receipt.Defaults, port int, dbPath string, basicAuth server.BasicAuth) error {
	// Initialize database
	slog.Info("Initializing database...", "path", dbPath)
	db, err := storage.NewBoltKV(dbPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer db.Close()

	srv := server.NewServer(server.Deps{
		Defaults: defaults,
		Surfaces: canvas.RasterFactory{},
		Images:   imaging.NewDataURLDecoder(),
		QR:       imaging.NewQRCoder(),
		Store:    db,
	}, basicAuth)

	// Start server in goroutine
	addr := fmt.Sprintf(":%d", port)
	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start(addr)
	}()

	slog.Info("Server started", "address", fmt.Sprintf("http://localhost%s", addr))
	if basicAuth.Username != "" || basicAuth.Password != "" {
		slog.Info("Basic auth enabled", "user", basicAuth.Username)
	}

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case <-sigChan:
	}

	slog.Info("Shutting down...")
	return nil
}
