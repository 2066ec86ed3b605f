package receipt

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/zombor/receipt-render/internal/canvas"
)

const (
	// StorageKey is the page storage key the last receipt input is saved under
	StorageKey = "receiptData"
	// DownloadFilename is the suggested name for browser downloads
	DownloadFilename = "receipt.png"
)

// Stage names the collaborator step an image render failed in
type Stage string

const (
	StageSurface  Stage = "create surface"
	StageQREncode Stage = "encode qr code"
	StageQRDecode Stage = "decode qr code"
	StageEncode   Stage = "encode image"
	StageWrite    Stage = "write file"
	StagePersist  Stage = "persist input"
	StageSaveAs   Stage = "save as"
)

// StageError wraps a collaborator failure with the stage it happened in
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// FileWriter persists bytes at a path
type FileWriter interface {
	Write(ctx context.Context, path string, data []byte) error
}

// KeyValueStore is the page context's persistent storage
type KeyValueStore interface {
	Set(ctx context.Context, key string, value []byte) error
}

// Downloader triggers a save-as-file action for a data URL
type Downloader interface {
	SaveAs(ctx context.Context, dataURL, filename string) error
}

// Result is what an Output produced
type Result struct {
	PNG     []byte // Set by FileOutput
	Path    string // Set by FileOutput when a file was written
	DataURL string // Set by PageOutput when Embed is true
}

// Output delivers a rendered receipt to its destination
type Output interface {
	// Prepare runs before layout with the caller's original input
	Prepare(ctx context.Context, r Receipt) error
	Deliver(ctx context.Context, s canvas.Surface) (Result, error)
}

// FileOutput encodes a PNG and writes it to Path. With an empty Path the
// bytes are only returned.
type FileOutput struct {
	Writer FileWriter
	Path   string
}

// Prepare implements Output
func (o FileOutput) Prepare(context.Context, Receipt) error {
	return nil
}

// Deliver implements Output. Nothing is written unless encoding succeeded.
func (o FileOutput) Deliver(ctx context.Context, s canvas.Surface) (Result, error) {
	data, err := s.EncodePNG()
	if err != nil {
		return Result{}, &StageError{Stage: StageEncode, Err: err}
	}
	if o.Path == "" {
		return Result{PNG: data}, nil
	}
	if err := o.Writer.Write(ctx, o.Path, data); err != nil {
		return Result{}, &StageError{Stage: StageWrite, Err: err}
	}
	return Result{PNG: data, Path: o.Path}, nil
}

// PageOutput serves an interactive page: it returns the data URL when Embed
// is set and otherwise triggers a download. With Persist the raw input is
// stored under StorageKey before rendering starts.
type PageOutput struct {
	Store    KeyValueStore
	Download Downloader
	Embed    bool
	Persist  bool
	Filename string
}

// Prepare implements Output
func (o PageOutput) Prepare(ctx context.Context, r Receipt) error {
	if !o.Persist {
		return nil
	}
	data, err := json.Marshal(r)
	if err != nil {
		return &StageError{Stage: StagePersist, Err: fmt.Errorf("marshaling receipt: %w", err)}
	}
	if err := o.Store.Set(ctx, StorageKey, data); err != nil {
		return &StageError{Stage: StagePersist, Err: err}
	}
	return nil
}

// Deliver implements Output
func (o PageOutput) Deliver(ctx context.Context, s canvas.Surface) (Result, error) {
	url, err := s.DataURL()
	if err != nil {
		return Result{}, &StageError{Stage: StageEncode, Err: err}
	}
	if o.Embed {
		return Result{DataURL: url}, nil
	}

	filename := o.Filename
	if filename == "" {
		filename = DownloadFilename
	}
	if err := o.Download.SaveAs(ctx, url, filename); err != nil {
		return Result{}, &StageError{Stage: StageSaveAs, Err: err}
	}
	return Result{}, nil
}
