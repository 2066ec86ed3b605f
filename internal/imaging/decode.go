package imaging

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"os"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
	"github.com/gen2brain/heic"

	"github.com/zombor/receipt-render/internal/dataurl"
)

// ErrDecode is returned when an image reference cannot be turned into pixels
var ErrDecode = errors.New("decode image")

// FileDecoder decodes images from file paths or data URLs.
// Supported formats: PNG, JPEG, GIF, HEIC/HEIF and the first page of a PDF.
type FileDecoder struct {
	baseDir    string
	allowFiles bool
}

// NewFileDecoder creates a FileDecoder resolving relative paths against baseDir
func NewFileDecoder(baseDir string) *FileDecoder {
	return &FileDecoder{baseDir: baseDir, allowFiles: true}
}

// NewDataURLDecoder creates a FileDecoder that refuses file paths, for
// requests coming from untrusted clients
func NewDataURLDecoder() *FileDecoder {
	return &FileDecoder{}
}

// Decode loads and decodes the image referenced by ref
func (d *FileDecoder) Decode(ctx context.Context, ref string) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var (
		data     []byte
		mimeType string
		err      error
	)
	if dataurl.IsDataURL(ref) {
		mimeType, data, err = dataurl.Decode(ref)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrDecode, err)
		}
	} else if !d.allowFiles {
		return nil, fmt.Errorf("%w: file references are not allowed", ErrDecode)
	} else {
		path := ref
		if !filepath.IsAbs(path) && d.baseDir != "" {
			path = filepath.Join(d.baseDir, path)
		}
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: reading file: %w", ErrDecode, err)
		}
		mimeType = mimeTypeFromExt(path)
	}

	img, err := decodeImage(data, mimeType)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return img, nil
}

// decodeImage picks a decoder from the content, falling back to the MIME type
func decodeImage(data []byte, mimeType string) (image.Image, error) {
	switch {
	case isPDFFormat(data) || mimeType == "application/pdf":
		return pdfToImage(data)
	case isHEICFormat(data) || isHEICMimeType(mimeType):
		img, err := heic.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decoding HEIC/HEIF image: %w", err)
		}
		return img, nil
	default:
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			if strings.Contains(err.Error(), "unknown format") {
				return nil, fmt.Errorf("unsupported image format. Supported formats: JPEG, PNG, GIF, HEIC, HEIF, PDF: %w", err)
			}
			return nil, fmt.Errorf("decoding image: %w", err)
		}
		return img, nil
	}
}

// pdfToImage renders the first page of a PDF
func pdfToImage(pdfData []byte) (image.Image, error) {
	doc, err := fitz.NewFromMemory(pdfData)
	if err != nil {
		return nil, fmt.Errorf("opening PDF: %w", err)
	}
	defer doc.Close()

	img, err := doc.Image(0)
	if err != nil {
		return nil, fmt.Errorf("rendering PDF page: %w", err)
	}
	return img, nil
}

func isPDFFormat(data []byte) bool {
	return bytes.HasPrefix(data, []byte("%PDF-"))
}

// isHEICFormat checks for an ftyp box with a HEIC-family brand at offset 4
func isHEICFormat(data []byte) bool {
	if len(data) < 12 || string(data[4:8]) != "ftyp" {
		return false
	}
	switch string(data[8:12]) {
	case "heic", "heif", "mif1", "msf1":
		return true
	}
	return false
}

func isHEICMimeType(mimeType string) bool {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	return strings.Contains(mimeType, "heic") || strings.Contains(mimeType, "heif")
}

func mimeTypeFromExt(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".pdf":
		return "application/pdf"
	case ".heic":
		return "image/heic"
	case ".heif":
		return "image/heif"
	default:
		return "application/octet-stream"
	}
}
