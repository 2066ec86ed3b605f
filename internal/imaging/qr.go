package imaging

import (
	"context"
	"errors"
	"fmt"

	"github.com/skip2/go-qrcode"

	"github.com/zombor/receipt-render/internal/dataurl"
)

// ErrEncode is returned when a QR code cannot be produced
var ErrEncode = errors.New("encode qr code")

// MaxQRSize is the largest QR code edge, in pixels, Encode will produce
const MaxQRSize = 2048

// QRCoder produces QR code bitmaps as PNG data URLs
type QRCoder struct {
	level qrcode.RecoveryLevel
}

// NewQRCoder creates a QRCoder using medium error correction
func NewQRCoder() *QRCoder {
	return &QRCoder{level: qrcode.Medium}
}

// Encode renders data as a size x size PNG QR code. go-qrcode may return a
// larger bitmap when size is too small for the payload; callers scale on draw.
func (q *QRCoder) Encode(ctx context.Context, data string, size int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if data == "" {
		return "", fmt.Errorf("%w: empty payload", ErrEncode)
	}
	if size <= 0 || size > MaxQRSize {
		return "", fmt.Errorf("%w: invalid size %d", ErrEncode, size)
	}

	png, err := qrcode.Encode(data, q.level, size)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrEncode, err)
	}
	return dataurl.Encode("image/png", png), nil
}
