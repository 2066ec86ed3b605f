// Package imaging decodes logo and QR images and encodes QR codes.
package imaging
