// Package ocr defines the contract for plugging OCR engines into overlay
// construction. When a rendered page carries no text layer, the viewer can
// recognize the raster surface and build the overlay from the recognized
// words instead. Engines are small and transport-agnostic so they can be
// backed by native libraries or remote services.
package ocr
