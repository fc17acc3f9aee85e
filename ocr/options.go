package ocr

import "strconv"

// PageSegMode is a Tesseract page segmentation mode.
type PageSegMode int

const (
	SegAuto         PageSegMode = 3
	SegSingleColumn PageSegMode = 4
	SegSingleBlock  PageSegMode = 6
	SegSingleLine   PageSegMode = 7
	SegSparseText   PageSegMode = 11
)

// Tesseract variable names set through Input.Metadata.
const (
	VarPageSegMode   = "tessedit_pageseg_mode"
	VarCharWhitelist = "tessedit_char_whitelist"
)

func setVar(in *Input, key, value string) {
	if in.Metadata == nil {
		in.Metadata = make(map[string]string)
	}
	in.Metadata[key] = value
}

// WithPageSegMode selects how the page image is split into blocks. Scanned
// pages of running text usually want SegAuto; a single heading crop wants
// SegSingleLine.
func WithPageSegMode(mode PageSegMode) InputOption {
	return func(in *Input) { setVar(in, VarPageSegMode, strconv.Itoa(int(mode))) }
}

// WithCharWhitelist limits recognition to chars. Empty means no limit.
func WithCharWhitelist(chars string) InputOption {
	return func(in *Input) {
		if chars == "" {
			delete(in.Metadata, VarCharWhitelist)
			return
		}
		setVar(in, VarCharWhitelist, chars)
	}
}
