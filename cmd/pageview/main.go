package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/wudi/pageview/document"
	"github.com/wudi/pageview/document/ledongthuc"
	"github.com/wudi/pageview/observability"
	"github.com/wudi/pageview/ocr"
	"github.com/wudi/pageview/ocr/tesseract"
	"github.com/wudi/pageview/outline"
	"github.com/wudi/pageview/overlay"
	"github.com/wudi/pageview/raster"
	"github.com/wudi/pageview/raster/basic"
	"github.com/wudi/pageview/raster/fitz"
	"github.com/wudi/pageview/viewer"
	"github.com/wudi/pageview/visibility"
	"golang.org/x/term"
)

type options struct {
	pdfPath  string
	outDir   string
	password string
	engine   string
	scale    float64
	rotation int
	dpr      float64
	width    float64
	height   float64
	heading  string
	page     int
	notes    string
	html     bool
	ocr      bool
	langs    string
	psm      int
	chars    string
	ocrDPI   int
	region   string
	ocrVars  ocrVars
	scripts  bool
	verbose  bool
}

// headingRetryDelay is the viewer's wait before re-searching a hinted page.
const headingRetryDelay = 600 * time.Millisecond

// ocrVars collects repeated -ocr-var key=value flags.
type ocrVars map[string]string

func (v *ocrVars) String() string {
	parts := make([]string, 0, len(*v))
	for k, val := range *v {
		parts = append(parts, k+"="+val)
	}
	return strings.Join(parts, ",")
}

func (v *ocrVars) Set(s string) error {
	key, val, ok := strings.Cut(s, "=")
	if !ok || key == "" {
		return fmt.Errorf("want key=value, got %q", s)
	}
	if *v == nil {
		*v = make(ocrVars)
	}
	(*v)[key] = val
	return nil
}

func main() {
	opts, err := parseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "pageview: %v\n", err)
		os.Exit(2)
	}
	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "pageview: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags() (options, error) {
	var opts options
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: go run ./cmd/pageview [flags] <pdf>\n")
		flag.PrintDefaults()
	}
	flag.StringVar(&opts.outDir, "out", "pageview_output", "Directory for rendered pages and text layers")
	flag.StringVar(&opts.password, "password", "", "Password to open encrypted PDFs")
	flag.StringVar(&opts.engine, "engine", "basic", "Raster engine: basic or fitz")
	flag.Float64Var(&opts.scale, "scale", 1, "Zoom factor")
	flag.IntVar(&opts.rotation, "rotation", 0, "Clockwise rotation, a multiple of 90")
	flag.Float64Var(&opts.dpr, "dpr", 1, "Device pixel ratio")
	flag.Float64Var(&opts.width, "width", 1024, "Viewport width in CSS px")
	flag.Float64Var(&opts.height, "height", 768, "Viewport height in CSS px")
	flag.StringVar(&opts.heading, "heading", "", "Heading to navigate to")
	flag.IntVar(&opts.page, "page", 0, "Page hint for -heading")
	flag.StringVar(&opts.notes, "notes", "", "Markdown file whose headings are navigated to")
	flag.BoolVar(&opts.html, "html", false, "Write an HTML text layer per rendered page")
	flag.BoolVar(&opts.ocr, "ocr", false, "Recognize pages without a text layer with tesseract")
	flag.StringVar(&opts.langs, "lang", "eng", "OCR languages, comma separated")
	flag.IntVar(&opts.psm, "ocr-psm", 0, "Tesseract page segmentation mode (0 keeps the engine default)")
	flag.StringVar(&opts.chars, "ocr-chars", "", "Restrict OCR to these characters")
	flag.IntVar(&opts.ocrDPI, "ocr-dpi", 0, "Override the DPI reported to the OCR engine")
	flag.StringVar(&opts.region, "ocr-region", "", "Recognize only x,y,w,h (device pixels) of each page")
	flag.Var(&opts.ocrVars, "ocr-var", "Extra tesseract variable as key=value (repeatable)")
	flag.BoolVar(&opts.scripts, "scripts", false, "Run document-level scripts")
	flag.BoolVar(&opts.verbose, "v", false, "Debug logging")
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		return options{}, fmt.Errorf("missing pdf path")
	}
	opts.pdfPath = flag.Arg(0)
	if opts.engine != "basic" && opts.engine != "fitz" {
		return options{}, fmt.Errorf("unknown engine %q", opts.engine)
	}
	if opts.rotation%90 != 0 {
		return options{}, fmt.Errorf("rotation %d is not a multiple of 90", opts.rotation)
	}
	if _, err := parseRegion(opts.region); err != nil {
		return options{}, err
	}
	return opts, nil
}

func parseRegion(s string) (ocr.Region, error) {
	if s == "" {
		return ocr.Region{}, nil
	}
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return ocr.Region{}, fmt.Errorf("ocr region %q: want x,y,w,h", s)
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return ocr.Region{}, fmt.Errorf("ocr region %q: %w", s, err)
		}
		v[i] = f
	}
	return ocr.Region{X: v[0], Y: v[1], Width: v[2], Height: v[3]}, nil
}

// ocrOptions translates the -ocr-* flags. Explicit variables go first so the
// dedicated flags win.
func ocrOptions(opts options) []ocr.InputOption {
	var out []ocr.InputOption
	if len(opts.ocrVars) > 0 {
		out = append(out, ocr.WithMetadata(opts.ocrVars))
	}
	if opts.langs != "" {
		out = append(out, ocr.WithLanguages(strings.Split(opts.langs, ",")...))
	}
	if opts.psm > 0 {
		out = append(out, ocr.WithPageSegMode(ocr.PageSegMode(opts.psm)))
	}
	if opts.chars != "" {
		out = append(out, ocr.WithCharWhitelist(opts.chars))
	}
	if opts.ocrDPI > 0 {
		out = append(out, ocr.WithDPI(opts.ocrDPI))
	}
	if r, _ := parseRegion(opts.region); !r.IsEmpty() {
		out = append(out, ocr.WithRegion(r))
	}
	return out
}

type headingResult struct {
	Text   string  `json:"text"`
	Page   int     `json:"page,omitempty"`
	Found  bool    `json:"found"`
	Offset float64 `json:"offset"`
}

type summary struct {
	Pages   int                    `json:"pages"`
	Engine  string                 `json:"engine"`
	Fit     viewer.FitDimensions   `json:"fit"`
	Outline []document.OutlineItem `json:"outline,omitempty"`
	Written []string               `json:"written"`
}

func run(opts options) error {
	data, err := os.ReadFile(opts.pdfPath)
	if err != nil {
		return fmt.Errorf("read pdf: %w", err)
	}
	if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := observability.NewSlog(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	var (
		mu      sync.Mutex
		written []string
		wErr    error
	)
	onRendered := func(page int, s *raster.Surface) {
		path := filepath.Join(opts.outDir, fmt.Sprintf("page-%03d.png", page))
		err := writePNG(path, s)
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			wErr = errors.Join(wErr, err)
			return
		}
		written = append(written, path)
	}

	retried := make(chan bool, 1)
	onRetried := func(_ string, _ int, found bool) {
		select {
		case retried <- found:
		default:
		}
	}

	container := visibility.NewContainer(opts.width, opts.height)
	v, err := openViewer(opts, data, logger, container, onRendered, onRetried)
	if err != nil {
		return err
	}
	defer v.Close()

	ctx := context.Background()
	if err := v.SetScale(opts.scale); err != nil {
		return err
	}
	if err := v.SetRotation(opts.rotation); err != nil {
		return err
	}
	if opts.scripts {
		if err := v.RunScripts(ctx); err != nil {
			logger.Warn("document scripts failed", observability.Error("error", err))
		}
	}

	progress := term.IsTerminal(int(os.Stderr.Fd()))
	total := v.PageCount()
	for n := 1; n <= total; n++ {
		if err := v.ScrollToPage(n); err != nil {
			return err
		}
		if err := v.WaitIdle(ctx); err != nil {
			return err
		}
		if progress {
			fmt.Fprintf(os.Stderr, "\rrendered %d/%d", n, total)
		}
	}
	if progress {
		fmt.Fprintln(os.Stderr)
	}

	if opts.html {
		for n := 1; n <= total; n++ {
			e := v.Overlay(n)
			if e == nil {
				continue
			}
			path := filepath.Join(opts.outDir, fmt.Sprintf("page-%03d.html", n))
			if err := writeHTML(path, e); err != nil {
				return err
			}
		}
	}

	headings, err := navigate(ctx, v, container, opts, retried)
	if err != nil {
		return err
	}

	fit, _ := v.FitDimensions()
	mu.Lock()
	sum := summary{Pages: total, Engine: opts.engine, Fit: fit, Outline: v.Outline(), Written: written}
	werr := wErr
	mu.Unlock()
	if err := emitSection("document", sum); err != nil {
		return err
	}
	if len(headings) > 0 {
		if err := emitSection("headings", headings); err != nil {
			return err
		}
	}
	return werr
}

// openViewer loads data, prompting for a password on a terminal when the
// document is encrypted and none was given.
func openViewer(opts options, data []byte, logger observability.Logger, c *visibility.Container, onRendered func(int, *raster.Surface), onRetried func(string, int, bool)) (*viewer.Viewer, error) {
	engine, err := newEngine(opts.engine)
	if err != nil {
		return nil, err
	}
	vopts := []viewer.Option{
		viewer.WithLogger(logger),
		viewer.WithEngine(engine),
		viewer.WithContainer(c),
		viewer.WithDevicePixelRatio(opts.dpr),
		viewer.WithScripting(opts.scripts),
		viewer.WithPageRendered(onRendered),
		viewer.WithRetryDelay(headingRetryDelay),
		viewer.WithHeadingRetried(onRetried),
		viewer.WithAlert(func(msg string) { fmt.Fprintf(os.Stderr, "alert: %s\n", msg) }),
	}
	if opts.ocr {
		vopts = append(vopts, viewer.WithOCR(tesseract.New(), ocrOptions(opts)...))
	}

	password := opts.password
	for attempt := 0; ; attempt++ {
		v := viewer.New(ledongthuc.NewParser(ledongthuc.Config{Password: password}), vopts...)
		err := v.Load(context.Background(), data)
		if err == nil {
			return v, nil
		}
		v.Close()
		if !errors.Is(err, document.ErrPassword) || attempt > 0 || !term.IsTerminal(int(os.Stdin.Fd())) {
			return nil, err
		}
		fmt.Fprint(os.Stderr, "password: ")
		pw, rerr := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if rerr != nil {
			return nil, fmt.Errorf("read password: %w", rerr)
		}
		password = string(pw)
	}
}

func newEngine(name string) (raster.Engine, error) {
	if name == "fitz" {
		return fitz.Factory{}, nil
	}
	return basic.New(basic.Config{})
}

// navigate runs heading navigation for -heading and every heading of -notes.
// A hinted miss waits for the viewer's single retry before reporting.
func navigate(ctx context.Context, v *viewer.Viewer, c *visibility.Container, opts options, retried <-chan bool) ([]headingResult, error) {
	var targets []outline.Heading
	if opts.notes != "" {
		src, err := os.ReadFile(opts.notes)
		if err != nil {
			return nil, fmt.Errorf("read notes: %w", err)
		}
		targets, err = outline.FromMarkdown(string(src))
		if err != nil {
			return nil, fmt.Errorf("parse notes: %w", err)
		}
	}
	if opts.heading != "" {
		title, page := outline.SplitHint(opts.heading)
		if opts.page > 0 {
			page = opts.page
		}
		targets = append(targets, outline.Heading{Text: title, Page: page})
	}

	var out []headingResult
	for _, h := range targets {
		found := v.ScrollToHeading(h.Text, h.Page)
		if !found && h.Page > 0 {
			if err := v.WaitIdle(ctx); err != nil {
				return nil, err
			}
			// Hints past the last page never schedule a retry.
			select {
			case found = <-retried:
			case <-time.After(2 * headingRetryDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		out = append(out, headingResult{Text: h.Text, Page: h.Page, Found: found, Offset: c.Offset()})
	}
	return out, nil
}

func writePNG(path string, s *raster.Surface) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %q: %w", path, err)
	}
	if err := png.Encode(f, s.Image); err != nil {
		f.Close()
		return fmt.Errorf("encode %q: %w", path, err)
	}
	return f.Close()
}

func writeHTML(path string, e *overlay.Entry) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %q: %w", path, err)
	}
	if err := overlay.WriteHTML(f, e); err != nil {
		f.Close()
		return fmt.Errorf("write %q: %w", path, err)
	}
	return f.Close()
}

func emitSection(name string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	fmt.Printf("== %s ==\n%s\n\n", name, data)
	return nil
}
