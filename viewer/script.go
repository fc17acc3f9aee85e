package viewer

import (
	"context"
	"errors"

	"github.com/wudi/pageview/observability"
	"github.com/wudi/pageview/scripting"
)

// RunScript executes JavaScript against the viewer. Scripts see pageNum
// (0-based), numPages, zoom (percent), rotation, scrollToHeading and
// app.alert.
func (v *Viewer) RunScript(ctx context.Context, src string) (interface{}, error) {
	eng := scripting.NewEngine()
	if err := eng.RegisterDOM(scriptDOM{v}); err != nil {
		return nil, err
	}
	return eng.Execute(ctx, src)
}

// RunScripts executes the document's own scripts when scripting is enabled.
// Every script runs; failures are logged and returned joined.
func (v *Viewer) RunScripts(ctx context.Context) error {
	v.mu.Lock()
	if err := v.readyLocked(); err != nil {
		v.mu.Unlock()
		return err
	}
	if !v.scripting {
		v.mu.Unlock()
		return nil
	}
	scripts := append([]string(nil), v.cat.scripts...)
	v.mu.Unlock()

	eng := scripting.NewEngine()
	if err := eng.RegisterDOM(scriptDOM{v}); err != nil {
		return err
	}
	var errs []error
	for i, src := range scripts {
		if _, err := eng.Execute(ctx, src); err != nil {
			v.logger.Warn("document script failed", observability.Int("script", i), observability.Error("error", err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// scriptDOM adapts the viewer to the scripting object model.
type scriptDOM struct {
	v *Viewer
}

func (d scriptDOM) PageNum() int { return d.v.State().VisiblePage - 1 }

func (d scriptDOM) SetPageNum(index int) error { return d.v.ScrollToPage(index + 1) }

func (d scriptDOM) NumPages() int { return d.v.PageCount() }

func (d scriptDOM) Zoom() float64 { return d.v.State().Scale * 100 }

func (d scriptDOM) SetZoom(percent float64) error { return d.v.SetScale(percent / 100) }

func (d scriptDOM) Rotation() int { return d.v.State().Rotation }

func (d scriptDOM) SetRotation(deg int) error { return d.v.SetRotation(deg) }

func (d scriptDOM) ScrollToHeading(text string, page int) bool {
	return d.v.ScrollToHeading(text, page+1)
}

func (d scriptDOM) Alert(message string) {
	if d.v.onAlert != nil {
		d.v.onAlert(message)
		return
	}
	d.v.logger.Info("script alert", observability.String("message", message))
}
