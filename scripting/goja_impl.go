package scripting

import (
	"context"

	"github.com/dop251/goja"
)

type GojaEngine struct {
	vm *goja.Runtime
}

func NewEngine() *GojaEngine {
	vm := goja.New()
	return &GojaEngine{vm: vm}
}

func (e *GojaEngine) Execute(ctx context.Context, script string) (interface{}, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	done := make(chan struct{})
	defer close(done)
	defer e.vm.ClearInterrupt()

	go func() {
		select {
		case <-ctx.Done():
			e.vm.Interrupt(ctx.Err())
		case <-done:
		}
	}()

	val, err := e.vm.RunString(script)
	if err != nil {
		if interruptedErr, ok := err.(*goja.InterruptedError); ok {
			if cause := interruptedErr.Unwrap(); cause != nil {
				return nil, cause
			}
			return nil, context.Canceled
		}
		return nil, err
	}
	return val.Export(), nil
}

func (e *GojaEngine) RegisterDOM(dom ViewerDOM) error {
	appObj := e.vm.NewObject()
	err := appObj.Set("alert", func(call goja.FunctionCall) goja.Value {
		msg := ""
		if len(call.Arguments) > 0 {
			msg = call.Arguments[0].String()
		}
		dom.Alert(msg)
		return goja.Undefined()
	})
	if err != nil {
		return err
	}
	if err := e.vm.Set("app", appObj); err != nil {
		return err
	}

	// Doc properties live on the global object, so both "pageNum" and
	// "this.pageNum" resolve at top level.
	global := e.vm.GlobalObject()
	if err := e.accessor(global, "pageNum",
		func() interface{} { return dom.PageNum() },
		func(v goja.Value) error { return dom.SetPageNum(int(v.ToInteger())) },
	); err != nil {
		return err
	}
	if err := e.accessor(global, "numPages", func() interface{} { return dom.NumPages() }, nil); err != nil {
		return err
	}
	if err := e.accessor(global, "zoom",
		func() interface{} { return dom.Zoom() },
		func(v goja.Value) error { return dom.SetZoom(v.ToFloat()) },
	); err != nil {
		return err
	}
	if err := e.accessor(global, "rotation",
		func() interface{} { return dom.Rotation() },
		func(v goja.Value) error { return dom.SetRotation(int(v.ToInteger())) },
	); err != nil {
		return err
	}

	return e.vm.Set("scrollToHeading", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 1 {
			return e.vm.ToValue(false)
		}
		page := -1
		if len(call.Arguments) > 1 && !goja.IsUndefined(call.Arguments[1]) && !goja.IsNull(call.Arguments[1]) {
			page = int(call.Arguments[1].ToInteger())
		}
		return e.vm.ToValue(dom.ScrollToHeading(call.Arguments[0].String(), page))
	})
}

// accessor defines a property backed by Go callbacks. A nil setter makes
// the property read-only; assignments are ignored.
func (e *GojaEngine) accessor(obj *goja.Object, name string, get func() interface{}, set func(goja.Value) error) error {
	getter := e.vm.ToValue(func(call goja.FunctionCall) goja.Value {
		return e.vm.ToValue(get())
	})
	var setter goja.Value
	if set != nil {
		setter = e.vm.ToValue(func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) > 0 {
				if err := set(call.Arguments[0]); err != nil {
					panic(e.vm.NewGoError(err))
				}
			}
			return goja.Undefined()
		})
	}
	return obj.DefineAccessorProperty(name, getter, setter, goja.FLAG_TRUE, goja.FLAG_TRUE)
}
