// Package demo contains the example applications served by the vfiber
// command: a counter and a todo list. Hosts look them up by name:
//
//	app, err := demo.Get("todo")
//	if err != nil {
//	    return err
//	}
//	engine.Render(app.Root())
package demo
