package demo

import (
	"sort"
	"strings"

	"github.com/vango-dev/vfiber/internal/errors"
	"github.com/vango-dev/vfiber/pkg/vdom"
)

// App is a named example application.
type App struct {
	// Name is the name used with --app.
	Name string

	// Description describes the app.
	Description string

	// Root builds the root element.
	Root func() *vdom.Element
}

// Available apps.
var apps = map[string]*App{
	"counter": {
		Name:        "counter",
		Description: "Two counters with step buttons and a change log effect",
		Root:        func() *vdom.Element { return vdom.Create(CounterApp, nil) },
	},
	"todo": {
		Name:        "todo",
		Description: "A todo list with a draft input, toggles and removal",
		Root:        func() *vdom.Element { return vdom.Create(TodoApp, nil) },
	},
}

// Get returns an app by name.
func Get(name string) (*App, error) {
	app, ok := apps[name]
	if !ok {
		return nil, errors.New("E140").
			WithDetail("App '" + name + "' not found").
			WithSuggestion("Available apps: " + strings.Join(List(), ", "))
	}
	return app, nil
}

// List returns all app names in sorted order.
func List() []string {
	names := make([]string, 0, len(apps))
	for name := range apps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
