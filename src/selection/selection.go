// Package selection maps chart element indices back to entities and turns the result
// into navigation.
package selection

import (
	"net/url"
	"sync"

	"github.com/Akima-zed/teleSport/src/types"
)

// HomeRoute is the dashboard route.
const HomeRoute = "/"

// NotFoundRoute is where unknown selections land.
const NotFoundRoute = "/not-found"

// Identity is the resolved entity of a chart click. The zero value is Unknown.
type Identity struct {
	name  string
	known bool
}

// Unknown is returned for indices that do not map to an entity.
var Unknown = Identity{}

// Known wraps an entity name.
func Known(name string) Identity { return Identity{name: name, known: true} }

func (i Identity) IsKnown() bool { return i.known }

// Name is empty for Unknown.
func (i Identity) Name() string { return i.name }

func (i Identity) String() string {
	if !i.known {
		return "<unknown>"
	}
	return i.name
}

// Resolve returns ordered[index].Name, or Unknown when index is out of range.
func Resolve(index int, ordered []types.EntityRecord) Identity {
	if index < 0 || index >= len(ordered) {
		return Unknown
	}
	return Known(ordered[index].Name)
}

// ResolveLabel is Resolve for a rendered label list that must still agree with ordered.
// A label that no longer matches the entity at index means the chart is behind the data;
// the selection is then Unknown rather than a wrong country.
func ResolveLabel(index int, labels []string, ordered []types.EntityRecord) Identity {
	id := Resolve(index, ordered)
	if !id.known || index >= len(labels) || labels[index] != id.name {
		return Unknown
	}
	return id
}

// Route is the navigation path for an identity.
func Route(id Identity) string {
	if !id.known {
		return NotFoundRoute
	}
	return "/country/" + url.PathEscape(id.name)
}

// Navigator receives resolved selections.
type Navigator interface {
	NavigateTo(Identity)
}

// HomeNavigator is implemented by navigators that can return to the dashboard.
type HomeNavigator interface {
	NavigateHome()
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(Identity)

func (f NavigatorFunc) NavigateTo(id Identity) { f(id) }

// RouteRecorder is a Navigator that keeps the visited routes, used by the CLI and tests.
type RouteRecorder struct {
	mu     sync.Mutex
	routes []string
}

func (r *RouteRecorder) NavigateTo(id Identity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = append(r.routes, Route(id))
}

// NavigateHome records navigation to the dashboard.
func (r *RouteRecorder) NavigateHome() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = append(r.routes, HomeRoute)
}

// Routes returns a copy of the visited routes.
func (r *RouteRecorder) Routes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.routes...)
}

// Last returns the most recent route, "" when nothing was visited.
func (r *RouteRecorder) Last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.routes) == 0 {
		return ""
	}
	return r.routes[len(r.routes)-1]
}
