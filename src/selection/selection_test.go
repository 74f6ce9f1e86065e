package selection

import (
	"testing"

	"github.com/Akima-zed/teleSport/src/types"
)

func ordered(names ...string) []types.EntityRecord {
	out := make([]types.EntityRecord, len(names))
	for i, n := range names {
		out[i] = types.EntityRecord{ID: i + 1, Name: n}
	}
	return out
}

func TestResolve(t *testing.T) {
	list := ordered("United States", "Spain", "France")
	cases := []struct {
		index int
		want  Identity
	}{
		{0, Known("United States")},
		{2, Known("France")},
		{5, Unknown},
		{3, Unknown},
		{-1, Unknown},
	}
	for _, c := range cases {
		if got := Resolve(c.index, list); got != c.want {
			t.Errorf("Resolve(%d)=%v want %v", c.index, got, c.want)
		}
	}
	if Resolve(0, nil).IsKnown() {
		t.Fatalf("empty list must resolve to Unknown")
	}
}

func TestResolveLabel(t *testing.T) {
	list := ordered("A", "B")
	if got := ResolveLabel(1, []string{"A", "B"}, list); got != Known("B") {
		t.Fatalf("got %v", got)
	}
	if got := ResolveLabel(1, []string{"B", "A"}, list); got.IsKnown() {
		t.Fatalf("stale labels should not resolve, got %v", got)
	}
	if got := ResolveLabel(1, []string{"A"}, list); got.IsKnown() {
		t.Fatalf("short labels should not resolve, got %v", got)
	}
}

func TestRoutes(t *testing.T) {
	if r := Route(Known("France")); r != "/country/France" {
		t.Fatalf("route=%s", r)
	}
	if r := Route(Known("Côte d'Ivoire")); r != "/country/C%C3%B4te%20d%27Ivoire" {
		t.Fatalf("route=%s", r)
	}
	if r := Route(Unknown); r != NotFoundRoute {
		t.Fatalf("route=%s", r)
	}
	if Unknown.String() != "<unknown>" || Known("Spain").String() != "Spain" {
		t.Fatalf("unexpected identity strings")
	}
}

func TestRouteRecorder(t *testing.T) {
	var r RouteRecorder
	if r.Last() != "" {
		t.Fatalf("fresh recorder should be empty")
	}
	var nav Navigator = &r
	nav.NavigateTo(Resolve(1, ordered("A", "B")))
	nav.NavigateTo(Resolve(9, ordered("A", "B")))
	r.NavigateHome()
	want := []string{"/country/B", NotFoundRoute, HomeRoute}
	got := r.Routes()
	if len(got) != len(want) {
		t.Fatalf("routes=%v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("routes=%v want %v", got, want)
		}
	}

	var seen Identity
	NavigatorFunc(func(id Identity) { seen = id }).NavigateTo(Known("X"))
	if seen != Known("X") {
		t.Fatalf("func navigator got %v", seen)
	}
}
