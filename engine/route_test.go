package engine

import "testing"

func TestRouteInsertionKeepsDefaultLast(t *testing.T) {
	h := NewHost("example.com")
	h.AddRoute(&Route{Pattern: "/api"})
	h.AddRoute(&Route{Pattern: "/static"})

	if len(h.Routes) != 3 {
		t.Fatalf("expected 3 routes (2 + default), got %d", len(h.Routes))
	}
	if h.Routes[len(h.Routes)-1].Pattern != "" {
		t.Fatalf("expected the terminal route to be the default, got pattern %q", h.Routes[len(h.Routes)-1].Pattern)
	}
}

func TestRouteNextGroupSkipsNonMatchingGroup(t *testing.T) {
	h := NewHost("example.com")
	h.AddRoute(&Route{Pattern: "/api/v1"})
	h.AddRoute(&Route{Pattern: "/api/v2"})
	h.AddRoute(&Route{Pattern: "/static/js"})

	for i, r := range h.Routes {
		if r.Pattern == "" {
			continue
		}
		if r.NextGroup <= i {
			t.Fatalf("route %d (%q) has non-increasing NextGroup %d", i, r.Pattern, r.NextGroup)
		}
	}

	route := h.match("/static/js/app.js", 0)
	if route == nil || route.Pattern != "/static/js" {
		t.Fatalf("expected /static/js to match, got %+v", route)
	}
}

func TestRouteMatchFallsBackToDefault(t *testing.T) {
	h := NewHost("example.com")
	h.AddRoute(&Route{Pattern: "/api"})

	route := h.match("/nowhere", 0)
	if route != h.DefaultRoute {
		t.Fatalf("expected fallback to default route, got %+v", route)
	}
}

func TestCloneHostCopyOnWrite(t *testing.T) {
	parent := NewHost("parent")
	parent.AddRoute(&Route{Pattern: "/shared"})

	child := CloneHost(parent, "child")
	if len(child.Routes) != len(parent.Routes) {
		t.Fatalf("expected clone to start with the same route count")
	}

	child.AddRoute(&Route{Pattern: "/child-only"})
	if len(parent.Routes) == len(child.Routes) {
		t.Fatal("expected adding a route to the clone to leave the parent's route list untouched")
	}
}
