package modkit

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestOptions(t *testing.T) {
	t.Parallel()

	var order []string
	tag := func(s string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, s)
				next.ServeHTTP(w, r)
			})
		}
	}

	type ports struct{ Table string }

	var c buildCfg
	for _, o := range []Option{
		WithName("importer"),
		WithPrefix("/import"),
		WithMiddlewares(tag("request-id"), tag("access-log")),
		WithMiddlewares(tag("recover")),
		WithPorts(ports{Table: "sub_2021_01"}),
	} {
		o(&c)
	}

	if c.name != "importer" || c.prefix != "/import" {
		t.Fatalf("name/prefix = %q/%q", c.name, c.prefix)
	}
	if p, ok := c.ports.(ports); !ok || p.Table != "sub_2021_01" {
		t.Fatalf("ports = %#v", c.ports)
	}

	var h http.Handler = http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
	for i := len(c.mw) - 1; i >= 0; i-- {
		h = c.mw[i](h)
	}
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/status", nil))
	if got := strings.Join(order, ","); got != "request-id,access-log,recover" {
		t.Fatalf("middleware order = %s", got)
	}
}
