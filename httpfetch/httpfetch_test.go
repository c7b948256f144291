package httpfetch

import (
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/crawl/go-vnnorm/root"
)

func TestOpen(t *testing.T) {
	var agent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agent = r.UserAgent()
		switch r.URL.Path {
		case "/rules.txt":
			w.Write([]byte("hòa hoà\n"))
		case "/broken.txt":
			http.Error(w, "boom", http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	f := New()
	stream, err := f.Open(server.URL + "/rules.txt")
	if err != nil {
		t.Fatalf("Open(rules.txt): %s", err)
	}
	data, _ := ioutil.ReadAll(stream)
	stream.Close()
	if string(data) != "hòa hoà\n" {
		t.Errorf("Open(rules.txt) read %#v", string(data))
	}
	if agent != DefaultUserAgent {
		t.Errorf("User-Agent == %#v, want %#v", agent, DefaultUserAgent)
	}

	if _, err := f.Open(server.URL + "/absent.txt"); !root.IsNotFound(err) {
		t.Errorf("Open(absent) err == %v, want not found", err)
	}
	_, err = f.Open(server.URL + "/broken.txt")
	if httpErr, ok := err.(*HTTPError); !ok || httpErr.StatusCode != 500 {
		t.Errorf("Open(broken) err == %v, want HTTPError 500", err)
	} else if root.IsNotFound(err) {
		t.Errorf("a 500 must not read as not found")
	}
	if _, err := f.Open("normalization/rules.txt"); !root.IsNotFound(err) {
		t.Errorf("Open(non-URL) err == %v, want not found", err)
	}
}
