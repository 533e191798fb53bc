package joke_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mrp23231/coffee1-bot/internal/joke"
)

func TestFetchSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Accept"); got != "application/json" {
			t.Errorf("Accept = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"x","joke":"Why did the coffee file a police report? It got mugged.","status":200}`))
	}))
	defer srv.Close()

	c := joke.NewClient(srv.URL, time.Second)
	got := c.Fetch(context.Background())
	if got != "Why did the coffee file a police report? It got mugged." {
		t.Errorf("joke = %q", got)
	}
}

func TestFetchNon200FallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := joke.NewClient(srv.URL, time.Second)
	if got := c.Fetch(context.Background()); got != joke.Fallback {
		t.Errorf("got %q, want fallback", got)
	}
}

func TestFetchBadJSONFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	c := joke.NewClient(srv.URL, time.Second)
	if got := c.Fetch(context.Background()); got != joke.Fallback {
		t.Errorf("got %q, want fallback", got)
	}
}

func TestFetchTimeoutFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{"joke":"too late"}`))
	}))
	defer srv.Close()

	// 超时必须有界，挂起的外部API不能拖住交互处理
	c := joke.NewClient(srv.URL, 20*time.Millisecond)
	start := time.Now()
	got := c.Fetch(context.Background())
	if got != joke.Fallback {
		t.Errorf("got %q, want fallback", got)
	}
	if elapsed := time.Since(start); elapsed > 150*time.Millisecond {
		t.Errorf("超时未生效，耗时 %v", elapsed)
	}
}

func TestFetchConnectionRefusedFallsBack(t *testing.T) {
	c := joke.NewClient("http://127.0.0.1:1", 100*time.Millisecond)
	if got := c.Fetch(context.Background()); got != joke.Fallback {
		t.Errorf("got %q, want fallback", got)
	}
}
