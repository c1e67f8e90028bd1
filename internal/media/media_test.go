// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package media

import (
	"context"
	"encoding/binary"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// Idle keep-alive connections of httptest clients.
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
	)
}

func box(typ string, payload []byte) []byte {
	b := make([]byte, 8, 8+len(payload))
	binary.BigEndian.PutUint32(b, uint32(8+len(payload)))
	copy(b[4:], typ)
	return append(b, payload...)
}

// movie builds a minimal MP4: an ftyp box and a moov box holding a
// version 0 mvhd.
func movie(timescale, duration uint32) []byte {
	ftyp := box("ftyp", []byte("isom\x00\x00\x02\x00isommp41"))

	mvhd := make([]byte, 100)
	// version/flags, creation and modification times stay zero.
	binary.BigEndian.PutUint32(mvhd[12:], timescale)
	binary.BigEndian.PutUint32(mvhd[16:], duration)
	binary.BigEndian.PutUint32(mvhd[20:], 0x00010000) // rate 1.0
	binary.BigEndian.PutUint16(mvhd[24:], 0x0100)     // volume 1.0
	// Identity matrix.
	binary.BigEndian.PutUint32(mvhd[36:], 0x00010000)
	binary.BigEndian.PutUint32(mvhd[52:], 0x00010000)
	binary.BigEndian.PutUint32(mvhd[68:], 0x40000000)
	binary.BigEndian.PutUint32(mvhd[96:], 2) // next track id

	moov := box("moov", box("mvhd", mvhd))
	return append(ftyp, moov...)
}

func TestContainerSeconds(t *testing.T) {
	tests := []struct {
		name      string
		timescale uint32
		duration  uint32
		want      int
	}{
		{"whole", 1000, 30000, 30},
		{"rounds down", 1000, 12400, 12},
		{"rounds up", 600, 5700, 10},
		{"short", 90000, 45000, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ContainerSeconds(movie(tt.timescale, tt.duration))
			if err != nil {
				t.Fatalf("ContainerSeconds: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestContainerSecondsWithoutMovieHeader(t *testing.T) {
	data := box("ftyp", []byte("isom\x00\x00\x02\x00isom"))
	if _, err := ContainerSeconds(data); err == nil {
		t.Error("expected error for a file without moov")
	}
}

func TestProberOverHTTP(t *testing.T) {
	data := movie(1000, 42400)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/clip.mp4":
			w.Write(data)
		case "/junk.mp4":
			w.Write([]byte("not a movie"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	p := NewProber(WithHTTPClient(srv.Client()))
	ctx := context.Background()

	if got := p.Duration(ctx, srv.URL+"/clip.mp4"); got != 42 {
		t.Errorf("clip: got %d, want 42", got)
	}
	if got := p.Duration(ctx, srv.URL+"/junk.mp4"); got != 0 {
		t.Errorf("junk: got %d, want 0", got)
	}
	if got := p.Duration(ctx, srv.URL+"/missing.mp4"); got != 0 {
		t.Errorf("missing: got %d, want 0", got)
	}
	if got := p.Duration(ctx, ""); got != 0 {
		t.Errorf("empty url: got %d, want 0", got)
	}
}

func TestProberSizeCap(t *testing.T) {
	data := movie(1000, 5000)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(data)
	}))
	defer srv.Close()

	p := NewProber(WithHTTPClient(srv.Client()), WithMaxBytes(int64(len(data)-1)))
	if got := p.Duration(context.Background(), srv.URL+"/big.mp4"); got != 0 {
		t.Errorf("got %d, want 0 for an oversized file", got)
	}
}

func TestProberTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	p := NewProber(WithHTTPClient(srv.Client()), WithTimeout(50*time.Millisecond))
	start := time.Now()
	if got := p.Duration(context.Background(), srv.URL+"/slow.mp4"); got != 0 {
		t.Errorf("got %d, want 0", got)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("probe took %v, timeout not applied", elapsed)
	}
}

func TestProberCollapsesConcurrentProbes(t *testing.T) {
	data := movie(1000, 7000)
	var hits atomic.Int32
	entered := make(chan struct{}, 1)
	gate := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		select {
		case entered <- struct{}{}:
		default:
		}
		<-gate
		w.Write(data)
	}))
	defer srv.Close()

	p := NewProber(WithHTTPClient(srv.Client()))
	url := srv.URL + "/shared.mp4"

	results := make([]int, 5)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0] = p.Duration(context.Background(), url)
	}()
	<-entered
	for i := 1; i < len(results); i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = p.Duration(context.Background(), url)
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(gate)
	wg.Wait()

	for i, r := range results {
		if r != 7 {
			t.Errorf("caller %d: got %d, want 7", i, r)
		}
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("fetches: got %d, want 1", n)
	}
}

type fakeObjects struct {
	data []byte
	keys []string
}

func (f *fakeObjects) KeyFromURL(u string) (string, bool) {
	const prefix = "https://cdn.example.com/"
	if len(u) > len(prefix) && u[:len(prefix)] == prefix {
		return u[len(prefix):], true
	}
	return "", false
}

func (f *fakeObjects) Download(_ context.Context, key string, _ int64) ([]byte, error) {
	f.keys = append(f.keys, key)
	return f.data, nil
}

func TestProberReadsStorageURLsFromBucket(t *testing.T) {
	objs := &fakeObjects{data: movie(1000, 3000)}
	p := NewProber(WithStorage(objs), WithRate(100, 1))

	if got := p.Duration(context.Background(), "https://cdn.example.com/videos/a.mp4"); got != 3 {
		t.Errorf("got %d, want 3", got)
	}
	if len(objs.keys) != 1 || objs.keys[0] != "videos/a.mp4" {
		t.Errorf("keys: %v", objs.keys)
	}
}
