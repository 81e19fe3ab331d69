// Command feedtest load-tests the live comment feed. It opens many subscriptions to one
// board, posts comments to that board over the REST API and reports how many events
// reached the subscribers and how long delivery took.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
)

type options struct {
	host     string
	login    string
	password string
	boardID  uint
	clients  int
	interval time.Duration
	duration time.Duration
}

type loadTest struct {
	opts  options
	token string
	http  *http.Client

	connected atomic.Int64
	failed    atomic.Int64
	posted    atomic.Int64
	received  atomic.Int64
	errors    atomic.Int64

	mu        sync.Mutex
	latencies []time.Duration
}

// feedEvent is the part of a comment event the load test reads.
type feedEvent struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurredAt"`
}

func main() {
	var opts options
	flag.StringVar(&opts.host, "host", "localhost:8080", "API server host")
	flag.StringVar(&opts.login, "login", "agora_root", "Username or email of the test account")
	flag.StringVar(&opts.password, "password", "", "Password of the test account")
	board := flag.Uint("board", 1, "Board to subscribe to and comment on")
	flag.IntVar(&opts.clients, "clients", 50, "Number of concurrent feed subscribers")
	flag.DurationVar(&opts.interval, "interval", time.Second, "Delay between posted comments")
	flag.DurationVar(&opts.duration, "duration", 30*time.Second, "Test duration")
	flag.Parse()
	opts.boardID = *board

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, opts.duration)
	defer cancel()

	lt := &loadTest{opts: opts, http: &http.Client{Timeout: 5 * time.Second}}
	log.Printf("Target: %s board=%d clients=%d duration=%v", opts.host, opts.boardID, opts.clients, opts.duration)
	if err := lt.authenticate(ctx); err != nil {
		log.Fatalf("Login failed: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < opts.clients; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lt.subscribe(ctx)
		}()
		time.Sleep(20 * time.Millisecond)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		lt.post(ctx)
	}()

	<-ctx.Done()
	log.Println("Stopping, waiting for subscribers to disconnect...")
	wg.Wait()
	lt.report()
}

func (lt *loadTest) authenticate(ctx context.Context) error {
	body, _ := json.Marshal(map[string]string{"login": lt.opts.login, "password": lt.opts.password})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "http://"+lt.opts.host+"/api/v1/auth/login", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := lt.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}

	var envelope struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return err
	}
	lt.token = envelope.Data.Token
	return nil
}

func (lt *loadTest) subscribe(ctx context.Context) {
	u := url.URL{
		Scheme:   "ws",
		Host:     lt.opts.host,
		Path:     "/api/ws/boards/" + strconv.FormatUint(uint64(lt.opts.boardID), 10),
		RawQuery: url.Values{"token": {lt.token}}.Encode(),
	}
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		lt.failed.Add(1)
		return
	}
	lt.connected.Add(1)

	go func() {
		<-ctx.Done()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		_ = conn.Close()
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var ev feedEvent
		if json.Unmarshal(payload, &ev) != nil || ev.OccurredAt.IsZero() {
			continue
		}
		lt.received.Add(1)
		lt.mu.Lock()
		lt.latencies = append(lt.latencies, time.Since(ev.OccurredAt))
		lt.mu.Unlock()
	}
}

func (lt *loadTest) post(ctx context.Context) {
	ticker := time.NewTicker(lt.opts.interval)
	defer ticker.Stop()
	endpoint := fmt.Sprintf("http://%s/api/v1/boards/%d/comments", lt.opts.host, lt.opts.boardID)

	for n := 1; ; n++ {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		body, _ := json.Marshal(map[string]string{"content": fmt.Sprintf("Load test comment %d", n)})
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			lt.errors.Add(1)
			continue
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+lt.token)

		resp, err := lt.http.Do(req)
		if err != nil {
			lt.errors.Add(1)
			continue
		}
		_ = resp.Body.Close()
		if resp.StatusCode != http.StatusCreated {
			lt.errors.Add(1)
			continue
		}
		lt.posted.Add(1)
	}
}

func (lt *loadTest) report() {
	connected, posted := lt.connected.Load(), lt.posted.Load()
	log.Printf("Subscribers: %d connected, %d failed (of %d)", connected, lt.failed.Load(), lt.opts.clients)
	log.Printf("Comments posted: %d, errors: %d", posted, lt.errors.Load())
	log.Printf("Events received: %d (expected %d)", lt.received.Load(), posted*connected)

	lt.mu.Lock()
	defer lt.mu.Unlock()
	if len(lt.latencies) == 0 {
		return
	}
	slices.Sort(lt.latencies)
	pct := func(p float64) time.Duration {
		return lt.latencies[int(p*float64(len(lt.latencies)-1))]
	}
	log.Printf("Delivery latency: p50=%v p95=%v p99=%v max=%v", pct(0.50), pct(0.95), pct(0.99), lt.latencies[len(lt.latencies)-1])
}
