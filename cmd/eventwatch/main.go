// Package main provides a watcher and stress tool for the ledger event stream.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"net/url"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
)

// Metrics tracks the watch results
type Metrics struct {
	ConnectionsAttempted int64
	ConnectionsSuccess   int64
	ConnectionsFailed    int64
	FramesSent           int64
	EventsReceived       int64
	Errors               int64
}

var metrics Metrics

func main() {
	host := flag.String("host", "localhost:8483", "API server host")
	slugHash := flag.String("slug-hash", "", "Narrow the stream to one channel slug hash (0x...)")
	clients := flag.Int("clients", 1, "Number of concurrent watchers")
	duration := flag.Duration("duration", 0, "Stop after this long (0 = run until interrupted)")
	flag.Parse()

	log.Printf("👁  Watching ledger events")
	log.Printf("Target: ws://%s/api/ws/events", *host)
	if *slugHash != "" {
		log.Printf("Filter: %s", *slugHash)
	}
	if *clients > 1 {
		log.Printf("Clients: %d", *clients)
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup
	stopChan := make(chan struct{})

	// The single-watcher default prints events; extra clients just count
	// frames, which makes this double as a fan-out stress tool.
	for i := 0; i < *clients; i++ {
		wg.Add(1)
		printEvents := i == 0 && *clients == 1
		go runWatcher(*host, *slugHash, printEvents, stopChan, &wg)
		time.Sleep(20 * time.Millisecond) // Stagger connections
	}

	if *duration > 0 {
		select {
		case <-time.After(*duration):
			log.Println("⏱  Watch duration reached")
		case <-interrupt:
			log.Println("🛑 Interrupted by user")
		}
	} else {
		<-interrupt
		log.Println("🛑 Interrupted by user")
	}

	close(stopChan)
	log.Println("Waiting for watchers to disconnect...")
	wg.Wait()

	printMetrics()
}

func runWatcher(host, slugHash string, printEvents bool, stopChan <-chan struct{}, wg *sync.WaitGroup) {
	defer wg.Done()
	atomic.AddInt64(&metrics.ConnectionsAttempted, 1)

	u := url.URL{Scheme: "ws", Host: host, Path: "/api/ws/events"}

	dialer := websocket.DefaultDialer
	c, resp, err := dialer.Dial(u.String(), nil)
	if err != nil {
		atomic.AddInt64(&metrics.ConnectionsFailed, 1)
		atomic.AddInt64(&metrics.Errors, 1)
		return
	}
	if resp != nil && resp.Body != nil {
		defer func() { _ = resp.Body.Close() }()
	}
	defer func() { _ = c.Close() }()

	atomic.AddInt64(&metrics.ConnectionsSuccess, 1)

	// Narrow the stream before events start flowing. Without a filter the
	// connection stays on the firehose.
	if slugHash != "" {
		frame := map[string]string{
			"action":    "subscribe",
			"slug_hash": slugHash,
		}
		frameJSON, _ := json.Marshal(frame)
		if err := c.WriteMessage(websocket.TextMessage, frameJSON); err != nil {
			atomic.AddInt64(&metrics.Errors, 1)
			return
		}
		atomic.AddInt64(&metrics.FramesSent, 1)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				return
			}
			atomic.AddInt64(&metrics.EventsReceived, 1)
			if printEvents {
				printFrame(message)
			}
		}
	}()

	select {
	case <-stopChan:
		_ = c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	case <-done:
	}
}

// printFrame renders one stream frame. Control frames carry a type like
// "connected" or "subscribed"; ledger events carry an actor and an event id.
func printFrame(message []byte) {
	var frame struct {
		ID       uint64          `json:"id"`
		Type     string          `json:"type"`
		SlugHash string          `json:"slug_hash"`
		Actor    string          `json:"actor"`
		Payload  json.RawMessage `json:"payload"`
		Error    string          `json:"error"`
	}
	if err := json.Unmarshal(message, &frame); err != nil {
		log.Printf("?? %s", message)
		return
	}

	switch {
	case frame.Error != "":
		log.Printf("❌ %s", frame.Error)
	case frame.Actor == "":
		log.Printf("·  %s %s", frame.Type, frame.SlugHash)
	default:
		log.Printf("⚡ #%d %-24s actor=%s channel=%s payload=%s",
			frame.ID, frame.Type, frame.Actor, frame.SlugHash, frame.Payload)
	}
}

func printMetrics() {
	log.Println("\n📊 Watch Results")
	log.Println("================")
	log.Printf("Connections Attempted: %d", atomic.LoadInt64(&metrics.ConnectionsAttempted))
	log.Printf("Connections Successful: %d", atomic.LoadInt64(&metrics.ConnectionsSuccess))
	log.Printf("Connections Failed: %d", atomic.LoadInt64(&metrics.ConnectionsFailed))
	log.Printf("Frames Sent: %d", atomic.LoadInt64(&metrics.FramesSent))
	log.Printf("Events Received: %d", atomic.LoadInt64(&metrics.EventsReceived))
	log.Printf("Total Errors: %d", atomic.LoadInt64(&metrics.Errors))
}
