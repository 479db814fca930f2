package main

import (
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/lhoste/hamlet/internal/catalog"
	"github.com/lhoste/hamlet/internal/config"
	"github.com/lhoste/hamlet/internal/sim"
)

var configPath = flag.String("config", "", "Path to config file")

// envelope is the wire form of a core event.
type envelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	cat, err := catalog.Load(cfg.Sim.DataDir)
	if err != nil {
		log.Fatalf("catalog: %v", err)
	}

	start := make(catalog.Amounts, len(cfg.Sim.Start))
	for r, q := range cfg.Sim.Start {
		start[catalog.Resource(r)] = q
	}
	simulation := sim.New(cat, sim.Config{
		Rows:  cfg.Sim.Rows,
		Cols:  cfg.Sim.Cols,
		Start: start,
	})

	gameHub := newHub()
	go gameHub.run()

	// The core is single threaded; simMu serializes ticks against
	// snapshot requests.
	var simMu sync.Mutex

	simulation.Subscribe(func(e sim.Event) {
		data, err := json.Marshal(envelope{Type: e.Kind().String(), Payload: e})
		if err != nil {
			log.Printf("event marshal: %v", err)
			return
		}
		select {
		case gameHub.broadcast <- data:
		default:
			log.Println("hub backlog full, dropping event")
		}
	})

	// The heartbeat. Speed shortens the wall interval between ticks;
	// the per-tick quantum handed to the core stays nominal.
	quantum := time.Duration(cfg.Sim.TickMs) * time.Millisecond
	interval := time.Duration(float64(quantum) / cfg.Sim.Speed)
	go func() {
		ticker := time.NewTicker(interval)
		for range ticker.C {
			simMu.Lock()
			simulation.Tick(quantum)
			simMu.Unlock()
		}
	}()

	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		serveWs(gameHub, w, r)
	})
	http.HandleFunc("/snapshot", func(w http.ResponseWriter, r *http.Request) {
		simMu.Lock()
		snap := simulation.Export()
		simMu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(snap); err != nil {
			log.Printf("snapshot encode: %v", err)
		}
	})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		log.Println("shutting down")
		os.Exit(0)
	}()

	log.Printf("hamlet server listening on %s (tick %v, speed x%g)", cfg.Server.Addr, interval, cfg.Sim.Speed)
	if err := http.ListenAndServe(cfg.Server.Addr, nil); err != nil {
		log.Fatalf("server: %v", err)
	}
}
