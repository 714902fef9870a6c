package main

import (
	"context"
	"encoding/json"
	"flag"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"gridhive.ai/internal/persistence/indexdb"
	persistlog "gridhive.ai/internal/persistence/log"
	"gridhive.ai/internal/sim/scenario"
	"gridhive.ai/internal/sim/tuning"
	"gridhive.ai/internal/sim/world"
	"gridhive.ai/internal/transport/ws"
)

func main() {
	var (
		addr         = flag.String("addr", ":8080", "http listen address")
		worldID      = flag.String("world", "world_1", "world id")
		seed         = flag.Int64("seed", 1337, "world seed")
		dataDir      = flag.String("data", "./data", "runtime data directory")
		schemasDir   = flag.String("schemas", "./schemas", "json schema directory (empty to skip transport validation)")
		tuningPath   = flag.String("tuning", "", "path to tuning.yaml (optional)")
		scenarioPath = flag.String("scenario", "", "path to scenario.yaml (optional)")
		disableDB    = flag.Bool("disable_db", false, "disable the sqlite tick index")
		sensorURL    = flag.String("sensor_url", "", "external sensing endpoint (empty: sensor nodes are no-ops)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	tun := tuning.Default()
	if p := strings.TrimSpace(*tuningPath); p != "" {
		var err error
		tun, err = tuning.Load(p)
		if err != nil {
			logger.Fatalf("load tuning: %v", err)
		}
	}

	w, err := world.New(world.WorldConfig{
		ID:         *worldID,
		TickRateHz: tun.TickRateHz,
		Seed:       *seed,
	}, tun)
	if err != nil {
		logger.Fatalf("world: %v", err)
	}

	if p := strings.TrimSpace(*scenarioPath); p != "" {
		scn, err := scenario.Load(p)
		if err != nil {
			logger.Fatalf("load scenario: %v", err)
		}
		if err := w.ApplyScenario(scn); err != nil {
			logger.Fatalf("apply scenario: %v", err)
		}
	}

	if u := strings.TrimSpace(*sensorURL); u != "" {
		w.SetSensor(httpSensor(u))
	}
	w.SetLogSink(func(msg string) { logger.Printf("worker log: %s", msg) })

	worldDir := filepath.Join(*dataDir, "worlds", *worldID)
	_ = os.MkdirAll(worldDir, 0o755)

	tickLog := persistlog.NewTickLogWriter(filepath.Join(worldDir, "ticklog"))
	defer tickLog.Close()

	var idx *indexdb.SQLiteIndex
	if !*disableDB {
		idx, err = indexdb.OpenSQLite(filepath.Join(worldDir, "index.db"))
		if err != nil {
			logger.Fatalf("open index db: %v", err)
		}
		defer idx.Close()
	}
	w.SetTickLogger(fanoutTickLogger{tickLog, idx})

	var programSchema *jsonschema.Schema
	if d := strings.TrimSpace(*schemasDir); d != "" {
		programSchema, err = jsonschema.Compile(filepath.Join(d, "program.schema.json"))
		if err != nil {
			logger.Fatalf("compile program schema: %v", err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		if err := w.Run(ctx); err != nil && err != context.Canceled {
			logger.Printf("world loop: %v", err)
		}
	}()

	wsSrv := ws.NewServer(w, logger, programSchema)
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/ws", wsSrv.Handler())
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(http.StatusOK)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(rw).Encode(w.Metrics())
	})

	httpSrv := &http.Server{Addr: *addr, Handler: mux}
	go func() {
		logger.Printf("listening on %s (world=%s tick_rate=%dHz)", *addr, w.ID(), w.TickRateHz())
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Printf("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = httpSrv.Shutdown(shutdownCtx)
	w.Stop()
}

// httpSensor adapts a plain GET endpoint into the sensing collaborator.
// The body is the reading; non-2xx is a sensing failure.
func httpSensor(baseURL string) world.SensorFunc {
	client := &http.Client{Timeout: 30 * time.Second}
	return func(category string) (string, error) {
		resp, err := client.Get(baseURL + "?category=" + url.QueryEscape(category))
		if err != nil {
			return "", err
		}
		defer resp.Body.Close()
		body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		if err != nil {
			return "", err
		}
		if resp.StatusCode/100 != 2 {
			return "", &sensorHTTPError{status: resp.Status}
		}
		return strings.TrimSpace(string(body)), nil
	}
}

type sensorHTTPError struct{ status string }

func (e *sensorHTTPError) Error() string { return "sensor endpoint: " + e.status }

// fanoutTickLogger writes each entry to the JSONL log and, when enabled,
// the sqlite index.
type fanoutTickLogger struct {
	log *persistlog.TickLogWriter
	idx *indexdb.SQLiteIndex
}

func (f fanoutTickLogger) WriteTick(e world.TickLogEntry) error {
	if f.idx != nil {
		_ = f.idx.WriteTick(e)
	}
	return f.log.WriteTick(e)
}
