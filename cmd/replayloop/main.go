package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/video-system/go-replay-loop/pkg/api"
	"github.com/video-system/go-replay-loop/pkg/loop"
	"github.com/video-system/go-replay-loop/pkg/platform"
	"github.com/video-system/go-replay-loop/pkg/sink"
	"github.com/video-system/go-replay-loop/pkg/source"
	"github.com/video-system/go-replay-loop/pkg/tui"

	// Source and sink plugins register themselves on import.
	_ "github.com/video-system/go-replay-loop/internal/screen"
	_ "github.com/video-system/go-replay-loop/internal/snapshot"
	_ "github.com/video-system/go-replay-loop/internal/synth"
)

const version = "1.0.0"

// renderTick is the consumer-path cadence: how often the playback cursor
// advances and the current frame is drawn.
const renderTick = time.Second / 60

func main() {
	configPath := flag.String("config", "config.yaml", "Path to config file")
	withTUI := flag.Bool("tui", false, "Run the interactive terminal UI")
	flag.Parse()

	// Load configuration
	cfg, err := loop.LoadConfig(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			log.Printf("Config %s not found, using defaults", *configPath)
			cfg = loop.DefaultConfig()
		} else {
			log.Fatalf("Failed to load config: %v", err)
		}
	}

	// Open the video source
	src, ok := source.Get(cfg.Source.Type)
	if !ok {
		log.Fatalf("Unknown source type: %s", cfg.Source.Type)
	}
	if err := src.Open(source.Config{
		Device:    cfg.Source.Device,
		Width:     cfg.Source.Width,
		Height:    cfg.Source.Height,
		Framerate: cfg.Source.Framerate,
	}); err != nil {
		log.Fatalf("Failed to open source %s: %v", cfg.Source.Type, err)
	}
	defer src.Close()

	info := src.Info()
	log.Printf("Source: %s (%dx%d @ %.1f fps)", src.Name(), info.Width, info.Height, info.Framerate)

	// Open the render sink, if any
	var renderer sink.Sink
	if cfg.Render.Type != "" && cfg.Render.Type != "none" {
		s, ok := sink.Get(cfg.Render.Type)
		if !ok {
			log.Fatalf("Unknown sink type: %s", cfg.Render.Type)
		}
		if err := s.Open(sink.Config{Path: cfg.Render.Path}); err != nil {
			log.Fatalf("Failed to open sink %s: %v", cfg.Render.Type, err)
		}
		defer s.Close()
		renderer = s
	}

	// Create the loop engine
	engine := loop.NewEngine(cfg.Buffer, info.Framerate)

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("Shutdown signal received...")
		cancel()
	}()

	// Register with the platform and start heartbeats if configured
	if cfg.Platform.Enabled && cfg.Platform.URL != "" {
		client := platform.New(platform.Config{
			URL:    cfg.Platform.URL,
			APIKey: cfg.Platform.APIKey,
		})

		instanceID, err := registerInstance(ctx, client, cfg, info)
		if err != nil {
			log.Printf("Warning: Failed to register with platform: %v", err)
		} else {
			log.Printf("Registered with platform as instance: %s", instanceID)
			go runHeartbeat(ctx, client, instanceID, cfg, engine)
		}
	}

	// Create and start API server
	apiServer := api.NewServer(api.ServerConfig{
		Host:   cfg.API.Host,
		Port:   cfg.API.Port,
		Engine: engine,
	})

	go func() {
		if err := apiServer.Start(); err != nil {
			log.Printf("API server error: %v", err)
		}
	}()

	// Producer path: offer one candidate frame per source tick
	go runCapture(ctx, src, engine, info.Framerate)

	// Consumer path: advance playback and draw the current frame
	go runRender(ctx, engine, renderer)

	if *withTUI {
		if err := tui.Run(engine); err != nil {
			log.Printf("TUI error: %v", err)
		}
		cancel()
	} else {
		<-ctx.Done()
	}

	apiServer.Stop()
	engine.Clear()
	log.Println("Replay loop stopped")
}

// rateWindow is how much wall-clock time the capture loop averages over
// before comparing the delivered frame rate against the nominal one.
const rateWindow = 5 * time.Second

// runCapture reads frames from the source at its native rate and hands each
// one to the engine, which decides whether to keep it. The delivered rate is
// measured as frames arrive; if it drifts from the nominal rate the engine
// is retuned so throttling and capacity planning follow what the source
// actually produces.
func runCapture(ctx context.Context, src source.Source, engine *loop.Engine, fps float64) {
	if fps <= 0 {
		fps = 30
	}
	ticker := time.NewTicker(time.Duration(float64(time.Second) / fps))
	defer ticker.Stop()

	frames := 0
	windowStart := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h, err := src.ReadFrame(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Printf("Warning: read frame: %v", err)
				continue
			}
			engine.OnFrameAvailable(h, time.Now())

			frames++
			if elapsed := time.Since(windowStart); elapsed >= rateWindow {
				measured := float64(frames) / elapsed.Seconds()
				if measured > 0 && math.Abs(measured-fps) > fps*0.1 {
					log.Printf("Source rate drifted: %.1f fps delivered vs %.1f nominal", measured, fps)
					engine.SetSourceFPS(measured)
					fps = measured
				}
				frames = 0
				windowStart = time.Now()
			}
		}
	}
}

// runRender ticks the playback cursor and draws whatever frame it lands on.
func runRender(ctx context.Context, engine *loop.Engine, renderer sink.Sink) {
	ticker := time.NewTicker(renderTick)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			engine.OnTick(now.Sub(last))
			last = now

			h := engine.CurrentFrame()
			if h == nil {
				continue
			}
			if renderer != nil {
				if err := renderer.Draw(ctx, h); err != nil {
					log.Printf("Warning: draw frame: %v", err)
				}
			}
			if err := h.Close(); err != nil {
				log.Printf("Warning: release drawn frame: %v", err)
			}
		}
	}
}

// registerInstance registers this replay instance with the platform
func registerInstance(ctx context.Context, client *platform.Client, cfg *loop.Config, info source.Info) (string, error) {
	hostname, _ := os.Hostname()

	instanceName := cfg.Platform.InstanceName
	if instanceName == "" {
		instanceName = fmt.Sprintf("Replay Loop (%s)", hostname)
	}

	instanceURL := fmt.Sprintf("http://%s:%d", hostname, cfg.API.Port)
	if cfg.API.Host != "" && cfg.API.Host != "0.0.0.0" {
		instanceURL = fmt.Sprintf("http://%s:%d", cfg.API.Host, cfg.API.Port)
	}

	req := platform.RegisterRequest{
		ID:       uuid.NewString(),
		Name:     instanceName,
		URL:      instanceURL,
		Hostname: hostname,
		Version:  version,
		Capabilities: platform.Capabilities{
			SourceTypes:   []string{"synth", "screen"},
			MaxResolution: fmt.Sprintf("%dx%d", info.Width, info.Height),
			PingPong:      true,
		},
	}

	instance, err := client.Register(ctx, req)
	if err != nil {
		return "", err
	}
	return instance.ID, nil
}

// runHeartbeat runs a periodic heartbeat to keep the platform updated
func runHeartbeat(ctx context.Context, client *platform.Client, instanceID string, cfg *loop.Config, engine *loop.Engine) {
	interval := time.Duration(cfg.Platform.HeartbeatSecs) * time.Second
	if interval <= 0 {
		interval = 10 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// Send final offline heartbeat
			offlineCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			_ = client.Heartbeat(offlineCtx, instanceID, platform.HeartbeatRequest{
				Status: platform.StatusOffline,
			})
			cancel()
			return
		case <-ticker.C:
			st := engine.Status()
			status := platform.StatusOnline
			if st.Mode == "playing" {
				status = platform.StatusPlaying
			}

			if err := client.Heartbeat(ctx, instanceID, platform.HeartbeatRequest{
				Status:     status,
				Mode:       st.Mode,
				FrameCount: st.FrameCount,
				Capacity:   st.Capacity,
				LoopCount:  st.LoopCount,
				SourceFPS:  st.SourceFPS,
			}); err != nil {
				log.Printf("Heartbeat failed: %v", err)
			}
		}
	}
}
