package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/itohio/gopulse/pkg/beat"
	"github.com/itohio/gopulse/pkg/config"
	"github.com/itohio/gopulse/pkg/hrv"
	"github.com/itohio/gopulse/pkg/pulse"
	"github.com/itohio/gopulse/pkg/report"
	"github.com/itohio/gopulse/pkg/sampler"
)

func main() {
	var (
		portFlag   = flag.String("p", "", "Serial port override (e.g., COM3 or /dev/ttyACM0)")
		configFlag = flag.String("config", "config.yaml", "Configuration file path")
		mockFlag   = flag.Bool("mock", false, "Use mocked device instead of serial port")
		csvFlag    = flag.String("csv", "", "Record session to CSV file (overrides config)")
		listenFlag = flag.String("listen", "", "Serve live websocket stream on this address (overrides config)")
	)
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Command-line overrides
	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}
	if *csvFlag != "" {
		cfg.Report.CSVPath = *csvFlag
	}
	if *listenFlag != "" {
		cfg.Report.Listen = *listenFlag
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Device
	var device pulse.Device
	if *mockFlag {
		device = pulse.NewMock(&cfg.Mock)
	} else {
		device = pulse.New(cfg.Serial.Port, cfg.Serial.BaudRate, pulse.DefaultBufferSize)
	}

	if err := device.Connect(); err != nil {
		log.Fatalf("Failed to connect to device: %v", err)
	}
	defer device.Close()

	// Latest-sample store bridges the device stream to the poll-style
	// sources the sampler and estimator consume.
	latest := pulse.NewLatest()
	go latest.Watch(ctx, device.Samples())

	// Acquisition core
	ring, err := sampler.NewRing(cfg.Sampling.RingCapacity)
	if err != nil {
		log.Fatalf("Failed to create sample ring: %v", err)
	}

	smp, err := sampler.NewSampler(ring, latest, cfg.Sampling.RateHz)
	if err != nil {
		log.Fatalf("Failed to create sampler: %v", err)
	}

	est, err := beat.NewEstimator(
		cfg.Beat.Window,
		cfg.Beat.Warmup,
		time.Duration(cfg.Beat.MinIntervalMS)*time.Millisecond,
	)
	if err != nil {
		log.Fatalf("Failed to create beat estimator: %v", err)
	}

	// HRV analytics off the accepted beat intervals
	analyzer := hrv.New(time.Duration(cfg.HRV.WindowSeconds * float64(time.Second)))
	est.OnBeat(analyzer.AddInterval)
	analyzer.OnUpdate(func(rmssd float64, count int) {
		log.Printf("HRV: RMSSD %.1f ms over %d intervals", rmssd, count)
	})

	// Reporters
	reporters := report.Multi{report.NewPlotter(os.Stdout)}

	if cfg.Report.CSVPath != "" {
		f, err := os.Create(cfg.Report.CSVPath)
		if err != nil {
			log.Fatalf("Failed to create CSV file: %v", err)
		}
		defer f.Close()

		recorder, err := report.NewCSV(f)
		if err != nil {
			log.Fatalf("Failed to start CSV recorder: %v", err)
		}
		defer recorder.Flush()
		reporters = append(reporters, recorder)
		log.Printf("Recording to %s", cfg.Report.CSVPath)
	}

	var server *http.Server
	if cfg.Report.Listen != "" {
		hub := report.NewHub(cfg.Report.Batch)
		reporters = append(reporters, hub)

		mux := http.NewServeMux()
		mux.Handle("/ws", hub.Handler())
		server = &http.Server{Addr: cfg.Report.Listen, Handler: mux}

		go func() {
			log.Printf("Live stream on ws://%s/ws", cfg.Report.Listen)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("Stream server stopped: %v", err)
			}
		}()
	}

	cons, err := sampler.NewConsumer(ring, latest, est, reporters, cfg.Indicator.Threshold, func(on bool) {
		if err := device.SetLED(on); err != nil {
			log.Printf("Failed to set indicator LED: %v", err)
		}
	})
	if err != nil {
		log.Fatalf("Failed to create consumer: %v", err)
	}

	go smp.Run(ctx)

	log.Printf("Sampling at %d Hz, ring capacity %d", cfg.Sampling.RateHz, ring.Cap())
	cons.Run(ctx)

	if server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}

	if dropped := ring.Dropped(); dropped > 0 {
		log.Printf("Dropped %d samples on a full ring", dropped)
	}
	log.Println("pulsemon stopped")
}
