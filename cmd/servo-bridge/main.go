// Command servo-bridge answers framed servo/output commands on a serial line
// and drives a bank of servos, binary outputs and a heartbeat indicator.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang/glog"

	"github.com/sweeney/servo-bridge/internal/bank"
	"github.com/sweeney/servo-bridge/internal/config"
	"github.com/sweeney/servo-bridge/internal/lineio"
	"github.com/sweeney/servo-bridge/internal/logic"
	"github.com/sweeney/servo-bridge/internal/mqtt"
	"github.com/sweeney/servo-bridge/internal/protocol"
	"github.com/sweeney/servo-bridge/internal/status"
	"github.com/sweeney/servo-bridge/internal/web"
)

func main() {
	configPath := flag.String("config", "", "YAML config file (defaults when empty)")
	port := flag.String("port", "", `Serial device, "-" for stdin/stdout (overrides config)`)
	sim := flag.Bool("sim", false, "Use the in-memory bank instead of GPIO (the GPIO bank records servo angles without driving PWM)")
	printState := flag.Bool("print-state", false, "Print the initial state response and exit")

	flag.Parse()
	defer glog.Flush()

	cfg, err := loadConfig(*configPath, *port, *sim)
	if err != nil {
		glog.Exitf("fatal: %v", err)
	}
	if err := run(cfg, *printState); err != nil {
		glog.Exitf("fatal: %v", err)
	}
}

// loadConfig reads the config file (if any) and applies flag overrides.
func loadConfig(path, port string, sim bool) (*config.Config, error) {
	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}
	if port != "" {
		cfg.Serial.Port = port
	}
	if sim {
		cfg.GPIO.Sim = true
	}
	return cfg, nil
}

func openBank(cfg *config.Config) (bank.Bank, error) {
	if cfg.GPIO.Sim {
		return bank.NewSimBank(), nil
	}
	b, err := bank.NewRealBank(cfg.GPIO.Chip, cfg.Table())
	if err != nil {
		return nil, fmt.Errorf("init gpio: %w", err)
	}
	glog.Warningf("gpio bank: servo angles are recorded but no PWM is generated")
	return b, nil
}

// openLine returns the command line reader and the response writer.
func openLine(cfg config.SerialConfig) (io.Reader, io.Writer, io.Closer, error) {
	if cfg.Port == "-" {
		return os.Stdin, os.Stdout, io.NopCloser(nil), nil
	}
	p, err := lineio.OpenSerial(lineio.SerialConfig{
		Port:        cfg.Port,
		Baud:        cfg.Baud,
		ReadTimeout: cfg.ReadTimeout(),
	})
	if err != nil {
		return nil, nil, nil, err
	}
	return p, p, p, nil
}

func run(cfg *config.Config, printState bool) error {
	bnk, err := openBank(cfg)
	if err != nil {
		return err
	}
	defer bnk.Close()

	if printState {
		bank.Initialize(bnk)
		fmt.Println(protocol.Encode(protocol.Read(bnk)))
		return nil
	}

	in, out, closer, err := openLine(cfg.Serial)
	if err != nil {
		return err
	}
	defer closer.Close()

	var broker mqtt.Publisher = mqtt.NopPublisher{}
	if cfg.MQTT.Broker != "" {
		broker = mqtt.NewRealPublisher(cfg.MQTT.Broker, cfg.MQTT.ClientID, mqtt.NewTopics(cfg.MQTT.TopicPrefix))
	}
	// The poll loop must never wait on the broker.
	publisher := mqtt.NewAsyncPublisher(broker, mqtt.DefaultQueueDepth)
	defer publisher.Close()

	src, err := bringUp(bnk, in, out)
	if err != nil {
		return err
	}

	tracker := status.NewTracker(time.Now(), status.Config{
		Port:        cfg.Serial.Port,
		Baud:        cfg.Serial.Baud,
		Sim:         cfg.GPIO.Sim,
		PollMs:      int64(cfg.Timing.PollMs),
		DebounceMs:  int64(cfg.Timing.DebounceMs),
		HeartbeatMs: int64(cfg.Timing.HeartbeatMs),
		ReportMs:    int64(cfg.Timing.ReportMs),
		Broker:      cfg.MQTT.Broker,
		HTTPAddr:    cfg.HTTP.Addr,
	})
	tracker.SetState(protocol.Read(bnk))

	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		glog.Warningf("failed to publish startup event: %v", err)
	}

	if cfg.HTTP.Addr != "" {
		srv := web.New(cfg.HTTP.Addr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				glog.Warningf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		glog.Infof("http status server listening on %s", cfg.HTTP.Addr)
	}

	glog.Infof("started: port=%s baud=%d sim=%v poll=%v heartbeat=%v broker=%q",
		cfg.Serial.Port, cfg.Serial.Baud, cfg.GPIO.Sim, cfg.Timing.Poll(), cfg.Timing.Heartbeat(), cfg.MQTT.Broker)

	ticker := time.NewTicker(cfg.Timing.Poll())
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	timing := loopTiming{
		Debounce:  cfg.Timing.Debounce(),
		Heartbeat: cfg.Timing.Heartbeat(),
		Report:    cfg.Timing.Report(),
	}
	return runLoop(src, out, bnk, publisher, publisher, tracker, timing, time.Now, ticker.C, sigCh)
}

// bringUp drives the bank to its power-on state and announces readiness.
// Command lines are read only after that, so no frame can race the
// initial writes.
func bringUp(bnk bank.Bank, in io.Reader, out io.Writer) (*lineio.Source, error) {
	bank.Initialize(bnk)
	if err := lineio.WriteLine(out, protocol.Banner); err != nil {
		return nil, fmt.Errorf("write banner: %w", err)
	}
	return lineio.NewSource(in), nil
}

// lineSource is the read side of the command line.
type lineSource interface {
	Poll() (string, bool)
	Done() <-chan struct{}
	Err() error
}

type loopTiming struct {
	Debounce  time.Duration // input debounce
	Heartbeat time.Duration // indicator toggle interval
	Report    time.Duration // MQTT status heartbeat, 0 disables
}

// runLoop is the single-threaded poll loop. Each tick handles at most one
// command line, then services the indicator heartbeat and the inputs.
func runLoop(src lineSource, out io.Writer, bnk bank.Bank, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, timing loopTiming, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	startTime := now()
	ctrl := protocol.NewController(bnk)
	indicator := logic.NewHeartbeat(timing.Heartbeat, startTime)
	report := logic.NewHeartbeat(timing.Report, startTime)
	detector := logic.NewDetector(bank.NumInputs, timing.Debounce)

	shutdown := func(reason string) {
		event := mqtt.SystemEvent{
			Timestamp: now(),
			Event:     "SHUTDOWN",
			Reason:    reason,
			Retained:  true,
		}
		if tracker != nil {
			if mqttStatus != nil {
				tracker.SetMQTTConnected(mqttStatus.IsConnected())
			}
			event.RawPayload = status.FormatStatusEvent(tracker.Snapshot(), "SHUTDOWN", reason)
		}
		if err := publisher.PublishSystem(event); err != nil {
			glog.Warningf("failed to publish shutdown event: %v", err)
		} else {
			glog.Infof("published shutdown event")
		}
		glog.Flush()
	}

	for {
		select {
		case s := <-sig:
			glog.Infof("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			shutdown(signalName)
			return nil

		case <-src.Done():
			err := src.Err()
			if err != nil {
				glog.Warningf("line reader stopped: %v", err)
				shutdown("READ_ERROR")
				return fmt.Errorf("read line: %w", err)
			}
			glog.Infof("end of input, shutting down")
			shutdown("EOF")
			return nil

		case <-tick:
			t := now()

			if line, ok := src.Poll(); ok {
				handleLine(ctrl, line, t, out, publisher, tracker)
			}

			if indicator.Due(t) {
				bnk.SetIndicator(indicator.State())
				if tracker != nil {
					tracker.SetIndicator(indicator.State())
				}
			}

			levels := make([]bool, bank.NumInputs)
			for i := range levels {
				levels[i] = bnk.Input(i)
			}
			for _, event := range detector.Process(logic.Input{Levels: levels, Time: t}) {
				glog.Infof("event: %s channel=%d states=%v", event.Type, event.Channel, event.States)
				if err := publisher.Publish(event); err != nil {
					glog.Warningf("publish error: %v", err)
				}
			}

			if tracker != nil {
				tracker.UpdateInputs(detector.CurrentState(), detector.IsBaselined(), detector.EventCountsSnapshot())
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
			}

			if detector.IsBaselined() && report.Due(t) {
				hbEvent := mqtt.SystemEvent{
					Timestamp: t,
					Event:     "HEARTBEAT",
				}
				if tracker != nil {
					hbEvent.RawPayload = status.FormatStatusEvent(tracker.Snapshot(), "HEARTBEAT", "")
				}
				glog.V(1).Infof("heartbeat: uptime=%v transitions=%d", t.Sub(startTime), detector.EventCountsSnapshot().Total())
				if err := publisher.PublishSystem(hbEvent); err != nil {
					glog.Warningf("heartbeat publish error: %v", err)
				}
			}
		}
	}
}

// handleLine runs one command line through the controller and answers it.
func handleLine(ctrl *protocol.Controller, line string, at time.Time, out io.Writer, publisher mqtt.Publisher, tracker *status.Tracker) {
	res := ctrl.Handle(line)
	if err := lineio.WriteLine(out, res.Response); err != nil {
		glog.Warningf("write response: %v", err)
	}
	if tracker != nil {
		tracker.RecordFrame(line, res, at)
	}

	if res.Err != nil {
		glog.Warningf("invalid frame %q: %v", line, res.Err)
		return
	}
	glog.V(2).Infof("frame %q -> %q", line, res.Response)

	if err := publisher.PublishState(mqtt.StateEvent{
		Timestamp: at,
		Command:   res.Frame,
		State:     res.Snapshot,
	}); err != nil {
		glog.Warningf("state publish error: %v", err)
	}
}
