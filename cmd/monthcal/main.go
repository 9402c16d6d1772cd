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

	"monthcal/internal/calendar"
	"monthcal/internal/capture"
	"monthcal/internal/config"
	"monthcal/internal/ics"
	appLog "monthcal/internal/log"
	"monthcal/internal/model"
	"monthcal/internal/refresh"
	"monthcal/internal/render"
	"monthcal/internal/tui"
	"monthcal/internal/web"
)

// flagConfig holds CLI flag values.
type flagConfig struct {
	configPath  string
	listen      string
	once        bool
	tui         bool
	json        bool
	plain       bool
	offset      int
	day         int
	capturePath string
}

func main() {
	appLog.Info("monthcal starting", "version", "0.1.0")

	flags := parseFlags()

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}
	appLog.SetLevel(appLog.ParseLevel(conf.LogLevel))

	// CLI --listen overrides config file listen if provided.
	if flags.listen != "" {
		conf.Listen = flags.listen
	}

	appLog.Info("effective config",
		"listen", conf.Listen,
		"timezone", conf.Timezone,
		"refresh", conf.RefreshCron,
		"ics_count", len(conf.ICS),
		"events_file", conf.EventsFile,
		"start_weekday", conf.Widget.StartWeekday,
		"locale", conf.Widget.Locale,
		"once", flags.once,
		"tui", flags.tui,
	)

	if err := refresh.ValidateSchedule(conf.RefreshCron); err != nil {
		appLog.Error("invalid refresh schedule", err)
		os.Exit(1)
	}

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	static, err := loadEventsFile(conf.EventsFile)
	if err != nil {
		appLog.Error("failed to load events file", err, "path", conf.EventsFile)
		os.Exit(1)
	}

	loader := icsLoader(conf)
	opts := conf.CalendarOptions()

	switch {
	case flags.once:
		err = runOnce(ctx, os.Stdout, flags, opts, loader, static)
	case flags.tui:
		err = runTUI(ctx, opts, loader, static)
	default:
		err = runServer(ctx, conf, flags, opts, loader, static)
	}
	if err != nil {
		appLog.Error("monthcal failed", err)
		os.Exit(1)
	}

	// Let in-flight log lines and shutdown hooks finish.
	time.Sleep(100 * time.Millisecond)
	appLog.Info("monthcal exiting")
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.StringVar(&cfg.configPath, "config", "./monthcal.yaml", "Path to config file")
	flag.StringVar(&cfg.listen, "listen", "", "HTTP listen address (overrides config if set)")
	flag.BoolVar(&cfg.once, "once", false, "Load events, print one month and exit")
	flag.BoolVar(&cfg.tui, "tui", false, "Run the interactive terminal calendar")
	flag.BoolVar(&cfg.json, "json", false, "With -once: print the render model as JSON")
	flag.BoolVar(&cfg.plain, "plain", false, "With -once: print an uncoloured text grid")
	flag.IntVar(&cfg.offset, "offset", 0, "With -once: months to move from today before printing")
	flag.IntVar(&cfg.day, "day", 0, "With -once: day of the shown month to select before printing")
	flag.StringVar(&cfg.capturePath, "capture", "", "Serve mode: write a PNG of /calendar here after each refresh")

	flag.Parse()

	return cfg
}

// icsLoader builds the ICS loader for the configured sources, or nil when
// there are none.
func icsLoader(conf *config.Config) refresh.EventLoader {
	sources := make([]ics.Source, 0, len(conf.ICS))
	for _, csrc := range conf.ICS {
		if csrc.URL == "" {
			continue
		}
		id := csrc.ID
		if id == "" {
			if csrc.Name != "" {
				id = csrc.Name
			} else {
				id = csrc.URL
			}
		}
		sources = append(sources, ics.Source{ID: id, URL: csrc.URL})
	}
	if len(sources) == 0 {
		return nil
	}
	return &ics.Loader{
		Fetcher:  ics.NewFetcher(conf.CacheDir, nil),
		Sources:  sources,
		Location: conf.Location(),
	}
}

// loadAll runs one refresh and returns the merged events. Whatever was
// loaded is returned alongside a partial-load error.
func loadAll(ctx context.Context, loader refresh.EventLoader, static []model.Event) ([]model.Event, error) {
	events := model.CloneEvents(static)
	r := refresh.New(loader, static, func(evs []model.Event) { events = evs })
	err := r.RunOnce(ctx)
	return events, err
}

func runOnce(ctx context.Context, out io.Writer, flags flagConfig, opts calendar.Options, loader refresh.EventLoader, static []model.Event) error {
	events, err := loadAll(ctx, loader, static)
	if err != nil {
		appLog.Error("event refresh incomplete", err)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	opts.Events = events

	var renderer calendar.Renderer
	switch {
	case flags.json:
		renderer = render.JSON{W: out, Indent: true}
	case flags.plain:
		renderer = calendar.RendererFunc(func(m calendar.RenderModel) error {
			_, err := fmt.Fprintln(out, render.PlainFrame(m))
			return err
		})
	default:
		renderer = render.Terminal{W: out}
	}

	// Navigate silently, then paint the final state once.
	opts.Renderer = nil
	opts.DayClicked = nil
	cal := calendar.New(opts)
	for i := 0; i < abs(flags.offset); i++ {
		if flags.offset < 0 {
			cal.Prev()
		} else {
			cal.Next()
		}
	}
	if flags.day != 0 && !cal.SelectDay(flags.day) {
		appLog.Warn("ignoring -day outside the shown month", "day", flags.day)
	}

	if err := renderer.Render(cal.Model()); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	if !flags.json {
		for _, ev := range cal.EventsOn(cal.SelectedDay()) {
			fmt.Fprintf(out, "  %s  %s\n", ev.Start.Format("2006-01-02 15:04"), ev.Title)
		}
	}
	return nil
}

func runTUI(ctx context.Context, opts calendar.Options, loader refresh.EventLoader, static []model.Event) error {
	events, err := loadAll(ctx, loader, static)
	if err != nil {
		appLog.Error("event refresh incomplete", err)
	}
	opts.Events = events
	return tui.Run(ctx, opts)
}

func runServer(ctx context.Context, conf *config.Config, flags flagConfig, opts calendar.Options, loader refresh.EventLoader, static []model.Event) error {
	opts.Events = static
	srv := web.NewServer(conf, opts)
	srv.PreviewPath = flags.capturePath

	apply := func(events []model.Event) {
		srv.SetFeed(events)
		if flags.capturePath != "" {
			go captureCalendar(ctx, conf, flags.capturePath)
		}
	}
	r := refresh.New(loader, static, apply)

	go func() {
		if err := r.RunOnce(ctx); err != nil {
			appLog.Error("initial refresh failed", err)
		}
	}()

	if loader != nil {
		if err := r.Start(ctx, conf.RefreshCron); err != nil {
			return err
		}
	}

	return srv.ListenAndServe(ctx, conf.Listen)
}

// captureCalendar writes a PNG of the served page once the server answers.
func captureCalendar(ctx context.Context, conf *config.Config, path string) {
	if conf.BasicAuth != nil && conf.BasicAuth.Username != "" {
		appLog.Warn("capture skipped: basic auth is enabled", "path", path)
		return
	}
	base := "http://" + conf.Listen
	if !waitHealthy(ctx, base+"/health") {
		return
	}
	err := capture.PNG(ctx, capture.Options{
		URL:         base + "/calendar",
		OutputPath:  path,
		ElementOnly: true,
	})
	if err != nil {
		appLog.Error("calendar capture failed", err, "path", path)
	}
}

func waitHealthy(ctx context.Context, url string) bool {
	client := &http.Client{Timeout: 2 * time.Second}
	for i := 0; i < 20; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return false
		}
		if resp, err := client.Do(req); err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return true
			}
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(250 * time.Millisecond):
		}
	}
	appLog.Warn("server did not become healthy; capture skipped", "url", url)
	return false
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
