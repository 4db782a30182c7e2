package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"math/rand/v2"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/ayn2op/vscroll"
	"github.com/ayn2op/vscroll/internal/config"
)

func main() {
	var (
		configPath = flag.String("config", config.DefaultPath(), "path of the TOML configuration file")
		mode       = flag.String("mode", "list", "data to show: list, log or paged")
		rows       = flag.Int("rows", 1_000_000, "number of rows in list and paged mode")
		logPath    = flag.String("log", "vscroll.log", "file to write logs to")
	)
	flag.Parse()

	// The terminal belongs to the UI, so logs go to a file.
	logFile, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
	if err != nil {
		log.Fatalf("Could not open log file: %v", err)
	}
	defer logFile.Close()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	level, _ := cfg.Level()
	vscroll.SetLogLevel(level)
	logger := slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: vscroll.LogLevel()}))
	vscroll.SetLogger(logger)

	if *mode == "log" {
		cfg.Viewport.AppendOnly = true
	}

	if err := run(cfg, logger, *mode, *rows); err != nil {
		logger.Error("demo failed", "err", err)
		log.Fatal(err)
	}
}

func run(cfg *config.Config, logger *slog.Logger, mode string, rows int) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	app := vscroll.NewApplication()

	strategy, err := vscroll.NewFixedSizeStrategy(cfg.Strategy.ItemSize, cfg.Strategy.MinBuffer, cfg.Strategy.MaxBuffer)
	if err != nil {
		return fmt.Errorf("create strategy: %w", err)
	}
	opts := append(cfg.ViewportOptions(),
		vscroll.WithScheduler(app.Scheduler()),
		vscroll.WithLogger(logger),
		vscroll.WithScrollDispatcher(vscroll.NewScrollDispatcher(app.Scheduler())),
	)
	viewport, err := vscroll.NewViewport(strategy, opts...)
	if err != nil {
		return fmt.Errorf("create viewport: %w", err)
	}

	itemWidth := int(cfg.Strategy.ItemSize)
	repeater, err := vscroll.NewRepeater(viewport,
		vscroll.TextTemplate(formatRow, func(item *vscroll.TextItem[row]) {
			item.SetStriped(true).SetWidth(itemWidth)
		}),
		vscroll.WithTrackBy(func(_ int, r row) any { return r.id }),
		vscroll.WithTemplateCacheSize[row](cfg.Repeater.TemplateCacheSize),
		vscroll.WithRepeaterLogger[row](logger),
	)
	if err != nil {
		return fmt.Errorf("create repeater: %w", err)
	}
	defer repeater.Destroy()

	switch mode {
	case "list":
		err = repeater.SetData(makeRows(rows))
	case "paged":
		source := vscroll.NewPagedDataSource(rows, 100, fetchPage, app.Scheduler()).
			SetErrorFunc(func(page int, err error) {
				logger.Warn("page failed to load", "page", page, "err", err)
			})
		err = repeater.SetDataSource(source)
	case "log":
		stream := vscroll.NewReplayStream[[]row]()
		err = repeater.SetStream(stream)
		go appendLines(ctx, app, stream)
	default:
		err = fmt.Errorf("unknown mode %q", mode)
	}
	if err != nil {
		return err
	}

	root := newLayout(viewport)
	viewport.ScrolledIndexChange().Subscribe(root.setScrolledIndex)
	if err := viewport.Init(); err != nil {
		return fmt.Errorf("init viewport: %w", err)
	}
	defer viewport.Destroy()

	go func() {
		<-ctx.Done()
		app.Stop()
	}()
	return app.SetRoot(root).Run()
}

type row struct {
	id     int
	text   string
	loaded bool
}

func formatRow(ctx vscroll.ItemContext[row]) string {
	if !ctx.Item.loaded {
		return fmt.Sprintf("%8d  loading…", ctx.Index)
	}
	return fmt.Sprintf("%8d  %s", ctx.Index, ctx.Item.text)
}

func makeRows(n int) []row {
	rows := make([]row, n)
	for i := range rows {
		rows[i] = row{id: i, text: "row " + strconv.Itoa(i), loaded: true}
	}
	return rows
}

func fetchPage(ctx context.Context, page int) ([]row, error) {
	select {
	case <-time.After(time.Duration(50+rand.IntN(200)) * time.Millisecond):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	rows := make([]row, 100)
	for i := range rows {
		id := page*100 + i
		rows[i] = row{id: id, text: fmt.Sprintf("page %d item %d", page, i), loaded: true}
	}
	return rows, nil
}

// appendLines emits a growing log until ctx is done. lines is only touched
// by updates queued on the application goroutine.
func appendLines(ctx context.Context, app *vscroll.Application, stream *vscroll.Stream[[]row]) {
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	var lines []row
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			text := now.Format(time.TimeOnly) + " event"
			app.QueueUpdate(func() {
				lines = append(lines, row{id: len(lines), text: text, loaded: true})
				stream.Emit(lines[:len(lines):len(lines)])
			})
		}
	}
}
