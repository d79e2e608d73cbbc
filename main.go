package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"SketchBoard/internal/board"
	"SketchBoard/internal/config"
	"SketchBoard/internal/export"
	sbnet "SketchBoard/internal/net"
	"SketchBoard/internal/persist"
	"SketchBoard/internal/render"
	"SketchBoard/internal/store"
	"SketchBoard/internal/ui"
)

func main() {
	configPath := flag.String("config", config.DefaultPath(), "path to the TOML config file")
	serve := flag.Bool("serve", false, "run the drawing server instead of the board")
	exportPath := flag.String("export", "", "write the saved drawing to this .pdf or .png file and exit")
	user := flag.String("user", "", "user whose drawing is edited (overrides user_id)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *user != "" {
		cfg.UserID = *user
	}

	switch {
	case *serve:
		err = runServer(cfg)
	case *exportPath != "":
		err = runExport(cfg, *exportPath)
	default:
		err = runBoard(cfg)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func openStore(cfg *config.Config) (store.DocumentStore, error) {
	if cfg.Store.Directory == "" {
		log.Println("[STORE] Keeping drawings in memory")
		return store.NewMemoryStore(), nil
	}
	fs, err := store.NewFileStore(cfg.Store.Directory)
	if err != nil {
		return nil, err
	}
	log.Printf("[STORE] Keeping drawings in %s", fs.Dir())
	return fs, nil
}

func runServer(cfg *config.Config) error {
	log.Println("Starting as drawing SERVER")
	docs, err := openStore(cfg)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := sbnet.NewServer(docs)
	return srv.ListenAndServe(ctx, cfg.Store.Listen, func(addr net.Addr) {
		port := sbnet.PortOf(addr)
		log.Printf("Share this address with clients: %s:%d", sbnet.OutgoingIP(), port)
		if !cfg.Store.Discover {
			return
		}
		mdnsServer, err := sbnet.Advertise(port)
		if err != nil {
			log.Printf("[MDNS] %v", err)
			return
		}
		go func() {
			<-ctx.Done()
			mdnsServer.Shutdown()
		}()
	})
}

// remoteStore connects to the configured server, finds one over mDNS, or
// falls back to a store inside this process.
func remoteStore(cfg *config.Config) (persist.RemoteStore, func(), error) {
	addr := cfg.Store.Address
	if addr == "" && cfg.Store.Discover {
		found, err := sbnet.Discover(cfg.Store.Timeout)
		if err != nil {
			log.Printf("[MDNS] %v; using a local store", err)
		}
		addr = found
	}
	if addr == "" {
		docs, err := openStore(cfg)
		if err != nil {
			return nil, nil, err
		}
		return store.Local{Store: docs}, func() {}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Store.Timeout)
	defer cancel()
	client, err := sbnet.Dial(ctx, addr)
	if err != nil {
		return nil, nil, err
	}
	return client, func() { client.Close() }, nil
}

func newRenderer(cfg *config.Config) *render.Raster {
	r := render.NewRaster(cfg.Canvas.Background.NRGBA())
	r.Text = render.NewTextFace(cfg.Tools.FontSize)
	return r
}

func runBoard(cfg *config.Config) error {
	log.Printf("Starting board for %s", cfg.UserID)
	remote, closeStore, err := remoteStore(cfg)
	if err != nil {
		return fmt.Errorf("connect to drawing store: %w", err)
	}
	defer closeStore()

	a := ui.NewApp()
	status := ui.NewStatus()
	renderer := newRenderer(cfg)
	b := board.New(board.Options{
		UserID:       cfg.UserID,
		Gateway:      persist.NewGateway(remote),
		Renderer:     renderer,
		Notifier:     status,
		Measure:      renderer.Text.Measure,
		Style:        cfg.Style(),
		HistoryLimit: cfg.Canvas.HistoryLimit,
		Timeout:      cfg.Store.Timeout,
	})

	ui.RunApp(a, b, status, ui.Window{
		Title:       "SketchBoard - " + cfg.UserID,
		Size:        image.Pt(cfg.Canvas.Width, cfg.Canvas.Height),
		Background:  cfg.Canvas.Background,
		Renderer:    renderer,
		LoadOnStart: true,
	})
	return nil
}

func runExport(cfg *config.Config, path string) error {
	remote, closeStore, err := remoteStore(cfg)
	if err != nil {
		return fmt.Errorf("connect to drawing store: %w", err)
	}
	defer closeStore()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Store.Timeout+time.Second)
	defer cancel()
	doc, found, err := persist.NewGateway(remote).Load(ctx, cfg.UserID)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("no saved drawing for %s", cfg.UserID)
	}

	size := image.Pt(cfg.Canvas.Width, cfg.Canvas.Height)
	if err := export.ToFile(path, doc, size, newRenderer(cfg)); err != nil {
		return err
	}
	log.Printf("Exported %d elements and %d text items to %s", len(doc.Elements), len(doc.TextItems), path)
	return nil
}
