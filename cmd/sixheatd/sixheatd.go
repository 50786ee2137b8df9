package main

import (
	"flag"

	"github.com/labstack/echo"
	"github.com/labstack/echo/middleware"
	log "github.com/sirupsen/logrus"
	"github.com/tmpim/sixheat"
	"github.com/tmpim/sixheat/stream"
)

var (
	listen     = flag.String("listen", ":9999", "set the address to listen on")
	cellSize   = flag.Int("cell", 16, "set the default size of a cell in pixels")
	marginSize = flag.Int("margin", 4, "set the default margin between cells in pixels")
	maxCols    = flag.Int("cols", 32, "set the default maximum number of cells per row")
	compress   = flag.Bool("compress", true, "compress runs of identical sixels by default")
	debug      = flag.Bool("debug", false, "log debug information")
)

func main() {
	flag.Parse()

	if *debug {
		log.SetLevel(log.DebugLevel)
	}

	opts := sixheat.DefaultOptions()
	opts.CellSize = *cellSize
	opts.MarginSize = *marginSize
	opts.MaxCols = *maxCols
	opts.Compress = *compress

	if err := opts.Validate(); err != nil {
		log.Fatal("Invalid options: ", err)
	}

	mgr := stream.NewManager(opts)

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	stream.Register(e, mgr)

	log.WithField("address", *listen).Info("sixheat stream: listening")
	log.Fatal(e.Start(*listen))
}
