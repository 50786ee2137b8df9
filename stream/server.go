package stream

import (
	"errors"
	"fmt"
	"io/ioutil"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo"
	"github.com/labstack/echo/middleware"
	log "github.com/sirupsen/logrus"
	"github.com/tmpim/sixheat"
	"github.com/tmpim/sixheat/input"
)

// ContentType is the media type of rendered heatmaps.
const ContentType = "image/x-sixel"

// Limits on requests.
const (
	BodyLimit   = "4M"
	MaxCellSize = 256
	MaxMargin   = 256
	MaxCols     = 1024
	// MaxExpanded bounds the response of /api/expand.
	MaxExpanded = 16 << 20
)

var upgrader = websocket.Upgrader{
	HandshakeTimeout: 5 * time.Second,
}

// Register adds the API routes of the manager to e.
func Register(e *echo.Echo, mgr *Manager) {
	api := e.Group("/api", middleware.BodyLimit(BodyLimit))

	api.GET("/client", func(c echo.Context) error {
		ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
		if err != nil {
			return err
		}
		defer ws.Close()

		mgr.HandleConn(ws)

		return nil
	})

	api.POST("/render", func(c echo.Context) error {
		opts, err := queryOptions(c, mgr.Options())
		if err != nil {
			return requestError(err)
		}

		tokens, err := input.ReadTokens(c.Request().Body)
		if err != nil {
			return requestError(err)
		}

		result, err := mgr.Render(c.Request().Header.Get("X-Request-Id"), tokens, opts)
		if err != nil {
			return requestError(err)
		}

		if result.Empty() {
			return c.NoContent(http.StatusNoContent)
		}

		log.WithFields(log.Fields{
			"rows":  result.Grid.Rows,
			"cols":  result.Grid.Cols,
			"bytes": len(result.Sixel),
		}).Debug("sixheat stream: rendered heatmap")

		return c.Blob(http.StatusOK, ContentType, result.Sixel)
	})

	api.POST("/expand", func(c echo.Context) error {
		data, err := ioutil.ReadAll(c.Request().Body)
		if err != nil {
			return err
		}

		expanded, err := sixheat.ExpandLimit(data, MaxExpanded)
		if err != nil {
			return requestError(err)
		}

		return c.Blob(http.StatusOK, ContentType, expanded)
	})

	api.GET("/last", func(c echo.Context) error {
		stats, ok := mgr.Last()
		if !ok {
			return c.NoContent(http.StatusNoContent)
		}

		return c.JSON(http.StatusOK, &stats)
	})
}

// requestError maps an error caused by a request to an HTTP error.
func requestError(err error) error {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	if errors.Is(err, sixheat.ErrStreamTooLarge) || errors.Is(err, sixheat.ErrImageTooLarge) {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, err.Error())
	}

	return echo.NewHTTPError(http.StatusBadRequest, err.Error())
}

func queryOptions(c echo.Context, opts sixheat.Options) (sixheat.Options, error) {
	ints := map[string]struct {
		dst *int
		max int
	}{
		"cell":    {&opts.CellSize, MaxCellSize},
		"margin":  {&opts.MarginSize, MaxMargin},
		"cols":    {&opts.MaxCols, MaxCols},
		"min_run": {&opts.MinRun, 0},
	}
	for name, param := range ints {
		raw := c.QueryParam(name)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return opts, err
		}
		if param.max > 0 && v > param.max {
			return opts, fmt.Errorf("%s must be at most %d, got %d", name, param.max, v)
		}
		*param.dst = v
	}

	bools := map[string]*bool{
		"compress": &opts.Compress,
		"fold":     &opts.Fold,
	}
	for name, dst := range bools {
		raw := c.QueryParam(name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return opts, err
		}
		*dst = v
	}

	if raw := c.QueryParam("palette"); raw != "" {
		palette, err := sixheat.ParsePalette(strings.ReplaceAll(raw, " ", ""))
		if err != nil {
			return opts, err
		}
		opts.Palette = palette
	}

	return opts, opts.Validate()
}
