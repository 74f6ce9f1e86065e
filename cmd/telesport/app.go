package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/Akima-zed/teleSport/src/config"
	"github.com/Akima-zed/teleSport/src/dashboard"
	"github.com/Akima-zed/teleSport/src/datasource"
	"github.com/Akima-zed/teleSport/src/loader"
	"github.com/Akima-zed/teleSport/src/render"
	"github.com/Akima-zed/teleSport/src/selection"
)

func setupMetrics() (func(context.Context) error, error) {
	exp, err := stdoutmetric.New(stdoutmetric.WithWriter(os.Stderr), stdoutmetric.WithPrettyPrint())
	if err != nil {
		return nil, fmt.Errorf("metrics exporter: %w", err)
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp, sdkmetric.WithInterval(time.Minute))),
	)
	otel.SetMeterProvider(mp)
	return mp.Shutdown, nil
}

func newSource(c config.Config) loader.DataSource {
	if c.DataURL != "" {
		return datasource.NewHTTPSource(c.DataURL, c.FetchTimeout)
	}
	return datasource.NewFileSource(c.DataFile)
}

// pageConfig wires a view to the configured source and a fresh image target.
func pageConfig(c config.Config, id string, nav selection.Navigator) (dashboard.Config, *render.ImageTarget, error) {
	r, err := render.NewRenderer(render.WithPalette(c.Palette...))
	if err != nil {
		return dashboard.Config{}, nil, err
	}
	target := render.NewImageTarget(id, c.ChartWidth)
	return dashboard.Config{Source: newSource(c), Renderer: r, Target: target, Navigator: nav}, target, nil
}

// wait blocks until a view load settles, bounded by the fetch timeout.
func wait(ctx context.Context, done <-chan bool, timeout time.Duration) error {
	t := time.NewTimer(timeout + time.Second)
	defer t.Stop()
	select {
	case <-done:
		return nil
	case <-t.C:
		return errors.New("load did not finish in time")
	case <-ctx.Done():
		return ctx.Err()
	}
}

func outPath(out, name string) string {
	if out != "" {
		return out
	}
	return filepath.Join(cfg.OutDir, name)
}

func writePNG(t *render.ImageTarget, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := t.WritePNG(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
