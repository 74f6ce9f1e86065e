package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Akima-zed/teleSport/src/analysis"
	"github.com/Akima-zed/teleSport/src/chartsync"
	"github.com/Akima-zed/teleSport/src/dashboard"
	"github.com/Akima-zed/teleSport/src/datasource"
	"github.com/Akima-zed/teleSport/src/logging"
	"github.com/Akima-zed/teleSport/src/render"
	"github.com/Akima-zed/teleSport/src/selection"
	"github.com/Akima-zed/teleSport/src/types"
)

var (
	renderOut   string
	renderClick string
	countryOut  string
	watchOut    string

	summaryCmd = &cobra.Command{
		Use:   "summary",
		Short: "Print the dashboard indicators and the ordered country table",
		Args:  cobra.NoArgs,
		RunE:  runSummary,
	}
	renderCmd = &cobra.Command{
		Use:   "render",
		Short: "Render the medals-per-country pie chart to PNG",
		Args:  cobra.NoArgs,
		RunE:  runRender,
	}
	countryCmd = &cobra.Command{
		Use:   "country NAME",
		Short: "Print one country's figures and render its medals-per-edition chart",
		Args:  cobra.ExactArgs(1),
		RunE:  runCountry,
	}
	watchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Re-render the dashboard chart whenever the dataset file changes",
		Args:  cobra.NoArgs,
		RunE:  runWatch,
	}
)

func init() {
	renderCmd.Flags().StringVar(&renderOut, "out", "", "output PNG (default <out_dir>/home.png)")
	renderCmd.Flags().StringVar(&renderClick, "click", "", "simulate a click at x,y and print the route")
	countryCmd.Flags().StringVar(&countryOut, "out", "", "output PNG (default <out_dir>/<country>.png)")
	watchCmd.Flags().StringVar(&watchOut, "out", "", "output PNG (default <out_dir>/home.png)")
}

// openHome loads the dashboard into a mounted image target.
func openHome(ctx context.Context, nav selection.Navigator) (*dashboard.HomeView, *render.ImageTarget, error) {
	pc, target, err := pageConfig(cfg, "home", nav)
	if err != nil {
		return nil, nil, err
	}
	v, err := dashboard.NewHomeView(pc, cfg.Criterion())
	if err != nil {
		return nil, nil, err
	}
	target.Mount()
	if err := v.Mounted(); err != nil {
		v.Destroy()
		return nil, nil, err
	}
	if err := wait(ctx, v.Init(ctx), cfg.FetchTimeout); err != nil {
		v.Destroy()
		return nil, nil, err
	}
	if err := v.Err(); err != nil {
		v.Destroy()
		return nil, nil, err
	}
	return v, target, nil
}

func runSummary(cmd *cobra.Command, _ []string) error {
	v, _, err := openHome(cmd.Context(), nil)
	if err != nil {
		return err
	}
	defer v.Destroy()
	m := v.Model()
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s (sorted by %s)\n", m.Title, m.Sort)
	printIndicators(cmd, m.Indicators)
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tCOUNTRY\tMEDALS\tATHLETES\tEDITIONS")
	for i, e := range m.Ordered {
		em := analysis.EntityMetrics(e)
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\n", i+1, e.Name, em.TotalMedals, em.TotalAthletes, em.DistinctEditions)
	}
	return tw.Flush()
}

func printIndicators(cmd *cobra.Command, ind []analysis.Indicator) {
	parts := make([]string, len(ind))
	for i, in := range ind {
		parts[i] = fmt.Sprintf("%s: %d", in.Label, in.Value)
	}
	fmt.Fprintln(cmd.OutOrStdout(), strings.Join(parts, "  "))
}

func runRender(cmd *cobra.Command, _ []string) error {
	nav := &selection.RouteRecorder{}
	v, target, err := openHome(cmd.Context(), nav)
	if err != nil {
		return err
	}
	defer v.Destroy()
	path := outPath(renderOut, "home.png")
	if err := writePNG(target, path); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)

	if renderClick != "" {
		ev, err := parsePoint(renderClick)
		if err != nil {
			return err
		}
		id, ok := v.Click(ev)
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "no country under pointer")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s\n", id, nav.Last())
	}
	return nil
}

func parsePoint(s string) (chartsync.PointerEvent, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return chartsync.PointerEvent{}, fmt.Errorf("click wants x,y, got %q", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return chartsync.PointerEvent{}, fmt.Errorf("click x: %w", err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return chartsync.PointerEvent{}, fmt.Errorf("click y: %w", err)
	}
	return chartsync.PointerEvent{X: x, Y: y}, nil
}

func runCountry(cmd *cobra.Command, args []string) error {
	name := args[0]
	pc, target, err := pageConfig(cfg, "country", nil)
	if err != nil {
		return err
	}
	v, err := dashboard.NewCountryView(pc, name)
	if err != nil {
		return err
	}
	defer v.Destroy()
	target.Mount()
	if err := v.Mounted(); err != nil {
		return err
	}
	ctx := cmd.Context()
	if err := wait(ctx, v.Init(ctx), cfg.FetchTimeout); err != nil {
		return err
	}
	if err := v.Err(); err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return fmt.Errorf("%s: not found", name)
		}
		return err
	}
	m := v.Model()
	fmt.Fprintln(cmd.OutOrStdout(), m.Title)
	printIndicators(cmd, m.Indicators)
	path := outPath(countryOut, fileName(m.Title)+".png")
	if err := writePNG(target, path); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
	return nil
}

func fileName(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', ' ':
			return '_'
		}
		return r
	}, strings.ToLower(name))
}

func runWatch(cmd *cobra.Command, _ []string) error {
	if cfg.DataURL != "" {
		return errors.New("watch needs a local dataset file, not a URL")
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pc, target, err := pageConfig(cfg, "home", nil)
	if err != nil {
		return err
	}
	v, err := dashboard.NewHomeView(pc, cfg.Criterion())
	if err != nil {
		return err
	}
	defer v.Destroy()
	target.Mount()
	if err := v.Mounted(); err != nil {
		return err
	}
	path := outPath(watchOut, "home.png")
	publish := func() {
		if err := v.Err(); err != nil {
			logging.Warnf("[watch] keeping previous chart: %v", err)
			return
		}
		if err := writePNG(target, path); err != nil {
			logging.Errorf("[watch] write %s: %v", path, err)
			return
		}
		logging.Infof("[watch] wrote %s", path)
	}

	changes := make(chan struct{}, 1)
	w, err := datasource.NewWatcher(cfg.DataFile, 0, func() {
		select {
		case changes <- struct{}{}:
		default:
		}
	})
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := w.Start(ctx); err != nil {
			return fmt.Errorf("watch %s: %w", cfg.DataFile, err)
		}
		<-ctx.Done()
		return w.Close()
	})
	g.Go(func() error {
		if err := wait(ctx, v.Init(ctx), cfg.FetchTimeout); err != nil {
			return err
		}
		publish()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-changes:
				if err := wait(ctx, v.Reload(), cfg.FetchTimeout); err != nil {
					if ctx.Err() != nil {
						return nil
					}
					logging.Warnf("[watch] reload: %v", err)
					continue
				}
				publish()
			}
		}
	})
	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
