// Command replay feeds a newline-delimited JSON event file through the
// processor and prints the resulting orders.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/fatih/color"
	"go.uber.org/zap"

	"github.com/PratikDhanave/order-event-processor/internal/logger"
	"github.com/PratikDhanave/order-event-processor/internal/notify"
	"github.com/PratikDhanave/order-event-processor/internal/order"
	"github.com/PratikDhanave/order-event-processor/internal/processor"
)

var tagColors = map[string]*color.Color{
	order.TagWarning:     color.New(color.FgYellow),
	order.TagPrimary:     color.New(color.FgBlue),
	order.TagSuccess:     color.New(color.FgGreen),
	order.TagDestructive: color.New(color.FgRed, color.Bold),
	order.TagMuted:       color.New(color.Faint),
}

func main() {
	file := flag.String("file", "", "path to an NDJSON event file (default stdin)")
	delay := flag.Duration("delay", 0, "pause between events")
	verbose := flag.Bool("v", false, "log every notification")
	flag.Parse()

	in := os.Stdin
	if *file != "" {
		f, err := os.Open(*file)
		if err != nil {
			log.Fatal(err)
		}
		defer f.Close()
		in = f
	}

	zl := zap.NewNop()
	if *verbose {
		zl = logger.New("", false)
	}
	defer func() { _ = zl.Sync() }()

	manager := notify.NewManager(zl)
	manager.AddObserver(notify.NewLoggerObserver(zl))
	manager.AddObserver(notify.NewAlertObserver(zl, func(a notify.Alert) {
		tagColors[a.Status.Tag()].Printf("ALERT order %s is now %s\n", a.OrderID, a.Status)
	}))

	proc := processor.New(manager, zl)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	report, err := processor.Replay(ctx, in, proc, processor.ReplayOptions{
		Delay: *delay,
		OnParseError: func(line int, err error) {
			color.New(color.FgRed).Fprintf(os.Stderr, "line %d: %v\n", line, err)
		},
	})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println()
	for _, o := range proc.Orders() {
		c := tagColors[o.StatusTag()]
		fmt.Printf("%-10s %-10s %10.2f  ", o.OrderID, o.CustomerID, o.TotalAmount)
		c.Printf("%-15s", o.Status)
		fmt.Printf(" %s\n", strings.Join(o.EventHistory, ","))
	}

	fmt.Printf("\n%d lines, %d applied, %d without order, %d failed, %d unparsable\n",
		report.Lines, report.Applied, report.TargetNotFound, report.Failed, report.ParseErrors)
}
