package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"lintang/routeplanner/pkg/config"
	"lintang/routeplanner/pkg/routemodel"
	"lintang/routeplanner/pkg/server"
	"lintang/routeplanner/pkg/server/rest/service"

	"github.com/k0kubun/go-ansi"
)

var (
	startX = flag.Float64("start_x", -1, "start x (0-100), ditanya lewat stdin kalau kosong")
	startY = flag.Float64("start_y", -1, "start y (0-100)")
	endX   = flag.Float64("end_x", -1, "end x (0-100)")
	endY   = flag.Float64("end_y", -1, "end y (0-100)")
)

func main() {
	cfg, err := config.Load(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	log := config.NewLogger(cfg.LogLevel)

	model, err := routemodel.LoadOSMFile(context.Background(), cfg.MapFile, ansi.NewAnsiStdout(), log)
	if err != nil {
		log.WithError(err).Fatal("failed to load road network")
	}
	fmt.Println()

	coords := []*float64{startX, startY, endX, endY}
	prompts := []string{"start x", "start y", "end x", "end y"}
	in := bufio.NewReader(os.Stdin)
	for i, c := range coords {
		if *c >= 0 {
			continue
		}
		v, err := readCoordinate(in, os.Stdout, prompts[i])
		if err != nil {
			log.WithError(err).Fatal("invalid coordinate")
		}
		*c = v
	}

	svc := service.NewNavigationService(model, log, 1)
	res, err := svc.ShortestPath(context.Background(), *startX, *startY, *endX, *endY)
	if err != nil {
		var serr *server.Error
		if errors.As(err, &serr) && serr.Code() == server.ErrNotFound {
			fmt.Println("no path found")
			os.Exit(1)
		}
		log.WithError(err).Fatal("shortest path query failed")
	}

	fmt.Printf("Distance: %.2f meters.\n", res.Route.Distance)
	fmt.Printf("Nodes on path: %d, expanded nodes: %d\n", len(res.Route.Path), res.Route.ExpandedNodes)
	fmt.Printf("Polyline: %s\n", res.Polyline)
}

// readCoordinate tanya koordinat ke user sampai dapat angka di [0,100].
func readCoordinate(in *bufio.Reader, out io.Writer, name string) (float64, error) {
	for {
		fmt.Fprintf(out, "Enter %s (0-100): ", name)
		line, err := in.ReadString('\n')
		v, perr := strconv.ParseFloat(strings.TrimSpace(line), 64)
		if perr == nil && v >= 0 && v <= 100 {
			return v, nil
		}
		if err != nil {
			return 0, fmt.Errorf("read %s: %w", name, err)
		}
		fmt.Fprintln(out, "coordinate must be a number between 0 and 100")
	}
}
