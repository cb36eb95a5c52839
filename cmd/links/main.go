// Package main provides the links CLI: inspect, summarize and run persisted
// layer descriptors and sequential models.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/born-ml/links/backend/cpu"
	"github.com/born-ml/links/link"
	"github.com/born-ml/links/sequential"
	"github.com/born-ml/links/tensor"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/janpfeifer/must"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

const version = "v0.1.0-dev"

var (
	flagSeed    = flag.Int64("seed", 0, "Seed for weight initialization and random inputs. 0 is non-deterministic.")
	flagBatch   = flag.Int("batch", 2, "Batch size of the random input used by 'run'.")
	flagShape   = flag.String("shape", "", "Comma-separated per-sample input shape used by 'run', e.g. '3,32,32'.")
	flagWorkers = flag.Int("workers", 0, "Goroutines used by convolution kernels. 0 uses one per CPU.")
)

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintf(out, "links %s: declarative layer descriptors\n\n", version)
	fmt.Fprintln(out, "Usage: links [flags] <command> [file]")
	fmt.Fprintln(out, "\nCommands:")
	fmt.Fprintln(out, "  version          Show version")
	fmt.Fprintln(out, "  kinds            List descriptor kinds and their weight slots")
	fmt.Fprintln(out, "  describe FILE    Print a descriptor file (.json, .yaml)")
	fmt.Fprintln(out, "  summary FILE     Build a sequential model file and list its stages")
	fmt.Fprintln(out, "  run FILE         Build a sequential model and run a random batch through it")
	fmt.Fprintln(out, "\nFlags:")
	flag.PrintDefaults()
}

func main() {
	klog.InitFlags(nil)
	flag.Usage = usage
	flag.Parse()
	defer klog.Flush()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}
	if err := run(args[0], args[1:]); err != nil {
		klog.Errorf("%s: %+v", args[0], err)
		os.Exit(1)
	}
}

func run(command string, args []string) error {
	switch command {
	case "version":
		fmt.Printf("links %s\n", version)
		return nil
	case "kinds":
		printKinds()
		return nil
	}

	if len(args) != 1 {
		return errors.Errorf("expected exactly one file argument, got %d. See 'links -help'", len(args))
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return errors.WithStack(err)
	}
	yamlFile := isYAML(args[0])

	switch command {
	case "describe":
		var d link.Descriptor
		if yamlFile {
			d, err = link.DecodeYAML(data)
		} else {
			d, err = link.Decode(data)
		}
		if err != nil {
			return err
		}
		fmt.Print(link.Describe(d))
		return nil

	case "summary", "run":
		var m *sequential.Model
		if yamlFile {
			m, err = sequential.LoadYAML(bytes.NewReader(data))
		} else {
			m, err = sequential.Load(bytes.NewReader(data))
		}
		if err != nil {
			return err
		}
		if *flagSeed != 0 && m.Seed == 0 {
			m.Seed = *flagSeed
		}
		net, err := m.Build(newFramework())
		if err != nil {
			return err
		}
		if command == "summary" {
			printSummary(m, net)
			return nil
		}
		return forward(net)
	}
	return errors.Errorf("unknown command %q. See 'links -help'", command)
}

func newFramework() *cpu.Framework {
	var opts []cpu.Option
	if *flagSeed != 0 {
		opts = append(opts, cpu.WithSeed(*flagSeed))
	}
	if *flagWorkers > 0 {
		opts = append(opts, cpu.WithWorkers(*flagWorkers))
	}
	return cpu.New(opts...)
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

func printKinds() {
	kinds := link.Kinds()
	table := newTable(len(kinds), false).Headers("Kind", "Weight slots")
	for _, k := range kinds {
		d := must.M1(link.New(k))
		slots := strings.Join(link.WeightSlots(d), ", ")
		if k == link.KindMerge {
			slots = "_initialW_<i>"
		}
		table.Row(k.String(), slots)
	}
	fmt.Println(table)
}

func printSummary(m *sequential.Model, net *sequential.Network) {
	rows := net.Summary()
	table := newTable(len(rows)+1, true, lipgloss.Right, lipgloss.Left, lipgloss.Left, lipgloss.Right).
		Headers("#", "Stage", "Unit", "Parameters")
	total := 0
	for _, r := range rows {
		table.Row(strconv.Itoa(r.Index), r.Stage, r.Unit, humanize.Comma(int64(r.Params)))
		total += r.Params
	}
	table.Row("", "Total", "", humanize.Comma(int64(total)))
	fmt.Printf("Model %q (%s)\n", m.Name, m.ID)
	fmt.Println(table)
}

func forward(net *sequential.Network) error {
	if *flagShape == "" {
		return errors.New("'run' needs -shape")
	}
	shape := tensor.Shape{*flagBatch}
	for _, part := range strings.Split(*flagShape, ",") {
		dim, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || dim <= 0 {
			return errors.Errorf("invalid -shape %q", *flagShape)
		}
		shape = append(shape, dim)
	}
	x := tensor.Randn(shape, tensor.Float32, 1, rngFor(*flagSeed))
	y := net.Forward(x)
	fmt.Printf("input  %v\noutput %v (%s elements)\n", x.Shape(), y.Shape(), humanize.Comma(int64(y.Len())))
	fmt.Println(y)
	return nil
}
