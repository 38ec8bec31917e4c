// Command qpuemu runs a compiled QPU instruction stream across a bank of
// simulated threads and, by default, validates the bundled SGEMM reference
// workload bit-exactly against a scalar reference implementation — matching
// the original host harness's own acceptance test.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/vc4sim/qpuemu/config"
	"github.com/vc4sim/qpuemu/debugger"
	"github.com/vc4sim/qpuemu/loader"
	"github.com/vc4sim/qpuemu/sgemm"
	"github.com/vc4sim/qpuemu/vm"
)

// Version information - can be overridden at build time with:
// go build -ldflags "-X main.Version=v1.2.3"
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v (using built-in defaults)\n", err)
		cfg = config.DefaultConfig()
	}
	traceConfig = cfg
	defaultTrace := ""
	if cfg.Execution.EnableTrace {
		defaultTrace = cfg.Trace.OutputFile
	}
	defaultMemTrace := ""
	if cfg.Execution.EnableMemTrace {
		defaultMemTrace = "mem_trace.log"
	}
	defaultStats := ""
	if cfg.Execution.EnableStats {
		defaultStats = cfg.Statistics.OutputFile
	}

	var (
		showVersion = flag.Bool("version", false, "Show version information")
		showHelp    = flag.Bool("help", false, "Show help information")
		debugMode   = flag.Bool("debug", false, "Start in debugger mode (single thread, CLI)")
		tuiMode     = flag.Bool("tui", false, "Start in debugger mode (single thread, TUI)")

		threadCount = flag.Int("threads", cfg.Execution.ThreadCount, "Number of QPU threads to run sequentially")
		memSize     = flag.Int("mem-size", cfg.Execution.MemorySize, "Flat memory size in bytes")
		dataFile    = flag.String("data", "", "Raw memory image to load at byte offset 0 (uniforms + matrix data); mutually exclusive with -sgemm-bench")

		traceFile    = flag.String("trace", defaultTrace, "Write a lane-0 execution trace to this file (empty disables tracing)")
		memTraceFile = flag.String("mem-trace", defaultMemTrace, "Write a VPM-DMA/TMU0 memory traffic trace to this file (empty disables it)")
		statsFile    = flag.String("stats", defaultStats, "Write execution statistics to this file (format from the config file; empty disables it)")

		sgemmBench = flag.Bool("sgemm-bench", true, "Generate a random SGEMM workload, run it, and check against the scalar reference")
		matrixP    = flag.Int("p", 96, "SGEMM row count of A/C (must be a multiple of 16*row-tiles)")
		matrixQ    = flag.Int("q", 363, "SGEMM inner dimension (A cols / B rows)")
		matrixR    = flag.Int("r", 3072, "SGEMM column count of B/C (must be a multiple of 64*col-tiles)")
		rowTiles   = flag.Int("row-tiles", 2, "SGEMM row-panel tile count")
		colTiles   = flag.Int("col-tiles", 6, "SGEMM column-panel tile count")
		alpha      = flag.Float64("alpha", 1.0, "SGEMM alpha scale factor")
		beta       = flag.Float64("beta", 1.0, "SGEMM beta scale factor")
		seed       = flag.Int64("seed", 1, "Random seed for SGEMM input generation")

		verboseMode = flag.Bool("verbose", false, "Verbose output")
	)

	flag.Parse()

	if *showVersion {
		fmt.Printf("qpuemu %s\n", Version)
		if Commit != "unknown" {
			fmt.Printf("Commit: %s\n", Commit)
		}
		if Date != "unknown" {
			fmt.Printf("Built: %s\n", Date)
		}
		os.Exit(0)
	}

	if *showHelp {
		printHelp()
		os.Exit(0)
	}

	instPath := flag.Arg(0)
	if instPath == "" {
		fmt.Fprintln(os.Stderr, "Error: an instruction stream file is required")
		printHelp()
		os.Exit(1)
	}

	insts, err := loader.LoadInstructions(instPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *verboseMode {
		fmt.Printf("Loaded %d instructions from %s\n", len(insts), instPath)
	}

	if *dataFile != "" && *sgemmBench {
		*sgemmBench = false
	}

	if *debugMode || *tuiMode {
		runDebugger(insts, *memSize, *dataFile, *sgemmBench, *matrixP, *matrixQ, *matrixR,
			*rowTiles, *colTiles, float32(*alpha), float32(*beta), *seed, *tuiMode)
		return
	}

	if *sgemmBench {
		runSGEMMBench(insts, *memSize, *matrixP, *matrixQ, *matrixR, *rowTiles, *colTiles,
			float32(*alpha), float32(*beta), *seed, *verboseMode,
			traceOutputs{trace: *traceFile, memTrace: *memTraceFile, stats: *statsFile})
		return
	}

	runPlain(insts, *memSize, *dataFile, *threadCount, *verboseMode,
		traceOutputs{trace: *traceFile, memTrace: *memTraceFile, stats: *statsFile})
}

// runPlain loads an explicit memory image (or a zeroed memory if none is
// given) and runs the instruction stream across threadCount threads with
// per-thread uniform pointers spaced UniformSize words apart, starting at
// byte 0 — the simplest possible uniform layout for kernels that don't need
// SGEMM's tiled geometry.
func runPlain(insts []uint64, memSize int, dataFile string, threadCount int, verbose bool, outs traceOutputs) {
	q := vm.NewQPU(memSize, nil)
	outs.attach(q)

	if dataFile != "" {
		if err := loader.LoadImageInto(q, dataFile, 0); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	uniformPtrs := make([]uint32, threadCount)
	for th := range uniformPtrs {
		uniformPtrs[th] = uint32(th * sgemm.UniformSize * 4)
	}

	if verbose {
		fmt.Printf("Running %d thread(s)...\n", threadCount)
	}

	start := time.Now()
	if err := q.Run(insts, uniformPtrs, threadCount); err != nil {
		outs.flush(q)
		fmt.Fprintf(os.Stderr, "Runtime error: %v\n", err)
		os.Exit(1)
	}
	elapsed := time.Since(start)
	outs.flush(q)

	if verbose {
		fmt.Printf("Execution complete in %v\n", elapsed)
	}
}

// traceConfig holds the loaded configuration; flags choose the output
// files, the config file tunes what each trace entry records and which
// statistics format is written.
var traceConfig *config.Config

// traceOutputs bundles the per-run observability output files selected on
// the command line.
type traceOutputs struct {
	trace    string
	memTrace string
	stats    string
}

// attach wires the selected traces and statistics into q.
func (o traceOutputs) attach(q *vm.QPU) {
	attachTrace(q, o.trace)
	attachMemTrace(q, o.memTrace)
	attachStats(q, o.stats)
}

// flush writes and closes every attached trace, and exports statistics.
func (o traceOutputs) flush(q *vm.QPU) {
	flushTrace(q)
	exportStats(q, o.stats)
}

// attachTrace wires an ExecutionTrace into q when traceFile is non-empty,
// so Run/Step record lane-0 register changes for every instruction.
func attachTrace(q *vm.QPU, traceFile string) {
	if traceFile == "" {
		return
	}
	f, err := vm.OpenTraceFile(traceFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not open trace file: %v\n", err)
		os.Exit(1)
	}
	trace := vm.NewExecutionTrace(f)
	if traceConfig != nil {
		trace.IncludeFlags = traceConfig.Trace.IncludeFlags
		trace.IncludeTiming = traceConfig.Trace.IncludeTiming
		if traceConfig.Trace.MaxEntries > 0 {
			trace.MaxEntries = traceConfig.Trace.MaxEntries
		}
		if traceConfig.Trace.FilterRegs != "" {
			trace.SetFilterRegisters(strings.Split(traceConfig.Trace.FilterRegs, ","))
		}
	}
	trace.Start()
	q.Trace = trace
}

// attachMemTrace wires a MemoryTrace into q when memTraceFile is non-empty,
// recording VPM-DMA and TMU0 main-memory traffic.
func attachMemTrace(q *vm.QPU, memTraceFile string) {
	if memTraceFile == "" {
		return
	}
	f, err := vm.OpenTraceFile(memTraceFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not open memory trace file: %v\n", err)
		os.Exit(1)
	}
	mtrace := vm.NewMemoryTrace(f)
	mtrace.Start()
	q.MemTrace = mtrace
}

func flushTrace(q *vm.QPU) {
	if q.Trace != nil {
		if err := q.Trace.Flush(); err != nil {
			fmt.Fprintf(os.Stderr, "Error flushing trace: %v\n", err)
		}
		if closer, ok := q.Trace.Writer.(*os.File); ok {
			closer.Close()
		}
	}
	if q.MemTrace != nil {
		if err := q.MemTrace.Flush(); err != nil {
			fmt.Fprintf(os.Stderr, "Error flushing memory trace: %v\n", err)
		}
		if closer, ok := q.MemTrace.Writer.(*os.File); ok {
			closer.Close()
		}
	}
}

// attachStats wires a PerformanceStatistics tracker into q when statsFile
// is non-empty.
func attachStats(q *vm.QPU, statsFile string) {
	if statsFile == "" {
		return
	}
	stats := vm.NewPerformanceStatistics()
	if traceConfig != nil {
		stats.SetCollectHotPath(traceConfig.Statistics.CollectHotPath)
	}
	stats.Start()
	q.Stats = stats
}

// exportStats writes the accumulated statistics to statsFile in the format
// the config file selects (json by default, csv when configured).
func exportStats(q *vm.QPU, statsFile string) {
	if q.Stats == nil || statsFile == "" {
		return
	}
	f, err := vm.OpenTraceFile(statsFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: could not open statistics file: %v\n", err)
		return
	}
	defer f.Close()

	format := "json"
	if traceConfig != nil && traceConfig.Statistics.Format != "" {
		format = traceConfig.Statistics.Format
	}
	if format == "csv" {
		err = q.Stats.ExportCSV(f)
	} else {
		err = q.Stats.ExportJSON(f)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error exporting statistics: %v\n", err)
	}
}

// runSGEMMBench reproduces the original host harness's acceptance test: a
// random P x Q x R SGEMM workload, tiled across rowTiles*colTiles threads,
// checked bit-exactly against sgemm.Reference after execution.
func runSGEMMBench(insts []uint64, memSize, p, q, r, rowTiles, colTiles int, alpha, beta float32, seed int64, verbose bool, outs traceOutputs) {
	layout, a, b, c := buildSGEMMWorkload(p, q, r, rowTiles, colTiles, seed)

	needed := layout.cAddr + uint32(len(c))*4
	if int(needed) > memSize {
		memSize = int(needed)
	}

	qpu := vm.NewQPU(memSize, nil)
	outs.attach(qpu)
	if err := loadSGEMMWorkload(qpu, layout, a, b, c, alpha, beta); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	refC := make([]float32, len(c))
	copy(refC, c)
	sgemm.Reference(p, r, q, alpha, a, b, beta, refC)

	if verbose {
		fmt.Printf("Running SGEMM %dx%dx%d across %d threads...\n", p, q, r, layout.tile.ThreadCount())
	}

	start := time.Now()
	if err := qpu.Run(insts, layout.uniformPtrs, layout.tile.ThreadCount()); err != nil {
		outs.flush(qpu)
		fmt.Fprintf(os.Stderr, "Runtime error: %v\n", err)
		os.Exit(1)
	}
	outs.flush(qpu)
	elapsed := time.Since(start)

	gotC := make([]float32, len(c))
	for i := range gotC {
		word, err := qpu.Mem.ReadU32(layout.cAddr + uint32(i*4))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading result matrix: %v\n", err)
			os.Exit(1)
		}
		gotC[i] = vm.U32ToF32(word)
	}

	mismatches := 0
	for i := range gotC {
		if gotC[i] != refC[i] {
			mismatches++
		}
	}

	fmt.Printf("%d.%03d elapsed.\n", int(elapsed.Seconds()), elapsed.Nanoseconds()/1_000_000%1000)
	if mismatches > 0 {
		fmt.Fprintf(os.Stderr, "FAIL: %d of %d output elements mismatch the scalar reference\n", mismatches, len(gotC))
		os.Exit(1)
	}
	fmt.Println("PASS: SGEMM result matches scalar reference exactly")
}

// sgemmLayout captures the memory addresses and per-thread uniform pointers
// an SGEMM workload needs, mirroring the host harness's a_addr/b_addr/c_addr
// placement immediately after the uniform block region.
type sgemmLayout struct {
	tile        sgemm.Tile
	aAddr       uint32
	bAddr       uint32
	cAddr       uint32
	uniformPtrs []uint32
	uniforms    [][sgemm.UniformSize]uint32
}

func buildSGEMMWorkload(p, q, r, rowTiles, colTiles int, seed int64) (sgemmLayout, []float32, []float32, []float32) {
	tile := sgemm.NewTile(p, q, r, rowTiles, colTiles)

	const uniformRegionWords = 1024
	aAddr := uint32(uniformRegionWords * 4)
	bAddr := aAddr + uint32(p*q)*4
	cAddr := bAddr + uint32(q*r)*4

	rng := rand.New(rand.NewSource(seed))
	a := sgemm.RandomMatrix(rng, p, q)
	b := sgemm.RandomMatrix(rng, q, r)
	c := sgemm.RandomMatrix(rng, p, r)

	n := tile.ThreadCount()
	uniformPtrs := make([]uint32, n)
	for th := range uniformPtrs {
		uniformPtrs[th] = uint32(th * sgemm.UniformSize * 4)
	}

	return sgemmLayout{
		tile:        tile,
		aAddr:       aAddr,
		bAddr:       bAddr,
		cAddr:       cAddr,
		uniformPtrs: uniformPtrs,
	}, a, b, c
}

func loadSGEMMWorkload(q *vm.QPU, layout sgemmLayout, a, b, c []float32, alpha, beta float32) error {
	uniforms := layout.tile.Uniforms(layout.aAddr, layout.bAddr, layout.cAddr,
		layout.tile.Q, layout.tile.R, layout.tile.R, alpha, beta, vm.F32ToU32)

	for th, block := range uniforms {
		if err := loader.WriteU32sAt(q, uint32(th*sgemm.UniformSize*4), block[:]); err != nil {
			return err
		}
	}

	if err := writeFloats(q, layout.aAddr, a); err != nil {
		return err
	}
	if err := writeFloats(q, layout.bAddr, b); err != nil {
		return err
	}
	return writeFloats(q, layout.cAddr, c)
}

func writeFloats(q *vm.QPU, addr uint32, vals []float32) error {
	words := make([]uint32, len(vals))
	for i, v := range vals {
		words[i] = vm.F32ToU32(v)
	}
	return loader.WriteU32sAt(q, addr, words)
}

// runDebugger attaches the interactive debugger (CLI or TUI) to a single
// QPU instance running thread 0 only. Multi-thread batch execution and
// interactive single-stepping are different use cases in this emulator: the
// debugger steps one thread's state at a time, matching Step/LoadProgram in
// the vm package.
func runDebugger(insts []uint64, memSize int, dataFile string, sgemmBench bool, p, q, r, rowTiles, colTiles int, alpha, beta float32, seed int64, useTUI bool) {
	var qpu *vm.QPU
	var uniformPtr uint32
	symbols := make(map[string]uint32)

	if sgemmBench {
		layout, a, b, c := buildSGEMMWorkload(p, q, r, rowTiles, colTiles, seed)
		needed := layout.cAddr + uint32(len(c))*4
		if int(needed) > memSize {
			memSize = int(needed)
		}
		qpu = vm.NewQPU(memSize, nil)
		if err := loadSGEMMWorkload(qpu, layout, a, b, c, alpha, beta); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		uniformPtr = layout.uniformPtrs[0]
		symbols["a_base"] = layout.aAddr
		symbols["b_base"] = layout.bAddr
		symbols["c_base"] = layout.cAddr
	} else {
		qpu = vm.NewQPU(memSize, nil)
		if dataFile != "" {
			if err := loader.LoadImageInto(qpu, dataFile, 0); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
		}
	}

	qpu.LoadProgram(insts, uniformPtr)

	dbg := debugger.NewDebugger(qpu)
	if traceConfig != nil && traceConfig.Debugger.HistorySize > 0 {
		dbg.History = debugger.NewCommandHistory(traceConfig.Debugger.HistorySize)
	}
	dbg.LoadSymbols(symbols)

	if useTUI {
		if err := debugger.RunTUI(dbg); err != nil {
			fmt.Fprintf(os.Stderr, "TUI error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	fmt.Println("QPU Debugger - Type 'help' for commands")
	fmt.Printf("Program loaded: %d instructions\n", len(insts))
	fmt.Println()

	if err := debugger.RunCLI(dbg); err != nil {
		fmt.Fprintf(os.Stderr, "Debugger error: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Printf(`qpuemu %s

Usage: qpuemu [options] <instruction-stream-file>

By default, runs the bundled SGEMM benchmark: a random P x Q x R matrix
multiply tiled across row-tiles*col-tiles threads, checked against a scalar
reference implementation.

Options:
  -help                Show this help message
  -version             Show version information
  -debug               Start in debugger mode (CLI, thread 0 only)
  -tui                 Start in debugger mode (TUI, thread 0 only)
  -threads N           Thread count for plain (-sgemm-bench=false) runs (default 12)
  -mem-size N          Flat memory size in bytes (default 16MB)
  -data FILE           Raw memory image loaded at byte offset 0 (disables -sgemm-bench)
  -trace FILE          Write a lane-0 execution trace to FILE (plain/sgemm-bench runs only)
  -mem-trace FILE      Write a VPM-DMA/TMU0 memory traffic trace to FILE
  -stats FILE          Write execution statistics to FILE (json or csv, per config file)
  -sgemm-bench         Run the bundled SGEMM correctness benchmark (default true)
  -p N -q N -r N       SGEMM dimensions (default 96x363x3072)
  -row-tiles N         SGEMM row-panel tile count (default 2)
  -col-tiles N         SGEMM column-panel tile count (default 6)
  -alpha F -beta F     SGEMM scale factors (default 1.0, 1.0)
  -seed N              Random seed for SGEMM input generation
  -verbose             Verbose output

Examples:
  # Run the default SGEMM correctness benchmark
  qpuemu data/sgemm.bin

  # Run a kernel across a fixed thread count with an explicit memory image
  qpuemu -sgemm-bench=false -data data/image.bin -threads 4 kernel.bin

  # Step through thread 0 of the SGEMM kernel interactively
  qpuemu -debug data/sgemm.bin
  qpuemu -tui data/sgemm.bin
`, Version)
}
