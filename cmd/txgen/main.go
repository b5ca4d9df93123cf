// Command txgen writes a random transaction file for exercising txledger.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"
	"time"

	"github.com/ayo6706/txledger/internal/simulate"
	"github.com/ayo6706/txledger/internal/txcsv"
)

func main() {
	n := flag.Int("n", 1000, "number of operations")
	clients := flag.Int("clients", 10, "number of distinct clients")
	seed := flag.Int64("seed", 0, "random seed (0 picks one from the clock)")
	out := flag.String("out", "", "output file (default stdout)")
	flag.Parse()

	if err := run(*n, *clients, *seed, *out); err != nil {
		fmt.Fprintf(os.Stderr, "txgen: %v\n", err)
		os.Exit(1)
	}
}

func run(n, clients int, seed int64, out string) error {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	var dst io.Writer = os.Stdout
	if out != "" {
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		dst = f
	}
	buf := bufio.NewWriter(dst)

	w := txcsv.NewWriter(buf)
	for _, op := range simulate.Generate(rand.New(rand.NewSource(seed)), n, clients) {
		if err := w.Write(op); err != nil {
			return err
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if err := buf.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	fmt.Fprintf(os.Stderr, "txgen: wrote %d operations (seed %d)\n", n, seed)
	return nil
}
