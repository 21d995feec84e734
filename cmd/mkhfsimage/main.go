package main

import (
	"flag"
	"fmt"
	"os"
)

func main() {
	outFile := flag.String("o", "disk.img", "Output image path")
	blocks := flag.Uint("blocks", 2880, "Total allocation blocks (512 bytes each)")
	stats := flag.Bool("stats", false, "Print volume layout statistics")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: mkhfsimage [options]\n\nBuilds a blank, mountable HFS volume image.\n\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  mkhfsimage -o disk.img\n")
		fmt.Fprintf(os.Stderr, "  mkhfsimage -o big.img -blocks 65535\n")
	}
	flag.Parse()

	if *blocks > 0xFFFF {
		fmt.Fprintf(os.Stderr, "error: -blocks must fit in 16 bits (max 65535)\n")
		os.Exit(1)
	}

	img, err := BuildImage(uint16(*blocks))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if err := os.WriteFile(*outFile, img, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "error writing %s: %v\n", *outFile, err)
		os.Exit(1)
	}

	if *stats {
		fmt.Printf("Wrote %s: %d bytes (%d allocation blocks)\n", *outFile, len(img), *blocks)
	}
}
