// Command simplefs operates on a simplefs disk image.
//
//	simplefs --disk image.img --blocks 200 format
//	simplefs --disk image.img copyin notes.txt 1
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
