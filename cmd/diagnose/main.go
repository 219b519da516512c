// Diagnostic tool for analyzing HDF5 files
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/robert-malhotra/h5value/hdf5"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run cmd/diagnose/main.go <file.h5>")
		os.Exit(1)
	}

	filename := os.Args[1]
	fmt.Printf("=== Analyzing %s ===\n\n", filename)

	f, err := hdf5.Open(filename)
	if err != nil {
		fmt.Printf("ERROR: Failed to open file: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	fmt.Printf("Superblock version: %d\n", f.Version())
	fmt.Println()

	var groups, datasets, failures int
	err = hdf5.Walk(f.Root(), func(path string, obj any, err error) error {
		indent := strings.Repeat("  ", depth(path))
		if err != nil {
			failures++
			fmt.Printf("%sERROR in %q: %v\n", indent, path, err)
			return nil
		}
		switch o := obj.(type) {
		case *hdf5.Group:
			groups++
			members, err := o.Members()
			if err != nil {
				fmt.Printf("%sGroup %q: ERROR getting members: %v\n", indent, path, err)
				return nil
			}
			fmt.Printf("%sGroup %q:\n", indent, path)
			fmt.Printf("%s  Members: %d\n", indent, len(members))
			if len(members) == 0 && path != "/" {
				fmt.Printf("%s  [EMPTY - no members]\n", indent)
			}
		case *hdf5.Dataset:
			datasets++
			fmt.Printf("%sDataset %q:\n", indent, path)
			fmt.Printf("%s  Shape: %v\n", indent, o.Shape())
			fmt.Printf("%s  Layout: %s\n", indent, o.Layout())
			desc, err := o.Descriptor()
			if err != nil {
				failures++
				fmt.Printf("%s  Type: ERROR %v\n", indent, err)
				return nil
			}
			fmt.Printf("%s  Type: %s (%d bytes)\n", indent, desc, desc.ByteSize())
			if _, err := o.ReadNative(desc); err != nil {
				failures++
				fmt.Printf("%s  Read: ERROR %v\n", indent, err)
			}
		}
		return nil
	})
	if err != nil {
		fmt.Printf("ERROR: walk failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\n%d groups, %d datasets, %d failures\n", groups, datasets, failures)
	if failures > 0 {
		os.Exit(1)
	}
}

func depth(path string) int {
	if path == "/" {
		return 0
	}
	return strings.Count(path, "/")
}
