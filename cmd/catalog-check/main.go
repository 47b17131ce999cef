package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Black-And-White-Club/discord-paginator/app/catalog"
)

func main() {
	path := flag.String("catalog", "catalog.yaml", "Catalog file to check")
	flag.Parse()

	books, err := catalog.Load(*path)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	failed := false
	for _, name := range books.Names() {
		book, err := books.Lookup(name)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
		status := "ok"
		if len(book.Pages) < 2 {
			status = "too few pages, needs at least 2"
			failed = true
		}
		fmt.Printf("%-24s %3d pages  %s\n", book.Name, len(book.Pages), status)
	}

	if failed {
		os.Exit(1)
	}
}
