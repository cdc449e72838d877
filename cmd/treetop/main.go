package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/twpayne/go-treetop"
)

func run() error {
	format := flag.String("format", "", "input format (text or tiff, default from extension)")
	verbose := flag.Bool("v", false, "log diagnostics")
	flag.Parse()

	if !*verbose {
		treetop.SetLogger(nil)
	}

	var path string
	switch flag.NArg() {
	case 0:
		path = os.Getenv("TREETOP_INPUT")
		if path == "" {
			path = "input.txt"
		}
	case 1:
		path = flag.Arg(0)
	default:
		return errors.New("syntax: treetop [-format text|tiff] [-v] [path]")
	}

	if *format == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".tif", ".tiff":
			*format = "tiff"
		default:
			*format = "text"
		}
	}

	fsys := os.DirFS(filepath.Dir(path))
	var survey *treetop.Survey
	var err error
	switch *format {
	case "text":
		survey, err = treetop.NewTextSurvey(fsys)
	case "tiff":
		survey, err = treetop.NewTIFFSurvey(fsys)
	default:
		return fmt.Errorf("%s: unknown format", *format)
	}
	if err != nil {
		return err
	}

	report, err := survey.Report(context.Background(), filepath.Base(path))
	if err != nil {
		return err
	}

	fmt.Printf("There are %d trees visible from outside the grid\n", report.VisibleCount)
	fmt.Printf("The highest scenic score possible in the grid is %d\n", report.MaxScenicScore)

	return nil
}

func main() {
	if err := run(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
