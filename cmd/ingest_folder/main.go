package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/yungbote/batchcatalog-backend/internal/app"
	"github.com/yungbote/batchcatalog-backend/internal/ingestion/folder"
	"github.com/yungbote/batchcatalog-backend/internal/platform/logger"
	"github.com/yungbote/batchcatalog-backend/internal/services"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run returns the process exit code so deferred shutdown always completes.
func run(args []string) int {
	flags := flag.NewFlagSet("ingest_folder", flag.ContinueOnError)
	var dir string
	var save bool
	flags.StringVar(&dir, "dir", "", "root folder laid out as Batch/Subject/Section.xlsx")
	flags.BoolVar(&save, "save", false, "store the batches instead of printing a preview")
	if err := flags.Parse(args); err != nil {
		return 2
	}

	if dir == "" {
		fmt.Fprintln(os.Stderr, "-dir is required")
		return 2
	}
	files, err := collectFiles(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "walk %s: %v\n", dir, err)
		return 1
	}

	ctx := context.Background()
	var res *services.FolderImportResult
	if save {
		application, err := app.New()
		if err != nil {
			fmt.Fprintf(os.Stderr, "init app: %v\n", err)
			return 1
		}
		defer application.Close()
		res, err = application.Services.Imports.ImportFolder(ctx, files)
		if err != nil {
			fmt.Fprintf(os.Stderr, "import: %v\n", err)
			return 1
		}
	} else {
		log, err := logger.New(os.Getenv("LOG_MODE"))
		if err != nil {
			fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
			return 1
		}
		defer log.Sync()
		imports := services.NewImportService(log, nil, folder.NewAggregator(log))
		res = imports.PreviewFolder(ctx, files)
	}

	for _, f := range res.Failures {
		fmt.Fprintf(os.Stderr, "skipped %s: %s\n", f.File, f.Error)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res.Batches); err != nil {
		fmt.Fprintf(os.Stderr, "encode: %v\n", err)
		return 1
	}
	return 0
}

// collectFiles lists every regular file under root with a slash-separated
// path relative to root. Filtering is left to the aggregator.
func collectFiles(root string) ([]folder.File, error) {
	var files []folder.File
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		full := p
		files = append(files, folder.File{
			Path: filepath.ToSlash(rel),
			Open: func() (io.ReadCloser, error) { return os.Open(full) },
		})
		return nil
	})
	return files, err
}
