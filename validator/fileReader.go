package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	sfvalid "github.com/btv-commissioning/sfvalid_go/pkg"
	"github.com/vmihailenco/msgpack/v5"
)

type batchDecoder interface {
	Decode(v interface{}) error
}

// FileReader reads a stream of event batches from one file. Files ending in
// .msgpack hold concatenated msgpack batches, anything else concatenated JSON.
type FileReader struct {
	File    *os.File
	decoder batchDecoder
}

func NewFileReader(file *os.File) *FileReader {
	reader := bufio.NewReader(file)
	var dec batchDecoder
	if filepath.Ext(file.Name()) == ".msgpack" {
		md := msgpack.NewDecoder(reader)
		md.SetCustomStructTag("json")
		dec = md
	} else {
		dec = json.NewDecoder(reader)
	}
	return &FileReader{File: file, decoder: dec}
}

// getNextBatch returns io.EOF once the file is exhausted.
func (r *FileReader) getNextBatch() (*sfvalid.EventBatch, error) {
	batch := &sfvalid.EventBatch{}
	if err := r.decoder.Decode(batch); err != nil {
		return nil, err
	}
	return batch, nil
}

// fileSource feeds the batches of every file to the workers, stopping after
// maxBatches batches.
func fileSource(filenames []string, maxBatches int) sfvalid.BatchSource {
	return func(ctx context.Context, jobs chan<- *sfvalid.EventBatch) error {
		sent := 0
		for _, filename := range filenames {
			file, err := os.Open(filename)
			if err != nil {
				return fmt.Errorf("error opening file %s: %w", filename, err)
			}
			reader := NewFileReader(file)
			for sent < maxBatches {
				batch, err := reader.getNextBatch()
				if errors.Is(err, io.EOF) {
					break
				}
				if err != nil {
					file.Close()
					return fmt.Errorf("error reading batch from %s: %w", filename, err)
				}
				if VerbosityLevel > 1 {
					logger.Info(fmt.Sprintf("Reading batch %d of %s (%d events)", sent, batch.Dataset, batch.Len()), "reader")
				}
				select {
				case jobs <- batch:
					sent++
				case <-ctx.Done():
					file.Close()
					return ctx.Err()
				}
			}
			file.Close()
			if sent >= maxBatches {
				break
			}
		}
		return nil
	}
}
