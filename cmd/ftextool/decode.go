package main

import (
	"bytes"
	"fmt"
	"image"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/goopsie/ftextools/pkg/asset"
	"github.com/goopsie/ftextools/pkg/export"
)

type decodeJob struct {
	key string
	mip int
}

type decodeResult struct {
	decodeJob
	img *image.NRGBA
	err error
}

// decodeOrdered decodes jobs in parallel and hands the results to handle in
// job order. A handle error stops the pipeline.
func decodeOrdered(cache *asset.Cache, jobs []decodeJob, handle func(decodeResult) error) error {
	lookaheadSize := runtime.NumCPU() * 4
	futureResults := make(chan chan decodeResult, lookaheadSize)

	go func() {
		defer close(futureResults)
		for _, job := range jobs {
			resultChan := make(chan decodeResult, 1)
			futureResults <- resultChan

			go func(job decodeJob, ch chan decodeResult) {
				img, err := cache.Image(job.key, job.mip)
				ch <- decodeResult{decodeJob: job, img: img, err: err}
			}(job, resultChan)
		}
	}()

	for resultCh := range futureResults {
		res := <-resultCh
		if err := handle(res); err != nil {
			for ch := range futureResults {
				<-ch
			}
			return err
		}
	}
	return nil
}

func textureJobs(cache *asset.Cache, mips bool) []decodeJob {
	var jobs []decodeJob
	for _, key := range cache.Keys() {
		tex, _ := cache.Texture(key)
		n := 1
		if mips {
			n = tex.MipCount()
		}
		for mip := 0; mip < n; mip++ {
			jobs = append(jobs, decodeJob{key: key, mip: mip})
		}
	}
	return jobs
}

func runExtract(cache *asset.Cache, logger *slog.Logger) error {
	format, _ := export.ParseFormat(imageFormat)
	jobs := textureJobs(cache, allMips)

	fmt.Printf("Decoding %d images...\n", len(jobs))
	written, failed := 0, 0
	err := decodeOrdered(cache, jobs, func(res decodeResult) error {
		if res.err != nil {
			logger.Warn("decode failed", "key", res.key, "mip", res.mip, "err", res.err)
			failed++
			return nil
		}
		path := filepath.Join(outputPath, export.Path(res.key, res.mip, format.Ext()))
		if err := export.WriteFile(path, res.img, format, forceOverwrite); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		logger.Debug("wrote image", "path", path)
		written++
		return nil
	})
	if err != nil {
		return err
	}

	fmt.Printf("Extraction complete. %d images written to %s, %d failed\n", written, outputPath, failed)
	return nil
}

func runCatalog(cache *asset.Cache, logger *slog.Logger) error {
	var entries []export.CatalogEntry
	err := decodeOrdered(cache, textureJobs(cache, false), func(res decodeResult) error {
		if res.err != nil {
			logger.Warn("decode failed", "key", res.key, "err", res.err)
			return nil
		}
		tex, _ := cache.Texture(res.key)
		entries = append(entries, export.CatalogEntry{
			Title:   res.key,
			Caption: fmt.Sprintf("%dx%d %s, %d mips", tex.Width(), tex.Height(), tex.Format(), tex.MipCount()),
			Image:   export.Thumbnail(res.img, export.DefaultThumbnailSize),
		})
		return nil
	})
	if err != nil {
		return err
	}

	base := filepath.Base(inputPath)
	name := export.SanitizeName(strings.TrimSuffix(base, filepath.Ext(base))) + ".pdf"
	path := filepath.Join(outputPath, name)

	var buf bytes.Buffer
	if err := export.Catalog(&buf, base, entries); err != nil {
		return fmt.Errorf("render catalog: %w", err)
	}
	if err := export.WriteBytes(path, buf.Bytes(), forceOverwrite); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	fmt.Printf("Catalog of %d textures written to %s\n", len(entries), path)
	return nil
}
