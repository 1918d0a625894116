// Package main provides a command-line tool for inspecting and exporting the
// textures of FRES resource files.
package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/goopsie/ftextools/pkg/archive"
	"github.com/goopsie/ftextools/pkg/asset"
	"github.com/goopsie/ftextools/pkg/dds"
	"github.com/goopsie/ftextools/pkg/export"
	"github.com/goopsie/ftextools/pkg/ftex"
	"github.com/goopsie/ftextools/pkg/pixel"
	"github.com/goopsie/ftextools/pkg/sarc"
)

var (
	mode           string
	inputPath      string
	outputPath     string
	imageFormat    string
	codecName      string
	backend        string
	allMips        bool
	forceOverwrite bool
	verbose        bool
)

func init() {
	flag.StringVar(&mode, "mode", "", "Operation mode: list, info, extract, dds, catalog, unpack, pack")
	flag.StringVar(&inputPath, "input", "", "Input resource file (directory for pack mode)")
	flag.StringVar(&outputPath, "output", "", "Output directory (archive file for pack mode)")
	flag.StringVar(&imageFormat, "format", "png", "Image format for extract mode: png, bmp, tiff")
	flag.StringVar(&codecName, "codec", "yaz0", "Compression for pack mode: none, yaz0, zstd")
	flag.StringVar(&backend, "backend", "", "Pixel converter: fast, reference (default depends on build tags)")
	flag.BoolVar(&allMips, "mips", false, "Export every mip level instead of the base level only")
	flag.BoolVar(&forceOverwrite, "force", false, "Allow non-empty output directory and overwrite files")
	flag.BoolVar(&verbose, "verbose", false, "Enable debug logging")
}

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if err := validateFlags(); err != nil {
		flag.Usage()
		return err
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	logger.Debug("starting", "mode", mode, "zstd", archive.ZstdBackend())

	switch mode {
	case "pack":
		return runPack()
	case "unpack":
		if err := prepareOutputDir(); err != nil {
			return err
		}
		return runUnpack()
	}

	conv, err := converter()
	if err != nil {
		return err
	}
	cache := asset.NewCache(
		asset.WithLogger(logger),
		asset.WithDecoder(ftex.NewDecoder(ftex.WithConverter(conv), ftex.WithLogger(logger))),
	)
	if _, err := cache.LoadFile(inputPath); err != nil {
		return fmt.Errorf("load %s: %w", inputPath, err)
	}
	for _, f := range cache.Failed() {
		logger.Warn("texture could not be extracted", "key", f.Name, "err", f.Err)
	}

	switch mode {
	case "list":
		return runList(cache)
	case "info":
		return runInfo(cache)
	}

	if err := prepareOutputDir(); err != nil {
		return err
	}

	switch mode {
	case "extract":
		return runExtract(cache, logger)
	case "dds":
		return runDDS(cache, conv, logger)
	case "catalog":
		return runCatalog(cache, logger)
	default:
		return fmt.Errorf("unknown mode: %s", mode)
	}
}

func validateFlags() error {
	if mode == "" {
		return fmt.Errorf("mode is required")
	}
	if inputPath == "" {
		return fmt.Errorf("input is required")
	}

	switch mode {
	case "list", "info":
	case "extract", "dds", "catalog", "unpack", "pack":
		if outputPath == "" {
			return fmt.Errorf("%s mode requires -output", mode)
		}
	default:
		return fmt.Errorf("mode must be one of list, info, extract, dds, catalog, unpack, pack")
	}

	if _, err := export.ParseFormat(imageFormat); err != nil {
		return err
	}
	if _, err := archive.ParseCodec(codecName); err != nil {
		return err
	}
	return nil
}

func converter() (pixel.Converter, error) {
	switch backend {
	case "":
		return pixel.Default, nil
	case "fast":
		return pixel.Fast{}, nil
	case "reference":
		return pixel.Reference{}, nil
	}
	return nil, fmt.Errorf("unknown backend: %s", backend)
}

func prepareOutputDir() error {
	if err := os.MkdirAll(outputPath, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	if !forceOverwrite {
		empty, err := isDirEmpty(outputPath)
		if err != nil {
			return fmt.Errorf("check output directory: %w", err)
		}
		if !empty {
			return fmt.Errorf("output directory is not empty (use -force to override)")
		}
	}

	return nil
}

func isDirEmpty(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	_, err = f.Readdir(1)
	return err == io.EOF, nil
}

func runList(cache *asset.Cache) error {
	keys := cache.Keys()
	for _, key := range keys {
		tex, _ := cache.Texture(key)
		fmt.Printf("%-48s %5dx%-5d %2d mips  %s  %s\n",
			key, tex.Width(), tex.Height(), tex.MipCount(), tex.Format(), tex.CompSel)
	}
	fmt.Printf("%d textures, %d failed\n", len(keys), len(cache.Failed()))
	return nil
}

func runInfo(cache *asset.Cache) error {
	for _, key := range cache.Keys() {
		tex, _ := cache.Texture(key)
		fmt.Printf("%s\n  %s\n  component selection %s (stored %s)\n",
			key, tex.Surface.String(), tex.CompSel, tex.CompSelRaw)
		for mip := 0; mip < tex.MipCount(); mip++ {
			info, err := tex.Surface.Info(uint32(mip))
			if err != nil {
				fmt.Printf("  mip %2d: %v\n", mip, err)
				continue
			}
			fmt.Printf("  mip %2d: %4dx%-4d pitch %4d height %4d %-14s %8d bytes\n",
				mip, max(1, tex.Width()>>mip), max(1, tex.Height()>>mip),
				info.Pitch, info.Height, info.TileMode, info.Size)
		}
	}
	return nil
}

func runDDS(cache *asset.Cache, conv pixel.Converter, logger *slog.Logger) error {
	dec := ftex.NewDecoder(ftex.WithConverter(conv), ftex.WithLogger(logger))
	written := 0
	for _, key := range cache.Keys() {
		tex, _ := cache.Texture(key)
		data, err := dds.FromTexture(dec, tex, allMips)
		if err != nil {
			logger.Warn("skipping texture", "key", key, "err", err)
			continue
		}
		path := filepath.Join(outputPath, export.Path(key, 0, ".dds"))
		if err := export.WriteBytes(path, data, forceOverwrite); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		written++
	}
	fmt.Printf("Wrote %d DDS files to %s\n", written, outputPath)
	return nil
}

func runUnpack() error {
	data, codec, err := archive.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("read %s: %w", inputPath, err)
	}

	if !sarc.IsArchive(data) {
		name := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath)) + ".bin"
		if err := export.WriteBytes(filepath.Join(outputPath, name), data, forceOverwrite); err != nil {
			return err
		}
		fmt.Printf("Decompressed %s (%s) to %s\n", inputPath, codec, name)
		return nil
	}

	a, err := sarc.Open(data)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	for _, f := range a.Files {
		name := f.Name
		if name == "" {
			name = fmt.Sprintf("0x%08x.bin", f.Hash)
		}
		segments := strings.Split(name, "/")
		for i, s := range segments {
			segments[i] = export.SanitizeName(s)
		}
		path := filepath.Join(append([]string{outputPath}, segments...)...)
		if err := export.WriteBytes(path, f.Data, forceOverwrite); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	fmt.Printf("Unpacked %d files to %s\n", a.FileCount(), outputPath)
	return nil
}

func runPack() error {
	codec, _ := archive.ParseCodec(codecName)

	fmt.Println("Scanning input directory...")
	b := sarc.NewBuilder(binary.BigEndian)
	if err := b.ScanFiles(inputPath); err != nil {
		return fmt.Errorf("scan files: %w", err)
	}
	fmt.Printf("Found %d files\n", b.Len())

	if !forceOverwrite {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("%s already exists (use -force to override)", outputPath)
		}
	}
	if err := b.WriteFile(outputPath, codec); err != nil {
		return fmt.Errorf("write archive: %w", err)
	}

	fmt.Printf("Build complete. Output written to %s\n", outputPath)
	return nil
}
