/*
	Timelinize
	Copyright (c) 2013 Matthew Holt

	This program is free software: you can redistribute it and/or modify
	it under the terms of the GNU Affero General Public License as published
	by the Free Software Foundation, either version 3 of the License, or
	(at your option) any later version.

	This program is distributed in the hope that it will be useful,
	but WITHOUT ANY WARRANTY; without even the implied warranty of
	MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
	GNU Affero General Public License for more details.

	You should have received a copy of the GNU Affero General Public License
	along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

// Package stampcmd facilitates the command line interface (CLI)
// and implements the main().
package stampcmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/timelinize/takeoutstamp/media"
	"github.com/timelinize/takeoutstamp/stamp"
	"go.uber.org/zap"
)

func Main() {
	flag.Usage = usage
	flag.Parse()

	if err := checkFlagParsing(); err != nil {
		stamp.Log.Fatal("possible syntax error detected", zap.Error(err))
	}

	cfg, err := stamp.LoadConfig(configFile)
	if err != nil {
		stamp.Log.Fatal("failed loading config", zap.Error(err))
	}
	applyFlags(cfg)
	stamp.SetVerbose(cfg.Verbose)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	trapSignals(cancel)

	codec := media.NewExifTool(stamp.Log.Named("exiftool"), cfg.ExiftoolPath)
	if err := codec.Start(); err != nil {
		stamp.Log.Fatal("exiftool is required to write embedded metadata", zap.Error(err))
	}

	summary, err := stamp.Run(ctx, *cfg, codec)
	if closeErr := codec.Close(); closeErr != nil {
		stamp.Log.Error("stopping exiftool", zap.Error(closeErr))
	}
	if summary != nil {
		summary.Log(stamp.Log.Named("summary"))
		if reportErr := summary.WriteReport(os.Stdout); reportErr != nil {
			stamp.Log.Error("writing report", zap.Error(reportErr))
		}
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			stamp.Log.Warn("run canceled; output is incomplete")
			_ = stamp.Log.Sync()
			os.Exit(1)
		}
		stamp.Log.Fatal("run failed", zap.Error(err))
	}

	fmt.Println("Done 🎉")
}

// applyFlags overrides cfg with the flags that were given
// on the command line.
func applyFlags(cfg *stamp.Config) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "input", "i":
			cfg.InputDir = inputDir
		case "output", "o":
			cfg.OutputDir = outputDir
		case "error", "e":
			cfg.ErrorDir = errorDir
		case "workers":
			cfg.Workers = workers
		case "write-geo":
			cfg.WriteGeo = writeGeo
		case "verify":
			cfg.VerifyCopies = verifyCopies
		case "exiftool":
			cfg.ExiftoolPath = exiftoolPath
		case "verbose", "v":
			cfg.Verbose = verbose
		}
	})
}

// checkFlagParsing returns an error if it looks like the
// program may have been invoked with the flags in the
// wrong place, or with arguments it does not take. Flags
// after the first positional argument are not parsed.
func checkFlagParsing() error {
	if flag.NArg() > 0 {
		return fmt.Errorf("unexpected arguments %q; all options are flags, and flags must come first", flag.Args())
	}
	return nil
}

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintf(out, `Usage: takeoutstamp -input <dir|archive> -output <dir> -error <dir> [options]

Copies every photo and video of an extracted Google Photos Takeout (or a
Takeout archive) into the output directory. Each file's modification time is
set to the photo taken time from its JSON sidecar, and for file types that
support it, the EXIF DateTimeOriginal field is set too if it is not already.
Files that can't be processed are placed in the error directory.

Options:
`)
	flag.PrintDefaults()
}

var (
	configFile   string
	inputDir     string
	outputDir    string
	errorDir     string
	workers      int
	writeGeo     bool
	verifyCopies bool
	exiftoolPath string
	verbose      bool
)

func init() {
	flag.StringVar(&configFile, "config", "", "Config file (default "+stamp.DefaultConfigFilePath()+")")
	flag.StringVar(&inputDir, "input", "", "Directory containing the extracted Takeout, or a Takeout archive")
	flag.StringVar(&inputDir, "i", "", "Shorthand for -input")
	flag.StringVar(&outputDir, "output", "", "Directory into which the processed output will be written")
	flag.StringVar(&outputDir, "o", "", "Shorthand for -output")
	flag.StringVar(&errorDir, "error", "", "Directory for files that could not be processed, including their sidecars")
	flag.StringVar(&errorDir, "e", "", "Shorthand for -error")
	flag.IntVar(&workers, "workers", 1, "Number of files to process at once")
	flag.BoolVar(&writeGeo, "write-geo", false, "Also write the sidecar's location into GPS tags")
	flag.BoolVar(&verifyCopies, "verify", false, "Verify every copy against its source")
	flag.StringVar(&exiftoolPath, "exiftool", "", "Path to the exiftool executable (default: found in PATH)")
	flag.BoolVar(&verbose, "verbose", false, "Enable debug logging")
	flag.BoolVar(&verbose, "v", false, "Shorthand for -verbose")
}
