// mksample converts WAV files into the raw sample payload the engine loads,
// or describes existing samples.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"

	"go-sampler/sampler"
)

func main() {
	flags := pflag.NewFlagSet("mksample", pflag.ContinueOnError)
	outDir := flags.StringP("out", "o", "", "directory for .raw files (default: next to the input)")
	info := flags.BoolP("info", "i", false, "print sample details instead of converting")
	flags.Usage = func() {
		fmt.Fprintln(os.Stderr, "usage: mksample [-o dir] file.wav...")
		fmt.Fprintln(os.Stderr, "       mksample -i file...")
		flags.PrintDefaults()
	}
	if err := flags.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return
		}
		os.Exit(2)
	}
	if flags.NArg() == 0 {
		flags.Usage()
		os.Exit(2)
	}

	fs := afero.NewOsFs()
	failed := false
	for _, path := range flags.Args() {
		var err error
		if *info {
			err = describe(fs, path)
		} else {
			err = convert(fs, path, *outDir)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

func describe(fs afero.Fs, path string) error {
	s, err := sampler.LoadSample(fs, path)
	if err != nil {
		return err
	}
	hz := s.Rate.SampleRate()
	fmt.Printf("%s: %d frames, %d Hz (code 0x%02X), %.3fs\n",
		path, s.Len(), hz, uint8(s.Rate), float64(s.Len())/float64(hz))
	return nil
}

func convert(fs afero.Fs, path, outDir string) error {
	s, err := sampler.LoadSample(fs, path)
	if err != nil {
		return err
	}
	data, err := s.MarshalBinary()
	if err != nil {
		return err
	}

	dir := outDir
	if dir == "" {
		dir = filepath.Dir(path)
	}
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return errors.Wrapf(err, "create %s", dir)
	}
	out := filepath.Join(dir, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))+".raw")
	if out == path {
		return errors.Errorf("%s: already a payload", path)
	}
	if err := afero.WriteFile(fs, out, data, 0644); err != nil {
		return errors.Wrapf(err, "write %s", out)
	}
	fmt.Printf("%s -> %s (%d frames)\n", path, out, s.Len())
	return nil
}
