package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hazyhaar/agrocota/pkg/quote"
)

func cmdVocab(args []string) {
	if len(args) < 1 {
		vocabUsage()
		os.Exit(1)
	}
	var err error
	switch args[0] {
	case "dump":
		err = cmdVocabDump(args[1:])
	case "check":
		err = cmdVocabCheck(args[1:])
	default:
		vocabUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func vocabUsage() {
	fmt.Fprintf(os.Stderr, `Usage:
  agrocota vocab dump [-out file]   Write the built-in vocabulary as YAML
  agrocota vocab check <file>       Validate a vocabulary file
`)
}

func cmdVocabDump(args []string) error {
	fs := flag.NewFlagSet("vocab dump", flag.ExitOnError)
	out := fs.String("out", "", "output file (default: stdout)")
	fs.Parse(args)

	spec := quote.DefaultVocabulary().Spec()
	if *out != "" {
		if err := quote.WriteVocabulary(*out, spec); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "wrote %s (%d aliases, %d hints)\n", *out, len(spec.Aliases), len(spec.Hints))
		return nil
	}
	return dumpVocabulary(os.Stdout, spec)
}

func dumpVocabulary(w io.Writer, spec quote.VocabularySpec) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(spec); err != nil {
		return fmt.Errorf("encode vocabulary: %w", err)
	}
	return enc.Close()
}

func cmdVocabCheck(args []string) error {
	if len(args) != 1 {
		vocabUsage()
		os.Exit(1)
	}
	v, err := quote.LoadVocabulary(args[0])
	if err != nil {
		return err
	}
	spec := v.Spec()
	fmt.Printf("%s: ok (%d aliases, %d hints, default %q)\n", v.Name(), len(spec.Aliases), len(spec.Hints), v.DefaultCategory())
	return nil
}
