package main

// commands.go — the drafter subcommands.
//
//	drafter init   — interview, build, validate, write blueprint + guidance doc
//	drafter sync   — regenerate managed regions of the guidance doc
//	drafter check  — validate a persisted blueprint
//	drafter packs  — list available packs

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"drafter/internal/blueprint"
	"drafter/internal/constraint"
	"drafter/internal/frontmatter"
	"drafter/internal/managed"
	"drafter/internal/pack"
	"drafter/internal/wizard"
)

const (
	generatorName    = "drafter"
	generatorVersion = "1.2.0"
	blueprintFile    = "blueprint.yaml"
	guidanceFile     = "AGENTS.md"
)

var (
	flagPack           string
	flagPacksDir       string
	flagAnswers        string
	flagOut            string
	flagNonInteractive bool
	flagBlueprint      string
	flagDoc            string
)

func init() {
	initCmd.Flags().StringVar(&flagPack, "pack", "starter", "pack identifier to interview with")
	initCmd.Flags().StringVar(&flagPacksDir, "packs-dir", "", "extra directory to resolve packs from")
	initCmd.Flags().StringVar(&flagAnswers, "answers", "", "YAML answers file (implies non-interactive)")
	initCmd.Flags().StringVar(&flagOut, "out", ".", "output directory")
	initCmd.Flags().BoolVar(&flagNonInteractive, "non-interactive", false, "never prompt; fail on missing required answers")

	syncCmd.Flags().StringVar(&flagBlueprint, "blueprint", blueprintFile, "blueprint to regenerate from")
	syncCmd.Flags().StringVar(&flagDoc, "doc", guidanceFile, "guidance document to update")
	syncCmd.Flags().StringVar(&flagPacksDir, "packs-dir", "", "extra directory to resolve packs from")

	checkCmd.Flags().StringVar(&flagBlueprint, "blueprint", blueprintFile, "blueprint to validate")

	packsCmd.Flags().StringVar(&flagPacksDir, "packs-dir", "", "extra directory to resolve packs from")

	rootCmd.AddCommand(initCmd, syncCmd, checkCmd, packsCmd)
}

// packDirs returns the pack search path from the flags.
func packDirs() []string {
	if flagPacksDir == "" {
		return nil
	}
	return []string{flagPacksDir}
}

// ---------------------------------------------------------------------------
// init
// ---------------------------------------------------------------------------

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Interview, build a blueprint, and generate the guidance doc",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := pack.Load(flagPack, packDirs()...)
		if err != nil {
			return err
		}

		asker, err := chooseAsker()
		if err != nil {
			return err
		}
		answers, err := wizard.New(p.Graph, asker).Collect()
		if err != nil {
			return err
		}

		bp := blueprint.Build(answers, p.Tables, blueprint.Metadata{
			Generator:   generatorName,
			Version:     generatorVersion,
			GeneratedAt: time.Now().UTC().Format(time.RFC3339),
			Pack:        p.Name,
			PackVersion: p.Version,
		})

		if violations := constraint.Validate(bp); len(violations) > 0 {
			renderViolations(os.Stderr, violations)
			return errRejected
		}

		bpPath := filepath.Join(flagOut, blueprintFile)
		if err := blueprint.Write(bp, bpPath); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", bpPath)

		docPath := filepath.Join(flagOut, guidanceFile)
		if err := writeGuidance(p, bp, docPath); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", docPath)
		return nil
	},
}

// chooseAsker picks interactive prompting on a TTY, a static answer map
// otherwise. --answers and --non-interactive both force the static path.
func chooseAsker() (wizard.Asker, error) {
	interactive := !flagNonInteractive && flagAnswers == "" && isatty.IsTerminal(os.Stdin.Fd())
	if interactive {
		return &wizard.TTYAsker{}, nil
	}
	supplied := map[string]any{}
	if flagAnswers != "" {
		data, err := os.ReadFile(flagAnswers)
		if err != nil {
			return nil, fmt.Errorf("read answers file: %w", err)
		}
		if err := yaml.Unmarshal(data, &supplied); err != nil {
			return nil, fmt.Errorf("parse answers file: %w", err)
		}
	}
	return &wizard.StaticAsker{Supplied: supplied}, nil
}

// writeGuidance creates the guidance doc, or merges fresh regions into an
// existing one. A malformed document aborts before anything is written.
func writeGuidance(p *pack.Pack, bp *blueprint.Blueprint, path string) error {
	existing, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		doc, err := p.RenderDocument(bp)
		if err != nil {
			return err
		}
		return os.WriteFile(path, doc, 0o644)
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	merged, err := managed.Merge(string(existing), p.Regions(bp))
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(merged), 0o644)
}

// ---------------------------------------------------------------------------
// sync
// ---------------------------------------------------------------------------

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Regenerate the managed regions of the guidance doc",
	RunE: func(cmd *cobra.Command, args []string) error {
		bp, err := blueprint.Read(flagBlueprint)
		if err != nil {
			return err
		}
		p, err := pack.Load(bp.Metadata.Pack, packDirs()...)
		if err != nil {
			return err
		}

		existing, err := os.ReadFile(flagDoc)
		if os.IsNotExist(err) {
			doc, err := p.RenderDocument(bp)
			if err != nil {
				return err
			}
			if err := os.WriteFile(flagDoc, doc, 0o644); err != nil {
				return err
			}
			fmt.Printf("created %s\n", flagDoc)
			return nil
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", flagDoc, err)
		}

		if frontmatter.Has(existing) {
			meta, _, err := frontmatter.Parse(existing)
			if err == nil && meta.Pack != "" && meta.Pack != p.Name {
				fmt.Fprintf(os.Stderr, "warning: %s was generated by pack %q, syncing with %q\n", flagDoc, meta.Pack, p.Name)
			}
		}

		merged, err := managed.Merge(string(existing), p.Regions(bp))
		if err != nil {
			return err
		}
		if err := os.WriteFile(flagDoc, []byte(merged), 0o644); err != nil {
			return err
		}
		fmt.Printf("updated %s\n", flagDoc)
		return nil
	},
}

// ---------------------------------------------------------------------------
// check
// ---------------------------------------------------------------------------

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate a persisted blueprint",
	RunE: func(cmd *cobra.Command, args []string) error {
		bp, err := blueprint.Read(flagBlueprint)
		if err != nil {
			return err
		}
		if violations := constraint.Validate(bp); len(violations) > 0 {
			renderViolations(os.Stderr, violations)
			return errRejected
		}
		fmt.Printf("%s: ok\n", flagBlueprint)
		return nil
	},
}

// ---------------------------------------------------------------------------
// packs
// ---------------------------------------------------------------------------

var packsCmd = &cobra.Command{
	Use:   "packs",
	Short: "List available packs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ids, err := pack.List(packDirs()...)
		if err != nil {
			return err
		}
		for _, id := range ids {
			p, err := pack.Load(id, packDirs()...)
			if err != nil {
				fmt.Printf("%-16s (unloadable: %v)\n", id, err)
				continue
			}
			fmt.Printf("%-16s %-8s %s\n", p.Name, p.Version, p.Description)
		}
		return nil
	},
}
